package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
)

// rtlCoderRecord is one line of the RTLCoder JSONL dump.
type rtlCoderRecord struct {
	Instruction *string  `json:"Instruction"`
	Response    []string `json:"Response"`
}

// RTLCoder iterates an RTLCoder JSONL file. Every line, including blank ones,
// consumes an index so that rtl_id assignment matches the upstream line numbers.
type RTLCoder struct {
	f       *os.File
	scanner *bufio.Scanner
	next    int
}

func OpenRTLCoder(path string) (*RTLCoder, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	return &RTLCoder{f: f, scanner: sc}, nil
}

func (r *RTLCoder) Next() (Record, error) {
	for {
		if !r.scanner.Scan() {
			if err := r.scanner.Err(); err != nil {
				return Record{}, err
			}
			return Record{}, io.EOF
		}
		idx := r.next
		r.next++

		line := strings.TrimSpace(r.scanner.Text())
		if line == "" {
			continue
		}

		var rec rtlCoderRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return Record{Index: idx}, fmt.Errorf("%w: line %d: %v", ErrDatasetFormat, idx, err)
		}
		if rec.Instruction == nil {
			return Record{Index: idx}, fmt.Errorf("%w: line %d: missing Instruction", ErrDatasetFormat, idx)
		}
		if len(rec.Response) == 0 || rec.Response[0] == "" {
			return Record{Index: idx}, fmt.Errorf("%w: line %d: missing Response", ErrDatasetFormat, idx)
		}

		return Record{Index: idx, Prompt: *rec.Instruction, Verilog: rec.Response[0]}, nil
	}
}

func (r *RTLCoder) Close() error {
	return r.f.Close()
}
