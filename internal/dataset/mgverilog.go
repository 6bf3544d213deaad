package dataset

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"regexp"
	"strings"
)

// MGVerilog descriptions embed the real prompt and the module header inside an
// instruction-tuning template; both are carved out with this pattern.
var mgDescriptionRE = regexp.MustCompile(
	`(?s)Assume that signals are positive clock/clk edge triggered unless otherwise stated\.\n\n(.*?)\n\n Module header:\n\n(.*?)\n \[/INST\]`)

type mgVerilogRecord struct {
	Description *string `json:"description"`
	Code        *string `json:"code"`
}

// MGVerilog iterates a JSONL export of the MGVerilog dataset (one object per
// row with "description" and "code" columns). The extracted module header is
// prepended to the code, matching how the corpus was assembled upstream.
type MGVerilog struct {
	f       *os.File
	scanner *bufio.Scanner
	next    int
}

func OpenMGVerilog(path string) (*MGVerilog, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open dataset: %w", err)
	}
	sc := bufio.NewScanner(f)
	sc.Buffer(make([]byte, 0, 1024*1024), 64*1024*1024)
	return &MGVerilog{f: f, scanner: sc}, nil
}

func (m *MGVerilog) Next() (Record, error) {
	for {
		if !m.scanner.Scan() {
			if err := m.scanner.Err(); err != nil {
				return Record{}, err
			}
			return Record{}, io.EOF
		}
		idx := m.next
		m.next++

		line := strings.TrimSpace(m.scanner.Text())
		if line == "" {
			continue
		}

		var rec mgVerilogRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			return Record{Index: idx}, fmt.Errorf("%w: line %d: %v", ErrDatasetFormat, idx, err)
		}
		if rec.Description == nil || rec.Code == nil {
			return Record{Index: idx}, fmt.Errorf("%w: line %d: missing description or code", ErrDatasetFormat, idx)
		}

		code := *rec.Code
		description := ""
		if match := mgDescriptionRE.FindStringSubmatch(*rec.Description); match != nil {
			description = strings.TrimSpace(match[1])
			if header := strings.TrimSpace(match[2]); header != "" {
				code = header + "\n" + code
			}
		}
		if description == "" {
			return Record{Index: idx}, fmt.Errorf("%w: line %d: description template mismatch", ErrDatasetFormat, idx)
		}

		return Record{Index: idx, Prompt: description, Verilog: code}, nil
	}
}

func (m *MGVerilog) Close() error {
	return m.f.Close()
}
