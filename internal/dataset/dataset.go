// Package dataset normalizes upstream RTL datasets into a uniform sequence of
// (index, prompt, verilog) records. The index is the zero-based position in the
// source file and is the stable rtl_id used by every later pipeline stage, so
// the source file must not change between runs once IDs have been assigned.
package dataset

import (
	"errors"
	"fmt"
	"io"
)

// ErrDatasetFormat reports an upstream record missing a field required for the
// requested prompt type. The record is skipped and logged, never fatal for the run.
var ErrDatasetFormat = errors.New("malformed dataset record")

// Record is one design as produced by a source adapter.
type Record struct {
	Index   int
	Prompt  string
	Verilog string
}

// Iterator yields Records in source order. Next returns io.EOF after the last
// record. Iterating twice over an unchanged source yields identical indices.
type Iterator interface {
	Next() (Record, error)
	Close() error
}

// ForEach drains it, calling fn per record. Records that fail with
// ErrDatasetFormat are reported through onSkip and do not stop iteration.
func ForEach(it Iterator, fn func(Record) error, onSkip func(int, error)) error {
	defer it.Close()
	for {
		rec, err := it.Next()
		if err == io.EOF {
			return nil
		}
		if err != nil {
			if errors.Is(err, ErrDatasetFormat) {
				if onSkip != nil {
					onSkip(rec.Index, err)
				}
				continue
			}
			return err
		}
		if err := fn(rec); err != nil {
			return err
		}
	}
}

// Open returns the adapter named by format ("rtlcoder" or "mgverilog").
func Open(format, path string) (Iterator, error) {
	switch format {
	case "rtlcoder":
		return OpenRTLCoder(path)
	case "mgverilog":
		return OpenMGVerilog(path)
	default:
		return nil, fmt.Errorf("unknown dataset format %q", format)
	}
}
