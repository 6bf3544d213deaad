package testutil

import (
	"os"
	"path/filepath"
	"testing"

	"gorm.io/gorm"

	"github.com/wadmes/VLSI-LLM/internal/store"
)

// TestDesign inserts a design record with sane defaults.
func TestDesign(t *testing.T, db *gorm.DB, rtlID int, opts ...func(*store.DesignRecord)) *store.DesignRecord {
	t.Helper()

	rec := &store.DesignRecord{
		RTLID:           rtlID,
		Instruction:     "Design a 2-to-1 multiplexer.",
		SynthesisStatus: store.StatusPending,
	}
	for _, opt := range opts {
		opt(rec)
	}
	if err := db.Create(rec).Error; err != nil {
		t.Fatalf("Failed to create test design: %v", err)
	}
	return rec
}

// WithSynthesisStatus sets the synthesis outcome on a fixture design.
func WithSynthesisStatus(status string) func(*store.DesignRecord) {
	return func(rec *store.DesignRecord) {
		rec.SynthesisStatus = status
	}
}

// WriteFile writes contents under dir, creating parents as needed.
func WriteFile(t *testing.T, dir, name, contents string) string {
	t.Helper()

	path := filepath.Join(dir, name)
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		t.Fatalf("Failed to create dir for %s: %v", name, err)
	}
	if err := os.WriteFile(path, []byte(contents), 0644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
	return path
}

// MuxVerilog is a small synthesizable design used across tests.
const MuxVerilog = `module mux_2to1 (
    input a,
    input b,
    input sel,
    output y
);

  assign y = sel ? b : a;

endmodule
`

// NetlistVerilog is a gate-level netlist with 3 primary inputs, 1 output and
// an AND/OR/NOT census of 1/1/1.
const NetlistVerilog = `module top (a, b, c, y);
  input a;
  input b;
  input c;
  output y;
  wire n1;
  wire n2;

  and g1 (n1, a, b);
  not g2 (n2, c);
  or g3 (y, n1, n2);
endmodule
`
