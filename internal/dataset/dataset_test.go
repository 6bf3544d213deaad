package dataset

import (
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeDataset(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "dataset.jsonl")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestRTLCoder_Next(t *testing.T) {
	path := writeDataset(t, `{"Instruction": "Design a mux.", "Response": ["module mux; endmodule"]}
{"Instruction": "Design an adder.", "Response": ["module adder; endmodule"]}
`)
	it, err := OpenRTLCoder(path)
	require.NoError(t, err)
	defer it.Close()

	first, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, first.Index)
	assert.Equal(t, "Design a mux.", first.Prompt)
	assert.Equal(t, "module mux; endmodule", first.Verilog)

	second, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 1, second.Index)
	assert.Equal(t, "Design an adder.", second.Prompt)

	_, err = it.Next()
	assert.Equal(t, io.EOF, err)
}

func TestRTLCoder_BlankLinesConsumeIndices(t *testing.T) {
	// Indices must match upstream line numbers even across blank lines, so a
	// re-run over the same file assigns the same rtl_id to each design.
	path := writeDataset(t, `{"Instruction": "a", "Response": ["m1"]}

{"Instruction": "b", "Response": ["m2"]}
`)
	it, err := OpenRTLCoder(path)
	require.NoError(t, err)
	defer it.Close()

	first, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, first.Index)

	second, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 2, second.Index)
}

func TestRTLCoder_MalformedRecord(t *testing.T) {
	tests := []struct {
		name string
		line string
	}{
		{"not json", `garbage`},
		{"missing instruction", `{"Response": ["m"]}`},
		{"missing response", `{"Instruction": "a"}`},
		{"empty response", `{"Instruction": "a", "Response": [""]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			it, err := OpenRTLCoder(writeDataset(t, tt.line+"\n"))
			require.NoError(t, err)
			defer it.Close()

			rec, err := it.Next()
			assert.ErrorIs(t, err, ErrDatasetFormat)
			assert.Equal(t, 0, rec.Index)
		})
	}
}

func TestForEach_SkipsMalformed(t *testing.T) {
	path := writeDataset(t, `{"Instruction": "a", "Response": ["m1"]}
{"Response": ["no instruction"]}
{"Instruction": "c", "Response": ["m3"]}
`)
	it, err := OpenRTLCoder(path)
	require.NoError(t, err)

	var got []int
	var skipped []int
	err = ForEach(it, func(rec Record) error {
		got = append(got, rec.Index)
		return nil
	}, func(index int, err error) {
		skipped = append(skipped, index)
	})
	require.NoError(t, err)
	assert.Equal(t, []int{0, 2}, got)
	assert.Equal(t, []int{1}, skipped)
}

func TestRTLCoder_ReproducibleIndices(t *testing.T) {
	path := writeDataset(t, `{"Instruction": "a", "Response": ["m1"]}

{"Instruction": "b", "Response": ["m2"]}
{"Instruction": "c", "Response": ["m3"]}
`)
	read := func() []int {
		it, err := OpenRTLCoder(path)
		require.NoError(t, err)
		var ids []int
		require.NoError(t, ForEach(it, func(rec Record) error {
			ids = append(ids, rec.Index)
			return nil
		}, nil))
		return ids
	}
	assert.Equal(t, read(), read())
}

func TestMGVerilog_Next(t *testing.T) {
	desc := "Some preamble [INST] Assume that signals are positive clock/clk edge triggered unless otherwise stated.\\n\\nImplement a D flip-flop with synchronous reset.\\n\\n Module header:\\n\\nmodule dff (input clk, input rst, input d, output reg q);\\n [/INST] trailing"
	path := writeDataset(t, `{"description": "`+desc+`", "code": "always @(posedge clk) q <= rst ? 1'b0 : d;\nendmodule"}
`)
	it, err := OpenMGVerilog(path)
	require.NoError(t, err)
	defer it.Close()

	rec, err := it.Next()
	require.NoError(t, err)
	assert.Equal(t, 0, rec.Index)
	assert.Equal(t, "Implement a D flip-flop with synchronous reset.", rec.Prompt)
	assert.Contains(t, rec.Verilog, "module dff (input clk, input rst, input d, output reg q);")
	assert.Contains(t, rec.Verilog, "always @(posedge clk)")
}

func TestMGVerilog_TemplateMismatch(t *testing.T) {
	path := writeDataset(t, `{"description": "free-form text without the template", "code": "module m; endmodule"}
`)
	it, err := OpenMGVerilog(path)
	require.NoError(t, err)
	defer it.Close()

	_, err = it.Next()
	assert.ErrorIs(t, err, ErrDatasetFormat)
}

func TestOpen_UnknownFormat(t *testing.T) {
	_, err := Open("parquet", "whatever")
	assert.Error(t, err)
}
