package dataflow

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wadmes/VLSI-LLM/internal/graph"
	"github.com/wadmes/VLSI-LLM/internal/paths"
	"github.com/wadmes/VLSI-LLM/internal/summary"
	"github.com/wadmes/VLSI-LLM/internal/testutil"
)

// writeTool writes an executable script standing in for one of the HDL tools.
func writeTool(t *testing.T, name, script string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte("#!/bin/sh\n"+script), 0755))
	return path
}

// The parser reports syntax errors for sources carrying a SYNTAXERR marker;
// the analyzer fails module "bad_mod"; the graph generator emits a minimal
// two-node graph.
func testTools(t *testing.T) (parser, analyzer, graphgen string) {
	t.Helper()
	parser = writeTool(t, "parser", `
if grep -q SYNTAXERR "$1"; then exit 1; fi
echo "source code parsed"
`)
	analyzer = writeTool(t, "analyzer", `
if [ "$2" = "bad_mod" ]; then exit 1; fi
echo "dataflow of $2"
`)
	graphgen = writeTool(t, "graphgen", `
echo '{"nodes":[{"id":0,"name":"signal_a","type":0,"output":0},{"id":1,"name":"op_plus","type":0,"output":0,"label":"Plus"}],"edges":[{"from":0,"to":1}]}'
`)
	return parser, analyzer, graphgen
}

func writeDesign(t *testing.T, dataDir string, rtlID int, verilog string) {
	t.Helper()
	testutil.WriteFile(t, filepath.Dir(paths.RTLFile(dataDir, rtlID)), "rtl.sv", verilog)
}

func TestOrchestrator_Run(t *testing.T) {
	dataDir := t.TempDir()
	parser, analyzer, graphgen := testTools(t)

	writeDesign(t, dataDir, 0, testutil.MuxVerilog)
	writeDesign(t, dataDir, 1, "module broken; endmodule // SYNTAXERR")

	orch := New(Options{
		DataDir:        dataDir,
		Parser:         parser,
		Analyzer:       analyzer,
		GraphGenerator: graphgen,
		Timeout:        5 * time.Second,
		Workers:        2,
	})
	merged, err := orch.Run(context.Background(), []int{0, 1})
	require.NoError(t, err)

	assert.Equal(t, []int{0}, merged.SyntaxSuccess)
	assert.Equal(t, []int{1}, merged.SyntaxFail)
	// Module analysis runs independently of the syntax check, so design 1's
	// module still lands in the success list despite the syntax failure.
	assert.Equal(t, []summary.ModuleRef{
		{RTLID: 0, Module: "mux_2to1"},
		{RTLID: 1, Module: "broken"},
	}, merged.DataflowSuccess)

	outputDir := paths.DesignDataflowDir(dataDir, 0)
	assert.FileExists(t, filepath.Join(outputDir, "syntax.txt"))
	assert.FileExists(t, filepath.Join(outputDir, "mux_2to1.txt"))
	assert.FileExists(t, filepath.Join(paths.DesignDataflowDir(dataDir, 1), "broken.txt"))

	g, err := graph.ReadFile(paths.ModuleGraphFile(dataDir, 0, "mux_2to1"))
	require.NoError(t, err)
	require.Len(t, g.Nodes, 2)
	// Unlabeled signal nodes get the fixed Signal label on ingest.
	assert.Equal(t, "Signal", g.Nodes[0].Label)
	assert.Equal(t, "Plus", g.Nodes[1].Label)
}

func TestOrchestrator_ModuleIsolation(t *testing.T) {
	dataDir := t.TempDir()
	parser, analyzer, graphgen := testTools(t)

	// One failing module must not sink its sibling.
	writeDesign(t, dataDir, 0, `module good_mod (input a, output y);
  assign y = a;
endmodule

module bad_mod (input a, output y);
  assign y = ~a;
endmodule
`)

	orch := New(Options{
		DataDir:        dataDir,
		Parser:         parser,
		Analyzer:       analyzer,
		GraphGenerator: graphgen,
		Timeout:        5 * time.Second,
		Workers:        1,
	})
	merged, err := orch.Run(context.Background(), []int{0})
	require.NoError(t, err)

	assert.Equal(t, []int{0}, merged.SyntaxSuccess)
	assert.Equal(t, []summary.ModuleRef{{RTLID: 0, Module: "good_mod"}}, merged.DataflowSuccess)
	assert.Equal(t, []summary.ModuleRef{{RTLID: 0, Module: "bad_mod"}}, merged.DataflowFail)

	assert.FileExists(t, paths.ModuleGraphFile(dataDir, 0, "good_mod"))
	_, statErr := os.Stat(paths.ModuleGraphFile(dataDir, 0, "bad_mod"))
	assert.True(t, os.IsNotExist(statErr))
	// The failed module's analysis report is removed with it.
	_, statErr = os.Stat(filepath.Join(paths.DesignDataflowDir(dataDir, 0), "bad_mod.txt"))
	assert.True(t, os.IsNotExist(statErr))
}

func TestOrchestrator_ResumeSkipsFullySucceeded(t *testing.T) {
	dataDir := t.TempDir()
	parser, analyzer, graphgen := testTools(t)

	writeDesign(t, dataDir, 0, testutil.MuxVerilog)

	opts := Options{
		DataDir:        dataDir,
		Parser:         parser,
		Analyzer:       analyzer,
		GraphGenerator: graphgen,
		Timeout:        5 * time.Second,
		Workers:        1,
	}
	first, err := New(opts).Run(context.Background(), []int{0})
	require.NoError(t, err)
	require.Equal(t, []int{0}, first.SyntaxSuccess)

	// A second run with a broken parser must not downgrade the design.
	opts.Parser = writeTool(t, "brokenparser", "exit 1")
	second, err := New(opts).Run(context.Background(), []int{0})
	require.NoError(t, err)
	assert.Equal(t, first, second)
}

func TestOrchestrator_GraphValidationFailure(t *testing.T) {
	dataDir := t.TempDir()
	parser, analyzer, _ := testTools(t)
	badGraphgen := writeTool(t, "badgraphgen", `echo "this is not json"`)

	writeDesign(t, dataDir, 0, testutil.MuxVerilog)

	orch := New(Options{
		DataDir:        dataDir,
		Parser:         parser,
		Analyzer:       analyzer,
		GraphGenerator: badGraphgen,
		Timeout:        5 * time.Second,
		Workers:        1,
	})
	merged, err := orch.Run(context.Background(), []int{0})
	require.NoError(t, err)

	assert.Equal(t, []int{0}, merged.SyntaxSuccess)
	assert.Equal(t, []summary.ModuleRef{{RTLID: 0, Module: "mux_2to1"}}, merged.DataflowFail)
}
