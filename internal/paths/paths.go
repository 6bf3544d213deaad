// Package paths fixes the on-disk layout of the data directory. Stages find
// each other's artifacts by these conventions, never by searching.
package paths

import (
	"fmt"
	"path/filepath"
)

// Synthesis working tree.

func SynthesisDir(dataDir string) string {
	return filepath.Join(dataDir, "synthesis")
}

func DesignDir(dataDir string, rtlID int) string {
	return filepath.Join(SynthesisDir(dataDir), fmt.Sprint(rtlID))
}

func RTLFile(dataDir string, rtlID int) string {
	return filepath.Join(DesignDir(dataDir, rtlID), "rtl.sv")
}

func PromptFile(dataDir string, rtlID int, promptType string) string {
	return filepath.Join(DesignDir(dataDir, rtlID), promptType+".txt")
}

// EffortDir is the per-(design, effort-combo) working directory; combo is the
// "generic_mapping_optimization" string.
func EffortDir(dataDir string, rtlID int, combo string) string {
	return filepath.Join(DesignDir(dataDir, rtlID), "syn", combo)
}

func NetlistFile(dataDir string, rtlID int, combo string) string {
	return filepath.Join(EffortDir(dataDir, rtlID, combo), "syn.v")
}

func SynthesisLog(dataDir string, rtlID int, combo string) string {
	return filepath.Join(EffortDir(dataDir, rtlID, combo), "genus.log")
}

// Dataflow working tree.

func DataflowDir(dataDir string) string {
	return filepath.Join(dataDir, "pyverilog")
}

func DesignDataflowDir(dataDir string, rtlID int) string {
	return filepath.Join(DataflowDir(dataDir), fmt.Sprint(rtlID))
}

func ModuleGraphFile(dataDir string, rtlID int, module string) string {
	return filepath.Join(DesignDataflowDir(dataDir, rtlID), module+".json")
}

// Canonical RTL outputs.

func RTLDataDir(dataDir string) string {
	return filepath.Join(dataDir, "rtl_data")
}

func RTLJSON(dataDir string) string {
	return filepath.Join(RTLDataDir(dataDir), "rtl.json")
}

func RTLCSV(dataDir string) string {
	return filepath.Join(RTLDataDir(dataDir), "rtl.csv")
}

func DataflowGraphDir(dataDir string) string {
	return filepath.Join(RTLDataDir(dataDir), "dataflow_graph")
}

func DataflowGraphArtifact(dataDir string, rtlID int, module string) string {
	return filepath.Join(DataflowGraphDir(dataDir), fmt.Sprintf("%d_%s.json", rtlID, module))
}

// Canonical netlist outputs.

func NetlistDataDir(dataDir string) string {
	return filepath.Join(dataDir, "netlist_data")
}

func NetlistGraphDir(dataDir string) string {
	return filepath.Join(NetlistDataDir(dataDir), "graph")
}

func NetlistGraphArtifact(dataDir string, rtlID int, combo string) string {
	return filepath.Join(NetlistGraphDir(dataDir), fmt.Sprintf("%d_%s.json", rtlID, combo))
}

func NetlistVerilogDir(dataDir string) string {
	return filepath.Join(NetlistDataDir(dataDir), "verilog")
}

func NetlistVerilogArtifact(dataDir string, rtlID int, combo string) string {
	return filepath.Join(NetlistVerilogDir(dataDir), fmt.Sprintf("%d_%s.v", rtlID, combo))
}

func NetlistLogDir(dataDir string) string {
	return filepath.Join(NetlistDataDir(dataDir), "synthesis_log")
}

func NetlistLogArtifact(dataDir string, rtlID int, combo string) string {
	return filepath.Join(NetlistLogDir(dataDir), fmt.Sprintf("%d_%s.log", rtlID, combo))
}

func NetlistJSON(dataDir string) string {
	return filepath.Join(NetlistDataDir(dataDir), "netlist.json")
}

func NetlistCSV(dataDir string) string {
	return filepath.Join(NetlistDataDir(dataDir), "netlist.csv")
}

func NetlistGraphgenFail(dataDir string) string {
	return filepath.Join(NetlistDataDir(dataDir), "netlist_graphgen_fail.json")
}
