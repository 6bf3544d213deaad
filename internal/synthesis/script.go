package synthesis

import (
	"fmt"
	"strings"
)

// synthesisScript builds the tool command sequence for one effort combo. The
// RTL is read from the fixed relative location two levels up because the tool
// runs inside the per-combo working directory.
func synthesisScript(combo EffortCombo, library string) []string {
	return []string{
		fmt.Sprintf("set_db syn_generic_effort %s", combo.Generic),
		fmt.Sprintf("set_db syn_map_effort %s", combo.Mapping),
		fmt.Sprintf("set_db syn_opt_effort %s", combo.Optimization),
		fmt.Sprintf("set_db / .library %s", library),
		"read_hdl -v ../../rtl.sv",
		"elaborate",
		"bitblast_all_ports",
		`update_names -hnet -restricted {[ ] .} -replace_str "_"`,
		`update_names -inst -restricted {[ ] .} -replace_str "_"`,
		"set_db hdl_bus_wire_naming_style %s__%d",
		"syn_generic",
		"syn_map",
		"syn_opt",
		"ungroup -all -flatten -force",
		`redirect syn.v "write_hdl -generic"`,
		"report_power > power_report.txt",
		"report_area -summary > area_report.txt",
		"exit",
	}
}

// scriptFileContents is what gets written to cmd.tcl so a failed run can be
// replayed by hand.
func scriptFileContents(cmds []string) string {
	return strings.Join(cmds, "\n")
}

// launchCommand assembles the full tool invocation. The command sequence is
// passed through -execute the way the tool expects: statements joined by ";\n".
func launchCommand(binary string, cmds []string) []string {
	return []string{
		binary,
		"-no_gui",
		"-abort_on_error",
		"-log", "genus",
		"-execute", strings.Join(cmds, ";\n"),
	}
}
