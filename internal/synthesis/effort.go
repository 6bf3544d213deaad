package synthesis

import "strings"

// EffortCombo is the three-way synthesis tuning knob. Distinct combos yield
// distinct netlists from the same RTL and key the per-netlist artifacts.
type EffortCombo struct {
	Generic      string
	Mapping      string
	Optimization string
}

// String renders the combo in the canonical "generic_mapping_optimization"
// form used in directory names and netlist record keys.
func (c EffortCombo) String() string {
	return c.Generic + "_" + c.Mapping + "_" + c.Optimization
}

// ParseCombo splits a canonical combo string.
func ParseCombo(s string) (EffortCombo, bool) {
	parts := strings.Split(s, "_")
	if len(parts) != 3 {
		return EffortCombo{}, false
	}
	return EffortCombo{Generic: parts[0], Mapping: parts[1], Optimization: parts[2]}, true
}

// AllCombos is the cartesian product of the effort levels over the three
// knobs; the default low/medium/high gives 27 combos per design.
func AllCombos(efforts []string) []EffortCombo {
	combos := make([]EffortCombo, 0, len(efforts)*len(efforts)*len(efforts))
	for _, g := range efforts {
		for _, m := range efforts {
			for _, o := range efforts {
				combos = append(combos, EffortCombo{Generic: g, Mapping: m, Optimization: o})
			}
		}
	}
	return combos
}

// ComboStrings renders AllCombos as canonical strings.
func ComboStrings(efforts []string) []string {
	combos := AllCombos(efforts)
	out := make([]string, len(combos))
	for i, c := range combos {
		out[i] = c.String()
	}
	return out
}
