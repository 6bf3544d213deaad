package netlist

import "strings"

// BlackBox describes a sequential or otherwise opaque cell: its contents are
// not modeled, only the fan-in captured by bb_input nodes and the fan-out
// driven by bb_output nodes.
type BlackBox struct {
	Name    string
	Inputs  []string
	Outputs []string
}

// defaultBlackBoxes covers the generic flop genus emits plus the common
// genus/DC flop and latch cells seen in practice.
var defaultBlackBoxes = []BlackBox{
	{Name: "f", Inputs: []string{"CK", "D"}, Outputs: []string{"Q"}},
	{Name: "flopd", Inputs: []string{"CK", "D"}, Outputs: []string{"Q"}},
	{Name: "flopds", Inputs: []string{"CK", "D", "S"}, Outputs: []string{"Q"}},
	{Name: "flopdr", Inputs: []string{"CK", "D", "R"}, Outputs: []string{"Q"}},
	{Name: "flopdrs", Inputs: []string{"CK", "D", "R", "S"}, Outputs: []string{"Q"}},
	{Name: "latchd", Inputs: []string{"G", "D"}, Outputs: []string{"Q"}},
}

// blackBoxPrefixes match library flop/latch families by cell-name prefix
// (case-insensitive), e.g. DFF_X1, SDFFR, FDPQ, LATCHN.
var blackBoxPrefixes = []string{"dff", "sdff", "fd", "latch", "lat"}

type blackBoxSet struct {
	byName map[string]BlackBox
}

func newBlackBoxSet(extra ...BlackBox) *blackBoxSet {
	s := &blackBoxSet{byName: make(map[string]BlackBox)}
	for _, bb := range defaultBlackBoxes {
		s.byName[strings.ToLower(bb.Name)] = bb
	}
	for _, bb := range extra {
		s.byName[strings.ToLower(bb.Name)] = bb
	}
	return s
}

// lookup resolves a cell kind to a black box, matching exact names first and
// prefix families second. Prefix matches classify pins by name: Q/QN are
// outputs, the rest inputs.
func (s *blackBoxSet) lookup(kind string) (BlackBox, bool) {
	lower := strings.ToLower(kind)
	if bb, ok := s.byName[lower]; ok {
		return bb, true
	}
	for _, prefix := range blackBoxPrefixes {
		if strings.HasPrefix(lower, prefix) {
			return BlackBox{Name: kind}, true
		}
	}
	return BlackBox{}, false
}

// isOutputPin classifies a named pin of bb.
func (bb BlackBox) isOutputPin(pin string) bool {
	if len(bb.Outputs) > 0 {
		for _, out := range bb.Outputs {
			if strings.EqualFold(out, pin) {
				return true
			}
		}
		return false
	}
	return outputPins[pin]
}
