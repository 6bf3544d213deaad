// Package netlist transforms synthesized gate-level Verilog into the
// canonical circuit graph: gate instances and primary I/O become nodes, nets
// become edges. Constructs outside the supported primitive vocabulary are a
// GraphTransformError; the surrounding batch keeps going.
package netlist

import (
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/wadmes/VLSI-LLM/internal/graph"
)

// GraphTransformError marks a netlist that could not be turned into a graph.
type GraphTransformError struct {
	Reason string
}

func (e *GraphTransformError) Error() string {
	return "graph transform: " + e.Reason
}

func transformErrf(format string, args ...any) error {
	return &GraphTransformError{Reason: fmt.Sprintf(format, args...)}
}

// gateTypes maps primitive instance keywords to the node type vocabulary.
var gateTypes = map[string]int{
	"buf":  graph.TypeBuf,
	"and":  graph.TypeAnd,
	"or":   graph.TypeOr,
	"xor":  graph.TypeXor,
	"not":  graph.TypeNot,
	"nand": graph.TypeNand,
	"nor":  graph.TypeNor,
	"xnor": graph.TypeXnor,
}

// outputPins are the pin names treated as instance outputs in named
// connections, for both primitives and black boxes.
var outputPins = map[string]bool{
	"Y": true, "Z": true, "Q": true, "QN": true, "OUT": true, "out": true,
	"y": true, "z": true, "q": true,
}

var (
	lineCommentRE  = regexp.MustCompile(`//[^\n]*`)
	blockCommentRE = regexp.MustCompile(`(?s)/\*.*?\*/`)
	rangeRE        = regexp.MustCompile(`^\[(\d+):(\d+)\]$`)
)

type connection struct {
	pin string // empty for positional
	net string
}

type instance struct {
	kind  string
	name  string
	conns []connection
}

type netlistModule struct {
	name    string
	inputs  []string
	outputs []string
	wires   []string
	insts   []instance
	assigns [][2]string // lhs, rhs expression
}

// stripModuleSuffix removes the "_module" decoration genus appends to
// elaborated module names.
func stripModuleSuffix(src string) string {
	return strings.ReplaceAll(src, "_module", "")
}

// parse reads the first module of a structural netlist.
func parse(src string) (*netlistModule, error) {
	src = blockCommentRE.ReplaceAllString(src, "")
	src = lineCommentRE.ReplaceAllString(src, "")

	start := strings.Index(src, "module ")
	if start < 0 {
		return nil, transformErrf("no module declaration")
	}
	end := strings.Index(src, "endmodule")
	if end < 0 {
		return nil, transformErrf("unterminated module")
	}
	body := src[start:end]

	m := &netlistModule{}
	for _, stmt := range strings.Split(body, ";") {
		stmt = strings.TrimSpace(stmt)
		if stmt == "" {
			continue
		}
		if err := m.parseStatement(stmt); err != nil {
			return nil, err
		}
	}
	if m.name == "" {
		return nil, transformErrf("no module declaration")
	}
	return m, nil
}

func (m *netlistModule) parseStatement(stmt string) error {
	fields := strings.Fields(stmt)
	if len(fields) == 0 {
		return nil
	}
	switch fields[0] {
	case "module":
		rest := strings.TrimSpace(stmt[len("module"):])
		if i := strings.IndexAny(rest, " \t\n("); i > 0 {
			m.name = rest[:i]
		} else {
			m.name = rest
		}
		return nil
	case "input":
		nets, err := declaredNets(stmt[len("input"):])
		m.inputs = append(m.inputs, nets...)
		return err
	case "output":
		nets, err := declaredNets(stmt[len("output"):])
		m.outputs = append(m.outputs, nets...)
		return err
	case "wire", "tri":
		nets, err := declaredNets(stmt[len(fields[0]):])
		m.wires = append(m.wires, nets...)
		return err
	case "assign":
		lhs, rhs, ok := strings.Cut(stmt[len("assign"):], "=")
		if !ok {
			return transformErrf("malformed assign %q", stmt)
		}
		m.assigns = append(m.assigns, [2]string{strings.TrimSpace(lhs), strings.TrimSpace(rhs)})
		return nil
	default:
		return m.parseInstance(stmt)
	}
}

// declaredNets expands an input/output/wire declaration, including ranged
// declarations, into individual net names.
func declaredNets(decl string) ([]string, error) {
	decl = strings.TrimSpace(decl)
	width := []int(nil)
	if strings.HasPrefix(decl, "[") {
		end := strings.Index(decl, "]")
		if end < 0 {
			return nil, transformErrf("malformed range in declaration %q", decl)
		}
		match := rangeRE.FindStringSubmatch(decl[:end+1])
		if match == nil {
			return nil, transformErrf("unsupported range %q", decl[:end+1])
		}
		msb, _ := strconv.Atoi(match[1])
		lsb, _ := strconv.Atoi(match[2])
		if lsb > msb {
			msb, lsb = lsb, msb
		}
		for i := lsb; i <= msb; i++ {
			width = append(width, i)
		}
		decl = strings.TrimSpace(decl[end+1:])
	}

	var nets []string
	for _, name := range strings.Split(decl, ",") {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		if strings.ContainsAny(name, " \t\n") {
			return nil, transformErrf("malformed declaration name %q", name)
		}
		if width == nil {
			nets = append(nets, name)
			continue
		}
		for _, i := range width {
			nets = append(nets, fmt.Sprintf("%s[%d]", name, i))
		}
	}
	return nets, nil
}

// parseInstance handles both primitive gates and black-box cells:
//
//	and g1 (y, a, b);
//	DFF r1 (.CK(clk), .D(d), .Q(q));
func (m *netlistModule) parseInstance(stmt string) error {
	open := strings.Index(stmt, "(")
	if open < 0 || !strings.HasSuffix(strings.TrimSpace(stmt), ")") {
		return transformErrf("unsupported statement %q", firstLine(stmt))
	}
	head := strings.Fields(stmt[:open])
	if len(head) == 0 || len(head) > 2 {
		return transformErrf("unsupported statement %q", firstLine(stmt))
	}

	inst := instance{kind: head[0]}
	if len(head) == 2 {
		inst.name = head[1]
	}

	ports := strings.TrimSpace(stmt[open+1 : strings.LastIndex(stmt, ")")])
	for _, raw := range splitTopLevel(ports) {
		raw = strings.TrimSpace(raw)
		if raw == "" {
			continue
		}
		if strings.HasPrefix(raw, ".") {
			pinOpen := strings.Index(raw, "(")
			pinClose := strings.LastIndex(raw, ")")
			if pinOpen < 0 || pinClose < pinOpen {
				return transformErrf("malformed connection %q in %s", raw, inst.kind)
			}
			inst.conns = append(inst.conns, connection{
				pin: strings.TrimSpace(raw[1:pinOpen]),
				net: strings.TrimSpace(raw[pinOpen+1 : pinClose]),
			})
		} else {
			inst.conns = append(inst.conns, connection{net: raw})
		}
	}
	if len(inst.conns) == 0 {
		return transformErrf("instance %s %s has no connections", inst.kind, inst.name)
	}

	m.insts = append(m.insts, inst)
	return nil
}

// splitTopLevel splits on commas not nested inside parentheses.
func splitTopLevel(s string) []string {
	var parts []string
	depth, last := 0, 0
	for i, r := range s {
		switch r {
		case '(':
			depth++
		case ')':
			depth--
		case ',':
			if depth == 0 {
				parts = append(parts, s[last:i])
				last = i + 1
			}
		}
	}
	parts = append(parts, s[last:])
	return parts
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// constantType recognizes Verilog constant literals, -1 otherwise.
func constantType(expr string) int {
	switch strings.TrimSpace(expr) {
	case "1'b0", "1'h0", "0":
		return graph.TypeConst0
	case "1'b1", "1'h1", "1":
		return graph.TypeConst1
	case "1'bx", "1'hx":
		return graph.TypeConstX
	default:
		return -1
	}
}

// sortedNetNames returns names in deterministic order for relabeling.
func sortedNetNames(set map[string]*nodeInfo) []string {
	names := make([]string, 0, len(set))
	for name := range set {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
