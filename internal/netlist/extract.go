package netlist

import (
	"os"
	"regexp"

	"github.com/wadmes/VLSI-LLM/internal/graph"
)

type nodeInfo struct {
	typ    int
	output bool
	fanin  []string
}

var netNameRE = regexp.MustCompile(`^[A-Za-z_\\][\w$\\]*(\[\d+\])?$`)

// Extract parses a synthesized netlist and builds its gate graph. Node IDs
// are dense integers assigned in sorted net-name order, names preserved as
// node attributes.
func Extract(src string, extra ...BlackBox) (*graph.Digraph, error) {
	mod, err := parse(stripModuleSuffix(src))
	if err != nil {
		return nil, err
	}

	boxes := newBlackBoxSet(extra...)
	nodes := make(map[string]*nodeInfo)

	driven := func(net string, info *nodeInfo) error {
		if _, dup := nodes[net]; dup {
			return transformErrf("net %s has multiple drivers", net)
		}
		nodes[net] = info
		return nil
	}

	for _, in := range mod.inputs {
		if err := driven(in, &nodeInfo{typ: graph.TypeInput}); err != nil {
			return nil, err
		}
	}

	for _, assign := range mod.assigns {
		lhs, rhs := assign[0], assign[1]
		if !netNameRE.MatchString(lhs) {
			return nil, transformErrf("unsupported assign target %q", lhs)
		}
		if ct := constantType(rhs); ct >= 0 {
			if err := driven(lhs, &nodeInfo{typ: ct}); err != nil {
				return nil, err
			}
			continue
		}
		if !netNameRE.MatchString(rhs) {
			return nil, transformErrf("unsupported assign expression %q", rhs)
		}
		if err := driven(lhs, &nodeInfo{typ: graph.TypeBuf, fanin: []string{rhs}}); err != nil {
			return nil, err
		}
	}

	for _, inst := range mod.insts {
		if gateType, ok := gateTypes[inst.kind]; ok {
			out, fanin, err := gatePorts(inst)
			if err != nil {
				return nil, err
			}
			if err := driven(out, &nodeInfo{typ: gateType, fanin: fanin}); err != nil {
				return nil, err
			}
			continue
		}

		bb, ok := boxes.lookup(inst.kind)
		if !ok {
			return nil, transformErrf("unsupported primitive %q", inst.kind)
		}
		// Sink keys are instance-qualified pin names; an unnamed instance
		// would collide with every other unnamed one.
		if inst.name == "" {
			return nil, transformErrf("black box %s requires an instance name", inst.kind)
		}
		for _, conn := range inst.conns {
			if conn.pin == "" {
				return nil, transformErrf("black box %s requires named connections", inst.kind)
			}
			if conn.net == "" {
				continue // unconnected pin
			}
			if bb.isOutputPin(conn.pin) {
				if err := driven(conn.net, &nodeInfo{typ: graph.TypeBBOutput}); err != nil {
					return nil, err
				}
			} else {
				sink := inst.name + "/" + conn.pin
				if err := driven(sink, &nodeInfo{typ: graph.TypeBBInput, fanin: []string{conn.net}}); err != nil {
					return nil, err
				}
			}
		}
	}

	// Every fan-in must resolve to a driven net or primary input.
	for net, info := range nodes {
		for _, fi := range info.fanin {
			if _, ok := nodes[fi]; !ok {
				return nil, transformErrf("net %s driving %s is undriven", fi, net)
			}
		}
	}

	for _, out := range mod.outputs {
		info, ok := nodes[out]
		if !ok {
			return nil, transformErrf("primary output %s is undriven", out)
		}
		info.output = true
	}

	g := &graph.Digraph{}
	ids := make(map[string]int)
	for i, name := range sortedNetNames(nodes) {
		ids[name] = i
		info := nodes[name]
		output := 0
		if info.output {
			output = 1
		}
		g.Nodes = append(g.Nodes, graph.Node{
			ID:     i,
			Name:   name,
			Type:   info.typ,
			Output: output,
		})
	}
	for name, info := range nodes {
		for _, fi := range info.fanin {
			g.Edges = append(g.Edges, graph.Edge{From: ids[fi], To: ids[name]})
		}
	}
	g.Normalize()
	return g, nil
}

// gatePorts resolves a primitive instance's output net and fan-in nets,
// accepting positional (output first) or named connections.
func gatePorts(inst instance) (string, []string, error) {
	named := inst.conns[0].pin != ""
	if !named {
		if len(inst.conns) < 2 {
			return "", nil, transformErrf("gate %s %s needs an output and at least one input", inst.kind, inst.name)
		}
		out := inst.conns[0].net
		fanin := make([]string, 0, len(inst.conns)-1)
		for _, conn := range inst.conns[1:] {
			if conn.pin != "" {
				return "", nil, transformErrf("gate %s %s mixes positional and named connections", inst.kind, inst.name)
			}
			fanin = append(fanin, conn.net)
		}
		return out, fanin, nil
	}

	out := ""
	var fanin []string
	for _, conn := range inst.conns {
		if conn.pin == "" {
			return "", nil, transformErrf("gate %s %s mixes positional and named connections", inst.kind, inst.name)
		}
		if outputPins[conn.pin] {
			if out != "" {
				return "", nil, transformErrf("gate %s %s has multiple outputs", inst.kind, inst.name)
			}
			out = conn.net
		} else {
			fanin = append(fanin, conn.net)
		}
	}
	if out == "" {
		return "", nil, transformErrf("gate %s %s has no output connection", inst.kind, inst.name)
	}
	return out, fanin, nil
}

// ExtractFile reads and extracts one netlist file.
func ExtractFile(path string, extra ...BlackBox) (*graph.Digraph, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return Extract(string(src), extra...)
}
