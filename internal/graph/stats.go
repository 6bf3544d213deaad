package graph

// Stats is the derived structural metadata folded into the CSV exports.
type Stats struct {
	NodeCount   int
	EdgeCount   int
	InDegree    map[int]int // degree -> node count
	OutDegree   map[int]int
	TypeCount   map[int]int    // netlist type index -> count
	LabelCount  map[string]int // dataflow label -> count
	OutputCount map[int]int    // output flag (0/1) -> count
}

// ComputeStats derives counts and degree distributions from g.
func ComputeStats(g *Digraph) Stats {
	s := Stats{
		NodeCount:   len(g.Nodes),
		EdgeCount:   len(g.Edges),
		InDegree:    make(map[int]int),
		OutDegree:   make(map[int]int),
		TypeCount:   make(map[int]int),
		LabelCount:  make(map[string]int),
		OutputCount: make(map[int]int),
	}

	in := make(map[int]int, len(g.Nodes))
	out := make(map[int]int, len(g.Nodes))
	for _, e := range g.Edges {
		out[e.From]++
		in[e.To]++
	}

	for _, n := range g.Nodes {
		s.InDegree[in[n.ID]]++
		s.OutDegree[out[n.ID]]++
		s.TypeCount[n.Type]++
		s.OutputCount[n.Output]++
		if n.Label != "" {
			s.LabelCount[n.Label]++
		}
	}
	return s
}

// Accumulate adds other's counts into s, used when summing a design's
// per-module dataflow graphs.
func (s *Stats) Accumulate(other Stats) {
	if s.InDegree == nil {
		*s = Stats{
			InDegree:    make(map[int]int),
			OutDegree:   make(map[int]int),
			TypeCount:   make(map[int]int),
			LabelCount:  make(map[string]int),
			OutputCount: make(map[int]int),
		}
	}
	s.NodeCount += other.NodeCount
	s.EdgeCount += other.EdgeCount
	for k, v := range other.InDegree {
		s.InDegree[k] += v
	}
	for k, v := range other.OutDegree {
		s.OutDegree[k] += v
	}
	for k, v := range other.TypeCount {
		s.TypeCount[k] += v
	}
	for k, v := range other.LabelCount {
		s.LabelCount[k] += v
	}
	for k, v := range other.OutputCount {
		s.OutputCount[k] += v
	}
}
