// Package graph holds the directed graph representation shared by the
// dataflow and netlist stages, with a deterministic JSON encoding so that
// regenerated artifacts are byte-identical when their content is unchanged.
package graph

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Node type vocabulary for netlist graphs. Indices are part of the persisted
// format and must not be reordered.
const (
	TypeBuf = iota
	TypeAnd
	TypeOr
	TypeXor
	TypeNot
	TypeNand
	TypeNor
	TypeXnor
	TypeConst0
	TypeConst1
	TypeConstX
	TypeInput
	TypeBBInput
	TypeBBOutput
)

var typeNames = []string{
	"buf", "and", "or", "xor", "not", "nand", "nor", "xnor",
	"0", "1", "x", "input", "bb_input", "bb_output",
}

// TypeName returns the vocabulary name for a netlist node type index.
func TypeName(t int) string {
	if t < 0 || t >= len(typeNames) {
		return "unknown"
	}
	return typeNames[t]
}

// TypeIndex maps a vocabulary name back to its index, -1 if unknown.
func TypeIndex(name string) int {
	for i, n := range typeNames {
		if n == name {
			return i
		}
	}
	return -1
}

// NumTypes is the size of the netlist node type vocabulary.
var NumTypes = len(typeNames)

// Node is one vertex. Netlist graphs use the integer Type vocabulary above
// and the Output flag; dataflow graphs use the free-form Label instead.
type Node struct {
	ID     int    `json:"id"`
	Name   string `json:"name"`
	Type   int    `json:"type"`
	Output int    `json:"output"`
	Label  string `json:"label,omitempty"`
}

// Edge is a directed connection between node IDs.
type Edge struct {
	From int `json:"from"`
	To   int `json:"to"`
}

// Digraph is a directed graph with dense integer node IDs.
type Digraph struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

// Normalize sorts nodes by ID and edges lexicographically, dropping duplicate
// edges. Serialization after Normalize is deterministic.
func (g *Digraph) Normalize() {
	sort.Slice(g.Nodes, func(i, j int) bool { return g.Nodes[i].ID < g.Nodes[j].ID })
	sort.Slice(g.Edges, func(i, j int) bool {
		if g.Edges[i].From != g.Edges[j].From {
			return g.Edges[i].From < g.Edges[j].From
		}
		return g.Edges[i].To < g.Edges[j].To
	})
	dedup := g.Edges[:0]
	for i, e := range g.Edges {
		if i == 0 || e != g.Edges[i-1] {
			dedup = append(dedup, e)
		}
	}
	g.Edges = dedup
}

// Marshal encodes the normalized graph.
func (g *Digraph) Marshal() ([]byte, error) {
	g.Normalize()
	return json.MarshalIndent(g, "", "  ")
}

// WriteFile atomically replaces path with the serialized graph. Artifacts are
// immutable once written; regeneration swaps the file in one rename.
func (g *Digraph) WriteFile(path string) error {
	data, err := g.Marshal()
	if err != nil {
		return err
	}
	tmp, err := os.CreateTemp(filepath.Dir(path), ".graph-*")
	if err != nil {
		return err
	}
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmp.Name())
		return err
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmp.Name())
		return err
	}
	return os.Rename(tmp.Name(), path)
}

// ReadFile loads a serialized graph.
func ReadFile(path string) (*Digraph, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var g Digraph
	if err := json.Unmarshal(data, &g); err != nil {
		return nil, fmt.Errorf("decode graph %s: %w", path, err)
	}
	return &g, nil
}
