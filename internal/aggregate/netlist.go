package aggregate

import (
	"encoding/csv"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"
	"strings"

	"github.com/wadmes/VLSI-LLM/internal/graph"
	"github.com/wadmes/VLSI-LLM/internal/netlist"
	"github.com/wadmes/VLSI-LLM/internal/paths"
	"github.com/wadmes/VLSI-LLM/internal/store"
	"github.com/wadmes/VLSI-LLM/internal/summary"
)

// netlistCSVHeader is the versioned column list of netlist.csv.
var netlistCSVHeader = []string{
	"id", "rtl_id", "generic_effort", "mapping_effort", "optimization_effort", "graphgen_status",
	"#input", "#output", "#node", "#edge", "indegree_distribution", "outdegree_distribution",
	"#not_node", "#nand_node", "#nor_node", "#xor_node", "#xnor_node", "#input_node", "#0_node",
	"#1_node", "#x_node", "#buf_node", "#and_node", "#or_node", "#bb_input_node", "#bb_output_node",
	"verilog_file_length",
}

// NetlistEntry is one netlist.json entry, keyed in the file by its sequence id.
type NetlistEntry struct {
	RTLID            int    `json:"rtl_id"`
	SynthesisEfforts string `json:"synthesis_efforts"`
	GraphgenStatus   bool   `json:"graphgen_status"`
}

// NetlistOptions configures the netlist-side aggregation.
type NetlistOptions struct {
	DataDir  string
	Combos   []string // canonical effort strings, in sweep order
	Netlists *store.NetlistRepository
}

// BuildNetlist enumerates every (synthesis-success design, effort combo),
// assigns sequence ids, copies the netlist and synthesis log into the
// canonical directories, upserts the record store and writes netlist.json
// and netlist.csv. Graphgen failures are kept with status=false, never
// silently dropped.
func BuildNetlist(opts NetlistOptions) error {
	synth, found, err := summary.LoadSynthesis(summary.SynthesisPath(opts.DataDir))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no synthesis summary under %s", opts.DataDir)
	}

	fails, err := netlist.LoadFails(paths.NetlistGraphgenFail(opts.DataDir))
	if err != nil {
		return err
	}
	failed := make(map[string]bool, len(fails))
	for _, f := range fails {
		failed[fmt.Sprintf("%d_%s", f.RTLID, f.Effort)] = true
	}

	for _, dir := range []string{paths.NetlistVerilogDir(opts.DataDir), paths.NetlistLogDir(opts.DataDir)} {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}

	success := append([]int(nil), synth.Success...)
	sort.Ints(success)

	entries := make(map[int]*NetlistEntry)
	seq := 0
	for _, rtlID := range success {
		for _, combo := range opts.Combos {
			entry := &NetlistEntry{
				RTLID:            rtlID,
				SynthesisEfforts: combo,
				GraphgenStatus:   !failed[fmt.Sprintf("%d_%s", rtlID, combo)],
			}

			if entry.GraphgenStatus {
				if err := copyNetlistArtifacts(opts.DataDir, rtlID, combo); err != nil {
					// Success claimed by the summary but artifacts missing:
					// flag the record instead of dropping it.
					conflict := &MergeConflictError{
						Key:    fmt.Sprintf("%d_%s", rtlID, combo),
						Reason: err.Error(),
					}
					log.Printf("Netlist: %v", conflict)
					entry.GraphgenStatus = false
				}
			}

			if err := opts.Netlists.Upsert(&store.NetlistRecord{
				RTLID:          rtlID,
				Efforts:        combo,
				GraphgenStatus: entry.GraphgenStatus,
			}); err != nil {
				return err
			}

			entries[seq] = entry
			seq++
		}
	}

	keys := make([]int, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	if err := writeFileAtomic(paths.NetlistJSON(opts.DataDir), func(w io.Writer) error {
		return writeOrderedJSON(w, keys, func(k int) (any, error) {
			return entries[k], nil
		})
	}); err != nil {
		return fmt.Errorf("write netlist.json: %w", err)
	}

	if err := writeNetlistCSV(opts, keys, entries); err != nil {
		return fmt.Errorf("write netlist.csv: %w", err)
	}

	log.Printf("Aggregate: %d netlist records written (%d graphgen failures)", len(entries), len(fails))
	return nil
}

func copyNetlistArtifacts(dataDir string, rtlID int, combo string) error {
	if err := copyFile(paths.NetlistFile(dataDir, rtlID, combo), paths.NetlistVerilogArtifact(dataDir, rtlID, combo)); err != nil {
		return err
	}
	return copyFile(paths.SynthesisLog(dataDir, rtlID, combo), paths.NetlistLogArtifact(dataDir, rtlID, combo))
}

func writeNetlistCSV(opts NetlistOptions, keys []int, entries map[int]*NetlistEntry) error {
	return writeFileAtomic(paths.NetlistCSV(opts.DataDir), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(netlistCSVHeader); err != nil {
			return err
		}
		for _, k := range keys {
			entry := entries[k]
			if err := cw.Write(netlistCSVRow(opts.DataDir, k, entry)); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func netlistCSVRow(dataDir string, seq int, entry *NetlistEntry) []string {
	efforts := strings.SplitN(entry.SynthesisEfforts, "_", 3)
	for len(efforts) < 3 {
		efforts = append(efforts, "")
	}

	var stats graph.Stats
	if entry.GraphgenStatus {
		g, err := graph.ReadFile(paths.NetlistGraphArtifact(dataDir, entry.RTLID, entry.SynthesisEfforts))
		if err != nil {
			log.Printf("Netlist %d_%s: %v", entry.RTLID, entry.SynthesisEfforts, err)
		} else {
			stats = graph.ComputeStats(g)
		}
	}

	fileLength := 0
	if data, err := os.ReadFile(paths.NetlistVerilogArtifact(dataDir, entry.RTLID, entry.SynthesisEfforts)); err == nil {
		fileLength = len(data)
	}

	row := []string{
		strconv.Itoa(seq),
		strconv.Itoa(entry.RTLID),
		efforts[0], efforts[1], efforts[2],
		boolToCSV(entry.GraphgenStatus),
		strconv.Itoa(stats.TypeCount[graph.TypeInput]),
		strconv.Itoa(stats.OutputCount[1]),
		strconv.Itoa(stats.NodeCount),
		strconv.Itoa(stats.EdgeCount),
		jsonDistribution(stats.InDegree),
		jsonDistribution(stats.OutDegree),
	}
	for _, t := range []int{
		graph.TypeNot, graph.TypeNand, graph.TypeNor, graph.TypeXor, graph.TypeXnor,
		graph.TypeInput, graph.TypeConst0, graph.TypeConst1, graph.TypeConstX,
		graph.TypeBuf, graph.TypeAnd, graph.TypeOr, graph.TypeBBInput, graph.TypeBBOutput,
	} {
		row = append(row, strconv.Itoa(stats.TypeCount[t]))
	}
	return append(row, strconv.Itoa(fileLength))
}
