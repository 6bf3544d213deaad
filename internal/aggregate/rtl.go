package aggregate

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"sort"
	"strconv"

	"github.com/wadmes/VLSI-LLM/internal/anonymize"
	"github.com/wadmes/VLSI-LLM/internal/graph"
	"github.com/wadmes/VLSI-LLM/internal/paths"
	"github.com/wadmes/VLSI-LLM/internal/store"
	"github.com/wadmes/VLSI-LLM/internal/summary"
)

// rtlCSVHeader is the versioned column list of rtl.csv; order and presence
// are a contract with downstream tooling.
var rtlCSVHeader = []string{
	"rtl_id", "module_number", "module_name_list", "dataflow_status", "synthesis_status",
	"GPT_4o_label", "Llama3_70b_label", "consistent_label", "verilog_file_length",
	"#dataflow_node", "#dataflow_edge",
	"dataflow_node_type_distribution", "dataflow_node_in_degree_distribution", "dataflow_node_out_degree_distribution",
}

// RTLRecord is one rtl.json entry. Every field is always present; labels not
// yet produced are empty strings so the schema shape is stable across
// partial pipeline runs.
type RTLRecord struct {
	Verilog           string            `json:"verilog"`
	AnonymizedVerilog string            `json:"anonymized_verilog"`
	Mapping           map[string]string `json:"mapping"`
	Instruction       string            `json:"instruction"`
	Description       string            `json:"description"`
	SynthesisStatus   bool              `json:"synthesis_status"`
	DataflowStatus    bool              `json:"dataflow_status"`
	Labels            map[string]string `json:"labels"`
	ConsistentLabel   string            `json:"consistent_label"`
}

// RTLOptions configures the RTL-side aggregation.
type RTLOptions struct {
	DataDir    string
	PromptType string
	Designs    *store.DesignRepository
	Labels     *store.LabelRepository
	// ModelNames are the configured label sources; each gets a key in every
	// record's labels map, empty when that model has not run.
	ModelNames []string
}

// BuildRTL merges the synthesis and dataflow summaries, the record store and
// the on-disk artifacts into rtl.json and rtl.csv, and copies the per-module
// dataflow graphs into the canonical artifact directory.
func BuildRTL(opts RTLOptions) error {
	synth, found, err := summary.LoadSynthesis(summary.SynthesisPath(opts.DataDir))
	if err != nil {
		return err
	}
	if !found {
		return fmt.Errorf("no synthesis summary under %s", opts.DataDir)
	}
	flow, flowFound, err := summary.LoadDataflow(summary.DataflowPath(opts.DataDir))
	if err != nil {
		return err
	}

	labels, err := opts.Labels.All()
	if err != nil {
		return err
	}

	if err := os.MkdirAll(paths.RTLDataDir(opts.DataDir), 0755); err != nil {
		return err
	}

	moduleOK := make(map[summary.ModuleRef]bool, len(flow.DataflowSuccess))
	if flowFound {
		if err := os.MkdirAll(paths.DataflowGraphDir(opts.DataDir), 0755); err != nil {
			return err
		}
		for _, ref := range flow.DataflowSuccess {
			moduleOK[ref] = true
			src := paths.ModuleGraphFile(opts.DataDir, ref.RTLID, ref.Module)
			dst := paths.DataflowGraphArtifact(opts.DataDir, ref.RTLID, ref.Module)
			if err := copyFile(src, dst); err != nil {
				log.Printf("Design %d: module %s: %v", ref.RTLID, ref.Module, err)
			}
		}
	}

	var ids []int
	for id := range synth.Attempted() {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	records := make(map[int]*RTLRecord, len(ids))
	for _, id := range ids {
		rec, err := buildRTLRecord(opts, id, synth, flowFound, moduleOK, labels[id])
		if err != nil {
			log.Printf("Design %d: %v", id, err)
			continue
		}
		records[id] = rec
	}

	kept := make([]int, 0, len(records))
	for id := range records {
		kept = append(kept, id)
	}
	sort.Ints(kept)

	if err := writeFileAtomic(paths.RTLJSON(opts.DataDir), func(w io.Writer) error {
		return writeOrderedJSON(w, kept, func(id int) (any, error) {
			return records[id], nil
		})
	}); err != nil {
		return fmt.Errorf("write rtl.json: %w", err)
	}

	if err := writeRTLCSV(opts, kept, records); err != nil {
		return fmt.Errorf("write rtl.csv: %w", err)
	}

	log.Printf("Aggregate: %d design records written", len(kept))
	return nil
}

func buildRTLRecord(opts RTLOptions, rtlID int, synth summary.Synthesis, flowFound bool, moduleOK map[summary.ModuleRef]bool, modelLabels map[string]string) (*RTLRecord, error) {
	verilog, err := os.ReadFile(paths.RTLFile(opts.DataDir, rtlID))
	if err != nil {
		return nil, err
	}
	anon, mapping := anonymize.Modules(string(verilog))

	prompt, err := os.ReadFile(paths.PromptFile(opts.DataDir, rtlID, opts.PromptType))
	if err != nil {
		return nil, err
	}

	rec := &RTLRecord{
		Verilog:           string(verilog),
		AnonymizedVerilog: anon,
		Mapping:           mapping,
		SynthesisStatus:   summary.Contains(synth.Success, rtlID),
		Labels:            make(map[string]string, len(opts.ModelNames)),
	}
	if opts.PromptType == "instruction" {
		rec.Instruction = string(prompt)
	} else {
		rec.Description = string(prompt)
	}

	// Description generated by inst2desc lives in the record store.
	if stored, err := opts.Designs.Get(rtlID); err == nil {
		if rec.Description == "" {
			rec.Description = stored.Description
		}
	}

	if flowFound {
		modules := anonymize.ModuleNames(string(verilog))
		rec.DataflowStatus = len(modules) > 0
		for _, module := range modules {
			if !moduleOK[summary.ModuleRef{RTLID: rtlID, Module: module}] {
				rec.DataflowStatus = false
				break
			}
		}
	}

	for _, model := range opts.ModelNames {
		rec.Labels[model] = "" // explicit sentinel for "not yet computed"
	}
	if rec.SynthesisStatus {
		for model, prediction := range modelLabels {
			rec.Labels[model] = prediction
		}
	}
	rec.ConsistentLabel = consistentLabel(rec.Labels)
	return rec, nil
}

// consistentLabel returns the shared prediction when at least two sources
// agree, empty otherwise.
func consistentLabel(labels map[string]string) string {
	counts := make(map[string]int)
	for _, prediction := range labels {
		if prediction == "" {
			continue
		}
		counts[prediction]++
		if counts[prediction] >= 2 {
			return prediction
		}
	}
	return ""
}

func writeRTLCSV(opts RTLOptions, ids []int, records map[int]*RTLRecord) error {
	return writeFileAtomic(paths.RTLCSV(opts.DataDir), func(w io.Writer) error {
		cw := csv.NewWriter(w)
		if err := cw.Write(rtlCSVHeader); err != nil {
			return err
		}
		for _, id := range ids {
			rec := records[id]
			modules := anonymize.ModuleNames(rec.Verilog)

			var stats graph.Stats
			for _, module := range modules {
				path := paths.DataflowGraphArtifact(opts.DataDir, id, module)
				g, err := graph.ReadFile(path)
				if err != nil {
					continue
				}
				stats.Accumulate(graph.ComputeStats(g))
			}

			moduleList, _ := json.Marshal(modules)
			row := []string{
				strconv.Itoa(id),
				strconv.Itoa(len(modules)),
				string(moduleList),
				boolToCSV(rec.DataflowStatus),
				boolToCSV(rec.SynthesisStatus),
				rec.Labels["GPT_4o"],
				rec.Labels["Llama3_70b"],
				rec.ConsistentLabel,
				strconv.Itoa(len(rec.Verilog)),
				strconv.Itoa(stats.NodeCount),
				strconv.Itoa(stats.EdgeCount),
				jsonStringDistribution(stats.LabelCount),
				jsonDistribution(stats.InDegree),
				jsonDistribution(stats.OutDegree),
			}
			if err := cw.Write(row); err != nil {
				return err
			}
		}
		cw.Flush()
		return cw.Error()
	})
}

func boolToCSV(b bool) string {
	if b {
		return "1"
	}
	return "0"
}
