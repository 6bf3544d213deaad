// Package summary persists the per-stage run summaries: fixed-shape index
// lists partitioning every index attempted in a run. Workers write private
// partial files; a single-writer merge folds them into the stage summary,
// and re-runs supersede older entries for re-attempted indices.
package summary

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
)

// Synthesis partitions the attempted index space of one synthesis run.
type Synthesis struct {
	Success []int `json:"success"`
	Timeout []int `json:"timeout"`
	Fail    []int `json:"fail"`
}

// ModuleRef identifies one module of one design in the dataflow lists.
type ModuleRef struct {
	RTLID  int    `json:"rtl_id"`
	Module string `json:"module"`
}

// Dataflow partitions the parse/dataflow results: design-level syntax lists
// and module-level dataflow lists.
type Dataflow struct {
	SyntaxSuccess   []int       `json:"syntax_success"`
	SyntaxFail      []int       `json:"syntax_fail"`
	DataflowSuccess []ModuleRef `json:"dataflow_success"`
	DataflowFail    []ModuleRef `json:"dataflow_fail"`
}

// SynthesisPath is the fixed location of the synthesis summary under dataDir.
func SynthesisPath(dataDir string) string {
	return filepath.Join(dataDir, "synthesis", "synthesis_result.json")
}

// DataflowPath is the fixed location of the dataflow summary under dataDir.
func DataflowPath(dataDir string) string {
	return filepath.Join(dataDir, "pyverilog", "pyverilog_analysis.json")
}

func load(path string, v any) (bool, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode summary %s: %w", path, err)
	}
	return true, nil
}

func save(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadSynthesis reads the summary at path; a missing file yields an empty
// summary and found=false.
func LoadSynthesis(path string) (Synthesis, bool, error) {
	var s Synthesis
	found, err := load(path, &s)
	return s, found, err
}

func (s Synthesis) Save(path string) error { return save(path, s) }

// LoadDataflow reads the summary at path; missing file yields empty summary.
func LoadDataflow(path string) (Dataflow, bool, error) {
	var s Dataflow
	found, err := load(path, &s)
	return s, found, err
}

func (s Dataflow) Save(path string) error { return save(path, s) }

// Partitions returns the three index lists of a synthesis summary.
func (s Synthesis) Partitions() [][]int {
	return [][]int{s.Success, s.Timeout, s.Fail}
}

// Attempted returns the set of all indices present in any partition.
func (s Synthesis) Attempted() map[int]bool {
	set := make(map[int]bool)
	for _, part := range s.Partitions() {
		for _, idx := range part {
			set[idx] = true
		}
	}
	return set
}

// DesignOK reports whether a design came through the dataflow stage clean:
// syntax passed, at least one module was analyzed, and none failed. A design
// with zero modules is not clean, matching how rtl.json scores it.
func (s Dataflow) DesignOK(rtlID int) bool {
	if !Contains(s.SyntaxSuccess, rtlID) {
		return false
	}
	for _, ref := range s.DataflowFail {
		if ref.RTLID == rtlID {
			return false
		}
	}
	for _, ref := range s.DataflowSuccess {
		if ref.RTLID == rtlID {
			return true
		}
	}
	return false
}

// Contains reports whether idx appears in the given list.
func Contains(list []int, idx int) bool {
	for _, v := range list {
		if v == idx {
			return true
		}
	}
	return false
}

// MergeSynthesis folds next into prev: indices attempted in next are removed
// from every prev partition first, so later runs supersede earlier entries
// and the partitions stay pairwise disjoint. All lists come back sorted.
func MergeSynthesis(prev, next Synthesis) Synthesis {
	attempted := next.Attempted()
	drop := func(list []int) []int {
		out := list[:0:0]
		for _, idx := range list {
			if !attempted[idx] {
				out = append(out, idx)
			}
		}
		return out
	}
	merged := Synthesis{
		Success: append(drop(prev.Success), next.Success...),
		Timeout: append(drop(prev.Timeout), next.Timeout...),
		Fail:    append(drop(prev.Fail), next.Fail...),
	}
	sort.Ints(merged.Success)
	sort.Ints(merged.Timeout)
	sort.Ints(merged.Fail)
	return merged
}

// MergeDataflow folds next into prev with the same supersede semantics;
// module lists are superseded at design granularity.
func MergeDataflow(prev, next Dataflow) Dataflow {
	attempted := make(map[int]bool)
	for _, idx := range next.SyntaxSuccess {
		attempted[idx] = true
	}
	for _, idx := range next.SyntaxFail {
		attempted[idx] = true
	}
	dropInts := func(list []int) []int {
		out := list[:0:0]
		for _, idx := range list {
			if !attempted[idx] {
				out = append(out, idx)
			}
		}
		return out
	}
	dropRefs := func(list []ModuleRef) []ModuleRef {
		out := list[:0:0]
		for _, ref := range list {
			if !attempted[ref.RTLID] {
				out = append(out, ref)
			}
		}
		return out
	}
	merged := Dataflow{
		SyntaxSuccess:   append(dropInts(prev.SyntaxSuccess), next.SyntaxSuccess...),
		SyntaxFail:      append(dropInts(prev.SyntaxFail), next.SyntaxFail...),
		DataflowSuccess: append(dropRefs(prev.DataflowSuccess), next.DataflowSuccess...),
		DataflowFail:    append(dropRefs(prev.DataflowFail), next.DataflowFail...),
	}
	sort.Ints(merged.SyntaxSuccess)
	sort.Ints(merged.SyntaxFail)
	sortRefs(merged.DataflowSuccess)
	sortRefs(merged.DataflowFail)
	return merged
}

func sortRefs(refs []ModuleRef) {
	sort.Slice(refs, func(i, j int) bool {
		if refs[i].RTLID != refs[j].RTLID {
			return refs[i].RTLID < refs[j].RTLID
		}
		return refs[i].Module < refs[j].Module
	})
}

// PartialPath names a worker's private partial-result file next to the final
// summary; crashed workers lose only their own partial.
func PartialPath(summaryPath string, worker int) string {
	return filepath.Join(filepath.Dir(summaryPath), fmt.Sprintf("partial_%d.json", worker))
}

// SavePartial writes a worker's partial summary.
func SavePartial(summaryPath string, worker int, v any) error {
	return save(PartialPath(summaryPath, worker), v)
}

// RemovePartials deletes the per-worker partial files after a merge.
func RemovePartials(summaryPath string, workers int) {
	for i := 0; i < workers; i++ {
		os.Remove(PartialPath(summaryPath, i))
	}
}
