package netlist

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sort"
	"sync"

	"github.com/wadmes/VLSI-LLM/internal/paths"
)

// FailRef records one failed extraction attempt by its composite key.
type FailRef struct {
	RTLID  int    `json:"rtl_id"`
	Effort string `json:"effort"`
}

// BatchOptions configures a batch extraction over synthesis-success designs.
type BatchOptions struct {
	DataDir string
	Workers int
	// Combos are the canonical effort strings attempted per design.
	Combos []string
	// Extra black boxes recognized on top of the built-in flop families.
	BlackBoxes []BlackBox
}

// ExtractBatch turns every (rtl_id, combo) netlist into a graph artifact.
// Transform failures are recorded per key in the returned fail list (and in
// netlist_graphgen_fail.json) while the rest of the batch continues.
func ExtractBatch(ctx context.Context, rtlIDs []int, opts BatchOptions) ([]FailRef, error) {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if err := os.MkdirAll(paths.NetlistGraphDir(opts.DataDir), 0755); err != nil {
		return nil, fmt.Errorf("create graph dir: %w", err)
	}

	type task struct {
		rtlID int
		combo string
	}
	tasks := make([]task, 0, len(rtlIDs)*len(opts.Combos))
	for _, id := range rtlIDs {
		for _, combo := range opts.Combos {
			tasks = append(tasks, task{rtlID: id, combo: combo})
		}
	}

	fails := make([][]FailRef, opts.Workers)
	var wg sync.WaitGroup
	for w := 0; w < opts.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			for i := w; i < len(tasks); i += opts.Workers {
				if ctx.Err() != nil {
					return
				}
				t := tasks[i]
				if err := extractOne(t.rtlID, t.combo, opts); err != nil {
					log.Printf("Netlist %d_%s: %v", t.rtlID, t.combo, err)
					fails[w] = append(fails[w], FailRef{RTLID: t.rtlID, Effort: t.combo})
				}
			}
		}(w)
	}
	wg.Wait()

	var all []FailRef
	for _, part := range fails {
		all = append(all, part...)
	}
	sort.Slice(all, func(i, j int) bool {
		if all[i].RTLID != all[j].RTLID {
			return all[i].RTLID < all[j].RTLID
		}
		return all[i].Effort < all[j].Effort
	})

	if err := saveFails(paths.NetlistGraphgenFail(opts.DataDir), all); err != nil {
		return all, err
	}

	log.Printf("Netlist graphs: %d attempted, %d failed", len(tasks), len(all))
	return all, ctx.Err()
}

func extractOne(rtlID int, combo string, opts BatchOptions) error {
	g, err := ExtractFile(paths.NetlistFile(opts.DataDir, rtlID, combo), opts.BlackBoxes...)
	if err != nil {
		return err
	}
	return g.WriteFile(paths.NetlistGraphArtifact(opts.DataDir, rtlID, combo))
}

func saveFails(path string, fails []FailRef) error {
	if fails == nil {
		fails = []FailRef{}
	}
	data, err := json.MarshalIndent(fails, "", "  ")
	if err != nil {
		return err
	}
	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return err
	}
	return os.Rename(tmp, path)
}

// LoadFails reads a previously persisted fail list; missing file is empty.
func LoadFails(path string) ([]FailRef, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	var fails []FailRef
	if err := json.Unmarshal(data, &fails); err != nil {
		return nil, fmt.Errorf("decode fail list %s: %w", path, err)
	}
	return fails, nil
}
