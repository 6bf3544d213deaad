// Package synthesis drives the external logic-synthesis tool over every
// design with a bounded worker pool, sweeping all effort combinations and
// folding per-worker results into the run summary.
package synthesis

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"
	"time"

	"github.com/wadmes/VLSI-LLM/internal/dataset"
	"github.com/wadmes/VLSI-LLM/internal/paths"
	"github.com/wadmes/VLSI-LLM/internal/runner"
	"github.com/wadmes/VLSI-LLM/internal/summary"
)

// Options configures one synthesis run.
type Options struct {
	DataDir    string
	Binary     string
	Library    string
	Timeout    time.Duration
	Workers    int
	Efforts    []string
	PromptType string // "instruction" or "description"
}

type Orchestrator struct {
	opts Options
}

func New(opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if len(opts.Efforts) == 0 {
		opts.Efforts = []string{"low", "medium", "high"}
	}
	if opts.PromptType == "" {
		opts.PromptType = "instruction"
	}
	return &Orchestrator{opts: opts}
}

// Run sweeps every design across all effort combos and returns the merged
// run summary. Designs already successful in a prior summary for the same
// data directory are skipped; the merged summary supersedes prior entries for
// everything re-attempted here.
func (o *Orchestrator) Run(ctx context.Context, records []dataset.Record) (summary.Synthesis, error) {
	summaryPath := summary.SynthesisPath(o.opts.DataDir)
	prev, resumed, err := summary.LoadSynthesis(summaryPath)
	if err != nil {
		return summary.Synthesis{}, err
	}

	pending := records[:0:0]
	for _, rec := range records {
		if resumed && summary.Contains(prev.Success, rec.Index) {
			continue
		}
		pending = append(pending, rec)
	}
	if resumed {
		log.Printf("Synthesis: resuming, %d of %d designs already done", len(records)-len(pending), len(records))
	}

	if err := os.MkdirAll(paths.SynthesisDir(o.opts.DataDir), 0755); err != nil {
		return summary.Synthesis{}, fmt.Errorf("create synthesis dir: %w", err)
	}

	// Static round-robin assignment: worker w owns pending[w], pending[w+N],
	// ... so no design is ever scheduled twice and workers share no state.
	partials := make([]summary.Synthesis, o.opts.Workers)
	var wg sync.WaitGroup
	for w := 0; w < o.opts.Workers; w++ {
		wg.Add(1)
		go func(w int) {
			defer wg.Done()
			part := &partials[w]
			done := 0
			for i := w; i < len(pending); i += o.opts.Workers {
				if ctx.Err() != nil {
					return
				}
				rec := pending[i]
				status := o.processDesign(ctx, rec)
				if ctx.Err() != nil {
					// Interrupted mid-design: leave it unrecorded so the
					// next run re-attempts it instead of inheriting a
					// shutdown-induced failure.
					return
				}
				switch status {
				case runner.Success:
					part.Success = append(part.Success, rec.Index)
				case runner.Timeout:
					part.Timeout = append(part.Timeout, rec.Index)
				default:
					part.Fail = append(part.Fail, rec.Index)
				}
				done++
				if done%20 == 0 {
					if err := summary.SavePartial(summaryPath, w, *part); err != nil {
						log.Printf("Worker %d: failed to save partial: %v", w, err)
					}
				}
			}
			if err := summary.SavePartial(summaryPath, w, *part); err != nil {
				log.Printf("Worker %d: failed to save partial: %v", w, err)
			}
		}(w)
	}
	wg.Wait()

	// Single-writer reduce over the per-worker partials.
	var run summary.Synthesis
	for _, part := range partials {
		run.Success = append(run.Success, part.Success...)
		run.Timeout = append(run.Timeout, part.Timeout...)
		run.Fail = append(run.Fail, part.Fail...)
	}
	merged := summary.MergeSynthesis(prev, run)
	if err := merged.Save(summaryPath); err != nil {
		return summary.Synthesis{}, fmt.Errorf("write synthesis summary: %w", err)
	}
	summary.RemovePartials(summaryPath, o.opts.Workers)

	log.Printf("Synthesis: %d success, %d timeout, %d failure (this run: %d designs)",
		len(merged.Success), len(merged.Timeout), len(merged.Fail), len(pending))

	if ctx.Err() != nil {
		return merged, ctx.Err()
	}
	return merged, nil
}

// processDesign writes the design's working tree and sweeps all effort
// combos. The first combo that times out or fails aborts the rest: a design
// only counts as success when every combo produced a netlist.
func (o *Orchestrator) processDesign(ctx context.Context, rec dataset.Record) runner.Status {
	designDir := paths.DesignDir(o.opts.DataDir, rec.Index)
	if err := os.MkdirAll(designDir, 0755); err != nil {
		log.Printf("Design %d: %v", rec.Index, err)
		return runner.Failure
	}
	if err := os.WriteFile(paths.RTLFile(o.opts.DataDir, rec.Index), []byte(rec.Verilog), 0644); err != nil {
		log.Printf("Design %d: %v", rec.Index, err)
		return runner.Failure
	}
	promptFile := paths.PromptFile(o.opts.DataDir, rec.Index, o.opts.PromptType)
	if err := os.WriteFile(promptFile, []byte(rec.Prompt), 0644); err != nil {
		log.Printf("Design %d: %v", rec.Index, err)
		return runner.Failure
	}

	for _, combo := range AllCombos(o.opts.Efforts) {
		workDir := paths.EffortDir(o.opts.DataDir, rec.Index, combo.String())
		if err := os.MkdirAll(workDir, 0755); err != nil {
			log.Printf("Design %d: %v", rec.Index, err)
			return runner.Failure
		}

		cmds := synthesisScript(combo, o.opts.Library)
		if err := os.WriteFile(workDir+"/cmd.tcl", []byte(scriptFileContents(cmds)), 0644); err != nil {
			log.Printf("Design %d: %v", rec.Index, err)
			return runner.Failure
		}

		outcome := runner.Run(ctx, runner.Job{
			Index:   rec.Index,
			Dir:     workDir,
			Command: launchCommand(o.opts.Binary, cmds),
			Timeout: o.opts.Timeout,
			Outputs: []string{"syn.v"},
		})
		if outcome.Status != runner.Success {
			log.Printf("Design %d: effort %s %s: %v", rec.Index, combo, outcome.Status, outcome.Err)
			return outcome.Status
		}
	}
	return runner.Success
}
