// Package dataflow drives the external HDL parser over every design: a
// design-level syntax check, then per-module dataflow analysis and graph
// generation. Failures are isolated at module granularity so one bad module
// never sinks its siblings.
package dataflow

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"strings"
	"sync"
	"time"

	"github.com/wadmes/VLSI-LLM/internal/anonymize"
	"github.com/wadmes/VLSI-LLM/internal/graph"
	"github.com/wadmes/VLSI-LLM/internal/paths"
	"github.com/wadmes/VLSI-LLM/internal/runner"
	"github.com/wadmes/VLSI-LLM/internal/summary"
)

// Options configures one dataflow run. The three tools are opaque
// executables: the parser prints a syntax report, the analyzer prints a
// per-module dataflow report, the graph generator prints a JSON graph.
type Options struct {
	DataDir        string
	Parser         string
	Analyzer       string
	GraphGenerator string
	Timeout        time.Duration
	Workers        int
}

type Orchestrator struct {
	opts Options
}

func New(opts Options) *Orchestrator {
	if opts.Workers <= 0 {
		opts.Workers = 1
	}
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	return &Orchestrator{opts: opts}
}

// designResult carries one design's contribution to the run summary.
type designResult struct {
	rtlID     int
	syntaxOK  bool
	successes []summary.ModuleRef
	failures  []summary.ModuleRef
}

// Run analyzes the given designs and returns the merged run summary.
// Designs fully successful in a prior summary (syntax passed and no module
// failed) are skipped.
func (o *Orchestrator) Run(ctx context.Context, rtlIDs []int) (summary.Dataflow, error) {
	summaryPath := summary.DataflowPath(o.opts.DataDir)
	prev, resumed, err := summary.LoadDataflow(summaryPath)
	if err != nil {
		return summary.Dataflow{}, err
	}

	pending := rtlIDs[:0:0]
	for _, id := range rtlIDs {
		if resumed && fullySucceeded(prev, id) {
			continue
		}
		pending = append(pending, id)
	}
	if resumed {
		log.Printf("Dataflow: resuming, %d of %d designs already done", len(rtlIDs)-len(pending), len(rtlIDs))
	}

	if err := os.MkdirAll(paths.DataflowDir(o.opts.DataDir), 0755); err != nil {
		return summary.Dataflow{}, fmt.Errorf("create dataflow dir: %w", err)
	}

	partials := make([]summary.Dataflow, o.opts.Workers)
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
				res := o.processDesign(ctx, pending[i])
				if ctx.Err() != nil {
					// Interrupted mid-design: leave it unrecorded so the
					// next run re-attempts it.
					return
				}
				if res.syntaxOK {
					part.SyntaxSuccess = append(part.SyntaxSuccess, res.rtlID)
				} else {
					part.SyntaxFail = append(part.SyntaxFail, res.rtlID)
				}
				part.DataflowSuccess = append(part.DataflowSuccess, res.successes...)
				part.DataflowFail = append(part.DataflowFail, res.failures...)
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

	var run summary.Dataflow
	for _, part := range partials {
		run.SyntaxSuccess = append(run.SyntaxSuccess, part.SyntaxSuccess...)
		run.SyntaxFail = append(run.SyntaxFail, part.SyntaxFail...)
		run.DataflowSuccess = append(run.DataflowSuccess, part.DataflowSuccess...)
		run.DataflowFail = append(run.DataflowFail, part.DataflowFail...)
	}
	merged := summary.MergeDataflow(prev, run)
	if err := merged.Save(summaryPath); err != nil {
		return summary.Dataflow{}, fmt.Errorf("write dataflow summary: %w", err)
	}
	summary.RemovePartials(summaryPath, o.opts.Workers)

	log.Printf("Dataflow: %d syntax ok, %d syntax fail, %d modules ok, %d modules fail (this run: %d designs)",
		len(merged.SyntaxSuccess), len(merged.SyntaxFail),
		len(merged.DataflowSuccess), len(merged.DataflowFail), len(pending))

	if ctx.Err() != nil {
		return merged, ctx.Err()
	}
	return merged, nil
}

// fullySucceeded reports whether a prior summary already has this design
// syntax-clean with no failed modules.
func fullySucceeded(s summary.Dataflow, rtlID int) bool {
	if !summary.Contains(s.SyntaxSuccess, rtlID) {
		return false
	}
	for _, ref := range s.DataflowFail {
		if ref.RTLID == rtlID {
			return false
		}
	}
	return true
}

func (o *Orchestrator) processDesign(ctx context.Context, rtlID int) designResult {
	res := designResult{rtlID: rtlID}

	outputDir := paths.DesignDataflowDir(o.opts.DataDir, rtlID)
	if err := os.MkdirAll(outputDir, 0755); err != nil {
		log.Printf("Design %d: %v", rtlID, err)
		return res
	}
	rtlFile := paths.RTLFile(o.opts.DataDir, rtlID)

	res.syntaxOK = o.analyzeSyntax(ctx, rtlID, rtlFile, outputDir)

	src, err := os.ReadFile(rtlFile)
	if err != nil {
		log.Printf("Design %d: read rtl: %v", rtlID, err)
		return res
	}

	for _, module := range anonymize.ModuleNames(string(src)) {
		ref := summary.ModuleRef{RTLID: rtlID, Module: module}
		if !o.analyzeModule(ctx, rtlFile, outputDir, module) {
			res.failures = append(res.failures, ref)
			continue
		}
		if !o.generateGraph(ctx, rtlID, rtlFile, outputDir, module) {
			res.failures = append(res.failures, ref)
			continue
		}
		res.successes = append(res.successes, ref)
	}
	return res
}

// analyzeSyntax runs the parser; a clean exit with non-empty output is a pass
// and the report is kept next to the module artifacts.
func (o *Orchestrator) analyzeSyntax(ctx context.Context, rtlID int, rtlFile, outputDir string) bool {
	outcome := runner.Run(ctx, runner.Job{
		Index:   rtlID,
		Dir:     outputDir,
		Command: []string{o.opts.Parser, rtlFile},
		Timeout: o.opts.Timeout,
	})
	if outcome.Status != runner.Success || len(outcome.Stdout) == 0 {
		return false
	}
	if err := os.WriteFile(outputDir+"/syntax.txt", outcome.Stdout, 0644); err != nil {
		log.Printf("Design %d: write syntax report: %v", rtlID, err)
		return false
	}
	return true
}

func (o *Orchestrator) analyzeModule(ctx context.Context, rtlFile, outputDir, module string) bool {
	outcome := runner.Run(ctx, runner.Job{
		Dir:     outputDir,
		Command: []string{o.opts.Analyzer, "-t", module, rtlFile},
		Timeout: o.opts.Timeout,
	})
	if outcome.Status != runner.Success || len(outcome.Stdout) == 0 {
		return false
	}
	if err := os.WriteFile(outputDir+"/"+module+".txt", outcome.Stdout, 0644); err != nil {
		return false
	}
	return true
}

// generateGraph runs the graph generator and validates its JSON output
// before persisting the artifact. A failure here also removes the module's
// analysis report so no half-processed module looks done.
func (o *Orchestrator) generateGraph(ctx context.Context, rtlID int, rtlFile, outputDir, module string) bool {
	outcome := runner.Run(ctx, runner.Job{
		Dir:     outputDir,
		Command: []string{o.opts.GraphGenerator, "-t", module, rtlFile},
		Timeout: o.opts.Timeout,
	})
	if outcome.Status != runner.Success {
		os.Remove(outputDir + "/" + module + ".txt")
		return false
	}

	var g graph.Digraph
	if err := json.Unmarshal(outcome.Stdout, &g); err != nil {
		log.Printf("Design %d: module %s: bad graph output: %v", rtlID, module, err)
		os.Remove(outputDir + "/" + module + ".txt")
		return false
	}
	// Dataflow nodes are op_* (operation label) or signal_*; signals carry a
	// fixed label so the type distribution is well defined downstream.
	for i := range g.Nodes {
		if g.Nodes[i].Label == "" && strings.HasPrefix(g.Nodes[i].Name, "signal_") {
			g.Nodes[i].Label = "Signal"
		}
	}
	if err := g.WriteFile(paths.ModuleGraphFile(o.opts.DataDir, rtlID, module)); err != nil {
		log.Printf("Design %d: module %s: write graph: %v", rtlID, module, err)
		os.Remove(outputDir + "/" + module + ".txt")
		return false
	}
	return true
}
