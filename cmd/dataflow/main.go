package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"sort"
	"syscall"

	"github.com/wadmes/VLSI-LLM/config"
	"github.com/wadmes/VLSI-LLM/internal/dataflow"
	"github.com/wadmes/VLSI-LLM/internal/store"
	"github.com/wadmes/VLSI-LLM/internal/summary"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := store.Open(&cfg.Database, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	designs := store.NewDesignRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// The dataflow stage covers every design the synthesis stage attempted,
	// successful or not: parse results are independent of synthesis results.
	synth, found, err := summary.LoadSynthesis(summary.SynthesisPath(cfg.DataDir))
	if err != nil {
		log.Fatalf("Failed to load synthesis summary: %v", err)
	}
	if !found {
		log.Fatalf("No synthesis summary under %s; run synthesize first", cfg.DataDir)
	}
	var rtlIDs []int
	for id := range synth.Attempted() {
		rtlIDs = append(rtlIDs, id)
	}
	sort.Ints(rtlIDs)

	orch := dataflow.New(dataflow.Options{
		DataDir:        cfg.DataDir,
		Parser:         cfg.Dataflow.Parser,
		Analyzer:       cfg.Dataflow.Analyzer,
		GraphGenerator: cfg.Dataflow.GraphGenerator,
		Timeout:        cfg.Dataflow.Timeout(),
		Workers:        cfg.Dataflow.Workers,
	})
	merged, err := orch.Run(ctx, rtlIDs)
	if err != nil && err != context.Canceled {
		log.Fatalf("Dataflow run failed: %v", err)
	}

	for _, id := range rtlIDs {
		attempted := summary.Contains(merged.SyntaxSuccess, id) || summary.Contains(merged.SyntaxFail, id)
		if !attempted {
			continue
		}
		if err := designs.SetDataflowStatus(id, merged.DesignOK(id)); err != nil {
			log.Fatalf("Failed to update record store: %v", err)
		}
	}
	if ctx.Err() != nil {
		log.Printf("Dataflow interrupted; summary and records reflect completed designs")
	}
}
