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
	"github.com/wadmes/VLSI-LLM/internal/netlist"
	"github.com/wadmes/VLSI-LLM/internal/summary"
	"github.com/wadmes/VLSI-LLM/internal/synthesis"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	synth, found, err := summary.LoadSynthesis(summary.SynthesisPath(cfg.DataDir))
	if err != nil {
		log.Fatalf("Failed to load synthesis summary: %v", err)
	}
	if !found {
		log.Fatalf("No synthesis summary under %s; run synthesize first", cfg.DataDir)
	}
	rtlIDs := append([]int(nil), synth.Success...)
	sort.Ints(rtlIDs)

	combos := synthesis.ComboStrings(cfg.Synthesis.Efforts)
	log.Printf("Extracting graphs for %d designs x %d effort combos", len(rtlIDs), len(combos))

	fails, err := netlist.ExtractBatch(ctx, rtlIDs, netlist.BatchOptions{
		DataDir: cfg.DataDir,
		Workers: cfg.Netlist.Workers,
		Combos:  combos,
	})
	if err != nil && err != context.Canceled {
		log.Fatalf("Netlist extraction failed: %v", err)
	}
	for _, f := range fails {
		log.Printf("Graph transform failed: design %d effort %s", f.RTLID, f.Effort)
	}
	if ctx.Err() != nil {
		log.Printf("Extraction interrupted; fail list reflects completed work")
	}
}
