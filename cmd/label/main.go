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
	"github.com/wadmes/VLSI-LLM/internal/labeler"
	"github.com/wadmes/VLSI-LLM/internal/store"
	"github.com/wadmes/VLSI-LLM/internal/summary"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	inst2desc := flag.Bool("inst2desc", false, "also rewrite instructions into description tone")
	parallel := flag.Int("parallel", 4, "concurrent requests per model")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if len(cfg.Labeling.Models) == 0 {
		log.Fatalf("No labeling models configured")
	}

	db, err := store.Open(&cfg.Database, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache, err := labeler.NewCache(ctx, &cfg.Redis)
	if err != nil {
		log.Fatalf("Failed to connect label cache: %v", err)
	}
	if cache != nil {
		defer cache.Close()
		log.Println("Label cache connected")
	}

	// Labels only make sense for designs with a complete netlist sweep.
	synth, found, err := summary.LoadSynthesis(summary.SynthesisPath(cfg.DataDir))
	if err != nil {
		log.Fatalf("Failed to load synthesis summary: %v", err)
	}
	if !found {
		log.Fatalf("No synthesis summary under %s; run synthesize first", cfg.DataDir)
	}
	rtlIDs := append([]int(nil), synth.Success...)
	sort.Ints(rtlIDs)
	log.Printf("Labeling %d synthesis-success designs", len(rtlIDs))

	clients := make([]*labeler.Client, 0, len(cfg.Labeling.Models))
	for _, mc := range cfg.Labeling.Models {
		clients = append(clients, labeler.NewClient(mc, cfg.Labeling.MaxRetries))
	}

	l := &labeler.Labeler{
		DataDir:    cfg.DataDir,
		PromptType: cfg.Dataset.PromptType,
		Clients:    clients,
		Cache:      cache,
		Designs:    store.NewDesignRepository(db),
		Labels:     store.NewLabelRepository(db),
		Parallel:   *parallel,
	}

	if err := l.PredictTypes(ctx, rtlIDs); err != nil && err != context.Canceled {
		log.Fatalf("Label prediction failed: %v", err)
	}
	if *inst2desc {
		if err := l.Inst2Desc(ctx, rtlIDs); err != nil && err != context.Canceled {
			log.Fatalf("Instruction rewrite failed: %v", err)
		}
	}
	if ctx.Err() != nil {
		log.Printf("Labeling interrupted; cached and stored labels are kept")
	}
}
