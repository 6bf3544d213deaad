package main

import (
	"context"
	"flag"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/wadmes/VLSI-LLM/config"
	"github.com/wadmes/VLSI-LLM/internal/anonymize"
	"github.com/wadmes/VLSI-LLM/internal/dataset"
	"github.com/wadmes/VLSI-LLM/internal/store"
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

	db, err := store.Open(&cfg.Database, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}
	designs := store.NewDesignRepository(db)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	it, err := dataset.Open(cfg.Dataset.Format, cfg.Dataset.Path)
	if err != nil {
		log.Fatalf("Failed to open dataset: %v", err)
	}

	var records []dataset.Record
	err = dataset.ForEach(it, func(rec dataset.Record) error {
		records = append(records, rec)
		return registerDesign(designs, cfg.Dataset.PromptType, rec)
	}, func(index int, err error) {
		log.Printf("Design %d: skipped: %v", index, err)
	})
	if err != nil {
		log.Fatalf("Failed to read dataset: %v", err)
	}
	log.Printf("Dataset: %d designs loaded from %s", len(records), cfg.Dataset.Path)

	orch := synthesis.New(synthesis.Options{
		DataDir:    cfg.DataDir,
		Binary:     cfg.Synthesis.Binary,
		Library:    cfg.Synthesis.Library,
		Timeout:    cfg.Synthesis.Timeout(),
		Workers:    cfg.Synthesis.Workers,
		Efforts:    cfg.Synthesis.Efforts,
		PromptType: cfg.Dataset.PromptType,
	})
	merged, err := orch.Run(ctx, records)
	if err != nil && err != context.Canceled {
		log.Fatalf("Synthesis run failed: %v", err)
	}

	if err := foldStatuses(designs, merged); err != nil {
		log.Fatalf("Failed to update record store: %v", err)
	}
	if ctx.Err() != nil {
		log.Printf("Synthesis interrupted; summary and records reflect completed designs")
	}
}

// registerDesign upserts the design's source fields so later stages can read
// them without the dataset file.
func registerDesign(designs *store.DesignRepository, promptType string, rec dataset.Record) error {
	record := &store.DesignRecord{
		RTLID:           rec.Index,
		SynthesisStatus: store.StatusPending,
		ModuleCount:     len(anonymize.ModuleNames(rec.Verilog)),
	}
	if promptType == "description" {
		record.Description = rec.Prompt
	} else {
		record.Instruction = rec.Prompt
	}
	return designs.Ensure(record)
}

func foldStatuses(designs *store.DesignRepository, merged summary.Synthesis) error {
	for _, id := range merged.Success {
		if err := designs.SetSynthesisStatus(id, store.StatusSuccess); err != nil {
			return err
		}
	}
	for _, id := range merged.Timeout {
		if err := designs.SetSynthesisStatus(id, store.StatusTimeout); err != nil {
			return err
		}
	}
	for _, id := range merged.Fail {
		if err := designs.SetSynthesisStatus(id, store.StatusFailure); err != nil {
			return err
		}
	}
	return nil
}
