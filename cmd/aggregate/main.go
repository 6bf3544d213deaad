package main

import (
	"flag"
	"log"

	"github.com/wadmes/VLSI-LLM/config"
	"github.com/wadmes/VLSI-LLM/internal/aggregate"
	"github.com/wadmes/VLSI-LLM/internal/paths"
	"github.com/wadmes/VLSI-LLM/internal/pkg/archive"
	"github.com/wadmes/VLSI-LLM/internal/store"
	"github.com/wadmes/VLSI-LLM/internal/synthesis"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to config file")
	upload := flag.Bool("upload", false, "archive canonical outputs to object storage")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	db, err := store.Open(&cfg.Database, cfg.DataDir)
	if err != nil {
		log.Fatalf("Failed to open record store: %v", err)
	}

	modelNames := make([]string, 0, len(cfg.Labeling.Models))
	for _, mc := range cfg.Labeling.Models {
		modelNames = append(modelNames, mc.Name)
	}

	if err := aggregate.BuildRTL(aggregate.RTLOptions{
		DataDir:    cfg.DataDir,
		PromptType: cfg.Dataset.PromptType,
		Designs:    store.NewDesignRepository(db),
		Labels:     store.NewLabelRepository(db),
		ModelNames: modelNames,
	}); err != nil {
		log.Fatalf("RTL aggregation failed: %v", err)
	}

	if err := aggregate.BuildNetlist(aggregate.NetlistOptions{
		DataDir:  cfg.DataDir,
		Combos:   synthesis.ComboStrings(cfg.Synthesis.Efforts),
		Netlists: store.NewNetlistRepository(db),
	}); err != nil {
		log.Fatalf("Netlist aggregation failed: %v", err)
	}

	if *upload {
		client, err := archive.NewClient(&cfg.OSS)
		if err != nil {
			log.Fatalf("Failed to connect object storage: %v", err)
		}
		if client == nil {
			log.Fatalf("Object storage not configured; cannot upload")
		}
		for prefix, dir := range map[string]string{
			"rtl_data":     paths.RTLDataDir(cfg.DataDir),
			"netlist_data": paths.NetlistDataDir(cfg.DataDir),
		} {
			if err := client.UploadDir(prefix, dir); err != nil {
				log.Fatalf("Upload %s failed: %v", prefix, err)
			}
		}
		log.Println("Canonical outputs archived")
	}
}
