package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testConfig = `
dataset:
  path: /data/rtlcoder.jsonl
  format: rtlcoder

data_dir: /data/vlsi

synthesis:
  binary: genus
  library: slow.lib
  timeout_seconds: 3600
  workers: 8

dataflow:
  parser: parse_rtl
  analyzer: analyze_dataflow
  graph_generator: generate_graph

labeling:
  max_retries: 5
  models:
    - name: GPT_4o
      base_url: https://api.example.com/v1
      api_key: sk-test
      model: gpt-4o

database:
  driver: sqlite
`

func writeConfig(t *testing.T, dir, name, contents string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0644))
	return path
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", testConfig)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "rtlcoder", cfg.Dataset.Format)
	assert.Equal(t, "/data/vlsi", cfg.DataDir)
	assert.Equal(t, "genus", cfg.Synthesis.Binary)
	assert.Equal(t, time.Hour, cfg.Synthesis.Timeout())
	assert.Equal(t, 8, cfg.Synthesis.Workers)
	require.Len(t, cfg.Labeling.Models, 1)
	assert.Equal(t, "GPT_4o", cfg.Labeling.Models[0].Name)

	// Defaults applied where the file is silent.
	assert.Equal(t, "instruction", cfg.Dataset.PromptType)
	assert.Equal(t, []string{"low", "medium", "high"}, cfg.Synthesis.Efforts)
	assert.Equal(t, 1, cfg.Dataflow.Workers)
	assert.Equal(t, 30*time.Second, cfg.Dataflow.Timeout())
	assert.Equal(t, "sqlite", cfg.Database.Driver)
}

func TestLoad_LocalOverride(t *testing.T) {
	dir := t.TempDir()
	path := writeConfig(t, dir, "config.yaml", testConfig)
	writeConfig(t, dir, "config.local.yaml", `
dataset:
  path: /data/local.jsonl
  format: mgverilog
data_dir: /data/local
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "mgverilog", cfg.Dataset.Format)
	assert.Equal(t, "/data/local", cfg.DataDir)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "config.yaml"))
	assert.Error(t, err)
}
