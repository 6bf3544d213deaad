package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Dataset   DatasetConfig   `mapstructure:"dataset"`
	DataDir   string          `mapstructure:"data_dir"`
	Synthesis SynthesisConfig `mapstructure:"synthesis"`
	Dataflow  DataflowConfig  `mapstructure:"dataflow"`
	Netlist   NetlistConfig   `mapstructure:"netlist"`
	Labeling  LabelingConfig  `mapstructure:"labeling"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	OSS       OSSConfig       `mapstructure:"oss"`
}

type DatasetConfig struct {
	Path string `mapstructure:"path"`
	// Format selects the source adapter: "rtlcoder" or "mgverilog".
	Format string `mapstructure:"format"`
	// PromptType is "instruction" or "description"; controls which prompt
	// file is written next to each rtl.sv and which rtl.json field it fills.
	PromptType string `mapstructure:"prompt_type"`
}

type SynthesisConfig struct {
	Binary         string   `mapstructure:"binary"`
	Library        string   `mapstructure:"library"`
	TimeoutSeconds int      `mapstructure:"timeout_seconds"`
	Workers        int      `mapstructure:"workers"`
	Efforts        []string `mapstructure:"efforts"`
}

type DataflowConfig struct {
	Parser         string `mapstructure:"parser"`
	Analyzer       string `mapstructure:"analyzer"`
	GraphGenerator string `mapstructure:"graph_generator"`
	TimeoutSeconds int    `mapstructure:"timeout_seconds"`
	Workers        int    `mapstructure:"workers"`
}

type NetlistConfig struct {
	Workers int `mapstructure:"workers"`
}

type LabelingConfig struct {
	Models     []ModelConfig `mapstructure:"models"`
	MaxRetries int           `mapstructure:"max_retries"`
}

type ModelConfig struct {
	Name    string `mapstructure:"name"`
	BaseURL string `mapstructure:"base_url"`
	APIKey  string `mapstructure:"api_key"`
	Model   string `mapstructure:"model"`
}

type DatabaseConfig struct {
	// Driver is "sqlite" (default, file under data_dir) or "mysql".
	Driver       string `mapstructure:"driver"`
	Path         string `mapstructure:"path"`
	Host         string `mapstructure:"host"`
	Port         int    `mapstructure:"port"`
	Username     string `mapstructure:"username"`
	Password     string `mapstructure:"password"`
	Database     string `mapstructure:"database"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type OSSConfig struct {
	Endpoint        string `mapstructure:"endpoint"`
	AccessKeyID     string `mapstructure:"access_key_id"`
	AccessKeySecret string `mapstructure:"access_key_secret"`
	BucketName      string `mapstructure:"bucket_name"`
}

func (c *SynthesisConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return time.Hour
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func (c *DataflowConfig) Timeout() time.Duration {
	if c.TimeoutSeconds <= 0 {
		return 30 * time.Second
	}
	return time.Duration(c.TimeoutSeconds) * time.Second
}

func Load(configPath string) (*Config, error) {
	// Prefer config.local.yaml (real keys, not committed) when it exists.
	dir := filepath.Dir(configPath)
	localConfigPath := filepath.Join(dir, "config.local.yaml")

	if _, err := os.Stat(localConfigPath); err == nil {
		configPath = localConfigPath
	}

	viper.SetConfigFile(configPath)
	viper.SetConfigType("yaml")

	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	if err := viper.ReadInConfig(); err != nil {
		return nil, err
	}

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	if cfg.Dataset.PromptType == "" {
		cfg.Dataset.PromptType = "instruction"
	}
	if len(cfg.Synthesis.Efforts) == 0 {
		cfg.Synthesis.Efforts = []string{"low", "medium", "high"}
	}
	if cfg.Synthesis.Workers <= 0 {
		cfg.Synthesis.Workers = 1
	}
	if cfg.Dataflow.Workers <= 0 {
		cfg.Dataflow.Workers = 1
	}
	if cfg.Netlist.Workers <= 0 {
		cfg.Netlist.Workers = 4
	}
	if cfg.Database.Driver == "" {
		cfg.Database.Driver = "sqlite"
	}

	return &cfg, nil
}
