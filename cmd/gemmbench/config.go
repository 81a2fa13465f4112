package main

import (
	"os"
	"path/filepath"

	"github.com/urfave/cli/v3"
	"gopkg.in/yaml.v3"
)

// Config represents the gemmbench configuration file
// (~/.config/gemmbench/config.yaml). Pointer fields distinguish "not set"
// from zero values.
type Config struct {
	Models  string `yaml:"models"`
	Kernels string `yaml:"kernels"`
	MCases  string `yaml:"m_cases"`

	Warmup   *int64 `yaml:"warmup"`
	Runs     *int64 `yaml:"runs"`
	Workers  *int64 `yaml:"workers"`
	Seed     *int64 `yaml:"seed"`
	Autotune *bool  `yaml:"autotune"`

	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`

	ServerAddress string `yaml:"server_address"`
}

func configPath() string {
	dir, err := os.UserConfigDir()
	if err != nil {
		return ""
	}
	return filepath.Join(dir, "gemmbench", "config.yaml")
}

// applyBenchConfig applies config file defaults to benchmark command
// variables when the corresponding CLI flag was not explicitly set.
func applyBenchConfig(c *cli.Command, cfg Config) {
	if cfg.Models != "" && !c.IsSet("models") && !c.IsSet("m") {
		modelsFlag = cfg.Models
	}
	if cfg.Kernels != "" && !c.IsSet("kernels") {
		kernelsFlag = cfg.Kernels
	}
	if cfg.MCases != "" && !c.IsSet("m-cases") {
		mCasesFlag = cfg.MCases
	}
	if cfg.Warmup != nil && !c.IsSet("warmup") {
		warmupRuns = *cfg.Warmup
	}
	if cfg.Runs != nil && !c.IsSet("runs") {
		benchRuns = *cfg.Runs
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	if cfg.Seed != nil && !c.IsSet("seed") {
		seed = *cfg.Seed
	}
	if cfg.Autotune != nil && !c.IsSet("autotune") {
		autotune = *cfg.Autotune
	}
	applyLoggingConfig(c, cfg)
}

func applyLoggingConfig(c *cli.Command, cfg Config) {
	if cfg.LogLevel != "" && !c.IsSet("log-level") {
		logLevel = cfg.LogLevel
	}
	if cfg.LogFormat != "" && !c.IsSet("log-format") {
		logFormat = cfg.LogFormat
	}
}

// applyServeConfig applies config file defaults to serve command variables.
func applyServeConfig(c *cli.Command, cfg Config, addr *string) {
	if cfg.ServerAddress != "" && !c.IsSet("addr") {
		*addr = cfg.ServerAddress
	}
	if cfg.Workers != nil && !c.IsSet("workers") {
		workers = *cfg.Workers
	}
	applyLoggingConfig(c, cfg)
}

// LoadConfig reads the config file. Returns a zero Config if the file
// doesn't exist or doesn't parse.
func LoadConfig() Config {
	path := configPath()
	if path == "" {
		return Config{}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}
	}
	return cfg
}
