// Package config handles pipeline configuration from file and
// environment.
package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds the operator-tunable settings. Precedence, lowest to
// highest: defaults, YAML config file, environment variables, flags
// (applied by the CLI).
type Config struct {
	DBPath      string `yaml:"db_path"`      // SQLite database file
	LogFile     string `yaml:"logfile"`      // optional log sink beside stderr
	BatchSize   int    `yaml:"batch_size"`   // raw documents per fetch round
	MatchScript string `yaml:"match_script"` // path to the matching SQL script
	Mailto      string `yaml:"mailto"`       // polite-pool address for harvesting
}

// DefaultConfigFile is looked for in the working directory when no
// explicit config path is given.
const DefaultConfigFile = "bibmet.yml"

// DefaultBatchSize matches the extractor's historical batch size.
const DefaultBatchSize = 100

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		DBPath:    "bibmet.db",
		BatchSize: DefaultBatchSize,
	}
}

// Load builds the configuration from defaults, an optional YAML file
// and the environment. A missing default config file is not an error;
// a missing explicit one is.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = DefaultConfigFile
	}

	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
		// No config file; defaults and environment apply.
	default:
		return Config{}, fmt.Errorf("reading %s: %w", path, err)
	}

	if err := cfg.applyEnv(); err != nil {
		return Config{}, err
	}

	if cfg.BatchSize <= 0 {
		return Config{}, fmt.Errorf("batch_size must be positive, got %d", cfg.BatchSize)
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv("BIBMET_DB"); v != "" {
		c.DBPath = v
	}
	if v := os.Getenv("BIBMET_LOGFILE"); v != "" {
		c.LogFile = v
	}
	if v := os.Getenv("BIBMET_BATCH_SIZE"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("parsing BIBMET_BATCH_SIZE: %w", err)
		}
		c.BatchSize = n
	}
	if v := os.Getenv("BIBMET_MATCH_SCRIPT"); v != "" {
		c.MatchScript = v
	}
	if v := os.Getenv("OPENALEX_MAILTO"); v != "" {
		c.Mailto = v
	}
	return nil
}
