package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"

	"imagedup/utils"
)

// Config holds every recognized option. Values come from built-in
// defaults, then an optional YAML file, then command-line flags, each
// layer overriding the previous one.
type Config struct {
	SourceRoot    string   `yaml:"source_root"`
	Threshold     float64  `yaml:"threshold"`
	Extensions    []string `yaml:"extensions"`
	BatchSize     int      `yaml:"batch_size"`
	BackupRoot    string   `yaml:"backup_root"`
	BackupPattern string   `yaml:"backup_pattern"`
	DatabasePath  string   `yaml:"database_path"`
	ResultsPath   string   `yaml:"results_path"`
	LogPath       string   `yaml:"log_path"`
	MaxWorkers    int      `yaml:"max_workers"`
}

// DefaultConfig returns the built-in defaults. The extension allowlist
// matches the formats the hashing pipeline decodes without external
// tooling.
func DefaultConfig() *Config {
	return &Config{
		Threshold:     0.85,
		Extensions:    []string{".jpg", ".jpeg", ".png", ".bmp", ".tif", ".tiff", ".webp"},
		BatchSize:     100,
		BackupRoot:    ".",
		BackupPattern: "backup_deletions_20060102_150405",
		DatabasePath:  "imagedup.db",
		ResultsPath:   "duplicate_results.json",
		LogPath:       "imagedup.log",
	}
}

// LoadConfig reads a YAML config file into the defaults. A missing path
// argument is not an error; a file that exists but fails to parse is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path == "" {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("cannot read config file %s: %v", path, err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("cannot parse config file %s: %v", path, err)
	}

	cfg.normalize()
	return cfg, nil
}

// ApplyFlags overrides config values with any command-line flags that
// were set. Invalid threshold or batch size values fall back to the
// current value with a warning, matching the scan command's tolerance
// for bad optional input.
func (c *Config) ApplyFlags(args map[string]string) []string {
	var warnings []string

	if v, ok := args["folder"]; ok && v != "" {
		c.SourceRoot = v
	}
	if v, ok := args["threshold"]; ok && v != "" {
		t, err := utils.ParseThreshold(v)
		if err != nil {
			warnings = append(warnings, err.Error())
		} else {
			c.Threshold = t
		}
	}
	if v, ok := args["extensions"]; ok && v != "" {
		c.Extensions = strings.Split(v, ",")
		c.normalize()
	}
	if v, ok := args["batch-size"]; ok && v != "" {
		n, err := utils.ParseBatchSize(v)
		if err != nil {
			warnings = append(warnings, err.Error())
		} else {
			c.BatchSize = n
		}
	}
	if v, ok := args["backup-root"]; ok && v != "" {
		c.BackupRoot = v
	}
	if v, ok := args["database"]; ok && v != "" {
		c.DatabasePath = v
	} else if v, ok := args["db"]; ok && v != "" {
		// Allow --db as an alias for --database
		c.DatabasePath = v
	}
	if v, ok := args["results"]; ok && v != "" {
		c.ResultsPath = v
	}
	if v, ok := args["logfile"]; ok && v != "" {
		c.LogPath = v
	}

	return warnings
}

// normalize lower-cases extensions and guarantees the leading dot so
// allowlist matching is case-insensitive.
func (c *Config) normalize() {
	for i, ext := range c.Extensions {
		ext = strings.ToLower(strings.TrimSpace(ext))
		if ext != "" && !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		c.Extensions[i] = ext
	}
	if c.BatchSize < 1 {
		c.BatchSize = 100
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		c.Threshold = 0.85
	}
	if c.BackupPattern == "" {
		c.BackupPattern = "backup_deletions_20060102_150405"
	}
}
