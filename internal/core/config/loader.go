package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
)

func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if _, err := toml.Decode(string(data), &cfg); err != nil {
		return nil, err
	}

	applyDefaults(&cfg)
	normalize(&cfg)

	if err := validateVersion(&cfg); err != nil {
		return nil, err
	}
	if err := validateScanPaths(&cfg); err != nil {
		return nil, err
	}
	if err := validateExclude(&cfg); err != nil {
		return nil, err
	}
	if err := validateWatch(&cfg); err != nil {
		return nil, err
	}
	if err := validateCache(&cfg); err != nil {
		return nil, err
	}
	if err := validateHistory(&cfg); err != nil {
		return nil, err
	}
	if err := validateObservability(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// DefaultConfig is the configuration used when no routelens.toml exists.
func DefaultConfig() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

// FindConfig walks up from startDir looking for a config file. Returns the
// empty string when none exists.
func FindConfig(startDir string) string {
	dir := startDir
	if abs, err := filepath.Abs(dir); err == nil {
		dir = abs
	}

	for {
		for _, name := range []string{"routelens.toml", ".routelens.toml"} {
			candidate := filepath.Join(dir, name)
			if info, err := os.Stat(candidate); err == nil && !info.IsDir() {
				return candidate
			}
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}

func applyDefaults(cfg *Config) {
	if cfg.Version == 0 {
		cfg.Version = 1
	}

	if len(cfg.ScanPaths) == 0 {
		cfg.ScanPaths = []string{"."}
	}
	if len(cfg.Exclude.Dirs) == 0 {
		cfg.Exclude.Dirs = []string{"node_modules", ".git", "dist", "build", "coverage"}
	}

	if cfg.Annotations.Prefix == "" {
		cfg.Annotations.Prefix = defaultAnnotationPrefix
	}

	if cfg.Watch.Debounce == 0 {
		cfg.Watch.Debounce = 500 * time.Millisecond
	}
	if cfg.Watch.MaxUpdatesPerSecond <= 0 {
		cfg.Watch.MaxUpdatesPerSecond = 10
	}
	if cfg.Watch.Burst <= 0 {
		cfg.Watch.Burst = 20
	}

	if cfg.Cache.Results <= 0 {
		cfg.Cache.Results = 512
	}
	if cfg.Cache.ResultTTL <= 0 {
		cfg.Cache.ResultTTL = 5 * time.Minute
	}
	if cfg.Cache.MaxHeapMB <= 0 {
		cfg.Cache.MaxHeapMB = 512
	}

	if strings.TrimSpace(cfg.History.Path) == "" {
		cfg.History.Path = "routelens.db"
	}

	if cfg.Observability.Port == 0 {
		cfg.Observability.Port = 9090
	}
}

func normalize(cfg *Config) {
	paths := make([]string, 0, len(cfg.ScanPaths))
	for _, p := range cfg.ScanPaths {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		paths = append(paths, filepath.Clean(p))
	}
	cfg.ScanPaths = paths

	cfg.Output.TSV = strings.TrimSpace(cfg.Output.TSV)
	cfg.Output.Markdown = strings.TrimSpace(cfg.Output.Markdown)
	cfg.Output.OpenAPI = strings.TrimSpace(cfg.Output.OpenAPI)
	cfg.Output.Trends = strings.TrimSpace(cfg.Output.Trends)

	cfg.History.Path = strings.TrimSpace(cfg.History.Path)
	cfg.History.ProjectKey = strings.TrimSpace(cfg.History.ProjectKey)

	cfg.Observability.OTLPEndpoint = strings.TrimSpace(cfg.Observability.OTLPEndpoint)
}
