package config

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
)

func validateVersion(cfg *Config) error {
	if cfg.Version < 1 {
		return fmt.Errorf("version must be >= 1, got %d", cfg.Version)
	}
	if cfg.Version > 1 {
		return fmt.Errorf("unsupported config version %d; supported version is 1", cfg.Version)
	}
	return nil
}

func validateScanPaths(cfg *Config) error {
	if len(cfg.ScanPaths) == 0 {
		return fmt.Errorf("scan_paths must list at least one path")
	}
	return nil
}

func validateExclude(cfg *Config) error {
	for i, pattern := range cfg.Exclude.Dirs {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.dirs[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("exclude.dirs[%d]: invalid pattern %q: %v", i, pattern, err)
		}
	}
	for i, pattern := range cfg.Exclude.Files {
		if strings.TrimSpace(pattern) == "" {
			return fmt.Errorf("exclude.files[%d] must not be empty", i)
		}
		if _, err := glob.Compile(pattern, '/'); err != nil {
			return fmt.Errorf("exclude.files[%d]: invalid pattern %q: %v", i, pattern, err)
		}
	}
	return nil
}

func validateWatch(cfg *Config) error {
	if cfg.Watch.Debounce <= 0 {
		return fmt.Errorf("watch.debounce must be positive, got %s", cfg.Watch.Debounce)
	}
	if cfg.Watch.MaxUpdatesPerSecond <= 0 {
		return fmt.Errorf("watch.max_updates_per_second must be positive, got %g", cfg.Watch.MaxUpdatesPerSecond)
	}
	if cfg.Watch.Burst < 1 {
		return fmt.Errorf("watch.burst must be >= 1, got %d", cfg.Watch.Burst)
	}
	return nil
}

func validateCache(cfg *Config) error {
	if cfg.Cache.Results < 1 {
		return fmt.Errorf("cache.results must be >= 1, got %d", cfg.Cache.Results)
	}
	if cfg.Cache.ResultTTL <= 0 {
		return fmt.Errorf("cache.result_ttl must be positive, got %s", cfg.Cache.ResultTTL)
	}
	if cfg.Cache.MaxHeapMB < 1 {
		return fmt.Errorf("cache.max_heap_mb must be >= 1, got %d", cfg.Cache.MaxHeapMB)
	}
	return nil
}

func validateHistory(cfg *Config) error {
	if !cfg.History.IsEnabled() {
		return nil
	}
	if strings.TrimSpace(cfg.History.Path) == "" {
		return fmt.Errorf("history.path must not be empty")
	}
	return nil
}

func validateObservability(cfg *Config) error {
	if cfg.Observability.Port < 1 || cfg.Observability.Port > 65535 {
		return fmt.Errorf("observability.port must be in 1..65535, got %d", cfg.Observability.Port)
	}
	return nil
}
