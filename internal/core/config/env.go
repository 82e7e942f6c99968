package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"
)

// ApplyEnvOverrides applies environment variable overrides to the
// configuration. Pattern: ROUTELENS_[SECTION]_[KEY].
func ApplyEnvOverrides(cfg *Config) {
	// Annotations
	setEnvString(&cfg.Annotations.Prefix, "ROUTELENS_ANNOTATIONS_PREFIX")

	// Watch
	setEnvDuration(&cfg.Watch.Debounce, "ROUTELENS_WATCH_DEBOUNCE")
	setEnvFloat64(&cfg.Watch.MaxUpdatesPerSecond, "ROUTELENS_WATCH_MAX_UPDATES_PER_SECOND")
	setEnvInt(&cfg.Watch.Burst, "ROUTELENS_WATCH_BURST")

	// Cache
	setEnvInt(&cfg.Cache.Results, "ROUTELENS_CACHE_RESULTS")
	setEnvDuration(&cfg.Cache.ResultTTL, "ROUTELENS_CACHE_RESULT_TTL")
	setEnvInt(&cfg.Cache.MaxHeapMB, "ROUTELENS_CACHE_MAX_HEAP_MB")

	// History
	setEnvString(&cfg.History.Path, "ROUTELENS_HISTORY_PATH")
	setEnvString(&cfg.History.ProjectKey, "ROUTELENS_HISTORY_PROJECT_KEY")

	// Observability
	setEnvBool(&cfg.Observability.Enabled, "ROUTELENS_OBSERVABILITY_ENABLED")
	setEnvInt(&cfg.Observability.Port, "ROUTELENS_OBSERVABILITY_PORT")
	setEnvString(&cfg.Observability.OTLPEndpoint, "ROUTELENS_OBSERVABILITY_OTLP_ENDPOINT")
	setEnvBool(&cfg.Observability.EnableTracing, "ROUTELENS_OBSERVABILITY_ENABLE_TRACING")
}

func setEnvString(target *string, key string) {
	if val, ok := os.LookupEnv(key); ok {
		log.Printf("Applying env override: %s=%s", key, val)
		*target = val
	}
}

func setEnvInt(target *int, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if i, err := strconv.Atoi(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = i
		}
	}
}

func setEnvBool(target *bool, key string) {
	if val, ok := os.LookupEnv(key); ok {
		b, err := strconv.ParseBool(strings.ToLower(val))
		if err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = b
		}
	}
}

func setEnvFloat64(target *float64, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = f
		}
	}
}

func setEnvDuration(target *time.Duration, key string) {
	if val, ok := os.LookupEnv(key); ok {
		if d, err := time.ParseDuration(val); err == nil {
			log.Printf("Applying env override: %s=%s", key, val)
			*target = d
		}
	}
}
