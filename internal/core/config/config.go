package config

import "time"

const defaultAnnotationPrefix = "▸ "

type Config struct {
	Version       int           `toml:"version"`
	ScanPaths     []string      `toml:"scan_paths"`
	Exclude       Exclude       `toml:"exclude"`
	Annotations   Annotations   `toml:"annotations"`
	Watch         Watch         `toml:"watch"`
	Cache         Cache         `toml:"cache"`
	Output        Output        `toml:"output"`
	History       History       `toml:"history"`
	Observability Observability `toml:"observability"`
	Alerts        Alerts        `toml:"alerts"`
}

type Exclude struct {
	Dirs  []string `toml:"dirs"`
	Files []string `toml:"files"`
}

type Annotations struct {
	Enabled        *bool  `toml:"enabled"`
	ShowHTTPMethod *bool  `toml:"show_http_method"`
	ShowPath       *bool  `toml:"show_path"`
	ShowSummary    *bool  `toml:"show_summary"`
	Prefix         string `toml:"prefix"`
}

type Watch struct {
	Debounce            time.Duration `toml:"debounce"`
	MaxUpdatesPerSecond float64       `toml:"max_updates_per_second"`
	Burst               int           `toml:"burst"`
}

type Cache struct {
	Results   int           `toml:"results"`
	ResultTTL time.Duration `toml:"result_ttl"`
	MaxHeapMB int           `toml:"max_heap_mb"`
}

type Output struct {
	TSV      string `toml:"tsv"`
	Markdown string `toml:"markdown"`
	OpenAPI  string `toml:"openapi"`
	Trends   string `toml:"trends"`
}

type History struct {
	Enabled    *bool  `toml:"enabled"`
	Path       string `toml:"path"`
	ProjectKey string `toml:"project_key"`
}

type Observability struct {
	Enabled       bool   `toml:"enabled"`
	Port          int    `toml:"port"`
	OTLPEndpoint  string `toml:"otlp_endpoint"`
	EnableTracing bool   `toml:"enable_tracing"`
	EnableMetrics *bool  `toml:"enable_metrics"`
}

type Alerts struct {
	Terminal *bool `toml:"terminal"`
	Beep     bool  `toml:"beep"`
}

func (a Annotations) IsEnabled() bool {
	if a.Enabled == nil {
		return true
	}
	return *a.Enabled
}

func (a Annotations) ShowsHTTPMethod() bool {
	if a.ShowHTTPMethod == nil {
		return true
	}
	return *a.ShowHTTPMethod
}

func (a Annotations) ShowsPath() bool {
	if a.ShowPath == nil {
		return true
	}
	return *a.ShowPath
}

func (a Annotations) ShowsSummary() bool {
	if a.ShowSummary == nil {
		return true
	}
	return *a.ShowSummary
}

func (h History) IsEnabled() bool {
	if h.Enabled == nil {
		return true
	}
	return *h.Enabled
}

func (o Observability) MetricsEnabled() bool {
	if o.EnableMetrics == nil {
		return true
	}
	return *o.EnableMetrics
}

func (al Alerts) TerminalEnabled() bool {
	if al.Terminal == nil {
		return true
	}
	return *al.Terminal
}
