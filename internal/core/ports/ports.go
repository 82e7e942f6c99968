package ports

import (
	"context"
	"time"

	"routelens/internal/annotate"
	"routelens/internal/data/history"
)

// UnresolvedDecorator records a decorator call site the pipeline found but
// could not turn into a route, together with the failure class that stopped
// the resolution chain.
type UnresolvedDecorator struct {
	File         string   `json:"file"`
	Line         int      `json:"line"`
	Column       int      `json:"column"`
	Base         string   `json:"base"`
	PropertyPath []string `json:"property_path"`
	Reason       string   `json:"reason"`
}

// FileAnnotations is the pipeline output for a single importing file.
// Annotations appear in source order; Unresolved lists the sites that
// failed, also in source order.
type FileAnnotations struct {
	File        string                `json:"file"`
	Language    string                `json:"language"`
	Annotations []annotate.Annotation `json:"annotations"`
	Unresolved  []UnresolvedDecorator `json:"unresolved,omitempty"`
	Duration    time.Duration         `json:"duration"`
}

// WorkspaceResult aggregates a full workspace pass.
type WorkspaceResult struct {
	Files      []FileAnnotations `json:"files"`
	Scanned    int               `json:"scanned"`
	Decorators int               `json:"decorators"`
	Routes     int               `json:"routes"`
	Unresolved int               `json:"unresolved"`
	Duration   time.Duration     `json:"duration"`
}

// WorkspaceSummary is the aggregate state of the workspace after the most
// recent annotation pass or watch update.
type WorkspaceSummary struct {
	FilesScanned int       `json:"files_scanned"`
	Decorators   int       `json:"decorators"`
	Routes       int       `json:"routes"`
	Unresolved   int       `json:"unresolved"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// WatchUpdate is delivered to subscribers after a watch-triggered
// re-annotation of a single file.
type WatchUpdate struct {
	File    string           `json:"file"`
	Result  FileAnnotations  `json:"result"`
	Summary WorkspaceSummary `json:"summary"`
}

// AnnotationService exposes the annotation pipeline to driving adapters.
type AnnotationService interface {
	// AnnotateFile runs the pipeline for one importing file.
	AnnotateFile(ctx context.Context, path string) (FileAnnotations, error)

	// AnnotateWorkspace scans the configured paths and annotates every
	// supported file found.
	AnnotateWorkspace(ctx context.Context) (WorkspaceResult, error)
}

// WatchService exposes the file-watching lifecycle to driving adapters.
type WatchService interface {
	// Start begins watching the configured scan paths. It returns after
	// the watcher is installed; updates arrive via Subscribe.
	Start(ctx context.Context) error

	// Current returns the aggregate state from the latest pass.
	Current(ctx context.Context) (WorkspaceSummary, error)

	// Subscribe registers a handler for per-file updates. Only one
	// handler is active at a time; a second call replaces the first.
	Subscribe(ctx context.Context, handler func(WatchUpdate)) error
}

// HistoryStore abstracts snapshot persistence for trend reporting.
type HistoryStore interface {
	SaveSnapshot(projectKey string, snapshot history.Snapshot) error
	LoadSnapshots(projectKey string, since time.Time) ([]history.Snapshot, error)
}
