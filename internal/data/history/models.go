package history

import "time"

const SchemaVersion = 1

// Snapshot is one aggregate measurement of a workspace annotation pass.
type Snapshot struct {
	SchemaVersion   int       `json:"schema_version"`
	ProjectKey      string    `json:"project_key"`
	Timestamp       time.Time `json:"timestamp"`
	FilesScanned    int       `json:"files_scanned"`
	DecoratorCount  int       `json:"decorator_count"`
	RouteCount      int       `json:"route_count"`
	UnresolvedCount int       `json:"unresolved_count"`
	DurationMS      int64     `json:"duration_ms"`
}

// TrendPoint is a snapshot enriched with deltas against its predecessor
// and moving averages over the report window.
type TrendPoint struct {
	Timestamp       time.Time `json:"timestamp"`
	FilesScanned    int       `json:"files_scanned"`
	DecoratorCount  int       `json:"decorator_count"`
	RouteCount      int       `json:"route_count"`
	UnresolvedCount int       `json:"unresolved_count"`
	DeltaFiles      int       `json:"delta_files"`
	DeltaDecorators int       `json:"delta_decorators"`
	DeltaRoutes     int       `json:"delta_routes"`
	DeltaUnresolved int       `json:"delta_unresolved"`
	RouteGrowthPct  float64   `json:"route_growth_pct"`
	AvgRoutes       float64   `json:"avg_routes"`
	AvgUnresolved   float64   `json:"avg_unresolved"`
	WindowHours     float64   `json:"window_hours"`
}

type TrendReport struct {
	SchemaVersion int          `json:"schema_version"`
	ProjectKey    string       `json:"project_key"`
	Since         time.Time    `json:"since"`
	Until         time.Time    `json:"until"`
	Window        string       `json:"window"`
	ScanCount     int          `json:"scan_count"`
	Points        []TrendPoint `json:"points"`
}
