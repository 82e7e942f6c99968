package app

import (
	"context"
	"fmt"
	"time"

	"routelens/internal/shared/observability"
)

// HealthService reports component status for the observability endpoint.
type HealthService struct {
	app *App
}

var _ observability.HealthChecker = (*HealthService)(nil)

func NewHealthService(app *App) *HealthService {
	return &HealthService{app: app}
}

func (s *HealthService) Check(ctx context.Context) observability.HealthStatus {
	status := observability.HealthStatus{
		Status:     "up",
		Timestamp:  time.Now().UTC(),
		Components: make(map[string]string),
	}

	if s.app == nil {
		status.Status = "down"
		return status
	}

	if s.app.Parser == nil {
		status.Status = "degraded"
		status.Components["parser"] = "missing"
	} else {
		status.Components["parser"] = "ok"
	}

	status.Components["export_cache"] = fmt.Sprintf("ok (%d tables)", s.app.Exports.Len())
	status.Components["result_cache"] = fmt.Sprintf("ok (%d entries)", s.app.results.len())

	if s.app.activeWatcher != nil {
		status.Components["watcher"] = "running"
	} else {
		status.Components["watcher"] = "idle"
	}

	return status
}
