package app

import (
	"context"
	"fmt"
	"time"

	"routelens/internal/core/errors"
	"routelens/internal/core/ports"
	"routelens/internal/data/history"
)

// annotationService adapts App to the AnnotationService port.
type annotationService struct {
	app *App
}

var _ ports.AnnotationService = (*annotationService)(nil)

// NewAnnotationService wraps the app in its driving port.
func NewAnnotationService(app *App) (ports.AnnotationService, error) {
	if app == nil {
		return nil, fmt.Errorf("app is required")
	}
	return &annotationService{app: app}, nil
}

func (s *annotationService) AnnotateFile(ctx context.Context, path string) (ports.FileAnnotations, error) {
	if err := ctx.Err(); err != nil {
		return ports.FileAnnotations{}, err
	}
	if path == "" {
		return ports.FileAnnotations{}, fmt.Errorf("path is required")
	}

	result, err := s.app.AnnotateFile(ctx, path)
	if err != nil {
		return ports.FileAnnotations{}, errors.AddContext(err, errors.CtxOperation, "annotate_file")
	}
	return result, nil
}

func (s *annotationService) AnnotateWorkspace(ctx context.Context) (ports.WorkspaceResult, error) {
	if err := ctx.Err(); err != nil {
		return ports.WorkspaceResult{}, err
	}

	result, err := s.app.AnnotateWorkspace(ctx)
	if err != nil {
		return ports.WorkspaceResult{}, errors.AddContext(err, errors.CtxOperation, "annotate_workspace")
	}
	return result, nil
}

// watchService adapts App to the WatchService port.
type watchService struct {
	app *App
}

var _ ports.WatchService = (*watchService)(nil)

// NewWatchService wraps the app in its watch port.
func NewWatchService(app *App) (ports.WatchService, error) {
	if app == nil {
		return nil, fmt.Errorf("app is required")
	}
	return &watchService{app: app}, nil
}

func (s *watchService) Start(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := s.app.StartWatcher(ctx); err != nil {
		return errors.Wrap(err, errors.CodeWatcherError, "start watcher")
	}
	return nil
}

func (s *watchService) Current(ctx context.Context) (ports.WorkspaceSummary, error) {
	if err := ctx.Err(); err != nil {
		return ports.WorkspaceSummary{}, err
	}
	return s.app.Summary(), nil
}

func (s *watchService) Subscribe(ctx context.Context, handler func(ports.WatchUpdate)) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if handler == nil {
		return fmt.Errorf("handler is required")
	}

	s.app.SetUpdateHandler(func(update ports.WatchUpdate) {
		if ctx.Err() != nil {
			return
		}
		handler(update)
	})
	return nil
}

// CaptureSnapshot persists the aggregate of a workspace pass for trend
// reporting and returns the stored snapshot.
func CaptureSnapshot(store ports.HistoryStore, projectKey string, result ports.WorkspaceResult) (history.Snapshot, error) {
	if store == nil {
		return history.Snapshot{}, fmt.Errorf("history store is required")
	}
	if projectKey == "" {
		projectKey = "default"
	}

	snapshot := history.Snapshot{
		ProjectKey:      projectKey,
		Timestamp:       time.Now().UTC(),
		FilesScanned:    result.Scanned,
		DecoratorCount:  result.Decorators,
		RouteCount:      result.Routes,
		UnresolvedCount: result.Unresolved,
		DurationMS:      result.Duration.Milliseconds(),
	}
	if err := store.SaveSnapshot(projectKey, snapshot); err != nil {
		return history.Snapshot{}, errors.Wrap(err, errors.CodeHistoryError, "save snapshot")
	}
	return snapshot, nil
}
