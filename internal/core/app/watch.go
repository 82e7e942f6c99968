package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/google/uuid"

	"routelens/internal/core/ports"
	"routelens/internal/core/watcher"
	"routelens/internal/shared/observability"
	"routelens/internal/shared/util"
)

// StartWatcher installs a filesystem watcher over the scan paths and
// routes change batches into HandleChanges.
func (a *App) StartWatcher(ctx context.Context) error {
	if a.activeWatcher != nil {
		return fmt.Errorf("watcher already running")
	}

	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(paths []string) { a.HandleChanges(ctx, paths) },
	)
	if err != nil {
		return err
	}
	w.SetExtensionFilter(a.Parser.SupportedExtensions())

	a.activeWatcher = w
	return w.Watch(uniqueScanRoots(a.Config.ScanPaths))
}

// StopWatcher shuts down the active watcher if one is running.
func (a *App) StopWatcher() {
	if a.activeWatcher == nil {
		return
	}
	if err := a.activeWatcher.Close(); err != nil {
		slog.Warn("failed to close watcher", "error", err)
	}
	a.activeWatcher = nil
}

// HandleChanges re-annotates the files affected by a change batch. A
// decorator result depends on its importing file and on the contract file
// it resolved through, so a contract edit also re-annotates its dependents.
func (a *App) HandleChanges(ctx context.Context, paths []string) {
	if len(paths) == 0 {
		return
	}
	slog.Info("detected changes", "count", len(paths))

	affected := make(map[string]struct{})
	for _, path := range paths {
		if _, err := os.Stat(path); os.IsNotExist(err) {
			a.forgetFile(path)
		} else {
			a.results.invalidateFile(path)
			if a.Parser.IsSupportedPath(path) {
				affected[path] = struct{}{}
			}
		}

		// The changed file may be a contract: drop its export table and
		// requeue everything that resolved through it.
		a.Exports.Invalidate(path)
		for _, dep := range a.dependentsOf(path) {
			a.results.invalidateFile(dep)
			affected[dep] = struct{}{}
		}
	}

	for _, path := range util.SortedStringKeys(affected) {
		token := a.issueToken(path)

		if err := a.limiters.Get(path).Wait(ctx, 1); err != nil {
			return
		}

		fa, err := a.AnnotateFile(ctx, path)
		if err != nil {
			slog.Warn("failed to annotate changed file", "path", path, "error", err)
			continue
		}
		if !a.tokenCurrent(path, token) {
			observability.StaleUpdatesDropped.Inc()
			continue
		}

		a.storeFileResult(fa)
		a.emitUpdate(ports.WatchUpdate{File: path, Result: fa, Summary: a.Summary()})
	}
}

// forgetFile drops all cached state for a deleted file and publishes the
// removal to subscribers.
func (a *App) forgetFile(path string) {
	a.results.invalidateFile(path)
	a.Exports.Invalidate(path)

	a.stateMu.Lock()
	delete(a.byFile, path)
	a.updatedAt = time.Now()
	a.stateMu.Unlock()

	a.tokenMu.Lock()
	delete(a.tokens, path)
	a.tokenMu.Unlock()

	a.depsMu.Lock()
	delete(a.dependents, path)
	for _, set := range a.dependents {
		delete(set, path)
	}
	a.depsMu.Unlock()

	a.emitUpdate(ports.WatchUpdate{
		File:    path,
		Result:  ports.FileAnnotations{File: path},
		Summary: a.Summary(),
	})
}

// issueToken marks a new in-flight annotation for path and returns its
// token. Results carrying a superseded token are dropped at publish time.
func (a *App) issueToken(path string) string {
	token := uuid.NewString()
	a.tokenMu.Lock()
	a.tokens[path] = token
	a.tokenMu.Unlock()
	return token
}

func (a *App) tokenCurrent(path, token string) bool {
	a.tokenMu.Lock()
	defer a.tokenMu.Unlock()
	return a.tokens[path] == token
}
