// # cmd/routelens/app.go
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"routelens/internal/core/app"
	"routelens/internal/core/config"
	"routelens/internal/core/ports"
	"routelens/internal/data/history"
	"routelens/internal/shared/observability"
	"routelens/internal/shared/util"
	"routelens/internal/ui/report"
)

// markdownMarker is the marker name looked for in existing markdown targets.
// When present, only the block between the markers is rewritten.
const markdownMarker = "routes"

const trendWindow = 24 * time.Hour

type App struct {
	Core *app.App

	// ConfigFile is the path the config was loaded from; empty when running
	// on defaults. Set before StartWatching to enable hot reload.
	ConfigFile string
	// UIMode suppresses terminal summaries so they cannot corrupt the TUI.
	UIMode bool

	annotator ports.AnnotationService
	watcher   ports.WatchService
	history   *history.Store

	obsServer     *observability.Server
	configWatcher *config.Watcher
	traceShutdown func(context.Context) error

	mu         sync.RWMutex
	cfg        *config.Config
	teaProgram *tea.Program
}

func NewApp(cfg *config.Config) (*App, error) {
	core, err := app.New(cfg)
	if err != nil {
		return nil, err
	}
	annotator, err := app.NewAnnotationService(core)
	if err != nil {
		return nil, err
	}
	watchSvc, err := app.NewWatchService(core)
	if err != nil {
		return nil, err
	}

	a := &App{
		Core:      core,
		annotator: annotator,
		watcher:   watchSvc,
		cfg:       cfg,
	}

	if cfg.History.IsEnabled() {
		store, err := history.Open(cfg.History.Path)
		if err != nil {
			slog.Warn("history store unavailable, snapshots disabled", "path", cfg.History.Path, "error", err)
		} else {
			a.history = store
		}
	}

	return a, nil
}

// Start brings up tracing and the observability server when configured.
func (a *App) Start(ctx context.Context) error {
	cfg := a.config()

	if cfg.Observability.EnableTracing && cfg.Observability.OTLPEndpoint != "" {
		shutdown, err := observability.SetupTracing(ctx, cfg.Observability.OTLPEndpoint)
		if err != nil {
			slog.Warn("tracing unavailable", "endpoint", cfg.Observability.OTLPEndpoint, "error", err)
		} else {
			a.traceShutdown = shutdown
		}
	}

	if cfg.Observability.Enabled {
		addr := fmt.Sprintf(":%d", cfg.Observability.Port)
		a.obsServer = observability.NewServer(addr, app.NewHealthService(a.Core), cfg.Observability.MetricsEnabled())
		if err := a.obsServer.Start(ctx); err != nil {
			return err
		}
	}

	return nil
}

// RunOnce annotates the workspace, records a history snapshot and writes the
// configured outputs.
func (a *App) RunOnce(ctx context.Context) (ports.WorkspaceResult, error) {
	result, err := a.annotator.AnnotateWorkspace(ctx)
	if err != nil {
		return ports.WorkspaceResult{}, err
	}

	a.saveSnapshot(result)
	if err := a.WriteOutputs(result); err != nil {
		slog.Error("failed to generate outputs", "error", err)
	}
	a.PrintSummary(result)

	return result, nil
}

// StartWatching subscribes to annotation updates, starts the file watcher and
// enables config hot reload when a config file is known.
func (a *App) StartWatching(ctx context.Context) error {
	if err := a.watcher.Subscribe(ctx, a.handleUpdate); err != nil {
		return err
	}
	if err := a.watcher.Start(ctx); err != nil {
		return err
	}

	if a.ConfigFile != "" {
		a.configWatcher = config.NewWatcher(a.ConfigFile, a.handleConfigReload)
		if err := a.configWatcher.Start(ctx); err != nil {
			slog.Warn("config hot reload unavailable", "path", a.ConfigFile, "error", err)
			a.configWatcher = nil
		}
	}

	return nil
}

func (a *App) RunUI(initial ports.WorkspaceResult) error {
	m := initialModel(initial.Files, a.Core.Summary())
	p := tea.NewProgram(m, tea.WithAltScreen())

	a.mu.Lock()
	a.teaProgram = p
	a.mu.Unlock()

	_, err := p.Run()
	return err
}

func (a *App) Close() {
	if a.configWatcher != nil {
		a.configWatcher.Stop()
	}
	a.Core.StopWatcher()

	if a.obsServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.obsServer.Stop(ctx); err != nil {
			slog.Warn("failed to stop observability server", "error", err)
		}
		cancel()
	}
	if a.traceShutdown != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		if err := a.traceShutdown(ctx); err != nil {
			slog.Warn("failed to shut down tracing", "error", err)
		}
		cancel()
	}
	if a.history != nil {
		if err := a.history.Close(); err != nil {
			slog.Warn("failed to close history store", "error", err)
		}
	}
}

// WriteOutputs renders every configured report target. Empty paths disable
// their format.
func (a *App) WriteOutputs(result ports.WorkspaceResult) error {
	out := a.config().Output

	if out.TSV != "" {
		gen := report.NewTSVGenerator(result)
		routesTSV, err := gen.Generate()
		if err != nil {
			return err
		}
		tsv := routesTSV
		if result.Unresolved > 0 {
			unresolvedTSV, err := gen.GenerateUnresolved()
			if err != nil {
				return err
			}
			tsv = strings.TrimRight(routesTSV, "\n") + "\n\n" + strings.TrimRight(unresolvedTSV, "\n") + "\n"
		}
		if err := util.WriteStringWithDirs(out.TSV, tsv, 0o644); err != nil {
			return err
		}
	}

	if out.Markdown != "" {
		if err := a.writeMarkdown(out.Markdown, result); err != nil {
			return err
		}
	}

	if out.OpenAPI != "" {
		gen := report.NewOpenAPIGenerator()
		doc, err := gen.Generate(result, report.OpenAPIOptions{
			Title:   a.projectName(),
			Version: VERSION,
		})
		if err != nil {
			return err
		}
		if err := util.WriteFileWithDirs(out.OpenAPI, doc, 0o644); err != nil {
			return err
		}
	}

	if out.Trends != "" {
		if err := a.writeTrends(out.Trends); err != nil {
			return err
		}
	}

	return nil
}

func (a *App) writeMarkdown(path string, result ports.WorkspaceResult) error {
	gen := report.NewMarkdownGenerator()
	data := report.MarkdownReportData{Result: result}
	if trends, ok := a.loadTrends(); ok {
		data.Trends = &trends
	}
	opts := report.MarkdownReportOptions{
		ProjectName:         a.projectName(),
		ProjectRoot:         workingDir(),
		Version:             VERSION,
		TableOfContents:     true,
		CollapsibleSections: true,
	}

	if existing, err := os.ReadFile(path); err == nil && report.HasMarkers(string(existing), markdownMarker) {
		section, err := gen.GenerateSection(data, opts)
		if err != nil {
			return err
		}
		return report.InjectSection(path, markdownMarker, section)
	}

	content, err := gen.Generate(data, opts)
	if err != nil {
		return err
	}
	return util.WriteStringWithDirs(path, content, 0o644)
}

func (a *App) writeTrends(path string) error {
	trends, ok := a.loadTrends()
	if !ok {
		return nil
	}

	var data []byte
	var err error
	if strings.EqualFold(filepath.Ext(path), ".json") {
		data, err = report.RenderTrendJSON(trends)
	} else {
		data, err = report.RenderTrendTSV(trends)
	}
	if err != nil {
		return err
	}
	return util.WriteFileWithDirs(path, data, 0o644)
}

func (a *App) saveSnapshot(result ports.WorkspaceResult) {
	if a.history == nil {
		return
	}
	if _, err := app.CaptureSnapshot(a.history, a.config().History.ProjectKey, result); err != nil {
		slog.Warn("failed to save history snapshot", "error", err)
	}
}

func (a *App) loadTrends() (history.TrendReport, bool) {
	if a.history == nil {
		return history.TrendReport{}, false
	}

	since := time.Now().AddDate(0, 0, -30)
	snapshots, err := a.history.LoadSnapshots(a.projectKey(), since)
	if err != nil {
		slog.Warn("failed to load history snapshots", "error", err)
		return history.TrendReport{}, false
	}
	if len(snapshots) == 0 {
		return history.TrendReport{}, false
	}

	trends, err := history.BuildTrendReport(snapshots, trendWindow)
	if err != nil {
		return history.TrendReport{}, false
	}
	return trends, true
}

// PrintSummary writes a plain-text scan summary with a sample of resolved
// routes. Disabled through [alerts] terminal = false and in UI mode.
func (a *App) PrintSummary(result ports.WorkspaceResult) {
	cfg := a.config()
	if a.UIMode || !cfg.Alerts.TerminalEnabled() {
		return
	}

	fmt.Println(strings.Repeat("-", 40))
	fmt.Printf("Scan: %d files, %d decorators in %v\n",
		result.Scanned, result.Decorators, result.Duration.Round(time.Millisecond))

	if result.Routes > 0 {
		fmt.Printf("▸ %d ROUTES RESOLVED:\n", result.Routes)
		shown := 0
	sample:
		for _, file := range result.Files {
			for _, ann := range file.Annotations {
				if shown >= 5 {
					break sample
				}
				fmt.Printf("   %s %s in %s:%d\n", ann.Route.Method, ann.Route.FullPath, file.File, ann.Line)
				shown++
			}
		}
		if result.Routes > shown {
			fmt.Printf("   ... and %d more\n", result.Routes-shown)
		}
	} else {
		fmt.Println("▸ No routes resolved.")
	}

	if result.Unresolved > 0 {
		fmt.Printf("❓ FOUND %d UNRESOLVED DECORATORS:\n", result.Unresolved)
		for _, file := range result.Files {
			for _, dec := range file.Unresolved {
				fmt.Printf("   %s (%s) in %s:%d\n", decoratorReference(dec), dec.Reason, dec.File, dec.Line)
			}
		}
	} else {
		fmt.Println("✅ No unresolved decorators.")
	}
	fmt.Println(strings.Repeat("-", 40))

	if cfg.Alerts.Beep && result.Unresolved > 0 {
		fmt.Print("\a")
	}
}

// handleUpdate reacts to a single re-annotated file in watch mode.
func (a *App) handleUpdate(update ports.WatchUpdate) {
	a.mu.RLock()
	program := a.teaProgram
	a.mu.RUnlock()

	if program != nil {
		program.Send(updateMsg{
			files:   a.Core.CurrentResults(),
			summary: update.Summary,
		})
	} else if !a.UIMode && a.config().Alerts.TerminalEnabled() {
		fmt.Printf("▸ %s: %d routes, %d unresolved\n",
			update.File, len(update.Result.Annotations), len(update.Result.Unresolved))
	}

	if err := a.WriteOutputs(a.currentWorkspaceResult(update.Summary)); err != nil {
		slog.Error("failed to refresh outputs", "error", err)
	}
}

func (a *App) handleConfigReload(next *config.Config) {
	config.ApplyEnvOverrides(next)
	a.Core.ApplyConfig(next)

	a.mu.Lock()
	a.cfg = next
	a.mu.Unlock()
}

func (a *App) currentWorkspaceResult(summary ports.WorkspaceSummary) ports.WorkspaceResult {
	return ports.WorkspaceResult{
		Files:      a.Core.CurrentResults(),
		Scanned:    summary.FilesScanned,
		Decorators: summary.Decorators,
		Routes:     summary.Routes,
		Unresolved: summary.Unresolved,
	}
}

func (a *App) config() *config.Config {
	a.mu.RLock()
	defer a.mu.RUnlock()
	return a.cfg
}

func (a *App) projectKey() string {
	key := strings.TrimSpace(a.config().History.ProjectKey)
	if key == "" {
		return "default"
	}
	return key
}

func (a *App) projectName() string {
	if key := strings.TrimSpace(a.config().History.ProjectKey); key != "" {
		return key
	}
	return filepath.Base(workingDir())
}

func decoratorReference(dec ports.UnresolvedDecorator) string {
	if len(dec.PropertyPath) == 0 {
		return dec.Base
	}
	return dec.Base + "." + strings.Join(dec.PropertyPath, ".")
}

func workingDir() string {
	cwd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return cwd
}
