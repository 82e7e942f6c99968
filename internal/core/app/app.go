package app

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"sync"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"routelens/internal/annotate"
	"routelens/internal/core/config"
	"routelens/internal/core/errors"
	"routelens/internal/core/ports"
	"routelens/internal/core/watcher"
	"routelens/internal/engine/contracts"
	"routelens/internal/engine/parser"
	"routelens/internal/engine/resolver"
	"routelens/internal/shared/observability"
	"routelens/internal/shared/util"
)

const limiterTTL = 10 * time.Minute

// App wires the parsing, resolution and annotation engines together and
// owns the caches shared between them.
type App struct {
	Config   *config.Config
	Parser   *parser.Parser
	Exports  *contracts.Cache
	Resolver *resolver.RouteResolver

	renderMu sync.RWMutex
	renderer *annotate.Renderer

	results *resultCache

	// Reverse index from contract file to the importing files whose
	// decorators resolved through it.
	depsMu     sync.Mutex
	dependents map[string]map[string]struct{}

	// Latest per-file results backing the workspace summary.
	stateMu   sync.RWMutex
	byFile    map[string]ports.FileAnnotations
	updatedAt time.Time

	updateMu sync.RWMutex
	onUpdate func(ports.WatchUpdate)

	// Last issued annotation token per file. A result is published only
	// if its token is still current when it completes.
	tokenMu sync.Mutex
	tokens  map[string]string

	limiters      *util.LimiterRegistry
	activeWatcher *watcher.Watcher
}

// New builds an App from a validated configuration.
func New(cfg *config.Config) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config is required")
	}

	loader := parser.NewGrammarLoader()

	return &App{
		Config:     cfg,
		Parser:     parser.NewParser(loader, parser.DefaultDecoratorName),
		Exports:    contracts.NewCache(contracts.NewBuilder(loader)),
		Resolver:   resolver.NewRouteResolver(),
		renderer:   annotate.NewRenderer(annotationOptions(cfg)),
		results:    newResultCache(cfg.Cache.Results, cfg.Cache.ResultTTL),
		dependents: make(map[string]map[string]struct{}),
		byFile:     make(map[string]ports.FileAnnotations),
		tokens:     make(map[string]string),
		limiters:   util.NewLimiterRegistry(cfg.Watch.MaxUpdatesPerSecond, cfg.Watch.Burst, limiterTTL),
	}, nil
}

func annotationOptions(cfg *config.Config) annotate.Options {
	return annotate.Options{
		Enabled:     cfg.Annotations.IsEnabled(),
		ShowMethod:  cfg.Annotations.ShowsHTTPMethod(),
		ShowPath:    cfg.Annotations.ShowsPath(),
		ShowSummary: cfg.Annotations.ShowsSummary(),
		Prefix:      cfg.Annotations.Prefix,
	}
}

// ApplyConfig swaps in a reloaded configuration. Annotation rendering and
// watch rate limits take effect immediately; scan paths, exclude patterns
// and cache sizing apply from the next scan or restart.
func (a *App) ApplyConfig(cfg *config.Config) {
	if cfg == nil {
		return
	}

	a.renderMu.Lock()
	a.renderer = annotate.NewRenderer(annotationOptions(cfg))
	a.renderMu.Unlock()

	a.stateMu.Lock()
	a.Config = cfg
	a.limiters = util.NewLimiterRegistry(cfg.Watch.MaxUpdatesPerSecond, cfg.Watch.Burst, limiterTTL)
	a.stateMu.Unlock()

	slog.Info("configuration applied", "scan_paths", len(cfg.ScanPaths))
}

// AnnotateFile parses one importing file and resolves every decorator call
// site found in it. A file the grammar cannot parse yields an empty result
// rather than an error; per-decorator failures land in Unresolved.
func (a *App) AnnotateFile(ctx context.Context, path string) (ports.FileAnnotations, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.AnnotateFile",
		trace.WithAttributes(attribute.String("file.path", path)))
	defer span.End()
	start := time.Now()

	if !a.Parser.IsSupportedPath(path) {
		err := errors.New(errors.CodeNotSupported, "unsupported file type")
		return ports.FileAnnotations{}, errors.AddContext(err, errors.CtxPath, path)
	}

	content, err := os.ReadFile(path)
	if err != nil {
		wrapped := errors.Wrap(err, errors.CodeIOError, "read source file")
		return ports.FileAnnotations{}, errors.AddContext(wrapped, errors.CtxPath, path)
	}

	result := ports.FileAnnotations{
		File:     path,
		Language: a.Parser.GetLanguage(path),
	}

	file, err := a.Parser.ParseFile(path, content)
	if err != nil {
		slog.Warn("skipping unparseable file", "path", path, "error", err)
		result.Duration = time.Since(start)
		return result, nil
	}

	refs := file.Decorators
	if len(refs) > 0 {
		observability.DecoratorsFound.Add(float64(len(refs)))
	}

	// Each call site resolves independently; the indexed slice keeps the
	// output in source order.
	outcomes := make([]decoratorOutcome, len(refs))
	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		go func(i int, ref parser.DecoratorReference) {
			defer wg.Done()
			outcomes[i] = a.resolveDecorator(ctx, file, ref)
		}(i, ref)
	}
	wg.Wait()

	for i, out := range outcomes {
		if out.ok {
			result.Annotations = append(result.Annotations, annotate.Annotation{
				Line:   refs[i].Location.Line,
				Column: refs[i].Location.Column,
				Text:   a.renderText(out.info),
				Route:  out.info,
			})
			continue
		}
		result.Unresolved = append(result.Unresolved, ports.UnresolvedDecorator{
			File:         path,
			Line:         refs[i].Location.Line,
			Column:       refs[i].Location.Column,
			Base:         refs[i].BaseIdentifier,
			PropertyPath: refs[i].PropertyPath,
			Reason:       out.reason,
		})
	}

	result.Duration = time.Since(start)
	observability.AnnotationDuration.WithLabelValues("file").Observe(result.Duration.Seconds())
	return result, nil
}

// AnnotateWorkspace scans the configured paths and runs the pipeline over
// every supported file found.
func (a *App) AnnotateWorkspace(ctx context.Context) (ports.WorkspaceResult, error) {
	ctx, span := observability.Tracer.Start(ctx, "app.AnnotateWorkspace")
	defer span.End()
	start := time.Now()

	files, err := a.ScanWorkspace()
	if err != nil {
		return ports.WorkspaceResult{}, err
	}

	result := ports.WorkspaceResult{Files: make([]ports.FileAnnotations, 0, len(files))}
	for i, path := range files {
		if err := ctx.Err(); err != nil {
			return ports.WorkspaceResult{}, err
		}

		fa, err := a.AnnotateFile(ctx, path)
		if err != nil {
			slog.Warn("failed to annotate file", "path", path, "error", err)
			continue
		}
		a.storeFileResult(fa)

		result.Files = append(result.Files, fa)
		result.Decorators += len(fa.Annotations) + len(fa.Unresolved)
		result.Routes += len(fa.Annotations)
		result.Unresolved += len(fa.Unresolved)

		if i%100 == 0 {
			a.pruneOnMemoryPressure()
		}
	}

	result.Scanned = len(files)
	result.Duration = time.Since(start)
	observability.AnnotationDuration.WithLabelValues("workspace").Observe(result.Duration.Seconds())
	span.SetAttributes(
		attribute.Int("files.scanned", result.Scanned),
		attribute.Int("routes.resolved", result.Routes),
	)
	return result, nil
}

type decoratorOutcome struct {
	info   resolver.RouteInfo
	ok     bool
	reason string
}

func unresolvedOutcome(code errors.ErrorCode) decoratorOutcome {
	return decoratorOutcome{reason: string(code)}
}

// resolveDecorator serves one call site from the result cache or walks it
// through the resolution chain and caches the outcome either way.
func (a *App) resolveDecorator(ctx context.Context, file *parser.SourceFile, ref parser.DecoratorReference) decoratorOutcome {
	key := resultKey(file.Path, ref)
	if cached, ok := a.results.get(key); ok {
		observability.ResultCacheHits.Inc()
		return decoratorOutcome{info: cached.info, ok: cached.ok, reason: cached.reason}
	}
	observability.ResultCacheMisses.Inc()

	out := a.resolveUncached(ctx, file, ref)
	a.results.put(key, resultEntry{info: out.info, ok: out.ok, reason: out.reason})

	if out.ok {
		observability.RoutesResolved.Inc()
	} else {
		observability.RoutesUnresolved.WithLabelValues(out.reason).Inc()
	}
	return out
}

// resolveUncached runs the chain: import binding, module path on disk,
// contract export table, route traversal.
func (a *App) resolveUncached(ctx context.Context, file *parser.SourceFile, ref parser.DecoratorReference) decoratorOutcome {
	binding, ok := file.Imports[ref.BaseIdentifier]
	if !ok {
		return unresolvedOutcome(errors.CodeImportNotResolved)
	}

	contractPath, ok := resolver.ResolveModulePath(binding.ModulePath, file.Path)
	if !ok {
		return unresolvedOutcome(errors.CodeImportNotResolved)
	}

	table, err := a.Exports.Lookup(ctx, contractPath)
	if err != nil {
		return unresolvedOutcome(errors.CodeOf(err))
	}
	a.recordDependency(contractPath, file.Path)

	info, ok := a.Resolver.Resolve(table, ref.PropertyPath, binding)
	if !ok {
		return unresolvedOutcome(errors.CodeStructuralMismatch)
	}
	return decoratorOutcome{info: info, ok: true}
}

func (a *App) renderText(info resolver.RouteInfo) string {
	a.renderMu.RLock()
	defer a.renderMu.RUnlock()
	return a.renderer.Render(info)
}

// pruneOnMemoryPressure sheds the oldest cached results when the heap
// grows past the configured ceiling.
func (a *App) pruneOnMemoryPressure() {
	maxHeapMB := a.Config.Cache.MaxHeapMB
	if maxHeapMB <= 0 {
		return
	}
	if heap := util.GetHeapAllocMB(); heap > uint64(maxHeapMB) {
		slog.Debug("heap ceiling exceeded, pruning result cache", "heap_mb", heap, "max_mb", maxHeapMB)
		a.results.prune(20)
	}
}

func (a *App) recordDependency(contractPath, importingFile string) {
	a.depsMu.Lock()
	defer a.depsMu.Unlock()

	set, ok := a.dependents[contractPath]
	if !ok {
		set = make(map[string]struct{})
		a.dependents[contractPath] = set
	}
	set[importingFile] = struct{}{}
}

func (a *App) dependentsOf(contractPath string) []string {
	a.depsMu.Lock()
	defer a.depsMu.Unlock()
	return util.SortedStringKeys(a.dependents[contractPath])
}

func (a *App) storeFileResult(fa ports.FileAnnotations) {
	a.stateMu.Lock()
	a.byFile[fa.File] = fa
	a.updatedAt = time.Now()
	a.stateMu.Unlock()
}

// CurrentResults returns the latest per-file results, sorted by path.
func (a *App) CurrentResults() []ports.FileAnnotations {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	files := make([]ports.FileAnnotations, 0, len(a.byFile))
	for _, fa := range a.byFile {
		files = append(files, fa)
	}
	sort.Slice(files, func(i, j int) bool { return files[i].File < files[j].File })
	return files
}

// Summary aggregates the latest per-file results.
func (a *App) Summary() ports.WorkspaceSummary {
	a.stateMu.RLock()
	defer a.stateMu.RUnlock()

	summary := ports.WorkspaceSummary{
		FilesScanned: len(a.byFile),
		UpdatedAt:    a.updatedAt,
	}
	for _, fa := range a.byFile {
		summary.Decorators += len(fa.Annotations) + len(fa.Unresolved)
		summary.Routes += len(fa.Annotations)
		summary.Unresolved += len(fa.Unresolved)
	}
	return summary
}

// SetUpdateHandler registers the callback invoked after each published
// watch update. Passing nil clears it.
func (a *App) SetUpdateHandler(handler func(ports.WatchUpdate)) {
	a.updateMu.Lock()
	a.onUpdate = handler
	a.updateMu.Unlock()
}

func (a *App) emitUpdate(update ports.WatchUpdate) {
	a.updateMu.RLock()
	handler := a.onUpdate
	a.updateMu.RUnlock()

	if handler != nil {
		handler(update)
	}
}
