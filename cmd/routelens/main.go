// # cmd/routelens/main.go
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"routelens/internal/core/config"
)

type pathList []string

func (p *pathList) String() string { return strings.Join(*p, ",") }

func (p *pathList) Set(value string) error {
	value = strings.TrimSpace(value)
	if value == "" {
		return fmt.Errorf("path must not be empty")
	}
	*p = append(*p, value)
	return nil
}

var (
	configPath   = flag.String("config", "", "Path to config file (default: nearest routelens.toml)")
	watch        = flag.Bool("watch", false, "Keep running and re-annotate files as they change")
	uiMode       = flag.Bool("ui", false, "Terminal dashboard (implies watch mode)")
	once         = flag.Bool("once", false, "Run a single pass and exit")
	tsvPath      = flag.String("tsv", "", "Write the route inventory TSV to this path")
	markdownPath = flag.String("markdown", "", "Write the markdown report to this path")
	openapiPath  = flag.String("openapi", "", "Write the OpenAPI document to this path")
	debug        = flag.Bool("debug", false, "Enable debug logging")
	version      = flag.Bool("version", false, "Print version and exit")

	scanPaths pathList
)

func init() {
	flag.Var(&scanPaths, "path", "Scan path override, repeatable")
}

const VERSION = "1.0.0"

func main() {
	flag.Parse()

	if *version {
		fmt.Printf("routelens v%s\n", VERSION)
		os.Exit(0)
	}

	// Setup logging
	logLevel := slog.LevelInfo
	if *debug {
		logLevel = slog.LevelDebug
	}

	output := os.Stdout
	if *uiMode {
		// In UI mode, avoid stdout logs corrupting the TUI.
		logPath := resolveLogPath()
		if err := os.MkdirAll(filepath.Dir(logPath), 0700); err != nil {
			fmt.Fprintf(os.Stderr, "warning: failed to create log dir for %s: %v\n", logPath, err)
		} else {
			if fi, err := os.Lstat(logPath); err == nil && (fi.Mode()&os.ModeSymlink) != 0 {
				fmt.Fprintf(os.Stderr, "warning: refusing to write logs to symlink path %s\n", logPath)
			} else {
				f, err := os.OpenFile(logPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
				if err == nil {
					output = f
				} else {
					fmt.Fprintf(os.Stderr, "warning: failed to open log file %s: %v\n", logPath, err)
				}
			}
		}
	}

	logger := slog.New(slog.NewTextHandler(output, &slog.HandlerOptions{
		Level: logLevel,
	}))
	slog.SetDefault(logger)

	// Load config
	cfgFile := *configPath
	if cfgFile == "" {
		if cwd, err := os.Getwd(); err == nil {
			cfgFile = config.FindConfig(cwd)
		}
	}

	var cfg *config.Config
	if cfgFile != "" {
		loaded, err := config.Load(cfgFile)
		if err != nil {
			slog.Error("failed to load config", "path", cfgFile, "error", err)
			os.Exit(1)
		}
		cfg = loaded
	} else {
		cfg = config.DefaultConfig()
	}
	config.ApplyEnvOverrides(cfg)

	// Flag overrides
	if len(scanPaths) > 0 {
		cfg.ScanPaths = scanPaths
	} else if flag.NArg() > 0 {
		cfg.ScanPaths = flag.Args()
	}
	if *tsvPath != "" {
		cfg.Output.TSV = *tsvPath
	}
	if *markdownPath != "" {
		cfg.Output.Markdown = *markdownPath
	}
	if *openapiPath != "" {
		cfg.Output.OpenAPI = *openapiPath
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := NewApp(cfg)
	if err != nil {
		slog.Error("failed to initialize app", "error", err)
		os.Exit(1)
	}
	app.ConfigFile = cfgFile
	app.UIMode = *uiMode

	if err := app.Start(ctx); err != nil {
		slog.Error("failed to start services", "error", err)
		app.Close()
		os.Exit(1)
	}

	// Initial workspace pass
	result, err := app.RunOnce(ctx)
	if err != nil {
		slog.Error("initial annotation failed", "error", err)
		app.Close()
		os.Exit(1)
	}

	if *once || (!*watch && !*uiMode) {
		app.Close()
		return
	}

	// Watch mode
	if err := app.StartWatching(ctx); err != nil {
		slog.Error("failed to start watcher", "error", err)
		app.Close()
		os.Exit(1)
	}

	if *uiMode {
		if err := app.RunUI(result); err != nil {
			slog.Error("failed to run UI", "error", err)
			app.Close()
			os.Exit(1)
		}
	} else {
		<-ctx.Done()
	}

	app.Close()
}

func resolveLogPath() string {
	if xdg := os.Getenv("XDG_STATE_HOME"); xdg != "" {
		return filepath.Join(xdg, "routelens", "routelens.log")
	}

	home, err := os.UserHomeDir()
	if err == nil && home != "" {
		return filepath.Join(home, ".local", "state", "routelens", "routelens.log")
	}

	return "routelens.log"
}
