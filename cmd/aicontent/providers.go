package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"

	"github.com/golang-cz/devslog"
	"github.com/hayeah/goo"
	"github.com/jmoiron/sqlx"
	"golang.org/x/term"

	"github.com/hayeah/aicontent/internal/bridge"
	"github.com/hayeah/aicontent/internal/config"
	"github.com/hayeah/aicontent/internal/export"
	"github.com/hayeah/aicontent/internal/metrics"
	"github.com/hayeah/aicontent/internal/metrics/chart"
	"github.com/hayeah/aicontent/internal/pathindex"
	"github.com/hayeah/aicontent/internal/persist"
	"github.com/hayeah/aicontent/internal/session"
	"github.com/hayeah/aicontent/internal/ui"
	"github.com/hayeah/aicontent/internal/walker"
)

// Root is the absolute scan root.
type Root string

// ProvideRoot resolves the positional root argument.
func ProvideRoot(args Args) (Root, error) {
	dir := args.Root
	if dir == "" {
		dir = "."
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return "", fmt.Errorf("failed to resolve root %s: %w", dir, err)
	}
	return Root(abs), nil
}

// ProvideConfig loads the config file and applies flag overrides.
func ProvideConfig(args Args, root Root) (*config.Config, error) {
	cfg, err := config.Load(args.Config, string(root))
	if err != nil {
		return nil, err
	}
	if args.Store != "" {
		cfg.Store = args.Store
	}
	if args.StateDir != "" {
		cfg.StateDir = args.StateDir
	}
	if args.TokenEstimator != "" {
		cfg.TokenEstimator = args.TokenEstimator
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProvideLogger picks the log destination: --log FILE, stderr for headless
// runs, nowhere while the tree view owns the terminal.
func ProvideLogger(args Args, streams Streams) (*slog.Logger, func(), error) {
	var out io.Writer = io.Discard
	cleanup := func() {}
	switch {
	case args.Log != "":
		f, err := os.OpenFile(args.Log, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		out = f
		cleanup = func() { f.Close() }
	case args.headless():
		out = streams.Stderr
	}

	level := slog.LevelInfo
	if args.Debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}

	var h slog.Handler = slog.NewTextHandler(out, opts)
	if args.Debug {
		h = devslog.NewHandler(out, &devslog.Options{HandlerOptions: opts})
	}
	return slog.New(h), cleanup, nil
}

// ProvideLanguages overlays the configured extensions on the defaults.
func ProvideLanguages(cfg *config.Config) pathindex.Languages {
	return pathindex.DefaultLanguages().Merge(cfg.SupportedExtensions)
}

func ProvideWalker(cfg *config.Config, logger *slog.Logger) *walker.Walker {
	return walker.New(walker.Options{
		ExtraExcludes:  cfg.Exclude,
		GlobalExcludes: cfg.UseGlobalExcludes(),
	}, goo.TypedLogger(logger, (*walker.Walker)(nil)))
}

func ProvideBridge(root Root, w *walker.Walker, logger *slog.Logger) *bridge.Bridge {
	return bridge.New(string(root), w, goo.TypedLogger(logger, (*bridge.Bridge)(nil)))
}

// ProvideDB opens the selection database when the sqlite store is
// configured, and returns a nil DB otherwise.
func ProvideDB(cfg *config.Config) (*sqlx.DB, func(), error) {
	if cfg.Store != config.StoreSQLite {
		return nil, func() {}, nil
	}
	db, err := persist.OpenDB(cfg.StateDir)
	if err != nil {
		return nil, nil, err
	}
	return db, func() { db.Close() }, nil
}

// ProvideStore returns the configured selection store, migrating the
// database first when the store is sqlite.
func ProvideStore(cfg *config.Config, root Root, db *sqlx.DB, migrator *goo.DBMigrator, logger *slog.Logger) (persist.Store, error) {
	if cfg.Store == config.StoreSQLite {
		if err := persist.Migrate(migrator); err != nil {
			return nil, err
		}
		return persist.NewSQLStore(db, string(root), logger)
	}
	return persist.NewJSONStore(cfg.StateDir, string(root), logger)
}

func ProvideExporter(root Root, langs pathindex.Languages, logger *slog.Logger) *export.Exporter {
	return export.NewExporter(string(root), langs, goo.TypedLogger(logger, (*export.Exporter)(nil)))
}

func ProvideSession(root Root, b *bridge.Bridge, store persist.Store, exporter *export.Exporter, logger *slog.Logger) *session.Session {
	return session.New(string(root), b, store, exporter, goo.TypedLogger(logger, (*session.Session)(nil)))
}

// ProvideCounter builds the token counter for --metrics.
func ProvideCounter(cfg *config.Config) (metrics.Counter, error) {
	return metrics.NewCounter(cfg.TokenEstimator)
}

// App is one invocation of the command.
type App struct {
	Args    Args
	Streams Streams
	Config  *config.Config
	Logger  *slog.Logger
	Session *session.Session
	Counter metrics.Counter
}

// Run restores the saved selection, applies --clear and --select, then either
// answers the headless flags or shows the tree view.
func (app *App) Run() error {
	s := app.Session
	if app.Args.Clear {
		if err := s.Clear(); err != nil {
			return fmt.Errorf("failed to clear selection: %w", err)
		}
	}

	globs := make([]pathindex.Glob, 0, len(app.Args.Select))
	for _, pattern := range app.Args.Select {
		g, err := pathindex.NewGlob(pattern)
		if err != nil {
			return err
		}
		globs = append(globs, g)
	}

	if err := s.Start(); err != nil {
		return err
	}
	app.Logger.Debug("scan started", "root", s.Root, "store", app.Config.Store, "config", app.Config.Source)

	if app.Args.headless() || len(globs) > 0 {
		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()
		if err := s.WaitScan(ctx); err != nil {
			return err
		}
	}
	if len(globs) > 0 {
		n := s.SelectMatching(globs...)
		app.Logger.Info("selected matching files", "patterns", app.Args.Select, "matched", n)
	}

	if app.Args.headless() {
		return app.runHeadless()
	}
	return app.runUI()
}

func (app *App) runHeadless() error {
	s := app.Session
	if app.Args.List {
		for _, p := range s.SelectedPaths() {
			fmt.Fprintln(app.Streams.Stdout, p)
		}
	}
	if !app.Args.Print && !app.Args.Copy {
		return nil
	}

	// one export feeds both sinks, so --metrics counts it once
	return app.withMetrics(func() error {
		text, err := s.ExportText()
		if err != nil {
			return err
		}
		if app.Args.Print {
			if err := (export.WriterSink{W: app.Streams.Stdout}).Send(text); err != nil {
				return err
			}
		}
		if app.Args.Copy {
			if err := app.Streams.clipboard().Send(text); err != nil {
				return err
			}
			fmt.Fprintf(app.Streams.Stderr, "copied %d files to the clipboard\n", len(s.SelectedPaths()))
		}
		return nil
	})
}

func (app *App) runUI() error {
	action, err := ui.Run(app.Session, app.Streams.clipboard(), app.Streams.Stderr)
	if err != nil {
		return err
	}
	if action != ui.ActionPrint {
		return nil
	}
	return app.withMetrics(func() error {
		_, err := app.Session.Export(app.Streams.Stdout)
		return err
	})
}

// withMetrics runs fn with the exporter observed by a metrics pool when
// --metrics is set, and prints the breakdown afterwards.
func (app *App) withMetrics(fn func() error) error {
	if !app.Args.Metrics {
		return fn()
	}

	m := metrics.NewExportMetrics(app.Counter, runtime.NumCPU())
	exporter := app.Session.Exporter
	exporter.Observe = m.Add
	defer func() { exporter.Observe = nil }()

	if err := fn(); err != nil {
		m.Wait()
		return err
	}
	return chart.Print(m.Entries(), chart.DefaultOptions(termWidth, app.Streams.Stderr))
}

// termWidth returns the width of the terminal, or 80 as a fallback.
func termWidth() int {
	width, _, err := term.GetSize(int(os.Stderr.Fd()))
	if err != nil || width <= 0 {
		return 80
	}
	return width
}
