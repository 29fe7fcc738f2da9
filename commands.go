package main

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"github.com/alecthomas/kong"

	"mdsite/config"
	"mdsite/logfields"
	"mdsite/metrics"
	"mdsite/server"
	"mdsite/site"
)

// CLI definition & global flags.
type CLI struct {
	Config  string           `short:"c" help:"Configuration file path" default:"mdsite.yaml"`
	Verbose bool             `short:"v" help:"Enable verbose logging"`
	Version kong.VersionFlag `name:"version" help:"Show version and exit"`

	Build BuildCmd `cmd:"" help:"Render the site once"`
	Watch WatchCmd `cmd:"" help:"Render the site and rebuild whenever sources change"`
	Serve ServeCmd `cmd:"" help:"Preview the site over HTTP with live reload"`
}

// AfterApply runs after flag parsing; sets up logging before config is read.
func (c *CLI) AfterApply() error {
	c.setLogger(slog.LevelInfo)
	return nil
}

func (c *CLI) setLogger(level slog.Level) *slog.Logger {
	if c.Verbose {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
	return logger
}

// SiteFlags override the corresponding configuration values.
type SiteFlags struct {
	Source   string `short:"s" help:"Source directory of Markdown documents (overrides config)"`
	Output   string `short:"o" help:"Output directory for the generated site (overrides config)"`
	Template string `short:"t" help:"HTML page template (overrides config)"`
}

// load reads the configuration, applies flag overrides and configures the
// logger from the result.
func (c *CLI) load(flags SiteFlags) (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load(c.Config)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	if flags.Source != "" {
		cfg.Source = flags.Source
	}
	if flags.Output != "" {
		cfg.Output = flags.Output
	}
	if flags.Template != "" {
		cfg.Template = flags.Template
	}
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	level, _ := config.ParseLevel(cfg.LogLevel)
	return cfg, c.setLogger(level), nil
}

// buildConfig maps the configuration onto a site build. An output directory
// nested inside the source directory is excluded from scanning.
func buildConfig(cfg *config.Config, log *slog.Logger, rec metrics.Recorder) site.BuildConfig {
	exclude := append([]string(nil), cfg.Exclude...)
	if rel, ok := nestedRel(cfg.Source, cfg.Output); ok {
		exclude = append(exclude, rel)
	}
	return site.BuildConfig{
		Source:         cfg.Source,
		Output:         cfg.Output,
		Template:       cfg.Template,
		Assets:         cfg.Assets,
		Exclude:        exclude,
		Title:          cfg.Title,
		StrictTemplate: cfg.StrictTemplate,
		Logger:         log,
		Metrics:        rec,
	}
}

// nestedRel returns child's slash path relative to parent when child lies
// inside parent.
func nestedRel(parent, child string) (string, bool) {
	absParent, err := filepath.Abs(parent)
	if err != nil {
		return "", false
	}
	absChild, err := filepath.Abs(child)
	if err != nil {
		return "", false
	}
	rel, err := filepath.Rel(absParent, absChild)
	if err != nil || rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", false
	}
	return filepath.ToSlash(rel), true
}

func runBuild(ctx context.Context, cfg *config.Config, log *slog.Logger, rec metrics.Recorder) error {
	stats, err := site.Build(ctx, buildConfig(cfg, log, rec))
	if err != nil {
		return err
	}
	log.Info("Build complete",
		logfields.BuildID(stats.BuildID),
		logfields.Pages(stats.Pages),
		logfields.Output(cfg.Output))
	return nil
}

// BuildCmd implements the 'build' command.
type BuildCmd struct {
	SiteFlags `embed:""`
}

func (b *BuildCmd) Run(cli *CLI) error {
	cfg, log, err := cli.load(b.SiteFlags)
	if err != nil {
		return err
	}
	return runBuild(context.Background(), cfg, log, nil)
}

// newWatcher rebuilds the whole site whenever sources, assets or the
// template change.
func newWatcher(cfg *config.Config, log *slog.Logger, rec metrics.Recorder) (*server.LiveReload, error) {
	lrCfg := server.LiveReloadConfig{
		Dirs:   append([]string{cfg.Source}, cfg.Assets...),
		Ignore: []string{cfg.Output},
		Logger: log,
		Rebuild: func() error {
			return runBuild(context.Background(), cfg, log, rec)
		},
	}
	if cfg.Template != "" {
		lrCfg.Files = []string{cfg.Template}
	}
	return server.NewLiveReload(lrCfg)
}

// WatchCmd implements the 'watch' command.
type WatchCmd struct {
	SiteFlags `embed:""`
}

func (w *WatchCmd) Run(cli *CLI) error {
	cfg, log, err := cli.load(w.SiteFlags)
	if err != nil {
		return err
	}
	if err := runBuild(context.Background(), cfg, log, nil); err != nil {
		log.Error("Initial build failed; waiting for changes", logfields.Error(err))
	}

	lr, err := newWatcher(cfg, log, nil)
	if err != nil {
		return fmt.Errorf("create watcher: %w", err)
	}
	if err := lr.Start(); err != nil {
		return fmt.Errorf("start watcher: %w", err)
	}
	defer lr.Stop()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	log.Info("Watching for changes", logfields.Source(cfg.Source))
	<-ctx.Done()
	log.Info("Shutting down")
	return nil
}

// ServeCmd implements the 'serve' command.
type ServeCmd struct {
	SiteFlags    `embed:""`
	Host         string `help:"Host to bind to (overrides config)"`
	Port         int    `short:"p" help:"Port to bind to (0 picks a free port from 8080)"`
	NoLiveReload bool   `name:"no-livereload" help:"Disable rebuild on change and browser reload"`
	Metrics      bool   `help:"Expose Prometheus metrics on /metrics"`
}

func (s *ServeCmd) Run(cli *CLI) error {
	cfg, log, err := cli.load(s.SiteFlags)
	if err != nil {
		return err
	}
	if s.Host != "" {
		cfg.Serve.Host = s.Host
	}
	if s.Port != 0 {
		cfg.Serve.Port = s.Port
	}
	if cfg.Serve.Port == 0 {
		cfg.Serve.Port = findAvailablePort(cfg.Serve.Host)
		if cfg.Serve.Port == 0 {
			return fmt.Errorf("failed to find an available port")
		}
	}

	var rec metrics.Recorder = metrics.NoopRecorder{}
	srvCfg := server.Config{
		Host:      cfg.Serve.Host,
		Port:      cfg.Serve.Port,
		OutputDir: cfg.Output,
		Logger:    log,
	}
	if s.Metrics || cfg.Serve.Metrics {
		pr := metrics.NewPrometheusRecorder(nil)
		rec = pr
		srvCfg.Metrics = pr.Handler()
	}

	if err := runBuild(context.Background(), cfg, log, rec); err != nil {
		log.Error("Initial build failed; serving previous output", logfields.Error(err))
	}

	if cfg.Serve.LiveReloadEnabled() && !s.NoLiveReload {
		lr, err := newWatcher(cfg, log, rec)
		if err != nil {
			return fmt.Errorf("create watcher: %w", err)
		}
		if err := lr.Start(); err != nil {
			return fmt.Errorf("start watcher: %w", err)
		}
		srvCfg.EnableLiveReload = true
		srvCfg.LiveReload = lr
	}

	srv := server.NewServer(srvCfg)
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	go func() {
		<-ctx.Done()
		log.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Stop(shutdownCtx); err != nil {
			log.Warn("Shutdown incomplete", logfields.Error(err))
		}
	}()

	log.Info("Serving site", logfields.Output(cfg.Output), "url", fmt.Sprintf("http://%s:%d", cfg.Serve.Host, cfg.Serve.Port))
	return srv.Start()
}

// findAvailablePort scans for an available port starting from 8080
func findAvailablePort(host string) int {
	for port := 8080; port < 65535; port++ {
		ln, err := net.Listen("tcp", net.JoinHostPort(host, fmt.Sprint(port)))
		if err == nil {
			ln.Close()
			return port
		}
	}
	return 0
}
