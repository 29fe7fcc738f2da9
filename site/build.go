package site

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"time"

	"mdsite/doctree"
	"mdsite/logfields"
	"mdsite/metrics"
	"mdsite/page"
)

// BuildConfig describes a full site build from a source directory.
type BuildConfig struct {
	Source         string
	Output         string
	Template       string // template file; empty selects page.Default
	Assets         []string
	Exclude        []string
	Title          string
	StrictTemplate bool

	Logger  *slog.Logger
	Metrics metrics.Recorder
}

// Build scans the source directory, renders every document into Output and
// copies the asset directories. Any failure aborts the build.
func Build(ctx context.Context, cfg BuildConfig) (Stats, error) {
	log := cfg.Logger
	if log == nil {
		log = slog.Default()
	}

	stageStart := time.Now()
	stageDone := func(name string) {
		log.Debug("Stage complete", logfields.Stage(name), logfields.DurationMS(float64(time.Since(stageStart).Microseconds())/1000))
		stageStart = time.Now()
	}

	root, err := doctree.Scan(cfg.Source, doctree.ScanOptions{Exclude: cfg.Exclude, Title: cfg.Title})
	if err != nil {
		return Stats{}, err
	}
	stageDone("scan")

	tmpl, err := page.Load(cfg.Template)
	if err != nil {
		return Stats{}, err
	}
	if cfg.StrictTemplate {
		name := cfg.Template
		if name == "" {
			name = "default"
		}
		if err := page.Validate(name, tmpl); err != nil {
			return Stats{}, err
		}
	}
	stageDone("template")
	if err := os.MkdirAll(cfg.Output, 0o755); err != nil {
		return Stats{}, fmt.Errorf("create output directory: %w", err)
	}

	log.Info("Building site", logfields.Source(cfg.Source), logfields.Output(cfg.Output))
	tr := NewTranslator(Options{
		Template: tmpl,
		Writer:   FileWriter{Dir: cfg.Output},
		Logger:   log,
		Metrics:  cfg.Metrics,
	})
	stats, err := tr.Render(ctx, root)
	if err != nil {
		return stats, err
	}
	stageDone("render")

	if err := CopyAssets(cfg.Output, cfg.Assets...); err != nil {
		return stats, err
	}
	stageDone("assets")
	return stats, nil
}
