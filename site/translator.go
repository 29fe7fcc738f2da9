// Package site renders a document tree into HTML pages.
package site

import (
	"context"
	"errors"
	"html"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/google/uuid"

	"mdsite/doctree"
	"mdsite/links"
	"mdsite/logfields"
	"mdsite/metrics"
	"mdsite/page"
	"mdsite/renderer"
	"mdsite/toc"
)

// HeadExtras is inserted into the $head slot of every page.
const HeadExtras = "<link href='css/main.css' rel='stylesheet' type='text/css'>"

// headFor returns the $head fragment for a page: HeadExtras, plus a meta
// description when the document declares one.
func headFor(meta renderer.FrontMatter) string {
	desc := strings.TrimSpace(meta.Description)
	if desc == "" {
		return HeadExtras
	}
	return HeadExtras + "\n<meta name='description' content='" + html.EscapeString(desc) + "'>"
}

// Converter turns a Markdown body into an HTML fragment.
type Converter interface {
	Convert(src []byte) ([]byte, error)
}

// Writer persists a rendered page. Writes to distinct nodes must not
// interfere with each other.
type Writer interface {
	WriteHTML(node *doctree.Node, html string) error
}

// LoadFunc reads the raw source of a document.
type LoadFunc func(path string) ([]byte, error)

// Options configures a Translator. Writer is required; the rest default.
type Options struct {
	Template  string
	Writer    Writer
	Converter Converter
	TOC       *toc.Builder
	Load      LoadFunc
	Logger    *slog.Logger
	Metrics   metrics.Recorder
}

// Stats summarises a finished render pass.
type Stats struct {
	BuildID  string
	Pages    int
	Duration time.Duration
}

// Translator walks a document tree and renders every leaf to a page.
type Translator struct {
	template string
	writer   Writer
	conv     Converter
	toc      *toc.Builder
	load     LoadFunc
	log      *slog.Logger
	metrics  metrics.Recorder
}

// NewTranslator applies defaults to opts and returns a Translator.
func NewTranslator(opts Options) *Translator {
	t := &Translator{
		template: opts.Template,
		writer:   opts.Writer,
		conv:     opts.Converter,
		toc:      opts.TOC,
		load:     opts.Load,
		log:      opts.Logger,
		metrics:  opts.Metrics,
	}
	if t.conv == nil {
		t.conv = renderer.New()
	}
	if t.toc == nil {
		t.toc = toc.NewBuilder()
	}
	if t.load == nil {
		t.load = os.ReadFile
	}
	if t.log == nil {
		t.log = slog.Default()
	}
	if t.metrics == nil {
		t.metrics = metrics.NoopRecorder{}
	}
	return t
}

// renderContext is private to a single leaf's render step.
type renderContext struct {
	leaf   *doctree.Node
	root   *doctree.Node
	prefix string
}

// Render visits root depth-first and writes one page per leaf, in traversal
// order. The first failing leaf aborts the run; pages already written stay.
func (t *Translator) Render(ctx context.Context, root *doctree.Node) (Stats, error) {
	stats := Stats{BuildID: uuid.NewString()}
	log := t.log.With(logfields.BuildID(stats.BuildID))
	start := time.Now()

	err := t.renderTree(ctx, log, root, root, &stats)
	stats.Duration = time.Since(start)

	t.metrics.ObserveBuildDuration(stats.Duration)
	t.metrics.SetPagesRendered(stats.Pages)
	switch {
	case err == nil:
		t.metrics.IncBuildOutcome(metrics.ResultSuccess)
		log.Info("Site rendered", logfields.Pages(stats.Pages), logfields.DurationMS(float64(stats.Duration.Microseconds())/1000))
	case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
		t.metrics.IncBuildOutcome(metrics.ResultCanceled)
		log.Warn("Render canceled", logfields.Pages(stats.Pages))
	default:
		t.metrics.IncBuildOutcome(metrics.ResultFailed)
		log.Error("Render failed", logfields.Pages(stats.Pages), logfields.Error(err))
	}
	return stats, err
}

func (t *Translator) renderTree(ctx context.Context, log *slog.Logger, node, root *doctree.Node, stats *Stats) error {
	switch node.Kind() {
	case doctree.KindFolder:
		for _, c := range node.Children() {
			if err := t.renderTree(ctx, log, c, root, stats); err != nil {
				return err
			}
		}
		return nil
	default:
		if err := ctx.Err(); err != nil {
			return err
		}
		rc := renderContext{leaf: node, root: root, prefix: links.Prefix(node.Depth())}
		pageStart := time.Now()
		if err := t.renderLeaf(rc); err != nil {
			t.metrics.IncPageResult(metrics.ResultFailed)
			return err
		}
		elapsed := time.Since(pageStart)
		t.metrics.ObservePageDuration(elapsed)
		t.metrics.IncPageResult(metrics.ResultSuccess)
		stats.Pages++
		log.Debug("Page rendered",
			logfields.Path(node.Path()),
			logfields.Page(node.OutputPath()),
			logfields.Depth(node.Depth()),
			logfields.DurationMS(float64(elapsed.Microseconds())/1000))
		return nil
	}
}

func (t *Translator) renderLeaf(rc renderContext) error {
	leaf := rc.leaf
	src, err := t.load(leaf.Path())
	if err != nil {
		return &ContentLoadError{Path: leaf.Path(), Err: err}
	}
	meta, body := renderer.SplitFrontMatter(src)
	content, err := t.conv.Convert(body)
	if err != nil {
		return &ParseError{Path: leaf.Path(), Err: err}
	}

	nav := t.toc.Build(rc.root, leaf)
	title := meta.Title
	if title == "" {
		title = leaf.Title()
	}

	out := page.Compose(links.Relativize(t.template, rc.prefix), page.Slots{
		Content: string(content),
		TOC:     links.Relativize(nav, rc.prefix),
		Head:    links.Relativize(headFor(meta), rc.prefix),
		Title:   html.EscapeString(title),
	})

	if err := t.writer.WriteHTML(leaf, out); err != nil {
		return &WriteError{Path: leaf.Path(), Output: leaf.OutputPath(), Err: err}
	}
	return nil
}
