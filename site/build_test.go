package site

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"mdsite/doctree"
	"mdsite/page"
)

func writeSource(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func readOutput(t *testing.T, root, rel string) string {
	t.Helper()
	data, err := os.ReadFile(filepath.Join(root, filepath.FromSlash(rel)))
	require.NoError(t, err)
	return string(data)
}

func TestFileWriter(t *testing.T) {
	out := t.TempDir()
	leaf := doctree.NewLeaf("src/a/b/c.md", "a/b/c.md", "C")

	require.NoError(t, FileWriter{Dir: out}.WriteHTML(leaf, "<p>c</p>"))
	assert.Equal(t, "<p>c</p>", readOutput(t, out, "a/b/c.html"))
}

func TestCopyAssets(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "theme/css/main.css", "body{}")
	writeSource(t, src, "theme/css/fonts/a.woff", "font")

	require.NoError(t, CopyAssets(out, filepath.Join(src, "theme", "css")))
	assert.Equal(t, "body{}", readOutput(t, out, "css/main.css"))
	assert.Equal(t, "font", readOutput(t, out, "css/fonts/a.woff"))

	err := CopyAssets(out, filepath.Join(src, "missing"))
	assert.ErrorContains(t, err, "copy assets")
}

func TestBuildEndToEnd(t *testing.T) {
	src := t.TempDir()
	assets := t.TempDir()
	out := filepath.Join(t.TempDir(), "site")
	writeSource(t, src, "index.md", "# Home\n\nSee the [guide](guide/intro.html).\n")
	writeSource(t, src, "guide/intro.md", "---\ntitle: Introduction\n---\nHello \"world\"\n")
	writeSource(t, src, "guide/deep/more.md", "# More\n")
	writeSource(t, assets, "css/main.css", "body{}")

	stats, err := Build(context.Background(), BuildConfig{
		Source: src,
		Output: out,
		Assets: []string{filepath.Join(assets, "css")},
		Logger: quietLogger(),
	})
	require.NoError(t, err)
	assert.Equal(t, 3, stats.Pages)

	index := readOutput(t, out, "index.html")
	assert.Contains(t, index, "<link href='./css/main.css' rel='stylesheet' type='text/css'>")
	assert.Contains(t, index, "<title>Home</title>")
	assert.Contains(t, index, "href='./guide/intro.html'>Introduction</a>")

	intro := readOutput(t, out, "guide/intro.html")
	assert.Contains(t, intro, "&ldquo;world&rdquo;")
	assert.Contains(t, intro, "<link href='../css/main.css'")
	assert.Contains(t, intro, "href='../index.html'>Home</a>")

	more := readOutput(t, out, "guide/deep/more.html")
	assert.Contains(t, more, "<link href='../../css/main.css'")
	assert.Contains(t, more, "aria-current='page' href='../../guide/deep/more.html'")

	assert.Equal(t, "body{}", readOutput(t, out, "css/main.css"))
}

func TestBuildCustomTemplate(t *testing.T) {
	src := t.TempDir()
	out := t.TempDir()
	tmpl := filepath.Join(t.TempDir(), "page.html")
	writeSource(t, src, "a.md", "text")
	require.NoError(t, os.WriteFile(tmpl, []byte("<html><head>$head</head><body>$content</body></html>"), 0o644))

	_, err := Build(context.Background(), BuildConfig{Source: src, Output: out, Template: tmpl, StrictTemplate: true, Logger: quietLogger()})
	require.NoError(t, err)

	got := readOutput(t, out, "a.html")
	assert.Equal(t, "<html><head><link href='./css/main.css' rel='stylesheet' type='text/css'></head><body><p>text</p>\n</body></html>", got)
}

func TestBuildStrictTemplateRejectsMisplacedSlot(t *testing.T) {
	src := t.TempDir()
	tmpl := filepath.Join(t.TempDir(), "page.html")
	writeSource(t, src, "a.md", "text")
	require.NoError(t, os.WriteFile(tmpl, []byte("<html><head>$content</head><body></body></html>"), 0o644))

	_, err := Build(context.Background(), BuildConfig{Source: src, Output: t.TempDir(), Template: tmpl, StrictTemplate: true, Logger: quietLogger()})

	var tce *page.TemplateCompositionError
	assert.ErrorAs(t, err, &tce)
}

func TestBuildMissingSource(t *testing.T) {
	_, err := Build(context.Background(), BuildConfig{
		Source: filepath.Join(t.TempDir(), "nope"),
		Output: t.TempDir(),
		Logger: quietLogger(),
	})
	assert.Error(t, err)
}

func TestBuildUnreadableLeafAborts(t *testing.T) {
	if os.Geteuid() == 0 {
		t.Skip("file permissions are not enforced for root")
	}
	src := t.TempDir()
	out := t.TempDir()
	writeSource(t, src, "a.md", "a")
	writeSource(t, src, "b.md", "b")
	writeSource(t, src, "c.md", "c")
	require.NoError(t, os.Chmod(filepath.Join(src, "b.md"), 0o000))
	t.Cleanup(func() { _ = os.Chmod(filepath.Join(src, "b.md"), 0o644) })

	_, err := Build(context.Background(), BuildConfig{Source: src, Output: out, Logger: quietLogger()})

	var loadErr *ContentLoadError
	require.ErrorAs(t, err, &loadErr)
	assert.Equal(t, filepath.Join(src, "b.md"), loadErr.Path)
	assert.FileExists(t, filepath.Join(out, "a.html"))
	assert.NoFileExists(t, filepath.Join(out, "c.html"))
}

func TestBuildLogsStages(t *testing.T) {
	src := t.TempDir()
	writeSource(t, src, "index.md", "# Home\n")
	var buf bytes.Buffer
	log := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))

	_, err := Build(context.Background(), BuildConfig{Source: src, Output: t.TempDir(), Logger: log})
	require.NoError(t, err)

	for _, stage := range []string{"scan", "template", "render", "assets"} {
		assert.Contains(t, buf.String(), "stage="+stage)
	}
}
