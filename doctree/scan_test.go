package doctree

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, root, rel, content string) {
	t.Helper()
	p := filepath.Join(root, filepath.FromSlash(rel))
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
}

func relPaths(nodes []*Node) []string {
	out := make([]string, 0, len(nodes))
	for _, n := range nodes {
		out = append(out, n.RelPath())
	}
	return out
}

func TestScanBuildsTree(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "index.md", "# Welcome\n\nhello")
	writeFile(t, dir, "guide/setup.md", "---\ntitle: Setting Up\n---\nbody")
	writeFile(t, dir, "guide/getting-started.md", "no heading")
	writeFile(t, dir, "guide/notes.txt", "ignored")
	writeFile(t, dir, ".hidden/secret.md", "ignored")
	writeFile(t, dir, "_drafts.md", "ignored")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "empty"), 0o755))

	root, err := Scan(dir, ScanOptions{Title: "Docs"})
	require.NoError(t, err)

	assert.Equal(t, "Docs", root.Title())
	assert.Equal(t, 0, root.Depth())

	kids := root.Children()
	require.Len(t, kids, 3)
	assert.Equal(t, []string{"empty", "guide", "index.md"}, relPaths(kids))
	assert.True(t, kids[0].IsFolder())
	assert.Empty(t, kids[0].Children())

	guide := kids[1]
	assert.Equal(t, "Guide", guide.Title())
	assert.Equal(t, []string{"guide/getting-started.md", "guide/setup.md"}, relPaths(guide.Children()))
	assert.Equal(t, "Getting Started", guide.Children()[0].Title())
	assert.Equal(t, "Setting Up", guide.Children()[1].Title())
	assert.Equal(t, 2, guide.Children()[1].Depth())
	assert.Equal(t, filepath.Join(dir, "guide", "setup.md"), guide.Children()[1].Path())

	assert.Equal(t, "Welcome", kids[2].Title())
}

func TestScanTitleForDocumentStartingWithRule(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "list-page.md", "---\n- item one\n- item two\n---\n")
	writeFile(t, dir, "ruled.md", "---\n\n# Ruled Heading\n")

	root, err := Scan(dir, ScanOptions{})
	require.NoError(t, err)

	kids := root.Children()
	require.Len(t, kids, 2)
	assert.Equal(t, "List Page", kids[0].Title())
	assert.Equal(t, "Ruled Heading", kids[1].Title())
}

func TestScanFolderMetaOrder(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "a")
	writeFile(t, dir, "b.md", "b")
	writeFile(t, dir, "c.md", "c")
	writeFile(t, dir, "sub/x.md", "x")
	writeFile(t, dir, FolderFile, "title: Manual\norder:\n  - c\n  - sub\n")

	root, err := Scan(dir, ScanOptions{})
	require.NoError(t, err)

	assert.Equal(t, "Manual", root.Title())
	assert.Equal(t, []string{"c.md", "sub", "a.md", "b.md"}, relPaths(root.Children()))
}

func TestScanExclude(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "a.md", "a")
	writeFile(t, dir, "css/readme.md", "x")

	root, err := Scan(dir, ScanOptions{Exclude: []string{"css"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"a.md"}, relPaths(root.Children()))
}

func TestScanErrors(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "file.md", "x")

	_, err := Scan(filepath.Join(dir, "missing"), ScanOptions{})
	assert.Error(t, err)

	_, err = Scan(filepath.Join(dir, "file.md"), ScanOptions{})
	assert.ErrorContains(t, err, "not a directory")

	writeFile(t, dir, "bad/"+FolderFile, "order: [unterminated")
	_, err = Scan(dir, ScanOptions{})
	assert.ErrorContains(t, err, FolderFile)
}

func TestExtractTitleSkipsFences(t *testing.T) {
	src := "```\n# not a title\n```\n\n# Real Title\n"
	assert.Equal(t, "Real Title", extractTitle(src))
	assert.Equal(t, "", extractTitle("no headings here"))
}

func TestIsMarkdown(t *testing.T) {
	assert.True(t, IsMarkdown("a.md"))
	assert.True(t, IsMarkdown("A.MARKDOWN"))
	assert.False(t, IsMarkdown("a.txt"))
}
