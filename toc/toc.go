// Package toc renders the site navigation tree shown on every page.
package toc

import (
	"fmt"
	"html"
	"net/url"
	"strings"

	"mdsite/doctree"
)

// Builder produces the table of contents for a page. It holds no state
// between calls and may be used from several goroutines.
type Builder struct {
	// ListClass is set on the outermost list. Defaults to "toc".
	ListClass string
	// ActiveClass marks the entry of the page being rendered. Defaults to "active".
	ActiveClass string
}

// NewBuilder returns a Builder with default class names.
func NewBuilder() *Builder {
	return &Builder{ListClass: "toc", ActiveClass: "active"}
}

// Build lists every leaf under root as a nested <ul>, mirroring the folder
// structure. Leaf links are site-rooted ("/guide/intro.html") and become
// relative to target once the page is passed through links.Relativize with
// target's prefix. Only target's entry carries the active class.
//
// Build panics if target is not part of root.
func (b *Builder) Build(root, target *doctree.Node) string {
	if !doctree.Contains(root, target) {
		panic(fmt.Sprintf("toc: target %q is not part of the tree", target.RelPath()))
	}
	listClass, activeClass := b.ListClass, b.ActiveClass
	if listClass == "" {
		listClass = "toc"
	}
	if activeClass == "" {
		activeClass = "active"
	}

	var sb strings.Builder
	sb.WriteString("<ul class='" + html.EscapeString(listClass) + "'>\n")
	for _, c := range root.Children() {
		writeEntry(&sb, c, target, activeClass)
	}
	sb.WriteString("</ul>\n")
	return sb.String()
}

func writeEntry(sb *strings.Builder, n, target *doctree.Node, activeClass string) {
	title := html.EscapeString(n.Title())
	if n.IsFolder() {
		sb.WriteString("<li class='folder'><span>" + title + "</span>\n<ul>\n")
		for _, c := range n.Children() {
			writeEntry(sb, c, target, activeClass)
		}
		sb.WriteString("</ul>\n</li>\n")
		return
	}

	href := html.EscapeString(sitePath(n.OutputPath()))
	if n == target {
		class := html.EscapeString(activeClass)
		fmt.Fprintf(sb, "<li class='file %s'><a class='%s' aria-current='page' href='%s'>%s</a></li>\n", class, class, href, title)
		return
	}
	fmt.Fprintf(sb, "<li class='file'><a href='%s'>%s</a></li>\n", href, title)
}

// sitePath turns an output path into a site-rooted URL path, escaping each
// segment so names like "a#b.html" or "my page.html" stay one path.
func sitePath(p string) string {
	segs := strings.Split(p, "/")
	for i, seg := range segs {
		segs[i] = url.PathEscape(seg)
	}
	return "/" + strings.Join(segs, "/")
}
