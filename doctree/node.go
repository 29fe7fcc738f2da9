package doctree

import (
	"path"
	"strings"
)

// Kind discriminates folder nodes from leaf documents.
type Kind int

const (
	KindFolder Kind = iota
	KindLeaf
)

func (k Kind) String() string {
	switch k {
	case KindFolder:
		return "folder"
	case KindLeaf:
		return "leaf"
	default:
		return "unknown"
	}
}

// Node is one entry of the document tree: either a folder grouping child
// nodes or a leaf backed by a single Markdown source file.
//
// Nodes have no exported mutators. Trees are built bottom-up with NewLeaf and
// NewFolder; a folder fixes the depth and parent of the children it adopts.
type Node struct {
	kind     Kind
	path     string // source path on disk
	relPath  string // slash-separated path relative to the source root
	title    string
	depth    int
	parent   *Node
	children []*Node
}

// NewLeaf creates a document node. srcPath is where the Markdown source is
// read from; relPath is its slash-separated location inside the site.
func NewLeaf(srcPath, relPath, title string) *Node {
	return &Node{
		kind:    KindLeaf,
		path:    srcPath,
		relPath: cleanRel(relPath),
		title:   title,
	}
}

// NewFolder creates a folder node owning children in the given order.
func NewFolder(srcPath, relPath, title string, children ...*Node) *Node {
	f := &Node{
		kind:    KindFolder,
		path:    srcPath,
		relPath: cleanRel(relPath),
		title:   title,
	}
	for _, c := range children {
		if c == nil {
			continue
		}
		c.parent = f
		f.children = append(f.children, c)
	}
	f.setDepth(0)
	return f
}

func (n *Node) setDepth(d int) {
	n.depth = d
	for _, c := range n.children {
		c.setDepth(d + 1)
	}
}

func cleanRel(p string) string {
	p = strings.TrimPrefix(path.Clean("/"+strings.ReplaceAll(p, "\\", "/")), "/")
	return p
}

func (n *Node) Kind() Kind      { return n.kind }
func (n *Node) IsFolder() bool  { return n.kind == KindFolder }
func (n *Node) Depth() int      { return n.depth }
func (n *Node) Path() string    { return n.path }
func (n *Node) RelPath() string { return n.relPath }
func (n *Node) Title() string   { return n.title }
func (n *Node) Parent() *Node   { return n.parent }

// Children returns a copy of the folder's children. Leaves have none.
func (n *Node) Children() []*Node {
	if len(n.children) == 0 {
		return nil
	}
	out := make([]*Node, len(n.children))
	copy(out, n.children)
	return out
}

// OutputPath is the slash-separated location of the rendered page relative to
// the output root: the source extension is replaced with .html.
func (n *Node) OutputPath() string {
	if n.kind == KindFolder {
		return n.relPath
	}
	ext := path.Ext(n.relPath)
	return strings.TrimSuffix(n.relPath, ext) + ".html"
}

// Walk visits n and its descendants depth-first, pre-order. Returning false
// from fn stops the walk.
func Walk(n *Node, fn func(*Node) bool) bool {
	if !fn(n) {
		return false
	}
	for _, c := range n.children {
		if !Walk(c, fn) {
			return false
		}
	}
	return true
}

// Leaves lists the leaves under n in traversal order.
func Leaves(n *Node) []*Node {
	var out []*Node
	Walk(n, func(c *Node) bool {
		if !c.IsFolder() {
			out = append(out, c)
		}
		return true
	})
	return out
}

// Contains reports whether target is n or one of its descendants.
func Contains(n, target *Node) bool {
	found := false
	Walk(n, func(c *Node) bool {
		if c == target {
			found = true
			return false
		}
		return true
	})
	return found
}
