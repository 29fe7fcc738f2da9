package doctree

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
	"gopkg.in/yaml.v3"

	"mdsite/renderer"
)

// FolderFile is the optional per-directory metadata file.
const FolderFile = "_folder.yaml"

// FolderMeta is the content of a FolderFile.
type FolderMeta struct {
	Title string   `yaml:"title"`
	Order []string `yaml:"order"`
}

// ScanOptions tunes directory scanning.
type ScanOptions struct {
	// Exclude holds path.Match patterns matched against slash paths relative
	// to the source root. Matching files and directories are skipped.
	Exclude []string
	// Title names the root folder. Defaults to the title-cased directory name.
	Title string
}

var markdownExts = map[string]bool{
	".md":       true,
	".markdown": true,
}

// IsMarkdown reports whether name has a Markdown extension.
func IsMarkdown(name string) bool {
	return markdownExts[strings.ToLower(filepath.Ext(name))]
}

// Scan builds a document tree from the directory at root. Subdirectories
// become folders and Markdown files become leaves. Hidden entries and names
// starting with "_" are skipped.
func Scan(root string, opts ScanOptions) (*Node, error) {
	info, err := os.Stat(root)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", root, err)
	}
	if !info.IsDir() {
		return nil, fmt.Errorf("scan %s: not a directory", root)
	}
	s := &scanner{opts: opts, caser: cases.Title(language.English)}
	n, err := s.folder(root, "")
	if err != nil {
		return nil, err
	}
	if opts.Title != "" {
		n.title = opts.Title
	}
	return n, nil
}

type scanner struct {
	opts  ScanOptions
	caser cases.Caser
}

func (s *scanner) folder(dir, rel string) (*Node, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read directory %s: %w", dir, err)
	}
	meta, err := readFolderMeta(filepath.Join(dir, FolderFile))
	if err != nil {
		return nil, err
	}

	var children []*Node
	var names []string
	for _, e := range entries {
		name := e.Name()
		if strings.HasPrefix(name, ".") || strings.HasPrefix(name, "_") {
			continue
		}
		childRel := path.Join(rel, name)
		if s.excluded(childRel) {
			continue
		}
		childPath := filepath.Join(dir, name)
		var child *Node
		switch {
		case e.IsDir():
			child, err = s.folder(childPath, childRel)
			if err != nil {
				return nil, err
			}
		case IsMarkdown(name):
			child = NewLeaf(childPath, childRel, s.leafTitle(childPath, name))
		default:
			continue
		}
		children = append(children, child)
		names = append(names, name)
	}
	children = applyOrder(children, names, meta.Order)

	title := meta.Title
	if title == "" {
		title = s.titleFromName(filepath.Base(dir))
	}
	return NewFolder(dir, rel, title, children...), nil
}

func (s *scanner) excluded(rel string) bool {
	for _, pattern := range s.opts.Exclude {
		if ok, _ := path.Match(pattern, rel); ok {
			return true
		}
	}
	return false
}

// leafTitle prefers a front matter title, then the first level-one heading,
// then the file name. An unreadable file falls back to the file name; the
// read error surfaces later when the page is rendered.
func (s *scanner) leafTitle(p, name string) string {
	stem := strings.TrimSuffix(name, filepath.Ext(name))
	src, err := os.ReadFile(p)
	if err != nil {
		return s.titleFromName(stem)
	}
	fm, body := renderer.SplitFrontMatter(src)
	if t := strings.TrimSpace(fm.Title); t != "" {
		return t
	}
	if t := extractTitle(string(body)); t != "" {
		return t
	}
	return s.titleFromName(stem)
}

func (s *scanner) titleFromName(name string) string {
	words := strings.Fields(strings.NewReplacer("-", " ", "_", " ").Replace(name))
	return s.caser.String(strings.Join(words, " "))
}

// extractTitle returns the text of the first "# " heading, if any.
func extractTitle(content string) string {
	inFence := false
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if strings.HasPrefix(line, "```") || strings.HasPrefix(line, "~~~") {
			inFence = !inFence
			continue
		}
		if !inFence && strings.HasPrefix(line, "# ") {
			return strings.TrimSpace(strings.TrimPrefix(line, "# "))
		}
	}
	return ""
}

func readFolderMeta(p string) (FolderMeta, error) {
	var meta FolderMeta
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return meta, nil
	}
	if err != nil {
		return meta, fmt.Errorf("read %s: %w", p, err)
	}
	if err := yaml.Unmarshal(data, &meta); err != nil {
		return meta, fmt.Errorf("parse %s: %w", p, err)
	}
	return meta, nil
}

// applyOrder moves the children named in order to the front, in that order.
// Names may omit the Markdown extension. Unlisted children keep their
// directory order after the listed ones.
func applyOrder(children []*Node, names []string, order []string) []*Node {
	if len(order) == 0 {
		return children
	}
	out := make([]*Node, 0, len(children))
	used := make([]bool, len(children))
	for _, want := range order {
		for i, name := range names {
			if used[i] {
				continue
			}
			stem := strings.TrimSuffix(name, filepath.Ext(name))
			if name == want || (!children[i].IsFolder() && stem == want) {
				out = append(out, children[i])
				used[i] = true
				break
			}
		}
	}
	for i, c := range children {
		if !used[i] {
			out = append(out, c)
		}
	}
	return slices.Clip(out)
}
