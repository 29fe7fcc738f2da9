package site

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"

	"mdsite/doctree"
)

// FileWriter writes pages below Dir at each node's output path.
type FileWriter struct {
	Dir string
}

// WriteHTML writes html to Dir/<node output path>, creating parent
// directories as needed.
func (w FileWriter) WriteHTML(node *doctree.Node, html string) error {
	p := filepath.Join(w.Dir, filepath.FromSlash(node.OutputPath()))
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return err
	}
	return os.WriteFile(p, []byte(html), 0o644)
}

// CopyAssets copies each directory in dirs into dst, keeping its base name:
// "theme/css" ends up as dst/css.
func CopyAssets(dst string, dirs ...string) error {
	for _, dir := range dirs {
		target := filepath.Join(dst, filepath.Base(filepath.Clean(dir)))
		if err := copyTree(dir, target); err != nil {
			return fmt.Errorf("copy assets %s: %w", dir, err)
		}
	}
	return nil
}

func copyTree(src, dst string) error {
	return filepath.WalkDir(src, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, p)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if d.IsDir() {
			return os.MkdirAll(target, 0o755)
		}
		return copyFile(p, target)
	})
}

func copyFile(src, dst string) error {
	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.Create(dst)
	if err != nil {
		return err
	}
	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}
