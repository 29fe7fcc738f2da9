package renderer

import (
	"bytes"
	"errors"
	"strings"

	"github.com/adrg/frontmatter"
	"gopkg.in/yaml.v3"
)

// FrontMatter holds the document metadata the site understands. Unknown
// keys are ignored.
type FrontMatter struct {
	Title       string `yaml:"title"`
	Description string `yaml:"description"`
}

var errNotFrontMatter = errors.New("not a front matter block")

var yamlFormat = frontmatter.NewFormat("---", "---", unmarshalMapping)

// unmarshalMapping accepts only a YAML mapping whose keys look like metadata
// keys ("title", "last-modified", "nav_order"). Lists, scalars and prose
// such as "Some text: here" are rejected.
func unmarshalMapping(data []byte, v any) error {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return err
	}
	if len(doc.Content) != 1 || doc.Content[0].Kind != yaml.MappingNode {
		return errNotFrontMatter
	}
	m := doc.Content[0]
	for i := 0; i < len(m.Content); i += 2 {
		if k := m.Content[i]; k.Kind != yaml.ScalarNode || !isMetaKey(k.Value) {
			return errNotFrontMatter
		}
	}
	return m.Decode(v)
}

func isMetaKey(k string) bool {
	if k == "" {
		return false
	}
	return strings.IndexFunc(k, func(r rune) bool {
		return !(r >= 'a' && r <= 'z' || r >= 'A' && r <= 'Z' || r >= '0' && r <= '9' || r == '_' || r == '-')
	}) < 0
}

// SplitFrontMatter separates a leading YAML front matter block from the
// Markdown body. The block must open on the first line. Anything that is
// not a well-formed metadata mapping is left in place, since a document may
// legitimately start with a thematic break; the full source is returned
// with empty metadata in that case.
func SplitFrontMatter(src []byte) (FrontMatter, []byte) {
	first, _, _ := bytes.Cut(src, []byte("\n"))
	if string(bytes.TrimRight(first, " \t\r")) != "---" {
		return FrontMatter{}, src
	}
	var meta FrontMatter
	body, err := frontmatter.Parse(bytes.NewReader(src), &meta, yamlFormat)
	if err != nil {
		return FrontMatter{}, src
	}
	return meta, body
}
