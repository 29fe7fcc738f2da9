package renderer

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func convert(t *testing.T, src string) string {
	t.Helper()
	out, err := New().Convert([]byte(src))
	require.NoError(t, err)
	return string(out)
}

func TestConvertExtensions(t *testing.T) {
	cases := []struct {
		name string
		src  string
		want string
	}{
		{"smart quotes", `He said "hi"`, "&ldquo;hi&rdquo;"},
		{"autolink", "See https://example.com now", `<a href="https://example.com">https://example.com</a>`},
		{"fenced code", "```go\nfmt.Println()\n```\n", `<pre><code class="language-go">fmt.Println()`},
		{"table", "| a | b |\n|---|---|\n| 1 | 2 |\n", "<table>"},
		{"definition list", "Term\n: Meaning\n", "<dt>Term</dt>"},
		{"raw html", "<div class=\"note\">x</div>\n", `<div class="note">x</div>`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Contains(t, convert(t, tc.src), tc.want)
		})
	}
}

func TestConvertLeavesOtherExtensionsOff(t *testing.T) {
	out := convert(t, "~~struck~~\n\n- [ ] task\n")

	assert.NotContains(t, out, "<del>")
	assert.Contains(t, out, "~~struck~~")
	assert.NotContains(t, out, `type="checkbox"`)
}

func TestConvertLargeDocument(t *testing.T) {
	var b strings.Builder
	for i := 0; i < 20000; i++ {
		b.WriteString("paragraph with *emphasis*\n\n")
	}
	out := convert(t, b.String())
	assert.Equal(t, 20000, strings.Count(out, "<em>emphasis</em>"))
}

func TestConvertHeading(t *testing.T) {
	assert.Equal(t, "<h1>Title</h1>\n", convert(t, "# Title"))
}

func TestSplitFrontMatter(t *testing.T) {
	meta, body := SplitFrontMatter([]byte("---\ntitle: Intro\ndescription: First page\nnav_order: 1\n---\n# Body\n"))
	assert.Equal(t, "Intro", meta.Title)
	assert.Equal(t, "First page", meta.Description)
	assert.Equal(t, "# Body\n", string(body))
}

func TestSplitFrontMatterKeepsNonMetadata(t *testing.T) {
	cases := []struct {
		name string
		src  string
	}{
		{"no front matter", "# Plain\n\ntext\n"},
		{"leading rule", "---\n\nSome paragraph after a rule.\n"},
		{"rule list rule", "---\n- item one\n- item two\n---\n"},
		{"prose with colon", "---\nSome text: here\n\n---\n\nMore\n"},
		{"invalid yaml", "---\ntitle: [oops\n---\nbody"},
		{"scalar", "---\njust words\n---\n"},
		{"blank line before rule", "\n---\ntitle: x\n---\nbody"},
		{"wrong field type", "---\ntitle: [a, b]\n---\nbody"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			meta, body := SplitFrontMatter([]byte(tc.src))
			assert.Equal(t, FrontMatter{}, meta)
			assert.Equal(t, tc.src, string(body))
		})
	}
}

func TestConvertDocumentStartingWithRuleAndList(t *testing.T) {
	_, body := SplitFrontMatter([]byte("---\n- item one\n- item two\n---\n"))
	out := convert(t, string(body))

	assert.Equal(t, 2, strings.Count(out, "<hr"))
	assert.Contains(t, out, "<li>item one</li>")
	assert.Contains(t, out, "<li>item two</li>")
}
