// Package page fills the site HTML template with generated fragments.
package page

import (
	"fmt"
	"os"
	"strings"
)

// Placeholder tokens recognised in templates.
const (
	TokenContent = "$content"
	TokenTOC     = "$toc"
	TokenHead    = "$head"
	TokenTitle   = "$title"
)

// Slots carries the fragments substituted into a template.
type Slots struct {
	Content string
	TOC     string
	Head    string
	Title   string
}

// Compose replaces the placeholder tokens in tmpl with the slot values in a
// single left-to-right pass. Substituted text is never scanned again, so a
// token appearing inside a slot value survives literally. Tokens missing
// from tmpl are simply not inserted.
func Compose(tmpl string, s Slots) string {
	r := strings.NewReplacer(
		TokenContent, s.Content,
		TokenTOC, s.TOC,
		TokenHead, s.Head,
		TokenTitle, s.Title,
	)
	return r.Replace(tmpl)
}

// Load reads the template at path. An empty path selects Default.
func Load(path string) (string, error) {
	if path == "" {
		return Default, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("load template: %w", err)
	}
	return string(data), nil
}

// Default is the built-in page template.
const Default = `<!DOCTYPE html>
<html lang="en">
<head>
	<meta charset="UTF-8">
	<meta name="viewport" content="width=device-width, initial-scale=1.0">
	<title>$title</title>
	$head
</head>
<body>
	<nav class="sidebar">
$toc
	</nav>
	<main class="container">
$content
	</main>
</body>
</html>
`
