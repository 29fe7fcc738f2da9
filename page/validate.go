package page

import (
	"fmt"
	"io"
	"strings"

	"golang.org/x/net/html"
)

// TemplateCompositionError reports a template whose structure cannot hold
// the generated fragments.
type TemplateCompositionError struct {
	Template string
	Reason   string
}

func (e *TemplateCompositionError) Error() string {
	return fmt.Sprintf("template %s: %s", e.Template, e.Reason)
}

// section of the document a placeholder must appear in.
var placement = map[string]string{
	TokenHead:    "head",
	TokenTitle:   "head",
	TokenContent: "body",
	TokenTOC:     "body",
}

var tokenOrder = []string{TokenContent, TokenTOC, TokenHead, TokenTitle}

// Validate checks that each placeholder present in tmpl sits in text where
// its fragment is valid: $head and $title inside <head>, $content and $toc
// inside <body>. Placeholders inside attribute values are rejected. Absent
// placeholders are not an error. name identifies the template in errors.
func Validate(name, tmpl string) error {
	z := html.NewTokenizer(strings.NewReader(tmpl))
	section := ""
	for {
		tt := z.Next()
		switch tt {
		case html.ErrorToken:
			if z.Err() == io.EOF {
				return nil
			}
			return &TemplateCompositionError{Template: name, Reason: z.Err().Error()}
		case html.StartTagToken, html.SelfClosingTagToken:
			tok := z.Token()
			if tok.Data == "head" || tok.Data == "body" {
				section = tok.Data
			}
			for _, a := range tok.Attr {
				for _, p := range tokenOrder {
					if strings.Contains(a.Val, p) {
						return &TemplateCompositionError{
							Template: name,
							Reason:   fmt.Sprintf("placeholder %s inside attribute %s of <%s>", p, a.Key, tok.Data),
						}
					}
				}
			}
		case html.EndTagToken:
			tok := z.Token()
			if tok.Data == "head" || tok.Data == "body" {
				section = ""
			}
		case html.TextToken:
			text := string(z.Text())
			for _, p := range tokenOrder {
				if !strings.Contains(text, p) {
					continue
				}
				if want := placement[p]; section != want {
					return &TemplateCompositionError{
						Template: name,
						Reason:   fmt.Sprintf("placeholder %s must be inside <%s>", p, want),
					}
				}
			}
		}
	}
}
