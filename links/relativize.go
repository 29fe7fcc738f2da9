// Package links rewrites site-local URLs in HTML so they resolve from a page
// nested at a given depth below the site root.
package links

import (
	"regexp"
	"strings"
)

// attrPattern matches an href or src attribute with a quoted value. The value
// ends at the first occurrence of the opening quote character and never spans
// a newline. There is no whitespace allowed around "=". "-" counts as a word
// boundary, so data-src is rewritten while srcset and xhref are not.
var attrPattern = regexp.MustCompile(`\b(href|src)=(?:'([^'\n]*)'|"([^"\n]*)")`)

// schemePattern matches a leading URL scheme such as "http:" or "mailto:".
var schemePattern = regexp.MustCompile(`^[A-Za-z][A-Za-z0-9+.\-]*:`)

// Prefix returns the path that leads from a page at depth back to the site
// root. Pages directly under the root (depth 1) and the root itself get "./";
// each further level adds one "../".
func Prefix(depth int) string {
	if depth <= 1 {
		return "./"
	}
	return strings.Repeat("../", depth-1)
}

// IsLocal reports whether an attribute value is a site-local reference that
// Relativize rewrites: anything that is neither a fragment nor carries a URL
// scheme. Root-relative values count as local.
func IsLocal(value string) bool {
	if strings.HasPrefix(value, "/") {
		return true
	}
	if strings.HasPrefix(value, "#") {
		return false
	}
	return !schemePattern.MatchString(value)
}

// Relativize prepends prefix to every local href/src value in html, after
// stripping leading slashes. Rewritten attributes are emitted with single
// quotes. Applying it twice prepends the prefix twice.
func Relativize(html, prefix string) string {
	return attrPattern.ReplaceAllStringFunc(html, func(match string) string {
		sub := attrPattern.FindStringSubmatch(match)
		name, value := sub[1], sub[2]
		if strings.HasPrefix(sub[0][len(name)+1:], `"`) {
			value = sub[3]
		}
		if !IsLocal(value) {
			return match
		}
		return name + "='" + prefix + strings.TrimLeft(value, "/") + "'"
	})
}
