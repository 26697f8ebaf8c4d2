// Package htmlsanitize strips markup from user-supplied display strings
// such as group names before they are stored.
package htmlsanitize

import (
	"html"
	"strings"

	"github.com/microcosm-cc/bluemonday"
)

var strict = bluemonday.StrictPolicy()

// PlainText removes every tag, keeping only text content. bluemonday
// escapes the remaining text for HTML, so it is unescaped again: the
// result is stored as data and escaped at render time.
func PlainText(s string) string {
	return strings.TrimSpace(html.UnescapeString(strict.Sanitize(s)))
}
