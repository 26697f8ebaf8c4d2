// internal/app/system/normalize/normalize.go
package normalize

import "strings"

// Email lowercases and trims an email address for lookups and storage.
func Email(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// Emails normalizes a list of addresses, dropping blanks and duplicates
// while keeping first-seen order.
func Emails(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]struct{}, len(in))
	for _, s := range in {
		e := Email(s)
		if e == "" {
			continue
		}
		if _, dup := seen[e]; dup {
			continue
		}
		seen[e] = struct{}{}
		out = append(out, e)
	}
	return out
}

// Name trims surrounding whitespace and collapses inner runs to one space.
// Case is preserved.
func Name(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
