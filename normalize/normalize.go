// Package normalize canonicalizes whitespace in text fragments pulled out
// of HTML. Every extractor runs its result through Clean before returning.
package normalize

import "strings"

// Clean collapses all runs of whitespace (including newlines) to single
// spaces and trims the ends. Empty input yields "".
func Clean(s string) string {
	if s == "" {
		return ""
	}

	return strings.Join(strings.Fields(s), " ")
}
