package classifier

import (
	"log/slog"
	"regexp"
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

var nonTokenChars = regexp.MustCompile(`[^\pL\pN\s]+`)

// Splits free-form text in to tokens, including lower-case, unicode
// normalization, and some unicode folding. Used by behavior patterns which
// need token frequencies rather than literal substrings.
func tokenizeText(text string) []string {
	// the transform chain is stateful, so it is rebuilt on every call
	normFunc := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	bare := strings.ToLower(nonTokenChars.ReplaceAllString(text, " "))
	folded, _, err := transform.String(normFunc, bare)
	if err != nil {
		slog.Warn("unicode normalization error", "err", err)
		folded = bare
	}
	return strings.Fields(folded)
}

// normalizeContent is the comparison form used for repeat-content detection:
// trimmed and case-folded, but otherwise the literal content.
func normalizeContent(content string) string {
	return strings.ToLower(strings.TrimSpace(content))
}
