package utils

import (
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// StringHelper provides string utility functions.
type StringHelper struct{}

// NewStringHelper creates a new string helper.
func NewStringHelper() *StringHelper {
	return &StringHelper{}
}

// NormalizeWhitespace replaces multiple whitespace with single space.
func (s *StringHelper) NormalizeWhitespace(str string) string {
	return strings.Join(strings.Fields(str), " ")
}

// TruncateString truncates str to maxLength runes. A non-positive
// maxLength leaves str unchanged.
func (s *StringHelper) TruncateString(str string, maxLength int) string {
	if maxLength <= 0 || utf8.RuneCountInString(str) <= maxLength {
		return str
	}

	return string([]rune(str)[:maxLength]) + "..."
}

var quoteFolder = strings.NewReplacer(
	"‘", "'", "’", "'", "‚", "'", "‛", "'",
	"“", `"`, "”", `"`,
)

// Fold canonicalizes survey answer text for equality checks: repairs UTF-8
// that was decoded as Windows-1252, applies NFKC, drops control runes,
// straightens quotes and collapses whitespace. Case is preserved.
func (s *StringHelper) Fold(str string) string {
	str = RepairMojibake(str)

	folded, _, err := transform.String(
		transform.Chain(norm.NFKC, runes.Remove(runes.In(controlRunes))),
		str,
	)
	if err == nil {
		str = folded
	}

	return s.NormalizeWhitespace(quoteFolder.Replace(str))
}

// RepairMojibake undoes one round of UTF-8 bytes read as Windows-1252
// ("donâ€™t" -> "don’t"). Strings that do not round-trip are returned as is.
func RepairMojibake(str string) string {
	if isASCII(str) {
		return str
	}

	raw, err := charmap.Windows1252.NewEncoder().String(str)
	if err != nil || raw == str || !utf8.ValidString(raw) {
		return str
	}

	return raw
}

func isASCII(str string) bool {
	for i := 0; i < len(str); i++ {
		if str[i] >= utf8.RuneSelf {
			return false
		}
	}

	return true
}
