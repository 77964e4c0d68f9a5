// Package highlight wraps words in HTML span tags with a background color,
// the way Anki renders emphasized vocabulary on a card.
package highlight

import (
	"fmt"
	"regexp"
	"unicode"
)

// Color is an RGB highlight color. Immutable once constructed.
type Color struct {
	Red   int `json:"Red"`
	Green int `json:"Green"`
	Blue  int `json:"Blue"`
}

// DefaultColor is the light yellow used when no color is given.
var DefaultColor = Color{Red: 255, Green: 255, Blue: 180}

// Hex returns the 6-hex-digit code for the color, e.g. "#ffffb4".
func (c Color) Hex() string {
	return fmt.Sprintf("#%02x%02x%02x", c.Red&0xff, c.Green&0xff, c.Blue&0xff)
}

// Apply wraps every occurrence of each word in text with an inline-styled
// span tag. Matching is case-insensitive and preserves the original casing
// of the matched text. Words consisting only of ASCII characters match at
// word boundaries; words containing non-ASCII characters match as literal
// substrings, since boundary rules do not apply to scripts without word
// separators.
//
// Words are applied in order, each against the already-modified string, so
// overlapping words produce whatever nested markup sequential replacement
// yields.
func Apply(text string, words []string, color Color) string {
	if len(words) == 0 {
		return text
	}

	hex := color.Hex()
	for _, word := range words {
		if word == "" {
			continue
		}

		pattern := `(?i)` + regexp.QuoteMeta(word)
		if isASCII(word) {
			pattern = `(?i)\b` + regexp.QuoteMeta(word) + `\b`
		}

		re, err := regexp.Compile(pattern)
		if err != nil {
			continue
		}

		text = re.ReplaceAllStringFunc(text, func(match string) string {
			return fmt.Sprintf(`<span style="background-color: %s">%s</span>`, hex, match)
		})
	}

	return text
}

func isASCII(s string) bool {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return false
		}
	}
	return true
}
