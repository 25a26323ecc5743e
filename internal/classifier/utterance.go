package classifier

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"tile-intent-workers/internal/catalog"
)

// Utterance is the raw customer message and its case-folded, whitespace-collapsed form.
type Utterance struct {
	raw        string
	normalized string
}

// NewUtterance normalizes raw. ok is false for empty, blank or invalid UTF-8 input.
func NewUtterance(raw string) (Utterance, bool) {
	if !utf8.ValidString(raw) {
		return Utterance{raw: raw}, false
	}
	u := Utterance{raw: raw, normalized: catalog.Fold(raw)}
	return u, strings.TrimSpace(u.normalized) != ""
}

func (u Utterance) Raw() string        { return u.raw }
func (u Utterance) Normalized() string { return u.normalized }

// claims records the byte ranges already owned by a numeric entity.
type claims []catalog.Span

func (c claims) free(s catalog.Span) bool {
	for _, o := range c {
		if o.Overlaps(s) {
			return false
		}
	}
	return true
}

func (c *claims) add(s catalog.Span) {
	*c = append(*c, s)
}

// firstFree returns the submatch indexes of the first match of re whose full span
// is not already claimed.
func (c claims) firstFree(re *regexp.Regexp, text string) []int {
	for _, m := range re.FindAllStringSubmatchIndex(text, -1) {
		if c.free(catalog.Span{Start: m[0], End: m[1]}) {
			return m
		}
	}
	return nil
}

// wordPattern compiles phrase into a word-bounded pattern; inner spaces match any
// whitespace and plural accepts a trailing s.
func wordPattern(phrase string, plural bool) *regexp.Regexp {
	expr := strings.ReplaceAll(regexp.QuoteMeta(phrase), " ", `\s+`)
	if plural {
		expr += "s?"
	}
	return regexp.MustCompile(`\b` + expr + `\b`)
}
