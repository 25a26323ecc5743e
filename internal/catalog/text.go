package catalog

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/cases"
)

// Fold case-folds s and collapses runs of whitespace to a single space.
// Every lookup key and every utterance goes through Fold, so offsets
// returned by the lookups index into the folded text.
func Fold(s string) string {
	return strings.Join(strings.Fields(cases.Fold().String(s)), " ")
}

// StopWords is a set of generic nouns that must never bind to a catalog entry.
type StopWords map[string]struct{}

func NewStopWords(words ...string) StopWords {
	s := make(StopWords, len(words))
	for _, w := range words {
		if w = Fold(w); w != "" {
			s[w] = struct{}{}
		}
	}
	return s
}

func (s StopWords) Contains(word string) bool {
	_, ok := s[word]
	return ok
}

func isWordRune(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// FindWord returns the byte offset of the first occurrence of phrase in text that
// is not glued to a neighbouring letter or digit.
func FindWord(text, phrase string) (int, bool) {
	if phrase == "" {
		return 0, false
	}
	first, _ := utf8.DecodeRuneInString(phrase)
	last, _ := utf8.DecodeLastRuneInString(phrase)
	checkStart, checkEnd := isWordRune(first), isWordRune(last)

	for offset := 0; offset <= len(text)-len(phrase); {
		i := strings.Index(text[offset:], phrase)
		if i < 0 {
			return 0, false
		}
		start := offset + i
		end := start + len(phrase)

		ok := true
		if checkStart && start > 0 {
			if r, _ := utf8.DecodeLastRuneInString(text[:start]); isWordRune(r) {
				ok = false
			}
		}
		if ok && checkEnd && end < len(text) {
			if r, _ := utf8.DecodeRuneInString(text[end:]); isWordRune(r) {
				ok = false
			}
		}
		if ok {
			return start, true
		}
		_, size := utf8.DecodeRuneInString(text[start:])
		offset = start + size
	}
	return 0, false
}

// ContainsWord reports whether phrase occurs in text at word boundaries.
func ContainsWord(text, phrase string) bool {
	_, ok := FindWord(text, phrase)
	return ok
}

// Words splits folded text into letter/digit runs with their byte offsets.
func Words(text string) []Span {
	var out []Span
	start := -1
	for i, r := range text {
		if isWordRune(r) {
			if start < 0 {
				start = i
			}
			continue
		}
		if start >= 0 {
			out = append(out, Span{Start: start, End: i})
			start = -1
		}
	}
	if start >= 0 {
		out = append(out, Span{Start: start, End: len(text)})
	}
	return out
}

// Span is a half-open byte range in folded text.
type Span struct {
	Start int
	End   int
}

func (s Span) Overlaps(o Span) bool {
	return s.Start < o.End && o.Start < s.End
}

func (s Span) Contains(o Span) bool {
	return s.Start <= o.Start && o.End <= s.End
}

func splitName(name, seps string) []string {
	return strings.FieldsFunc(name, func(r rune) bool {
		return unicode.IsSpace(r) || strings.ContainsRune(seps, r)
	})
}

func stripQuotes(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		switch r {
		case '"', '\'', '`':
			return -1
		}
		return r
	}, s))
}

// digitsAndX keeps only digits and the letter x, so 24"x48" and 24x48 compare equal.
func digitsAndX(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsDigit(r) || r == 'x' {
			return r
		}
		return -1
	}, s)
}
