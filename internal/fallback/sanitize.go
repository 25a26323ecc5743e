// Package fallback prepares escalated utterances for the LLM interpreter and talks to
// it. Nothing that identifies a customer leaves the process: utterances are scrubbed
// and the catalog is reduced to its public view before a request is built.
package fallback

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	reEmail     = regexp.MustCompile(`\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	reCard      = regexp.MustCompile(`\b\d{4}[-\s]?\d{4}[-\s]?\d{4}[-\s]?\d{4}\b`)
	reSSN       = regexp.MustCompile(`\b\d{3}-\d{2}-\d{4}\b`)
	rePhoneIntl = regexp.MustCompile(`(?:\+|\b)\d{1,3}[-.\s]?\(?\d{1,4}\)?[-.\s]?\d{1,4}[-.\s]?\d{1,9}\b`)
	rePhoneUS   = regexp.MustCompile(`\b\d{3}[-.]?\d{3}[-.]?\d{4}\b`)
)

// minPhoneDigits keeps order numbers and sizes out of the phone placeholder.
const minPhoneDigits = 10

// Sanitize replaces e-mail addresses, card numbers, SSNs and phone numbers with
// placeholders. Cards and SSNs go first so their digits are not read as phones.
func Sanitize(text string) string {
	text = reEmail.ReplaceAllString(text, "[EMAIL]")
	text = reCard.ReplaceAllString(text, "[CARD]")
	text = reSSN.ReplaceAllString(text, "[SSN]")
	text = rePhoneIntl.ReplaceAllStringFunc(text, phoneOrKeep)
	text = rePhoneUS.ReplaceAllString(text, "[PHONE]")
	return text
}

func phoneOrKeep(match string) string {
	if strings.HasPrefix(match, "+") || countDigits(match) >= minPhoneDigits {
		return "[PHONE]"
	}
	return match
}

func countDigits(s string) int {
	n := 0
	for _, r := range s {
		if unicode.IsDigit(r) {
			n++
		}
	}
	return n
}
