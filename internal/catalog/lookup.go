package catalog

import (
	"sort"
	"strings"
	"unicode"

	"github.com/adrg/strutil"
	"github.com/adrg/strutil/metrics"
)

// CategoryMatch is the category bound by CategoryForText and where its keyword sits.
type CategoryMatch struct {
	Category Category
	Keyword  string
	Span     Span
}

// CategoryForText returns the category whose longest keyword occurs in text at word
// boundaries. Keywords equal to a stop word are ignored.
func (s *Snapshot) CategoryForText(text string, stop StopWords) (CategoryMatch, bool) {
	text = Fold(text)
	for _, kw := range s.keywords {
		if stop.Contains(kw.keyword) {
			continue
		}
		start, ok := FindWord(text, kw.keyword)
		if !ok {
			continue
		}
		cat, ok := s.categoryByID[kw.categoryID]
		if !ok || cat.Count <= 0 {
			continue
		}
		// keywords are sorted longest first, so the first hit is the best one
		return CategoryMatch{
			Category: cat,
			Keyword:  kw.keyword,
			Span:     Span{Start: start, End: start + len(kw.keyword)},
		}, true
	}
	return CategoryMatch{}, false
}

// MatchTier records how a product was found.
type MatchTier string

const (
	TierName  MatchTier = "name"
	TierToken MatchTier = "token"
	TierFuzzy MatchTier = "fuzzy"
)

// MatchOptions tunes ProductForText.
type MatchOptions struct {
	Stop StopWords
	// Reserved words never act as product tokens, e.g. finish or colour vocabulary.
	Reserved StopWords
	// MinSimilarity is the normalized Levenshtein similarity a fuzzy hit needs.
	// Zero disables the fuzzy tier.
	MinSimilarity float64
	// MinFuzzyLength is the shortest utterance word considered for fuzzy matching.
	MinFuzzyLength int
}

type ProductMatch struct {
	Product Product
	Tier    MatchTier
	Matched string
	Score   float64
	Span    Span
}

// ProductForText finds a product mentioned in text: full name first, then a single
// name token, then a fuzzy token match. Products named like a stop word never match.
func (s *Snapshot) ProductForText(text string, opts MatchOptions) (ProductMatch, bool) {
	text = Fold(text)
	if text == "" {
		return ProductMatch{}, false
	}

	if m, ok := s.matchFullName(text, opts); ok {
		return m, true
	}
	if m, ok := s.matchToken(text, opts); ok {
		return m, true
	}
	if opts.MinSimilarity > 0 {
		return s.matchFuzzy(text, opts)
	}
	return ProductMatch{}, false
}

func (s *Snapshot) matchFullName(text string, opts MatchOptions) (ProductMatch, bool) {
	var best ProductMatch
	found := false
	for _, p := range s.products {
		if opts.Stop.Contains(p.nameLower) {
			continue
		}
		start, ok := FindWord(text, p.nameLower)
		if !ok || (found && len(p.nameLower) <= len(best.Matched)) {
			continue
		}
		best = ProductMatch{
			Product: p.product,
			Tier:    TierName,
			Matched: p.nameLower,
			Score:   1,
			Span:    Span{Start: start, End: start + len(p.nameLower)},
		}
		found = true
	}
	return best, found
}

func usableToken(tok string, opts MatchOptions) bool {
	if opts.Stop.Contains(tok) || opts.Reserved.Contains(tok) {
		return false
	}
	// dimensions such as 24x48 are sizes, not names
	return strings.IndexFunc(tok, unicode.IsDigit) < 0
}

func (s *Snapshot) matchToken(text string, opts MatchOptions) (ProductMatch, bool) {
	var best ProductMatch
	found := false
	for _, p := range s.products {
		if opts.Stop.Contains(p.nameLower) {
			continue
		}
		for _, tok := range p.tokens {
			if !usableToken(tok, opts) {
				continue
			}
			start, ok := FindWord(text, tok)
			if !ok || (found && len(tok) <= len(best.Matched)) {
				continue
			}
			best = ProductMatch{
				Product: p.product,
				Tier:    TierToken,
				Matched: tok,
				Score:   1,
				Span:    Span{Start: start, End: start + len(tok)},
			}
			found = true
		}
	}
	return best, found
}

func (s *Snapshot) matchFuzzy(text string, opts MatchOptions) (ProductMatch, bool) {
	metric := metrics.NewLevenshtein()
	minLen := opts.MinFuzzyLength

	var best ProductMatch
	found := false
	for _, w := range Words(text) {
		word := text[w.Start:w.End]
		if len(word) < minLen || !usableToken(word, opts) {
			continue
		}
		for _, p := range s.products {
			if opts.Stop.Contains(p.nameLower) {
				continue
			}
			for _, tok := range p.tokens {
				if len(tok) < minLen || !usableToken(tok, opts) {
					continue
				}
				score := strutil.Similarity(word, tok, metric)
				if score < opts.MinSimilarity {
					continue
				}
				// products are id ordered, so strictly-greater keeps the lowest id on ties
				if found && score <= best.Score {
					continue
				}
				best = ProductMatch{
					Product: p.product,
					Tier:    TierFuzzy,
					Matched: tok,
					Score:   score,
					Span:    w,
				}
				found = true
			}
		}
	}
	return best, found
}

// AttributeTerms lists the terms of an attribute in id order.
func (s *Snapshot) AttributeTerms(attrSlug string) []AttributeTerm {
	attr, ok := s.attributeBySlug[attrSlug]
	if !ok {
		return nil
	}
	return append([]AttributeTerm(nil), s.termsByAttr[attr.ID]...)
}

// AttributeTermIDs resolves a user value against an attribute's terms: exact name or
// slug first, otherwise containment either way, otherwise matching dimensions.
func (s *Snapshot) AttributeTermIDs(attrSlug, value string) []int {
	terms := s.AttributeTerms(attrSlug)
	if len(terms) == 0 {
		return nil
	}

	needle := stripQuotes(Fold(value))
	if needle == "" {
		return nil
	}
	needleDims := digitsAndX(needle)
	hasDigits := strings.IndexFunc(needleDims, unicode.IsDigit) >= 0

	var exact, partial []int
	for _, t := range terms {
		name := stripQuotes(Fold(t.Name))
		slug := Fold(t.Slug)
		switch {
		case name == needle || slug == needle:
			exact = append(exact, t.ID)
		case name != "" && (strings.Contains(name, needle) || strings.Contains(needle, name)):
			partial = append(partial, t.ID)
		case hasDigits && strings.Contains(digitsAndX(name), needleDims):
			partial = append(partial, t.ID)
		}
	}
	if len(exact) > 0 {
		return exact
	}
	return partial
}

// TagsForKeyword returns tags whose name or slug words contain keyword, or are
// contained in it, in id order.
func (s *Snapshot) TagsForKeyword(keyword string) []Tag {
	needle := Fold(keyword)
	if needle == "" {
		return nil
	}
	seen := make(map[int]struct{})
	var out []Tag
	for _, k := range s.tagKeys {
		if _, ok := seen[k.tag.ID]; ok {
			continue
		}
		if strings.Contains(k.key, needle) || (k.key != "" && strings.Contains(needle, k.key)) {
			seen[k.tag.ID] = struct{}{}
			out = append(out, k.tag)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// TagIDsForKeyword is TagsForKeyword reduced to identifiers.
func (s *Snapshot) TagIDsForKeyword(keyword string) []int {
	tags := s.TagsForKeyword(keyword)
	if len(tags) == 0 {
		return nil
	}
	ids := make([]int, len(tags))
	for i, t := range tags {
		ids[i] = t.ID
	}
	return ids
}

func (s *Snapshot) TagBySlug(slug string) (Tag, bool) {
	t, ok := s.tagBySlug[slug]
	return t, ok
}

func (s *Snapshot) QuickShipTag() (Tag, bool) { return s.TagBySlug(quickShipTagSlug) }

func (s *Snapshot) ChipCardTag() (Tag, bool) { return s.TagBySlug(chipCardTagSlug) }
