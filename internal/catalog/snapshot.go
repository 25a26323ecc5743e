package catalog

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

var (
	ErrDuplicateID       = errors.New("duplicate catalog identifier")
	ErrDanglingReference = errors.New("attribute term references unknown attribute")
)

// Snapshot is an immutable, indexed view of one catalog Data document.
// It is safe for concurrent use; nothing mutates it after NewSnapshot returns.
type Snapshot struct {
	version  string
	loadedAt time.Time

	products   []productEntry
	categories []Category
	attributes []Attribute
	tags       []Tag

	categoryByID    map[int]Category
	productByID     map[int]Product
	attributeBySlug map[string]Attribute
	termsByAttr     map[int][]AttributeTerm
	tagBySlug       map[string]Tag
	tagKeys         []tagKey
	keywords        []categoryKeyword
}

type productEntry struct {
	product   Product
	nameLower string
	tokens    []string
}

type tagKey struct {
	key string
	tag Tag
}

type categoryKeyword struct {
	keyword    string
	categoryID int
}

// keyword generation skips these when splitting category names.
var categoryNameStopWords = NewStopWords(
	"the", "a", "an", "and", "or", "of", "for",
	"in", "on", "to", "is", "all", "our", "new",
)

// product names are tokenised without these.
var productTokenStopWords = NewStopWords(
	"tile", "tiles", "the", "a", "an", "and", "or", "of", "series",
)

// variations applied word-wise to a category name to catch the ways people type it.
var categoryVariations = [][2]string{
	{"tiles", "tile"}, {"tile", "tiles"},
	{"flooring", "floor"}, {"floor", "flooring"},
	{"walls", "wall"}, {"wall", "walls"},
	{"countertops", "countertop"}, {"countertop", "countertops"},
	{"counter top", "countertop"}, {"counter tops", "countertops"},
	{"backsplash", "backsplashes"}, {"backsplashes", "backsplash"},
	{"outdoor", "exterior"}, {"exterior", "outdoor"},
	{"indoor", "interior"}, {"interior", "indoor"},
}

// NewSnapshot indexes d. Identifiers must be unique within each kind.
func NewSnapshot(d *Data) (*Snapshot, error) {
	if d == nil {
		return nil, errors.New("catalog: nil data")
	}

	s := &Snapshot{
		version:         d.Version,
		loadedAt:        d.LoadedAt,
		categoryByID:    make(map[int]Category, len(d.Categories)),
		productByID:     make(map[int]Product, len(d.Products)),
		attributeBySlug: make(map[string]Attribute, len(d.Attributes)),
		termsByAttr:     make(map[int][]AttributeTerm),
		tagBySlug:       make(map[string]Tag, len(d.Tags)),
	}

	for _, c := range d.Categories {
		if _, dup := s.categoryByID[c.ID]; dup {
			return nil, fmt.Errorf("%w: category %d", ErrDuplicateID, c.ID)
		}
		s.categoryByID[c.ID] = c
		s.categories = append(s.categories, c)
	}
	sort.Slice(s.categories, func(i, j int) bool { return s.categories[i].ID < s.categories[j].ID })

	for _, p := range d.Products {
		if _, dup := s.productByID[p.ID]; dup {
			return nil, fmt.Errorf("%w: product %d", ErrDuplicateID, p.ID)
		}
		s.productByID[p.ID] = p
		if strings.TrimSpace(p.Name) == "" {
			continue
		}
		s.products = append(s.products, productEntry{
			product:   p,
			nameLower: Fold(p.Name),
			tokens:    productTokens(p.Name),
		})
	}
	sort.Slice(s.products, func(i, j int) bool { return s.products[i].product.ID < s.products[j].product.ID })

	attrByID := make(map[int]Attribute, len(d.Attributes))
	for _, a := range d.Attributes {
		if _, dup := attrByID[a.ID]; dup {
			return nil, fmt.Errorf("%w: attribute %d", ErrDuplicateID, a.ID)
		}
		attrByID[a.ID] = a
		s.attributeBySlug[a.Slug] = a
		s.attributes = append(s.attributes, a)
	}
	sort.Slice(s.attributes, func(i, j int) bool { return s.attributes[i].ID < s.attributes[j].ID })

	termIDs := make(map[int]struct{}, len(d.AttributeTerms))
	for _, t := range d.AttributeTerms {
		if _, dup := termIDs[t.ID]; dup {
			return nil, fmt.Errorf("%w: attribute term %d", ErrDuplicateID, t.ID)
		}
		if _, ok := attrByID[t.AttributeID]; !ok {
			return nil, fmt.Errorf("%w: term %d -> attribute %d", ErrDanglingReference, t.ID, t.AttributeID)
		}
		termIDs[t.ID] = struct{}{}
		s.termsByAttr[t.AttributeID] = append(s.termsByAttr[t.AttributeID], t)
	}
	for id := range s.termsByAttr {
		terms := s.termsByAttr[id]
		sort.Slice(terms, func(i, j int) bool { return terms[i].ID < terms[j].ID })
	}

	tagIDs := make(map[int]struct{}, len(d.Tags))
	for _, t := range d.Tags {
		if _, dup := tagIDs[t.ID]; dup {
			return nil, fmt.Errorf("%w: tag %d", ErrDuplicateID, t.ID)
		}
		tagIDs[t.ID] = struct{}{}
		s.tagBySlug[t.Slug] = t
		s.tags = append(s.tags, t)
	}
	sort.Slice(s.tags, func(i, j int) bool { return s.tags[i].ID < s.tags[j].ID })
	s.tagKeys = buildTagKeys(s.tags)

	s.keywords = buildCategoryKeywords(s.categories)
	return s, nil
}

func productTokens(name string) []string {
	var tokens []string
	seen := make(map[string]struct{})
	for _, tok := range splitName(Fold(name), "-_/") {
		if len(tok) <= 2 || productTokenStopWords.Contains(tok) {
			continue
		}
		if _, ok := seen[tok]; ok {
			continue
		}
		seen[tok] = struct{}{}
		tokens = append(tokens, tok)
	}
	return tokens
}

// buildTagKeys indexes tags by folded name and by their de-hyphenated slug.
func buildTagKeys(tags []Tag) []tagKey {
	keys := make([]tagKey, 0, len(tags)*2)
	for _, t := range tags {
		name := Fold(t.Name)
		keys = append(keys, tagKey{key: name, tag: t})
		if slugWords := strings.ReplaceAll(t.Slug, "-", " "); slugWords != name {
			keys = append(keys, tagKey{key: slugWords, tag: t})
		}
	}
	return keys
}

// buildCategoryKeywords generates the keyword to category mapping. The full name and
// slug words always claim their keyword; derived keywords only fill gaps.
func buildCategoryKeywords(categories []Category) []categoryKeyword {
	index := make(map[string]int)
	set := func(kw string, id int) {
		if kw != "" {
			index[kw] = id
		}
	}
	setDefault := func(kw string, id int) {
		if _, ok := index[kw]; !ok && kw != "" {
			index[kw] = id
		}
	}

	for _, c := range categories {
		if c.Count <= 0 || c.Slug == "uncategorized" {
			continue
		}
		name := Fold(c.Name)
		set(name, c.ID)

		var words []string
		for _, w := range splitName(name, "-_/&") {
			if len(w) > 2 && !categoryNameStopWords.Contains(w) {
				words = append(words, w)
				setDefault(w, c.ID)
			}
		}

		if slugWords := strings.ReplaceAll(c.Slug, "-", " "); slugWords != name {
			set(Fold(slugWords), c.ID)
		}

		for _, v := range categoryVariations {
			if ContainsWord(name, v[0]) {
				setDefault(replaceWord(name, v[0], v[1]), c.ID)
			}
		}

		for _, suffix := range []string{"tiles", "tile"} {
			setDefault(name+" "+suffix, c.ID)
		}
		for _, w := range words {
			for _, suffix := range []string{"tiles", "tile"} {
				setDefault(w+" "+suffix, c.ID)
			}
		}
	}

	out := make([]categoryKeyword, 0, len(index))
	for kw, id := range index {
		out = append(out, categoryKeyword{keyword: kw, categoryID: id})
	}
	sort.Slice(out, func(i, j int) bool {
		if len(out[i].keyword) != len(out[j].keyword) {
			return len(out[i].keyword) > len(out[j].keyword)
		}
		if out[i].categoryID != out[j].categoryID {
			return out[i].categoryID < out[j].categoryID
		}
		return out[i].keyword < out[j].keyword
	})
	return out
}

func replaceWord(text, word, with string) string {
	var b strings.Builder
	rest := text
	for {
		i, ok := FindWord(rest, word)
		if !ok {
			b.WriteString(rest)
			return b.String()
		}
		b.WriteString(rest[:i])
		b.WriteString(with)
		rest = rest[i+len(word):]
	}
}

func (s *Snapshot) Version() string     { return s.version }
func (s *Snapshot) LoadedAt() time.Time { return s.loadedAt }

// Stats returns entry counts by kind.
func (s *Snapshot) Stats() map[string]int {
	terms := 0
	for _, t := range s.termsByAttr {
		terms += len(t)
	}
	return map[string]int{
		"products":        len(s.productByID),
		"categories":      len(s.categories),
		"attributes":      len(s.attributes),
		"attribute_terms": terms,
		"tags":            len(s.tags),
		"keywords":        len(s.keywords),
	}
}

func (s *Snapshot) CategoryByID(id int) (Category, bool) {
	c, ok := s.categoryByID[id]
	return c, ok
}

func (s *Snapshot) ProductByID(id int) (Product, bool) {
	p, ok := s.productByID[id]
	return p, ok
}
