package classifier

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"tile-intent-workers/internal/catalog"
)

var (
	reOrderID      = regexp.MustCompile(`\border\s*(?:#|no\.?|number)?\s*#?\s*(\d+)\b`)
	reUnitFollows  = regexp.MustCompile(`^\s*(?:qty|quantity|pcs|pieces|units?|boxe?s?|cartons?|sq\.?\s*ft|square\s+feet|of)\b`)
	reQuantityUnit = regexp.MustCompile(`\b(\d+)\s*(?:qty|quantity|pcs|pieces|units?|boxe?s?|cartons?|sq\.?\s*ft|square\s+feet)\b`)
	reQuantityVerb = regexp.MustCompile(`\b(?:order|buy|purchase|place\s+(?:an?\s+)?order)(?:\s+for)?\s+(\d+)\b`)
	reQuantityOf   = regexp.MustCompile(`\b(\d+)\s+of\s+(?:this|these|them|it|the)\b`)

	reSize       = regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*(?:"|''|inch(?:es)?\b|in\b)?\s*(?:x|by|×)\s*(\d+(?:\.\d+)?)(?:\s*(?:"|''|inch(?:es)?\b|in\b))?`)
	reSampleWord = regexp.MustCompile(`\bsamples?\b`)

	reThickness = []*regexp.Regexp{
		regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*mm\b`),
		regexp.MustCompile(`\b(\d+/\d+)\s*(?:"|''|inch(?:es)?\b|in\b)`),
		regexp.MustCompile(`\b(\d+(?:\.\d+)?)\s*cm\b`),
	}
	thicknessUnits = []string{"mm", `"`, "cm"}

	reCollectionYear = regexp.MustCompile(`\b(20[12]\d)(?:\s*(?:collection|series))?\b`)
	reMadeIn         = regexp.MustCompile(`\b(?:made|from|produced|manufactured)\s+in\s+([a-z]+)\b`)

	reQuickShip = regexp.MustCompile(`\bquick\s*-?\s*ship(?:ping)?\b|\bin\s+stock\b|\bavailable\s+now\b|\bimmediate(?:ly)?\b|\bships?\s+(?:fast|today)\b`)
	reOnSale    = regexp.MustCompile(`\bon\s+sale\b|\bsales?\b|\bdiscount(?:s|ed)?\b|\bclearance\b|\bdeals?\b|\bmarked\s+down\b`)

	reOrderVerb          = regexp.MustCompile(`\b(?:order|buy|purchase|want)\b`)
	reOrderHistoryWords  = regexp.MustCompile(`\b(?:track|tracking|status|where|last|history|previous|past|before|ordered|cancel)\b`)
	reOrderItemAfterVerb = regexp.MustCompile(`\b(?:order|buy|purchase|want)\s+(?:this\s+item\s+)?([a-z][a-z0-9-]+)`)
	reOrderItemIWant     = regexp.MustCompile(`\bi\s+(?:want|need|would\s+like)\s+(?:to\s+)?(?:order|buy|purchase|get)\s+(?:some\s+|more\s+|the\s+)?([a-z][a-z0-9-]+)`)
)

type vocabPattern struct {
	re    *regexp.Regexp
	value string
}

func compileKeywords(kws []keyword, plural bool) []vocabPattern {
	out := make([]vocabPattern, len(kws))
	for i, k := range kws {
		out[i] = vocabPattern{re: wordPattern(k.surface, plural), value: k.value}
	}
	return out
}

func compileWords(words []string, plural bool) []vocabPattern {
	kws := make([]keyword, len(words))
	for i, w := range words {
		kws[i] = keyword{surface: w, value: w}
	}
	return compileKeywords(kws, plural)
}

var (
	colorPatterns       = compileWords(colorKeywords, false)
	finishPatterns      = compileKeywords(finishKeywords, false)
	visualPatterns      = compileKeywords(visualKeywords, true)
	originPatterns      = compileKeywords(originKeywords, false)
	applicationPatterns = compileWords(applicationKeywords, true)
	edgePatterns        = compileKeywords(edgeKeywords, false)
	suffixPatterns      = compileKeywords(slugSuffixes, true)
)

// canonical colour spellings for tag lookup
var colorAliases = map[string]string{"grey": "gray"}

// extractor binds one snapshot and the configured match options.
type extractor struct {
	snap     *catalog.Snapshot
	stop     catalog.StopWords
	reserved catalog.StopWords
	match    catalog.MatchOptions
}

// extraction is the state of a single Extract call.
type extraction struct {
	*extractor
	text      string
	ents      *Entities
	numeric   claims
	named     []catalog.Span
	extraTags []tagRef
}

// Extract runs every sub-extractor over the normalized text. Sub-extractors never
// fail; a missing entity stays nil.
func (x *extractor) Extract(text string) (*Entities, []tagRef) {
	e := &extraction{extractor: x, text: text, ents: &Entities{}}

	e.category()
	e.product()

	e.orderID()
	e.quantity()
	e.numericSize()
	e.thickness()
	e.descriptiveSize()

	e.color()
	e.finish()
	e.visual()
	e.origin()
	e.application()
	e.edge()
	e.collectionYear()

	e.quickShip()
	e.onSale()
	e.orderItem()

	return e.ents, e.extraTags
}

// insideName reports whether span falls inside a matched category or product name.
func (e *extraction) insideName(s catalog.Span) bool {
	for _, n := range e.named {
		if n.Contains(s) {
			return true
		}
	}
	return false
}

// firstVocab returns the first pattern, in list order, with an occurrence outside the
// matched names.
func (e *extraction) firstVocab(patterns []vocabPattern) (vocabPattern, bool) {
	for _, p := range patterns {
		for _, m := range p.re.FindAllStringIndex(e.text, -1) {
			if !e.insideName(catalog.Span{Start: m[0], End: m[1]}) {
				return p, true
			}
		}
	}
	return vocabPattern{}, false
}

func (e *extraction) tagTerm(keyword string) ([]int, []string) {
	tags := e.snap.TagsForKeyword(keyword)
	if len(tags) == 0 {
		return nil, nil
	}
	ids := make([]int, len(tags))
	slugs := make([]string, len(tags))
	for i, t := range tags {
		ids[i], slugs[i] = t.ID, t.Slug
	}
	return ids, slugs
}

func (e *extraction) attributeTerm(attrSlug, value, display string) *Term {
	return &Term{
		Value:         display,
		AttributeSlug: attrSlug,
		TermIDs:       e.snap.AttributeTermIDs(attrSlug, value),
	}
}

func (e *extraction) category() {
	m, ok := e.snap.CategoryForText(e.text, e.stop)
	if !ok {
		return
	}
	e.ents.CategoryID = ptr(m.Category.ID)
	e.ents.CategoryName = ptr(m.Category.Name)
	e.ents.CategorySlug = ptr(m.Category.Slug)
	e.named = append(e.named, m.Span)
}

func (e *extraction) product() {
	m, ok := e.snap.ProductForText(e.text, e.match)
	if !ok {
		return
	}
	// a token or typo inside the category phrase is the category, not a product
	if m.Tier != catalog.TierName && e.insideName(m.Span) {
		return
	}

	slug := m.Product.Slug
	for _, p := range suffixPatterns {
		if p.re.MatchString(e.text) && !strings.HasSuffix(slug, p.value) {
			slug += p.value
			break
		}
	}

	e.ents.ProductID = ptr(m.Product.ID)
	e.ents.ProductName = ptr(m.Product.Name)
	e.ents.ProductSlug = ptr(slug)
	if m.Tier == catalog.TierName {
		e.named = append(e.named, m.Span)
	}
}

func (e *extraction) orderID() {
	for _, m := range reOrderID.FindAllStringSubmatchIndex(e.text, -1) {
		// "order 5 boxes" is a quantity
		if reUnitFollows.MatchString(e.text[m[1]:]) {
			continue
		}
		id, err := strconv.Atoi(e.text[m[2]:m[3]])
		if err != nil {
			continue
		}
		e.ents.OrderID = ptr(id)
		e.numeric.add(catalog.Span{Start: m[0], End: m[1]})
		return
	}
}

func (e *extraction) quantity() {
	for _, re := range []*regexp.Regexp{reQuantityUnit, reQuantityVerb, reQuantityOf} {
		m := e.numeric.firstFree(re, e.text)
		if m == nil {
			continue
		}
		n, err := strconv.Atoi(e.text[m[2]:m[3]])
		if err != nil || n <= 0 {
			continue
		}
		e.ents.Quantity = ptr(n)
		e.numeric.add(catalog.Span{Start: m[2], End: m[3]})
		return
	}
}

func (e *extraction) numericSize() {
	var m []int
	for _, c := range reSize.FindAllStringSubmatchIndex(e.text, -1) {
		s := catalog.Span{Start: c[0], End: c[1]}
		// "Metro Subway Tile 3x6" names a product, it does not ask for a size
		if e.numeric.free(s) && !e.insideName(s) {
			m = c
			break
		}
	}
	if m == nil {
		return
	}
	value := fmt.Sprintf("%sx%s", e.text[m[2]:m[3]], e.text[m[4]:m[5]])
	e.numeric.add(catalog.Span{Start: m[0], End: m[1]})

	if reSampleWord.MatchString(e.text) {
		e.ents.SampleSize = e.attributeTerm(catalog.AttrSampleSize, value, value)
		return
	}
	e.ents.TileSize = e.attributeTerm(catalog.AttrTileSize, value, value)
}

func (e *extraction) thickness() {
	for i, re := range reThickness {
		m := e.numeric.firstFree(re, e.text)
		if m == nil {
			continue
		}
		value := e.text[m[2]:m[3]] + thicknessUnits[i]
		e.numeric.add(catalog.Span{Start: m[0], End: m[1]})

		t := e.attributeTerm(catalog.AttrThickness, value, value)
		t.TagIDs, t.TagSlugs = e.tagTerm(value)
		e.ents.Thickness = t
		return
	}
}

// descriptiveSize handles "large format" or "small sample" when no dimensions were
// given. It only sets a value when the words resolve to catalog terms.
func (e *extraction) descriptiveSize() {
	if e.ents.TileSize != nil || e.ents.SampleSize != nil {
		return
	}
	if id, name, ok := e.matchSizePhrase(sampleSizePhrases, catalog.AttrSampleSize); ok {
		e.ents.SampleSize = &Term{Value: name, AttributeSlug: catalog.AttrSampleSize, TermIDs: id}
		return
	}
	if id, name, ok := e.matchSizePhrase(tileSizePhrases, catalog.AttrTileSize); ok {
		e.ents.TileSize = &Term{Value: name, AttributeSlug: catalog.AttrTileSize, TermIDs: id}
	}
}

func (e *extraction) matchSizePhrase(phrases []sizePhrase, attrSlug string) ([]int, string, bool) {
	terms := e.snap.AttributeTerms(attrSlug)
	if len(terms) == 0 {
		return nil, "", false
	}
	for _, p := range phrases {
		if !catalog.ContainsWord(e.text, p.phrase) {
			continue
		}
		var ids []int
		for _, t := range terms {
			name := catalog.Fold(t.Name)
			for _, h := range p.hints {
				if strings.Contains(name, h) || strings.Contains(t.Slug, h) {
					ids = append(ids, t.ID)
					break
				}
			}
		}
		if len(ids) > 0 {
			return ids, titleCase(p.phrase), true
		}
	}
	return nil, "", false
}

func (e *extraction) color() {
	p, ok := e.firstVocab(colorPatterns)
	if !ok {
		return
	}
	value := p.value
	if alias, ok := colorAliases[value]; ok {
		value = alias
	}
	t := &Term{Value: titleCase(value)}
	t.TagIDs, t.TagSlugs = e.tagTerm(value)
	e.ents.Color = t
}

func (e *extraction) finish() {
	p, ok := e.firstVocab(finishPatterns)
	if !ok {
		return
	}
	t := e.attributeTerm(catalog.AttrFinish, p.value, titleCase(p.value))
	t.TagIDs, t.TagSlugs = e.tagTerm(p.value)
	e.ents.Finish = t
}

func (e *extraction) visual() {
	p, ok := e.firstVocab(visualPatterns)
	if !ok {
		return
	}
	t := e.attributeTerm(catalog.AttrVisual, p.value, titleCase(p.value))
	t.TagIDs, t.TagSlugs = e.tagTerm(p.value)
	e.ents.Visual = t
}

func (e *extraction) origin() {
	value := ""
	if p, ok := e.firstVocab(originPatterns); ok {
		value = p.value
	} else if m := reMadeIn.FindStringSubmatch(e.text); m != nil && !e.stop.Contains(m[1]) {
		value = m[1]
	}
	if value == "" {
		return
	}
	t := &Term{Value: titleCase(value)}
	t.TagIDs, t.TagSlugs = e.tagTerm(value)
	e.ents.Origin = t
}

func (e *extraction) application() {
	p, ok := e.firstVocab(applicationPatterns)
	if !ok {
		return
	}
	e.ents.Application = e.attributeTerm(catalog.AttrApplication, p.value, titleCase(p.value))
}

func (e *extraction) edge() {
	if p, ok := e.firstVocab(edgePatterns); ok {
		e.ents.Edge = ptr(p.value)
	}
}

func (e *extraction) collectionYear() {
	m := e.numeric.firstFree(reCollectionYear, e.text)
	if m == nil {
		return
	}
	year := e.text[m[2]:m[3]]
	t := &Term{Value: year}
	t.TagIDs, t.TagSlugs = e.tagTerm(year)
	e.ents.CollectionYear = t
}

func (e *extraction) quickShip() {
	if !reQuickShip.MatchString(e.text) {
		return
	}
	e.ents.QuickShip = ptr(true)
	if tag, ok := e.snap.QuickShipTag(); ok {
		e.extraTags = append(e.extraTags, tagRef{id: tag.ID, slug: tag.Slug})
	}
}

func (e *extraction) onSale() {
	if reOnSale.MatchString(e.text) {
		e.ents.OnSale = ptr(true)
	}
}

// orderItem names what the customer wants to buy: the catalog product when one was
// found, otherwise the first content word after the purchase verb.
func (e *extraction) orderItem() {
	if !reOrderVerb.MatchString(e.text) || reOrderHistoryWords.MatchString(e.text) {
		return
	}
	if e.ents.ProductName != nil {
		e.ents.OrderItemName = ptr(*e.ents.ProductName)
		return
	}
	for _, re := range []*regexp.Regexp{reOrderItemAfterVerb, reOrderItemIWant} {
		m := re.FindStringSubmatchIndex(e.text)
		if m == nil {
			continue
		}
		word := e.text[m[2]:m[3]]
		if !e.usableItemWord(word, catalog.Span{Start: m[2], End: m[3]}) {
			continue
		}
		e.ents.OrderItemName = ptr(titleCase(word))
		return
	}
}

func (e *extraction) usableItemWord(word string, s catalog.Span) bool {
	switch {
	case len(word) <= 2,
		orderItemSkipWords.Contains(word),
		e.stop.Contains(word),
		e.reserved.Contains(word),
		e.insideName(s):
		return false
	}
	return e.numeric.free(s)
}
