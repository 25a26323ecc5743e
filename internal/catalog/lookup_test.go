package catalog_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/catalog/catalogtest"
)

func TestCategoryForText(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	tests := []struct {
		name      string
		text      string
		wantFound bool
		wantID    int
		wantKey   string
	}{
		{name: "full name", text: "show me matte wall tiles", wantFound: true, wantID: catalogtest.CategoryWallTiles, wantKey: "wall tiles"},
		{name: "singular variation", text: "any floor tile in grey", wantFound: true, wantID: catalogtest.CategoryFloorTiles, wantKey: "floor tile"},
		{name: "flooring variation", text: "flooring tiles please", wantFound: true, wantID: catalogtest.CategoryFloorTiles, wantKey: "flooring tiles"},
		{name: "single name word", text: "Do you have MARBLE?", wantFound: true, wantID: catalogtest.CategoryMarble, wantKey: "marble"},
		{name: "word boundary", text: "trimmed edges", wantFound: false},
		{name: "stop word keyword", text: "show me tiles", wantFound: false},
		{name: "uncategorized skipped", text: "uncategorized stuff", wantFound: false},
		{name: "empty category skipped", text: "pool tiles", wantFound: false},
		{name: "plural of bare word does not match", text: "tiles for walls", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := snap.CategoryForText(tt.text, defaultStop)
			require.Equal(t, tt.wantFound, ok)
			if !tt.wantFound {
				return
			}
			assert.Equal(t, tt.wantID, m.Category.ID)
			assert.Equal(t, tt.wantKey, m.Keyword)

			folded := catalog.Fold(tt.text)
			assert.Equal(t, tt.wantKey, folded[m.Span.Start:m.Span.End])
		})
	}
}

func TestProductForText(t *testing.T) {
	snap := catalogtest.Snapshot(t)
	opts := catalog.MatchOptions{
		Stop:           defaultStop,
		Reserved:       catalog.NewStopWords("matte", "gray", "wall"),
		MinSimilarity:  0.85,
		MinFuzzyLength: 5,
	}

	tests := []struct {
		name      string
		text      string
		wantFound bool
		wantID    int
		wantTier  catalog.MatchTier
	}{
		{name: "exact name", text: "Show me Carrara", wantFound: true, wantID: catalogtest.ProductCarrara, wantTier: catalog.TierName},
		{name: "multi word name", text: "is calacatta gold in stock", wantFound: true, wantID: catalogtest.ProductCalacattaGold, wantTier: catalog.TierName},
		{name: "single token", text: "something like marquina", wantFound: true, wantID: catalogtest.ProductNeroMarquina, wantTier: catalog.TierToken},
		{name: "fuzzy typo", text: "do you have carara", wantFound: true, wantID: catalogtest.ProductCarrara, wantTier: catalog.TierFuzzy},
		{name: "generic noun never binds", text: "show me all products", wantFound: false},
		{name: "generic singular never binds", text: "product", wantFound: false},
		{name: "dimension token ignored", text: "3x6 please", wantFound: false},
		{name: "below fuzzy threshold", text: "asdkjhasd", wantFound: false},
		{name: "short words not fuzzed", text: "nro", wantFound: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, ok := snap.ProductForText(tt.text, opts)
			require.Equal(t, tt.wantFound, ok, "match: %+v", m)
			if !tt.wantFound {
				return
			}
			assert.Equal(t, tt.wantID, m.Product.ID)
			assert.Equal(t, tt.wantTier, m.Tier)
			assert.GreaterOrEqual(t, m.Score, opts.MinSimilarity)
		})
	}
}

func TestProductForText_FuzzyDisabled(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	_, ok := snap.ProductForText("do you have carara", catalog.MatchOptions{Stop: defaultStop})
	assert.False(t, ok)
}

func TestProductForText_ReservedTokens(t *testing.T) {
	d := catalogtest.Data()
	d.Products = append(d.Products, catalog.Product{ID: 900, Name: "Matte Black Hex", Slug: "matte-black-hex"})
	snap, err := catalog.NewSnapshot(d)
	require.NoError(t, err)

	opts := catalog.MatchOptions{Stop: defaultStop, Reserved: catalog.NewStopWords("matte")}
	_, ok := snap.ProductForText("matte finish", opts)
	assert.False(t, ok)

	m, ok := snap.ProductForText("matte black hex", opts)
	require.True(t, ok)
	assert.Equal(t, 900, m.Product.ID)
	assert.Equal(t, catalog.TierName, m.Tier)
}

func TestAttributeTermIDs(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	tests := []struct {
		name  string
		attr  string
		value string
		want  []int
	}{
		{name: "exact name", attr: catalog.AttrFinish, value: "Matte", want: []int{catalogtest.TermMatte}},
		{name: "quoted size", attr: catalog.AttrTileSize, value: `12"x24"`, want: []int{catalogtest.TermSize12x24}},
		{name: "bare size via slug", attr: catalog.AttrTileSize, value: "12x24", want: []int{catalogtest.TermSize12x24}},
		{name: "partial application", attr: catalog.AttrApplication, value: "interior", want: []int{catalogtest.TermInteriorWall, 502}},
		{name: "thickness", attr: catalog.AttrThickness, value: "10mm", want: []int{catalogtest.TermThickness10}},
		{name: "unknown attribute", attr: "pa_missing", value: "matte", want: nil},
		{name: "no match", attr: catalog.AttrFinish, value: "glitter", want: nil},
		{name: "blank value", attr: catalog.AttrFinish, value: "  ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, snap.AttributeTermIDs(tt.attr, tt.value))
		})
	}
}

func TestAttributeTerms_ReturnsCopy(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	terms := snap.AttributeTerms(catalog.AttrFinish)
	require.Len(t, terms, 3)
	terms[0].Name = "Changed"

	assert.Equal(t, "Matte", snap.AttributeTerms(catalog.AttrFinish)[0].Name)
}

func TestTagsForKeyword(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	assert.Equal(t, []int{catalogtest.TagGray}, snap.TagIDsForKeyword("Gray"))
	assert.Equal(t, []int{catalogtest.TagQuickShip}, snap.TagIDsForKeyword("quick ship"))
	assert.Equal(t, []int{catalogtest.TagMatte}, snap.TagIDsForKeyword("matte"))
	assert.Nil(t, snap.TagIDsForKeyword("terrazzo"))
	assert.Nil(t, snap.TagIDsForKeyword(""))

	tag, ok := snap.QuickShipTag()
	require.True(t, ok)
	assert.Equal(t, catalogtest.TagQuickShip, tag.ID)

	tag, ok = snap.ChipCardTag()
	require.True(t, ok)
	assert.Equal(t, catalogtest.TagChipCard, tag.ID)
}

func TestFindWord(t *testing.T) {
	tests := []struct {
		text, phrase string
		want         int
		found        bool
	}{
		{"wall tiles", "wall", 0, true},
		{"walls", "wall", 0, false},
		{"drywall wall", "wall", 8, true},
		{"12\"x24\" tiles", "12\"x24\"", 0, true},
		{"", "wall", 0, false},
		{"wall", "", 0, false},
	}
	for _, tt := range tests {
		got, ok := catalog.FindWord(tt.text, tt.phrase)
		assert.Equal(t, tt.found, ok, "%q in %q", tt.phrase, tt.text)
		if tt.found {
			assert.Equal(t, tt.want, got)
		}
	}
}
