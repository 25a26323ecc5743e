// Package catalogtest provides a small tile store catalog for tests.
package catalogtest

import (
	"testing"
	"time"

	"tile-intent-workers/internal/catalog"
)

// Identifiers referenced by tests across packages.
const (
	CategoryWallTiles  = 15
	CategoryFloorTiles = 12
	CategoryMosaics    = 20
	CategoryMarble     = 21
	CategoryTrim       = 30

	ProductCarrara       = 123
	ProductGeneric       = 7846
	ProductCalacattaGold = 200
	ProductNeroMarquina  = 201
	ProductHexagonMosaic = 300
	ProductMetroSubway   = 301
	ProductBullnoseTrim  = 400

	TermMatte        = 101
	TermPolished     = 102
	TermSize12x24    = 201
	TermSize24x48    = 202
	TermSample4x4    = 301
	TermThickness10  = 401
	TermInteriorWall = 501
	TermShower       = 504
	TermMarbleLook   = 601

	TagGray      = 11
	TagWhite     = 12
	TagQuickShip = 13
	TagChipCard  = 14
	TagItaly     = 15
	TagMatte     = 16
)

// Data returns a fresh copy of the fixture document.
func Data() *catalog.Data {
	return &catalog.Data{
		Version:  "fixture-1",
		LoadedAt: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
		Categories: []catalog.Category{
			{ID: 1, Name: "Uncategorized", Slug: "uncategorized", Count: 3},
			{ID: CategoryFloorTiles, Name: "Floor Tiles", Slug: "floor-tiles", Count: 35},
			{ID: CategoryWallTiles, Name: "Wall Tiles", Slug: "wall-tiles", Count: 40},
			{ID: CategoryMosaics, Name: "Mosaics", Slug: "mosaics", Count: 18},
			{ID: CategoryMarble, Name: "Marble", Slug: "marble", Count: 22},
			{ID: CategoryTrim, Name: "Trim", Slug: "trim", Count: 10},
			{ID: 40, Name: "Pool Tiles", Slug: "pool-tiles", Count: 0},
		},
		Products: []catalog.Product{
			{ID: ProductCarrara, Name: "Carrara", Slug: "carrara", CategoryIDs: []int{CategoryMarble, CategoryWallTiles}},
			{ID: ProductCalacattaGold, Name: "Calacatta Gold", Slug: "calacatta-gold", CategoryIDs: []int{CategoryMarble}},
			{ID: ProductNeroMarquina, Name: "Nero Marquina", Slug: "nero-marquina", CategoryIDs: []int{CategoryMarble}},
			{ID: ProductHexagonMosaic, Name: "Hexagon Mosaic", Slug: "hexagon-mosaic", CategoryIDs: []int{CategoryMosaics}},
			{ID: ProductMetroSubway, Name: "Metro Subway Tile 3x6", Slug: "metro-subway-tile-3x6", CategoryIDs: []int{CategoryWallTiles}},
			{ID: ProductBullnoseTrim, Name: "Bullnose Trim", Slug: "bullnose-trim", CategoryIDs: []int{CategoryTrim}},
			{ID: ProductGeneric, Name: "Product", Slug: "product"},
		},
		Attributes: []catalog.Attribute{
			{ID: 1, Name: "Finish", Slug: catalog.AttrFinish},
			{ID: 2, Name: "Tile Size", Slug: catalog.AttrTileSize},
			{ID: 3, Name: "Sample Size", Slug: catalog.AttrSampleSize},
			{ID: 4, Name: "Thickness", Slug: catalog.AttrThickness},
			{ID: 5, Name: "Application", Slug: catalog.AttrApplication},
			{ID: 6, Name: "Visual", Slug: catalog.AttrVisual},
		},
		AttributeTerms: []catalog.AttributeTerm{
			{ID: TermMatte, AttributeID: 1, Name: "Matte", Slug: "matte"},
			{ID: TermPolished, AttributeID: 1, Name: "Polished", Slug: "polished"},
			{ID: 103, AttributeID: 1, Name: "Honed", Slug: "honed"},
			{ID: TermSize12x24, AttributeID: 2, Name: `12"x24"`, Slug: "12x24"},
			{ID: TermSize24x48, AttributeID: 2, Name: `24"x48"`, Slug: "24x48"},
			{ID: 203, AttributeID: 2, Name: `3"x6"`, Slug: "3x6"},
			{ID: 204, AttributeID: 2, Name: "Large Format", Slug: "large-format"},
			{ID: TermSample4x4, AttributeID: 3, Name: `4"x4"`, Slug: "4x4"},
			{ID: 302, AttributeID: 3, Name: "Large Sample", Slug: "large-sample"},
			{ID: TermThickness10, AttributeID: 4, Name: "10mm", Slug: "10mm"},
			{ID: 402, AttributeID: 4, Name: `3/8"`, Slug: "3-8"},
			{ID: TermInteriorWall, AttributeID: 5, Name: "Interior Wall", Slug: "interior-wall"},
			{ID: 502, AttributeID: 5, Name: "Interior Floor", Slug: "interior-floor"},
			{ID: 503, AttributeID: 5, Name: "Exterior Floor", Slug: "exterior-floor"},
			{ID: TermShower, AttributeID: 5, Name: "Shower", Slug: "shower"},
			{ID: TermMarbleLook, AttributeID: 6, Name: "Marble", Slug: "marble"},
			{ID: 602, AttributeID: 6, Name: "Wood", Slug: "wood"},
		},
		Tags: []catalog.Tag{
			{ID: TagGray, Name: "Gray", Slug: "gray", Count: 30},
			{ID: TagWhite, Name: "White", Slug: "white", Count: 41},
			{ID: TagQuickShip, Name: "Quick Ship", Slug: "quick-ship", Count: 12},
			{ID: TagChipCard, Name: "Chip Card", Slug: "chip-card", Count: 6},
			{ID: TagItaly, Name: "Italy", Slug: "italy", Count: 25},
			{ID: TagMatte, Name: "Matte Look", Slug: "matte-look", Count: 4},
		},
	}
}

// Snapshot builds the fixture snapshot and fails the test on error.
func Snapshot(t testing.TB) *catalog.Snapshot {
	t.Helper()
	snap, err := catalog.NewSnapshot(Data())
	if err != nil {
		t.Fatalf("build fixture snapshot: %v", err)
	}
	return snap
}

// Store returns a ready store holding the fixture snapshot.
func Store(t testing.TB) *catalog.Store {
	t.Helper()
	store := catalog.NewStore()
	store.Swap(Snapshot(t))
	return store
}
