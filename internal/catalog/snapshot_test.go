package catalog_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/catalog/catalogtest"
)

var defaultStop = catalog.NewStopWords("product", "products", "tile", "tiles", "item", "items")

func TestNewSnapshot_DuplicateIDs(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(d *catalog.Data)
	}{
		{
			name: "duplicate product",
			mutate: func(d *catalog.Data) {
				d.Products = append(d.Products, catalog.Product{ID: catalogtest.ProductCarrara, Name: "Other"})
			},
		},
		{
			name: "duplicate category",
			mutate: func(d *catalog.Data) {
				d.Categories = append(d.Categories, catalog.Category{ID: catalogtest.CategoryWallTiles, Name: "Walls", Slug: "walls"})
			},
		},
		{
			name: "duplicate attribute term",
			mutate: func(d *catalog.Data) {
				d.AttributeTerms = append(d.AttributeTerms, catalog.AttributeTerm{ID: catalogtest.TermMatte, AttributeID: 1, Name: "Matt"})
			},
		},
		{
			name: "duplicate tag",
			mutate: func(d *catalog.Data) {
				d.Tags = append(d.Tags, catalog.Tag{ID: catalogtest.TagGray, Name: "Grey", Slug: "grey"})
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := catalogtest.Data()
			tt.mutate(d)

			snap, err := catalog.NewSnapshot(d)
			assert.Nil(t, snap)
			assert.True(t, errors.Is(err, catalog.ErrDuplicateID), "got %v", err)
		})
	}
}

func TestNewSnapshot_DanglingTerm(t *testing.T) {
	d := catalogtest.Data()
	d.AttributeTerms = append(d.AttributeTerms, catalog.AttributeTerm{ID: 999, AttributeID: 77, Name: "Orphan"})

	_, err := catalog.NewSnapshot(d)
	assert.ErrorIs(t, err, catalog.ErrDanglingReference)
}

func TestNewSnapshot_NilData(t *testing.T) {
	_, err := catalog.NewSnapshot(nil)
	assert.Error(t, err)
}

func TestSnapshot_Stats(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	stats := snap.Stats()
	assert.Equal(t, 7, stats["products"])
	assert.Equal(t, 7, stats["categories"])
	assert.Equal(t, 6, stats["attributes"])
	assert.Equal(t, 17, stats["attribute_terms"])
	assert.Equal(t, 6, stats["tags"])
	assert.Greater(t, stats["keywords"], 10)
	assert.Equal(t, "fixture-1", snap.Version())
}

func TestSnapshot_ByID(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	p, ok := snap.ProductByID(catalogtest.ProductCarrara)
	require.True(t, ok)
	assert.Equal(t, "Carrara", p.Name)

	c, ok := snap.CategoryByID(catalogtest.CategoryWallTiles)
	require.True(t, ok)
	assert.Equal(t, "Wall Tiles", c.Name)

	_, ok = snap.ProductByID(424242)
	assert.False(t, ok)
}

func TestSnapshot_DataIsNotShared(t *testing.T) {
	d := catalogtest.Data()
	snap, err := catalog.NewSnapshot(d)
	require.NoError(t, err)

	d.Products[0].Name = "Changed"
	d.Categories = nil

	p, ok := snap.ProductByID(catalogtest.ProductCarrara)
	require.True(t, ok)
	assert.Equal(t, "Carrara", p.Name)

	_, ok = snap.CategoryByID(catalogtest.CategoryWallTiles)
	assert.True(t, ok)
}
