package catalog_test

import (
	"encoding/json"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tile-intent-workers/internal/catalog"
	"tile-intent-workers/internal/catalog/catalogtest"
)

func TestPublicView_Limits(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	view := snap.PublicView(catalog.ViewLimits{Products: 2, Tags: 2})

	assert.Equal(t, []string{"Carrara", "Calacatta Gold"}, view.Products)
	require.Len(t, view.Tags, 2)
	assert.Equal(t, "Gray", view.Tags[0].Name)
	assert.Equal(t, "White", view.Tags[1].Name)
	assert.Len(t, view.Categories, 7)
	assert.Equal(t, []string{"Matte", "Polished", "Honed"}, view.Attributes[catalog.AttrFinish])
}

func TestPublicView_DefaultsAndPrivacy(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	view := snap.PublicView(catalog.ViewLimits{})
	assert.Len(t, view.Products, 7)

	raw, err := json.Marshal(view)
	require.NoError(t, err)

	var generic map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &generic))

	categories := generic["categories"].([]interface{})
	first := categories[0].(map[string]interface{})
	assert.NotContains(t, first, "count")
	assert.NotContains(t, first, "parent")
}

func TestSuggest(t *testing.T) {
	snap := catalogtest.Snapshot(t)

	assert.Equal(t, []string{"Carrara"}, snap.Suggest("carara", 3))
	assert.Nil(t, snap.Suggest("", 3))
	assert.Nil(t, snap.Suggest("carrara", 0))
	assert.Empty(t, snap.Suggest("zzzz", 3))
}

func TestStore_SwapIsAtomic(t *testing.T) {
	store := catalog.NewStore()
	assert.False(t, store.Ready())
	assert.Nil(t, store.Current())

	first := catalogtest.Snapshot(t)
	assert.Nil(t, store.Swap(first))
	assert.True(t, store.Ready())

	d := catalogtest.Data()
	d.Version = "fixture-2"
	second, err := catalog.NewSnapshot(d)
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				snap := store.Current()
				v := snap.Version()
				assert.Contains(t, []string{"fixture-1", "fixture-2"}, v)
			}
		}()
	}
	previous := store.Swap(second)
	wg.Wait()

	assert.Same(t, first, previous)
	assert.Equal(t, "fixture-2", store.Current().Version())
}
