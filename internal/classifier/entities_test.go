package classifier

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEntities_CollectTagsKeepsSlugsAligned(t *testing.T) {
	e := &Entities{
		Color:  &Term{Value: "Gray", TagIDs: []int{40, 12}, TagSlugs: []string{"gray"}},
		Finish: &Term{Value: "Matte", TagIDs: []int{31}, TagSlugs: []string{"matte"}},
	}
	e.collectTags(tagRef{id: 12}, tagRef{id: 7, slug: "quick-ship"})

	assert.Equal(t, []int{7, 12, 31, 40}, e.TagIDs)
	assert.Equal(t, []string{"quick-ship", "", "matte", "gray"}, e.TagSlugs)
	assert.Len(t, e.TagSlugs, len(e.TagIDs))
}

func TestEntities_CollectTagsPrefersKnownSlug(t *testing.T) {
	e := &Entities{
		Origin: &Term{Value: "Italy", TagIDs: []int{9}, TagSlugs: []string{"italy"}},
	}
	e.collectTags(tagRef{id: 9})

	assert.Equal(t, []int{9}, e.TagIDs)
	assert.Equal(t, []string{"italy"}, e.TagSlugs)
}

func TestEntities_CollectTagsEmpty(t *testing.T) {
	e := &Entities{TagIDs: []int{1}, TagSlugs: []string{"stale"}}
	e.collectTags()

	assert.Nil(t, e.TagIDs)
	assert.Nil(t, e.TagSlugs)
}
