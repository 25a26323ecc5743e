package classifier

import "sort"

// Term is an attribute-like entity: the normalized value the user asked for, the
// catalog attribute it belongs to and whatever identifiers the snapshot resolved.
// AttributeSlug is empty for values that only resolve through tags (color, origin).
type Term struct {
	Value         string   `json:"value"`
	AttributeSlug string   `json:"attributeSlug,omitempty"`
	TermIDs       []int    `json:"termIds,omitempty"`
	TagIDs        []int    `json:"tagIds,omitempty"`
	TagSlugs      []string `json:"tagSlugs,omitempty"`
}

// Entities is the extraction record. A nil field means the extractor found nothing;
// it is never the same thing as an empty string or a zero.
type Entities struct {
	ProductID   *int    `json:"productId,omitempty"`
	ProductName *string `json:"productName,omitempty"`
	ProductSlug *string `json:"productSlug,omitempty"`

	CategoryID   *int    `json:"categoryId,omitempty"`
	CategoryName *string `json:"categoryName,omitempty"`
	CategorySlug *string `json:"categorySlug,omitempty"`

	Finish         *Term   `json:"finish,omitempty"`
	TileSize       *Term   `json:"tileSize,omitempty"`
	SampleSize     *Term   `json:"sampleSize,omitempty"`
	Color          *Term   `json:"color,omitempty"`
	Thickness      *Term   `json:"thickness,omitempty"`
	Visual         *Term   `json:"visual,omitempty"`
	Origin         *Term   `json:"origin,omitempty"`
	Application    *Term   `json:"application,omitempty"`
	CollectionYear *Term   `json:"collectionYear,omitempty"`
	Edge           *string `json:"edge,omitempty"`

	QuickShip *bool `json:"quickShip,omitempty"`
	OnSale    *bool `json:"onSale,omitempty"`

	OrderID       *int    `json:"orderId,omitempty"`
	Quantity      *int    `json:"quantity,omitempty"`
	Reorder       *bool   `json:"reorder,omitempty"`
	OrderCount    *int    `json:"orderCount,omitempty"`
	OrderItemName *string `json:"orderItemName,omitempty"`

	// TagIDs and TagSlugs are the union of every tag resolved above, id ordered.
	// They are parallel: TagSlugs[i] is the slug of TagIDs[i], "" when unknown.
	TagIDs   []int    `json:"tagIds,omitempty"`
	TagSlugs []string `json:"tagSlugs,omitempty"`
}

func ptr[T any](v T) *T { return &v }

// HasAttributes reports whether any attribute counted by the escalation table is set.
func (e *Entities) HasAttributes() bool {
	return e.Finish != nil || e.TileSize != nil || e.SampleSize != nil || e.Color != nil ||
		e.Thickness != nil || e.Visual != nil || e.Origin != nil || e.Application != nil
}

// Attributes returns the attribute terms that resolved to a catalog attribute slug,
// in a fixed order, for building attribute-scoped queries.
func (e *Entities) Attributes() []Term {
	var out []Term
	for _, t := range []*Term{e.Finish, e.TileSize, e.SampleSize, e.Thickness, e.Application, e.Visual} {
		if t != nil && t.AttributeSlug != "" {
			out = append(out, *t)
		}
	}
	return out
}

type tagRef struct {
	id   int
	slug string
}

// collectTags fills TagIDs/TagSlugs from the terms plus any extra tags.
func (e *Entities) collectTags(extra ...tagRef) {
	seen := make(map[int]string)
	for _, t := range []*Term{e.Finish, e.Color, e.Thickness, e.Visual, e.Origin, e.CollectionYear} {
		if t == nil {
			continue
		}
		for i, id := range t.TagIDs {
			slug := ""
			if i < len(t.TagSlugs) {
				slug = t.TagSlugs[i]
			}
			keepSlug(seen, id, slug)
		}
	}
	for _, r := range extra {
		keepSlug(seen, r.id, r.slug)
	}
	if len(seen) == 0 {
		e.TagIDs, e.TagSlugs = nil, nil
		return
	}

	ids := make([]int, 0, len(seen))
	for id := range seen {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	e.TagIDs = ids
	e.TagSlugs = make([]string, len(ids))
	for i, id := range ids {
		e.TagSlugs[i] = seen[id]
	}
}

// keepSlug records id, never replacing a known slug with an empty one.
func keepSlug(seen map[int]string, id int, slug string) {
	if prev, ok := seen[id]; ok && slug == "" {
		seen[id] = prev
		return
	}
	seen[id] = slug
}
