package catalog

import (
	"github.com/sahilm/fuzzy"
)

// ViewLimits caps the size of a PublicView.
type ViewLimits struct {
	Products int
	Tags     int
}

func DefaultViewLimits() ViewLimits {
	return ViewLimits{Products: 100, Tags: 50}
}

type CategoryRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type TagRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

// PublicView is the part of the catalog that may leave the process: names and
// identifiers only, no counts and no product/category relations.
type PublicView struct {
	Products   []string            `json:"products"`
	Categories []CategoryRef       `json:"categories"`
	Attributes map[string][]string `json:"attributes"`
	Tags       []TagRef            `json:"tags"`
}

func (s *Snapshot) PublicView(limits ViewLimits) PublicView {
	if limits.Products <= 0 || limits.Tags <= 0 {
		def := DefaultViewLimits()
		if limits.Products <= 0 {
			limits.Products = def.Products
		}
		if limits.Tags <= 0 {
			limits.Tags = def.Tags
		}
	}

	view := PublicView{
		Products:   []string{},
		Categories: []CategoryRef{},
		Attributes: map[string][]string{},
		Tags:       []TagRef{},
	}

	for _, p := range s.products {
		if len(view.Products) == limits.Products {
			break
		}
		view.Products = append(view.Products, p.product.Name)
	}

	for _, c := range s.categories {
		if c.Name == "" {
			continue
		}
		view.Categories = append(view.Categories, CategoryRef{ID: c.ID, Name: c.Name, Slug: c.Slug})
	}

	for _, a := range s.attributes {
		if a.Slug == "" {
			continue
		}
		var names []string
		for _, t := range s.termsByAttr[a.ID] {
			if t.Name != "" {
				names = append(names, t.Name)
			}
		}
		if len(names) > 0 {
			view.Attributes[a.Slug] = names
		}
	}

	for _, t := range s.tags {
		if len(view.Tags) == limits.Tags {
			break
		}
		if t.Name == "" {
			continue
		}
		view.Tags = append(view.Tags, TagRef{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}

	return view
}

// Suggest ranks product names against query for "did you mean" hints.
func (s *Snapshot) Suggest(query string, limit int) []string {
	query = Fold(query)
	if query == "" || limit <= 0 {
		return nil
	}

	names := make([]string, len(s.products))
	for i, p := range s.products {
		names[i] = p.nameLower
	}

	matches := fuzzy.Find(query, names)
	out := make([]string, 0, limit)
	for _, m := range matches {
		if len(out) == limit {
			break
		}
		out = append(out, s.products[m.Index].product.Name)
	}
	return out
}
