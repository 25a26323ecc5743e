package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"tile-intent-workers/internal/common/database"
)

const maxIndexedProducts = 10000

// ElasticsearchSource takes products from a search index and everything else from
// a base source. The index holds documents shaped like Product.
type ElasticsearchSource struct {
	client *database.ElasticsearchClient
	index  string
	base   Source
}

func NewElasticsearchSource(client *database.ElasticsearchClient, index string, base Source) *ElasticsearchSource {
	return &ElasticsearchSource{client: client, index: index, base: base}
}

func (e *ElasticsearchSource) Name() string { return "elasticsearch" }

func (e *ElasticsearchSource) Load(ctx context.Context) (*Data, error) {
	d, err := e.base.Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("base source %s: %w", e.base.Name(), err)
	}

	hits, err := e.client.Search(ctx, e.index, map[string]interface{}{
		"size":  maxIndexedProducts,
		"query": map[string]interface{}{"match_all": map[string]interface{}{}},
		"sort":  []interface{}{map[string]interface{}{"id": "asc"}},
	})
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", e.index, err)
	}

	products := make([]Product, 0, len(hits))
	for _, hit := range hits {
		var p Product
		if err := json.Unmarshal(hit.Source, &p); err != nil {
			return nil, fmt.Errorf("%w: product document %s: %v", ErrInvalidData, hit.ID, err)
		}
		if p.ID == 0 {
			if id, convErr := strconv.Atoi(hit.ID); convErr == nil {
				p.ID = id
			}
		}
		products = append(products, p)
	}

	d.Products = products
	d.Version = fmt.Sprintf("%s+es:%d", d.Version, len(products))
	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}
