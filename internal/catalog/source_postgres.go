package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const (
	queryProducts          = `SELECT id, name, slug FROM catalog_products ORDER BY id`
	queryProductCategories = `SELECT product_id, category_id FROM catalog_product_categories ORDER BY product_id, category_id`
	queryCategories        = `SELECT id, name, slug, count, parent FROM catalog_categories ORDER BY id`
	queryAttributes        = `SELECT id, name, slug FROM catalog_attributes ORDER BY id`
	queryAttributeTerms    = `SELECT id, attribute_id, name, slug FROM catalog_attribute_terms ORDER BY id`
	queryTags              = `SELECT id, name, slug, count FROM catalog_tags ORDER BY id`
)

// PostgresSource assembles a snapshot document from the catalog_* tables.
type PostgresSource struct {
	db  *sql.DB
	now func() time.Time
}

func NewPostgresSource(db *sql.DB) *PostgresSource {
	return &PostgresSource{db: db, now: time.Now}
}

func (p *PostgresSource) Name() string { return "postgres" }

func (p *PostgresSource) Load(ctx context.Context) (*Data, error) {
	loadedAt := p.now().UTC()
	d := &Data{
		Version:  "postgres:" + loadedAt.Format(time.RFC3339),
		LoadedAt: loadedAt,
	}

	var err error
	if d.Products, err = p.products(ctx); err != nil {
		return nil, err
	}
	if d.Categories, err = p.categories(ctx); err != nil {
		return nil, err
	}
	if d.Attributes, err = p.attributes(ctx); err != nil {
		return nil, err
	}
	if d.AttributeTerms, err = p.attributeTerms(ctx); err != nil {
		return nil, err
	}
	if d.Tags, err = p.tags(ctx); err != nil {
		return nil, err
	}

	if err := Validate(d); err != nil {
		return nil, err
	}
	return d, nil
}

func (p *PostgresSource) products(ctx context.Context) ([]Product, error) {
	rows, err := p.db.QueryContext(ctx, queryProducts)
	if err != nil {
		return nil, fmt.Errorf("query products: %w", err)
	}
	defer rows.Close()

	var out []Product
	index := make(map[int]int)
	for rows.Next() {
		var pr Product
		if err := rows.Scan(&pr.ID, &pr.Name, &pr.Slug); err != nil {
			return nil, fmt.Errorf("scan product: %w", err)
		}
		index[pr.ID] = len(out)
		out = append(out, pr)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate products: %w", err)
	}

	links, err := p.db.QueryContext(ctx, queryProductCategories)
	if err != nil {
		return nil, fmt.Errorf("query product categories: %w", err)
	}
	defer links.Close()

	for links.Next() {
		var productID, categoryID int
		if err := links.Scan(&productID, &categoryID); err != nil {
			return nil, fmt.Errorf("scan product category: %w", err)
		}
		if i, ok := index[productID]; ok {
			out[i].CategoryIDs = append(out[i].CategoryIDs, categoryID)
		}
	}
	if err := links.Err(); err != nil {
		return nil, fmt.Errorf("iterate product categories: %w", err)
	}
	return out, nil
}

func (p *PostgresSource) categories(ctx context.Context) ([]Category, error) {
	rows, err := p.db.QueryContext(ctx, queryCategories)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var out []Category
	for rows.Next() {
		var c Category
		if err := rows.Scan(&c.ID, &c.Name, &c.Slug, &c.Count, &c.Parent); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

func (p *PostgresSource) attributes(ctx context.Context) ([]Attribute, error) {
	rows, err := p.db.QueryContext(ctx, queryAttributes)
	if err != nil {
		return nil, fmt.Errorf("query attributes: %w", err)
	}
	defer rows.Close()

	var out []Attribute
	for rows.Next() {
		var a Attribute
		if err := rows.Scan(&a.ID, &a.Name, &a.Slug); err != nil {
			return nil, fmt.Errorf("scan attribute: %w", err)
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

func (p *PostgresSource) attributeTerms(ctx context.Context) ([]AttributeTerm, error) {
	rows, err := p.db.QueryContext(ctx, queryAttributeTerms)
	if err != nil {
		return nil, fmt.Errorf("query attribute terms: %w", err)
	}
	defer rows.Close()

	var out []AttributeTerm
	for rows.Next() {
		var t AttributeTerm
		if err := rows.Scan(&t.ID, &t.AttributeID, &t.Name, &t.Slug); err != nil {
			return nil, fmt.Errorf("scan attribute term: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func (p *PostgresSource) tags(ctx context.Context) ([]Tag, error) {
	rows, err := p.db.QueryContext(ctx, queryTags)
	if err != nil {
		return nil, fmt.Errorf("query tags: %w", err)
	}
	defer rows.Close()

	var out []Tag
	for rows.Next() {
		var t Tag
		if err := rows.Scan(&t.ID, &t.Name, &t.Slug, &t.Count); err != nil {
			return nil, fmt.Errorf("scan tag: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
