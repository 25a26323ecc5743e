// Package catalog holds the read-only store data the classifier matches against:
// products, categories, attribute taxonomies and tags.
package catalog

import "time"

type Product struct {
	ID          int    `json:"id" yaml:"id"`
	Name        string `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
	CategoryIDs []int  `json:"categoryIds,omitempty" yaml:"categoryIds,omitempty"`
}

type Category struct {
	ID     int    `json:"id" yaml:"id"`
	Name   string `json:"name" yaml:"name"`
	Slug   string `json:"slug" yaml:"slug"`
	Count  int    `json:"count" yaml:"count"`
	Parent int    `json:"parent" yaml:"parent"`
}

// Attribute is a product attribute taxonomy such as pa_finish or pa_tile-size.
type Attribute struct {
	ID   int    `json:"id" yaml:"id"`
	Name string `json:"name" yaml:"name"`
	Slug string `json:"slug" yaml:"slug"`
}

type AttributeTerm struct {
	ID          int    `json:"id" yaml:"id"`
	AttributeID int    `json:"attributeId" yaml:"attributeId"`
	Name        string `json:"name" yaml:"name"`
	Slug        string `json:"slug" yaml:"slug"`
}

type Tag struct {
	ID    int    `json:"id" yaml:"id"`
	Name  string `json:"name" yaml:"name"`
	Slug  string `json:"slug" yaml:"slug"`
	Count int    `json:"count" yaml:"count"`
}

// Data is the raw snapshot document exchanged between sources.
type Data struct {
	Version        string          `json:"version" yaml:"version"`
	LoadedAt       time.Time       `json:"loadedAt" yaml:"loadedAt"`
	Products       []Product       `json:"products" yaml:"products"`
	Categories     []Category      `json:"categories" yaml:"categories"`
	Attributes     []Attribute     `json:"attributes,omitempty" yaml:"attributes,omitempty"`
	AttributeTerms []AttributeTerm `json:"attributeTerms,omitempty" yaml:"attributeTerms,omitempty"`
	Tags           []Tag           `json:"tags,omitempty" yaml:"tags,omitempty"`
}

// Well-known attribute slugs.
const (
	AttrFinish      = "pa_finish"
	AttrTileSize    = "pa_tile-size"
	AttrSampleSize  = "pa_sample-size"
	AttrThickness   = "pa_thickness"
	AttrApplication = "pa_application"
	AttrVisual      = "pa_visual"
)

const (
	quickShipTagSlug = "quick-ship"
	chipCardTagSlug  = "chip-card"
)
