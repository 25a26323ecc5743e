package catalog

import (
	"encoding/json"
	"errors"
	"fmt"

	"tile-intent-workers/internal/common/validation"

	"gopkg.in/yaml.v3"
)

// ErrInvalidData marks a document that does not satisfy the snapshot schema.
var ErrInvalidData = errors.New("invalid catalog document")

const snapshotSchemaJSON = `{
  "$schema": "http://json-schema.org/draft-07/schema#",
  "type": "object",
  "required": ["products", "categories"],
  "properties": {
    "version": {"type": "string"},
    "loadedAt": {"type": "string"},
    "products": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "name": {"type": "string"},
          "slug": {"type": "string"},
          "categoryIds": {"type": ["array", "null"], "items": {"type": "integer"}}
        }
      }
    },
    "categories": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "name", "slug"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "name": {"type": "string"},
          "slug": {"type": "string"},
          "count": {"type": "integer", "minimum": 0},
          "parent": {"type": "integer", "minimum": 0}
        }
      }
    },
    "attributes": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "slug"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "name": {"type": "string"},
          "slug": {"type": "string", "minLength": 1}
        }
      }
    },
    "attributeTerms": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "attributeId", "name"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "attributeId": {"type": "integer", "minimum": 1},
          "name": {"type": "string"},
          "slug": {"type": "string"}
        }
      }
    },
    "tags": {
      "type": ["array", "null"],
      "items": {
        "type": "object",
        "required": ["id", "name", "slug"],
        "properties": {
          "id": {"type": "integer", "minimum": 1},
          "name": {"type": "string"},
          "slug": {"type": "string"},
          "count": {"type": "integer", "minimum": 0}
        }
      }
    }
  }
}`

var snapshotSchema = validation.MustSchema("catalog-snapshot", snapshotSchemaJSON)

// ValidateJSON checks a raw snapshot document against the schema.
func ValidateJSON(raw []byte) error {
	res, err := snapshotSchema.ValidateBytes(raw)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}

// Validate checks an already decoded document, e.g. one assembled from database rows.
func Validate(d *Data) error {
	if d == nil {
		return fmt.Errorf("%w: nil document", ErrInvalidData)
	}
	res, err := snapshotSchema.ValidateGo(d)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if err := res.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return nil
}

// DecodeJSON validates and decodes a JSON snapshot document.
func DecodeJSON(raw []byte) (*Data, error) {
	if err := ValidateJSON(raw); err != nil {
		return nil, err
	}
	var d Data
	if err := json.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	return &d, nil
}

// DecodeYAML decodes a YAML snapshot document and validates the result.
func DecodeYAML(raw []byte) (*Data, error) {
	var d Data
	if err := yaml.Unmarshal(raw, &d); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidData, err)
	}
	if err := Validate(&d); err != nil {
		return nil, err
	}
	return &d, nil
}
