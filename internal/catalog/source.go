package catalog

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"tile-intent-workers/internal/common/config"
	"tile-intent-workers/internal/common/database"
)

var (
	ErrUnknownSource   = errors.New("unknown catalog source")
	ErrSourceNotWired  = errors.New("catalog source dependency not configured")
	ErrUnsupportedFile = errors.New("unsupported catalog file extension")
)

// Source produces raw catalog documents. Implementations validate what they return.
type Source interface {
	Name() string
	Load(ctx context.Context) (*Data, error)
}

// FileSource reads a .json, .yaml or .yml snapshot document from disk.
type FileSource struct {
	Path string
}

func NewFileSource(path string) *FileSource {
	return &FileSource{Path: path}
}

func (f *FileSource) Name() string { return "file" }

func (f *FileSource) Load(ctx context.Context) (*Data, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	raw, err := os.ReadFile(f.Path)
	if err != nil {
		return nil, fmt.Errorf("read catalog file: %w", err)
	}

	var d *Data
	switch strings.ToLower(filepath.Ext(f.Path)) {
	case ".json":
		d, err = DecodeJSON(raw)
	case ".yaml", ".yml":
		d, err = DecodeYAML(raw)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedFile, f.Path)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", f.Path, err)
	}
	if d.Version == "" {
		d.Version = "file:" + filepath.Base(f.Path)
	}
	return d, nil
}

// ChainSource returns the first document any of its sources can load.
type ChainSource struct {
	Sources []Source
}

func NewChainSource(sources ...Source) *ChainSource {
	return &ChainSource{Sources: sources}
}

func (c *ChainSource) Name() string {
	names := make([]string, len(c.Sources))
	for i, s := range c.Sources {
		names[i] = s.Name()
	}
	return "chain(" + strings.Join(names, ",") + ")"
}

func (c *ChainSource) Load(ctx context.Context) (*Data, error) {
	if len(c.Sources) == 0 {
		return nil, fmt.Errorf("%w: empty chain", ErrUnknownSource)
	}
	var errs []error
	for _, s := range c.Sources {
		d, err := s.Load(ctx)
		if err == nil {
			return d, nil
		}
		errs = append(errs, fmt.Errorf("%s: %w", s.Name(), err))
		if ctx.Err() != nil {
			break
		}
	}
	return nil, errors.Join(errs...)
}

// SourceDeps carries the clients the configured sources may need.
type SourceDeps struct {
	Config        config.CatalogConfig
	Redis         *database.RedisClient
	Postgres      *database.PostgresClient
	Elasticsearch *database.ElasticsearchClient
	ProductIndex  string
}

// NewSource builds a single named source.
func NewSource(name string, deps SourceDeps) (Source, error) {
	switch name {
	case "file":
		return NewFileSource(deps.Config.FilePath), nil
	case "redis":
		if deps.Redis == nil {
			return nil, fmt.Errorf("%w: redis", ErrSourceNotWired)
		}
		return NewRedisSource(deps.Redis, deps.Config.RedisKey), nil
	case "postgres":
		if deps.Postgres == nil {
			return nil, fmt.Errorf("%w: postgres", ErrSourceNotWired)
		}
		return NewPostgresSource(deps.Postgres.DB), nil
	case "elasticsearch":
		// categories, attributes and tags come from a base source, see NewSourceChain
		return nil, fmt.Errorf("%w: elasticsearch needs a base source", ErrSourceNotWired)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownSource, name)
	}
}

// NewSourceChain builds the configured source list. An elasticsearch entry wraps
// the sources that follow it, which supply everything but products.
func NewSourceChain(names []string, deps SourceDeps) (Source, error) {
	if len(names) == 0 {
		return nil, fmt.Errorf("%w: no sources configured", ErrUnknownSource)
	}

	var sources []Source
	for i, name := range names {
		if name != "elasticsearch" {
			s, err := NewSource(name, deps)
			if err != nil {
				return nil, err
			}
			sources = append(sources, s)
			continue
		}

		if deps.Elasticsearch == nil {
			return nil, fmt.Errorf("%w: elasticsearch", ErrSourceNotWired)
		}
		base, err := NewSourceChain(names[i+1:], deps)
		if err != nil {
			return nil, fmt.Errorf("elasticsearch base: %w", err)
		}
		sources = append(sources, NewElasticsearchSource(deps.Elasticsearch, deps.ProductIndex, base))
		break
	}

	if len(sources) == 1 {
		return sources[0], nil
	}
	return NewChainSource(sources...), nil
}
