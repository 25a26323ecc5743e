package catalog

import (
	"context"
	"time"

	"tile-intent-workers/internal/common/errors"
	"tile-intent-workers/internal/common/logger"
	"tile-intent-workers/internal/common/metrics"
)

const DefaultRefreshInterval = 6 * time.Hour

// Refresher rebuilds the Store's snapshot from a Source. A failed refresh leaves the
// previous snapshot in place.
type Refresher struct {
	source      Source
	store       *Store
	interval    time.Duration
	loadTimeout time.Duration
	logger      logger.Logger
}

func NewRefresher(source Source, store *Store, interval, loadTimeout time.Duration, log logger.Logger) *Refresher {
	if interval <= 0 {
		interval = DefaultRefreshInterval
	}
	return &Refresher{
		source:      source,
		store:       store,
		interval:    interval,
		loadTimeout: loadTimeout,
		logger:      log.WithFields(map[string]interface{}{"component": "catalog-refresher", "source": source.Name()}),
	}
}

// Refresh loads, validates and installs one snapshot.
func (r *Refresher) Refresh(ctx context.Context) error {
	start := time.Now()
	if r.loadTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.loadTimeout)
		defer cancel()
	}

	data, err := r.source.Load(ctx)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("load_failed").Inc()
		return errors.NewCatalogLoadFailedError(r.source.Name(), err)
	}
	if data.LoadedAt.IsZero() {
		data.LoadedAt = time.Now().UTC()
	}

	snap, err := NewSnapshot(data)
	if err != nil {
		metrics.CatalogRefreshes.WithLabelValues("invalid").Inc()
		return errors.NewCatalogInvalidError(err)
	}

	previous := r.store.Swap(snap)
	metrics.CatalogRefreshes.WithLabelValues("success").Inc()
	metrics.CatalogSnapshotLoadedAt.Set(float64(snap.LoadedAt().Unix()))
	stats := snap.Stats()
	for kind, n := range stats {
		metrics.CatalogSnapshotEntries.WithLabelValues(kind).Set(float64(n))
	}

	fields := map[string]interface{}{
		"version":  snap.Version(),
		"duration": time.Since(start).Milliseconds(),
	}
	for kind, n := range stats {
		fields[kind] = n
	}
	if previous != nil {
		fields["previousVersion"] = previous.Version()
	}
	r.logger.Info("Catalog snapshot installed", fields)
	return nil
}

// Run refreshes immediately and then on every tick until ctx is done.
func (r *Refresher) Run(ctx context.Context) {
	r.refreshLogged(ctx)

	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.logger.Info("Catalog refresher stopped", nil)
			return
		case <-ticker.C:
			r.refreshLogged(ctx)
		}
	}
}

func (r *Refresher) refreshLogged(ctx context.Context) {
	if err := r.Refresh(ctx); err != nil {
		if ctx.Err() != nil {
			return
		}
		stdErr := errors.Normalize(err)
		r.logger.Error("Catalog refresh failed, keeping previous snapshot", map[string]interface{}{
			"code":    stdErr.Code,
			"details": stdErr.Details,
			"ready":   r.store.Ready(),
		})
	}
}
