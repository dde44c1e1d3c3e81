package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog/log"

	"github.com/jwalitptl/hospital-api/internal/model"
	"github.com/jwalitptl/hospital-api/internal/repository"
	"github.com/jwalitptl/hospital-api/pkg/messaging"
	"github.com/jwalitptl/hospital-api/pkg/metrics"
)

const snapshotKey = "catalog:snapshot"

// Provider hands out catalog snapshots, rebuilding one from the database when
// the cached copy expired or was invalidated.
type Provider struct {
	repo    repository.CatalogRepository
	cache   *cache.Cache
	metrics *metrics.Metrics
}

func NewProvider(repo repository.CatalogRepository, ttl time.Duration, m *metrics.Metrics) *Provider {
	return &Provider{
		repo:    repo,
		cache:   cache.New(ttl, 2*ttl),
		metrics: m,
	}
}

func (p *Provider) Snapshot(ctx context.Context) (*Snapshot, error) {
	if v, ok := p.cache.Get(snapshotKey); ok {
		p.metrics.CatalogCacheHits.Inc()
		return v.(*Snapshot), nil
	}
	p.metrics.CatalogCacheMisses.Inc()

	snap, err := p.build(ctx)
	if err != nil {
		return nil, err
	}
	p.cache.SetDefault(snapshotKey, snap)
	return snap, nil
}

func (p *Provider) build(ctx context.Context) (*Snapshot, error) {
	timer := prometheus.NewTimer(p.metrics.CatalogBuildLatency)
	defer timer.ObserveDuration()

	lists := make(map[model.CatalogKind][]model.CatalogEntry, len(model.CatalogKinds))
	for _, kind := range model.CatalogKinds {
		entries, err := p.repo.List(ctx, kind)
		if err != nil {
			return nil, fmt.Errorf("failed to load %s catalog: %w", kind, err)
		}
		lists[kind] = entries
	}
	return NewSnapshot(lists), nil
}

// Invalidate drops the cached snapshot; the next call rebuilds it.
func (p *Provider) Invalidate() {
	p.metrics.CatalogInvalidations.Inc()
	p.cache.Delete(snapshotKey)
}

// ListenForInvalidation calls Invalidate for every message on channel until
// ctx is done.
func (p *Provider) ListenForInvalidation(ctx context.Context, broker messaging.Broker, channel string) error {
	return messaging.Listen(ctx, broker, channel, func(payload []byte) error {
		log.Info().Str("channel", channel).Bytes("payload", payload).Msg("reference catalogs invalidated")
		p.Invalidate()
		return nil
	})
}
