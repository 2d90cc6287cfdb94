// Package resolver fetches individual CourtListener resources (clusters
// and opinions) by identifier.
//
// Resolution is stateless aside from the shared transport, pacer, and
// optional cache, all of which are safe for concurrent use. A fetch
// failure is returned as an explicit error value; callers treat it as
// "skip this subtree", never as fatal to the whole crawl.
package resolver

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/caselawlab/courtcrawl/pkg/cache"
	"github.com/caselawlab/courtcrawl/pkg/courtlistener"
	"github.com/caselawlab/courtcrawl/pkg/ratelimit"
)

// Kind names a resolvable resource collection.
type Kind string

const (
	// KindCluster resolves against {base}/clusters/{id}/.
	KindCluster Kind = "clusters"

	// KindOpinion resolves against {base}/opinions/{id}/.
	KindOpinion Kind = "opinions"
)

// Getter issues a single authenticated GET and decodes the JSON body.
// Implemented by *client.Client.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, out any) error
}

// Resolver resolves resource references into full resource objects.
type Resolver struct {
	getter Getter
	pacer  *ratelimit.Pacer
	cache  *cache.Manager
	base   string
	logger zerolog.Logger
}

// New creates a resolver rooted at baseURL. pacer and cacheManager may be
// nil to disable pacing and caching respectively.
func New(getter Getter, pacer *ratelimit.Pacer, cacheManager *cache.Manager, baseURL string) *Resolver {
	return &Resolver{
		getter: getter,
		pacer:  pacer,
		cache:  cacheManager,
		base:   strings.TrimRight(baseURL, "/"),
		logger: log.With().Str("component", "resolver").Logger(),
	}
}

// Cluster resolves a cluster by ID.
func (r *Resolver) Cluster(ctx context.Context, id string) (*courtlistener.Cluster, error) {
	var cluster courtlistener.Cluster
	if err := r.resolve(ctx, KindCluster, id, &cluster); err != nil {
		return nil, err
	}
	return &cluster, nil
}

// Opinion resolves an opinion by ID.
func (r *Resolver) Opinion(ctx context.Context, id string) (*courtlistener.Opinion, error) {
	var opinion courtlistener.Opinion
	if err := r.resolve(ctx, KindOpinion, id, &opinion); err != nil {
		return nil, err
	}
	return &opinion, nil
}

// resolve fetches one resource, serving it from the cache when possible.
// Cache hits skip both the network round trip and the pacing delay.
func (r *Resolver) resolve(ctx context.Context, kind Kind, id string, out any) error {
	key := cache.Key{Kind: string(kind), ID: id}

	if r.cache != nil {
		body, err := r.cache.Get(ctx, key)
		if err == nil {
			if err := json.Unmarshal(body, out); err != nil {
				return fmt.Errorf("decode cached %s %s: %w", kind, id, err)
			}
			r.logger.Debug().
				Str("kind", string(kind)).
				Str("id", id).
				Msg("Resource served from cache")
			return nil
		}
		if err != cache.ErrCacheMiss {
			r.logger.Warn().Err(err).Str("kind", string(kind)).Str("id", id).Msg("Cache get error")
		}
	}

	if r.pacer != nil {
		if err := r.pacer.Wait(ctx); err != nil {
			return err
		}
	}

	resourceURL := fmt.Sprintf("%s/%s/%s/", r.base, kind, id)

	var raw json.RawMessage
	if err := r.getter.GetJSON(ctx, resourceURL, &raw); err != nil {
		r.logger.Warn().
			Err(err).
			Str("kind", string(kind)).
			Str("id", id).
			Msg("Resource fetch failed")
		return err
	}

	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode %s %s: %w", kind, id, err)
	}

	if r.cache != nil {
		if err := r.cache.Set(ctx, key, raw); err != nil {
			r.logger.Warn().Err(err).Str("kind", string(kind)).Str("id", id).Msg("Cache set error")
		}
	}

	return nil
}
