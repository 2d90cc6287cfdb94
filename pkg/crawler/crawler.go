// Package crawler implements the three-level CourtListener traversal:
// dockets are listed page by page, each docket's clusters are resolved,
// each cluster's opinions are resolved, and every opinion that survives
// the content gate becomes one flattened CrawlRecord.
//
// Failures below the traversal never abort the run. A cluster or opinion
// that cannot be fetched is logged and its subtree is dropped; traversal
// continues with the siblings. Only configuration errors are fatal, and
// those fail in New before any request is issued.
package crawler

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"golang.org/x/sync/errgroup"

	"github.com/caselawlab/courtcrawl/pkg/cache"
	"github.com/caselawlab/courtcrawl/pkg/courtlistener"
	"github.com/caselawlab/courtcrawl/pkg/pagination"
	"github.com/caselawlab/courtcrawl/pkg/ratelimit"
	"github.com/caselawlab/courtcrawl/pkg/record"
	"github.com/caselawlab/courtcrawl/pkg/resolver"
)

// Prometheus metrics for traversal progress.
var (
	recordsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawl_records_total",
		Help: "Total CrawlRecords assembled",
	})

	docketsProcessedTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawl_dockets_processed_total",
		Help: "Total dockets processed",
	})

	nodesSkippedTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "crawl_nodes_skipped_total",
		Help: "Total hierarchy nodes skipped after a fetch failure, by level",
	}, []string{"level"})

	emptyOpinionsTotal = promauto.NewCounter(prometheus.CounterOpts{
		Name: "crawl_empty_opinions_total",
		Help: "Total opinions dropped by the empty-text content gate",
	})
)

// Common errors returned by the crawler.
var (
	// ErrInvalidBaseURL is returned for a malformed API base URL.
	ErrInvalidBaseURL = errors.New("invalid api base url")

	// ErrNoGetter is returned when no transport is configured.
	ErrNoGetter = errors.New("transport getter is required")
)

// Getter issues a single authenticated GET and decodes the JSON body.
// Implemented by *client.Client.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, out any) error
}

// Config holds the crawl configuration.
type Config struct {
	// Getter is the shared authenticated transport. Required.
	Getter Getter

	// BaseURL is the API base, e.g. courtlistener.DefaultBaseURL.
	// Defaulted when empty; malformed values fail New.
	BaseURL string

	// Court restricts the docket listing to one court (e.g. "scotus").
	// Empty means no filter.
	Court string

	// DocketCap bounds how many dockets are traversed. Zero or less
	// means unbounded.
	DocketCap int

	// DocketPageDelay is the minimum delay between docket listing page
	// requests. Zero disables pacing for that endpoint class.
	DocketPageDelay time.Duration

	// ResourceDelay is the minimum delay between cluster/opinion
	// fetches. Zero disables pacing for that endpoint class.
	ResourceDelay time.Duration

	// Concurrency bounds parallel opinion resolution within a cluster.
	// Values below 2 keep the baseline strictly sequential traversal.
	Concurrency int

	// Cache optionally serves cluster/opinion bodies from Redis,
	// skipping the network and the pacing delay on a hit.
	Cache *cache.Manager

	// OnRecord, when set, receives every assembled record as soon as it
	// exists, so output accumulates incrementally. With Concurrency > 1
	// records may arrive out of order and callbacks may run
	// concurrently.
	OnRecord func(record.CrawlRecord)
}

// Crawler walks the docket → cluster → opinion hierarchy.
type Crawler struct {
	cfg           Config
	base          string
	docketPacer   *ratelimit.Pacer
	resourcePacer *ratelimit.Pacer
	resolver      *resolver.Resolver
	logger        zerolog.Logger

	mu    sync.Mutex
	stats Stats
}

// New creates a crawler. Configuration errors (no transport, malformed
// base URL) are fatal here, before any request is issued.
func New(cfg Config) (*Crawler, error) {
	if cfg.Getter == nil {
		return nil, ErrNoGetter
	}

	if cfg.BaseURL == "" {
		cfg.BaseURL = courtlistener.DefaultBaseURL
	}
	u, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidBaseURL, err)
	}
	if (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return nil, fmt.Errorf("%w: %q", ErrInvalidBaseURL, cfg.BaseURL)
	}

	if cfg.Concurrency < 1 {
		cfg.Concurrency = 1
	}

	base := strings.TrimRight(cfg.BaseURL, "/")
	docketPacer := ratelimit.NewPacer("dockets", cfg.DocketPageDelay)
	resourcePacer := ratelimit.NewPacer("resources", cfg.ResourceDelay)

	return &Crawler{
		cfg:           cfg,
		base:          base,
		docketPacer:   docketPacer,
		resourcePacer: resourcePacer,
		resolver:      resolver.New(cfg.Getter, resourcePacer, cfg.Cache, base),
		logger:        log.With().Str("component", "crawler").Logger(),
	}, nil
}

// Run executes the full traversal and returns the assembled records in
// traversal order. The run is abortable between any two fetches: on
// context cancellation the records accumulated so far are returned as a
// valid prefix alongside ctx's error.
func (c *Crawler) Run(ctx context.Context) ([]record.CrawlRecord, error) {
	c.logger.Info().
		Str("court", c.cfg.Court).
		Int("docket_cap", c.cfg.DocketCap).
		Dur("docket_page_delay", c.cfg.DocketPageDelay).
		Dur("resource_delay", c.cfg.ResourceDelay).
		Msg("Starting crawl")

	params := url.Values{}
	if c.cfg.Court != "" {
		params.Set("court", c.cfg.Court)
	}

	// The cap counts dockets actually traversed, so undecodable listing
	// items must not consume it; the pager runs unbounded and the loop
	// below stops fetching once the cap is reached.
	pager := pagination.New(c.cfg.Getter, c.docketPacer, c.base+"/dockets/", params, 0)

	var records []record.CrawlRecord
	processed := 0

	capReached := func() bool {
		return c.cfg.DocketCap > 0 && processed >= c.cfg.DocketCap
	}

pages:
	for !capReached() && pager.Next(ctx) {
		for _, raw := range pager.Items() {
			if capReached() {
				break pages
			}

			var docket courtlistener.Docket
			if err := json.Unmarshal(raw, &docket); err != nil {
				c.logger.Warn().Err(err).Msg("Skipping undecodable docket")
				continue
			}
			processed++

			c.logger.Info().
				Int("docket_num", processed).
				Int64("docket_id", docket.ID).
				Str("case_name", docket.CaseName).
				Msg("Processing docket")

			recs, err := c.crawlDocket(ctx, &docket)
			records = append(records, recs...)

			c.bump(func(s *Stats) { s.DocketsProcessed++ })
			docketsProcessedTotal.Inc()

			if err != nil {
				c.logSummary()
				return records, err
			}
		}
	}

	if err := pager.Err(); err != nil {
		if isCancellation(err) {
			c.logSummary()
			return records, err
		}
		// Listing ended early; records already assembled remain valid.
		c.logger.Warn().Err(err).Msg("Docket listing ended early")
	}

	c.logSummary()
	return records, nil
}

// crawlDocket resolves each cluster the docket references, in order. A
// cluster that fails to resolve is counted as a gap; it never aborts the
// docket. Only cancellation propagates.
func (c *Crawler) crawlDocket(ctx context.Context, docket *courtlistener.Docket) ([]record.CrawlRecord, error) {
	if len(docket.Clusters) == 0 {
		c.logger.Debug().Int64("docket_id", docket.ID).Msg("No clusters on docket")
		return nil, nil
	}

	var records []record.CrawlRecord
	for _, clusterRef := range docket.Clusters {
		if err := ctx.Err(); err != nil {
			return records, err
		}

		clusterID := courtlistener.RefID(clusterRef)
		c.bump(func(s *Stats) { s.ClustersAttempted++ })

		cluster, err := c.resolver.Cluster(ctx, clusterID)
		if err != nil {
			if isCancellation(err) {
				return records, err
			}
			c.bump(func(s *Stats) { s.ClustersSkipped++ })
			nodesSkippedTotal.WithLabelValues("cluster").Inc()
			c.logger.Warn().
				Int64("docket_id", docket.ID).
				Str("cluster_id", clusterID).
				Err(err).
				Msg("Skipping cluster subtree")
			continue
		}

		recs, err := c.crawlCluster(ctx, docket, cluster)
		records = append(records, recs...)
		if err != nil {
			return records, err
		}
	}
	return records, nil
}

// crawlCluster resolves each opinion the cluster references, in order,
// and assembles a record for every opinion that passes the content gate.
func (c *Crawler) crawlCluster(ctx context.Context, docket *courtlistener.Docket, cluster *courtlistener.Cluster) ([]record.CrawlRecord, error) {
	refs := cluster.SubOpinions
	if len(refs) == 0 {
		return nil, nil
	}

	if c.cfg.Concurrency > 1 && len(refs) > 1 {
		return c.crawlClusterParallel(ctx, docket, cluster)
	}

	var records []record.CrawlRecord
	for _, opinionRef := range refs {
		if err := ctx.Err(); err != nil {
			return records, err
		}
		rec, err := c.processOpinion(ctx, docket, cluster, courtlistener.RefID(opinionRef))
		if err != nil {
			return records, err
		}
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, nil
}

// crawlClusterParallel resolves a cluster's opinions with bounded
// parallelism. Results are collected positionally, so record order still
// follows the cluster's reference order even though fetches interleave.
func (c *Crawler) crawlClusterParallel(ctx context.Context, docket *courtlistener.Docket, cluster *courtlistener.Cluster) ([]record.CrawlRecord, error) {
	results := make([]*record.CrawlRecord, len(cluster.SubOpinions))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(c.cfg.Concurrency)

	for i, opinionRef := range cluster.SubOpinions {
		g.Go(func() error {
			rec, err := c.processOpinion(gctx, docket, cluster, courtlistener.RefID(opinionRef))
			if err != nil {
				return err
			}
			results[i] = rec
			return nil
		})
	}

	err := g.Wait()

	var records []record.CrawlRecord
	for _, rec := range results {
		if rec != nil {
			records = append(records, *rec)
		}
	}
	return records, err
}

// processOpinion resolves one opinion and assembles its record. A fetch
// failure or an empty text body yields (nil, nil): the node is skipped
// and traversal continues. Only cancellation returns an error.
func (c *Crawler) processOpinion(ctx context.Context, docket *courtlistener.Docket, cluster *courtlistener.Cluster, opinionID string) (*record.CrawlRecord, error) {
	c.bump(func(s *Stats) { s.OpinionsAttempted++ })

	opinion, err := c.resolver.Opinion(ctx, opinionID)
	if err != nil {
		if isCancellation(err) {
			return nil, err
		}
		c.bump(func(s *Stats) { s.OpinionsSkipped++ })
		nodesSkippedTotal.WithLabelValues("opinion").Inc()
		c.logger.Warn().
			Int64("cluster_id", cluster.ID).
			Str("opinion_id", opinionID).
			Err(err).
			Msg("Skipping opinion")
		return nil, nil
	}

	// Content-quality gate, not an error: an opinion without usable text
	// produces no record.
	if strings.TrimSpace(opinion.PlainText) == "" {
		c.bump(func(s *Stats) { s.OpinionsEmpty++ })
		emptyOpinionsTotal.Inc()
		c.logger.Debug().
			Int64("opinion_id", opinion.ID).
			Msg("Skipping opinion with empty text")
		return nil, nil
	}

	rec := record.Assemble(docket, cluster, opinion)
	recordsTotal.Inc()
	c.bump(func(s *Stats) { s.Records++ })

	// The callback runs outside the stats lock so it may call Stats()
	// itself. With Concurrency > 1 it can run concurrently.
	if c.cfg.OnRecord != nil {
		c.cfg.OnRecord(rec)
	}

	c.logger.Debug().
		Int64("opinion_id", opinion.ID).
		Str("opinion_type", opinion.Type).
		Msg("Assembled record")

	return &rec, nil
}

// bump applies a mutation to the run stats under the crawler's lock.
func (c *Crawler) bump(f func(*Stats)) {
	c.mu.Lock()
	f(&c.stats)
	c.mu.Unlock()
}

// isCancellation reports whether err stems from context cancellation or
// deadline expiry, unwrapping through transport error wrappers.
func isCancellation(err error) bool {
	return errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)
}
