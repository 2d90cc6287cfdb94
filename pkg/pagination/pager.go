package pagination

import (
	"context"
	"encoding/json"
	"net/url"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/caselawlab/courtcrawl/pkg/ratelimit"
)

// Getter issues a single authenticated GET and decodes the JSON body.
// Implemented by *client.Client.
type Getter interface {
	GetJSON(ctx context.Context, rawURL string, out any) error
}

// page is the CourtListener list envelope.
type page struct {
	Next    string            `json:"next"`
	Results []json.RawMessage `json:"results"`
}

// Pager iterates a paginated CourtListener listing one page at a time,
// following the "next" cursor embedded in each response. Usage follows the
// bufio.Scanner pattern:
//
//	pager := pagination.New(c, pacer, baseURL+"/dockets/", params, cap)
//	for pager.Next(ctx) {
//		for _, item := range pager.Items() { ... }
//	}
//	if err := pager.Err(); err != nil { ... }
//
// A transport failure ends the iteration early; items already yielded
// remain valid and the failure is reported by Err.
type Pager struct {
	getter Getter
	pacer  *ratelimit.Pacer
	logger zerolog.Logger

	nextURL string
	params  url.Values
	itemCap int

	pagesFetched int
	itemsYielded int
	items        []json.RawMessage
	err          error
}

// New creates a pager starting at initialURL with the given query params.
// itemCap bounds the total items yielded; it is checked before each page
// fetch, so the final page may overshoot the cap (Collect truncates
// exactly). An itemCap of zero or less means unbounded. pacer may be nil.
func New(getter Getter, pacer *ratelimit.Pacer, initialURL string, params url.Values, itemCap int) *Pager {
	return &Pager{
		getter:  getter,
		pacer:   pacer,
		logger:  log.With().Str("component", "pager").Logger(),
		nextURL: initialURL,
		params:  params,
		itemCap: itemCap,
	}
}

// Next fetches the next page. It returns false when the listing is
// exhausted, the item cap has been reached, or a fetch failed (see Err).
func (p *Pager) Next(ctx context.Context) bool {
	if p.nextURL == "" || p.err != nil {
		return false
	}
	if p.itemCap > 0 && p.itemsYielded >= p.itemCap {
		return false
	}
	if err := ctx.Err(); err != nil {
		p.err = err
		return false
	}

	// Pace every page request after the first.
	if p.pagesFetched > 0 && p.pacer != nil {
		if err := p.pacer.Wait(ctx); err != nil {
			p.err = err
			return false
		}
	}

	reqURL := p.nextURL
	if p.pagesFetched == 0 && len(p.params) > 0 {
		reqURL = appendQuery(reqURL, p.params)
	}

	var pg page
	if err := p.getter.GetJSON(ctx, reqURL, &pg); err != nil {
		p.logger.Warn().
			Err(err).
			Str("url", reqURL).
			Int("items_yielded", p.itemsYielded).
			Msg("Page fetch failed, ending listing early")
		p.err = err
		return false
	}

	p.pagesFetched++
	p.items = pg.Results
	p.itemsYielded += len(pg.Results)

	// The "next" cursor URL is self-contained; the initial query params
	// are dropped after the first page.
	p.nextURL = pg.Next
	p.params = nil

	p.logger.Debug().
		Int("page", p.pagesFetched).
		Int("page_items", len(pg.Results)).
		Int("items_yielded", p.itemsYielded).
		Bool("has_next", p.nextURL != "").
		Msg("Fetched page")

	return true
}

// Items returns the items of the page fetched by the last Next call.
func (p *Pager) Items() []json.RawMessage {
	return p.items
}

// Err returns the error that ended the iteration, or nil after a clean
// exhaustion or cap stop.
func (p *Pager) Err() error {
	return p.err
}

// Collect drains the pager and returns at most itemCap items (all items
// when unbounded). On a transport failure the items fetched so far are
// returned alongside the error; the prefix remains valid.
func (p *Pager) Collect(ctx context.Context) ([]json.RawMessage, error) {
	var collected []json.RawMessage
	for p.Next(ctx) {
		collected = append(collected, p.items...)
	}
	if p.itemCap > 0 && len(collected) > p.itemCap {
		collected = collected[:p.itemCap]
	}
	return collected, p.err
}

// appendQuery attaches params to rawURL, preserving any existing query.
func appendQuery(rawURL string, params url.Values) string {
	encoded := params.Encode()
	if encoded == "" {
		return rawURL
	}
	if strings.Contains(rawURL, "?") {
		return rawURL + "&" + encoded
	}
	return rawURL + "?" + encoded
}
