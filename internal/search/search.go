// Package search provides the torrent search client. It picks the first
// reachable index mirror at startup and normalizes listing and detail pages
// into Results.
package search

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/litescript/torrent-cli/internal/apperr"
	"github.com/litescript/torrent-cli/internal/leetx"
	"github.com/litescript/torrent-cli/internal/logctx"
)

// Result represents a normalized search result
type Result struct {
	Name     string
	Size     string
	Seeders  int
	Leechers int
	Magnet   string // empty until resolved from the detail page
	Link     string // detail-page URL, always set
}

// Health returns a health score 0-100 based on seeders/leechers ratio
func (r Result) Health() int {
	if r.Seeders == 0 {
		return 0
	}
	if r.Leechers == 0 {
		return 100
	}

	ratio := float64(r.Seeders) / float64(r.Seeders+r.Leechers) * 100
	if ratio > 100 {
		ratio = 100
	}
	return int(ratio)
}

// Provider is the remote index a Client talks to. *leetx.Client implements it.
type Provider interface {
	BaseURL() string
	Search(ctx context.Context, query string, opts leetx.SearchOptions) (*leetx.Listing, error)
	Trending(ctx context.Context, category string, week bool) (*leetx.Listing, error)
	Popular(ctx context.Context, category string, week bool) (*leetx.Listing, error)
	Top(ctx context.Context, category string) (*leetx.Listing, error)
	Info(ctx context.Context, link string) (*leetx.Detail, error)
}

// Dialer builds a Provider for a mirror.
type Dialer func(mirror string) (Provider, error)

// ProgressFunc is called after each listing item has been resolved or skipped.
type ProgressFunc func(done, total int)

// Option configures a Client.
type Option func(*Client)

// WithProgress installs a progress observer for listing normalization.
func WithProgress(fn ProgressFunc) Option {
	return func(c *Client) {
		c.progress = fn
	}
}

// Client is the search client. It is bound to one mirror for its lifetime.
type Client struct {
	provider Provider
	mirror   string
	progress ProgressFunc
}

// New probes mirrors in order and adopts the first one whose trending page
// parses as a listing. Mirrors after the adopted one are never contacted.
func New(ctx context.Context, mirrors []string, dial Dialer, opts ...Option) (*Client, error) {
	logger := logctx.LoggerFromContext(ctx)

	var errs []error
	for _, mirror := range mirrors {
		logger.Debug("trying mirror", "mirror", mirror)

		p, err := dial(mirror)
		if err != nil {
			logger.Warn("failed to initialize mirror", "mirror", mirror, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", mirror, err))
			continue
		}

		probe, err := p.Trending(ctx, "", false)
		if err == nil && !wellFormed(probe) {
			err = errors.New("malformed trending response")
		}
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			logger.Warn("failed to initialize mirror", "mirror", mirror, "err", err)
			errs = append(errs, fmt.Errorf("%s: %w", mirror, err))
			continue
		}

		logger.Debug("connected to mirror", "mirror", mirror, "base_url", p.BaseURL())

		c := &Client{provider: p, mirror: mirror}
		for _, opt := range opts {
			opt(c)
		}
		return c, nil
	}

	return nil, &apperr.ConnectionError{Mirrors: mirrors, Err: errors.Join(errs...)}
}

// Mirror returns the adopted mirror.
func (c *Client) Mirror() string {
	return c.mirror
}

// BaseURL returns the adopted mirror's base URL.
func (c *Client) BaseURL() string {
	return c.provider.BaseURL()
}

// Search runs a search and resolves details for at most limit results.
// A limit <= 0 resolves every result on the page.
func (c *Client) Search(ctx context.Context, query string, limit int, opts leetx.SearchOptions) ([]Result, error) {
	logctx.LoggerFromContext(ctx).Debug("searching", "query", query, "limit", limit,
		"category", opts.Category, "sort_by", opts.SortBy, "order", opts.Order)

	listing, err := c.provider.Search(ctx, query, opts)
	if err != nil {
		return nil, wrap("search torrents", err)
	}
	return c.normalize(ctx, "search", listing, limit)
}

// Trending returns every trending result; callers truncate.
func (c *Client) Trending(ctx context.Context, category string, week bool) ([]Result, error) {
	listing, err := c.provider.Trending(ctx, category, week)
	if err != nil {
		return nil, wrap("get trending torrents", err)
	}
	return c.normalize(ctx, "trending", listing, 0)
}

// Popular returns every popular result for category; callers truncate.
func (c *Client) Popular(ctx context.Context, category string, week bool) ([]Result, error) {
	listing, err := c.provider.Popular(ctx, category, week)
	if err != nil {
		return nil, wrap("get popular torrents", err)
	}
	return c.normalize(ctx, "popular", listing, 0)
}

// Top returns every top-100 result; callers truncate.
func (c *Client) Top(ctx context.Context, category string) ([]Result, error) {
	listing, err := c.provider.Top(ctx, category)
	if err != nil {
		return nil, wrap("get top torrents", err)
	}
	return c.normalize(ctx, "top", listing, 0)
}

// Info resolves a torrent's detail page. link is either a URL or a bare
// torrent id, which is expanded against the adopted mirror.
func (c *Client) Info(ctx context.Context, link string) (*leetx.Detail, error) {
	if !strings.HasPrefix(link, "http") {
		link = c.provider.BaseURL() + "/torrent/" + strings.Trim(link, "/") + "/"
	}

	logctx.LoggerFromContext(ctx).Debug("getting torrent info", "link", link)

	d, err := c.provider.Info(ctx, link)
	if err != nil {
		return nil, wrap("get torrent info", err)
	}
	if d == nil {
		return nil, wrap("get torrent info", errors.New("invalid torrent info response"))
	}
	return d, nil
}

// Magnet resolves the magnet link for a torrent.
func (c *Client) Magnet(ctx context.Context, link string) (string, error) {
	d, err := c.Info(ctx, link)
	if err != nil {
		return "", wrap("get magnet link", err)
	}
	if d.Magnet == "" {
		return "", wrap("get magnet link", errors.New("no magnet link found in torrent info"))
	}
	return d.Magnet, nil
}

// normalize resolves details for each listing item. Items that fail are
// logged and skipped so one bad row never fails the whole listing; only
// cancellation of ctx aborts it.
func (c *Client) normalize(ctx context.Context, op string, listing *leetx.Listing, limit int) ([]Result, error) {
	logger := logctx.LoggerFromContext(ctx)

	if !wellFormed(listing) {
		logger.Warn("no valid items found in response", "op", op)
		return []Result{}, nil
	}

	items := listing.Items
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}

	logger.Debug("processing results", "op", op, "count", len(items))

	results := make([]Result, 0, len(items))
	for i, it := range items {
		r, err := c.resolve(ctx, it)
		if err != nil {
			logger.Error("failed to process result", "op", op, "index", i, "name", it.Name, "err", err)
		} else {
			results = append(results, r)
		}

		if c.progress != nil {
			c.progress(i+1, len(items))
		}

		if err := ctx.Err(); err != nil {
			return nil, err
		}
	}

	return results, nil
}

func (c *Client) resolve(ctx context.Context, it leetx.Item) (Result, error) {
	if it.Link == "" {
		return Result{}, errors.New("missing link in result")
	}

	d, err := c.Info(ctx, it.Link)
	if err != nil {
		return Result{}, err
	}

	r := Result{
		Name:     firstNonEmpty(d.Name, it.Name),
		Size:     firstNonEmpty(d.Size, it.Size),
		Seeders:  it.Seeders,
		Leechers: it.Leechers,
		Magnet:   d.Magnet,
		Link:     it.Link,
	}
	if d.Seeders != nil {
		r.Seeders = *d.Seeders
	}
	if d.Leechers != nil {
		r.Leechers = *d.Leechers
	}

	return r, nil
}

func wellFormed(l *leetx.Listing) bool {
	return l != nil && l.Items != nil
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}

// wrap translates a remote failure into an APIError for op. An existing
// APIError is re-labelled rather than nested.
func wrap(op string, err error) error {
	var apiErr *apperr.APIError
	if errors.As(err, &apiErr) {
		return &apperr.APIError{Op: op, Err: apiErr.Err}
	}
	return &apperr.APIError{Op: op, Err: err}
}
