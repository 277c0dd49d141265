// Package leetx is a client for 1337x-style torrent index sites. It builds the
// listing URLs for search, trending, popular and top pages and scrapes the
// returned HTML with goquery.
package leetx

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// Item is one row of a listing page.
type Item struct {
	Name     string
	Link     string // absolute detail-page URL
	Size     string
	Seeders  int
	Leechers int
}

// Listing is a parsed listing page. Items is nil when the page did not contain
// a results table; an empty, non-nil slice means the table was empty.
type Listing struct {
	Items []Item
}

// Detail is a parsed torrent detail page. Seeders and Leechers are nil when
// the page did not list them.
type Detail struct {
	Name     string
	Size     string
	Seeders  *int
	Leechers *int
	Magnet   string
}

// SearchOptions narrows a search. Empty fields are omitted from the URL.
type SearchOptions struct {
	Category string
	SortBy   string
	Order    string // "asc" or "desc"; only used with SortBy
}

// Client scrapes a single mirror.
type Client struct {
	baseURL string
	client  *http.Client
}

// New creates a client for mirror, which may be a bare host ("1337x.to") or a
// URL with a scheme ("http://127.0.0.1:8080").
func New(mirror string, client *http.Client) (*Client, error) {
	base, err := BaseURL(mirror)
	if err != nil {
		return nil, err
	}
	if client == nil {
		client = http.DefaultClient
	}
	return &Client{baseURL: base, client: client}, nil
}

// BaseURL normalizes a mirror into scheme://host.
func BaseURL(mirror string) (string, error) {
	mirror = strings.TrimSpace(mirror)
	if mirror == "" {
		return "", fmt.Errorf("empty mirror")
	}
	if !strings.Contains(mirror, "://") {
		mirror = "https://" + mirror
	}

	parsed, err := url.Parse(mirror)
	if err != nil {
		return "", fmt.Errorf("invalid mirror %q: %w", mirror, err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return "", fmt.Errorf("mirror %q must be http or https", mirror)
	}
	if parsed.Host == "" {
		return "", fmt.Errorf("mirror %q has no host", mirror)
	}

	return parsed.Scheme + "://" + parsed.Host, nil
}

// BaseURL returns the mirror's scheme://host.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// Search fetches the first page of search results.
func (c *Client) Search(ctx context.Context, query string, opts SearchOptions) (*Listing, error) {
	doc, err := c.get(ctx, c.searchURL(query, opts))
	if err != nil {
		return nil, err
	}
	return parseListing(doc, c.baseURL), nil
}

// Trending fetches the daily (or weekly) trending list, optionally for a category.
func (c *Client) Trending(ctx context.Context, category string, week bool) (*Listing, error) {
	doc, err := c.get(ctx, c.trendingURL(category, week))
	if err != nil {
		return nil, err
	}
	return parseListing(doc, c.baseURL), nil
}

// Popular fetches the popular list for a category.
func (c *Client) Popular(ctx context.Context, category string, week bool) (*Listing, error) {
	if category == "" {
		return nil, fmt.Errorf("popular requires a category")
	}
	doc, err := c.get(ctx, c.popularURL(category, week))
	if err != nil {
		return nil, err
	}
	return parseListing(doc, c.baseURL), nil
}

// Top fetches the top-100 list, optionally for a category.
func (c *Client) Top(ctx context.Context, category string) (*Listing, error) {
	doc, err := c.get(ctx, c.topURL(category))
	if err != nil {
		return nil, err
	}
	return parseListing(doc, c.baseURL), nil
}

// Info fetches and parses a torrent detail page. It returns a nil Detail when
// the page does not look like a detail page.
func (c *Client) Info(ctx context.Context, link string) (*Detail, error) {
	doc, err := c.get(ctx, link)
	if err != nil {
		return nil, err
	}
	return parseDetail(doc), nil
}

func (c *Client) searchURL(query string, opts SearchOptions) string {
	words := strings.Fields(query)
	for i, w := range words {
		words[i] = url.PathEscape(w)
	}

	var b strings.Builder
	b.WriteString(c.baseURL)
	b.WriteString("/")
	if opts.SortBy != "" {
		b.WriteString("sort-")
	}
	if opts.Category != "" {
		b.WriteString("category-")
	}
	b.WriteString("search/")
	b.WriteString(strings.Join(words, "+"))
	b.WriteString("/")
	if opts.Category != "" {
		b.WriteString(searchCategory(opts.Category) + "/")
	}
	if opts.SortBy != "" {
		order := opts.Order
		if order == "" {
			order = "desc"
		}
		b.WriteString(opts.SortBy + "/" + order + "/")
	}
	b.WriteString("1/")

	return b.String()
}

func (c *Client) trendingURL(category string, week bool) string {
	u := c.baseURL + "/trending"
	switch {
	case category != "" && week:
		return u + "/w/" + category + "/"
	case category != "":
		return u + "/d/" + category + "/"
	case week:
		return u + "-week"
	default:
		return u
	}
}

func (c *Client) popularURL(category string, week bool) string {
	u := c.baseURL + "/popular-" + category
	if week {
		u += "-week"
	}
	return u
}

func (c *Client) topURL(category string) string {
	if category == "" {
		return c.baseURL + "/top-100"
	}
	return c.baseURL + "/top-100-" + topCategory(category)
}

// searchCategory renders a category the way search URLs expect it.
func searchCategory(category string) string {
	lower := strings.ToLower(category)
	if lower == "tv" || lower == "xxx" {
		return strings.ToUpper(lower)
	}
	return strings.ToUpper(lower[:1]) + lower[1:]
}

// topCategory renders a category the way top-100 URLs expect it.
func topCategory(category string) string {
	switch category {
	case "tv":
		return "television"
	case "apps":
		return "applications"
	case "others":
		return "other"
	default:
		return category
	}
}

func (c *Client) get(ctx context.Context, rawURL string) (*goquery.Document, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("GET %s: HTTP %d", rawURL, resp.StatusCode)
	}

	return goquery.NewDocumentFromReader(resp.Body)
}
