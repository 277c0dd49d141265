package search

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/litescript/torrent-cli/internal/apperr"
	"github.com/litescript/torrent-cli/internal/leetx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeProvider is an in-memory index. Details are keyed by link; a link
// missing from details fails.
type fakeProvider struct {
	base     string
	listing  *leetx.Listing
	listErr  error
	probe    *leetx.Listing
	probeErr error
	details  map[string]*leetx.Detail

	infoCalls   []string
	searchQuery string
	searchOpts  leetx.SearchOptions
}

func (f *fakeProvider) BaseURL() string { return f.base }

func (f *fakeProvider) Search(_ context.Context, query string, opts leetx.SearchOptions) (*leetx.Listing, error) {
	f.searchQuery, f.searchOpts = query, opts
	return f.listing, f.listErr
}

func (f *fakeProvider) Trending(_ context.Context, category string, week bool) (*leetx.Listing, error) {
	if category == "" && !week && (f.probe != nil || f.probeErr != nil) {
		return f.probe, f.probeErr
	}
	return f.listing, f.listErr
}

func (f *fakeProvider) Popular(context.Context, string, bool) (*leetx.Listing, error) {
	return f.listing, f.listErr
}

func (f *fakeProvider) Top(context.Context, string) (*leetx.Listing, error) {
	return f.listing, f.listErr
}

func (f *fakeProvider) Info(_ context.Context, link string) (*leetx.Detail, error) {
	f.infoCalls = append(f.infoCalls, link)
	d, ok := f.details[link]
	if !ok {
		return nil, fmt.Errorf("GET %s: HTTP 404", link)
	}
	return d, nil
}

func intPtr(n int) *int { return &n }

// newFake returns a provider with n listing items that all resolve.
func newFake(n int) *fakeProvider {
	f := &fakeProvider{
		base:    "https://1337x.to",
		listing: &leetx.Listing{Items: []leetx.Item{}},
		details: map[string]*leetx.Detail{},
	}
	for i := 1; i <= n; i++ {
		link := fmt.Sprintf("https://1337x.to/torrent/%d/item-%d/", i, i)
		f.listing.Items = append(f.listing.Items, leetx.Item{
			Name: fmt.Sprintf("listing %d", i), Size: "1 GB", Seeders: i, Leechers: 1, Link: link,
		})
		f.details[link] = &leetx.Detail{
			Name:    fmt.Sprintf("detail %d", i),
			Magnet:  fmt.Sprintf("magnet:?xt=urn:btih:%040d", i),
			Seeders: intPtr(i * 10),
		}
	}
	return f
}

func newClient(t *testing.T, p Provider, opts ...Option) *Client {
	t.Helper()
	c, err := New(context.Background(), []string{"1337x.to"}, func(string) (Provider, error) { return p, nil }, opts...)
	require.NoError(t, err)
	return c
}

func TestNew_FailoverAdoptsThirdMirror(t *testing.T) {
	mirrors := []string{"m1", "m2", "m3", "m4"}
	good := newFake(1)
	good.probe = &leetx.Listing{Items: []leetx.Item{}}

	var dialed []string
	dial := func(mirror string) (Provider, error) {
		dialed = append(dialed, mirror)
		switch mirror {
		case "m1":
			return &fakeProvider{probeErr: errors.New("HTTP 503")}, nil
		case "m2":
			return &fakeProvider{probe: &leetx.Listing{}}, nil // no items
		case "m3":
			return good, nil
		default:
			t.Fatalf("mirror %s should never be dialed", mirror)
			return nil, nil
		}
	}

	c, err := New(context.Background(), mirrors, dial)
	require.NoError(t, err)
	assert.Equal(t, "m3", c.Mirror())
	assert.Equal(t, []string{"m1", "m2", "m3"}, dialed)
}

func TestNew_AllMirrorsFail(t *testing.T) {
	dial := func(mirror string) (Provider, error) {
		if mirror == "bad" {
			return nil, errors.New("invalid mirror")
		}
		return &fakeProvider{probeErr: errors.New("connection refused")}, nil
	}

	_, err := New(context.Background(), []string{"bad", "down"}, dial)
	require.Error(t, err)

	var connErr *apperr.ConnectionError
	require.True(t, errors.As(err, &connErr))
	assert.Equal(t, []string{"bad", "down"}, connErr.Mirrors)
	assert.Contains(t, err.Error(), "no reachable endpoint")
	assert.Contains(t, err.Error(), "connection refused")
}

func TestNew_NoMirrors(t *testing.T) {
	_, err := New(context.Background(), nil, nil)
	assert.Equal(t, "Connection Error", apperr.Kind(err))
}

func TestNew_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	dial := func(string) (Provider, error) {
		return &fakeProvider{probeErr: context.Canceled}, nil
	}
	_, err := New(ctx, []string{"m1", "m2"}, dial)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestSearch_FiveResults(t *testing.T) {
	f := newFake(8)
	c := newClient(t, f)

	results, err := c.Search(context.Background(), "ubuntu 22.04", 5, leetx.SearchOptions{Category: "apps", SortBy: "seeders", Order: "desc"})
	require.NoError(t, err)
	require.Len(t, results, 5)

	for _, r := range results {
		assert.NotEmpty(t, r.Link)
		assert.True(t, strings.HasPrefix(r.Magnet, "magnet:?"))
	}
	assert.Len(t, f.infoCalls, 5, "details resolved only for the truncated items")
	assert.Equal(t, "ubuntu 22.04", f.searchQuery)
	assert.Equal(t, "seeders", f.searchOpts.SortBy)
}

func TestSearch_DetailPrecedence(t *testing.T) {
	f := newFake(1)
	link := f.listing.Items[0].Link
	f.details[link] = &leetx.Detail{Name: "", Size: "2.0 GB", Seeders: intPtr(99), Magnet: "magnet:?xt=x"}

	results, err := newClient(t, f).Search(context.Background(), "ubuntu", 10, leetx.SearchOptions{})
	require.NoError(t, err)
	require.Len(t, results, 1)

	r := results[0]
	assert.Equal(t, "listing 1", r.Name, "empty detail name falls back to listing")
	assert.Equal(t, "2.0 GB", r.Size, "detail size wins")
	assert.Equal(t, 99, r.Seeders, "detail seeders win")
	assert.Equal(t, 1, r.Leechers, "missing detail leechers fall back to listing")
	assert.Equal(t, "magnet:?xt=x", r.Magnet)
	assert.Equal(t, link, r.Link)
}

func TestListings_MissingItemsYieldEmpty(t *testing.T) {
	for _, listing := range []*leetx.Listing{nil, {}} {
		f := newFake(0)
		f.probe = &leetx.Listing{Items: []leetx.Item{}}
		f.listing = listing
		c := newClient(t, f)
		ctx := context.Background()

		results, err := c.Search(ctx, "ubuntu", 5, leetx.SearchOptions{})
		require.NoError(t, err)
		assert.NotNil(t, results)
		assert.Empty(t, results)

		results, err = c.Trending(ctx, "movies", true)
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = c.Popular(ctx, "movies", false)
		require.NoError(t, err)
		assert.Empty(t, results)

		results, err = c.Top(ctx, "")
		require.NoError(t, err)
		assert.Empty(t, results)
	}
}

func TestListings_MalformedItemSkipped(t *testing.T) {
	f := newFake(4)
	f.probe = &leetx.Listing{Items: []leetx.Item{}}

	// Item 2 has no link; item 3's detail page fails.
	f.listing.Items[1].Link = ""
	delete(f.details, f.listing.Items[2].Link)

	results, err := newClient(t, f).Trending(context.Background(), "", true)
	require.NoError(t, err)
	require.Len(t, results, 2)
	assert.Equal(t, "detail 1", results[0].Name)
	assert.Equal(t, "detail 4", results[1].Name)
}

func TestListings_NotTruncated(t *testing.T) {
	f := newFake(30)
	f.probe = &leetx.Listing{Items: []leetx.Item{}}

	results, err := newClient(t, f).Top(context.Background(), "games")
	require.NoError(t, err)
	assert.Len(t, results, 30)
}

func TestListings_ProviderErrorIsAPIError(t *testing.T) {
	f := newFake(0)
	f.probe = &leetx.Listing{Items: []leetx.Item{}}
	f.listErr = errors.New("HTTP 502")
	c := newClient(t, f)
	ctx := context.Background()

	calls := map[string]func() error{
		"search torrents":       func() error { _, err := c.Search(ctx, "abc", 1, leetx.SearchOptions{}); return err },
		"get trending torrents": func() error { _, err := c.Trending(ctx, "tv", false); return err },
		"get popular torrents":  func() error { _, err := c.Popular(ctx, "tv", false); return err },
		"get top torrents":      func() error { _, err := c.Top(ctx, "tv"); return err },
	}

	for op, call := range calls {
		err := call()
		var apiErr *apperr.APIError
		require.True(t, errors.As(err, &apiErr), op)
		assert.Equal(t, op, apiErr.Op)
		assert.Contains(t, err.Error(), "HTTP 502")
	}
}

func TestListings_Progress(t *testing.T) {
	f := newFake(3)
	var calls [][2]int
	c := newClient(t, f, WithProgress(func(done, total int) {
		calls = append(calls, [2]int{done, total})
	}))

	_, err := c.Search(context.Background(), "abc", 0, leetx.SearchOptions{})
	require.NoError(t, err)
	assert.Equal(t, [][2]int{{1, 3}, {2, 3}, {3, 3}}, calls)
}

func TestListings_CancelledMidway(t *testing.T) {
	f := newFake(5)
	ctx, cancel := context.WithCancel(context.Background())
	c := newClient(t, f, WithProgress(func(done, total int) {
		if done == 2 {
			cancel()
		}
	}))

	_, err := c.Search(ctx, "abc", 0, leetx.SearchOptions{})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Len(t, f.infoCalls, 2)
}

func TestInfo_BareID(t *testing.T) {
	f := newFake(0)
	f.details["https://1337x.to/torrent/12345/"] = &leetx.Detail{Name: "by id", Magnet: "magnet:?xt=id"}
	c := newClient(t, f)

	d, err := c.Info(context.Background(), "12345")
	require.NoError(t, err)
	assert.Equal(t, "by id", d.Name)
	assert.Equal(t, []string{"https://1337x.to/torrent/12345/"}, f.infoCalls)
}

func TestInfo_Malformed(t *testing.T) {
	f := newFake(0)
	f.details["https://1337x.to/torrent/1/"] = nil
	c := newClient(t, f)

	_, err := c.Info(context.Background(), "https://1337x.to/torrent/1/")
	require.Error(t, err)
	assert.Equal(t, "API Error", apperr.Kind(err))
	assert.Contains(t, err.Error(), "invalid torrent info response")
}

func TestMagnet(t *testing.T) {
	f := newFake(1)
	link := f.listing.Items[0].Link
	f.details["https://1337x.to/torrent/2/"] = &leetx.Detail{Name: "no magnet"}
	c := newClient(t, f)
	ctx := context.Background()

	m, err := c.Magnet(ctx, link)
	require.NoError(t, err)
	assert.Equal(t, f.details[link].Magnet, m)

	_, err = c.Magnet(ctx, "2")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to get magnet link: no magnet link found")

	_, err = c.Magnet(ctx, "https://1337x.to/torrent/404/")
	require.Error(t, err)
	var apiErr *apperr.APIError
	require.True(t, errors.As(err, &apiErr))
	assert.Equal(t, "get magnet link", apiErr.Op)
}

func TestResult_Health(t *testing.T) {
	assert.Equal(t, 0, Result{Seeders: 0, Leechers: 10}.Health())
	assert.Equal(t, 100, Result{Seeders: 5, Leechers: 0}.Health())
	assert.Equal(t, 75, Result{Seeders: 75, Leechers: 25}.Health())
}
