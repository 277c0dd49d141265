package transport

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/litescript/torrent-cli/internal/storage"
)

// CacheHeader is set on responses served from the cache.
const CacheHeader = "X-Torrent-Cli-Cache"

// maxCachedBody bounds what we are willing to keep per response.
const maxCachedBody = 4 << 20

// Cache serves GET responses from Store while they are younger than TTL and
// stores fresh 200 responses. Store failures are logged and never fail the
// request.
type Cache struct {
	Store  storage.ResponseStore
	TTL    time.Duration
	Next   http.RoundTripper
	Logger *slog.Logger
	Now    func() time.Time
}

// Key returns the cache key for a request: method plus full URL.
func Key(req *http.Request) string {
	return req.Method + " " + req.URL.String()
}

func (c *Cache) now() time.Time {
	if c.Now != nil {
		return c.Now()
	}
	return time.Now()
}

func (c *Cache) logger() *slog.Logger {
	if c.Logger != nil {
		return c.Logger
	}
	return slog.Default()
}

func (c *Cache) RoundTrip(req *http.Request) (*http.Response, error) {
	if req.Method != http.MethodGet {
		return c.Next.RoundTrip(req)
	}

	key := Key(req)

	cached, err := c.Store.GetResponse(key)
	switch {
	case err == nil && c.now().Sub(cached.StoredAt) < c.TTL:
		c.logger().Debug("cache hit", "key", key, "age", c.now().Sub(cached.StoredAt).String())
		return cachedResponse(req, cached), nil
	case err != nil && !errors.Is(err, storage.ErrNotFound):
		c.logger().Warn("cache read failed", "key", key, "err", err)
	}

	resp, err := c.Next.RoundTrip(req)
	if err != nil || resp.StatusCode != http.StatusOK {
		return resp, err
	}

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxCachedBody+1))
	if err != nil {
		resp.Body.Close()
		return nil, fmt.Errorf("read response body: %w", err)
	}

	// Too large to keep: hand back what was read followed by the rest of
	// the live body.
	if len(body) > maxCachedBody {
		c.logger().Debug("response too large to cache", "key", key)
		resp.Body = &replayBody{Reader: io.MultiReader(bytes.NewReader(body), resp.Body), body: resp.Body}
		return resp, nil
	}

	resp.Body.Close()
	resp.Body = io.NopCloser(bytes.NewReader(body))

	if err := c.Store.PutResponse(storage.CachedResponse{
		Key:         key,
		StatusCode:  resp.StatusCode,
		ContentType: resp.Header.Get("Content-Type"),
		Body:        body,
		StoredAt:    c.now(),
	}); err != nil {
		c.logger().Warn("cache write failed", "key", key, "err", err)
	}

	return resp, nil
}

// replayBody reads a partly consumed body from the start and closes the
// underlying connection body.
type replayBody struct {
	io.Reader
	body io.Closer
}

func (b *replayBody) Close() error {
	return b.body.Close()
}

func cachedResponse(req *http.Request, cached storage.CachedResponse) *http.Response {
	header := make(http.Header)
	if cached.ContentType != "" {
		header.Set("Content-Type", cached.ContentType)
	}
	header.Set(CacheHeader, "hit")

	return &http.Response{
		Status:        fmt.Sprintf("%d %s", cached.StatusCode, http.StatusText(cached.StatusCode)),
		StatusCode:    cached.StatusCode,
		Proto:         "HTTP/1.1",
		ProtoMajor:    1,
		ProtoMinor:    1,
		Header:        header,
		Body:          io.NopCloser(bytes.NewReader(cached.Body)),
		ContentLength: int64(len(cached.Body)),
		Request:       req,
	}
}
