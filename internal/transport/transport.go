// Package transport builds the HTTP client used to talk to index mirrors:
// a browser user agent, a request rate limit and a TTL response cache layered
// as http.RoundTrippers.
package transport

import (
	"context"
	"net/http"
	"time"

	"github.com/litescript/torrent-cli/internal/logctx"
	"github.com/litescript/torrent-cli/internal/storage"
	"golang.org/x/time/rate"
)

// DefaultUserAgent mimics a desktop browser; index sites reject bare Go clients.
const DefaultUserAgent = "Mozilla/5.0 (X11; Linux x86_64; rv:120.0) Gecko/20100101 Firefox/120.0"

// DefaultTTL matches the 300 second window the index responses are cached for.
const DefaultTTL = 300 * time.Second

// Options configures NewClient.
type Options struct {
	Timeout       time.Duration
	UserAgent     string
	RatePerSecond float64 // <= 0 disables rate limiting
	Store         storage.ResponseStore
	TTL           time.Duration
	Base          http.RoundTripper
}

// NewClient returns an http.Client with the user agent, rate limit and cache
// round trippers installed. The cache sits in front of the rate limiter so
// cache hits are not rate limited.
func NewClient(ctx context.Context, opts Options) *http.Client {
	rt := opts.Base
	if rt == nil {
		rt = http.DefaultTransport
	}

	if opts.Store != nil {
		ttl := opts.TTL
		if ttl <= 0 {
			ttl = DefaultTTL
		}
		rt = &Cache{
			Store:  opts.Store,
			TTL:    ttl,
			Next:   &RateLimit{Limiter: limiter(opts.RatePerSecond), Next: rt},
			Logger: logctx.LoggerFromContext(ctx),
		}
	} else {
		rt = &RateLimit{Limiter: limiter(opts.RatePerSecond), Next: rt}
	}

	ua := opts.UserAgent
	if ua == "" {
		ua = DefaultUserAgent
	}
	rt = &UserAgent{Agent: ua, Next: rt}

	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	return &http.Client{Timeout: timeout, Transport: rt}
}

func limiter(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return nil
	}
	burst := int(perSecond)
	if burst < 1 {
		burst = 1
	}
	return rate.NewLimiter(rate.Limit(perSecond), burst)
}

// UserAgent sets browser-like request headers.
type UserAgent struct {
	Agent string
	Next  http.RoundTripper
}

func (t *UserAgent) RoundTrip(req *http.Request) (*http.Response, error) {
	req = req.Clone(req.Context())
	req.Header.Set("User-Agent", t.Agent)
	if req.Header.Get("Accept") == "" {
		req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")
	}
	return t.Next.RoundTrip(req)
}

// RateLimit waits on Limiter before each request. A nil Limiter passes through.
type RateLimit struct {
	Limiter *rate.Limiter
	Next    http.RoundTripper
}

func (t *RateLimit) RoundTrip(req *http.Request) (*http.Response, error) {
	if t.Limiter != nil {
		if err := t.Limiter.Wait(req.Context()); err != nil {
			return nil, err
		}
	}
	return t.Next.RoundTrip(req)
}
