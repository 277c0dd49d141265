// Package storage defines the persistence contracts used by the HTTP cache.
package storage

import (
	"errors"
	"time"
)

// ErrNotFound is returned when no cached response exists for a key.
var ErrNotFound = errors.New("cached response not found")

// CachedResponse is a stored HTTP response body keyed by request.
type CachedResponse struct {
	Key         string
	StatusCode  int
	ContentType string
	Body        []byte
	StoredAt    time.Time
}

// ResponseStore persists HTTP responses for reuse within a TTL.
type ResponseStore interface {
	GetResponse(key string) (CachedResponse, error)
	PutResponse(resp CachedResponse) error
	// Prune removes entries stored before cutoff and returns how many were dropped.
	Prune(cutoff time.Time) (int64, error)
}
