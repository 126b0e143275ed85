// Package store holds the two shared state stores the authorization
// pipeline depends on: the token revocation list and the sensitive-operation
// rate-limit counters. Gates only ever see these interfaces; the concrete
// backend (redis in production, in-memory otherwise) is wired at startup.
package store

import (
	"context"
	"time"
)

// RevocationStore answers whether a token identifier has been explicitly
// invalidated ahead of its natural expiry. Entries are written at
// logout/rotation time and pruned by their TTL; the authorization pipeline
// only reads them.
type RevocationStore interface {
	IsRevoked(ctx context.Context, tokenID string) (bool, error)
	Revoke(ctx context.Context, tokenID string, ttl time.Duration) error
}

// RateLimitStore keeps a windowed counter per key with atomic
// increment-and-read semantics. The first increment of a window creates it;
// a key whose window has elapsed starts over at 1.
type RateLimitStore interface {
	Increment(ctx context.Context, key string, window time.Duration) (int64, error)
}
