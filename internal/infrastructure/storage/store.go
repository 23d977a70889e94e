// Package storage provides the keyed TTL store that holds CSRF and rate-limit
// state. Memory, Redis and SQL backends share one contract so a single
// process and a horizontally scaled deployment behave the same.
package storage

import (
	"context"
	"encoding/base64"
	"errors"
	"time"

	"golang.org/x/crypto/blake2b"
)

// ErrNotFound is returned by Get when a key is absent or expired.
var ErrNotFound = errors.New("storage: key not found")

// MutateFunc receives the current value of a key and returns the value to
// store together with its absolute expiry. Returning a nil value deletes the
// key. An error aborts the mutation and leaves the key untouched.
type MutateFunc func(current []byte, found bool) (next []byte, expiresAt time.Time, err error)

// Store is a keyed byte store with per-entry expiry.
type Store interface {
	// Name identifies the backend in logs and health output.
	Name() string
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Mutate performs an atomic read-modify-write of a single key.
	Mutate(ctx context.Context, key string, fn MutateFunc) error
	// Sweep removes expired entries and reports how many were removed.
	Sweep(ctx context.Context) (int, error)
	Ping(ctx context.Context) error
	Close() error
}

// Clock returns the current time. Stores and the components built on them
// accept one so expiry can be tested deterministically.
type Clock func() time.Time

func (c Clock) Now() time.Time {
	if c == nil {
		return time.Now()
	}
	return c()
}

// Key builds a namespaced store key. The raw identity is hashed so keys have
// a bounded length and no client address or user agent is kept at rest.
func Key(namespace, raw string) string {
	sum := blake2b.Sum256([]byte(raw))
	return namespace + ":" + base64.RawURLEncoding.EncodeToString(sum[:])
}
