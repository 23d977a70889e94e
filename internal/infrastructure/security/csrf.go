package security

import (
	"context"
	"crypto/subtle"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/observability/logging"
	"github.com/turbokuzmich/yourcosmetics/internal/infrastructure/storage"
)

const (
	csrfNamespace = "csrf"
	// csrfTokenHexLength renders 256 random bits.
	csrfTokenHexLength = 64
)

// CSRFConfig tunes token lifetime and reuse.
type CSRFConfig struct {
	TTL time.Duration
	// SingleUse evicts a token once it verifies.
	SingleUse bool
	Clock     storage.Clock
}

type csrfRecord struct {
	Token    string `json:"token"`
	IssuedAt int64  `json:"issuedAt"`
}

// TokenStore issues and verifies one anti-forgery token per session key.
type TokenStore struct {
	store     storage.Store
	ttl       time.Duration
	singleUse bool
	clock     storage.Clock
	logger    *logging.ChanneledLogger
}

// NewTokenStore creates a TokenStore on top of a keyed store.
func NewTokenStore(store storage.Store, cfg CSRFConfig, logger *logging.ChanneledLogger) *TokenStore {
	return &TokenStore{
		store:     store,
		ttl:       cfg.TTL,
		singleUse: cfg.SingleUse,
		clock:     cfg.Clock,
		logger:    logger,
	}
}

// TTL reports the configured token lifetime.
func (ts *TokenStore) TTL() time.Duration { return ts.ttl }

// Issue generates a fresh token for sessionKey, replacing any previous one.
func (ts *TokenStore) Issue(ctx context.Context, sessionKey string) (string, error) {
	ts.sweep(ctx)

	token, err := GenerateSecureKey(csrfTokenHexLength)
	if err != nil {
		return "", err
	}

	payload, err := json.Marshal(csrfRecord{Token: token, IssuedAt: ts.clock.Now().UnixMilli()})
	if err != nil {
		return "", fmt.Errorf("failed to encode csrf record: %w", err)
	}
	if err := ts.store.Set(ctx, storage.Key(csrfNamespace, sessionKey), payload, ts.ttl); err != nil {
		return "", fmt.Errorf("failed to store csrf token: %w", err)
	}

	return token, nil
}

type verdict int

const (
	verdictMismatch verdict = iota
	verdictMatch
	// verdictStale marks an expired or unreadable record.
	verdictStale
)

// Verify reports whether supplied matches the live token for sessionKey.
// Missing, expired and unreadable records all verify as false. With
// SingleUse the compare and the eviction run as one atomic mutation, so a
// token is accepted at most once under concurrent submissions.
func (ts *TokenStore) Verify(ctx context.Context, sessionKey, supplied string) bool {
	ts.sweep(ctx)

	key := storage.Key(csrfNamespace, sessionKey)
	if ts.singleUse {
		return ts.consume(ctx, key, supplied)
	}

	raw, err := ts.store.Get(ctx, key)
	if err != nil {
		if !errors.Is(err, storage.ErrNotFound) {
			ts.logger.Security().Error("CSRF lookup failed", "error", err.Error(), "backend", ts.store.Name())
		}
		return false
	}

	result, _ := ts.check(raw, supplied)
	if result == verdictStale {
		ts.evict(ctx, key)
	}
	return result == verdictMatch
}

func (ts *TokenStore) consume(ctx context.Context, key, supplied string) bool {
	var result verdict

	err := ts.store.Mutate(ctx, key, func(current []byte, found bool) ([]byte, time.Time, error) {
		if !found {
			result = verdictMismatch
			return nil, time.Time{}, nil
		}
		var expiresAt time.Time
		result, expiresAt = ts.check(current, supplied)
		if result != verdictMismatch {
			return nil, time.Time{}, nil
		}
		return current, expiresAt, nil
	})
	if err != nil {
		ts.logger.Security().Error("CSRF lookup failed", "error", err.Error(), "backend", ts.store.Name())
		return false
	}

	return result == verdictMatch
}

// check compares supplied against a stored record in constant time and
// returns the record's expiry.
func (ts *TokenStore) check(raw []byte, supplied string) (verdict, time.Time) {
	var record csrfRecord
	if err := json.Unmarshal(raw, &record); err != nil {
		ts.logger.Security().Warn("Discarding unreadable CSRF record", "error", err.Error())
		return verdictStale, time.Time{}
	}

	expiresAt := time.UnixMilli(record.IssuedAt).Add(ts.ttl)
	if !ts.clock.Now().Before(expiresAt) {
		return verdictStale, expiresAt
	}

	if len(supplied) != len(record.Token) {
		return verdictMismatch, expiresAt
	}
	if subtle.ConstantTimeCompare([]byte(supplied), []byte(record.Token)) != 1 {
		return verdictMismatch, expiresAt
	}
	return verdictMatch, expiresAt
}

func (ts *TokenStore) evict(ctx context.Context, key string) {
	if err := ts.store.Delete(ctx, key); err != nil {
		ts.logger.Storage().Warn("Failed to evict CSRF record", "error", err.Error())
	}
}

func (ts *TokenStore) sweep(ctx context.Context) {
	removed, err := ts.store.Sweep(ctx)
	if err != nil {
		ts.logger.Storage().Warn("Opportunistic sweep failed", "error", err.Error(), "backend", ts.store.Name())
		return
	}
	if removed > 0 {
		ts.logger.Storage().Debug("Swept expired entries", "removed", removed, "backend", ts.store.Name())
	}
}
