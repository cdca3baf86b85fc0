package service

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/questline/questline/core"
	"github.com/questline/questline/ports"
)

// DefaultNonceTTL bounds how long a login attempt may sit between the two
// halves of the handshake.
const DefaultNonceTTL = 2 * time.Minute

const noncePrefix = "questline:nonce:"

// NonceLedger tracks outstanding server nonces. A nonce exists from Issue
// until Take, Invalidate, or expiry, whichever comes first; after that it is
// gone for good.
type NonceLedger struct {
	store ports.EphemeralStore
	ttl   time.Duration
}

// NewNonceLedger creates a ledger over the given store. A non-positive ttl
// falls back to DefaultNonceTTL.
func NewNonceLedger(store ports.EphemeralStore, ttl time.Duration) *NonceLedger {
	if ttl <= 0 {
		ttl = DefaultNonceTTL
	}
	return &NonceLedger{store: store, ttl: ttl}
}

// Issue stores value under a fresh nonce id and returns the id.
func (l *NonceLedger) Issue(ctx context.Context, value uint64) (string, error) {
	id := uuid.New().String()
	err := l.store.SetWithTTL(ctx, noncePrefix+id, strconv.FormatUint(value, 10), l.ttl)
	if err != nil {
		return "", fmt.Errorf("failed to store nonce: %w", err)
	}
	return id, nil
}

// Take consumes the nonce atomically: of any number of concurrent callers,
// exactly one receives the value. Absent, already-taken, and aged-out nonces
// all come back as core.ErrNonceExpired.
func (l *NonceLedger) Take(ctx context.Context, nonceID string) (uint64, error) {
	raw, err := l.store.Take(ctx, noncePrefix+nonceID)
	if errors.Is(err, core.ErrNotFound) {
		return 0, core.ErrNonceExpired
	}
	if err != nil {
		return 0, fmt.Errorf("failed to take nonce: %w", err)
	}

	value, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("failed to parse stored nonce: %w", err)
	}
	return value, nil
}

// Invalidate discards the nonce. Invalidating an absent nonce is not an
// error.
func (l *NonceLedger) Invalidate(ctx context.Context, nonceID string) error {
	if err := l.store.Delete(ctx, noncePrefix+nonceID); err != nil {
		return fmt.Errorf("failed to invalidate nonce: %w", err)
	}
	return nil
}
