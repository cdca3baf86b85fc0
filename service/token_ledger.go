package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/questline/questline/core"
	"github.com/questline/questline/ports"
)

// DefaultTokenTTL is how long a session token stays valid without a refresh.
const DefaultTokenTTL = 30 * time.Minute

const tokenPrefix = "questline:token:"

// TokenLedger tracks live session tokens. A token is valid exactly while its
// (username, token) key is present in the ephemeral store; keying on the
// pair lets one user hold several live sessions at once.
type TokenLedger struct {
	store ports.EphemeralStore
	ttl   time.Duration
}

// NewTokenLedger creates a ledger over the given store. A non-positive ttl
// falls back to DefaultTokenTTL.
func NewTokenLedger(store ports.EphemeralStore, ttl time.Duration) *TokenLedger {
	if ttl <= 0 {
		ttl = DefaultTokenTTL
	}
	return &TokenLedger{store: store, ttl: ttl}
}

// IssueOrRefresh stores (username, token) with a fresh TTL. An empty
// existingToken mints a new opaque token; a non-empty one slides the expiry
// window without changing the value the client holds.
func (l *TokenLedger) IssueOrRefresh(ctx context.Context, username, existingToken string) (string, error) {
	token := existingToken
	if token == "" {
		var err error
		token, err = newToken()
		if err != nil {
			return "", err
		}
	}

	refreshedAt := time.Now().UTC().Format(time.RFC3339)
	if err := l.store.SetWithTTL(ctx, tokenKey(username, token), refreshedAt, l.ttl); err != nil {
		return "", fmt.Errorf("failed to store token: %w", err)
	}
	return token, nil
}

// IsValid reports whether (username, token) names a live session. Presence
// in the store is the only criterion.
func (l *TokenLedger) IsValid(ctx context.Context, username, token string) (bool, error) {
	_, err := l.store.Get(ctx, tokenKey(username, token))
	if errors.Is(err, core.ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check token: %w", err)
	}
	return true, nil
}

// Invalidate removes (username, token). Unknown and already-expired pairs
// are a no-op, so the operation is idempotent.
func (l *TokenLedger) Invalidate(ctx context.Context, username, token string) error {
	if err := l.store.Delete(ctx, tokenKey(username, token)); err != nil {
		return fmt.Errorf("failed to invalidate token: %w", err)
	}
	return nil
}

// newToken draws a 32-byte random token, hex-encoded. The token is opaque:
// nothing about the session can be read out of it.
func newToken() (string, error) {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return hex.EncodeToString(b), nil
}

func tokenKey(username, token string) string {
	return tokenPrefix + username + ":" + token
}
