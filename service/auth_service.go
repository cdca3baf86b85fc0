// Package service holds the business logic: the nonce and token ledgers,
// the authentication orchestrator over them, and the quest service. All
// state lives behind ports; nothing in this package caches.
package service

import (
	"context"
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/questline/questline/core"
	"github.com/questline/questline/internal/logutil"
	"github.com/questline/questline/internal/proof"
	"github.com/questline/questline/ports"
)

// AuthService orchestrates the two-step login handshake and the session
// lifecycle around it. Retry and persistence policy live with the callers
// and the adapters, not here.
type AuthService struct {
	directory ports.UserDirectory
	nonces    *NonceLedger
	tokens    *TokenLedger
	eventPub  ports.EventPublisher
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	directory ports.UserDirectory,
	nonces *NonceLedger,
	tokens *TokenLedger,
	eventPub ports.EventPublisher,
) *AuthService {
	return &AuthService{
		directory: directory,
		nonces:    nonces,
		tokens:    tokens,
		eventPub:  eventPub,
	}
}

// BeginLogin opens a handshake: it issues a single-use server nonce and
// returns it alongside the user's public salt. Returns core.ErrNoUser when
// the directory has no record for username.
func (s *AuthService) BeginLogin(ctx context.Context, username string) (*core.LoginChallenge, error) {
	cred, err := s.directory.Lookup(ctx, username)
	if err != nil {
		return nil, err
	}

	value, err := randomNonce()
	if err != nil {
		return nil, err
	}

	nonceID, err := s.nonces.Issue(ctx, value)
	if err != nil {
		return nil, err
	}

	return &core.LoginChallenge{
		NonceID:      nonceID,
		ServerNonce:  value,
		PasswordSalt: cred.PasswordSalt,
	}, nil
}

// CompleteLogin checks the client's proof against the consumed nonce and the
// stored credential, and issues a session token on success. The directory
// record and the nonce are fetched concurrently; taking the nonce consumes
// it, so a given nonce id can back at most one verification whatever the
// outcome.
func (s *AuthService) CompleteLogin(ctx context.Context, username, clientProof, nonceID string, clientNonce uint64) (string, error) {
	type lookup struct {
		cred *core.UserCredential
		err  error
	}
	credCh := make(chan lookup, 1)
	go func() {
		cred, err := s.directory.Lookup(ctx, username)
		credCh <- lookup{cred: cred, err: err}
	}()

	serverNonce, takeErr := s.nonces.Take(ctx, nonceID)
	dir := <-credCh

	// A missing user outranks a dead nonce; the Take above has already
	// retired the nonce either way.
	if dir.err != nil {
		return "", dir.err
	}
	if takeErr != nil {
		return "", takeErr
	}

	expected := proof.Compute(serverNonce, clientNonce, dir.cred.PasswordHash)
	if !proof.Equal(clientProof, expected) {
		return "", core.ErrAuthFailed
	}

	return s.tokens.IssueOrRefresh(ctx, username, "")
}

// ValidateAndRefresh reports whether (username, token) names a live session,
// and slides its expiry when it does. Every authorized call doubles as a
// heartbeat.
func (s *AuthService) ValidateAndRefresh(ctx context.Context, username, token string) (bool, error) {
	valid, err := s.tokens.IsValid(ctx, username, token)
	if err != nil || !valid {
		return false, err
	}

	if _, err := s.tokens.IssueOrRefresh(ctx, username, token); err != nil {
		return false, fmt.Errorf("failed to refresh token: %w", err)
	}
	return true, nil
}

// Logout invalidates (username, token) unconditionally. Unknown and expired
// pairs land in the same terminal state, so repeating the call is harmless.
func (s *AuthService) Logout(ctx context.Context, username, token string) error {
	if err := s.tokens.Invalidate(ctx, username, token); err != nil {
		return err
	}

	// Publish logout event for cross-instance notifications. The token is
	// already gone from the store, which is the critical part; fan-out is
	// best effort.
	if err := s.eventPub.PublishLogout(ctx, username, proof.Fingerprint(token)); err != nil {
		logutil.GetOrDefault(ctx).Warn().Err(err).Str("username", username).
			Msg("failed to publish logout event")
	}
	return nil
}

// randomNonce draws a uniformly random uint64 challenge value.
func randomNonce() (uint64, error) {
	var b [8]byte
	if _, err := rand.Read(b[:]); err != nil {
		return 0, fmt.Errorf("failed to generate nonce value: %w", err)
	}
	return binary.BigEndian.Uint64(b[:]), nil
}
