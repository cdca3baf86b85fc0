package questline

import (
	"errors"
)

var (
	// ErrUnknownUser is returned when the server has no record for the username.
	ErrUnknownUser = errors.New("unknown user")

	// ErrChallengeExpired is returned when the server nonce aged out or was
	// already consumed before the proof arrived.
	ErrChallengeExpired = errors.New("challenge expired")

	// ErrLoginRejected is returned when the server rejects the submitted proof.
	ErrLoginRejected = errors.New("login rejected")

	// ErrSessionExpired is returned when the session token is no longer valid.
	ErrSessionExpired = errors.New("session expired")

	// ErrNotLoggedIn is returned when an authenticated call is made before
	// Login or after Logout.
	ErrNotLoggedIn = errors.New("not logged in")

	// ErrNotFound is returned when the requested quest or objective does not
	// exist, or belongs to another user.
	ErrNotFound = errors.New("not found")
)
