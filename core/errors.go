package core

import "errors"

var (
	// ErrNoUser is returned when the user directory has no record for a username.
	ErrNoUser = errors.New("no user found")

	// ErrNonceExpired is returned when a server nonce is absent at verification
	// time, either because it aged out or because it was already consumed.
	ErrNonceExpired = errors.New("nonce has expired")

	// ErrAuthFailed is returned when a submitted proof does not match the
	// expected value.
	ErrAuthFailed = errors.New("authentication failed")

	// ErrNotFound is returned by the ephemeral store when a key is absent.
	ErrNotFound = errors.New("key not found")

	// ErrUserExists is returned when seeding a user that is already present.
	ErrUserExists = errors.New("user already exists")

	// ErrQuestExists is returned when inserting a quest with an id that is
	// already taken.
	ErrQuestExists = errors.New("quest already exists")

	// ErrQuestNotFound is returned for quests that are absent or owned by
	// another user; the two cases are deliberately indistinguishable.
	ErrQuestNotFound = errors.New("quest not found")

	// ErrInvalidStatus is returned when a quest update names an unknown
	// lifecycle status.
	ErrInvalidStatus = errors.New("invalid quest status")

	// ErrObjectiveNotFound is returned when a quest has no objective with the
	// requested id.
	ErrObjectiveNotFound = errors.New("objective not found")
)
