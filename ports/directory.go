package ports

import (
	"context"

	"github.com/questline/questline/core"
)

// UserDirectory is the durable user record lookup. It is strictly read-only
// from the authentication core's perspective; registration and password
// management live elsewhere.
type UserDirectory interface {
	// Lookup returns the credential record for username, or core.ErrNoUser if
	// the directory has no such record.
	Lookup(ctx context.Context, username string) (*core.UserCredential, error)
}
