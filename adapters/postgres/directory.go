package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/questline/questline/core"
	"github.com/questline/questline/ports"
)

// UserDirectory is the PostgreSQL implementation of the read-only user
// directory.
type UserDirectory struct {
	pool pool
}

// NewUserDirectory creates a new directory over the given pool.
func NewUserDirectory(p pool) *UserDirectory {
	return &UserDirectory{pool: p}
}

// Lookup returns the credential record for username, or core.ErrNoUser.
func (d *UserDirectory) Lookup(ctx context.Context, username string) (*core.UserCredential, error) {
	row := d.pool.QueryRow(ctx,
		`SELECT username, password_hash, password_salt FROM users WHERE username = $1`,
		username)

	var cred core.UserCredential
	err := row.Scan(&cred.Username, &cred.PasswordHash, &cred.PasswordSalt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNoUser
	}
	if err != nil {
		return nil, fmt.Errorf("failed to look up user: %w", err)
	}
	return &cred, nil
}

var _ ports.UserDirectory = (*UserDirectory)(nil)
