package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/questline/questline/core"
)

// SeedUser inserts a credential record. The UserDirectory port stays
// read-only; this is an operator-side helper reachable only through the CLI.
func SeedUser(ctx context.Context, p pool, cred *core.UserCredential) error {
	_, err := p.Exec(ctx,
		`INSERT INTO users (username, password_hash, password_salt) VALUES ($1, $2, $3)`,
		cred.Username, cred.PasswordHash, cred.PasswordSalt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return core.ErrUserExists
		}
		return fmt.Errorf("failed to insert user: %w", err)
	}
	return nil
}
