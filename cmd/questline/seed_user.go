package main

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/questline/questline/adapters/postgres"
	"github.com/questline/questline/core"
	"github.com/questline/questline/internal/config"
	"github.com/questline/questline/internal/proof"
)

const defaultSeedTimeout = 30 * time.Second

// NewSeedUserCmd creates the seed-user subcommand.
func NewSeedUserCmd() *cobra.Command {
	var (
		password string
		timeout  time.Duration
	)

	cmd := &cobra.Command{
		Use:   "seed-user <username>",
		Short: "Create a user credential record",
		Long: `Create a user with a fresh random salt and the salted hash of the
given password. The password itself is never stored. Seeding an existing
username is a no-op.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSeedUser(cmd, args[0], password, timeout)
		},
	}

	cmd.Flags().StringVar(&password, "password", "", "password to derive the stored hash from")
	cmd.Flags().DurationVar(&timeout, "timeout", defaultSeedTimeout, "timeout for database operations")
	_ = cmd.MarkFlagRequired("password")

	return cmd
}

func runSeedUser(cmd *cobra.Command, username, password string, timeout time.Duration) error {
	cfg, err := config.Load(configFile)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
	defer cancel()

	pool, err := postgres.NewPool(ctx, cfg.Postgres.URL)
	if err != nil {
		return fmt.Errorf("connect to postgres: %w", err)
	}
	defer pool.Close()

	salt, err := randomSalt()
	if err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	cred := &core.UserCredential{
		Username:     username,
		PasswordHash: proof.HashPassword(password, salt),
		PasswordSalt: salt,
	}
	if err := postgres.SeedUser(ctx, pool, cred); err != nil {
		if errors.Is(err, core.ErrUserExists) {
			cmd.Printf("User %s already exists, skipping\n", username)
			return nil
		}
		return err
	}

	cmd.Printf("Created user %s\n", username)
	return nil
}

// randomSalt returns a fresh public salt for one credential record.
func randomSalt() (string, error) {
	raw := make([]byte, 16)
	if _, err := rand.Read(raw); err != nil {
		return "", err
	}
	return hex.EncodeToString(raw), nil
}
