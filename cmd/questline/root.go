package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the questline CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "questline",
		Short: "Questline - challenge-response auth and quest tracking",
		Long: `Questline is a multi-tenant quest tracking service fronted by a
challenge-response login handshake. Passwords never travel over the wire;
clients prove knowledge of the salted password hash against a single-use
server nonce.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(NewServeCmd())
	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewSeedUserCmd())

	return cmd
}
