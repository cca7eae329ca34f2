// Package cli implements the todos command line.
package cli

import (
	"context"
	"errors"

	"github.com/goliatone/go-todos/config"
	"github.com/spf13/cobra"
)

var errNotLoggedIn = errors.New("not logged in, run `todos login` first")

type rootOptions struct {
	configFile string
	debug      bool
	cfg        *config.Config
}

func NewRootCommand() *cobra.Command {
	opts := &rootOptions{}

	rootCmd := &cobra.Command{
		Use:   "todos",
		Short: "todos - a small to-do list backed by a managed key-value table",
		Long: `todos keeps a per-user to-do list in a DynamoDB table (or a local
sqlite file) and authenticates users against a Cognito user pool (or a
local development user store).`,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(opts.configFile)
			if err != nil {
				return err
			}
			if opts.debug {
				cfg.Debug = true
			}
			opts.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configFile, "config", "", "config file (default: todos.yaml)")
	rootCmd.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug output")

	rootCmd.AddCommand(newSignupCommand(opts))
	rootCmd.AddCommand(newConfirmCommand(opts))
	rootCmd.AddCommand(newLoginCommand(opts))
	rootCmd.AddCommand(newLogoutCommand(opts))
	rootCmd.AddCommand(newWhoamiCommand(opts))
	rootCmd.AddCommand(newListCommand(opts))
	rootCmd.AddCommand(newAddCommand(opts))
	rootCmd.AddCommand(newArchiveCommand(opts))
	rootCmd.AddCommand(newServeCommand(opts))

	return rootCmd
}

func runWithApp(cmd *cobra.Command, opts *rootOptions, fn func(ctx context.Context, a *app) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	a, err := newApp(ctx, opts.cfg)
	if err != nil {
		return err
	}
	defer a.Close()

	return fn(ctx, a)
}
