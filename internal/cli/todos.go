package cli

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/goliatone/go-todos"
	"github.com/spf13/cobra"
)

func newListCommand(opts *rootOptions) *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List active todos",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				owner, err := a.owner(ctx)
				if err != nil {
					return err
				}

				items, err := a.store.ListActive(ctx, owner)
				if err != nil {
					return err
				}

				if asJSON {
					enc := json.NewEncoder(cmd.OutOrStdout())
					enc.SetIndent("", "  ")
					return enc.Encode(items)
				}

				renderItems(cmd.OutOrStdout(), owner, items)
				return nil
			})
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print items as JSON")
	return cmd
}

func newAddCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "add <text>",
		Short: "Add an active todo",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				owner, err := a.owner(ctx)
				if err != nil {
					return err
				}

				item, err := a.store.Add(ctx, owner, strings.Join(args, " "))
				if err != nil {
					return err
				}

				ok(cmd.OutOrStdout(), fmt.Sprintf("added %s", item.TodoID))
				return nil
			})
		},
	}
}

func newArchiveCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "archive <todoId>",
		Short: "Archive an active todo",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				owner, err := a.owner(ctx)
				if err != nil {
					return err
				}

				items, err := a.store.ListActive(ctx, owner)
				if err != nil {
					return err
				}

				var target *todos.TodoItem
				for _, item := range items {
					if item.TodoID == args[0] {
						target = item
						break
					}
				}
				if target == nil {
					return fmt.Errorf("no active todo with id %q", args[0])
				}

				if err := a.store.Archive(ctx, target); err != nil {
					return err
				}

				ok(cmd.OutOrStdout(), fmt.Sprintf("archived %s", target.TodoID))
				return nil
			})
		},
	}
}
