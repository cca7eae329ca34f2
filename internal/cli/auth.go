package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/goliatone/go-todos"
	"github.com/spf13/cobra"
)

// report prints the outcome of a transition and turns failures into errors
func report(cmd *cobra.Command, action todos.Action, success string) error {
	if action.Type.IsFailure() {
		msg := string(action.Type)
		if action.Payload.Error != nil {
			msg = action.Payload.Error.Error()
		}
		fail(cmd.ErrOrStderr(), msg)
		return errors.New(msg)
	}
	ok(cmd.OutOrStdout(), success)
	return nil
}

func newSignupCommand(opts *rootOptions) *cobra.Command {
	form := todos.SignupForm{}

	cmd := &cobra.Command{
		Use:   "signup",
		Short: "Create an account, the email is the username",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				action := a.auth.SignupUser(ctx, form)
				return report(cmd, action, fmt.Sprintf("signed up %s, check for a confirmation code", form.Email))
			})
		},
	}

	cmd.Flags().StringVar(&form.Name, "name", "", "full name")
	cmd.Flags().StringVar(&form.Email, "email", "", "email address")
	cmd.Flags().StringVar(&form.PhoneNumber, "phone", "", "phone number")
	cmd.Flags().StringVar(&form.Password, "password", "", "password")
	return cmd
}

func newConfirmCommand(opts *rootOptions) *cobra.Command {
	form := todos.ConfirmForm{}

	cmd := &cobra.Command{
		Use:   "confirm",
		Short: "Confirm an account with the emailed code",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				action := a.auth.ConfirmUser(ctx, form)
				return report(cmd, action, fmt.Sprintf("confirmed %s", form.Username))
			})
		},
	}

	cmd.Flags().StringVar(&form.Username, "username", "", "username (the sign-up email)")
	cmd.Flags().StringVar(&form.Code, "code", "", "confirmation code")
	return cmd
}

func newLoginCommand(opts *rootOptions) *cobra.Command {
	form := todos.LoginForm{}

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and remember the session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				action := a.auth.LoginUser(ctx, form)
				return report(cmd, action, fmt.Sprintf("logged in as %s", action.Payload.Username))
			})
		},
	}

	cmd.Flags().StringVar(&form.Username, "username", "", "username (the sign-up email)")
	cmd.Flags().StringVar(&form.Password, "password", "", "password")
	return cmd
}

func newLogoutCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				action := a.auth.LogoutUser(ctx)
				return report(cmd, action, "logged out")
			})
		},
	}
}

func newWhoamiCommand(opts *rootOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWithApp(cmd, opts, func(ctx context.Context, a *app) error {
				renderSession(cmd.OutOrStdout(), a.auth.ValidateUser(ctx).Payload)
				return nil
			})
		},
	}
}
