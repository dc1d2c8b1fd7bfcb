package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genlink-dev/genlink/internal/cli/api"
	"github.com/genlink-dev/genlink/internal/cli/session"
)

// NewLoginCmd creates the login command
func NewLoginCmd() *cobra.Command {
	var email, password string
	var remember bool

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Sign in to GenLink",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runLogin(rt, email, password, remember, cmd.Flags().Changed("remember"))
		},
	}

	cmd.Flags().StringVar(&email, "email", "", "Email address (or set GENLINK_EMAIL)")
	cmd.Flags().StringVar(&password, "password", "", "Password (or set GENLINK_PASSWORD, will prompt if not provided)")
	cmd.Flags().BoolVar(&remember, "remember", false, "Keep the session across terminal sessions")

	return cmd
}

func runLogin(rt *runtime, email, password string, remember, rememberSet bool) error {
	// Environment fallbacks, useful for CI
	if email == "" {
		email = os.Getenv("GENLINK_EMAIL")
	}
	if password == "" {
		password = os.Getenv("GENLINK_PASSWORD")
	}

	if email == "" {
		return fmt.Errorf("email is required (use --email flag or GENLINK_EMAIL env var)")
	}

	if password == "" {
		var err error
		password, err = rt.prompt("Password: ")
		if err != nil {
			return err
		}
	}

	// When --remember was not given, reuse the choice from last time
	if !rememberSet {
		remember = rt.store.PreferredPersistence() == session.PersistenceLocal
	}

	ctx := context.Background()
	loginResp, err := rt.client.Login(ctx, email, password)
	if err != nil {
		if errors.Is(err, api.ErrInvalidCredentials) {
			return fmt.Errorf("incorrect email or password")
		}
		return fmt.Errorf("login failed: %w", err)
	}

	if err := rt.manager.Login(ctx, loginResp.AccessToken, remember); err != nil {
		return fmt.Errorf("login failed: %w", err)
	}

	snap := rt.manager.Snapshot()
	fmt.Fprintln(rt.out, "✓ Login successful!")
	if snap.User != nil {
		fmt.Fprintf(rt.out, "  Signed in as %s (%s)\n", snap.User.FullName, snap.User.Email)
	}
	if remember {
		fmt.Fprintln(rt.out, "  Session will be remembered on this machine.")
	} else {
		fmt.Fprintln(rt.out, "  Session is scoped to this terminal.")
	}

	return nil
}
