package commands

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/genlink-dev/genlink/internal/cli/api"
)

// NewRegisterCmd creates the register command
func NewRegisterCmd() *cobra.Command {
	var req api.RegisterRequest
	var password string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Create a volunteer account",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			req.Password = password
			return runRegister(rt, req)
		},
	}

	cmd.Flags().StringVar(&req.Email, "email", "", "Email address")
	cmd.Flags().StringVar(&password, "password", "", "Password (min 8 characters, letters and digits)")
	cmd.Flags().StringVar(&req.FullName, "name", "", "Full name")
	cmd.Flags().StringVar(&req.Phone, "phone", "", "Phone number (9 digits)")
	cmd.Flags().StringVar(&req.City, "city", "", "City")
	cmd.Flags().IntVar(&req.AvailabilityType, "availability-type", 1, "Availability type ID (see 'genlink types')")

	return cmd
}

func runRegister(rt *runtime, req api.RegisterRequest) error {
	if req.Email == "" {
		req.Email = os.Getenv("GENLINK_EMAIL")
	}
	if req.Password == "" {
		var err error
		req.Password, err = rt.prompt("Password: ")
		if err != nil {
			return err
		}
	}

	account, err := rt.client.Register(context.Background(), req)
	if err != nil {
		var verr *api.ValidationError
		if errors.As(err, &verr) {
			printValidationError(rt.out, verr)
			return fmt.Errorf("registration failed")
		}
		if errors.Is(err, api.ErrConflict) {
			return fmt.Errorf("an account with this email already exists")
		}
		return fmt.Errorf("registration failed: %w", err)
	}

	fmt.Fprintln(rt.out, "✓ Account created!")
	fmt.Fprintf(rt.out, "  %s (%s)\n", account.FullName, account.Email)
	fmt.Fprintln(rt.out, "\nSign in with: genlink login --email", account.Email)

	return nil
}
