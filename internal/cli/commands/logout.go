package commands

import (
	"fmt"

	"github.com/spf13/cobra"
)

// NewLogoutCmd creates the logout command
func NewLogoutCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Sign out and forget the stored session",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runLogout(rt)
		},
	}
}

func runLogout(rt *runtime) error {
	rt.manager.Logout()
	fmt.Fprintln(rt.out, "✓ Logged out.")
	return nil
}
