package commands

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

// NewWhoamiCmd creates the whoami command
func NewWhoamiCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "whoami",
		Short: "Show the signed-in volunteer profile",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runWhoami(rt)
		},
	}
}

func runWhoami(rt *runtime) error {
	ctx := context.Background()

	rt.manager.Bootstrap(ctx, "/wolontariusz/panel")
	snap := rt.manager.Snapshot()
	if !snap.IsAuthenticated {
		return fmt.Errorf("not signed in. Run 'genlink login' first")
	}

	user := snap.User
	fmt.Fprintf(rt.out, "%s <%s>\n", user.FullName, user.Email)
	if user.City != "" {
		fmt.Fprintf(rt.out, "  City:            %s\n", user.City)
	}
	if user.Phone != "" {
		fmt.Fprintf(rt.out, "  Phone:           %s\n", user.Phone)
	}
	fmt.Fprintf(rt.out, "  Resolved cases:  %d (%d this year)\n", user.ResolvedCases, user.ResolvedCasesThisYear)
	fmt.Fprintf(rt.out, "  GenPoints:       %d\n", user.GenPoints)
	if user.ActiveReport != nil {
		fmt.Fprintf(rt.out, "  Active report:   #%d\n", *user.ActiveReport)
	} else {
		fmt.Fprintln(rt.out, "  Active report:   none")
	}
	if user.IsActiveNow {
		fmt.Fprintln(rt.out, "  Status:          available now")
	} else {
		fmt.Fprintln(rt.out, "  Status:          unavailable")
	}

	return nil
}
