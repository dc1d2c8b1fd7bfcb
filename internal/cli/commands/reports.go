package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/genlink-dev/genlink/internal/cli/api"
	"github.com/genlink-dev/genlink/internal/cli/auth"
	"github.com/genlink-dev/genlink/internal/cli/guard"
	"github.com/genlink-dev/genlink/internal/cli/nav"
	"github.com/genlink-dev/genlink/internal/logger"
)

const (
	loginPath     = "/wolontariusz/login"
	dashboardPath = "/wolontariusz/panel"
	browsePath    = "/wolontariusz/zgloszenia"
)

// NewReportsCmd creates the reports command group
func NewReportsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:     "reports",
		Aliases: []string{"zgloszenia"},
		Short:   "Browse and manage help requests",
	}

	cmd.AddCommand(newReportsListCmd())
	cmd.AddCommand(newReportsShowCmd())
	cmd.AddCommand(newReportsAcceptCmd())
	cmd.AddCommand(newReportsMineCmd())
	cmd.AddCommand(newReportsCompleteCmd())
	cmd.AddCommand(newReportsCancelCmd())
	cmd.AddCommand(newReportsHistoryCmd())

	return cmd
}

func newReportsListCmd() *cobra.Command {
	var filter api.ReportFilter

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List open help requests",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runReportsList(rt, filter)
		},
	}

	cmd.Flags().StringVar(&filter.City, "city", "", "Filter by city")
	cmd.Flags().IntVar(&filter.ReportTypeID, "type", 0, "Filter by report type ID")
	cmd.Flags().StringVar(&filter.Search, "search", "", "Search in problem description and name")
	cmd.Flags().IntVar(&filter.Limit, "limit", 0, "Maximum number of results")
	cmd.Flags().IntVar(&filter.Skip, "skip", 0, "Number of results to skip")

	return cmd
}

func runReportsList(rt *runtime, filter api.ReportFilter) error {
	ctx := context.Background()

	snap, err := requireSession(ctx, rt, browsePath)
	if err != nil {
		return err
	}

	// Browsing is gated the same way the portal gates it: a volunteer
	// with a report in progress lands on their dashboard instead.
	router := nav.NewRouter(browsePath)
	reportGuard := guard.NewNoActiveReportGuard(router, logger.GetLogger(), loginPath, dashboardPath)
	if reportGuard.Evaluate(snap) == guard.DecisionRedirected {
		fmt.Fprintln(rt.out, "You already have a report in progress. Finish or cancel it first.")
		fmt.Fprintln(rt.out)
		return runReportsMine(rt)
	}

	reports, err := rt.client.ListReports(ctx, snap.Token, filter)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(rt.out, "No open help requests.")
		return nil
	}

	w := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCITY\tPROBLEM\tREPORTED")
	for _, r := range reports {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\t%s\n",
			r.ID, r.FullName, r.City, truncate(r.Problem, 48), r.ReportedAt)
	}
	w.Flush()

	return nil
}

func newReportsShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a help request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("report ID must be a number")
			}
			return runReportsShow(rt, id)
		},
	}
}

func runReportsShow(rt *runtime, id int) error {
	ctx := context.Background()

	snap, err := requireSession(ctx, rt, browsePath)
	if err != nil {
		return err
	}

	report, err := rt.client.GetReport(ctx, snap.Token, id)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("report #%d not found", id)
		}
		return err
	}

	printReport(rt, report)
	return nil
}

func newReportsAcceptCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "accept <id>",
		Short: "Take on a help request",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			id, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("report ID must be a number")
			}
			return runReportsAccept(rt, id)
		},
	}
}

func runReportsAccept(rt *runtime, id int) error {
	ctx := context.Background()

	snap, err := requireSession(ctx, rt, browsePath)
	if err != nil {
		return err
	}

	report, err := rt.client.AcceptReport(ctx, snap.Token, id)
	if err != nil {
		if errors.Is(err, api.ErrConflict) {
			return fmt.Errorf("you already have a report in progress, or this one was just taken")
		}
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("report #%d not found", id)
		}
		return err
	}

	fmt.Fprintf(rt.out, "✓ Report #%d accepted.\n", report.ID)
	fmt.Fprintf(rt.out, "  Contact %s at %s\n", report.FullName, report.Phone)

	return nil
}

func newReportsMineCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "mine",
		Short: "Show the report you are working on",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runReportsMine(rt)
		},
	}
}

func runReportsMine(rt *runtime) error {
	ctx := context.Background()

	snap, err := requireSession(ctx, rt, dashboardPath)
	if err != nil {
		return err
	}

	report, err := rt.client.MyAcceptedReport(ctx, snap.Token)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			fmt.Fprintln(rt.out, "No report in progress.")
			return nil
		}
		return err
	}

	printReport(rt, report)
	return nil
}

func newReportsCompleteCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "complete",
		Short: "Mark your active report as resolved",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runReportsComplete(rt)
		},
	}
}

func runReportsComplete(rt *runtime) error {
	ctx := context.Background()

	snap, err := requireSession(ctx, rt, dashboardPath)
	if err != nil {
		return err
	}

	report, err := rt.client.CompleteActiveReport(ctx, snap.Token)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("no report in progress")
		}
		return err
	}

	fmt.Fprintf(rt.out, "✓ Report #%d completed. Thank you!\n", report.ID)

	if err := rt.manager.RefreshProfile(ctx); err == nil {
		if user := rt.manager.Snapshot().User; user != nil {
			fmt.Fprintf(rt.out, "  Resolved cases: %d, GenPoints: %d\n", user.ResolvedCases, user.GenPoints)
		}
	}

	return nil
}

func newReportsCancelCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "cancel",
		Short: "Return your active report to the open pool",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runReportsCancel(rt)
		},
	}
}

func runReportsCancel(rt *runtime) error {
	ctx := context.Background()

	snap, err := requireSession(ctx, rt, dashboardPath)
	if err != nil {
		return err
	}

	report, err := rt.client.CancelActiveReport(ctx, snap.Token)
	if err != nil {
		if errors.Is(err, api.ErrNotFound) {
			return fmt.Errorf("no report in progress")
		}
		return err
	}

	fmt.Fprintf(rt.out, "✓ Report #%d returned to the open pool.\n", report.ID)
	return nil
}

func newReportsHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List reports you have resolved",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runReportsHistory(rt)
		},
	}
}

func runReportsHistory(rt *runtime) error {
	ctx := context.Background()

	snap, err := requireSession(ctx, rt, dashboardPath)
	if err != nil {
		return err
	}

	reports, err := rt.client.MyCompletedReports(ctx, snap.Token)
	if err != nil {
		return err
	}

	if len(reports) == 0 {
		fmt.Fprintln(rt.out, "No resolved reports yet.")
		return nil
	}

	w := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tCITY\tCOMPLETED")
	for _, r := range reports {
		fmt.Fprintf(w, "%d\t%s\t%s\t%s\n", r.ID, r.FullName, r.City, r.CompletedAt)
	}
	w.Flush()

	return nil
}

// requireSession bootstraps the session for a protected path and fails
// with a sign-in hint when there is none.
func requireSession(ctx context.Context, rt *runtime, path string) (auth.Snapshot, error) {
	rt.manager.Bootstrap(ctx, path)
	snap := rt.manager.Snapshot()
	if !snap.IsAuthenticated {
		return snap, fmt.Errorf("not signed in. Run 'genlink login' first")
	}
	return snap, nil
}

func printReport(rt *runtime, r *api.Report) {
	fmt.Fprintf(rt.out, "Report #%d (%s)\n", r.ID, r.Status)
	fmt.Fprintf(rt.out, "  Name:     %s\n", r.FullName)
	fmt.Fprintf(rt.out, "  Phone:    %s\n", r.Phone)
	if r.Age != nil {
		fmt.Fprintf(rt.out, "  Age:      %d\n", *r.Age)
	}
	fmt.Fprintf(rt.out, "  Address:  %s, %s\n", r.Address, r.City)
	fmt.Fprintf(rt.out, "  Problem:  %s\n", r.Problem)
	if r.ReportDetails != "" {
		fmt.Fprintf(rt.out, "  Details:  %s\n", r.ReportDetails)
	}
	fmt.Fprintf(rt.out, "  Reported: %s\n", r.ReportedAt)
	if r.AcceptedAt != "" {
		fmt.Fprintf(rt.out, "  Accepted: %s\n", r.AcceptedAt)
	}
	if r.CompletedAt != "" {
		fmt.Fprintf(rt.out, "  Completed: %s\n", r.CompletedAt)
	}
}

func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max-1]) + "…"
}
