package commands

import (
	"context"
	"fmt"
	"sort"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

// NewStatsCmd creates the stats command
func NewStatsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "stats",
		Short: "Show portal-wide report statistics",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runStats(rt)
		},
	}
}

func runStats(rt *runtime) error {
	stats, err := rt.client.ReportStats(context.Background())
	if err != nil {
		return err
	}

	fmt.Fprintf(rt.out, "Total reports: %d\n", stats.TotalReports)
	if len(stats.ByType) == 0 {
		return nil
	}

	names := make([]string, 0, len(stats.ByType))
	for name := range stats.ByType {
		names = append(names, name)
	}
	sort.Strings(names)

	fmt.Fprintln(rt.out, "By category:")
	for _, name := range names {
		fmt.Fprintf(rt.out, "  %-20s %d\n", name, stats.ByType[name])
	}

	return nil
}

// NewVolunteersCmd creates the volunteers command
func NewVolunteersCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "volunteers",
		Short: "List volunteers who are available right now",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runVolunteers(rt)
		},
	}
}

func runVolunteers(rt *runtime) error {
	volunteers, err := rt.client.ActiveVolunteers(context.Background())
	if err != nil {
		return err
	}

	if len(volunteers) == 0 {
		fmt.Fprintln(rt.out, "No volunteers available right now.")
		return nil
	}

	w := tabwriter.NewWriter(rt.out, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "NAME\tCITY\tAVAILABLE")
	for _, v := range volunteers {
		how := "manual"
		if v.ScheduleActiveNow {
			how = "schedule"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\n", v.FullName, v.City, how)
	}
	w.Flush()

	return nil
}

// NewTypesCmd creates the types command
func NewTypesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "types",
		Short: "List report and availability categories",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runTypes(rt)
		},
	}
}

func runTypes(rt *runtime) error {
	ctx := context.Background()

	reportTypes, err := rt.client.ReportTypes(ctx)
	if err != nil {
		return err
	}
	availTypes, err := rt.client.AvailabilityTypes(ctx)
	if err != nil {
		return err
	}

	fmt.Fprintln(rt.out, "Report types:")
	for _, t := range reportTypes {
		fmt.Fprintf(rt.out, "  %d\t%s\t%s\n", t.ID, t.Name, t.Description)
	}

	fmt.Fprintln(rt.out, "\nAvailability types:")
	for _, t := range availTypes {
		fmt.Fprintf(rt.out, "  %d\t%s\t%s\n", t.ID, t.Name, t.Description)
	}

	return nil
}
