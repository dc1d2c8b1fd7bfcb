package commands

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/genlink-dev/genlink/internal/cli/api"
)

var dayNames = []string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// NewAvailabilityCmd creates the availability command group
func NewAvailabilityCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "availability",
		Short: "Show or change when you are available to help",
	}

	cmd.AddCommand(newAvailabilityShowCmd())
	cmd.AddCommand(newAvailabilitySetCmd())

	return cmd
}

func newAvailabilityShowCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "show",
		Short: "Show your availability settings",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			return runAvailabilityShow(rt)
		},
	}
}

func runAvailabilityShow(rt *runtime) error {
	ctx := context.Background()

	snap, err := requireSession(ctx, rt, dashboardPath)
	if err != nil {
		return err
	}
	user := snap.User

	if user.IsActive {
		fmt.Fprintln(rt.out, "Manual availability: on")
	} else {
		fmt.Fprintln(rt.out, "Manual availability: off")
	}
	if user.ScheduleActiveNow {
		fmt.Fprintln(rt.out, "Schedule: active right now")
	}

	if len(user.Availability) == 0 {
		fmt.Fprintln(rt.out, "No weekly schedule set.")
		return nil
	}

	fmt.Fprintln(rt.out, "Weekly schedule:")
	for _, slot := range user.Availability {
		state := "off"
		if slot.IsActive {
			state = "on"
		}
		fmt.Fprintf(rt.out, "  %s %s-%s (%s)\n", dayNames[slot.DayOfWeek], slot.StartTime, slot.EndTime, state)
	}

	return nil
}

func newAvailabilitySetCmd() *cobra.Command {
	var active, inactive bool
	var slotSpecs []string

	cmd := &cobra.Command{
		Use:   "set",
		Short: "Update your availability",
		Long: `Update manual availability and the weekly schedule.

Slots use the form DAY:START-END with DAY 0-6 (0 = Monday), e.g.:

  genlink availability set --slot 0:10:00-12:00 --slot 5:09:00-15:00`,
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := newRuntime()
			if err != nil {
				return err
			}
			if active && inactive {
				return fmt.Errorf("--active and --inactive are mutually exclusive")
			}
			var isActive *bool
			if active {
				isActive = &active
			}
			if inactive {
				f := false
				isActive = &f
			}
			return runAvailabilitySet(rt, isActive, slotSpecs)
		},
	}

	cmd.Flags().BoolVar(&active, "active", false, "Mark yourself available")
	cmd.Flags().BoolVar(&inactive, "inactive", false, "Mark yourself unavailable")
	cmd.Flags().StringArrayVar(&slotSpecs, "slot", nil, "Weekly slot as DAY:START-END (repeatable, replaces the schedule)")

	return cmd
}

func runAvailabilitySet(rt *runtime, isActive *bool, slotSpecs []string) error {
	ctx := context.Background()

	snap, err := requireSession(ctx, rt, dashboardPath)
	if err != nil {
		return err
	}

	req := api.AccountUpdateRequest{IsActive: isActive}
	if len(slotSpecs) > 0 {
		slots, err := parseSlots(slotSpecs)
		if err != nil {
			return err
		}
		req.Availability = slots
	}

	if _, err := rt.client.UpdateMe(ctx, snap.Token, req); err != nil {
		var verr *api.ValidationError
		if errors.As(err, &verr) {
			printValidationError(rt.out, verr)
			return fmt.Errorf("update failed")
		}
		return err
	}

	fmt.Fprintln(rt.out, "✓ Availability updated.")
	return nil
}

// parseSlots turns DAY:START-END specs into schedule slots
func parseSlots(specs []string) ([]api.AvailabilitySlot, error) {
	slots := make([]api.AvailabilitySlot, 0, len(specs))
	for _, spec := range specs {
		day, window, ok := strings.Cut(spec, ":")
		if !ok {
			return nil, fmt.Errorf("invalid slot %q, expected DAY:START-END", spec)
		}
		start, end, ok := strings.Cut(window, "-")
		if !ok {
			return nil, fmt.Errorf("invalid slot %q, expected DAY:START-END", spec)
		}
		dayNum, err := strconv.Atoi(day)
		if err != nil || dayNum < 0 || dayNum > 6 {
			return nil, fmt.Errorf("invalid slot %q, day must be 0-6 (0 = Monday)", spec)
		}
		slots = append(slots, api.AvailabilitySlot{
			DayOfWeek: dayNum,
			StartTime: start,
			EndTime:   end,
			IsActive:  true,
		})
	}
	return slots, nil
}
