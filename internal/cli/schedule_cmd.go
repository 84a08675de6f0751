package cli

import (
	"fmt"
	"strconv"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
)

func newScheduleCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedule",
		Short: "Manage schedules",
	}

	cmd.AddCommand(
		newScheduleCreateCmd(app),
		newScheduleListCmd(app),
		newScheduleShowCmd(app),
		newScheduleStatusCmd(app),
		newScheduleCommitCmd(app),
		newScheduleRevertCmd(app),
		newScheduleCapacityCmd(app),
		newScheduleViewCmd(app),
		newScheduleRemoveCmd(app),
	)

	return cmd
}

func newScheduleCreateCmd(app *App) *cobra.Command {
	var slots int
	var rate float64
	var capacity string

	cmd := &cobra.Command{
		Use:   "create <name>",
		Short: "Create a schedule with a fixed cycle",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cycle := app.CycleDefault
			if cmd.Flags().Changed("slots") {
				cycle.SlotCount = slots
			}
			if cmd.Flags().Changed("rate") {
				cycle.SlotsPerSecond = rate
			}
			if cmd.Flags().Changed("capacity") {
				total, err := parseByteSize(capacity)
				if err != nil {
					return err
				}
				cycle.TotalCapacityBytes = total
			}

			info, err := app.Schedules.Create(cmd.Context(), contract.CreateScheduleRequest{Name: args[0], Cycle: cycle})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Created schedule %s (%d slots at %s, %s)\n",
				info.Name, info.Cycle.SlotCount,
				formatter.Rate(info.Cycle.SlotsPerSecond),
				formatter.Bytes(info.Cycle.TotalCapacityBytes))
			return nil
		},
	}

	cmd.Flags().IntVar(&slots, "slots", 0, "slots per cycle")
	cmd.Flags().Float64Var(&rate, "rate", 0, "slots per second")
	cmd.Flags().StringVar(&capacity, "capacity", "", "total bytes per cycle (accepts 4KiB, 8kB)")

	return cmd
}

func newScheduleListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List schedules",
		RunE: func(cmd *cobra.Command, args []string) error {
			infos, err := app.Schedules.List(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatScheduleList(infos))
			return nil
		},
	}
}

func newScheduleShowCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "show [name]",
		Short: "Show the slot layout of the working schedule",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.nameFromArgs(args)
			if err != nil {
				return err
			}
			view, err := app.Schedules.Open(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatSchedule(view))
			return nil
		},
	}
}

func newScheduleStatusCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "status [name]",
		Short: "Show the working schedule and its uncommitted changes",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.nameFromArgs(args)
			if err != nil {
				return err
			}
			resp, err := app.Schedules.Status(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatStatus(resp))
			return nil
		},
	}
}

func newScheduleCommitCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "commit",
		Short: "Make the working schedule the committed baseline",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			if err := app.Schedules.Commit(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Committed %s\n", name)
			return nil
		},
	}
}

func newScheduleRevertCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "revert",
		Short: "Discard uncommitted changes",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			if err := app.Schedules.Revert(cmd.Context(), name); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Reverted %s to its committed state\n", name)
			return nil
		},
	}
}

func newScheduleCapacityCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "capacity <bytes>",
		Short: "Change the total byte capacity of the cycle",
		Long: "Change the total byte capacity of the cycle. The value accepts size\n" +
			"suffixes such as 4KiB or 8kB; the per-slot budget is the floor of\n" +
			"total / slot count.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			total, err := parseByteSize(args[0])
			if err != nil {
				return err
			}
			if err := app.Schedules.ChangeCapacity(cmd.Context(), name, total); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Capacity of %s set to %s\n", name, formatter.Bytes(total))
			return nil
		},
	}
}

func newScheduleRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete a schedule and everything in it",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := app.Schedules.Delete(cmd.Context(), args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted schedule %s\n", args[0])
			return nil
		},
	}
}

// nameFromArgs prefers a positional schedule name over --schedule.
func (app *App) nameFromArgs(args []string) (string, error) {
	if len(args) == 1 {
		return args[0], nil
	}
	return app.scheduleName()
}

// parseByteSize accepts plain byte counts and humanized sizes like "4KiB".
func parseByteSize(s string) (int, error) {
	if n, err := strconv.Atoi(s); err == nil {
		if n < 0 {
			return 0, &domain.ValidationError{Rule: domain.RuleCapacity, Field: "capacity", Value: s, Msg: "must not be negative"}
		}
		return n, nil
	}
	n, err := humanize.ParseBytes(s)
	if err != nil {
		return 0, &domain.ValidationError{Rule: domain.RuleCapacity, Field: "capacity", Value: s, Msg: "is not a byte size"}
	}
	return int(n), nil
}
