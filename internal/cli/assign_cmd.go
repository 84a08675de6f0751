package cli

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/spf13/cobra"
)

func newOptionsCmd(app *App) *cobra.Command {
	var item string
	var rate float64

	cmd := &cobra.Command{
		Use:   "options",
		Short: "List the placements available for a rate",
		Long: "List the slot or sub-slot combinations an item of the given rate can\n" +
			"be placed into. Pass --item to use the rate of a defined item.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			if item == "" && !cmd.Flags().Changed("rate") {
				return fmt.Errorf("one of --item or --rate is required")
			}
			resp, err := app.Schedules.Options(cmd.Context(), contract.OptionsRequest{
				Schedule: name,
				Item:     item,
				RateHz:   rate,
			})
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatOptions(resp))
			return nil
		},
	}

	cmd.Flags().StringVar(&item, "item", "", "use the rate of this item")
	cmd.Flags().Float64Var(&rate, "rate", 0, "rate in Hz")

	return cmd
}

func newAssignCmd(app *App) *cobra.Command {
	var option int
	var targets []string

	cmd := &cobra.Command{
		Use:   "assign <item>",
		Short: "Place a pool item into the schedule",
		Long: "Place a pool item either at one of the combinations listed by\n" +
			"`cadence options` (--option) or at explicit targets (--target).\n" +
			"A target is a slot index, or slot.sub for a 1-based sub-slot.",
		Example: "  cadence assign VAR1 --option 2\n  cadence assign APP1 --target 0 --target 4.2",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			req := contract.AssignRequest{Schedule: name, Item: args[0]}
			hasOption := cmd.Flags().Changed("option")
			switch {
			case hasOption && len(targets) > 0:
				return fmt.Errorf("--option and --target are mutually exclusive")
			case hasOption:
				req.Option = &option
			case len(targets) > 0:
				for _, raw := range targets {
					t, err := parseTarget(raw)
					if err != nil {
						return err
					}
					req.Targets = append(req.Targets, t)
				}
			default:
				return fmt.Errorf("one of --option or --target is required")
			}

			resp, err := app.Schedules.Assign(cmd.Context(), req)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation("assigned "+args[0], resp))
			return nil
		},
	}

	cmd.Flags().IntVar(&option, "option", 0, "combination index from `cadence options`")
	cmd.Flags().StringArrayVar(&targets, "target", nil, "slot or slot.sub to place into (repeatable)")

	return cmd
}

func newUnassignCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "unassign <slot> <item>...",
		Short: "Return items in a slot to the pool",
		Long: "Remove items from a slot and its sub-slots. Full-rate items and link\n" +
			"groups are removed from every slot they occupy.",
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			slot, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid slot index %q", args[0])
			}
			resp, err := app.Schedules.Unassign(cmd.Context(), name, slot, args[1:])
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation("unassigned", resp))
			return nil
		},
	}
}

// parseTarget reads "3" as slot 3 and "3.2" as the second sub-slot of slot 3.
func parseTarget(raw string) (contract.TargetRef, error) {
	slotPart, subPart, hasSub := strings.Cut(strings.TrimSpace(raw), ".")
	slot, err := strconv.Atoi(slotPart)
	if err != nil {
		return contract.TargetRef{}, fmt.Errorf("invalid target %q: slot must be an integer", raw)
	}
	t := contract.TargetRef{Slot: slot}
	if hasSub {
		sub, err := strconv.Atoi(subPart)
		if err != nil || sub < 1 {
			return contract.TargetRef{}, fmt.Errorf("invalid target %q: sub-slot must be a positive integer", raw)
		}
		t.Sub = sub
	}
	return t, nil
}
