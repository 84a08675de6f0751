package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/spf13/cobra"
)

func newSlotCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slot",
		Short: "Edit slot names, identifiers and sub-slots",
	}

	cmd.AddCommand(
		newSlotRenameCmd(app),
		newSlotIDCmd(app),
		newSlotAddSubCmd(app),
		newSlotDelSubCmd(app),
	)

	return cmd
}

func newSlotRenameCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rename <slot[.sub]> <name>",
		Short: "Rename a slot or sub-slot",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			t, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			if err := app.Schedules.Rename(cmd.Context(), name, t, args[1]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Renamed %s to %s\n", args[0], args[1])
			return nil
		},
	}
}

func newSlotIDCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "id <slot[.sub]> <identifier>",
		Short: "Set the hex identifier of a slot or sub-slot",
		Long: "Set the identifier of a slot or sub-slot. Identifiers are hex\n" +
			"(0x1F or 1F) and unique across the schedule. Pass \"\" to clear it.",
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			t, err := parseTarget(args[0])
			if err != nil {
				return err
			}
			if err := app.Schedules.SetIdentifier(cmd.Context(), name, t, args[1]); err != nil {
				return err
			}
			if args[1] == "" {
				fmt.Fprintf(cmd.OutOrStdout(), "Cleared identifier of %s\n", args[0])
			} else {
				fmt.Fprintf(cmd.OutOrStdout(), "Identifier of %s set to %s\n", args[0], args[1])
			}
			return nil
		},
	}
}

func newSlotAddSubCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "add-sub <slot>",
		Short: "Add a sub-slot to a slot",
		Long: "Add a sub-slot to a slot. Items already placed in its sub-slots no\n" +
			"longer line up and return to the pool, so a populated slot asks for\n" +
			"confirmation (or --yes).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubSlotEdit(cmd, app, args[0], "add sub-slot", app.Schedules.AddSubSlot)
		},
	}
}

func newSlotDelSubCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "del-sub <slot>",
		Short: "Delete the last sub-slot of a slot",
		Long: "Delete the last sub-slot of a slot. Sub-slot items return to the\n" +
			"pool, so a populated slot asks for confirmation (or --yes).",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runSubSlotEdit(cmd, app, args[0], "delete sub-slot", app.Schedules.DeleteSubSlot)
		},
	}
}

type subSlotEdit func(ctx context.Context, name string, slot int, confirm scheduler.Confirmer) (*contract.MutationResponse, error)

func runSubSlotEdit(cmd *cobra.Command, app *App, rawSlot, verb string, edit subSlotEdit) error {
	name, err := app.scheduleName()
	if err != nil {
		return err
	}
	slot, err := strconv.Atoi(rawSlot)
	if err != nil {
		return fmt.Errorf("invalid slot index %q", rawSlot)
	}
	resp, err := edit(cmd.Context(), name, slot, app.confirmer())
	if err != nil {
		return err
	}
	fmt.Fprint(cmd.OutOrStdout(), formatter.FormatMutation(verb, resp))
	return nil
}
