package cli

import (
	"fmt"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/spf13/cobra"
)

func newItemCmd(app *App) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "item",
		Short: "Manage the item definitions of a schedule",
	}

	cmd.AddCommand(
		newItemAddCmd(app),
		newItemListCmd(app),
		newItemRemoveCmd(app),
	)

	return cmd
}

func newItemAddCmd(app *App) *cobra.Command {
	var (
		size, bits, appID int
		rate              float64
		link              string
		application       bool
	)

	cmd := &cobra.Command{
		Use:   "add <name>",
		Short: "Define a telemetry variable or application",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}

			it := &domain.Item{
				Name:      args[0],
				Kind:      domain.ItemTelemetry,
				SizeBytes: size,
				RateHz:    rate,
				LinkID:    link,
			}
			if application || cmd.Flags().Changed("app-id") {
				if bits > 0 {
					return fmt.Errorf("--bits applies to telemetry variables only")
				}
				if appID < 0 || appID > 0xFFFF {
					return &domain.ValidationError{Rule: domain.RuleItem, Field: "item.app_id", Value: fmt.Sprint(appID), Msg: "must fit in 16 bits"}
				}
				it.Kind = domain.ItemApplication
				it.Application = &domain.ApplicationPayload{AppID: uint16(appID)}
			} else {
				it.Telemetry = &domain.TelemetryPayload{BitLength: bits}
			}

			if err := app.Items.Define(cmd.Context(), name, it); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Defined %s %s (%s at %s)\n",
				it.Kind, it.Name, formatter.Bytes(it.SizeBytes), formatter.Rate(it.RateHz))
			return nil
		},
	}

	cmd.Flags().IntVar(&size, "size", 0, "packed size in bytes (derived from --bits when omitted)")
	cmd.Flags().IntVar(&bits, "bits", 0, "bit length of a sub-byte telemetry field")
	cmd.Flags().Float64Var(&rate, "rate", 0, "transmission rate in Hz")
	cmd.Flags().StringVar(&link, "link", "", "link group the item travels with")
	cmd.Flags().BoolVar(&application, "app", false, "define an application instead of a telemetry variable")
	cmd.Flags().IntVar(&appID, "app-id", 0, "application identifier (implies --app)")
	_ = cmd.MarkFlagRequired("rate")

	return cmd
}

func newItemListCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List item definitions and whether they are placed",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			entries, err := app.Items.List(cmd.Context(), name)
			if err != nil {
				return err
			}
			fmt.Fprint(cmd.OutOrStdout(), formatter.FormatItems(entries))
			return nil
		},
	}
}

func newItemRemoveCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "rm <name>",
		Short: "Delete an item definition that is not placed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.scheduleName()
			if err != nil {
				return err
			}
			if err := app.Items.Delete(cmd.Context(), name, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Deleted item %s\n", args[0])
			return nil
		},
	}
}
