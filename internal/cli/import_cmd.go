package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newImportCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "import FILE",
		Short: "Create a schedule from a JSON layout file",
		Long: "Create a schedule, its item definitions, slot layout and\n" +
			"assignments from one JSON file. Nothing is written unless the\n" +
			"whole file applies cleanly.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			result, err := app.Import.ImportSchedule(cmd.Context(), args[0])
			if err != nil {
				return err
			}

			fmt.Fprintf(cmd.OutOrStdout(), "Imported schedule %s: %d items, %d assignments\n",
				result.Schedule.Name, result.ItemCount, result.AssignmentCount)
			return nil
		},
	}
}
