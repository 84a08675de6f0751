package cli

import (
	"context"
	"errors"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/alexanderramin/cadence/internal/service"
	"github.com/spf13/cobra"
)

// GlobalOptions are the persistent flags shared by every command.
type GlobalOptions struct {
	Schedule    string
	ConfigPath  string
	MetricsFile string
	Yes         bool
}

// App holds references to all service interfaces used by CLI commands.
type App struct {
	Schedules service.ScheduleService
	Items     service.ItemService
	Import    service.ImportService

	// DefaultSchedule is used when --schedule is not given.
	DefaultSchedule string

	// CycleDefault fills the cycle fields `schedule create` was not given.
	CycleDefault domain.Cycle

	// Bootstrap, when set, wires the services from the global flags before
	// any command runs. Tests leave it nil and set the services directly.
	Bootstrap func(ctx context.Context, app *App, opts GlobalOptions) error

	// IsInteractive reports whether prompts can be shown.
	IsInteractive func() bool

	// Prompt asks the user to approve a destructive sub-slot change.
	Prompt func(p scheduler.Prompt) (bool, error)

	opts GlobalOptions
}

var errNoSchedule = errors.New("no schedule selected: pass --schedule or set CADENCE_SCHEDULE")

// NewRootCmd creates the top-level "cadence" command and registers all
// subcommands against the provided App.
func NewRootCmd(app *App) *cobra.Command {
	root := &cobra.Command{
		Use:           "cadence",
		Short:         "Slot scheduler for cyclic downlink frames",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if app.Bootstrap == nil {
				return nil
			}
			return app.Bootstrap(cmd.Context(), app, app.opts)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVarP(&app.opts.Schedule, "schedule", "s", "", "schedule to operate on")
	pf.StringVar(&app.opts.ConfigPath, "config", "", "config file (default ~/.cadence/config.yaml)")
	pf.StringVar(&app.opts.MetricsFile, "metrics-file", "", "write Prometheus metrics to this file on exit")
	pf.BoolVarP(&app.opts.Yes, "yes", "y", false, "approve sub-slot changes that evacuate items")

	root.AddCommand(
		newScheduleCmd(app),
		newItemCmd(app),
		newOptionsCmd(app),
		newAssignCmd(app),
		newUnassignCmd(app),
		newSlotCmd(app),
		newImportCmd(app),
	)

	return root
}

// scheduleName resolves the schedule a command operates on.
func (app *App) scheduleName() (string, error) {
	if app.opts.Schedule != "" {
		return app.opts.Schedule, nil
	}
	if app.DefaultSchedule != "" {
		return app.DefaultSchedule, nil
	}
	return "", errNoSchedule
}
