package cli

import (
	"os"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-isatty"
)

// StdinIsTerminal reports whether stdin is attached to a terminal.
func StdinIsTerminal() bool {
	return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
}

// HuhPrompt asks for confirmation with a themed yes/no form.
func HuhPrompt(p scheduler.Prompt) (bool, error) {
	var ok bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(p.String()).
				Affirmative("Continue").
				Negative("Cancel").
				Value(&ok),
		),
	).WithTheme(cadenceHuhTheme()).WithShowHelp(false)
	if err := form.Run(); err != nil {
		return false, err
	}
	return ok, nil
}

// confirmer picks how destructive sub-slot edits are approved: --yes
// approves outright, an interactive session prompts, and anything else
// leaves the edit pending.
func (app *App) confirmer() scheduler.Confirmer {
	if app.opts.Yes {
		return func(scheduler.Prompt) bool { return true }
	}
	if app.Prompt == nil || app.IsInteractive == nil || !app.IsInteractive() {
		return nil
	}
	return func(p scheduler.Prompt) bool {
		ok, err := app.Prompt(p)
		return err == nil && ok
	}
}

func cadenceHuhTheme() *huh.Theme {
	t := huh.ThemeBase()

	t.Focused.Title = lipgloss.NewStyle().Foreground(formatter.ColorHeader).Bold(true)
	t.Focused.FocusedButton = lipgloss.NewStyle().Foreground(formatter.ColorFg).Background(formatter.ColorHeader).Padding(0, 1)
	t.Focused.BlurredButton = lipgloss.NewStyle().Foreground(formatter.ColorDim).Padding(0, 1)
	t.Focused.Description = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	t.Blurred.Title = lipgloss.NewStyle().Foreground(formatter.ColorDim)

	return t
}
