package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/cadence/internal/cli/formatter"
	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/scheduler"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
)

// slotRow is one table row: a slot (sub 0) or one of its sub-slots.
type slotRow struct {
	slot int
	sub  int
}

type scheduleLoadedMsg struct {
	status *contract.StatusResponse
	err    error
}

type subSlotEditedMsg struct {
	verb string
	slot int
	resp *contract.MutationResponse
	err  error
}

type committedMsg struct{ err error }

type scheduleKeyMap struct {
	Up, Down, AddSub, DelSub, Commit, Refresh, Yes, No, Quit key.Binding
}

var scheduleKeys = scheduleKeyMap{
	Up:      key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
	Down:    key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
	AddSub:  key.NewBinding(key.WithKeys("+", "a"), key.WithHelp("a", "add sub-slot")),
	DelSub:  key.NewBinding(key.WithKeys("-", "x"), key.WithHelp("x", "delete sub-slot")),
	Commit:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "commit")),
	Refresh: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "refresh")),
	Yes:     key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "confirm")),
	No:      key.NewBinding(key.WithKeys("n", "esc"), key.WithHelp("n", "cancel")),
	Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
}

// scheduleView is an interactive slot table for one schedule. Sub-slot edits
// that would evacuate items are held as pending until confirmed with y.
type scheduleView struct {
	app      *App
	name     string
	table    table.Model
	rows     []slotRow
	status   *contract.StatusResponse
	loading  bool
	err      error
	flash    string
	pending  *subSlotEditedMsg
	quitting bool
}

func newScheduleView(app *App, name string) *scheduleView {
	t := table.New(
		table.WithColumns(scheduleColumns()),
		table.WithFocused(true),
		table.WithHeight(16),
	)
	return &scheduleView{app: app, name: name, table: t, loading: true}
}

func scheduleColumns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 4},
		{Title: "NAME", Width: 12},
		{Title: "ID", Width: 8},
		{Title: "FREE", Width: 8},
		{Title: "STATUS", Width: 6},
		{Title: "ITEMS", Width: 40},
	}
}

func (v *scheduleView) Init() tea.Cmd {
	return v.load()
}

func (v *scheduleView) load() tea.Cmd {
	svc, name := v.app.Schedules, v.name
	return func() tea.Msg {
		st, err := svc.Status(context.Background(), name)
		return scheduleLoadedMsg{status: st, err: err}
	}
}

func (v *scheduleView) editSubSlot(verb string, slot int, confirm scheduler.Confirmer) tea.Cmd {
	svc, name := v.app.Schedules, v.name
	edit := svc.AddSubSlot
	if verb == "delete sub-slot" {
		edit = svc.DeleteSubSlot
	}
	return func() tea.Msg {
		resp, err := edit(context.Background(), name, slot, confirm)
		return subSlotEditedMsg{verb: verb, slot: slot, resp: resp, err: err}
	}
}

func (v *scheduleView) commit() tea.Cmd {
	svc, name := v.app.Schedules, v.name
	return func() tea.Msg {
		return committedMsg{err: svc.Commit(context.Background(), name)}
	}
}

func (v *scheduleView) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		h := msg.Height - 8
		if h < 3 {
			h = 3
		}
		v.table.SetHeight(h)
		return v, nil

	case scheduleLoadedMsg:
		v.loading = false
		v.err = msg.err
		if msg.err == nil {
			v.status = msg.status
			v.setRows()
		}
		return v, nil

	case subSlotEditedMsg:
		if msg.err != nil {
			v.flash = msg.err.Error()
			return v, nil
		}
		if msg.resp.NeedsConfirmation() {
			v.pending = &msg
			return v, nil
		}
		v.flash = strings.TrimSpace(formatter.FormatMutation(msg.verb, msg.resp))
		return v, v.load()

	case committedMsg:
		if msg.err != nil {
			v.flash = msg.err.Error()
			return v, nil
		}
		v.flash = "Committed"
		return v, v.load()

	case tea.KeyMsg:
		return v.handleKey(msg)
	}
	return v, nil
}

func (v *scheduleView) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if v.pending != nil {
		p := v.pending
		switch {
		case key.Matches(msg, scheduleKeys.Yes):
			v.pending = nil
			return v, v.editSubSlot(p.verb, p.slot, func(scheduler.Prompt) bool { return true })
		case key.Matches(msg, scheduleKeys.No):
			v.pending = nil
			v.flash = "Cancelled"
		}
		return v, nil
	}

	switch {
	case key.Matches(msg, scheduleKeys.Quit):
		v.quitting = true
		return v, tea.Quit
	case key.Matches(msg, scheduleKeys.Refresh):
		v.loading = true
		return v, v.load()
	case key.Matches(msg, scheduleKeys.Commit):
		return v, v.commit()
	case key.Matches(msg, scheduleKeys.AddSub):
		if row, ok := v.selected(); ok {
			return v, v.editSubSlot("add sub-slot", row.slot, nil)
		}
		return v, nil
	case key.Matches(msg, scheduleKeys.DelSub):
		if row, ok := v.selected(); ok {
			return v, v.editSubSlot("delete sub-slot", row.slot, nil)
		}
		return v, nil
	}

	var cmd tea.Cmd
	v.table, cmd = v.table.Update(msg)
	return v, cmd
}

func (v *scheduleView) selected() (slotRow, bool) {
	i := v.table.Cursor()
	if i < 0 || i >= len(v.rows) {
		return slotRow{}, false
	}
	return v.rows[i], true
}

func (v *scheduleView) setRows() {
	v.rows = v.rows[:0]
	var rows []table.Row
	for _, s := range v.status.View.Slots {
		v.rows = append(v.rows, slotRow{slot: s.Index})
		rows = append(rows, table.Row{
			strconv.Itoa(s.Index),
			s.Name,
			s.Identifier,
			strconv.Itoa(s.BytesRemaining),
			string(s.Status),
			joinItemNames(s.Items),
		})
		for _, sub := range s.SubSlots {
			v.rows = append(v.rows, slotRow{slot: s.Index, sub: sub.Position})
			rows = append(rows, table.Row{
				"",
				"  " + sub.Name,
				sub.Identifier,
				strconv.Itoa(sub.BytesRemaining),
				string(sub.Status),
				joinItemNames(sub.Items),
			})
		}
	}
	v.table.SetRows(rows)
}

func joinItemNames(items []contract.ItemView) string {
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return strings.Join(names, " ")
}

func (v *scheduleView) View() string {
	if v.quitting {
		return ""
	}
	var b strings.Builder
	b.WriteString(formatter.Header(v.name) + "\n")

	switch {
	case v.err != nil:
		b.WriteString(formatter.StyleRed.Render("Error: "+v.err.Error()) + "\n")
		return b.String()
	case v.loading && v.status == nil:
		b.WriteString(formatter.Dim("Loading…") + "\n")
		return b.String()
	}

	view := v.status.View
	fmt.Fprintf(&b, "%s %d   %s %s\n",
		formatter.Dim("remaining"), view.TotalRemaining,
		formatter.Dim("unassigned"), joinItemNames(view.Unassigned))
	if v.status.Changed {
		b.WriteString(formatter.StyleYellow.Render("● uncommitted changes") + "\n")
	}
	b.WriteString(v.table.View() + "\n")

	if v.pending != nil {
		b.WriteString(formatter.StyleYellow.Render(
			fmt.Sprintf("%s on slot %d returns sub-slot items to the pool. Continue? (y/n)", v.pending.verb, v.pending.slot)) + "\n")
	} else if v.flash != "" {
		b.WriteString(v.flash + "\n")
	}

	help := []key.Binding{scheduleKeys.Up, scheduleKeys.Down, scheduleKeys.AddSub, scheduleKeys.DelSub, scheduleKeys.Commit, scheduleKeys.Refresh, scheduleKeys.Quit}
	parts := make([]string, len(help))
	for i, h := range help {
		parts[i] = h.Help().Key + " " + h.Help().Desc
	}
	b.WriteString(formatter.Dim(strings.Join(parts, " • ")))
	return b.String()
}

func newScheduleViewCmd(app *App) *cobra.Command {
	return &cobra.Command{
		Use:   "view [name]",
		Short: "Browse and edit a schedule interactively",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			name, err := app.nameFromArgs(args)
			if err != nil {
				return err
			}
			p := tea.NewProgram(newScheduleView(app, name),
				tea.WithContext(cmd.Context()),
				tea.WithInput(cmd.InOrStdin()),
				tea.WithOutput(cmd.OutOrStdout()),
			)
			_, err = p.Run()
			return err
		},
	}
}
