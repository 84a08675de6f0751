package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
)

// FormatItems renders the item definitions of a schedule.
func FormatItems(entries []contract.ItemEntry) string {
	if len(entries) == 0 {
		return Dim("No items defined. Add one with: cadence item add <name>") + "\n"
	}
	t := NewTable(
		Column{Title: "NAME"},
		Column{Title: "KIND"},
		Column{Title: "SIZE", Right: true},
		Column{Title: "RATE", Right: true},
		Column{Title: "LINK"},
		Column{Title: "DETAIL"},
		Column{Title: "ASSIGNED"},
	)
	for _, e := range entries {
		link := Dim("--")
		if e.LinkID != "" {
			link = e.LinkID
		}
		assigned := Dim("pool")
		if e.Assigned {
			assigned = StyleGreen.Render("✔")
		}
		t.AddRow(
			Bold(e.Name),
			KindBadge(e.Kind),
			Bytes(e.SizeBytes),
			Rate(e.RateHz),
			link,
			itemDetail(e),
			assigned,
		)
	}
	return t.Render()
}

func itemDetail(e contract.ItemEntry) string {
	switch {
	case e.Kind == domain.ItemApplication && e.AppID != nil:
		return fmt.Sprintf("app %d", *e.AppID)
	case e.BitLength > 0:
		return fmt.Sprintf("%d bits", e.BitLength)
	default:
		return Dim("--")
	}
}

// FormatOptions renders the placement combinations for a rate. The option
// index is what `cadence assign --option` expects.
func FormatOptions(resp *contract.OptionsResponse) string {
	if len(resp.Options) == 0 {
		return Dim(fmt.Sprintf("No placements for %s.", Rate(resp.RateHz))) + "\n"
	}
	var b strings.Builder
	fmt.Fprintf(&b, "%s %s\n\n", Dim("placements for"), Rate(resp.RateHz))

	headers := []string{"OPTION", "KIND", "SLOTS", "SUB-SLOT"}
	rows := make([][]string, 0, len(resp.Options))
	for _, o := range resp.Options {
		sub := Dim("--")
		if len(o.SubSlots) > 0 {
			sub = Ints(o.SubSlots)
		}
		rows = append(rows, []string{
			strconv.Itoa(o.Index),
			o.Kind,
			Ints(o.Slots),
			sub,
		})
	}
	b.WriteString(RenderTable(headers, rows))
	return b.String()
}

// FormatMutation renders the effect of an assign, unassign or sub-slot edit.
func FormatMutation(verb string, resp *contract.MutationResponse) string {
	var b strings.Builder
	if resp.NeedsConfirmation() {
		b.WriteString(StyleYellow.Render("● Confirmation required: re-run with --yes to "+verb) + "\n")
		return b.String()
	}
	b.WriteString(StyleGreen.Render("✔ "+capitalize(verb)) + "\n")
	if len(resp.Placed) > 1 {
		fmt.Fprintf(&b, "%s %s\n", Dim("with link mates"), strings.Join(resp.Placed[1:], " "))
	}
	if len(resp.Removed) > 0 {
		fmt.Fprintf(&b, "%s %s\n", Dim("removed"), strings.Join(resp.Removed, " "))
	}
	if len(resp.Evacuated) > 0 {
		fmt.Fprintf(&b, "%s %s\n", StyleYellow.Render("returned to pool"), strings.Join(resp.Evacuated, " "))
	}
	return b.String()
}

func capitalize(s string) string {
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}
