package formatter

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/alexanderramin/cadence/internal/contract"
	"github.com/alexanderramin/cadence/internal/domain"
)

const usageBarWidth = 10

// FormatScheduleList renders the schedules table.
func FormatScheduleList(infos []*domain.ScheduleInfo) string {
	if len(infos) == 0 {
		return Dim("No schedules. Create one with: cadence schedule create <name>") + "\n"
	}
	t := NewTable(
		Column{Title: "NAME"},
		Column{Title: "SLOTS", Right: true},
		Column{Title: "RATE", Right: true},
		Column{Title: "CAPACITY", Right: true},
		Column{Title: "UPDATED"},
	)
	for _, s := range infos {
		t.AddRow(
			Bold(s.Name),
			strconv.Itoa(s.Cycle.SlotCount),
			Rate(s.Cycle.SlotsPerSecond),
			Bytes(s.Cycle.TotalCapacityBytes),
			Dim(RelativeDate(s.UpdatedAt)),
		)
	}
	return t.Render()
}

// FormatSchedule renders the slot layout of a schedule: one row per slot,
// followed by indented rows for its sub-slots.
func FormatSchedule(v *contract.ScheduleView) string {
	var b strings.Builder

	b.WriteString(Header(v.Name) + "\n")
	fmt.Fprintf(&b, "%s %d slots at %s, period %ss, %s per slot",
		Dim("cycle"),
		v.Cycle.SlotCount,
		Rate(v.Cycle.SlotsPerSecond),
		strconv.FormatFloat(v.Period, 'f', -1, 64),
		Bytes(v.PerSlotBytes),
	)
	if v.LeftoverBytes > 0 {
		fmt.Fprintf(&b, ", %s leftover", Bytes(v.LeftoverBytes))
	}
	b.WriteString("\n\n")

	t := NewTable(
		Column{Title: "#", Right: true},
		Column{Title: "NAME", Alert: true},
		Column{Title: "ID"},
		Column{Title: "USAGE"},
		Column{Title: "FREE", Right: true},
		Column{Title: "STATUS"},
		Column{Title: "ITEMS"},
	)
	t.Nest = 1
	for _, s := range v.Slots {
		used := s.CapacityBytes - s.BytesRemaining
		t.AddRow(
			strconv.Itoa(s.Index),
			s.Name,
			identifier(s.Identifier),
			RenderUsage(used, s.CapacityBytes, s.Status, usageBarWidth),
			Remaining(s.BytesRemaining),
			StatusIndicator(s.Status),
			itemNames(s.Items),
		)
		if s.Status == domain.CapacityOver {
			t.MarkOver()
		}
		for _, sub := range s.SubSlots {
			subUsed := s.CapacityBytes - sub.BytesRemaining
			t.AddSubRow(
				"",
				sub.Name,
				identifier(sub.Identifier),
				RenderUsage(subUsed, s.CapacityBytes, sub.Status, usageBarWidth),
				Remaining(sub.BytesRemaining),
				StatusIndicator(sub.Status),
				itemNames(sub.Items),
			)
			if sub.Status == domain.CapacityOver {
				t.MarkOver()
			}
		}
	}
	b.WriteString(t.Render())

	b.WriteString("\n")
	fmt.Fprintf(&b, "%s %s\n", Dim("remaining"), Remaining(v.TotalRemaining))
	if len(v.Unassigned) > 0 {
		fmt.Fprintf(&b, "%s %s\n", Dim("unassigned"), itemNames(v.Unassigned))
	}
	return b.String()
}

// FormatStatus renders the working schedule together with its pending changes.
func FormatStatus(resp *contract.StatusResponse) string {
	var b strings.Builder
	b.WriteString(FormatSchedule(&resp.View))
	b.WriteString("\n")

	if len(resp.OverSubscribed) > 0 {
		b.WriteString(StyleRed.Render("Over-subscribed slots: "+Ints(resp.OverSubscribed)) + "\n")
	}
	if !resp.Changed {
		b.WriteString(StyleGreen.Render("✔ No uncommitted changes") + "\n")
	} else {
		b.WriteString(StyleYellow.Render("● Uncommitted changes") + "\n")
		if resp.Diff != "" {
			b.WriteString(Dim(strings.TrimRight(resp.Diff, "\n")) + "\n")
		}
	}
	fmt.Fprintf(&b, "%s %s\n", Dim("fingerprint"), resp.Fingerprint)
	return b.String()
}

func identifier(id string) string {
	if id == "" {
		return Dim("--")
	}
	return id
}

func itemNames(items []contract.ItemView) string {
	if len(items) == 0 {
		return Dim("--")
	}
	names := make([]string, len(items))
	for i, it := range items {
		names[i] = it.Name
	}
	return strings.Join(names, " ")
}
