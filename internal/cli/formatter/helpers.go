package formatter

import (
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"

	"github.com/alexanderramin/cadence/internal/domain"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
)

// RenderBox wraps content in a rounded-border box with an optional title.
func RenderBox(title string, content string) string {
	boxStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(ColorDim).
		PaddingLeft(2).
		PaddingRight(2).
		PaddingTop(1).
		PaddingBottom(1)

	if title != "" {
		titleRendered := StyleHeader.Render(strings.ToUpper(title))
		inner := titleRendered + "\n\n" + content
		return boxStyle.Render(inner)
	}

	return boxStyle.Render(content)
}

// RelativeDate returns a human-friendly relative date string.
func RelativeDate(t time.Time) string {
	return RelativeDateFrom(t, time.Now())
}

// RelativeDateFrom returns a human-friendly relative date string from a reference time.
func RelativeDateFrom(t time.Time, now time.Time) string {
	diff := t.Sub(now)
	days := int(math.Round(diff.Hours() / 24))

	switch {
	case days == 0:
		return "Today"
	case days == 1:
		return "Tomorrow"
	case days == -1:
		return "Yesterday"
	case days > 0 && days < 14:
		return fmt.Sprintf("In %dd", days)
	case days > 0 && days < 60:
		return fmt.Sprintf("In %dw", days/7)
	case days > 0:
		return fmt.Sprintf("In %dmo", days/30)
	case days < 0 && days > -14:
		return fmt.Sprintf("%dd ago", -days)
	case days < 0 && days > -60:
		return fmt.Sprintf("%dw ago", -days/7)
	default:
		return fmt.Sprintf("%dmo ago", -days/30)
	}
}

// Bytes renders an exact byte count with thousands separators, e.g. "4,096 B".
// Slot budgets are small and exact, so SI rounding would hide the numbers
// that matter.
func Bytes(n int) string {
	return humanize.Comma(int64(n)) + " B"
}

// Remaining renders a remaining-byte figure, negative values in red.
func Remaining(n int) string {
	if n < 0 {
		return StyleRed.Render(humanize.Comma(int64(n)))
	}
	return humanize.Comma(int64(n))
}

// Rate renders a rate in Hz without trailing zeros.
func Rate(hz float64) string {
	return strconv.FormatFloat(hz, 'f', -1, 64) + " Hz"
}

// KindBadge returns a short colored label for an item kind.
func KindBadge(k domain.ItemKind) string {
	switch k {
	case domain.ItemTelemetry:
		return StyleBlue.Render("TM")
	case domain.ItemApplication:
		return StylePurple.Render("APP")
	default:
		return StyleDim.Render("--")
	}
}

// Ints joins slot indices, e.g. "0, 4, 8".
func Ints(vals []int) string {
	if len(vals) == 0 {
		return StyleDim.Render("--")
	}
	parts := make([]string, len(vals))
	for i, v := range vals {
		parts[i] = strconv.Itoa(v)
	}
	return strings.Join(parts, ", ")
}

// TruncID returns the first 8 characters of an ID, dimmed.
func TruncID(id string) string {
	if len(id) > 8 {
		id = id[:8]
	}
	return StyleDim.Render(id)
}
