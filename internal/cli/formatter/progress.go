package formatter

import (
	"fmt"
	"strings"

	"github.com/alexanderramin/cadence/internal/domain"
)

const (
	filledBlock = "█"
	emptyBlock  = "░"
)

// RenderUsage renders a slot fill bar like [████░░░░]  45%.
// The bar is colored by capacity status: green with room left, yellow when
// exactly full, red when over-subscribed. Over-subscribed bars are drawn full.
func RenderUsage(used, capacity int, st domain.CapacityStatus, width int) string {
	if width < 2 {
		width = 2
	}
	pct := 0.0
	if capacity > 0 {
		pct = float64(used) / float64(capacity)
	} else if used > 0 {
		pct = 1
	}
	shown := pct
	if shown < 0 {
		shown = 0
	}
	if shown > 1 {
		shown = 1
	}

	filled := int(shown * float64(width))
	if filled > width {
		filled = width
	}
	bar := strings.Repeat(filledBlock, filled) + strings.Repeat(emptyBlock, width-filled)

	pctStr := fmt.Sprintf("%4.0f%%", pct*100)
	return fmt.Sprintf("[%s] %s", StatusColor(st).Render(bar), pctStr)
}
