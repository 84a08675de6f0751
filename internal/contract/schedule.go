package contract

import (
	"slices"

	"github.com/alexanderramin/cadence/internal/domain"
)

// CreateScheduleRequest describes a new schedule.
type CreateScheduleRequest struct {
	Name  string
	Cycle domain.Cycle
}

// ItemView is the presentable form of an item placement or pool entry.
type ItemView struct {
	Name      string
	Kind      domain.ItemKind
	SizeBytes int
	BitLength int
	RateHz    float64
	LinkID    string
	Slots     []int
}

// SubSlotView is the presentable form of a sub-slot. Position is 1-based.
type SubSlotView struct {
	Position       int
	Name           string
	Identifier     string
	BytesRemaining int
	Status         domain.CapacityStatus
	Items          []ItemView
}

// SlotView is the presentable form of a slot. SubSlots is empty while only
// the default sub-slot exists.
type SlotView struct {
	Index          int
	Name           string
	Identifier     string
	CapacityBytes  int
	BytesRemaining int
	Status         domain.CapacityStatus
	Items          []ItemView
	SubSlots       []SubSlotView
}

// ScheduleView is a read-only projection of a working schedule.
type ScheduleView struct {
	Name           string
	Cycle          domain.Cycle
	Period         float64
	PerSlotBytes   int
	LeftoverBytes  int
	TotalRemaining int
	Slots          []SlotView
	Unassigned     []ItemView
}

// StatusResponse reports a schedule together with its uncommitted changes.
type StatusResponse struct {
	View           ScheduleView
	Changed        bool
	Diff           string
	OverSubscribed []int
	Fingerprint    string
}

// OptionView is one placement combination for a rate.
type OptionView struct {
	Index    int
	Kind     string
	Label    string
	Slots    []int
	SubSlots []int
}

// OptionsResponse lists the placement combinations for a rate.
type OptionsResponse struct {
	RateHz  float64
	Options []OptionView
}

// TargetRef addresses a slot (Sub 0) or a 1-based sub-slot position.
type TargetRef struct {
	Slot int
	Sub  int
}

// AssignRequest places a pool item either at explicit targets or at one of
// the combinations enumerated for its rate.
type AssignRequest struct {
	Schedule string
	Item     string
	Option   *int
	Targets  []TargetRef
}

// MutationResponse reports the effect of a mutating use case.
type MutationResponse struct {
	Outcome   string
	Placed    []string
	Removed   []string
	Evacuated []string
}

// NeedsConfirmation reports whether the mutation was held back pending
// confirmation.
func (r *MutationResponse) NeedsConfirmation() bool {
	return r != nil && r.Outcome == "needs_confirmation"
}

// NewItemView projects an item.
func NewItemView(it *domain.Item) ItemView {
	v := ItemView{
		Name:      it.Name,
		Kind:      it.Kind,
		SizeBytes: it.SizeBytes,
		RateHz:    it.RateHz,
		LinkID:    it.LinkID,
		Slots:     slices.Clone(it.Slots),
	}
	if it.Telemetry != nil {
		v.BitLength = it.Telemetry.BitLength
	}
	return v
}

// NewItemViews projects a list of items.
func NewItemViews(items []*domain.Item) []ItemView {
	out := make([]ItemView, len(items))
	for i, it := range items {
		out[i] = NewItemView(it)
	}
	return out
}

// NewSlotView projects slot i.
func NewSlotView(i int, s *domain.Slot) SlotView {
	v := SlotView{
		Index:          i,
		Name:           s.Name,
		Identifier:     s.Identifier,
		CapacityBytes:  s.CapacityBytes,
		BytesRemaining: s.BytesRemaining,
		Status:         s.Status(),
		Items:          NewItemViews(s.Items),
	}
	if !s.HasSubSlots() {
		return v
	}
	for j, sub := range s.SubSlots {
		v.SubSlots = append(v.SubSlots, SubSlotView{
			Position:       j + 1,
			Name:           sub.Name,
			Identifier:     sub.Identifier,
			BytesRemaining: sub.BytesRemaining,
			Status:         sub.Status(),
			Items:          NewItemViews(sub.Items),
		})
	}
	return v
}

// OptionsRequest asks for the combinations of a rate. When Item is set its
// defined rate is used and RateHz is ignored.
type OptionsRequest struct {
	Schedule string
	Item     string
	RateHz   float64
}

// ItemEntry is an item definition together with its assignment state.
type ItemEntry struct {
	ItemView
	AppID    *uint16
	Assigned bool
}
