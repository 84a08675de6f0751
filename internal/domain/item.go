package domain

import "slices"

// Item is a schedulable payload. Kind selects which payload applies; the
// packed-size contract is the same for both.
type Item struct {
	ID        string
	Name      string // fully qualified, unique within its container
	Kind      ItemKind
	SizeBytes int
	RateHz    float64
	LinkID    string

	// Slots lists every slot index a full-rate item was placed into.
	Slots []int

	Telemetry   *TelemetryPayload
	Application *ApplicationPayload
}

// TelemetryPayload carries the fields specific to telemetry variables.
// BitLength > 0 marks a sub-byte field that packs with its neighbours.
type TelemetryPayload struct {
	BitLength int
}

// ApplicationPayload carries the fields specific to scheduled applications.
type ApplicationPayload struct {
	AppID uint16
}

// Linked reports whether the item belongs to a link group.
func (it *Item) Linked() bool {
	return it.LinkID != ""
}

// SizeBits returns the item's footprint in bits before packing.
func (it *Item) SizeBits() int {
	if it.Telemetry != nil && it.Telemetry.BitLength > 0 {
		return it.Telemetry.BitLength
	}
	return it.SizeBytes * 8
}

// Clone returns a deep copy of the item.
func (it *Item) Clone() *Item {
	if it == nil {
		return nil
	}
	c := *it
	c.Slots = slices.Clone(it.Slots)
	if it.Telemetry != nil {
		t := *it.Telemetry
		c.Telemetry = &t
	}
	if it.Application != nil {
		a := *it.Application
		c.Application = &a
	}
	return &c
}

// CloneItems deep copies a list of items.
func CloneItems(items []*Item) []*Item {
	if items == nil {
		return nil
	}
	out := make([]*Item, len(items))
	for i, it := range items {
		out[i] = it.Clone()
	}
	return out
}

// IndexOfItem returns the position of the item named name, or -1.
func IndexOfItem(items []*Item, name string) int {
	return slices.IndexFunc(items, func(it *Item) bool { return it.Name == name })
}
