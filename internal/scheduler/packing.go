package scheduler

import "github.com/alexanderramin/cadence/internal/domain"

// PackedSizer computes the byte footprint of a set of items once packed
// into a message.
type PackedSizer interface {
	PackedSize(items []*domain.Item) int
}

// PackedSizeFunc adapts a plain function to PackedSizer.
type PackedSizeFunc func(items []*domain.Item) int

func (f PackedSizeFunc) PackedSize(items []*domain.Item) int { return f(items) }

// BitPacker packs consecutive sub-byte telemetry fields into shared bytes.
// Any byte-aligned item closes the current run of bits.
type BitPacker struct{}

func (BitPacker) PackedSize(items []*domain.Item) int {
	total := 0
	bits := 0
	for _, it := range items {
		if it.Telemetry != nil && it.Telemetry.BitLength > 0 {
			bits += it.Telemetry.BitLength
			continue
		}
		total += bytesForBits(bits)
		bits = 0
		total += it.SizeBytes
	}
	return total + bytesForBits(bits)
}

func bytesForBits(bits int) int {
	return (bits + 7) / 8
}
