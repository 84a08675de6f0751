package domain

type ItemKind string

const (
	ItemTelemetry   ItemKind = "telemetry"
	ItemApplication ItemKind = "application"
)

// ValidItemKinds is the canonical set of accepted item kind strings.
var ValidItemKinds = map[string]bool{
	"telemetry": true, "application": true,
}

type CapacityStatus string

const (
	CapacityOK   CapacityStatus = "ok"
	CapacityFull CapacityStatus = "full"
	CapacityOver CapacityStatus = "over"
)

// Revision names one persisted copy of a schedule.
type Revision string

const (
	RevisionWorking   Revision = "working"
	RevisionCommitted Revision = "committed"
)
