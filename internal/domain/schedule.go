package domain

import "time"

// ScheduleInfo is the persisted header of a schedule.
type ScheduleInfo struct {
	ID        string
	Name      string
	Cycle     Cycle
	CreatedAt time.Time
	UpdatedAt time.Time
}
