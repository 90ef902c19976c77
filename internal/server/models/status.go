package models

// Status is the ticket-state lookup row.
type Status struct {
	ID   int64
	Name string
}

// Seeded status ids. StatusResolvedID drives the resolution-date stamping
// on ticket updates.
const (
	StatusPendingID    int64 = 1
	StatusInProgressID int64 = 2
	StatusResolvedID   int64 = 3
)
