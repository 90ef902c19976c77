package models

import "time"

// Ticket is a support request row. CategoryName and StatusName are joined
// from the lookup tables on reads and ignored on writes.
type Ticket struct {
	ID                 int64
	Name               string
	Department         string
	Affair             string
	ProblemDescription string
	CategoryID         *int64
	StatusID           int64
	CategoryName       string
	StatusName         string
	RegistrationDate   time.Time
	ResolutionDate     *time.Time
}
