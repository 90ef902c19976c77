package models

// Category is the ticket-type lookup row.
type Category struct {
	ID   int64
	Name string
}
