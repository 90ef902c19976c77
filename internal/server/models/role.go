package models

// Role is a lookup row referenced by users. Never mutated by the auth flow.
type Role struct {
	ID   int64
	Name string
}
