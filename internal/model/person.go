package model

import "time"

// PersonID uniquely identifies a person in the registry
type PersonID string

// Person is a registered individual. The name is unique (case-sensitive)
// and neither field changes after registration.
type Person struct {
	ID        PersonID
	Name      string
	CreatedAt time.Time
}

// PersonStatus pairs a person with their derived status
type PersonStatus struct {
	Person     Person
	Projection Projection
}

// DutyHistory is a person's status plus every duty they have held,
// ordered by start date ascending
type DutyHistory struct {
	Person     Person
	Projection Projection
	Duties     []DutyRecord
}
