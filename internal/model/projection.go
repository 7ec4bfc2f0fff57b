package model

import "cloud.google.com/go/civil"

// Projection is the current-status view derived from a person's duty history.
// It is recomputed after every change to that history and never edited directly.
type Projection struct {
	PersonID         PersonID
	CurrentRank      string
	CurrentDutyTitle string
	CareerStartDate  *civil.Date
	CareerEndDate    *civil.Date // set only once the person has retired
}

// IsRetired reports whether the person's career has ended
func (p *Projection) IsRetired() bool {
	return p.CareerEndDate != nil
}

// HasDuty reports whether the person has held any duty
func (p *Projection) HasDuty() bool {
	return p.CareerStartDate != nil
}
