package model

import (
	"bytes"
	"encoding/json"

	"cloud.google.com/go/civil"
)

// RetiredDutyTitle marks the duty that ends a career. Matching is case-sensitive.
const RetiredDutyTitle = "RETIRED"

// DutyRecordID uniquely identifies a duty record
type DutyRecordID string

// DutyEnd is either Active (the current duty) or Closed on a given date.
// The zero value is Active.
type DutyEnd struct {
	closed bool
	date   civil.Date
}

// Active returns the end marker of a current duty
func Active() DutyEnd {
	return DutyEnd{}
}

// ClosedOn returns the end marker of a duty that finished on d
func ClosedOn(d civil.Date) DutyEnd {
	return DutyEnd{closed: true, date: d}
}

// IsActive reports whether the duty has not been closed
func (e DutyEnd) IsActive() bool {
	return !e.closed
}

// EndDate returns the closing date, if any
func (e DutyEnd) EndDate() (civil.Date, bool) {
	return e.date, e.closed
}

// MarshalJSON encodes an active duty as null and a closed one as "YYYY-MM-DD"
func (e DutyEnd) MarshalJSON() ([]byte, error) {
	if !e.closed {
		return []byte("null"), nil
	}
	return json.Marshal(e.date)
}

// UnmarshalJSON is the inverse of MarshalJSON
func (e *DutyEnd) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		*e = Active()
		return nil
	}
	var d civil.Date
	if err := json.Unmarshal(data, &d); err != nil {
		return err
	}
	*e = ClosedOn(d)
	return nil
}

// DutyRecord is one interval of a person holding a rank and duty title
type DutyRecord struct {
	ID        DutyRecordID
	PersonID  PersonID
	Rank      string
	DutyTitle string
	StartDate civil.Date
	End       DutyEnd
}

// IsCurrent reports whether this is the person's current duty
func (r *DutyRecord) IsCurrent() bool {
	return r.End.IsActive()
}

// IsRetirement reports whether this duty retires the person
func (r *DutyRecord) IsRetirement() bool {
	return r.DutyTitle == RetiredDutyTitle
}

// DutyAssignment is a request to give a person a new duty
type DutyAssignment struct {
	PersonName string
	Rank       string
	DutyTitle  string
	StartDate  civil.Date
}

// Matches reports whether the record carries the same rank, title and start
// date as the assignment
func (a DutyAssignment) Matches(r *DutyRecord) bool {
	return r.Rank == a.Rank && r.DutyTitle == a.DutyTitle && r.StartDate == a.StartDate
}
