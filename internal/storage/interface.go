package storage

import (
	"context"

	"cloud.google.com/go/civil"

	"github.com/mcoot/dutyledger/internal/model"
)

// Storage defines the interface for data persistence.
//
// Implementations enforce two uniqueness constraints: person names, and
// (person, duty start date) pairs. They are not expected to provide
// multi-call transactions; the ledger compensates on partial failure.
type Storage interface {
	// Person operations
	CreatePerson(ctx context.Context, person *model.Person) error
	GetPerson(ctx context.Context, id model.PersonID) (*model.Person, error)
	GetPersonByName(ctx context.Context, name string) (*model.Person, error)
	// ListPersons returns persons in registration order
	ListPersons(ctx context.Context) ([]*model.Person, error)

	// Duty record operations
	AppendDutyRecord(ctx context.Context, record *model.DutyRecord) error
	UpdateDutyRecordEnd(ctx context.Context, id model.DutyRecordID, end model.DutyEnd) error
	// DeleteDutyRecord exists for rollback of a failed assignment only
	DeleteDutyRecord(ctx context.Context, id model.DutyRecordID) error
	// ListDutyRecords returns a person's duties ordered by start date ascending
	ListDutyRecords(ctx context.Context, personID model.PersonID) ([]*model.DutyRecord, error)

	// Projection operations
	SaveProjection(ctx context.Context, projection *model.Projection) error
	GetProjection(ctx context.Context, personID model.PersonID) (*model.Projection, error)
	DeleteProjection(ctx context.Context, personID model.PersonID) error

	// Process log operations
	AppendProcessLog(ctx context.Context, entry *model.ProcessLog) error
	// ListProcessLogs returns up to limit entries, newest first. A limit of
	// zero or less returns every entry.
	ListProcessLogs(ctx context.Context, limit int) ([]*model.ProcessLog, error)
}

// DateKey is the sortable text form of a date used by backends as an
// ordering and uniqueness key
func DateKey(d civil.Date) string {
	return d.String()
}
