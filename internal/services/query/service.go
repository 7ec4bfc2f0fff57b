package query

import (
	"context"
	"iter"

	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/services/projection"
	"github.com/mcoot/dutyledger/internal/storage"
)

// Service answers read-only questions about persons and their duties
type Service struct {
	storage     storage.Storage
	projections *projection.Service
}

// New creates a new query Service
func New(storage storage.Storage, projections *projection.Service) *Service {
	return &Service{
		storage:     storage,
		projections: projections,
	}
}

// ListPersons yields every person with their status in registration order.
// Nothing is read until iteration starts, each status is read as it is
// reached, and the sequence can be iterated again for a fresh pass.
// Iteration stops after the first error.
func (s *Service) ListPersons(ctx context.Context) iter.Seq2[*model.PersonStatus, error] {
	return func(yield func(*model.PersonStatus, error) bool) {
		persons, err := s.storage.ListPersons(ctx)
		if err != nil {
			yield(nil, err)
			return
		}
		for _, person := range persons {
			status, err := s.status(ctx, person)
			if !yield(status, err) || err != nil {
				return
			}
		}
	}
}

// GetPerson returns one person's status by exact name
func (s *Service) GetPerson(ctx context.Context, name string) (*model.PersonStatus, error) {
	person, err := s.storage.GetPersonByName(ctx, name)
	if err != nil {
		return nil, err
	}
	return s.status(ctx, person)
}

// GetDutyHistory returns a person's status and duties ordered by start date ascending
func (s *Service) GetDutyHistory(ctx context.Context, name string) (*model.DutyHistory, error) {
	status, err := s.GetPerson(ctx, name)
	if err != nil {
		return nil, err
	}

	records, err := s.storage.ListDutyRecords(ctx, status.Person.ID)
	if err != nil {
		return nil, err
	}
	duties := make([]model.DutyRecord, len(records))
	for i, r := range records {
		duties[i] = *r
	}

	return &model.DutyHistory{
		Person:     status.Person,
		Projection: status.Projection,
		Duties:     duties,
	}, nil
}

func (s *Service) status(ctx context.Context, person *model.Person) (*model.PersonStatus, error) {
	p, err := s.projections.Cached(ctx, person.ID)
	if err != nil {
		return nil, err
	}
	return &model.PersonStatus{
		Person:     *person,
		Projection: *p,
	}, nil
}
