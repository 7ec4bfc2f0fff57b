package projection

import (
	"context"
	"errors"

	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/storage"
)

// Derive computes a person's status from their history, which must be
// ordered by start date ascending. It is pure: the same history always
// yields the same projection.
func Derive(personID model.PersonID, records []*model.DutyRecord) model.Projection {
	p := model.Projection{PersonID: personID}
	if len(records) == 0 {
		return p
	}

	first := records[0].StartDate
	p.CareerStartDate = &first

	last := records[len(records)-1]
	p.CurrentRank = last.Rank
	p.CurrentDutyTitle = last.DutyTitle
	if last.IsRetirement() {
		end := last.StartDate.AddDays(-1)
		p.CareerEndDate = &end
	}
	return p
}

// Service maintains the materialised status view
type Service struct {
	storage storage.Storage
}

// New creates a new projection Service
func New(storage storage.Storage) *Service {
	return &Service{storage: storage}
}

// Recompute derives the projection from the stored history and saves it
func (s *Service) Recompute(ctx context.Context, personID model.PersonID) (*model.Projection, error) {
	p, err := s.Project(ctx, personID)
	if err != nil {
		return nil, err
	}
	if err := s.storage.SaveProjection(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// Project derives a fresh projection without writing it
func (s *Service) Project(ctx context.Context, personID model.PersonID) (*model.Projection, error) {
	records, err := s.storage.ListDutyRecords(ctx, personID)
	if err != nil {
		return nil, err
	}
	p := Derive(personID, records)
	return &p, nil
}

// Cached returns the materialised projection, deriving it fresh when none
// has been saved yet (a person with no duties)
func (s *Service) Cached(ctx context.Context, personID model.PersonID) (*model.Projection, error) {
	p, err := s.storage.GetProjection(ctx, personID)
	if errors.Is(err, model.ErrProjectionNotFound) {
		return s.Project(ctx, personID)
	}
	return p, err
}
