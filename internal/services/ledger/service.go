package ledger

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"cloud.google.com/go/civil"

	"github.com/mcoot/dutyledger/internal/dependencies/ids"
	"github.com/mcoot/dutyledger/internal/metrics"
	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/services/projection"
	"github.com/mcoot/dutyledger/internal/storage"
	"github.com/mcoot/dutyledger/internal/validation"
)

// Service applies duty assignments. Writes for one person are serialised;
// different persons proceed in parallel.
type Service struct {
	storage     storage.Storage
	projections *projection.Service
	ids         ids.Generator
	rules       []validation.Rule
	locks       *lockTable
	metrics     *metrics.Metrics
	logger      *slog.Logger
}

// New creates a ledger Service that checks assignments with validation.DutyRules
func New(
	storage storage.Storage,
	projections *projection.Service,
	ids ids.Generator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage:     storage,
		projections: projections,
		ids:         ids,
		rules:       validation.DutyRules(),
		locks:       newLockTable(),
		metrics:     metrics,
		logger:      logger,
	}
}

// RetiredRank is the rank recorded when a person with no duties retires
const RetiredRank = "Retired"

// AssignDuty records a new current duty for the named person, closing the
// previous one. It applies completely or not at all.
func (s *Service) AssignDuty(ctx context.Context, a model.DutyAssignment) (model.DutyRecordID, error) {
	return s.record(ctx, a.PersonName, func([]*model.DutyRecord) model.DutyAssignment {
		return a
	})
}

// Retire assigns the RETIRED duty starting on date. The person keeps the
// rank of their current duty, read under the person's lock, or RetiredRank
// if they never held one.
func (s *Service) Retire(ctx context.Context, name string, date civil.Date) (model.DutyRecordID, error) {
	return s.record(ctx, name, func(history []*model.DutyRecord) model.DutyAssignment {
		return model.DutyAssignment{
			PersonName: name,
			Rank:       retirementRank(history),
			DutyTitle:  model.RetiredDutyTitle,
			StartDate:  date,
		}
	})
}

func retirementRank(history []*model.DutyRecord) string {
	for i := len(history) - 1; i >= 0; i-- {
		if history[i].IsCurrent() {
			return history[i].Rank
		}
	}
	return RetiredRank
}

func (s *Service) record(ctx context.Context, name string, build func([]*model.DutyRecord) model.DutyAssignment) (model.DutyRecordID, error) {
	defer s.metrics.ObserveAssignDuty(time.Now())

	id, err := s.assign(ctx, name, build)
	if err != nil {
		s.metrics.IncrementDutyRejections(err)
		return "", err
	}
	s.metrics.IncrementDutyAssignments()
	return id, nil
}

// assign builds the assignment from the history loaded under the person's
// lock, so it always sees the latest committed duty
func (s *Service) assign(ctx context.Context, name string, build func([]*model.DutyRecord) model.DutyAssignment) (model.DutyRecordID, error) {
	person, err := s.storage.GetPersonByName(ctx, name)
	if err != nil && !errors.Is(err, model.ErrPersonNotFound) {
		return "", err
	}

	state := validation.State{}
	if person != nil {
		unlock := s.locks.Lock(person.ID)
		defer unlock()

		state.Person = person
		if state.History, err = s.storage.ListDutyRecords(ctx, person.ID); err != nil {
			return "", err
		}
	}

	a := build(state.History)
	if err := validation.Run(a, state, s.rules...); err != nil {
		return "", err
	}

	change, err := Plan(person.ID, state.History, a, model.DutyRecordID(s.ids.NewID()))
	if err != nil {
		return "", err
	}
	if err := s.apply(ctx, person.ID, change); err != nil {
		return "", err
	}

	s.logger.Debug("duty assigned",
		"person_id", person.ID,
		"duty_id", change.Insert.ID,
		"duty_title", change.Insert.DutyTitle,
		"start_date", change.Insert.StartDate.String(),
	)
	return change.Insert.ID, nil
}

// apply performs the writes of a change, undoing completed steps in reverse
// order if a later one fails
func (s *Service) apply(ctx context.Context, personID model.PersonID, change Change) error {
	previous, err := s.storage.GetProjection(ctx, personID)
	if err != nil && !errors.Is(err, model.ErrProjectionNotFound) {
		return err
	}

	var undo []func(context.Context) error

	if change.Close != nil {
		recordID := change.Close.RecordID
		if err := s.storage.UpdateDutyRecordEnd(ctx, recordID, model.ClosedOn(change.Close.EndDate)); err != nil {
			return err
		}
		undo = append(undo, func(ctx context.Context) error {
			return s.storage.UpdateDutyRecordEnd(ctx, recordID, model.Active())
		})
	}

	insert := change.Insert
	if err := s.storage.AppendDutyRecord(ctx, &insert); err != nil {
		return s.rollback(ctx, err, undo)
	}
	undo = append(undo, func(ctx context.Context) error {
		return s.storage.DeleteDutyRecord(ctx, insert.ID)
	})

	if _, err := s.projections.Recompute(ctx, personID); err != nil {
		undo = append(undo, func(ctx context.Context) error {
			return s.restoreProjection(ctx, personID, previous)
		})
		return s.rollback(ctx, err, undo)
	}
	return nil
}

// rollback runs undo steps last-first, ignoring cancellation of ctx
func (s *Service) rollback(ctx context.Context, cause error, undo []func(context.Context) error) error {
	ctx = context.WithoutCancel(ctx)
	errs := []error{cause}
	for i := len(undo) - 1; i >= 0; i-- {
		if err := undo[i](ctx); err != nil {
			errs = append(errs, fmt.Errorf("rollback: %w", err))
		}
	}
	return errors.Join(errs...)
}

func (s *Service) restoreProjection(ctx context.Context, personID model.PersonID, previous *model.Projection) error {
	if previous == nil {
		return s.storage.DeleteProjection(ctx, personID)
	}
	return s.storage.SaveProjection(ctx, previous)
}
