package registry

import (
	"context"
	"log/slog"

	"github.com/mcoot/dutyledger/internal/dependencies/clock"
	"github.com/mcoot/dutyledger/internal/dependencies/ids"
	"github.com/mcoot/dutyledger/internal/metrics"
	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/storage"
	"github.com/mcoot/dutyledger/internal/validation"
)

// Service registers persons and resolves them by name
type Service struct {
	storage storage.Storage
	clock   clock.Clock
	ids     ids.Generator
	metrics *metrics.Metrics
	logger  *slog.Logger
}

// New creates a new registry Service
func New(
	storage storage.Storage,
	clock clock.Clock,
	ids ids.Generator,
	metrics *metrics.Metrics,
	logger *slog.Logger,
) *Service {
	return &Service{
		storage: storage,
		clock:   clock,
		ids:     ids,
		metrics: metrics,
		logger:  logger,
	}
}

// Register adds a person under a unique name. The storage unique index
// decides between concurrent registrations of the same name.
func (s *Service) Register(ctx context.Context, name string) (model.PersonID, error) {
	if err := validation.ValidatePersonName(name); err != nil {
		return "", err
	}

	person := &model.Person{
		ID:        model.PersonID(s.ids.NewID()),
		Name:      name,
		CreatedAt: s.clock.Now(),
	}
	if err := s.storage.CreatePerson(ctx, person); err != nil {
		return "", err
	}

	s.metrics.IncrementPersonsRegistered()
	s.logger.Debug("person registered", "person_id", person.ID)
	return person.ID, nil
}

// FindByName returns the person with exactly this name
func (s *Service) FindByName(ctx context.Context, name string) (*model.Person, error) {
	return s.storage.GetPersonByName(ctx, name)
}
