package registry

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dutyledger/internal/dependencies/mocks"
	"github.com/mcoot/dutyledger/internal/metrics"
	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/storage/memory"
	logutil "github.com/mcoot/dutyledger/internal/testutil"
)

type ServiceSuite struct {
	suite.Suite
	storage *memory.Storage
	clock   *mocks.MockClock
	ids     *mocks.MockIDs
	metrics *metrics.Metrics
	service *Service
	ctx     context.Context
}

func TestServiceSuite(t *testing.T) {
	suite.Run(t, new(ServiceSuite))
}

func (s *ServiceSuite) SetupTest() {
	s.storage = memory.New()
	s.clock = mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	s.ids = mocks.NewMockIDs("person")
	s.metrics = metrics.New()
	s.service = New(s.storage, s.clock, s.ids, s.metrics, logutil.NopLogger())
	s.ctx = context.Background()
}

func (s *ServiceSuite) TestRegisterSucceeds() {
	s.ids.Queue("person-42")

	id, err := s.service.Register(s.ctx, "Jane Lee")
	s.Require().NoError(err)
	s.Equal(model.PersonID("person-42"), id)

	person, err := s.storage.GetPerson(s.ctx, id)
	s.Require().NoError(err)
	s.Equal("Jane Lee", person.Name)
	s.True(s.clock.Now().Equal(person.CreatedAt))
	s.Equal(1.0, testutil.ToFloat64(s.metrics.PersonsRegistered))
}

func (s *ServiceSuite) TestRegisterDuplicateName() {
	_, err := s.service.Register(s.ctx, "Jane Lee")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "Jane Lee")
	s.ErrorIs(err, model.ErrPersonExists)
	s.ErrorIs(err, model.ErrConflict)
	s.Equal(1.0, testutil.ToFloat64(s.metrics.PersonsRegistered))
}

func (s *ServiceSuite) TestRegisterNamesAreCaseSensitive() {
	_, err := s.service.Register(s.ctx, "Jane Lee")
	s.Require().NoError(err)

	_, err = s.service.Register(s.ctx, "jane lee")
	s.NoError(err)
}

func (s *ServiceSuite) TestRegisterBlankName() {
	_, err := s.service.Register(s.ctx, "  ")
	s.ErrorIs(err, model.ErrValidation)

	persons, err := s.storage.ListPersons(s.ctx)
	s.Require().NoError(err)
	s.Empty(persons)
}

func (s *ServiceSuite) TestConcurrentDuplicateRegistration() {
	const attempts = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		successes int
		conflicts int
	)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := s.service.Register(s.ctx, "Jane Lee")
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				successes++
			} else if s.ErrorIs(err, model.ErrPersonExists) {
				conflicts++
			}
		}()
	}
	wg.Wait()

	s.Equal(1, successes)
	s.Equal(attempts-1, conflicts)
}

func (s *ServiceSuite) TestFindByName() {
	id, err := s.service.Register(s.ctx, "Jane Lee")
	s.Require().NoError(err)

	person, err := s.service.FindByName(s.ctx, "Jane Lee")
	s.Require().NoError(err)
	s.Equal(id, person.ID)

	_, err = s.service.FindByName(s.ctx, "John Doe")
	s.ErrorIs(err, model.ErrPersonNotFound)
}
