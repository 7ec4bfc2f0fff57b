package memory

import (
	"context"
	"testing"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/storage"
	"github.com/mcoot/dutyledger/internal/storage/storagetest"
)

func TestStorageSuite(t *testing.T) {
	suite.Run(t, &storagetest.Suite{
		NewStorage: func(t *testing.T) storage.Storage { return New() },
	})
}

type IsolationSuite struct {
	suite.Suite
	storage *Storage
	ctx     context.Context
}

func TestIsolationSuite(t *testing.T) {
	suite.Run(t, new(IsolationSuite))
}

func (s *IsolationSuite) SetupTest() {
	s.storage = New()
	s.ctx = context.Background()
}

func (s *IsolationSuite) TestReturnedRecordsAreCopies() {
	_ = s.storage.CreatePerson(s.ctx, &model.Person{ID: "person-1", Name: "John Doe"})
	_ = s.storage.AppendDutyRecord(s.ctx, &model.DutyRecord{
		ID:        "duty-1",
		PersonID:  "person-1",
		Rank:      "Captain",
		DutyTitle: "Pilot",
		StartDate: civil.Date{Year: 2020, Month: 1, Day: 1},
	})

	records, err := s.storage.ListDutyRecords(s.ctx, "person-1")
	s.Require().NoError(err)
	records[0].DutyTitle = "changed"
	records[0].End = model.ClosedOn(civil.Date{Year: 2021, Month: 1, Day: 1})

	records, err = s.storage.ListDutyRecords(s.ctx, "person-1")
	s.Require().NoError(err)
	s.Equal("Pilot", records[0].DutyTitle)
	s.True(records[0].IsCurrent())
}

func (s *IsolationSuite) TestStoredProjectionIsDetachedFromCaller() {
	start := civil.Date{Year: 2020, Month: 1, Day: 1}
	projection := &model.Projection{PersonID: "person-1", CareerStartDate: &start}
	_ = s.storage.SaveProjection(s.ctx, projection)

	start.Year = 1999

	retrieved, err := s.storage.GetProjection(s.ctx, "person-1")
	s.Require().NoError(err)
	s.Equal(2020, retrieved.CareerStartDate.Year)
}

func (s *IsolationSuite) TestProcessLogLimitKeepsNewest() {
	store := New(WithProcessLogLimit(3))
	for _, msg := range []string{"one", "two", "three", "four", "five"} {
		s.Require().NoError(store.AppendProcessLog(s.ctx, &model.ProcessLog{Message: msg}))
	}

	entries, err := store.ListProcessLogs(s.ctx, 0)
	s.Require().NoError(err)
	s.Require().Len(entries, 3)
	s.Equal("five", entries[0].Message)
	s.Equal("three", entries[2].Message)
}

func (s *IsolationSuite) TestProcessLogUnlimitedByDefault() {
	for range 20 {
		s.Require().NoError(s.storage.AppendProcessLog(s.ctx, &model.ProcessLog{Message: "entry"}))
	}

	entries, err := s.storage.ListProcessLogs(s.ctx, 0)
	s.Require().NoError(err)
	s.Len(entries, 20)
}
