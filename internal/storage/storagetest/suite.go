// Package storagetest holds the behaviour every storage backend must share.
// Backend packages embed Suite and supply a constructor.
package storagetest

import (
	"context"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/storage"
)

// Suite runs the storage contract against the Storage returned by NewStorage
type Suite struct {
	suite.Suite
	NewStorage func(t *testing.T) storage.Storage

	Storage storage.Storage
	Ctx     context.Context
}

func (s *Suite) SetupTest() {
	s.Storage = s.NewStorage(s.T())
	s.Ctx = context.Background()
}

func date(year int, month time.Month, day int) civil.Date {
	return civil.Date{Year: year, Month: month, Day: day}
}

func (s *Suite) createPerson(id, name string) *model.Person {
	person := &model.Person{
		ID:        model.PersonID(id),
		Name:      name,
		CreatedAt: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
	s.Require().NoError(s.Storage.CreatePerson(s.Ctx, person))
	return person
}

func (s *Suite) appendDuty(id string, personID model.PersonID, title string, start civil.Date, end model.DutyEnd) *model.DutyRecord {
	record := &model.DutyRecord{
		ID:        model.DutyRecordID(id),
		PersonID:  personID,
		Rank:      "Captain",
		DutyTitle: title,
		StartDate: start,
		End:       end,
	}
	s.Require().NoError(s.Storage.AppendDutyRecord(s.Ctx, record))
	return record
}

// Person tests

func (s *Suite) TestCreateAndGetPerson() {
	person := s.createPerson("person-1", "John Doe")

	retrieved, err := s.Storage.GetPerson(s.Ctx, "person-1")
	s.Require().NoError(err)
	s.Equal(person.ID, retrieved.ID)
	s.Equal(person.Name, retrieved.Name)
	s.True(person.CreatedAt.Equal(retrieved.CreatedAt))
}

func (s *Suite) TestGetPersonNotFound() {
	_, err := s.Storage.GetPerson(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrPersonNotFound)
}

func (s *Suite) TestGetPersonByName() {
	s.createPerson("person-1", "John Doe")

	retrieved, err := s.Storage.GetPersonByName(s.Ctx, "John Doe")
	s.Require().NoError(err)
	s.Equal(model.PersonID("person-1"), retrieved.ID)
}

func (s *Suite) TestGetPersonByNameIsCaseSensitive() {
	s.createPerson("person-1", "John Doe")

	_, err := s.Storage.GetPersonByName(s.Ctx, "john doe")
	s.ErrorIs(err, model.ErrPersonNotFound)
}

func (s *Suite) TestCreatePersonRejectsDuplicateName() {
	s.createPerson("person-1", "John Doe")

	err := s.Storage.CreatePerson(s.Ctx, &model.Person{ID: "person-2", Name: "John Doe"})
	s.ErrorIs(err, model.ErrPersonExists)
	s.ErrorIs(err, model.ErrConflict)

	// The losing registration leaves no trace
	_, err = s.Storage.GetPerson(s.Ctx, "person-2")
	s.ErrorIs(err, model.ErrPersonNotFound)
	persons, err := s.Storage.ListPersons(s.Ctx)
	s.Require().NoError(err)
	s.Len(persons, 1)
}

func (s *Suite) TestListPersonsInRegistrationOrder() {
	names := []string{"Zed", "Alice", "Mike", "Bob"}
	for i, name := range names {
		s.createPerson(fmt.Sprintf("person-%d", i), name)
	}

	persons, err := s.Storage.ListPersons(s.Ctx)
	s.Require().NoError(err)
	s.Require().Len(persons, len(names))
	for i, p := range persons {
		s.Equal(names[i], p.Name)
	}
}

func (s *Suite) TestListPersonsEmpty() {
	persons, err := s.Storage.ListPersons(s.Ctx)
	s.Require().NoError(err)
	s.Empty(persons)
}

// Duty record tests

func (s *Suite) TestAppendAndListDutyRecords() {
	person := s.createPerson("person-1", "John Doe")
	s.appendDuty("duty-1", person.ID, "Pilot", date(2020, 1, 1), model.ClosedOn(date(2022, 4, 30)))
	s.appendDuty("duty-2", person.ID, "Commander", date(2022, 5, 1), model.Active())

	records, err := s.Storage.ListDutyRecords(s.Ctx, person.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 2)

	s.Equal(model.DutyRecordID("duty-1"), records[0].ID)
	s.Equal("Pilot", records[0].DutyTitle)
	s.Equal(date(2020, 1, 1), records[0].StartDate)
	end, closed := records[0].End.EndDate()
	s.True(closed)
	s.Equal(date(2022, 4, 30), end)

	s.Equal(model.DutyRecordID("duty-2"), records[1].ID)
	s.True(records[1].IsCurrent())
}

func (s *Suite) TestListDutyRecordsOrderedByStartDate() {
	person := s.createPerson("person-1", "John Doe")
	s.appendDuty("duty-b", person.ID, "B", date(2021, 6, 1), model.Active())
	s.appendDuty("duty-a", person.ID, "A", date(2019, 12, 31), model.Active())
	s.appendDuty("duty-c", person.ID, "C", date(2021, 10, 1), model.Active())

	records, err := s.Storage.ListDutyRecords(s.Ctx, person.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 3)
	s.Equal("A", records[0].DutyTitle)
	s.Equal("B", records[1].DutyTitle)
	s.Equal("C", records[2].DutyTitle)
}

func (s *Suite) TestListDutyRecordsIsolatedPerPerson() {
	alice := s.createPerson("person-1", "Alice")
	bob := s.createPerson("person-2", "Bob")
	s.appendDuty("duty-1", alice.ID, "Pilot", date(2020, 1, 1), model.Active())
	s.appendDuty("duty-2", bob.ID, "Pilot", date(2020, 1, 1), model.Active())

	records, err := s.Storage.ListDutyRecords(s.Ctx, alice.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	s.Equal(model.DutyRecordID("duty-1"), records[0].ID)
}

func (s *Suite) TestListDutyRecordsEmpty() {
	person := s.createPerson("person-1", "John Doe")

	records, err := s.Storage.ListDutyRecords(s.Ctx, person.ID)
	s.Require().NoError(err)
	s.Empty(records)
}

func (s *Suite) TestAppendDutyRecordRejectsSameStartDate() {
	person := s.createPerson("person-1", "John Doe")
	s.appendDuty("duty-1", person.ID, "Pilot", date(2020, 1, 1), model.Active())

	err := s.Storage.AppendDutyRecord(s.Ctx, &model.DutyRecord{
		ID:        "duty-2",
		PersonID:  person.ID,
		Rank:      "Major",
		DutyTitle: "Commander",
		StartDate: date(2020, 1, 1),
	})
	s.ErrorIs(err, model.ErrConflict)

	records, err := s.Storage.ListDutyRecords(s.Ctx, person.ID)
	s.Require().NoError(err)
	s.Len(records, 1)
}

func (s *Suite) TestUpdateDutyRecordEnd() {
	person := s.createPerson("person-1", "John Doe")
	s.appendDuty("duty-1", person.ID, "Pilot", date(2020, 1, 1), model.Active())

	err := s.Storage.UpdateDutyRecordEnd(s.Ctx, "duty-1", model.ClosedOn(date(2021, 1, 1)))
	s.Require().NoError(err)

	records, err := s.Storage.ListDutyRecords(s.Ctx, person.ID)
	s.Require().NoError(err)
	s.Require().Len(records, 1)
	end, closed := records[0].End.EndDate()
	s.True(closed)
	s.Equal(date(2021, 1, 1), end)

	// Reopen, as the ledger does when rolling back
	err = s.Storage.UpdateDutyRecordEnd(s.Ctx, "duty-1", model.Active())
	s.Require().NoError(err)
	records, err = s.Storage.ListDutyRecords(s.Ctx, person.ID)
	s.Require().NoError(err)
	s.True(records[0].IsCurrent())
}

func (s *Suite) TestUpdateDutyRecordEndNotFound() {
	err := s.Storage.UpdateDutyRecordEnd(s.Ctx, "nonexistent", model.ClosedOn(date(2021, 1, 1)))
	s.ErrorIs(err, model.ErrDutyRecordNotFound)
}

func (s *Suite) TestDeleteDutyRecordFreesStartDate() {
	person := s.createPerson("person-1", "John Doe")
	s.appendDuty("duty-1", person.ID, "Pilot", date(2020, 1, 1), model.Active())

	s.Require().NoError(s.Storage.DeleteDutyRecord(s.Ctx, "duty-1"))

	records, err := s.Storage.ListDutyRecords(s.Ctx, person.ID)
	s.Require().NoError(err)
	s.Empty(records)

	// The start date can be used again
	s.appendDuty("duty-2", person.ID, "Commander", date(2020, 1, 1), model.Active())
}

func (s *Suite) TestDeleteDutyRecordMissingIsNoop() {
	s.NoError(s.Storage.DeleteDutyRecord(s.Ctx, "nonexistent"))
}

// Projection tests

func (s *Suite) TestSaveAndGetProjection() {
	person := s.createPerson("person-1", "John Doe")
	start := date(2020, 1, 1)
	end := date(2024, 6, 14)
	projection := &model.Projection{
		PersonID:         person.ID,
		CurrentRank:      "Captain",
		CurrentDutyTitle: model.RetiredDutyTitle,
		CareerStartDate:  &start,
		CareerEndDate:    &end,
	}

	s.Require().NoError(s.Storage.SaveProjection(s.Ctx, projection))

	retrieved, err := s.Storage.GetProjection(s.Ctx, person.ID)
	s.Require().NoError(err)
	s.Equal(projection, retrieved)
}

func (s *Suite) TestSaveProjectionOverwrites() {
	person := s.createPerson("person-1", "John Doe")
	start := date(2020, 1, 1)
	s.Require().NoError(s.Storage.SaveProjection(s.Ctx, &model.Projection{
		PersonID:         person.ID,
		CurrentRank:      "Lieutenant",
		CurrentDutyTitle: "Pilot",
		CareerStartDate:  &start,
	}))
	s.Require().NoError(s.Storage.SaveProjection(s.Ctx, &model.Projection{
		PersonID:         person.ID,
		CurrentRank:      "Captain",
		CurrentDutyTitle: "Commander",
		CareerStartDate:  &start,
	}))

	retrieved, err := s.Storage.GetProjection(s.Ctx, person.ID)
	s.Require().NoError(err)
	s.Equal("Captain", retrieved.CurrentRank)
	s.Nil(retrieved.CareerEndDate)
}

func (s *Suite) TestGetProjectionNotFound() {
	_, err := s.Storage.GetProjection(s.Ctx, "nonexistent")
	s.ErrorIs(err, model.ErrProjectionNotFound)
}

func (s *Suite) TestDeleteProjection() {
	person := s.createPerson("person-1", "John Doe")
	s.Require().NoError(s.Storage.SaveProjection(s.Ctx, &model.Projection{PersonID: person.ID}))

	s.Require().NoError(s.Storage.DeleteProjection(s.Ctx, person.ID))

	_, err := s.Storage.GetProjection(s.Ctx, person.ID)
	s.ErrorIs(err, model.ErrProjectionNotFound)
}

// Process log tests

func (s *Suite) TestProcessLogsNewestFirst() {
	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	for i := 1; i <= 3; i++ {
		s.Require().NoError(s.Storage.AppendProcessLog(s.Ctx, &model.ProcessLog{
			ID:          model.ProcessLogID(fmt.Sprintf("log-%d", i)),
			Timestamp:   base.Add(time.Duration(i) * time.Minute),
			Level:       model.ProcessLogSuccess,
			Message:     fmt.Sprintf("entry %d", i),
			RequestPath: "/api/v1/persons",
		}))
	}

	entries, err := s.Storage.ListProcessLogs(s.Ctx, 2)
	s.Require().NoError(err)
	s.Require().Len(entries, 2)
	s.Equal("entry 3", entries[0].Message)
	s.Equal("entry 2", entries[1].Message)
	s.Equal(model.ProcessLogSuccess, entries[0].Level)
	s.Equal("/api/v1/persons", entries[0].RequestPath)
}

func (s *Suite) TestProcessLogsKeepsErrorDetail() {
	s.Require().NoError(s.Storage.AppendProcessLog(s.Ctx, &model.ProcessLog{
		ID:        "log-1",
		Timestamp: time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
		Level:     model.ProcessLogError,
		Message:   "Failed to create person: John Doe",
		Error:     "conflict: person already exists",
	}))

	entries, err := s.Storage.ListProcessLogs(s.Ctx, 10)
	s.Require().NoError(err)
	s.Require().Len(entries, 1)
	s.Equal(model.ProcessLogError, entries[0].Level)
	s.Equal("conflict: person already exists", entries[0].Error)
}

func (s *Suite) TestProcessLogsEmpty() {
	entries, err := s.Storage.ListProcessLogs(s.Ctx, 10)
	s.Require().NoError(err)
	s.Empty(entries)
}
