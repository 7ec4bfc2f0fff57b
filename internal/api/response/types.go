package response

import (
	"time"

	"cloud.google.com/go/civil"

	"github.com/mcoot/dutyledger/internal/model"
)

// Created is returned when a resource is created
type Created struct {
	ID string `json:"id"`
}

// PersonStatus represents a person and their current status
type PersonStatus struct {
	ID               string      `json:"id"`
	Name             string      `json:"name"`
	CreatedAt        time.Time   `json:"created_at"`
	CurrentRank      string      `json:"current_rank,omitempty"`
	CurrentDutyTitle string      `json:"current_duty_title,omitempty"`
	CareerStartDate  *civil.Date `json:"career_start_date"`
	CareerEndDate    *civil.Date `json:"career_end_date"`
	Retired          bool        `json:"retired"`
}

// PersonStatusFromModel converts a model.PersonStatus
func PersonStatusFromModel(s *model.PersonStatus) PersonStatus {
	return personStatus(s.Person, s.Projection)
}

func personStatus(person model.Person, p model.Projection) PersonStatus {
	return PersonStatus{
		ID:               string(person.ID),
		Name:             person.Name,
		CreatedAt:        person.CreatedAt,
		CurrentRank:      p.CurrentRank,
		CurrentDutyTitle: p.CurrentDutyTitle,
		CareerStartDate:  p.CareerStartDate,
		CareerEndDate:    p.CareerEndDate,
		Retired:          p.IsRetired(),
	}
}

// PersonList is the response for listing persons
type PersonList struct {
	Persons []PersonStatus `json:"persons"`
}

// Duty represents one duty record. EndDate is null while the duty is current.
type Duty struct {
	ID        string        `json:"id"`
	Rank      string        `json:"rank"`
	DutyTitle string        `json:"duty_title"`
	StartDate civil.Date    `json:"duty_start_date"`
	EndDate   model.DutyEnd `json:"duty_end_date"`
	Current   bool          `json:"current"`
}

// DutyFromModel converts a model.DutyRecord
func DutyFromModel(r *model.DutyRecord) Duty {
	return Duty{
		ID:        string(r.ID),
		Rank:      r.Rank,
		DutyTitle: r.DutyTitle,
		StartDate: r.StartDate,
		EndDate:   r.End,
		Current:   r.IsCurrent(),
	}
}

// DutyHistory is the response for a person's duty history
type DutyHistory struct {
	Person PersonStatus `json:"person"`
	Duties []Duty       `json:"duties"`
}

// DutyHistoryFromModel converts a model.DutyHistory, optionally newest first
func DutyHistoryFromModel(h *model.DutyHistory, newestFirst bool) DutyHistory {
	duties := make([]Duty, len(h.Duties))
	for i := range h.Duties {
		j := i
		if newestFirst {
			j = len(h.Duties) - 1 - i
		}
		duties[i] = DutyFromModel(&h.Duties[j])
	}
	return DutyHistory{
		Person: personStatus(h.Person, h.Projection),
		Duties: duties,
	}
}

// ProcessLog represents one process log entry
type ProcessLog struct {
	ID          string    `json:"id"`
	Timestamp   time.Time `json:"timestamp"`
	Level       string    `json:"level"`
	Message     string    `json:"message"`
	Error       string    `json:"error,omitempty"`
	RequestPath string    `json:"request_path"`
}

// ProcessLogFromModel converts a model.ProcessLog
func ProcessLogFromModel(e *model.ProcessLog) ProcessLog {
	return ProcessLog{
		ID:          string(e.ID),
		Timestamp:   e.Timestamp,
		Level:       string(e.Level),
		Message:     e.Message,
		Error:       e.Error,
		RequestPath: e.RequestPath,
	}
}

// ProcessLogList is the response for listing process log entries
type ProcessLogList struct {
	Entries []ProcessLog `json:"entries"`
}

// Health is the response for the health check
type Health struct {
	Status string `json:"status"`
}
