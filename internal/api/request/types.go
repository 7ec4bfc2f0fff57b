package request

import (
	"strings"

	"cloud.google.com/go/civil"
)

// RegisterPersonRequest is the request body for registering a person
type RegisterPersonRequest struct {
	Name string `json:"name"`
}

// AssignDutyRequest is the request body for assigning a duty
type AssignDutyRequest struct {
	Name          string `json:"name"`
	Rank          string `json:"rank"`
	DutyTitle     string `json:"duty_title"`
	DutyStartDate string `json:"duty_start_date"`
}

// RetireRequest is the request body for retiring a person
type RetireRequest struct {
	RetireDate string `json:"retire_date"`
}

// ParseDate reads a YYYY-MM-DD date. An empty string yields the zero
// date so that required-field validation can report it.
func ParseDate(s string) (civil.Date, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return civil.Date{}, nil
	}
	return civil.ParseDate(s)
}
