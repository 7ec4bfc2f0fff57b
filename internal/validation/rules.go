// Package validation holds the ordered checks a duty assignment must pass
// before the ledger applies it.
package validation

import (
	"fmt"
	"strings"

	"github.com/mcoot/dutyledger/internal/model"
)

// State is what a rule may inspect: the person named by the assignment
// (nil if unknown) and their history ordered by start date ascending.
type State struct {
	Person  *model.Person
	History []*model.DutyRecord
}

// Current returns the person's active duty, or nil
func (s State) Current() *model.DutyRecord {
	for i := len(s.History) - 1; i >= 0; i-- {
		if s.History[i].IsCurrent() {
			return s.History[i]
		}
	}
	return nil
}

// Rule checks one property of an assignment and returns a typed error
type Rule func(a model.DutyAssignment, s State) error

// Run applies rules in order and returns the first failure
func Run(a model.DutyAssignment, s State, rules ...Rule) error {
	for _, rule := range rules {
		if err := rule(a, s); err != nil {
			return err
		}
	}
	return nil
}

// DutyRules returns the checks applied to every assignment, in order
func DutyRules() []Rule {
	return []Rule{
		RequireDutyFields,
		PersonExists,
		NoDuplicateDuty,
		NotRetired,
		ChronologicalOrder,
	}
}

// RequireDutyFields rejects blank fields and a missing or impossible start date
func RequireDutyFields(a model.DutyAssignment, _ State) error {
	switch {
	case isBlank(a.PersonName):
		return model.NewValidationError("name", "is required")
	case isBlank(a.Rank):
		return model.NewValidationError("rank", "is required")
	case isBlank(a.DutyTitle):
		return model.NewValidationError("duty_title", "is required")
	case a.StartDate.IsZero():
		return model.NewValidationError("duty_start_date", "is required")
	case !a.StartDate.IsValid():
		return model.NewValidationError("duty_start_date", "is not a valid date")
	}
	return nil
}

// PersonExists rejects assignments for unregistered names
func PersonExists(a model.DutyAssignment, s State) error {
	if s.Person == nil {
		return fmt.Errorf("%w: %q", model.ErrPersonNotFound, a.PersonName)
	}
	return nil
}

// NoDuplicateDuty rejects an assignment already present in the history
func NoDuplicateDuty(a model.DutyAssignment, s State) error {
	for _, record := range s.History {
		if a.Matches(record) {
			return fmt.Errorf("%w: %s %s from %s", model.ErrDuplicateDuty, a.Rank, a.DutyTitle, a.StartDate)
		}
	}
	return nil
}

// NotRetired rejects any assignment once the career has ended
func NotRetired(_ model.DutyAssignment, s State) error {
	if current := s.Current(); current != nil && current.IsRetirement() {
		return fmt.Errorf("%w since %s", model.ErrPersonRetired, current.StartDate)
	}
	return nil
}

// ChronologicalOrder requires the new duty to start after the current one
func ChronologicalOrder(a model.DutyAssignment, s State) error {
	current := s.Current()
	if current != nil && !a.StartDate.After(current.StartDate) {
		return fmt.Errorf("%w: %s is not after %s", model.ErrDutyOutOfOrder, a.StartDate, current.StartDate)
	}
	return nil
}

// ValidatePersonName rejects empty and whitespace-only names. Valid names
// are stored verbatim.
func ValidatePersonName(name string) error {
	if isBlank(name) {
		return model.NewValidationError("name", "is required")
	}
	return nil
}

func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
