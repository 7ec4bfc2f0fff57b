package ledger

import (
	"errors"
	"fmt"

	"cloud.google.com/go/civil"

	"github.com/mcoot/dutyledger/internal/model"
)

// ErrLedgerCorrupt reports a stored history that breaks the single
// current duty invariant. It is never produced by the ledger itself.
var ErrLedgerCorrupt = errors.New("ledger corrupt: more than one current duty")

// Closure closes a current duty on the given date
type Closure struct {
	RecordID model.DutyRecordID
	EndDate  civil.Date
}

// Change is the set of writes one assignment makes
type Change struct {
	Close  *Closure // nil for a first assignment
	Insert model.DutyRecord
}

// Plan works out the writes for an assignment against a validated history.
// The current duty, if any, ends the day before the new one starts and the
// new duty becomes current.
func Plan(personID model.PersonID, history []*model.DutyRecord, a model.DutyAssignment, newID model.DutyRecordID) (Change, error) {
	var current *model.DutyRecord
	for _, record := range history {
		if !record.IsCurrent() {
			continue
		}
		if current != nil {
			return Change{}, ErrLedgerCorrupt
		}
		current = record
	}

	change := Change{
		Insert: model.DutyRecord{
			ID:        newID,
			PersonID:  personID,
			Rank:      a.Rank,
			DutyTitle: a.DutyTitle,
			StartDate: a.StartDate,
			End:       model.Active(),
		},
	}
	if current != nil {
		if !a.StartDate.After(current.StartDate) {
			return Change{}, fmt.Errorf("%w: %s is not after %s", model.ErrDutyOutOfOrder, a.StartDate, current.StartDate)
		}
		change.Close = &Closure{
			RecordID: current.ID,
			EndDate:  a.StartDate.AddDays(-1),
		}
	}
	return change, nil
}
