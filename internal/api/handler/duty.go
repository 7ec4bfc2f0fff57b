package handler

import (
	"fmt"
	"net/http"

	"github.com/mcoot/dutyledger/internal/api/request"
	"github.com/mcoot/dutyledger/internal/api/response"
	"github.com/mcoot/dutyledger/internal/dependencies/clock"
	"github.com/mcoot/dutyledger/internal/model"
	"github.com/mcoot/dutyledger/internal/services/ledger"
	"github.com/mcoot/dutyledger/internal/services/processlog"
	"github.com/mcoot/dutyledger/internal/services/query"
)

// DutyHandler handles duty assignment and history endpoints
type DutyHandler struct {
	ledger     *ledger.Service
	query      *query.Service
	processLog *processlog.Service
	clock      clock.Clock
}

// NewDutyHandler creates a new duty handler
func NewDutyHandler(
	ledger *ledger.Service,
	query *query.Service,
	processLog *processlog.Service,
	clock clock.Clock,
) *DutyHandler {
	return &DutyHandler{
		ledger:     ledger,
		query:      query,
		processLog: processLog,
		clock:      clock,
	}
}

// Assign handles POST /api/v1/duties
func (h *DutyHandler) Assign(w http.ResponseWriter, r *http.Request) {
	var req request.AssignDutyRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	start, err := request.ParseDate(req.DutyStartDate)
	if err != nil {
		WriteError(w, NewInvalidRequestError("duty_start_date must be a YYYY-MM-DD date"))
		return
	}

	id, err := h.ledger.AssignDuty(r.Context(), model.DutyAssignment{
		PersonName: req.Name,
		Rank:       req.Rank,
		DutyTitle:  req.DutyTitle,
		StartDate:  start,
	})
	h.processLog.Record(r.Context(), r.URL.Path,
		fmt.Sprintf("assign %s %s to %q from %s", req.Rank, req.DutyTitle, req.Name, req.DutyStartDate), err)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Created{ID: string(id)})
}

// Retire handles POST /api/v1/persons/{name}/retire. The retirement keeps
// the person's current rank, or ledger.RetiredRank if they never held a duty.
// Without a retire_date the person retires today.
func (h *DutyHandler) Retire(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var req request.RetireRequest
	if err := decodeBody(w, r, &req, true); err != nil {
		WriteError(w, err)
		return
	}
	date, err := request.ParseDate(req.RetireDate)
	if err != nil {
		WriteError(w, NewInvalidRequestError("retire_date must be a YYYY-MM-DD date"))
		return
	}
	if date.IsZero() {
		date = h.clock.Today()
	}

	id, err := h.ledger.Retire(r.Context(), name, date)
	h.processLog.Record(r.Context(), r.URL.Path, fmt.Sprintf("retire %q from %s", name, date), err)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Created{ID: string(id)})
}

// History handles GET /api/v1/persons/{name}/duties[?order=asc|desc]
func (h *DutyHandler) History(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	var newestFirst bool
	switch order := r.URL.Query().Get("order"); order {
	case "", "asc":
	case "desc":
		newestFirst = true
	default:
		WriteError(w, NewInvalidRequestError("order must be asc or desc"))
		return
	}

	history, err := h.query.GetDutyHistory(r.Context(), name)
	h.processLog.Record(r.Context(), r.URL.Path, fmt.Sprintf("duty history for %q", name), err)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.DutyHistoryFromModel(history, newestFirst))
}
