package handler

import (
	"fmt"
	"net/http"

	"github.com/mcoot/dutyledger/internal/api/request"
	"github.com/mcoot/dutyledger/internal/api/response"
	"github.com/mcoot/dutyledger/internal/services/processlog"
	"github.com/mcoot/dutyledger/internal/services/query"
	"github.com/mcoot/dutyledger/internal/services/registry"
)

// PersonHandler handles person endpoints
type PersonHandler struct {
	registry   *registry.Service
	query      *query.Service
	processLog *processlog.Service
}

// NewPersonHandler creates a new person handler
func NewPersonHandler(registry *registry.Service, query *query.Service, processLog *processlog.Service) *PersonHandler {
	return &PersonHandler{
		registry:   registry,
		query:      query,
		processLog: processLog,
	}
}

// Register handles POST /api/v1/persons
func (h *PersonHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req request.RegisterPersonRequest
	if err := decodeBody(w, r, &req, false); err != nil {
		WriteError(w, err)
		return
	}

	id, err := h.registry.Register(r.Context(), req.Name)
	h.processLog.Record(r.Context(), r.URL.Path, fmt.Sprintf("register person %q", req.Name), err)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusCreated, response.Created{ID: string(id)})
}

// List handles GET /api/v1/persons
func (h *PersonHandler) List(w http.ResponseWriter, r *http.Request) {
	persons := []response.PersonStatus{}
	for status, err := range h.query.ListPersons(r.Context()) {
		if err != nil {
			h.processLog.Record(r.Context(), r.URL.Path, "list persons", err)
			WriteError(w, err)
			return
		}
		persons = append(persons, response.PersonStatusFromModel(status))
	}

	h.processLog.Record(r.Context(), r.URL.Path, fmt.Sprintf("list persons (%d)", len(persons)), nil)
	response.JSON(w, http.StatusOK, response.PersonList{Persons: persons})
}

// Get handles GET /api/v1/persons/{name}
func (h *PersonHandler) Get(w http.ResponseWriter, r *http.Request) {
	name, err := pathName(r)
	if err != nil {
		WriteError(w, err)
		return
	}

	status, err := h.query.GetPerson(r.Context(), name)
	h.processLog.Record(r.Context(), r.URL.Path, fmt.Sprintf("get person %q", name), err)
	if err != nil {
		WriteError(w, err)
		return
	}

	response.JSON(w, http.StatusOK, response.PersonStatusFromModel(status))
}
