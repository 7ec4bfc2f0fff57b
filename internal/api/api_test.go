package api_test

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"net/url"
	"os"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dutyledger/internal/api"
	"github.com/mcoot/dutyledger/internal/api/apierr"
	"github.com/mcoot/dutyledger/internal/api/response"
	"github.com/mcoot/dutyledger/internal/factory"
	"github.com/mcoot/dutyledger/internal/model"
)

// testServer creates a test server with all dependencies
type testServer struct {
	handler http.Handler
	app     *factory.TestApp
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:            logger,
		Clock:             app.Clock,
		RegistryService:   app.RegistryService,
		LedgerService:     app.LedgerService,
		QueryService:      app.QueryService,
		ProcessLogService: app.ProcessLogService,
		Metrics:           app.Metrics,
	})

	return &testServer{
		handler: router,
		app:     app,
	}
}

func (ts *testServer) request(method, path string, body any) *httptest.ResponseRecorder {
	var reqBody *bytes.Buffer
	if body != nil {
		b, _ := json.Marshal(body)
		reqBody = bytes.NewBuffer(b)
	} else {
		reqBody = bytes.NewBuffer(nil)
	}

	req := httptest.NewRequest(method, path, reqBody)
	req.Header.Set("Content-Type", "application/json")

	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	return rr
}

func (ts *testServer) register(t *testing.T, name string) string {
	t.Helper()
	rr := ts.request(http.MethodPost, "/api/v1/persons", map[string]string{"name": name})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	var resp response.Created
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.ID
}

func (ts *testServer) assign(name, rank, title, start string) *httptest.ResponseRecorder {
	return ts.request(http.MethodPost, "/api/v1/duties", map[string]string{
		"name":            name,
		"rank":            rank,
		"duty_title":      title,
		"duty_start_date": start,
	})
}

func errorCode(t *testing.T, rr *httptest.ResponseRecorder) string {
	t.Helper()
	var resp apierr.ErrorResponse
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &resp))
	return resp.Error.Code
}

func TestHealthCheck(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/health", nil)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "ok")
}

func TestRegisterPerson(t *testing.T) {
	ts := newTestServer(t)
	ts.app.MockIDs.Queue("person-1")

	id := ts.register(t, "Jane Lee")
	assert.Equal(t, "person-1", id)
}

func TestRegisterDuplicatePerson(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "John Doe")

	rr := ts.request(http.MethodPost, "/api/v1/persons", map[string]string{"name": "John Doe"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodePersonExists, errorCode(t, rr))
}

func TestRegisterBlankName(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/persons", map[string]string{"name": " "})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeValidationFailed, errorCode(t, rr))
}

func TestMalformedBody(t *testing.T) {
	ts := newTestServer(t)

	req := httptest.NewRequest(http.MethodPost, "/api/v1/persons", bytes.NewBufferString("{not json"))
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestUnknownFieldRejected(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodPost, "/api/v1/persons", map[string]string{"name": "Jane Lee", "rank": "Captain"})
	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, apierr.CodeInvalidRequest, errorCode(t, rr))
}

func TestJaneLeeCareerOverHTTP(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Jane Lee")

	require.Equal(t, http.StatusCreated, ts.assign("Jane Lee", "Lieutenant", "Pilot", "2020-01-01").Code)
	require.Equal(t, http.StatusCreated, ts.assign("Jane Lee", "Captain", "Commander", "2022-05-01").Code)
	require.Equal(t, http.StatusCreated, ts.assign("Jane Lee", "Captain", "RETIRED", "2024-06-15").Code)

	rr := ts.request(http.MethodGet, "/api/v1/persons/Jane%20Lee", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var status response.PersonStatus
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
	assert.Equal(t, "Captain", status.CurrentRank)
	assert.Equal(t, "RETIRED", status.CurrentDutyTitle)
	assert.True(t, status.Retired)
	require.NotNil(t, status.CareerStartDate)
	assert.Equal(t, "2020-01-01", status.CareerStartDate.String())
	require.NotNil(t, status.CareerEndDate)
	assert.Equal(t, "2024-06-14", status.CareerEndDate.String())

	rr = ts.request(http.MethodGet, "/api/v1/persons/Jane%20Lee/duties", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), `"duty_end_date":"2022-04-30"`)
	assert.Contains(t, rr.Body.String(), `"duty_end_date":null`)

	var history response.DutyHistory
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	require.Len(t, history.Duties, 3)
	assert.Equal(t, "Pilot", history.Duties[0].DutyTitle)
	end, closed := history.Duties[1].EndDate.EndDate()
	assert.True(t, closed)
	assert.Equal(t, civil.Date{Year: 2024, Month: time.June, Day: 14}, end)
	assert.True(t, history.Duties[2].Current)
}

func TestDutyHistoryNewestFirst(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Jane Lee")
	ts.assign("Jane Lee", "Lieutenant", "Pilot", "2020-01-01")
	ts.assign("Jane Lee", "Captain", "Commander", "2022-05-01")

	rr := ts.request(http.MethodGet, "/api/v1/persons/Jane%20Lee/duties?order=desc", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var history response.DutyHistory
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
	require.Len(t, history.Duties, 2)
	assert.Equal(t, "Commander", history.Duties[0].DutyTitle)

	rr = ts.request(http.MethodGet, "/api/v1/persons/Jane%20Lee/duties?order=sideways", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestAssignDutyErrors(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "John Doe")
	require.Equal(t, http.StatusCreated, ts.assign("John Doe", "Captain", "Commander", "2024-01-01").Code)

	cases := []struct {
		name   string
		rr     *httptest.ResponseRecorder
		status int
		code   string
	}{
		{"unknown person", ts.assign("Nobody", "Captain", "Pilot", "2024-01-01"), http.StatusNotFound, apierr.CodePersonNotFound},
		{"duplicate", ts.assign("John Doe", "Captain", "Commander", "2024-01-01"), http.StatusConflict, apierr.CodeDuplicateDuty},
		{"out of order", ts.assign("John Doe", "Major", "Instructor", "2023-01-01"), http.StatusBadRequest, apierr.CodeDutyOutOfOrder},
		{"missing rank", ts.assign("John Doe", "", "Instructor", "2025-01-01"), http.StatusBadRequest, apierr.CodeValidationFailed},
		{"malformed date", ts.assign("John Doe", "Major", "Instructor", "01/01/2025"), http.StatusBadRequest, apierr.CodeInvalidRequest},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.status, tc.rr.Code)
			assert.Equal(t, tc.code, errorCode(t, tc.rr))
		})
	}
}

func TestRetireKeepsRankAndDefaultsToToday(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Jane Lee")
	ts.assign("Jane Lee", "Captain", "Commander", "2022-05-01")

	// Test clock is 2024-01-01
	rr := ts.request(http.MethodPost, "/api/v1/persons/Jane%20Lee/retire", map[string]string{})
	require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())

	status, err := ts.app.QueryService.GetPerson(t.Context(), "Jane Lee")
	require.NoError(t, err)
	assert.Equal(t, "Captain", status.Projection.CurrentRank)
	assert.Equal(t, model.RetiredDutyTitle, status.Projection.CurrentDutyTitle)
	assert.Equal(t, civil.Date{Year: 2023, Month: time.December, Day: 31}, *status.Projection.CareerEndDate)

	rr = ts.request(http.MethodPost, "/api/v1/persons/Jane%20Lee/retire", map[string]string{"retire_date": "2025-01-01"})
	assert.Equal(t, http.StatusConflict, rr.Code)
	assert.Equal(t, apierr.CodePersonRetired, errorCode(t, rr))
}

func TestRetireWithoutDuties(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "John Doe")

	rr := ts.request(http.MethodPost, "/api/v1/persons/John%20Doe/retire", map[string]string{"retire_date": "2024-03-01"})
	require.Equal(t, http.StatusCreated, rr.Code)

	status, err := ts.app.QueryService.GetPerson(t.Context(), "John Doe")
	require.NoError(t, err)
	assert.Equal(t, "Retired", status.Projection.CurrentRank)
}

func TestRetireWithEmptyBody(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Jane Lee")

	req := httptest.NewRequest(http.MethodPost, "/api/v1/persons/Jane%20Lee/retire", nil)
	rr := httptest.NewRecorder()
	ts.handler.ServeHTTP(rr, req)
	assert.Equal(t, http.StatusCreated, rr.Code)
}

func TestNamesWithReservedPathCharacters(t *testing.T) {
	for _, name := range []string{"AC/DC", "100% Done", "Jane Lee?"} {
		t.Run(name, func(t *testing.T) {
			ts := newTestServer(t)
			ts.register(t, name)
			require.Equal(t, http.StatusCreated, ts.assign(name, "Captain", "Commander", "2022-05-01").Code)

			personPath := "/api/v1/persons/" + url.PathEscape(name)

			rr := ts.request(http.MethodGet, personPath, nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			var status response.PersonStatus
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
			assert.Equal(t, name, status.Name)
			assert.Equal(t, "Captain", status.CurrentRank)

			rr = ts.request(http.MethodGet, personPath+"/duties", nil)
			require.Equal(t, http.StatusOK, rr.Code, rr.Body.String())
			var history response.DutyHistory
			require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &history))
			assert.Equal(t, name, history.Person.Name)
			assert.Len(t, history.Duties, 1)

			rr = ts.request(http.MethodPost, personPath+"/retire", map[string]string{"retire_date": "2024-06-15"})
			require.Equal(t, http.StatusCreated, rr.Code, rr.Body.String())
		})
	}
}

func TestListPersons(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Zoe")
	ts.register(t, "Adam")

	rr := ts.request(http.MethodGet, "/api/v1/persons", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var list response.PersonList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Persons, 2)
	assert.Equal(t, "Zoe", list.Persons[0].Name)
	assert.Equal(t, "Adam", list.Persons[1].Name)
	assert.Nil(t, list.Persons[0].CareerStartDate)
}

func TestGetUnknownPerson(t *testing.T) {
	ts := newTestServer(t)

	rr := ts.request(http.MethodGet, "/api/v1/persons/Nobody", nil)
	assert.Equal(t, http.StatusNotFound, rr.Code)
	assert.Equal(t, apierr.CodePersonNotFound, errorCode(t, rr))
}

func TestProcessLogsRecordOutcomes(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Jane Lee")
	ts.request(http.MethodPost, "/api/v1/persons", map[string]string{"name": "Jane Lee"})

	rr := ts.request(http.MethodGet, "/api/v1/process-logs?limit=2", nil)
	require.Equal(t, http.StatusOK, rr.Code)

	var list response.ProcessLogList
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &list))
	require.Len(t, list.Entries, 2)
	assert.Equal(t, "ERROR", list.Entries[0].Level)
	assert.NotEmpty(t, list.Entries[0].Error)
	assert.Equal(t, "SUCCESS", list.Entries[1].Level)
	assert.Equal(t, "/api/v1/persons", list.Entries[1].RequestPath)

	rr = ts.request(http.MethodGet, "/api/v1/process-logs?limit=zero", nil)
	assert.Equal(t, http.StatusBadRequest, rr.Code)
}

func TestMetricsEndpoint(t *testing.T) {
	ts := newTestServer(t)
	ts.register(t, "Jane Lee")
	ts.assign("Nobody", "Captain", "Pilot", "2024-01-01")

	rr := ts.request(http.MethodGet, "/metrics", nil)
	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "dutyledger_persons_registered_total 1")
	assert.Contains(t, rr.Body.String(), `dutyledger_duty_rejections_total{kind="not_found"} 1`)
}
