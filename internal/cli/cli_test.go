package cli

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/stretchr/testify/suite"

	"github.com/mcoot/dutyledger/internal/api"
	"github.com/mcoot/dutyledger/internal/api/response"
	"github.com/mcoot/dutyledger/internal/factory"
)

type CLISuite struct {
	suite.Suite
	server *httptest.Server
}

func TestCLISuite(t *testing.T) {
	suite.Run(t, new(CLISuite))
}

func (s *CLISuite) SetupTest() {
	app := factory.NewTestApp()
	router := api.NewRouter(api.RouterConfig{
		Logger:            slog.New(slog.NewTextHandler(io.Discard, nil)),
		Clock:             app.Clock,
		RegistryService:   app.RegistryService,
		LedgerService:     app.LedgerService,
		QueryService:      app.QueryService,
		ProcessLogService: app.ProcessLogService,
	})
	s.server = httptest.NewServer(router)
}

func (s *CLISuite) TearDownTest() {
	s.server.Close()
}

func (s *CLISuite) run(args ...string) (string, error) {
	cmd := NewRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--server", s.server.URL}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func (s *CLISuite) TestHealth() {
	out, err := s.run("health")
	s.Require().NoError(err)
	s.Equal("Status: ok\n", out)
}

func (s *CLISuite) TestCareerText() {
	_, err := s.run("person", "register", "--name", "Jane Lee")
	s.Require().NoError(err)

	_, err = s.run("duty", "assign", "--name", "Jane Lee", "--rank", "Lieutenant", "--title", "Pilot", "--start", "2020-01-01")
	s.Require().NoError(err)
	_, err = s.run("duty", "assign", "--name", "Jane Lee", "--rank", "Captain", "--title", "Commander", "--start", "2022-05-01")
	s.Require().NoError(err)

	out, err := s.run("person", "get", "Jane Lee")
	s.Require().NoError(err)
	s.Contains(out, "Rank: Captain")
	s.Contains(out, "Career: 2020-01-01 to -")

	out, err = s.run("duty", "history", "Jane Lee")
	s.Require().NoError(err)
	s.Contains(out, "2022-04-30")
	s.Contains(out, "current")
}

func (s *CLISuite) TestHistoryJSONNewestFirst() {
	_, err := s.run("person", "register", "--name", "John Doe")
	s.Require().NoError(err)
	_, err = s.run("duty", "assign", "--name", "John Doe", "--rank", "Private", "--title", "Rifleman", "--start", "2019-03-01")
	s.Require().NoError(err)
	_, err = s.run("duty", "assign", "--name", "John Doe", "--rank", "Corporal", "--title", "Fire Team Leader", "--start", "2021-03-01")
	s.Require().NoError(err)

	out, err := s.run("--output", "json", "duty", "history", "John Doe", "--desc")
	s.Require().NoError(err)

	var history response.DutyHistory
	s.Require().NoError(json.Unmarshal([]byte(out), &history))
	s.Require().Len(history.Duties, 2)
	s.Equal("Corporal", history.Duties[0].Rank)
	s.True(history.Duties[0].Current)
}

func (s *CLISuite) TestRetire() {
	_, err := s.run("person", "register", "--name", "Jane Lee")
	s.Require().NoError(err)
	_, err = s.run("duty", "assign", "--name", "Jane Lee", "--rank", "Captain", "--title", "Commander", "--start", "2022-05-01")
	s.Require().NoError(err)

	_, err = s.run("duty", "retire", "--name", "Jane Lee", "--date", "2024-06-15")
	s.Require().NoError(err)

	out, err := s.run("person", "list")
	s.Require().NoError(err)
	s.Contains(out, "RETIRED")
	s.Contains(out, "2024-06-14")
}

func (s *CLISuite) TestNameWithSlash() {
	_, err := s.run("person", "register", "--name", "AC/DC")
	s.Require().NoError(err)
	_, err = s.run("duty", "assign", "--name", "AC/DC", "--rank", "Captain", "--title", "Commander", "--start", "2022-05-01")
	s.Require().NoError(err)

	out, err := s.run("person", "get", "AC/DC")
	s.Require().NoError(err)
	s.Contains(out, "Person: AC/DC")

	_, err = s.run("duty", "retire", "--name", "AC/DC", "--date", "2024-06-15")
	s.Require().NoError(err)

	out, err = s.run("duty", "history", "AC/DC")
	s.Require().NoError(err)
	s.Contains(out, "RETIRED")
}

func (s *CLISuite) TestAPIErrorsAreReturned() {
	_, err := s.run("person", "get", "Nobody")

	var apiErr *APIError
	s.Require().ErrorAs(err, &apiErr)
	s.Equal(http.StatusNotFound, apiErr.Status)
	s.Equal("PERSON_NOT_FOUND", apiErr.Code)
}

func (s *CLISuite) TestLogs() {
	_, err := s.run("person", "register", "--name", "Jane Lee")
	s.Require().NoError(err)
	_, err = s.run("person", "register", "--name", "Jane Lee")
	s.Require().Error(err)

	out, err := s.run("logs", "--limit", "1")
	s.Require().NoError(err)
	s.Contains(out, "[ERROR] /api/v1/persons")
}

func (s *CLISuite) TestRejectsUnknownOutputFormat() {
	_, err := s.run("--output", "yaml", "health")
	s.Require().Error(err)
}

func (s *CLISuite) TestMissingRequiredFlag() {
	_, err := s.run("duty", "assign", "--name", "Jane Lee")
	s.Require().Error(err)
}

func TestConfigFromEnvironment(t *testing.T) {
	cfg, err := configFrom(map[string]string{
		"DUTYCTL_SERVER": "http://registry:9000",
		"DUTYCTL_OUTPUT": "json",
	})
	require.NoError(t, err)
	assert.Equal(t, "http://registry:9000", cfg.ServerURL)
	assert.Equal(t, "json", cfg.Output)

	cfg, err = configFrom(map[string]string{})
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080", cfg.ServerURL)
	assert.Equal(t, "text", cfg.Output)
}
