package model_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"cloud.google.com/go/civil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcoot/dutyledger/internal/model"
)

func TestDutyEndJSON(t *testing.T) {
	type wrapper struct {
		End model.DutyEnd `json:"end"`
	}

	data, err := json.Marshal(wrapper{End: model.Active()})
	require.NoError(t, err)
	assert.JSONEq(t, `{"end":null}`, string(data))

	closedOn := civil.Date{Year: 2022, Month: time.April, Day: 30}
	data, err = json.Marshal(wrapper{End: model.ClosedOn(closedOn)})
	require.NoError(t, err)
	assert.JSONEq(t, `{"end":"2022-04-30"}`, string(data))

	var w wrapper
	require.NoError(t, json.Unmarshal([]byte(`{"end":"2022-04-30"}`), &w))
	end, closed := w.End.EndDate()
	assert.True(t, closed)
	assert.Equal(t, closedOn, end)

	require.NoError(t, json.Unmarshal([]byte(`{"end":null}`), &w))
	assert.True(t, w.End.IsActive())

	assert.Error(t, json.Unmarshal([]byte(`{"end":"30/04/2022"}`), &w))
}

func TestDutyEndZeroValueIsActive(t *testing.T) {
	var end model.DutyEnd
	assert.True(t, end.IsActive())
	assert.Equal(t, model.Active(), end)
}

func TestDutyRecord(t *testing.T) {
	r := &model.DutyRecord{Rank: "Captain", DutyTitle: "RETIRED"}
	assert.True(t, r.IsCurrent())
	assert.True(t, r.IsRetirement())

	r.DutyTitle = "Retired"
	assert.False(t, r.IsRetirement(), "retirement title is case-sensitive")

	r.End = model.ClosedOn(civil.Date{Year: 2024, Month: time.June, Day: 14})
	assert.False(t, r.IsCurrent())
}

func TestDutyAssignmentMatches(t *testing.T) {
	start := civil.Date{Year: 2020, Month: time.January, Day: 1}
	a := model.DutyAssignment{PersonName: "Jane Lee", Rank: "Lieutenant", DutyTitle: "Pilot", StartDate: start}

	assert.True(t, a.Matches(&model.DutyRecord{Rank: "Lieutenant", DutyTitle: "Pilot", StartDate: start}))
	assert.False(t, a.Matches(&model.DutyRecord{Rank: "Captain", DutyTitle: "Pilot", StartDate: start}))
	assert.False(t, a.Matches(&model.DutyRecord{Rank: "Lieutenant", DutyTitle: "Pilot", StartDate: start.AddDays(1)}))
}

func TestProjection(t *testing.T) {
	var p model.Projection
	assert.False(t, p.HasDuty())
	assert.False(t, p.IsRetired())

	start := civil.Date{Year: 2020, Month: time.January, Day: 1}
	p.CareerStartDate = &start
	assert.True(t, p.HasDuty())
	assert.False(t, p.IsRetired())

	end := civil.Date{Year: 2024, Month: time.June, Day: 14}
	p.CareerEndDate = &end
	assert.True(t, p.IsRetired())
}

func TestErrorKinds(t *testing.T) {
	cases := []struct {
		err  error
		kind error
	}{
		{model.ErrPersonNotFound, model.ErrNotFound},
		{model.ErrDutyRecordNotFound, model.ErrNotFound},
		{model.ErrProjectionNotFound, model.ErrNotFound},
		{model.ErrPersonExists, model.ErrConflict},
		{model.ErrDuplicateDuty, model.ErrConflict},
		{model.ErrPersonRetired, model.ErrConflict},
		{model.ErrDutyOutOfOrder, model.ErrValidation},
		{model.NewValidationError("rank", "must not be empty"), model.ErrValidation},
	}

	kinds := []error{model.ErrNotFound, model.ErrConflict, model.ErrValidation}
	for _, tc := range cases {
		t.Run(tc.err.Error(), func(t *testing.T) {
			wrapped := fmt.Errorf("assign duty: %w", tc.err)
			for _, kind := range kinds {
				assert.Equal(t, kind == tc.kind, errors.Is(wrapped, kind), "kind %v", kind)
			}
		})
	}
}

func TestValidationErrorMessage(t *testing.T) {
	err := model.NewValidationError("duty_title", "must not be empty")
	assert.Equal(t, "duty_title: must not be empty", err.Error())

	var target *model.ValidationError
	require.True(t, errors.As(fmt.Errorf("wrapped: %w", err), &target))
	assert.Equal(t, "duty_title", target.Field)
}
