package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festivelo/pkg/models"
)

func date(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func TestDayCount(t *testing.T) {
	assert.Equal(t, 3, models.DayCount(date(2024, 1, 1), date(2024, 1, 3)))
	assert.Equal(t, 1, models.DayCount(date(2024, 1, 1), date(2024, 1, 1)))
	assert.Equal(t, 0, models.DayCount(date(2024, 1, 3), date(2024, 1, 1)))

	// Time-of-day must not change the calendar-day count.
	late := time.Date(2024, 1, 1, 23, 30, 0, 0, time.UTC)
	early := time.Date(2024, 1, 3, 0, 15, 0, 0, time.UTC)
	assert.Equal(t, 3, models.DayCount(late, early))
}

func TestEnsureDayPlansCreatesAllKeys(t *testing.T) {
	trip := models.Trip{
		StartDate: date(2024, 1, 1),
		EndDate:   date(2024, 1, 3),
	}
	trip.EnsureDayPlans()

	require.Len(t, trip.Plans, 3)
	for _, key := range []string{"day1", "day2", "day3"} {
		plan, ok := trip.Plans[key]
		require.True(t, ok, "missing %s", key)
		assert.Empty(t, plan.Places)
		assert.Empty(t, plan.Route)
		assert.Zero(t, plan.Version)
	}
}

func TestEnsureDayPlansPreservesExistingContent(t *testing.T) {
	trip := models.Trip{
		StartDate: date(2024, 1, 1),
		EndDate:   date(2024, 1, 2),
	}
	trip.EnsureDayPlans()

	place := models.Place{ID: "p1", Name: "Museum", Address: "Main St 1"}
	trip.Plans["day1"] = models.DayPlan{
		Places:  []models.Place{place},
		Route:   []models.PlaceID{"p1"},
		Version: 4,
	}

	// Extend the range by two days: day1/day2 untouched, day3/day4 added empty.
	trip.EndDate = date(2024, 1, 4)
	trip.EnsureDayPlans()

	require.Len(t, trip.Plans, 4)
	assert.Equal(t, []models.Place{place}, trip.Plans["day1"].Places)
	assert.Equal(t, 4, trip.Plans["day1"].Version)
	assert.Empty(t, trip.Plans["day3"].Places)
	assert.Empty(t, trip.Plans["day4"].Places)
}

func TestMissingDayPlans(t *testing.T) {
	trip := models.Trip{
		StartDate: date(2024, 1, 1),
		EndDate:   date(2024, 1, 2),
	}
	trip.EnsureDayPlans()
	trip.EndDate = date(2024, 1, 4)

	missing := trip.MissingDayPlans()
	assert.Len(t, missing, 2)
	assert.Contains(t, missing, "day3")
	assert.Contains(t, missing, "day4")
	// The trip itself is untouched.
	assert.Len(t, trip.Plans, 2)
}

func TestValidateRoute(t *testing.T) {
	places := []models.Place{{ID: "a"}, {ID: "b"}, {ID: "c"}}

	cases := []struct {
		name  string
		route []models.PlaceID
		ok    bool
	}{
		{"permutation", []models.PlaceID{"c", "a", "b"}, true},
		{"identity", []models.PlaceID{"a", "b", "c"}, true},
		{"missing entry", []models.PlaceID{"a", "b"}, false},
		{"duplicate entry", []models.PlaceID{"a", "b", "b"}, false},
		{"dangling id", []models.PlaceID{"a", "b", "x"}, false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			plan := models.DayPlan{Places: places, Route: tc.route}
			err := plan.ValidateRoute()
			if tc.ok {
				assert.NoError(t, err)
			} else {
				assert.Error(t, err)
			}
		})
	}

	t.Run("empty day", func(t *testing.T) {
		plan := models.DayPlan{Places: []models.Place{}, Route: []models.PlaceID{}}
		assert.NoError(t, plan.ValidateRoute())
	})
}

func TestPlaceIDAcceptsStringAndNumber(t *testing.T) {
	var p models.Place
	require.NoError(t, json.Unmarshal([]byte(`{"id": 126508, "name": "Beach"}`), &p))
	assert.Equal(t, models.PlaceID("126508"), p.ID)

	require.NoError(t, json.Unmarshal([]byte(`{"id": "P-77", "name": "Beach"}`), &p))
	assert.Equal(t, models.PlaceID("P-77"), p.ID)

	assert.Error(t, json.Unmarshal([]byte(`{"id": true}`), &p))
}

func TestDayKey(t *testing.T) {
	assert.Equal(t, "day1", models.DayKey(1))
	assert.Equal(t, "day12", models.DayKey(12))
}
