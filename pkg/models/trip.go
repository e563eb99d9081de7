package models

import (
	"encoding/json"
	"fmt"
	"time"
)

// PlaceID is the external place-source identifier. Source systems emit it as
// either a JSON string or a JSON number; it is normalized to a string and
// compared opaquely.
type PlaceID string

func (p *PlaceID) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '"' {
		var s string
		if err := json.Unmarshal(b, &s); err != nil {
			return err
		}
		*p = PlaceID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err != nil {
		return err
	}
	*p = PlaceID(n.String())
	return nil
}

type Coordinates struct {
	Lat float64 `json:"lat"`
	Lng float64 `json:"lng"`
}

// Place is a value object embedded in a day plan. Immutable once embedded
// except via whole-day replacement.
type Place struct {
	ID          PlaceID     `json:"id"`
	Type        int         `json:"type"`
	Name        string      `json:"name"`
	Address     string      `json:"address"`
	Coordinates Coordinates `json:"coordinates"`
}

// DayPlan holds one day's places and their traversal order. Route is always a
// permutation of the place ids after a successful mutation. Version is the
// optimistic concurrency counter, incremented on every committed replacement.
type DayPlan struct {
	Places  []Place   `json:"places"`
	Route   []PlaceID `json:"route"`
	Version int       `json:"version"`
}

// EmptyDayPlan returns a fresh plan for a newly added day key.
func EmptyDayPlan() DayPlan {
	return DayPlan{Places: []Place{}, Route: []PlaceID{}}
}

// ValidateRoute checks that the route is a duplicate-free permutation of the
// ids present in places.
func (d DayPlan) ValidateRoute() error {
	if len(d.Route) != len(d.Places) {
		return fmt.Errorf("route has %d entries for %d places", len(d.Route), len(d.Places))
	}
	ids := make(map[PlaceID]int, len(d.Places))
	for _, p := range d.Places {
		ids[p.ID]++
	}
	for _, id := range d.Route {
		ids[id]--
		if ids[id] < 0 {
			return fmt.Errorf("route entry %q does not match the places list", id)
		}
	}
	for id, n := range ids {
		if n != 0 {
			return fmt.Errorf("place %q missing from route", id)
		}
	}
	return nil
}

type Trip struct {
	ID            string             `json:"id"`
	Name          string             `json:"name"`
	StartDate     time.Time          `json:"start_date"`
	EndDate       time.Time          `json:"end_date"`
	Location      string             `json:"location"`
	CreateBy      User               `json:"create_by"`
	Collaborators []User             `json:"collaborators"`
	Plans         map[string]DayPlan `json:"plans"`
	CreatedAt     time.Time          `json:"created_at"`
	UpdatedAt     time.Time          `json:"updated_at"`
}

// DayKey returns the key for the 1-indexed day number.
func DayKey(n int) string {
	return fmt.Sprintf("day%d", n)
}

// DayCount returns the inclusive number of calendar days between start and
// end. Dates are truncated to UTC midnight first.
func DayCount(start, end time.Time) int {
	s := time.Date(start.Year(), start.Month(), start.Day(), 0, 0, 0, 0, time.UTC)
	e := time.Date(end.Year(), end.Month(), end.Day(), 0, 0, 0, 0, time.UTC)
	if e.Before(s) {
		return 0
	}
	return int(e.Sub(s).Hours()/24) + 1
}

// EnsureDayPlans adds empty plans for every day key the date range requires.
// Existing keys and their content are never touched or removed, so content
// survives a date-range change.
func (t *Trip) EnsureDayPlans() {
	if t.Plans == nil {
		t.Plans = make(map[string]DayPlan)
	}
	n := DayCount(t.StartDate, t.EndDate)
	for i := 1; i <= n; i++ {
		key := DayKey(i)
		if _, ok := t.Plans[key]; !ok {
			t.Plans[key] = EmptyDayPlan()
		}
	}
}

// MissingDayPlans returns empty plans for the required day keys not yet
// present, without mutating the trip.
func (t *Trip) MissingDayPlans() map[string]DayPlan {
	missing := make(map[string]DayPlan)
	n := DayCount(t.StartDate, t.EndDate)
	for i := 1; i <= n; i++ {
		key := DayKey(i)
		if _, ok := t.Plans[key]; !ok {
			missing[key] = EmptyDayPlan()
		}
	}
	return missing
}

type CreateTripRequest struct {
	Name          string    `json:"name"`
	StartDate     time.Time `json:"start_date"`
	EndDate       time.Time `json:"end_date"`
	Location      string    `json:"location"`
	Collaborators []int     `json:"collaborators"`
}

// UpdateTripRequest carries a partial update; nil fields are left unchanged.
type UpdateTripRequest struct {
	Name      *string    `json:"name"`
	StartDate *time.Time `json:"start_date"`
	EndDate   *time.Time `json:"end_date"`
	Location  *string    `json:"location"`
}

type SetDayPlanRequest struct {
	DayKey  string    `json:"dayKey"`
	Places  []Place   `json:"places"`
	Route   []PlaceID `json:"route"`
	Version int       `json:"version"`
}

type AddCollaboratorRequest struct {
	CollaboratorEmail string `json:"collaboratorEmail"`
}
