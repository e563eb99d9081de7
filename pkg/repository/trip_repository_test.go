package repository_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"festivelo/pkg/event"
	"festivelo/pkg/models"
	"festivelo/pkg/repository"
)

// capturePublisher records feed events instead of touching redis.
type capturePublisher struct {
	events []event.Event
}

func (p *capturePublisher) Publish(channel string, evt event.Event) error {
	p.events = append(p.events, evt)
	return nil
}

var tripCols = []string{
	"id", "name", "start_date", "end_date", "location", "collaborators", "plans", "created_at", "updated_at",
	"u_id", "u_uuid", "u_email", "u_name", "u_created_at",
}

func tripRow(t *testing.T, id string, plans map[string]models.DayPlan) *sqlmock.Rows {
	t.Helper()
	plansJSON, err := json.Marshal(plans)
	require.NoError(t, err)
	now := time.Now()
	return sqlmock.NewRows(tripCols).AddRow(
		id, "Algarve", now, now, "Faro", "{}", plansJSON, now, now,
		1, "uuid-1", "owner@example.com", "Owner", now,
	)
}

func TestSetDayPlanWritesOnlyTheTargetKey(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	feed := &capturePublisher{}
	repo := repository.NewTripRepository(db, feed)

	plan := models.DayPlan{
		Places:  []models.Place{{ID: "a"}},
		Route:   []models.PlaceID{"a"},
		Version: 3,
	}
	planJSON, err := json.Marshal(plan)
	require.NoError(t, err)

	mock.ExpectExec(`jsonb_set\(plans, ARRAY\[\$2\], \$3::jsonb, false\)`).
		WithArgs("trip-1", "day1", planJSON, 2).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM trips t JOIN users u`).
		WithArgs("trip-1").
		WillReturnRows(tripRow(t, "trip-1", map[string]models.DayPlan{"day1": plan}))

	updated, err := repo.SetDayPlan("trip-1", "day1", plan, 2)
	require.NoError(t, err)
	assert.Equal(t, 3, updated.Plans["day1"].Version)

	require.Len(t, feed.events, 1)
	assert.Equal(t, event.OpUpdate, feed.events[0].Type)
	assert.Equal(t, "trip-1", feed.events[0].DocumentID)
	assert.NotEmpty(t, feed.events[0].Data, "update events carry the full snapshot")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSetDayPlanVersionPredicateRejectsStaleWrite(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	feed := &capturePublisher{}
	repo := repository.NewTripRepository(db, feed)

	mock.ExpectExec(`COALESCE\(\(plans->\$2->>'version'\)::int, 0\) = \$4`).
		WithArgs("trip-1", "day1", sqlmock.AnyArg(), 5).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = repo.SetDayPlan("trip-1", "day1", models.DayPlan{Version: 6}, 5)
	assert.ErrorIs(t, err, repository.ErrNotUpdated)
	assert.Empty(t, feed.events, "a rejected write publishes nothing")

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeletePublishesWithoutSnapshot(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	feed := &capturePublisher{}
	repo := repository.NewTripRepository(db, feed)

	mock.ExpectExec(`DELETE FROM trips WHERE id = \$1`).
		WithArgs("trip-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	require.NoError(t, repo.Delete("trip-1"))

	require.Len(t, feed.events, 1)
	assert.Equal(t, event.OpDelete, feed.events[0].Type)
	assert.Equal(t, "trip-1", feed.events[0].DocumentID)
	assert.Empty(t, feed.events[0].Data)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestDeleteUnknownTrip(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	feed := &capturePublisher{}
	repo := repository.NewTripRepository(db, feed)

	mock.ExpectExec(`DELETE FROM trips`).
		WithArgs("ghost").
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, repo.Delete("ghost"), repository.ErrNotFound)
	assert.Empty(t, feed.events)
}

func TestAddCollaboratorGuardedUpdate(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewTripRepository(db, &capturePublisher{})

	// The WHERE clause already excludes existing collaborators and the owner,
	// so a no-op shows up as zero affected rows.
	mock.ExpectExec(`array_append\(collaborators, \$2\)`).
		WithArgs("trip-1", 2).
		WillReturnResult(sqlmock.NewResult(0, 0))

	_, err = repo.AddCollaborator("trip-1", 2)
	assert.ErrorIs(t, err, repository.ErrNotUpdated)

	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetByIDNotFound(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	repo := repository.NewTripRepository(db, &capturePublisher{})

	mock.ExpectQuery(`SELECT .+ FROM trips t JOIN users u`).
		WithArgs("ghost").
		WillReturnRows(sqlmock.NewRows(tripCols))

	_, err = repo.GetByID("ghost")
	assert.ErrorIs(t, err, repository.ErrNotFound)
}

func TestUpdateMergesNewDayKeysUnderExistingPlans(t *testing.T) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer db.Close()

	feed := &capturePublisher{}
	repo := repository.NewTripRepository(db, feed)

	newPlans := map[string]models.DayPlan{"day3": models.EmptyDayPlan()}
	newPlansJSON, err := json.Marshal(newPlans)
	require.NoError(t, err)

	mock.ExpectExec(`plans = \$6::jsonb \|\| plans`).
		WithArgs("trip-1", nil, nil, sqlmock.AnyArg(), nil, newPlansJSON).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`SELECT .+ FROM trips t JOIN users u`).
		WithArgs("trip-1").
		WillReturnRows(tripRow(t, "trip-1", map[string]models.DayPlan{
			"day1": {Places: []models.Place{{ID: "a"}}, Route: []models.PlaceID{"a"}, Version: 1},
			"day3": models.EmptyDayPlan(),
		}))

	end := time.Date(2026, 6, 3, 0, 0, 0, 0, time.UTC)
	updated, err := repo.Update("trip-1", repository.TripFields{EndDate: &end}, newPlans)
	require.NoError(t, err)

	// Existing day content survives the merge.
	assert.Equal(t, 1, updated.Plans["day1"].Version)
	assert.Contains(t, updated.Plans, "day3")

	require.Len(t, feed.events, 1)
	assert.Equal(t, event.OpUpdate, feed.events[0].Type)

	assert.NoError(t, mock.ExpectationsWereMet())
}
