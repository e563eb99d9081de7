package repository

import (
	"database/sql"
	"encoding/json"
	"log"
	"time"

	"festivelo/pkg/event"
	"festivelo/pkg/models"

	"github.com/lib/pq"
)

// Publisher is the mutation-feed sink. The repository publishes one event per
// committed trip mutation, in commit order.
type Publisher interface {
	Publish(channel string, evt event.Event) error
}

// TripFields carries a partial field update; nil pointers leave the stored
// value unchanged.
type TripFields struct {
	Name      *string
	StartDate *time.Time
	EndDate   *time.Time
	Location  *string
}

type TripRepository interface {
	Create(t models.Trip, ownerID int, collaboratorIDs []int) (models.Trip, error)
	GetByID(id string) (models.Trip, error)
	ListForUser(userID int) ([]models.Trip, error)
	Update(id string, fields TripFields, newPlans map[string]models.DayPlan) (models.Trip, error)
	Delete(id string) error
	SetDayPlan(tripID, dayKey string, plan models.DayPlan, baseVersion int) (models.Trip, error)
	AddCollaborator(tripID string, userID int) (models.Trip, error)
	DeleteOwnedBy(userID int) ([]string, error)
	RemoveCollaborator(userID int) ([]string, error)
}

type tripRepository struct {
	db   *sql.DB
	feed Publisher
}

func NewTripRepository(db *sql.DB, feed Publisher) TripRepository {
	return &tripRepository{db: db, feed: feed}
}

const tripColumns = `t.id, t.name, t.start_date, t.end_date, t.location, t.collaborators, t.plans, t.created_at, t.updated_at,
       u.id, u.uuid, u.email, u.name, u.created_at`

func (r *tripRepository) Create(t models.Trip, ownerID int, collaboratorIDs []int) (models.Trip, error) {
	plansJSON, err := json.Marshal(t.Plans)
	if err != nil {
		return models.Trip{}, err
	}

	collabs := make(pq.Int64Array, 0, len(collaboratorIDs))
	for _, id := range collaboratorIDs {
		collabs = append(collabs, int64(id))
	}

	_, err = r.db.Exec(`
		INSERT INTO trips (id, name, start_date, end_date, location, create_by, collaborators, plans)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8::jsonb)`,
		t.ID, t.Name, t.StartDate, t.EndDate, t.Location, ownerID, collabs, plansJSON,
	)
	if err != nil {
		return models.Trip{}, err
	}

	created, err := r.GetByID(t.ID)
	if err != nil {
		return models.Trip{}, err
	}
	r.publish(event.OpInsert, created.ID, &created)
	return created, nil
}

func (r *tripRepository) GetByID(id string) (models.Trip, error) {
	row := r.db.QueryRow(`
		SELECT `+tripColumns+`
		FROM trips t JOIN users u ON u.id = t.create_by
		WHERE t.id = $1`, id)

	t, collabIDs, err := scanTrip(row)
	if err == sql.ErrNoRows {
		return models.Trip{}, ErrNotFound
	}
	if err != nil {
		return models.Trip{}, err
	}

	users, err := r.usersByID(collabIDs)
	if err != nil {
		return models.Trip{}, err
	}
	t.Collaborators = resolveCollaborators(collabIDs, users)
	return t, nil
}

func (r *tripRepository) ListForUser(userID int) ([]models.Trip, error) {
	rows, err := r.db.Query(`
		SELECT `+tripColumns+`
		FROM trips t JOIN users u ON u.id = t.create_by
		WHERE t.create_by = $1 OR $1 = ANY(t.collaborators)
		ORDER BY t.created_at DESC`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	trips := []models.Trip{}
	var collabIDs [][]int64
	var allIDs []int64
	for rows.Next() {
		t, ids, err := scanTrip(rows)
		if err != nil {
			return nil, err
		}
		trips = append(trips, t)
		collabIDs = append(collabIDs, ids)
		allIDs = append(allIDs, ids...)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	users, err := r.usersByID(allIDs)
	if err != nil {
		return nil, err
	}
	for i := range trips {
		trips[i].Collaborators = resolveCollaborators(collabIDs[i], users)
	}
	return trips, nil
}

func (r *tripRepository) Update(id string, fields TripFields, newPlans map[string]models.DayPlan) (models.Trip, error) {
	if newPlans == nil {
		newPlans = map[string]models.DayPlan{}
	}
	plansJSON, err := json.Marshal(newPlans)
	if err != nil {
		return models.Trip{}, err
	}

	// New empty day keys sit on the left of || so that existing day content
	// always wins, even against a concurrent day-plan write.
	res, err := r.db.Exec(`
		UPDATE trips
		   SET name = COALESCE($2, name),
		       start_date = COALESCE($3, start_date),
		       end_date = COALESCE($4, end_date),
		       location = COALESCE($5, location),
		       plans = $6::jsonb || plans,
		       updated_at = NOW()
		 WHERE id = $1`,
		id, fields.Name, fields.StartDate, fields.EndDate, fields.Location, plansJSON,
	)
	if err != nil {
		return models.Trip{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Trip{}, ErrNotFound
	}

	updated, err := r.GetByID(id)
	if err != nil {
		return models.Trip{}, err
	}
	r.publish(event.OpUpdate, id, &updated)
	return updated, nil
}

func (r *tripRepository) Delete(id string) error {
	res, err := r.db.Exec(`DELETE FROM trips WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	r.publish(event.OpDelete, id, nil)
	return nil
}

// SetDayPlan atomically replaces a single day key's plan. The jsonb_set path
// is scoped to that key, so concurrent writes to other day keys of the same
// trip never clobber each other, and the version predicate rejects writes
// based on a stale read. ErrNotUpdated covers a missing trip, a missing day
// key and a version mismatch; callers disambiguate by re-reading.
func (r *tripRepository) SetDayPlan(tripID, dayKey string, plan models.DayPlan, baseVersion int) (models.Trip, error) {
	planJSON, err := json.Marshal(plan)
	if err != nil {
		return models.Trip{}, err
	}

	res, err := r.db.Exec(`
		UPDATE trips
		   SET plans = jsonb_set(plans, ARRAY[$2], $3::jsonb, false),
		       updated_at = NOW()
		 WHERE id = $1
		   AND plans ? $2
		   AND COALESCE((plans->$2->>'version')::int, 0) = $4`,
		tripID, dayKey, planJSON, baseVersion,
	)
	if err != nil {
		return models.Trip{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Trip{}, ErrNotUpdated
	}

	updated, err := r.GetByID(tripID)
	if err != nil {
		return models.Trip{}, err
	}
	r.publish(event.OpUpdate, tripID, &updated)
	return updated, nil
}

func (r *tripRepository) AddCollaborator(tripID string, userID int) (models.Trip, error) {
	res, err := r.db.Exec(`
		UPDATE trips
		   SET collaborators = array_append(collaborators, $2),
		       updated_at = NOW()
		 WHERE id = $1
		   AND NOT ($2 = ANY(collaborators))
		   AND create_by <> $2`,
		tripID, userID,
	)
	if err != nil {
		return models.Trip{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return models.Trip{}, ErrNotUpdated
	}

	updated, err := r.GetByID(tripID)
	if err != nil {
		return models.Trip{}, err
	}
	r.publish(event.OpUpdate, tripID, &updated)
	return updated, nil
}

func (r *tripRepository) DeleteOwnedBy(userID int) ([]string, error) {
	rows, err := r.db.Query(`DELETE FROM trips WHERE create_by = $1 RETURNING id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	for _, id := range ids {
		r.publish(event.OpDelete, id, nil)
	}
	return ids, nil
}

func (r *tripRepository) RemoveCollaborator(userID int) ([]string, error) {
	rows, err := r.db.Query(`
		UPDATE trips
		   SET collaborators = array_remove(collaborators, $1),
		       updated_at = NOW()
		 WHERE $1 = ANY(collaborators)
		 RETURNING id`, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for _, id := range ids {
		if t, err := r.GetByID(id); err == nil {
			r.publish(event.OpUpdate, id, &t)
		}
	}
	return ids, nil
}

// publish emits a feed event for a committed mutation. The feed is
// best-effort; a publish failure never fails the mutation itself.
func (r *tripRepository) publish(op, id string, t *models.Trip) {
	evt := event.Event{Type: op, DocumentID: id}
	if t != nil {
		raw, err := json.Marshal(t)
		if err != nil {
			log.Printf("[STORE] feed marshal %s %s: %v", op, id, err)
			return
		}
		evt.Data = raw
	}
	if err := r.feed.Publish(event.TripChanges, evt); err != nil {
		log.Printf("[STORE] feed publish %s %s: %v", op, id, err)
	}
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanTrip(row rowScanner) (models.Trip, []int64, error) {
	var t models.Trip
	var collabIDs pq.Int64Array
	var plansJSON []byte
	err := row.Scan(
		&t.ID, &t.Name, &t.StartDate, &t.EndDate, &t.Location, &collabIDs, &plansJSON, &t.CreatedAt, &t.UpdatedAt,
		&t.CreateBy.ID, &t.CreateBy.UUID, &t.CreateBy.Email, &t.CreateBy.Name, &t.CreateBy.CreatedAt,
	)
	if err != nil {
		return models.Trip{}, nil, err
	}
	if err := json.Unmarshal(plansJSON, &t.Plans); err != nil {
		return models.Trip{}, nil, err
	}
	return t, collabIDs, nil
}

func (r *tripRepository) usersByID(ids []int64) (map[int]models.User, error) {
	users := make(map[int]models.User, len(ids))
	if len(ids) == 0 {
		return users, nil
	}
	rows, err := r.db.Query(`
		SELECT id, uuid, email, name, created_at FROM users WHERE id = ANY($1)`,
		pq.Int64Array(ids))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var u models.User
		if err := rows.Scan(&u.ID, &u.UUID, &u.Email, &u.Name, &u.CreatedAt); err != nil {
			return nil, err
		}
		users[u.ID] = u
	}
	return users, rows.Err()
}

func resolveCollaborators(ids []int64, users map[int]models.User) []models.User {
	out := []models.User{}
	for _, id := range ids {
		if u, ok := users[int(id)]; ok {
			out = append(out, u)
		}
	}
	return out
}
