package repository

import (
	"database/sql"

	"festivelo/pkg/models"
)

type UserRepository interface {
	GetByID(id int) (models.User, error)
	GetByEmail(email string) (models.User, error)
	GetCredentials(email string) (models.User, string, error)
	UpdateName(id int, name string) (models.User, error)
	UpdatePassword(id int, passwordHash string) error
	Delete(id int) error
}

type userRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{db: db}
}

const userColumns = `id, uuid, email, name, created_at`

func (r *userRepository) GetByID(id int) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.UUID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *userRepository) GetByEmail(email string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.UUID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	return u, err
}

// GetCredentials returns the user plus the stored bcrypt hash.
func (r *userRepository) GetCredentials(email string) (models.User, string, error) {
	var u models.User
	var hash string
	err := r.db.QueryRow(
		`SELECT id, uuid, email, name, password, created_at FROM users WHERE email = $1`, email).
		Scan(&u.ID, &u.UUID, &u.Email, &u.Name, &hash, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, "", ErrNotFound
	}
	return u, hash, err
}

func (r *userRepository) UpdateName(id int, name string) (models.User, error) {
	var u models.User
	err := r.db.QueryRow(
		`UPDATE users SET name = $2 WHERE id = $1 RETURNING `+userColumns, id, name).
		Scan(&u.ID, &u.UUID, &u.Email, &u.Name, &u.CreatedAt)
	if err == sql.ErrNoRows {
		return models.User{}, ErrNotFound
	}
	return u, err
}

func (r *userRepository) UpdatePassword(id int, passwordHash string) error {
	res, err := r.db.Exec(`UPDATE users SET password = $2 WHERE id = $1`, id, passwordHash)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the user row. Sessions and favorites go with it via FK
// cascade; trips and reviews are handled explicitly by the service so the
// change feed sees them.
func (r *userRepository) Delete(id int) error {
	res, err := r.db.Exec(`DELETE FROM users WHERE id = $1`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}
