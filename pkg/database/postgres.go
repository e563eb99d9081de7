package database

import (
	"database/sql"
	"log"
	"os"

	"festivelo/pkg/database/migrations"

	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
)

func Connect() *sql.DB {
	connStr := os.Getenv("DATABASE_URL")
	if connStr == "" {
		log.Println("[DB] warning: DATABASE_URL not set")
	}

	db, err := sql.Open("postgres", connStr)
	if err != nil {
		log.Fatal("[DB] open failed:", err)
	}

	if err = db.Ping(); err != nil {
		log.Fatal("[DB] ping failed:", err)
	}

	log.Println("[DB] PostgreSQL connection established")
	return db
}

// Migrate applies the embedded goose migrations.
func Migrate(db *sql.DB) {
	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect("postgres"); err != nil {
		log.Fatalf("[DB] goose dialect: %v", err)
	}
	if err := goose.Up(db, "."); err != nil {
		log.Fatalf("[DB] migrate: %v", err)
	}
	log.Println("[DB] schema up to date")
}
