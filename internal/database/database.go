package database

import (
	"database/sql"
	"fmt"
	"log"

	_ "github.com/lib/pq"
)

const schema = `
CREATE TABLE IF NOT EXISTS generations (
	id          UUID PRIMARY KEY,
	topic       TEXT NOT NULL,
	theme       TEXT NOT NULL,
	slide_count INTEGER NOT NULL,
	source      TEXT NOT NULL,
	origin      TEXT NOT NULL,
	filename    TEXT NOT NULL,
	warnings    INTEGER NOT NULL DEFAULT 0,
	duration_ms BIGINT NOT NULL DEFAULT 0,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE TABLE IF NOT EXISTS ai_usage (
	id                SERIAL PRIMARY KEY,
	generation_id     UUID,
	provider          TEXT NOT NULL,
	model             TEXT NOT NULL,
	prompt_tokens     INTEGER NOT NULL DEFAULT 0,
	completion_tokens INTEGER NOT NULL DEFAULT 0,
	total_tokens      INTEGER NOT NULL DEFAULT 0,
	cost              NUMERIC(12, 6) NOT NULL DEFAULT 0,
	created_at        TIMESTAMPTZ NOT NULL DEFAULT now()
);
`

func NewConnection(connectStr string) (*sql.DB, error) {
	db, err := sql.Open("postgres", connectStr)
	if err != nil {
		return nil, fmt.Errorf("error opening database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("error connecting to database: %w", err)
	}

	log.Println("Database connection established")
	return db, nil
}

// EnsureSchema creates the usage-log tables when they do not exist.
func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("error creating schema: %w", err)
	}
	return nil
}
