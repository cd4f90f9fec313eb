package database

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"
)

// Options selects and locates the database
type Options struct {
	Type       string // "sqlite" or "postgres"
	SQLitePath string
	URL        string
}

// Connect opens the database and makes sure the schema exists
func Connect(opts Options) (*sqlx.DB, error) {
	var (
		db  *sqlx.DB
		err error
	)

	switch opts.Type {
	case "postgres":
		db, err = sqlx.Connect("postgres", opts.URL)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to database: %w", err)
		}
	case "sqlite", "":
		db, err = openSQLite(opts.SQLitePath)
		if err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("unsupported database type %q", opts.Type)
	}

	if err := InitializeSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return db, nil
}

func openSQLite(path string) (*sqlx.DB, error) {
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	db, err := sqlx.Connect("sqlite3", path+"?_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	// SQLite doesn't support multiple writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	return db, nil
}

// InitializeSchema creates the tables if they don't exist
func InitializeSchema(db *sqlx.DB) error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if db.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	statements := []struct {
		name string
		ddl  string
	}{
		{"profiles", `
			CREATE TABLE IF NOT EXISTS profiles (
				id TEXT PRIMARY KEY,
				telegram_id BIGINT UNIQUE,
				username TEXT NOT NULL DEFAULT '',
				domain_id TEXT NOT NULL,
				notification_hour INTEGER NOT NULL DEFAULT 9,
				created_at TIMESTAMP NOT NULL,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"progression", `
			CREATE TABLE IF NOT EXISTS progression (
				user_id TEXT PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
				total_xp INTEGER NOT NULL DEFAULT 0,
				streak INTEGER NOT NULL DEFAULT 0,
				updated_at TIMESTAMP NOT NULL
			)`},
		{"completed_items", `
			CREATE TABLE IF NOT EXISTS completed_items (
				user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				item_id TEXT NOT NULL,
				completed_at TIMESTAMP NOT NULL,
				PRIMARY KEY (user_id, item_id)
			)`},
		{"skill_points", `
			CREATE TABLE IF NOT EXISTS skill_points (
				user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				skill TEXT NOT NULL,
				points INTEGER NOT NULL DEFAULT 0,
				PRIMARY KEY (user_id, skill)
			)`},
		{"activity", `
			CREATE TABLE IF NOT EXISTS activity (
				user_id TEXT PRIMARY KEY REFERENCES profiles(id) ON DELETE CASCADE,
				last_active_day TEXT NOT NULL
			)`},
		{"catalog_items", `
			CREATE TABLE IF NOT EXISTS catalog_items (
				id TEXT PRIMARY KEY,
				kind TEXT NOT NULL,
				title TEXT NOT NULL,
				description TEXT NOT NULL DEFAULT '',
				domain_id TEXT NOT NULL DEFAULT '',
				difficulty TEXT NOT NULL DEFAULT 'beginner',
				xp_reward INTEGER NOT NULL DEFAULT 0,
				estimated_time INTEGER NOT NULL DEFAULT 0,
				skills TEXT NOT NULL DEFAULT '[]'
			)`},
		{"flashcards", `
			CREATE TABLE IF NOT EXISTS flashcards (
				id TEXT PRIMARY KEY,
				deck_id TEXT NOT NULL REFERENCES catalog_items(id) ON DELETE CASCADE,
				question TEXT NOT NULL,
				answer TEXT NOT NULL,
				clinical_relevance TEXT NOT NULL DEFAULT ''
			)`},
		{"card_progress", `
			CREATE TABLE IF NOT EXISTS card_progress (
				user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				card_id TEXT NOT NULL REFERENCES flashcards(id) ON DELETE CASCADE,
				easiness_factor REAL NOT NULL DEFAULT 2.5,
				interval_days INTEGER NOT NULL DEFAULT 0,
				repetitions INTEGER NOT NULL DEFAULT 0,
				last_quality INTEGER NOT NULL DEFAULT 0,
				last_review_at TIMESTAMP,
				next_review_at TIMESTAMP NOT NULL,
				PRIMARY KEY (user_id, card_id)
			)`},
		{"quiz_results", `
			CREATE TABLE IF NOT EXISTS quiz_results (
				id ` + serial + `,
				user_id TEXT NOT NULL REFERENCES profiles(id) ON DELETE CASCADE,
				deck_id TEXT NOT NULL,
				total INTEGER NOT NULL,
				correct INTEGER NOT NULL,
				passed BOOLEAN NOT NULL,
				taken_at TIMESTAMP NOT NULL,
				duration INTEGER NOT NULL DEFAULT 0
			)`},
	}

	for _, st := range statements {
		if _, err := db.Exec(st.ddl); err != nil {
			return fmt.Errorf("failed to create %s table: %w", st.name, err)
		}
	}
	return nil
}
