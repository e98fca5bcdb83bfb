package database

import (
	"database/sql"
	"log"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

var DB *sql.DB

// Schema creates the personas table and its unique email index. It is
// executed on every startup; IF NOT EXISTS keeps it idempotent.
const Schema = `
CREATE TABLE IF NOT EXISTS personas (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	first_name TEXT NOT NULL,
	last_name TEXT NOT NULL,
	email TEXT NOT NULL UNIQUE,
	phone TEXT,
	birth_date TEXT,
	is_active BOOLEAN NOT NULL DEFAULT 1,
	notes TEXT,
	created_at TIMESTAMP NOT NULL
);

CREATE UNIQUE INDEX IF NOT EXISTS idx_personas_email ON personas(email);
`

// Init opens the SQLite database at the given path and ensures the schema exists
func Init(path string) error {
	var err error

	// Open SQLite database (creates if doesn't exist)
	DB, err = sql.Open("sqlite3", path+"?_journal_mode=WAL&_synchronous=NORMAL&_busy_timeout=30000&_foreign_keys=ON")
	if err != nil {
		return err
	}

	// Configure connection pool
	DB.SetMaxOpenConns(25)
	DB.SetMaxIdleConns(10)
	DB.SetConnMaxLifetime(time.Hour)

	// Test the connection
	if err = DB.Ping(); err != nil {
		return err
	}

	if err = optimizeDatabase(); err != nil {
		return err
	}

	log.Println("Database connected successfully with WAL mode")

	// Create schema if absent
	if _, err = DB.Exec(Schema); err != nil {
		return err
	}

	return nil
}

// optimizeDatabase configures SQLite for optimal performance
func optimizeDatabase() error {
	// Enable WAL mode
	_, err := DB.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return err
	}

	// Set synchronous mode to NORMAL for better performance
	_, err = DB.Exec("PRAGMA synchronous=NORMAL")
	if err != nil {
		return err
	}

	// Use memory for temp storage
	_, err = DB.Exec("PRAGMA temp_store=MEMORY")
	if err != nil {
		return err
	}

	// Set busy timeout to 30 seconds
	_, err = DB.Exec("PRAGMA busy_timeout=30000")
	if err != nil {
		return err
	}

	return nil
}

// Close closes the database connection
func Close() error {
	if DB != nil {
		return DB.Close()
	}
	return nil
}
