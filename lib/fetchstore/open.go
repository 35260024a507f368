package fetchstore

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	"datapeek/lib/fetchstore/db"
)

// Config points the store at its backing database. Url takes a libsql
// server address; File takes a local sqlite path. Exactly one of the
// two should be set.
type Config struct {
	File string `json:"file"`
	Url  string `json:"url"`
}

// OpenDB opens the configured database and applies the schema, which
// is idempotent. Local database files are created on first open.
func (config Config) OpenDB() (*sql.DB, error) {
	if config.Url != "" {
		database, err := sql.Open("libsql", config.Url)
		if err != nil {
			return nil, err
		}
		return applySchema(database)
	}
	if config.File == "" {
		return nil, fmt.Errorf("a database path was not specified")
	}

	_, statErr := os.Stat(config.File)
	if os.IsNotExist(statErr) {
		err := os.MkdirAll(filepath.Dir(config.File), 0755)
		if err != nil {
			return nil, err
		}
		f, err := os.Create(config.File)
		if err != nil {
			return nil, err
		}
		f.Close()
	}

	database, err := sql.Open("sqlite", config.File)
	if err != nil {
		return nil, err
	}
	// see this stackoverflow post for information on why the following
	// lines exist: https://stackoverflow.com/questions/35804884/sqlite-concurrent-writing-performance
	database.SetMaxOpenConns(1)
	_, err = database.Exec("PRAGMA journal_mode=WAL")
	if err != nil {
		return nil, err
	}

	return applySchema(database)
}

func applySchema(database *sql.DB) (*sql.DB, error) {
	_, err := database.Exec(db.Schema)
	if err != nil {
		return nil, fmt.Errorf("apply schema: %w", err)
	}
	return database, nil
}
