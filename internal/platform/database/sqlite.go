package database

import (
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"linkr/internal/platform/config"
)

// New opens the link database. A single SQLite file holds both the links
// table and the append-only scans table.
func New(cfg config.DatabaseConfig) (*sqlx.DB, error) {
	dsn := cfg.Path + "?cache=shared&mode=rwc&_busy_timeout=5000"

	db, err := sqlx.Open("sqlite3", dsn)
	if err != nil {
		return nil, err
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	if err := db.Ping(); err != nil {
		return nil, err
	}

	return db, nil
}
