package database

import (
	"database/sql"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"donorly/internal/platform/config"
)

type GlobalDB struct {
	DB *sql.DB
}

func NewGlobalDBWrapper(db *sql.DB) *GlobalDB {
	return &GlobalDB{DB: db}
}

func NewGlobalDB(cfg config.GlobalDBConfig) (*sql.DB, error) {
	dsn := strings.TrimPrefix(cfg.URL, "file:")

	db, err := sql.Open("sqlite3", dsn)
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
