package db

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// DB represents our sqlite3 database file.
type DB struct{ *gorm.DB }

// ErrNotFound is returned when a game, collection, or membership the caller
// named doesn't exist.
var ErrNotFound = errors.New("not found")

//go:embed schema.sql
var schema string

// Open returns a connection to a migrated sqlite3 database file on disk,
// creating the file and running migrations if necessary.
//
// The pool holds a single connection, so every write is serialized through
// it.
func Open(filename string) (*DB, error) {
	gdb, err := gorm.Open(sqlite.Open(dsn(filename)), &gorm.Config{
		Logger: logger.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("error opening db file at '%s': %w", filename, err)
	}

	sqlDB, err := gdb.DB()
	if err != nil {
		return nil, fmt.Errorf("error opening db file at '%s': %w", filename, err)
	}
	sqlDB.SetMaxOpenConns(1)

	db := &DB{gdb}

	if err := db.Exec(schema).Error; err != nil {
		return nil, fmt.Errorf("error migrating db at '%s': %w", filename, err)
	}

	return db, nil
}

// Close releases the underlying connection.
func (db *DB) Close() error {
	sqlDB, err := db.DB.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

func dsn(filename string) string {
	sep := "?"
	if strings.Contains(filename, "?") {
		sep = "&"
	}
	return filename + sep + "_foreign_keys=1&_busy_timeout=5000"
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}
