/*
 * Copyright © 2025 Suparena Software Inc., All rights reserved.
 */

// Package sqlstore provides a flag storage kept in a SQLite table. Several
// named stores can share one database; rows are keyed by (store, flag) and
// values are held as JSON.
package sqlstore

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/go-openapi/strfmt"
	"github.com/suparena/flagstore/storagemodels"
	_ "modernc.org/sqlite"
)

// DriverName is the database/sql driver registered by modernc.org/sqlite.
const DriverName = "sqlite"

const schema = `
CREATE TABLE IF NOT EXISTS flag_values (
	store      TEXT NOT NULL,
	flag       TEXT NOT NULL,
	value      TEXT NOT NULL,
	updated_at TEXT NOT NULL,
	PRIMARY KEY (store, flag)
)`

// Store is a read-write flag storage on a *sql.DB.
type Store struct {
	db    *sql.DB
	name  string
	owned bool
	now   func() time.Time
}

// Open opens (or creates) the SQLite database at dsn and returns a store
// named name on it. Close releases the database.
func Open(ctx context.Context, name, dsn string) (*Store, error) {
	db, err := sql.Open(DriverName, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s: %w", dsn, err)
	}
	// one writer at a time; SQLite serializes writes anyway
	db.SetMaxOpenConns(1)

	s, err := New(ctx, name, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	s.owned = true
	return s, nil
}

// New returns a store named name on an existing database, creating the table
// if needed. The caller keeps ownership of db.
func New(ctx context.Context, name string, db *sql.DB) (*Store, error) {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}
	return &Store{db: db, name: name, now: time.Now}, nil
}

func (s *Store) Name() string { return s.name }

// Close closes the database when it was opened by Open.
func (s *Store) Close() error {
	if s.owned {
		return s.db.Close()
	}
	return nil
}

// Get returns the stored value or null
func (s *Store) Get(ctx context.Context, key string) (storagemodels.Value, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT value FROM flag_values WHERE store = ? AND flag = ?`, s.name, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return storagemodels.Null(), nil
	}
	if err != nil {
		return storagemodels.Null(), fmt.Errorf("select %s: %w", key, err)
	}
	return decode(raw)
}

// Set upserts one value
func (s *Store) Set(ctx context.Context, key string, value storagemodels.Value) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", key, err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO flag_values (store, flag, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT (store, flag) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		s.name, key, string(raw), strfmt.DateTime(s.now()).String(),
	)
	if err != nil {
		return fmt.Errorf("upsert %s: %w", key, err)
	}
	return nil
}

// Remove deletes one value. Removing a missing key is not an error.
func (s *Store) Remove(ctx context.Context, key string) error {
	if _, err := s.db.ExecContext(ctx,
		`DELETE FROM flag_values WHERE store = ? AND flag = ?`, s.name, key,
	); err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}
	return nil
}

// All returns every value in this store
func (s *Store) All(ctx context.Context) (map[string]storagemodels.Value, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT flag, value FROM flag_values WHERE store = ? ORDER BY flag`, s.name,
	)
	if err != nil {
		return nil, fmt.Errorf("select all: %w", err)
	}
	defer rows.Close()

	result := make(map[string]storagemodels.Value)
	for rows.Next() {
		var flag, raw string
		if err := rows.Scan(&flag, &raw); err != nil {
			return nil, err
		}
		v, err := decode(raw)
		if err != nil {
			return nil, fmt.Errorf("flag %s: %w", flag, err)
		}
		result[flag] = v
	}
	return result, rows.Err()
}

// UpdatedAt returns when key was last written, or ok=false if it is not stored.
func (s *Store) UpdatedAt(ctx context.Context, key string) (strfmt.DateTime, bool, error) {
	var raw string
	err := s.db.QueryRowContext(ctx,
		`SELECT updated_at FROM flag_values WHERE store = ? AND flag = ?`, s.name, key,
	).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return strfmt.DateTime{}, false, nil
	}
	if err != nil {
		return strfmt.DateTime{}, false, err
	}
	t, err := strfmt.ParseDateTime(raw)
	if err != nil {
		return strfmt.DateTime{}, false, fmt.Errorf("bad timestamp %q: %w", raw, err)
	}
	return t, true, nil
}

func decode(raw string) (storagemodels.Value, error) {
	var v storagemodels.Value
	if err := json.Unmarshal([]byte(raw), &v); err != nil {
		return storagemodels.Null(), fmt.Errorf("failed to decode value: %w", err)
	}
	return v, nil
}
