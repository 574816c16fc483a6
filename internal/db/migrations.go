package db

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log"
	"strings"

	"github.com/jmoiron/sqlx"
)

type migration struct {
	name string
	up   func(ctx context.Context) error
}

func (s *Store) migrations() []migration {
	ms := []migration{
		{name: "add_video_metadata", up: s.migrateVideoMetadata},
	}
	if s.legacyDir != "" {
		ms = append(ms, migration{name: "json_import", up: s.importLegacy})
	}
	return ms
}

// migrate creates the base schema and applies every migration not yet in the ledger.
func (s *Store) migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}

	for _, m := range s.migrations() {
		applied, err := s.hasMigration(ctx, m.name)
		if err != nil {
			return err
		}
		if applied {
			continue
		}
		if err := m.up(ctx); err != nil {
			return fmt.Errorf("migration %s: %w", m.name, err)
		}
		if err := s.markMigration(ctx, m.name); err != nil {
			return err
		}
		log.Printf("Applied migration %s", m.name)
	}
	return nil
}

func (s *Store) hasMigration(ctx context.Context, name string) (bool, error) {
	var one int
	err := s.db.GetContext(ctx, &one, "SELECT 1 FROM migrations WHERE name = ?", name)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("check migration %s: %w", name, err)
	}
	return true, nil
}

func (s *Store) markMigration(ctx context.Context, name string) error {
	_, err := s.db.ExecContext(ctx, "INSERT OR REPLACE INTO migrations (name) VALUES (?)", name)
	if err != nil {
		return fmt.Errorf("mark migration %s: %w", name, err)
	}
	return nil
}

// migrateVideoMetadata adds the enrichment columns to databases created before they existed.
func (s *Store) migrateVideoMetadata(ctx context.Context) error {
	if err := addColumn(ctx, s.db, "videos", "duration", "INTEGER"); err != nil {
		return err
	}
	return addColumn(ctx, s.db, "videos", "view_count", "INTEGER")
}

// addColumn adds a column, treating "already exists" as success.
func addColumn(ctx context.Context, conn sqlx.ExecerContext, table, column, decl string) error {
	_, err := conn.ExecContext(ctx, fmt.Sprintf("ALTER TABLE %s ADD COLUMN %s %s", table, column, decl))
	if err != nil && !strings.Contains(strings.ToLower(err.Error()), "duplicate column name") {
		return fmt.Errorf("add column %s.%s: %w", table, column, err)
	}
	return nil
}
