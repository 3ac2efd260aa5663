// Package storage persists a built index into SQLite so the viewer
// (or the stats command) can read it without re-running the pipeline.
// Nested component payloads are stored as JSON columns; the relational
// columns exist for lookup and ordering only.
package storage

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"xsdindex/internal/schema"
)

type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates or opens a SQLite database.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, err
	}

	if err := db.Ping(); err != nil {
		return nil, err
	}

	s := &SQLiteStore{db: db}
	if err := s.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to init schema: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func (s *SQLiteStore) initSchema() error {
	queries := []string{
		`CREATE TABLE IF NOT EXISTS meta (
			key TEXT PRIMARY KEY,
			value TEXT
		);`,
		`CREATE TABLE IF NOT EXISTS schemas (
			id TEXT PRIMARY KEY,
			file_name TEXT,
			display_name TEXT,
			target_namespace TEXT,
			payload JSON
		);`,
		`CREATE TABLE IF NOT EXISTS components (
			id TEXT PRIMARY KEY,
			schema_id TEXT,
			schema_file_name TEXT,
			kind TEXT,
			name TEXT,
			payload JSON
		);`,
		`CREATE TABLE IF NOT EXISTS warnings (
			seq INTEGER PRIMARY KEY AUTOINCREMENT,
			code TEXT,
			message TEXT,
			schema_id TEXT,
			schema_file_name TEXT,
			component_id TEXT
		);`,
		`CREATE INDEX IF NOT EXISTS idx_components_schema ON components(schema_id);`,
		`CREATE INDEX IF NOT EXISTS idx_components_order ON components(schema_file_name, kind, name, id);`,
	}

	for _, q := range queries {
		if _, err := s.db.Exec(q); err != nil {
			return err
		}
	}
	return nil
}

// SaveIndex replaces the stored index with the given one.
func (s *SQLiteStore) SaveIndex(ctx context.Context, idx *schema.Index) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"meta", "schemas", "components", "warnings"} {
		if _, err := tx.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}

	summary, err := json.Marshal(idx.Summary)
	if err != nil {
		return err
	}
	meta := map[string]string{
		"version":         fmt.Sprintf("%d", idx.Version),
		"generatedAt":     idx.GeneratedAt,
		"sourceDirectory": idx.SourceDirectory,
		"summary":         string(summary),
	}
	for key, value := range meta {
		if _, err := tx.ExecContext(ctx, "INSERT INTO meta (key, value) VALUES (?, ?)", key, value); err != nil {
			return err
		}
	}

	schemaStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO schemas (id, file_name, display_name, target_namespace, payload)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer schemaStmt.Close()

	for _, doc := range idx.Schemas {
		payload, err := json.Marshal(doc)
		if err != nil {
			return err
		}
		if _, err := schemaStmt.Exec(doc.ID, doc.FileName, doc.DisplayName, doc.TargetNamespace, payload); err != nil {
			return err
		}
	}

	componentStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO components (id, schema_id, schema_file_name, kind, name, payload)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer componentStmt.Close()

	for _, c := range idx.Components {
		payload, err := json.Marshal(c)
		if err != nil {
			return err
		}
		if _, err := componentStmt.Exec(c.ID, c.SchemaID, c.SchemaFileName, c.Kind, c.Name, payload); err != nil {
			return err
		}
	}

	warningStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO warnings (code, message, schema_id, schema_file_name, component_id)
		VALUES (?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer warningStmt.Close()

	for _, w := range idx.Warnings {
		if _, err := warningStmt.Exec(w.Code, w.Message, w.SchemaID, w.SchemaFileName, w.ComponentID); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// LoadIndex reads the stored index back into memory.
func (s *SQLiteStore) LoadIndex(ctx context.Context) (*schema.Index, error) {
	idx := &schema.Index{
		Warnings:   []schema.Warning{},
		Schemas:    []*schema.Document{},
		Components: []*schema.Component{},
	}

	rows, err := s.db.QueryContext(ctx, "SELECT key, value FROM meta")
	if err != nil {
		return nil, fmt.Errorf("failed to query meta: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var key, value string
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan meta: %w", err)
		}
		switch key {
		case "version":
			fmt.Sscanf(value, "%d", &idx.Version)
		case "generatedAt":
			idx.GeneratedAt = value
		case "sourceDirectory":
			idx.SourceDirectory = value
		case "summary":
			if err := json.Unmarshal([]byte(value), &idx.Summary); err != nil {
				return nil, fmt.Errorf("failed to decode summary: %w", err)
			}
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	schemaRows, err := s.db.QueryContext(ctx, "SELECT payload FROM schemas ORDER BY file_name")
	if err != nil {
		return nil, fmt.Errorf("failed to query schemas: %w", err)
	}
	defer schemaRows.Close()

	for schemaRows.Next() {
		var payload []byte
		if err := schemaRows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan schema: %w", err)
		}
		var doc schema.Document
		if err := json.Unmarshal(payload, &doc); err != nil {
			return nil, fmt.Errorf("failed to decode schema: %w", err)
		}
		idx.Schemas = append(idx.Schemas, &doc)
	}
	if err := schemaRows.Err(); err != nil {
		return nil, err
	}

	componentRows, err := s.db.QueryContext(ctx,
		"SELECT payload FROM components ORDER BY schema_file_name, kind, name, id")
	if err != nil {
		return nil, fmt.Errorf("failed to query components: %w", err)
	}
	defer componentRows.Close()

	for componentRows.Next() {
		var payload []byte
		if err := componentRows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan component: %w", err)
		}
		var c schema.Component
		if err := json.Unmarshal(payload, &c); err != nil {
			return nil, fmt.Errorf("failed to decode component: %w", err)
		}
		idx.Components = append(idx.Components, &c)
	}
	if err := componentRows.Err(); err != nil {
		return nil, err
	}

	warningRows, err := s.db.QueryContext(ctx,
		"SELECT code, message, schema_id, schema_file_name, component_id FROM warnings ORDER BY seq")
	if err != nil {
		return nil, fmt.Errorf("failed to query warnings: %w", err)
	}
	defer warningRows.Close()

	for warningRows.Next() {
		var w schema.Warning
		if err := warningRows.Scan(&w.Code, &w.Message, &w.SchemaID, &w.SchemaFileName, &w.ComponentID); err != nil {
			return nil, fmt.Errorf("failed to scan warning: %w", err)
		}
		idx.Warnings = append(idx.Warnings, w)
	}
	if err := warningRows.Err(); err != nil {
		return nil, err
	}

	return idx, nil
}
