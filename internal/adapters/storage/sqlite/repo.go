package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/hylla/pipeline/internal/app"
	"github.com/hylla/pipeline/internal/domain"
	_ "modernc.org/sqlite"
)

// driverName defines a package constant value.
const driverName = "sqlite"

// foreignKeysDSN enables foreign keys on every pooled connection.
const foreignKeysDSN = "?_pragma=foreign_keys(1)"

// Repository is the item catalog. It is the external source of the column set
// and the initial collection; board arrangement is never written back.
type Repository struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens the requested operation.
func Open(path string) (*Repository, error) {
	if strings.TrimSpace(path) == "" {
		return nil, errors.New("sqlite path is required")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create sqlite dir: %w", err)
	}
	db, err := sql.Open(driverName, path+foreignKeysDSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}
	return newRepository(db)
}

// OpenInMemory opens in memory.
func OpenInMemory() (*Repository, error) {
	db, err := sql.Open(driverName, "file::memory:"+foreignKeysDSN)
	if err != nil {
		return nil, fmt.Errorf("open sqlite memory: %w", err)
	}
	// A private in-memory database only lives as long as its connection.
	db.SetMaxOpenConns(1)
	return newRepository(db)
}

// newRepository migrates db and wraps it.
func newRepository(db *sql.DB) (*Repository, error) {
	repo := &Repository{db: db, now: time.Now}
	if err := repo.migrate(context.Background()); err != nil {
		_ = db.Close()
		return nil, err
	}
	return repo, nil
}

// Close closes the requested operation.
func (r *Repository) Close() error {
	return r.db.Close()
}

// migrate handles migrate.
func (r *Repository) migrate(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS columns_v1 (
			id TEXT PRIMARY KEY,
			name TEXT NOT NULL,
			color TEXT NOT NULL DEFAULT '',
			position INTEGER NOT NULL,
			created_at TEXT NOT NULL
		);`,
		`CREATE TABLE IF NOT EXISTS items (
			id TEXT PRIMARY KEY,
			column_id TEXT NOT NULL,
			position INTEGER NOT NULL,
			fields_json TEXT NOT NULL DEFAULT '{}',
			created_at TEXT NOT NULL,
			FOREIGN KEY(column_id) REFERENCES columns_v1(id) ON DELETE CASCADE
		);`,
		`CREATE INDEX IF NOT EXISTS idx_items_position ON items(position, id);`,
	}
	for _, stmt := range stmts {
		if _, err := r.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate sqlite: %w", err)
		}
	}
	return nil
}

// CreateColumn creates column.
func (r *Repository) CreateColumn(ctx context.Context, c domain.Column) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO columns_v1(id, name, color, position, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, c.ID, c.Name, c.Color, c.Position, ts(r.now()))
	return translateWriteErr(err)
}

// ListColumns lists columns in board order.
func (r *Repository) ListColumns(ctx context.Context) ([]domain.Column, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, name, color, position
		FROM columns_v1
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Column{}
	for rows.Next() {
		var c domain.Column
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &c.Position); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// CreateItem appends an item to the end of the catalog order.
func (r *Repository) CreateItem(ctx context.Context, item domain.Item) error {
	fieldsJSON, err := encodeFields(item.Fields)
	if err != nil {
		return err
	}
	_, err = r.db.ExecContext(ctx, `
		INSERT INTO items(id, column_id, position, fields_json, created_at)
		VALUES (?, ?, (SELECT COALESCE(MAX(position) + 1, 0) FROM items), ?, ?)
	`, item.ID, item.ColumnID, fieldsJSON, ts(r.now()))
	return translateWriteErr(err)
}

// ListItems lists the initial collection in catalog order.
func (r *Repository) ListItems(ctx context.Context) ([]domain.Item, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, column_id, fields_json
		FROM items
		ORDER BY position ASC, id ASC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := []domain.Item{}
	for rows.Next() {
		var (
			item      domain.Item
			fieldsRaw string
		)
		if err := rows.Scan(&item.ID, &item.ColumnID, &fieldsRaw); err != nil {
			return nil, err
		}
		item.Fields, err = decodeFields(fieldsRaw)
		if err != nil {
			return nil, fmt.Errorf("decode item %q fields: %w", item.ID, err)
		}
		out = append(out, item)
	}
	return out, rows.Err()
}

// Reset deletes every column and item.
func (r *Repository) Reset(ctx context.Context) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Rollback()
	}()
	for _, stmt := range []string{`DELETE FROM items`, `DELETE FROM columns_v1`} {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// encodeFields serializes an item payload.
func encodeFields(fields domain.Fields) (string, error) {
	if fields == nil {
		return "{}", nil
	}
	raw, err := json.Marshal(fields)
	if err != nil {
		return "", fmt.Errorf("encode fields: %w", err)
	}
	return string(raw), nil
}

// decodeFields parses an item payload.
func decodeFields(raw string) (domain.Fields, error) {
	if strings.TrimSpace(raw) == "" {
		return domain.Fields{}, nil
	}
	var fields domain.Fields
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return nil, err
	}
	if fields == nil {
		fields = domain.Fields{}
	}
	return fields, nil
}

// translateWriteErr maps constraint violations onto domain errors.
func translateWriteErr(err error) error {
	if err == nil {
		return nil
	}
	msg := strings.ToLower(err.Error())
	switch {
	case strings.Contains(msg, "unique constraint"):
		return fmt.Errorf("%w: %v", domain.ErrDuplicateID, err)
	case strings.Contains(msg, "foreign key constraint"):
		return fmt.Errorf("%w: %v", domain.ErrUnknownColumn, err)
	default:
		return err
	}
}

// ts formats a timestamp for storage.
func ts(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

var _ app.CatalogWriter = (*Repository)(nil)
