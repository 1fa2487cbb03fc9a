// Package library keeps named presets in a SQLite database.
//
// Each row holds one asset in its CBOR encoding together with the columns
// needed to list and filter presets without decoding them. Builds with cgo
// use the mattn/go-sqlite3 driver; builds without cgo use modernc.org/sqlite.
package library

import (
	"context"
	"database/sql"
	_ "embed"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/runtime-presets/presets-go/pkg/asset"
	"github.com/runtime-presets/presets-go/pkg/log"
	"github.com/runtime-presets/presets-go/pkg/model"
	"github.com/runtime-presets/presets-go/pkg/preset"
	"github.com/runtime-presets/presets-go/pkg/transfer"
)

//go:embed schema.sql
var schemaSQL string

// Library errors.
var (
	ErrNotFound  = errors.New("preset not found")
	ErrEmptyName = errors.New("preset name is empty")
)

// Entry describes a stored preset.
type Entry struct {
	Name       string
	AssetID    string
	Type       string
	Attributes int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Library is a SQLite-backed preset collection.
type Library struct {
	db       *sql.DB
	mu       sync.RWMutex
	registry *model.Registry
	logger   log.Logger
}

// Open opens or creates the library at path.
// Use ":memory:" for an in-memory database.
func Open(ctx context.Context, path string, reg *model.Registry, logger log.Logger) (*Library, error) {
	db, err := sql.Open(driverName, path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if path == ":memory:" {
		// Every pooled connection would otherwise see its own database.
		db.SetMaxOpenConns(1)
	}

	if _, err := db.ExecContext(ctx, `PRAGMA journal_mode = WAL;`); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to configure database: %w", err)
	}

	l := &Library{db: db, registry: reg, logger: log.OrNoop(logger)}
	if err := l.migrate(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return l, nil
}

func (l *Library) migrate(ctx context.Context) error {
	_, err := l.db.ExecContext(ctx, schemaSQL)
	return err
}

// Close closes the database connection.
func (l *Library) Close() error {
	return l.db.Close()
}

// Save stores a under name, replacing any preset of the same name.
func (l *Library) Save(ctx context.Context, name string, a *asset.Asset) error {
	if name == "" {
		return ErrEmptyName
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if a.Name == "" {
		a.Name = name
	}
	a.Version = asset.Version
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now().UTC()
	}

	data, err := asset.Encode(a, asset.FormatCBOR)
	if err != nil {
		l.event(log.OpSave, log.OutcomeFailed, a.Type, name, err)
		return err
	}

	now := formatTime(time.Now())
	_, err = l.db.ExecContext(ctx, `
		INSERT INTO presets (name, asset_id, type_name, attribute_count, data, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(name) DO UPDATE SET
			asset_id = excluded.asset_id,
			type_name = excluded.type_name,
			attribute_count = excluded.attribute_count,
			data = excluded.data,
			updated_at = excluded.updated_at
	`, name, a.ID, a.Type, len(a.Attributes), data, formatTime(a.CreatedAt), now)
	if err != nil {
		l.event(log.OpSave, log.OutcomeFailed, a.Type, name, err)
		return err
	}
	l.event(log.OpSave, log.OutcomeOK, a.Type, name, nil)
	return nil
}

// SavePreset stores the template of p under name.
func (l *Library) SavePreset(ctx context.Context, name string, p *preset.Preset) error {
	a, err := asset.FromPreset(p, name)
	if err != nil {
		return err
	}
	return l.Save(ctx, name, a)
}

// Load returns the asset stored under name.
func (l *Library) Load(ctx context.Context, name string) (*asset.Asset, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var data []byte
	err := l.db.QueryRowContext(ctx, `SELECT data FROM presets WHERE name = ?`, name).Scan(&data)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return nil, err
	}

	a, unknown, err := asset.Decode(data, asset.FormatCBOR, l.registry)
	if err != nil {
		l.event(log.OpLoad, log.OutcomeFailed, "", name, err)
		return nil, fmt.Errorf("preset %q: %w", name, err)
	}
	for _, attr := range unknown {
		l.logger.Log(log.Event{
			Timestamp: time.Now(),
			Operation: log.OpLoad,
			Outcome:   log.OutcomeSkipped,
			Type:      a.Type,
			Attribute: attr,
			Detail:    name,
			Error:     asset.ErrUnknownAttribute.Error(),
		})
	}
	l.event(log.OpLoad, log.OutcomeOK, a.Type, name, nil)
	return a, nil
}

// LoadPreset loads the preset stored under name. The template lives in a
// persistent scope named after the preset.
func (l *Library) LoadPreset(ctx context.Context, name string, opts ...preset.Option) (*preset.Preset, *transfer.Report, error) {
	a, err := l.Load(ctx, name)
	if err != nil {
		return nil, nil, err
	}
	return a.ToPreset(l.registry, opts...)
}

// List returns all entries ordered by name.
func (l *Library) List(ctx context.Context) ([]Entry, error) {
	return l.query(ctx, `
		SELECT name, asset_id, type_name, attribute_count, created_at, updated_at
		FROM presets
		ORDER BY name
	`)
}

// ListByType returns the entries whose template has the given full type name.
func (l *Library) ListByType(ctx context.Context, typeName string) ([]Entry, error) {
	return l.query(ctx, `
		SELECT name, asset_id, type_name, attribute_count, created_at, updated_at
		FROM presets
		WHERE type_name = ?
		ORDER BY name
	`, typeName)
}

// Delete removes the preset stored under name.
func (l *Library) Delete(ctx context.Context, name string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	res, err := l.db.ExecContext(ctx, `DELETE FROM presets WHERE name = ?`, name)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	return nil
}

func (l *Library) query(ctx context.Context, q string, args ...any) ([]Entry, error) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	rows, err := l.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var entries []Entry
	for rows.Next() {
		var e Entry
		var created, updated string
		if err := rows.Scan(&e.Name, &e.AssetID, &e.Type, &e.Attributes, &created, &updated); err != nil {
			return nil, err
		}
		if e.CreatedAt, err = parseTime(created); err != nil {
			return nil, err
		}
		if e.UpdatedAt, err = parseTime(updated); err != nil {
			return nil, err
		}
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (l *Library) event(op log.Operation, outcome log.Outcome, typ, name string, err error) {
	l.logger.Log(log.Event{
		Timestamp: time.Now(),
		Operation: op,
		Outcome:   outcome,
		Type:      typ,
		Detail:    name,
		Error:     log.ErrorString(err),
	})
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339Nano)
}

func parseTime(s string) (time.Time, error) {
	return time.Parse(time.RFC3339Nano, s)
}
