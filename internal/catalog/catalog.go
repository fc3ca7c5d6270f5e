// Package catalog keeps an index of saved dashboards and a history of what
// happened to them, in SQLite (default) or PostgreSQL.
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"sync"
	"time"

	_ "github.com/lib/pq"
	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"
)

// Supported drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// History actions.
const (
	ActionCreate = "create"
	ActionLoad   = "load"
	ActionDelete = "delete"
)

// Entry is one catalogued dashboard.
type Entry struct {
	ID        string    `json:"id"`
	Title     string    `json:"title"`
	Charts    []string  `json:"charts"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Event is one history row.
type Event struct {
	ID          string    `json:"id"`
	DashboardID string    `json:"dashboard_id"`
	Action      string    `json:"action"`
	Charts      int       `json:"charts"`
	At          time.Time `json:"at"`
}

// timeLayout is fixed-width so text columns sort chronologically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Catalog is a database/sql backed dashboard index.
type Catalog struct {
	db     *sql.DB
	driver string

	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
}

// Open connects to the catalog database and applies the schema. For SQLite the
// dsn is a file path whose directory is created if needed.
func Open(driver, dsn string) (*Catalog, error) {
	switch driver {
	case DriverSQLite:
		if err := os.MkdirAll(filepath.Dir(dsn), 0o755); err != nil {
			return nil, fmt.Errorf("create catalog dir: %w", err)
		}
		dsn += "?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)"
	case DriverPostgres:
	default:
		return nil, fmt.Errorf("unsupported catalog driver %q (use sqlite or postgres)", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("open catalog: %w", err)
	}
	c := &Catalog{
		db:      db,
		driver:  driver,
		entropy: ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0),
	}
	if err := c.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate catalog: %w", err)
	}
	return c, nil
}

// Close releases the database handle.
func (c *Catalog) Close() error { return c.db.Close() }

func (c *Catalog) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS dashboards (
			id          TEXT PRIMARY KEY,
			title       TEXT NOT NULL,
			charts      TEXT NOT NULL,
			created_at  TEXT NOT NULL,
			updated_at  TEXT NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS history (
			id            TEXT PRIMARY KEY,
			dashboard_id  TEXT NOT NULL,
			action        TEXT NOT NULL,
			charts        INTEGER NOT NULL DEFAULT 0,
			at            TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_history_dashboard ON history(dashboard_id)`,
	}
	for _, s := range stmts {
		if _, err := c.db.Exec(s); err != nil {
			return err
		}
	}
	return nil
}

func (c *Catalog) newID(at time.Time) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(at), c.entropy).String()
}

// rebind rewrites '?' placeholders to '$n' for PostgreSQL.
func (c *Catalog) rebind(q string) string {
	if c.driver != DriverPostgres {
		return q
	}
	var b strings.Builder
	n := 0
	for _, r := range q {
		if r == '?' {
			n++
			b.WriteByte('$')
			b.WriteString(strconv.Itoa(n))
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

// Upsert inserts or updates a dashboard entry. CreatedAt is kept on update.
func (c *Catalog) Upsert(ctx context.Context, e Entry) error {
	charts, err := json.Marshal(e.Charts)
	if err != nil {
		return fmt.Errorf("encode charts: %w", err)
	}
	now := time.Now().UTC()
	if e.CreatedAt.IsZero() {
		e.CreatedAt = now
	}
	_, err = c.db.ExecContext(ctx, c.rebind(
		`INSERT INTO dashboards (id, title, charts, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?)
		 ON CONFLICT (id) DO UPDATE SET title = excluded.title, charts = excluded.charts, updated_at = excluded.updated_at`),
		e.ID, e.Title, string(charts), e.CreatedAt.UTC().Format(timeLayout), now.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("upsert dashboard: %w", err)
	}
	return nil
}

// Remove deletes a dashboard entry. History is kept.
func (c *Catalog) Remove(ctx context.Context, id string) error {
	if _, err := c.db.ExecContext(ctx, c.rebind(`DELETE FROM dashboards WHERE id = ?`), id); err != nil {
		return fmt.Errorf("remove dashboard: %w", err)
	}
	return nil
}

// Get returns one entry; ok is false when the id is not catalogued.
func (c *Catalog) Get(ctx context.Context, id string) (Entry, bool, error) {
	row := c.db.QueryRowContext(ctx, c.rebind(
		`SELECT id, title, charts, created_at, updated_at FROM dashboards WHERE id = ?`), id)
	e, err := scanEntry(row)
	if err == sql.ErrNoRows {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("get dashboard: %w", err)
	}
	return e, true, nil
}

// List returns all entries, newest first.
func (c *Catalog) List(ctx context.Context) ([]Entry, error) {
	rows, err := c.db.QueryContext(ctx,
		`SELECT id, title, charts, created_at, updated_at FROM dashboards ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("list dashboards: %w", err)
	}
	defer rows.Close()
	var out []Entry
	for rows.Next() {
		e, err := scanEntry(rows)
		if err != nil {
			return nil, fmt.Errorf("scan dashboard: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Record appends a history event.
func (c *Catalog) Record(ctx context.Context, dashboardID, action string, charts int) error {
	at := time.Now().UTC()
	_, err := c.db.ExecContext(ctx, c.rebind(
		`INSERT INTO history (id, dashboard_id, action, charts, at) VALUES (?, ?, ?, ?, ?)`),
		c.newID(at), dashboardID, action, charts, at.Format(timeLayout))
	if err != nil {
		return fmt.Errorf("record history: %w", err)
	}
	return nil
}

// History returns events for a dashboard in the order they happened.
func (c *Catalog) History(ctx context.Context, dashboardID string) ([]Event, error) {
	rows, err := c.db.QueryContext(ctx, c.rebind(
		`SELECT id, dashboard_id, action, charts, at FROM history WHERE dashboard_id = ? ORDER BY id`), dashboardID)
	if err != nil {
		return nil, fmt.Errorf("query history: %w", err)
	}
	defer rows.Close()
	var out []Event
	for rows.Next() {
		var ev Event
		var at string
		if err := rows.Scan(&ev.ID, &ev.DashboardID, &ev.Action, &ev.Charts, &at); err != nil {
			return nil, fmt.Errorf("scan history: %w", err)
		}
		ev.At, _ = time.Parse(timeLayout, at)
		out = append(out, ev)
	}
	return out, rows.Err()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanEntry(s scanner) (Entry, error) {
	var e Entry
	var charts, created, updated string
	if err := s.Scan(&e.ID, &e.Title, &charts, &created, &updated); err != nil {
		return Entry{}, err
	}
	if err := json.Unmarshal([]byte(charts), &e.Charts); err != nil {
		return Entry{}, fmt.Errorf("decode charts: %w", err)
	}
	e.CreatedAt, _ = time.Parse(timeLayout, created)
	e.UpdatedAt, _ = time.Parse(timeLayout, updated)
	return e, nil
}
