package server

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DocStore implements Store with one JSONB document per row. Columns that
// filters may reference are kept alongside the document.
type DocStore struct {
	db *sql.DB
}

func NewDocStore(db *sql.DB) *DocStore {
	return &DocStore{db: db}
}

var _ Store = (*DocStore)(nil)

var (
	projectColumns  = []string{"id", "owner", "is_published"}
	locationColumns = []string{"id", "project_id"}
)

// ValidationError is returned when a write would leave a row invalid.
type ValidationError struct {
	Msg string
}

func (e *ValidationError) Error() string { return e.Msg }

func (s *DocStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func newID() string {
	return uuid.NewString()
}

func nowUTC() string {
	return time.Now().UTC().Format("2006-01-02T15:04:05.000Z")
}

// where renders f as a WHERE clause. Keys are sorted so the same filter
// always produces the same SQL.
func where(f Filter, allowed []string) (string, []any, error) {
	if len(f) == 0 {
		return "", nil, nil
	}
	keys := make([]string, 0, len(f))
	for k := range f {
		if !slices.Contains(allowed, k) {
			return "", nil, fmt.Errorf("cannot filter on %q", k)
		}
		keys = append(keys, k)
	}
	slices.Sort(keys)

	conds := make([]string, len(keys))
	args := make([]any, len(keys))
	for i, k := range keys {
		conds[i] = k + " = ?"
		args[i] = f[k]
		if k == "is_published" {
			args[i] = boolInt(f[k] == "true")
		}
	}
	return " WHERE " + strings.Join(conds, " AND "), args, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

type queryer interface {
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
}

func scanDocs[T any](ctx context.Context, q queryer, query string, args ...any) ([]T, error) {
	rows, err := q.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var docs []T
	for rows.Next() {
		var data string
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var doc T
		if err := json.Unmarshal([]byte(data), &doc); err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, rows.Err()
}

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func putProject(ctx context.Context, e execer, p ProjectRow) error {
	data, err := json.Marshal(p)
	if err != nil {
		return err
	}
	_, err = e.ExecContext(ctx,
		`INSERT INTO projects (id, owner, is_published, data) VALUES (?, ?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET owner = excluded.owner, is_published = excluded.is_published, data = excluded.data`,
		p.ID, p.Owner, boolInt(p.IsPublished), string(data),
	)
	return err
}

func putLocation(ctx context.Context, e execer, l LocationRow) error {
	data, err := json.Marshal(l)
	if err != nil {
		return err
	}
	_, err = e.ExecContext(ctx,
		`INSERT INTO locations (id, project_id, data) VALUES (?, ?, jsonb(?))
		 ON CONFLICT(id) DO UPDATE SET project_id = excluded.project_id, data = excluded.data`,
		l.ID, l.ProjectID, string(data),
	)
	return err
}

// Projects.

func (s *DocStore) ListProjects(ctx context.Context, f Filter) ([]ProjectRow, error) {
	cond, args, err := where(f, projectColumns)
	if err != nil {
		return nil, err
	}
	return scanDocs[ProjectRow](ctx, s.db, `SELECT json(data) FROM projects`+cond+` ORDER BY rowid`, args...)
}

func (s *DocStore) GetProject(ctx context.Context, id string) (ProjectRow, error) {
	rows, err := s.ListProjects(ctx, Filter{"id": id})
	if err != nil {
		return ProjectRow{}, err
	}
	if len(rows) == 0 {
		return ProjectRow{}, ErrNotFound
	}
	return rows[0], nil
}

func (s *DocStore) CreateProject(ctx context.Context, p ProjectRow) (ProjectRow, error) {
	if p.ID == "" {
		p.ID = newID()
	}
	p.CreatedAt = nowUTC()
	if err := putProject(ctx, s.db, p); err != nil {
		return ProjectRow{}, err
	}
	return p, nil
}

func (s *DocStore) UpdateProjects(ctx context.Context, f Filter, patch ProjectPatch) ([]ProjectRow, error) {
	cond, args, err := where(f, projectColumns)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := scanDocs[ProjectRow](ctx, tx, `SELECT json(data) FROM projects`+cond+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		patch.apply(&rows[i])
		if msg := rows[i].validate(); msg != "" {
			return nil, &ValidationError{Msg: msg}
		}
		if err := putProject(ctx, tx, rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, tx.Commit()
}

// DeleteProjects removes the selected projects together with their
// locations.
func (s *DocStore) DeleteProjects(ctx context.Context, f Filter) ([]ProjectRow, error) {
	cond, args, err := where(f, projectColumns)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := scanDocs[ProjectRow](ctx, tx, `SELECT json(data) FROM projects`+cond+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, err
	}
	for _, p := range rows {
		if _, err := tx.ExecContext(ctx, `DELETE FROM locations WHERE project_id = ?`, p.ID); err != nil {
			return nil, err
		}
		if _, err := tx.ExecContext(ctx, `DELETE FROM projects WHERE id = ?`, p.ID); err != nil {
			return nil, err
		}
	}
	return rows, tx.Commit()
}

// Locations. Insertion order is the catalog order.

func (s *DocStore) ListLocations(ctx context.Context, f Filter) ([]LocationRow, error) {
	cond, args, err := where(f, locationColumns)
	if err != nil {
		return nil, err
	}
	return scanDocs[LocationRow](ctx, s.db, `SELECT json(data) FROM locations`+cond+` ORDER BY rowid`, args...)
}

func (s *DocStore) CreateLocation(ctx context.Context, l LocationRow) (LocationRow, error) {
	if _, err := s.GetProject(ctx, l.ProjectID); err != nil {
		if errors.Is(err, ErrNotFound) {
			return LocationRow{}, &ValidationError{Msg: "project_id does not reference a project"}
		}
		return LocationRow{}, err
	}
	if l.ID == "" {
		l.ID = newID()
	}
	if err := putLocation(ctx, s.db, l); err != nil {
		return LocationRow{}, err
	}
	return l, nil
}

func (s *DocStore) UpdateLocations(ctx context.Context, f Filter, patch LocationPatch) ([]LocationRow, error) {
	cond, args, err := where(f, locationColumns)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := scanDocs[LocationRow](ctx, tx, `SELECT json(data) FROM locations`+cond+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, err
	}
	for i := range rows {
		if patch.ProjectID != nil && *patch.ProjectID != rows[i].ProjectID {
			return nil, &ValidationError{Msg: "project_id cannot be changed"}
		}
		patch.apply(&rows[i])
		if msg := rows[i].validate(); msg != "" {
			return nil, &ValidationError{Msg: msg}
		}
		if err := putLocation(ctx, tx, rows[i]); err != nil {
			return nil, err
		}
	}
	return rows, tx.Commit()
}

func (s *DocStore) DeleteLocations(ctx context.Context, f Filter) ([]LocationRow, error) {
	cond, args, err := where(f, locationColumns)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	rows, err := scanDocs[LocationRow](ctx, tx, `SELECT json(data) FROM locations`+cond+` ORDER BY rowid`, args...)
	if err != nil {
		return nil, err
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM locations`+cond, args...); err != nil {
		return nil, err
	}
	return rows, tx.Commit()
}
