package task

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/georgysavva/scany/v2/pgxscan"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

const table = "todo_data"

var columns = []string{
	"id", "title", "description", "bullets", "deadline",
	"completed", "images", "created_at", "updated_at",
}

const returning = "RETURNING id, title, description, bullets, deadline, completed, images, created_at, updated_at"

var psql = squirrel.StatementBuilder.PlaceholderFormat(squirrel.Dollar)

// DB is the subset of pgxpool.Pool the store needs; pgxmock satisfies it too.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PgStore is a PostgreSQL-backed task store.
type PgStore struct {
	db DB
}

// NewPgStore creates a PgStore.
func NewPgStore(db DB) *PgStore {
	return &PgStore{db: db}
}

// EnsureTable creates the todo_data table if it doesn't exist.
func (s *PgStore) EnsureTable(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS todo_data (
			id          BIGSERIAL PRIMARY KEY,
			title       TEXT NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			bullets     TEXT NOT NULL DEFAULT '[]',
			deadline    DATE,
			completed   BOOLEAN NOT NULL DEFAULT FALSE,
			images      TEXT[] NOT NULL DEFAULT '{}',
			created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
			updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
		)`)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(ctx, `CREATE INDEX IF NOT EXISTS idx_todo_data_open ON todo_data(deadline) WHERE NOT completed`)
	return err
}

// Create inserts a new, uncompleted task.
func (s *PgStore) Create(ctx context.Context, d Draft) (*Record, error) {
	bullets, err := encodeBullets(d.Bullets)
	if err != nil {
		return nil, err
	}
	now := time.Now().Truncate(time.Microsecond)

	query, args, err := psql.Insert(table).
		Columns("title", "description", "bullets", "deadline", "completed", "images", "created_at", "updated_at").
		Values(d.Title, d.Description, bullets, deadlineArg(d.Deadline), false, []string{}, now, now).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build insert: %w", err)
	}

	var r Record
	if err := pgxscan.Get(ctx, s.db, &r, query, args...); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}
	return &r, nil
}

// Get retrieves a single task by ID.
func (s *PgStore) Get(ctx context.Context, id int64) (*Record, error) {
	query, args, err := psql.Select(columns...).From(table).Where(squirrel.Eq{"id": id}).ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	var r Record
	if err := pgxscan.Get(ctx, s.db, &r, query, args...); err != nil {
		return nil, notFound(fmt.Sprintf("get task %d", id), err)
	}
	return &r, nil
}

// List returns every task in creation order.
func (s *PgStore) List(ctx context.Context) ([]Record, error) {
	query, args, err := psql.Select(columns...).From(table).OrderBy("id ASC").ToSql()
	if err != nil {
		return nil, fmt.Errorf("build select: %w", err)
	}
	records := []Record{}
	if err := pgxscan.Select(ctx, s.db, &records, query, args...); err != nil {
		return nil, fmt.Errorf("list tasks: %w", err)
	}
	return records, nil
}

// Update replaces the editable fields of a task.
func (s *PgStore) Update(ctx context.Context, id int64, d Draft) (*Record, error) {
	bullets, err := encodeBullets(d.Bullets)
	if err != nil {
		return nil, err
	}
	query, args, err := psql.Update(table).
		Set("title", d.Title).
		Set("description", d.Description).
		Set("bullets", bullets).
		Set("deadline", deadlineArg(d.Deadline)).
		Set("updated_at", time.Now().Truncate(time.Microsecond)).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	var r Record
	if err := pgxscan.Get(ctx, s.db, &r, query, args...); err != nil {
		return nil, notFound(fmt.Sprintf("update task %d", id), err)
	}
	return &r, nil
}

// Complete marks a task as completed. Completing a completed task is a no-op.
func (s *PgStore) Complete(ctx context.Context, id int64) (*Record, error) {
	query, args, err := psql.Update(table).
		Set("completed", true).
		Set("updated_at", time.Now().Truncate(time.Microsecond)).
		Where(squirrel.Eq{"id": id}).
		Suffix(returning).
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	var r Record
	if err := pgxscan.Get(ctx, s.db, &r, query, args...); err != nil {
		return nil, notFound(fmt.Sprintf("complete task %d", id), err)
	}
	return &r, nil
}

// AppendImages adds hosted image URLs to a task and returns its full image list.
func (s *PgStore) AppendImages(ctx context.Context, id int64, urls []string) ([]string, error) {
	query, args, err := psql.Update(table).
		Set("images", squirrel.Expr("array_cat(images, ?::text[])", urls)).
		Set("updated_at", time.Now().Truncate(time.Microsecond)).
		Where(squirrel.Eq{"id": id}).
		Suffix("RETURNING images").
		ToSql()
	if err != nil {
		return nil, fmt.Errorf("build update: %w", err)
	}
	var images []string
	if err := s.db.QueryRow(ctx, query, args...).Scan(&images); err != nil {
		return nil, notFound(fmt.Sprintf("append images to task %d", id), err)
	}
	return images, nil
}

// Delete removes the given tasks in a single statement and reports how many went.
func (s *PgStore) Delete(ctx context.Context, ids []int64) (int64, error) {
	if len(ids) == 0 {
		return 0, nil
	}
	query, args, err := psql.Delete(table).Where(squirrel.Eq{"id": ids}).ToSql()
	if err != nil {
		return 0, fmt.Errorf("build delete: %w", err)
	}
	tag, err := s.db.Exec(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("delete tasks: %w", err)
	}
	return tag.RowsAffected(), nil
}

func encodeBullets(bullets []string) (string, error) {
	if bullets == nil {
		bullets = []string{}
	}
	b, err := json.Marshal(bullets)
	if err != nil {
		return "", fmt.Errorf("marshal bullets: %w", err)
	}
	return string(b), nil
}

func deadlineArg(d Deadline) *time.Time {
	t, ok := d.Time()
	if !ok {
		return nil
	}
	day := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
	return &day
}

func notFound(op string, err error) error {
	if pgxscan.NotFound(err) || errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("%s: %w", op, ErrNotFound)
	}
	return fmt.Errorf("%s: %w", op, err)
}
