package mysql

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"io/fs"
	"sort"
	"strings"
	"time"

	"stayscout/internal/domain"
)

//go:embed migrations/*.sql
var migrations embed.FS

func valInt(n int) any {
	if n == 0 {
		return nil
	}
	return n
}

func valStr(s string) any {
	if s == "" {
		return nil
	}
	return s
}

// Repo persists the state blob and the fallback log.
type Repo struct{ db *sql.DB }

func New(db *sql.DB) *Repo { return &Repo{db: db} }

// Migrate applies the embedded schema files in name order. Statements are
// idempotent, so running it on every start is safe.
func Migrate(ctx context.Context, db *sql.DB) error {
	files, err := fs.Glob(migrations, "migrations/*.sql")
	if err != nil {
		return err
	}
	sort.Strings(files)
	for _, f := range files {
		b, err := migrations.ReadFile(f)
		if err != nil {
			return err
		}
		for _, stmt := range strings.Split(string(b), ";") {
			if strings.TrimSpace(stmt) == "" {
				continue
			}
			if _, err := db.ExecContext(ctx, stmt); err != nil {
				return fmt.Errorf("migrate %s: %w", f, err)
			}
		}
	}
	return nil
}

// Load returns the blob stored under name, or (nil, nil) if there is none.
func (r *Repo) Load(ctx context.Context, name string) ([]byte, error) {
	var payload []byte
	err := r.db.QueryRowContext(ctx, getStateSQL, name).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("load state %s: %w", name, err)
	}
	return payload, nil
}

func (r *Repo) Save(ctx context.Context, name string, blob []byte) error {
	if _, err := r.db.ExecContext(ctx, upsertStateSQL, name, string(blob)); err != nil {
		return fmt.Errorf("save state %s: %w", name, err)
	}
	return nil
}

// RecordFallback appends ev to the fallback log.
func (r *Repo) RecordFallback(ctx context.Context, ev domain.FallbackEvent) error {
	at := ev.At
	if at.IsZero() {
		at = time.Now()
	}
	_, err := r.db.ExecContext(ctx, insertFallbackSQL,
		ev.Location,
		string(ev.Kind),
		valInt(ev.Status),
		valStr(ev.Reason),
		at.UTC(),
	)
	return err
}

// RecentFallbacks returns up to limit events, newest first.
func (r *Repo) RecentFallbacks(ctx context.Context, limit int) ([]domain.FallbackEvent, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, listFallbacksSQL, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]domain.FallbackEvent, 0, limit)
	for rows.Next() {
		var (
			ev     domain.FallbackEvent
			kind   string
			status sql.NullInt64
			reason sql.NullString
		)
		if err := rows.Scan(&ev.Location, &kind, &status, &reason, &ev.At); err != nil {
			return nil, err
		}
		ev.Kind = domain.ErrorKind(kind)
		ev.Status = int(status.Int64)
		ev.Reason = reason.String
		out = append(out, ev)
	}
	return out, rows.Err()
}
