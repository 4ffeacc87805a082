// Package store persists assessments to Postgres when ENABLE_DB is set.
package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/avast/retry-go/v4"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"go.uber.org/zap"

	"github.com/glucoscope/predictor/internal/diagnosis"
	"github.com/glucoscope/predictor/internal/patient"
)

const (
	DefaultLimit = 20
	MaxLimit     = 200
)

const schema = `
CREATE TABLE IF NOT EXISTS assessments (
	id           UUID PRIMARY KEY,
	patient_name TEXT NOT NULL DEFAULT '',
	record       JSONB NOT NULL,
	scaled       DOUBLE PRECISION[] NOT NULL,
	score        DOUBLE PRECISION NOT NULL,
	outcome      TEXT NOT NULL,
	created_at   TIMESTAMPTZ NOT NULL
);
CREATE INDEX IF NOT EXISTS assessments_created_at_idx ON assessments (created_at DESC);
`

// DB is the subset of *pgxpool.Pool the store uses.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Ping(ctx context.Context) error
}

type Store struct {
	db  DB
	log *zap.SugaredLogger
}

func New(db DB, log *zap.SugaredLogger) *Store {
	return &Store{db: db, log: log.Named("store")}
}

// Connect opens a pool and pings it, retrying while the database comes up.
func Connect(ctx context.Context, url string, log *zap.SugaredLogger) (*pgxpool.Pool, error) {
	cfg, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, fmt.Errorf("parse db url: %w", err)
	}

	var pool *pgxpool.Pool
	err = retry.Do(func() error {
		p, err := pgxpool.NewWithConfig(ctx, cfg)
		if err != nil {
			return fmt.Errorf("create pool: %w", err)
		}

		pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
		defer cancel()

		if err := p.Ping(pingCtx); err != nil {
			p.Close()
			return fmt.Errorf("ping db: %w", err)
		}
		pool = p
		return nil
	},
		retry.Context(ctx),
		retry.Attempts(5),
		retry.Delay(500*time.Millisecond),
		retry.DelayType(retry.BackOffDelay),
		retry.LastErrorOnly(true),
		retry.OnRetry(func(n uint, err error) {
			log.Warnw("database not ready", "attempt", n+1, "err", err)
		}),
	)
	if err != nil {
		return nil, err
	}
	return pool, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Ping(ctx)
}

func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

func (s *Store) Save(ctx context.Context, a diagnosis.Assessment) error {
	record, err := json.Marshal(a.Record)
	if err != nil {
		return fmt.Errorf("encode record: %w", err)
	}

	_, err = s.db.Exec(ctx, `
		INSERT INTO assessments (id, patient_name, record, scaled, score, outcome, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)`,
		a.ID, a.Record.Name, record, a.Scaled, a.Report.Score, string(a.Report.Outcome), a.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("insert assessment: %w", err)
	}
	s.log.Debugw("assessment saved", "id", a.ID, "outcome", a.Report.Outcome)
	return nil
}

// Recent returns the newest assessments first. The report text is rebuilt
// from the stored score.
func (s *Store) Recent(ctx context.Context, limit int) ([]diagnosis.Assessment, error) {
	rows, err := s.db.Query(ctx, `
		SELECT id, record, scaled, score, created_at
		FROM assessments
		ORDER BY created_at DESC
		LIMIT $1`, ClampLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("query assessments: %w", err)
	}
	defer rows.Close()

	out := []diagnosis.Assessment{}
	for rows.Next() {
		var (
			a      diagnosis.Assessment
			id     uuid.UUID
			record []byte
			score  float64
		)
		if err := rows.Scan(&id, &record, &a.Scaled, &score, &a.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan assessment: %w", err)
		}
		var r patient.Record
		if err := json.Unmarshal(record, &r); err != nil {
			return nil, fmt.Errorf("decode record %s: %w", id, err)
		}
		a.ID = id
		a.Record = r
		a.Report = diagnosis.NewReport(score)
		out = append(out, a)
	}
	return out, rows.Err()
}

func ClampLimit(limit int) int {
	switch {
	case limit <= 0:
		return DefaultLimit
	case limit > MaxLimit:
		return MaxLimit
	default:
		return limit
	}
}
