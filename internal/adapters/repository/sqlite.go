package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite" // registers the "sqlite" driver

	"github.com/okian/bertrand/internal/domain/model"
	"github.com/okian/bertrand/pkg/logger"
	"github.com/okian/bertrand/pkg/metrics"
)

const defaultBusyTimeout = 5 * time.Second

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	scenario TEXT NOT NULL,
	created_at INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS outcomes (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	partition_idx INTEGER NOT NULL,
	prices_json TEXT NOT NULL,
	profits_json TEXT NOT NULL,
	ordering_json TEXT NOT NULL,
	cycles INTEGER NOT NULL,
	PRIMARY KEY (run_id, partition_idx)
);

CREATE INDEX IF NOT EXISTS idx_runs_scenario ON runs(scenario, created_at);
`

// SQLiteStore implements Store on a SQLite file.
type SQLiteStore struct {
	conn        *sqlx.DB
	busyTimeout time.Duration
	now         func() time.Time
	logger      logger.Logger
}

type runRow struct {
	ID        string `db:"id"`
	Scenario  string `db:"scenario"`
	CreatedAt int64  `db:"created_at"`
}

type outcomeRow struct {
	Partition    int    `db:"partition_idx"`
	PricesJSON   string `db:"prices_json"`
	ProfitsJSON  string `db:"profits_json"`
	OrderingJSON string `db:"ordering_json"`
	Cycles       int    `db:"cycles"`
}

// Open opens or creates the database at path and applies the schema.
func Open(ctx context.Context, path string, opts ...Option) (*SQLiteStore, error) {
	s := &SQLiteStore{
		busyTimeout: defaultBusyTimeout,
		now:         time.Now,
		logger:      logger.Get().Named("repository"),
	}
	for _, opt := range opts {
		opt(s)
	}

	conn, err := sqlx.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One connection keeps SQLite writes serialized.
	conn.SetMaxOpenConns(1)
	s.conn = conn

	if err := s.migrate(ctx); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) migrate(ctx context.Context) error {
	pragmas := fmt.Sprintf("PRAGMA busy_timeout = %d; PRAGMA foreign_keys = ON;", s.busyTimeout.Milliseconds())
	if _, err := s.conn.ExecContext(ctx, pragmas); err != nil {
		return err
	}
	_, err := s.conn.ExecContext(ctx, schema)
	return err
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.conn.Close()
}

// Save implements Store.
func (s *SQLiteStore) Save(ctx context.Context, run Run) (uuid.UUID, error) {
	if run.Scenario == "" {
		return uuid.Nil, fmt.Errorf("%w: empty scenario", ErrInvalidRun)
	}
	if run.ID == uuid.Nil {
		run.ID = uuid.New()
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = s.now()
	}

	tx, err := s.conn.BeginTxx(ctx, nil)
	if err != nil {
		return uuid.Nil, err
	}
	defer func() { _ = tx.Rollback() }()

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO runs (id, scenario, created_at) VALUES (?, ?, ?)`,
		run.ID.String(), run.Scenario, run.CreatedAt.UnixNano()); err != nil {
		return uuid.Nil, fmt.Errorf("insert run %s: %w", run.ID, err)
	}

	stmt, err := tx.PreparexContext(ctx, `INSERT INTO outcomes
		(run_id, partition_idx, prices_json, profits_json, ordering_json, cycles)
		VALUES (?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return uuid.Nil, err
	}
	defer stmt.Close()

	for _, o := range run.Outcomes {
		if !o.Partition.Valid() {
			return uuid.Nil, fmt.Errorf("%w: partition %d", ErrInvalidRun, int(o.Partition))
		}
		pricesJSON, err := json.Marshal(o.Prices)
		if err != nil {
			return uuid.Nil, err
		}
		profitsJSON, err := json.Marshal(o.Profits)
		if err != nil {
			return uuid.Nil, err
		}
		orderingJSON, err := json.Marshal(o.Ordering)
		if err != nil {
			return uuid.Nil, err
		}
		if _, err := stmt.ExecContext(ctx, run.ID.String(), int(o.Partition),
			string(pricesJSON), string(profitsJSON), string(orderingJSON), o.Cycles); err != nil {
			return uuid.Nil, fmt.Errorf("insert outcome %s/%s: %w", run.ID, o.Partition, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return uuid.Nil, err
	}
	metrics.RecordRunPersisted(run.Scenario)
	s.logger.Info(ctx, "run persisted",
		logger.String("scenario", run.Scenario),
		logger.String("run_id", run.ID.String()),
		logger.Int("outcomes", len(run.Outcomes)))
	return run.ID, nil
}

// Latest implements Store.
func (s *SQLiteStore) Latest(ctx context.Context, scenario string) (Run, error) {
	var rr runRow
	err := s.conn.GetContext(ctx, &rr,
		`SELECT id, scenario, created_at FROM runs
		 WHERE scenario = ? ORDER BY created_at DESC, rowid DESC LIMIT 1`, scenario)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("scenario %q: %w", scenario, ErrNotFound)
	}
	if err != nil {
		return Run{}, fmt.Errorf("load run for %q: %w", scenario, err)
	}

	id, err := uuid.Parse(rr.ID)
	if err != nil {
		return Run{}, fmt.Errorf("run id %q: %w", rr.ID, err)
	}

	var rows []outcomeRow
	if err := s.conn.SelectContext(ctx, &rows,
		`SELECT partition_idx, prices_json, profits_json, ordering_json, cycles
		 FROM outcomes WHERE run_id = ? ORDER BY partition_idx`, rr.ID); err != nil {
		return Run{}, fmt.Errorf("load outcomes for %s: %w", rr.ID, err)
	}

	run := Run{
		ID:        id,
		Scenario:  rr.Scenario,
		CreatedAt: time.Unix(0, rr.CreatedAt),
		Outcomes:  make([]model.Outcome, 0, len(rows)),
	}
	for _, r := range rows {
		o := model.Outcome{Partition: model.PartitionID(r.Partition), Cycles: r.Cycles}
		if err := json.Unmarshal([]byte(r.PricesJSON), &o.Prices); err != nil {
			return Run{}, fmt.Errorf("decode prices %s/%d: %w", rr.ID, r.Partition, err)
		}
		if err := json.Unmarshal([]byte(r.ProfitsJSON), &o.Profits); err != nil {
			return Run{}, fmt.Errorf("decode profits %s/%d: %w", rr.ID, r.Partition, err)
		}
		if err := json.Unmarshal([]byte(r.OrderingJSON), &o.Ordering); err != nil {
			return Run{}, fmt.Errorf("decode ordering %s/%d: %w", rr.ID, r.Partition, err)
		}
		run.Outcomes = append(run.Outcomes, o)
	}
	return run, nil
}
