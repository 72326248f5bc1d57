// Package history persists finished optimization runs so planners can
// review past results and compare scenarios over time.
package history

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"gaspipe/internal/result"
)

// Record is one stored optimization run.
type Record struct {
	ID          string
	NetworkName string
	Algorithm   string
	Solver      string
	Status      string
	Objective   float64
	TotalCost   float64
	Throughput  float64
	ElapsedMs   int64
	Result      *result.OptimizationResult
	CreatedAt   time.Time
}

// ErrNotFound is returned when a run id is unknown.
var ErrNotFound = errors.New("run not found")

// Store is the persistence contract. The engine treats persistence as best
// effort: a nil Store disables it.
type Store interface {
	SaveRun(ctx context.Context, networkName string, res *result.OptimizationResult) error
	GetRun(ctx context.Context, id string) (*Record, error)
	ListRuns(ctx context.Context, networkName string, limit int) ([]*Record, error)
}

// DB is the subset of pgxpool.Pool the store uses; pgxmock satisfies it in
// tests.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PostgresStore persists runs into the optimization_runs table.
type PostgresStore struct {
	db DB
}

// NewPostgresStore wraps a database handle.
func NewPostgresStore(db DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// SaveRun implements Store.
func (s *PostgresStore) SaveRun(ctx context.Context, networkName string, res *result.OptimizationResult) error {
	payload, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("marshal result: %w", err)
	}
	_, err = s.db.Exec(ctx, `
		INSERT INTO optimization_runs
			(id, network_name, algorithm, solver, status, objective, total_cost, throughput, elapsed_ms, result)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
		res.RunID, networkName, res.Algorithm, res.Solver, string(res.Status),
		res.ObjectiveValue, res.TotalCost, res.Metrics.TotalThroughput, res.ElapsedMs, payload,
	)
	if err != nil {
		return fmt.Errorf("insert run: %w", err)
	}
	return nil
}

// GetRun implements Store.
func (s *PostgresStore) GetRun(ctx context.Context, id string) (*Record, error) {
	row := s.db.QueryRow(ctx, `
		SELECT id, network_name, algorithm, solver, status, objective, total_cost, throughput, elapsed_ms, result, created_at
		FROM optimization_runs WHERE id = $1`, id)
	rec, err := scanRecord(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	return rec, err
}

// ListRuns implements Store. An empty networkName lists across networks.
func (s *PostgresStore) ListRuns(ctx context.Context, networkName string, limit int) ([]*Record, error) {
	if limit <= 0 {
		limit = 50
	}
	query := `
		SELECT id, network_name, algorithm, solver, status, objective, total_cost, throughput, elapsed_ms, result, created_at
		FROM optimization_runs`
	args := []any{}
	if networkName != "" {
		query += ` WHERE network_name = $1 ORDER BY created_at DESC LIMIT $2`
		args = append(args, networkName, limit)
	} else {
		query += ` ORDER BY created_at DESC LIMIT $1`
		args = append(args, limit)
	}

	rows, err := s.db.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}
	return records, rows.Err()
}

func scanRecord(row pgx.Row) (*Record, error) {
	var (
		rec     Record
		payload []byte
	)
	err := row.Scan(&rec.ID, &rec.NetworkName, &rec.Algorithm, &rec.Solver, &rec.Status,
		&rec.Objective, &rec.TotalCost, &rec.Throughput, &rec.ElapsedMs, &payload, &rec.CreatedAt)
	if err != nil {
		return nil, err
	}
	var res result.OptimizationResult
	if err := json.Unmarshal(payload, &res); err != nil {
		return nil, fmt.Errorf("decode stored result: %w", err)
	}
	rec.Result = &res
	return &rec, nil
}
