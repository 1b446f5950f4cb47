package audit

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/jackc/pgx/v5/pgxpool"
)

var (
	pool     *pgxpool.Pool
	poolOnce sync.Once
)

// InitDB initializes the shared connection pool from DATABASE_URL.
func InitDB(ctx context.Context) error {
	var err error
	poolOnce.Do(func() {
		dbURL := os.Getenv("DATABASE_URL")
		if dbURL == "" {
			err = fmt.Errorf("DATABASE_URL environment variable not set")
			return
		}
		config, parseErr := pgxpool.ParseConfig(dbURL)
		if parseErr != nil {
			err = fmt.Errorf("failed to parse database config: %w", parseErr)
			return
		}
		pool, err = pgxpool.NewWithConfig(ctx, config)
	})
	return err
}

// GetPool returns the shared connection pool.
func GetPool() *pgxpool.Pool { return pool }

// Close closes the shared connection pool.
func Close() {
	if pool != nil {
		pool.Close()
	}
}

// PGLedger stores reconciliation records in Postgres. Appends are plain
// INSERTs, so concurrent streams can write safely - this is the backend to
// use when documents are processed in parallel.
//
// Expected schema:
//
//	CREATE TABLE column_reconciliations (
//	    id uuid PRIMARY KEY,
//	    created_at timestamptz NOT NULL,
//	    row_cells jsonb NOT NULL,
//	    rule_result jsonb NOT NULL,
//	    oracle_result jsonb NOT NULL,
//	    oracle_confidence double precision NOT NULL,
//	    oracle_reasoning text NOT NULL DEFAULT '',
//	    resolution text NOT NULL
//	);
type PGLedger struct {
	pool *pgxpool.Pool
}

var _ Ledger = (*PGLedger)(nil)

// NewPGLedger wraps a connection pool.
func NewPGLedger(pool *pgxpool.Pool) *PGLedger {
	return &PGLedger{pool: pool}
}

// Append inserts one record.
func (l *PGLedger) Append(ctx context.Context, rec *Record) error {
	if l.pool == nil {
		return fmt.Errorf("database pool not configured")
	}

	rowJSON, err := json.Marshal(rec.Row)
	if err != nil {
		return fmt.Errorf("failed to marshal row snapshot: %w", err)
	}
	ruleJSON, err := json.Marshal(rec.RuleResult)
	if err != nil {
		return fmt.Errorf("failed to marshal rule result: %w", err)
	}
	oracleJSON, err := json.Marshal(rec.OracleResult)
	if err != nil {
		return fmt.Errorf("failed to marshal oracle result: %w", err)
	}

	query := `
		INSERT INTO column_reconciliations (
			id, created_at, row_cells, rule_result, oracle_result,
			oracle_confidence, oracle_reasoning, resolution
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = l.pool.Exec(ctx, query,
		rec.ID, rec.Timestamp, rowJSON, ruleJSON, oracleJSON,
		rec.OracleConfidence, rec.OracleReasoning, string(rec.Resolution),
	)
	if err != nil {
		return fmt.Errorf("failed to insert reconciliation record: %w", err)
	}
	return nil
}

// Stats aggregates resolution counts server-side.
func (l *PGLedger) Stats(ctx context.Context) (*Stats, error) {
	if l.pool == nil {
		return nil, fmt.Errorf("database pool not configured")
	}

	rows, err := l.pool.Query(ctx, `SELECT resolution, COUNT(*) FROM column_reconciliations GROUP BY resolution`)
	if err != nil {
		return nil, fmt.Errorf("failed to query reconciliation stats: %w", err)
	}
	defer rows.Close()

	stats := &Stats{}
	for rows.Next() {
		var resolution string
		var count int
		if err := rows.Scan(&resolution, &count); err != nil {
			return nil, fmt.Errorf("failed to scan stats row: %w", err)
		}
		stats.Total += count
		switch Resolution(resolution) {
		case ResolutionRule:
			stats.RuleCount = count
		case ResolutionOracle:
			stats.OracleCount = count
		case ResolutionSkip:
			stats.SkipCount = count
		}
	}
	return stats, rows.Err()
}
