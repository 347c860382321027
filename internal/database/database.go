// internal/database/database.go
package database

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/sirupsen/logrus"

	"skat/internal/models"
)

// DB is the shared connection pool. It stays nil when persistence is
// disabled; callers must check before use.
var DB *pgxpool.Pool

const schema = `
CREATE TABLE IF NOT EXISTS deal_results (
	id            BIGSERIAL PRIMARY KEY,
	table_id      UUID        NOT NULL,
	declarer      TEXT        NOT NULL,
	declaration   TEXT        NOT NULL,
	bid           INT         NOT NULL,
	declarer_score INT        NOT NULL,
	winners       TEXT[]      NOT NULL,
	finished_at   TIMESTAMPTZ NOT NULL DEFAULT now()
);
CREATE INDEX IF NOT EXISTS deal_results_table_idx ON deal_results (table_id);
`

// Connect opens the pool and ensures the schema exists.
func Connect(ctx context.Context, url string) error {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return fmt.Errorf("creating connection pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("pinging database: %w", err)
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return fmt.Errorf("ensuring schema: %w", err)
	}
	DB = pool
	logrus.Info("database connected")
	return nil
}

// Close releases the pool.
func Close() {
	if DB != nil {
		DB.Close()
		DB = nil
	}
}

// StoreDealResult writes one finished deal's outcome.
func StoreDealResult(ctx context.Context, r models.DealResult) error {
	if DB == nil {
		return nil
	}
	_, err := DB.Exec(ctx,
		`INSERT INTO deal_results (table_id, declarer, declaration, bid, declarer_score, winners)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		r.TableID, r.Declarer, r.Declaration, r.Bid, r.DeclarerScore, r.Winners)
	if err != nil {
		return fmt.Errorf("inserting deal result: %w", err)
	}
	return nil
}

// DealResultsForTable loads the results of past deals at a table, most
// recent first.
func DealResultsForTable(ctx context.Context, tableID string, limit int) ([]models.DealResult, error) {
	if DB == nil {
		return nil, nil
	}
	rows, err := DB.Query(ctx,
		`SELECT table_id, declarer, declaration, bid, declarer_score, winners
		 FROM deal_results WHERE table_id = $1
		 ORDER BY finished_at DESC LIMIT $2`,
		tableID, limit)
	if err != nil {
		return nil, fmt.Errorf("querying deal results: %w", err)
	}
	defer rows.Close()

	var out []models.DealResult
	for rows.Next() {
		var r models.DealResult
		if err := rows.Scan(&r.TableID, &r.Declarer, &r.Declaration, &r.Bid, &r.DeclarerScore, &r.Winners); err != nil {
			return nil, fmt.Errorf("scanning deal result: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
