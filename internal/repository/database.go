package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	pgxdecimal "github.com/jackc/pgx-shopspring-decimal"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// Global error declarations.
var (
	ErrIntervalNotSupported = errors.New("timeframe not supported")
	ErrAssetNotFound        = errors.New("not found in datasource")
	ErrNoCandles            = errors.New("no candles found in datasource")
)

type assetRow struct {
	ID         int32
	Ticker     string
	Name       string
	Type       string
	CreatedAt  *time.Time
	ModifiedAt *time.Time
}

type candleRow struct {
	AssetID int32
	Bucket  *time.Time
	Open    decimal.Decimal
	High    decimal.Decimal
	Low     decimal.Decimal
	Close   decimal.Decimal
	Volume  decimal.Decimal
}

type assetsRepository interface {
	assetByTicker(ctx context.Context, ticker string) (assetRow, error)
}
type candlesRepository interface {
	candleAggregates(ctx context.Context, timeBucket string, assetID int32, start, end time.Time) ([]candleRow, error)
}

// Database holds the database connection and the query implementations.
type Database struct {
	assets  assetsRepository
	candles candlesRepository
	conn    *pgxpool.Pool
}

// NewDatabase creates a new Database instance and verifies connectivity.
func NewDatabase(dbURL string) (Database, error) {
	config, err := pgxpool.ParseConfig(dbURL)
	if err != nil {
		return Database{}, fmt.Errorf("parse config: %w", err)
	}
	// Register shopspring decimal
	config.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
		pgxdecimal.Register(conn.TypeMap())
		return nil
	}

	conn, err := pgxpool.NewWithConfig(context.Background(), config)
	if err != nil {
		return Database{}, err
	}
	// Ensure the connection is established.
	if err := conn.Ping(context.Background()); err != nil {
		return Database{}, err
	}

	queries := &pgQueries{pool: conn}
	return Database{
		assets:  queries,
		candles: queries,
		conn:    conn,
	}, nil
}

func (db *Database) Close() {
	if db.conn != nil {
		db.conn.Close()
	}
}

// pgQueries is the pgx-backed implementation of the repository interfaces.
type pgQueries struct {
	pool *pgxpool.Pool
}

const assetByTickerSQL = `
SELECT id, ticker, name, type, created_at, modified_at
FROM assets
WHERE ticker = $1`

func (q *pgQueries) assetByTicker(ctx context.Context, ticker string) (assetRow, error) {
	var row assetRow
	err := q.pool.QueryRow(ctx, assetByTickerSQL, ticker).
		Scan(&row.ID, &row.Ticker, &row.Name, &row.Type, &row.CreatedAt, &row.ModifiedAt)
	return row, err
}

const candleAggregatesSQL = `
SELECT asset_id,
       time_bucket($1::interval, timestamp) AS bucket,
       first(open, timestamp)               AS open,
       max(high)                            AS high,
       min(low)                             AS low,
       last(close, timestamp)               AS close,
       sum(volume)                          AS volume
FROM candles
WHERE asset_id = $2
  AND timestamp >= $3
  AND timestamp < $4
GROUP BY asset_id, bucket
ORDER BY bucket`

func (q *pgQueries) candleAggregates(ctx context.Context, timeBucket string, assetID int32, start, end time.Time) ([]candleRow, error) {
	rows, err := q.pool.Query(ctx, candleAggregatesSQL, timeBucket, assetID, start, end)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []candleRow
	for rows.Next() {
		var row candleRow
		if err := rows.Scan(&row.AssetID, &row.Bucket, &row.Open, &row.High, &row.Low, &row.Close, &row.Volume); err != nil {
			return nil, err
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
