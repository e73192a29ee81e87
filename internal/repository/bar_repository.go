package repository

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"StockCast/internal/domain/models"
	domrepo "StockCast/internal/domain/repository"
)

// ClickHouseBarStore implements BarStore for ClickHouse. It keeps every
// fetched daily close so the predictor can fall back to stored history when
// the network source is unavailable.
type ClickHouseBarStore struct {
	db    *sql.DB
	table string
}

// NewClickHouseBarStore creates ClickHouse bar storage.
func NewClickHouseBarStore(db *sql.DB, table string) domrepo.BarStore {
	return &ClickHouseBarStore{db: db, table: table}
}

func (s *ClickHouseBarStore) Init(ctx context.Context) error {
	return nil // Schema init in pkg
}

// StoreSeries upserts the full fetched series in chunks. ReplacingMergeTree
// on (symbol, day) collapses re-fetches of the same day.
func (s *ClickHouseBarStore) StoreSeries(ctx context.Context, series *models.Series) error {
	if series == nil || len(series.Points) == 0 {
		return nil
	}

	const chunkSize = 2000
	points := series.Points
	for start := 0; start < len(points); start += chunkSize {
		end := start + chunkSize
		if end > len(points) {
			end = len(points)
		}

		values := make([]string, 0, end-start)
		args := make([]interface{}, 0, (end-start)*4)
		for _, p := range points[start:end] {
			if p.Date.IsZero() {
				continue
			}
			values = append(values, "(?, ?, ?, ?)")
			args = append(args, series.Symbol, p.Date, p.Close, time.Now())
		}
		if len(values) == 0 {
			continue
		}
		q := fmt.Sprintf("INSERT INTO %s (symbol, day, close, fetched_at) VALUES %s", s.table, strings.Join(values, ","))
		if _, err := s.db.ExecContext(ctx, q, args...); err != nil {
			return fmt.Errorf("store series chunk: %w", err)
		}
	}
	return nil
}

// LoadSeries returns the stored series in chronological order, collapsing
// duplicate fetches of the same day to the most recent one.
func (s *ClickHouseBarStore) LoadSeries(ctx context.Context, symbol string) (*models.Series, error) {
	q := fmt.Sprintf("SELECT day, argMax(close, fetched_at) FROM %s WHERE symbol = ? GROUP BY day ORDER BY day ASC", s.table)
	rows, err := s.db.QueryContext(ctx, q, symbol)
	if err != nil {
		return nil, fmt.Errorf("load series: %w", err)
	}
	defer rows.Close()

	series := &models.Series{Symbol: symbol}
	for rows.Next() {
		var p models.PricePoint
		if err := rows.Scan(&p.Date, &p.Close); err != nil {
			return nil, fmt.Errorf("scan bar: %w", err)
		}
		series.Points = append(series.Points, p)
	}
	return series, rows.Err()
}

func (s *ClickHouseBarStore) Health(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

func (s *ClickHouseBarStore) Close() error {
	return nil // Managed by pkg
}
