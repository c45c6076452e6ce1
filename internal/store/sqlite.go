package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"

	apperrors "coinsentinel/internal/errors"
	"coinsentinel/internal/models"
)

// SQLiteStore implements RecordStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite-based record store.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Monitoring tasks archive concurrently.
	db.SetMaxOpenConns(10)
	db.SetMaxIdleConns(5)
	db.SetConnMaxLifetime(time.Hour)

	store := &SQLiteStore{db: db}
	if err := store.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}
	return store, nil
}

// initSchema creates all required tables and indexes.
func (s *SQLiteStore) initSchema() error {
	schema := `
	-- One row per completed monitoring task that raised an alert
	CREATE TABLE IF NOT EXISTS monitoring_records (
		observed_at DATETIME NOT NULL,
		symbol TEXT NOT NULL,
		baseline_price REAL NOT NULL,
		max_tier TEXT NOT NULL,
		samples TEXT NOT NULL,
		trades TEXT,
		order_books TEXT NOT NULL,
		candles TEXT NOT NULL,
		alert_history TEXT NOT NULL,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (observed_at, symbol)
	);

	CREATE INDEX IF NOT EXISTS idx_records_symbol ON monitoring_records(symbol);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveRecord persists a monitoring record keyed by event timestamp
// and symbol.
func (s *SQLiteStore) SaveRecord(ctx context.Context, record *models.MonitoringRecord) error {
	samples, err := json.Marshal(record.Samples)
	if err != nil {
		return fmt.Errorf("encoding samples: %w", err)
	}
	var trades interface{}
	if record.Trades != nil {
		b, err := json.Marshal(record.Trades)
		if err != nil {
			return fmt.Errorf("encoding trade window: %w", err)
		}
		trades = string(b)
	}
	orderBooks, err := json.Marshal(record.OrderBooks)
	if err != nil {
		return fmt.Errorf("encoding order books: %w", err)
	}
	candles, err := json.Marshal(record.Candles)
	if err != nil {
		return fmt.Errorf("encoding candles: %w", err)
	}
	history, err := json.Marshal(record.AlertHistory)
	if err != nil {
		return fmt.Errorf("encoding alert history: %w", err)
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO monitoring_records
		(observed_at, symbol, baseline_price, max_tier, samples, trades, order_books, candles, alert_history)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		record.ObservedAt.UTC(), record.Symbol, record.BaselinePrice,
		maxTier(record.AlertHistory).String(),
		string(samples), trades, string(orderBooks), string(candles), string(history),
	)
	return err
}

// GetRecord loads one record by its (observed_at, symbol) key.
func (s *SQLiteStore) GetRecord(ctx context.Context, observedAt time.Time, symbol string) (*models.MonitoringRecord, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT observed_at, symbol, baseline_price, samples, trades, order_books, candles, alert_history
		FROM monitoring_records WHERE observed_at = ? AND symbol = ?`,
		observedAt.UTC(), symbol,
	)

	var record models.MonitoringRecord
	var samples, orderBooks, candles, history string
	var trades sql.NullString
	err := row.Scan(&record.ObservedAt, &record.Symbol, &record.BaselinePrice,
		&samples, &trades, &orderBooks, &candles, &history)
	if err == sql.ErrNoRows {
		return nil, apperrors.Wrapf(apperrors.ErrDataNotFound, "record %s %s", observedAt, symbol)
	}
	if err != nil {
		return nil, err
	}

	if err := json.Unmarshal([]byte(samples), &record.Samples); err != nil {
		return nil, fmt.Errorf("decoding samples: %w", err)
	}
	if trades.Valid {
		record.Trades = &models.TradeWindow{}
		if err := json.Unmarshal([]byte(trades.String), record.Trades); err != nil {
			return nil, fmt.Errorf("decoding trade window: %w", err)
		}
	}
	if err := json.Unmarshal([]byte(orderBooks), &record.OrderBooks); err != nil {
		return nil, fmt.Errorf("decoding order books: %w", err)
	}
	if err := json.Unmarshal([]byte(candles), &record.Candles); err != nil {
		return nil, fmt.Errorf("decoding candles: %w", err)
	}
	if err := json.Unmarshal([]byte(history), &record.AlertHistory); err != nil {
		return nil, fmt.Errorf("decoding alert history: %w", err)
	}
	record.ObservedAt = record.ObservedAt.UTC()
	return &record, nil
}

// ListRecords returns summaries of archived records, newest first.
func (s *SQLiteStore) ListRecords(ctx context.Context, filter RecordFilter) ([]RecordSummary, error) {
	query := `
		SELECT observed_at, symbol, baseline_price, max_tier, samples
		FROM monitoring_records`
	var conditions []string
	var args []interface{}

	if filter.Symbol != "" {
		conditions = append(conditions, "symbol = ?")
		args = append(args, filter.Symbol)
	}
	if !filter.Since.IsZero() {
		conditions = append(conditions, "observed_at >= ?")
		args = append(args, filter.Since.UTC())
	}
	if len(conditions) > 0 {
		query += " WHERE " + strings.Join(conditions, " AND ")
	}
	query += " ORDER BY observed_at DESC"
	if filter.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, filter.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var summaries []RecordSummary
	for rows.Next() {
		var summary RecordSummary
		var tier, samples string
		if err := rows.Scan(&summary.ObservedAt, &summary.Symbol, &summary.BaselinePrice, &tier, &samples); err != nil {
			return nil, err
		}
		summary.ObservedAt = summary.ObservedAt.UTC()
		summary.MaxTier = models.ParseTier(tier)
		var decoded []models.PriceSample
		if err := json.Unmarshal([]byte(samples), &decoded); err == nil {
			summary.SampleCount = len(decoded)
		}
		summaries = append(summaries, summary)
	}
	return summaries, rows.Err()
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func maxTier(history models.AlertHistory) models.Tier {
	max := models.TierNone
	for _, record := range history.History {
		if record.Tier > max {
			max = record.Tier
		}
	}
	return max
}
