// Package store provides archival persistence for monitoring records.
package store

import (
	"context"
	"time"

	"coinsentinel/internal/models"
)

// RecordStore defines the interface for monitoring-record archival.
// Records are keyed by (observed_at, symbol), written once and never
// mutated.
type RecordStore interface {
	SaveRecord(ctx context.Context, record *models.MonitoringRecord) error
	GetRecord(ctx context.Context, observedAt time.Time, symbol string) (*models.MonitoringRecord, error)
	ListRecords(ctx context.Context, filter RecordFilter) ([]RecordSummary, error)
	Close() error
}

// RecordFilter represents filters for querying archived records.
type RecordFilter struct {
	Symbol string
	Since  time.Time
	Limit  int
}

// RecordSummary is a lightweight listing row for archived records.
type RecordSummary struct {
	Symbol        string
	ObservedAt    time.Time
	BaselinePrice float64
	MaxTier       models.Tier
	SampleCount   int
}
