package repository

import (
	"context"
	"time"

	"PriceTrust/internal/domain/models"
)

// SourceAdapter is the single capability every price provider exposes:
// daily OHLCV rows for one instrument within [from, to]. "No data" is an
// empty slice, never an error; transport and auth failures come back as
// *models.AdapterError.
type SourceAdapter interface {
	Name() string
	Fetch(ctx context.Context, id string, from, to time.Time) ([]models.PriceRow, error)
}

// AuditPublisher emits a proof audit event to the durable audit stream.
type AuditPublisher interface {
	Publish(ctx context.Context, ev *models.ProofAuditEvent) error
	Close() error
}

// AuditStore persists proof audit events. Queries are by symbol and
// verification-time range.
type AuditStore interface {
	Store(ctx context.Context, ev *models.ProofAuditEvent) error
	StoreBatch(ctx context.Context, evs []*models.ProofAuditEvent) error
	Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.ProofAuditEvent, error)
	Health(ctx context.Context) error
	Close() error
}

// Metrics records verification pipeline observations.
type Metrics interface {
	RecordProviderAttempt(provider string)
	RecordProviderError(provider, kind string)
	RecordBreakerState(provider string, state string)
	RecordCrossCheckMismatch(base, other string)
	RecordVerifyLatency(seconds float64)
}
