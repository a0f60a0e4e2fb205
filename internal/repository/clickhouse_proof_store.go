package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"PriceTrust/internal/domain/models"
	pkgch "PriceTrust/pkg/clickhouse"
	applogger "PriceTrust/pkg/logger"
)

// CHProofStore implements AuditStore backed by ClickHouse.
type CHProofStore struct {
	ch *pkgch.Client
	db *sql.DB
	l  *applogger.Logger
}

func NewCHProofStore(ch *pkgch.Client) *CHProofStore {
	return &CHProofStore{ch: ch, db: ch.DB()}
}

// SetLogger injects a structured logger.
func (s *CHProofStore) SetLogger(l *applogger.Logger) { s.l = l }

// InitSchema ensures the audit table exists (idempotent).
func (s *CHProofStore) InitSchema(ctx context.Context) error {
	const ddl = `
        CREATE TABLE IF NOT EXISTS proof_audit (
            symbol        String,
            market        String,
            as_of_date    Date,
            trade_date    Nullable(Date),
            source        String,
            success       UInt8,
            fallback_used UInt8,
            close         String,
            warnings      Array(String),
            verified_at   DateTime
        )
        ENGINE = MergeTree()
        PARTITION BY toYYYYMM(verified_at)
        ORDER BY (symbol, verified_at)
    `
	return s.ch.InitSchema(ctx, []string{ddl})
}

const insertProofQuery = `
    INSERT INTO proof_audit
        (symbol, market, as_of_date, trade_date, source, success, fallback_used, close, warnings, verified_at)
    VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
`

func (s *CHProofStore) Store(ctx context.Context, ev *models.ProofAuditEvent) error {
	if ev == nil {
		return fmt.Errorf("event is nil")
	}
	_, err := s.db.ExecContext(ctx, insertProofQuery, insertArgs(ev)...)
	if err != nil {
		if s.l != nil {
			s.l.Error("clickhouse proof insert error",
				applogger.String("symbol", ev.Symbol),
				applogger.Error(err),
			)
		}
		return fmt.Errorf("store proof audit: %w", err)
	}
	return nil
}

func (s *CHProofStore) StoreBatch(ctx context.Context, evs []*models.ProofAuditEvent) error {
	if len(evs) == 0 {
		return nil
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin batch: %w", err)
	}
	stmt, err := tx.PrepareContext(ctx, insertProofQuery)
	if err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("prepare batch: %w", err)
	}
	defer stmt.Close()

	for _, ev := range evs {
		if ev == nil {
			continue
		}
		if _, err := stmt.ExecContext(ctx, insertArgs(ev)...); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("exec batch: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit batch: %w", err)
	}
	return nil
}

// Query returns audit events for a symbol verified within [from, to],
// newest first.
func (s *CHProofStore) Query(ctx context.Context, symbol string, from, to time.Time, limit int) ([]*models.ProofAuditEvent, error) {
	if limit <= 0 {
		limit = 100
	}
	const q = `
        SELECT symbol, market, as_of_date, trade_date, source, success, fallback_used, close, warnings, verified_at
        FROM proof_audit
        WHERE symbol = ? AND verified_at >= ? AND verified_at <= ?
        ORDER BY verified_at DESC
        LIMIT ?
    `
	rows, err := s.db.QueryContext(ctx, q, symbol, from, to, limit)
	if err != nil {
		return nil, fmt.Errorf("query proof audit: %w", err)
	}
	defer rows.Close()

	out := make([]*models.ProofAuditEvent, 0, limit)
	for rows.Next() {
		var (
			ev        models.ProofAuditEvent
			tradeDate sql.NullTime
			success   uint8
			fallback  uint8
		)
		if err := rows.Scan(&ev.Symbol, &ev.Market, &ev.AsOfDate, &tradeDate,
			&ev.Source, &success, &fallback, &ev.Close, &ev.Warnings, &ev.VerifiedAt); err != nil {
			return nil, fmt.Errorf("scan proof audit: %w", err)
		}
		if tradeDate.Valid {
			ev.TradeDate = tradeDate.Time
		}
		ev.Success = success == 1
		ev.FallbackUsed = fallback == 1
		out = append(out, &ev)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows: %w", err)
	}
	return out, nil
}

func (s *CHProofStore) Health(ctx context.Context) error {
	return s.ch.Health(ctx)
}

func (s *CHProofStore) Close() error {
	return s.ch.Close()
}

func insertArgs(ev *models.ProofAuditEvent) []interface{} {
	var tradeDate interface{}
	if !ev.TradeDate.IsZero() {
		tradeDate = ev.TradeDate
	}
	return []interface{}{
		ev.Symbol,
		ev.Market,
		ev.AsOfDate,
		tradeDate,
		ev.Source,
		boolToUint8(ev.Success),
		boolToUint8(ev.FallbackUsed),
		ev.Close,
		ev.Warnings,
		ev.VerifiedAt,
	}
}

func boolToUint8(b bool) uint8 {
	if b {
		return 1
	}
	return 0
}
