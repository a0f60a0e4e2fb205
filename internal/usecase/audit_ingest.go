package usecase

import (
	"context"
	"encoding/json"
	"fmt"

	"PriceTrust/internal/domain/models"
	drepo "PriceTrust/internal/domain/repository"
	"PriceTrust/pkg/logger"
)

// AuditIngestHandler consumes proof audit events and writes them to the
// audit store.
type AuditIngestHandler struct {
	topic string
	store drepo.AuditStore
	log   *logger.Logger
}

func NewAuditIngestHandler(topic string, store drepo.AuditStore, log *logger.Logger) *AuditIngestHandler {
	return &AuditIngestHandler{topic: topic, store: store, log: log}
}

func (h *AuditIngestHandler) Topic() string { return h.topic }

func (h *AuditIngestHandler) Handle(ctx context.Context, b []byte) error {
	var ev models.ProofAuditEvent
	if err := json.Unmarshal(b, &ev); err != nil {
		return fmt.Errorf("unmarshal audit event: %w", err)
	}
	if ev.Symbol == "" {
		// Poison frame; retrying will not help.
		h.log.Warn("audit event without symbol dropped")
		return nil
	}
	if err := h.store.Store(ctx, &ev); err != nil {
		return fmt.Errorf("ingest audit event: %w", err)
	}
	h.log.Debug("audit event ingested",
		logger.String("symbol", ev.Symbol),
		logger.String("source", ev.Source),
		logger.Bool("success", ev.Success))
	return nil
}
