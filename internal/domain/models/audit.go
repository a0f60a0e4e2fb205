package models

import "time"

// ProofAuditEvent is the Kafka payload recorded for every completed
// verification, successful or not. It is the durable audit trail behind
// a proof's in-memory warnings.
type ProofAuditEvent struct {
	Symbol       string    `json:"symbol"`
	Market       string    `json:"market"`
	AsOfDate     time.Time `json:"as_of_date"`
	TradeDate    time.Time `json:"trade_date,omitzero"`
	Source       string    `json:"source"`
	Success      bool      `json:"success"`
	FallbackUsed bool      `json:"fallback_used"`
	Close        string    `json:"close,omitempty"`
	Warnings     []string  `json:"warnings,omitempty"`
	VerifiedAt   time.Time `json:"verified_at"`
}

// AuditEventFromProof flattens a proof into its audit record.
func AuditEventFromProof(p *PriceProof, verifiedAt time.Time) *ProofAuditEvent {
	ev := &ProofAuditEvent{
		Symbol:       p.Symbol.ID,
		Market:       string(p.Symbol.Market),
		AsOfDate:     p.AsOfDate,
		Source:       p.Source,
		Success:      p.Success,
		FallbackUsed: p.FallbackUsed,
		Warnings:     p.Warnings,
		VerifiedAt:   verifiedAt,
	}
	if p.TradeDate != nil {
		ev.TradeDate = *p.TradeDate
	}
	if p.Row != nil {
		ev.Close = p.Row.Close.String()
	}
	return ev
}
