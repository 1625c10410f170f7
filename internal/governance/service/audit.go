package service

import (
	"context"

	"realmgov/internal/governance/models"
	"realmgov/pkg/attrs"
	"realmgov/pkg/platform/audit"
	txcontext "realmgov/pkg/platform/tx"
	"realmgov/pkg/requestcontext"
)

// emitRecordEvent writes a compliance event for a record mutation. It runs
// inside the record transaction; an error aborts the mutation.
func (s *Service) emitRecordEvent(ctx context.Context, event audit.AuditEvent, rec *models.TokenOwnerRecord, actor string, amount uint64) error {
	e := audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Subject:   rec.Address.String(),
		Action:    string(event),
		Realm:     rec.Realm.String(),
		Mint:      rec.GoverningTokenMint.String(),
		Owner:     rec.GoverningTokenOwner.String(),
		ActorID:   actor,
		Amount:    amount,
		RequestID: requestcontext.RequestID(ctx),
	}
	if rec.GovernanceDelegate != nil {
		e.Delegate = rec.GovernanceDelegate.String()
	}
	if s.logger != nil {
		s.logger.InfoContext(ctx, string(event),
			"event", string(event),
			"log_type", "audit",
			"request_id", e.RequestID,
			"address", e.Subject,
			"owner", e.Owner,
			"actor", actor,
			"amount", amount,
		)
	}
	if s.auditPublisher == nil {
		return nil
	}
	return s.auditPublisher.Emit(ctx, e)
}

// logAudit records a best-effort audit line for denials, blocks and custody
// incidents. Publishing failures are ignored.
func (s *Service) logAudit(ctx context.Context, event audit.AuditEvent, attributes ...any) {
	requestID := requestcontext.RequestID(ctx)
	if requestID != "" {
		attributes = append(attributes, "request_id", requestID)
	}
	if ip := requestcontext.ClientIP(ctx); ip != "" {
		attributes = append(attributes, "client_ip", ip)
	}
	args := append(attributes, "event", string(event), "log_type", "audit")
	if s.logger != nil {
		level := s.logger.InfoContext
		if event == audit.EventCustodyReconcileNeed {
			level = s.logger.ErrorContext
		}
		level(ctx, string(event), args...)
	}
	if s.auditPublisher == nil {
		return
	}
	// Detached so a denial is kept when the record transaction rolls back.
	_ = s.auditPublisher.Emit(txcontext.Detach(ctx), audit.Event{
		Timestamp: requestcontext.Now(ctx),
		Subject:   attrs.ExtractString(attributes, "address"),
		Action:    string(event),
		Realm:     attrs.ExtractString(attributes, "realm"),
		Mint:      attrs.ExtractString(attributes, "mint"),
		Owner:     attrs.ExtractString(attributes, "owner"),
		ActorID:   attrs.ExtractString(attributes, "actor"),
		Amount:    attrs.ExtractUint64(attributes, "amount"),
		Reason:    attrs.ExtractString(attributes, "reason"),
		RequestID: requestID,
	})
}
