package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// EventCategory classifies audit events by their primary purpose.
// This drives retention and routing downstream of the outbox.
type EventCategory string

const (
	// CategoryCompliance covers events that change governing power or custody.
	// These are written fail-closed in the same transaction as the change.
	CategoryCompliance EventCategory = "compliance"

	// CategorySecurity covers authorization failures and replayed signer tokens.
	CategorySecurity EventCategory = "security"

	// CategoryOperations covers reads and routine activity.
	CategoryOperations EventCategory = "operations"
)

// Event is emitted from domain logic to capture key actions. Keep it
// transport-agnostic so stores and sinks can fan out.
type Event struct {
	Category  EventCategory
	Timestamp time.Time
	Subject   string // record address the event is about
	Action    string
	Realm     string
	Mint      string
	Owner     string
	ActorID   string // signer that authorized the action
	Amount    uint64
	Delegate  string
	Reason    string
	RequestID string
}

type AuditEvent string

const (
	// Record mutations
	EventDepositApplied    AuditEvent = "deposit_applied"
	EventWithdrawalApplied AuditEvent = "withdrawal_applied"
	EventDelegateSet       AuditEvent = "delegate_set"
	EventRecordCreated     AuditEvent = "record_created"

	// Custody
	EventTransferCompensated  AuditEvent = "transfer_compensated"
	EventCustodyReconcileNeed AuditEvent = "custody_reconciliation_required"

	// Security
	EventAuthorizationDenied AuditEvent = "authorization_denied"
	EventSignerReplay        AuditEvent = "signer_token_replayed"

	// Operations
	EventWithdrawalBlocked AuditEvent = "withdrawal_blocked"
)

var eventCategories = map[AuditEvent]EventCategory{
	EventDepositApplied:       CategoryCompliance,
	EventWithdrawalApplied:    CategoryCompliance,
	EventDelegateSet:          CategoryCompliance,
	EventRecordCreated:        CategoryCompliance,
	EventTransferCompensated:  CategoryCompliance,
	EventCustodyReconcileNeed: CategoryCompliance,

	EventAuthorizationDenied: CategorySecurity,
	EventSignerReplay:        CategorySecurity,

	EventWithdrawalBlocked: CategoryOperations,
}

// Known reports whether e is one of the events declared above.
func (e AuditEvent) Known() bool {
	_, ok := eventCategories[e]
	return ok
}

// MovesTokens reports whether the event records a custody transfer and must
// carry a non-zero amount.
func (e AuditEvent) MovesTokens() bool {
	return e == EventDepositApplied || e == EventWithdrawalApplied
}

// Category returns the EventCategory for this audit event.
// Unknown events default to CategoryOperations.
func (e AuditEvent) Category() EventCategory {
	if cat, ok := eventCategories[e]; ok {
		return cat
	}
	return CategoryOperations
}

// Store persists audit events. Implementations that participate in a SQL
// transaction read it from the context (see pkg/platform/tx).
type Store interface {
	Append(ctx context.Context, event Event) error
}

// OutboxEntry is a persisted event waiting to be relayed to the broker.
type OutboxEntry struct {
	ID            uuid.UUID
	AggregateType string
	AggregateID   string
	EventType     string
	Payload       []byte
	CreatedAt     time.Time
}
