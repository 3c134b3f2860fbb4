package repository

import (
	"time"

	"github.com/google/uuid"
)

// Pending call lifecycle statuses.
const (
	PendingStatusInitiated = "initiated"
	PendingStatusCompleted = "completed"
	PendingStatusAbandoned = "abandoned"
)

// PendingCall is the provisional record of a just-dispatched outbound call,
// awaiting the provider's completed-call webhook. Rows are never deleted;
// they are retained for audit.
type PendingCall struct {
	ID             uuid.UUID  `db:"id"`
	ContactID      uuid.UUID  `db:"contact_id"`
	UserID         uuid.UUID  `db:"user_id"`
	PhoneNumber    string     `db:"phone_number"`
	Status         string     `db:"status"`
	ProviderCallID *string    `db:"provider_call_id"`
	InitiatedAt    time.Time  `db:"initiated_at"`
	CompletedAt    *time.Time `db:"completed_at"`
	CreatedAt      time.Time  `db:"created_at"`
}

// Call is the durable call-log record.
type Call struct {
	ID              uuid.UUID `db:"id"`
	ContactID       uuid.UUID `db:"contact_id"`
	UserID          uuid.UUID `db:"user_id"`
	Date            time.Time `db:"date"`
	DurationMinutes int       `db:"duration_minutes"`
	Notes           string    `db:"notes"`
	Outcome         string    `db:"outcome"`
	Deal            bool      `db:"deal"`
	ProviderCallID  *string   `db:"provider_call_id"`
	RecordingURL    *string   `db:"recording_url"`
	RecordingKey    *string   `db:"recording_key"`
	CreatedAt       time.Time `db:"created_at"`
}

// ClaimStatus is the result of attempting to claim a pending call during
// reconciliation.
type ClaimStatus int

const (
	// ClaimAcquired means this reconciliation won the pending call and the
	// durable records were written.
	ClaimAcquired ClaimStatus = iota
	// ClaimDuplicate means the pending call was already completed with the
	// same provider call id (webhook redelivery).
	ClaimDuplicate
	// ClaimConflict means the pending call was already completed with a
	// different provider call id.
	ClaimConflict
)

// ReconcileParams carries everything the reconciliation transaction writes.
type ReconcileParams struct {
	PendingCallID  uuid.UUID
	ProviderCallID string
	CompletedAt    time.Time
	Call           Call
}
