package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Store is the persistence boundary the calls service depends on.
// The pgx-backed Repository is the production implementation; tests use fakes.
type Store interface {
	CreatePending(ctx context.Context, pending *PendingCall) error
	GetPendingByID(ctx context.Context, id uuid.UUID) (*PendingCall, error)
	// FindInitiatedByPhone returns initiated pending calls whose stored phone
	// number equals the given string and whose initiated_at falls inside
	// [from, to], most recent first.
	FindInitiatedByPhone(ctx context.Context, phoneNumber string, from, to time.Time) ([]PendingCall, error)
	// ExpireStalePending marks initiated rows older than the cutoff abandoned.
	ExpireStalePending(ctx context.Context, before time.Time) (int64, error)

	// ReconcileMatched atomically claims the pending call, inserts the Call,
	// and refreshes the contact's last-call summary. On ClaimDuplicate or
	// ClaimConflict nothing is written.
	ReconcileMatched(ctx context.Context, params ReconcileParams) (ClaimStatus, error)

	CreateCall(ctx context.Context, call *Call) error
	GetCallByID(ctx context.Context, id uuid.UUID) (*Call, error)
	// GetCallByProviderCallID returns nil, nil when no call references the id.
	GetCallByProviderCallID(ctx context.Context, providerCallID string) (*Call, error)
	ListCallsByContact(ctx context.Context, contactID uuid.UUID, limit int) ([]Call, error)
	ListCallsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Call, error)
	CountCallsByUserSince(ctx context.Context, userID uuid.UUID, since time.Time, dealsOnly bool) (int, error)
	UpdateCall(ctx context.Context, call *Call) error
	SetCallRecording(ctx context.Context, callID uuid.UUID, recordingURL, storageKey string) error
}

var _ Store = (*Repository)(nil)
