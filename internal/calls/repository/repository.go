// Package repository provides database operations for the calls bounded
// context: the pending-call ledger and the durable call log.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pendingCallNotFoundMsg = "pending call not found"
	callNotFoundMsg        = "call not found"
)

// Repository provides database operations for pending calls and calls.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new calls repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

// CreatePending inserts a new pending call with status initiated. Concurrent
// inserts for the same (user, phone) are allowed; the matcher disambiguates.
func (r *Repository) CreatePending(ctx context.Context, pending *PendingCall) error {
	query := `
		INSERT INTO pending_calls (
			id, contact_id, user_id, phone_number, status, initiated_at, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := r.pool.Exec(ctx, query,
		pending.ID, pending.ContactID, pending.UserID, pending.PhoneNumber,
		pending.Status, pending.InitiatedAt, pending.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create pending call: %w", err)
	}

	return nil
}

// GetPendingByID retrieves a pending call by its ID.
func (r *Repository) GetPendingByID(ctx context.Context, id uuid.UUID) (*PendingCall, error) {
	query := `SELECT id, contact_id, user_id, phone_number, status, provider_call_id,
		initiated_at, completed_at, created_at
		FROM pending_calls WHERE id = $1`

	var p PendingCall
	err := r.pool.QueryRow(ctx, query, id).Scan(
		&p.ID, &p.ContactID, &p.UserID, &p.PhoneNumber, &p.Status,
		&p.ProviderCallID, &p.InitiatedAt, &p.CompletedAt, &p.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(pendingCallNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get pending call: %w", err)
	}

	return &p, nil
}

// FindInitiatedByPhone returns the reconciliation candidate set: initiated
// rows with the exact stored phone number, initiated inside [from, to].
// No phone normalization happens here; a formatting mismatch between dispatch
// and the provider report is a silent miss.
func (r *Repository) FindInitiatedByPhone(ctx context.Context, phoneNumber string, from, to time.Time) ([]PendingCall, error) {
	query := `SELECT id, contact_id, user_id, phone_number, status, provider_call_id,
		initiated_at, completed_at, created_at
		FROM pending_calls
		WHERE status = $1 AND phone_number = $2 AND initiated_at BETWEEN $3 AND $4
		ORDER BY initiated_at DESC`

	rows, err := r.pool.Query(ctx, query, PendingStatusInitiated, phoneNumber, from, to)
	if err != nil {
		return nil, fmt.Errorf("failed to query pending calls: %w", err)
	}
	defer rows.Close()

	var result []PendingCall
	for rows.Next() {
		var p PendingCall
		if err := rows.Scan(
			&p.ID, &p.ContactID, &p.UserID, &p.PhoneNumber, &p.Status,
			&p.ProviderCallID, &p.InitiatedAt, &p.CompletedAt, &p.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan pending call: %w", err)
		}
		result = append(result, p)
	}

	return result, rows.Err()
}

// ExpireStalePending marks initiated pending calls older than the cutoff as
// abandoned. The provider is not going to report on them anymore.
func (r *Repository) ExpireStalePending(ctx context.Context, before time.Time) (int64, error) {
	query := `UPDATE pending_calls SET status = $1
		WHERE status = $2 AND initiated_at < $3`

	tag, err := r.pool.Exec(ctx, query, PendingStatusAbandoned, PendingStatusInitiated, before)
	if err != nil {
		return 0, fmt.Errorf("failed to expire pending calls: %w", err)
	}

	return tag.RowsAffected(), nil
}

// ReconcileMatched performs the reconciliation write as one transaction:
// claim the pending call, insert the durable Call, refresh the contact's
// last-call summary. The claim is a conditional update on status, so two
// concurrent webhook deliveries for the same pending call cannot both win.
func (r *Repository) ReconcileMatched(ctx context.Context, params ReconcileParams) (ClaimStatus, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return ClaimConflict, fmt.Errorf("failed to begin reconcile transaction: %w", err)
	}
	defer tx.Rollback(ctx)

	claimQuery := `UPDATE pending_calls
		SET status = $1, provider_call_id = $2, completed_at = $3
		WHERE id = $4 AND status = $5`

	tag, err := tx.Exec(ctx, claimQuery,
		PendingStatusCompleted, params.ProviderCallID, params.CompletedAt,
		params.PendingCallID, PendingStatusInitiated,
	)
	if err != nil {
		return ClaimConflict, fmt.Errorf("failed to claim pending call: %w", err)
	}

	if tag.RowsAffected() == 0 {
		// Lost the claim. Distinguish a redelivery from a genuine conflict.
		var existingProviderID *string
		err := tx.QueryRow(ctx,
			`SELECT provider_call_id FROM pending_calls WHERE id = $1`,
			params.PendingCallID,
		).Scan(&existingProviderID)
		if err != nil {
			return ClaimConflict, fmt.Errorf("failed to inspect claimed pending call: %w", err)
		}
		if existingProviderID != nil && *existingProviderID == params.ProviderCallID {
			return ClaimDuplicate, nil
		}
		return ClaimConflict, nil
	}

	call := params.Call
	insertQuery := `
		INSERT INTO calls (
			id, contact_id, user_id, date, duration_minutes, notes, outcome,
			deal, provider_call_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err = tx.Exec(ctx, insertQuery,
		call.ID, call.ContactID, call.UserID, call.Date, call.DurationMinutes,
		call.Notes, call.Outcome, call.Deal, call.ProviderCallID, call.CreatedAt,
	)
	if err != nil {
		return ClaimConflict, fmt.Errorf("failed to create call: %w", err)
	}

	// The contact summary columns are denormalized cache owned by this
	// subsystem; the calls table is the source of truth.
	summaryQuery := `UPDATE contacts SET last_call_outcome = $1, last_call_date = $2, updated_at = now()
		WHERE id = $3`

	if _, err := tx.Exec(ctx, summaryQuery, call.Outcome, call.Date, call.ContactID); err != nil {
		return ClaimConflict, fmt.Errorf("failed to update contact summary: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return ClaimConflict, fmt.Errorf("failed to commit reconcile transaction: %w", err)
	}

	return ClaimAcquired, nil
}

// CreateCall inserts a call record outside of reconciliation (manual logging,
// message communication-log rows).
func (r *Repository) CreateCall(ctx context.Context, call *Call) error {
	query := `
		INSERT INTO calls (
			id, contact_id, user_id, date, duration_minutes, notes, outcome,
			deal, provider_call_id, created_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		call.ID, call.ContactID, call.UserID, call.Date, call.DurationMinutes,
		call.Notes, call.Outcome, call.Deal, call.ProviderCallID, call.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create call: %w", err)
	}

	return nil
}

// GetCallByID retrieves a call by its ID.
func (r *Repository) GetCallByID(ctx context.Context, id uuid.UUID) (*Call, error) {
	query := selectCallQuery + ` WHERE id = $1`

	var call Call
	if err := r.scanCall(r.pool.QueryRow(ctx, query, id), &call); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(callNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get call: %w", err)
	}

	return &call, nil
}

// GetCallByProviderCallID looks up a call by the provider's call id.
// Returns nil, nil when nothing matches.
func (r *Repository) GetCallByProviderCallID(ctx context.Context, providerCallID string) (*Call, error) {
	query := selectCallQuery + ` WHERE provider_call_id = $1`

	var call Call
	if err := r.scanCall(r.pool.QueryRow(ctx, query, providerCallID), &call); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get call by provider id: %w", err)
	}

	return &call, nil
}

// ListCallsByContact returns a contact's call history, newest first.
func (r *Repository) ListCallsByContact(ctx context.Context, contactID uuid.UUID, limit int) ([]Call, error) {
	query := selectCallQuery + ` WHERE contact_id = $1 ORDER BY date DESC LIMIT $2`
	return r.listCalls(ctx, query, contactID, normalizeLimit(limit))
}

// ListCallsByUser returns a user's call history, newest first.
func (r *Repository) ListCallsByUser(ctx context.Context, userID uuid.UUID, limit int) ([]Call, error) {
	query := selectCallQuery + ` WHERE user_id = $1 ORDER BY date DESC LIMIT $2`
	return r.listCalls(ctx, query, userID, normalizeLimit(limit))
}

// CountCallsByUserSince counts a user's calls (or closed deals) since a cutoff.
// Used for goal progress.
func (r *Repository) CountCallsByUserSince(ctx context.Context, userID uuid.UUID, since time.Time, dealsOnly bool) (int, error) {
	query := `SELECT COUNT(*) FROM calls WHERE user_id = $1 AND date >= $2`
	if dealsOnly {
		query += ` AND deal = true`
	}

	var count int
	if err := r.pool.QueryRow(ctx, query, userID, since).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count calls: %w", err)
	}

	return count, nil
}

// UpdateCall applies explicit user edits to a call record.
func (r *Repository) UpdateCall(ctx context.Context, call *Call) error {
	query := `UPDATE calls SET notes = $1, outcome = $2, deal = $3, duration_minutes = $4
		WHERE id = $5`

	tag, err := r.pool.Exec(ctx, query,
		call.Notes, call.Outcome, call.Deal, call.DurationMinutes, call.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update call: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(callNotFoundMsg)
	}

	return nil
}

// SetCallRecording annotates a call with its recording location.
func (r *Repository) SetCallRecording(ctx context.Context, callID uuid.UUID, recordingURL, storageKey string) error {
	query := `UPDATE calls SET recording_url = $1, recording_key = $2 WHERE id = $3`

	tag, err := r.pool.Exec(ctx, query, recordingURL, nullable(storageKey), callID)
	if err != nil {
		return fmt.Errorf("failed to set call recording: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(callNotFoundMsg)
	}

	return nil
}

const selectCallQuery = `SELECT id, contact_id, user_id, date, duration_minutes, notes,
	outcome, deal, provider_call_id, recording_url, recording_key, created_at
	FROM calls`

func (r *Repository) scanCall(row pgx.Row, call *Call) error {
	return row.Scan(
		&call.ID, &call.ContactID, &call.UserID, &call.Date, &call.DurationMinutes,
		&call.Notes, &call.Outcome, &call.Deal, &call.ProviderCallID,
		&call.RecordingURL, &call.RecordingKey, &call.CreatedAt,
	)
}

func (r *Repository) listCalls(ctx context.Context, query string, args ...any) ([]Call, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query calls: %w", err)
	}
	defer rows.Close()

	var result []Call
	for rows.Next() {
		var call Call
		if err := rows.Scan(
			&call.ID, &call.ContactID, &call.UserID, &call.Date, &call.DurationMinutes,
			&call.Notes, &call.Outcome, &call.Deal, &call.ProviderCallID,
			&call.RecordingURL, &call.RecordingKey, &call.CreatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan call: %w", err)
		}
		result = append(result, call)
	}

	return result, rows.Err()
}

func normalizeLimit(limit int) int {
	if limit <= 0 || limit > 200 {
		return 50
	}
	return limit
}

func nullable(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
