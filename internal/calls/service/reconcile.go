package service

import (
	"context"
	"fmt"
	"time"

	"crm_backend/internal/calls/repository"
	"crm_backend/internal/events"
	"crm_backend/internal/telephony"

	"github.com/google/uuid"
)

// matchWindow is the symmetric tolerance between a pending call's initiation
// time and the provider-reported call start. Both the window and the
// most-recent-wins tie-break are behavioral contracts of reconciliation.
const matchWindow = 60 * time.Second

// ReconcileResult reports what reconciliation did with a completed-call event.
type ReconcileResult struct {
	// Matched is true when the event was correlated to a pending call
	// (including redeliveries of an already-reconciled event).
	Matched bool
	// ShouldShowPopup tells the UI to present the post-call popup to the
	// originating user. True only on a fresh, successful reconciliation.
	ShouldShowPopup bool
	// CallID is the durable call record, set when Matched.
	CallID uuid.UUID
	// Reason explains a non-match for logging.
	Reason string
}

// Reconcile correlates a completed-call event with the pending call that
// caused it. The provider sends no client correlation id, so the join is
// phone number equality plus the time window, most recent initiation winning.
func (s *Service) Reconcile(ctx context.Context, ev telephony.CallCompletedEvent) (ReconcileResult, error) {
	if !ev.IsOutbound() {
		// Inbound calls are a separate flow, never matched against the ledger.
		return ReconcileResult{Reason: "inbound event"}, nil
	}

	// Webhook redelivery: the call record already exists.
	if existing, err := s.store.GetCallByProviderCallID(ctx, ev.CallID); err != nil {
		return ReconcileResult{}, err
	} else if existing != nil {
		return ReconcileResult{Matched: true, CallID: existing.ID, Reason: "already reconciled"}, nil
	}

	candidates, err := s.store.FindInitiatedByPhone(ctx, ev.To,
		ev.StartedAt.Add(-matchWindow), ev.StartedAt.Add(matchWindow))
	if err != nil {
		return ReconcileResult{}, err
	}

	if len(candidates) == 0 {
		s.log.Warn("no pending call matched completed-call event",
			"provider_call_id", ev.CallID,
			"to", ev.To,
			"started_at", ev.StartedAt,
		)
		return ReconcileResult{Reason: "no pending call in window"}, nil
	}

	// Candidates arrive ordered by initiated_at descending; the most recent
	// one wins when rapid repeated clicks created duplicates.
	best := candidates[0]

	providerCallID := ev.CallID
	outcome := ClassifyOutcome(ev.Duration)
	now := time.Now().UTC()

	call := repository.Call{
		ID:              uuid.New(),
		ContactID:       best.ContactID,
		UserID:          best.UserID,
		Date:            ev.StartedAt,
		DurationMinutes: DurationMinutes(ev.Duration),
		Notes:           reconcileNotes(providerCallID, best.ID),
		Outcome:         outcome,
		Deal:            false,
		ProviderCallID:  &providerCallID,
		CreatedAt:       now,
	}

	status, err := s.store.ReconcileMatched(ctx, repository.ReconcileParams{
		PendingCallID:  best.ID,
		ProviderCallID: providerCallID,
		CompletedAt:    now,
		Call:           call,
	})
	if err != nil {
		return ReconcileResult{}, err
	}

	switch status {
	case repository.ClaimDuplicate:
		s.log.Info("pending call already reconciled with this provider call",
			"pending_call_id", best.ID, "provider_call_id", providerCallID)
		return ReconcileResult{Matched: true, Reason: "duplicate delivery"}, nil
	case repository.ClaimConflict:
		s.log.Warn("pending call already claimed by a different provider call",
			"pending_call_id", best.ID, "provider_call_id", providerCallID)
		return ReconcileResult{Reason: "claim conflict"}, nil
	}

	s.log.Info("call reconciled",
		"call_id", call.ID,
		"pending_call_id", best.ID,
		"contact_id", best.ContactID,
		"outcome", outcome,
	)

	s.bus.Publish(ctx, events.CallReconciled{
		BaseEvent:     events.NewBaseEvent(),
		CallID:        call.ID,
		PendingCallID: best.ID,
		ContactID:     best.ContactID,
		UserID:        best.UserID,
		Outcome:       outcome,
		CallDate:      ev.StartedAt,
	})

	return ReconcileResult{
		Matched:         true,
		ShouldShowPopup: true,
		CallID:          call.ID,
	}, nil
}

func reconcileNotes(providerCallID string, pendingCallID uuid.UUID) string {
	return fmt.Sprintf("Auto-logged outbound call. Provider call %s, pending call %s.",
		providerCallID, pendingCallID)
}
