// Package service implements the calls bounded context: click-to-call
// dispatch, the pending-call ledger, and webhook reconciliation.
package service

import (
	"context"
	"fmt"
	"time"

	"crm_backend/internal/calls/repository"
	"crm_backend/internal/calls/transport"
	"crm_backend/internal/events"
	"crm_backend/internal/telephony"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"
	"crm_backend/platform/phone"

	"github.com/google/uuid"
)

// Dialer dispatches an outbound call through the telephony provider.
// Satisfied by *telephony.Client.
type Dialer interface {
	PlaceCall(ctx context.Context, phoneNumber string) (telephony.DispatchedCall, error)
}

// ContactDirectory is the read/lookup surface the calls service needs from
// the contacts module. Implemented by an adapter over the contacts repository.
type ContactDirectory interface {
	// GetContactPhone returns the contact's phone number.
	GetContactPhone(ctx context.Context, contactID uuid.UUID) (string, error)
	// FindContactByPhone resolves a phone number to (contactID, ownerUserID).
	// Returns apperr.NotFound when no contact matches.
	FindContactByPhone(ctx context.Context, phoneNumber string) (uuid.UUID, uuid.UUID, error)
}

// RecordingArchiver copies recording media into durable object storage and
// returns the storage key. A nil archiver means recordings are linked by URL only.
type RecordingArchiver interface {
	Archive(ctx context.Context, providerCallID, recordingURL string) (string, error)
}

// Service implements call dispatch and reconciliation.
type Service struct {
	store    repository.Store
	dialer   Dialer
	contacts ContactDirectory
	archiver RecordingArchiver
	bus      events.Bus
	log      *logger.Logger
}

// New creates the calls service.
func New(store repository.Store, dialer Dialer, contacts ContactDirectory, bus events.Bus, log *logger.Logger) *Service {
	return &Service{
		store:    store,
		dialer:   dialer,
		contacts: contacts,
		bus:      bus,
		log:      log,
	}
}

// SetRecordingArchiver wires the optional recording archive storage.
func (s *Service) SetRecordingArchiver(archiver RecordingArchiver) {
	s.archiver = archiver
}

// Dispatch starts a click-to-call: ask the provider to place the call and
// record a pending-call row awaiting the completed-call webhook.
func (s *Service) Dispatch(ctx context.Context, contactID, userID uuid.UUID) (transport.ClickToCallResponse, error) {
	rawPhone, err := s.contacts.GetContactPhone(ctx, contactID)
	if err != nil {
		return transport.ClickToCallResponse{}, err
	}
	if rawPhone == "" {
		return transport.ClickToCallResponse{}, apperr.Validation("contact has no phone number")
	}

	normalized := phone.NormalizeE164(rawPhone)

	dispatched, err := s.dialer.PlaceCall(ctx, normalized)
	if err != nil {
		return transport.ClickToCallResponse{}, err
	}

	now := time.Now().UTC()
	pending := &repository.PendingCall{
		ID:          uuid.New(),
		ContactID:   contactID,
		UserID:      userID,
		PhoneNumber: normalized,
		Status:      repository.PendingStatusInitiated,
		InitiatedAt: now,
		CreatedAt:   now,
	}

	if err := s.store.CreatePending(ctx, pending); err != nil {
		s.log.Error("failed to record pending call",
			"contact_id", contactID, "error", err)
		return transport.ClickToCallResponse{}, apperr.Wrap(apperr.KindInternal, "failed to record pending call", err)
	}

	s.log.Info("outbound call dispatched",
		"pending_call_id", pending.ID,
		"contact_id", contactID,
		"provider_ref", dispatched.ProviderRef,
	)

	return transport.ClickToCallResponse{
		Success:       true,
		URL:           dispatched.URL,
		PendingCallID: pending.ID,
	}, nil
}

// LogManualCall records a call the user entered by hand.
func (s *Service) LogManualCall(ctx context.Context, req transport.LogCallRequest, userID uuid.UUID) (transport.CallResponse, error) {
	call := &repository.Call{
		ID:              uuid.New(),
		ContactID:       req.ContactID,
		UserID:          userID,
		Date:            req.Date,
		DurationMinutes: req.DurationMinutes,
		Notes:           req.Notes,
		Outcome:         req.Outcome,
		Deal:            req.Deal,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.CreateCall(ctx, call); err != nil {
		return transport.CallResponse{}, apperr.Wrap(apperr.KindInternal, "failed to log call", err)
	}

	return transport.ToCallResponse(call), nil
}

// GetCall returns a single call record.
func (s *Service) GetCall(ctx context.Context, id uuid.UUID) (transport.CallResponse, error) {
	call, err := s.store.GetCallByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}
	return transport.ToCallResponse(call), nil
}

// ListCalls returns call history for a contact or, absent a contact filter,
// for the requesting user.
func (s *Service) ListCalls(ctx context.Context, contactID *uuid.UUID, userID uuid.UUID, limit int) ([]transport.CallResponse, error) {
	var (
		calls []repository.Call
		err   error
	)
	if contactID != nil {
		calls, err = s.store.ListCallsByContact(ctx, *contactID, limit)
	} else {
		calls, err = s.store.ListCallsByUser(ctx, userID, limit)
	}
	if err != nil {
		return nil, err
	}

	result := make([]transport.CallResponse, len(calls))
	for i := range calls {
		result[i] = transport.ToCallResponse(&calls[i])
	}
	return result, nil
}

// UpdateCall applies explicit user edits to an existing call.
func (s *Service) UpdateCall(ctx context.Context, id uuid.UUID, req transport.UpdateCallRequest) (transport.CallResponse, error) {
	call, err := s.store.GetCallByID(ctx, id)
	if err != nil {
		return transport.CallResponse{}, err
	}

	if req.Notes != nil {
		call.Notes = *req.Notes
	}
	if req.Outcome != nil {
		call.Outcome = *req.Outcome
	}
	if req.Deal != nil {
		call.Deal = *req.Deal
	}
	if req.DurationMinutes != nil {
		call.DurationMinutes = *req.DurationMinutes
	}

	if err := s.store.UpdateCall(ctx, call); err != nil {
		return transport.CallResponse{}, err
	}

	return transport.ToCallResponse(call), nil
}

// CountCallsSince exposes call/deal counts for goal progress.
func (s *Service) CountCallsSince(ctx context.Context, userID uuid.UUID, since time.Time, dealsOnly bool) (int, error) {
	return s.store.CountCallsByUserSince(ctx, userID, since, dealsOnly)
}

// ExpireStale marks pending calls that never got a provider report abandoned.
func (s *Service) ExpireStale(ctx context.Context, olderThan time.Duration) (int64, error) {
	return s.store.ExpireStalePending(ctx, time.Now().UTC().Add(-olderThan))
}

// LogMessage captures a provider message event as a communication-log entry
// on the matching contact's call history.
func (s *Service) LogMessage(ctx context.Context, ev telephony.MessageEvent) error {
	outcome := OutcomeMessageReceived
	lookupPhone := ev.From
	if ev.Direction == "outbound" {
		outcome = OutcomeMessageDelivered
		lookupPhone = ev.To
	}

	// Redelivered webhooks must not duplicate the log entry.
	if existing, err := s.store.GetCallByProviderCallID(ctx, ev.MessageID); err != nil {
		return err
	} else if existing != nil {
		return nil
	}

	contactID, ownerID, err := s.contacts.FindContactByPhone(ctx, phone.NormalizeE164(lookupPhone))
	if err != nil {
		if apperr.Is(err, apperr.KindNotFound) {
			s.log.Warn("message from unknown number dropped",
				"message_id", ev.MessageID, "direction", ev.Direction)
			return nil
		}
		return err
	}

	messageID := ev.MessageID
	when := ev.Timestamp
	if when.IsZero() {
		when = time.Now().UTC()
	}

	call := &repository.Call{
		ID:              uuid.New(),
		ContactID:       contactID,
		UserID:          ownerID,
		Date:            when,
		DurationMinutes: 0,
		Notes:           messageNotes(ev),
		Outcome:         outcome,
		ProviderCallID:  &messageID,
		CreatedAt:       time.Now().UTC(),
	}

	if err := s.store.CreateCall(ctx, call); err != nil {
		return err
	}

	s.bus.Publish(ctx, events.MessageLogged{
		BaseEvent: events.NewBaseEvent(),
		CallID:    call.ID,
		ContactID: contactID,
		Direction: ev.Direction,
	})

	return nil
}

// AttachRecording links a late-arriving recording to its call via the
// provider call id column. A missing call is a soft miss, not an error.
func (s *Service) AttachRecording(ctx context.Context, ev telephony.RecordingReadyEvent) error {
	call, err := s.store.GetCallByProviderCallID(ctx, ev.CallID)
	if err != nil {
		return err
	}
	if call == nil {
		s.log.Warn("recording arrived for unknown call",
			"provider_call_id", ev.CallID)
		return nil
	}

	var storageKey string
	if s.archiver != nil {
		key, err := s.archiver.Archive(ctx, ev.CallID, ev.RecordingURL)
		if err != nil {
			// Keep the URL link even when archiving fails.
			s.log.Error("failed to archive recording",
				"provider_call_id", ev.CallID, "error", err)
		} else {
			storageKey = key
		}
	}

	return s.store.SetCallRecording(ctx, call.ID, ev.RecordingURL, storageKey)
}

func messageNotes(ev telephony.MessageEvent) string {
	body := ev.Body
	if len(body) > 500 {
		body = body[:500]
	}
	return fmt.Sprintf("%s message (provider message %s): %s", ev.Direction, ev.MessageID, body)
}
