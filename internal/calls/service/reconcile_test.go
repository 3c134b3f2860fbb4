package service

import (
	"context"
	"sort"
	"testing"
	"time"

	"crm_backend/internal/calls/repository"
	"crm_backend/internal/events"
	"crm_backend/internal/telephony"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

// fakeStore is an in-memory Store for exercising reconciliation without a
// database. ReconcileMatched reproduces the conditional-claim semantics of
// the real repository.
type fakeStore struct {
	pending map[uuid.UUID]*repository.PendingCall
	calls   map[uuid.UUID]*repository.Call
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		pending: make(map[uuid.UUID]*repository.PendingCall),
		calls:   make(map[uuid.UUID]*repository.Call),
	}
}

func (f *fakeStore) addPending(phone string, initiatedAt time.Time) *repository.PendingCall {
	p := &repository.PendingCall{
		ID:          uuid.New(),
		ContactID:   uuid.New(),
		UserID:      uuid.New(),
		PhoneNumber: phone,
		Status:      repository.PendingStatusInitiated,
		InitiatedAt: initiatedAt,
		CreatedAt:   initiatedAt,
	}
	f.pending[p.ID] = p
	return p
}

func (f *fakeStore) CreatePending(_ context.Context, p *repository.PendingCall) error {
	cp := *p
	f.pending[p.ID] = &cp
	return nil
}

func (f *fakeStore) GetPendingByID(_ context.Context, id uuid.UUID) (*repository.PendingCall, error) {
	return f.pending[id], nil
}

func (f *fakeStore) FindInitiatedByPhone(_ context.Context, phoneNumber string, from, to time.Time) ([]repository.PendingCall, error) {
	var out []repository.PendingCall
	for _, p := range f.pending {
		if p.Status != repository.PendingStatusInitiated || p.PhoneNumber != phoneNumber {
			continue
		}
		if p.InitiatedAt.Before(from) || p.InitiatedAt.After(to) {
			continue
		}
		out = append(out, *p)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].InitiatedAt.After(out[j].InitiatedAt)
	})
	return out, nil
}

func (f *fakeStore) ExpireStalePending(_ context.Context, before time.Time) (int64, error) {
	var n int64
	for _, p := range f.pending {
		if p.Status == repository.PendingStatusInitiated && p.InitiatedAt.Before(before) {
			p.Status = repository.PendingStatusAbandoned
			n++
		}
	}
	return n, nil
}

func (f *fakeStore) ReconcileMatched(_ context.Context, params repository.ReconcileParams) (repository.ClaimStatus, error) {
	p, ok := f.pending[params.PendingCallID]
	if !ok {
		return repository.ClaimConflict, nil
	}
	if p.Status != repository.PendingStatusInitiated {
		if p.ProviderCallID != nil && *p.ProviderCallID == params.ProviderCallID {
			return repository.ClaimDuplicate, nil
		}
		return repository.ClaimConflict, nil
	}

	providerID := params.ProviderCallID
	completedAt := params.CompletedAt
	p.Status = repository.PendingStatusCompleted
	p.ProviderCallID = &providerID
	p.CompletedAt = &completedAt

	call := params.Call
	f.calls[call.ID] = &call
	return repository.ClaimAcquired, nil
}

func (f *fakeStore) CreateCall(_ context.Context, call *repository.Call) error {
	cp := *call
	f.calls[call.ID] = &cp
	return nil
}

func (f *fakeStore) GetCallByID(_ context.Context, id uuid.UUID) (*repository.Call, error) {
	return f.calls[id], nil
}

func (f *fakeStore) GetCallByProviderCallID(_ context.Context, providerCallID string) (*repository.Call, error) {
	for _, c := range f.calls {
		if c.ProviderCallID != nil && *c.ProviderCallID == providerCallID {
			return c, nil
		}
	}
	return nil, nil
}

func (f *fakeStore) ListCallsByContact(_ context.Context, contactID uuid.UUID, _ int) ([]repository.Call, error) {
	var out []repository.Call
	for _, c := range f.calls {
		if c.ContactID == contactID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) ListCallsByUser(_ context.Context, userID uuid.UUID, _ int) ([]repository.Call, error) {
	var out []repository.Call
	for _, c := range f.calls {
		if c.UserID == userID {
			out = append(out, *c)
		}
	}
	return out, nil
}

func (f *fakeStore) CountCallsByUserSince(_ context.Context, userID uuid.UUID, since time.Time, dealsOnly bool) (int, error) {
	n := 0
	for _, c := range f.calls {
		if c.UserID != userID || c.Date.Before(since) {
			continue
		}
		if dealsOnly && !c.Deal {
			continue
		}
		n++
	}
	return n, nil
}

func (f *fakeStore) UpdateCall(_ context.Context, call *repository.Call) error {
	cp := *call
	f.calls[call.ID] = &cp
	return nil
}

func (f *fakeStore) SetCallRecording(_ context.Context, callID uuid.UUID, recordingURL, storageKey string) error {
	if c, ok := f.calls[callID]; ok {
		c.RecordingURL = &recordingURL
		if storageKey != "" {
			c.RecordingKey = &storageKey
		}
	}
	return nil
}

var _ repository.Store = (*fakeStore)(nil)

func newTestService(store *fakeStore) *Service {
	log := logger.New("development")
	return New(store, nil, nil, events.NewInMemoryBus(log), log)
}

func completedEvent(to string, startedAt time.Time, duration int) telephony.CallCompletedEvent {
	return telephony.CallCompletedEvent{
		CallID:    "prov-" + uuid.NewString(),
		Direction: "outbound-api",
		From:      "+15550001111",
		To:        to,
		StartedAt: startedAt,
		Duration:  duration,
	}
}

func TestReconcile_MatchesWithinWindow(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	pending := store.addPending("+15551234567", now)

	svc := newTestService(store)

	// Provider reports the call starting 40 seconds after dispatch.
	ev := completedEvent("+15551234567", now.Add(40*time.Second), 45)
	result, err := svc.Reconcile(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched || !result.ShouldShowPopup {
		t.Fatalf("expected match with popup, got %+v", result)
	}

	call := store.calls[result.CallID]
	if call == nil {
		t.Fatalf("expected durable call record")
	}
	if call.DurationMinutes != 1 {
		t.Fatalf("expected 45s logged as 1 minute, got %d", call.DurationMinutes)
	}
	if call.Outcome != OutcomeConnected {
		t.Fatalf("expected outcome %q, got %q", OutcomeConnected, call.Outcome)
	}
	if store.pending[pending.ID].Status != repository.PendingStatusCompleted {
		t.Fatalf("expected pending call completed, got %s", store.pending[pending.ID].Status)
	}
}

func TestReconcile_OutsideWindowIsDropped(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	pending := store.addPending("+15551234567", now)

	svc := newTestService(store)

	ev := completedEvent("+15551234567", now.Add(90*time.Second), 45)
	result, err := svc.Reconcile(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched {
		t.Fatalf("expected no match at 90s offset, got %+v", result)
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected no call record, got %d", len(store.calls))
	}
	if store.pending[pending.ID].Status != repository.PendingStatusInitiated {
		t.Fatalf("pending call must stay initiated on a no-match")
	}
}

func TestReconcile_WindowBoundaryIsInclusive(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	store.addPending("+15551234567", now)

	svc := newTestService(store)

	// Exactly 60 seconds apart still matches; 61 does not.
	result, err := svc.Reconcile(context.Background(),
		completedEvent("+15551234567", now.Add(60*time.Second), 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched {
		t.Fatalf("expected match at exactly 60s, got %+v", result)
	}

	store2 := newFakeStore()
	store2.addPending("+15551234567", now)
	svc2 := newTestService(store2)

	result, err = svc2.Reconcile(context.Background(),
		completedEvent("+15551234567", now.Add(61*time.Second), 10))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched {
		t.Fatalf("expected no match at 61s, got %+v", result)
	}
}

func TestReconcile_MostRecentCandidateWins(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	older := store.addPending("+15551234567", now.Add(-30*time.Second))
	newer := store.addPending("+15551234567", now.Add(-5*time.Second))

	svc := newTestService(store)

	result, err := svc.Reconcile(context.Background(),
		completedEvent("+15551234567", now, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Matched {
		t.Fatalf("expected match, got %+v", result)
	}
	if store.pending[newer.ID].Status != repository.PendingStatusCompleted {
		t.Fatalf("expected the most recent pending call to be claimed")
	}
	if store.pending[older.ID].Status != repository.PendingStatusInitiated {
		t.Fatalf("older candidate must not be touched")
	}
}

func TestReconcile_InboundEventsAreSkipped(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	store.addPending("+15551234567", now)

	svc := newTestService(store)

	ev := completedEvent("+15551234567", now, 20)
	ev.Direction = "inbound"
	result, err := svc.Reconcile(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched {
		t.Fatalf("inbound events must not match the ledger")
	}
	if len(store.calls) != 0 {
		t.Fatalf("inbound event must not create a call")
	}
}

func TestReconcile_RedeliveryIsIdempotent(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	store.addPending("+15551234567", now)

	svc := newTestService(store)

	ev := completedEvent("+15551234567", now.Add(10*time.Second), 45)
	first, err := svc.Reconcile(context.Background(), ev)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !first.Matched {
		t.Fatalf("expected first delivery to match")
	}

	// Provider redelivers the identical event.
	second, err := svc.Reconcile(context.Background(), ev)
	if err != nil {
		t.Fatalf("redelivery must not error: %v", err)
	}
	if !second.Matched {
		t.Fatalf("redelivery should report matched, got %+v", second)
	}
	if second.ShouldShowPopup {
		t.Fatalf("redelivery must not trigger the popup again")
	}
	if len(store.calls) != 1 {
		t.Fatalf("expected exactly one call record, got %d", len(store.calls))
	}
}

func TestReconcile_ClaimConflictDoesNotCreateSecondCall(t *testing.T) {
	store := newFakeStore()
	now := time.Now().UTC()
	pending := store.addPending("+15551234567", now)

	// Another delivery already claimed the row with a different provider id.
	otherID := "prov-other"
	pending.Status = repository.PendingStatusCompleted
	pending.ProviderCallID = &otherID

	svc := newTestService(store)

	// The claimed row no longer surfaces as a candidate, so this is a no-match.
	result, err := svc.Reconcile(context.Background(),
		completedEvent("+15551234567", now, 20))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Matched {
		t.Fatalf("expected no match against an already claimed row")
	}
	if len(store.calls) != 0 {
		t.Fatalf("expected no call record, got %d", len(store.calls))
	}
}
