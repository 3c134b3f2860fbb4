package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"crm_backend/internal/calls/service"
	"crm_backend/internal/telephony"
	"crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
)

type fakeReconciler struct {
	reconcileCalls  int
	messageCalls    int
	recordingCalls  int
	reconcileResult service.ReconcileResult
	reconcileErr    error
}

func (f *fakeReconciler) Reconcile(_ context.Context, _ telephony.CallCompletedEvent) (service.ReconcileResult, error) {
	f.reconcileCalls++
	return f.reconcileResult, f.reconcileErr
}

func (f *fakeReconciler) LogMessage(_ context.Context, _ telephony.MessageEvent) error {
	f.messageCalls++
	return nil
}

func (f *fakeReconciler) AttachRecording(_ context.Context, _ telephony.RecordingReadyEvent) error {
	f.recordingCalls++
	return nil
}

func newTestRouter(calls Reconciler, secret string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	log := logger.New("development")

	engine := gin.New()
	group := engine.Group("/api/v1/webhook")
	group.Use(SignatureMiddleware(secret, log))
	group.POST("/telephony", NewHandler(NewService(calls, log)).HandleTelephonyEvent)
	return engine
}

func postWebhook(t *testing.T, engine *gin.Engine, body []byte, signature string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/v1/webhook/telephony", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	if signature != "" {
		req.Header.Set(SignatureHeader, signature)
	}
	rec := httptest.NewRecorder()
	engine.ServeHTTP(rec, req)
	return rec
}

func envelope(t *testing.T, eventType string, data any) []byte {
	t.Helper()
	raw, err := json.Marshal(data)
	if err != nil {
		t.Fatalf("marshal event data: %v", err)
	}
	body, err := json.Marshal(map[string]any{
		"type":       eventType,
		"data":       json.RawMessage(raw),
		"id":         "evt_123",
		"apiVersion": "v2",
	})
	if err != nil {
		t.Fatalf("marshal envelope: %v", err)
	}
	return body
}

func sign(body []byte, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(body)
	return hex.EncodeToString(mac.Sum(nil))
}

func TestWebhook_UnknownEventTypeReturnsSuccess(t *testing.T) {
	calls := &fakeReconciler{}
	engine := newTestRouter(calls, "")

	body := envelope(t, "call.transferred", map[string]any{})
	rec := postWebhook(t, engine, body, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("unknown event type must still ack success, got %+v", resp)
	}
	if calls.reconcileCalls+calls.messageCalls+calls.recordingCalls != 0 {
		t.Fatalf("unknown event type must not mutate state")
	}
}

func TestWebhook_MalformedBodyReturns400(t *testing.T) {
	engine := newTestRouter(&fakeReconciler{}, "")

	rec := postWebhook(t, engine, []byte("{not json"), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for malformed body, got %d", rec.Code)
	}
}

func TestWebhook_MissingTypeReturns400(t *testing.T) {
	engine := newTestRouter(&fakeReconciler{}, "")

	rec := postWebhook(t, engine, []byte(`{"id":"evt_1","data":{}}`), "")
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400 for missing type, got %d", rec.Code)
	}
}

func TestWebhook_BadSignatureRejectedWithoutProcessing(t *testing.T) {
	calls := &fakeReconciler{}
	engine := newTestRouter(calls, "topsecret")

	body := envelope(t, telephony.EventCallCompleted, telephony.CallCompletedEvent{
		CallID: "prov-1", Direction: "outbound-api", To: "+15551234567", Duration: 45,
	})
	rec := postWebhook(t, engine, body, "deadbeef")

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for bad signature, got %d", rec.Code)
	}
	if calls.reconcileCalls != 0 {
		t.Fatalf("rejected delivery must not reach the reconciler")
	}
}

func TestWebhook_MissingSignatureRejectedWhenSecretConfigured(t *testing.T) {
	engine := newTestRouter(&fakeReconciler{}, "topsecret")

	body := envelope(t, "call.ringing", map[string]any{})
	rec := postWebhook(t, engine, body, "")
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 for missing signature, got %d", rec.Code)
	}
}

func TestWebhook_ValidSignatureAccepted(t *testing.T) {
	calls := &fakeReconciler{reconcileResult: service.ReconcileResult{Matched: true}}
	engine := newTestRouter(calls, "topsecret")

	body := envelope(t, telephony.EventCallCompleted, telephony.CallCompletedEvent{
		CallID: "prov-1", Direction: "outbound-api", To: "+15551234567", Duration: 45,
	})
	rec := postWebhook(t, engine, body, sign(body, "topsecret"))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if calls.reconcileCalls != 1 {
		t.Fatalf("expected reconciler to be invoked once, got %d", calls.reconcileCalls)
	}
}

func TestWebhook_NoSecretSkipsVerification(t *testing.T) {
	calls := &fakeReconciler{}
	engine := newTestRouter(calls, "")

	body := envelope(t, "call.ringing", map[string]any{})
	rec := postWebhook(t, engine, body, "")
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 without secret, got %d", rec.Code)
	}
}

func TestWebhook_InternalFailureStillAcks(t *testing.T) {
	calls := &fakeReconciler{reconcileErr: context.DeadlineExceeded}
	engine := newTestRouter(calls, "")

	body := envelope(t, telephony.EventCallCompleted, telephony.CallCompletedEvent{
		CallID: "prov-1", Direction: "outbound-api", To: "+15551234567", Duration: 45,
	})
	rec := postWebhook(t, engine, body, "")

	if rec.Code != http.StatusOK {
		t.Fatalf("internal failure must still return 200, got %d", rec.Code)
	}

	var resp Response
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("unmarshal response: %v", err)
	}
	if !resp.Success {
		t.Fatalf("internal failure must still ack success, got %+v", resp)
	}
}

func TestWebhook_DeliveredMessageDefaultsOutbound(t *testing.T) {
	log := logger.New("development")

	captured := &capturingReconciler{}
	svc := NewService(captured, log)

	raw, _ := json.Marshal(telephony.MessageEvent{MessageID: "msg-1", From: "+1555", To: "+1666"})
	resp := svc.Process(context.Background(), telephony.Envelope{
		Type: telephony.EventMessageDelivered,
		Data: raw,
		ID:   "evt_9",
	})

	if !resp.Success {
		t.Fatalf("expected ack, got %+v", resp)
	}
	if captured.lastMessage.Direction != "outbound" {
		t.Fatalf("delivered message must default to outbound, got %q", captured.lastMessage.Direction)
	}
}

type capturingReconciler struct {
	fakeReconciler
	lastMessage telephony.MessageEvent
}

func (c *capturingReconciler) LogMessage(_ context.Context, ev telephony.MessageEvent) error {
	c.lastMessage = ev
	return nil
}
