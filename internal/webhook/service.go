package webhook

import (
	"context"
	"encoding/json"

	"crm_backend/internal/calls/service"
	"crm_backend/internal/telephony"
	"crm_backend/platform/logger"
)

// Reconciler is the surface the ingress needs from the calls module.
// Satisfied by *service.Service.
type Reconciler interface {
	Reconcile(ctx context.Context, ev telephony.CallCompletedEvent) (service.ReconcileResult, error)
	LogMessage(ctx context.Context, ev telephony.MessageEvent) error
	AttachRecording(ctx context.Context, ev telephony.RecordingReadyEvent) error
}

// Response is the acknowledgment returned to the provider. Success is true
// whenever the delivery was syntactically accepted and routed, regardless of
// internal processing outcome, so the provider never enters a retry storm.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message"`
	Type    string `json:"type,omitempty"`
}

// Service routes authenticated provider deliveries to their handlers.
type Service struct {
	calls Reconciler
	log   *logger.Logger
}

// NewService creates a new webhook service.
func NewService(calls Reconciler, log *logger.Logger) *Service {
	return &Service{calls: calls, log: log}
}

// Process dispatches one provider envelope. It never returns an error to the
// transport layer; failures are logged and acknowledged.
func (s *Service) Process(ctx context.Context, env telephony.Envelope) Response {
	switch env.Type {
	case telephony.EventCallRinging:
		// Informational only; no state change.
		s.log.Info("call ringing", "event_id", env.ID)
		return ack(env.Type, "ringing acknowledged")

	case telephony.EventCallCompleted:
		return s.handleCallCompleted(ctx, env)

	case telephony.EventRecordingReady:
		return s.handleRecordingReady(ctx, env)

	case telephony.EventMessageReceived, telephony.EventMessageDelivered:
		return s.handleMessage(ctx, env)

	default:
		s.log.WebhookEvent(env.Type, env.ID, false)
		return ack(env.Type, "event type not handled")
	}
}

func (s *Service) handleCallCompleted(ctx context.Context, env telephony.Envelope) Response {
	var ev telephony.CallCompletedEvent
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		s.log.Error("malformed call-completed payload", "event_id", env.ID, "error", err)
		return ack(env.Type, "payload not parseable")
	}

	result, err := s.calls.Reconcile(ctx, ev)
	if err != nil {
		// Internal failure; still acknowledged. See Response doc.
		s.log.Error("call reconciliation failed",
			"event_id", env.ID, "provider_call_id", ev.CallID, "error", err)
		return ack(env.Type, "processing failed")
	}

	s.log.WebhookEvent(env.Type, env.ID, result.Matched)
	if !result.Matched {
		return ack(env.Type, "no matching pending call")
	}
	return ack(env.Type, "call reconciled")
}

func (s *Service) handleRecordingReady(ctx context.Context, env telephony.Envelope) Response {
	var ev telephony.RecordingReadyEvent
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		s.log.Error("malformed recording-ready payload", "event_id", env.ID, "error", err)
		return ack(env.Type, "payload not parseable")
	}

	if err := s.calls.AttachRecording(ctx, ev); err != nil {
		s.log.Error("recording attach failed",
			"event_id", env.ID, "provider_call_id", ev.CallID, "error", err)
		return ack(env.Type, "processing failed")
	}

	return ack(env.Type, "recording linked")
}

func (s *Service) handleMessage(ctx context.Context, env telephony.Envelope) Response {
	var ev telephony.MessageEvent
	if err := json.Unmarshal(env.Data, &ev); err != nil {
		s.log.Error("malformed message payload", "event_id", env.ID, "error", err)
		return ack(env.Type, "payload not parseable")
	}

	if ev.Direction == "" && env.Type == telephony.EventMessageDelivered {
		ev.Direction = "outbound"
	}

	if err := s.calls.LogMessage(ctx, ev); err != nil {
		s.log.Error("message logging failed",
			"event_id", env.ID, "message_id", ev.MessageID, "error", err)
		return ack(env.Type, "processing failed")
	}

	return ack(env.Type, "message logged")
}

func ack(eventType, message string) Response {
	return Response{Success: true, Message: message, Type: eventType}
}
