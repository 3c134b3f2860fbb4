// Package telephony integrates with the third-party calling provider: an
// outbound REST client for dispatching calls and the typed payloads the
// provider delivers to our webhook.
package telephony

import (
	"encoding/json"
	"strings"
	"time"
)

// Provider webhook event types. Unknown types are acknowledged and ignored.
const (
	EventCallRinging      = "call.ringing"
	EventCallCompleted    = "call.completed"
	EventRecordingReady   = "recording.ready"
	EventMessageReceived  = "message.received"
	EventMessageDelivered = "message.delivered"
)

// Envelope is the outer JSON structure of every provider webhook delivery.
// Data is kept raw so each event type can bind its own payload.
type Envelope struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	ID         string          `json:"id"`
	APIVersion string          `json:"apiVersion"`
	CreatedAt  time.Time       `json:"createdAt"`
}

// CallCompletedEvent reports a finished call. Duration is in seconds.
type CallCompletedEvent struct {
	CallID    string    `json:"callId"`
	Direction string    `json:"direction"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	StartedAt time.Time `json:"startedAt"`
	Duration  int       `json:"duration"`
}

// IsOutbound reports whether the call was placed by us. The provider uses
// variants like "outbound-api" for API-dispatched calls.
func (e CallCompletedEvent) IsOutbound() bool {
	return strings.HasPrefix(e.Direction, "outbound")
}

// RecordingReadyEvent reports that a call recording is available for download.
type RecordingReadyEvent struct {
	CallID       string `json:"callId"`
	RecordingURL string `json:"recordingUrl"`
	Duration     int    `json:"duration"`
}

// MessageEvent reports an inbound or delivered SMS.
type MessageEvent struct {
	MessageID string    `json:"messageId"`
	Direction string    `json:"direction"`
	From      string    `json:"from"`
	To        string    `json:"to"`
	Body      string    `json:"body"`
	Timestamp time.Time `json:"timestamp"`
}
