// Package transport defines the HTTP request/response DTOs for the calls module.
package transport

import (
	"time"

	"crm_backend/internal/calls/repository"

	"github.com/google/uuid"
)

// ClickToCallRequest starts an outbound call to a contact.
type ClickToCallRequest struct {
	ContactID uuid.UUID `json:"contactId" validate:"required"`
}

// ClickToCallResponse is returned after a successful dispatch.
type ClickToCallResponse struct {
	Success       bool      `json:"success"`
	URL           string    `json:"url"`
	PendingCallID uuid.UUID `json:"pendingCallId"`
}

// LogCallRequest records a manually entered call.
type LogCallRequest struct {
	ContactID       uuid.UUID `json:"contactId" validate:"required"`
	Date            time.Time `json:"date" validate:"required"`
	DurationMinutes int       `json:"durationMinutes" validate:"min=0"`
	Notes           string    `json:"notes" validate:"max=5000"`
	Outcome         string    `json:"outcome" validate:"required,max=100"`
	Deal            bool      `json:"deal"`
}

// UpdateCallRequest applies partial edits to an existing call.
type UpdateCallRequest struct {
	Notes           *string `json:"notes" validate:"omitempty,max=5000"`
	Outcome         *string `json:"outcome" validate:"omitempty,max=100"`
	Deal            *bool   `json:"deal"`
	DurationMinutes *int    `json:"durationMinutes" validate:"omitempty,min=0"`
}

// CallResponse is the API representation of a call record.
type CallResponse struct {
	ID              uuid.UUID `json:"id"`
	ContactID       uuid.UUID `json:"contactId"`
	UserID          uuid.UUID `json:"userId"`
	Date            time.Time `json:"date"`
	DurationMinutes int       `json:"durationMinutes"`
	Notes           string    `json:"notes"`
	Outcome         string    `json:"outcome"`
	Deal            bool      `json:"deal"`
	ProviderCallID  *string   `json:"providerCallId,omitempty"`
	RecordingURL    *string   `json:"recordingUrl,omitempty"`
	CreatedAt       time.Time `json:"createdAt"`
}

// ToCallResponse maps a repository call to its API shape.
func ToCallResponse(call *repository.Call) CallResponse {
	return CallResponse{
		ID:              call.ID,
		ContactID:       call.ContactID,
		UserID:          call.UserID,
		Date:            call.Date,
		DurationMinutes: call.DurationMinutes,
		Notes:           call.Notes,
		Outcome:         call.Outcome,
		Deal:            call.Deal,
		ProviderCallID:  call.ProviderCallID,
		RecordingURL:    call.RecordingURL,
		CreatedAt:       call.CreatedAt,
	}
}
