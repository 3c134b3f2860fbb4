// Package events defines the domain events exchanged between modules.
package events

import (
	"time"

	"github.com/google/uuid"
)

// Event name constants.
const (
	EventCallReconciled = "calls.reconciled"
	EventMessageLogged  = "calls.message_logged"
	EventTaskDue        = "tasks.due"
)

// CallReconciled is published after a completed-call webhook has been matched
// to its pending call and the durable Call record has been written.
type CallReconciled struct {
	BaseEvent
	CallID        uuid.UUID
	PendingCallID uuid.UUID
	ContactID     uuid.UUID
	UserID        uuid.UUID
	Outcome       string
	CallDate      time.Time
}

// EventName returns the event identifier.
func (e CallReconciled) EventName() string { return EventCallReconciled }

// MessageLogged is published when an inbound or delivered provider message
// has been captured as a communication-log entry.
type MessageLogged struct {
	BaseEvent
	CallID    uuid.UUID
	ContactID uuid.UUID
	Direction string
}

// EventName returns the event identifier.
func (e MessageLogged) EventName() string { return EventMessageLogged }

// TaskDue is published by the scheduler worker when a task reminder fires.
type TaskDue struct {
	BaseEvent
	TaskID uuid.UUID
	UserID uuid.UUID
	Title  string
	DueAt  time.Time
}

// EventName returns the event identifier.
func (e TaskDue) EventName() string { return EventTaskDue }
