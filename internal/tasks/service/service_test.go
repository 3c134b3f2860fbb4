package service

import (
	"context"
	"testing"
	"time"

	"crm_backend/internal/scheduler"
	"crm_backend/internal/tasks/repository"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

type fakeReminderScheduler struct {
	scheduled []scheduledReminder
}

type scheduledReminder struct {
	payload scheduler.TaskReminderPayload
	runAt   time.Time
}

func (f *fakeReminderScheduler) ScheduleTaskReminder(_ context.Context, payload scheduler.TaskReminderPayload, runAt time.Time) error {
	f.scheduled = append(f.scheduled, scheduledReminder{payload: payload, runAt: runAt})
	return nil
}

func TestScheduleReminder_RunsLeadBeforeDue(t *testing.T) {
	reminders := &fakeReminderScheduler{}
	svc := New(nil, reminders, 15*time.Minute, logger.New("development"))

	dueAt := time.Now().Add(2 * time.Hour).UTC()
	task := newOpenTask(dueAt)
	svc.scheduleReminder(context.Background(), task)

	if len(reminders.scheduled) != 1 {
		t.Fatalf("expected one scheduled reminder, got %d", len(reminders.scheduled))
	}

	got := reminders.scheduled[0]
	wantRunAt := dueAt.Add(-15 * time.Minute)
	if !got.runAt.Equal(wantRunAt) {
		t.Fatalf("expected reminder at %v, got %v", wantRunAt, got.runAt)
	}
	if got.payload.TaskID != task.ID.String() {
		t.Fatalf("payload task id mismatch: %s != %s", got.payload.TaskID, task.ID)
	}
	if got.payload.DueAt != dueAt.Format(time.RFC3339) {
		t.Fatalf("payload due date mismatch: %s", got.payload.DueAt)
	}
}

func TestScheduleReminder_SkipsTasksWithoutDueDate(t *testing.T) {
	reminders := &fakeReminderScheduler{}
	svc := New(nil, reminders, 15*time.Minute, logger.New("development"))

	task := newOpenTask(time.Time{})
	task.DueAt = nil
	svc.scheduleReminder(context.Background(), task)

	if len(reminders.scheduled) != 0 {
		t.Fatalf("tasks without a due date must not schedule reminders")
	}
}

func TestScheduleReminder_NilSchedulerIsNoop(t *testing.T) {
	svc := New(nil, nil, 15*time.Minute, logger.New("development"))

	task := newOpenTask(time.Now().Add(time.Hour))
	// Must not panic.
	svc.scheduleReminder(context.Background(), task)
}

func newOpenTask(dueAt time.Time) *repository.Task {
	task := &repository.Task{
		ID:     uuid.New(),
		UserID: uuid.New(),
		Title:  "Follow up",
		Status: repository.StatusOpen,
	}
	if !dueAt.IsZero() {
		task.DueAt = &dueAt
	}
	return task
}
