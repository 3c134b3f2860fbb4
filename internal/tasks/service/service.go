// Package service implements task management and reminder scheduling.
package service

import (
	"context"
	"time"

	"crm_backend/internal/scheduler"
	"crm_backend/internal/tasks/repository"
	"crm_backend/platform/apperr"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
)

// Service manages tasks. The reminder scheduler is optional; without it tasks
// still work but no reminder fires.
type Service struct {
	repo      *repository.Repository
	reminders scheduler.ReminderScheduler
	lead      time.Duration
	log       *logger.Logger
}

func New(repo *repository.Repository, reminders scheduler.ReminderScheduler, reminderLead time.Duration, log *logger.Logger) *Service {
	if reminderLead <= 0 {
		reminderLead = 15 * time.Minute
	}
	return &Service{
		repo:      repo,
		reminders: reminders,
		lead:      reminderLead,
		log:       log,
	}
}

type CreateTaskParams struct {
	UserID      uuid.UUID
	ContactID   *uuid.UUID
	Title       string
	Description string
	DueAt       *time.Time
}

func (s *Service) Create(ctx context.Context, params CreateTaskParams) (*repository.Task, error) {
	task := &repository.Task{
		ID:          uuid.New(),
		UserID:      params.UserID,
		ContactID:   params.ContactID,
		Title:       params.Title,
		Description: params.Description,
		Status:      repository.StatusOpen,
		DueAt:       params.DueAt,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, err
	}

	s.scheduleReminder(ctx, task)
	return task, nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*repository.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if task.UserID != userID {
		return nil, apperr.NotFound("task not found")
	}
	return task, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID, includeCompleted bool) ([]repository.Task, error) {
	return s.repo.ListByUser(ctx, userID, includeCompleted)
}

type UpdateTaskParams struct {
	Title       *string
	Description *string
	ContactID   *uuid.UUID
	DueAt       *time.Time
	ClearDueAt  bool
}

func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, params UpdateTaskParams) (*repository.Task, error) {
	task, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if params.Title != nil {
		task.Title = *params.Title
	}
	if params.Description != nil {
		task.Description = *params.Description
	}
	if params.ContactID != nil {
		task.ContactID = params.ContactID
	}
	dueChanged := false
	if params.ClearDueAt {
		task.DueAt = nil
		dueChanged = true
	} else if params.DueAt != nil {
		task.DueAt = params.DueAt
		dueChanged = true
	}

	if err := s.repo.Update(ctx, task); err != nil {
		return nil, err
	}

	// The reminder worker checks the stored due date before firing, so stale
	// reminders for the old due date are dropped there.
	if dueChanged {
		s.scheduleReminder(ctx, task)
	}
	return task, nil
}

// Complete marks a task completed. Repeating the call is a no-op.
func (s *Service) Complete(ctx context.Context, id, userID uuid.UUID) (*repository.Task, error) {
	task, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if err := s.repo.Complete(ctx, task.ID, time.Now().UTC()); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, task.ID)
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	task, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, task.ID)
}

func (s *Service) scheduleReminder(ctx context.Context, task *repository.Task) {
	if s.reminders == nil || task.DueAt == nil {
		return
	}

	runAt := task.DueAt.Add(-s.lead)
	err := s.reminders.ScheduleTaskReminder(ctx, scheduler.TaskReminderPayload{
		TaskID: task.ID.String(),
		UserID: task.UserID.String(),
		Title:  task.Title,
		DueAt:  task.DueAt.UTC().Format(time.RFC3339),
	}, runAt)
	if err != nil {
		// Reminder loss is not fatal to the task itself.
		s.log.Warn("failed to schedule task reminder", "task_id", task.ID, "error", err)
	}
}
