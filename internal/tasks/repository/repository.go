// Package repository persists tasks.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	StatusOpen      = "open"
	StatusCompleted = "completed"
)

// Task is a follow-up item owned by a user, optionally linked to a contact.
type Task struct {
	ID          uuid.UUID  `db:"id"`
	UserID      uuid.UUID  `db:"user_id"`
	ContactID   *uuid.UUID `db:"contact_id"`
	Title       string     `db:"title"`
	Description string     `db:"description"`
	Status      string     `db:"status"`
	DueAt       *time.Time `db:"due_at"`
	CompletedAt *time.Time `db:"completed_at"`
	CreatedAt   time.Time  `db:"created_at"`
	UpdatedAt   time.Time  `db:"updated_at"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectTaskQuery = `
	SELECT id, user_id, contact_id, title, description, status, due_at,
	       completed_at, created_at, updated_at
	FROM tasks`

func (r *Repository) Create(ctx context.Context, task *Task) error {
	query := `
		INSERT INTO tasks (id, user_id, contact_id, title, description, status, due_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		task.ID, task.UserID, task.ContactID, task.Title,
		task.Description, task.Status, task.DueAt,
	).Scan(&task.CreatedAt, &task.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create task: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Task, error) {
	var task Task
	err := r.scan(r.pool.QueryRow(ctx, selectTaskQuery+` WHERE id = $1`, id), &task)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("task not found")
		}
		return nil, fmt.Errorf("failed to get task: %w", err)
	}
	return &task, nil
}

// ListByUser returns a user's tasks, open ones first, then by due date.
func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID, includeCompleted bool) ([]Task, error) {
	query := selectTaskQuery + ` WHERE user_id = $1`
	if !includeCompleted {
		query += ` AND status = 'open'`
	}
	query += ` ORDER BY status ASC, due_at ASC NULLS LAST, created_at DESC`

	rows, err := r.pool.Query(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tasks: %w", err)
	}
	defer rows.Close()

	tasks := make([]Task, 0)
	for rows.Next() {
		var task Task
		if err := r.scan(rows, &task); err != nil {
			return nil, fmt.Errorf("failed to scan task: %w", err)
		}
		tasks = append(tasks, task)
	}
	return tasks, rows.Err()
}

func (r *Repository) Update(ctx context.Context, task *Task) error {
	query := `
		UPDATE tasks
		SET title = $1, description = $2, contact_id = $3, due_at = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		task.Title, task.Description, task.ContactID, task.DueAt, task.ID,
	).Scan(&task.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("task not found")
		}
		return fmt.Errorf("failed to update task: %w", err)
	}
	return nil
}

// Complete marks the task completed. Completing an already completed task is
// a no-op, not an error.
func (r *Repository) Complete(ctx context.Context, id uuid.UUID, completedAt time.Time) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE tasks
		SET status = $1, completed_at = $2, updated_at = now()
		WHERE id = $3 AND status <> $1`,
		StatusCompleted, completedAt, id)
	if err != nil {
		return fmt.Errorf("failed to complete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		// Either already completed or missing. Distinguish for the caller.
		if _, err := r.GetByID(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM tasks WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete task: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("task not found")
	}
	return nil
}

func (r *Repository) scan(row pgx.Row, task *Task) error {
	return row.Scan(
		&task.ID, &task.UserID, &task.ContactID, &task.Title, &task.Description,
		&task.Status, &task.DueAt, &task.CompletedAt, &task.CreatedAt, &task.UpdatedAt,
	)
}
