package goals

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
	MetricCalls = "calls"
	MetricDeals = "deals"

	PeriodWeekly  = "weekly"
	PeriodMonthly = "monthly"
)

// Goal is a recurring activity target for a user, e.g. 50 calls per week.
type Goal struct {
	ID        uuid.UUID `db:"id"`
	UserID    uuid.UUID `db:"user_id"`
	Name      string    `db:"name"`
	Metric    string    `db:"metric"`
	Target    int       `db:"target"`
	Period    string    `db:"period"`
	CreatedAt time.Time `db:"created_at"`
	UpdatedAt time.Time `db:"updated_at"`
}

type Repository struct {
	pool *pgxpool.Pool
}

func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectGoalQuery = `
	SELECT id, user_id, name, metric, target, period, created_at, updated_at
	FROM goals`

func (r *Repository) Create(ctx context.Context, goal *Goal) error {
	query := `
		INSERT INTO goals (id, user_id, name, metric, target, period)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at, updated_at`

	err := r.pool.QueryRow(ctx, query,
		goal.ID, goal.UserID, goal.Name, goal.Metric, goal.Target, goal.Period,
	).Scan(&goal.CreatedAt, &goal.UpdatedAt)
	if err != nil {
		return fmt.Errorf("failed to create goal: %w", err)
	}
	return nil
}

func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Goal, error) {
	var goal Goal
	err := r.scan(r.pool.QueryRow(ctx, selectGoalQuery+` WHERE id = $1`, id), &goal)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound("goal not found")
		}
		return nil, fmt.Errorf("failed to get goal: %w", err)
	}
	return &goal, nil
}

func (r *Repository) ListByUser(ctx context.Context, userID uuid.UUID) ([]Goal, error) {
	rows, err := r.pool.Query(ctx, selectGoalQuery+` WHERE user_id = $1 ORDER BY created_at ASC`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to list goals: %w", err)
	}
	defer rows.Close()

	goals := make([]Goal, 0)
	for rows.Next() {
		var goal Goal
		if err := r.scan(rows, &goal); err != nil {
			return nil, fmt.Errorf("failed to scan goal: %w", err)
		}
		goals = append(goals, goal)
	}
	return goals, rows.Err()
}

func (r *Repository) Update(ctx context.Context, goal *Goal) error {
	query := `
		UPDATE goals
		SET name = $1, metric = $2, target = $3, period = $4, updated_at = now()
		WHERE id = $5
		RETURNING updated_at`

	err := r.pool.QueryRow(ctx, query,
		goal.Name, goal.Metric, goal.Target, goal.Period, goal.ID,
	).Scan(&goal.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperr.NotFound("goal not found")
		}
		return fmt.Errorf("failed to update goal: %w", err)
	}
	return nil
}

func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM goals WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete goal: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound("goal not found")
	}
	return nil
}

func (r *Repository) scan(row pgx.Row, goal *Goal) error {
	return row.Scan(
		&goal.ID, &goal.UserID, &goal.Name, &goal.Metric,
		&goal.Target, &goal.Period, &goal.CreatedAt, &goal.UpdatedAt,
	)
}
