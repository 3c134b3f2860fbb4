package goals

import (
	"context"
	"time"

	"crm_backend/platform/apperr"

	"github.com/google/uuid"
)

// ActivityCounter reports how many calls (or closed deals) a user logged
// since a point in time. Implemented by the calls module.
type ActivityCounter interface {
	CountCallsSince(ctx context.Context, userID uuid.UUID, since time.Time, dealsOnly bool) (int, error)
}

type Service struct {
	repo    *Repository
	counter ActivityCounter
}

func NewService(repo *Repository, counter ActivityCounter) *Service {
	return &Service{repo: repo, counter: counter}
}

type CreateGoalParams struct {
	UserID uuid.UUID
	Name   string
	Metric string
	Target int
	Period string
}

func (s *Service) Create(ctx context.Context, params CreateGoalParams) (*Goal, error) {
	goal := &Goal{
		ID:     uuid.New(),
		UserID: params.UserID,
		Name:   params.Name,
		Metric: params.Metric,
		Target: params.Target,
		Period: params.Period,
	}
	if err := s.repo.Create(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *Service) Get(ctx context.Context, id, userID uuid.UUID) (*Goal, error) {
	goal, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if goal.UserID != userID {
		return nil, apperr.NotFound("goal not found")
	}
	return goal, nil
}

func (s *Service) List(ctx context.Context, userID uuid.UUID) ([]Goal, error) {
	return s.repo.ListByUser(ctx, userID)
}

type UpdateGoalParams struct {
	Name   *string
	Metric *string
	Target *int
	Period *string
}

func (s *Service) Update(ctx context.Context, id, userID uuid.UUID, params UpdateGoalParams) (*Goal, error) {
	goal, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	if params.Name != nil {
		goal.Name = *params.Name
	}
	if params.Metric != nil {
		goal.Metric = *params.Metric
	}
	if params.Target != nil {
		goal.Target = *params.Target
	}
	if params.Period != nil {
		goal.Period = *params.Period
	}

	if err := s.repo.Update(ctx, goal); err != nil {
		return nil, err
	}
	return goal, nil
}

func (s *Service) Delete(ctx context.Context, id, userID uuid.UUID) error {
	goal, err := s.Get(ctx, id, userID)
	if err != nil {
		return err
	}
	return s.repo.Delete(ctx, goal.ID)
}

// Progress is a goal plus the activity counted in its current period.
type Progress struct {
	Goal        *Goal
	Current     int
	PeriodStart time.Time
}

// GetProgress counts the owner's activity from the start of the goal's
// current period (ISO week for weekly goals, calendar month for monthly).
func (s *Service) GetProgress(ctx context.Context, id, userID uuid.UUID) (*Progress, error) {
	goal, err := s.Get(ctx, id, userID)
	if err != nil {
		return nil, err
	}

	start := periodStart(goal.Period, time.Now().UTC())
	dealsOnly := goal.Metric == MetricDeals

	count, err := s.counter.CountCallsSince(ctx, goal.UserID, start, dealsOnly)
	if err != nil {
		return nil, err
	}

	return &Progress{Goal: goal, Current: count, PeriodStart: start}, nil
}

// periodStart returns midnight UTC of the period's first day. Weeks start on
// Monday.
func periodStart(period string, now time.Time) time.Time {
	switch period {
	case PeriodMonthly:
		return time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	default:
		weekday := int(now.Weekday())
		if weekday == 0 {
			weekday = 7
		}
		day := now.AddDate(0, 0, -(weekday - 1))
		return time.Date(day.Year(), day.Month(), day.Day(), 0, 0, 0, 0, time.UTC)
	}
}
