package scheduler

import (
	"context"
	"fmt"
	"time"

	"crm_backend/internal/events"
	tasksrepo "crm_backend/internal/tasks/repository"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"

	"github.com/google/uuid"
	"github.com/hibiken/asynq"
	"github.com/jackc/pgx/v5/pgxpool"
)

type Worker struct {
	server *asynq.Server
	mux    *asynq.ServeMux
	repo   *tasksrepo.Repository
	bus    events.Bus
	log    *logger.Logger
}

func NewWorker(cfg config.SchedulerConfig, pool *pgxpool.Pool, bus events.Bus, log *logger.Logger) (*Worker, error) {
	redisURL := cfg.GetRedisURL()
	if redisURL == "" {
		return nil, fmt.Errorf("redis url not configured")
	}

	opt, err := redisClientOpt(redisURL, cfg.GetRedisTLSInsecure())
	if err != nil {
		return nil, err
	}

	queue := cfg.GetAsynqQueueName()
	if queue == "" {
		queue = "default"
	}

	concurrency := cfg.GetAsynqConcurrency()
	if concurrency < 1 {
		concurrency = 10
	}

	server := asynq.NewServer(opt, asynq.Config{
		Concurrency: concurrency,
		Queues: map[string]int{
			queue: 1,
		},
	})

	mux := asynq.NewServeMux()
	w := &Worker{
		server: server,
		mux:    mux,
		repo:   tasksrepo.New(pool),
		bus:    bus,
		log:    log,
	}

	mux.HandleFunc(TaskReminderDue, w.handleTaskReminder)

	return w, nil
}

func (w *Worker) Run(ctx context.Context) {
	if w == nil || w.server == nil {
		return
	}

	go func() {
		<-ctx.Done()
		w.server.Shutdown()
	}()

	if err := w.server.Run(w.mux); err != nil {
		w.log.Error("scheduler worker stopped", "error", err)
	}
}

func (w *Worker) handleTaskReminder(ctx context.Context, task *asynq.Task) error {
	payload, err := ParseTaskReminderPayload(task)
	if err != nil {
		return err
	}

	taskID, err := uuid.Parse(payload.TaskID)
	if err != nil {
		return err
	}

	record, err := w.repo.GetByID(ctx, taskID)
	if err != nil {
		return err
	}

	// Completed or rescheduled tasks do not get a stale reminder.
	if record.Status != tasksrepo.StatusOpen || record.DueAt == nil {
		return nil
	}
	if payload.DueAt != "" {
		scheduledFor, parseErr := time.Parse(time.RFC3339, payload.DueAt)
		if parseErr == nil && !scheduledFor.Equal(*record.DueAt) {
			return nil
		}
	}

	if w.bus == nil {
		return nil
	}

	w.bus.Publish(ctx, events.TaskDue{
		BaseEvent: events.NewBaseEvent(),
		TaskID:    record.ID,
		UserID:    record.UserID,
		Title:     record.Title,
		DueAt:     *record.DueAt,
	})

	return nil
}
