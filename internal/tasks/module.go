// Package tasks provides follow-up task management with due-date reminders.
package tasks

import (
	"time"

	apphttp "crm_backend/internal/http"
	"crm_backend/internal/scheduler"
	"crm_backend/internal/tasks/handler"
	"crm_backend/internal/tasks/repository"
	"crm_backend/internal/tasks/service"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the tasks bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
}

// NewModule creates and initializes the tasks module. reminders may be nil
// when no scheduler backend is configured.
func NewModule(pool *pgxpool.Pool, reminders scheduler.ReminderScheduler, reminderLead time.Duration, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, reminders, reminderLead, log)

	return &Module{handler: handler.New(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "tasks"
}

// RegisterRoutes mounts task routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/tasks")
	group.POST("", m.handler.HandleCreate)
	group.GET("", m.handler.HandleList)
	group.GET("/:taskId", m.handler.HandleGet)
	group.PATCH("/:taskId", m.handler.HandleUpdate)
	group.POST("/:taskId/complete", m.handler.HandleComplete)
	group.DELETE("/:taskId", m.handler.HandleDelete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
