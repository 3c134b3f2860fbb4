// Package goals tracks recurring activity targets and their progress,
// computed from the call log.
package goals

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the goals module implementing http.Module.
type Module struct {
	handler *Handler
}

// NewModule creates and initializes the goals module. counter is implemented
// by the calls module.
func NewModule(pool *pgxpool.Pool, counter ActivityCounter, val *validator.Validator) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, counter)

	return &Module{handler: NewHandler(svc, val)}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "goals"
}

// RegisterRoutes mounts goal routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/goals")
	group.POST("", m.handler.HandleCreate)
	group.GET("", m.handler.HandleList)
	group.GET("/:goalId", m.handler.HandleGet)
	group.GET("/:goalId/progress", m.handler.HandleProgress)
	group.PATCH("/:goalId", m.handler.HandleUpdate)
	group.DELETE("/:goalId", m.handler.HandleDelete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
