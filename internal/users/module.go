// Package users provides user management. Sign-in and session handling live
// outside this service; only account CRUD is exposed here.
package users

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the users module implementing http.Module.
type Module struct {
	handler *Handler
	repo    *Repository
}

// NewModule creates and initializes the users module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator, log *logger.Logger) *Module {
	repo := NewRepository(pool)
	svc := NewService(repo, log)

	return &Module{
		handler: NewHandler(svc, val),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "users"
}

// Repository exposes the users repository for cross-module adapters.
func (m *Module) Repository() *Repository {
	return m.repo
}

// RegisterRoutes mounts user routes. Mutations require the admin role.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/users")
	admin := httpkit.RequireRole("admin")

	group.POST("", admin, m.handler.HandleCreate)
	group.GET("", m.handler.HandleList)
	group.GET("/:userId", m.handler.HandleGet)
	group.PATCH("/:userId", admin, m.handler.HandleUpdate)
	group.PUT("/:userId/password", admin, m.handler.HandleChangePassword)
	group.DELETE("/:userId", admin, m.handler.HandleDelete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
