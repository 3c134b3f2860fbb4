// Package contacts provides the contact management bounded context.
package contacts

import (
	"crm_backend/internal/contacts/handler"
	"crm_backend/internal/contacts/repository"
	"crm_backend/internal/contacts/service"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the contacts bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	repo    *repository.Repository
}

// NewModule creates and initializes the contacts module.
func NewModule(pool *pgxpool.Pool, val *validator.Validator) *Module {
	repo := repository.New(pool)
	svc := service.New(repo)

	return &Module{
		handler: handler.New(svc, val),
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "contacts"
}

// Repository exposes the contacts repository for cross-module adapters.
func (m *Module) Repository() *repository.Repository {
	return m.repo
}

// RegisterRoutes mounts contact routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/contacts")
	group.POST("", m.handler.HandleCreate)
	group.GET("", m.handler.HandleList)
	group.GET("/:contactId", m.handler.HandleGet)
	group.PATCH("/:contactId", m.handler.HandleUpdate)
	group.DELETE("/:contactId", m.handler.HandleDelete)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
