// Package calls provides the call dispatch and reconciliation bounded context.
// This file defines the module that encapsulates setup and route registration.
package calls

import (
	"crm_backend/internal/calls/handler"
	"crm_backend/internal/calls/repository"
	"crm_backend/internal/calls/service"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/logger"
	"crm_backend/platform/validator"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Module is the calls bounded context module implementing http.Module.
type Module struct {
	handler *handler.Handler
	service *service.Service
	repo    *repository.Repository
}

// NewModule creates and initializes the calls module with all its dependencies.
func NewModule(pool *pgxpool.Pool, dialer service.Dialer, contacts service.ContactDirectory, bus events.Bus, val *validator.Validator, log *logger.Logger) *Module {
	repo := repository.New(pool)
	svc := service.New(repo, dialer, contacts, bus, log)

	return &Module{
		handler: handler.New(svc, val),
		service: svc,
		repo:    repo,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "calls"
}

// Service exposes the calls service for the webhook module and adapters.
func (m *Module) Service() *service.Service {
	return m.service
}

// SetRecordingArchiver wires the optional recording archive storage.
func (m *Module) SetRecordingArchiver(archiver service.RecordingArchiver) {
	m.service.SetRecordingArchiver(archiver)
}

// RegisterRoutes mounts call routes on the provided router context.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/calls")
	group.POST("/click-to-call", m.handler.HandleClickToCall)
	group.POST("", m.handler.HandleLogCall)
	group.GET("", m.handler.HandleListCalls)
	group.GET("/:callId", m.handler.HandleGetCall)
	group.PATCH("/:callId", m.handler.HandleUpdateCall)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
