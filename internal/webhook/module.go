// Package webhook provides the telephony webhook ingress bounded context.
// This file defines the module that encapsulates setup and route registration.
package webhook

import (
	apphttp "crm_backend/internal/http"
	"crm_backend/platform/config"
	"crm_backend/platform/logger"
)

// Module is the webhook bounded context module implementing http.Module.
type Module struct {
	handler *Handler
	cfg     config.TelephonyConfig
	log     *logger.Logger
}

// NewModule creates and initializes the webhook module with all its dependencies.
func NewModule(calls Reconciler, cfg config.TelephonyConfig, log *logger.Logger) *Module {
	service := NewService(calls, log)

	return &Module{
		handler: NewHandler(service),
		cfg:     cfg,
		log:     log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "webhook"
}

// RegisterRoutes mounts webhook routes on the provided router context.
// The endpoint is public (signature auth, no JWT); the provider cannot log in.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.V1.Group("/webhook")
	group.Use(SignatureMiddleware(m.cfg.GetTelephonyWebhookSecret(), m.log))
	group.POST("/telephony", m.handler.HandleTelephonyEvent)
}

// Compile-time check that Module implements http.Module
var _ apphttp.Module = (*Module)(nil)
