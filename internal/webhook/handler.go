package webhook

import (
	"net/http"

	"crm_backend/internal/telephony"
	"crm_backend/platform/httpkit"

	"github.com/gin-gonic/gin"
)

// Handler handles inbound provider webhook deliveries.
type Handler struct {
	service *Service
}

// NewHandler creates a new webhook handler.
func NewHandler(service *Service) *Handler {
	return &Handler{service: service}
}

// HandleTelephonyEvent accepts one provider delivery.
// POST /api/v1/webhook/telephony
// Authenticated by SignatureMiddleware when a secret is configured.
//
// Contract with the provider: once the payload parses, the response is
// HTTP 200 with success=true even if internal processing failed.
func (h *Handler) HandleTelephonyEvent(c *gin.Context) {
	var env telephony.Envelope
	if err := c.ShouldBindJSON(&env); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid webhook payload", err.Error())
		return
	}
	if env.Type == "" {
		httpkit.Error(c, http.StatusBadRequest, "missing event type", nil)
		return
	}

	resp := h.service.Process(c.Request.Context(), env)
	c.JSON(http.StatusOK, resp)
}
