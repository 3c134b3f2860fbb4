// Package handler exposes the calls module over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"crm_backend/internal/calls/service"
	"crm_backend/internal/calls/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errInvalidRequest = "invalid request body"
	errValidation     = "validation error"
	errInvalidCallID  = "invalid call ID"
)

// Handler handles call HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a new calls handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// HandleClickToCall dispatches an outbound call to a contact.
// POST /api/v1/calls/click-to-call
func (h *Handler) HandleClickToCall(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.ClickToCallRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.Dispatch(c.Request.Context(), req.ContactID, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// HandleLogCall records a manually entered call.
// POST /api/v1/calls
func (h *Handler) HandleLogCall(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.LogCallRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.LogManualCall(c.Request.Context(), req, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, resp)
}

// HandleListCalls lists call history, optionally filtered by contact.
// GET /api/v1/calls?contactId=&limit=
func (h *Handler) HandleListCalls(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var contactID *uuid.UUID
	if raw := c.Query("contactId"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			httpkit.Error(c, http.StatusBadRequest, "invalid contact ID", nil)
			return
		}
		contactID = &parsed
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))

	resp, err := h.service.ListCalls(c.Request.Context(), contactID, identity.UserID(), limit)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// HandleGetCall returns a single call record.
// GET /api/v1/calls/:callId
func (h *Handler) HandleGetCall(c *gin.Context) {
	callID, ok := h.parseCallID(c)
	if !ok {
		return
	}

	resp, err := h.service.GetCall(c.Request.Context(), callID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// HandleUpdateCall applies user edits to an existing call.
// PATCH /api/v1/calls/:callId
func (h *Handler) HandleUpdateCall(c *gin.Context) {
	callID, ok := h.parseCallID(c)
	if !ok {
		return
	}

	var req transport.UpdateCallRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.UpdateCall(c.Request.Context(), callID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

func (h *Handler) parseCallID(c *gin.Context) (uuid.UUID, bool) {
	callID, err := uuid.Parse(c.Param("callId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidCallID, nil)
		return uuid.Nil, false
	}
	return callID, true
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidRequest, err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, errValidation, err.Error())
		return false
	}
	return true
}
