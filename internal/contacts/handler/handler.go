// Package handler exposes the contacts module over HTTP.
package handler

import (
	"net/http"
	"strconv"

	"crm_backend/internal/contacts/service"
	"crm_backend/internal/contacts/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

const (
	errInvalidRequest   = "invalid request body"
	errValidation       = "validation error"
	errInvalidContactID = "invalid contact ID"
)

// Handler handles contact HTTP requests.
type Handler struct {
	service *service.Service
	val     *validator.Validator
}

// New creates a new contacts handler.
func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// HandleCreate creates a contact.
// POST /api/v1/contacts
func (h *Handler) HandleCreate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateContactRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.Create(c.Request.Context(), req, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.Created(c, resp)
}

// HandleGet returns one contact.
// GET /api/v1/contacts/:contactId
func (h *Handler) HandleGet(c *gin.Context) {
	contactID, ok := h.parseContactID(c)
	if !ok {
		return
	}

	resp, err := h.service.Get(c.Request.Context(), contactID)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// HandleList lists the user's contacts.
// GET /api/v1/contacts?limit=&offset=
func (h *Handler) HandleList(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "50"))
	offset, _ := strconv.Atoi(c.DefaultQuery("offset", "0"))

	resp, err := h.service.List(c.Request.Context(), identity.UserID(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// HandleUpdate applies partial edits to a contact.
// PATCH /api/v1/contacts/:contactId
func (h *Handler) HandleUpdate(c *gin.Context) {
	contactID, ok := h.parseContactID(c)
	if !ok {
		return
	}

	var req transport.UpdateContactRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	resp, err := h.service.Update(c.Request.Context(), contactID, req)
	if httpkit.HandleError(c, err) {
		return
	}

	httpkit.OK(c, resp)
}

// HandleDelete removes a contact.
// DELETE /api/v1/contacts/:contactId
func (h *Handler) HandleDelete(c *gin.Context) {
	contactID, ok := h.parseContactID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), contactID); httpkit.HandleError(c, err) {
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *Handler) parseContactID(c *gin.Context) (uuid.UUID, bool) {
	contactID, err := uuid.Parse(c.Param("contactId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, errInvalidContactID, nil)
		return uuid.Nil, false
	}
	return contactID, true
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
