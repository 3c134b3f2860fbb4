// Package handler exposes the tasks module over HTTP.
package handler

import (
	"net/http"

	"crm_backend/internal/tasks/service"
	"crm_backend/internal/tasks/transport"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *service.Service
	val     *validator.Validator
}

func New(svc *service.Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

// HandleCreate creates a task for the authenticated user.
// POST /api/v1/tasks
func (h *Handler) HandleCreate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req transport.CreateTaskRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	task, err := h.service.Create(c.Request.Context(), service.CreateTaskParams{
		UserID:      identity.UserID(),
		ContactID:   req.ContactID,
		Title:       req.Title,
		Description: req.Description,
		DueAt:       req.DueAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, transport.ToTaskResponse(task))
}

// HandleList lists the authenticated user's tasks.
// GET /api/v1/tasks?includeCompleted=true
func (h *Handler) HandleList(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	includeCompleted := c.Query("includeCompleted") == "true"
	tasks, err := h.service.List(c.Request.Context(), identity.UserID(), includeCompleted)
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]transport.TaskResponse, 0, len(tasks))
	for i := range tasks {
		out = append(out, transport.ToTaskResponse(&tasks[i]))
	}
	httpkit.OK(c, out)
}

// HandleGet returns a single task.
// GET /api/v1/tasks/:taskId
func (h *Handler) HandleGet(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, ok := h.parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.service.Get(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTaskResponse(task))
}

// HandleUpdate partially updates a task.
// PATCH /api/v1/tasks/:taskId
func (h *Handler) HandleUpdate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, ok := h.parseTaskID(c)
	if !ok {
		return
	}

	var req transport.UpdateTaskRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	task, err := h.service.Update(c.Request.Context(), id, identity.UserID(), service.UpdateTaskParams{
		Title:       req.Title,
		Description: req.Description,
		ContactID:   req.ContactID,
		DueAt:       req.DueAt,
		ClearDueAt:  req.ClearDueAt,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTaskResponse(task))
}

// HandleComplete marks a task completed. Safe to repeat.
// POST /api/v1/tasks/:taskId/complete
func (h *Handler) HandleComplete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, ok := h.parseTaskID(c)
	if !ok {
		return
	}

	task, err := h.service.Complete(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, transport.ToTaskResponse(task))
}

// HandleDelete removes a task.
// DELETE /api/v1/tasks/:taskId
func (h *Handler) HandleDelete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, ok := h.parseTaskID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, identity.UserID()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) parseTaskID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("taskId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid task ID", nil)
		return uuid.Nil, false
	}
	return id, true
}

func (h *Handler) bindAndValidate(c *gin.Context, req interface{}) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid request body", err.Error())
		return false
	}
	if err := h.val.Struct(req); err != nil {
		httpkit.Error(c, http.StatusBadRequest, "validation error", err.Error())
		return false
	}
	return true
}
