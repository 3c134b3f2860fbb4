package goals

import (
	"net/http"
	"time"

	"crm_backend/platform/httpkit"
	"crm_backend/platform/validator"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type Handler struct {
	service *Service
	val     *validator.Validator
}

func NewHandler(svc *Service, val *validator.Validator) *Handler {
	return &Handler{service: svc, val: val}
}

type CreateGoalRequest struct {
	Name   string `json:"name" validate:"required,max=200"`
	Metric string `json:"metric" validate:"required,oneof=calls deals"`
	Target int    `json:"target" validate:"required,gt=0"`
	Period string `json:"period" validate:"required,oneof=weekly monthly"`
}

type UpdateGoalRequest struct {
	Name   *string `json:"name" validate:"omitempty,max=200"`
	Metric *string `json:"metric" validate:"omitempty,oneof=calls deals"`
	Target *int    `json:"target" validate:"omitempty,gt=0"`
	Period *string `json:"period" validate:"omitempty,oneof=weekly monthly"`
}

type GoalResponse struct {
	ID        uuid.UUID `json:"id"`
	UserID    uuid.UUID `json:"userId"`
	Name      string    `json:"name"`
	Metric    string    `json:"metric"`
	Target    int       `json:"target"`
	Period    string    `json:"period"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

type ProgressResponse struct {
	Goal        GoalResponse `json:"goal"`
	Current     int          `json:"current"`
	Target      int          `json:"target"`
	PeriodStart time.Time    `json:"periodStart"`
}

func toGoalResponse(g *Goal) GoalResponse {
	return GoalResponse{
		ID:        g.ID,
		UserID:    g.UserID,
		Name:      g.Name,
		Metric:    g.Metric,
		Target:    g.Target,
		Period:    g.Period,
		CreatedAt: g.CreatedAt,
		UpdatedAt: g.UpdatedAt,
	}
}

// HandleCreate creates a goal for the authenticated user.
// POST /api/v1/goals
func (h *Handler) HandleCreate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	var req CreateGoalRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	goal, err := h.service.Create(c.Request.Context(), CreateGoalParams{
		UserID: identity.UserID(),
		Name:   req.Name,
		Metric: req.Metric,
		Target: req.Target,
		Period: req.Period,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toGoalResponse(goal))
}

// HandleList lists the authenticated user's goals.
// GET /api/v1/goals
func (h *Handler) HandleList(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	goals, err := h.service.List(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]GoalResponse, 0, len(goals))
	for i := range goals {
		out = append(out, toGoalResponse(&goals[i]))
	}
	httpkit.OK(c, out)
}

// HandleGet returns a single goal.
// GET /api/v1/goals/:goalId
func (h *Handler) HandleGet(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, ok := h.parseGoalID(c)
	if !ok {
		return
	}

	goal, err := h.service.Get(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toGoalResponse(goal))
}

// HandleProgress returns a goal with the activity counted this period.
// GET /api/v1/goals/:goalId/progress
func (h *Handler) HandleProgress(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, ok := h.parseGoalID(c)
	if !ok {
		return
	}

	progress, err := h.service.GetProgress(c.Request.Context(), id, identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, ProgressResponse{
		Goal:        toGoalResponse(progress.Goal),
		Current:     progress.Current,
		Target:      progress.Goal.Target,
		PeriodStart: progress.PeriodStart,
	})
}

// HandleUpdate partially updates a goal.
// PATCH /api/v1/goals/:goalId
func (h *Handler) HandleUpdate(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, ok := h.parseGoalID(c)
	if !ok {
		return
	}

	var req UpdateGoalRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	goal, err := h.service.Update(c.Request.Context(), id, identity.UserID(), UpdateGoalParams{
		Name:   req.Name,
		Metric: req.Metric,
		Target: req.Target,
		Period: req.Period,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toGoalResponse(goal))
}

// HandleDelete removes a goal.
// DELETE /api/v1/goals/:goalId
func (h *Handler) HandleDelete(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, ok := h.parseGoalID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id, identity.UserID()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) parseGoalID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("goalId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid goal ID", nil)
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
