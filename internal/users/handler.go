package users

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

type CreateUserRequest struct {
	Email     string `json:"email" validate:"required,email"`
	FirstName string `json:"firstName" validate:"required,max=100"`
	LastName  string `json:"lastName" validate:"required,max=100"`
	Role      string `json:"role" validate:"omitempty,oneof=admin agent"`
	Password  string `json:"password" validate:"required,min=8,max=72"`
}

type UpdateUserRequest struct {
	Email     *string `json:"email" validate:"omitempty,email"`
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Role      *string `json:"role" validate:"omitempty,oneof=admin agent"`
}

type ChangePasswordRequest struct {
	Password string `json:"password" validate:"required,min=8,max=72"`
}

// UserResponse never carries the password hash.
type UserResponse struct {
	ID        uuid.UUID `json:"id"`
	Email     string    `json:"email"`
	FirstName string    `json:"firstName"`
	LastName  string    `json:"lastName"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

func toUserResponse(u *User) UserResponse {
	return UserResponse{
		ID:        u.ID,
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
		UpdatedAt: u.UpdatedAt,
	}
}

// HandleCreate creates a user.
// POST /api/v1/users
func (h *Handler) HandleCreate(c *gin.Context) {
	var req CreateUserRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	user, err := h.service.Create(c.Request.Context(), CreateUserParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
		Password:  req.Password,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.Created(c, toUserResponse(user))
}

// HandleList lists all users.
// GET /api/v1/users
func (h *Handler) HandleList(c *gin.Context) {
	users, err := h.service.List(c.Request.Context())
	if httpkit.HandleError(c, err) {
		return
	}

	out := make([]UserResponse, 0, len(users))
	for i := range users {
		out = append(out, toUserResponse(&users[i]))
	}
	httpkit.OK(c, out)
}

// HandleGet returns a single user.
// GET /api/v1/users/:userId
func (h *Handler) HandleGet(c *gin.Context) {
	id, ok := h.parseUserID(c)
	if !ok {
		return
	}

	user, err := h.service.Get(c.Request.Context(), id)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toUserResponse(user))
}

// HandleUpdate partially updates a user.
// PATCH /api/v1/users/:userId
func (h *Handler) HandleUpdate(c *gin.Context) {
	id, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req UpdateUserRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	user, err := h.service.Update(c.Request.Context(), id, UpdateUserParams{
		Email:     req.Email,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Role:      req.Role,
	})
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, toUserResponse(user))
}

// HandleChangePassword replaces a user's password.
// PUT /api/v1/users/:userId/password
func (h *Handler) HandleChangePassword(c *gin.Context) {
	id, ok := h.parseUserID(c)
	if !ok {
		return
	}

	var req ChangePasswordRequest
	if !h.bindAndValidate(c, &req) {
		return
	}

	if err := h.service.ChangePassword(c.Request.Context(), id, req.Password); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

// HandleDelete removes a user.
// DELETE /api/v1/users/:userId
func (h *Handler) HandleDelete(c *gin.Context) {
	id, ok := h.parseUserID(c)
	if !ok {
		return
	}

	if err := h.service.Delete(c.Request.Context(), id); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) parseUserID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("userId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid user ID", nil)
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
