// Package notification reacts to domain events with in-app notifications and
// email, and exposes the in-app inbox over HTTP.
package notification

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"crm_backend/internal/email"
	"crm_backend/internal/events"
	apphttp "crm_backend/internal/http"
	"crm_backend/internal/notification/inapp"
	"crm_backend/platform/httpkit"
	"crm_backend/platform/logger"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
)

// UserDirectory resolves a user's email address for reminder delivery.
type UserDirectory interface {
	GetUserEmail(ctx context.Context, userID uuid.UUID) (string, error)
}

// Module is the notification module. It implements both http.Module and
// events.Handler.
type Module struct {
	repo  *inapp.Repository
	mail  email.Sender
	users UserDirectory
	log   *logger.Logger
}

// NewModule creates the notification module. mail may be nil when SMTP is not
// configured; task reminders then stay in-app only.
func NewModule(pool *pgxpool.Pool, mail email.Sender, users UserDirectory, log *logger.Logger) *Module {
	return &Module{
		repo:  inapp.NewRepository(pool),
		mail:  mail,
		users: users,
		log:   log,
	}
}

// Name returns the module identifier.
func (m *Module) Name() string {
	return "notification"
}

// RegisterEventHandlers subscribes the module to the domain events it reacts to.
func (m *Module) RegisterEventHandlers(bus events.Bus) {
	bus.Subscribe(events.CallReconciled{}.EventName(), m)
	bus.Subscribe(events.TaskDue{}.EventName(), m)

	m.log.Info("notification module registered event handlers")
}

// Handle routes events to the appropriate handler method.
func (m *Module) Handle(ctx context.Context, event events.Event) error {
	switch e := event.(type) {
	case events.CallReconciled:
		return m.handleCallReconciled(ctx, e)
	case events.TaskDue:
		return m.handleTaskDue(ctx, e)
	default:
		return nil
	}
}

// handleCallReconciled creates the post-call popup notification for the user
// who dispatched the call.
func (m *Module) handleCallReconciled(ctx context.Context, e events.CallReconciled) error {
	resourceType := "call"
	_, err := m.repo.Create(ctx, inapp.CreateParams{
		UserID:       e.UserID,
		Title:        "Call completed",
		Content:      fmt.Sprintf("Outcome: %s. Log the result for this contact.", e.Outcome),
		ResourceID:   &e.CallID,
		ResourceType: &resourceType,
		Category:     "info",
	})
	if err != nil {
		m.log.Error("failed to create post-call notification", "call_id", e.CallID, "error", err)
		return err
	}
	return nil
}

// handleTaskDue notifies in-app and, when SMTP is configured, by email.
func (m *Module) handleTaskDue(ctx context.Context, e events.TaskDue) error {
	resourceType := "task"
	_, err := m.repo.Create(ctx, inapp.CreateParams{
		UserID:       e.UserID,
		Title:        "Task due soon",
		Content:      e.Title,
		ResourceID:   &e.TaskID,
		ResourceType: &resourceType,
		Category:     "warning",
	})
	if err != nil {
		m.log.Error("failed to create task reminder notification", "task_id", e.TaskID, "error", err)
		return err
	}

	if m.mail == nil || m.users == nil {
		return nil
	}

	toEmail, err := m.users.GetUserEmail(ctx, e.UserID)
	if err != nil {
		m.log.Warn("failed to resolve user email for task reminder", "user_id", e.UserID, "error", err)
		return nil
	}

	if err := m.mail.SendTaskReminderEmail(ctx, toEmail, e.Title, e.DueAt.Format(time.RFC1123)); err != nil {
		// Email failure must not fail the event; the in-app row is already there.
		m.log.Error("failed to send task reminder email", "task_id", e.TaskID, "error", err)
	}
	return nil
}

// RegisterRoutes mounts the in-app inbox endpoints.
func (m *Module) RegisterRoutes(ctx *apphttp.RouterContext) {
	group := ctx.Protected.Group("/notifications")
	group.GET("", m.handleList)
	group.GET("/unread-count", m.handleUnreadCount)
	group.POST("/:notificationId/read", m.handleMarkRead)
	group.POST("/read-all", m.handleMarkAllRead)
}

func (m *Module) handleList(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	limit := parseQueryInt(c, "limit", 20, 100)
	offset := parseQueryInt(c, "offset", 0, 1<<20)

	list, total, err := m.repo.List(c.Request.Context(), identity.UserID(), limit, offset)
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"notifications": list, "total": total})
}

func (m *Module) handleUnreadCount(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	count, err := m.repo.CountUnread(c.Request.Context(), identity.UserID())
	if httpkit.HandleError(c, err) {
		return
	}
	httpkit.OK(c, gin.H{"count": count})
}

func (m *Module) handleMarkRead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	id, err := uuid.Parse(c.Param("notificationId"))
	if err != nil {
		httpkit.Error(c, http.StatusBadRequest, "invalid notification ID", nil)
		return
	}

	if err := m.repo.MarkRead(c.Request.Context(), id, identity.UserID()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func (m *Module) handleMarkAllRead(c *gin.Context) {
	identity := httpkit.MustGetIdentity(c)
	if identity == nil {
		return
	}

	if err := m.repo.MarkAllRead(c.Request.Context(), identity.UserID()); httpkit.HandleError(c, err) {
		return
	}
	c.Status(http.StatusNoContent)
}

func parseQueryInt(c *gin.Context, key string, def, max int) int {
	raw := c.Query(key)
	if raw == "" {
		return def
	}
	v, err := strconv.Atoi(raw)
	if err != nil || v < 0 {
		return def
	}
	if v > max {
		return max
	}
	return v
}

// Compile-time checks
var (
	_ apphttp.Module = (*Module)(nil)
	_ events.Handler = (*Module)(nil)
)
