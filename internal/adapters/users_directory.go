package adapters

import (
	"context"

	"crm_backend/internal/notification"
	"crm_backend/internal/users"

	"github.com/google/uuid"
)

// UsersDirectory adapts the users repository to the notification module's
// UserDirectory interface.
type UsersDirectory struct {
	repo *users.Repository
}

// NewUsersDirectory creates the adapter.
func NewUsersDirectory(repo *users.Repository) *UsersDirectory {
	return &UsersDirectory{repo: repo}
}

// GetUserEmail returns the user's email address.
func (a *UsersDirectory) GetUserEmail(ctx context.Context, userID uuid.UUID) (string, error) {
	user, err := a.repo.GetByID(ctx, userID)
	if err != nil {
		return "", err
	}
	return user.Email, nil
}

var _ notification.UserDirectory = (*UsersDirectory)(nil)
