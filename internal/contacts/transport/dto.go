// Package transport defines the HTTP request/response DTOs for contacts.
package transport

import (
	"time"

	"crm_backend/internal/contacts/repository"

	"github.com/google/uuid"
)

// CreateContactRequest creates a new contact.
type CreateContactRequest struct {
	FirstName string  `json:"firstName" validate:"required,max=100"`
	LastName  string  `json:"lastName" validate:"required,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     string  `json:"phone" validate:"required,max=30"`
	Company   *string `json:"company" validate:"omitempty,max=200"`
	Notes     *string `json:"notes" validate:"omitempty,max=5000"`
}

// UpdateContactRequest applies partial edits to a contact.
type UpdateContactRequest struct {
	FirstName *string `json:"firstName" validate:"omitempty,max=100"`
	LastName  *string `json:"lastName" validate:"omitempty,max=100"`
	Email     *string `json:"email" validate:"omitempty,email"`
	Phone     *string `json:"phone" validate:"omitempty,max=30"`
	Company   *string `json:"company" validate:"omitempty,max=200"`
	Notes     *string `json:"notes" validate:"omitempty,max=5000"`
}

// ContactResponse is the API representation of a contact.
type ContactResponse struct {
	ID              uuid.UUID  `json:"id"`
	FirstName       string     `json:"firstName"`
	LastName        string     `json:"lastName"`
	Email           *string    `json:"email,omitempty"`
	Phone           string     `json:"phone"`
	Company         *string    `json:"company,omitempty"`
	Notes           *string    `json:"notes,omitempty"`
	LastCallOutcome *string    `json:"lastCallOutcome,omitempty"`
	LastCallDate    *time.Time `json:"lastCallDate,omitempty"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

// ToContactResponse maps a repository contact to its API shape.
func ToContactResponse(contact *repository.Contact) ContactResponse {
	return ContactResponse{
		ID:              contact.ID,
		FirstName:       contact.FirstName,
		LastName:        contact.LastName,
		Email:           contact.Email,
		Phone:           contact.Phone,
		Company:         contact.Company,
		Notes:           contact.Notes,
		LastCallOutcome: contact.LastCallOutcome,
		LastCallDate:    contact.LastCallDate,
		CreatedAt:       contact.CreatedAt,
		UpdatedAt:       contact.UpdatedAt,
	}
}
