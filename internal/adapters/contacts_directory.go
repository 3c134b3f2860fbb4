// Package adapters contains thin cross-module adapters. They keep each
// bounded context depending only on its own interfaces (anti-corruption layer).
package adapters

import (
	"context"

	callsservice "crm_backend/internal/calls/service"
	contactsrepo "crm_backend/internal/contacts/repository"

	"github.com/google/uuid"
)

// ContactsDirectory adapts the contacts repository to the calls module's
// ContactDirectory interface.
type ContactsDirectory struct {
	repo *contactsrepo.Repository
}

// NewContactsDirectory creates the adapter.
func NewContactsDirectory(repo *contactsrepo.Repository) *ContactsDirectory {
	return &ContactsDirectory{repo: repo}
}

// GetContactPhone returns the contact's phone number.
func (a *ContactsDirectory) GetContactPhone(ctx context.Context, contactID uuid.UUID) (string, error) {
	contact, err := a.repo.GetByID(ctx, contactID)
	if err != nil {
		return "", err
	}
	return contact.Phone, nil
}

// FindContactByPhone resolves a phone number to (contactID, ownerUserID).
func (a *ContactsDirectory) FindContactByPhone(ctx context.Context, phoneNumber string) (uuid.UUID, uuid.UUID, error) {
	contact, err := a.repo.GetByPhone(ctx, phoneNumber)
	if err != nil {
		return uuid.Nil, uuid.Nil, err
	}
	return contact.ID, contact.UserID, nil
}

// Compile-time check against the calls module interface.
var _ callsservice.ContactDirectory = (*ContactsDirectory)(nil)
