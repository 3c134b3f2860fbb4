// Package service implements contact management.
package service

import (
	"context"
	"time"

	"crm_backend/internal/contacts/repository"
	"crm_backend/internal/contacts/transport"
	"crm_backend/platform/apperr"
	"crm_backend/platform/phone"

	"github.com/google/uuid"
)

// Service implements contact CRUD. Phone numbers are normalized to E.164 at
// write time so click-to-call dispatch and message attribution line up.
type Service struct {
	repo *repository.Repository
}

// New creates the contacts service.
func New(repo *repository.Repository) *Service {
	return &Service{repo: repo}
}

// Create inserts a new contact owned by the given user.
func (s *Service) Create(ctx context.Context, req transport.CreateContactRequest, userID uuid.UUID) (transport.ContactResponse, error) {
	now := time.Now().UTC()
	contact := &repository.Contact{
		ID:        uuid.New(),
		UserID:    userID,
		FirstName: req.FirstName,
		LastName:  req.LastName,
		Email:     req.Email,
		Phone:     phone.NormalizeE164(req.Phone),
		Company:   req.Company,
		Notes:     req.Notes,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.repo.Create(ctx, contact); err != nil {
		return transport.ContactResponse{}, apperr.Wrap(apperr.KindInternal, "failed to create contact", err)
	}

	return transport.ToContactResponse(contact), nil
}

// Get returns one contact.
func (s *Service) Get(ctx context.Context, id uuid.UUID) (transport.ContactResponse, error) {
	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ContactResponse{}, err
	}
	return transport.ToContactResponse(contact), nil
}

// List returns the user's contacts.
func (s *Service) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]transport.ContactResponse, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	if offset < 0 {
		offset = 0
	}

	contacts, err := s.repo.List(ctx, userID, limit, offset)
	if err != nil {
		return nil, err
	}

	result := make([]transport.ContactResponse, len(contacts))
	for i := range contacts {
		result[i] = transport.ToContactResponse(&contacts[i])
	}
	return result, nil
}

// Update applies partial edits to a contact.
func (s *Service) Update(ctx context.Context, id uuid.UUID, req transport.UpdateContactRequest) (transport.ContactResponse, error) {
	contact, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return transport.ContactResponse{}, err
	}

	if req.FirstName != nil {
		contact.FirstName = *req.FirstName
	}
	if req.LastName != nil {
		contact.LastName = *req.LastName
	}
	if req.Email != nil {
		contact.Email = req.Email
	}
	if req.Phone != nil {
		contact.Phone = phone.NormalizeE164(*req.Phone)
	}
	if req.Company != nil {
		contact.Company = req.Company
	}
	if req.Notes != nil {
		contact.Notes = req.Notes
	}

	if err := s.repo.Update(ctx, contact); err != nil {
		return transport.ContactResponse{}, err
	}

	return transport.ToContactResponse(contact), nil
}

// Delete removes a contact.
func (s *Service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
