// Package repository provides database operations for contacts.
package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"crm_backend/platform/apperr"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Contact represents the contact database model. The last-call summary
// columns are a denormalized cache written by the calls subsystem.
type Contact struct {
	ID              uuid.UUID  `db:"id"`
	UserID          uuid.UUID  `db:"user_id"`
	FirstName       string     `db:"first_name"`
	LastName        string     `db:"last_name"`
	Email           *string    `db:"email"`
	Phone           string     `db:"phone"`
	Company         *string    `db:"company"`
	Notes           *string    `db:"notes"`
	LastCallOutcome *string    `db:"last_call_outcome"`
	LastCallDate    *time.Time `db:"last_call_date"`
	CreatedAt       time.Time  `db:"created_at"`
	UpdatedAt       time.Time  `db:"updated_at"`
}

const contactNotFoundMsg = "contact not found"

// Repository provides database operations for contacts.
type Repository struct {
	pool *pgxpool.Pool
}

// New creates a new contacts repository.
func New(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

const selectContactQuery = `SELECT id, user_id, first_name, last_name, email, phone,
	company, notes, last_call_outcome, last_call_date, created_at, updated_at
	FROM contacts`

// Create inserts a new contact.
func (r *Repository) Create(ctx context.Context, contact *Contact) error {
	query := `
		INSERT INTO contacts (
			id, user_id, first_name, last_name, email, phone, company, notes,
			created_at, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`

	_, err := r.pool.Exec(ctx, query,
		contact.ID, contact.UserID, contact.FirstName, contact.LastName,
		contact.Email, contact.Phone, contact.Company, contact.Notes,
		contact.CreatedAt, contact.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to create contact: %w", err)
	}

	return nil
}

// GetByID retrieves a contact by its ID.
func (r *Repository) GetByID(ctx context.Context, id uuid.UUID) (*Contact, error) {
	var contact Contact
	err := r.scan(r.pool.QueryRow(ctx, selectContactQuery+` WHERE id = $1`, id), &contact)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(contactNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get contact: %w", err)
	}

	return &contact, nil
}

// GetByPhone retrieves the most recently created contact with the given
// phone number. Used to attribute inbound provider messages.
func (r *Repository) GetByPhone(ctx context.Context, phone string) (*Contact, error) {
	query := selectContactQuery + ` WHERE phone = $1 ORDER BY created_at DESC LIMIT 1`

	var contact Contact
	err := r.scan(r.pool.QueryRow(ctx, query, phone), &contact)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperr.NotFound(contactNotFoundMsg)
		}
		return nil, fmt.Errorf("failed to get contact by phone: %w", err)
	}

	return &contact, nil
}

// List returns contacts owned by a user, newest first.
func (r *Repository) List(ctx context.Context, userID uuid.UUID, limit, offset int) ([]Contact, error) {
	query := selectContactQuery + ` WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3`

	rows, err := r.pool.Query(ctx, query, userID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to list contacts: %w", err)
	}
	defer rows.Close()

	var result []Contact
	for rows.Next() {
		var contact Contact
		if err := rows.Scan(
			&contact.ID, &contact.UserID, &contact.FirstName, &contact.LastName,
			&contact.Email, &contact.Phone, &contact.Company, &contact.Notes,
			&contact.LastCallOutcome, &contact.LastCallDate,
			&contact.CreatedAt, &contact.UpdatedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan contact: %w", err)
		}
		result = append(result, contact)
	}

	return result, rows.Err()
}

// Update applies edits to a contact's own fields. The last-call summary is
// not writable here.
func (r *Repository) Update(ctx context.Context, contact *Contact) error {
	query := `UPDATE contacts SET first_name = $1, last_name = $2, email = $3,
		phone = $4, company = $5, notes = $6, updated_at = now()
		WHERE id = $7`

	tag, err := r.pool.Exec(ctx, query,
		contact.FirstName, contact.LastName, contact.Email, contact.Phone,
		contact.Company, contact.Notes, contact.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(contactNotFoundMsg)
	}

	return nil
}

// Delete removes a contact.
func (r *Repository) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM contacts WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete contact: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperr.NotFound(contactNotFoundMsg)
	}

	return nil
}

func (r *Repository) scan(row pgx.Row, contact *Contact) error {
	return row.Scan(
		&contact.ID, &contact.UserID, &contact.FirstName, &contact.LastName,
		&contact.Email, &contact.Phone, &contact.Company, &contact.Notes,
		&contact.LastCallOutcome, &contact.LastCallDate,
		&contact.CreatedAt, &contact.UpdatedAt,
	)
}
