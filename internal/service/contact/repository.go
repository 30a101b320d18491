package contact

import (
	"context"

	"github.com/ignite/email-subscribers/internal/domain"
)

// Repository defines the data access contract for contacts and lists.
type Repository interface {
	// UpsertContact creates the contact or, when the email already exists,
	// keeps the stored identity and only fills blank names. It sets c.ID and
	// reports whether a row was created.
	UpsertContact(ctx context.Context, c *domain.Contact) (created bool, err error)

	// FindByEmail returns ErrNotFound if no contact has that email.
	FindByEmail(ctx context.Context, email string) (*domain.Contact, error)

	// ListExists reports whether listID names a list.
	ListExists(ctx context.Context, listID int64) (bool, error)

	// AddMembership links a contact to a list. An existing membership is
	// left untouched and reported as added=false.
	AddMembership(ctx context.Context, m *domain.ListMembership) (added bool, err error)

	// Lists returns every list, ordered by name.
	Lists(ctx context.Context) ([]domain.List, error)
}
