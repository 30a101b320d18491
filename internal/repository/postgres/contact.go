package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ignite/email-subscribers/internal/domain"
	"github.com/ignite/email-subscribers/internal/service/contact"
)

// ContactRepo implements contact.Repository against PostgreSQL.
type ContactRepo struct{ db *sql.DB }

// NewContactRepo creates a Postgres-backed contact repository.
func NewContactRepo(db *sql.DB) *ContactRepo { return &ContactRepo{db: db} }

func (r *ContactRepo) UpsertContact(ctx context.Context, c *domain.Contact) (bool, error) {
	var created bool
	err := r.db.QueryRowContext(ctx, `
		INSERT INTO es_contacts (email, first_name, last_name, source, status, hash, wp_user_id, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		ON CONFLICT (email) DO UPDATE SET
			first_name = CASE WHEN es_contacts.first_name = '' THEN EXCLUDED.first_name ELSE es_contacts.first_name END,
			last_name  = CASE WHEN es_contacts.last_name = '' THEN EXCLUDED.last_name ELSE es_contacts.last_name END,
			wp_user_id = CASE WHEN es_contacts.wp_user_id = 0 THEN EXCLUDED.wp_user_id ELSE es_contacts.wp_user_id END,
			updated_at = NOW()
		RETURNING id, (xmax = 0)
	`, c.Email, c.FirstName, c.LastName, c.Source, c.Status, c.Hash, c.WPUserID, c.CreatedAt,
	).Scan(&c.ID, &created)
	if err != nil {
		return false, fmt.Errorf("upsert contact: %w", err)
	}
	return created, nil
}

func (r *ContactRepo) FindByEmail(ctx context.Context, email string) (*domain.Contact, error) {
	var c domain.Contact
	var updated sql.NullTime
	err := r.db.QueryRowContext(ctx, `
		SELECT id, email, first_name, last_name, source, status, hash, wp_user_id, created_at, updated_at
		FROM es_contacts WHERE email = $1
	`, email).Scan(&c.ID, &c.Email, &c.FirstName, &c.LastName, &c.Source, &c.Status, &c.Hash, &c.WPUserID, &c.CreatedAt, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, contact.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find contact: %w", err)
	}
	if updated.Valid {
		c.UpdatedAt = &updated.Time
	}
	return &c, nil
}

func (r *ContactRepo) ListExists(ctx context.Context, listID int64) (bool, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM es_lists WHERE id = $1 AND deleted_at IS NULL)`, listID,
	).Scan(&exists)
	return exists, err
}

func (r *ContactRepo) AddMembership(ctx context.Context, m *domain.ListMembership) (bool, error) {
	res, err := r.db.ExecContext(ctx, `
		INSERT INTO es_lists_contacts (list_id, contact_id, status, optin_type, subscribed_at, subscribed_ip)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (list_id, contact_id) DO NOTHING
	`, m.ListID, m.ContactID, m.Status, int(m.OptinType), m.SubscribedAt, m.SubscribedIP)
	if err != nil {
		return false, fmt.Errorf("add membership: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func (r *ContactRepo) Lists(ctx context.Context) ([]domain.List, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, name, slug, created_at FROM es_lists WHERE deleted_at IS NULL ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list lists: %w", err)
	}
	defer rows.Close()

	var out []domain.List
	for rows.Next() {
		var l domain.List
		if err := rows.Scan(&l.ID, &l.Name, &l.Slug, &l.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan list: %w", err)
		}
		out = append(out, l)
	}
	return out, rows.Err()
}
