package postgres

import (
	"context"
	"database/sql"
	"fmt"

	sq "github.com/Masterminds/squirrel"
	"github.com/ignite/email-subscribers/internal/domain"
	"github.com/ignite/email-subscribers/internal/service/activity"
)

// ActivityRepo implements activity.Repository against PostgreSQL.
type ActivityRepo struct{ db *sql.DB }

// NewActivityRepo creates a Postgres-backed activity repository.
func NewActivityRepo(db *sql.DB) *ActivityRepo { return &ActivityRepo{db: db} }

func (r *ActivityRepo) Record(ctx context.Context, a *domain.Activity) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO es_actions (contact_id, message_id, campaign_id, type, count, link_id, list_id,
			ip, country, device, browser, email_client, os, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
		ON CONFLICT (contact_id, message_id, campaign_id, type, link_id, list_id) DO UPDATE SET
			count = es_actions.count + 1,
			updated_at = EXCLUDED.updated_at,
			ip = EXCLUDED.ip,
			country = EXCLUDED.country,
			browser = EXCLUDED.browser,
			device = EXCLUDED.device,
			os = EXCLUDED.os,
			email_client = EXCLUDED.email_client
	`, a.ContactID, a.MessageID, a.CampaignID, int(a.Type), a.Count, a.LinkID, a.ListID,
		a.IP, a.Country, a.Device, a.Browser, a.EmailClient, a.OS, a.CreatedAt, a.UpdatedAt)
	if err != nil {
		return fmt.Errorf("record activity: %w", err)
	}
	return nil
}

func (r *ActivityRepo) Count(ctx context.Context, f activity.CountFilter) (int, error) {
	col := "COUNT(contact_id)"
	if f.Distinct {
		col = "COUNT(DISTINCT contact_id)"
	}
	q := sq.Select(col).
		From("es_actions").
		Where(sq.Eq{"type": int(f.Type)}).
		PlaceholderFormat(sq.Dollar)
	if f.CampaignID > 0 {
		q = q.Where(sq.Eq{"campaign_id": f.CampaignID})
	}
	if f.Days > 0 {
		q = q.Where("created_at >= NOW() - make_interval(days => ?)", f.Days)
	}

	query, args, err := q.ToSql()
	if err != nil {
		return 0, fmt.Errorf("building count query: %w", err)
	}
	var n int
	if err := r.db.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, fmt.Errorf("count activity: %w", err)
	}
	return n, nil
}
