package activity

import (
	"context"

	"github.com/ignite/email-subscribers/internal/domain"
)

// Repository defines the data access contract for the activity log.
type Repository interface {
	// Record inserts a row or, if the same (contact, message, campaign,
	// type, link, list) exists, bumps its count and refreshes the client
	// metadata while keeping created_at.
	Record(ctx context.Context, a *domain.Activity) error

	// Count counts contacts (distinct) or events matching the filter.
	Count(ctx context.Context, f CountFilter) (int, error)
}

// CountFilter selects activity rows to count.
type CountFilter struct {
	Type       domain.ActivityType
	CampaignID int64 // 0 = any campaign
	Days       int   // 0 = all time
	Distinct   bool  // count distinct contacts instead of rows
}
