package activity

import (
	"context"
	"fmt"
	"time"

	"github.com/ignite/email-subscribers/internal/domain"
)

// Service implements activity business logic. It is safe for concurrent use.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates an activity service backed by the given repository.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Record logs one contact event.
func (s *Service) Record(ctx context.Context, a domain.Activity) error {
	if a.ContactID <= 0 {
		return fmt.Errorf("%w: contact id is required", ErrInvalidActivity)
	}
	if a.Type.String() == "unknown" {
		return fmt.Errorf("%w: unknown type %d", ErrInvalidActivity, a.Type)
	}
	if a.MessageID < 0 || a.CampaignID < 0 || a.LinkID < 0 || a.ListID < 0 {
		return fmt.Errorf("%w: negative id", ErrInvalidActivity)
	}
	now := s.now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now
	if a.Count == 0 {
		a.Count = 1
	}
	return s.repo.Record(ctx, &a)
}

// TotalClicks counts link clicks over the last days (0 = all time).
func (s *Service) TotalClicks(ctx context.Context, days int, distinct bool) (int, error) {
	return s.repo.Count(ctx, CountFilter{Type: domain.ActivityClick, Days: days, Distinct: distinct})
}

// TotalOpens counts message opens over the last days (0 = all time).
func (s *Service) TotalOpens(ctx context.Context, days int, distinct bool) (int, error) {
	return s.repo.Count(ctx, CountFilter{Type: domain.ActivityOpen, Days: days, Distinct: distinct})
}

// TotalSent counts sent messages over the last days (0 = all time).
func (s *Service) TotalSent(ctx context.Context, days int, distinct bool) (int, error) {
	return s.repo.Count(ctx, CountFilter{Type: domain.ActivitySent, Days: days, Distinct: distinct})
}

// TotalUnsubscribes counts contacts lost over the last days (0 = all time).
func (s *Service) TotalUnsubscribes(ctx context.Context, days int, distinct bool) (int, error) {
	return s.repo.Count(ctx, CountFilter{Type: domain.ActivityUnsubscribe, Days: days, Distinct: distinct})
}

// CampaignCount counts one activity type for a campaign.
func (s *Service) CampaignCount(ctx context.Context, campaignID int64, t domain.ActivityType, distinct bool) (int, error) {
	if campaignID <= 0 {
		return 0, fmt.Errorf("%w: campaign id is required", ErrInvalidActivity)
	}
	return s.repo.Count(ctx, CountFilter{Type: t, CampaignID: campaignID, Distinct: distinct})
}

// Summary holds the dashboard counters (distinct contacts).
type Summary struct {
	Days         int     `json:"days"`
	Sent         int     `json:"sent"`
	Opens        int     `json:"opens"`
	Clicks       int     `json:"clicks"`
	Unsubscribes int     `json:"unsubscribes"`
	OpenRate     float64 `json:"open_rate"`
	ClickRate    float64 `json:"click_rate"`
}

// Summary computes the dashboard counters for the last days.
func (s *Service) Summary(ctx context.Context, days int) (*Summary, error) {
	if days < 0 {
		days = 0
	}
	out := &Summary{Days: days}
	var err error
	if out.Sent, err = s.TotalSent(ctx, days, true); err != nil {
		return nil, fmt.Errorf("count sent: %w", err)
	}
	if out.Opens, err = s.TotalOpens(ctx, days, true); err != nil {
		return nil, fmt.Errorf("count opens: %w", err)
	}
	if out.Clicks, err = s.TotalClicks(ctx, days, true); err != nil {
		return nil, fmt.Errorf("count clicks: %w", err)
	}
	if out.Unsubscribes, err = s.TotalUnsubscribes(ctx, days, true); err != nil {
		return nil, fmt.Errorf("count unsubscribes: %w", err)
	}
	if out.Sent > 0 {
		out.OpenRate = float64(out.Opens) / float64(out.Sent)
		out.ClickRate = float64(out.Clicks) / float64(out.Sent)
	}
	return out, nil
}
