package contact

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ignite/email-subscribers/internal/domain"
	"github.com/ignite/email-subscribers/internal/pkg/distlock"
	"github.com/ignite/email-subscribers/internal/pkg/logger"
	"github.com/sethvargo/go-retry"
)

// Column widths of es_contacts and es_lists_contacts. Longer values are cut
// to fit instead of failing the insert.
const (
	maxNameLen   = 50
	maxSourceLen = 50
	maxIPLen     = 45
)

// LockFunc returns a lock guarding one contact email.
type LockFunc func(key string) distlock.DistLock

// Service implements contact admission. It is safe for concurrent use.
type Service struct {
	repo        Repository
	lock        LockFunc
	now         func() time.Time
	listStatus  domain.MembershipStatus
	optinType   domain.OptinType
	lockWait    time.Duration
	lockBackoff time.Duration
	releaseWait time.Duration
	log         *logger.Scoped
}

// Option customizes a Service.
type Option func(*Service)

// WithLocks serializes admissions per email across workers.
func WithLocks(f LockFunc) Option {
	return func(s *Service) { s.lock = f }
}

// WithLockWait bounds how long Admit waits for another worker to finish
// with the same email before giving up with ErrBusy.
func WithLockWait(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.lockWait = d
		}
	}
}

// WithMembershipDefaults sets the status and opt-in type of new list
// memberships.
func WithMembershipDefaults(status domain.MembershipStatus, optin domain.OptinType) Option {
	return func(s *Service) {
		if status != "" {
			s.listStatus = status
		}
		if optin != 0 {
			s.optinType = optin
		}
	}
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// NewService creates a contact service backed by the given repository.
func NewService(repo Repository, opts ...Option) *Service {
	s := &Service{
		repo:        repo,
		now:         time.Now,
		listStatus:  domain.MembershipSubscribed,
		optinType:   domain.OptinSingle,
		lockWait:    10 * time.Second,
		lockBackoff: 20 * time.Millisecond,
		releaseWait: 2 * time.Second,
		log:         logger.Component("contact"),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Admit stores c (creating it if its email is new) and adds it to listID.
// It returns the contact id.
func (s *Service) Admit(ctx context.Context, c domain.Contact, listID int64) (int64, error) {
	email := strings.ToLower(strings.TrimSpace(c.Email))
	if email == "" {
		return 0, fmt.Errorf("%w: email is required", ErrInvalidContact)
	}
	if listID <= 0 {
		return 0, fmt.Errorf("%w: list id is required", ErrInvalidContact)
	}
	if c.Status == "" {
		c.Status = domain.ContactVerified
	}
	if !c.Status.Valid() {
		return 0, fmt.Errorf("%w: unknown status %q", ErrInvalidContact, c.Status)
	}

	if s.lock != nil {
		lock := s.lock(email)
		if err := s.acquire(ctx, lock); err != nil {
			return 0, err
		}
		defer func() {
			rctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.releaseWait)
			defer cancel()
			if err := lock.Release(rctx); err != nil {
				s.log.Warn("release contact lock failed", "email", email, "error", err)
			}
		}()
	}

	exists, err := s.repo.ListExists(ctx, listID)
	if err != nil {
		return 0, fmt.Errorf("check list: %w", err)
	}
	if !exists {
		return 0, fmt.Errorf("%w: %d", ErrListNotFound, listID)
	}

	now := s.now()
	c.Email = email
	c.FirstName = truncate(c.FirstName, maxNameLen)
	c.LastName = truncate(c.LastName, maxNameLen)
	c.Source = truncate(c.Source, maxSourceLen)
	if c.CreatedAt.IsZero() {
		c.CreatedAt = now
	}
	created, err := s.repo.UpsertContact(ctx, &c)
	if err != nil {
		return 0, fmt.Errorf("upsert contact: %w", err)
	}

	added, err := s.repo.AddMembership(ctx, &domain.ListMembership{
		ContactID:    c.ID,
		ListID:       listID,
		Status:       s.listStatus,
		OptinType:    s.optinType,
		SubscribedAt: now,
		SubscribedIP: truncate(c.IP, maxIPLen),
	})
	if err != nil {
		return c.ID, fmt.Errorf("add to list: %w", err)
	}

	s.log.Info("contact admitted", "email", email, "contact_id", c.ID, "list_id", listID,
		"created", created, "joined_list", added, "source", c.Source)
	return c.ID, nil
}

// acquire waits for the per-email lock, backing off while another worker
// holds it. ErrBusy is returned once lockWait elapses.
func (s *Service) acquire(ctx context.Context, lock distlock.DistLock) error {
	b := retry.NewExponential(s.lockBackoff)
	b = retry.WithJitterPercent(20, b)
	b = retry.WithCappedDuration(250*time.Millisecond, b)
	b = retry.WithMaxDuration(s.lockWait, b)

	return retry.Do(ctx, b, func(ctx context.Context) error {
		ok, err := lock.Acquire(ctx)
		if err != nil {
			return fmt.Errorf("lock contact: %w", err)
		}
		if !ok {
			return retry.RetryableError(ErrBusy)
		}
		return nil
	})
}

// truncate cuts s to at most n runes.
func truncate(s string, n int) string {
	if utf8.RuneCountInString(s) <= n {
		return s
	}
	return string([]rune(s)[:n])
}

// Handler adapts Admit to the workflow admission callback. Failures are
// logged; the caller is never told.
func (s *Service) Handler() func(ctx context.Context, c domain.Contact, listID int64) {
	return func(ctx context.Context, c domain.Contact, listID int64) {
		if _, err := s.Admit(ctx, c, listID); err != nil {
			s.log.Error("admit contact failed", "email", c.Email, "list_id", listID, "error", err)
		}
	}
}

// Get looks a contact up by email.
func (s *Service) Get(ctx context.Context, email string) (*domain.Contact, error) {
	return s.repo.FindByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
}

// Lists returns every list.
func (s *Service) Lists(ctx context.Context) ([]domain.List, error) {
	return s.repo.Lists(ctx)
}

// ListNames returns the list id to name map used by the add-to-list action
// picker.
func (s *Service) ListNames(ctx context.Context) (map[int64]string, error) {
	lists, err := s.repo.Lists(ctx)
	if err != nil {
		return nil, err
	}
	out := make(map[int64]string, len(lists))
	for _, l := range lists {
		out[l.ID] = l.Name
	}
	return out, nil
}
