package api

import (
	"context"

	"github.com/google/uuid"
	"github.com/ignite/email-subscribers/internal/domain"
	"github.com/ignite/email-subscribers/internal/service/activity"
	"github.com/ignite/email-subscribers/internal/workflow"
)

// TriggerRunner fires workflows for a trigger.
type TriggerRunner interface {
	Trigger(ctx context.Context, trigger string, data *workflow.DataLayer) (int, error)
}

// ContactDirectory looks up contacts and the lists they can be admitted to.
type ContactDirectory interface {
	Get(ctx context.Context, email string) (*domain.Contact, error)
	Lists(ctx context.Context) ([]domain.List, error)
	ListNames(ctx context.Context) (map[int64]string, error)
}

// WorkflowStore persists workflow definitions.
type WorkflowStore interface {
	List(ctx context.Context) ([]workflow.Workflow, error)
	Create(ctx context.Context, w *workflow.Workflow) error
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
}

// ActivityService records and reports contact events.
type ActivityService interface {
	Record(ctx context.Context, a domain.Activity) error
	Summary(ctx context.Context, days int) (*activity.Summary, error)
}

// Handlers contains all HTTP handlers
type Handlers struct {
	engine    TriggerRunner
	contacts  ContactDirectory
	workflows WorkflowStore
	activity  ActivityService
	types     *workflow.DataTypeRegistry
	actions   *workflow.ActionRegistry
}

// NewHandlers creates a new Handlers instance
func NewHandlers(
	engine TriggerRunner,
	contacts ContactDirectory,
	workflows WorkflowStore,
	activitySvc ActivityService,
	types *workflow.DataTypeRegistry,
	actions *workflow.ActionRegistry,
) *Handlers {
	return &Handlers{
		engine:    engine,
		contacts:  contacts,
		workflows: workflows,
		activity:  activitySvc,
		types:     types,
		actions:   actions,
	}
}
