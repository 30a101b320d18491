package workflow

import (
	"time"

	"github.com/google/uuid"
)

// Workflow statuses.
const (
	StatusActive   = "active"
	StatusInactive = "inactive"
)

// Built-in trigger names.
const (
	TriggerCommentAdded   = "comment_added"
	TriggerFormSubmitted  = "form_submitted"
	TriggerUserRegistered = "user_registered"
)

// Workflow is the Go representation of an es_workflows row.
type Workflow struct {
	ID        uuid.UUID      `json:"id"`
	Name      string         `json:"name" validate:"required"`
	Trigger   string         `json:"trigger" validate:"required"`
	Status    string         `json:"status" validate:"omitempty,oneof=active inactive"`
	Actions   []ActionConfig `json:"actions" validate:"required,min=1,dive"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
}
