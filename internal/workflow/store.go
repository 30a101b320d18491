package workflow

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/google/uuid"
)

// Store handles CRUD for the es_workflows table.
type Store struct {
	db *sql.DB
}

func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

const workflowColumns = `id, name, trigger_name, status, actions, created_at, updated_at`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanWorkflow(row rowScanner) (*Workflow, error) {
	var w Workflow
	var actionsJSON []byte
	if err := row.Scan(&w.ID, &w.Name, &w.Trigger, &w.Status, &actionsJSON, &w.CreatedAt, &w.UpdatedAt); err != nil {
		return nil, err
	}
	if len(actionsJSON) > 0 {
		if err := json.Unmarshal(actionsJSON, &w.Actions); err != nil {
			return nil, fmt.Errorf("decode actions of workflow %s: %w", w.ID, err)
		}
	}
	return &w, nil
}

func (s *Store) Get(ctx context.Context, id uuid.UUID) (*Workflow, error) {
	w, err := scanWorkflow(s.db.QueryRowContext(ctx,
		`SELECT `+workflowColumns+` FROM es_workflows WHERE id = $1`, id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrWorkflowNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get workflow: %w", err)
	}
	return w, nil
}

// ListByTrigger returns the active workflows for trigger, oldest first.
func (s *Store) ListByTrigger(ctx context.Context, trigger string) ([]Workflow, error) {
	return s.query(ctx,
		`SELECT `+workflowColumns+` FROM es_workflows
		WHERE trigger_name = $1 AND status = 'active'
		ORDER BY created_at`, trigger)
}

// List returns every workflow, newest first.
func (s *Store) List(ctx context.Context) ([]Workflow, error) {
	return s.query(ctx, `SELECT `+workflowColumns+` FROM es_workflows ORDER BY created_at DESC`)
}

func (s *Store) query(ctx context.Context, q string, args ...any) ([]Workflow, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, fmt.Errorf("list workflows: %w", err)
	}
	defer rows.Close()

	var out []Workflow
	for rows.Next() {
		w, err := scanWorkflow(rows)
		if err != nil {
			return nil, fmt.Errorf("scan workflow: %w", err)
		}
		out = append(out, *w)
	}
	return out, rows.Err()
}

func (s *Store) Create(ctx context.Context, w *Workflow) error {
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Status == "" {
		w.Status = StatusActive
	}
	actionsJSON, err := json.Marshal(w.Actions)
	if err != nil {
		return fmt.Errorf("encode actions: %w", err)
	}
	err = s.db.QueryRowContext(ctx,
		`INSERT INTO es_workflows (id, name, trigger_name, status, actions)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at, updated_at`,
		w.ID, w.Name, w.Trigger, w.Status, actionsJSON,
	).Scan(&w.CreatedAt, &w.UpdatedAt)
	if err != nil {
		return fmt.Errorf("create workflow: %w", err)
	}
	return nil
}

func (s *Store) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := s.db.ExecContext(ctx,
		`UPDATE es_workflows SET status = $1, updated_at = NOW() WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("update workflow status: %w", err)
	}
	n, _ := res.RowsAffected()
	if n == 0 {
		return ErrWorkflowNotFound
	}
	return nil
}
