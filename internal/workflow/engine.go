package workflow

import (
	"context"

	"github.com/ignite/email-subscribers/internal/pkg/logger"
)

// WorkflowSource lists the active workflows for a trigger.
type WorkflowSource interface {
	ListByTrigger(ctx context.Context, trigger string) ([]Workflow, error)
}

// Engine runs the actions of every active workflow bound to a trigger.
type Engine struct {
	workflows WorkflowSource
	actions   *ActionRegistry
	log       *logger.Scoped
}

// NewEngine returns an engine reading workflows from src and building
// actions from actions.
func NewEngine(src WorkflowSource, actions *ActionRegistry) *Engine {
	return &Engine{
		workflows: src,
		actions:   actions,
		log:       logger.Component("workflow"),
	}
}

// Trigger runs every action of every active workflow listening on trigger,
// in order, against data. A failing action is logged and the rest still run.
// It returns how many actions ran; the only error is failing to load
// workflows.
func (e *Engine) Trigger(ctx context.Context, trigger string, data *DataLayer) (int, error) {
	flows, err := e.workflows.ListByTrigger(ctx, trigger)
	if err != nil {
		return 0, err
	}

	ran := 0
	for _, wf := range flows {
		if wf.Status != "" && wf.Status != StatusActive {
			continue
		}
		for i, cfg := range wf.Actions {
			if ctx.Err() != nil {
				return ran, ctx.Err()
			}
			action, err := e.actions.Build(cfg)
			if err != nil {
				e.log.Warn("build action failed", "workflow_id", wf.ID, "step", i, "action", cfg.Name, "error", err)
				continue
			}
			if err := action.Run(ctx, data); err != nil {
				e.log.Error("action failed", "workflow_id", wf.ID, "step", i, "action", cfg.Name, "error", err)
			}
			ran++
		}
	}

	if ran > 0 {
		e.log.Debug("trigger processed", "trigger", trigger, "workflows", len(flows), "actions_run", ran)
	}
	return ran, nil
}
