package api

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/ignite/email-subscribers/internal/pkg/httputil"
	"github.com/ignite/email-subscribers/internal/pkg/logger"
	"github.com/ignite/email-subscribers/internal/workflow"
)

// HandleListWorkflows returns all workflow definitions.
//
//	GET /api/workflows
func (h *Handlers) HandleListWorkflows(w http.ResponseWriter, r *http.Request) {
	wfs, err := h.workflows.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if wfs == nil {
		wfs = []workflow.Workflow{}
	}
	httputil.OK(w, map[string]any{"workflows": wfs, "total": len(wfs)})
}

// HandleCreateWorkflow stores a new workflow. Every action must build
// against the registry so a broken definition is rejected up front.
//
//	POST /api/workflows
func (h *Handlers) HandleCreateWorkflow(w http.ResponseWriter, r *http.Request) {
	var wf workflow.Workflow
	if !httputil.DecodeValid(w, r, &wf) {
		return
	}
	for i, cfg := range wf.Actions {
		if _, err := h.actions.Build(cfg); err != nil {
			httputil.BadRequest(w, fmt.Sprintf("action %d: %v", i, err))
			return
		}
	}

	if err := h.workflows.Create(r.Context(), &wf); err != nil {
		httputil.InternalError(w, err)
		return
	}
	logger.Info("workflow created", "workflow_id", wf.ID.String(), "trigger", wf.Trigger)
	httputil.Created(w, wf)
}

type statusRequest struct {
	Status string `json:"status" validate:"required,oneof=active inactive"`
}

// HandleUpdateWorkflowStatus activates or deactivates a workflow.
//
//	PUT /api/workflows/{id}/status
func (h *Handlers) HandleUpdateWorkflowStatus(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httputil.BadRequest(w, "invalid workflow id")
		return
	}
	var req statusRequest
	if !httputil.DecodeValid(w, r, &req) {
		return
	}

	if err := h.workflows.UpdateStatus(r.Context(), id, req.Status); err != nil {
		if errors.Is(err, workflow.ErrWorkflowNotFound) {
			httputil.NotFound(w, "workflow not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]string{"id": id.String(), "status": req.Status})
}

// HandleActionNames lists the registered action names.
//
//	GET /api/workflows/actions
func (h *Handlers) HandleActionNames(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string][]string{"actions": h.actions.Names()})
}
