package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/ignite/email-subscribers/internal/pkg/httputil"
	"github.com/ignite/email-subscribers/internal/pkg/logger"
	"github.com/ignite/email-subscribers/internal/service/contact"
	"github.com/ignite/email-subscribers/internal/workflow"
)

type triggerEntry struct {
	Type    string          `json:"type" validate:"required"`
	Payload json.RawMessage `json:"payload"`
}

type triggerRequest struct {
	Data []triggerEntry `json:"data" validate:"required,min=1,dive"`
}

// HandleTrigger fires every active workflow bound to the trigger. Payloads
// are decoded by their data type id; unknown types travel as raw JSON and
// are ignored by the actions.
//
//	POST /api/triggers/{trigger}
func (h *Handlers) HandleTrigger(w http.ResponseWriter, r *http.Request) {
	trigger := chi.URLParam(r, "trigger")

	var req triggerRequest
	if !httputil.DecodeValid(w, r, &req) {
		return
	}

	data := workflow.NewDataLayer()
	for _, e := range req.Data {
		if _, dup := data.Get(e.Type); dup {
			httputil.BadRequest(w, fmt.Sprintf("duplicate data type %q", e.Type))
			return
		}
		data.Set(e.Type, h.types.Decode(e.Type, e.Payload))
	}

	n, err := h.engine.Trigger(r.Context(), trigger, data)
	if err != nil {
		logger.Warn("trigger interrupted", "trigger", trigger, "actions_run", n)
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]int{"actions_run": n})
}

// HandleDataTypes lists the payload types a trigger accepts.
//
//	GET /api/data-types
func (h *Handlers) HandleDataTypes(w http.ResponseWriter, r *http.Request) {
	httputil.OK(w, map[string][]string{"data_types": h.types.IDs()})
}

// HandleLists returns the lists available to the add-to-list action.
//
//	GET /api/lists
func (h *Handlers) HandleLists(w http.ResponseWriter, r *http.Request) {
	lists, err := h.contacts.Lists(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"lists": lists, "total": len(lists)})
}

// HandleListOptions returns the list id to name map the add-to-list action
// editor offers.
//
//	GET /api/lists/options
func (h *Handlers) HandleListOptions(w http.ResponseWriter, r *http.Request) {
	names, err := h.contacts.ListNames(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, map[string]any{"options": names})
}

// HandleGetContact looks a contact up by email.
//
//	GET /api/contacts?email=
func (h *Handlers) HandleGetContact(w http.ResponseWriter, r *http.Request) {
	email := r.URL.Query().Get("email")
	if !workflow.ValidEmail(strings.TrimSpace(email)) {
		httputil.BadRequest(w, "a valid email is required")
		return
	}
	c, err := h.contacts.Get(r.Context(), email)
	if err != nil {
		if errors.Is(err, contact.ErrNotFound) {
			httputil.NotFound(w, "contact not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.OK(w, c)
}
