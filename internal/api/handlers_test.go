package api

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/ignite/email-subscribers/internal/config"
	"github.com/ignite/email-subscribers/internal/domain"
	"github.com/ignite/email-subscribers/internal/service/activity"
	"github.com/ignite/email-subscribers/internal/service/contact"
	"github.com/ignite/email-subscribers/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeWorkflows struct {
	mu      sync.Mutex
	flows   []workflow.Workflow
	listErr error
}

func (f *fakeWorkflows) ListByTrigger(_ context.Context, trigger string) ([]workflow.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.listErr != nil {
		return nil, f.listErr
	}
	var out []workflow.Workflow
	for _, wf := range f.flows {
		if wf.Trigger == trigger {
			out = append(out, wf)
		}
	}
	return out, nil
}

func (f *fakeWorkflows) List(_ context.Context) ([]workflow.Workflow, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.flows, f.listErr
}

func (f *fakeWorkflows) Create(_ context.Context, w *workflow.Workflow) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if w.ID == uuid.Nil {
		w.ID = uuid.New()
	}
	if w.Status == "" {
		w.Status = workflow.StatusActive
	}
	f.flows = append(f.flows, *w)
	return nil
}

func (f *fakeWorkflows) UpdateStatus(_ context.Context, id uuid.UUID, status string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.flows {
		if f.flows[i].ID == id {
			f.flows[i].Status = status
			return nil
		}
	}
	return workflow.ErrWorkflowNotFound
}

type fakeDirectory struct {
	lists    []domain.List
	contacts map[string]*domain.Contact
}

func (f fakeDirectory) Lists(context.Context) ([]domain.List, error) { return f.lists, nil }

func (f fakeDirectory) ListNames(context.Context) (map[int64]string, error) {
	names := make(map[int64]string, len(f.lists))
	for _, l := range f.lists {
		names[l.ID] = l.Name
	}
	return names, nil
}

func (f fakeDirectory) Get(_ context.Context, email string) (*domain.Contact, error) {
	if email == "broken@example.com" {
		return nil, errors.New("db down")
	}
	c, ok := f.contacts[email]
	if !ok {
		return nil, contact.ErrNotFound
	}
	return c, nil
}

type fakeActivity struct {
	recorded []domain.Activity
	summary  *activity.Summary
}

func (f *fakeActivity) Record(_ context.Context, a domain.Activity) error {
	if a.ContactID == 999 {
		return errors.New("db down")
	}
	f.recorded = append(f.recorded, a)
	return nil
}

func (f *fakeActivity) Summary(_ context.Context, days int) (*activity.Summary, error) {
	s := *f.summary
	s.Days = days
	return &s, nil
}

type admitted struct {
	contact domain.Contact
	listID  int64
}

type testEnv struct {
	handler   http.Handler
	workflows *fakeWorkflows
	activity  *fakeActivity
	mu        sync.Mutex
	admitted  []admitted
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	env := &testEnv{
		workflows: &fakeWorkflows{},
		activity:  &fakeActivity{summary: &activity.Summary{Sent: 10, Opens: 4}},
	}
	types := workflow.NewDefaultDataTypes()
	actions := workflow.NewActionRegistry()
	actions.Register(workflow.ActionAddToList, workflow.AddToListFactory(types,
		func(_ context.Context, c domain.Contact, listID int64) {
			env.mu.Lock()
			env.admitted = append(env.admitted, admitted{c, listID})
			env.mu.Unlock()
		}))

	engine := workflow.NewEngine(env.workflows, actions)
	dir := fakeDirectory{
		lists:    []domain.List{{ID: 1, Name: "Main"}, {ID: 2, Name: "VIP"}},
		contacts: map[string]*domain.Contact{"kim@example.com": {ID: 5, Email: "kim@example.com", FirstName: "Kim"}},
	}
	h := NewHandlers(engine, dir,
		env.workflows, env.activity, types, actions)
	env.handler = NewServer(config.ServerConfig{}, h, nil).Handler()
	return env
}

func (env *testEnv) do(t *testing.T, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	return w
}

func TestHealth(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/health", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "healthy")
}

func TestTrigger_AdmitsContacts(t *testing.T) {
	env := newTestEnv(t)
	env.workflows.flows = []workflow.Workflow{{
		ID:      uuid.New(),
		Name:    "Commenters",
		Trigger: workflow.TriggerCommentAdded,
		Status:  workflow.StatusActive,
		Actions: []workflow.ActionConfig{{Name: workflow.ActionAddToList, Options: map[string]any{"list_id": float64(2)}}},
	}}

	body := `{"data":[
		{"type":"comment","payload":{"author_email":"jane@example.com","author_name":"Jane Q Public"}},
		{"type":"mystery","payload":{"email":"skip@example.com"}}
	]}`
	w := env.do(t, http.MethodPost, "/api/triggers/comment_added", body)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var resp map[string]int
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp["actions_run"])

	require.Len(t, env.admitted, 1)
	got := env.admitted[0]
	assert.Equal(t, int64(2), got.listID)
	assert.Equal(t, "jane@example.com", got.contact.Email)
	assert.Equal(t, "Jane", got.contact.FirstName)
	assert.Equal(t, "Q Public", got.contact.LastName)
	assert.Equal(t, domain.SourceComment, got.contact.Source)
	assert.Equal(t, domain.ContactVerified, got.contact.Status)
}

func TestTrigger_NoWorkflows(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodPost, "/api/triggers/form_submitted",
		`{"data":[{"type":"form_submission","payload":{"email":"a@b.co"}}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"actions_run":0}`, w.Body.String())
	assert.Empty(t, env.admitted)
}

func TestTrigger_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	for _, body := range []string{`{`, `{}`, `{"data":[]}`, `{"data":[{"payload":{}}]}`} {
		w := env.do(t, http.MethodPost, "/api/triggers/comment_added", body)
		assert.Equal(t, http.StatusBadRequest, w.Code, body)
	}
}

func TestTrigger_DuplicateTypeRejected(t *testing.T) {
	env := newTestEnv(t)
	env.workflows.flows = []workflow.Workflow{{
		ID:      uuid.New(),
		Trigger: workflow.TriggerCommentAdded,
		Status:  workflow.StatusActive,
		Actions: []workflow.ActionConfig{{Name: workflow.ActionAddToList, Options: map[string]any{"list_id": 1}}},
	}}

	w := env.do(t, http.MethodPost, "/api/triggers/comment_added", `{"data":[
		{"type":"comment","payload":{"author_email":"first@example.com"}},
		{"type":"comment","payload":{"author_email":"second@example.com"}}
	]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "duplicate data type")
	assert.Empty(t, env.admitted)
}

func TestTrigger_SourceError(t *testing.T) {
	env := newTestEnv(t)
	env.workflows.listErr = errors.New("connection reset")
	w := env.do(t, http.MethodPost, "/api/triggers/comment_added",
		`{"data":[{"type":"comment","payload":{}}]}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "connection reset")
}

func TestLists(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/lists", "")
	require.Equal(t, http.StatusOK, w.Code)

	var resp struct {
		Lists []domain.List `json:"lists"`
		Total int           `json:"total"`
	}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, "VIP", resp.Lists[1].Name)
}

func TestListOptions(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/lists/options", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"options":{"1":"Main","2":"VIP"}}`, w.Body.String())
}

func TestGetContact(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/contacts?email=kim@example.com", "")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	var c domain.Contact
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &c))
	assert.Equal(t, int64(5), c.ID)
	assert.Equal(t, "Kim", c.FirstName)

	w = env.do(t, http.MethodGet, "/api/contacts?email=nobody@example.com", "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodGet, "/api/contacts?email=nope", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodGet, "/api/contacts?email=broken@example.com", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assert.NotContains(t, w.Body.String(), "db down")
}

func TestDataTypesAndActions(t *testing.T) {
	env := newTestEnv(t)
	w := env.do(t, http.MethodGet, "/api/data-types", "")
	assert.JSONEq(t, `{"data_types":["comment","form_submission","user"]}`, w.Body.String())

	w = env.do(t, http.MethodGet, "/api/workflows/actions", "")
	assert.JSONEq(t, `{"actions":["add_to_list"]}`, w.Body.String())
}

func TestCreateWorkflow(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/workflows", `{
		"name": "New users",
		"trigger": "user_registered",
		"actions": [{"name": "add_to_list", "options": {"list_id": 1}}]
	}`)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	var wf workflow.Workflow
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &wf))
	assert.NotEqual(t, uuid.Nil, wf.ID)
	assert.Equal(t, workflow.StatusActive, wf.Status)

	w = env.do(t, http.MethodGet, "/api/workflows", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"total":1`)
}

func TestCreateWorkflow_Rejects(t *testing.T) {
	env := newTestEnv(t)
	tests := map[string]string{
		"no actions":     `{"name":"x","trigger":"comment_added","actions":[]}`,
		"no name":        `{"trigger":"comment_added","actions":[{"name":"add_to_list"}]}`,
		"unknown action": `{"name":"x","trigger":"comment_added","actions":[{"name":"tweet"}]}`,
		"bad status":     `{"name":"x","trigger":"comment_added","status":"paused","actions":[{"name":"add_to_list"}]}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			w := env.do(t, http.MethodPost, "/api/workflows", body)
			assert.Equal(t, http.StatusBadRequest, w.Code, w.Body.String())
		})
	}
	assert.Empty(t, env.workflows.flows)
}

func TestUpdateWorkflowStatus(t *testing.T) {
	env := newTestEnv(t)
	id := uuid.New()
	env.workflows.flows = []workflow.Workflow{{ID: id, Name: "x", Trigger: "comment_added", Status: workflow.StatusActive}}

	w := env.do(t, http.MethodPut, "/api/workflows/"+id.String()+"/status", `{"status":"inactive"}`)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, workflow.StatusInactive, env.workflows.flows[0].Status)

	w = env.do(t, http.MethodPut, "/api/workflows/"+uuid.NewString()+"/status", `{"status":"active"}`)
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = env.do(t, http.MethodPut, "/api/workflows/not-a-uuid/status", `{"status":"active"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPut, "/api/workflows/"+id.String()+"/status", `{"status":"paused"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestInactiveWorkflowDoesNotFire(t *testing.T) {
	env := newTestEnv(t)
	env.workflows.flows = []workflow.Workflow{{
		ID:      uuid.New(),
		Trigger: workflow.TriggerCommentAdded,
		Status:  workflow.StatusInactive,
		Actions: []workflow.ActionConfig{{Name: workflow.ActionAddToList, Options: map[string]any{"list_id": 1}}},
	}}
	w := env.do(t, http.MethodPost, "/api/triggers/comment_added",
		`{"data":[{"type":"comment","payload":{"author_email":"a@b.co"}}]}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"actions_run":0}`, w.Body.String())
	assert.Empty(t, env.admitted)
}

func TestRecordActivity(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/api/activity", `{"contact_id":7,"type":"click","campaign_id":3,"link_id":9}`)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())
	require.Len(t, env.activity.recorded, 1)
	assert.Equal(t, domain.ActivityClick, env.activity.recorded[0].Type)
	assert.Equal(t, int64(9), env.activity.recorded[0].LinkID)

	w = env.do(t, http.MethodPost, "/api/activity", `{"contact_id":7,"type":"bounce"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/activity", `{"type":"open"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = env.do(t, http.MethodPost, "/api/activity", `{"contact_id":999,"type":"open"}`)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestRecordActivity_StoresHostWithoutPort(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/api/activity", strings.NewReader(`{"contact_id":7,"type":"open"}`))
	req.RemoteAddr = "198.51.100.4:52311"
	w := httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/activity", strings.NewReader(`{"contact_id":7,"type":"open"}`))
	req.RemoteAddr = "[2001:db8::7]:443"
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	req = httptest.NewRequest(http.MethodPost, "/api/activity", strings.NewReader(`{"contact_id":7,"type":"open"}`))
	req.Header.Set("X-Real-IP", "203.0.113.9")
	w = httptest.NewRecorder()
	env.handler.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code, w.Body.String())

	require.Len(t, env.activity.recorded, 3)
	assert.Equal(t, "198.51.100.4", env.activity.recorded[0].IP)
	assert.Equal(t, "2001:db8::7", env.activity.recorded[1].IP)
	assert.Equal(t, "203.0.113.9", env.activity.recorded[2].IP)
}

func TestSummary(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/api/reports/summary?days=30", "")
	require.Equal(t, http.StatusOK, w.Code)
	var sum activity.Summary
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &sum))
	assert.Equal(t, 30, sum.Days)
	assert.Equal(t, 10, sum.Sent)

	w = env.do(t, http.MethodGet, "/api/reports/summary?days=-1", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	w = env.do(t, http.MethodGet, "/api/reports/summary?days=abc", "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
