package workflow

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeSource struct {
	flows map[string][]Workflow
	err   error
}

func (f *fakeSource) ListByTrigger(_ context.Context, trigger string) ([]Workflow, error) {
	return f.flows[trigger], f.err
}

type countingAction struct {
	name string
	runs *[]string
	err  error
}

func (c *countingAction) Name() string  { return c.name }
func (c *countingAction) Title() string { return c.name }
func (c *countingAction) Group() string { return "Test" }
func (c *countingAction) Run(context.Context, *DataLayer) error {
	*c.runs = append(*c.runs, c.name)
	return c.err
}

func TestEngineTrigger_RunsActionsInOrderAndSurvivesFailures(t *testing.T) {
	var runs []string
	reg := NewActionRegistry()
	reg.Register("ok", func(cfg ActionConfig) (Action, error) {
		return &countingAction{name: "ok:" + optionString(cfg.Options, "tag"), runs: &runs}, nil
	})
	reg.Register("boom", func(ActionConfig) (Action, error) {
		return &countingAction{name: "boom", runs: &runs, err: errors.New("failed")}, nil
	})

	src := &fakeSource{flows: map[string][]Workflow{
		TriggerFormSubmitted: {
			{ID: uuid.New(), Status: StatusActive, Actions: []ActionConfig{
				{Name: "ok", Options: map[string]any{"tag": "1"}},
				{Name: "boom"},
				{Name: "missing"},
				{Name: "ok", Options: map[string]any{"tag": "2"}},
			}},
			{ID: uuid.New(), Status: StatusInactive, Actions: []ActionConfig{{Name: "ok", Options: map[string]any{"tag": "skipped"}}}},
		},
	}}

	n, err := NewEngine(src, reg).Trigger(context.Background(), TriggerFormSubmitted, NewDataLayer())
	require.NoError(t, err)
	assert.Equal(t, 3, n)
	assert.Equal(t, []string{"ok:1", "boom", "ok:2"}, runs)
}

func TestEngineTrigger_SourceError(t *testing.T) {
	src := &fakeSource{err: errors.New("db down")}
	_, err := NewEngine(src, NewActionRegistry()).Trigger(context.Background(), "x", NewDataLayer())
	assert.Error(t, err)
}

func TestEngineTrigger_AddToListEndToEnd(t *testing.T) {
	rec := &recorder{}
	types := NewDefaultDataTypes()
	reg := NewActionRegistry()
	reg.Register(ActionAddToList, AddToListFactory(types, rec.admit))

	src := &fakeSource{flows: map[string][]Workflow{
		TriggerCommentAdded: {{ID: uuid.New(), Status: StatusActive, Actions: []ActionConfig{
			{Name: ActionAddToList, Options: map[string]any{OptionListID: "3"}},
		}}},
	}}

	data := NewDataLayer().Set("comment", &Comment{AuthorEmail: "fan@example.com", AuthorName: "Big Fan"})
	n, err := NewEngine(src, reg).Trigger(context.Background(), TriggerCommentAdded, data)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	require.Len(t, rec.got, 1)
	assert.Equal(t, int64(3), rec.got[0].listID)
	assert.Equal(t, "Big", rec.got[0].contact.FirstName)
	assert.Equal(t, "Fan", rec.got[0].contact.LastName)
}

func TestActionRegistry_UnknownAction(t *testing.T) {
	reg := NewActionRegistry()
	reg.Register("b", nil)
	reg.Register("a", nil)
	assert.Equal(t, []string{"a", "b"}, reg.Names())

	_, err := reg.Build(ActionConfig{Name: "nope"})
	assert.ErrorIs(t, err, ErrUnknownAction)
}
