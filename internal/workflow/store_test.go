package workflow

import (
	"context"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewStore(db), mock
}

var workflowCols = []string{"id", "name", "trigger_name", "status", "actions", "created_at", "updated_at"}

func TestStore_ListByTrigger(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()
	now := time.Now()

	mock.ExpectQuery(regexp.QuoteMeta(`WHERE trigger_name = $1 AND status = 'active'`)).
		WithArgs(TriggerCommentAdded).
		WillReturnRows(sqlmock.NewRows(workflowCols).
			AddRow(id.String(), "Commenters", TriggerCommentAdded, StatusActive,
				[]byte(`[{"name":"add_to_list","options":{"list_id":2}}]`), now, now))

	flows, err := store.ListByTrigger(context.Background(), TriggerCommentAdded)
	require.NoError(t, err)
	require.Len(t, flows, 1)
	assert.Equal(t, id, flows[0].ID)
	require.Len(t, flows[0].Actions, 1)
	assert.Equal(t, ActionAddToList, flows[0].Actions[0].Name)
	assert.Equal(t, int64(2), optionInt64(flows[0].Actions[0].Options, OptionListID))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_GetNotFound(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectQuery(`FROM es_workflows WHERE id = \$1`).
		WithArgs(id).
		WillReturnRows(sqlmock.NewRows(workflowCols))

	_, err := store.Get(context.Background(), id)
	assert.ErrorIs(t, err, ErrWorkflowNotFound)
}

func TestStore_CreateDefaultsStatus(t *testing.T) {
	store, mock := newMockStore(t)
	now := time.Now()

	mock.ExpectQuery(`INSERT INTO es_workflows`).
		WithArgs(sqlmock.AnyArg(), "New signups", TriggerUserRegistered, StatusActive, sqlmock.AnyArg()).
		WillReturnRows(sqlmock.NewRows([]string{"created_at", "updated_at"}).AddRow(now, now))

	w := &Workflow{Name: "New signups", Trigger: TriggerUserRegistered, Actions: []ActionConfig{{Name: ActionAddToList}}}
	require.NoError(t, store.Create(context.Background(), w))
	assert.NotEqual(t, uuid.Nil, w.ID)
	assert.Equal(t, StatusActive, w.Status)
	assert.Equal(t, now, w.CreatedAt)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestStore_UpdateStatusMissing(t *testing.T) {
	store, mock := newMockStore(t)
	id := uuid.New()

	mock.ExpectExec(`UPDATE es_workflows SET status`).
		WithArgs(StatusInactive, id).
		WillReturnResult(sqlmock.NewResult(0, 0))

	assert.ErrorIs(t, store.UpdateStatus(context.Background(), id, StatusInactive), ErrWorkflowNotFound)
}
