package workflow

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/ignite/email-subscribers/internal/domain"
)

// ActionAddToList is the registry name of the add-to-list action.
const ActionAddToList = "add_to_list"

// OptionListID is the add-to-list option holding the target list id.
const OptionListID = "list_id"

// AdmitFunc receives a fully normalized contact ready to be stored and
// associated with listID. It reports nothing back.
type AdmitFunc func(ctx context.Context, contact domain.Contact, listID int64)

// AddToList adds the contacts found in a trigger's data to one list.
//
// Invalid input is never an error: entries whose data type is unknown or
// invalid, and records without a valid email or a source, are skipped.
type AddToList struct {
	listID  int64
	types   *DataTypeRegistry
	admit   AdmitFunc
	names   NameParser
	now     func() time.Time
	newHash func() string
}

// AddToListOption customizes an AddToList.
type AddToListOption func(*AddToList)

// WithNameParser replaces SplitFullName.
func WithNameParser(p NameParser) AddToListOption {
	return func(a *AddToList) { a.names = p }
}

// WithClock replaces time.Now for created_at stamps.
func WithClock(now func() time.Time) AddToListOption {
	return func(a *AddToList) { a.now = now }
}

// NewAddToList returns an unconfigured action; call Configure before
// Execute.
func NewAddToList(types *DataTypeRegistry, admit AdmitFunc, opts ...AddToListOption) *AddToList {
	a := &AddToList{
		types:   types,
		admit:   admit,
		names:   SplitFullName,
		now:     time.Now,
		newHash: uuid.NewString,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// AddToListFactory builds add-to-list actions from their saved options.
func AddToListFactory(types *DataTypeRegistry, admit AdmitFunc, opts ...AddToListOption) ActionFactory {
	return func(cfg ActionConfig) (Action, error) {
		a := NewAddToList(types, admit, opts...)
		a.Configure(optionInt64(cfg.Options, OptionListID))
		return a, nil
	}
}

// Configure binds the action to its target list. A zero id is accepted;
// Execute then does nothing.
func (a *AddToList) Configure(listID int64) { a.listID = listID }

// ListID returns the configured target list.
func (a *AddToList) ListID() int64 { return a.listID }

func (a *AddToList) Name() string  { return ActionAddToList }
func (a *AddToList) Title() string { return "Add to list" }
func (a *AddToList) Group() string { return "List" }

// Run implements Action. It never fails.
func (a *AddToList) Run(ctx context.Context, data *DataLayer) error {
	a.Execute(ctx, data)
	return nil
}

// Execute admits the contact carried by every valid entry of data, in
// insertion order.
func (a *AddToList) Execute(ctx context.Context, data *DataLayer) {
	if a.listID == 0 {
		return
	}
	data.Each(func(typeID string, payload any) {
		dt, ok := a.types.Get(typeID)
		if !ok || !dt.Validate(payload) {
			return
		}
		a.Admit(ctx, a.listID, dt.ContactData(payload))
	})
}

// Admit normalizes data and hands it to the admit callback.
func (a *AddToList) Admit(ctx context.Context, listID int64, data ContactData) {
	if listID == 0 {
		return
	}
	if data.Email == "" || !ValidEmail(data.Email) {
		return
	}
	source := strings.TrimSpace(data.Source)
	if source == "" {
		return
	}
	email := strings.TrimSpace(data.Email)

	status := domain.ContactVerified
	if s := strings.TrimSpace(data.Status); s != "" {
		status = domain.ContactStatus(s)
	}

	var first, last string
	if data.FirstName != "" {
		first, last = data.FirstName, data.LastName
	} else if name := strings.TrimSpace(data.Name); name != "" {
		first, last = a.names(name)
	} else {
		first = NameFromEmail(email)
	}

	if a.admit == nil {
		return
	}
	a.admit(ctx, domain.Contact{
		Email:     email,
		FirstName: first,
		LastName:  last,
		Source:    source,
		Status:    status,
		Hash:      a.newHash(),
		CreatedAt: a.now(),
		WPUserID:  data.WPUserID,
		IP:        strings.TrimSpace(data.IP),
	}, listID)
}
