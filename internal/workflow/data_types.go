package workflow

import (
	"encoding/json"
	"sort"
	"strings"
	"sync"

	"github.com/ignite/email-subscribers/internal/domain"
)

// DataType interprets one kind of raw trigger payload.
type DataType interface {
	// ID is the key the payload is stored under in a DataLayer.
	ID() string
	// Validate reports whether payload has the shape this type expects.
	Validate(payload any) bool
	// ContactData extracts contact fields. Only called after Validate.
	ContactData(payload any) ContactData
}

// PayloadDecoder is implemented by data types that can rebuild their payload
// from JSON (inbound trigger requests).
type PayloadDecoder interface {
	Decode(raw []byte) (any, error)
}

// DataTypeRegistry maps data-type ids to their DataType. It is safe for
// concurrent use.
type DataTypeRegistry struct {
	mu    sync.RWMutex
	types map[string]DataType
}

// NewDataTypeRegistry returns a registry holding the given types.
func NewDataTypeRegistry(types ...DataType) *DataTypeRegistry {
	r := &DataTypeRegistry{types: make(map[string]DataType, len(types))}
	for _, t := range types {
		r.Register(t)
	}
	return r
}

// NewDefaultDataTypes returns a registry with the built-in comment, form
// submission and user data types.
func NewDefaultDataTypes() *DataTypeRegistry {
	return NewDataTypeRegistry(CommentType{}, FormSubmissionType{}, UserType{})
}

// Register adds or replaces a data type.
func (r *DataTypeRegistry) Register(t DataType) {
	r.mu.Lock()
	r.types[t.ID()] = t
	r.mu.Unlock()
}

// Get resolves a data-type id.
func (r *DataTypeRegistry) Get(id string) (DataType, bool) {
	if r == nil {
		return nil, false
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.types[id]
	return t, ok
}

// IDs returns the registered ids, sorted.
func (r *DataTypeRegistry) IDs() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	ids := make([]string, 0, len(r.types))
	for id := range r.types {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Decode turns a JSON payload into the typed value its data type expects.
// Unknown ids, types without a decoder and malformed JSON yield the raw
// bytes, which no built-in type validates.
func (r *DataTypeRegistry) Decode(id string, raw []byte) any {
	t, ok := r.Get(id)
	if !ok {
		return json.RawMessage(raw)
	}
	dec, ok := t.(PayloadDecoder)
	if !ok {
		return json.RawMessage(raw)
	}
	v, err := dec.Decode(raw)
	if err != nil {
		return json.RawMessage(raw)
	}
	return v
}

// ---------------------------------------------------------------------------
// Built-in data types
// ---------------------------------------------------------------------------

// Comment is the payload of the "comment" trigger data.
type Comment struct {
	ID          int64  `json:"id"`
	PostID      int64  `json:"post_id"`
	AuthorEmail string `json:"author_email"`
	AuthorName  string `json:"author_name"`
	AuthorIP    string `json:"author_ip"`
}

// CommentType handles *Comment payloads.
type CommentType struct{}

func (CommentType) ID() string { return "comment" }

func (CommentType) Validate(payload any) bool {
	_, ok := asComment(payload)
	return ok
}

func (CommentType) ContactData(payload any) ContactData {
	c, _ := asComment(payload)
	return ContactData{
		Email:  c.AuthorEmail,
		Name:   c.AuthorName,
		Source: domain.SourceComment,
		IP:     c.AuthorIP,
	}
}

func (CommentType) Decode(raw []byte) (any, error) {
	var c Comment
	if err := json.Unmarshal(raw, &c); err != nil {
		return nil, err
	}
	return &c, nil
}

func asComment(payload any) (*Comment, bool) {
	switch v := payload.(type) {
	case *Comment:
		return v, v != nil
	case Comment:
		return &v, true
	}
	return nil, false
}

// FormSubmission is the payload of the "form_submission" trigger data.
type FormSubmission struct {
	FormID    int64  `json:"form_id"`
	Email     string `json:"email"`
	Name      string `json:"name"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Status    string `json:"status"`
	IP        string `json:"ip"`
}

// FormSubmissionType handles *FormSubmission payloads.
type FormSubmissionType struct{}

func (FormSubmissionType) ID() string { return "form_submission" }

func (FormSubmissionType) Validate(payload any) bool {
	_, ok := asFormSubmission(payload)
	return ok
}

func (FormSubmissionType) ContactData(payload any) ContactData {
	f, _ := asFormSubmission(payload)
	return ContactData{
		Email:     f.Email,
		Name:      f.Name,
		FirstName: f.FirstName,
		LastName:  f.LastName,
		Status:    f.Status,
		Source:    domain.SourceForm,
		IP:        f.IP,
	}
}

func (FormSubmissionType) Decode(raw []byte) (any, error) {
	var f FormSubmission
	if err := json.Unmarshal(raw, &f); err != nil {
		return nil, err
	}
	return &f, nil
}

func asFormSubmission(payload any) (*FormSubmission, bool) {
	switch v := payload.(type) {
	case *FormSubmission:
		return v, v != nil
	case FormSubmission:
		return &v, true
	}
	return nil, false
}

// UserAccount is the payload of the "user" trigger data: a site user account.
type UserAccount struct {
	ID          int64  `json:"id"`
	Email       string `json:"email"`
	FirstName   string `json:"first_name"`
	LastName    string `json:"last_name"`
	DisplayName string `json:"display_name"`
}

// UserType handles *UserAccount payloads. Accounts without an id are invalid.
type UserType struct{}

func (UserType) ID() string { return "user" }

func (UserType) Validate(payload any) bool {
	u, ok := asUserAccount(payload)
	return ok && u.ID > 0
}

func (UserType) ContactData(payload any) ContactData {
	u, _ := asUserAccount(payload)
	return ContactData{
		Email:     u.Email,
		FirstName: u.FirstName,
		LastName:  u.LastName,
		Name:      strings.TrimSpace(u.DisplayName),
		WPUserID:  u.ID,
		Source:    domain.SourceWP,
	}
}

func (UserType) Decode(raw []byte) (any, error) {
	var u UserAccount
	if err := json.Unmarshal(raw, &u); err != nil {
		return nil, err
	}
	return &u, nil
}

func asUserAccount(payload any) (*UserAccount, bool) {
	switch v := payload.(type) {
	case *UserAccount:
		return v, v != nil
	case UserAccount:
		return &v, true
	}
	return nil, false
}
