package domain

import "time"

// ContactStatus enumerates the states a contact can be in.
type ContactStatus string

const (
	ContactVerified     ContactStatus = "verified"
	ContactSubscribed   ContactStatus = "subscribed"
	ContactUnconfirmed  ContactStatus = "unconfirmed"
	ContactUnsubscribed ContactStatus = "unsubscribed"
)

// Valid reports whether s is a known contact status.
func (s ContactStatus) Valid() bool {
	switch s {
	case ContactVerified, ContactSubscribed, ContactUnconfirmed, ContactUnsubscribed:
		return true
	}
	return false
}

// Contact sources used by the built-in workflow data types.
const (
	SourceAdmin   = "admin"
	SourceForm    = "form"
	SourceAPI     = "api"
	SourceComment = "comment"
	SourceWP      = "wp"
)

// Contact is a subscriber identity. Email is the unique key.
type Contact struct {
	ID        int64         `json:"id,omitempty" db:"id"`
	Email     string        `json:"email" db:"email"`
	FirstName string        `json:"first_name" db:"first_name"`
	LastName  string        `json:"last_name" db:"last_name"`
	Source    string        `json:"source" db:"source"`
	Status    ContactStatus `json:"status" db:"status"`
	Hash      string        `json:"hash" db:"hash"`
	WPUserID  int64         `json:"wp_user_id" db:"wp_user_id"`
	CreatedAt time.Time     `json:"created_at" db:"created_at"`
	UpdatedAt *time.Time    `json:"updated_at,omitempty" db:"updated_at"`

	// IP is the address the admission came from. It is stored on the list
	// membership, not the contact row.
	IP string `json:"ip,omitempty" db:"-"`
}

// List is a named collection of contacts used as a send target.
type List struct {
	ID        int64     `json:"id" db:"id"`
	Name      string    `json:"name" db:"name"`
	Slug      string    `json:"slug" db:"slug"`
	CreatedAt time.Time `json:"created_at" db:"created_at"`
}

// MembershipStatus is the subscription state of a contact within one list.
type MembershipStatus string

const (
	MembershipSubscribed   MembershipStatus = "subscribed"
	MembershipUnsubscribed MembershipStatus = "unsubscribed"
	MembershipUnconfirmed  MembershipStatus = "unconfirmed"
)

// OptinType is the confirmation policy applied when a contact joins a list.
type OptinType int

const (
	OptinSingle OptinType = 1
	OptinDouble OptinType = 2
)

func (o OptinType) String() string {
	if o == OptinDouble {
		return "double"
	}
	return "single"
}

// ParseOptinType maps "double" to OptinDouble; anything else is single opt-in.
func ParseOptinType(s string) OptinType {
	if s == "double" {
		return OptinDouble
	}
	return OptinSingle
}

// ListMembership associates a contact with a list.
type ListMembership struct {
	ID           int64            `json:"id,omitempty" db:"id"`
	ContactID    int64            `json:"contact_id" db:"contact_id"`
	ListID       int64            `json:"list_id" db:"list_id"`
	Status       MembershipStatus `json:"status" db:"status"`
	OptinType    OptinType        `json:"optin_type" db:"optin_type"`
	SubscribedAt time.Time        `json:"subscribed_at" db:"subscribed_at"`
	SubscribedIP string           `json:"subscribed_ip" db:"subscribed_ip"`
}
