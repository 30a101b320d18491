package domain

import "time"

// ActivityType identifies what a contact did (or had done to them).
// Values match the integer codes stored in the activity table.
type ActivityType int

const (
	ActivitySent        ActivityType = 1
	ActivityOpen        ActivityType = 2
	ActivityClick       ActivityType = 3
	ActivityUnsubscribe ActivityType = 5
)

func (t ActivityType) String() string {
	switch t {
	case ActivitySent:
		return "sent"
	case ActivityOpen:
		return "open"
	case ActivityClick:
		return "click"
	case ActivityUnsubscribe:
		return "unsubscribe"
	}
	return "unknown"
}

// ParseActivityType maps a name like "click" to its ActivityType.
func ParseActivityType(s string) (ActivityType, bool) {
	switch s {
	case "sent":
		return ActivitySent, true
	case "open":
		return ActivityOpen, true
	case "click":
		return ActivityClick, true
	case "unsubscribe":
		return ActivityUnsubscribe, true
	}
	return 0, false
}

// Activity is one row of the contact activity log. Repeated events for the
// same (contact, message, campaign, type, link, list) bump Count.
type Activity struct {
	ContactID   int64        `json:"contact_id" db:"contact_id"`
	MessageID   int64        `json:"message_id" db:"message_id"`
	CampaignID  int64        `json:"campaign_id" db:"campaign_id"`
	Type        ActivityType `json:"type" db:"type"`
	Count       int          `json:"count" db:"count"`
	LinkID      int64        `json:"link_id" db:"link_id"`
	ListID      int64        `json:"list_id" db:"list_id"`
	IP          string       `json:"ip" db:"ip"`
	Country     string       `json:"country" db:"country"`
	Device      string       `json:"device" db:"device"`
	Browser     string       `json:"browser" db:"browser"`
	EmailClient string       `json:"email_client" db:"email_client"`
	OS          string       `json:"os" db:"os"`
	CreatedAt   time.Time    `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time    `json:"updated_at" db:"updated_at"`
}
