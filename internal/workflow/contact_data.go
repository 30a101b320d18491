package workflow

import (
	"github.com/go-playground/validator/v10"
)

// ContactData is the normalized record a data type extracts from its raw
// payload. Empty strings mean "not supplied".
type ContactData struct {
	Email     string `json:"email"`
	Source    string `json:"source"`
	Status    string `json:"status,omitempty"`
	WPUserID  int64  `json:"wp_user_id,omitempty"`
	FirstName string `json:"first_name,omitempty"`
	LastName  string `json:"last_name,omitempty"`
	Name      string `json:"name,omitempty"`
	IP        string `json:"ip,omitempty"`
}

var validate = validator.New()

// ValidEmail reports whether s is a syntactically valid email address.
func ValidEmail(s string) bool {
	if s == "" {
		return false
	}
	return validate.Var(s, "email") == nil
}
