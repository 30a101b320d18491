package activity

import "errors"

// Sentinel errors for the activity service layer.
var (
	ErrInvalidActivity = errors.New("invalid activity")
)
