package contact

import "errors"

// Sentinel errors for the contact service layer.
var (
	ErrNotFound       = errors.New("contact not found")
	ErrInvalidContact = errors.New("invalid contact")
	ErrListNotFound   = errors.New("list not found")
	ErrBusy           = errors.New("contact is being admitted by another worker")
)
