package workflow

import "errors"

var (
	ErrWorkflowNotFound = errors.New("workflow not found")
	ErrUnknownAction    = errors.New("unknown workflow action")
	ErrMissingOption    = errors.New("required action option missing")
)
