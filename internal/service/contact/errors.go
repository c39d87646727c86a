package contact

import "errors"

var (
	ErrProjectTitleRequired = errors.New("project title is required")
	ErrNotFound             = errors.New("message not found")
)
