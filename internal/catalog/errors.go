package catalog

import "errors"

// Catalog validation and lookup errors.
var (
	// ErrEmptyID is returned when a tool record has no id.
	ErrEmptyID = errors.New("tool id cannot be empty")

	// ErrEmptyDescription is returned when a tool record has no description.
	ErrEmptyDescription = errors.New("tool description cannot be empty")

	// ErrNotFound is returned when removing an unregistered tool.
	ErrNotFound = errors.New("tool not found")
)
