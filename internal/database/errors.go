package database

import "errors"

var (
	// ErrRunNotFound is returned when no stored run has the requested ID.
	ErrRunNotFound = errors.New("run not found")

	// ErrNoSummary is returned when saving a run that did not reach the summarize step.
	ErrNoSummary = errors.New("run has no summary")
)
