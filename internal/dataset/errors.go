package dataset

import "errors"

// Parse errors. File access errors from the operating system are wrapped
// rather than replaced, so errors.Is(err, fs.ErrNotExist) keeps working.
var (
	// ErrNoHeader is returned when the input is empty.
	ErrNoHeader = errors.New("input has no header row")

	// ErrMissingColumn is returned when a required column is absent from the header.
	ErrMissingColumn = errors.New("missing required column")

	// ErrMalformedValue is returned when a cell cannot be parsed as a number.
	ErrMalformedValue = errors.New("malformed value")
)
