package pipeline

import "errors"

// ErrNoTable is returned by steps that need a table when the load step has not run.
var ErrNoTable = errors.New("no table loaded")
