package config

import "errors"

// Configuration validation errors returned by Config.Validate and File.Validate.
var (
	// ErrNoInput is returned when the input path is empty.
	ErrNoInput = errors.New("no input specified: provide a results CSV file")

	// ErrNoOutput is returned when an image output path is empty.
	ErrNoOutput = errors.New("no output specified: --panel-output and --collision-output must not be empty")

	// ErrSameOutput is returned when both images would be written to the same file.
	ErrSameOutput = errors.New("panel and collision outputs must be different files")

	// ErrInvalidDPI is returned when the resolution is not in (0, MaxDPI].
	ErrInvalidDPI = errors.New("invalid dpi: must be between 1 and 1200")

	// ErrInvalidLookup is returned for an unknown --lookup value.
	ErrInvalidLookup = errors.New("invalid lookup: must be 'position' or 'nodes'")

	// ErrInvalidNodes is returned when a baseline or peak node count is not positive.
	ErrInvalidNodes = errors.New("invalid node count: --baseline-nodes and --peak-nodes must be positive")

	// ErrConflictingReportFormats is returned when both --json and --markdown
	// are specified.
	ErrConflictingReportFormats = errors.New("conflicting report formats: --json and --markdown cannot be used together")

	// ErrUnknownChart is returned when the configuration file overrides a
	// chart that does not exist.
	ErrUnknownChart = errors.New("unknown chart in configuration file")

	// ErrInvalidColor is returned when a chart color is neither a known name
	// nor a #rrggbb value.
	ErrInvalidColor = errors.New("invalid chart color")
)
