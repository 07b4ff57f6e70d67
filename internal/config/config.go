package config

import (
	"path/filepath"

	"github.com/adrg/xdg"
	"github.com/nao1215/csmareport/internal/model"
)

// Default configuration values.
const (
	// DefaultInputFile is the results file the simulator writes.
	DefaultInputFile = "wifi-adhoc-csma-ca-results.csv"

	// DefaultPanelOutput is the file name of the 2x2 performance panel.
	DefaultPanelOutput = "csma-ca-performance-results.png"

	// DefaultCollisionOutput is the file name of the collision chart.
	DefaultCollisionOutput = "csma-ca-collision-analysis.png"

	// DefaultDPI is the output resolution of both images.
	DefaultDPI = 300

	// MaxDPI caps the resolution. A 12x10 inch figure at 1200 DPI is
	// already a 170 megapixel image.
	MaxDPI = 1200

	// AppName is the application name used for XDG directory paths.
	AppName = "csmareport"
)

// Config holds all configuration options for one csmareport invocation.
// It is populated from CLI flags and passed down explicitly.
type Config struct {
	// InputPath is the CSV file to load.
	InputPath string

	// PanelOutput is where the 2x2 performance panel is written.
	PanelOutput string

	// CollisionOutput is where the collision chart is written.
	CollisionOutput string

	// DPI is the resolution of both images.
	DPI int

	// Show opens each image with the platform viewer after it is written.
	Show bool

	// Lookup selects how the baseline and peak delay rows are found.
	// Accepted values are "position" and "nodes".
	Lookup string

	// BaselineNodes and PeakNodes are the node counts searched for when
	// Lookup is "nodes".
	BaselineNodes int
	PeakNodes     int

	// Verbose enables debug logging.
	Verbose bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, .csmareport is searched for in the current directory
	// and then in the user's home directory.
	ConfigFilePath string

	// Charts holds chart overrides loaded from the configuration file.
	Charts *File

	// JSONReport prints the summary as JSON.
	// Mutually exclusive with MarkdownReport.
	JSONReport bool

	// MarkdownReport prints the summary as GitHub Flavored Markdown.
	// Mutually exclusive with JSONReport.
	MarkdownReport bool

	// ReportFile redirects the report from stdout to a file.
	ReportFile string

	// XLSXFile, when set, receives the augmented table and summary as an
	// Excel workbook.
	XLSXFile string

	// DBDir is the directory holding the run history database.
	// Defaults to XDG data directory (~/.local/share/csmareport on Linux).
	DBDir string

	// SaveToDB records the run in the history database.
	SaveToDB bool
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		InputPath:       DefaultInputFile,
		PanelOutput:     DefaultPanelOutput,
		CollisionOutput: DefaultCollisionOutput,
		DPI:             DefaultDPI,
		Show:            true,
		Lookup:          string(model.LookupPosition),
		BaselineNodes:   model.DefaultBaselineNodes,
		PeakNodes:       model.DefaultPeakNodes,
		SaveToDB:        true,
	}
}

// XDGDataDir returns the XDG data directory for csmareport.
// On Linux: ~/.local/share/csmareport
// On macOS: ~/Library/Application Support/csmareport
// On Windows: %LOCALAPPDATA%\csmareport
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for csmareport.
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// Validate checks if the configuration is valid and returns the first
// problem found.
func (c *Config) Validate() error {
	if c.InputPath == "" {
		return ErrNoInput
	}

	if c.PanelOutput == "" || c.CollisionOutput == "" {
		return ErrNoOutput
	}

	if filepath.Clean(c.PanelOutput) == filepath.Clean(c.CollisionOutput) {
		return ErrSameOutput
	}

	if c.DPI <= 0 || c.DPI > MaxDPI {
		return ErrInvalidDPI
	}

	if _, err := model.ParseDelayLookup(c.Lookup); err != nil {
		return ErrInvalidLookup
	}

	if c.BaselineNodes <= 0 || c.PeakNodes <= 0 {
		return ErrInvalidNodes
	}

	if c.JSONReport && c.MarkdownReport {
		return ErrConflictingReportFormats
	}

	if c.Charts != nil {
		if err := c.Charts.Validate(); err != nil {
			return err
		}
	}

	return nil
}

// SummaryOptions converts the delay lookup settings into model options.
// Call Validate first; an invalid lookup falls back to position.
func (c *Config) SummaryOptions() model.SummaryOptions {
	opts := model.DefaultSummaryOptions()
	if lookup, err := model.ParseDelayLookup(c.Lookup); err == nil {
		opts.Lookup = lookup
	}
	opts.BaselineNodes = c.BaselineNodes
	opts.PeakNodes = c.PeakNodes
	return opts
}
