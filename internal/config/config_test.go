package config

import (
	"errors"
	"image/color"
	"os"
	"path/filepath"
	"testing"

	"github.com/nao1215/csmareport/internal/model"
)

// TestNewConfig verifies that NewConfig returns a Config with all expected default values.
func TestNewConfig(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()

	t.Run("default input is the simulator results file", func(t *testing.T) {
		t.Parallel()
		if cfg.InputPath != "wifi-adhoc-csma-ca-results.csv" {
			t.Errorf("expected InputPath to be 'wifi-adhoc-csma-ca-results.csv', got '%s'", cfg.InputPath)
		}
	})

	t.Run("default outputs", func(t *testing.T) {
		t.Parallel()
		if cfg.PanelOutput != "csma-ca-performance-results.png" {
			t.Errorf("unexpected PanelOutput '%s'", cfg.PanelOutput)
		}
		if cfg.CollisionOutput != "csma-ca-collision-analysis.png" {
			t.Errorf("unexpected CollisionOutput '%s'", cfg.CollisionOutput)
		}
	})

	t.Run("default DPI is 300", func(t *testing.T) {
		t.Parallel()
		if cfg.DPI != 300 {
			t.Errorf("expected DPI to be 300, got %d", cfg.DPI)
		}
	})

	t.Run("images are shown by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.Show {
			t.Error("expected Show to be true")
		}
	})

	t.Run("default lookup is position with 2 and 30 nodes", func(t *testing.T) {
		t.Parallel()
		if cfg.Lookup != "position" {
			t.Errorf("expected Lookup to be 'position', got '%s'", cfg.Lookup)
		}
		if cfg.BaselineNodes != 2 || cfg.PeakNodes != 30 {
			t.Errorf("expected 2 and 30 nodes, got %d and %d", cfg.BaselineNodes, cfg.PeakNodes)
		}
	})

	t.Run("history is saved by default", func(t *testing.T) {
		t.Parallel()
		if !cfg.SaveToDB {
			t.Error("expected SaveToDB to be true")
		}
	})

	t.Run("default config is valid", func(t *testing.T) {
		t.Parallel()
		if err := cfg.Validate(); err != nil {
			t.Errorf("expected no error, got %v", err)
		}
	})
}

// TestConfigValidate tests the Validate method with various configurations.
func TestConfigValidate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr error
	}{
		{
			name:   "lookup by nodes is valid",
			modify: func(c *Config) { c.Lookup = "nodes" },
		},
		{
			name:    "empty input returns ErrNoInput",
			modify:  func(c *Config) { c.InputPath = "" },
			wantErr: ErrNoInput,
		},
		{
			name:    "empty panel output returns ErrNoOutput",
			modify:  func(c *Config) { c.PanelOutput = "" },
			wantErr: ErrNoOutput,
		},
		{
			name:    "same output returns ErrSameOutput",
			modify:  func(c *Config) { c.CollisionOutput = "./" + c.PanelOutput },
			wantErr: ErrSameOutput,
		},
		{
			name:    "zero DPI returns ErrInvalidDPI",
			modify:  func(c *Config) { c.DPI = 0 },
			wantErr: ErrInvalidDPI,
		},
		{
			name:    "huge DPI returns ErrInvalidDPI",
			modify:  func(c *Config) { c.DPI = MaxDPI + 1 },
			wantErr: ErrInvalidDPI,
		},
		{
			name:    "unknown lookup returns ErrInvalidLookup",
			modify:  func(c *Config) { c.Lookup = "index" },
			wantErr: ErrInvalidLookup,
		},
		{
			name:    "zero peak nodes returns ErrInvalidNodes",
			modify:  func(c *Config) { c.PeakNodes = 0 },
			wantErr: ErrInvalidNodes,
		},
		{
			name: "json and markdown together returns ErrConflictingReportFormats",
			modify: func(c *Config) {
				c.JSONReport = true
				c.MarkdownReport = true
			},
			wantErr: ErrConflictingReportFormats,
		},
		{
			name: "unknown chart returns ErrUnknownChart",
			modify: func(c *Config) {
				c.Charts = &File{Charts: map[string]ChartConfig{"jitter": {Title: "Jitter"}}}
			},
			wantErr: ErrUnknownChart,
		},
		{
			name: "bad chart color returns ErrInvalidColor",
			modify: func(c *Config) {
				c.Charts = &File{Charts: map[string]ChartConfig{ChartPDR: {Color: "#12345"}}}
			},
			wantErr: ErrInvalidColor,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			cfg := NewConfig()
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("expected no error, got %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

// TestConfigSummaryOptions tests conversion into model options.
func TestConfigSummaryOptions(t *testing.T) {
	t.Parallel()

	cfg := NewConfig()
	cfg.Lookup = "nodes"
	cfg.BaselineNodes = 4
	cfg.PeakNodes = 20

	opts := cfg.SummaryOptions()
	if opts.Lookup != model.LookupNodes {
		t.Errorf("expected nodes lookup, got %q", opts.Lookup)
	}
	if opts.BaselineNodes != 4 || opts.PeakNodes != 20 {
		t.Errorf("expected 4 and 20 nodes, got %d and %d", opts.BaselineNodes, opts.PeakNodes)
	}
	if opts.BaselineRow != model.DefaultBaselineRow || opts.PeakRow != model.DefaultPeakRow {
		t.Errorf("expected default rows, got %d and %d", opts.BaselineRow, opts.PeakRow)
	}
}

// TestFileGetChartConfig tests merging of defaults and chart overrides.
func TestFileGetChartConfig(t *testing.T) {
	t.Parallel()

	t.Run("returns defaults when chart not configured", func(t *testing.T) {
		t.Parallel()

		cf := &File{Defaults: ChartConfig{XLabel: "Stations", Color: "black"}}
		got := cf.GetChartConfig(ChartDelay)
		if got.XLabel != "Stations" || got.Color != "black" {
			t.Errorf("expected defaults, got %+v", got)
		}
	})

	t.Run("chart values override defaults", func(t *testing.T) {
		t.Parallel()

		cf := &File{
			Defaults: ChartConfig{XLabel: "Stations", Color: "black"},
			Charts: map[string]ChartConfig{
				ChartPDR: {Title: "Delivery", Color: "#336699"},
			},
		}
		got := cf.GetChartConfig(ChartPDR)
		if got.Title != "Delivery" {
			t.Errorf("expected title 'Delivery', got %q", got.Title)
		}
		if got.Color != "#336699" {
			t.Errorf("expected chart color, got %q", got.Color)
		}
		if got.XLabel != "Stations" {
			t.Errorf("expected default x label, got %q", got.XLabel)
		}
	})

	t.Run("nil file returns empty config", func(t *testing.T) {
		t.Parallel()

		var cf *File
		if got := cf.GetChartConfig(ChartThroughput); got != (ChartConfig{}) {
			t.Errorf("expected empty config, got %+v", got)
		}
	})
}

// TestParseColor tests color names and hex values.
func TestParseColor(t *testing.T) {
	t.Parallel()

	tests := []struct {
		input   string
		want    color.RGBA
		wantErr bool
	}{
		{input: "blue", want: color.RGBA{B: 0xff, A: 0xff}},
		{input: " Orange ", want: color.RGBA{R: 0xff, G: 0xa5, A: 0xff}},
		{input: "#336699", want: color.RGBA{R: 0x33, G: 0x66, B: 0x99, A: 0xff}},
		{input: "#ABCDEF", want: color.RGBA{R: 0xab, G: 0xcd, B: 0xef, A: 0xff}},
		{input: "336699", wantErr: true},
		{input: "#zzzzzz", wantErr: true},
		{input: "chartreuse", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			t.Parallel()

			got, err := ParseColor(tt.input)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidColor) {
					t.Errorf("expected ErrInvalidColor, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if got != tt.want {
				t.Errorf("got %v, want %v", got, tt.want)
			}
		})
	}
}

// TestLoadConfigFile tests the LoadConfigFile function.
func TestLoadConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns ErrConfigNotFound for non-existent file", func(t *testing.T) {
		t.Parallel()

		cfg, err := LoadConfigFile("/nonexistent/path/.csmareport")
		if !errors.Is(err, ErrConfigNotFound) {
			t.Fatalf("expected ErrConfigNotFound, got: %v", err)
		}
		if cfg != nil {
			t.Error("expected nil config when file not found")
		}
	})

	t.Run("loads valid YAML config", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".csmareport")
		content := `title: "Ad-hoc Wi-Fi, 20 MHz"
defaults:
  xLabel: "Stations"
charts:
  throughput:
    color: "#1f77b4"
  collisions:
    title: "Collisions"
    yLabel: "Collision events"
`
		if err := os.WriteFile(configPath, []byte(content), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		if cf.Title != "Ad-hoc Wi-Fi, 20 MHz" {
			t.Errorf("unexpected title %q", cf.Title)
		}
		if cf.Defaults.XLabel != "Stations" {
			t.Errorf("expected default x label, got %q", cf.Defaults.XLabel)
		}
		collisions := cf.GetChartConfig(ChartCollisions)
		if collisions.YLabel != "Collision events" || collisions.XLabel != "Stations" {
			t.Errorf("unexpected collisions config %+v", collisions)
		}
		if err := cf.Validate(); err != nil {
			t.Errorf("expected valid file, got %v", err)
		}
	})

	t.Run("returns error for invalid YAML", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".csmareport")
		if err := os.WriteFile(configPath, []byte(`invalid: yaml: content: [}`), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if _, err := LoadConfigFile(configPath); err == nil {
			t.Error("expected error for invalid YAML")
		}
	})

	t.Run("initializes nil Charts map", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), ".csmareport")
		if err := os.WriteFile(configPath, []byte("title: x\n"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		cf, err := LoadConfigFile(configPath)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if cf.Charts == nil {
			t.Error("expected Charts map to be initialized")
		}
	})
}

// TestFindConfigFile tests the FindConfigFile function.
func TestFindConfigFile(t *testing.T) {
	t.Parallel()

	t.Run("returns explicit path if exists", func(t *testing.T) {
		t.Parallel()

		configPath := filepath.Join(t.TempDir(), "custom.yaml")
		if err := os.WriteFile(configPath, []byte("defaults: {}"), 0600); err != nil {
			t.Fatalf("failed to write test config: %v", err)
		}

		if result := FindConfigFile(configPath); result != configPath {
			t.Errorf("expected %q, got %q", configPath, result)
		}
	})

	t.Run("returns empty for non-existent explicit path", func(t *testing.T) {
		t.Parallel()

		if result := FindConfigFile("/nonexistent/path/config.yaml"); result != "" {
			t.Errorf("expected empty string, got %q", result)
		}
	})
}

// TestXDGDirs tests XDG directory functions.
func TestXDGDirs(t *testing.T) {
	t.Parallel()

	if filepath.Base(XDGDataDir()) != AppName {
		t.Errorf("expected data dir to end in %s, got %s", AppName, XDGDataDir())
	}
	if filepath.Base(XDGConfigDir()) != AppName {
		t.Errorf("expected config dir to end in %s, got %s", AppName, XDGConfigDir())
	}
}
