package config

import (
	"fmt"
	"image/color"
	"strconv"
	"strings"
)

// Chart names accepted as keys of the charts section.
const (
	ChartThroughput        = "throughput"
	ChartPerNodeThroughput = "per_node_throughput"
	ChartPDR               = "pdr"
	ChartDelay             = "delay"
	ChartCollisions        = "collisions"
)

// ChartNames returns every chart name in drawing order.
func ChartNames() []string {
	return []string{
		ChartThroughput,
		ChartPerNodeThroughput,
		ChartPDR,
		ChartDelay,
		ChartCollisions,
	}
}

// ChartConfig overrides the labels and color of one chart.
// Empty fields keep the built-in value.
type ChartConfig struct {
	// Title is drawn above the chart.
	Title string `yaml:"title,omitempty"`

	// XLabel is the x axis label.
	XLabel string `yaml:"xLabel,omitempty"`

	// YLabel is the y axis label.
	YLabel string `yaml:"yLabel,omitempty"`

	// Color is a color name (blue, green, red, purple, orange, ...) or #rrggbb.
	Color string `yaml:"color,omitempty"`
}

// File represents the structure of the .csmareport configuration file.
type File struct {
	// Title replaces the figure title of the performance panel.
	Title string `yaml:"title,omitempty"`

	// Charts maps chart names to their overrides.
	Charts map[string]ChartConfig `yaml:"charts,omitempty"`

	// Defaults is applied to every chart unless the chart sets its own value.
	Defaults ChartConfig `yaml:"defaults,omitempty"`
}

// GetChartConfig returns the overrides for a chart, merged with defaults.
func (cf *File) GetChartConfig(name string) ChartConfig {
	if cf == nil {
		return ChartConfig{}
	}

	result := cf.Defaults

	if chart, ok := cf.Charts[name]; ok {
		if chart.Title != "" {
			result.Title = chart.Title
		}
		if chart.XLabel != "" {
			result.XLabel = chart.XLabel
		}
		if chart.YLabel != "" {
			result.YLabel = chart.YLabel
		}
		if chart.Color != "" {
			result.Color = chart.Color
		}
	}

	return result
}

// Validate reports unknown chart names and unparsable colors.
func (cf *File) Validate() error {
	known := make(map[string]struct{}, len(ChartNames()))
	for _, name := range ChartNames() {
		known[name] = struct{}{}
	}

	if cf.Defaults.Color != "" {
		if _, err := ParseColor(cf.Defaults.Color); err != nil {
			return err
		}
	}
	for name, chart := range cf.Charts {
		if _, ok := known[name]; !ok {
			return fmt.Errorf("%w: %q", ErrUnknownChart, name)
		}
		if chart.Color == "" {
			continue
		}
		if _, err := ParseColor(chart.Color); err != nil {
			return fmt.Errorf("chart %q: %w", name, err)
		}
	}
	return nil
}

// namedColors holds the color names most plotting tools understand.
var namedColors = map[string]color.RGBA{
	"black":  {R: 0x00, G: 0x00, B: 0x00, A: 0xff},
	"blue":   {R: 0x00, G: 0x00, B: 0xff, A: 0xff},
	"brown":  {R: 0xa5, G: 0x2a, B: 0x2a, A: 0xff},
	"cyan":   {R: 0x00, G: 0xff, B: 0xff, A: 0xff},
	"gray":   {R: 0x80, G: 0x80, B: 0x80, A: 0xff},
	"green":  {R: 0x00, G: 0x80, B: 0x00, A: 0xff},
	"orange": {R: 0xff, G: 0xa5, B: 0x00, A: 0xff},
	"pink":   {R: 0xff, G: 0xc0, B: 0xcb, A: 0xff},
	"purple": {R: 0x80, G: 0x00, B: 0x80, A: 0xff},
	"red":    {R: 0xff, G: 0x00, B: 0x00, A: 0xff},
}

// ParseColor parses a color name or a #rrggbb value.
func ParseColor(s string) (color.RGBA, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if c, ok := namedColors[s]; ok {
		return c, nil
	}

	hex, ok := strings.CutPrefix(s, "#")
	if !ok || len(hex) != 6 {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	v, err := strconv.ParseUint(hex, 16, 32)
	if err != nil {
		return color.RGBA{}, fmt.Errorf("%w: %q", ErrInvalidColor, s)
	}
	return color.RGBA{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v), A: 0xff}, nil
}
