package chart

import (
	"image/color"

	"github.com/nao1215/csmareport/internal/config"
	"github.com/nao1215/csmareport/internal/model"
)

// DefaultFigureTitle is drawn above the 2x2 panel.
const DefaultFigureTitle = "CSMA/CA Performance in Ad-hoc Wi-Fi without RTS/CTS"

// xLabel is shared by every chart.
const xLabel = "Number of Nodes"

// Spec describes one chart: which column is drawn and how it is labelled.
type Spec struct {
	// Name is the key used for overrides in the configuration file.
	Name string

	// Column is plotted on the y axis against Nodes.
	Column model.Column

	Title  string
	XLabel string
	YLabel string
	Color  color.Color

	// FixedY pins the y axis to [YMin, YMax] instead of the data range.
	FixedY bool
	YMin   float64
	YMax   float64
}

var (
	blue   = color.RGBA{B: 0xff, A: 0xff}
	green  = color.RGBA{G: 0x80, A: 0xff}
	red    = color.RGBA{R: 0xff, A: 0xff}
	purple = color.RGBA{R: 0x80, B: 0x80, A: 0xff}
	orange = color.RGBA{R: 0xff, G: 0xa5, A: 0xff}
)

// PanelSpecs returns the four panel charts in row-major order.
func PanelSpecs() []Spec {
	return []Spec{
		{
			Name:   config.ChartThroughput,
			Column: model.ColumnThroughput,
			Title:  "Throughput vs. Node Count",
			XLabel: xLabel,
			YLabel: "Aggregate Throughput (Mbps)",
			Color:  blue,
		},
		{
			Name:   config.ChartPerNodeThroughput,
			Column: model.ColumnPerNodeThroughput,
			Title:  "Per-Node Throughput vs. Node Count",
			XLabel: xLabel,
			YLabel: "Per-Node Throughput (Mbps)",
			Color:  green,
		},
		{
			Name:   config.ChartPDR,
			Column: model.ColumnPDR,
			Title:  "Packet Delivery Ratio vs. Node Count",
			XLabel: xLabel,
			YLabel: "Packet Delivery Ratio",
			Color:  red,
			FixedY: true,
			YMin:   0,
			YMax:   1.1,
		},
		{
			Name:   config.ChartDelay,
			Column: model.ColumnDelay,
			Title:  "End-to-End Delay vs. Node Count",
			XLabel: xLabel,
			YLabel: "Average Delay (ms)",
			Color:  purple,
		},
	}
}

// CollisionSpec returns the standalone collision chart.
func CollisionSpec() Spec {
	return Spec{
		Name:   config.ChartCollisions,
		Column: model.ColumnCollisions,
		Title:  "Collision Count vs. Node Count in CSMA/CA without RTS/CTS",
		XLabel: xLabel,
		YLabel: "Estimated Collisions",
		Color:  orange,
	}
}

// Apply returns a copy of s with the non-empty fields of cc applied.
func (s Spec) Apply(cc config.ChartConfig) (Spec, error) {
	if cc.Title != "" {
		s.Title = cc.Title
	}
	if cc.XLabel != "" {
		s.XLabel = cc.XLabel
	}
	if cc.YLabel != "" {
		s.YLabel = cc.YLabel
	}
	if cc.Color != "" {
		c, err := config.ParseColor(cc.Color)
		if err != nil {
			return s, err
		}
		s.Color = c
	}
	return s, nil
}
