package chart

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"hash/crc32"
	"image/color"
	"io"
	"log/slog"
	"math"
	"os"
	"path/filepath"

	"github.com/nao1215/csmareport/internal/config"
	"github.com/nao1215/csmareport/internal/model"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"
)

// Figure sizes.
const (
	PanelWidth      = 12 * vg.Inch
	PanelHeight     = 10 * vg.Inch
	CollisionWidth  = 10 * vg.Inch
	CollisionHeight = 6 * vg.Inch

	// DefaultDPI is used when no WithDPI option is given.
	DefaultDPI = 300
)

const (
	panelRows = 2
	panelCols = 2

	figureTitleSize = 16
	lineWidth       = 1.5
	markerRadius    = 3
)

// Renderer draws charts from a derived table.
type Renderer struct {
	dpi    int
	charts *config.File
	logger *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithDPI sets the output resolution.
func WithDPI(dpi int) Option {
	return func(r *Renderer) {
		r.dpi = dpi
	}
}

// WithConfig applies the figure title and chart overrides of a
// configuration file. A nil file is ignored.
func WithConfig(cf *config.File) Option {
	return func(r *Renderer) {
		r.charts = cf
	}
}

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// NewRenderer creates a Renderer with the given options.
func NewRenderer(opts ...Option) *Renderer {
	r := &Renderer{
		dpi:    DefaultDPI,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// FigureTitle returns the title drawn above the panel.
func (r *Renderer) FigureTitle() string {
	if r.charts != nil && r.charts.Title != "" {
		return r.charts.Title
	}
	return DefaultFigureTitle
}

// Spec returns s with the configured overrides applied.
func (r *Renderer) Spec(s Spec) (Spec, error) {
	applied, err := s.Apply(r.charts.GetChartConfig(s.Name))
	if err != nil {
		return s, fmt.Errorf("chart %s: %w", s.Name, err)
	}
	return applied, nil
}

// RenderPanel writes the 2x2 performance panel to path.
// The table must be derived.
func (r *Renderer) RenderPanel(t *model.Table, path string) error {
	if r.dpi <= 0 {
		return ErrInvalidDPI
	}

	plots := make([][]*plot.Plot, panelRows)
	for i, s := range PanelSpecs() {
		p, err := r.newPlot(t, s)
		if err != nil {
			return err
		}
		row := i / panelCols
		plots[row] = append(plots[row], p)
	}

	img := vgimg.NewWith(vgimg.UseWH(PanelWidth, PanelHeight), vgimg.UseDPI(r.dpi))
	dc := draw.New(img)

	titleStyle := text.Style{
		Color:   color.Black,
		Font:    font.From(plot.DefaultFont, figureTitleSize),
		XAlign:  text.XCenter,
		YAlign:  text.YTop,
		Handler: plot.DefaultTextHandler,
	}
	pad := vg.Points(figureTitleSize) / 2
	titleHeight := titleStyle.Height(r.FigureTitle()) + 2*pad
	dc.FillText(titleStyle, vg.Point{X: (dc.Min.X + dc.Max.X) / 2, Y: dc.Max.Y - pad}, r.FigureTitle())

	tiles := draw.Tiles{
		Rows:      panelRows,
		Cols:      panelCols,
		PadTop:    titleHeight,
		PadBottom: vg.Points(8),
		PadLeft:   vg.Points(8),
		PadRight:  vg.Points(8),
		PadX:      vg.Points(24),
		PadY:      vg.Points(24),
	}
	canvases := plot.Align(plots, tiles, dc)
	for row := range plots {
		for col := range plots[row] {
			plots[row][col].Draw(canvases[row][col])
		}
	}

	return writePNG(img, r.dpi, path)
}

// RenderCollisions writes the collision chart to path.
func (r *Renderer) RenderCollisions(t *model.Table, path string) error {
	if r.dpi <= 0 {
		return ErrInvalidDPI
	}

	p, err := r.newPlot(t, CollisionSpec())
	if err != nil {
		return err
	}

	img := vgimg.NewWith(vgimg.UseWH(CollisionWidth, CollisionHeight), vgimg.UseDPI(r.dpi))
	p.Draw(draw.New(img))

	return writePNG(img, r.dpi, path)
}

// newPlot builds one "o-" style line chart with grid lines.
func (r *Renderer) newPlot(t *model.Table, s Spec) (*plot.Plot, error) {
	s, err := r.Spec(s)
	if err != nil {
		return nil, err
	}

	xys, dropped, err := points(t, s.Column)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", s.Name, err)
	}
	if len(dropped) > 0 {
		r.logger.Debug("non-finite points left out of chart", "chart", s.Name, "rows", dropped)
	}

	p := plot.New()
	p.Title.Text = s.Title
	p.X.Label.Text = s.XLabel
	p.Y.Label.Text = s.YLabel
	p.Add(plotter.NewGrid())

	line, scatter, err := plotter.NewLinePoints(xys)
	if err != nil {
		return nil, fmt.Errorf("chart %s: %w", s.Name, err)
	}
	line.Color = s.Color
	line.Width = vg.Points(lineWidth)
	scatter.GlyphStyle.Color = s.Color
	scatter.GlyphStyle.Shape = draw.CircleGlyph{}
	scatter.GlyphStyle.Radius = vg.Points(markerRadius)
	p.Add(line, scatter)

	// Add widens the axes to the data, so fixed ranges go last.
	if s.FixedY {
		p.Y.Min = s.YMin
		p.Y.Max = s.YMax
	}

	return p, nil
}

// points pairs Nodes with the values of column c in row order. Rows whose
// value is not finite are skipped and their indices returned.
func points(t *model.Table, c model.Column) (plotter.XYs, []int, error) {
	nodes, err := t.Column(model.ColumnNodes)
	if err != nil {
		return nil, nil, err
	}
	values, err := t.Column(c)
	if err != nil {
		return nil, nil, err
	}

	xys := make(plotter.XYs, 0, len(values))
	var dropped []int
	for i, v := range values {
		if !model.IsFinite(v) {
			dropped = append(dropped, i)
			continue
		}
		xys = append(xys, plotter.XY{X: nodes[i], Y: v})
	}
	return xys, dropped, nil
}

// writePNG encodes img to path, creating parent directories as needed.
func writePNG(img *vgimg.Canvas, dpi int, path string) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return fmt.Errorf("failed to create output directory: %w", err)
		}
	}

	f, err := os.Create(path) //nolint:gosec // User-provided output path is intentional
	if err != nil {
		return fmt.Errorf("failed to create image file: %w", err)
	}
	if err := encodePNG(img, dpi, f); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}

const (
	// pngHeaderLen covers the signature and the IHDR chunk, which
	// image/png always writes first.
	pngHeaderLen  = 8 + 4 + 4 + 13 + 4
	metresPerInch = 0.0254
)

// encodePNG writes img as PNG with a pHYs chunk recording dpi, so image
// viewers and print tools see the intended physical size.
func encodePNG(img *vgimg.Canvas, dpi int, w io.Writer) error {
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: img}).WriteTo(&buf); err != nil {
		return err
	}

	data := buf.Bytes()
	if len(data) < pngHeaderLen || string(data[12:16]) != "IHDR" {
		return ErrUnexpectedPNG
	}
	for _, part := range [][]byte{data[:pngHeaderLen], physChunk(dpi), data[pngHeaderLen:]} {
		if _, err := w.Write(part); err != nil {
			return err
		}
	}
	return nil
}

// physChunk returns a PNG pHYs chunk declaring dpi in pixels per metre.
func physChunk(dpi int) []byte {
	ppm := uint32(math.Round(float64(dpi) / metresPerInch))

	chunk := make([]byte, 0, 4+4+9+4)
	chunk = binary.BigEndian.AppendUint32(chunk, 9)
	chunk = append(chunk, "pHYs"...)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = binary.BigEndian.AppendUint32(chunk, ppm)
	chunk = append(chunk, 1) // unit: metre
	return binary.BigEndian.AppendUint32(chunk, crc32.ChecksumIEEE(chunk[4:]))
}
