package report

import (
	"context"
	"fmt"
	"image/color"
	"os"
	"path/filepath"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"

	"customer-segmentation/internal/customer"
)

// Sink receives rendered charts.
type Sink interface {
	Render(ctx context.Context, chart Chart) error
}

// RenderAll renders charts in order and stops at the first failure.
func RenderAll(ctx context.Context, sink Sink, charts []Chart) error {
	for _, c := range charts {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := sink.Render(ctx, c); err != nil {
			return fmt.Errorf("render %s chart %s: %w", c.Kind, c.Path, err)
		}
	}
	return nil
}

// Tier colours, High to Low.
var palette = []color.Color{
	color.RGBA{R: 68, G: 1, B: 84, A: 255},
	color.RGBA{R: 33, G: 145, B: 140, A: 255},
	color.RGBA{R: 253, G: 231, B: 37, A: 255},
}

func paletteColor(i int) color.Color {
	return palette[i%len(palette)]
}

// PNGSink draws charts with gonum/plot and saves them at chart.Path. The
// image format follows the file extension.
type PNGSink struct {
	Width  vg.Length
	Height vg.Length
}

func NewPNGSink() *PNGSink {
	return &PNGSink{Width: 6 * vg.Inch, Height: 4 * vg.Inch}
}

func (s *PNGSink) Render(ctx context.Context, chart Chart) error {
	p, err := Plot(chart)
	if err != nil {
		return err
	}

	if err := os.MkdirAll(filepath.Dir(chart.Path), 0755); err != nil {
		return fmt.Errorf("%w: failed to create folder: %v", customer.ErrIO, err)
	}
	if err := p.Save(s.Width, s.Height, chart.Path); err != nil {
		return fmt.Errorf("%w: failed to save chart: %v", customer.ErrIO, err)
	}
	return nil
}

// Plot builds the gonum plot for a chart without saving it.
func Plot(chart Chart) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = chart.Title
	p.X.Label.Text = chart.XLabel
	p.Y.Label.Text = chart.YLabel

	switch chart.Kind {
	case Bar:
		for i, n := range chart.Counts {
			bars, err := plotter.NewBarChart(plotter.Values{n}, vg.Points(40))
			if err != nil {
				return nil, err
			}
			bars.XMin = float64(i)
			bars.Color = paletteColor(i)
			bars.LineStyle.Width = vg.Length(0)
			p.Add(bars)
		}
		p.NominalX(chart.Categories...)
		p.Y.Min = 0

	case Box:
		for i, values := range chart.Groups {
			if len(values) == 0 {
				continue
			}
			box, err := plotter.NewBoxPlot(vg.Points(40), float64(i), plotter.Values(values))
			if err != nil {
				return nil, err
			}
			box.FillColor = paletteColor(i)
			p.Add(box)
		}
		p.NominalX(chart.Categories...)

	case Scatter:
		for i, series := range chart.Series {
			if len(series.Points) == 0 {
				continue
			}
			xys := make(plotter.XYs, len(series.Points))
			for j, pt := range series.Points {
				xys[j].X = pt.X
				xys[j].Y = pt.Y
			}
			scatter, err := plotter.NewScatter(xys)
			if err != nil {
				return nil, err
			}
			scatter.GlyphStyle.Shape = draw.CircleGlyph{}
			scatter.GlyphStyle.Radius = vg.Points(3)
			scatter.GlyphStyle.Color = paletteColor(i)
			p.Add(scatter)
			p.Legend.Add(series.Name, scatter)
		}
		p.Legend.Top = true
		p.Add(plotter.NewGrid())

	default:
		return nil, fmt.Errorf("unsupported chart kind %d", chart.Kind)
	}

	return p, nil
}

// MemorySink keeps charts in memory.
type MemorySink struct {
	mu     sync.Mutex
	Charts []Chart
}

func (s *MemorySink) Render(ctx context.Context, chart Chart) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Charts = append(s.Charts, chart)
	return nil
}

// NopSink discards charts.
type NopSink struct{}

func (NopSink) Render(context.Context, Chart) error { return nil }
