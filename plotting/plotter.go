package plotting

import (
	"errors"
	"fmt"
	"image/color"
	"sort"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/common"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/smoothing"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/algorithms/warping"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/logging"
	"github.com/WellcomeIdeathon2023/The-York-Vectors/timeseries"
)

// ErrNothingToPlot is returned when a plot is requested with no data
var ErrNothingToPlot = errors.New("plotting: nothing to plot")

// PlotConfig contains render dimensions and marker sizing
type PlotConfig struct {
	// WidthInches and HeightInches size the saved image
	WidthInches  float64 `json:"width_inches"`
	HeightInches float64 `json:"height_inches"`

	// CurveResolution is the number of dense evaluations used to draw a
	// fitted curve as a smooth line
	CurveResolution int `json:"curve_resolution"`

	// MatchStride thins the drawn warping-path match segments; 1 draws all
	MatchStride int `json:"match_stride"`
}

// DefaultPlotConfig returns standard report sizing
func DefaultPlotConfig() PlotConfig {
	return PlotConfig{
		WidthInches:     8,
		HeightInches:    5,
		CurveResolution: 400,
		MatchStride:     1,
	}
}

// Plotter renders fitted curves, sampled series, and alignments to PNG files
type Plotter struct {
	config PlotConfig
	logger logging.Logger
}

// NewPlotter creates a plotter with default sizing
func NewPlotter() *Plotter {
	return NewPlotterWithConfig(DefaultPlotConfig())
}

// NewPlotterWithConfig creates a plotter with custom sizing
func NewPlotterWithConfig(config PlotConfig) *Plotter {
	return &Plotter{
		config: config,
		logger: logging.WithFields(logging.Fields{"component": "plotter"}),
	}
}

// CurvePlot renders one replicate of a fitted curve as a dense line with the
// raw samples scattered over it
func (pl *Plotter) CurvePlot(title string, curve *smoothing.FittedCurve, rep int, samples *timeseries.TimeSeries, path string) error {
	if curve == nil {
		return fmt.Errorf("%w: nil curve", ErrNothingToPlot)
	}

	a, b := curve.Domain()
	grid := common.Linspace(a, b, pl.config.CurveResolution)
	dense, err := curve.Evaluate(grid, rep)
	if err != nil {
		return fmt.Errorf("plotting: curve evaluation: %w", err)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time"
	p.Y.Label.Text = "value"

	line, err := plotter.NewLine(toXYs(grid, dense))
	if err != nil {
		return fmt.Errorf("plotting: %w", err)
	}
	line.Color = plotutil.Color(0)
	p.Add(line)
	p.Legend.Add("fit", line)

	if samples != nil {
		scatter, err := plotter.NewScatter(toXYs(samples.Times(), samples.Values()))
		if err != nil {
			return fmt.Errorf("plotting: %w", err)
		}
		scatter.GlyphStyle.Color = plotutil.Color(1)
		scatter.GlyphStyle.Radius = vg.Points(2.5)
		p.Add(scatter)
		p.Legend.Add("samples", scatter)
	}

	return pl.save(p, path)
}

// SeriesPlot renders labeled series as lines on shared axes. Legend entries
// follow name order so repeated renders are identical.
func (pl *Plotter) SeriesPlot(title string, series map[string]*timeseries.TimeSeries, path string) error {
	if len(series) == 0 {
		return fmt.Errorf("%w: no series", ErrNothingToPlot)
	}

	names := make([]string, 0, len(series))
	for name := range series {
		names = append(names, name)
	}
	sort.Strings(names)

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "time"
	p.Y.Label.Text = "value"

	for i, name := range names {
		ts := series[name]
		if ts == nil {
			continue
		}
		line, err := plotter.NewLine(toXYs(ts.Times(), ts.Values()))
		if err != nil {
			return fmt.Errorf("plotting: series %q: %w", name, err)
		}
		line.Color = plotutil.Color(i)
		line.Dashes = plotutil.Dashes(i)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	return pl.save(p, path)
}

// AlignmentPlot renders the query and reference sequences against their
// indices with light segments joining the matched pairs on the warping path
func (pl *Plotter) AlignmentPlot(title string, query, reference []float64, result *warping.AlignmentResult, path string) error {
	if len(query) == 0 || len(reference) == 0 {
		return fmt.Errorf("%w: empty sequences", ErrNothingToPlot)
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "index"
	p.Y.Label.Text = "value"

	if result != nil {
		stride := pl.config.MatchStride
		if stride < 1 {
			stride = 1
		}
		faint := color.RGBA{R: 0xb0, G: 0xb0, B: 0xb0, A: 0xff}
		for k := 0; k < len(result.Path); k += stride {
			pt := result.Path[k]
			segment, err := plotter.NewLine(plotter.XYs{
				{X: float64(pt.Query), Y: query[pt.Query]},
				{X: float64(pt.Reference), Y: reference[pt.Reference]},
			})
			if err != nil {
				return fmt.Errorf("plotting: %w", err)
			}
			segment.Color = faint
			segment.Width = vg.Points(0.5)
			p.Add(segment)
		}
	}

	queryLine, err := plotter.NewLine(indexXYs(query))
	if err != nil {
		return fmt.Errorf("plotting: %w", err)
	}
	queryLine.Color = plotutil.Color(0)
	p.Add(queryLine)
	p.Legend.Add("query", queryLine)

	refLine, err := plotter.NewLine(indexXYs(reference))
	if err != nil {
		return fmt.Errorf("plotting: %w", err)
	}
	refLine.Color = plotutil.Color(1)
	p.Add(refLine)
	p.Legend.Add("reference", refLine)

	return pl.save(p, path)
}

func (pl *Plotter) save(p *plot.Plot, path string) error {
	w := vg.Length(pl.config.WidthInches) * vg.Inch
	h := vg.Length(pl.config.HeightInches) * vg.Inch
	if err := p.Save(w, h, path); err != nil {
		return fmt.Errorf("plotting: save %s: %w", path, err)
	}
	pl.logger.Debug("plot saved", logging.Fields{"path": path})
	return nil
}

func toXYs(xs, ys []float64) plotter.XYs {
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts
}

func indexXYs(values []float64) plotter.XYs {
	pts := make(plotter.XYs, len(values))
	for i, v := range values {
		pts[i].X = float64(i)
		pts[i].Y = v
	}
	return pts
}
