// Package figure renders the four-panel summary figure of a survey.
package figure

import (
	"errors"
	"fmt"
	"image/color"
	"math"
	"os"
	"path/filepath"
	"strings"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/palette/moreland"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	_ "gonum.org/v1/plot/vg/vgimg"
	_ "gonum.org/v1/plot/vg/vgpdf"
	_ "gonum.org/v1/plot/vg/vgsvg"

	"q47-expsums/pkg/survey"
)

// ErrEmpty is returned when there is nothing to plot.
var ErrEmpty = errors.New("figure: empty dataset")

// Reference is a predicted mean drawn as a vertical line in the magnitude panel.
type Reference struct {
	Name  string
	Mean  float64
	Style string // solid, dashed, dotdash
}

// Options controls the figure layout.
type Options struct {
	// Highlight marks one prime in the complex-plane panel (0 for none).
	Highlight uint32

	References []Reference

	Width, Height vg.Length
}

var (
	blue   = color.RGBA{R: 0x5B, G: 0x9B, B: 0xD5, A: 0xD9}
	green  = color.RGBA{R: 0x70, G: 0xAD, B: 0x47, A: 0xD9}
	orange = color.RGBA{R: 0xED, G: 0x7D, B: 0x31, A: 0xD9}
	red    = color.RGBA{R: 0xD6, G: 0x27, B: 0x28, A: 0xFF}
	purple = color.RGBA{R: 0x80, G: 0x00, B: 0x80, A: 0xFF}
	gray   = color.RGBA{R: 0x69, G: 0x69, B: 0x69, A: 0xFF}
	faint  = color.RGBA{A: 0x40}
)

func dashes(style string) []vg.Length {
	switch style {
	case "dashed":
		return []vg.Length{vg.Points(6), vg.Points(3)}
	case "dotdash":
		return []vg.Length{vg.Points(6), vg.Points(2), vg.Points(1), vg.Points(2)}
	default:
		return nil
	}
}

func stdNormal(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}

// Panels builds the 2x2 grid of plots:
// (a) real parts, (b) imaginary parts, (c) complex plane, (d) magnitudes.
func Panels(ds *survey.Dataset, opts Options) ([][]*plot.Plot, error) {
	if ds.Len() == 0 {
		return nil, ErrEmpty
	}
	if err := ds.Validate(); err != nil {
		return nil, err
	}

	re, err := densityPanel("(a) Real Part Distribution", "Re(S_p)/sqrt(p)", ds.Re, 25, blue, -10, 10)
	if err != nil {
		return nil, fmt.Errorf("real panel: %w", err)
	}
	im, err := densityPanel("(b) Imaginary Part Distribution", "Im(S_p)/sqrt(p)", ds.Im, 25, green, -5, 5)
	if err != nil {
		return nil, fmt.Errorf("imaginary panel: %w", err)
	}
	plane, err := planePanel(ds, opts.Highlight)
	if err != nil {
		return nil, fmt.Errorf("complex plane panel: %w", err)
	}
	mag, err := magnitudePanel(ds.Mag, opts.References)
	if err != nil {
		return nil, fmt.Errorf("magnitude panel: %w", err)
	}

	return [][]*plot.Plot{{re, im}, {plane, mag}}, nil
}

// densityPanel draws a normalized histogram with the standard normal density.
func densityPanel(title, label string, values []float64, bins int, fill color.Color, xmin, xmax float64) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = label
	p.Y.Label.Text = "Density"

	h, err := plotter.NewHist(plotter.Values(values), bins)
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = fill
	h.LineStyle.Color = color.White

	normal := plotter.NewFunction(stdNormal)
	normal.XMin, normal.XMax = xmin, xmax
	normal.Samples = 300
	normal.Color = red
	normal.Width = vg.Points(1.5)
	normal.Dashes = dashes("dashed")

	p.Add(plotter.NewGrid(), h, normal)
	p.Legend.Add(label, h)
	p.Legend.Add("N(0,1)", normal)
	p.Legend.Top = true

	p.X.Min, p.X.Max = xmin, xmax
	return p, nil
}

// planePanel scatters x_p in the complex plane, colored by p, with circles
// of radius 2, 4, 6, 8 and the highlighted prime marked separately.
func planePanel(ds *survey.Dataset, highlight uint32) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "(c) Complex Plane"
	p.X.Label.Text = "Re(S_p)/sqrt(p)"
	p.Y.Label.Text = "Im(S_p)/sqrt(p)"
	p.Add(plotter.NewGrid())

	for _, r := range []float64{2, 4, 6, 8} {
		circle := make(plotter.XYs, 201)
		for i := range circle {
			theta := 2 * math.Pi * float64(i) / 200
			circle[i].X = r * math.Cos(theta)
			circle[i].Y = r * math.Sin(theta)
		}
		l, err := plotter.NewLine(circle)
		if err != nil {
			return nil, err
		}
		l.Color = faint
		l.Width = vg.Points(0.8)
		l.Dashes = dashes("dashed")
		p.Add(l)
	}

	cm := moreland.SmoothBlueRed()
	lo, hi := float64(ds.Primes[0]), float64(ds.Primes[0])
	for _, q := range ds.Primes {
		lo = math.Min(lo, float64(q))
		hi = math.Max(hi, float64(q))
	}
	if hi == lo {
		hi = lo + 1
	}
	cm.SetMin(lo)
	cm.SetMax(hi)

	var pts plotter.XYs
	var colorOf []float64
	for i, q := range ds.Primes {
		if q == highlight {
			continue
		}
		pts = append(pts, plotter.XY{X: ds.Re[i], Y: ds.Im[i]})
		colorOf = append(colorOf, float64(q))
	}
	if len(pts) > 0 {
		sc, err := plotter.NewScatter(pts)
		if err != nil {
			return nil, err
		}
		sc.GlyphStyleFunc = func(i int) draw.GlyphStyle {
			c, err := cm.At(colorOf[i])
			if err != nil {
				c = color.Black
			}
			return draw.GlyphStyle{Color: c, Radius: vg.Points(2.5), Shape: draw.CircleGlyph{}}
		}
		p.Add(sc)
		p.Legend.Add(fmt.Sprintf("x_p, p = %d..%d", ds.Primes[0], ds.Primes[len(ds.Primes)-1]), sc)
	}

	if i := ds.Index(highlight); highlight != 0 && i >= 0 {
		at := plotter.XYs{{X: ds.Re[i], Y: ds.Im[i]}}
		star, err := plotter.NewScatter(at)
		if err != nil {
			return nil, err
		}
		star.GlyphStyle = draw.GlyphStyle{Color: red, Radius: vg.Points(5), Shape: draw.PyramidGlyph{}}

		labels, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    at,
			Labels: []string{fmt.Sprintf("p=%d", highlight)},
		})
		if err != nil {
			return nil, err
		}
		labels.Offset = vg.Point{X: -vg.Points(10), Y: vg.Points(8)}
		for j := range labels.TextStyle {
			labels.TextStyle[j].Color = red
		}
		p.Add(star, labels)
	}

	p.Legend.Top = true
	p.X.Min, p.X.Max = -10, 10
	p.Y.Min, p.Y.Max = -6, 6
	return p, nil
}

// magnitudePanel draws the |x_p| histogram with the observed mean and the
// reference means as vertical lines.
func magnitudePanel(mags []float64, refs []Reference) (*plot.Plot, error) {
	p := plot.New()
	p.Title.Text = "(d) Magnitude Distribution"
	p.X.Label.Text = "|S_p|/sqrt(p)"
	p.Y.Label.Text = "Density"

	h, err := plotter.NewHist(plotter.Values(mags), 20)
	if err != nil {
		return nil, err
	}
	h.Normalize(1)
	h.FillColor = orange
	h.LineStyle.Color = color.White
	p.Add(plotter.NewGrid(), h)
	p.Legend.Add("|S_p|/sqrt(p)", h)

	top := 0.0
	for _, b := range h.Bins {
		top = math.Max(top, b.Weight)
	}
	top *= 1.1

	var mean float64
	for _, m := range mags {
		mean += m
	}
	mean /= float64(len(mags))

	lines := append([]Reference{{Name: "Observed", Mean: mean, Style: "solid"}}, refs...)
	palette := []color.Color{red, purple, gray}
	for i, r := range lines {
		l, err := plotter.NewLine(plotter.XYs{{X: r.Mean, Y: 0}, {X: r.Mean, Y: top}})
		if err != nil {
			return nil, err
		}
		l.Color = palette[i%len(palette)]
		l.Width = vg.Points(2)
		l.Dashes = dashes(r.Style)
		p.Add(l)
		p.Legend.Add(fmt.Sprintf("%s: mean ~ %.2f (%s)", r.Name, r.Mean, r.Style), l)
	}

	p.Legend.Top = true
	p.X.Min, p.X.Max = 0, 10
	return p, nil
}

// Render draws the panels and writes them to path. The image format
// follows the file extension (pdf, png, svg, ...).
func Render(ds *survey.Dataset, opts Options, path string) error {
	plots, err := Panels(ds, opts)
	if err != nil {
		return err
	}

	w, h := opts.Width, opts.Height
	if w == 0 || h == 0 {
		w, h = 12*vg.Inch, 10*vg.Inch
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(path), "."))
	c, err := draw.NewFormattedCanvas(w, h, format)
	if err != nil {
		return fmt.Errorf("figure: %w", err)
	}

	tiles := draw.Tiles{
		Rows:      2,
		Cols:      2,
		PadX:      vg.Millimeter * 6,
		PadY:      vg.Millimeter * 6,
		PadTop:    vg.Millimeter * 3,
		PadBottom: vg.Millimeter * 3,
		PadLeft:   vg.Millimeter * 3,
		PadRight:  vg.Millimeter * 3,
	}
	canvases := plot.Align(plots, tiles, draw.New(c))
	for j := range plots {
		for i := range plots[j] {
			plots[j][i].Draw(canvases[j][i])
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("failed to create figure directory: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := c.WriteTo(f); err != nil {
		f.Close()
		return fmt.Errorf("failed to write %s: %w", path, err)
	}
	return f.Close()
}
