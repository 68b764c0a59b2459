// Package curves extracts one-dimensional curves from the cylinder kernel, efficiencies
// across a diameter sweep and amplitude functions across the scattering angle, and
// renders them with gonum/plot.
package curves

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"math"
	"math/cmplx"
	"os"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/plot"
	_ "gonum.org/v1/plot/font/liberation"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/vg"
	vgdraw "gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/bob-anderson-ok/CylinderScattering/cylinder"
)

// SweepSpec defines the diameters visited by an efficiency sweep.
type SweepSpec struct {
	StartDiameter float64 // First diameter (m)
	EndDiameter   float64 // Last diameter (m)
	NumPoints     int     // Number of diameters, at least 2
	LogSpacing    bool    // Geometric instead of linear spacing
}

// EfficiencyPoint is one sample of an efficiency sweep.
type EfficiencyPoint struct {
	Diameter float64 // Diameter (m)
	cylinder.Efficiencies
}

// AnglePoint is one sample of the amplitude curve.
type AnglePoint struct {
	Phi float64    // Scattering angle (radians)
	S1  complex128 // Amplitude function S1
	S2  complex128 // Amplitude function S2
	SPF float64    // |S1|² + |S2|²
}

// Diameters returns the sweep grid, both end points included.
func (sw SweepSpec) Diameters() ([]float64, error) {
	if sw.NumPoints < 2 {
		return nil, fmt.Errorf("%w: sweep needs at least 2 points, got %d", cylinder.ErrInvalidInput, sw.NumPoints)
	}
	if !(sw.StartDiameter > 0) || !(sw.EndDiameter > sw.StartDiameter) || math.IsInf(sw.EndDiameter, 0) {
		return nil, fmt.Errorf("%w: sweep range [%g, %g] is not increasing and positive",
			cylinder.ErrInvalidInput, sw.StartDiameter, sw.EndDiameter)
	}

	d := make([]float64, sw.NumPoints)
	if sw.LogSpacing {
		return floats.LogSpan(d, sw.StartDiameter, sw.EndDiameter), nil
	}
	return floats.Span(d, sw.StartDiameter, sw.EndDiameter), nil
}

// EfficiencySweep evaluates the efficiencies of base at every diameter of the sweep.
// The first failing diameter aborts the sweep.
func EfficiencySweep(sv *cylinder.Solver, base cylinder.Scatterer, sweep SweepSpec) ([]EfficiencyPoint, error) {
	diameters, err := sweep.Diameters()
	if err != nil {
		return nil, err
	}

	points := make([]EfficiencyPoint, len(diameters))
	for i, d := range diameters {
		s := base
		s.Diameter = d
		q, err := sv.Efficiencies(s)
		if err != nil {
			return nil, fmt.Errorf("diameter %g: %w", d, err)
		}
		points[i] = EfficiencyPoint{Diameter: d, Efficiencies: q}
	}
	return points, nil
}

// AmplitudeCurve samples S1 and S2 of s at numPoints angles spanning [0, 2π].
func AmplitudeCurve(sv *cylinder.Solver, s cylinder.Scatterer, numPoints int) ([]AnglePoint, error) {
	if numPoints < 2 {
		return nil, fmt.Errorf("%w: amplitude curve needs at least 2 points, got %d", cylinder.ErrInvalidInput, numPoints)
	}
	phi := floats.Span(make([]float64, numPoints), 0, 2*math.Pi)

	amps, err := sv.Amplitudes(s, phi)
	if err != nil {
		return nil, err
	}

	curve := make([]AnglePoint, numPoints)
	for i := range phi {
		s1, s2 := amps.S1[i], amps.S2[i]
		a1, a2 := cmplx.Abs(s1), cmplx.Abs(s2)
		curve[i] = AnglePoint{Phi: phi[i], S1: s1, S2: s2, SPF: a1*a1 + a2*a2}
	}
	return curve, nil
}

// StepTicks is a custom tick marker for plots with fixed step intervals.
type StepTicks struct {
	Step   float64
	Format string
}

func (t StepTicks) Ticks(min, max float64) []plot.Tick {
	var ticks []plot.Tick
	start := math.Ceil(min/t.Step) * t.Step
	if start == 0 {
		start = 0 // no "-0" label
	}
	for v := start; v <= max; v += t.Step {
		ticks = append(ticks, plot.Tick{
			Value: v,
			Label: fmt.Sprintf(t.Format, v),
		})
	}
	return ticks
}

func newStyledPlot(title, xLabel, yLabel string) *plot.Plot {
	p := plot.New()

	// Font settings
	p.Title.TextStyle.Font.Typeface = "Liberation"
	p.Title.TextStyle.Font.Variant = "Sans"
	p.Title.TextStyle.Font.Size = vg.Points(12)

	p.X.Label.TextStyle.Font.Typeface = "Liberation"
	p.X.Label.TextStyle.Font.Variant = "Sans"
	p.X.Label.TextStyle.Font.Size = vg.Points(12)

	p.Y.Label.TextStyle.Font.Typeface = "Liberation"
	p.Y.Label.TextStyle.Font.Variant = "Sans"
	p.Y.Label.TextStyle.Font.Size = vg.Points(12)

	p.X.Tick.Label.Font.Typeface = "Liberation"
	p.X.Tick.Label.Font.Variant = "Sans"
	p.X.Tick.Label.Font.Size = vg.Points(10)

	p.Y.Tick.Label.Font.Typeface = "Liberation"
	p.Y.Tick.Label.Font.Variant = "Sans"
	p.Y.Tick.Label.Font.Size = vg.Points(10)

	p.Legend.TextStyle.Font.Typeface = "Liberation"
	p.Legend.TextStyle.Font.Variant = "Sans"
	p.Legend.Top = true

	p.Title.Text = title
	p.X.Label.Text = xLabel
	p.Y.Label.Text = yLabel
	p.Add(plotter.NewGrid())
	return p
}

func addCurve(p *plot.Plot, name string, pts plotter.XYs, col color.Color, dashed bool) error {
	line, err := plotter.NewLine(pts)
	if err != nil {
		return err
	}
	line.Color = col
	if dashed {
		line.Dashes = []vg.Length{vg.Points(6), vg.Points(4)}
	}
	p.Add(line)
	p.Legend.Add(name, line)
	return nil
}

// PlotEfficiencies creates a plot of Qsca, Qext and Qabs against diameter in nm.
func PlotEfficiencies(points []EfficiencyPoint, wPx, hPx float64) (image.Image, error) {
	if len(points) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 sweep points to plot", cylinder.ErrInvalidInput)
	}

	p := newStyledPlot("Efficiencies vs diameter", "diameter (nm)", "efficiency")

	n := len(points)
	sca := make(plotter.XYs, n)
	ext := make(plotter.XYs, n)
	abs := make(plotter.XYs, n)
	for i, pt := range points {
		d := pt.Diameter * 1e9
		sca[i] = plotter.XY{X: d, Y: pt.Qsca}
		ext[i] = plotter.XY{X: d, Y: pt.Qext}
		abs[i] = plotter.XY{X: d, Y: pt.Qabs}
	}

	if span := (points[n-1].Diameter - points[0].Diameter) * 1e9; span > 0 {
		p.X.Tick.Marker = StepTicks{Step: span / 10, Format: "%.0f"}
	}

	if err := addCurve(p, "Qsca", sca, color.RGBA{B: 255, A: 255}, false); err != nil {
		return nil, err
	}
	if err := addCurve(p, "Qext", ext, color.RGBA{R: 255, A: 255}, false); err != nil {
		return nil, err
	}
	if err := addCurve(p, "Qabs", abs, color.RGBA{A: 255}, true); err != nil {
		return nil, err
	}

	return render(p, wPx, hPx), nil
}

// PlotAmplitudes creates a plot of |S1|, |S2| and the phase function against phi in degrees.
func PlotAmplitudes(curve []AnglePoint, wPx, hPx float64) (image.Image, error) {
	if len(curve) < 2 {
		return nil, fmt.Errorf("%w: need at least 2 angle points to plot", cylinder.ErrInvalidInput)
	}

	p := newStyledPlot("Scattering amplitudes", "phi (degrees)", "amplitude")
	p.X.Tick.Marker = StepTicks{Step: 45, Format: "%.0f"}

	n := len(curve)
	s1 := make(plotter.XYs, n)
	s2 := make(plotter.XYs, n)
	spf := make(plotter.XYs, n)
	for i, pt := range curve {
		deg := pt.Phi * 180 / math.Pi
		s1[i] = plotter.XY{X: deg, Y: cmplx.Abs(pt.S1)}
		s2[i] = plotter.XY{X: deg, Y: cmplx.Abs(pt.S2)}
		spf[i] = plotter.XY{X: deg, Y: pt.SPF}
	}

	if err := addCurve(p, "|S1|", s1, color.RGBA{B: 255, A: 255}, false); err != nil {
		return nil, err
	}
	if err := addCurve(p, "|S2|", s2, color.RGBA{R: 255, A: 255}, false); err != nil {
		return nil, err
	}
	if err := addCurve(p, "|S1|²+|S2|²", spf, color.RGBA{A: 255}, true); err != nil {
		return nil, err
	}

	return render(p, wPx, hPx), nil
}

// render draws the plot into an in-memory image of about wPx × hPx pixels.
func render(p *plot.Plot, wPx, hPx float64) image.Image {
	const dpi = 96
	width := vg.Length(wPx) * vg.Inch / dpi
	height := vg.Length(hPx) * vg.Inch / dpi

	c := vgimg.New(width, height)
	dc := vgdraw.New(c)
	p.Draw(dc)

	return c.Image()
}

// SaveEfficiencyPlot creates and saves an efficiency plot to a PNG file.
func SaveEfficiencyPlot(filename string, points []EfficiencyPoint, wPx, hPx float64) error {
	img, err := PlotEfficiencies(points, wPx, hPx)
	if err != nil {
		return err
	}
	return SaveImageToFile(filename, img)
}

// SaveAmplitudePlot creates and saves an amplitude plot to a PNG file.
func SaveAmplitudePlot(filename string, curve []AnglePoint, wPx, hPx float64) error {
	img, err := PlotAmplitudes(curve, wPx, hPx)
	if err != nil {
		return err
	}
	return SaveImageToFile(filename, img)
}

// SaveImageToFile saves an image to a PNG file.
func SaveImageToFile(filename string, img image.Image) (err error) {
	f, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", filename, err)
	}
	defer func() {
		if cerr := f.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	return png.Encode(f, img)
}
