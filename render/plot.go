// Package render draws candidate ODE solutions as PNG images.
//
// Solution never fails: every error along the way (parse, evaluator,
// sampling, drawing) is rendered as a text-only image instead, and if even
// that cannot be encoded a fixed 1x1 placeholder is returned.
package render

import (
	"bytes"
	"errors"
	"fmt"
	"image/color"
	"math"
	"sync"

	"gonum.org/v1/plot"
	"gonum.org/v1/plot/font"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/text"
	"gonum.org/v1/plot/vg"
	"gonum.org/v1/plot/vg/draw"
	"gonum.org/v1/plot/vg/vgimg"

	"github.com/njchilds90/diffeq/expr"
)

const (
	Width  = 8 * vg.Inch
	Height = 5 * vg.Inch
	DPI    = 100

	XMin    = -5.0
	XMax    = 5.0
	Samples = 500

	// YLimit bounds the displayed values: only points with |y| < YLimit are drawn.
	YLimit = 10.0
	// MaxSingularities caps the number of singularity markers.
	MaxSingularities = 3
)

// Placeholder constants substituted with 1 before plotting.
var placeholders = []string{"C", "C1", "C2"}

var (
	curveColor = color.RGBA{R: 0x2A, G: 0x93, B: 0xD5, A: 0xFF}
	axisColor  = color.RGBA{A: 0x33}
	singColor  = color.RGBA{R: 0xFF, A: 0x80}
)

var errNoValidPoints = errors.New("No valid points to plot - function may have singularities everywhere in this range")

var setupOnce sync.Once

// Setup configures the process-wide plotting defaults. It is safe to call
// more than once and from several goroutines; Solution calls it itself.
func Setup() {
	setupOnce.Do(func() {
		plot.DefaultFont = font.Font{Typeface: "Liberation", Variant: "Sans"}
		plot.DefaultTextHandler = text.Plain{Fonts: font.DefaultCache}
	})
}

// Solution renders y = f(x) from solution (or the whole string when it has no
// "y = " prefix) over [XMin, XMax], titled with the solution and de.
func Solution(de, solution string) (png []byte) {
	src := solution
	if v, ok := expr.AssignedValue(solution, "y"); ok {
		src = v
	}
	defer func() {
		if r := recover(); r != nil {
			png = Text(fmt.Sprintf("Error generating plot: %v", r))
		}
	}()

	Setup()
	curve, err := Trace(src)
	if err != nil {
		return Text(err.Error())
	}
	out, err := drawCurve(de, solution, curve)
	if err != nil {
		return Text(fmt.Sprintf("Could not plot: %s\nError: %v", src, err))
	}
	return out
}

// Curve is an expression sampled over [XMin, XMax].
type Curve struct {
	// Runs are the contiguous stretches of finite points with |y| < YLimit.
	Runs []plotter.XYs
	// Singularities holds at most MaxSingularities marker positions.
	Singularities []float64
}

// Trace parses src as a function of x, binds C, C1 and C2 to 1 and samples
// it on Grid(XMin, XMax, Samples). The error text is ready to show on a
// Text image.
func Trace(src string) (*Curve, error) {
	f, err := expr.Parse(src)
	if err != nil {
		return nil, fmt.Errorf("Could not parse: %s\nError: %w", src, err)
	}
	for _, c := range placeholders {
		f = expr.Sub(f, c, expr.N(1))
	}
	eval, err := expr.Evaluator(f, "x")
	if err != nil {
		return nil, fmt.Errorf("Could not create plot function: %w", err)
	}

	xs := Grid(XMin, XMax, Samples)
	ys, valid, ok := sample(eval, xs)
	if !ok {
		return nil, fmt.Errorf("Could not plot: %s\nError: %w", src, errNoValidPoints)
	}
	sings := Singularities(xs, valid)
	if len(sings) > MaxSingularities {
		sings = sings[:MaxSingularities]
	}
	return &Curve{Runs: displayRuns(xs, ys, valid), Singularities: sings}, nil
}

// Grid returns n evenly spaced points from lo to hi inclusive.
func Grid(lo, hi float64, n int) []float64 {
	if n <= 0 {
		return nil
	}
	if n == 1 {
		return []float64{lo}
	}
	xs := make([]float64, n)
	step := (hi - lo) / float64(n-1)
	for i := range xs {
		xs[i] = lo + float64(i)*step
	}
	xs[n-1] = hi
	return xs
}

// Singularities returns the midpoints between adjacent grid points where the
// function switches between finite and non-finite.
func Singularities(xs []float64, valid []bool) []float64 {
	var out []float64
	for i := 0; i+1 < len(xs); i++ {
		if valid[i] != valid[i+1] {
			out = append(out, (xs[i]+xs[i+1])/2)
		}
	}
	return out
}

// displayRuns splits the drawable points into contiguous runs so the curve
// is not joined across gaps.
func displayRuns(xs, ys []float64, valid []bool) []plotter.XYs {
	var runs []plotter.XYs
	var cur plotter.XYs
	for i := range xs {
		if valid[i] && math.Abs(ys[i]) < YLimit {
			cur = append(cur, plotter.XY{X: xs[i], Y: ys[i]})
			continue
		}
		if len(cur) > 0 {
			runs = append(runs, cur)
			cur = nil
		}
	}
	if len(cur) > 0 {
		runs = append(runs, cur)
	}
	return runs
}

func sample(eval func(float64) (float64, error), xs []float64) (ys []float64, valid []bool, ok bool) {
	ys = make([]float64, len(xs))
	valid = make([]bool, len(xs))
	for i, x := range xs {
		v, err := eval(x)
		if err != nil {
			continue
		}
		ys[i], valid[i] = v, true
		ok = true
	}
	return ys, valid, ok
}

func drawCurve(de, solution string, curve *Curve) ([]byte, error) {
	p := plot.New()
	p.Title.Text = fmt.Sprintf("Solution: %s\nDE: %s", solution, de)
	p.X.Label.Text = "x"
	p.Y.Label.Text = "y"
	p.X.Min, p.X.Max = XMin, XMax
	p.Add(plotter.NewGrid())

	runs := curve.Runs
	var yLo, yHi float64
	if len(runs) == 0 {
		p.Y.Min, p.Y.Max = -YLimit, YLimit
		yLo, yHi = -YLimit, YLimit
		msg, err := plotter.NewLabels(plotter.XYLabels{
			XYs:    plotter.XYs{{X: 0, Y: 0}},
			Labels: []string{"Function values out of displayable range"},
		})
		if err != nil {
			return nil, err
		}
		p.Add(msg)
	} else {
		yLo, yHi = math.Inf(1), math.Inf(-1)
		for _, run := range runs {
			for _, pt := range run {
				yLo, yHi = math.Min(yLo, pt.Y), math.Max(yHi, pt.Y)
			}
			l, err := plotter.NewLine(run)
			if err != nil {
				return nil, err
			}
			l.LineStyle.Width = vg.Points(2.5)
			l.LineStyle.Color = curveColor
			p.Add(l)
		}
		if yLo == yHi {
			yLo, yHi = yLo-1, yHi+1
		}
	}

	if err := addSegment(p, XMin, 0, XMax, 0, axisColor, nil); err != nil {
		return nil, err
	}
	if err := addSegment(p, 0, yLo, 0, yHi, axisColor, nil); err != nil {
		return nil, err
	}

	dashes := []vg.Length{vg.Points(6), vg.Points(4)}
	for i, s := range curve.Singularities {
		l, err := segment(s, yLo, s, yHi, singColor, dashes)
		if err != nil {
			return nil, err
		}
		p.Add(l)
		if i == 0 {
			p.Legend.Add("Singularity", l)
		}
	}

	c := vgimg.NewWith(vgimg.UseWH(Width, Height), vgimg.UseDPI(DPI))
	p.Draw(draw.New(c))
	var buf bytes.Buffer
	if _, err := (vgimg.PngCanvas{Canvas: c}).WriteTo(&buf); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func segment(x0, y0, x1, y1 float64, c color.Color, dashes []vg.Length) (*plotter.Line, error) {
	l, err := plotter.NewLine(plotter.XYs{{X: x0, Y: y0}, {X: x1, Y: y1}})
	if err != nil {
		return nil, err
	}
	l.LineStyle.Color = c
	l.LineStyle.Width = vg.Points(1)
	l.LineStyle.Dashes = dashes
	return l, nil
}

func addSegment(p *plot.Plot, x0, y0, x1, y1 float64, c color.Color, dashes []vg.Length) error {
	l, err := segment(x0, y0, x1, y1, c, dashes)
	if err != nil {
		return err
	}
	p.Add(l)
	return nil
}
