// Package plot renders blade, rotor, run and validation figures as PNG
// files with gonum/plot.
package plot

import (
	"errors"
	"fmt"
	"image/color"
	"io"
	"os"
	"path/filepath"

	gplot "gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"github.com/san-kum/rotorsim/internal/blade"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/validation"
)

var ErrNoData = errors.New("plot: no data")

const (
	width  = 8 * vg.Inch
	height = 6 * vg.Inch
)

// Figure is a plot and the file stem it is saved under.
type Figure struct {
	Name string
	Plot *gplot.Plot
}

func newPlot(title, xlabel, ylabel string) *gplot.Plot {
	p := gplot.New()
	p.Title.Text = title
	p.X.Label.Text = xlabel
	p.Y.Label.Text = ylabel
	p.Add(plotter.NewGrid())
	return p
}

func xys(xs, ys []float64) (plotter.XYs, error) {
	if len(xs) == 0 || len(xs) != len(ys) {
		return nil, fmt.Errorf("%w: %d x values, %d y values", ErrNoData, len(xs), len(ys))
	}
	pts := make(plotter.XYs, len(xs))
	for i := range xs {
		pts[i].X = xs[i]
		pts[i].Y = ys[i]
	}
	return pts, nil
}

func linePlot(name, title, xlabel, ylabel string, xs, ys []float64) (Figure, error) {
	pts, err := xys(xs, ys)
	if err != nil {
		return Figure{}, fmt.Errorf("%s: %w", name, err)
	}
	p := newPlot(title, xlabel, ylabel)
	line, err := plotter.NewLine(pts)
	if err != nil {
		return Figure{}, err
	}
	line.LineStyle.Width = vg.Points(1.5)
	line.LineStyle.Color = plotutil.Color(0)
	p.Add(line)
	return Figure{Name: name, Plot: p}, nil
}

// Blade returns the chord outline and twist distribution.
func Blade(b *blade.Blade) ([]Figure, error) {
	r, x := b.Outline()
	outline, err := linePlot("chord", "Blade geometry", "Radial location", "Chord", r, x)
	if err != nil {
		return nil, err
	}
	radial, _, twist := b.Stations()
	tw, err := linePlot("twist", "Blade twist", "Radial location", "Twist (deg)", radial, twist)
	if err != nil {
		return nil, err
	}
	return []Figure{outline, tw}, nil
}

// Rotor returns the per-strip distributions of one solve.
func Rotor(st *rotor.State) ([]Figure, error) {
	if st == nil || len(st.Radius) == 0 {
		return nil, ErrNoData
	}
	series := []struct {
		name, title, ylabel string
		ys                  []float64
	}{
		{"inflow", "Induced velocity", "Inflow", st.Inflow},
		{"alpha", "Angle of attack", "Alpha (deg)", st.Alpha},
		{"cl", "Lift coefficient", "Cl", st.Cl},
		{"cd", "Drag coefficient", "Cd", st.Cd},
		{"dct", "Thrust coefficient per strip", "dCT", st.StripCT()},
		{"dcp", "Power coefficient per strip", "dCP", st.StripCP()},
	}
	figs := make([]Figure, 0, len(series))
	for _, s := range series {
		f, err := linePlot(s.name, s.title, "Radial location", s.ylabel, st.Radius, s.ys)
		if err != nil {
			return nil, err
		}
		figs = append(figs, f)
	}
	return figs, nil
}

// Run returns position, speed, collective and force history. The speed
// figure carries a dashed line at the wind speed.
func Run(res *sim.Result, wind float64) ([]Figure, error) {
	if res == nil || len(res.Samples) == 0 {
		return nil, ErrNoData
	}
	t, x, v, pitch := res.Columns()

	pos, err := linePlot("position", "Vehicle position", "Time (s)", "Position", t, x)
	if err != nil {
		return nil, err
	}
	speed, err := linePlot("speed", "Vehicle speed", "Time (s)", "Speed", t, v)
	if err != nil {
		return nil, err
	}
	windLine, err := plotter.NewLine(plotter.XYs{{X: t[0], Y: wind}, {X: t[len(t)-1], Y: wind}})
	if err != nil {
		return nil, err
	}
	windLine.LineStyle.Dashes = []vg.Length{vg.Points(4), vg.Points(4)}
	windLine.LineStyle.Color = color.Gray{Y: 96}
	speed.Plot.Add(windLine)
	speed.Plot.Legend.Add("wind", windLine)

	col, err := linePlot("pitch", "Collective", "Time (s)", "Pitch (deg)", t, pitch)
	if err != nil {
		return nil, err
	}

	forces, err := forcePlot(res, t)
	if err != nil {
		return nil, err
	}
	return []Figure{pos, speed, col, forces}, nil
}

func forcePlot(res *sim.Result, t []float64) (Figure, error) {
	n := len(res.Samples)
	thrust := make([]float64, n)
	aero := make([]float64, n)
	drag := make([]float64, n)
	rolling := make([]float64, n)
	net := make([]float64, n)
	for i, s := range res.Samples {
		f := s.Forces
		thrust[i], aero[i], drag[i], rolling[i], net[i] = f.RotorThrust, f.AeroDrag, f.RotorDrag, f.Rolling, f.Net()
	}

	p := newPlot("Forces", "Time (s)", "Force")
	args := make([]any, 0, 10)
	for _, s := range []struct {
		name string
		ys   []float64
	}{
		{"rotor thrust", thrust},
		{"aero drag", aero},
		{"rotor drag", drag},
		{"rolling", rolling},
		{"net", net},
	} {
		pts, err := xys(t, s.ys)
		if err != nil {
			return Figure{}, err
		}
		args = append(args, s.name, pts)
	}
	if err := plotutil.AddLines(p, args...); err != nil {
		return Figure{}, err
	}
	p.Legend.Top = true
	return Figure{Name: "forces", Plot: p}, nil
}

// Validation returns predicted CT and CP against collective with the
// reference samples overlaid.
func Validation(rep *validation.Report) ([]Figure, error) {
	if rep == nil || len(rep.Sweep) == 0 {
		return nil, ErrNoData
	}
	pitch := make([]float64, len(rep.Sweep))
	ct := make([]float64, len(rep.Sweep))
	cp := make([]float64, len(rep.Sweep))
	for i, s := range rep.Sweep {
		pitch[i], ct[i], cp[i] = s.Pitch, s.CT, s.CP
	}
	refPitch := make([]float64, len(rep.Points))
	refCT := make([]float64, len(rep.Points))
	refCP := make([]float64, len(rep.Points))
	for i, pt := range rep.Points {
		refPitch[i], refCT[i], refCP[i] = pt.Pitch, pt.RefCT, pt.RefCP
	}

	ctFig, err := comparePlot("ct", "Thrust coefficient", "CT", rep.Reference, pitch, ct, refPitch, refCT)
	if err != nil {
		return nil, err
	}
	cpFig, err := comparePlot("cp", "Power coefficient", "CP", rep.Reference, pitch, cp, refPitch, refCP)
	if err != nil {
		return nil, err
	}
	return []Figure{ctFig, cpFig}, nil
}

func comparePlot(name, title, ylabel, ref string, xs, ys, refX, refY []float64) (Figure, error) {
	f, err := linePlot(name, title, "Collective (deg)", ylabel, xs, ys)
	if err != nil {
		return Figure{}, err
	}
	if len(refX) == 0 {
		return f, nil
	}
	pts, err := xys(refX, refY)
	if err != nil {
		return Figure{}, err
	}
	sc, err := plotter.NewScatter(pts)
	if err != nil {
		return Figure{}, err
	}
	sc.GlyphStyle.Shape = plotutil.Shape(1)
	sc.GlyphStyle.Color = plotutil.Color(1)
	f.Plot.Add(sc)
	f.Plot.Legend.Add(ref, sc)
	f.Plot.Legend.Top = true
	f.Plot.Legend.Left = true
	return f, nil
}

// WritePNG encodes one figure.
func WritePNG(w io.Writer, f Figure) error {
	wt, err := f.Plot.WriterTo(width, height, "png")
	if err != nil {
		return err
	}
	_, err = wt.WriteTo(w)
	return err
}

// Save writes each figure to dir as <prefix><name>.png and returns the
// paths written.
func Save(dir, prefix string, figs []Figure) ([]string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}
	paths := make([]string, 0, len(figs))
	for _, f := range figs {
		path := filepath.Join(dir, prefix+f.Name+".png")
		if err := f.Plot.Save(width, height, path); err != nil {
			return paths, fmt.Errorf("save %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}
