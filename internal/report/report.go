// Package report renders an interactive HTML page for a run with
// go-echarts.
package report

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/components"
	"github.com/go-echarts/go-echarts/v2/opts"
	"github.com/go-echarts/go-echarts/v2/types"

	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/validation"
)

var ErrEmpty = errors.New("report: nothing to render")

// Page collects whatever is available about a run. Nil sections are
// skipped.
type Page struct {
	Title      string
	Result     *sim.Result
	Wind       float64
	Rotor      *rotor.State
	Validation *validation.Report
}

func newLine(title, subtitle string) *charts.Line {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Theme: types.ThemeWesteros,
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    title,
			Subtitle: subtitle,
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{
			Type:  "scroll",
			Right: "10",
			Top:   "20",
		}),
		charts.WithYAxisOpts(opts.YAxis{
			Scale: opts.Bool(true),
		}),
		charts.WithDataZoomOpts(opts.DataZoom{
			Type:       "inside",
			Start:      0,
			End:        100,
			XAxisIndex: []int{0},
		}),
	)
	return line
}

func labels(xs []float64, format string) []string {
	out := make([]string, len(xs))
	for i, x := range xs {
		out[i] = fmt.Sprintf(format, x)
	}
	return out
}

func lineData(ys []float64) []opts.LineData {
	out := make([]opts.LineData, len(ys))
	for i, y := range ys {
		out[i] = opts.LineData{Value: y}
	}
	return out
}

func constant(v float64, n int) []float64 {
	out := make([]float64, n)
	for i := range out {
		out[i] = v
	}
	return out
}

func (p *Page) runCharts() []components.Charter {
	res := p.Result
	t, x, v, pitch := res.Columns()
	xaxis := labels(t, "%.2f")

	speed := newLine("Speed", "vehicle speed against wind speed")
	speed.SetXAxis(xaxis).
		AddSeries("speed", lineData(v)).
		AddSeries("wind", lineData(constant(p.Wind, len(t))))

	position := newLine("Position", "distance travelled")
	position.SetXAxis(xaxis).AddSeries("position", lineData(x))

	collective := newLine("Collective", "scheduled pitch (deg)")
	collective.SetXAxis(xaxis).AddSeries("pitch", lineData(pitch))

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
	forces := newLine("Forces", "force breakdown along the direction of travel")
	forces.SetXAxis(xaxis).
		AddSeries("rotor thrust", lineData(thrust)).
		AddSeries("aero drag", lineData(aero)).
		AddSeries("rotor drag", lineData(drag)).
		AddSeries("rolling", lineData(rolling)).
		AddSeries("net", lineData(net))

	return []components.Charter{speed, position, collective, forces}
}

func (p *Page) rotorCharts() []components.Charter {
	st := p.Rotor
	xaxis := labels(st.Radius, "%.3f")
	sub := fmt.Sprintf("%.1f rpm, pitch %.1f deg, CT %.5f, CP %.6f",
		st.Condition.RPM, st.Condition.Pitch, st.CT, st.CP)

	aero := newLine("Strip aerodynamics", sub)
	aero.SetXAxis(xaxis).
		AddSeries("inflow", lineData(st.Inflow)).
		AddSeries("alpha", lineData(st.Alpha)).
		AddSeries("cl", lineData(st.Cl)).
		AddSeries("cd", lineData(st.Cd))

	loads := newLine("Strip loading", "dCT and dCP against radius")
	loads.SetXAxis(xaxis).
		AddSeries("dCT", lineData(st.StripCT())).
		AddSeries("dCP", lineData(st.StripCP()))

	return []components.Charter{aero, loads}
}

func (p *Page) validationCharts() []components.Charter {
	rep := p.Validation
	n := len(rep.Points)
	pitch := make([]float64, n)
	ct, refCT := make([]float64, n), make([]float64, n)
	cp, refCP := make([]float64, n), make([]float64, n)
	for i, pt := range rep.Points {
		pitch[i] = pt.Pitch
		ct[i], refCT[i] = pt.CT, pt.RefCT
		cp[i], refCP[i] = pt.CP, pt.RefCP
	}
	xaxis := labels(pitch, "%.1f")

	ctChart := newLine("Thrust coefficient", rep.Reference)
	ctChart.SetXAxis(xaxis).
		AddSeries("predicted", lineData(ct)).
		AddSeries("reference", lineData(refCT))

	cpChart := newLine("Power coefficient", rep.Reference)
	cpChart.SetXAxis(xaxis).
		AddSeries("predicted", lineData(cp)).
		AddSeries("reference", lineData(refCP))

	return []components.Charter{ctChart, cpChart}
}

// Render writes the page as standalone HTML.
func (p *Page) Render(w io.Writer) error {
	var all []components.Charter
	if p.Result != nil && len(p.Result.Samples) > 0 {
		all = append(all, p.runCharts()...)
	}
	if p.Rotor != nil && len(p.Rotor.Radius) > 0 {
		all = append(all, p.rotorCharts()...)
	}
	if p.Validation != nil && len(p.Validation.Points) > 0 {
		all = append(all, p.validationCharts()...)
	}
	if len(all) == 0 {
		return ErrEmpty
	}

	page := components.NewPage()
	if p.Title != "" {
		page.PageTitle = p.Title
	}
	page.AddCharts(all...)
	return page.Render(w)
}

// Handler serves the rendered page.
func (p *Page) Handler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := p.Render(w); err != nil {
		http.Error(w, err.Error(), http.StatusNotFound)
	}
}
