package viz

import (
	"fmt"

	"github.com/guptarohit/asciigraph"

	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/units"
)

// SpeedChart plots vehicle speed and the wind speed in mph.
func SpeedChart(res *sim.Result, wind float64, width, height int) string {
	if res == nil || len(res.Samples) < 2 {
		return ""
	}
	speed := make([]float64, len(res.Samples))
	windLine := make([]float64, len(res.Samples))
	for i, s := range res.Samples {
		speed[i] = units.FpsToMph(s.Speed)
		windLine[i] = units.FpsToMph(wind)
	}
	return speedPlot(speed, windLine, width, height)
}

func speedPlot(speed, wind []float64, width, height int) string {
	return asciigraph.PlotMany([][]float64{speed, wind},
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.SeriesColors(asciigraph.Green, asciigraph.Gray),
		asciigraph.Caption("speed (mph) vs wind"),
	)
}

// StripField selects a per-strip array of a rotor solve.
type StripField string

const (
	FieldInflow StripField = "inflow"
	FieldAlpha  StripField = "alpha"
	FieldCl     StripField = "cl"
	FieldCd     StripField = "cd"
	FieldDCT    StripField = "dct"
	FieldDCP    StripField = "dcp"
)

func StripFields() []StripField {
	return []StripField{FieldInflow, FieldAlpha, FieldCl, FieldCd, FieldDCT, FieldDCP}
}

func (f StripField) values(st *rotor.State) ([]float64, error) {
	switch f {
	case FieldInflow:
		return st.Inflow, nil
	case FieldAlpha:
		return st.Alpha, nil
	case FieldCl:
		return st.Cl, nil
	case FieldCd:
		return st.Cd, nil
	case FieldDCT:
		return st.StripCT(), nil
	case FieldDCP:
		return st.StripCP(), nil
	}
	return nil, fmt.Errorf("viz: unknown strip field %q", string(f))
}

// StripChart plots one strip distribution from root to tip.
func StripChart(st *rotor.State, field StripField, width, height int) (string, error) {
	ys, err := field.values(st)
	if err != nil {
		return "", err
	}
	if len(ys) == 0 {
		return "", fmt.Errorf("viz: no strips to plot")
	}
	return asciigraph.Plot(ys,
		asciigraph.Width(width),
		asciigraph.Height(height),
		asciigraph.Caption(fmt.Sprintf("%s, r = %.3g to %.3g", field, st.Radius[0], st.Radius[len(st.Radius)-1])),
	), nil
}

// SeriesChart plots any series with a caption.
func SeriesChart(ys []float64, caption string, width, height int) string {
	if len(ys) == 0 {
		return ""
	}
	return asciigraph.Plot(ys, asciigraph.Width(width), asciigraph.Height(height), asciigraph.Caption(caption))
}
