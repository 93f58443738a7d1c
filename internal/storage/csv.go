package storage

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"gonum.org/v1/gonum/floats"

	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

var sampleHeader = []string{
	"step", "time", "position", "speed", "pitch",
	"rotor_thrust", "aero_drag", "rotor_drag", "rolling", "net",
	"rotor_rpm", "power", "ct", "cp",
}

var stripHeader = []string{"radius", "inflow", "alpha", "cl", "cd", "dT", "dP", "dCT", "dCP", "iterations"}

func format(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func WriteSamplesCSV(w io.Writer, samples []sim.Sample) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(sampleHeader); err != nil {
		return err
	}
	for _, s := range samples {
		f := s.Forces
		row := []string{
			strconv.Itoa(s.Step), format(s.Time), format(s.Position), format(s.Speed), format(s.Pitch),
			format(f.RotorThrust), format(f.AeroDrag), format(f.RotorDrag), format(f.Rolling), format(f.Net()),
			format(s.RotorRPM), format(s.Power), format(s.CT), format(s.CP),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

func ReadSamplesCSV(r io.Reader) ([]sim.Sample, error) {
	cols, err := ReadColumnsCSV(r)
	if err != nil {
		return nil, err
	}
	for _, h := range sampleHeader {
		if _, ok := cols[h]; !ok {
			return nil, fmt.Errorf("storage: time series missing column %q", h)
		}
	}
	n := len(cols["time"])
	samples := make([]sim.Sample, n)
	for i := range samples {
		samples[i] = sim.Sample{
			Step:     int(cols["step"][i]),
			Time:     cols["time"][i],
			Position: cols["position"][i],
			Speed:    cols["speed"][i],
			Pitch:    cols["pitch"][i],
			Forces: vehicle.Forces{
				RotorThrust: cols["rotor_thrust"][i],
				AeroDrag:    cols["aero_drag"][i],
				RotorDrag:   cols["rotor_drag"][i],
				Rolling:     cols["rolling"][i],
			},
			RotorRPM: cols["rotor_rpm"][i],
			Power:    cols["power"][i],
			CT:       cols["ct"][i],
			CP:       cols["cp"][i],
		}
	}
	return samples, nil
}

func WriteStripsCSV(w io.Writer, st *rotor.State) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(stripHeader); err != nil {
		return err
	}
	dct, dcp := st.StripCT(), st.StripCP()
	for i := range st.Radius {
		row := []string{
			format(st.Radius[i]), format(st.Inflow[i]), format(st.Alpha[i]),
			format(st.Cl[i]), format(st.Cd[i]), format(st.DT[i]), format(st.DP[i]),
			format(dct[i]), format(dcp[i]), strconv.Itoa(st.Iterations[i]),
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// ReadStripsCSV rebuilds the strip arrays of a solve. Totals are the strip
// sums; the operating condition is not stored and is left zero.
func ReadStripsCSV(r io.Reader) (*rotor.State, error) {
	cols, err := ReadColumnsCSV(r)
	if err != nil {
		return nil, err
	}
	for _, h := range stripHeader {
		if _, ok := cols[h]; !ok {
			return nil, fmt.Errorf("storage: strips missing column %q", h)
		}
	}
	iters := make([]int, len(cols["iterations"]))
	for i, v := range cols["iterations"] {
		iters[i] = int(v)
	}
	return &rotor.State{
		Radius:     cols["radius"],
		Inflow:     cols["inflow"],
		Alpha:      cols["alpha"],
		Cl:         cols["cl"],
		Cd:         cols["cd"],
		DT:         cols["dT"],
		DP:         cols["dP"],
		Iterations: iters,
		Thrust:     floats.Sum(cols["dT"]),
		Power:      floats.Sum(cols["dP"]),
		CT:         floats.Sum(cols["dCT"]),
		CP:         floats.Sum(cols["dCP"]),
	}, nil
}

// ReadColumnsCSV reads a headed numeric CSV into columns keyed by header.
func ReadColumnsCSV(r io.Reader) (map[string][]float64, error) {
	cr := csv.NewReader(r)
	records, err := cr.ReadAll()
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, fmt.Errorf("storage: empty csv")
	}
	header := records[0]
	cols := make(map[string][]float64, len(header))
	for _, h := range header {
		cols[h] = make([]float64, 0, len(records)-1)
	}
	for line, rec := range records[1:] {
		for j, field := range rec {
			v, err := strconv.ParseFloat(field, 64)
			if err != nil {
				return nil, fmt.Errorf("storage: row %d column %q: %w", line+2, header[j], err)
			}
			cols[header[j]] = append(cols[header[j]], v)
		}
	}
	return cols, nil
}
