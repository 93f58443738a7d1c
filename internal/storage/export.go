package storage

import (
	"encoding/json"
	"io"

	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/vehicle"
)

type ExportData struct {
	Name         string              `json:"name"`
	Integrator   string              `json:"integrator"`
	Dt           float64             `json:"dt"`
	Environment  vehicle.Environment `json:"environment"`
	Steps        int                 `json:"steps"`
	MaxSpeedStep int                 `json:"max_speed_step"`
	Samples      []sim.Sample        `json:"samples"`
	Metrics      map[string]float64  `json:"metrics"`
}

// ExportJSON writes an indented JSON document of a run.
func ExportJSON(w io.Writer, meta *RunMetadata, result *sim.Result) error {
	data := ExportData{
		Name:         meta.Name,
		Integrator:   meta.Integrator,
		Dt:           meta.Dt,
		Environment:  vehicle.Environment{Wind: meta.Wind, Density: meta.Density},
		Steps:        result.StepsTaken,
		MaxSpeedStep: result.MaxSpeedStep,
		Samples:      result.Samples,
		Metrics:      result.Metrics,
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
