package server

import (
	"fmt"
	"net/http"

	"github.com/gorilla/mux"

	"github.com/san-kum/rotorsim/internal/automation"
	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/metrics"
	"github.com/san-kum/rotorsim/internal/report"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/sim"
)

// CalcRequest is one rotor operating point. Omitted fields fall back to
// the preset's sweep section.
type CalcRequest struct {
	Preset  string   `json:"preset"`
	Density *float64 `json:"density,omitempty"`
	Axial   *float64 `json:"axial,omitempty"`
	RPM     *float64 `json:"rpm,omitempty"`
	Pitch   float64  `json:"pitch"`
	// Cold discards the stored warm start before solving.
	Cold bool `json:"cold,omitempty"`
}

func (c CalcRequest) condition(sw config.SweepConfig) rotor.Condition {
	cond := sw.Condition(c.Pitch)
	if c.Density != nil {
		cond.Density = *c.Density
	}
	if c.Axial != nil {
		cond.Axial = *c.Axial
	}
	if c.RPM != nil {
		cond.RPM = *c.RPM
	}
	return cond
}

func (s *Server) handleRotorCalc(w http.ResponseWriter, r *http.Request) {
	var req CalcRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := s.session(req.Preset)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	if req.Cold {
		sess.inflow = nil
	}
	st, err := sess.rotor.Calc(req.condition(sess.cfg.Sweep), sess.inflow)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	sess.inflow = st.Inflow
	writeJSON(w, http.StatusOK, st)
}

// SweepRequest sweeps collective at one operating point. An empty Pitch
// list uses the preset's sweep pitches.
type SweepRequest struct {
	CalcRequest
	Pitches []float64 `json:"pitches,omitempty"`
}

func (s *Server) handleRotorSweep(w http.ResponseWriter, r *http.Request) {
	var req SweepRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	sess, err := s.session(req.Preset)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	pitches := req.Pitches
	if len(pitches) == 0 {
		pitches = sess.cfg.Sweep.Pitches()
	}

	sess.mu.Lock()
	defer sess.mu.Unlock()
	points, inflow, err := sess.rotor.Sweep(req.condition(sess.cfg.Sweep), pitches, nil)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	sess.inflow = inflow
	writeJSON(w, http.StatusOK, points)
}

// RunRequest runs a vehicle preset with parameter overrides.
type RunRequest struct {
	Preset   string             `json:"preset"`
	Params   map[string]float64 `json:"params,omitempty"`
	Method   string             `json:"method,omitempty"`
	MaxSteps int                `json:"max_steps,omitempty"`
	Save     bool               `json:"save,omitempty"`
}

type RunResponse struct {
	RunID  string      `json:"run_id,omitempty"`
	Result *sim.Result `json:"result"`
}

func (s *Server) handleSimRun(w http.ResponseWriter, r *http.Request) {
	var req RunRequest
	if err := decode(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, err)
		return
	}
	if req.Preset == "" {
		req.Preset = "ddwfttw"
	}
	cfg, err := config.GetPreset(req.Preset)
	if err == nil {
		err = automation.ApplyParams(cfg, req.Params)
	}
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	if req.Method != "" {
		cfg.Integrator.Method = req.Method
	}
	if req.MaxSteps > 0 {
		cfg.Integrator.MaxSteps = req.MaxSteps
	}
	if cfg.Integrator.MaxSteps > s.maxSteps {
		writeError(w, http.StatusBadRequest, fmt.Errorf("%w: max_steps %d exceeds %d", errBadRequest, cfg.Integrator.MaxSteps, s.maxSteps))
		return
	}

	m, err := cfg.Build(config.BuildOptions{Logger: s.logger, Recorder: s.solver})
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	sm := m.Simulator()
	sm.SetLogger(s.logger)
	sm.AddObserver(s.vehicle)
	for _, mt := range metrics.Standard() {
		sm.AddMetric(mt)
	}

	res, err := sm.Run(r.Context(), cfg.Integrator)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}

	resp := RunResponse{Result: res}
	if req.Save && s.store != nil {
		id, err := s.store.Save(cfg, res, m.Vehicle.LastRotorState())
		if err != nil {
			writeError(w, http.StatusInternalServerError, err)
			return
		}
		resp.RunID = id
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) requireStore(w http.ResponseWriter) bool {
	if s.store == nil {
		writeError(w, http.StatusNotFound, fmt.Errorf("run store not configured"))
		return false
	}
	return true
}

func (s *Server) handleRuns(w http.ResponseWriter, _ *http.Request) {
	if !s.requireStore(w) {
		return
	}
	runs, err := s.store.List()
	if err != nil {
		writeError(w, http.StatusInternalServerError, err)
		return
	}
	writeJSON(w, http.StatusOK, runs)
}

func (s *Server) handleRun(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id := mux.Vars(r)["id"]
	meta, err := s.store.Load(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	res, err := s.store.LoadResult(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"metadata": meta, "result": res})
}

func (s *Server) handleRunReport(w http.ResponseWriter, r *http.Request) {
	if !s.requireStore(w) {
		return
	}
	id := mux.Vars(r)["id"]
	meta, err := s.store.Load(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	res, err := s.store.LoadResult(id)
	if err != nil {
		writeError(w, statusFor(err), err)
		return
	}
	page := &report.Page{Title: meta.Name, Result: res, Wind: meta.Wind}
	page.Handler(w, r)
}
