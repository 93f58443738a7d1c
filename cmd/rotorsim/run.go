package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sort"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/control"
	"github.com/san-kum/rotorsim/internal/metrics"
	"github.com/san-kum/rotorsim/internal/plot"
	"github.com/san-kum/rotorsim/internal/report"
	"github.com/san-kum/rotorsim/internal/sim"
	"github.com/san-kum/rotorsim/internal/storage"
	"github.com/san-kum/rotorsim/internal/units"
	"github.com/san-kum/rotorsim/internal/viz"
)

// loadConfig reads --config or --preset, then applies only the flags the
// user set.
func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configFile != "" {
		cfg, err = config.Load(configFile)
		if err != nil {
			return nil, fmt.Errorf("failed to load config: %w", err)
		}
	} else {
		cfg, err = config.GetPreset(preset)
		if err != nil {
			return nil, fmt.Errorf("%w (available: %v)", err, config.ListPresets())
		}
	}

	changed := func(name string) bool {
		f := cmd.Flags().Lookup(name)
		return f != nil && f.Changed
	}
	if changed("dt") {
		cfg.Integrator.Dt = dt
	}
	if changed("steps") {
		cfg.Integrator.MaxSteps = maxSteps
	}
	if changed("integrator") {
		cfg.Integrator.Method = method
	}
	if changed("wind") {
		cfg.Environment.Wind = units.MphToFpsSpeed(windMph)
	}
	if changed("initial-speed") {
		cfg.Integrator.InitialSpeed = units.MphToFpsSpeed(initialMph)
	}
	if changed("parallel") {
		cfg.Rotor.Parallel = parallelCalc
	}
	return cfg, nil
}

func buildSimulator(cmd *cobra.Command, cfg *config.Config) (*config.Model, *sim.Simulator, error) {
	m, err := cfg.Build(config.BuildOptions{Logger: logger})
	if err != nil {
		return nil, nil, err
	}
	sm := m.Simulator()
	if cmd.Flags().Changed("pitch") {
		sm.Context().Pitch = control.NewFixed(fixedPitch)
	}
	if holdMph > 0 {
		// Gains are per mph; the controller sees ft/s.
		k := holdGain / units.FpsToMph(1)
		pid := control.NewPID(sm.Context().Pitch, k, k/10, 0, units.MphToFpsSpeed(holdMph))
		pid.Min, pid.Max = -5, 20
		sm.Context().Pitch = pid
	}
	sm.SetLogger(logger)
	for _, mt := range metrics.Standard() {
		sm.AddMetric(mt)
	}
	return m, sm, nil
}

func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt)
}

func runVehicle(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, sm, err := buildSimulator(cmd, cfg)
	if err != nil {
		return err
	}
	if every > 0 {
		sm.AddObserver(sim.ObserverFunc(func(s sim.Sample) {
			if s.Step%every == 0 {
				logger.Info("step", "n", s.Step, "t", s.Time, "mph", fmt.Sprintf("%.3f", units.FpsToMph(s.Speed)),
					"pitch", s.Pitch, "net", s.Forces.Net())
			}
		}))
	}

	ctx, cancel := signalContext()
	defer cancel()

	logger.Info("running", "config", cfg.Name, "wind_mph", units.FpsToMph(cfg.Environment.Wind),
		"integrator", cfg.Integrator.Method, "dt", cfg.Integrator.Dt)
	start := time.Now()
	result, err := sm.Run(ctx, cfg.Integrator)
	if err != nil {
		if result == nil {
			return err
		}
		logger.Warn("run ended early", "err", err)
	}
	logger.Info("completed", "elapsed", time.Since(start), "steps", result.StepsTaken)

	printSummary(cfg, result)
	return finishRun(cfg, m, result)
}

// finishRun stores the run and writes any requested figures and report.
func finishRun(cfg *config.Config, m *config.Model, result *sim.Result) error {
	final := m.Vehicle.LastRotorState()
	if !noSave {
		st := storage.New(dataDir)
		if err := st.Init(); err != nil {
			return err
		}
		runID, err := st.Save(cfg, result, final)
		if err != nil {
			return err
		}
		fmt.Printf("run id: %s\n", runID)
	}

	if plotDir != "" {
		figs, err := plot.Run(result, cfg.Environment.Wind)
		if err != nil {
			return err
		}
		if final != nil {
			rf, err := plot.Rotor(final)
			if err != nil {
				return err
			}
			figs = append(figs, rf...)
		}
		bf, err := plot.Blade(m.Blade)
		if err != nil {
			return err
		}
		paths, err := plot.Save(plotDir, cfg.Name+"_", append(figs, bf...))
		if err != nil {
			return err
		}
		logger.Info("wrote figures", "dir", plotDir, "count", len(paths))
	}

	if reportFile != "" {
		page := &report.Page{Title: cfg.Name, Result: result, Wind: cfg.Environment.Wind, Rotor: final}
		if err := writeFile(reportFile, page.Render); err != nil {
			return err
		}
		logger.Info("wrote report", "file", reportFile)
	}
	return nil
}

func printSummary(cfg *config.Config, result *sim.Result) {
	wind := cfg.Environment.Wind
	if last, ok := result.Final(); ok {
		fmt.Printf("final speed: %.3f mph (%.2fx wind)\n", units.FpsToMph(last.Speed), last.Speed/wind)
	}
	if result.MaxSpeedStep >= 0 {
		fmt.Printf("max speed reached at step %d\n", result.MaxSpeedStep)
	} else {
		fmt.Printf("step limit reached after %d steps\n", result.StepsTaken)
	}

	names := make([]string, 0, len(result.Metrics))
	for name := range result.Metrics {
		names = append(names, name)
	}
	sort.Strings(names)
	rows := make([][]string, len(names))
	for i, name := range names {
		rows[i] = []string{name, fmt.Sprintf("%.6g", result.Metrics[name])}
	}
	fmt.Println(viz.Table([]string{"metric", "value"}, rows))
	if chart := viz.SpeedChart(result, wind, 70, 10); chart != "" {
		fmt.Println(chart)
	}
}

func runLive(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, sm, err := buildSimulator(cmd, cfg)
	if err != nil {
		return err
	}
	// The view owns the terminal; keep solver warnings out of it.
	level := logger.GetLevel()
	logger.SetLevel(log.ErrorLevel)

	run, err := sm.Start(cfg.Integrator)
	if err != nil {
		return err
	}
	live := viz.NewLive(run, cfg.Name, cfg.Environment.Wind, cfg.Rotor.Blades)
	if _, err := tea.NewProgram(live, tea.WithAltScreen()).Run(); err != nil {
		return err
	}
	logger.SetLevel(level)
	if live.Err() != nil {
		return live.Err()
	}

	printSummary(cfg, live.Result())
	if !live.Done() {
		noSave = true
		logger.Info("run interrupted, not saved")
	}
	return finishRun(cfg, m, live.Result())
}

// writeFile creates path and hands it to fn.
func writeFile(path string, fn func(w io.Writer) error) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
