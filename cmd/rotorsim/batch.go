package main

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/san-kum/rotorsim/internal/automation"
	"github.com/san-kum/rotorsim/internal/storage"
	"github.com/san-kum/rotorsim/internal/units"
	"github.com/san-kum/rotorsim/internal/viz"
)

func automationOptions() (automation.Options, error) {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return automation.Options{}, err
	}
	return automation.Options{Logger: logger, Store: st, Workers: workers}, nil
}

func runScenario(cmd *cobra.Command, args []string) error {
	sc, err := automation.LoadScenario(args[0])
	if err != nil {
		return err
	}
	opts, err := automationOptions()
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	results, err := automation.RunScenario(ctx, sc, opts)

	rows := make([][]string, len(results))
	for i, r := range results {
		maxSpeed := r.Result.Metrics["max_speed"]
		rows[i] = []string{
			strconv.Itoa(i + 1),
			r.Config.Name,
			fmt.Sprintf("%.2f", units.FpsToMph(maxSpeed)),
			fmt.Sprintf("%.2f", maxSpeed/r.Config.Environment.Wind),
			strconv.Itoa(r.Result.StepsTaken),
			r.RunID,
		}
	}
	fmt.Println(viz.Table([]string{"step", "config", "max mph", "v/wind", "steps", "run id"}, rows))
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	lo, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		return fmt.Errorf("min: %w", err)
	}
	hi, err := strconv.ParseFloat(args[2], 64)
	if err != nil {
		return fmt.Errorf("max: %w", err)
	}
	n, err := strconv.Atoi(args[3])
	if err != nil {
		return fmt.Errorf("count: %w", err)
	}

	ctx, cancel := signalContext()
	defer cancel()
	sw := &automation.ParameterSweep{Base: cfg, Param: args[0], Min: lo, Max: hi, Count: n}
	results, err := automation.RunSweep(ctx, sw, automation.Options{Logger: logger, Workers: workers})
	if err != nil {
		return err
	}

	rows := make([][]string, len(results))
	maxes := make([]float64, len(results))
	for i, r := range results {
		maxes[i] = units.FpsToMph(r.MaxSpeed)
		rows[i] = []string{
			fmt.Sprintf("%.4g", r.Value),
			fmt.Sprintf("%.2f", maxes[i]),
			fmt.Sprintf("%.2f", units.FpsToMph(r.FinalSpeed)),
			fmt.Sprintf("%.1f", r.Distance),
			strconv.Itoa(r.MaxSpeedStep),
		}
	}
	fmt.Println(viz.Table([]string{args[0], "max mph", "final mph", "distance", "stop step"}, rows))
	fmt.Println(viz.SeriesChart(maxes, "max speed (mph) vs "+args[0], 60, 10))
	return nil
}

func runMonteCarlo(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}

	ctx, cancel := signalContext()
	defer cancel()
	mc := &automation.MonteCarloConfig{
		Base:       cfg,
		WindSpread: windSpread,
		CrrSpread:  crrSpread,
		Trials:     trials,
		Seed:       seed,
	}
	results, err := automation.RunMonteCarlo(ctx, mc, automation.Options{Logger: logger, Workers: workers})
	if err != nil {
		return err
	}

	faster, mean, std := automation.MonteCarloStats(results)
	fmt.Println(viz.Metric("faster than wind", "%d/%d", faster, len(results)))
	fmt.Println(viz.Metric("max speed / wind", "%.3f ± %.3f", mean, std))
	fmt.Println(viz.ProgressBar(float64(faster)/float64(len(results)), 40))
	return nil
}
