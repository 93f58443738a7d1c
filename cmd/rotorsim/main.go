package main

import (
	"os"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	dataDir    string
	configFile string
	preset     string
	verbose    bool

	// vehicle run overrides
	dt           float64
	maxSteps     int
	method       string
	windMph      float64
	initialMph   float64
	every        int
	noSave       bool
	plotDir      string
	reportFile   string
	fixedPitch   float64
	holdMph      float64
	holdGain     float64
	parallelCalc bool

	// rotor operating point
	rpm     float64
	pitch   float64
	axial   float64
	density float64
	field   string

	outFile string
	addr    string

	// schedule search
	speedRatios []float64
	pitchGrid   []float64
	saveConfig  string

	// sweep and monte carlo
	workers    int
	trials     int
	windSpread float64
	crrSpread  float64
	seed       int64
)

var logger = log.NewWithOptions(os.Stderr, log.Options{ReportTimestamp: true})

// main registers every command and exits with status 1 if one fails.
func main() {
	rootCmd := &cobra.Command{
		Use:   "rotorsim",
		Short: "blade element momentum rotor solver and downwind cart simulator",
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			if verbose {
				logger.SetLevel(log.DebugLevel)
			}
			log.SetDefault(logger)
		},
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".rotorsim", "data directory")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "simulate the cart until it stops accelerating",
		RunE:  runVehicle,
	}
	addConfigFlags(runCmd, "ddwfttw")
	addVehicleFlags(runCmd)
	runCmd.Flags().IntVar(&every, "every", 10, "log progress every n steps")
	runCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")
	runCmd.Flags().StringVar(&plotDir, "plot", "", "write PNG figures to this directory")
	runCmd.Flags().StringVar(&reportFile, "report", "", "write an HTML report to this file")

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "simulate the cart with a live terminal view",
		RunE:  runLive,
	}
	addConfigFlags(liveCmd, "ddwfttw")
	addVehicleFlags(liveCmd)
	liveCmd.Flags().BoolVar(&noSave, "no-save", false, "do not store the run")

	rotorCmd := &cobra.Command{
		Use:   "rotor",
		Short: "solve the rotor at one operating point",
		RunE:  runRotor,
	}
	addConfigFlags(rotorCmd, "tn626")
	addConditionFlags(rotorCmd)
	rotorCmd.Flags().StringVar(&field, "field", "dct", "strip distribution to chart (inflow, alpha, cl, cd, dct, dcp)")
	rotorCmd.Flags().StringVar(&plotDir, "plot", "", "write PNG figures to this directory")

	validateCmd := &cobra.Command{
		Use:   "validate",
		Short: "compare a collective sweep against NACA TN-626",
		RunE:  runValidate,
	}
	addConfigFlags(validateCmd, "tn626")
	validateCmd.Flags().StringVar(&plotDir, "plot", "", "write PNG figures to this directory")
	validateCmd.Flags().StringVar(&reportFile, "report", "", "write an HTML report to this file")
	validateCmd.Flags().BoolVar(&parallelCalc, "parallel", false, "solve strips concurrently")

	scheduleCmd := &cobra.Command{
		Use:   "schedule",
		Short: "search the collective that maximises net force at each speed",
		RunE:  runSchedule,
	}
	addConfigFlags(scheduleCmd, "ddwfttw")
	scheduleCmd.Flags().Float64SliceVar(&speedRatios, "speeds", []float64{0.5, 0.8, 1, 1.5, 2, 2.5}, "speeds as multiples of the wind")
	scheduleCmd.Flags().Float64SliceVar(&pitchGrid, "pitches", []float64{0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}, "candidate collective angles")
	scheduleCmd.Flags().StringVar(&saveConfig, "save-config", "", "write the config with the found schedule to this file")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run a YAML scenario of presets and parameter overrides",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	sweepCmd := &cobra.Command{
		Use:   "sweep [param] [min] [max] [count]",
		Short: "run the cart across values of one parameter",
		Args:  cobra.ExactArgs(4),
		RunE:  runSweep,
	}
	addConfigFlags(sweepCmd, "ddwfttw")
	sweepCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	monteCarloCmd := &cobra.Command{
		Use:   "montecarlo",
		Short: "run the cart under random wind and rolling resistance",
		RunE:  runMonteCarlo,
	}
	addConfigFlags(monteCarloCmd, "ddwfttw")
	monteCarloCmd.Flags().IntVar(&trials, "trials", 20, "number of runs")
	monteCarloCmd.Flags().Float64Var(&windSpread, "wind-spread", 0.2, "relative wind perturbation")
	monteCarloCmd.Flags().Float64Var(&crrSpread, "crr-spread", 0.3, "relative rolling resistance perturbation")
	monteCarloCmd.Flags().Int64Var(&seed, "seed", 0, "random seed (0 = time)")
	monteCarloCmd.Flags().IntVar(&workers, "workers", 0, "concurrent runs (0 = GOMAXPROCS)")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list stored runs",
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "chart a stored run in the terminal or as PNG files",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringVar(&plotDir, "out", "", "write PNG figures to this directory")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export a run's time series to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export a run to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().StringVarP(&outFile, "output", "o", "", "output file (default stdout)")

	reportCmd := &cobra.Command{
		Use:   "report [run_id]",
		Short: "write an HTML report of a stored run",
		Args:  cobra.ExactArgs(1),
		RunE:  reportRun,
	}
	reportCmd.Flags().StringVarP(&outFile, "output", "o", "report.html", "output file")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE:  showPresets,
	}

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "serve the HTTP API",
		RunE:  serve,
	}
	serveCmd.Flags().StringVar(&addr, "addr", ":8080", "listen address")

	rootCmd.AddCommand(runCmd, liveCmd, rotorCmd, validateCmd, scheduleCmd, scenarioCmd, sweepCmd,
		monteCarloCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, reportCmd, presetsCmd, serveCmd)

	if err := rootCmd.Execute(); err != nil {
		logger.Error("command failed", "err", err)
		os.Exit(1)
	}
}

func addConfigFlags(cmd *cobra.Command, defaultPreset string) {
	cmd.Flags().StringVar(&configFile, "config", "", "config file path (yaml)")
	cmd.Flags().StringVar(&preset, "preset", defaultPreset, "preset used when no config file is given")
}

func addVehicleFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&dt, "dt", 0.5, "time step (s)")
	cmd.Flags().IntVar(&maxSteps, "steps", 1000, "step limit")
	cmd.Flags().StringVar(&method, "integrator", "rk4", "integrator (rk4, euler)")
	cmd.Flags().Float64Var(&windMph, "wind", 10, "tailwind (mph)")
	cmd.Flags().Float64Var(&initialMph, "initial-speed", 5, "initial speed (mph)")
	cmd.Flags().Float64Var(&fixedPitch, "pitch", 0, "fixed collective instead of the schedule (deg)")
	cmd.Flags().Float64Var(&holdMph, "hold", 0, "trim collective to hold this speed (mph)")
	cmd.Flags().Float64Var(&holdGain, "hold-gain", 0.5, "proportional gain of the speed hold (deg per mph)")
	cmd.Flags().BoolVar(&parallelCalc, "parallel", false, "solve strips concurrently")
}

func addConditionFlags(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&rpm, "rpm", 960, "rotor speed")
	cmd.Flags().Float64Var(&pitch, "pitch", 8, "collective (deg)")
	cmd.Flags().Float64Var(&axial, "axial", 0, "axial inflow speed")
	cmd.Flags().Float64Var(&density, "density", 0, "air density in config units (0 = config)")
	cmd.Flags().BoolVar(&parallelCalc, "parallel", false, "solve strips concurrently")
}
