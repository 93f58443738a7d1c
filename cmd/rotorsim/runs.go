package main

import (
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/plot"
	"github.com/san-kum/rotorsim/internal/report"
	"github.com/san-kum/rotorsim/internal/server"
	"github.com/san-kum/rotorsim/internal/storage"
	"github.com/san-kum/rotorsim/internal/units"
	"github.com/san-kum/rotorsim/internal/viz"
)

func listRuns(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	runs, err := st.List()
	if err != nil {
		return err
	}
	if len(runs) == 0 {
		fmt.Println("no runs found")
		return nil
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tNAME\tINTEGRATOR\tWIND (MPH)\tSTEPS\tMAX SPEED (MPH)")
	for _, r := range runs {
		fmt.Fprintf(w, "%s\t%s\t%s\t%.1f\t%d\t%.2f\n",
			r.ID, r.Name, r.Integrator, units.FpsToMph(r.Wind), r.StepsTaken, units.FpsToMph(r.Metrics["max_speed"]))
	}
	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}

	fmt.Println(viz.Metric("run", "%s (%s)", meta.ID, meta.Name))
	fmt.Println(viz.SpeedChart(result, meta.Wind, 70, 12))
	final, err := st.LoadStripState(args[0])
	if err != nil {
		logger.Debug("no strip data", "run", args[0], "err", err)
	}
	if final != nil {
		chart, err := viz.StripChart(final, viz.FieldDCT, 60, 10)
		if err != nil {
			return err
		}
		fmt.Println(chart)
	}

	if plotDir == "" {
		return nil
	}
	figs, err := plot.Run(result, meta.Wind)
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
	paths, err := plot.Save(plotDir, meta.ID+"_", figs)
	if err != nil {
		return err
	}
	for _, p := range paths {
		fmt.Println(p)
	}
	return nil
}

// output returns stdout or the --output file.
func output() (io.WriteCloser, error) {
	if outFile == "" {
		return nopCloser{os.Stdout}, nil
	}
	return os.Create(outFile)
}

type nopCloser struct{ io.Writer }

func (nopCloser) Close() error { return nil }

func exportCSV(cmd *cobra.Command, args []string) error {
	samples, err := storage.New(dataDir).LoadSamples(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := storage.WriteSamplesCSV(w, samples); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	w, err := output()
	if err != nil {
		return err
	}
	if err := storage.ExportJSON(w, meta, result); err != nil {
		w.Close()
		return err
	}
	return w.Close()
}

func reportRun(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	meta, err := st.Load(args[0])
	if err != nil {
		return err
	}
	result, err := st.LoadResult(args[0])
	if err != nil {
		return err
	}
	final, err := st.LoadStripState(args[0])
	if err != nil {
		final = nil
	}

	page := &report.Page{Title: meta.Name + " " + meta.ID, Result: result, Wind: meta.Wind, Rotor: final}
	if err := writeFile(outFile, page.Render); err != nil {
		return err
	}
	logger.Info("wrote report", "file", outFile)
	return nil
}

func showPresets(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		fmt.Println(strings.Join(config.ListPresets(), "\n"))
		return nil
	}
	cfg, err := config.GetPreset(args[0])
	if err != nil {
		return err
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return err
	}
	fmt.Print(string(data))
	return nil
}

func serve(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	if err := st.Init(); err != nil {
		return err
	}
	s := server.New(server.WithLogger(logger), server.WithStore(st))

	ctx, cancel := signalContext()
	defer cancel()
	return s.ListenAndServe(ctx, addr)
}
