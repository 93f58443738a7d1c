package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/san-kum/rotorsim/internal/config"
	"github.com/san-kum/rotorsim/internal/optim"
	"github.com/san-kum/rotorsim/internal/plot"
	"github.com/san-kum/rotorsim/internal/report"
	"github.com/san-kum/rotorsim/internal/rotor"
	"github.com/san-kum/rotorsim/internal/units"
	"github.com/san-kum/rotorsim/internal/validation"
	"github.com/san-kum/rotorsim/internal/viz"
)

func runRotor(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	_, b, r, err := cfg.BuildRotor(config.BuildOptions{Logger: logger})
	if err != nil {
		return err
	}

	cond := rotor.Condition{Density: cfg.Sweep.Density, Axial: axial, RPM: rpm, Pitch: pitch}
	if density > 0 {
		cond.Density = density
	}
	if cond.Density <= 0 {
		cond.Density = cfg.Environment.Density
	}

	st, err := r.Calc(cond, nil)
	if err != nil {
		return err
	}

	fmt.Println(viz.Table([]string{"quantity", "value"}, [][]string{
		{"thrust", fmt.Sprintf("%.6g", st.Thrust)},
		{"power", fmt.Sprintf("%.6g", st.Power)},
		{"torque", fmt.Sprintf("%.6g", st.Torque)},
		{"CT", fmt.Sprintf("%.6g", st.CT)},
		{"CP", fmt.Sprintf("%.6g", st.CP)},
		{"unconverged strips", fmt.Sprintf("%d/%d", len(st.Unconverged), r.Strips())},
	}))
	chart, err := viz.StripChart(st, viz.StripField(field), 60, 12)
	if err != nil {
		return err
	}
	fmt.Println(chart)

	if plotDir != "" {
		figs, err := plot.Rotor(st)
		if err != nil {
			return err
		}
		bf, err := plot.Blade(b)
		if err != nil {
			return err
		}
		if _, err := plot.Save(plotDir, cfg.Name+"_", append(figs, bf...)); err != nil {
			return err
		}
		logger.Info("wrote figures", "dir", plotDir)
	}
	return nil
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	if err := cfg.ValidateSweep(); err != nil {
		return err
	}
	_, _, r, err := cfg.BuildRotor(config.BuildOptions{Logger: logger})
	if err != nil {
		return err
	}

	rep, err := validation.Run(r, cfg.Sweep.Condition(0), cfg.Sweep.Pitches(), validation.TN626)
	if err != nil {
		return err
	}

	rows := make([][]string, len(rep.Points))
	for i, p := range rep.Points {
		rows[i] = []string{
			fmt.Sprintf("%.0f", p.Pitch),
			fmt.Sprintf("%.5f", p.CT), fmt.Sprintf("%.5f", p.RefCT), percent(p.CTError),
			fmt.Sprintf("%.6f", p.CP), fmt.Sprintf("%.6f", p.RefCP), percent(p.CPError),
		}
	}
	fmt.Println(viz.Table([]string{"pitch", "CT", "ref CT", "err", "CP", "ref CP", "err"}, rows))
	fmt.Printf("max CT error above 6 deg: %s\n", percent(rep.MaxCTError(6)))

	if plotDir != "" {
		figs, err := plot.Validation(rep)
		if err != nil {
			return err
		}
		if _, err := plot.Save(plotDir, "validation_", figs); err != nil {
			return err
		}
		logger.Info("wrote figures", "dir", plotDir)
	}
	if reportFile != "" {
		page := &report.Page{Title: rep.Reference, Validation: rep}
		if err := writeFile(reportFile, page.Render); err != nil {
			return err
		}
		logger.Info("wrote report", "file", reportFile)
	}
	return nil
}

func percent(v float64) string {
	if v != v {
		return "-"
	}
	return fmt.Sprintf("%+.1f%%", 100*v)
}

func runSchedule(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return err
	}
	m, err := cfg.Build(config.BuildOptions{Logger: logger})
	if err != nil {
		return err
	}

	wind := cfg.Environment.Wind
	speeds := make([]float64, len(speedRatios))
	for i, k := range speedRatios {
		speeds[i] = k * wind
	}

	ctx, cancel := signalContext()
	defer cancel()
	sched, chosen, err := optim.BuildSchedule(ctx, m.Vehicle, cfg.Environment, speeds, pitchGrid)
	if err != nil {
		return err
	}

	rows := make([][]string, len(chosen))
	for i, c := range chosen {
		rows[i] = []string{
			fmt.Sprintf("%.2f", c.Speed/wind),
			fmt.Sprintf("%.2f", units.FpsToMph(c.Speed)),
			fmt.Sprintf("%.1f", c.Pitch),
			fmt.Sprintf("%.3f", c.Forces.RotorThrust),
			fmt.Sprintf("%.3f", c.Net),
		}
	}
	fmt.Println(viz.Table([]string{"v/wind", "mph", "pitch", "thrust", "net"}, rows))

	if saveConfig == "" {
		return nil
	}
	out := cfg.Clone()
	out.Schedule.Speed, out.Schedule.Pitch = sched.Points()
	out.Schedule.Relative = false
	if err := config.Save(saveConfig, out); err != nil {
		return err
	}
	logger.Info("saved config", "file", saveConfig)
	return nil
}

