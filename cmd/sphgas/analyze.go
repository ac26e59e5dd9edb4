package main

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/sphgas/internal/analysis"
	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/experiment"
	"github.com/san-kum/sphgas/internal/storage"
)

func analyzeRun(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	data, ok := stats.Series[analyzeMetric]
	if !ok {
		return fmt.Errorf("no statistic %q (available: %v)", analyzeMetric, stats.Names)
	}

	if ps := analysis.PowerSpectrum(data); len(ps) > 1 {
		graph := asciigraph.Plot(ps[1:],
			asciigraph.Height(12),
			asciigraph.Width(80),
			asciigraph.Caption("power spectrum ("+analyzeMetric+")"),
		)
		fmt.Println(graph)
	}
	if period, ok := analysis.DominantPeriod(stats.Times, data); ok {
		fmt.Printf("\ndominant period of %s: %.4e s\n", analyzeMetric, period)
	} else {
		fmt.Printf("\nno dominant period in %s\n", analyzeMetric)
	}

	snap, err := st.LoadParticles(runID)
	if err != nil {
		return err
	}
	fmt.Println("\nradial phase (x: r, y: v_r)")
	fmt.Print(analysis.ScatterToASCII(analysis.RadialPhase(snap), 80, 20))
	return nil
}

func runSensitivity(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := cfg.ToSim()
	if err != nil {
		return err
	}

	ctx, stop := interruptContext()
	defer stop()

	s, err := analysis.Separation(ctx, simCfg, perturbation, cfg.Run.Steps)
	if err != nil && (s == nil || len(s.Separation) == 0) {
		return err
	}
	logSep := make([]float64, len(s.Separation))
	for i, d := range s.Separation {
		logSep[i] = math.Log10(math.Max(d, math.SmallestNonzeroFloat64))
	}
	fmt.Println(asciigraph.Plot(logSep,
		asciigraph.Height(12),
		asciigraph.Width(80),
		asciigraph.Caption("log10 RMS separation vs step"),
	))
	fmt.Printf("\nsteps: %d\n", len(s.Separation))
	fmt.Printf("growth rate: %.4e 1/s\n", s.Rate)
	if s.Rate > 0 {
		fmt.Printf("e-folding time: %.4e s\n", 1/s.Rate)
	}
	return err
}

func runSweep(cmd *cobra.Command, args []string) error {
	cfg, err := resolveConfig(cmd)
	if err != nil {
		return err
	}
	simCfg, err := cfg.ToSim()
	if err != nil {
		return err
	}

	values := make([]float64, 0, len(sweepValues))
	for _, s := range sweepValues {
		v, err := strconv.ParseFloat(strings.TrimSpace(s), 64)
		if err != nil {
			return fmt.Errorf("bad sweep value %q: %w", s, err)
		}
		values = append(values, v)
	}
	if len(values) == 0 {
		return dynamo.ConfigError("no sweep values given")
	}

	ctx, stop := interruptContext()
	defer stop()

	points, err := analysis.Sweep(ctx, experiment.NewRegistry(), simCfg, sweepParam, values, cfg.Run.Steps)
	if err != nil && !errors.Is(err, dynamo.ErrContextCanceled) {
		return err
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
	fmt.Fprintf(w, "%s\tSTEPS\t%s\tSTATUS\n", strings.ToUpper(sweepParam), strings.ToUpper(sweepMetric))
	for _, p := range points {
		status := "ok"
		if p.Err != nil {
			status = p.Err.Error()
		}
		fmt.Fprintf(w, "%g\t%d\t%.4e\t%s\n", p.Value, p.Steps, p.Final[sweepMetric], status)
	}
	if ferr := w.Flush(); ferr != nil {
		return ferr
	}
	if best, ok := analysis.Best(points, sweepMetric); ok {
		fmt.Printf("\nsmallest %s at %s = %g\n", sweepMetric, sweepParam, best.Value)
	}
	return err
}
