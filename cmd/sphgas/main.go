package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/san-kum/sphgas/internal/config"
)

var (
	dataDir  string
	logLevel string

	// Run configuration
	configFile  string
	preset      string
	runName     string
	count       int
	radius      float64
	temperature float64
	neighbors   int
	dt          float64
	steps       int
	every       int
	seed        int64
	workers     int
	search      string
	solver      string
	theta       float64
	noGravity   bool
	noGas       bool

	// Live view
	frameRate     int
	stepsPerFrame int
	theme         string
	showAxes      bool

	// Output
	plotMetrics   []string
	svgMetric     string
	withParticles bool
	outFile       string
	braille       bool
	svgWidth      int
	svgHeight     int

	// Batch commands
	numRuns     int
	seedStart   int64
	concurrency int
	reps        int

	// Analysis
	analyzeMetric string
	perturbation  float64
	sweepParam    string
	sweepValues   []string
	sweepMetric   string
)

// main registers commands and flags and executes the root command. It
// exits with status 1 if command execution returns an error.
func main() {
	rootCmd := &cobra.Command{
		Use:           "sphgas",
		Short:         "self-gravitating SPH gas cloud simulator",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level, err := logrus.ParseLevel(logLevel)
			if err != nil {
				return err
			}
			logrus.SetLevel(level)
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&dataDir, "data", ".sphgas", "data directory")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "warn", "log level (debug, info, warn, error)")

	runCmd := &cobra.Command{
		Use:   "run",
		Short: "run a simulation and store its statistics",
		Args:  cobra.NoArgs,
		RunE:  runSimulation,
	}
	addRunFlags(runCmd)

	liveCmd := &cobra.Command{
		Use:   "live",
		Short: "run a simulation with live terminal visualization",
		Args:  cobra.NoArgs,
		RunE:  runLive,
	}
	addRunFlags(liveCmd)
	liveCmd.Flags().IntVar(&frameRate, "fps", 30, "frame rate")
	liveCmd.Flags().IntVar(&stepsPerFrame, "steps-per-frame", 1, "simulation steps per frame")
	liveCmd.Flags().StringVar(&theme, "theme", "nebula", "color theme")
	liveCmd.Flags().BoolVar(&showAxes, "axes", false, "draw the world axes")

	listCmd := &cobra.Command{
		Use:   "list",
		Short: "list runs",
		Args:  cobra.NoArgs,
		RunE:  listRuns,
	}

	plotCmd := &cobra.Command{
		Use:   "plot [run_id]",
		Short: "plot run statistics",
		Args:  cobra.ExactArgs(1),
		RunE:  plotRun,
	}
	plotCmd.Flags().StringSliceVar(&plotMetrics, "metric", []string{"total_energy", "radius", "temperature", "kinetic"}, "statistics to plot")

	exportCSVCmd := &cobra.Command{
		Use:   "export-csv [run_id]",
		Short: "export run statistics or particles to CSV",
		Args:  cobra.ExactArgs(1),
		RunE:  exportCSV,
	}
	exportCSVCmd.Flags().BoolVar(&withParticles, "particles", false, "export the final particle state instead of statistics")

	exportJSONCmd := &cobra.Command{
		Use:   "export-json [run_id]",
		Short: "export run data to JSON",
		Args:  cobra.ExactArgs(1),
		RunE:  exportJSON,
	}
	exportJSONCmd.Flags().BoolVar(&withParticles, "particles", false, "include the final particle state")

	exportSVGCmd := &cobra.Command{
		Use:   "export-svg [run_id]",
		Short: "render a statistic or the final particle state to SVG",
		Args:  cobra.ExactArgs(1),
		RunE:  exportSVG,
	}
	exportSVGCmd.Flags().StringVar(&svgMetric, "metric", "total_energy", "statistic to plot")
	exportSVGCmd.Flags().BoolVar(&withParticles, "particles", false, "render particles instead of a statistic")
	exportSVGCmd.Flags().BoolVar(&braille, "braille", false, "render particles at terminal resolution")
	exportSVGCmd.Flags().StringVarP(&outFile, "out", "o", "", "output file (default stdout)")
	exportSVGCmd.Flags().IntVar(&svgWidth, "width", 800, "image width")
	exportSVGCmd.Flags().IntVar(&svgHeight, "height", 600, "image height")

	presetsCmd := &cobra.Command{
		Use:   "presets [name]",
		Short: "list presets, or print one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				for _, p := range config.ListPresets() {
					fmt.Printf("  %s\n", p)
				}
				return nil
			}
			cfg := config.GetPreset(args[0])
			if cfg == nil {
				return fmt.Errorf("unknown preset: %s (available: %v)", args[0], config.ListPresets())
			}
			return config.Encode(os.Stdout, cfg)
		},
	}

	benchCmd := &cobra.Command{
		Use:   "bench",
		Short: "time every neighbor search and gravity solver pair",
		Args:  cobra.NoArgs,
		RunE:  benchSolvers,
	}
	addRunFlags(benchCmd)
	benchCmd.Flags().IntVar(&reps, "reps", 3, "repetitions per pair")

	ensembleCmd := &cobra.Command{
		Use:   "ensemble",
		Short: "run one configuration under consecutive seeds",
		Args:  cobra.NoArgs,
		RunE:  runEnsemble,
	}
	addRunFlags(ensembleCmd)
	ensembleCmd.Flags().IntVar(&numRuns, "runs", 4, "number of runs")
	ensembleCmd.Flags().Int64Var(&seedStart, "seed-start", 1, "seed of the first run")
	ensembleCmd.Flags().IntVar(&concurrency, "concurrency", 0, "runs stepping at once (0 = all)")

	analyzeCmd := &cobra.Command{
		Use:   "analyze [run_id]",
		Short: "pulsation spectrum and radial phase diagram of a run",
		Args:  cobra.ExactArgs(1),
		RunE:  analyzeRun,
	}
	analyzeCmd.Flags().StringVar(&analyzeMetric, "metric", "radius", "statistic to analyse")

	sensitivityCmd := &cobra.Command{
		Use:   "sensitivity",
		Short: "measure divergence from a perturbed initial cloud",
		Args:  cobra.NoArgs,
		RunE:  runSensitivity,
	}
	addRunFlags(sensitivityCmd)
	sensitivityCmd.Flags().Float64Var(&perturbation, "perturbation", 1e-6, "displacement of one particle, in cloud radii")

	sweepCmd := &cobra.Command{
		Use:   "sweep",
		Short: "vary one parameter across runs",
		Args:  cobra.NoArgs,
		RunE:  runSweep,
	}
	addRunFlags(sweepCmd)
	sweepCmd.Flags().StringVar(&sweepParam, "param", "temperature", "parameter to vary")
	sweepCmd.Flags().StringSliceVar(&sweepValues, "values", nil, "comma-separated parameter values")
	sweepCmd.Flags().StringVar(&sweepMetric, "metric", "radius", "statistic to report")

	scenarioCmd := &cobra.Command{
		Use:   "scenario [file]",
		Short: "run and store every step of a YAML scenario",
		Args:  cobra.ExactArgs(1),
		RunE:  runScenario,
	}

	rootCmd.AddCommand(scenarioCmd, runCmd, liveCmd, listCmd, plotCmd, exportCSVCmd, exportJSONCmd, exportSVGCmd, presetsCmd, benchCmd, ensembleCmd, analyzeCmd, sensitivityCmd, sweepCmd)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func addRunFlags(cmd *cobra.Command) {
	f := cmd.Flags()
	f.StringVar(&configFile, "config", "", "config file path (yaml, gcfg or ini)")
	f.StringVar(&preset, "preset", "default", "use preset configuration")
	f.StringVar(&runName, "name", "", "run name")
	f.IntVarP(&count, "count", "n", 0, "particle count")
	f.Float64Var(&radius, "radius", 0, "cloud radius (m)")
	f.Float64Var(&temperature, "temperature", 0, "initial temperature (K)")
	f.IntVarP(&neighbors, "neighbors", "k", 0, "neighbors per particle")
	f.Float64Var(&dt, "dt", 0, "time step (s)")
	f.IntVar(&steps, "steps", 0, "number of steps")
	f.IntVar(&every, "every", 0, "sampling interval in steps")
	f.Int64Var(&seed, "seed", 0, "random seed")
	f.IntVar(&workers, "workers", 0, "worker goroutines (0 = all CPUs)")
	f.StringVar(&search, "search", "", "neighbor search (brute, kdtree)")
	f.StringVar(&solver, "solver", "", "gravity solver (direct, barneshut)")
	f.Float64Var(&theta, "theta", 0, "Barnes-Hut opening angle")
	f.BoolVar(&noGravity, "no-gravity", false, "disable self-gravity")
	f.BoolVar(&noGas, "no-gas", false, "disable gas pressure and heating")
}
