package main

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strconv"
	"text/tabwriter"

	"github.com/guptarohit/asciigraph"
	"github.com/spf13/cobra"

	"github.com/san-kum/sphgas/internal/export"
	"github.com/san-kum/sphgas/internal/storage"
	"github.com/san-kum/sphgas/internal/viz"
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
	fmt.Fprintln(w, "ID\tNAME\tTIME\tPARTICLES\tSTEPS\tSIM TIME\tSTATUS")

	for _, run := range runs {
		status := "ok"
		if run.Error != "" {
			status = "failed"
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d\t%.3es\t%s\n",
			run.ID,
			run.Name,
			run.Timestamp.Format("2006-01-02 15:04:05"),
			run.Count,
			run.Steps,
			run.SimTime,
			status,
		)
	}

	return w.Flush()
}

func plotRun(cmd *cobra.Command, args []string) error {
	runID := args[0]

	st := storage.New(dataDir)
	meta, err := st.Load(runID)
	if err != nil {
		return err
	}
	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if len(stats.Steps) < 2 {
		return fmt.Errorf("run %s has %d samples, need at least 2 to plot", runID, len(stats.Steps))
	}

	fmt.Printf("run: %s\n", meta.ID)
	fmt.Printf("particles: %d\n", meta.Count)
	fmt.Printf("samples: %d\n", len(stats.Steps))
	if meta.Error != "" {
		fmt.Printf("error: %s\n", meta.Error)
	}
	fmt.Println()

	for _, name := range plotMetrics {
		data, ok := stats.Series[name]
		if !ok {
			fmt.Printf("no statistic %q (available: %v)\n\n", name, stats.Names)
			continue
		}
		graph := asciigraph.Plot(data,
			asciigraph.Height(10),
			asciigraph.Width(80),
			asciigraph.Caption(name+" vs sample"),
		)
		fmt.Println(graph)
		fmt.Println()
	}
	return nil
}

func exportCSV(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	w := csv.NewWriter(os.Stdout)
	defer w.Flush()
	format := func(v float64) string { return strconv.FormatFloat(v, 'g', -1, 64) }

	if withParticles {
		snap, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		if err := w.Write([]string{"x", "y", "z", "vx", "vy", "vz", "mass", "thermal", "density", "smoothing"}); err != nil {
			return err
		}
		for i := range snap.Positions {
			p, v := snap.Positions[i], snap.Velocities[i]
			row := []string{
				format(p.X), format(p.Y), format(p.Z),
				format(v.X), format(v.Y), format(v.Z),
				format(snap.Masses[i]), format(snap.Thermal[i]),
				format(snap.Densities[i]), format(snap.Smoothing[i]),
			}
			if err := w.Write(row); err != nil {
				return err
			}
		}
		return nil
	}

	stats, err := st.LoadStats(runID)
	if err != nil {
		return err
	}
	if err := w.Write(append([]string{"step", "time"}, stats.Names...)); err != nil {
		return err
	}
	for i := range stats.Steps {
		row := []string{strconv.Itoa(stats.Steps[i]), format(stats.Times[i])}
		for _, name := range stats.Names {
			row = append(row, format(stats.Series[name][i]))
		}
		if err := w.Write(row); err != nil {
			return err
		}
	}
	return nil
}

func exportJSON(cmd *cobra.Command, args []string) error {
	st := storage.New(dataDir)
	return st.ExportJSON(os.Stdout, args[0], withParticles)
}

func exportSVG(cmd *cobra.Command, args []string) error {
	runID := args[0]
	st := storage.New(dataDir)

	var svg string
	if withParticles {
		meta, err := st.Load(runID)
		if err != nil {
			return err
		}
		snap, err := st.LoadParticles(runID)
		if err != nil {
			return err
		}
		if braille {
			const scale = 5
			canvas := viz.NewCanvas(max(svgWidth/(2*scale), 1), max(svgHeight/(4*scale), 1))
			viz.Fit(meta.Config.Radius, canvas).View(canvas, snap.Positions)
			svg = export.CanvasToSVG(canvas, scale)
		} else {
			cam := viz.FitSize(meta.Config.Radius, svgWidth, svgHeight)
			svg = export.ParticlesToSVG(cam, snap.Positions, snap.Masses, svgWidth, svgHeight)
		}
	} else {
		stats, err := st.LoadStats(runID)
		if err != nil {
			return err
		}
		data, ok := stats.Series[svgMetric]
		if !ok {
			return fmt.Errorf("no statistic %q (available: %v)", svgMetric, stats.Names)
		}
		svg, err = export.SeriesToSVG(stats.Times, data, svgWidth, svgHeight, "#00ff88")
		if err != nil {
			return err
		}
	}

	var out io.Writer = os.Stdout
	if outFile != "" {
		f, err := os.Create(outFile)
		if err != nil {
			return err
		}
		defer f.Close()
		out = f
	}
	_, err := io.WriteString(out, svg)
	return err
}
