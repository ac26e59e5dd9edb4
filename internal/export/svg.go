// Package export renders simulation output as standalone SVG documents.
package export

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/sphgas/internal/dynamo"
	"github.com/san-kum/sphgas/internal/vec"
	"github.com/san-kum/sphgas/internal/viz"
)

const (
	background = "#0a0a0a"
	foreground = "#c792ea"
)

func header(sb *strings.Builder, width, height float64) {
	fmt.Fprintf(sb, `<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background)
}

// CanvasToSVG draws every lit canvas pixel as a dot of the given size.
func CanvasToSVG(canvas *viz.Canvas, scale float64) string {
	if canvas == nil {
		return ""
	}
	pw, ph := canvas.PixelWidth(), canvas.PixelHeight()

	var sb strings.Builder
	header(&sb, float64(pw)*scale, float64(ph)*scale)
	fmt.Fprintf(&sb, "<g fill=\"%s\">\n", foreground)
	r := scale * 0.4
	for y := 0; y < ph; y++ {
		for x := 0; x < pw; x++ {
			if canvas.Lit(x, y) {
				fmt.Fprintf(&sb, "<circle cx=\"%.1f\" cy=\"%.1f\" r=\"%.1f\"/>\n",
					(float64(x)+0.5)*scale, (float64(y)+0.5)*scale, r)
			}
		}
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// ParticlesToSVG projects positions through cam onto a width×height image
// at full resolution. Dot radius grows with the particle's share of the
// heaviest mass; masses may be nil.
func ParticlesToSVG(cam *viz.Camera, positions []vec.Vec3, masses []float64, width, height int) string {
	heaviest := 0.0
	for _, m := range masses {
		heaviest = math.Max(heaviest, m)
	}

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, "<g fill=\"%s\" fill-opacity=\"0.8\">\n", foreground)
	for i, p := range positions {
		x, y, ok := cam.Project(p, width, height)
		if !ok {
			continue
		}
		r := 1.0
		if heaviest > 0 && i < len(masses) {
			r += math.Cbrt(masses[i] / heaviest)
		}
		fmt.Fprintf(&sb, "<circle cx=\"%d\" cy=\"%d\" r=\"%.2f\"/>\n", x, y, r)
	}
	sb.WriteString("</g>\n</svg>")
	return sb.String()
}

// SeriesToSVG plots ys against xs as a polyline with 10% padding on
// each axis.
func SeriesToSVG(xs, ys []float64, width, height int, stroke string) (string, error) {
	if len(xs) != len(ys) {
		return "", dynamo.ConfigError("series lengths differ: %d x values, %d y values", len(xs), len(ys))
	}
	if len(xs) < 2 {
		return "", dynamo.ConfigError("series needs at least two points, got %d", len(xs))
	}

	minX, maxX := bounds(xs)
	minY, maxY := bounds(ys)
	rangeX, rangeY := pad(&minX, &maxX), pad(&minY, &maxY)

	var sb strings.Builder
	header(&sb, float64(width), float64(height))
	fmt.Fprintf(&sb, `<path fill="none" stroke="%s" stroke-width="1.5" d="M`, stroke)
	for i := range xs {
		x := (xs[i] - minX) / rangeX * float64(width)
		y := float64(height) - (ys[i]-minY)/rangeY*float64(height)
		if i == 0 {
			fmt.Fprintf(&sb, "%.1f,%.1f", x, y)
		} else {
			fmt.Fprintf(&sb, " L%.1f,%.1f", x, y)
		}
	}
	sb.WriteString(`"/>
</svg>`)
	return sb.String(), nil
}

func bounds(vs []float64) (lo, hi float64) {
	lo, hi = vs[0], vs[0]
	for _, v := range vs {
		lo, hi = math.Min(lo, v), math.Max(hi, v)
	}
	return lo, hi
}

// pad widens [lo, hi] by 10% on both sides and returns the new range.
func pad(lo, hi *float64) float64 {
	r := *hi - *lo
	if r == 0 {
		r = 1
	}
	*lo -= r * 0.1
	*hi += r * 0.1
	return *hi - *lo
}
