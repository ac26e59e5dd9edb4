package analysis

import (
	"strings"

	"github.com/san-kum/sphgas/internal/sim"
)

// Point is one scatter-plot sample.
type Point struct{ X, Y float64 }

// RadialPhase maps every particle to (r, v_r): its distance from the
// centre of mass and its velocity along that radius, relative to the
// mass-weighted mean velocity. Infall has v_r < 0.
func RadialPhase(snap *sim.Snapshot) []Point {
	com := sim.CenterOfMass(snap.Positions, snap.Masses)
	vcom := sim.CenterOfMass(snap.Velocities, snap.Masses)
	out := make([]Point, len(snap.Positions))
	for i, p := range snap.Positions {
		d := p.Sub(com)
		r := d.Norm()
		vr := 0.0
		if r > 0 {
			vr = snap.Velocities[i].Sub(vcom).Dot(d) / r
		}
		out[i] = Point{X: r, Y: vr}
	}
	return out
}

// ScatterToASCII draws points on a width×height character grid with 10%
// padding and the zero axes where they are in range.
func ScatterToASCII(points []Point, width, height int) string {
	if len(points) == 0 || width <= 0 || height <= 0 {
		return ""
	}

	// Find bounds
	minX, maxX := points[0].X, points[0].X
	minY, maxY := points[0].Y, points[0].Y
	for _, p := range points {
		minX, maxX = min(minX, p.X), max(maxX, p.X)
		minY, maxY = min(minY, p.Y), max(maxY, p.Y)
	}

	// Add padding
	rangeX := maxX - minX
	rangeY := maxY - minY
	if rangeX == 0 {
		rangeX = 1
	}
	if rangeY == 0 {
		rangeY = 1
	}
	minX -= rangeX * 0.1
	maxX += rangeX * 0.1
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeX = maxX - minX
	rangeY = maxY - minY

	grid := make([][]rune, height)
	for i := range grid {
		grid[i] = []rune(strings.Repeat(" ", width))
	}

	for _, p := range points {
		col := int((p.X - minX) / rangeX * float64(width-1))
		row := height - 1 - int((p.Y-minY)/rangeY*float64(height-1))
		if row >= 0 && row < height && col >= 0 && col < width {
			grid[row][col] = '•'
		}
	}

	// Draw axes if they cross the visible area
	if minX <= 0 && maxX >= 0 {
		col := int((0 - minX) / rangeX * float64(width-1))
		for row := 0; row < height; row++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '│'
			}
		}
	}
	if minY <= 0 && maxY >= 0 {
		row := height - 1 - int((0-minY)/rangeY*float64(height-1))
		for col := 0; col < width; col++ {
			if grid[row][col] == ' ' {
				grid[row][col] = '─'
			}
		}
	}

	var sb strings.Builder
	for _, row := range grid {
		sb.WriteString(string(row))
		sb.WriteRune('\n')
	}
	return sb.String()
}
