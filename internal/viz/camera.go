package viz

import (
	"math"

	"github.com/san-kum/sphgas/internal/vec"
)

// ZoomFactor is the scale change applied by one zoom input.
const ZoomFactor = 1.05

// Camera is an orthographic camera looking along Horizontal × Vertical.
// The basis stays orthonormal across any sequence of inputs.
type Camera struct {
	Pos        vec.Vec3
	Horizontal vec.Vec3
	Vertical   vec.Vec3

	// Extent of the view in world units.
	Width, Height float64
}

func NewCamera(pos vec.Vec3, width, height float64) *Camera {
	return &Camera{
		Pos:        pos,
		Horizontal: vec.UnitX(),
		Vertical:   vec.UnitY(),
		Width:      width,
		Height:     height,
	}
}

// Fit returns a camera centred on the origin that shows a cloud of the
// given radius at a quarter of the shorter canvas side, keeping pixels
// square.
func Fit(radius float64, c *Canvas) *Camera {
	return FitSize(radius, c.PixelWidth(), c.PixelHeight())
}

// FitSize is Fit for a w×h pixel image.
func FitSize(radius float64, w, h int) *Camera {
	fw, fh := float64(w), float64(h)
	short := math.Min(fw, fh)
	return NewCamera(vec.Zero(), fw*4*radius/short, fh*4*radius/short)
}

// Input is one frame of camera controls. Opposing pairs cancel.
type Input struct {
	Left, Right          bool
	Up, Down             bool
	Clockwise, CounterCW bool
	ZoomIn, ZoomOut      bool
}

// TakeInput applies one frame of controls. At the given frame rate a held
// rotation turns a third of a revolution per second.
func (c *Camera) TakeInput(fps float64, in Input) {
	angle := 2 * math.Pi / fps / 3
	if in.Left != in.Right {
		c.Horizontal.Rotate(c.Vertical, sign(in.Right)*angle)
	}
	if in.Up != in.Down {
		c.Vertical.Rotate(c.Horizontal, sign(in.Up)*angle)
	}
	if in.Clockwise != in.CounterCW {
		depth := c.Horizontal.Cross(c.Vertical)
		a := sign(in.CounterCW) * angle
		c.Horizontal.Rotate(depth, a)
		c.Vertical.Rotate(depth, a)
	}
	c.Horizontal, c.Vertical = vec.GramSchmidt(c.Horizontal, c.Vertical)

	if in.ZoomIn != in.ZoomOut {
		f := ZoomFactor
		if in.ZoomIn {
			f = 1 / ZoomFactor
		}
		c.Width *= f
		c.Height *= f
	}
}

func sign(positive bool) float64 {
	if positive {
		return 1
	}
	return -1
}

// Depth is the viewing direction.
func (c *Camera) Depth() vec.Vec3 { return c.Horizontal.Cross(c.Vertical) }

// Project maps p to pixel coordinates on a w×h buffer. Up on screen is
// along Vertical. ok is false when p falls outside the view.
func (c *Camera) Project(p vec.Vec3, w, h int) (x, y int, ok bool) {
	d := p.Sub(c.Pos)
	u := 0.5 + d.Dot(c.Horizontal)/c.Width
	v := 0.5 - d.Dot(c.Vertical)/c.Height
	if u < 0 || u >= 1 || v < 0 || v >= 1 {
		return 0, 0, false
	}
	return int(float64(w) * u), int(float64(h) * v), true
}

// View clears the canvas and plots every visible position. It returns the
// number of positions inside the view.
func (c *Camera) View(cv *Canvas, positions []vec.Vec3) int {
	cv.Clear()
	w, h := cv.PixelWidth(), cv.PixelHeight()
	n := 0
	for _, p := range positions {
		if x, y, ok := c.Project(p, w, h); ok {
			cv.Set(x, y)
			n++
		}
	}
	return n
}

// DrawAxes draws the world axes from the origin with the given length.
// Segments that leave the view are skipped.
func (c *Camera) DrawAxes(cv *Canvas, length float64) {
	w, h := cv.PixelWidth(), cv.PixelHeight()
	x0, y0, ok := c.Project(vec.Zero(), w, h)
	if !ok {
		return
	}
	for _, axis := range []vec.Vec3{vec.UnitX(), vec.UnitY(), vec.UnitZ()} {
		if x1, y1, ok := c.Project(axis.Scale(length), w, h); ok {
			cv.DrawLine(x0, y0, x1, y1)
		}
	}
}
