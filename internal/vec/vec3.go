package vec

import (
	"fmt"
	"math"
)

// Vec3 is an immutable 3-D vector. Methods with value receivers never
// modify v; the *Assign variants and Rotate mutate the receiver in place.
type Vec3 struct {
	X, Y, Z float64
}

func Zero() Vec3  { return Vec3{} }
func UnitX() Vec3 { return Vec3{1, 0, 0} }
func UnitY() Vec3 { return Vec3{0, 1, 0} }
func UnitZ() Vec3 { return Vec3{0, 0, 1} }

// FromPolar builds a vector of the given magnitude by tilting the x axis
// by latitude around y, then spinning it by longitude around x.
func FromPolar(latitude, longitude, magnitude float64) Vec3 {
	return UnitX().
		Rotated(UnitY(), latitude).
		Rotated(UnitX(), longitude).
		Scale(magnitude)
}

func (v Vec3) Add(o Vec3) Vec3      { return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z} }
func (v Vec3) Sub(o Vec3) Vec3      { return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z} }
func (v Vec3) Scale(s float64) Vec3 { return Vec3{v.X * s, v.Y * s, v.Z * s} }
func (v Vec3) Div(s float64) Vec3   { return Vec3{v.X / s, v.Y / s, v.Z / s} }
func (v Vec3) Neg() Vec3            { return Vec3{-v.X, -v.Y, -v.Z} }
func (v Vec3) Dot(o Vec3) float64   { return v.X*o.X + v.Y*o.Y + v.Z*o.Z }

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{v.Y*o.Z - v.Z*o.Y, v.Z*o.X - v.X*o.Z, v.X*o.Y - v.Y*o.X}
}

// Norm2 is the squared Euclidean norm.
func (v Vec3) Norm2() float64 { return v.Dot(v) }
func (v Vec3) Norm() float64  { return math.Sqrt(v.Norm2()) }

// Normalized returns v scaled to unit length.
// Caller must ensure v.Norm() != 0; the zero vector yields NaN components.
func (v Vec3) Normalized() Vec3 { return v.Div(v.Norm()) }

// Rotated returns v rotated by angle (radians, right-handed) around axis.
// The component of v parallel to axis is left untouched; the orthogonal
// part is rotated in the plane spanned by itself and axis × itself.
func (v Vec3) Rotated(axis Vec3, angle float64) Vec3 {
	axis = axis.Normalized()
	parallel := axis.Scale(axis.Dot(v))
	orthogonal := v.Sub(parallel)
	rotated90 := axis.Cross(orthogonal)

	sin, cos := math.Sincos(angle)
	return orthogonal.Scale(cos).Add(rotated90.Scale(sin)).Add(parallel)
}

func (v Vec3) IsFinite() bool {
	return !(math.IsNaN(v.X) || math.IsInf(v.X, 0) ||
		math.IsNaN(v.Y) || math.IsInf(v.Y, 0) ||
		math.IsNaN(v.Z) || math.IsInf(v.Z, 0))
}

func (v Vec3) String() string {
	return fmt.Sprintf("[%.2e, %.2e, %.2e]", v.X, v.Y, v.Z)
}

func (v *Vec3) AddAssign(o Vec3) {
	v.X += o.X
	v.Y += o.Y
	v.Z += o.Z
}

func (v *Vec3) SubAssign(o Vec3) {
	v.X -= o.X
	v.Y -= o.Y
	v.Z -= o.Z
}

func (v *Vec3) ScaleAssign(s float64) {
	v.X *= s
	v.Y *= s
	v.Z *= s
}

func (v *Vec3) DivAssign(s float64) {
	v.X /= s
	v.Y /= s
	v.Z /= s
}

// Rotate replaces v with v.Rotated(axis, angle).
func (v *Vec3) Rotate(axis Vec3, angle float64) {
	*v = v.Rotated(axis, angle)
}

func Sum(vs ...Vec3) Vec3 {
	var s Vec3
	for _, v := range vs {
		s.AddAssign(v)
	}
	return s
}

// GramSchmidt makes b orthogonal to a and returns both normalized.
// Bases that are rotated repeatedly drift away from orthonormality and
// must be passed through this after every update.
func GramSchmidt(a, b Vec3) (Vec3, Vec3) {
	a = a.Normalized()
	b = b.Sub(a.Scale(a.Dot(b)))
	return a, b.Normalized()
}
