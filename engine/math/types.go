package math

import m "math"

// Vec2 represents a 2D vector
type Vec2 struct {
	X, Y float32
}

// Vec3 represents a 3D vector
type Vec3 struct {
	X, Y, Z float32
}

func NewVec2(x, y float32) Vec2 {
	return Vec2{X: x, Y: y}
}

func NewVec3(x, y, z float32) Vec3 {
	return Vec3{X: x, Y: y, Z: z}
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) MulScalar(s float32) Vec3 {
	return Vec3{v.X * s, v.Y * s, v.Z * s}
}

func (v Vec3) Cross(o Vec3) Vec3 {
	return Vec3{
		v.Y*o.Z - v.Z*o.Y,
		v.Z*o.X - v.X*o.Z,
		v.X*o.Y - v.Y*o.X,
	}
}

func (v Vec3) Dot(o Vec3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Length() float32 {
	return float32(m.Sqrt(float64(v.Dot(v))))
}

func (v Vec3) Normalized() Vec3 {
	l := v.Length()
	if l == 0 {
		return v
	}
	return v.MulScalar(1.0 / l)
}

// MinComponents returns the component-wise minimum of two vectors.
func MinComponents(a, b Vec3) Vec3 {
	return Vec3{
		X: min(a.X, b.X),
		Y: min(a.Y, b.Y),
		Z: min(a.Z, b.Z),
	}
}

// MaxComponents returns the component-wise maximum of two vectors.
func MaxComponents(a, b Vec3) Vec3 {
	return Vec3{
		X: max(a.X, b.X),
		Y: max(a.Y, b.Y),
		Z: max(a.Z, b.Z),
	}
}

/**
 * @brief Represents the extents of a 3d object.
 */
type Extents3D struct {
	/** @brief The minimum extents of the object. */
	Min Vec3
	/** @brief The maximum extents of the object. */
	Max Vec3
}

// ExpandToFit grows the extents so that the given point lies inside them.
func (e *Extents3D) ExpandToFit(p Vec3) {
	e.Min = MinComponents(e.Min, p)
	e.Max = MaxComponents(e.Max, p)
}
