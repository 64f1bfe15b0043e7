package scene

import "github.com/chewxy/math32"

// Vec3 is a float32 point or direction in world space.
type Vec3 struct {
	X float32
	Y float32
	Z float32
}

func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

func (v Vec3) Sub(o Vec3) Vec3 {
	return Vec3{v.X - o.X, v.Y - o.Y, v.Z - o.Z}
}

func (v Vec3) Dot(o Vec3) float32 {
	return v.X*o.X + v.Y*o.Y + v.Z*o.Z
}

func (v Vec3) Len() float32 {
	return math32.Sqrt(v.Dot(v))
}

// Dist returns the Euclidean distance between two points.
func (v Vec3) Dist(o Vec3) float32 {
	return v.Sub(o).Len()
}

// Normalized returns the unit vector in v's direction, or the zero
// vector if v has no length.
func (v Vec3) Normalized() Vec3 {
	l := v.Len()
	if l == 0 {
		return Vec3{}
	}
	return Vec3{v.X / l, v.Y / l, v.Z / l}
}
