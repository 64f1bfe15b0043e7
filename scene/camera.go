package scene

import "github.com/chewxy/math32"

// Camera is the read side of the renderer collaborator: a position,
// a view direction, and a field of view. Visibility uses a cone test
// against the node bounding sphere; exact plane extraction belongs to
// the renderer itself.
type Camera struct {
	Pos     Vec3
	Forward Vec3
	FOV     float32 // full vertical field of view, radians
	Far     float32 // 0 = unlimited
}

// Sees reports whether a bounding sphere at p with the given radius
// intersects the camera's view cone.
func (c *Camera) Sees(p Vec3, radius float32) bool {
	if c == nil {
		return true
	}
	v := p.Sub(c.Pos)
	d := v.Len()
	if d <= radius {
		return true
	}
	if c.Far > 0 && d-radius > c.Far {
		return false
	}
	fwd := c.Forward.Normalized()
	if fwd == (Vec3{}) {
		return true
	}
	cos := v.Dot(fwd) / d
	if cos > 1 {
		cos = 1
	} else if cos < -1 {
		cos = -1
	}
	angle := math32.Acos(cos)
	half := c.FOV / 2
	if half <= 0 {
		half = math32.Pi / 4
	}
	// Widen the cone by the sphere's angular size so objects on the
	// edge do not flicker in and out.
	return angle <= half+math32.Atan2(radius, d)
}
