// Package camera maps pixel coordinates to world-space camera rays.
package camera

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// Camera is a pinhole camera with an optional thin-lens aperture. Its basis
// stays orthonormal through every move/rotate/orbit command.
type Camera struct {
	Position core.Vec3
	Target   core.Vec3

	right, up, forward core.Vec3

	fov    float64 // Horizontal field of view in radians
	aspect float64 // Width / height; derives the vertical FoV

	Aperture  float64 // Lens diameter, 0 for a pinhole
	FocusDist float64 // Distance to the focal plane
}

// New creates a camera at (0,0,10) looking down -Z at the origin with a
// 55° FoV
func New() *Camera {
	c := &Camera{
		Position:  core.NewVec3(0, 0, 10),
		Target:    core.Vec3{},
		fov:       55 * math.Pi / 180,
		aspect:    1,
		FocusDist: 10,
	}
	c.lookAtTarget()
	return c
}

// SetAspect sets the width/height ratio that derives the vertical FoV
func (c *Camera) SetAspect(aspect float64) {
	c.aspect = aspect
}

// SetFov sets the horizontal field of view in radians
func (c *Camera) SetFov(fov float64) {
	c.fov = fov
}

// Fov returns the horizontal field of view in radians
func (c *Camera) Fov() float64 {
	return c.fov
}

// MoveTo places the camera, keeping it aimed at its target
func (c *Camera) MoveTo(p core.Vec3) {
	c.Position = p
	c.lookAtTarget()
}

// TargetTo aims the camera at a point
func (c *Camera) TargetTo(p core.Vec3) {
	c.Target = p
	c.lookAtTarget()
}

// Zoom scales the field of view by 1/factor, so factor 2 halves it
func (c *Camera) Zoom(factor float64) {
	if factor > 0 {
		c.fov /= factor
	}
}

// Move translates the camera along one of its own axes (u/d/l/r/f/b) or a
// world axis (x/y/z)
func (c *Camera) Move(axis byte, dist float64) {
	var dir core.Vec3
	switch axis {
	case 'u':
		dir = c.up
	case 'd':
		dir = c.up.Negate()
	case 'l':
		dir = c.right.Negate()
	case 'r':
		dir = c.right
	case 'f':
		dir = c.forward
	case 'b':
		dir = c.forward.Negate()
	case 'x':
		dir = core.NewVec3(1, 0, 0)
	case 'y':
		dir = core.NewVec3(0, 1, 0)
	case 'z':
		dir = core.NewVec3(0, 0, 1)
	}
	c.Position = c.Position.Add(dir.Multiply(dist))
	c.lookAtTarget()
}

// Rotate spins the camera's basis around a world axis
func (c *Camera) Rotate(axis core.Vec3, angle float64) {
	c.right = rotate(c.right, axis, angle)
	c.up = rotate(c.up, axis, angle)
	c.forward = rotate(c.forward, axis, angle)
}

// Orbit revolves the camera around its target about a world axis, then
// re-aims at the target
func (c *Camera) Orbit(axis core.Vec3, angle float64) {
	offset := c.Position.Subtract(c.Target)
	c.Position = c.Target.Add(rotate(offset, axis, angle))
	c.lookAtTarget()
}

// lookAtTarget rebuilds the orthonormal basis toward the target
func (c *Camera) lookAtTarget() {
	forward := c.Target.Subtract(c.Position)
	if forward.LengthSquared() == 0 {
		forward = core.NewVec3(0, 0, -1)
	}
	c.forward = forward.Normalize()

	worldUp := core.NewVec3(0, 1, 0)
	if math.Abs(c.forward.Dot(worldUp)) > 0.999 {
		worldUp = core.NewVec3(0, 0, 1)
	}
	c.right = c.forward.Cross(worldUp).Normalize()
	c.up = c.right.Cross(c.forward)
}

// rotate applies Rodrigues' rotation of v around unit axis k by angle
func rotate(v, k core.Vec3, angle float64) core.Vec3 {
	k = k.Normalize()
	cos := math.Cos(angle)
	sin := math.Sin(angle)
	return v.Multiply(cos).
		Add(k.Cross(v).Multiply(sin)).
		Add(k.Multiply(k.Dot(v) * (1 - cos)))
}

// GenerateRay maps a pixel position (with sub-pixel jitter already folded
// into px,py) and a 2D lens sample to a world-space camera ray
func (c *Camera) GenerateRay(px, py float64, width, height int, lens core.Vec2) core.Ray {
	// NDC in [-1,1] with +Y up
	ndcX := 2*px/float64(width) - 1
	ndcY := 1 - 2*py/float64(height)

	tanHalfH := math.Tan(c.fov / 2)
	tanHalfV := tanHalfH / c.aspect

	dir := c.forward.
		Add(c.right.Multiply(ndcX * tanHalfH)).
		Add(c.up.Multiply(ndcY * tanHalfV)).
		Normalize()

	origin := c.Position
	if c.Aperture > 0 {
		// Thin lens: perturb the origin on the aperture disc and aim
		// through the point where the pinhole ray meets the focal plane
		focal := c.Position.Add(dir.Multiply(c.FocusDist / dir.Dot(c.forward)))
		disk := core.SamplePointInUnitDisk(lens)
		offset := c.right.Multiply(disk.X * c.Aperture / 2).
			Add(c.up.Multiply(disk.Y * c.Aperture / 2))
		origin = origin.Add(offset)
		dir = focal.Subtract(origin).Normalize()
	}

	return core.NewRay(origin, dir)
}
