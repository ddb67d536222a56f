package geometry

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// Disc is a flat circular surface
type Disc struct {
	Center core.Vec3
	Normal core.Vec3 // Unit normal of the disc plane
	Radius float64
	Mat    core.Material
}

// NewDisc creates a new disc
func NewDisc(center, normal core.Vec3, radius float64, mat core.Material) *Disc {
	return &Disc{Center: center, Normal: normal.Normalize(), Radius: radius, Mat: mat}
}

// Bounds returns the disc's bounding box
func (d *Disc) Bounds() core.AABB {
	// Extent of the disc along each axis: r·sqrt(1-n²)
	n := d.Normal
	ext := core.NewVec3(
		d.Radius*math.Sqrt(math.Max(0, 1-n.X*n.X)),
		d.Radius*math.Sqrt(math.Max(0, 1-n.Y*n.Y)),
		d.Radius*math.Sqrt(math.Max(0, 1-n.Z*n.Z)),
	)
	// Degenerate boxes confuse containment tests; pad a hair
	ext = ext.Add(core.NewVec3(1e-6, 1e-6, 1e-6))
	return core.NewAABB(d.Center.Subtract(ext), d.Center.Add(ext))
}

// Material returns the disc's material
func (d *Disc) Material() core.Material {
	return d.Mat
}

// Area returns the disc's surface area
func (d *Disc) Area() float64 {
	return math.Pi * d.Radius * d.Radius
}

func (d *Disc) hit(ray *core.Ray) (float64, bool) {
	denom := d.Normal.Dot(ray.Direction)
	if math.Abs(denom) < 1e-12 {
		return 0, false
	}
	t := d.Center.Subtract(ray.Origin).Dot(d.Normal) / denom
	if !ray.Contains(t) {
		return 0, false
	}
	point := ray.At(t)
	if point.Subtract(d.Center).LengthSquared() > d.Radius*d.Radius {
		return 0, false
	}
	return t, true
}

// Intersect implements core.Surface
func (d *Disc) Intersect(ray *core.Ray, isec *core.Intersection) bool {
	t, ok := d.hit(ray)
	if !ok {
		return false
	}

	ray.T1 = t

	point := ray.At(t)
	back := ray.Direction.Dot(d.Normal) > 0
	normal := d.Normal
	if back {
		normal = normal.Negate()
	}

	isec.Point = point
	isec.GeomNormal = normal
	isec.Normal = normal
	isec.Wo = ray.Direction.Normalize().Negate()
	isec.UV = core.Vec2{}
	isec.T = t
	isec.Back = back
	isec.Frame = core.NewFrame(point, normal)
	isec.Surface = d
	isec.Material = d.Mat
	isec.SmoothGroup = 0
	return true
}

// IntersectShadow implements core.Surface
func (d *Disc) IntersectShadow(ray *core.Ray, origin *core.Intersection) core.Shadow {
	kind := d.Mat.ShadowKind()
	if kind == core.ShadowNone {
		return core.Shadow{Kind: core.ShadowNone}
	}
	if _, ok := d.hit(ray); !ok {
		return core.Shadow{Kind: core.ShadowNone}
	}
	if kind == core.ShadowPartial {
		attenuation := core.White
		if tr, ok := d.Mat.(core.Transmitter); ok {
			attenuation = tr.Transmittance()
		}
		return core.Shadow{Kind: core.ShadowPartial, Attenuation: attenuation}
	}
	return core.Shadow{Kind: core.ShadowOpaque}
}
