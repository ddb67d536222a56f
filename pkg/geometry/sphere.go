package geometry

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// Sphere is a sphere surface
type Sphere struct {
	Center core.Vec3
	Radius float64
	Mat    core.Material
}

// NewSphere creates a new sphere
func NewSphere(center core.Vec3, radius float64, mat core.Material) *Sphere {
	return &Sphere{Center: center, Radius: radius, Mat: mat}
}

// Bounds returns the sphere's bounding box
func (s *Sphere) Bounds() core.AABB {
	radius := core.NewVec3(s.Radius, s.Radius, s.Radius)
	return core.NewAABB(s.Center.Subtract(radius), s.Center.Add(radius))
}

// Material returns the sphere's material
func (s *Sphere) Material() core.Material {
	return s.Mat
}

// hit solves the quadratic for the nearest root within the ray interval
func (s *Sphere) hit(ray *core.Ray) (float64, bool) {
	oc := ray.Origin.Subtract(s.Center)
	a := ray.Direction.Dot(ray.Direction)
	halfB := oc.Dot(ray.Direction)
	c := oc.Dot(oc) - s.Radius*s.Radius

	discriminant := halfB*halfB - a*c
	if discriminant < 0 {
		return 0, false
	}
	sqrtD := math.Sqrt(discriminant)

	// Try the closer intersection point first
	root := (-halfB - sqrtD) / a
	if !ray.Contains(root) {
		root = (-halfB + sqrtD) / a
		if !ray.Contains(root) {
			return 0, false
		}
	}
	return root, true
}

// Intersect implements core.Surface
func (s *Sphere) Intersect(ray *core.Ray, isec *core.Intersection) bool {
	root, ok := s.hit(ray)
	if !ok {
		return false
	}

	ray.T1 = root

	point := ray.At(root)
	outward := point.Subtract(s.Center).Multiply(1.0 / s.Radius)
	back := ray.Direction.Dot(outward) > 0
	normal := outward
	if back {
		normal = outward.Negate()
	}

	// Spherical UV from the outward normal
	theta := math.Acos(math.Max(-1, math.Min(1, outward.Y)))
	phi := math.Atan2(-outward.Z, outward.X) + math.Pi

	isec.Point = point
	isec.GeomNormal = normal
	isec.Normal = normal
	isec.Wo = ray.Direction.Normalize().Negate()
	isec.UV = core.NewVec2(phi/(2*math.Pi), theta/math.Pi)
	isec.T = root
	isec.Back = back
	isec.Frame = core.NewFrame(point, normal)
	isec.Surface = s
	isec.Material = s.Mat
	isec.SmoothGroup = 0
	return true
}

// IntersectShadow implements core.Surface
func (s *Sphere) IntersectShadow(ray *core.Ray, origin *core.Intersection) core.Shadow {
	kind := s.Mat.ShadowKind()
	if kind == core.ShadowNone {
		return core.Shadow{Kind: core.ShadowNone}
	}
	if _, ok := s.hit(ray); !ok {
		return core.Shadow{Kind: core.ShadowNone}
	}
	if kind == core.ShadowPartial {
		attenuation := core.White
		if tr, ok := s.Mat.(core.Transmitter); ok {
			attenuation = tr.Transmittance()
		}
		return core.Shadow{Kind: core.ShadowPartial, Attenuation: attenuation}
	}
	return core.Shadow{Kind: core.ShadowOpaque}
}
