package lights

import (
	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/geometry"
	"github.com/arpelle/glint/pkg/material"
)

// DiscLight is a one-sided circular area light. It embeds the disc surface
// so the emitter is also visible to camera and BSDF-sampled rays.
type DiscLight struct {
	*geometry.Disc
	Emission core.Color
}

// NewDiscLight creates a disc light emitting from the side its normal
// points toward
func NewDiscLight(center, normal core.Vec3, radius float64, emission core.Color) *DiscLight {
	disc := geometry.NewDisc(center, normal, radius, material.NewEmissive(emission))
	return &DiscLight{Disc: disc, Emission: emission}
}

// Sample implements Light: a point uniform by area, converted to a
// solid-angle density
func (l *DiscLight) Sample(isec *core.Intersection, sample core.Vec2) (Sample, bool) {
	frame := core.NewFrame(l.Center, l.Disc.Normal)
	disk := core.SamplePointInUnitDisk(sample)
	point := frame.ToWorld(core.NewVec3(disk.X*l.Radius, disk.Y*l.Radius, 0)).Add(l.Center)

	return areaSample(isec.Point, point, l.Disc.Normal, l.Area(), l.Emission)
}

// Eval implements Light: radiance and PDF along an arbitrary direction
func (l *DiscLight) Eval(isec *core.Intersection, dir core.Vec3) (core.Color, float64) {
	if isec == nil {
		return core.Black, 0
	}
	ray := core.NewRay(isec.Point, dir)
	var hit core.Intersection
	if !l.Disc.Intersect(&ray, &hit) {
		return core.Black, 0
	}
	return areaEval(isec.Point, hit.Point, l.Disc.Normal, dir, l.Area(), l.Emission)
}

// Owns implements SurfaceOwner
func (l *DiscLight) Owns(s core.Surface) bool {
	return s == core.Surface(l.Disc)
}

// Environmental implements Light
func (l *DiscLight) Environmental() bool {
	return false
}

// SceneSetup implements Light
func (l *DiscLight) SceneSetup(center core.Vec3, radius float64) {}

// TriangleLight is a one-sided triangular area light
type TriangleLight struct {
	V0, V1, V2 core.Vec3
	Emission   core.Color

	normal core.Vec3
	area   float64
	mesh   *geometry.Mesh
}

// NewTriangleLight creates a triangle light emitting from the front face
func NewTriangleLight(v0, v1, v2 core.Vec3, emission core.Color) *TriangleLight {
	e1 := v1.Subtract(v0)
	e2 := v2.Subtract(v0)
	cross := e1.Cross(e2)

	mesh := geometry.NewMesh(material.NewEmissive(emission))
	i0 := mesh.AddVertex(v0)
	i1 := mesh.AddVertex(v1)
	i2 := mesh.AddVertex(v2)
	mesh.AddTriangle(i0, i1, i2, nil)

	return &TriangleLight{
		V0: v0, V1: v1, V2: v2,
		Emission: emission,
		normal:   cross.Normalize(),
		area:     cross.Length() * 0.5,
		mesh:     mesh,
	}
}

// Primitives exposes the emitting surface for insertion into the scene
func (l *TriangleLight) Primitives() []core.Surface {
	return l.mesh.Primitives()
}

// Sample implements Light: a point uniform by area over the triangle
func (l *TriangleLight) Sample(isec *core.Intersection, sample core.Vec2) (Sample, bool) {
	u, v := core.SampleTriangle(sample)
	point := l.V0.Multiply(1 - u - v).Add(l.V1.Multiply(u)).Add(l.V2.Multiply(v))
	return areaSample(isec.Point, point, l.normal, l.area, l.Emission)
}

// Eval implements Light
func (l *TriangleLight) Eval(isec *core.Intersection, dir core.Vec3) (core.Color, float64) {
	if isec == nil {
		return core.Black, 0
	}
	ray := core.NewRay(isec.Point, dir)
	var hit core.Intersection
	hitAny := false
	for _, prim := range l.mesh.Primitives() {
		if prim.Intersect(&ray, &hit) {
			hitAny = true
		}
	}
	if !hitAny {
		return core.Black, 0
	}
	return areaEval(isec.Point, hit.Point, l.normal, dir, l.area, l.Emission)
}

// Owns implements SurfaceOwner
func (l *TriangleLight) Owns(s core.Surface) bool {
	for _, prim := range l.mesh.Primitives() {
		if s == prim {
			return true
		}
	}
	return false
}

// Environmental implements Light
func (l *TriangleLight) Environmental() bool {
	return false
}

// SceneSetup implements Light
func (l *TriangleLight) SceneSetup(center core.Vec3, radius float64) {}

// areaSample converts a uniformly sampled surface point into a solid-angle
// light sample: pdf = dist² / (area · cosθ_light)
func areaSample(shading, point, normal core.Vec3, area float64, emission core.Color) (Sample, bool) {
	toLight := point.Subtract(shading)
	dist := toLight.Length()
	if dist == 0 {
		return Sample{}, false
	}
	dir := toLight.Multiply(1.0 / dist)

	cosLight := normal.Dot(dir.Negate())
	if cosLight <= 1e-9 {
		return Sample{}, false // behind or edge-on to the emitting face
	}

	return Sample{
		Direction: dir,
		Radiance:  emission,
		PDF:       dist * dist / (area * cosLight),
		Distance:  dist,
	}, true
}

// areaEval mirrors areaSample for an arbitrary direction that reaches the
// light surface at point
func areaEval(shading, point, normal, dir core.Vec3, area float64, emission core.Color) (core.Color, float64) {
	cosLight := normal.Dot(dir.Negate())
	if cosLight <= 1e-9 {
		return core.Black, 0
	}
	dist2 := point.Subtract(shading).LengthSquared()
	pdf := dist2 / (area * cosLight)
	return emission, pdf
}
