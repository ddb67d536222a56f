package scene

import (
	"fmt"
	"math"
	"sort"

	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/geometry"
	"github.com/arpelle/glint/pkg/lights"
	"github.com/arpelle/glint/pkg/material"
)

// Builder constructs a ready-to-build scene. The built-in registry stands
// in for an external scene-file loader: the renderer only ever sees the
// finished Scene either way.
type Builder func() (*Scene, error)

var builtins = map[string]Builder{
	"default":      DefaultScene,
	"cornell":      CornellScene,
	"sphere-point": SpherePointScene,
	"env-sphere":   EnvSphereScene,
	"mirror-box":   MirrorBoxScene,
}

// Builtin looks up a built-in scene by name
func Builtin(name string) (Builder, bool) {
	b, ok := builtins[name]
	return b, ok
}

// BuiltinNames lists the built-in scene names, sorted
func BuiltinNames() []string {
	names := make([]string, 0, len(builtins))
	for name := range builtins {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// quad adds an axis-aligned-ish rectangle as a two-triangle mesh
func quad(s *Scene, c0, c1, c2, c3 core.Vec3, mat core.Material) *geometry.Mesh {
	mesh := geometry.NewMesh(mat)
	i0 := mesh.AddVertex(c0)
	i1 := mesh.AddVertex(c1)
	i2 := mesh.AddVertex(c2)
	i3 := mesh.AddVertex(c3)
	mesh.AddTriangle(i0, i1, i2, nil)
	mesh.AddTriangle(i0, i2, i3, nil)
	for _, prim := range mesh.Primitives() {
		s.Add(prim)
	}
	return mesh
}

// DefaultScene is a small demo: diffuse floor, one sphere per material
// family, a far light and a disc light.
func DefaultScene() (*Scene, error) {
	s := New()

	floor := material.NewLambertian(core.NewColor(0.6, 0.6, 0.6))
	quad(s,
		core.NewVec3(-20, 0, -20), core.NewVec3(-20, 0, 20),
		core.NewVec3(20, 0, 20), core.NewVec3(20, 0, -20), floor)

	s.Add(geometry.NewSphere(core.NewVec3(-2.2, 1, 0), 1, material.NewLambertian(core.NewColor(0.7, 0.3, 0.3))))
	s.Add(geometry.NewSphere(core.NewVec3(0, 1, 0), 1, material.NewGlass(1.5)))
	s.Add(geometry.NewSphere(core.NewVec3(2.2, 1, 0), 1, material.NewMirror(core.NewColor(0.9, 0.9, 0.9))))
	s.Add(geometry.NewSphere(core.NewVec3(0, 0.6, 2.2), 0.6, material.NewGlossy(core.NewColor(0.4, 0.5, 0.8), 64)))

	s.AddLight(lights.NewFarLight(core.NewVec3(0.4, 1, 0.2), 0.05, core.NewColor(2.5, 2.4, 2.2)))
	s.AddLight(lights.NewDiscLight(core.NewVec3(0, 6, 0), core.NewVec3(0, -1, 0), 1.5, core.NewColor(8, 8, 8)))

	s.SetBackground(core.NewColor(0.4, 0.55, 0.8))

	s.Camera.MoveTo(core.NewVec3(0, 2.5, 8))
	s.Camera.TargetTo(core.NewVec3(0, 1, 0))
	return s, nil
}

// CornellScene is a Cornell-box-lite: white box, red left wall, green
// right wall, ceiling disc light
func CornellScene() (*Scene, error) {
	s := New()

	white := material.NewLambertian(core.NewColor(0.73, 0.73, 0.73))
	red := material.NewLambertian(core.NewColor(0.65, 0.05, 0.05))
	green := material.NewLambertian(core.NewColor(0.12, 0.45, 0.15))

	// Box interior spans [-1,1]³, open toward +Z
	quad(s, core.NewVec3(-1, -1, -1), core.NewVec3(1, -1, -1), core.NewVec3(1, -1, 1), core.NewVec3(-1, -1, 1), white)  // floor
	quad(s, core.NewVec3(-1, 1, -1), core.NewVec3(-1, 1, 1), core.NewVec3(1, 1, 1), core.NewVec3(1, 1, -1), white)      // ceiling
	quad(s, core.NewVec3(-1, -1, -1), core.NewVec3(-1, 1, -1), core.NewVec3(1, 1, -1), core.NewVec3(1, -1, -1), white)  // back
	quad(s, core.NewVec3(-1, -1, -1), core.NewVec3(-1, -1, 1), core.NewVec3(-1, 1, 1), core.NewVec3(-1, 1, -1), red)    // left
	quad(s, core.NewVec3(1, -1, -1), core.NewVec3(1, 1, -1), core.NewVec3(1, 1, 1), core.NewVec3(1, -1, 1), green)      // right

	s.AddLight(lights.NewDiscLight(core.NewVec3(0, 0.999, 0), core.NewVec3(0, -1, 0), 0.35, core.NewColor(12, 12, 12)))

	s.Camera.MoveTo(core.NewVec3(0, 0, 3.6))
	s.Camera.TargetTo(core.Vec3{})
	s.Camera.SetFov(40 * math.Pi / 180)
	return s, nil
}

// SpherePointScene is a single diffuse unit sphere under one point light
func SpherePointScene() (*Scene, error) {
	s := New()
	s.Add(geometry.NewSphere(core.Vec3{}, 1, material.NewLambertian(core.NewColor(0.8, 0.8, 0.8))))
	s.AddLight(lights.NewPointLight(core.NewVec3(0, 0, 5), core.NewColor(1, 1, 1)))
	s.Camera.MoveTo(core.NewVec3(0, 0, 3))
	s.Camera.TargetTo(core.Vec3{})
	return s, nil
}

// EnvSphereScene is a single white diffuse sphere lit by a constant white
// environment
func EnvSphereScene() (*Scene, error) {
	s := New()
	s.Add(geometry.NewSphere(core.Vec3{}, 1, material.NewLambertian(core.NewColor(0.8, 0.8, 0.8))))
	s.SetEnvironment(lights.NewSolidEnvMap(core.White), true)
	s.Camera.MoveTo(core.NewVec3(0, 0, 3))
	s.Camera.TargetTo(core.Vec3{})
	return s, nil
}

// MirrorBoxScene places a diffuse sphere between two opposing mirror
// planes, so paths bounce many times before escaping
func MirrorBoxScene() (*Scene, error) {
	s := New()

	mirror := material.NewMirror(core.NewColor(0.95, 0.95, 0.95))
	quad(s, core.NewVec3(-4, -4, -3), core.NewVec3(4, -4, -3), core.NewVec3(4, 4, -3), core.NewVec3(-4, 4, -3), mirror)
	quad(s, core.NewVec3(-4, -4, 3), core.NewVec3(-4, 4, 3), core.NewVec3(4, 4, 3), core.NewVec3(4, -4, 3), mirror)

	s.Add(geometry.NewSphere(core.Vec3{}, 0.8, material.NewLambertian(core.NewColor(0.7, 0.6, 0.2))))

	s.AddLight(lights.NewPointLight(core.NewVec3(0, 3, 0), core.NewColor(20, 20, 20)))

	s.Camera.MoveTo(core.NewVec3(0, 0.5, 2.2))
	s.Camera.TargetTo(core.Vec3{})
	return s, nil
}

// Load resolves a scene spec to a built scene. Only built-in names are
// recognized here; file loading belongs to an external loader collaborator.
func Load(spec string) (*Scene, error) {
	builder, ok := Builtin(spec)
	if !ok {
		return nil, fmt.Errorf("unknown scene %q (built-in scenes: %v)", spec, BuiltinNames())
	}
	return builder()
}
