package scene

import (
	"math"
	"testing"

	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/geometry"
	"github.com/arpelle/glint/pkg/lights"
	"github.com/arpelle/glint/pkg/material"
)

func TestScene_BuildExactlyOnce(t *testing.T) {
	sc := New()
	sc.Add(geometry.NewSphere(core.Vec3{}, 1, material.NewLambertian(core.Gray(0.5))))

	if err := sc.BuildAcceleration(); err != nil {
		t.Fatalf("first build failed: %v", err)
	}
	if err := sc.BuildAcceleration(); err != ErrAlreadyBuilt {
		t.Errorf("second build returned %v, expected ErrAlreadyBuilt", err)
	}
}

func TestScene_BoundingSphereCoversSurfaces(t *testing.T) {
	sc := New()
	sc.Add(geometry.NewSphere(core.NewVec3(-3, 0, 0), 1, material.NewLambertian(core.Gray(0.5))))
	sc.Add(geometry.NewSphere(core.NewVec3(3, 0, 0), 1, material.NewLambertian(core.Gray(0.5))))
	if err := sc.BuildAcceleration(); err != nil {
		t.Fatal(err)
	}

	center, radius := sc.BoundingSphere()
	if center.Length() > 1e-9 {
		t.Errorf("center %v, expected origin", center)
	}
	if radius < 4 {
		t.Errorf("radius %g cannot cover spheres out to x=±4", radius)
	}
}

func TestScene_AddLightRegistersEmittingSurface(t *testing.T) {
	sc := New()
	sc.AddLight(lights.NewDiscLight(core.NewVec3(0, 2, 0), core.NewVec3(0, -1, 0), 1, core.Gray(5)))
	if sc.SurfaceCount() != 1 {
		t.Errorf("area light should add its surface, have %d", sc.SurfaceCount())
	}
	if err := sc.BuildAcceleration(); err != nil {
		t.Fatal(err)
	}

	// The emitting face is visible to camera rays
	ray := core.NewRay(core.Vec3{}, core.NewVec3(0, 1, 0))
	var isec core.Intersection
	if !sc.Intersect(&ray, &isec) {
		t.Fatal("camera ray should reach the light surface")
	}
	if isec.Emission().IsBlack() {
		t.Error("light surface should emit toward the camera")
	}
}

func TestScene_EscapeRadiance(t *testing.T) {
	sc := New()
	sc.Add(geometry.NewSphere(core.Vec3{}, 1, material.NewLambertian(core.Gray(0.5))))
	sc.SetBackground(core.NewColor(0.2, 0.3, 0.4))
	sc.AddLight(lights.NewFarLight(core.NewVec3(0, 1, 0), 0.3, core.Gray(2)))
	if err := sc.BuildAcceleration(); err != nil {
		t.Fatal(err)
	}

	// Inside the far light's cone: background plus intensity
	up := sc.EscapeRadiance(core.NewVec3(0, 1, 0))
	if math.Abs(up.Color.R-2.2) > 1e-12 {
		t.Errorf("escape radiance %v, expected background + far light", up.Color)
	}

	// Outside the cone: background only
	side := sc.EscapeRadiance(core.NewVec3(1, 0, 0))
	if side.Color != core.NewColor(0.2, 0.3, 0.4) {
		t.Errorf("escape radiance %v, expected the background", side.Color)
	}
}

func TestScene_EnvironmentNotDoubleCounted(t *testing.T) {
	sc := New()
	sc.Add(geometry.NewSphere(core.Vec3{}, 1, material.NewLambertian(core.Gray(0.5))))
	sc.SetEnvironment(lights.NewSolidEnvMap(core.Gray(0.75)), true)
	if err := sc.BuildAcceleration(); err != nil {
		t.Fatal(err)
	}

	// The environment light is the background; escape radiance must be
	// the map value once, not twice
	escape := sc.EscapeRadiance(core.NewVec3(0, 1, 0))
	if math.Abs(escape.Color.R-0.75) > 1e-12 {
		t.Errorf("escape radiance %g, expected 0.75", escape.Color.R)
	}
	if len(sc.Lights) != 1 {
		t.Errorf("environment should register one light, have %d", len(sc.Lights))
	}
}

func TestBuiltinScenes_AllBuild(t *testing.T) {
	for _, name := range BuiltinNames() {
		sc, err := Load(name)
		if err != nil {
			t.Errorf("loading %q: %v", name, err)
			continue
		}
		if err := sc.BuildAcceleration(); err != nil {
			t.Errorf("building %q: %v", name, err)
		}
	}
}

func TestLoad_UnknownScene(t *testing.T) {
	if _, err := Load("no-such-scene"); err == nil {
		t.Error("unknown scene spec must fail")
	}
}
