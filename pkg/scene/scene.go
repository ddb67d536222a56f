// Package scene owns everything that describes what is rendered: surfaces,
// materials, lights, background and the acceleration structure over them.
package scene

import (
	"errors"

	"github.com/arpelle/glint/log"
	"github.com/arpelle/glint/pkg/camera"
	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/lights"
	"github.com/arpelle/glint/pkg/space"
)

var logger = log.New("scene")

// ErrAlreadyBuilt is returned when BuildAcceleration is called twice
var ErrAlreadyBuilt = errors.New("scene: acceleration structure already built")

// Scene is the owning container for everything the integrators consult.
// After BuildAcceleration it is immutable and safe to share across render
// workers.
type Scene struct {
	Camera *camera.Camera
	Lights []lights.Light

	surfaces []core.Surface

	backgroundColor core.Color
	backgroundAlpha float64
	env             *lights.EnvMap

	bgLight lights.Light

	octree *space.Octree
	center core.Vec3
	radius float64
	built  bool
}

// New creates an empty scene with a default camera and opaque black
// background
func New() *Scene {
	return &Scene{
		Camera:          camera.New(),
		backgroundAlpha: 1,
	}
}

// Add inserts a surface into the scene. The scene owns its surfaces for
// the full render.
func (s *Scene) Add(surface core.Surface) {
	s.surfaces = append(s.surfaces, surface)
}

// AddLight inserts a light. Lights whose emitting surface is scene
// geometry (area lights) have that geometry added as well.
func (s *Scene) AddLight(light lights.Light) {
	s.Lights = append(s.Lights, light)
	switch l := light.(type) {
	case core.Surface:
		s.Add(l)
	case core.Aggregate:
		for _, prim := range l.Primitives() {
			s.Add(prim)
		}
	}
}

// SetBackground sets a solid background color
func (s *Scene) SetBackground(c core.Color) {
	s.backgroundColor = c
	s.env = nil
}

// SetBackgroundAlpha sets the alpha reported for rays that miss the scene
func (s *Scene) SetBackgroundAlpha(alpha float64) {
	s.backgroundAlpha = alpha
}

// SetEnvironment installs an environment map as the background. When
// illuminate is true the map also becomes an importance-sampled light.
func (s *Scene) SetEnvironment(envmap *lights.EnvMap, illuminate bool) {
	s.env = envmap
	if illuminate {
		light := lights.NewEnvironmentLight(envmap)
		s.AddLight(light)
		s.bgLight = light
	}
}

// Environment returns the background environment map, or nil
func (s *Scene) Environment() *lights.EnvMap {
	return s.env
}

// Background returns the radiance and alpha seen by a ray that escapes the
// scene
func (s *Scene) Background(dir core.Vec3) core.Tint {
	if s.env != nil {
		return core.NewTint(s.env.Lookup(dir), s.backgroundAlpha)
	}
	return core.NewTint(s.backgroundColor, s.backgroundAlpha)
}

// EscapeRadiance returns the total radiance a ray that left the scene
// picks up: the background plus every environmental light not already
// represented by the background map
func (s *Scene) EscapeRadiance(dir core.Vec3) core.Tint {
	tint := s.Background(dir)
	for _, light := range s.Lights {
		if light.Environmental() && light != s.bgLight {
			tint.Color = tint.Color.Add(lights.Escape(light, dir))
		}
	}
	return tint
}

// SurfaceCount returns the number of top-level surfaces added
func (s *Scene) SurfaceCount() int {
	return len(s.surfaces)
}

// PrimitiveCount returns the number of primitives in the acceleration
// structure; zero before BuildAcceleration
func (s *Scene) PrimitiveCount() int {
	if s.octree == nil {
		return 0
	}
	return s.octree.Count()
}

// BoundingSphere returns the scene's bounding sphere, valid after
// BuildAcceleration
func (s *Scene) BoundingSphere() (core.Vec3, float64) {
	return s.center, s.radius
}

// BuildAcceleration builds the octree over all added surfaces and hands
// every light the scene bounding sphere. It must be called exactly once,
// after the last surface is added and before rendering.
func (s *Scene) BuildAcceleration() error {
	if s.built {
		return ErrAlreadyBuilt
	}
	s.built = true

	s.octree = space.NewOctree(s.surfaces)

	bounds := core.EmptyAABB()
	for _, surface := range s.surfaces {
		bounds = bounds.Union(surface.Bounds())
	}
	if bounds.IsValid() {
		s.center, s.radius = bounds.BoundingSphere()
	}

	for _, light := range s.Lights {
		light.SceneSetup(s.center, s.radius)
	}

	logger.Infof("scene built: %d surfaces, %d primitives, %d lights, radius %.3g",
		len(s.surfaces), s.octree.Count(), len(s.Lights), s.radius)
	return nil
}

// Intersect finds the closest hit in the scene, narrowing ray.T1
func (s *Scene) Intersect(ray *core.Ray, isec *core.Intersection) bool {
	return s.octree.Intersect(ray, isec)
}

// Occluded reports whether the ray is blocked, and the residual
// transmittance through partially transmissive surfaces when it is not
func (s *Scene) Occluded(ray *core.Ray, origin *core.Intersection) (bool, core.Color) {
	return s.octree.Occluded(ray, origin)
}
