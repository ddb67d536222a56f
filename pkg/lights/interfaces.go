package lights

import "github.com/arpelle/glint/pkg/core"

// Sample is the result of sampling a light toward a shading point
type Sample struct {
	Direction core.Vec3  // Unit direction from the shading point to the light
	Radiance  core.Color // Incident radiance along the direction
	PDF       float64    // Solid-angle density, 0 for delta lights
	Distance  float64    // Distance to the light for shadow testing
}

// Light is the contract all light sources satisfy. Lights are scene-owned
// and read-only during rendering.
type Light interface {
	// Sample draws a direction toward the light from a 2D sample.
	// Returns false when the light cannot illuminate the point.
	Sample(isec *core.Intersection, sample core.Vec2) (Sample, bool)

	// Eval returns the radiance and PDF the light would contribute along
	// an arbitrary direction from the shading point. Delta lights return
	// zero; this is what makes BSDF-sample MIS possible.
	Eval(isec *core.Intersection, dir core.Vec3) (core.Color, float64)

	// Environmental reports whether the light contributes when a ray
	// escapes the scene
	Environmental() bool

	// SceneSetup is called once after the acceleration structure is
	// built, passing the scene's bounding sphere
	SceneSetup(center core.Vec3, radius float64)
}

// SurfaceOwner is implemented by area lights whose emitting surface lives
// in the scene; it lets the direct-lighting estimator match a BSDF-sampled
// emitter hit back to the light it belongs to
type SurfaceOwner interface {
	Owns(s core.Surface) bool
}

// Escape returns the radiance an environmental light contributes to a ray
// that left the scene in the given direction
func Escape(light Light, dir core.Vec3) core.Color {
	radiance, _ := light.Eval(nil, dir)
	return radiance
}
