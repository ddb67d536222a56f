package core

// ShadowKind classifies how a surface's material blocks shadow rays
type ShadowKind int

const (
	// ShadowNone casts no shadow at all
	ShadowNone ShadowKind = iota
	// ShadowPartial attenuates shadow rays without blocking them
	ShadowPartial
	// ShadowOpaque fully blocks shadow rays
	ShadowOpaque
)

// BSDFFlags describes the nature of a sampled scattering event
type BSDFFlags int

const (
	// BSDFReflective marks samples on the same side as the viewer
	BSDFReflective BSDFFlags = 1 << iota
	// BSDFTransmissive marks samples on the opposite side of the surface
	BSDFTransmissive
	// BSDFSpecular marks delta-distribution samples (no density)
	BSDFSpecular
	// BSDFGlossy marks narrow-lobe samples
	BSDFGlossy
	// BSDFDiffuse marks wide-lobe samples
	BSDFDiffuse
)

// Has reports whether all bits in flag are set
func (f BSDFFlags) Has(flag BSDFFlags) bool {
	return f&flag == flag
}

// BSDFSample is the result of sampling a scattering direction at a surface
// point. A PDF of zero is the delta sentinel: the sample was drawn from a
// specular distribution with no meaningful density.
type BSDFSample struct {
	Direction Vec3      // Sampled outgoing direction (world space, unit)
	F         Color     // BSDF value for the sampled direction
	PDF       float64   // Solid-angle density, 0 for specular samples
	Flags     BSDFFlags // Nature of the sampled lobe
}

// BSDF evaluates and samples scattering at one intersection. Implementations
// capture the shading frame and viewer direction at construction; they live
// for a single path vertex.
type BSDF interface {
	// Eval returns the BSDF value and PDF for scattering from the viewer
	// direction into dir. Specular BSDFs return zero for both.
	Eval(dir Vec3) (Color, float64)

	// Sample draws a scattering direction from a 2D sample in [0,1)².
	// Callers must treat PDF == 0 with zero F as a failed sample.
	Sample(u, v float64) BSDFSample
}

// Material describes the optical behavior of a surface. Materials are
// scene-owned for the full render; surfaces hold non-owning references.
type Material interface {
	// ShadowKind reports how the material blocks shadow rays
	ShadowKind() ShadowKind

	// BSDF returns a scattering function at the intersection, or nil for
	// pure emitters and absorbers
	BSDF(isec *Intersection) BSDF
}

// Emitter is implemented by materials that emit light
type Emitter interface {
	Emit(isec *Intersection) Color
}

// MediumCarrier is implemented by materials enclosing a refractive medium
type MediumCarrier interface {
	Medium() *Medium
}

// Transmitter is implemented by partially-transmissive materials; the
// returned color attenuates shadow rays that pass through
type Transmitter interface {
	Transmittance() Color
}

// Intersection is the full record of a ray/surface hit. Records are
// allocated from a per-thread arena and live for one path vertex.
type Intersection struct {
	Point       Vec3     // World-space hit point
	GeomNormal  Vec3     // Geometric (face) normal, opposing the ray
	Normal      Vec3     // Shading normal (interpolated, opposing the ray)
	Wo          Vec3     // Unit direction back toward the viewer
	UV          Vec2     // Surface parameterization at the hit
	T           float64  // Ray parameter of the hit
	Back        bool     // Whether the ray struck the back face
	Frame       Frame    // Shading frame (Z = shading normal)
	Surface     Surface  // Surface that produced the hit
	Material    Material // Material at the hit
	Medium      *Medium  // Medium the incoming ray travels in
	ExitMedium  *Medium  // Medium beyond the surface for transmissive exits
	SmoothGroup uint64   // Identity tag for self-shadow suppression, 0 = none
}

// Emission returns the radiance emitted at the intersection toward the
// viewer, or black for non-emissive materials
func (isec *Intersection) Emission() Color {
	if emitter, ok := isec.Material.(Emitter); ok && !isec.Back {
		return emitter.Emit(isec)
	}
	return Black
}

// Shadow is the outcome of testing one surface against a shadow ray
type Shadow struct {
	Kind        ShadowKind
	Attenuation Color // Transmittance for ShadowPartial hits
}

// Surface is the contract all scene geometry satisfies. Surfaces are
// scene-owned; the acceleration structure and intersections hold non-owning
// references.
type Surface interface {
	// Bounds returns the surface's bounding box
	Bounds() AABB

	// Intersect finds the closest hit within the ray's interval. On a hit
	// it narrows ray.T1 to the hit parameter, fills isec and returns true.
	// The ray interval is never widened.
	Intersect(ray *Ray, isec *Intersection) bool

	// IntersectShadow tests the surface against a shadow ray. The origin
	// intersection the shadow ray was cast from is passed so surfaces can
	// suppress false self-shadowing within a smoothing group.
	IntersectShadow(ray *Ray, origin *Intersection) Shadow

	// Material returns the surface's material
	Material() Material
}

// Aggregate is implemented by composite surfaces that decompose into
// primitives for individual insertion into the acceleration structure
type Aggregate interface {
	Primitives() []Surface
}
