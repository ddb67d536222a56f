// Package integrator estimates the radiance arriving along camera rays.
package integrator

import (
	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/sampler"
)

// Integrator computes the radiance carried by one camera ray. Integrators
// are created per worker; they may keep per-worker scratch state but never
// share mutable state across workers.
type Integrator interface {
	// RequestSamples reserves the stratified channels the integrator
	// needs, called once before rendering starts
	RequestSamples(smp *sampler.Sampler, spp int)

	// Li returns the radiance and alpha for a camera ray. The sampler has
	// already been generated for the ray's pixel; sampleIdx selects the
	// draw within each channel. The arena is reset by the caller between
	// camera rays.
	Li(ray core.Ray, smp *sampler.Sampler, sampleIdx int, arena *core.Arena) core.Tint
}
