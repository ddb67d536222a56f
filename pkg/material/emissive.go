package material

import "github.com/arpelle/glint/pkg/core"

// Emissive is a pure emitter; it scatters nothing
type Emissive struct {
	Radiance core.Color // Emitted radiance
}

// NewEmissive creates a new emissive material
func NewEmissive(radiance core.Color) *Emissive {
	return &Emissive{Radiance: radiance}
}

// ShadowKind implements core.Material
func (e *Emissive) ShadowKind() core.ShadowKind {
	return core.ShadowOpaque
}

// BSDF implements core.Material; emitters have no scattering function
func (e *Emissive) BSDF(isec *core.Intersection) core.BSDF {
	return nil
}

// Emit implements core.Emitter
func (e *Emissive) Emit(isec *core.Intersection) core.Color {
	return e.Radiance
}
