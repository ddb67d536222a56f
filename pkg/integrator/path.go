package integrator

import (
	"fmt"
	"math"

	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/sampler"
	"github.com/arpelle/glint/pkg/scene"
)

// Hard cap on path length as a safety net above Russian roulette
const maxPathLen = 64

// Path is the unidirectional path-tracing integrator. Each vertex adds
// MIS direct lighting; emitters are counted directly only at the first
// vertex or after a specular bounce, where the previous vertex's direct
// estimator could not have seen them.
type Path struct {
	scene *scene.Scene
	dl    directLighting

	// MinPathLen is the number of vertices before Russian roulette may
	// terminate the path; it also bounds the stratified channel budget
	MinPathLen int
	// RRTermination is the roulette termination probability q
	RRTermination float64

	lightCh  []sampler.Channel
	selectCh []sampler.Channel
	misCh    []sampler.Channel
	contCh   []sampler.Channel
}

// NewPath creates a path-tracing integrator
func NewPath(sc *scene.Scene, minPathLen int, rrTermination float64) *Path {
	if minPathLen < 1 {
		minPathLen = 1
	}
	if rrTermination <= 0 || rrTermination >= 1 {
		rrTermination = 0.5
	}
	return &Path{
		scene:         sc,
		dl:            directLighting{scene: sc, single: true},
		MinPathLen:    minPathLen,
		RRTermination: rrTermination,
	}
}

// RequestSamples implements Integrator: channels are reserved up front for
// the first MinPathLen vertices, keyed by vertex index; deeper vertices
// draw from the pixel's uniform stream instead of exhausting the
// stratified budget
func (p *Path) RequestSamples(smp *sampler.Sampler, spp int) {
	p.lightCh = make([]sampler.Channel, p.MinPathLen)
	p.selectCh = make([]sampler.Channel, p.MinPathLen)
	p.misCh = make([]sampler.Channel, p.MinPathLen)
	p.contCh = make([]sampler.Channel, p.MinPathLen)
	for k := 0; k < p.MinPathLen; k++ {
		p.lightCh[k] = smp.Request2D(fmt.Sprintf("path.light.%d", k), spp)
		p.selectCh[k] = smp.Request1D(fmt.Sprintf("path.select.%d", k), spp)
		p.misCh[k] = smp.Request2D(fmt.Sprintf("path.mis.%d", k), spp)
		p.contCh[k] = smp.Request2D(fmt.Sprintf("path.cont.%d", k), spp)
	}
}

// Li implements Integrator
func (p *Path) Li(ray core.Ray, smp *sampler.Sampler, sampleIdx int, arena *core.Arena) core.Tint {
	radiance := core.Black
	alpha := 1.0
	throughput := core.White
	media := core.NewMediaStack()
	lastSpecular := false

	for k := 0; k < maxPathLen; k++ {
		isec := arena.AllocIntersection()
		if !p.scene.Intersect(&ray, isec) {
			// Escaped: environmental radiance counts only where the
			// previous vertex's direct estimator could not see it
			if k == 0 || lastSpecular {
				escape := p.scene.EscapeRadiance(ray.Direction.Normalize())
				radiance = radiance.Add(throughput.Mul(escape.Color))
				if k == 0 {
					alpha = escape.Alpha
				}
			}
			break
		}

		if k == 0 || lastSpecular {
			radiance = radiance.Add(throughput.Mul(isec.Emission()))
		}

		isec.Medium = media.Current()
		isec.ExitMedium = media.Enclosing()
		bsdf := isec.Material.BSDF(isec)
		if bsdf == nil {
			break // pure emitter or absorber
		}

		// Direct lighting at this vertex
		var lightU, misU core.Vec2
		var selectU float64
		if k < p.MinPathLen {
			lightU = smp.Get2D(p.lightCh[k], sampleIdx)
			selectU = smp.Get1D(p.selectCh[k], sampleIdx)
			misU = smp.Get2D(p.misCh[k], sampleIdx)
		} else {
			lightU = smp.Uniform2D()
			selectU = smp.Uniform1D()
			misU = smp.Uniform2D()
		}
		radiance = radiance.Add(throughput.Mul(p.dl.estimate(isec, bsdf, lightU, misU, selectU)))

		// Continuation direction
		var contU core.Vec2
		if k < p.MinPathLen {
			contU = smp.Get2D(p.contCh[k], sampleIdx)
		} else {
			contU = smp.Uniform2D()
		}
		bs := bsdf.Sample(contU.X, contU.Y)
		if bs.F.IsBlack() {
			break // absorbed or zero-weight sample
		}

		// Russian roulette past the minimum path length
		if k >= p.MinPathLen {
			if smp.Uniform1D() < p.RRTermination {
				break
			}
			throughput = throughput.Scale(1.0 / (1.0 - p.RRTermination))
		}

		cosTheta := math.Abs(bs.Direction.Dot(isec.Normal))
		if bs.PDF > 0 {
			throughput = throughput.Mul(bs.F).Scale(cosTheta / bs.PDF)
		} else {
			// Delta sample: the density cancels by convention
			throughput = throughput.Mul(bs.F).Scale(cosTheta)
		}
		if throughput.IsBlack() || !throughput.IsFinite() {
			break
		}

		// Media bookkeeping on transmission: entering pushes the body's
		// medium, exiting pops back out, never past the ambient floor
		if bs.Flags.Has(core.BSDFTransmissive) {
			if isec.Back {
				media.Pop()
			} else if carrier, ok := isec.Material.(core.MediumCarrier); ok {
				media.Push(carrier.Medium())
			}
		}
		lastSpecular = bs.Flags.Has(core.BSDFSpecular)

		ray = core.NewRay(isec.Point.Add(bs.Direction.Multiply(core.MinTrace)), bs.Direction)
	}

	if !radiance.IsFinite() {
		return core.NewTint(core.Black, alpha)
	}
	return core.NewTint(radiance.ClampNonNegative(), alpha)
}
