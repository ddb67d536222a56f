package integrator

import (
	"fmt"
	"math"

	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/lights"
	"github.com/arpelle/glint/pkg/sampler"
	"github.com/arpelle/glint/pkg/scene"
)

// directLighting is the shared MIS estimator for direct illumination at a
// single non-specular shading point. Light samples and BSDF samples are
// combined with the power heuristic (β=2); delta lights take full weight.
// Specular BSDF samples contribute nothing here; the path integrator's
// continuation ray carries them.
type directLighting struct {
	scene  *scene.Scene
	single bool // choose one light uniformly instead of enumerating all
}

// estimate runs one round of the estimator: one light sample per light (or
// for one chosen light in single mode) plus one BSDF sample.
func (d *directLighting) estimate(isec *core.Intersection, bsdf core.BSDF, lightU, bsdfU core.Vec2, selectU float64) core.Color {
	ls := d.scene.Lights
	if len(ls) == 0 {
		return core.Black
	}

	total := core.Black
	if d.single {
		idx := int(selectU * float64(len(ls)))
		if idx >= len(ls) {
			idx = len(ls) - 1
		}
		chosen := ls[idx : idx+1]
		total = d.lightStrategy(isec, bsdf, chosen[0], lightU)
		total = total.Add(d.bsdfStrategy(isec, bsdf, chosen, bsdfU))
		return total.Scale(float64(len(ls)))
	}

	for _, light := range ls {
		total = total.Add(d.lightStrategy(isec, bsdf, light, lightU))
	}
	return total.Add(d.bsdfStrategy(isec, bsdf, ls, bsdfU))
}

// lightStrategy draws one sample from the light and weighs it against the
// BSDF's density for the sampled direction
func (d *directLighting) lightStrategy(isec *core.Intersection, bsdf core.BSDF, light lights.Light, u core.Vec2) core.Color {
	smp, ok := light.Sample(isec, u)
	if !ok || smp.Radiance.IsBlack() {
		return core.Black
	}

	f, bsdfPDF := bsdf.Eval(smp.Direction)
	if f.IsBlack() {
		return core.Black
	}

	cosTheta := math.Abs(smp.Direction.Dot(isec.Normal))
	if cosTheta == 0 {
		return core.Black
	}

	// Shadow ray toward the light, shortened at both ends to dodge
	// self-intersection
	shadowRay := core.NewBoundedRay(isec.Point, smp.Direction, core.MinTrace, smp.Distance-core.MinTrace)
	occluded, transmittance := d.scene.Occluded(&shadowRay, isec)
	if occluded {
		return core.Black
	}

	contribution := f.Mul(smp.Radiance).Mul(transmittance).Scale(cosTheta)
	if smp.PDF == 0 {
		// Delta light: the light strategy is the only one that can find
		// it, so it takes full weight
		return contribution
	}
	weight := core.PowerHeuristic(1, smp.PDF, 1, bsdfPDF)
	return contribution.Scale(weight / smp.PDF)
}

// bsdfStrategy draws one BSDF sample and, if it reaches an emitter or
// escapes to an environmental light, weighs it against that light's density
func (d *directLighting) bsdfStrategy(isec *core.Intersection, bsdf core.BSDF, ls []lights.Light, u core.Vec2) core.Color {
	bs := bsdf.Sample(u.X, u.Y)
	if bs.PDF == 0 || bs.F.IsBlack() {
		// Specular samples are carried forward by the path integrator's
		// continuation ray, not by the direct estimator
		return core.Black
	}

	cosTheta := math.Abs(bs.Direction.Dot(isec.Normal))
	if cosTheta == 0 {
		return core.Black
	}

	ray := core.NewBoundedRay(isec.Point, bs.Direction, core.MinTrace, math.Inf(1))
	var hit core.Intersection
	if d.scene.Intersect(&ray, &hit) {
		hit.Wo = bs.Direction.Negate()
		emitted := hit.Emission()
		if emitted.IsBlack() {
			return core.Black
		}
		// Match the emitter back to its light for the MIS weight; an
		// emitter that is not a sampled light gets full weight
		lightPDF := 0.0
		for _, light := range ls {
			if owner, ok := light.(lights.SurfaceOwner); ok && owner.Owns(hit.Surface) {
				_, lightPDF = light.Eval(isec, bs.Direction)
				break
			}
		}
		weight := core.PowerHeuristic(1, bs.PDF, 1, lightPDF)
		return bs.F.Mul(emitted).Scale(cosTheta * weight / bs.PDF)
	}

	// Escaped: environmental lights contribute with their own density
	total := core.Black
	for _, light := range ls {
		if !light.Environmental() {
			continue
		}
		radiance, lightPDF := light.Eval(isec, bs.Direction)
		if radiance.IsBlack() {
			continue
		}
		weight := core.PowerHeuristic(1, bs.PDF, 1, lightPDF)
		total = total.Add(bs.F.Mul(radiance).Scale(cosTheta * weight / bs.PDF))
	}
	return total
}

// Direct is the direct-lighting integrator: emission plus one-bounce
// direct illumination, no indirect transport
type Direct struct {
	scene *scene.Scene
	dl    directLighting

	// LightSamples is the number of estimator rounds per shading point
	LightSamples int

	lightCh  sampler.Channel
	bsdfCh   sampler.Channel
	selectCh sampler.Channel
}

// NewDirect creates a direct-lighting integrator with n light samples per
// shading point
func NewDirect(sc *scene.Scene, lightSamples int, singleLight bool) *Direct {
	if lightSamples < 1 {
		lightSamples = 1
	}
	return &Direct{
		scene:        sc,
		dl:           directLighting{scene: sc, single: singleLight},
		LightSamples: lightSamples,
	}
}

// RequestSamples implements Integrator
func (d *Direct) RequestSamples(smp *sampler.Sampler, spp int) {
	n := spp * d.LightSamples
	d.lightCh = smp.Request2D(fmt.Sprintf("direct.light.%d", d.LightSamples), n)
	d.bsdfCh = smp.Request2D("direct.bsdf", n)
	d.selectCh = smp.Request1D("direct.select", n)
}

// Li implements Integrator
func (d *Direct) Li(ray core.Ray, smp *sampler.Sampler, sampleIdx int, arena *core.Arena) core.Tint {
	isec := arena.AllocIntersection()
	if !d.scene.Intersect(&ray, isec) {
		return d.scene.EscapeRadiance(ray.Direction.Normalize())
	}

	radiance := isec.Emission()

	isec.Medium = &core.DefaultMedium
	isec.ExitMedium = &core.DefaultMedium
	bsdf := isec.Material.BSDF(isec)
	if bsdf == nil {
		return core.NewTint(radiance, 1)
	}

	sum := core.Black
	for j := 0; j < d.LightSamples; j++ {
		draw := sampleIdx*d.LightSamples + j
		sum = sum.Add(d.dl.estimate(isec, bsdf,
			smp.Get2D(d.lightCh, draw),
			smp.Get2D(d.bsdfCh, draw),
			smp.Get1D(d.selectCh, draw)))
	}
	radiance = radiance.Add(sum.Scale(1.0 / float64(d.LightSamples)))

	if !radiance.IsFinite() {
		// A numerical failure inside the estimator costs one sample,
		// never the render
		return core.NewTint(core.Black, 1)
	}
	return core.NewTint(radiance, 1)
}
