package space

import (
	"math"
	"math/rand"
	"testing"

	"github.com/arpelle/glint/pkg/core"
	"github.com/arpelle/glint/pkg/geometry"
	"github.com/arpelle/glint/pkg/material"
)

func randomSpheres(random *rand.Rand, count int) []core.Surface {
	mat := material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))
	surfaces := make([]core.Surface, count)
	for i := range surfaces {
		center := core.NewVec3(
			random.Float64()*20-10,
			random.Float64()*20-10,
			random.Float64()*20-10,
		)
		surfaces[i] = geometry.NewSphere(center, 0.1+random.Float64()*1.5, mat)
	}
	return surfaces
}

// linearClosest is the brute-force oracle: test every surface against the
// same narrowing ray
func linearClosest(surfaces []core.Surface, ray *core.Ray, isec *core.Intersection) bool {
	hit := false
	for _, s := range surfaces {
		if s.Intersect(ray, isec) {
			hit = true
		}
	}
	return hit
}

// Property: the octree's closest hit always equals a linear scan's
func TestOctree_MatchesLinearScan(t *testing.T) {
	random := rand.New(rand.NewSource(1234))
	surfaces := randomSpheres(random, 200)
	tree := NewOctree(surfaces)

	if tree.Count() != len(surfaces) {
		t.Fatalf("inserted %d primitives, expected %d", tree.Count(), len(surfaces))
	}

	const rays = 10000
	for i := 0; i < rays; i++ {
		origin := core.NewVec3(
			random.Float64()*30-15,
			random.Float64()*30-15,
			random.Float64()*30-15,
		)
		dir := core.SampleOnUnitSphere(core.NewVec2(random.Float64(), random.Float64()))

		treeRay := core.NewRay(origin, dir)
		var treeIsec core.Intersection
		treeHit := tree.Intersect(&treeRay, &treeIsec)

		linearRay := core.NewRay(origin, dir)
		var linearIsec core.Intersection
		linearHit := linearClosest(surfaces, &linearRay, &linearIsec)

		if treeHit != linearHit {
			t.Fatalf("ray %d: octree hit=%v, linear hit=%v", i, treeHit, linearHit)
		}
		if !treeHit {
			continue
		}
		if math.Abs(treeRay.T1-linearRay.T1) > 1e-9 {
			t.Fatalf("ray %d: octree t=%g, linear t=%g", i, treeRay.T1, linearRay.T1)
		}
		if treeIsec.Surface != linearIsec.Surface {
			t.Fatalf("ray %d: octree and linear scan found different surfaces", i)
		}
	}
}

func TestOctree_MissIsNotAnError(t *testing.T) {
	tree := NewOctree(randomSpheres(rand.New(rand.NewSource(5)), 10))

	ray := core.NewRay(core.NewVec3(100, 100, 100), core.NewVec3(1, 0, 0))
	var isec core.Intersection
	if tree.Intersect(&ray, &isec) {
		t.Error("ray pointing away from everything should miss")
	}

	empty := NewOctree(nil)
	if empty.Intersect(&ray, &isec) {
		t.Error("empty octree should report no intersection")
	}
}

func TestOctree_OcclusionShortCircuit(t *testing.T) {
	opaque := material.NewLambertian(core.NewColor(0.5, 0.5, 0.5))
	surfaces := []core.Surface{
		geometry.NewSphere(core.NewVec3(0, 0, -5), 1, opaque),
	}
	tree := NewOctree(surfaces)

	ray := core.NewBoundedRay(core.Vec3{}, core.NewVec3(0, 0, -1), core.MinTrace, 20)
	occluded, _ := tree.Occluded(&ray, nil)
	if !occluded {
		t.Error("opaque sphere should occlude the ray")
	}

	miss := core.NewBoundedRay(core.Vec3{}, core.NewVec3(0, 1, 0), core.MinTrace, 20)
	occluded, transmittance := tree.Occluded(&miss, nil)
	if occluded {
		t.Error("ray missing everything should be unoccluded")
	}
	if transmittance != core.White {
		t.Errorf("unobstructed transmittance %v, expected white", transmittance)
	}
}

func TestOctree_PartialShadowAccumulatesTransmittance(t *testing.T) {
	glass := material.NewGlass(1.5)
	glass.Tint = core.NewColor(0.8, 0.9, 1.0)
	surfaces := []core.Surface{
		geometry.NewSphere(core.NewVec3(0, 0, -3), 1, glass),
		geometry.NewSphere(core.NewVec3(0, 0, -7), 1, glass),
	}
	tree := NewOctree(surfaces)

	ray := core.NewBoundedRay(core.Vec3{}, core.NewVec3(0, 0, -1), core.MinTrace, 20)
	occluded, transmittance := tree.Occluded(&ray, nil)
	if occluded {
		t.Fatal("glass spheres must not fully occlude")
	}

	expected := glass.Tint.Mul(glass.Tint)
	if math.Abs(transmittance.R-expected.R) > 1e-12 ||
		math.Abs(transmittance.G-expected.G) > 1e-12 ||
		math.Abs(transmittance.B-expected.B) > 1e-12 {
		t.Errorf("transmittance %v, expected %v", transmittance, expected)
	}
}
