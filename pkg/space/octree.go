// Package space provides the spatial acceleration structure used to answer
// ray queries against scene geometry.
package space

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// Subdivision stops at this depth regardless of occupancy
const maxDepth = 24

// Octree is a spatial hierarchy built by recursive midpoint subdivision of
// a cubic root volume. A surface lives at the deepest node whose volume
// wholly contains its bounding box, so no surface is ever duplicated across
// cells. The tree is built once and is read-only during rendering.
type Octree struct {
	root  *node
	count int
}

type node struct {
	bounds   core.AABB
	center   core.Vec3
	surfaces []core.Surface
	children [8]*node
}

// NewOctree builds an octree over the given surfaces. Aggregate surfaces
// are decomposed into their primitives before insertion.
func NewOctree(surfaces []core.Surface) *Octree {
	prims := flatten(surfaces)

	o := &Octree{}
	if len(prims) == 0 {
		return o
	}

	// Root volume: cube around the scene bounds, grown slightly so
	// surfaces on the boundary are strictly contained
	bounds := core.EmptyAABB()
	for _, s := range prims {
		bounds = bounds.Union(s.Bounds())
	}
	center := bounds.Center()
	size := bounds.Size()
	half := math.Max(size.X, math.Max(size.Y, size.Z)) * 0.5 * 1.01
	if half == 0 {
		half = 1e-3
	}
	cube := core.NewAABB(
		center.Subtract(core.NewVec3(half, half, half)),
		center.Add(core.NewVec3(half, half, half)),
	)

	o.root = &node{bounds: cube, center: center}
	for _, s := range prims {
		o.root.insert(s, s.Bounds(), 0)
		o.count++
	}
	return o
}

// flatten expands aggregates into primitives
func flatten(surfaces []core.Surface) []core.Surface {
	prims := make([]core.Surface, 0, len(surfaces))
	for _, s := range surfaces {
		if agg, ok := s.(core.Aggregate); ok {
			prims = append(prims, agg.Primitives()...)
		} else {
			prims = append(prims, s)
		}
	}
	return prims
}

// Count returns the number of inserted primitives
func (o *Octree) Count() int {
	return o.count
}

// insert descends to the deepest node whose volume wholly contains bounds
func (n *node) insert(s core.Surface, bounds core.AABB, depth int) {
	if depth < maxDepth {
		if idx, ok := n.childFor(bounds); ok {
			if n.children[idx] == nil {
				n.children[idx] = &node{
					bounds: n.childBounds(idx),
					center: n.childBounds(idx).Center(),
				}
			}
			n.children[idx].insert(s, bounds, depth+1)
			return
		}
	}
	n.surfaces = append(n.surfaces, s)
}

// childFor returns the octant index that wholly contains bounds, if any.
// Octant bit layout: 1 = +X half, 2 = +Y half, 4 = +Z half.
func (n *node) childFor(bounds core.AABB) (int, bool) {
	idx := 0
	switch {
	case bounds.Min.X >= n.center.X:
		idx |= 1
	case bounds.Max.X <= n.center.X:
	default:
		return 0, false // straddles the X midplane
	}
	switch {
	case bounds.Min.Y >= n.center.Y:
		idx |= 2
	case bounds.Max.Y <= n.center.Y:
	default:
		return 0, false
	}
	switch {
	case bounds.Min.Z >= n.center.Z:
		idx |= 4
	case bounds.Max.Z <= n.center.Z:
	default:
		return 0, false
	}
	return idx, true
}

func (n *node) childBounds(idx int) core.AABB {
	min := n.bounds.Min
	max := n.bounds.Max
	if idx&1 != 0 {
		min.X = n.center.X
	} else {
		max.X = n.center.X
	}
	if idx&2 != 0 {
		min.Y = n.center.Y
	} else {
		max.Y = n.center.Y
	}
	if idx&4 != 0 {
		min.Z = n.center.Z
	} else {
		max.Z = n.center.Z
	}
	return core.NewAABB(min, max)
}

// Intersect finds the closest hit within the ray's interval, narrowing
// ray.T1 as closer hits are found. Returns false when nothing intersects;
// a miss is a distinct value, never an error.
func (o *Octree) Intersect(ray *core.Ray, isec *core.Intersection) bool {
	if o.root == nil {
		return false
	}
	return o.root.intersect(ray, isec, dirMask(ray.Direction))
}

func (n *node) intersect(ray *core.Ray, isec *core.Intersection, mask int) bool {
	// Prune nodes the ray enters beyond the current best hit
	tEntry, ok := n.bounds.HitRange(*ray)
	if !ok || tEntry >= ray.T1 {
		return false
	}

	hit := false
	for _, s := range n.surfaces {
		if s.Intersect(ray, isec) {
			hit = true
		}
	}

	// Children in front-to-back order: XOR with the direction sign mask
	// visits octants nearest the ray origin first, so a hit in a nearer
	// child shortens ray.T1 before farther children are tested.
	for i := 0; i < 8; i++ {
		child := n.children[i^mask]
		if child != nil && child.intersect(ray, isec, mask) {
			hit = true
		}
	}
	return hit
}

// dirMask encodes the ray direction signs: a set bit flips the child visit
// order along that axis so traversal runs front to back
func dirMask(dir core.Vec3) int {
	mask := 0
	if dir.X < 0 {
		mask |= 1
	}
	if dir.Y < 0 {
		mask |= 2
	}
	if dir.Z < 0 {
		mask |= 4
	}
	return mask
}

// Occluded answers an any-hit occlusion query over the ray's interval.
// It short-circuits on an opaque hit; partially transmissive surfaces
// multiply into the running transmittance. Returns whether the ray is fully
// occluded, plus the residual transmittance when it is not.
func (o *Octree) Occluded(ray *core.Ray, origin *core.Intersection) (bool, core.Color) {
	transmittance := core.White
	if o.root == nil {
		return false, transmittance
	}
	occluded := o.root.occluded(ray, origin, &transmittance)
	return occluded, transmittance
}

func (n *node) occluded(ray *core.Ray, origin *core.Intersection, transmittance *core.Color) bool {
	if !n.bounds.Hit(*ray) {
		return false
	}

	for _, s := range n.surfaces {
		shadow := s.IntersectShadow(ray, origin)
		switch shadow.Kind {
		case core.ShadowOpaque:
			return true
		case core.ShadowPartial:
			*transmittance = transmittance.Mul(shadow.Attenuation)
		}
	}

	for _, child := range n.children {
		if child != nil && child.occluded(ray, origin, transmittance) {
			return true
		}
	}
	return false
}
