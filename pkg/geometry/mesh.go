package geometry

import (
	"fmt"
	"math"
	"sync/atomic"

	"github.com/arpelle/glint/log"
	"github.com/arpelle/glint/pkg/core"
)

var logger = log.New("geometry")

// Monotonic mesh identities for the smoothing-group shadow policy
var meshIDCounter uint64

// Mesh is a triangle-mesh surface aggregate. Vertex positions, optional
// per-vertex normals and triangle index triples are stored in parallel
// arrays; each triangle may carry its own material. If any vertex has an
// explicit normal, all vertices carry normals (missing ones are computed
// on demand when the mesh is decomposed for rendering).
type Mesh struct {
	vertices   []core.Vec3
	normals    []core.Vec3
	tris       []meshTri
	mat        core.Material
	leftHanded bool
	smoothID   uint64
	prims      []core.Surface
}

type meshTri struct {
	v   [3]int32
	mat core.Material // nil means the mesh default
}

// NewMesh creates an empty mesh with a default material
func NewMesh(mat core.Material) *Mesh {
	return &Mesh{
		mat:      mat,
		smoothID: atomic.AddUint64(&meshIDCounter, 1),
	}
}

// SetLeftHanded flips the winding convention used to derive face normals
func (m *Mesh) SetLeftHanded(leftHanded bool) {
	m.leftHanded = leftHanded
}

// LeftHanded reports the mesh's winding convention
func (m *Mesh) LeftHanded() bool {
	return m.leftHanded
}

// SmoothGroup returns the mesh's smoothing identity tag. Triangles of the
// same mesh never cast back-face shadows onto each other.
func (m *Mesh) SmoothGroup() uint64 {
	return m.smoothID
}

// VertexCount returns the number of vertices
func (m *Mesh) VertexCount() int {
	return len(m.vertices)
}

// TriangleCount returns the number of triangles
func (m *Mesh) TriangleCount() int {
	return len(m.tris)
}

// AddVertex appends a vertex position and returns its index
func (m *Mesh) AddVertex(p core.Vec3) int {
	m.vertices = append(m.vertices, p)
	return len(m.vertices) - 1
}

// AddVertexNormal appends a vertex with an explicit shading normal
func (m *Mesh) AddVertexNormal(p, n core.Vec3) int {
	idx := m.AddVertex(p)
	// Grow the normal array to cover every vertex so far; earlier
	// vertices without explicit normals get filled in at finalize time
	for len(m.normals) < len(m.vertices) {
		m.normals = append(m.normals, core.Vec3{})
	}
	m.normals[idx] = n.Normalize()
	return idx
}

// AddTriangle appends a triangle referencing three vertex indices, with an
// optional per-triangle material (nil uses the mesh default). Degenerate
// triangles are filtered with a warning, never an error.
func (m *Mesh) AddTriangle(i0, i1, i2 int, mat core.Material) {
	if i0 < 0 || i1 < 0 || i2 < 0 ||
		i0 >= len(m.vertices) || i1 >= len(m.vertices) || i2 >= len(m.vertices) {
		logger.Warningf("mesh %d: triangle references missing vertex (%d,%d,%d), dropped", m.smoothID, i0, i1, i2)
		return
	}
	v0, v1, v2 := m.vertices[i0], m.vertices[i1], m.vertices[i2]
	if !v0.IsFinite() || !v1.IsFinite() || !v2.IsFinite() {
		logger.Warningf("mesh %d: triangle with non-finite vertex, dropped", m.smoothID)
		return
	}
	if v1.Subtract(v0).Cross(v2.Subtract(v0)).LengthSquared() == 0 {
		logger.Warningf("mesh %d: zero-area triangle, dropped", m.smoothID)
		return
	}
	m.tris = append(m.tris, meshTri{v: [3]int32{int32(i0), int32(i1), int32(i2)}, mat: mat})
}

// Material returns the mesh default material
func (m *Mesh) Material() core.Material {
	return m.mat
}

// Bounds returns the union of vertex bounds
func (m *Mesh) Bounds() core.AABB {
	return core.NewAABBFromPoints(m.vertices...)
}

// faceNormal returns the unnormalized face normal of triangle i, honoring
// the mesh handedness
func (m *Mesh) faceNormal(i int) core.Vec3 {
	tri := m.tris[i]
	v0 := m.vertices[tri.v[0]]
	e1 := m.vertices[tri.v[1]].Subtract(v0)
	e2 := m.vertices[tri.v[2]].Subtract(v0)
	n := e1.Cross(e2)
	if m.leftHanded {
		n = n.Negate()
	}
	return n
}

// ComputeVertexNormals smooths the mesh by grouping the faces around each
// vertex. A face joins the first group whose running average normal is
// within maxAngle of the face normal; otherwise a new group is opened and
// the vertex is duplicated, rewriting the face's index to the new vertex.
// A face normal anti-parallel to an existing group normal is a fatal
// orientation mismatch.
func (m *Mesh) ComputeVertexNormals(maxAngle float64) error {
	cosMax := math.Cos(maxAngle)

	type group struct {
		vertex int32
		sum    core.Vec3
	}
	groups := make([][]group, len(m.vertices))

	for ti := range m.tris {
		fn := m.faceNormal(ti).Normalize()
		for c := 0; c < 3; c++ {
			orig := m.tris[ti].v[c]
			vgroups := groups[orig]

			assigned := false
			for gi := range vgroups {
				avg := vgroups[gi].sum.Normalize()
				d := avg.Dot(fn)
				if d < -0.9999 {
					return fmt.Errorf("mesh %d: face orientation mismatch while smoothing at vertex %d", m.smoothID, orig)
				}
				if d >= cosMax {
					vgroups[gi].sum = vgroups[gi].sum.Add(fn)
					m.tris[ti].v[c] = vgroups[gi].vertex
					assigned = true
					break
				}
			}
			if assigned {
				continue
			}

			target := orig
			if len(vgroups) > 0 {
				// Open a new group on a duplicated vertex so the two
				// normal sets do not bleed into each other
				target = int32(m.AddVertex(m.vertices[orig]))
				m.tris[ti].v[c] = target
			}
			groups[orig] = append(groups[orig], group{vertex: target, sum: fn})
		}
	}

	// Normals cover every vertex, including duplicates
	m.normals = make([]core.Vec3, len(m.vertices))
	for _, vgroups := range groups {
		for _, g := range vgroups {
			m.normals[g.vertex] = g.sum.Normalize()
		}
	}
	return nil
}

// fillMissingNormals backfills zero normals with the average of incident
// face normals, keeping the all-or-nothing invariant
func (m *Mesh) fillMissingNormals() {
	if len(m.normals) == 0 {
		return
	}
	for len(m.normals) < len(m.vertices) {
		m.normals = append(m.normals, core.Vec3{})
	}
	sums := make([]core.Vec3, len(m.vertices))
	for ti := range m.tris {
		fn := m.faceNormal(ti).Normalize()
		for c := 0; c < 3; c++ {
			sums[m.tris[ti].v[c]] = sums[m.tris[ti].v[c]].Add(fn)
		}
	}
	for i := range m.normals {
		if m.normals[i].LengthSquared() == 0 {
			m.normals[i] = sums[i].Normalize()
		}
	}
}

// Primitives decomposes the mesh into one surface per triangle for
// insertion into the acceleration structure
func (m *Mesh) Primitives() []core.Surface {
	if m.prims == nil {
		m.fillMissingNormals()
		m.prims = make([]core.Surface, len(m.tris))
		for i := range m.tris {
			m.prims[i] = &meshTriangle{mesh: m, index: i}
		}
	}
	return m.prims
}

// meshTriangle is one triangle of a mesh, viewed as a surface
type meshTriangle struct {
	mesh  *Mesh
	index int
}

// Bounds returns the triangle's bounding box
func (t *meshTriangle) Bounds() core.AABB {
	tri := t.mesh.tris[t.index]
	return core.NewAABBFromPoints(
		t.mesh.vertices[tri.v[0]],
		t.mesh.vertices[tri.v[1]],
		t.mesh.vertices[tri.v[2]],
	)
}

// Material returns the triangle's material, falling back to the mesh default
func (t *meshTriangle) Material() core.Material {
	if mat := t.mesh.tris[t.index].mat; mat != nil {
		return mat
	}
	return t.mesh.mat
}

const triEpsilon = 1e-9

// hit runs the Möller-Trumbore test, returning barycentric (u,v) and the
// ray parameter
func (t *meshTriangle) hit(ray *core.Ray) (u, v, tHit float64, ok bool) {
	tri := t.mesh.tris[t.index]
	v0 := t.mesh.vertices[tri.v[0]]
	edge1 := t.mesh.vertices[tri.v[1]].Subtract(v0)
	edge2 := t.mesh.vertices[tri.v[2]].Subtract(v0)

	h := ray.Direction.Cross(edge2)
	a := edge1.Dot(h)
	if a > -triEpsilon && a < triEpsilon {
		return 0, 0, 0, false // ray parallel to the triangle plane
	}

	f := 1.0 / a
	s := ray.Origin.Subtract(v0)
	u = f * s.Dot(h)
	if u < 0.0 || u > 1.0 {
		return 0, 0, 0, false
	}

	q := s.Cross(edge1)
	v = f * ray.Direction.Dot(q)
	if v < 0.0 || u+v > 1.0 {
		return 0, 0, 0, false
	}

	tHit = f * edge2.Dot(q)
	if !ray.Contains(tHit) {
		return 0, 0, 0, false
	}
	return u, v, tHit, true
}

// Intersect implements core.Surface
func (t *meshTriangle) Intersect(ray *core.Ray, isec *core.Intersection) bool {
	u, v, tHit, ok := t.hit(ray)
	if !ok {
		return false
	}

	ray.T1 = tHit

	m := t.mesh
	tri := m.tris[t.index]
	point := ray.At(tHit)
	wo := ray.Direction.Normalize().Negate()

	faceNormal := m.faceNormal(t.index).Normalize()
	back := ray.Direction.Dot(faceNormal) > 0
	geomNormal := faceNormal
	if back {
		geomNormal = geomNormal.Negate()
	}

	shadingNormal := geomNormal
	if len(m.normals) > 0 {
		// Barycentric blend of the vertex normals
		n0 := m.normals[tri.v[0]]
		n1 := m.normals[tri.v[1]]
		n2 := m.normals[tri.v[2]]
		blended := n0.Multiply(1 - u - v).Add(n1.Multiply(u)).Add(n2.Multiply(v)).Normalize()
		if back {
			blended = blended.Negate()
		}
		if blended.Dot(wo) <= 0 {
			// Terminator artifact: interpolation pushed the shading
			// normal past the silhouette. Clamp it perpendicular to the
			// view direction and nudge it back toward the viewer so
			// downstream cosines keep a stable sign.
			blended = blended.Subtract(wo.Multiply(blended.Dot(wo)))
			blended = blended.Add(wo.Multiply(1e-4)).Normalize()
		}
		shadingNormal = blended
	}

	isec.Point = point
	isec.GeomNormal = geomNormal
	isec.Normal = shadingNormal
	isec.Wo = wo
	isec.UV = core.NewVec2(u, v)
	isec.T = tHit
	isec.Back = back
	isec.Frame = core.NewFrame(point, shadingNormal)
	isec.Surface = t
	isec.Material = t.Material()
	isec.SmoothGroup = m.smoothID
	return true
}

// IntersectShadow implements core.Surface. Within a smoothing group, a
// candidate occluder whose sidedness disagrees with the originating face is
// a false self-shadow and is discarded.
func (t *meshTriangle) IntersectShadow(ray *core.Ray, origin *core.Intersection) core.Shadow {
	mat := t.Material()
	kind := mat.ShadowKind()
	if kind == core.ShadowNone {
		return core.Shadow{Kind: core.ShadowNone}
	}

	_, _, _, ok := t.hit(ray)
	if !ok {
		return core.Shadow{Kind: core.ShadowNone}
	}

	if origin != nil && origin.SmoothGroup != 0 && origin.SmoothGroup == t.mesh.smoothID {
		faceNormal := t.mesh.faceNormal(t.index)
		occluderBack := ray.Direction.Dot(faceNormal) > 0
		if occluderBack != origin.Back {
			return core.Shadow{Kind: core.ShadowNone}
		}
	}

	if kind == core.ShadowPartial {
		attenuation := core.White
		if tr, ok := mat.(core.Transmitter); ok {
			attenuation = tr.Transmittance()
		}
		return core.Shadow{Kind: core.ShadowPartial, Attenuation: attenuation}
	}
	return core.Shadow{Kind: core.ShadowOpaque}
}
