package core

import (
	"math"
	"testing"
)

func TestVec3_BasicOperations(t *testing.T) {
	a := NewVec3(1, 2, 3)
	b := NewVec3(4, 5, 6)

	if got := a.Add(b); got != NewVec3(5, 7, 9) {
		t.Errorf("Add: got %v", got)
	}
	if got := b.Subtract(a); got != NewVec3(3, 3, 3) {
		t.Errorf("Subtract: got %v", got)
	}
	if got := a.Dot(b); got != 32 {
		t.Errorf("Dot: got %f, expected 32", got)
	}
	if got := a.Cross(b); got != NewVec3(-3, 6, -3) {
		t.Errorf("Cross: got %v", got)
	}

	n := NewVec3(3, 4, 0).Normalize()
	if math.Abs(n.Length()-1) > 1e-12 {
		t.Errorf("Normalize: length %f, expected 1", n.Length())
	}
}

func TestVec3_Reflect(t *testing.T) {
	v := NewVec3(1, -1, 0).Normalize()
	n := NewVec3(0, 1, 0)
	r := v.Reflect(n)

	expected := NewVec3(1, 1, 0).Normalize()
	if r.Subtract(expected).Length() > 1e-12 {
		t.Errorf("Reflect: got %v, expected %v", r, expected)
	}
}

func TestVec3_Refract(t *testing.T) {
	// Normal incidence passes straight through
	v := NewVec3(0, -1, 0)
	n := NewVec3(0, 1, 0)
	r, ok := v.Refract(n, 1.0/1.5)
	if !ok {
		t.Fatal("normal incidence should refract")
	}
	if r.Subtract(v).Length() > 1e-9 {
		t.Errorf("normal incidence should be unchanged, got %v", r)
	}

	// Grazing exit from a dense medium totally reflects
	v = NewVec3(1, -0.1, 0).Normalize()
	if _, ok := v.Refract(n, 1.5); ok {
		t.Error("expected total internal reflection")
	}
}

func TestFrame_RoundTrip(t *testing.T) {
	normal := NewVec3(1, 2, -0.5).Normalize()
	frame := NewFrame(NewVec3(3, 1, 2), normal)

	// Basis must be orthonormal
	if math.Abs(frame.X.Dot(frame.Y)) > 1e-12 ||
		math.Abs(frame.Y.Dot(frame.Z)) > 1e-12 ||
		math.Abs(frame.X.Dot(frame.Z)) > 1e-12 {
		t.Error("frame axes are not orthogonal")
	}
	for _, axis := range []Vec3{frame.X, frame.Y, frame.Z} {
		if math.Abs(axis.Length()-1) > 1e-12 {
			t.Errorf("frame axis %v is not unit length", axis)
		}
	}

	v := NewVec3(0.3, -0.7, 0.6)
	roundTrip := frame.ToWorld(frame.ToLocal(v))
	if roundTrip.Subtract(v).Length() > 1e-12 {
		t.Errorf("ToWorld(ToLocal(v)) = %v, expected %v", roundTrip, v)
	}
}

func TestRay_IntervalNarrowing(t *testing.T) {
	ray := NewRay(Vec3{}, NewVec3(0, 0, -1))
	if !ray.Contains(5) {
		t.Error("unbounded ray should contain t=5")
	}

	ray.T1 = 3
	if ray.Contains(3) {
		t.Error("interval is half-open; T1 itself is excluded")
	}
	if !ray.Contains(2.9) {
		t.Error("t just inside T1 should be contained")
	}
	if ray.Contains(ray.T0 / 2) {
		t.Error("t below T0 should not be contained")
	}
}

func TestAABB_HitRange(t *testing.T) {
	box := NewAABB(NewVec3(-1, -1, -1), NewVec3(1, 1, 1))

	ray := NewRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1))
	entry, ok := box.HitRange(ray)
	if !ok {
		t.Fatal("ray aimed at box should hit")
	}
	if math.Abs(entry-4) > 1e-12 {
		t.Errorf("entry distance %f, expected 4", entry)
	}

	// Ray starting inside reports entry at its own T0
	inside := NewRay(Vec3{}, NewVec3(1, 0, 0))
	entry, ok = box.HitRange(inside)
	if !ok || entry != inside.T0 {
		t.Errorf("inside ray: entry %f ok=%v, expected T0", entry, ok)
	}

	// A narrowed interval prunes far boxes
	short := NewBoundedRay(NewVec3(0, 0, 5), NewVec3(0, 0, -1), 1e-4, 2)
	if _, ok := box.HitRange(short); ok {
		t.Error("box beyond the ray interval should miss")
	}
}

func TestColor_Arithmetic(t *testing.T) {
	c := NewColor(0.2, 0.4, 0.8)
	if got := c.Scale(2); got != NewColor(0.4, 0.8, 1.6) {
		t.Errorf("Scale: got %v", got)
	}
	if got := c.Mul(NewColor(0.5, 0.5, 0.5)); got != NewColor(0.1, 0.2, 0.4) {
		t.Errorf("Mul: got %v", got)
	}
	if NewColor(0, 0, 0).IsBlack() != true {
		t.Error("zero color should be black")
	}
	if NewColor(-1, 0.5, 2).ClampNonNegative().R != 0 {
		t.Error("negative channel should clamp to zero")
	}
}

func TestMediaStack_FloorClamp(t *testing.T) {
	stack := NewMediaStack()
	glass := &Medium{IOR: 1.5}

	if stack.Current() != &DefaultMedium {
		t.Error("fresh stack should sit in the default medium")
	}

	stack.Push(glass)
	if stack.Current() != glass {
		t.Error("push should enter the new medium")
	}
	if stack.Enclosing() != &DefaultMedium {
		t.Error("enclosing medium should be the default")
	}

	stack.Pop()
	stack.Pop() // malformed extra pop must be tolerated
	stack.Pop()
	if stack.Current() != &DefaultMedium || stack.Depth() != 1 {
		t.Error("stack must never pop below the floor element")
	}
}

func TestArena_Reuse(t *testing.T) {
	arena := NewArena()

	first := arena.AllocIntersection()
	first.T = 42
	for i := 0; i < 100; i++ {
		arena.AllocIntersection()
	}

	arena.Reset()
	again := arena.AllocIntersection()
	if again.T != 0 {
		t.Error("allocations must come back zeroed")
	}
}
