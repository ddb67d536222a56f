// Package sampler provides stratified per-pixel sample generation.
//
// Integrators request named channels up front; each channel is a sequence of
// n one- or two-dimensional values stratified across the n draws. Channels
// are regenerated per pixel from a seed keyed by (channel fingerprint,
// pixel_x, pixel_y), so sample values depend only on the pixel and never on
// worker count or scheduling order.
package sampler

import (
	"hash/fnv"
	"math"
	"math/rand"

	"github.com/arpelle/glint/pkg/core"
)

// Channel is a handle to a requested sample channel
type Channel struct {
	index int
}

type channelDef struct {
	fingerprint uint64
	n           int
	dims        int
}

// Sampler generates stratified sample values for one pixel at a time.
// Each worker owns its own sampler; they share nothing.
type Sampler struct {
	seed   uint64
	defs   []channelDef
	values [][]float64
	frozen bool
	rng    *rand.Rand // per-pixel stream for unreserved draws
}

// New creates a sampler with the given base seed
func New(seed uint64) *Sampler {
	return &Sampler{seed: seed, rng: rand.New(rand.NewSource(int64(seed)))}
}

// Request1D reserves a channel of n stratified 1D values. All requests must
// happen before the first GeneratePixel call.
func (s *Sampler) Request1D(label string, n int) Channel {
	return s.request(label, n, 1)
}

// Request2D reserves a channel of n stratified 2D values
func (s *Sampler) Request2D(label string, n int) Channel {
	return s.request(label, n, 2)
}

func (s *Sampler) request(label string, n, dims int) Channel {
	if s.frozen {
		panic("sampler: channel requested after generation started")
	}
	if n < 1 {
		n = 1
	}
	s.defs = append(s.defs, channelDef{
		fingerprint: fingerprint(label, len(s.defs)),
		n:           n,
		dims:        dims,
	})
	s.values = append(s.values, make([]float64, n*dims))
	return Channel{index: len(s.defs) - 1}
}

// GeneratePixel regenerates every channel for the given pixel. The values
// are a pure function of (base seed, channel, x, y).
func (s *Sampler) GeneratePixel(x, y int) {
	s.frozen = true
	for i, def := range s.defs {
		rng := rand.New(rand.NewSource(int64(mix(s.seed^def.fingerprint, uint64(x), uint64(y)))))
		if def.dims == 1 {
			generate1D(s.values[i], def.n, rng)
		} else {
			generate2D(s.values[i], def.n, rng)
		}
	}
	// Unreserved draws get their own pixel-keyed stream
	s.rng = rand.New(rand.NewSource(int64(mix(s.seed^0x9d8a7c6b5e4f3d2c, uint64(x), uint64(y)))))
}

// Get1D returns draw i of a 1D channel
func (s *Sampler) Get1D(ch Channel, i int) float64 {
	def := s.defs[ch.index]
	return s.values[ch.index][i%def.n]
}

// Get2D returns draw i of a 2D channel
func (s *Sampler) Get2D(ch Channel, i int) core.Vec2 {
	def := s.defs[ch.index]
	j := (i % def.n) * 2
	vals := s.values[ch.index]
	return core.NewVec2(vals[j], vals[j+1])
}

// Uniform1D draws from the pixel's unreserved stream. Used where the
// stratified budget is exhausted, e.g. Russian roulette beyond the minimum
// path length.
func (s *Sampler) Uniform1D() float64 {
	return s.rng.Float64()
}

// Uniform2D draws a 2D value from the pixel's unreserved stream
func (s *Sampler) Uniform2D() core.Vec2 {
	return core.NewVec2(s.rng.Float64(), s.rng.Float64())
}

// generate1D fills out with n jittered strata of [0,1), shuffled
func generate1D(out []float64, n int, rng *rand.Rand) {
	inv := 1.0 / float64(n)
	for i := 0; i < n; i++ {
		out[i] = (float64(i) + rng.Float64()) * inv
	}
	rng.Shuffle(n, func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
}

// generate2D fills out with n jittered cells of a near-square grid covering
// [0,1)², shuffled. When n does not factor into a full grid, the grid is
// rounded up and a shuffled subset of cells is used.
func generate2D(out []float64, n int, rng *rand.Rand) {
	nx := int(math.Sqrt(float64(n)))
	if nx < 1 {
		nx = 1
	}
	ny := (n + nx - 1) / nx

	cells := make([]int, nx*ny)
	for i := range cells {
		cells[i] = i
	}
	rng.Shuffle(len(cells), func(i, j int) {
		cells[i], cells[j] = cells[j], cells[i]
	})

	invX := 1.0 / float64(nx)
	invY := 1.0 / float64(ny)
	for i := 0; i < n; i++ {
		cell := cells[i]
		cx := cell % nx
		cy := cell / nx
		out[i*2] = (float64(cx) + rng.Float64()) * invX
		out[i*2+1] = (float64(cy) + rng.Float64()) * invY
	}
}

// fingerprint hashes a channel label and request ordinal into a 64-bit tag
func fingerprint(label string, ordinal int) uint64 {
	h := fnv.New64a()
	h.Write([]byte(label))
	h.Write([]byte{byte(ordinal), byte(ordinal >> 8)})
	return h.Sum64()
}

// mix combines a seed with pixel coordinates using splitmix64 steps
func mix(seed, x, y uint64) uint64 {
	z := seed
	z = splitmix(z + 0x9e3779b97f4a7c15*(x+1))
	z = splitmix(z + 0x9e3779b97f4a7c15*(y+1))
	return z
}

func splitmix(z uint64) uint64 {
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}
