package lights

import (
	"math"

	"github.com/arpelle/glint/pkg/core"
)

// EnvMap is a latitude/longitude environment map. Row v=0 is the zenith
// (+Y); u wraps the azimuth.
type EnvMap struct {
	Width, Height int
	texels        []core.Color
}

// NewEnvMap creates an environment map from row-major texels
func NewEnvMap(width, height int, texels []core.Color) *EnvMap {
	return &EnvMap{Width: width, Height: height, texels: texels}
}

// NewSolidEnvMap creates a single-texel map with constant radiance
func NewSolidEnvMap(c core.Color) *EnvMap {
	return &EnvMap{Width: 1, Height: 1, texels: []core.Color{c}}
}

// At returns the texel at integer coordinates
func (m *EnvMap) At(x, y int) core.Color {
	return m.texels[y*m.Width+x]
}

// dirToUV maps a unit direction to lat/long coordinates in [0,1)²
func dirToUV(dir core.Vec3) (u, v float64) {
	theta := math.Acos(math.Max(-1, math.Min(1, dir.Y)))
	phi := math.Atan2(-dir.Z, dir.X)
	if phi < 0 {
		phi += 2 * math.Pi
	}
	return phi / (2 * math.Pi), theta / math.Pi
}

// uvToDir maps lat/long coordinates back to a unit direction
func uvToDir(u, v float64) core.Vec3 {
	theta := v * math.Pi
	phi := u * 2 * math.Pi
	sinTheta := math.Sin(theta)
	return core.NewVec3(
		sinTheta*math.Cos(phi),
		math.Cos(theta),
		-sinTheta*math.Sin(phi),
	)
}

// Lookup returns the radiance of the texel the direction maps to
func (m *EnvMap) Lookup(dir core.Vec3) core.Color {
	u, v := dirToUV(dir)
	x := int(u * float64(m.Width))
	if x >= m.Width {
		x = m.Width - 1
	}
	y := int(v * float64(m.Height))
	if y >= m.Height {
		y = m.Height - 1
	}
	return m.At(x, y)
}
