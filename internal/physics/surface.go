package physics

import (
	"sort"
	"strings"
)

// Surface names a ground material the ball can land on.
type Surface string

const (
	SurfaceFairway     Surface = "fairway"
	SurfaceFairwaySoft Surface = "fairway_soft"
	SurfaceRough       Surface = "rough"
	SurfaceFirm        Surface = "firm"
)

// SurfaceParams are the ground contact coefficients for one surface.
type SurfaceParams struct {
	KineticFriction float64 `json:"kinetic_friction"`
	RollingFriction float64 `json:"rolling_friction"`
	GrassViscosity  float64 `json:"grass_viscosity"`
	CriticalAngle   float64 `json:"critical_angle"` // radians
}

// Tuned so a driver (150-167 mph, 11-12°, 2600-2800 rpm) rolls 30-40 yd on
// fairway. Firm runs out further, soft less, and rough checks up within a
// few yards. Critical angles rise with softness.
var surfaceTable = map[Surface]SurfaceParams{
	SurfaceFairway:     {KineticFriction: 0.50, RollingFriction: 0.050, GrassViscosity: 0.0032, CriticalAngle: 0.13},
	SurfaceFairwaySoft: {KineticFriction: 0.55, RollingFriction: 0.080, GrassViscosity: 0.0055, CriticalAngle: 0.17},
	SurfaceRough:       {KineticFriction: 0.65, RollingFriction: 0.140, GrassViscosity: 0.0140, CriticalAngle: 0.25},
	SurfaceFirm:        {KineticFriction: 0.40, RollingFriction: 0.035, GrassViscosity: 0.0025, CriticalAngle: 0.10},
}

// SurfaceFor returns the contact coefficients for s. Unknown surfaces get fairway values.
func SurfaceFor(s Surface) SurfaceParams {
	if p, ok := surfaceTable[s]; ok {
		return p
	}
	return surfaceTable[SurfaceFairway]
}

// ParseSurface accepts loose spellings such as "FairwaySoft" or "fairway-soft".
// Unrecognised names map to fairway.
func ParseSurface(name string) Surface {
	key := strings.ToLower(strings.TrimSpace(name))
	key = strings.NewReplacer("-", "", "_", "", " ", "").Replace(key)
	switch key {
	case "fairwaysoft", "soft":
		return SurfaceFairwaySoft
	case "rough":
		return SurfaceRough
	case "firm", "hardpan":
		return SurfaceFirm
	default:
		return SurfaceFairway
	}
}

// Surfaces lists every known surface in name order.
func Surfaces() []Surface {
	out := make([]Surface, 0, len(surfaceTable))
	for s := range surfaceTable {
		out = append(out, s)
	}
	sort.Slice(out, func(i, j int) bool { return out[i] < out[j] })
	return out
}
