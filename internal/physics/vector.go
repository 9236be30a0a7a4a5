package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Up is the world vertical. The target line is +X and +Z points right of it.
var Up = mgl64.Vec3{0, 1, 0}

// SafeNormalize returns the unit vector of v, or the zero vector when v has no usable direction.
func SafeNormalize(v mgl64.Vec3) mgl64.Vec3 {
	l := v.Len()
	if l < epsilon {
		return mgl64.Vec3{}
	}
	return v.Mul(1 / l)
}

// ProjectOnPlane removes the component of v along the unit normal n.
func ProjectOnPlane(v, n mgl64.Vec3) mgl64.Vec3 {
	return v.Sub(n.Mul(v.Dot(n)))
}

// IsFinite reports whether every component of v is a real number.
func IsFinite(v mgl64.Vec3) bool {
	for _, c := range v {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return false
		}
	}
	return true
}

// RPM converts an angular velocity vector to its magnitude in revolutions per minute.
func RPM(w mgl64.Vec3) float64 {
	return w.Len() / RadPerSecPerRPM
}

func lerp(a, b, t float64) float64 {
	return a + (b-a)*t
}

func finite(x float64) bool {
	return !math.IsNaN(x) && !math.IsInf(x, 0)
}
