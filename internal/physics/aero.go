package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ReynoldsNumber for the ball moving at speed through air of the given density and viscosity.
func ReynoldsNumber(speed, density, viscosity float64) float64 {
	if viscosity <= 0 {
		return 0
	}
	return density * math.Abs(speed) * 2 * BallRadius / viscosity
}

// dragCubic is the fitted drag curve through the drag crisis. Only valid on
// [ReDragCubicLow, ReDragCubicHigh]; it turns negative shortly above that.
func dragCubic(re float64) float64 {
	return 1.1948 - 0.0000209661*re + 1.42472e-10*re*re - 3.14383e-16*re*re*re
}

// DragCoefficient returns Cd for a Reynolds number. The laminar and
// supercritical plateaus are joined to the cubic fit with linear blends so
// the curve is continuous everywhere.
func DragCoefficient(re float64) float64 {
	switch {
	case re <= ReDragLow:
		return CdLow
	case re < ReDragCubicLow:
		t := (re - ReDragLow) / (ReDragCubicLow - ReDragLow)
		return lerp(CdLow, dragCubic(ReDragCubicLow), t)
	case re <= ReDragCubicHigh:
		return dragCubic(re)
	case re < ReDragHigh:
		t := (re - ReDragCubicHigh) / (ReDragHigh - ReDragCubicHigh)
		return lerp(dragCubic(ReDragCubicHigh), CdHigh, t)
	default:
		return CdHigh
	}
}

// LiftCoefficient returns Cl for a Reynolds number and spin ratio S = ωR/|v|.
func LiftCoefficient(re, spinRatio float64) float64 {
	if spinRatio < 0 || !finite(spinRatio) {
		spinRatio = 0
	}
	high := math.Min(1.3*spinRatio+0.05, ClMax)
	switch {
	case re <= ReLiftLow:
		return ClLow
	case re >= ReLiftHigh:
		return high
	default:
		t := (re - ReLiftLow) / (ReLiftHigh - ReLiftLow)
		return lerp(ClLow, high, mgl64.Clamp(t, 0, 1))
	}
}
