package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// BounceResult is the ball state immediately after a ground impact.
type BounceResult struct {
	Velocity mgl64.Vec3 `json:"velocity"`
	Omega    mgl64.Vec3 `json:"omega"`
	Phase    Phase      `json:"phase"`
}

// ResolveBounce converts an incoming velocity and spin at impact with a floor
// of unit normal n into the outgoing state. Any bounce leaves the ball in
// rollout.
func ResolveBounce(v, w, n mgl64.Vec3, phase Phase, p Params) BounceResult {
	vn := v.Dot(n)
	vT := v.Sub(n.Mul(vn))
	wN := n.Mul(w.Dot(n))
	wT := w.Sub(wN)

	speed := v.Len()
	tangentSpeed := vT.Len()
	rpm := RPM(w)

	impactAngle := 0.0
	if speed > 0 {
		impactAngle = math.Asin(mgl64.Clamp(math.Abs(vn)/speed, 0, 1))
	}

	retention := TangentialRetention(phase, rpm, w.Len(), speed)

	var newTangentSpeed float64
	switch {
	case tangentSpeed < MinTangentSpeed:
		newTangentSpeed = 0
	case phase == PhaseFlight && impactAngle >= p.CriticalAngle:
		newTangentSpeed = PennerTangentSpeed(retention, speed, impactAngle, p.CriticalAngle, wT.Len())
	default:
		newTangentSpeed = tangentSpeed * retention
	}
	newTangentSpeed = mgl64.Clamp(newTangentSpeed, 0, tangentSpeed)

	tangentDir := SafeNormalize(vT)
	newVT := tangentDir.Mul(newTangentSpeed)

	newWT := wT
	if tangentSpeed >= epsilon {
		axis := SafeNormalize(n.Cross(tangentDir))
		if phase == PhaseFlight {
			newWT = axis.Mul(math.Min(newTangentSpeed/BallRadius, wT.Len()))
		} else {
			newWT = axis.Mul(wT.Len())
		}
	}

	cor := RestitutionCoefficient(math.Abs(vn))
	if phase == PhaseFlight {
		if p.RolloutImpactSpin > 0 {
			cor *= 1 - CORSpinReduction(rpm)
		}
	} else if math.Abs(vn) < RolloutBounceMinNormal {
		cor = 0
	} else {
		cor /= 2
	}

	return BounceResult{
		Velocity: newVT.Add(n.Mul(-cor * vn)),
		Omega:    newWT.Add(wN),
		Phase:    PhaseRollout,
	}
}

// TangentialRetention is the fraction of tangential speed kept by a bounce.
// In flight it falls with spin; in rollout it falls with the spin ratio.
func TangentialRetention(phase Phase, rpm, spin, speed float64) float64 {
	if phase == PhaseFlight {
		return FlightRetention * mgl64.Clamp(1-rpm/RetentionSpinCap, MinRetentionFactor, 1)
	}
	ratio := 0.0
	if speed > 0 {
		ratio = spin * BallRadius / speed
	}
	if ratio >= RolloutSpinRatioCap {
		return RolloutRetentionLow
	}
	return lerp(RolloutRetentionHigh, RolloutRetentionLow, ratio/RolloutSpinRatioCap)
}

// PennerTangentSpeed is the steep-impact tangential speed model. The raw value
// goes negative for heavy backspin; callers clamp it.
func PennerTangentSpeed(retention, speed, impactAngle, criticalAngle, tangentSpin float64) float64 {
	return retention*speed*math.Sin(impactAngle-criticalAngle) - 2*BallRadius*tangentSpin/7
}

// RestitutionCoefficient is the speed dependent coefficient of restitution
// for a normal impact speed vn (m/s).
func RestitutionCoefficient(vn float64) float64 {
	switch {
	case vn < CORMinSpeed:
		return 0
	case vn > CORMaxSpeed:
		return CORHighSpeed
	default:
		return 0.45 - 0.01*vn + 0.0002*vn*vn
	}
}

// CORSpinReduction is the fractional restitution loss for a first bounce with
// the given spin when spin memory is enabled.
func CORSpinReduction(rpm float64) float64 {
	if rpm < 1500 {
		return 0.3 * rpm / 1500
	}
	return 0.3 + 0.4*mgl64.Clamp((rpm-1500)/1500, 0, 1)
}
