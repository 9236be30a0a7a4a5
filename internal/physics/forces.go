package physics

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// CalculateForces returns the net force (N) on the ball for its current
// velocity v and angular velocity w.
func CalculateForces(v, w mgl64.Vec3, onGround bool, p Params) mgl64.Vec3 {
	force := mgl64.Vec3{0, -Gravity * BallMass, 0}
	if onGround {
		n := p.FloorNormal
		flat := ProjectOnPlane(v, n)
		grass := flat.Add(SafeNormalize(flat).Mul(GrassDragSpeed)).Mul(-6 * math.Pi * BallRadius * p.GrassViscosity)
		return force.Add(grass).Add(frictionForce(v, w, p))
	}

	speed := v.Len()
	if speed < MinAeroSpeed {
		return force
	}
	re := ReynoldsNumber(speed, p.AirDensity, p.AirViscosity)
	q := 0.5 * p.AirDensity * BallArea * speed * speed

	drag := v.Mul(-DragCoefficient(re) * p.DragScale * q / speed)
	force = force.Add(drag)

	spin := w.Len()
	if spin > MinMagnusSpin {
		dir := w.Cross(v).Mul(1 / (spin * speed))
		cl := LiftCoefficient(re, spin*BallRadius/speed)
		force = force.Add(dir.Mul(cl * p.LiftScale * q))
	}
	return force
}

// CalculateTorques returns the net torque (N·m) on the ball. On the ground
// grass resists spin the same way it resists sliding, so a ball spinning in
// place also comes to rest.
func CalculateTorques(v, w mgl64.Vec3, onGround bool, p Params) mgl64.Vec3 {
	if !onGround {
		return w.Mul(-BallInertia / SpinDecayTau)
	}
	r := p.FloorNormal.Mul(-BallRadius)
	grassSpin := w.Add(SafeNormalize(w).Mul(GrassDragSpeed / BallRadius))
	grass := grassSpin.Mul(-8 * math.Pi * BallRadius * BallRadius * BallRadius * p.GrassViscosity)
	return grass.Add(r.Cross(frictionForce(v, w, p)))
}

// frictionForce picks the rolling or slipping regime from the velocity of the
// contact point and scales it by the spin multiplier.
func frictionForce(v, w mgl64.Vec3, p Params) mgl64.Vec3 {
	n := p.FloorNormal
	r := n.Mul(-BallRadius)
	contact := v.Add(w.Cross(r))
	slip := ProjectOnPlane(contact, n)
	weight := BallMass * Gravity * SpinFrictionMultiplier(RPM(w), p.RolloutImpactSpin)

	if slip.Len() < RollingSlipSpeed {
		flat := ProjectOnPlane(v, n)
		if flat.Len() < epsilon {
			return mgl64.Vec3{}
		}
		return SafeNormalize(flat).Mul(-p.RollingFriction * weight)
	}
	mu := lerp(p.RollingFriction, p.KineticFriction, mgl64.Clamp(v.Len()/FrictionBlendSpeed, 0, 1))
	return SafeNormalize(slip).Mul(-mu * weight)
}

// SpinFrictionMultiplier scales ground friction for balls that landed with
// spin. It is 1 unless impactRPM is positive; the larger of the current and
// impact spin is used.
func SpinFrictionMultiplier(currentRPM, impactRPM float64) float64 {
	if impactRPM <= 0 {
		return 1.0
	}
	rpm := math.Max(currentRPM, impactRPM)
	if rpm < 1000 {
		return lerp(1.0, 1.15, rpm/1000)
	}
	return lerp(1.15, 2.5, mgl64.Clamp((rpm-1000)/1500, 0, 1))
}
