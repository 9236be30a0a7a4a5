package flight

import (
	"log"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/openrange/backend/internal/physics"
)

const (
	DefaultTimestep  = 1.0 / 240
	DefaultMaxTime   = 60.0 // s of simulated time
	DefaultRestSpeed = 0.05 // m/s
	DefaultRestSpin  = 0.5  // rad/s

	MaxHorizontalDistance = 1000.0 // m from the origin
	MinHeight             = -0.5   // m
)

// Integrator advances a BallState by one fixed step.
type Integrator struct {
	Timestep   float64
	Ground     Ground
	RestSpeed  float64
	RestSpin   float64
	SpinMemory bool
}

// StepReport describes what happened during a step.
type StepReport struct {
	Impact      bool    // the ball struck the ground this step
	FirstImpact bool    // the strike ended the flight phase
	ImpactSpeed float64 // speed just before the strike
	ImpactSpin  float64 // rpm just before the strike
	Rebound     bool    // the bounce left the ball airborne
	CameToRest  bool
	FailSafe    bool
}

func (in Integrator) timestep() float64 {
	if in.Timestep > 0 {
		return in.Timestep
	}
	return DefaultTimestep
}

func (in Integrator) ground() Ground {
	if in.Ground != nil {
		return in.Ground
	}
	return FlatGround{}
}

// Step integrates one semi-implicit Euler step: velocity and spin are updated
// from the current forces, then position from the new velocity. Ground
// contact, bounces, settling and the runaway guard are applied afterwards.
// A ball at rest is returned unchanged.
func (in Integrator) Step(s BallState, p physics.Params) (BallState, StepReport) {
	var rep StepReport
	if s.Phase == physics.PhaseRest {
		return s, rep
	}
	dt := in.timestep()
	ground := in.ground()
	if s.ImpactSpin > 0 {
		p.RolloutImpactSpin = s.ImpactSpin
	}

	_, p.FloorNormal = ground.Contact(s.Position)
	force := physics.CalculateForces(s.Velocity, s.Omega, s.OnGround, p)
	torque := physics.CalculateTorques(s.Velocity, s.Omega, s.OnGround, p)

	s.Velocity = s.Velocity.Add(force.Mul(dt / physics.BallMass))
	s.Omega = s.Omega.Add(torque.Mul(dt / physics.BallInertia))
	s.Position = s.Position.Add(s.Velocity.Mul(dt))

	height, n := ground.Contact(s.Position)
	p.FloorNormal = n
	if height <= 0 {
		s.Position = s.Position.Sub(n.Mul(height))
		if !s.OnGround && s.Velocity.Dot(n) < 0 {
			rep.Impact = true
			rep.ImpactSpeed = s.Velocity.Len()
			rep.ImpactSpin = physics.RPM(s.Omega)
			if s.Phase == physics.PhaseFlight {
				rep.FirstImpact = true
				if in.SpinMemory {
					s.ImpactSpin = rep.ImpactSpin
					p.RolloutImpactSpin = s.ImpactSpin
				}
			}
			b := physics.ResolveBounce(s.Velocity, s.Omega, n, s.Phase, p)
			s.Velocity, s.Omega, s.Phase = b.Velocity, b.Omega, b.Phase
			if s.Velocity.Dot(n) <= 0 {
				s.Velocity = physics.ProjectOnPlane(s.Velocity, n)
				s.OnGround = true
			} else {
				s.OnGround = false
				rep.Rebound = true
			}
		} else {
			if s.Velocity.Dot(n) < 0 {
				s.Velocity = physics.ProjectOnPlane(s.Velocity, n)
			}
			s.OnGround = true
		}
	}

	if !s.finite() || outOfBounds(s.Position) {
		log.Printf("[FLIGHT] Fail-safe: ball state out of range at %v, forcing rest", s.Position)
		rep.FailSafe = true
		return settle(s), rep
	}

	if s.OnGround && s.Velocity.Len() < in.restSpeed() && s.Omega.Len() < in.restSpin() {
		rep.CameToRest = true
		return settle(s), rep
	}
	return s, rep
}

func (in Integrator) restSpeed() float64 {
	if in.RestSpeed > 0 {
		return in.RestSpeed
	}
	return DefaultRestSpeed
}

func (in Integrator) restSpin() float64 {
	if in.RestSpin > 0 {
		return in.RestSpin
	}
	return DefaultRestSpin
}

func outOfBounds(pos mgl64.Vec3) bool {
	return math.Abs(pos.X()) > MaxHorizontalDistance ||
		math.Abs(pos.Z()) > MaxHorizontalDistance ||
		pos.Y() < MinHeight
}

func settle(s BallState) BallState {
	if !physics.IsFinite(s.Position) {
		s.Position = mgl64.Vec3{}
	}
	s.Velocity = mgl64.Vec3{}
	s.Omega = mgl64.Vec3{}
	s.Phase = physics.PhaseRest
	return s
}
