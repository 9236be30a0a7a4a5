package flight

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/openrange/backend/internal/physics"
)

// BallState is the kinematic state of the ball between steps.
type BallState struct {
	Position mgl64.Vec3    `json:"position"`
	Velocity mgl64.Vec3    `json:"velocity"`
	Omega    mgl64.Vec3    `json:"omega"`
	Phase    physics.Phase `json:"phase"`
	OnGround bool          `json:"on_ground"`

	// ImpactSpin is the spin (rpm) recorded at first ground contact when
	// spin memory is on. Zero until then.
	ImpactSpin float64 `json:"impact_spin"`
}

// NewBallState returns an airborne ball at pos.
func NewBallState(pos, velocity, omega mgl64.Vec3) BallState {
	return BallState{
		Position: pos,
		Velocity: velocity,
		Omega:    omega,
		Phase:    physics.PhaseFlight,
	}
}

// AtRest reports whether the ball has settled.
func (s BallState) AtRest() bool {
	return s.Phase == physics.PhaseRest
}

func (s BallState) finite() bool {
	return physics.IsFinite(s.Position) && physics.IsFinite(s.Velocity) && physics.IsFinite(s.Omega)
}
