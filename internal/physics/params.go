package physics

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// ErrInvalidParams is returned when a Params value fails validation.
var ErrInvalidParams = errors.New("invalid physics params")

// Environment describes the conditions a shot is played in.
type Environment struct {
	Altitude    float64 `json:"altitude"`
	Temperature float64 `json:"temperature"`
	Units       Units   `json:"units"`
	DragScale   float64 `json:"drag_scale"`
	LiftScale   float64 `json:"lift_scale"`
}

// DefaultEnvironment is sea level at 59 °F with unscaled aerodynamics.
func DefaultEnvironment() Environment {
	return Environment{
		Altitude:    0,
		Temperature: 59,
		Units:       UnitsImperial,
		DragScale:   1.0,
		LiftScale:   1.0,
	}
}

// Params is the per-shot physics snapshot read by the force model and the
// bounce resolver. Build it with NewParams; the simulation never mutates the
// caller's copy.
type Params struct {
	AirDensity      float64    `json:"air_density"`
	AirViscosity    float64    `json:"air_viscosity"`
	DragScale       float64    `json:"drag_scale"`
	LiftScale       float64    `json:"lift_scale"`
	KineticFriction float64    `json:"kinetic_friction"`
	RollingFriction float64    `json:"rolling_friction"`
	GrassViscosity  float64    `json:"grass_viscosity"`
	CriticalAngle   float64    `json:"critical_angle"`
	FloorNormal     mgl64.Vec3 `json:"floor_normal"`

	// RolloutImpactSpin is the spin (rpm) captured at first ground contact.
	// Zero keeps the base bounce and friction behaviour.
	RolloutImpactSpin float64 `json:"rollout_impact_spin"`
}

// NewParams derives air properties from env, looks up the surface
// coefficients and validates the result. Zero scales default to 1.
func NewParams(env Environment, surface Surface) (Params, error) {
	if env.DragScale == 0 {
		env.DragScale = 1.0
	}
	if env.LiftScale == 0 {
		env.LiftScale = 1.0
	}
	density, viscosity := EnvironmentParams(env.Altitude, env.Temperature, env.Units)
	sp := SurfaceFor(surface)

	p := Params{
		AirDensity:      density,
		AirViscosity:    viscosity,
		DragScale:       env.DragScale,
		LiftScale:       env.LiftScale,
		KineticFriction: sp.KineticFriction,
		RollingFriction: sp.RollingFriction,
		GrassViscosity:  sp.GrassViscosity,
		CriticalAngle:   sp.CriticalAngle,
		FloorNormal:     Up,
	}
	if err := p.Validate(); err != nil {
		return Params{}, err
	}
	return p, nil
}

// Validate checks every field is finite and inside its physical range.
func (p Params) Validate() error {
	positive := map[string]float64{
		"air_density":   p.AirDensity,
		"air_viscosity": p.AirViscosity,
	}
	for name, v := range positive {
		if !finite(v) || v <= 0 {
			return fmt.Errorf("%w: %s must be positive, got %v", ErrInvalidParams, name, v)
		}
	}
	nonNegative := map[string]float64{
		"drag_scale":          p.DragScale,
		"lift_scale":          p.LiftScale,
		"kinetic_friction":    p.KineticFriction,
		"rolling_friction":    p.RollingFriction,
		"grass_viscosity":     p.GrassViscosity,
		"critical_angle":      p.CriticalAngle,
		"rollout_impact_spin": p.RolloutImpactSpin,
	}
	for name, v := range nonNegative {
		if !finite(v) || v < 0 {
			return fmt.Errorf("%w: %s must be non-negative, got %v", ErrInvalidParams, name, v)
		}
	}
	if p.CriticalAngle >= math.Pi/2 {
		return fmt.Errorf("%w: critical_angle must be below 90 degrees, got %v", ErrInvalidParams, p.CriticalAngle)
	}
	if !IsFinite(p.FloorNormal) || math.Abs(p.FloorNormal.Len()-1) > 1e-6 {
		return fmt.Errorf("%w: floor_normal must be a unit vector, got %v", ErrInvalidParams, p.FloorNormal)
	}
	return nil
}
