package launch

import (
	"errors"
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/openrange/backend/internal/physics"
)

var (
	ErrEmptyShot   = errors.New("empty launch: ball speed is zero")
	ErrInvalidShot = errors.New("invalid launch")
)

// SpeedUnit is the unit of Shot.Speed.
type SpeedUnit string

const (
	SpeedMPH SpeedUnit = "mph"
	SpeedMPS SpeedUnit = "mps"
)

const metresPerSecondPerMPH = 0.44704

// Shot is the launch monitor payload. Angles are degrees; spins are rpm.
// Spin may be given as back/side, total/axis, or any mix; nil means "not
// provided" and Reconcile fills it from the others.
type Shot struct {
	Speed     float64   `json:"Speed"`
	SpeedUnit SpeedUnit `json:"SpeedUnit,omitempty"`
	VLA       float64   `json:"VLA"`
	HLA       float64   `json:"HLA"`
	BackSpin  *float64  `json:"BackSpin,omitempty"`
	SideSpin  *float64  `json:"SideSpin,omitempty"`
	TotalSpin *float64  `json:"TotalSpin,omitempty"`
	SpinAxis  *float64  `json:"SpinAxis,omitempty"`
}

// Spin is a fully reconciled spin description.
type Spin struct {
	Back  float64 `json:"back_spin"`
	Side  float64 `json:"side_spin"`
	Total float64 `json:"total_spin"`
	Axis  float64 `json:"spin_axis"` // degrees, positive tilts right
}

// Float returns a pointer to v, for building shots in code.
func Float(v float64) *float64 {
	return &v
}

// IsEmpty reports whether the shot carries no ball speed.
func (s Shot) IsEmpty() bool {
	return s.Speed == 0
}

// Validate returns ErrEmptyShot for a zero-speed payload and a wrapped
// ErrInvalidShot for values that cannot describe a launch.
func (s Shot) Validate() error {
	for name, v := range map[string]float64{"Speed": s.Speed, "VLA": s.VLA, "HLA": s.HLA} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidShot, name)
		}
	}
	for name, v := range map[string]*float64{
		"BackSpin": s.BackSpin, "SideSpin": s.SideSpin, "TotalSpin": s.TotalSpin, "SpinAxis": s.SpinAxis,
	} {
		if v != nil && (math.IsNaN(*v) || math.IsInf(*v, 0)) {
			return fmt.Errorf("%w: %s is not a number", ErrInvalidShot, name)
		}
	}
	switch s.SpeedUnit {
	case "", SpeedMPH, SpeedMPS:
	default:
		return fmt.Errorf("%w: unknown speed unit %q", ErrInvalidShot, s.SpeedUnit)
	}
	if s.Speed < 0 {
		return fmt.Errorf("%w: negative speed %v", ErrInvalidShot, s.Speed)
	}
	if s.IsEmpty() {
		return ErrEmptyShot
	}
	if math.Abs(s.VLA) > 90 {
		return fmt.Errorf("%w: VLA %v outside [-90, 90]", ErrInvalidShot, s.VLA)
	}
	if math.Abs(s.HLA) > 90 {
		return fmt.Errorf("%w: HLA %v outside [-90, 90]", ErrInvalidShot, s.HLA)
	}
	if s.TotalSpin != nil && *s.TotalSpin < 0 {
		return fmt.Errorf("%w: negative TotalSpin %v", ErrInvalidShot, *s.TotalSpin)
	}
	if s.TotalSpin != nil && s.SpinAxis == nil {
		// Reconcile derives the missing component from the total.
		if s.BackSpin != nil && s.SideSpin == nil && math.Abs(*s.BackSpin) > *s.TotalSpin {
			return fmt.Errorf("%w: BackSpin %v exceeds TotalSpin %v", ErrInvalidShot, *s.BackSpin, *s.TotalSpin)
		}
		if s.SideSpin != nil && s.BackSpin == nil && math.Abs(*s.SideSpin) > *s.TotalSpin {
			return fmt.Errorf("%w: SideSpin %v exceeds TotalSpin %v", ErrInvalidShot, *s.SideSpin, *s.TotalSpin)
		}
	}
	return nil
}

// SpeedMPS returns the ball speed in metres per second.
func (s Shot) SpeedMPS() float64 {
	if s.SpeedUnit == SpeedMPS {
		return s.Speed
	}
	return s.Speed * metresPerSecondPerMPH
}

// Reconcile returns a copy with every spin field populated. Provided fields
// are never overwritten. A component derived from the total alone carries no
// sign: side spin from back+total is never negative and curves right, so a
// draw needs SideSpin or SpinAxis. Validate rejects a component larger than
// the total.
func (s Shot) Reconcile() Shot {
	out := s
	back, side, total, axis := s.BackSpin, s.SideSpin, s.TotalSpin, s.SpinAxis

	switch {
	case back != nil && side != nil:
	case total != nil && axis != nil:
		a := mgl64.DegToRad(*axis)
		back, side = fill(back, *total*math.Cos(a)), fill(side, *total*math.Sin(a))
	case back != nil && total != nil:
		side = Float(math.Sqrt(math.Max(*total**total-*back**back, 0)))
	case side != nil && total != nil:
		back = Float(math.Sqrt(math.Max(*total**total-*side**side, 0)))
	case back != nil && axis != nil:
		a := mgl64.DegToRad(*axis)
		if math.Abs(math.Cos(a)) > 1e-9 {
			side = Float(*back * math.Tan(a))
		} else {
			side = Float(0)
		}
	case side != nil && axis != nil:
		a := mgl64.DegToRad(*axis)
		if math.Abs(math.Sin(a)) > 1e-9 {
			back = Float(*side / math.Tan(a))
		} else {
			back = Float(0)
		}
	case total != nil:
		back, side = Float(*total), Float(0)
	default:
		back, side = fill(back, 0), fill(side, 0)
	}

	out.BackSpin, out.SideSpin = back, side
	out.TotalSpin = fill(total, math.Hypot(*back, *side))
	out.SpinAxis = fill(axis, mgl64.RadToDeg(math.Atan2(*side, *back)))
	return out
}

func fill(v *float64, fallback float64) *float64 {
	if v != nil {
		return v
	}
	return Float(fallback)
}

// Spin returns the reconciled spin of the shot.
func (s Shot) Spin() Spin {
	r := s.Reconcile()
	return Spin{Back: *r.BackSpin, Side: *r.SideSpin, Total: *r.TotalSpin, Axis: *r.SpinAxis}
}

// Heading is the unit horizontal direction of the launch.
func (s Shot) Heading() mgl64.Vec3 {
	h := mgl64.DegToRad(s.HLA)
	return mgl64.Vec3{math.Cos(h), 0, math.Sin(h)}
}

// Right is the unit horizontal direction perpendicular to Heading, to the
// golfer's right.
func (s Shot) Right() mgl64.Vec3 {
	h := mgl64.DegToRad(s.HLA)
	return mgl64.Vec3{-math.Sin(h), 0, math.Cos(h)}
}

// Velocity is the launch velocity vector in m/s.
func (s Shot) Velocity() mgl64.Vec3 {
	v, h := mgl64.DegToRad(s.VLA), mgl64.DegToRad(s.HLA)
	dir := mgl64.Vec3{math.Cos(v) * math.Cos(h), math.Sin(v), math.Cos(v) * math.Sin(h)}
	return dir.Mul(s.SpeedMPS())
}

// AngularVelocity is the launch spin vector in rad/s. Backspin turns about
// the horizontal axis perpendicular to the heading; positive side spin turns
// about -Y and curves the ball right.
func (s Shot) AngularVelocity() mgl64.Vec3 {
	spin := s.Spin()
	back := s.Right().Mul(spin.Back * physics.RadPerSecPerRPM)
	side := mgl64.Vec3{0, -spin.Side * physics.RadPerSecPerRPM, 0}
	return back.Add(side)
}
