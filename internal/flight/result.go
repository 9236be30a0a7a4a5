package flight

import (
	"github.com/go-gl/mathgl/mgl64"

	"github.com/openrange/backend/internal/launch"
	"github.com/openrange/backend/internal/physics"
)

// Result summarises a finished run. Distances are metres measured along the
// initial horizontal launch direction; Lateral is positive to the right.
type Result struct {
	Carry        float64       `json:"carry"`
	Total        float64       `json:"total"`
	Lateral      float64       `json:"lateral"`
	CarryLateral float64       `json:"carry_lateral"`
	Apex         float64       `json:"apex"`
	FlightTime   float64       `json:"flight_time"`
	SettleTime   float64       `json:"settle_time"`
	LandingAngle float64       `json:"landing_angle"`
	LandingSpin  float64       `json:"landing_spin"`
	Bounces      int           `json:"bounces"`
	FinalPhase   physics.Phase `json:"final_phase"`
	FinalPos     mgl64.Vec3    `json:"final_position"`
	FailSafe     bool          `json:"fail_safe"`
	TimedOut     bool          `json:"timed_out"`
	Trajectory   []Sample      `json:"trajectory,omitempty"`
	Events       []Event       `json:"events,omitempty"`
}

// Summary is a Result expressed in a display unit.
type Summary struct {
	Unit    launch.LengthUnit `json:"unit"`
	Carry   float64           `json:"carry"`
	Total   float64           `json:"total"`
	Rollout float64           `json:"rollout"`
	Lateral float64           `json:"lateral"`
	Apex    float64           `json:"apex"`
}

// Result reports the statistics so far. Before the first impact carry tracks
// the current position.
func (sim *Simulator) Result() Result {
	final := sim.State.Position.Sub(sim.origin)
	landing := final
	flightTime := sim.time
	if sim.landed {
		landing = sim.landing.Sub(sim.origin)
		flightTime = sim.landTime
	}
	return Result{
		Carry:        landing.Dot(sim.heading),
		Total:        final.Dot(sim.heading),
		Lateral:      final.Dot(sim.right),
		CarryLateral: landing.Dot(sim.right),
		Apex:         sim.apex,
		FlightTime:   flightTime,
		SettleTime:   sim.time,
		LandingAngle: sim.landAngle,
		LandingSpin:  sim.landSpin,
		Bounces:      sim.bounces,
		FinalPhase:   sim.State.Phase,
		FinalPos:     sim.State.Position,
		FailSafe:     sim.failSafe,
		TimedOut:     !sim.State.AtRest(),
		Trajectory:   sim.Trajectory,
		Events:       sim.Events,
	}
}

// Summary converts the headline distances to u.
func (r Result) Summary(u launch.LengthUnit) Summary {
	conv := func(m float64) float64 { return launch.FromMetres(m, u) }
	return Summary{
		Unit:    u,
		Carry:   conv(r.Carry),
		Total:   conv(r.Total),
		Rollout: conv(r.Total - r.Carry),
		Lateral: conv(r.Lateral),
		Apex:    conv(r.Apex),
	}
}
