package flight

import (
	"fmt"
	"math"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/openrange/backend/internal/launch"
	"github.com/openrange/backend/internal/physics"
)

// Options controls a simulation run.
type Options struct {
	Timestep       float64 `json:"timestep"`
	MaxTime        float64 `json:"max_time"`
	RestSpeed      float64 `json:"rest_speed"`
	SpinMemory     bool    `json:"spin_memory"`
	SampleInterval float64 `json:"sample_interval"` // trajectory sample spacing, 0 disables sampling
	Ground         Ground  `json:"-"`
}

// DefaultOptions runs at 240 Hz for up to 60 s with spin memory on and a
// trajectory sample every 1/30 s.
func DefaultOptions() Options {
	return Options{
		Timestep:       DefaultTimestep,
		MaxTime:        DefaultMaxTime,
		RestSpeed:      DefaultRestSpeed,
		SpinMemory:     true,
		SampleInterval: 1.0 / 30,
	}
}

// Event records a notable moment of a run.
type Event struct {
	Type     string     `json:"type"` // "launch", "impact", "bounce", "rest", "fail_safe", "timeout"
	Time     float64    `json:"time"`
	Position mgl64.Vec3 `json:"position"`
	Speed    float64    `json:"speed"`
	Spin     float64    `json:"spin"` // rpm
}

// Sample is one trajectory point.
type Sample struct {
	T float64 `json:"t"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// Simulator runs one shot. It is not safe for concurrent use; run separate
// simulators for parallel shots.
type Simulator struct {
	State      BallState
	Params     physics.Params
	Events     []Event
	Trajectory []Sample

	integrator Integrator
	opts       Options
	origin     mgl64.Vec3
	heading    mgl64.Vec3
	right      mgl64.Vec3

	time       float64
	steps      int
	maxSteps   int
	nextSample float64
	apex       float64
	landed     bool
	landing    mgl64.Vec3
	landTime   float64
	landAngle  float64
	landSpin   float64
	bounces    int
	failSafe   bool
}

// NewSimulator validates the shot and prepares a run from the origin.
func NewSimulator(shot launch.Shot, p physics.Params, opts Options) (*Simulator, error) {
	if err := shot.Validate(); err != nil {
		return nil, err
	}
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if opts.Timestep <= 0 {
		opts.Timestep = DefaultTimestep
	}
	if opts.MaxTime <= 0 {
		opts.MaxTime = DefaultMaxTime
	}
	if opts.Ground == nil {
		opts.Ground = FlatGround{}
	}

	start := NewBallState(mgl64.Vec3{}, shot.Velocity(), shot.AngularVelocity())
	sim := &Simulator{
		State:  start,
		Params: p,
		Events: make([]Event, 0, 8),
		integrator: Integrator{
			Timestep:   opts.Timestep,
			Ground:     opts.Ground,
			RestSpeed:  opts.RestSpeed,
			SpinMemory: opts.SpinMemory,
		},
		opts:     opts,
		origin:   start.Position,
		heading:  shot.Heading(),
		right:    shot.Right(),
		maxSteps: int(math.Round(opts.MaxTime / opts.Timestep)),
	}
	sim.record("launch", start.Velocity.Len())
	sim.sample()
	return sim, nil
}

// Run simulates shot to completion. An empty shot returns the zero Result
// together with launch.ErrEmptyShot.
func Run(shot launch.Shot, p physics.Params, opts Options) (Result, error) {
	sim, err := NewSimulator(shot, p, opts)
	if err != nil {
		return Result{}, err
	}
	return sim.Simulate(), nil
}

// Reinject swaps in new environment and surface parameters from the next step
// on. Spin captured at impact is kept.
func (sim *Simulator) Reinject(p physics.Params) error {
	if err := p.Validate(); err != nil {
		return fmt.Errorf("reinject: %w", err)
	}
	sim.Params = p
	return nil
}

// Time returns the simulated time elapsed.
func (sim *Simulator) Time() float64 {
	return sim.time
}

// Done reports whether the ball has settled or the time cap has been reached.
func (sim *Simulator) Done() bool {
	return sim.State.AtRest() || sim.steps >= sim.maxSteps
}

// Simulate steps until Done and returns the result.
func (sim *Simulator) Simulate() Result {
	for !sim.Done() {
		sim.Step()
	}
	return sim.Result()
}

// Step advances one fixed timestep and updates the run statistics.
func (sim *Simulator) Step() StepReport {
	if sim.Done() {
		return StepReport{}
	}
	before := sim.State
	next, rep := sim.integrator.Step(sim.State, sim.Params)
	sim.State = next
	sim.steps++
	sim.time = float64(sim.steps) * sim.opts.Timestep

	if next.Position.Y() > sim.apex {
		sim.apex = next.Position.Y()
	}
	if rep.Impact {
		sim.bounces++
		if rep.FirstImpact {
			sim.landed = true
			sim.landing = next.Position
			sim.landTime = sim.time
			sim.landSpin = rep.ImpactSpin
			sim.landAngle = descentAngle(before.Velocity, next.Position, sim.opts.Ground)
			sim.record("impact", rep.ImpactSpeed)
		} else {
			sim.record("bounce", rep.ImpactSpeed)
		}
	}
	switch {
	case rep.FailSafe:
		sim.failSafe = true
		sim.record("fail_safe", 0)
	case rep.CameToRest:
		sim.record("rest", 0)
	case sim.steps >= sim.maxSteps:
		sim.record("timeout", next.Velocity.Len())
	}

	if sim.opts.SampleInterval > 0 && (sim.time+1e-9 >= sim.nextSample || sim.Done()) {
		sim.sample()
	}
	return rep
}

func (sim *Simulator) record(kind string, speed float64) {
	sim.Events = append(sim.Events, Event{
		Type:     kind,
		Time:     sim.time,
		Position: sim.State.Position,
		Speed:    speed,
		Spin:     physics.RPM(sim.State.Omega),
	})
}

func (sim *Simulator) sample() {
	if sim.opts.SampleInterval <= 0 {
		return
	}
	p := sim.State.Position
	sim.Trajectory = append(sim.Trajectory, Sample{T: sim.time, X: p.X(), Y: p.Y(), Z: p.Z()})
	sim.nextSample = sim.time + sim.opts.SampleInterval
}

// descentAngle is the angle in degrees between the incoming velocity and the
// surface.
func descentAngle(v, pos mgl64.Vec3, ground Ground) float64 {
	speed := v.Len()
	if speed == 0 {
		return 0
	}
	_, n := ground.Contact(pos)
	return mgl64.RadToDeg(math.Asin(mgl64.Clamp(math.Abs(v.Dot(n))/speed, 0, 1)))
}
