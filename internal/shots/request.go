package shots

import (
	"crypto/rand"
	"encoding/hex"
	"fmt"
	"time"

	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/flight"
	"github.com/openrange/backend/internal/launch"
	"github.com/openrange/backend/internal/physics"
)

// Request is one shot plus optional per-shot overrides of the course
// conditions. Omitted overrides use the server's current conditions.
type Request struct {
	Shot        launch.Shot `json:"shot"`
	Surface     string      `json:"surface,omitempty"`
	Altitude    *float64    `json:"altitude,omitempty"`
	Temperature *float64    `json:"temperature,omitempty"`
	Units       string      `json:"units,omitempty"`
	SpinMemory  *bool       `json:"spin_memory,omitempty"`
	Unit        string      `json:"unit,omitempty"`       // distance unit of the summary
	Trajectory  bool        `json:"trajectory,omitempty"` // include samples in the response
}

// Plan is a request resolved against the server conditions: everything needed
// to run the shot deterministically.
type Plan struct {
	Shot        launch.Shot         `json:"shot"`
	Surface     physics.Surface     `json:"surface"`
	Environment physics.Environment `json:"environment"`
	Params      physics.Params      `json:"params"`
	Options     flight.Options      `json:"options"`
	Unit        launch.LengthUnit   `json:"unit"`
}

// Resolve validates the shot and fills overrides from cond.
func (r Request) Resolve(cond config.Conditions) (Plan, error) {
	if err := r.Shot.Validate(); err != nil {
		return Plan{}, err
	}

	env := physics.Environment{
		Altitude:    cond.Altitude,
		Temperature: cond.Temperature,
		Units:       physics.ParseUnits(cond.EnvUnits),
		DragScale:   cond.DragScale,
		LiftScale:   cond.LiftScale,
	}
	if r.Units != "" {
		env.Units = physics.ParseUnits(r.Units)
	}
	if r.Altitude != nil {
		env.Altitude = *r.Altitude
	}
	if r.Temperature != nil {
		env.Temperature = *r.Temperature
	}

	surfaceName := cond.DefaultSurface
	if r.Surface != "" {
		surfaceName = r.Surface
	}
	surface := physics.ParseSurface(surfaceName)

	params, err := physics.NewParams(env, surface)
	if err != nil {
		return Plan{}, err
	}

	opts := OptionsFor(cond)
	if r.SpinMemory != nil {
		opts.SpinMemory = *r.SpinMemory
	}

	unitName := cond.DistanceUnit
	if r.Unit != "" {
		unitName = r.Unit
	}

	return Plan{
		Shot:        r.Shot.Reconcile(),
		Surface:     surface,
		Environment: env,
		Params:      params,
		Options:     opts,
		Unit:        launch.ParseLengthUnit(unitName),
	}, nil
}

// OptionsFor converts the simulation settings into flight options.
func OptionsFor(cond config.Conditions) flight.Options {
	opts := flight.DefaultOptions()
	if cond.TimestepHz > 0 {
		opts.Timestep = 1 / float64(cond.TimestepHz)
	}
	if cond.MaxSimSeconds > 0 {
		opts.MaxTime = cond.MaxSimSeconds
	}
	if cond.RestSpeed > 0 {
		opts.RestSpeed = cond.RestSpeed
	}
	if cond.SampleHz > 0 {
		opts.SampleInterval = 1 / float64(cond.SampleHz)
	}
	opts.SpinMemory = cond.SpinMemory
	return opts
}

// Outcome is a simulated shot as returned to clients.
type Outcome struct {
	ShotToken   string              `json:"shot_token,omitempty"`
	Surface     physics.Surface     `json:"surface"`
	Environment physics.Environment `json:"environment"`
	Spin        launch.Spin         `json:"spin"`
	Summary     flight.Summary      `json:"summary"`
	Result      flight.Result       `json:"result"`
	Cached      bool                `json:"cached"`
}

// Execute runs the plan. It performs no I/O.
func (p Plan) Execute() (Outcome, time.Duration, error) {
	start := time.Now()
	res, err := flight.Run(p.Shot, p.Params, p.Options)
	if err != nil {
		return Outcome{}, 0, err
	}
	return Outcome{
		Surface:     p.Surface,
		Environment: p.Environment,
		Spin:        p.Shot.Spin(),
		Summary:     res.Summary(p.Unit),
		Result:      res,
	}, time.Since(start), nil
}

// WithoutTrajectory drops the bulky per-sample data.
func (o Outcome) WithoutTrajectory() Outcome {
	o.Result.Trajectory = nil
	return o
}

// NewToken returns a random identifier such as "s_3f9a0c1d2e4b5a69".
func NewToken(prefix string) string {
	b := make([]byte, 8)
	if _, err := rand.Read(b); err != nil {
		return fmt.Sprintf("%s_%d", prefix, time.Now().UnixNano())
	}
	return prefix + "_" + hex.EncodeToString(b)
}
