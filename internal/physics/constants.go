package physics

import "math"

// Ball and contact constants for a regulation golf ball. All values are SI.

const (
	BallMass    = 0.04593  // kg
	BallRadius  = 0.021335 // m
	BallArea    = math.Pi * BallRadius * BallRadius
	BallInertia = 0.4 * BallMass * BallRadius * BallRadius
	Gravity     = 9.81

	RadPerSecPerRPM = 2 * math.Pi / 60

	SpinDecayTau  = 3.0 // s, airborne spin decay time constant
	MinAeroSpeed  = 0.5 // m/s, below this no aerodynamic force is applied
	MinMagnusSpin = 0.1 // rad/s

	CdLow  = 0.5
	CdHigh = 0.2
	ClLow  = 0.1
	ClMax  = 0.45

	// Reynolds bands for the drag and lift fits.
	ReDragLow       = 40000.0
	ReDragCubicLow  = 50000.0
	ReDragCubicHigh = 200000.0
	ReDragHigh      = 250000.0
	ReLiftLow       = 50000.0
	ReLiftHigh      = 75000.0

	RollingSlipSpeed   = 0.05 // m/s, contact-point speed below which the ball rolls
	FrictionBlendSpeed = 15.0 // m/s, speed at which friction reaches the kinetic value

	// GrassDragSpeed is the speed-independent part of grass drag, expressed as
	// an equivalent ground speed. It lets a rolling ball stop in finite time.
	GrassDragSpeed = 4.0 // m/s

	FlightRetention      = 0.55
	RetentionSpinCap     = 8000.0 // rpm
	MinRetentionFactor   = 0.4
	RolloutRetentionHigh = 0.85
	RolloutRetentionLow  = 0.70
	RolloutSpinRatioCap  = 0.2
	MinTangentSpeed      = 0.01 // m/s

	CORMinSpeed            = 2.0  // m/s
	CORMaxSpeed            = 20.0 // m/s
	CORHighSpeed           = 0.25
	RolloutBounceMinNormal = 4.0 // m/s
)

const epsilon = 1e-9
