package physics

// Phase is the lifecycle state of a simulated ball.
type Phase string

const (
	PhaseRest    Phase = "REST"
	PhaseFlight  Phase = "FLIGHT"
	PhaseRollout Phase = "ROLLOUT"
)
