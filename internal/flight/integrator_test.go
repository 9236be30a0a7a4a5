package flight

import (
	"math"
	"testing"

	"github.com/go-gl/mathgl/mgl64"

	"github.com/openrange/backend/internal/physics"
)

func TestRestIsAbsorbing(t *testing.T) {
	p := params(t, physics.SurfaceFairway)
	s := BallState{Position: mgl64.Vec3{120, 0, 3}, Phase: physics.PhaseRest, OnGround: true}

	var in Integrator
	for i := 0; i < 10; i++ {
		next, rep := in.Step(s, p)
		if next != s {
			t.Fatalf("rest state changed on step %d: %+v", i, next)
		}
		if rep != (StepReport{}) {
			t.Fatalf("rest step reported activity: %+v", rep)
		}
	}
}

func TestRollingBallComesToRest(t *testing.T) {
	p := params(t, physics.SurfaceFairway)
	s := BallState{
		Velocity: mgl64.Vec3{2, 0, 0},
		Omega:    mgl64.Vec3{0, 0, -2 / physics.BallRadius},
		Phase:    physics.PhaseRollout,
		OnGround: true,
	}
	in := Integrator{}
	for i := 0; i < 240*10 && !s.AtRest(); i++ {
		s, _ = in.Step(s, p)
	}
	if !s.AtRest() {
		t.Fatalf("ball still rolling after 10s: v=%v w=%v", s.Velocity, s.Omega)
	}
	if s.Velocity != (mgl64.Vec3{}) || s.Omega != (mgl64.Vec3{}) {
		t.Errorf("rest must zero motion: v=%v w=%v", s.Velocity, s.Omega)
	}
	if s.Position.X() <= 0 || s.Position.Y() != 0 {
		t.Errorf("ball should have rolled forward on the surface, got %v", s.Position)
	}
}

func TestFirstImpactCapturesSpinWhenEnabled(t *testing.T) {
	p := params(t, physics.SurfaceFairway)
	falling := BallState{
		Position: mgl64.Vec3{0, 0.01, 0},
		Velocity: mgl64.Vec3{15, -12, 0},
		Omega:    mgl64.Vec3{0, 0, 300},
		Phase:    physics.PhaseFlight,
	}

	off, rep := Integrator{}.Step(falling, p)
	if !rep.Impact || !rep.FirstImpact {
		t.Fatalf("expected first impact, got %+v", rep)
	}
	if off.ImpactSpin != 0 {
		t.Errorf("spin memory off should not capture spin, got %.1f", off.ImpactSpin)
	}
	if off.Phase != physics.PhaseRollout {
		t.Errorf("expected ROLLOUT after impact, got %s", off.Phase)
	}

	on, _ := Integrator{SpinMemory: true}.Step(falling, p)
	if math.Abs(on.ImpactSpin-rep.ImpactSpin) > 1e-9 || on.ImpactSpin <= 0 {
		t.Errorf("expected captured spin %.1f, got %.1f", rep.ImpactSpin, on.ImpactSpin)
	}
	if on.Position.Y() != 0 {
		t.Errorf("ball should be clamped onto the surface, y=%.6f", on.Position.Y())
	}
	if on.Velocity.Y() >= off.Velocity.Y() {
		t.Errorf("spin memory should soften the first rebound: on=%.4f off=%.4f", on.Velocity.Y(), off.Velocity.Y())
	}
}

func TestFailSafeForcesRest(t *testing.T) {
	p := params(t, physics.SurfaceFairway)
	runaway := BallState{
		Position: mgl64.Vec3{999.9, 10, 0},
		Velocity: mgl64.Vec3{200, 0, 0},
		Phase:    physics.PhaseFlight,
	}
	s, rep := Integrator{}.Step(runaway, p)
	if !rep.FailSafe || s.Phase != physics.PhaseRest {
		t.Fatalf("expected fail-safe rest, got phase=%s rep=%+v", s.Phase, rep)
	}
	if s.Velocity != (mgl64.Vec3{}) || s.Omega != (mgl64.Vec3{}) {
		t.Errorf("fail-safe must zero motion")
	}

	broken := BallState{Position: mgl64.Vec3{0, 5, 0}, Velocity: mgl64.Vec3{math.NaN(), 0, 0}, Phase: physics.PhaseFlight}
	s, rep = Integrator{}.Step(broken, p)
	if !rep.FailSafe || !physics.IsFinite(s.Position) {
		t.Errorf("non-finite state should fail safe to a finite rest, got %+v", s)
	}
}

func TestGroundedBallStaysOnSurface(t *testing.T) {
	p := params(t, physics.SurfaceRough)
	s := BallState{Velocity: mgl64.Vec3{6, 0, 1}, Phase: physics.PhaseRollout, OnGround: true}
	in := Integrator{}
	for i := 0; i < 120; i++ {
		var rep StepReport
		s, rep = in.Step(s, p)
		if rep.Impact {
			t.Fatalf("grounded ball should not re-bounce at step %d", i)
		}
		if s.Position.Y() != 0 || s.Velocity.Y() != 0 {
			t.Fatalf("ball left the surface at step %d: pos=%v vel=%v", i, s.Position, s.Velocity)
		}
	}
}
