package main

import (
	"math"
	"strings"
	"testing"

	"github.com/openrange/backend/internal/config"
	"github.com/openrange/backend/internal/flight"
	"github.com/openrange/backend/internal/launch"
	"github.com/openrange/backend/internal/shots"
)

func TestProfileResamplesByDistance(t *testing.T) {
	samples := []flight.Sample{
		{X: 0, Y: 0},
		{X: 10, Y: 10},
		{X: 20, Y: 0},
	}
	got := profile(samples, 5)
	want := []float64{0, 5, 10, 5, 0}
	if len(got) != len(want) {
		t.Fatalf("got %d points, want %d", len(got), len(want))
	}
	for i := range want {
		if math.Abs(got[i]-want[i]) > 1e-9 {
			t.Errorf("profile[%d] = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestProfileDegenerate(t *testing.T) {
	if profile(nil, 10) != nil {
		t.Error("no samples should give no profile")
	}
	if profile([]flight.Sample{{X: 0}, {X: 0}}, 10) != nil {
		t.Error("zero distance should give no profile")
	}
}

func TestRenderDrive(t *testing.T) {
	plan, err := shots.Request{
		Shot: launch.Shot{Speed: 100, VLA: 22, TotalSpin: launch.Float(6000)},
		Unit: "meters",
	}.Resolve(testConditions())
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	out, _, err := plan.Execute()
	if err != nil {
		t.Fatalf("Execute: %v", err)
	}

	summary := renderSummary(1, out)
	for _, want := range []string{"Shot 1", "Carry", "Total", "m"} {
		if !strings.Contains(summary, want) {
			t.Errorf("summary missing %q:\n%s", want, summary)
		}
	}
	if plot := renderPlot(out); !strings.Contains(plot, "downrange") {
		t.Errorf("plot missing caption:\n%s", plot)
	}
}

func testConditions() config.Conditions {
	return config.Conditions{
		Temperature:    59,
		EnvUnits:       "imperial",
		DefaultSurface: "fairway",
		DistanceUnit:   "yards",
		TimestepHz:     240,
		MaxSimSeconds:  60,
		RestSpeed:      0.05,
		SpinMemory:     true,
		SampleHz:       30,
	}
}
