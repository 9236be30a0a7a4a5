package physics

import (
	"math"
	"testing"
)

func TestEnvironmentSeaLevelStandard(t *testing.T) {
	rho, mu := EnvironmentParams(0, 15, UnitsMetric)
	if math.Abs(rho-1.225) > 1e-3 {
		t.Errorf("density: expected 1.225, got %.5f", rho)
	}
	if math.Abs(mu-1.789e-5) > 1e-8 {
		t.Errorf("viscosity: expected 1.789e-5, got %.4e", mu)
	}
}

func TestEnvironmentImperialMatchesMetric(t *testing.T) {
	rhoI, muI := EnvironmentParams(0, 59, UnitsImperial)
	rhoM, muM := EnvironmentParams(0, 15, UnitsMetric)
	if math.Abs(rhoI-rhoM) > 1e-9 || math.Abs(muI-muM) > 1e-15 {
		t.Errorf("imperial (%.6f, %.4e) != metric (%.6f, %.4e)", rhoI, muI, rhoM, muM)
	}

	rhoHigh, _ := EnvironmentParams(5280, 59, UnitsImperial)
	rhoHighM, _ := EnvironmentParams(1609.344, 15, UnitsMetric)
	if math.Abs(rhoHigh-rhoHighM) > 1e-9 {
		t.Errorf("one mile altitude mismatch: %.6f vs %.6f", rhoHigh, rhoHighM)
	}
}

func TestEnvironmentThinnerAirAtAltitude(t *testing.T) {
	sea, _ := EnvironmentParams(0, 70, UnitsImperial)
	denver, _ := EnvironmentParams(5280, 70, UnitsImperial)
	if denver >= sea {
		t.Errorf("density at altitude should drop: sea=%.4f denver=%.4f", sea, denver)
	}
	cold, _ := EnvironmentParams(0, 30, UnitsImperial)
	hot, _ := EnvironmentParams(0, 100, UnitsImperial)
	if hot >= cold {
		t.Errorf("warmer air should be thinner: cold=%.4f hot=%.4f", cold, hot)
	}
}

func TestEnvironmentClampsExtremes(t *testing.T) {
	inputs := [][2]float64{
		{1e9, 1e9},
		{-1e9, -1e9},
		{math.NaN(), math.Inf(1)},
	}
	for _, in := range inputs {
		for _, u := range []Units{UnitsMetric, UnitsImperial} {
			rho, mu := EnvironmentParams(in[0], in[1], u)
			if !finite(rho) || !finite(mu) || rho <= 0 || mu <= 0 {
				t.Errorf("non-physical output for %v %s: rho=%v mu=%v", in, u, rho, mu)
			}
		}
	}
}

func TestParseUnits(t *testing.T) {
	if ParseUnits("Metric") != UnitsMetric {
		t.Errorf("expected metric")
	}
	if ParseUnits("furlongs") != UnitsImperial {
		t.Errorf("unknown units should be imperial")
	}
}
