package physics

import (
	"math"
	"strings"

	"github.com/go-gl/mathgl/mgl64"
)

// Units selects how altitude and temperature are read.
type Units string

const (
	UnitsImperial Units = "imperial" // feet, degrees Fahrenheit
	UnitsMetric   Units = "metric"   // metres, degrees Celsius
)

const (
	seaLevelPressure    = 101325.0 // Pa
	pressureLapseFactor = 2.25577e-5
	pressureExponent    = 5.25588
	specificGasConstant = 287.058 // J/(kg·K)
	sutherlandC1        = 1.458e-6
	sutherlandS         = 110.4 // K

	minAltitude    = -500.0  // m
	maxAltitude    = 11000.0 // m
	minTemperature = 173.15  // K
	maxTemperature = 373.15  // K

	metresPerFoot = 0.3048
	kelvinOffset  = 273.15
	standardTempC = 15.0
)

// ParseUnits maps a user supplied unit name onto Units. Anything unrecognised is imperial.
func ParseUnits(s string) Units {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "metric", "si", "m":
		return UnitsMetric
	default:
		return UnitsImperial
	}
}

// EnvironmentParams returns air density (kg/m³) and dynamic viscosity (Pa·s) for an
// altitude and temperature given in the supplied units. Inputs are clamped to the
// troposphere so the result is always finite.
func EnvironmentParams(altitude, temperature float64, units Units) (density, viscosity float64) {
	h, tc := altitude, temperature
	if units != UnitsMetric {
		h = altitude * metresPerFoot
		tc = (temperature - 32) * 5 / 9
	}
	if !finite(h) {
		h = 0
	}
	if !finite(tc) {
		tc = standardTempC
	}
	h = mgl64.Clamp(h, minAltitude, maxAltitude)
	t := mgl64.Clamp(tc+kelvinOffset, minTemperature, maxTemperature)

	pressure := seaLevelPressure * math.Pow(1-pressureLapseFactor*h, pressureExponent)
	density = pressure / (specificGasConstant * t)
	viscosity = sutherlandC1 * math.Pow(t, 1.5) / (t + sutherlandS)
	return density, viscosity
}
