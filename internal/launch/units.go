package launch

import "strings"

// LengthUnit is the unit distances are reported in.
type LengthUnit string

const (
	Yards  LengthUnit = "yards"
	Meters LengthUnit = "meters"
	Feet   LengthUnit = "feet"
)

const (
	yardsPerMetre = 1.0936133
	feetPerMetre  = 3.2808399
)

// ParseLengthUnit accepts common abbreviations. Unknown names are yards.
func ParseLengthUnit(s string) LengthUnit {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "m", "meter", "meters", "metre", "metres":
		return Meters
	case "ft", "foot", "feet":
		return Feet
	default:
		return Yards
	}
}

// FromMetres converts a distance in metres to u.
func FromMetres(m float64, u LengthUnit) float64 {
	switch u {
	case Meters:
		return m
	case Feet:
		return m * feetPerMetre
	default:
		return m * yardsPerMetre
	}
}
