package units

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// compassPoints lists the 16-point compass names clockwise from north.
var compassPoints = []string{
	"N", "NNE", "NE", "ENE", "E", "ESE", "SE", "SSE",
	"S", "SSW", "SW", "WSW", "W", "WNW", "NW", "NNW",
}

const compassStep = 22.5

// Direction is a compass bearing in degrees, 0 to 360 inclusive.
type Direction struct {
	degrees float64
}

// NewDirection builds a bearing from degrees.
func NewDirection(degrees float64) (Direction, error) {
	if degrees < 0 || degrees > 360 || math.IsNaN(degrees) {
		return Direction{}, fmt.Errorf("direction must be 0..360: %g", degrees)
	}
	return Direction{degrees: degrees}, nil
}

// ParseDirection accepts a compass name ("SSW") or numeric degrees ("210").
func ParseDirection(s string) (Direction, error) {
	s = strings.TrimSpace(s)
	for i, name := range compassPoints {
		if strings.EqualFold(s, name) {
			return Direction{degrees: float64(i) * compassStep}, nil
		}
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Direction{}, fmt.Errorf("parse direction %q: %w", s, err)
	}
	return NewDirection(v)
}

// Value returns the bearing in degrees.
func (d Direction) Value() float64 { return d.degrees }

// Compass returns the nearest 16-point compass name.
func (d Direction) Compass() string {
	// Halfway bearings round to the even point.
	idx := int(math.RoundToEven(d.degrees/compassStep)) % len(compassPoints)
	return compassPoints[idx]
}

func (d Direction) String() string {
	return fmt.Sprintf("%.0f degrees", d.degrees)
}
