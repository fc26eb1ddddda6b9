package units

import (
	"fmt"
	"strconv"
)

// SpeedUnit is a speed unit code.
type SpeedUnit string

const (
	Knots             SpeedUnit = "KT"
	MetersPerSecond   SpeedUnit = "MPS"
	KilometersPerHour SpeedUnit = "KMH"
	MilesPerHour      SpeedUnit = "MPH"
)

// speedToMPS holds each unit's size in metres per second.
var speedToMPS = map[SpeedUnit]float64{
	Knots:             0.514444,
	MetersPerSecond:   1,
	KilometersPerHour: 1 / 3.6,
	MilesPerHour:      0.44704,
}

var speedSuffix = map[SpeedUnit]string{
	Knots:             "knots",
	MetersPerSecond:   "mps",
	KilometersPerHour: "km/h",
	MilesPerHour:      "mph",
}

// Speed is a wind speed, possibly qualified as a lower or upper bound.
type Speed struct {
	value     float64
	unit      SpeedUnit
	qualifier Qualifier
}

// NewSpeed builds a speed in unit (metres per second when empty).
func NewSpeed(value float64, unit SpeedUnit, q Qualifier) (Speed, error) {
	u, err := lookupUnit("speed", unit, MetersPerSecond, speedToMPS)
	if err != nil {
		return Speed{}, err
	}
	return Speed{value: value, unit: u, qualifier: q}, nil
}

// ParseSpeed parses a reported speed such as "15" or "P199". A leading P
// marks the value as greater than reported.
func ParseSpeed(s string, unit SpeedUnit) (Speed, error) {
	digits, q := splitQualifier(s)
	if q == LessThan {
		return Speed{}, fmt.Errorf("parse speed %q: unexpected M prefix", s)
	}
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return Speed{}, fmt.Errorf("parse speed %q: %w", s, err)
	}
	return NewSpeed(v, unit, q)
}

// Value returns the magnitude in the native unit.
func (s Speed) Value() float64 { return s.value }

// Unit returns the native unit.
func (s Speed) Unit() SpeedUnit { return s.unit }

// Qualifier reports whether the value is a bound.
func (s Speed) Qualifier() Qualifier { return s.qualifier }

// In converts the speed to unit. An empty unit means the native one.
func (s Speed) In(unit SpeedUnit) (float64, error) {
	u, err := lookupUnit("speed", unit, s.unit, speedToMPS)
	if err != nil {
		return 0, err
	}
	return convert(s.value, s.unit, u, speedToMPS), nil
}

// Format renders the speed in unit, e.g. "15 knots" or "greater than 99 mps".
func (s Speed) Format(unit SpeedUnit) (string, error) {
	u, err := lookupUnit("speed", unit, s.unit, speedToMPS)
	if err != nil {
		return "", err
	}
	v := convert(s.value, s.unit, u, speedToMPS)
	return fmt.Sprintf("%s%.0f %s", s.qualifier.prefix(), v, speedSuffix[u]), nil
}

func (s Speed) String() string {
	str, _ := s.Format("")
	return str
}
