package units

import (
	"fmt"
	"strconv"
)

// PrecipitationUnit is a precipitation depth unit code.
type PrecipitationUnit string

const (
	Inches      PrecipitationUnit = "IN"
	Centimeters PrecipitationUnit = "CM"
)

var precipitationToCM = map[PrecipitationUnit]float64{
	Inches:      2.54,
	Centimeters: 1,
}

// Precipitation is an accumulated depth of precipitation or ice.
type Precipitation struct {
	value     float64
	unit      PrecipitationUnit
	qualifier Qualifier
}

// NewPrecipitation builds a depth in unit (inches when empty).
func NewPrecipitation(value float64, unit PrecipitationUnit, q Qualifier) (Precipitation, error) {
	u, err := lookupUnit("precipitation", unit, Inches, precipitationToCM)
	if err != nil {
		return Precipitation{}, err
	}
	return Precipitation{value: value, unit: u, qualifier: q}, nil
}

// ParsePrecipitation parses a depth such as "0.25" or "P2".
func ParsePrecipitation(s string, unit PrecipitationUnit) (Precipitation, error) {
	digits, q := splitQualifier(s)
	v, err := strconv.ParseFloat(digits, 64)
	if err != nil {
		return Precipitation{}, fmt.Errorf("parse precipitation %q: %w", s, err)
	}
	return NewPrecipitation(v, unit, q)
}

// Value returns the magnitude in the native unit.
func (p Precipitation) Value() float64 { return p.value }

// Unit returns the native unit.
func (p Precipitation) Unit() PrecipitationUnit { return p.unit }

// Qualifier reports whether the value is a bound.
func (p Precipitation) Qualifier() Qualifier { return p.qualifier }

// In converts the depth to unit. An empty unit means the native one.
func (p Precipitation) In(unit PrecipitationUnit) (float64, error) {
	u, err := lookupUnit("precipitation", unit, p.unit, precipitationToCM)
	if err != nil {
		return 0, err
	}
	return convert(p.value, p.unit, u, precipitationToCM), nil
}

// Format renders the depth in unit, e.g. "0.25in" or "0.64cm".
func (p Precipitation) Format(unit PrecipitationUnit) (string, error) {
	u, err := lookupUnit("precipitation", unit, p.unit, precipitationToCM)
	if err != nil {
		return "", err
	}
	v := convert(p.value, p.unit, u, precipitationToCM)
	if u == Centimeters {
		return fmt.Sprintf("%s%.2fcm", p.qualifier.prefix(), v), nil
	}
	return fmt.Sprintf("%s%.2fin", p.qualifier.prefix(), v), nil
}

func (p Precipitation) String() string {
	s, _ := p.Format("")
	return s
}
