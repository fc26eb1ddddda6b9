package units

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

// DistanceUnit is a length unit code.
type DistanceUnit string

const (
	StatuteMiles DistanceUnit = "SM"
	Miles        DistanceUnit = "MI"
	Meters       DistanceUnit = "M"
	Kilometers   DistanceUnit = "KM"
	Feet         DistanceUnit = "FT"
	InchesDepth  DistanceUnit = "IN"
)

// distanceToMeters holds each unit's size in metres.
var distanceToMeters = map[DistanceUnit]float64{
	StatuteMiles: 1609.344,
	Miles:        1609.344,
	Meters:       1,
	Kilometers:   1000,
	Feet:         1 / 3.28084,
	InchesDepth:  0.0254,
}

var distanceSuffix = map[DistanceUnit]string{
	StatuteMiles: " miles",
	Miles:        " miles",
	Meters:       " meters",
	Kilometers:   " km",
	Feet:         " feet",
	InchesDepth:  " inches",
}

// fractionRe matches "3/8" and mixed numbers such as "1 3/4".
var fractionRe = regexp.MustCompile(`^(?:(?P<whole>\d+)\s*)?(?P<num>\d)/(?P<den>\d+)$`)

// Distance is a horizontal or vertical length. A distance parsed from a
// fraction keeps it so it can be written back the same way.
type Distance struct {
	value     float64
	unit      DistanceUnit
	qualifier Qualifier
	num, den  int
}

// NewDistance builds a distance in unit (metres when empty).
func NewDistance(value float64, unit DistanceUnit, q Qualifier) (Distance, error) {
	u, err := lookupUnit("distance", unit, Meters, distanceToMeters)
	if err != nil {
		return Distance{}, err
	}
	return Distance{value: value, unit: u, qualifier: q}, nil
}

// ParseDistance parses a reported distance: "5000", "M1/4", "1 3/4", "P6000".
// A leading M means less than and a leading P means greater than.
func ParseDistance(s string, unit DistanceUnit) (Distance, error) {
	body, q := splitQualifier(strings.TrimSpace(s))
	d, err := NewDistance(0, unit, q)
	if err != nil {
		return Distance{}, err
	}
	if m := fractionRe.FindStringSubmatch(body); m != nil {
		num, _ := strconv.Atoi(m[2])
		den, _ := strconv.Atoi(m[3])
		if den == 0 {
			return Distance{}, fmt.Errorf("parse distance %q: zero denominator", s)
		}
		whole := 0
		if m[1] != "" {
			whole, _ = strconv.Atoi(m[1])
		}
		d.value = float64(whole) + float64(num)/float64(den)
		if num > 0 {
			d.num, d.den = num, den
		}
		return d, nil
	}
	v, err := strconv.ParseFloat(body, 64)
	if err != nil {
		return Distance{}, fmt.Errorf("parse distance %q: %w", s, err)
	}
	d.value = v
	return d, nil
}

// Value returns the magnitude in the native unit.
func (d Distance) Value() float64 { return d.value }

// Unit returns the native unit.
func (d Distance) Unit() DistanceUnit { return d.unit }

// Qualifier reports whether the value is a bound.
func (d Distance) Qualifier() Qualifier { return d.qualifier }

// In converts the distance to unit. An empty unit means the native one.
func (d Distance) In(unit DistanceUnit) (float64, error) {
	u, err := lookupUnit("distance", unit, d.unit, distanceToMeters)
	if err != nil {
		return 0, err
	}
	return convert(d.value, d.unit, u, distanceToMeters), nil
}

// Format renders the distance in unit. In the native unit a fractional value
// keeps its fraction ("1 3/4 miles"); kilometres get one decimal place and
// everything else is rounded to a whole number.
func (d Distance) Format(unit DistanceUnit) (string, error) {
	u, err := lookupUnit("distance", unit, d.unit, distanceToMeters)
	if err != nil {
		return "", err
	}
	var text string
	switch {
	case u == d.unit && d.den > 0:
		whole := int(d.value - float64(d.num)/float64(d.den))
		text = fmt.Sprintf("%d/%d", d.num, d.den)
		if whole > 0 {
			text = fmt.Sprintf("%d %s", whole, text)
		}
	case u == Kilometers:
		text = fmt.Sprintf("%.1f", convert(d.value, d.unit, u, distanceToMeters))
	default:
		text = fmt.Sprintf("%.0f", convert(d.value, d.unit, u, distanceToMeters))
	}
	return d.qualifier.prefix() + text + distanceSuffix[u], nil
}

func (d Distance) String() string {
	s, _ := d.Format("")
	return s
}
