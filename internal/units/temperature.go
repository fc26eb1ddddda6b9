package units

import (
	"fmt"
	"strconv"
)

// TemperatureUnit is a temperature scale code.
type TemperatureUnit string

const (
	Celsius    TemperatureUnit = "C"
	Fahrenheit TemperatureUnit = "F"
	Kelvin     TemperatureUnit = "K"
)

var temperatureUnits = map[TemperatureUnit]float64{Celsius: 1, Fahrenheit: 1, Kelvin: 1}

var temperatureSuffix = map[TemperatureUnit]string{Celsius: "C", Fahrenheit: "F", Kelvin: "K"}

// Temperature is a reading on one of the supported scales.
type Temperature struct {
	value float64
	unit  TemperatureUnit
}

// NewTemperature builds a temperature in unit (Celsius when empty).
func NewTemperature(value float64, unit TemperatureUnit) (Temperature, error) {
	u, err := lookupUnit("temperature", unit, Celsius, temperatureUnits)
	if err != nil {
		return Temperature{}, err
	}
	return Temperature{value: value, unit: u}, nil
}

// ParseTemperature parses a reported temperature such as "21", "M05" or "-3".
// A leading M means below zero.
func ParseTemperature(s string, unit TemperatureUnit) (Temperature, error) {
	neg := false
	if len(s) > 0 && s[0] == 'M' {
		neg = true
		s = s[1:]
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return Temperature{}, fmt.Errorf("parse temperature %q: %w", s, err)
	}
	if neg {
		v = -v
	}
	return NewTemperature(v, unit)
}

// Value returns the magnitude in the native unit.
func (t Temperature) Value() float64 { return t.value }

// Unit returns the native unit.
func (t Temperature) Unit() TemperatureUnit { return t.unit }

// In converts the temperature to unit. An empty unit means the native one.
func (t Temperature) In(unit TemperatureUnit) (float64, error) {
	u, err := lookupUnit("temperature", unit, t.unit, temperatureUnits)
	if err != nil {
		return 0, err
	}
	return fromCelsius(toCelsius(t.value, t.unit), u), nil
}

// Format renders the temperature in unit, e.g. "21.0 C".
func (t Temperature) Format(unit TemperatureUnit) (string, error) {
	u, err := lookupUnit("temperature", unit, t.unit, temperatureUnits)
	if err != nil {
		return "", err
	}
	v, _ := t.In(u)
	return fmt.Sprintf("%.1f %s", v, temperatureSuffix[u]), nil
}

func (t Temperature) String() string {
	s, _ := t.Format("")
	return s
}

func toCelsius(v float64, u TemperatureUnit) float64 {
	switch u {
	case Fahrenheit:
		return (v - 32) * 5 / 9
	case Kelvin:
		return v - 273.15
	default:
		return v
	}
}

func fromCelsius(v float64, u TemperatureUnit) float64 {
	switch u {
	case Fahrenheit:
		return v*9/5 + 32
	case Kelvin:
		return v + 273.15
	default:
		return v
	}
}
