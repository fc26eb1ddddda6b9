package units

import "fmt"

// PressureUnit is a pressure unit code.
type PressureUnit string

const (
	Millibars       PressureUnit = "MB"
	Hectopascals    PressureUnit = "HPA"
	InchesOfMercury PressureUnit = "IN"
)

const hectopascalsPerInch = 33.86398

// pressureToHPa holds each unit's size in hectopascals.
var pressureToHPa = map[PressureUnit]float64{
	Millibars:       1,
	Hectopascals:    1,
	InchesOfMercury: hectopascalsPerInch,
}

// Pressure is an atmospheric pressure reading.
type Pressure struct {
	value float64
	unit  PressureUnit
}

// NewPressure builds a pressure in unit (millibars when empty).
func NewPressure(value float64, unit PressureUnit) (Pressure, error) {
	u, err := lookupUnit("pressure", unit, Millibars, pressureToHPa)
	if err != nil {
		return Pressure{}, err
	}
	return Pressure{value: value, unit: u}, nil
}

// Value returns the magnitude in the native unit.
func (p Pressure) Value() float64 { return p.value }

// Unit returns the native unit.
func (p Pressure) Unit() PressureUnit { return p.unit }

// In converts the pressure to unit. An empty unit means the native one.
func (p Pressure) In(unit PressureUnit) (float64, error) {
	u, err := lookupUnit("pressure", unit, p.unit, pressureToHPa)
	if err != nil {
		return 0, err
	}
	return convert(p.value, p.unit, u, pressureToHPa), nil
}

// Format renders the pressure in unit: "1013.2 mb", "1013.2 hPa" or "29.92 inches".
func (p Pressure) Format(unit PressureUnit) (string, error) {
	u, err := lookupUnit("pressure", unit, p.unit, pressureToHPa)
	if err != nil {
		return "", err
	}
	v := convert(p.value, p.unit, u, pressureToHPa)
	switch u {
	case Hectopascals:
		return fmt.Sprintf("%.1f hPa", v), nil
	case InchesOfMercury:
		return fmt.Sprintf("%.2f inches", v), nil
	default:
		return fmt.Sprintf("%.1f mb", v), nil
	}
}

func (p Pressure) String() string {
	s, _ := p.Format("")
	return s
}
