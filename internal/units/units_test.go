package units

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemperature(t *testing.T) {
	temp, err := ParseTemperature("M05", "")
	require.NoError(t, err)
	assert.InDelta(t, -5.0, temp.Value(), 1e-9)
	assert.Equal(t, Celsius, temp.Unit())
	assert.Equal(t, "-5.0 C", temp.String())

	f, err := temp.In("f")
	require.NoError(t, err)
	assert.InDelta(t, 23.0, f, 1e-9)

	k, err := temp.In(Kelvin)
	require.NoError(t, err)
	assert.InDelta(t, 268.15, k, 1e-9)

	s, err := temp.Format(Fahrenheit)
	require.NoError(t, err)
	assert.Equal(t, "23.0 F", s)
}

func TestTemperature_RoundTrip(t *testing.T) {
	for _, u := range []TemperatureUnit{Celsius, Fahrenheit, Kelvin} {
		temp, err := NewTemperature(12.3, u)
		require.NoError(t, err)
		for _, v := range []TemperatureUnit{Celsius, Fahrenheit, Kelvin} {
			converted, err := temp.In(v)
			require.NoError(t, err)
			back, err := NewTemperature(converted, v)
			require.NoError(t, err)
			got, err := back.In(u)
			require.NoError(t, err)
			assert.InDelta(t, 12.3, got, 1e-9, "%s -> %s -> %s", u, v, u)
		}
	}
}

func TestUnitsError(t *testing.T) {
	_, err := NewTemperature(1, "X")
	var ue *UnitsError
	require.ErrorAs(t, err, &ue)
	assert.Equal(t, "temperature", ue.Quantity)
	assert.Equal(t, "X", ue.Unit)

	speed, err := NewSpeed(10, Knots, Exact)
	require.NoError(t, err)
	_, err = speed.In("FPS")
	assert.True(t, errors.As(err, &ue))
	_, err = speed.Format("FPS")
	assert.Error(t, err)

	p, err := NewPressure(1000, "")
	require.NoError(t, err)
	_, err = p.In("PSI")
	assert.Error(t, err)

	d, err := NewDistance(1, "", Exact)
	require.NoError(t, err)
	_, err = d.In("LY")
	assert.Error(t, err)

	_, err = NewPrecipitation(1, "MM", Exact)
	assert.Error(t, err)
}

func TestPressure(t *testing.T) {
	p, err := NewPressure(29.92, InchesOfMercury)
	require.NoError(t, err)

	mb, err := p.In(Millibars)
	require.NoError(t, err)
	assert.InDelta(t, 1013.2, mb, 0.05)

	tests := []struct {
		unit PressureUnit
		want string
	}{
		{"", "29.92 inches"},
		{"mb", "1013.2 mb"},
		{"hPa", "1013.2 hPa"},
	}
	for _, tt := range tests {
		got, err := p.Format(tt.unit)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}
}

func TestSpeed(t *testing.T) {
	s, err := ParseSpeed("10", MetersPerSecond)
	require.NoError(t, err)

	tests := []struct {
		unit SpeedUnit
		want string
	}{
		{Knots, "19 knots"},
		{"", "10 mps"},
		{"kmh", "36 km/h"},
		{MilesPerHour, "22 mph"},
	}
	for _, tt := range tests {
		got, err := s.Format(tt.unit)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got)
	}

	gt, err := ParseSpeed("P99", Knots)
	require.NoError(t, err)
	assert.Equal(t, GreaterThan, gt.Qualifier())
	assert.Equal(t, "greater than 99 knots", gt.String())

	_, err = ParseSpeed("M10", Knots)
	assert.Error(t, err)
}

func TestDistance_Parse(t *testing.T) {
	tests := []struct {
		in    string
		unit  DistanceUnit
		value float64
		q     Qualifier
		text  string
	}{
		{"10", StatuteMiles, 10, Exact, "10 miles"},
		{"3/8", StatuteMiles, 0.375, Exact, "3/8 miles"},
		{"1 3/4", StatuteMiles, 1.75, Exact, "1 3/4 miles"},
		{"M1/4", StatuteMiles, 0.25, LessThan, "less than 1/4 miles"},
		{"P6000", Feet, 6000, GreaterThan, "greater than 6000 feet"},
		{"5000", Meters, 5000, Exact, "5000 meters"},
		{"5", Kilometers, 5, Exact, "5.0 km"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDistance(tt.in, tt.unit)
			require.NoError(t, err)
			assert.InDelta(t, tt.value, d.Value(), 1e-9)
			assert.Equal(t, tt.q, d.Qualifier())
			assert.Equal(t, tt.text, d.String())
		})
	}
}

func TestDistance_Convert(t *testing.T) {
	d, err := ParseDistance("2600", Feet)
	require.NoError(t, err)
	s, err := d.Format(Meters)
	require.NoError(t, err)
	assert.Equal(t, "792 meters", s)

	m, err := ParseDistance("1500", Meters)
	require.NoError(t, err)
	s, err = m.Format(Feet)
	require.NoError(t, err)
	assert.Equal(t, "4921 feet", s)

	// Converting away from the native unit drops the fraction.
	frac, err := ParseDistance("1/2", StatuteMiles)
	require.NoError(t, err)
	s, err = frac.Format(Meters)
	require.NoError(t, err)
	assert.Equal(t, "805 meters", s)

	for _, u := range []DistanceUnit{StatuteMiles, Meters, Kilometers, Feet, InchesDepth} {
		v, err := m.In(u)
		require.NoError(t, err)
		back, err := NewDistance(v, u, Exact)
		require.NoError(t, err)
		got, err := back.In(Meters)
		require.NoError(t, err)
		assert.InDelta(t, 1500, got, 1e-6)
	}
}

func TestPrecipitation(t *testing.T) {
	p, err := ParsePrecipitation("0.25", "")
	require.NoError(t, err)
	assert.Equal(t, "0.25in", p.String())

	cm, err := p.In(Centimeters)
	require.NoError(t, err)
	assert.InDelta(t, 0.635, cm, 1e-9)

	s, err := p.Format("cm")
	require.NoError(t, err)
	assert.Equal(t, "0.64cm", s)

	back, err := NewPrecipitation(cm, Centimeters, Exact)
	require.NoError(t, err)
	in, err := back.In(Inches)
	require.NoError(t, err)
	assert.InDelta(t, 0.25, in, 1e-9)
}

func TestDirection(t *testing.T) {
	tests := []struct {
		in      string
		degrees float64
		compass string
	}{
		{"N", 0, "N"},
		{"ssw", 202.5, "SSW"},
		{"90", 90, "E"},
		{"240", 240, "WSW"},
		{"355", 355, "N"},
		{"360", 360, "N"},
		{"135", 135, "SE"},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			d, err := ParseDirection(tt.in)
			require.NoError(t, err)
			assert.InDelta(t, tt.degrees, d.Value(), 1e-9)
			assert.Equal(t, tt.compass, d.Compass())
		})
	}

	d, err := NewDirection(45)
	require.NoError(t, err)
	assert.Equal(t, "45 degrees", d.String())

	_, err = NewDirection(400)
	assert.Error(t, err)
	_, err = NewDirection(-1)
	assert.Error(t, err)
	_, err = ParseDirection("XYZ")
	assert.Error(t, err)
}
