package domain

import (
	"bytes"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/couchcryptid/metar-etl/internal/metar"
	"github.com/couchcryptid/metar-etl/internal/units"
)

// ErrEmptyReport is returned for messages that carry no report text.
var ErrEmptyReport = errors.New("empty report")

// ParseRawEvent extracts the report from a RawEvent. The value is either a
// RawRecord JSON object or a bare report line.
func ParseRawEvent(raw RawEvent) (RawReport, error) {
	value := bytes.TrimSpace(raw.Value)
	if len(value) == 0 {
		return RawReport{}, fmt.Errorf("parse raw event: %w", ErrEmptyReport)
	}

	var rec RawRecord
	if value[0] == '{' {
		if err := json.Unmarshal(value, &rec); err != nil {
			return RawReport{}, fmt.Errorf("parse raw event: %w", err)
		}
	} else {
		rec.RawText = string(value)
	}

	code := strings.TrimSpace(rec.RawText)
	if code == "" {
		return RawReport{}, fmt.Errorf("parse raw event: %w", ErrEmptyReport)
	}
	if rec.Month < 0 || rec.Month > 12 {
		return RawReport{}, fmt.Errorf("parse raw event: month %d out of range", rec.Month)
	}

	report := RawReport{
		Code:       code,
		Month:      time.Month(rec.Month),
		Year:       rec.Year,
		ReceivedAt: raw.Timestamp,
	}
	if rec.UTCOffsetMinutes != nil {
		offset := time.Duration(*rec.UTCOffsetMinutes) * time.Minute
		report.UTCOffset = &offset
	}
	return report, nil
}

// DecodeOptions translates the report's hints into decoder options. The
// receive time, when known, anchors month and year inference: a report is
// never newer than the message that carried it.
func (r RawReport) DecodeOptions() []metar.Option {
	var opts []metar.Option
	if r.Month != 0 {
		opts = append(opts, metar.WithMonth(r.Month))
	}
	if r.Year != 0 {
		opts = append(opts, metar.WithYear(r.Year))
	}
	if r.UTCOffset != nil {
		opts = append(opts, metar.WithUTCOffset(*r.UTCOffset))
	}
	if !r.ReceivedAt.IsZero() {
		opts = append(opts, metar.WithReferenceTime(r.ReceivedAt))
	}
	return opts
}

// CacheKey identifies a report together with every input that changes how it
// decodes: the hints, and the receive date that anchors month and year
// inference. ok is false when decoding would depend on the current time
// instead, in which case the result must not be cached.
func (r RawReport) CacheKey() (key string, ok bool) {
	if r.ReceivedAt.IsZero() && (r.Month == 0 || r.Year == 0 || r.UTCOffset == nil) {
		return "", false
	}
	offset := "-"
	if r.UTCOffset != nil {
		offset = r.UTCOffset.String()
	}
	received := "-"
	if !r.ReceivedAt.IsZero() {
		received = r.ReceivedAt.UTC().Format("2006-01-02")
		if r.UTCOffset == nil {
			// The decoder falls back to the local zone at the receive time.
			received += r.ReceivedAt.Local().Format(" -0700")
		}
	}
	return fmt.Sprintf("%s|%d|%d|%s|%s", r.Code, r.Month, r.Year, offset, received), true
}

// BuildWeatherReport flattens a decoded observation into canonical units
// (Celsius, knots, metres, feet, hPa, inches), classifies the flight
// category, and stamps a deterministic ID and the processing time.
func BuildWeatherReport(obs *metar.Observation) WeatherReport {
	report := WeatherReport{
		ID:               generateID(obs.StationID, obs.Time, obs.Type, obs.Code),
		Station:          obs.StationID,
		ReportType:       obs.Type,
		Correction:       obs.Correction,
		Modifier:         obs.Modifier,
		ObservedAt:       obs.Time,
		TimeBucket:       deriveTimeBucket(obs.Time),
		Cycle:            obs.Cycle,
		UTCOffsetMinutes: int(obs.UTCOffset / time.Minute),
		Measurements:     buildMeasurements(obs),
		Windshear:        obs.Windshear,
		Trend:            obs.Trend(),
		Remarks:          obs.Remarks,
		Summary:          obs.String(),
		DecodeCompleted:  obs.DecodeCompleted(),
		UnparsedGroups:   obs.UnparsedGroups,
		UnparsedRemarks:  obs.UnparsedRemarks,
		Warnings:         obs.Warnings,
		RawText:          obs.Code,
		ProcessedAt:      clock.Now(),
	}
	for _, w := range obs.Weather {
		report.Weather = append(report.Weather, w.String())
	}
	for _, w := range obs.Recent {
		report.RecentWeather = append(report.RecentWeather, w.String())
	}
	for _, s := range obs.Sky {
		report.Sky = append(report.Sky, SkyLayer{
			Cover:     s.Cover,
			BaseFt:    distanceIn(s.Height, units.Feet),
			CloudType: s.CloudType,
		})
	}
	if rvr, err := obs.RunwayVisualRange(""); err == nil {
		report.RunwayRange = rvr
	}
	report.RunwayState = obs.RunwayConditions()
	report.FlightCategory = deriveFlightCategory(report.Measurements.CeilingFt, report.Measurements.VisibilityM)
	return report
}

func buildMeasurements(obs *metar.Observation) Measurements {
	return Measurements{
		TemperatureC:        temperatureC(obs.Temp),
		DewPointC:           temperatureC(obs.Dewpt),
		WindDirectionDeg:    degrees(obs.WindDir),
		WindSpeedKt:         knots(obs.WindSpeed),
		WindGustKt:          knots(obs.WindGust),
		WindVariableFromDeg: degrees(obs.WindDirFrom),
		WindVariableToDeg:   degrees(obs.WindDirTo),
		VisibilityM:         distanceIn(obs.Vis, units.Meters),
		MaxVisibilityM:      distanceIn(obs.MaxVis, units.Meters),
		CeilingFt:           ceiling(obs.Sky),
		AltimeterHPa:        hectopascals(obs.Press),
		SeaLevelPressureHPa: hectopascals(obs.PressSeaLevel),
		Precip1hrIn:         inches(obs.Precip1hr),
		Precip3hrIn:         inches(obs.Precip3hr),
		Precip6hrIn:         inches(obs.Precip6hr),
		Precip24hrIn:        inches(obs.Precip24hr),
		SnowDepthIn:         distanceIn(obs.SnowDepth, units.InchesDepth),
	}
}

// round2 keeps two decimals so unit conversions serialize stably.
func round2(v float64) *float64 {
	r := math.Round(v*100) / 100
	return &r
}

func temperatureC(t *units.Temperature) *float64 {
	if t == nil {
		return nil
	}
	v, err := t.In(units.Celsius)
	if err != nil {
		return nil
	}
	return round2(v)
}

func degrees(d *units.Direction) *float64 {
	if d == nil {
		return nil
	}
	return round2(d.Value())
}

func knots(s *units.Speed) *float64 {
	if s == nil {
		return nil
	}
	v, err := s.In(units.Knots)
	if err != nil {
		return nil
	}
	return round2(v)
}

func distanceIn(d *units.Distance, unit units.DistanceUnit) *float64 {
	if d == nil {
		return nil
	}
	v, err := d.In(unit)
	if err != nil {
		return nil
	}
	return round2(v)
}

func hectopascals(p *units.Pressure) *float64 {
	if p == nil {
		return nil
	}
	v, err := p.In(units.Hectopascals)
	if err != nil {
		return nil
	}
	return round2(v)
}

func inches(p *units.Precipitation) *float64 {
	if p == nil {
		return nil
	}
	v, err := p.In(units.Inches)
	if err != nil {
		return nil
	}
	return round2(v)
}

// ceiling returns the height of the lowest broken, overcast or obscured
// layer, or nil when there is none.
func ceiling(sky []metar.SkyCondition) *float64 {
	var lowest *float64
	for _, s := range sky {
		switch s.Cover {
		case "BKN", "OVC", "VV":
		default:
			continue
		}
		h := distanceIn(s.Height, units.Feet)
		if h != nil && (lowest == nil || *h < *lowest) {
			lowest = h
		}
	}
	return lowest
}

// statuteMile is the length of a statute mile in metres.
const statuteMile = 1609.344

// deriveFlightCategory classifies conditions using the FAA thresholds:
//   - LIFR: ceiling below 500 ft or visibility below 1 SM
//   - IFR: ceiling below 1000 ft or visibility below 3 SM
//   - MVFR: ceiling up to 3000 ft or visibility up to 5 SM
//   - VFR: otherwise
//
// Returns "" when neither ceiling nor visibility is known. A missing ceiling
// with known visibility is treated as unlimited.
func deriveFlightCategory(ceilingFt, visibilityM *float64) string {
	if ceilingFt == nil && visibilityM == nil {
		return ""
	}
	ceil := math.Inf(1)
	if ceilingFt != nil {
		ceil = *ceilingFt
	}
	vis := math.Inf(1)
	if visibilityM != nil {
		// Visibility arrives rounded to centimetres; round the miles back so
		// 3 SM does not read as 2.99.
		vis = math.Round(*visibilityM/statuteMile*100) / 100
	}

	switch {
	case ceil < 500 || vis < 1:
		return "LIFR"
	case ceil < 1000 || vis < 3:
		return "IFR"
	case ceil <= 3000 || vis <= 5:
		return "MVFR"
	default:
		return "VFR"
	}
}

// generateID produces a deterministic ID from the report's key fields, so
// replaying the same report yields the same ID.
func generateID(station string, observedAt time.Time, reportType, code string) string {
	input := fmt.Sprintf("%s|%s|%s|%s", station, observedAt.UTC().Format(time.RFC3339), reportType, code)
	hash := sha256.Sum256([]byte(input))
	short := hex.EncodeToString(hash[:8])
	if station == "" {
		return short
	}
	return strings.ToLower(station) + "-" + short
}

// deriveTimeBucket truncates the observation time to the hour in UTC.
// Returns zero time if the input is zero.
func deriveTimeBucket(t time.Time) time.Time {
	if t.IsZero() {
		return time.Time{}
	}

	return t.UTC().Truncate(time.Hour)
}
