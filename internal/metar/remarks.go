package metar

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/metar-etl/internal/units"
)

func handleAutoRemark(_ *env, c captures) (update, error) {
	var text string
	switch c["type"] {
	case "1":
		text = "Automated station"
	case "2":
		text = "Automated station (type 2)"
	default:
		return nil, nil
	}
	return appendRemark(text), nil
}

func appendRemark(text string) update {
	return func(o *Observation) { o.Remarks = append(o.Remarks, text) }
}

// remarkTime resolves an optional-hour, minute pair against the observation
// time. Remarks describe the past, so a time after the observation belongs
// to the previous hour, or the previous day when the hour is later.
func remarkTime(obs *Observation, hourText, minText string) (time.Time, error) {
	if obs.Time.IsZero() {
		return time.Time{}, errors.New("observation time not decoded")
	}
	minute, _ := strconv.Atoi(minText)
	hour := obs.Time.Hour()
	if hourText != "" {
		hour, _ = strconv.Atoi(hourText)
	}
	if hour > 23 || minute > 59 {
		return time.Time{}, fmt.Errorf("time of day out of range: %02d:%02d", hour, minute)
	}
	t := time.Date(obs.Time.Year(), obs.Time.Month(), obs.Time.Day(), hour, minute, 0, 0, time.UTC)
	if t.After(obs.Time) {
		if hour > obs.Time.Hour() {
			t = t.Add(-24 * time.Hour)
		} else {
			t = t.Add(-time.Hour)
		}
	}
	return t, nil
}

func handlePeakWindRemark(e *env, c captures) (update, error) {
	dir, err := units.ParseDirection(c["dir"])
	if err != nil {
		return nil, err
	}
	speed, err := units.ParseSpeed(c["speed"], units.Knots)
	if err != nil {
		return nil, err
	}
	at, err := remarkTime(e.obs, c["hour"], c["min"])
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("peak wind %.0fkt from %.0f degrees at %d:%02d",
		speed.Value(), dir.Value(), at.Hour(), at.Minute())
	return func(o *Observation) {
		o.WindDirPeak = &dir
		o.WindSpeedPeak = &speed
		o.PeakWindTime = at
		o.Remarks = append(o.Remarks, text)
	}, nil
}

func handleWindShiftRemark(e *env, c captures) (update, error) {
	at, err := remarkTime(e.obs, c["hour"], c["min"])
	if err != nil {
		return nil, err
	}
	front := c["front"] != ""
	text := fmt.Sprintf("wind shift at %d:%02d", at.Hour(), at.Minute())
	if front {
		text += " (front)"
	}
	return func(o *Observation) {
		o.WindShiftTime = at
		o.Frontal = front
		o.Remarks = append(o.Remarks, text)
	}, nil
}

// translateLocation spells out location terms such as "DSNT NE AND OHD".
func translateLocation(loc string) string {
	words := strings.Fields(loc)
	for i, w := range words {
		if text, ok := locationTerms[w]; ok {
			words[i] = text
		}
	}
	return strings.Join(words, " ")
}

func handleLightningRemark(_ *env, c captures) (update, error) {
	var parts []string
	if freq := c["freq"]; freq != "" {
		parts = append(parts, lookup(lightningFrequency, "lightning frequency", freq))
	}
	parts = append(parts, "lightning")
	if typ := c["type"]; typ != "" {
		var kinds []string
		for i := 0; i+2 <= len(typ); i += 2 {
			kinds = append(kinds, lookup(lightningType, "lightning type", typ[i:i+2]))
		}
		parts = append(parts, "("+strings.Join(kinds, ",")+")")
	}
	if loc := c["loc"]; loc != "" {
		parts = append(parts, translateLocation(loc))
	}
	return appendRemark(strings.Join(parts, " ")), nil
}

func handleThunderstormRemark(_ *env, c captures) (update, error) {
	text := "thunderstorm"
	if loc := c["loc"]; loc != "" {
		text += " " + translateLocation(loc)
	}
	if dir := c["dir"]; dir != "" {
		text += " moving " + dir
	}
	return appendRemark(text), nil
}

// signedTenths decodes the remark convention of a sign digit (1 = negative)
// followed by a value in tenths.
func signedTenths(sign, digits string) (float64, error) {
	v, err := strconv.Atoi(digits)
	if err != nil {
		return 0, err
	}
	f := float64(v) / 10
	if sign == "1" {
		f = -f
	}
	return f, nil
}

func tenthsTemperature(sign, digits string) (*units.Temperature, error) {
	v, err := signedTenths(sign, digits)
	if err != nil {
		return nil, err
	}
	t, err := units.NewTemperature(v, units.Celsius)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// handleTemp1hrRemark decodes the T group, which refines the body
// temperature and dew point to tenths of a degree.
func handleTemp1hrRemark(_ *env, c captures) (update, error) {
	temp, err := tenthsTemperature(c["tsign"], c["temp"])
	if err != nil {
		return nil, err
	}
	var dewpt *units.Temperature
	if c["dewpt"] != "" {
		if dewpt, err = tenthsTemperature(c["dsign"], c["dewpt"]); err != nil {
			return nil, err
		}
	}
	return func(o *Observation) {
		o.Temp = temp
		if dewpt != nil {
			o.Dewpt = dewpt
		}
	}, nil
}

func hundredthsInches(digits string) (*units.Precipitation, error) {
	v, err := strconv.Atoi(digits)
	if err != nil {
		return nil, err
	}
	p, err := units.NewPrecipitation(float64(v)/100, units.Inches, units.Exact)
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func handlePrecip1hrRemark(_ *env, c captures) (update, error) {
	p, err := hundredthsInches(c["precip"])
	if err != nil {
		return nil, err
	}
	return func(o *Observation) { o.Precip1hr = p }, nil
}

// handlePrecip24hrRemark decodes 6RRRR and 7RRRR. The 6 group covers three
// hours at the 03, 09, 15 and 21 UTC reports and six hours otherwise.
func handlePrecip24hrRemark(e *env, c captures) (update, error) {
	p, err := hundredthsInches(c["precip"])
	if err != nil {
		return nil, err
	}
	if c["type"] == "7" {
		return func(o *Observation) { o.Precip24hr = p }, nil
	}
	switch e.obs.Cycle {
	case 3, 9, 15, 21:
		return func(o *Observation) { o.Precip3hr = p }, nil
	default:
		return func(o *Observation) { o.Precip6hr = p }, nil
	}
}

func handlePress3hrRemark(_ *env, c captures) (update, error) {
	v, err := strconv.Atoi(c["press"])
	if err != nil {
		return nil, err
	}
	text := fmt.Sprintf("3-hr pressure change %.1fhPa, %s",
		float64(v)/10, lookup(pressureTendency, "pressure tendency", c["tend"]))
	return appendRemark(text), nil
}

// handleTemp6hrRemark decodes the 1snTTT (max) and 2snTTT (min) groups. A
// minimum above the reported maximum is dropped.
func handleTemp6hrRemark(_ *env, c captures) (update, error) {
	t, err := tenthsTemperature(c["sign"], c["temp"])
	if err != nil {
		return nil, err
	}
	if c["type"] == "1" {
		return func(o *Observation) {
			o.MaxTemp6hr = t
			o.MinTemp6hr = minWithinMax(o.MinTemp6hr, t)
		}, nil
	}
	return func(o *Observation) { o.MinTemp6hr = minWithinMax(t, o.MaxTemp6hr) }, nil
}

func handleTemp24hrRemark(_ *env, c captures) (update, error) {
	maxT, err := tenthsTemperature(c["smaxt"], c["maxt"])
	if err != nil {
		return nil, err
	}
	minT, err := tenthsTemperature(c["smint"], c["mint"])
	if err != nil {
		return nil, err
	}
	return func(o *Observation) {
		o.MaxTemp24hr = maxT
		o.MinTemp24hr = minWithinMax(minT, maxT)
	}, nil
}

// minWithinMax returns minT unless it exceeds a known maxT.
func minWithinMax(minT, maxT *units.Temperature) *units.Temperature {
	if minT != nil && maxT != nil && minT.Value() > maxT.Value() {
		return nil
	}
	return minT
}

func handleSnowDepthRemark(_ *env, c captures) (update, error) {
	v, err := strconv.Atoi(c["depth"])
	if err != nil {
		return nil, err
	}
	d, err := units.NewDistance(float64(v), units.InchesDepth, units.Exact)
	if err != nil {
		return nil, err
	}
	text := "snowdepth " + d.String()
	return func(o *Observation) {
		o.SnowDepth = &d
		o.Remarks = append(o.Remarks, text)
	}, nil
}

func handleIceAccretionRemark(_ *env, c captures) (update, error) {
	p, err := hundredthsInches(c["depth"])
	if err != nil {
		return nil, err
	}
	switch c["hours"] {
	case "1":
		return func(o *Observation) { o.IceAccretion1hr = p }, nil
	case "3":
		return func(o *Observation) { o.IceAccretion3hr = p }, nil
	default:
		return func(o *Observation) { o.IceAccretion6hr = p }, nil
	}
}

func handleUnparsedRemark(_ *env, c captures) (update, error) {
	group := c["group"]
	return func(o *Observation) { o.UnparsedRemarks = append(o.UnparsedRemarks, group) }, nil
}
