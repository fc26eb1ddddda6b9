package metar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/metar-etl/internal/units"
)

// ReportType describes the kind of report, e.g.
// "routine report, cycle 17 (automatic report)".
func (o *Observation) ReportType() string {
	var text string
	switch t, ok := reportTypes[o.Type]; {
	case o.Type == "":
		text = "unknown"
	case ok:
		text = t
	default:
		text = o.Type + " report"
	}
	if !o.Time.IsZero() {
		text += fmt.Sprintf(", cycle %d", o.Cycle)
	}
	if o.Modifier != "" {
		text += " (" + describeOr(reportTypes, o.Modifier) + ")"
	}
	if o.Correction != "" {
		text += " (" + describeOr(reportTypes, o.Correction) + ")"
	}
	return text
}

func describeOr(table map[string]string, code string) string {
	if text, ok := table[code]; ok {
		return text
	}
	return code
}

// Wind describes the surface wind in unit (knots when empty).
func (o *Observation) Wind(unit units.SpeedUnit) (string, error) {
	if unit == "" {
		unit = units.Knots
	}
	if o.WindSpeed == nil {
		return "missing", nil
	}
	if o.WindSpeed.Value() == 0 {
		return "calm", nil
	}
	speed, err := o.WindSpeed.Format(unit)
	if err != nil {
		return "", err
	}
	var text string
	switch {
	case o.WindDir == nil:
		text = "variable at " + speed
	case o.WindDirFrom != nil && o.WindDirTo != nil:
		text = fmt.Sprintf("%s to %s at %s", o.WindDirFrom.Compass(), o.WindDirTo.Compass(), speed)
	default:
		text = fmt.Sprintf("%s at %s", o.WindDir.Compass(), speed)
	}
	if o.WindGust != nil {
		gust, err := o.WindGust.Format(unit)
		if err != nil {
			return "", err
		}
		text += ", gusting to " + gust
	}
	return text, nil
}

// PeakWind describes the peak wind remark in unit (knots when empty).
func (o *Observation) PeakWind(unit units.SpeedUnit) (string, error) {
	if unit == "" {
		unit = units.Knots
	}
	if o.WindSpeedPeak == nil {
		return "missing", nil
	}
	if o.WindSpeedPeak.Value() == 0 {
		return "calm", nil
	}
	text, err := o.WindSpeedPeak.Format(unit)
	if err != nil {
		return "", err
	}
	if o.WindDirPeak != nil {
		text = o.WindDirPeak.Compass() + " at " + text
	}
	if !o.PeakWindTime.IsZero() {
		text += " at " + o.PeakWindTime.Format("15:04")
	}
	return text, nil
}

// WindShift returns the time of the wind shift as HH:MM.
func (o *Observation) WindShift() string {
	if o.WindShiftTime.IsZero() {
		return "missing"
	}
	return o.WindShiftTime.Format("15:04")
}

// Visibility describes prevailing and maximum visibility in unit (the
// reported unit when empty).
func (o *Observation) Visibility(unit units.DistanceUnit) (string, error) {
	if o.Vis == nil {
		return "missing", nil
	}
	text, err := distanceToward(*o.Vis, o.VisDir, unit)
	if err != nil {
		return "", err
	}
	if o.MaxVis != nil {
		maxText, err := distanceToward(*o.MaxVis, o.MaxVisDir, unit)
		if err != nil {
			return "", err
		}
		text += "; " + maxText
	}
	return text, nil
}

func distanceToward(d units.Distance, dir *units.Direction, unit units.DistanceUnit) (string, error) {
	text, err := d.Format(unit)
	if err != nil {
		return "", err
	}
	if dir != nil {
		text += " to " + dir.Compass()
	}
	return text, nil
}

// RunwayVisualRange describes each runway visual range, separated by "; ".
func (o *Observation) RunwayVisualRange(unit units.DistanceUnit) (string, error) {
	lines := make([]string, 0, len(o.Runway))
	for _, r := range o.Runway {
		u := unit
		if u == "" {
			u = r.Low.Unit()
		}
		high, err := r.High.Format(u)
		if err != nil {
			return "", err
		}
		if !r.Variable() {
			lines = append(lines, fmt.Sprintf("on runway %s, %s", r.Runway, high))
			continue
		}
		low, err := r.Low.In(u)
		if err != nil {
			return "", err
		}
		lines = append(lines, fmt.Sprintf("on runway %s, from %d to %s", r.Runway, int(low), high))
	}
	return strings.Join(lines, "; "), nil
}

// PresentWeather describes the present weather groups, separated by "; ".
func (o *Observation) PresentWeather() string {
	return describeWeather(o.Weather)
}

// RecentWeather describes the recent weather groups, separated by "; ".
func (o *Observation) RecentWeather() string {
	return describeWeather(o.Recent)
}

func describeWeather(groups []WeatherGroup) string {
	lines := make([]string, 0, len(groups))
	for _, w := range groups {
		lines = append(lines, describeWeatherGroup(w))
	}
	return strings.Join(lines, "; ")
}

// String describes the group in English, e.g. "light rain showers".
func (w WeatherGroup) String() string {
	return describeWeatherGroup(w)
}

func describeWeatherGroup(w WeatherGroup) string {
	code := w.Intensity + w.Descriptor + w.Precipitation + w.Obscuration + w.Other
	if text, ok := weatherSpecial[code]; ok {
		return text
	}

	var words []string
	if w.Intensity != "" {
		words = append(words, lookup(weatherIntensity, "intensity", w.Intensity))
	}
	descriptors := pairs(w.Descriptor)
	if w.Descriptor != "" && (w.Descriptor != "SH" || w.Precipitation == "") {
		for _, d := range descriptors {
			words = append(words, lookup(weatherDescriptor, "descriptor", d))
		}
	}
	if w.Precipitation != "" {
		if w.Descriptor == "TS" {
			words = append(words, "with")
		}
		words = append(words, describePrecipitation(w.Precipitation))
		if w.Descriptor == "SH" {
			words = append(words, weatherDescriptor["SH"])
		}
	}
	if w.Obscuration != "" {
		words = append(words, lookup(weatherObscuration, "obscuration", w.Obscuration))
	}
	if w.Other != "" {
		if strings.Trim(w.Other, "/") == "" {
			words = append(words, w.Other)
		} else {
			words = append(words, lookup(weatherOther, "phenomenon", w.Other))
		}
	}
	return strings.Join(words, " ")
}

// describePrecipitation lists the precipitation types of a group, "rain",
// "rain and snow" or "drizzle, rain and snow". Codes that do not split into
// known types are shown as reported.
func describePrecipitation(code string) string {
	if len(code)%2 != 0 {
		return code
	}
	var names []string
	for _, p := range pairs(code) {
		name, ok := weatherPrecipitation[p]
		if !ok {
			return code
		}
		names = append(names, name)
	}
	return joinAnd(names)
}

func joinAnd(items []string) string {
	switch len(items) {
	case 0:
		return ""
	case 1:
		return items[0]
	default:
		return strings.Join(items[:len(items)-1], ", ") + " and " + items[len(items)-1]
	}
}

// pairs splits s into two-character codes.
func pairs(s string) []string {
	var out []string
	for len(s) >= 2 {
		out = append(out, s[:2])
		s = s[2:]
	}
	if s != "" {
		out = append(out, s)
	}
	return out
}

// SkyConditions describes the cloud layers, joined with sep ("; " when empty).
func (o *Observation) SkyConditions(sep string) string {
	if sep == "" {
		sep = "; "
	}
	lines := make([]string, 0, len(o.Sky))
	for _, s := range o.Sky {
		lines = append(lines, describeSky(s))
	}
	return strings.Join(lines, sep)
}

func (s SkyCondition) String() string {
	return describeSky(s)
}

func describeSky(s SkyCondition) string {
	switch s.Cover {
	case "SKC", "CLR", "NSC", "NCD":
		return skyCover[s.Cover]
	}
	cover := lookup(skyCover, "sky cover", s.Cover)
	var what string
	switch {
	case s.CloudType != "":
		what = lookup(cloudTypes, "cloud type", s.CloudType)
	case strings.HasSuffix(cover, " "):
		what = "clouds"
	}
	label := strings.Join(strings.Fields(cover+" "+what), " ")
	if s.Height == nil {
		return label
	}
	if s.Cover == "VV" {
		return label + ", vertical visibility to " + s.Height.String()
	}
	return label + " at " + s.Height.String()
}

// Trend returns the trend forecast groups as reported.
func (o *Observation) Trend() string {
	return strings.Join(o.TrendGroups, " ")
}

// RemarkSummary joins the decoded remarks with sep ("; " when empty).
func (o *Observation) RemarkSummary(sep string) string {
	if sep == "" {
		sep = "; "
	}
	return strings.Join(o.Remarks, sep)
}

// RunwayConditions describes the runway state groups, separated by "; ".
func (o *Observation) RunwayConditions() string {
	lines := make([]string, 0, len(o.RunwayStates))
	for _, rs := range o.RunwayStates {
		lines = append(lines, describeRunwayState(rs))
	}
	return strings.Join(lines, "; ")
}

func describeRunwayState(rs RunwayState) string {
	switch {
	case rs.Special == "SNOCLO" && rs.Runway == "":
		return "aerodrome closed due to snow"
	case rs.Special == "SNOCLO":
		return "runway " + rs.Runway + " closed due to snow"
	case strings.HasPrefix(rs.Special, "CLRD"):
		return "on runway " + rs.Runway + ", contamination cleared, " + describeFriction(rs.Special[4:])
	}
	parts := []string{
		"on runway " + rs.Runway,
		lookup(runwayDeposit, "runway deposit", rs.Deposit),
		lookup(runwayExtent, "runway contamination extent", rs.Extent),
		describeDepth(rs.Depth),
		describeFriction(rs.Friction),
	}
	return strings.Join(parts, ", ")
}

func describeDepth(code string) string {
	if code == "//" {
		return "depth not significant"
	}
	n, err := strconv.Atoi(code)
	switch {
	case err != nil:
		return lookup(nil, "deposit depth", code)
	case n == 0:
		return "depth less than 1 mm"
	case n <= 90:
		return fmt.Sprintf("depth %d mm", n)
	case n >= 92 && n <= 97:
		return fmt.Sprintf("depth %d cm", (n-90)*5)
	case n == 98:
		return "depth 40 cm or more"
	case n == 99:
		return "runway not operational"
	default:
		return lookup(nil, "deposit depth", code)
	}
}

var brakingAction = map[int]string{
	91: "braking action poor",
	92: "braking action medium/poor",
	93: "braking action medium",
	94: "braking action medium/good",
	95: "braking action good",
	99: "braking action unreliable",
}

func describeFriction(code string) string {
	if code == "//" {
		return "braking action not reported"
	}
	n, err := strconv.Atoi(code)
	switch {
	case err != nil:
		return lookup(nil, "friction", code)
	case n >= 1 && n <= 90:
		return fmt.Sprintf("friction coefficient 0.%02d", n)
	}
	if text, ok := brakingAction[n]; ok {
		return text
	}
	return lookup(nil, "friction", code)
}

// String renders the whole observation as a multi-line English report.
func (o *Observation) String() string {
	var b strings.Builder
	line := func(format string, args ...any) {
		fmt.Fprintf(&b, format, args...)
		b.WriteByte('\n')
	}

	line("station: %s", o.StationID)
	if o.Type != "" {
		line("type: %s", o.ReportType())
	}
	if !o.Time.IsZero() {
		line("time: %s", o.Time.Format(time.ANSIC))
	}
	if o.Temp != nil {
		line("temperature: %s", formatted(o.Temp.Format(units.Celsius)))
	}
	if o.Dewpt != nil {
		line("dew point: %s", formatted(o.Dewpt.Format(units.Celsius)))
	}
	if o.WindSpeed != nil {
		line("wind: %s", formatted(o.Wind("")))
	}
	if o.WindSpeedPeak != nil {
		line("peak wind: %s", formatted(o.PeakWind("")))
	}
	if !o.WindShiftTime.IsZero() {
		line("wind shift: %s", o.WindShift())
	}
	if o.Vis != nil {
		line("visibility: %s", formatted(o.Visibility("")))
	}
	if len(o.Runway) > 0 {
		line("visual range: %s", formatted(o.RunwayVisualRange("")))
	}
	if o.Press != nil {
		line("pressure: %s", formatted(o.Press.Format(units.Millibars)))
	}
	if len(o.Weather) > 0 {
		line("weather: %s", o.PresentWeather())
	}
	if len(o.Recent) > 0 {
		line("recent weather: %s", o.RecentWeather())
	}
	if len(o.Sky) > 0 {
		line("sky: %s", o.SkyConditions("\n     "))
	}
	if len(o.RunwayStates) > 0 {
		line("runway state: %s", o.RunwayConditions())
	}
	if o.PressSeaLevel != nil {
		line("sea-level pressure: %s", formatted(o.PressSeaLevel.Format(units.Millibars)))
	}
	temps := []struct {
		label string
		t     *units.Temperature
	}{
		{"6-hour max temp", o.MaxTemp6hr},
		{"6-hour min temp", o.MinTemp6hr},
		{"24-hour max temp", o.MaxTemp24hr},
		{"24-hour min temp", o.MinTemp24hr},
	}
	for _, t := range temps {
		if t.t != nil {
			line("%s: %s", t.label, t.t)
		}
	}
	amounts := []struct {
		label string
		p     *units.Precipitation
	}{
		{"1-hour precipitation", o.Precip1hr},
		{"3-hour precipitation", o.Precip3hr},
		{"6-hour precipitation", o.Precip6hr},
		{"24-hour precipitation", o.Precip24hr},
		{"1-hour ice accretion", o.IceAccretion1hr},
		{"3-hour ice accretion", o.IceAccretion3hr},
		{"6-hour ice accretion", o.IceAccretion6hr},
	}
	for _, a := range amounts {
		if a.p != nil {
			line("%s: %s", a.label, a.p)
		}
	}
	if len(o.TrendGroups) > 0 {
		line("trend: %s", o.Trend())
	}
	if len(o.Remarks) > 0 || len(o.UnparsedRemarks) > 0 {
		line("remarks:")
		if len(o.Remarks) > 0 {
			line("- %s", o.RemarkSummary("\n- "))
		}
		if len(o.UnparsedRemarks) > 0 {
			line("- %s", strings.Join(o.UnparsedRemarks, " "))
		}
	}
	b.WriteString("METAR: " + o.Code)
	return b.String()
}

// formatted drops the error of a conversion to a unit that is always legal.
func formatted(s string, _ error) string {
	return s
}
