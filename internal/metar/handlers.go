package metar

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/couchcryptid/metar-etl/internal/units"
)

func handleType(_ *env, c captures) (update, error) {
	typ := c["type"]
	return func(o *Observation) { o.Type = typ }, nil
}

func handleCorrection(_ *env, _ captures) (update, error) {
	return func(o *Observation) { o.Correction = "COR" }, nil
}

func handleStation(_ *env, c captures) (update, error) {
	id := c["station"]
	return func(o *Observation) { o.StationID = id }, nil
}

// handleTime resolves the day-hour-minute group into a full UTC time. A month
// or year that was not supplied is inferred from the clock: reports are never
// from the future, so a day later than today belongs to the previous month.
func handleTime(e *env, c captures) (update, error) {
	day, _ := strconv.Atoi(c["day"])
	hour, _ := strconv.Atoi(c["hour"])
	minute, _ := strconv.Atoi(c["min"])

	now := e.opts.clock.Now().UTC()
	month := e.opts.month
	if month == 0 {
		month = now.Month()
		if day > now.Day() {
			month--
			if month == 0 {
				month = time.December
			}
		}
	}
	year := e.opts.year
	if year == 0 {
		year = now.Year()
		if month > now.Month() || (month == now.Month() && day > now.Day()) {
			year--
		}
	}

	if hour > 23 || minute > 59 {
		return nil, fmt.Errorf("time of day out of range: %02d:%02d", hour, minute)
	}
	if day < 1 || day > daysIn(year, month) {
		return nil, fmt.Errorf("day %d is out of range for %s %d", day, month, year)
	}

	t := time.Date(year, month, day, hour, minute, 0, 0, time.UTC)
	cycle := hour
	if minute >= 45 {
		cycle = (hour + 1) % 24
	}
	return func(o *Observation) {
		o.Time = t
		o.Cycle = cycle
	}, nil
}

func daysIn(year int, month time.Month) int {
	return time.Date(year, month+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

func handleModifier(_ *env, c captures) (update, error) {
	mod := c["mod"]
	switch mod {
	case "CORR":
		mod = "COR"
	case "NIL", "FINO":
		mod = "NO DATA"
	}
	return func(o *Observation) { o.Modifier = mod }, nil
}

// windUnit maps a wind unit code to a speed unit. Reports without a unit are
// knots at US stations and metres per second elsewhere.
func windUnit(code, station string) units.SpeedUnit {
	switch code {
	case "KT", "KTS", "K", "T", "LT":
		return units.Knots
	case "KMH":
		return units.KilometersPerHour
	case "MPS":
		return units.MetersPerSecond
	}
	if len(station) == 3 || strings.HasPrefix(station, "K") {
		return units.Knots
	}
	return units.MetersPerSecond
}

func handleWind(e *env, c captures) (update, error) {
	unit := windUnit(c["units"], e.obs.StationID)

	var dir *units.Direction
	if raw := strings.ReplaceAll(c["dir"], "O", "0"); raw != "VRB" && raw != "///" && raw != "MMM" {
		d, err := units.ParseDirection(raw)
		if err != nil {
			return nil, err
		}
		dir = &d
	}

	speed, err := optionalSpeed(strings.ReplaceAll(c["speed"], "O", "0"), unit)
	if err != nil {
		return nil, err
	}
	gust, err := optionalSpeed(c["gust"], unit)
	if err != nil {
		return nil, err
	}

	var from, to *units.Direction
	if c["varfrom"] != "" {
		f, err := units.ParseDirection(c["varfrom"])
		if err != nil {
			return nil, err
		}
		t, err := units.ParseDirection(c["varto"])
		if err != nil {
			return nil, err
		}
		from, to = &f, &t
	}

	return func(o *Observation) {
		o.WindDir = dir
		o.WindSpeed = speed
		o.WindGust = gust
		o.WindDirFrom = from
		o.WindDirTo = to
	}, nil
}

// optionalSpeed parses raw unless it is empty or a missing-value marker.
func optionalSpeed(raw string, unit units.SpeedUnit) (*units.Speed, error) {
	if raw == "" || missingRe.MatchString(raw) {
		return nil, nil
	}
	s, err := units.ParseSpeed(raw, unit)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// handleVisibility decodes prevailing visibility. A second visibility group
// in the same report is the maximum visibility.
func handleVisibility(e *env, c captures) (update, error) {
	var (
		text = "10000"
		unit = units.Meters
		dir  string
	)
	switch {
	case c["dist"] == "////":
		return nil, nil
	case c["dist"] != "":
		text = c["dist"]
		if c["dir"] != "NDV" {
			dir = c["dir"]
		}
	case c["distu"] != "":
		text = c["distu"]
		if u := c["units"]; u != "U" {
			unit = units.DistanceUnit(u)
		}
	}

	var (
		vis units.Distance
		err error
	)
	if text == "9999" {
		vis, err = units.NewDistance(10000, unit, units.GreaterThan)
	} else {
		vis, err = units.ParseDistance(text, unit)
	}
	if err != nil {
		return nil, err
	}

	var visDir *units.Direction
	if dir != "" {
		d, err := units.ParseDirection(dir)
		if err != nil {
			return nil, err
		}
		visDir = &d
	}

	if e.obs.Vis != nil {
		return func(o *Observation) {
			o.MaxVis = &vis
			if visDir != nil {
				o.MaxVisDir = visDir
			}
		}, nil
	}
	return func(o *Observation) {
		o.Vis = &vis
		o.VisDir = visDir
	}, nil
}

func handleRunway(_ *env, c captures) (update, error) {
	name := c["name"]
	if name == "" || strings.Contains(c["low"], "////") {
		return nil, nil
	}
	unit := units.Meters
	if c["unit"] == "FT" {
		unit = units.Feet
	}
	low, err := units.ParseDistance(c["low"], unit)
	if err != nil {
		return nil, err
	}
	high := low
	if c["high"] != "" {
		if high, err = units.ParseDistance(c["high"], unit); err != nil {
			return nil, err
		}
	}
	rr := RunwayRange{Runway: name, Low: low, High: high}
	return func(o *Observation) { o.Runway = append(o.Runway, rr) }, nil
}

func handleWeather(_ *env, c captures) (update, error) {
	intensity := c["int"]
	if intensity == "" {
		intensity = c["int2"]
	}
	w := WeatherGroup{
		Intensity:     intensity,
		Descriptor:    c["desc"],
		Precipitation: c["prec"],
		Obscuration:   c["obsc"],
		Other:         c["other"],
	}
	return func(o *Observation) { o.Weather = append(o.Weather, w) }, nil
}

func handleSky(_ *env, c captures) (update, error) {
	cover := c["cover"]
	switch cover {
	case "SKC", "SCK":
		cover = "CLR"
	case "0VC":
		cover = "OVC"
	}
	cloud := c["cloud"]
	if cloud == "///" {
		cloud = ""
	}

	sky := SkyCondition{Cover: cover, CloudType: cloud}
	if h := strings.ReplaceAll(c["height"], "O", "0"); h != "" && h != "///" {
		hundreds, err := strconv.Atoi(h)
		if err != nil {
			return nil, fmt.Errorf("cloud height %q: %w", h, err)
		}
		d, err := units.NewDistance(float64(hundreds*100), units.Feet, units.Exact)
		if err != nil {
			return nil, err
		}
		sky.Height = &d
	}
	return func(o *Observation) { o.Sky = append(o.Sky, sky) }, nil
}

func handleTemperature(_ *env, c captures) (update, error) {
	temp, err := optionalTemperature(c["temp"])
	if err != nil {
		return nil, err
	}
	dewpt, err := optionalTemperature(c["dewpt"])
	if err != nil {
		return nil, err
	}
	return func(o *Observation) {
		o.Temp = temp
		o.Dewpt = dewpt
	}, nil
}

func optionalTemperature(raw string) (*units.Temperature, error) {
	switch raw {
	case "", "//", "XX", "MM":
		return nil, nil
	}
	t, err := units.ParseTemperature(raw, units.Celsius)
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// handlePressure decodes the altimeter setting. Without an explicit unit,
// values above 2500 are hundredths of an inch and anything else is hPa.
func handlePressure(_ *env, c captures) (update, error) {
	raw := strings.ReplaceAll(c["press"], "O", "0")
	if raw == "////" {
		return nil, nil
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return nil, fmt.Errorf("pressure %q: %w", raw, err)
	}

	var p units.Pressure
	switch {
	case c["unit"] == "A" || c["unit2"] == "INS":
		p, err = units.NewPressure(v/100, units.InchesOfMercury)
	case c["unit"] == "Q" || c["unit"] == "QNH":
		p, err = units.NewPressure(v, units.Millibars)
	case v > 2500:
		p, err = units.NewPressure(v/100, units.InchesOfMercury)
	default:
		p, err = units.NewPressure(v, units.Millibars)
	}
	if err != nil {
		return nil, err
	}
	return func(o *Observation) { o.Press = &p }, nil
}

// handleSeaLevelPressure decodes SLPppp: tenths of hPa with the leading 9 or
// 10 omitted.
func handleSeaLevelPressure(_ *env, c captures) (update, error) {
	tenths, err := strconv.Atoi(c["press"])
	if err != nil {
		return nil, err
	}
	v := float64(tenths) / 10
	if v < 50 {
		v += 1000
	} else {
		v += 900
	}
	p, err := units.NewPressure(v, units.Millibars)
	if err != nil {
		return nil, err
	}
	return func(o *Observation) { o.PressSeaLevel = &p }, nil
}

func handleRecentWeather(_ *env, c captures) (update, error) {
	w := WeatherGroup{
		Descriptor:    c["desc"],
		Precipitation: c["prec"],
		Obscuration:   c["obsc"],
		Other:         c["other"],
	}
	return func(o *Observation) { o.Recent = append(o.Recent, w) }, nil
}

func handleWindshear(_ *env, c captures) (update, error) {
	name := c["name"]
	if name == "" {
		name = "ALL"
	}
	return func(o *Observation) { o.Windshear = append(o.Windshear, name) }, nil
}

func handleColor(_ *env, c captures) (update, error) {
	color := c["color"]
	return func(o *Observation) { o.Colors = append(o.Colors, color) }, nil
}

func handleRunwayState(_ *env, c captures) (update, error) {
	rs := RunwayState{
		Runway:   c["name"],
		Deposit:  c["deposit"],
		Extent:   c["extent"],
		Depth:    c["depth"],
		Friction: c["friction"],
		Special:  c["special"],
		Raw:      c[wholeMatch],
	}
	if rs.Runway == "" {
		rs.Runway = c["namenew"]
	}
	if c["snoclo"] != "" {
		rs.Special = "SNOCLO"
	}
	return func(o *Observation) { o.RunwayStates = append(o.RunwayStates, rs) }, nil
}

func handleTrend(_ *env, c captures) (update, error) {
	trend := c["trend"]
	return func(o *Observation) { o.TrendGroups = append(o.TrendGroups, trend) }, nil
}

func handleRemarkMarker(_ *env, _ captures) (update, error) {
	return nil, nil
}
