package metar

import (
	"regexp"
	"strings"
)

// Group patterns. Each is anchored at the start of the remaining text and
// consumes the trailing whitespace that separates it from the next group.
var (
	typeRe     = regexp.MustCompile(`^(?P<type>METAR|SPECI)\s+`)
	corRe      = regexp.MustCompile(`^(?P<cor>COR)\s+`)
	stationRe  = regexp.MustCompile(`^(?P<station>[A-Z][A-Z0-9]{3})\s+`)
	timeRe     = regexp.MustCompile(`^(?P<day>\d\d)(?P<hour>\d\d)(?P<min>\d\d)Z?\s+`)
	modifierRe = regexp.MustCompile(`^(?P<mod>AUTO|COR AUTO|FINO|NIL|TEST|CORR?|RTD|CC[A-G])\s+`)

	windRe = regexp.MustCompile(`^(?P<dir>[\dO]{3}|[0O]|///|MMM|VRB)` +
		`(?P<speed>P?[\dO]{2,3}|[/M]{2,3})` +
		`(G(?P<gust>P?(\d{1,3}|[/M]{1,3})))?` +
		`(?P<units>KTS?|LT|K|T|KMH|MPS)?` +
		`(\s+(?P<varfrom>\d\d\d)V(?P<varto>\d\d\d))?\s+`)

	visibilityRe = regexp.MustCompile(`^(?P<vis>(?P<dist>(M|P)?\d\d\d\d|////)(?P<dir>[NSEW][EW]?|NDV)?|` +
		`(?P<distu>(M|P)?(\d+|\d\d?/\d\d?|\d+\s+\d/\d))(?P<units>SM|KM|M|U)|CAVOK)\s+`)

	runwayRe = regexp.MustCompile(`^(RVRNO|R(?P<name>\d\d(RR?|LL?|C)?)/(?P<low>(M|P)?(\d\d\d\d|/{4}))` +
		`(V(?P<high>(M|P)?\d\d\d\d))?/*(?P<unit>FT)?[/NDU]*)\s+`)

	weatherRe = regexp.MustCompile(`^(?P<int>(-|\+|VC)*)` +
		`(?P<desc>(MI|PR|BC|DR|BL|SH|TS|FZ)+)?` +
		`(?P<prec>(DZ|RA|SN|SG|IC|PL|GR|GS|UP|/)*)` +
		`(?P<obsc>BR|FG|FU|VA|DU|SA|HZ|PY)?` +
		`(?P<other>PO|SQ|FC|SS|DS|NSW|/+)?` +
		`(?P<int2>[-+])?\s+`)

	skyRe = regexp.MustCompile(`^(?P<cover>VV|CLR|SKC|SCK|NSC|NCD|BKN|SCT|FEW|[O0]VC|///)` +
		`(?P<height>[\dO]{2,4}|///)?(?P<cloud>([A-Z][A-Z]+|///))?\s+`)

	tempRe = regexp.MustCompile(`^(?P<temp>(M|-)?\d{1,2}|//|XX|MM)/(?P<dewpt>(M|-)?\d{1,2}|//|XX|MM)?\s+`)

	pressRe = regexp.MustCompile(`^(?P<unit>A|Q|QNH)?(?P<press>[\dO]{3,4}|////)(?P<unit2>INS)?\s+`)

	seaLevelRe = regexp.MustCompile(`^SLP(?P<press>\d\d\d)\s+`)

	recentRe = regexp.MustCompile(`^RE(?P<desc>MI|PR|BC|DR|BL|SH|TS|FZ)?` +
		`(?P<prec>(DZ|RA|SN|SG|IC|PL|GR|GS|UP)*)?` +
		`(?P<obsc>BR|FG|FU|VA|DU|SA|HZ|PY)?(?P<other>PO|SQ|FC|SS|DS)?\s+`)

	windshearRe = regexp.MustCompile(`^(WS\s+)?(ALL\s+RWY|R(WY)?(?P<name>\d\d(RR?|L?|C)?))\s+`)

	colorRe = regexp.MustCompile(`^(?P<color>(BLACK)?(BLU|GRN|WHT|RED)\+?(/?(BLACK)?(BLU|GRN|WHT|RED)\+?)*)\s+`)

	runwayStateRe = regexp.MustCompile(`^((?P<snoclo>R/SNOCLO)|` +
		`((?P<name>\d\d)|R(?P<namenew>\d\d(RR?|LL?|C)?)/?)` +
		`((?P<special>SNOCLO|CLRD(\d\d|//))|` +
		`(?P<deposit>\d|/)(?P<extent>\d|/)(?P<depth>\d\d|//)(?P<friction>\d\d|//)))\s+`)

	trendRe     = regexp.MustCompile(`^(?P<trend>TEMPO|BECMG|FCST|NOSIG)\s+`)
	trendTimeRe = regexp.MustCompile(`^(?P<when>FM|TL|AT)(?P<hour>\d\d)(?P<min>\d\d)\s+`)
	remarkRe    = regexp.MustCompile(`^(RMKS?|NOSPECI|NOSIG)\s+`)

	autoRe       = regexp.MustCompile(`^AO(?P<type>\d)\s+`)
	peakWindRe   = regexp.MustCompile(`^P[A-Z]\s+WND\s+(?P<dir>\d\d\d)(?P<speed>P?\d\d\d?)/(?P<hour>\d\d)?(?P<min>\d\d)\s+`)
	windShiftRe  = regexp.MustCompile(`^WSHFT\s+(?P<hour>\d\d)?(?P<min>\d\d)(\s+(?P<front>FROPA))?\s+`)
	precip1hrRe  = regexp.MustCompile(`^P(?P<precip>\d\d\d\d)\s+`)
	precip24hRe  = regexp.MustCompile(`^(?P<type>6|7)(?P<precip>\d\d\d\d)\s+`)
	press3hrRe   = regexp.MustCompile(`^5(?P<tend>[0-8])(?P<press>\d\d\d)\s+`)
	temp1hrRe    = regexp.MustCompile(`^T(?P<tsign>0|1)(?P<temp>\d\d\d)((?P<dsign>0|1)(?P<dewpt>\d\d\d))?\s+`)
	temp6hrRe    = regexp.MustCompile(`^(?P<type>1|2)(?P<sign>0|1)(?P<temp>\d\d\d)\s+`)
	temp24hrRe   = regexp.MustCompile(`^4(?P<smaxt>0|1)(?P<maxt>\d\d\d)(?P<smint>0|1)(?P<mint>\d\d\d)\s+`)
	snowDepthRe  = regexp.MustCompile(`^4/(?P<depth>\d\d\d)\s+`)
	iceRe        = regexp.MustCompile(`^I(?P<hours>[136])(?P<depth>\d\d\d)\s+`)
	lightningRe  = regexp.MustCompile(`^((?P<freq>OCNL|FRQ|CONS)\s+)?LTG(?P<type>(IC|CC|CG|CA)*)` +
		`(\s+(?P<loc>(OHD|VC|DSNT\s+|\s+AND\s+|[NSEW][EW]?(-[NSEW][EW]?)*)+))?\s+`)
	tsLocationRe = regexp.MustCompile(`^TS(\s+(?P<loc>(OHD|VC|DSNT\s+|\s+AND\s+|[NSEW][EW]?(-[NSEW][EW]?)*)+))?` +
		`(\s+MOV\s+(?P<dir>[NSEW][EW]?))?\s+`)

	tokenRe   = regexp.MustCompile(`^(?P<group>\S+)\s+`)
	missingRe = regexp.MustCompile(`^[M/]+$`)
)

// captures maps named groups of a match to the text they matched. Groups that
// did not take part in the match are absent.
type captures map[string]string

// wholeMatch is the captures key holding the entire matched group.
const wholeMatch = "_"

// update is a field change produced by a handler. The decoder applies updates
// in match order.
type update func(*Observation)

// handler turns the captures of one group into an update. It must not modify
// e.obs directly; the observation is context (station id, time, earlier
// groups) for decoding the current group.
type handler func(e *env, c captures) (update, error)

// env is what a handler may read while decoding a group.
type env struct {
	obs  *Observation
	opts *options
}

// rule is one entry of a grammar table.
type rule struct {
	name       string
	re         *regexp.Regexp
	handle     handler
	repeatable bool

	// startsTrend switches the decoder into trend capture.
	startsTrend bool
	// startsRemarks ends the body and hands the rest to the remark table.
	startsRemarks bool
}

// match tries the rule at the start of s. Zero-length matches never count.
func (r rule) match(s string) (string, captures, bool) {
	loc := r.re.FindStringSubmatchIndex(s)
	if loc == nil || loc[0] != 0 || loc[1] == 0 {
		return "", nil, false
	}
	c := captures{wholeMatch: strings.TrimSpace(s[:loc[1]])}
	for i, name := range r.re.SubexpNames() {
		if name == "" || loc[2*i] < 0 {
			continue
		}
		c[name] = s[loc[2*i]:loc[2*i+1]]
	}
	return s[:loc[1]], c, true
}

// bodyRules is the ordered grammar of the report body. Wind and visibility
// appear twice because some stations report them after the sky groups.
var bodyRules = []rule{
	{name: "type", re: typeRe, handle: handleType},
	{name: "correction", re: corRe, handle: handleCorrection},
	{name: "station", re: stationRe, handle: handleStation},
	{name: "time", re: timeRe, handle: handleTime},
	{name: "modifier", re: modifierRe, handle: handleModifier},
	{name: "wind", re: windRe, handle: handleWind},
	{name: "visibility", re: visibilityRe, handle: handleVisibility, repeatable: true},
	{name: "runway", re: runwayRe, handle: handleRunway, repeatable: true},
	{name: "weather", re: weatherRe, handle: handleWeather, repeatable: true},
	{name: "sky", re: skyRe, handle: handleSky, repeatable: true},
	{name: "wind", re: windRe, handle: handleWind},
	{name: "visibility", re: visibilityRe, handle: handleVisibility, repeatable: true},
	{name: "temperature", re: tempRe, handle: handleTemperature},
	{name: "pressure", re: pressRe, handle: handlePressure, repeatable: true},
	{name: "sea level pressure", re: seaLevelRe, handle: handleSeaLevelPressure},
	{name: "recent weather", re: recentRe, handle: handleRecentWeather, repeatable: true},
	{name: "windshear", re: windshearRe, handle: handleWindshear, repeatable: true},
	{name: "color", re: colorRe, handle: handleColor, repeatable: true},
	{name: "runway state", re: runwayStateRe, handle: handleRunwayState, repeatable: true},
	{name: "trend", re: trendRe, handle: handleTrend, repeatable: true, startsTrend: true},
	{name: "remarks", re: remarkRe, handle: handleRemarkMarker, startsRemarks: true},
}

// trendRules recognize the groups of a trend forecast. Matches are kept
// verbatim rather than decoded.
var trendRules = []rule{
	{name: "trend time", re: trendTimeRe, repeatable: true},
	{name: "trend wind", re: windRe, repeatable: true},
	{name: "trend visibility", re: visibilityRe, repeatable: true},
	{name: "trend weather", re: weatherRe, repeatable: true},
	{name: "trend sky", re: skyRe, repeatable: true},
	{name: "trend color", re: colorRe, repeatable: true},
}

// remarkRules are tried in order on each remark; the first match wins and
// the scan starts over from the top. The final rule accepts any token.
var remarkRules = []rule{
	{name: "automatic station", re: autoRe, handle: handleAutoRemark},
	{name: "sea level pressure", re: seaLevelRe, handle: handleSeaLevelPressure},
	{name: "peak wind", re: peakWindRe, handle: handlePeakWindRemark},
	{name: "wind shift", re: windShiftRe, handle: handleWindShiftRemark},
	{name: "lightning", re: lightningRe, handle: handleLightningRemark},
	{name: "thunderstorm location", re: tsLocationRe, handle: handleThunderstormRemark},
	{name: "hourly temperature", re: temp1hrRe, handle: handleTemp1hrRemark},
	{name: "hourly precipitation", re: precip1hrRe, handle: handlePrecip1hrRemark},
	{name: "precipitation", re: precip24hRe, handle: handlePrecip24hrRemark},
	{name: "pressure tendency", re: press3hrRe, handle: handlePress3hrRemark},
	{name: "6-hour temperature", re: temp6hrRe, handle: handleTemp6hrRemark},
	{name: "24-hour temperature", re: temp24hrRe, handle: handleTemp24hrRemark},
	{name: "snow depth", re: snowDepthRe, handle: handleSnowDepthRemark},
	{name: "ice accretion", re: iceRe, handle: handleIceAccretionRemark},
	{name: "unparsed remark", re: tokenRe, handle: handleUnparsedRemark},
}
