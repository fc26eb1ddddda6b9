package metar

import (
	"time"

	"github.com/couchcryptid/metar-etl/internal/units"
)

// WeatherGroup is one present or recent weather group split into its coded
// parts, e.g. "-SHRA" is {Intensity: "-", Descriptor: "SH", Precipitation: "RA"}.
type WeatherGroup struct {
	Intensity     string
	Descriptor    string
	Precipitation string
	Obscuration   string
	Other         string
}

// SkyCondition is one cloud layer. Height is nil when not reported.
type SkyCondition struct {
	Cover     string
	Height    *units.Distance
	CloudType string
}

// RunwayRange is a runway visual range. High equals Low unless the range
// varied during the observation period.
type RunwayRange struct {
	Runway string
	Low    units.Distance
	High   units.Distance
}

// Variable reports whether the visual range was reported as a span.
func (r RunwayRange) Variable() bool {
	return r.Low != r.High
}

// RunwayState is a runway surface condition group. Codes are kept as
// reported; Special holds SNOCLO or CLRDnn forms.
type RunwayState struct {
	Runway   string
	Deposit  string
	Extent   string
	Depth    string
	Friction string
	Special  string
	Raw      string
}

// Observation is a decoded METAR or SPECI report. Absent groups leave their
// fields nil or empty; absence is distinct from a zero value.
type Observation struct {
	Code       string
	Type       string
	Correction string
	Modifier   string
	StationID  string
	Time       time.Time
	Cycle      int
	UTCOffset  time.Duration

	WindDir     *units.Direction
	WindSpeed   *units.Speed
	WindGust    *units.Speed
	WindDirFrom *units.Direction
	WindDirTo   *units.Direction

	Vis       *units.Distance
	VisDir    *units.Direction
	MaxVis    *units.Distance
	MaxVisDir *units.Direction

	Temp  *units.Temperature
	Dewpt *units.Temperature
	Press *units.Pressure

	Runway       []RunwayRange
	Weather      []WeatherGroup
	Recent       []WeatherGroup
	Sky          []SkyCondition
	Windshear    []string
	Colors       []string
	RunwayStates []RunwayState
	TrendGroups  []string

	WindSpeedPeak *units.Speed
	WindDirPeak   *units.Direction
	PeakWindTime  time.Time
	WindShiftTime time.Time
	Frontal       bool

	MaxTemp6hr  *units.Temperature
	MinTemp6hr  *units.Temperature
	MaxTemp24hr *units.Temperature
	MinTemp24hr *units.Temperature

	PressSeaLevel *units.Pressure

	Precip1hr  *units.Precipitation
	Precip3hr  *units.Precipitation
	Precip6hr  *units.Precipitation
	Precip24hr *units.Precipitation

	SnowDepth       *units.Distance
	IceAccretion1hr *units.Precipitation
	IceAccretion3hr *units.Precipitation
	IceAccretion6hr *units.Precipitation

	Remarks         []string
	UnparsedGroups  []string
	UnparsedRemarks []string

	// Warnings records failures that were tolerated in non-strict mode.
	Warnings []string
}

// DecodeCompleted reports whether every body group was understood.
// Unparsed remarks do not count against completeness.
func (o *Observation) DecodeCompleted() bool {
	return len(o.UnparsedGroups) == 0
}

// LocalTime returns the observation time shifted by the station's UTC offset.
func (o *Observation) LocalTime() time.Time {
	if o.Time.IsZero() {
		return o.Time
	}
	return o.Time.In(time.FixedZone("", int(o.UTCOffset/time.Second)))
}
