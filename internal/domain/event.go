package domain

import (
	"context"
	"time"
)

// RawRecord is the JSON envelope published by upstream collectors. Only
// RawText is required; the hints resolve the month and year the report's
// day-of-month refers to and the station's UTC offset.
type RawRecord struct {
	RawText          string `json:"raw_text"`
	Month            int    `json:"month,omitempty"`
	Year             int    `json:"year,omitempty"`
	UTCOffsetMinutes *int   `json:"utc_offset_minutes,omitempty"`
}

// RawEvent represents an unprocessed message from the source topic.
type RawEvent struct {
	Key       []byte
	Value     []byte
	Headers   map[string]string
	Topic     string
	Partition int
	Offset    int64
	Timestamp time.Time
	Commit    func(ctx context.Context) error
}

// RawReport is a report ready for decoding: the code plus whatever context
// the envelope or the message carried.
type RawReport struct {
	Code      string
	Month     time.Month
	Year      int
	UTCOffset *time.Duration

	// ReceivedAt is the message timestamp, zero when unknown.
	ReceivedAt time.Time
}

// Measurements holds the decoded values in canonical units. Absent values
// are omitted from the JSON.
type Measurements struct {
	TemperatureC        *float64 `json:"temperature_c,omitempty"`
	DewPointC           *float64 `json:"dew_point_c,omitempty"`
	WindDirectionDeg    *float64 `json:"wind_direction_deg,omitempty"`
	WindSpeedKt         *float64 `json:"wind_speed_kt,omitempty"`
	WindGustKt          *float64 `json:"wind_gust_kt,omitempty"`
	WindVariableFromDeg *float64 `json:"wind_variable_from_deg,omitempty"`
	WindVariableToDeg   *float64 `json:"wind_variable_to_deg,omitempty"`
	VisibilityM         *float64 `json:"visibility_m,omitempty"`
	MaxVisibilityM      *float64 `json:"max_visibility_m,omitempty"`
	CeilingFt           *float64 `json:"ceiling_ft,omitempty"`
	AltimeterHPa        *float64 `json:"altimeter_hpa,omitempty"`
	SeaLevelPressureHPa *float64 `json:"sea_level_pressure_hpa,omitempty"`
	Precip1hrIn         *float64 `json:"precip_1hr_in,omitempty"`
	Precip3hrIn         *float64 `json:"precip_3hr_in,omitempty"`
	Precip6hrIn         *float64 `json:"precip_6hr_in,omitempty"`
	Precip24hrIn        *float64 `json:"precip_24hr_in,omitempty"`
	SnowDepthIn         *float64 `json:"snow_depth_in,omitempty"`
}

// SkyLayer is one decoded cloud layer.
type SkyLayer struct {
	Cover     string   `json:"cover"`
	BaseFt    *float64 `json:"base_ft,omitempty"`
	CloudType string   `json:"cloud_type,omitempty"`
}

// WeatherReport is the flattened, serializable form of a decoded report
// destined for the sink topic.
type WeatherReport struct {
	ID               string       `json:"id"`
	Station          string       `json:"station"`
	ReportType       string       `json:"report_type"`
	Correction       string       `json:"correction,omitempty"`
	Modifier         string       `json:"modifier,omitempty"`
	ObservedAt       time.Time    `json:"observed_at"`
	TimeBucket       time.Time    `json:"time_bucket"`
	Cycle            int          `json:"cycle"`
	UTCOffsetMinutes int          `json:"utc_offset_minutes"`
	FlightCategory   string       `json:"flight_category,omitempty"`
	Measurements     Measurements `json:"measurements"`
	Weather          []string     `json:"weather,omitempty"`
	RecentWeather    []string     `json:"recent_weather,omitempty"`
	Sky              []SkyLayer   `json:"sky,omitempty"`
	RunwayRange      string       `json:"runway_visual_range,omitempty"`
	RunwayState      string       `json:"runway_state,omitempty"`
	Windshear        []string     `json:"windshear,omitempty"`
	Trend            string       `json:"trend,omitempty"`
	Remarks          []string     `json:"remarks,omitempty"`
	Summary          string       `json:"summary"`
	DecodeCompleted  bool         `json:"decode_completed"`
	UnparsedGroups   []string     `json:"unparsed_groups,omitempty"`
	UnparsedRemarks  []string     `json:"unparsed_remarks,omitempty"`
	Warnings         []string     `json:"warnings,omitempty"`
	RawText          string       `json:"raw_text"`
	ProcessedAt      time.Time    `json:"processed_at"`
}
