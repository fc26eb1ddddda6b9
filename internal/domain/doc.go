// Package domain models the messages that flow through the METAR ETL
// pipeline.
//
// # Source Messages
//
// Collectors publish one report per Kafka message, either as a bare report
// line:
//
//	METAR KEWR 111851Z VRB03G19KT 2SM R04R/3000VP6000FT TSRA BR FEW015 BKN040CB 18/16 A2992
//
// or as a JSON envelope carrying decoding hints:
//
//	{"raw_text": "KEWR 111851Z ...", "month": 6, "year": 2024, "utc_offset_minutes": -240}
//
// A report's time group only carries day, hour and minute. Month and year
// come from the envelope when present, and are otherwise inferred relative
// to the Kafka message timestamp: a report is never newer than the message
// that carried it, so a day later than the timestamp's day belongs to the
// previous month. See [RawReport.DecodeOptions].
//
// # Output Records
//
// [BuildWeatherReport] flattens a decoded observation into canonical units:
//
//	temperature  degrees Celsius
//	wind         knots, degrees true
//	visibility   metres
//	cloud base   feet
//	pressure     hPa
//	precipitation and snow depth  inches
//
// Values are rounded to two decimals. Qualifiers such as "greater than" are
// kept only in the rendered summary.
//
// Flight category follows the FAA ceiling and visibility thresholds (LIFR,
// IFR, MVFR, VFR). The ceiling is the lowest broken, overcast or vertical
// visibility layer.
//
// # ID Generation
//
// Report IDs are deterministic SHA-256 hashes of station|time|type|code,
// prefixed with the lower-cased station id. Replaying a report yields the
// same ID, so downstream consumers can upsert idempotently. See [generateID].
package domain
