// Package metar decodes METAR and SPECI surface weather reports.
//
// # Report Layout
//
// A report is a sequence of space-separated groups in a conventional order:
//
//	METAR KEWR 111851Z VRB03G19KT 2SM R04R/3000VP6000FT TSRA BR FEW015 BKN040CB
//	    BKN065 OVC200 22/22 A2987 RMK AO2 PK WND 29028/1817 WSHFT 1812 TSB05RAB22
//	    SLP114 FRQ LTGICCCCG TS OHD AND NW-N-E MOV NE P0013 T02270215
//
// The body runs from the optional report type to the optional "RMK" marker;
// everything after the marker is free-form remarks, of which the common US
// forms are decoded. Trend forecasts (TEMPO, BECMG, NOSIG) that appear
// before the remarks are kept verbatim.
//
// # Decoding
//
// Decode walks an ordered table of group rules. Each rule is tried at the
// current position; a match hands its named captures to the rule's handler,
// which returns an update to the Observation. Repeatable rules (visibility,
// runway range, weather, sky, ...) are retried until they stop matching.
// When no rule in the table accepts the next group, the group is set aside
// as unparsed and the walk resumes at the first rule that failed since the
// last match, so a single garbled group does not lose the rest of the report.
//
// Day-of-month times carry no month or year. Unless they are supplied with
// WithMonth and WithYear they are inferred from the clock on the assumption
// that the report is not from the future.
//
// # Conventions
//
//	Wind:        dddssGggKT, VRB for variable, dddVddd for a direction range
//	Visibility:  metres (9999 = 10 km or more), statute miles with fractions,
//	             M/P prefixes for less/greater than, CAVOK
//	Temperature: M for below zero, e.g. M05/M10
//	Altimeter:   A2992 (inches x 100) or Q1013 (hPa)
//	Remarks:     T groups refine temperature to tenths; 6/7 groups are
//	             precipitation in hundredths of an inch; SLPppp is sea-level
//	             pressure in tenths of hPa without the leading 9 or 10
package metar
