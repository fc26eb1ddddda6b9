// Package units implements the dimensioned values that appear in weather
// reports: temperature, pressure, speed, distance, precipitation and compass
// direction.
//
// Every value remembers the unit it was reported in and converts on demand.
// Speeds, distances and precipitation amounts may also carry a qualifier
// (reported as "P" or "M" in METAR) meaning the true value is greater or less
// than the stored magnitude.
//
// Unit codes are matched case-insensitively. An unknown unit code is always
// reported as a *UnitsError and is never silently replaced.
package units
