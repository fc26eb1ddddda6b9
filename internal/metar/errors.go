package metar

import (
	"errors"
	"fmt"
)

var (
	// ErrUnparsedGroups is wrapped when strict decoding leaves body groups unread.
	ErrUnparsedGroups = errors.New("unparsed groups in body")
	// ErrMissingStation is wrapped when a report has no station identifier.
	ErrMissingStation = errors.New("missing station identifier")
	// ErrMissingTime is wrapped when groups follow the station but no time does.
	ErrMissingTime = errors.New("missing observation time")
)

// ParserError describes why a report could not be decoded.
type ParserError struct {
	// Group names the grammar rule that failed, or the check that rejected
	// the report ("body", "station", "time").
	Group string
	// Remaining is the unconsumed text at the point of failure.
	Remaining string
	// Code is the full report as given.
	Code string
	Err  error
}

func (e *ParserError) Error() string {
	if e.Remaining != "" {
		return fmt.Sprintf("%s failed while processing %q at %q: %v", e.Group, e.Code, e.Remaining, e.Err)
	}
	return fmt.Sprintf("%s failed while processing %q: %v", e.Group, e.Code, e.Err)
}

func (e *ParserError) Unwrap() error { return e.Err }
