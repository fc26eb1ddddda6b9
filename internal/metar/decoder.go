package metar

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
)

type options struct {
	month     time.Month
	year      int
	utcOffset *time.Duration
	strict    bool
	logger    *slog.Logger
	clock     clockwork.Clock
}

// Option configures a single Decode call.
type Option func(*options)

// WithMonth fixes the month of the observation instead of inferring it from
// the current date.
func WithMonth(m time.Month) Option {
	return func(o *options) { o.month = m }
}

// WithYear fixes the year of the observation instead of inferring it.
func WithYear(y int) Option {
	return func(o *options) { o.year = y }
}

// WithUTCOffset records the station's offset from UTC. Without it the offset
// of the host's local zone is used.
func WithUTCOffset(d time.Duration) Option {
	return func(o *options) { o.utcOffset = &d }
}

// WithStrict selects strict decoding (the default). Non-strict decoding never
// returns an error for a non-empty report; problems are logged and listed in
// Observation.Warnings instead.
func WithStrict(strict bool) Option {
	return func(o *options) { o.strict = strict }
}

// WithLogger sets the logger used for group tracing (Debug) and tolerated
// problems (Warn).
func WithLogger(l *slog.Logger) Option {
	return func(o *options) {
		if l != nil {
			o.logger = l
		}
	}
}

// WithReferenceTime infers the month and year relative to t instead of the
// current time, e.g. the time a report was received.
func WithReferenceTime(t time.Time) Option {
	return func(o *options) {
		if !t.IsZero() {
			o.clock = clockwork.NewFakeClockAt(t)
		}
	}
}

// WithClock sets the time source used to infer the month and year.
func WithClock(c clockwork.Clock) Option {
	return func(o *options) {
		if c != nil {
			o.clock = c
		}
	}
}

// state is a step of the decoding walk.
type state int

const (
	// stateScanning tries body rules in order from the current index.
	stateScanning state = iota
	// stateResync sets aside one unrecognized token and rewinds to the first
	// rule that failed since the last match.
	stateResync
	// stateRemarks applies the remark rules to the rest of the report.
	stateRemarks
	stateDone
)

type decoder struct {
	opts options
	log  *slog.Logger
	code string
	obs  *Observation

	rest        string
	index       int
	firstFailed int
	inTrend     bool
	// failedText is the group whose handler last returned an error.
	failedText string

	sawStation   bool
	afterStation string
	// pastStation is set once any group that belongs after the station
	// has been decoded.
	pastStation bool
}

// Decode parses one METAR or SPECI report.
//
// In strict mode (the default) a report with unrecognized body groups, a
// missing station or time, or a group whose value is out of range is
// rejected with a *ParserError. In non-strict mode the same problems are
// recorded on the returned Observation and decoding keeps whatever it
// managed to read.
func Decode(code string, opts ...Option) (*Observation, error) {
	o := options{
		strict: true,
		logger: slog.New(slog.DiscardHandler),
		clock:  clockwork.NewRealClock(),
	}
	for _, opt := range opts {
		opt(&o)
	}

	d := &decoder{
		opts:        o,
		log:         o.logger,
		code:        code,
		obs:         &Observation{Code: strings.TrimSpace(code), Type: "METAR"},
		rest:        sanitize(code),
		firstFailed: -1,
	}
	if o.utcOffset != nil {
		d.obs.UTCOffset = *o.utcOffset
	} else {
		_, secs := o.clock.Now().Local().Zone()
		d.obs.UTCOffset = time.Duration(secs) * time.Second
	}
	return d.decode()
}

// sanitize trims the report, drops a trailing "=" terminator and appends the
// single space every group pattern expects after itself.
func sanitize(code string) string {
	code = strings.TrimSpace(code)
	code = strings.TrimSpace(strings.TrimSuffix(code, "="))
	if code == "" {
		return ""
	}
	return code + " "
}

func (d *decoder) decode() (*Observation, error) {
	if err := d.walk(); err != nil {
		return nil, err
	}
	if err := d.checkMandatory(); err != nil {
		if d.opts.strict {
			return nil, err
		}
		d.tolerate(err)
	}

	if len(d.obs.UnparsedGroups) > 0 {
		err := &ParserError{
			Group: "body",
			Code:  d.code,
			Err:   fmt.Errorf("%w: %s", ErrUnparsedGroups, strings.Join(d.obs.UnparsedGroups, " ")),
		}
		if d.opts.strict {
			return nil, err
		}
		d.tolerate(err)
	}
	return d.obs, nil
}

func (d *decoder) tolerate(err error) {
	d.log.Warn("metar decode problem", "station", d.obs.StationID, "error", err)
	d.obs.Warnings = append(d.obs.Warnings, err.Error())
}

// walk runs the state machine until the report is consumed. Every transition
// either consumes input or advances the rule index, so the walk terminates.
// In non-strict mode a failing group is set aside as unparsed and the walk
// carries on from the state it failed in.
func (d *decoder) walk() error {
	st := stateScanning
	for st != stateDone {
		cur := st
		var err error
		switch st {
		case stateScanning:
			st, err = d.scan()
		case stateResync:
			st = d.resync()
		case stateRemarks:
			st, err = d.remarks()
		}
		if err != nil {
			if d.opts.strict {
				return err
			}
			d.tolerate(err)
			st = d.skipFailed(cur)
		}
	}
	return nil
}

// skipFailed records the group that failed to decode as unparsed, so the
// report is no longer complete, and resumes after it.
func (d *decoder) skipFailed(resume state) state {
	d.obs.UnparsedGroups = append(d.obs.UnparsedGroups, strings.TrimSpace(d.failedText))
	d.rest = d.rest[len(d.failedText):]
	d.failedText = ""
	d.firstFailed = -1
	if d.rest == "" {
		return stateDone
	}
	return resume
}

func (d *decoder) scan() (state, error) {
	for ; d.index < len(bodyRules); d.index++ {
		if d.rest == "" {
			return stateDone, nil
		}
		r := bodyRules[d.index]
		settled := false
		for {
			text, c, ok := r.match(d.rest)
			if !ok {
				break
			}
			d.firstFailed = -1
			if err := d.apply(r, c); err != nil {
				d.failedText = text
				return stateDone, err
			}
			d.rest = d.rest[len(text):]
			switch r.re {
			case typeRe, corRe:
			case stationRe:
				d.sawStation = true
				d.afterStation = d.rest
			default:
				d.pastStation = true
			}
			if r.startsRemarks {
				return stateRemarks, nil
			}
			if r.startsTrend {
				d.inTrend = true
			}
			if d.inTrend {
				d.captureTrend()
			}
			if !r.repeatable {
				settled = true
				break
			}
		}
		if !settled && d.firstFailed < 0 {
			d.firstFailed = d.index
		}
	}
	if d.rest == "" {
		return stateDone, nil
	}
	return stateResync, nil
}

func (d *decoder) resync() state {
	if d.obs.Press != nil {
		d.log.Debug("treating rest of report as remarks", "rest", strings.TrimSpace(d.rest))
		return stateRemarks
	}
	tok := rule{name: "unparsed", re: tokenRe}
	text, c, ok := tok.match(d.rest)
	if !ok {
		d.rest = ""
		return stateDone
	}
	d.log.Debug("unparsed group", "group", c["group"])
	d.obs.UnparsedGroups = append(d.obs.UnparsedGroups, c["group"])
	d.rest = d.rest[len(text):]
	d.index = max(d.firstFailed, 0)
	d.firstFailed = -1
	return stateScanning
}

// captureTrend consumes the forecast groups that follow a trend keyword,
// keeping each one verbatim.
func (d *decoder) captureTrend() {
	for _, r := range trendRules {
		for {
			text, c, ok := r.match(d.rest)
			if !ok {
				break
			}
			d.log.Debug("trend group", "rule", r.name, "text", c[wholeMatch])
			d.obs.TrendGroups = append(d.obs.TrendGroups, c[wholeMatch])
			d.rest = d.rest[len(text):]
		}
	}
}

func (d *decoder) remarks() (state, error) {
	for d.rest != "" {
		matched := false
		for _, r := range remarkRules {
			text, c, ok := r.match(d.rest)
			if !ok {
				continue
			}
			if err := d.apply(r, c); err != nil {
				d.failedText = text
				return stateDone, err
			}
			d.rest = d.rest[len(text):]
			matched = true
			break
		}
		if !matched {
			break
		}
	}
	return stateDone, nil
}

func (d *decoder) apply(r rule, c captures) error {
	d.log.Debug("matched group", "rule", r.name, "text", c[wholeMatch])
	if r.handle == nil {
		return nil
	}
	u, err := r.handle(&env{obs: d.obs, opts: &d.opts}, c)
	if err != nil {
		return &ParserError{Group: r.name, Remaining: strings.TrimSpace(d.rest), Code: d.code, Err: err}
	}
	if u != nil {
		u(d.obs)
	}
	return nil
}

// checkMandatory enforces the groups a report needs: a station before any
// observed data, and an observation time whenever anything follows the
// station.
func (d *decoder) checkMandatory() error {
	if !d.sawStation && d.pastStation {
		return &ParserError{Group: "station", Code: d.code, Err: ErrMissingStation}
	}
	if d.obs.Time.IsZero() && strings.TrimSpace(d.afterStation) != "" {
		return &ParserError{Group: "time", Code: d.code, Err: ErrMissingTime}
	}
	return nil
}
