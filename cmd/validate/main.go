// Command validate performs end-to-end integrity checks across the mock data
// fixtures: the sample report list, the raw envelope fixture, and the decoded
// report fixture. It verifies counts, envelope validity, that decoding is
// reproducible, and that decoded reports are internally consistent.
//
// Usage:
//
//	go run ./cmd/validate \
//	  -samples data/mock/metar_samples.txt \
//	  -raw-json data/mock/metar_raw_240610.json \
//	  -decoded-json data/mock/metar_decoded_240610.json
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/metar"
	"github.com/google/go-cmp/cmp"
	"github.com/jonboulle/clockwork"
)

// receivedAt and processedAt must match genmock for reproducible output.
var (
	receivedAt  = time.Date(2024, time.June, 10, 17, 30, 0, 0, time.UTC)
	processedAt = time.Date(2024, time.June, 10, 18, 0, 0, 0, time.UTC)
)

var flightCategories = map[string]bool{"": true, "VFR": true, "MVFR": true, "IFR": true, "LIFR": true}

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

func main() {
	samples := flag.String("samples", "data/mock/metar_samples.txt", "file with one report per line")
	rawJSON := flag.String("raw-json", "", "path to the raw envelope fixture")
	decodedJSON := flag.String("decoded-json", "", "path to the decoded report fixture")
	strict := flag.Bool("strict", false, "decode strictly, as genmock -strict does")
	flag.Parse()

	if *rawJSON == "" || *decodedJSON == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*samples, *rawJSON, *decodedJSON, *strict); code != 0 {
		os.Exit(code)
	}
}

func run(samplesPath, rawJSONPath, decodedJSONPath string, strict bool) int {
	domain.SetClock(clockwork.NewFakeClockAt(processedAt))
	defer domain.SetClock(nil)

	fmt.Println("=== METAR Fixture Integrity Validation ===")
	fmt.Println()

	samples, err := loadSamples(samplesPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load samples: %v\n", err)
		return 1
	}

	rawRecords, err := loadJSON[domain.RawRecord](rawJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load raw JSON: %v\n", err)
		return 1
	}

	decoded, err := loadJSON[domain.WeatherReport](decodedJSONPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "FATAL: load decoded JSON: %v\n", err)
		return 1
	}

	phases := []*phase{
		validateSourceParity(samples, rawRecords),
		validateEnvelopes(rawRecords),
		validateReproducibility(rawRecords, decoded, strict),
		validateConsistency(decoded),
	}

	fmt.Println()
	allPassed := true
	for _, p := range phases {
		status := "\033[32mPASS\033[0m"
		if !p.passed() {
			status = fmt.Sprintf("\033[31mFAIL (%d errors)\033[0m", len(p.errors))
			allPassed = false
		}
		fmt.Printf("  %-42s %s\n", p.name, status)
	}

	fmt.Println()
	fmt.Printf("Records: %d samples, %d raw JSON, %d decoded JSON\n",
		len(samples), len(rawRecords), len(decoded))

	for _, p := range phases {
		if p.passed() {
			continue
		}
		fmt.Printf("\n--- %s ---\n", p.name)
		for i, e := range p.errors {
			fmt.Printf("  [%d] %s\n", i+1, e)
		}
	}

	if allPassed {
		fmt.Println("\nAll validations passed.")
		return 0
	}
	fmt.Println("\nValidation FAILED.")
	return 1
}

// ── Data loading ──

func loadSamples(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var codes []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		codes = append(codes, line)
	}
	return codes, scanner.Err()
}

func loadJSON[T any](path string) ([]T, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var out []T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	return out, nil
}

// ── Validation phases ──

// validateSourceParity checks that every raw record comes from the sample
// list, in order. Samples that failed to decode are absent from the fixtures.
func validateSourceParity(samples []string, raw []domain.RawRecord) *phase {
	p := &phase{name: "Phase 1: Source parity"}
	if len(raw) > len(samples) {
		p.errorf("raw fixture has %d records, more than the %d samples", len(raw), len(samples))
		return p
	}

	next := 0
	for i, rec := range raw {
		found := false
		for next < len(samples) {
			next++
			if samples[next-1] == rec.RawText {
				found = true
				break
			}
		}
		if !found {
			p.errorf("raw[%d] %q not found in sample order", i, rec.RawText)
			return p
		}
	}
	if skipped := len(samples) - len(raw); skipped > 0 {
		fmt.Printf("  note: %d samples absent from the raw fixture\n", skipped)
	}
	return p
}

func validateEnvelopes(raw []domain.RawRecord) *phase {
	p := &phase{name: "Phase 2: Raw envelope integrity"}
	for i, rec := range raw {
		payload, err := json.Marshal(rec)
		if err != nil {
			p.errorf("raw[%d]: marshal: %v", i, err)
			continue
		}
		if _, err := domain.ParseRawEvent(domain.RawEvent{Value: payload, Timestamp: receivedAt}); err != nil {
			p.errorf("raw[%d]: %v", i, err)
		}
		if rec.Month == 0 || rec.Year == 0 {
			p.errorf("raw[%d] %q: month and year hints must be set", i, rec.RawText)
		}
	}
	return p
}

// validateReproducibility re-decodes every raw record and diffs the result
// against the decoded fixture.
func validateReproducibility(raw []domain.RawRecord, decoded []domain.WeatherReport, strict bool) *phase {
	p := &phase{name: "Phase 3: Decode reproducibility"}
	if len(raw) != len(decoded) {
		p.errorf("raw fixture has %d records, decoded fixture has %d", len(raw), len(decoded))
		return p
	}

	for i, rec := range raw {
		payload, err := json.Marshal(rec)
		if err != nil {
			p.errorf("raw[%d]: marshal: %v", i, err)
			continue
		}
		report, err := domain.ParseRawEvent(domain.RawEvent{Value: payload, Timestamp: receivedAt})
		if err != nil {
			p.errorf("raw[%d]: %v", i, err)
			continue
		}
		obs, err := metar.Decode(report.Code, append(report.DecodeOptions(), metar.WithStrict(strict))...)
		if err != nil {
			p.errorf("raw[%d] %q: %v", i, rec.RawText, err)
			continue
		}

		// Round-trip through JSON so both sides carry the same time
		// representation.
		got, err := roundTrip(domain.BuildWeatherReport(obs))
		if err != nil {
			p.errorf("raw[%d]: %v", i, err)
			continue
		}
		if diff := cmp.Diff(decoded[i], got); diff != "" {
			p.errorf("decoded[%d] %s mismatch (-fixture +decoded):\n%s", i, decoded[i].Station, diff)
		}
	}
	return p
}

func roundTrip(r domain.WeatherReport) (domain.WeatherReport, error) {
	data, err := json.Marshal(r)
	if err != nil {
		return domain.WeatherReport{}, err
	}
	var out domain.WeatherReport
	if err := json.Unmarshal(data, &out); err != nil {
		return domain.WeatherReport{}, err
	}
	return out, nil
}

// validateConsistency checks invariants every decoded report must satisfy.
func validateConsistency(decoded []domain.WeatherReport) *phase {
	p := &phase{name: "Phase 4: Decoded report consistency"}
	seen := make(map[string]int, len(decoded))

	for i := range decoded {
		r := &decoded[i]
		label := fmt.Sprintf("decoded[%d] %s", i, r.Station)

		if r.Station == "" {
			p.errorf("%s: missing station", label)
		}
		if !strings.HasPrefix(r.ID, strings.ToLower(r.Station)+"-") {
			p.errorf("%s: id %q does not start with the station", label, r.ID)
		}
		if j, dup := seen[r.ID]; dup {
			p.errorf("%s: duplicate id %q (also decoded[%d])", label, r.ID, j)
		}
		seen[r.ID] = i

		if r.ReportType != "METAR" && r.ReportType != "SPECI" {
			p.errorf("%s: unexpected report type %q", label, r.ReportType)
		}
		if !r.ObservedAt.IsZero() && !r.TimeBucket.Equal(r.ObservedAt.UTC().Truncate(time.Hour)) {
			p.errorf("%s: time bucket %s does not match observation %s", label,
				r.TimeBucket.Format(time.RFC3339), r.ObservedAt.Format(time.RFC3339))
		}
		if !flightCategories[r.FlightCategory] {
			p.errorf("%s: unknown flight category %q", label, r.FlightCategory)
		}
		if r.DecodeCompleted != (len(r.UnparsedGroups) == 0) {
			p.errorf("%s: decode_completed=%t with %d unparsed groups", label, r.DecodeCompleted, len(r.UnparsedGroups))
		}
		if !strings.HasPrefix(r.Summary, "station: "+r.Station) {
			p.errorf("%s: summary does not start with the station line", label)
		}
		if !r.ProcessedAt.Equal(processedAt) {
			p.errorf("%s: processed_at %s, want %s", label,
				r.ProcessedAt.Format(time.RFC3339), processedAt.Format(time.RFC3339))
		}
	}
	return p
}
