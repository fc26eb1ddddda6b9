// Command genmock reads sample METAR/SPECI reports and generates mock data
// fixtures: the raw envelopes a collector would publish and the decoded
// reports the ETL produces for them. It uses the actual domain and metar
// packages so the decoded output matches real pipeline behavior.
//
// Usage:
//
//	go run ./cmd/genmock \
//	  -in data/mock/metar_samples.txt \
//	  -raw-out data/mock/metar_raw_240610.json \
//	  -decoded-out data/mock/metar_decoded_240610.json
package main

import (
	"bufio"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/couchcryptid/metar-etl/internal/domain"
	"github.com/couchcryptid/metar-etl/internal/metar"
	"github.com/jonboulle/clockwork"
)

// receivedAt is the message time stamped on every generated envelope.
var receivedAt = time.Date(2024, time.June, 10, 17, 30, 0, 0, time.UTC)

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	in := flag.String("in", "data/mock/metar_samples.txt", "file with one report per line")
	rawOut := flag.String("raw-out", "", "output path for the raw envelope fixture")
	decodedOut := flag.String("decoded-out", "", "output path for the decoded report fixture")
	strict := flag.Bool("strict", false, "reject reports with unrecognized groups")
	flag.Parse()

	if *rawOut == "" || *decodedOut == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -raw-out, -decoded-out")
	}

	// Set a fixed clock for reproducible ProcessedAt timestamps.
	domain.SetClock(clockwork.NewFakeClockAt(
		time.Date(2024, time.June, 10, 18, 0, 0, 0, time.UTC),
	))
	defer domain.SetClock(nil)

	codes, err := readReports(*in)
	if err != nil {
		return fmt.Errorf("reading %s: %w", *in, err)
	}

	rawRecords := make([]domain.RawRecord, 0, len(codes))
	decoded := make([]domain.WeatherReport, 0, len(codes))
	for _, code := range codes {
		rec := domain.RawRecord{
			RawText: code,
			Month:   int(receivedAt.Month()),
			Year:    receivedAt.Year(),
		}
		report, err := decodeRecord(rec, *strict)
		if err != nil {
			log.Printf("skipping %q: %v", code, err)
			continue
		}
		rawRecords = append(rawRecords, rec)
		decoded = append(decoded, report)
	}

	log.Printf("total: %d of %d reports decoded", len(decoded), len(codes))

	if err := writeJSON(*rawOut, rawRecords); err != nil {
		return fmt.Errorf("writing raw fixture: %w", err)
	}
	log.Printf("wrote raw fixture: %s", *rawOut)

	if err := writeJSON(*decodedOut, decoded); err != nil {
		return fmt.Errorf("writing decoded fixture: %w", err)
	}
	log.Printf("wrote decoded fixture: %s", *decodedOut)

	printStats(decoded)
	return nil
}

// decodeRecord runs a record through the same steps as the pipeline transformer.
func decodeRecord(rec domain.RawRecord, strict bool) (domain.WeatherReport, error) {
	payload, err := json.Marshal(rec)
	if err != nil {
		return domain.WeatherReport{}, fmt.Errorf("marshal record: %w", err)
	}

	report, err := domain.ParseRawEvent(domain.RawEvent{Value: payload, Timestamp: receivedAt})
	if err != nil {
		return domain.WeatherReport{}, err
	}

	opts := append(report.DecodeOptions(), metar.WithStrict(strict))
	obs, err := metar.Decode(report.Code, opts...)
	if err != nil {
		return domain.WeatherReport{}, err
	}
	return domain.BuildWeatherReport(obs), nil
}

func readReports(path string) ([]string, error) {
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

func writeJSON(path string, v any) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o600)
}

// statsResult holds aggregated counts for printStats reporting.
type statsResult struct {
	typeCounts     map[string]int
	categoryCounts map[string]int
	stationCounts  map[string]int
	incomplete     int
	withRemarks    int
}

func collectStats(reports []domain.WeatherReport) statsResult {
	s := statsResult{
		typeCounts:     map[string]int{},
		categoryCounts: map[string]int{},
		stationCounts:  map[string]int{},
	}
	for i := range reports {
		r := &reports[i]
		s.typeCounts[r.ReportType]++
		s.categoryCounts[r.FlightCategory]++
		s.stationCounts[r.Station]++
		if !r.DecodeCompleted {
			s.incomplete++
		}
		if len(r.Remarks) > 0 {
			s.withRemarks++
		}
	}
	return s
}

type stationCount struct {
	station string
	count   int
}

func printStats(reports []domain.WeatherReport) {
	stats := collectStats(reports)

	fmt.Println("\n=== Stats for updating test assertions ===")
	fmt.Printf("Total: %d\n", len(reports))
	fmt.Printf("By type: METAR=%d, SPECI=%d\n", stats.typeCounts["METAR"], stats.typeCounts["SPECI"])
	fmt.Printf("By flight category: VFR=%d, MVFR=%d, IFR=%d, LIFR=%d, unknown=%d\n",
		stats.categoryCounts["VFR"], stats.categoryCounts["MVFR"],
		stats.categoryCounts["IFR"], stats.categoryCounts["LIFR"], stats.categoryCounts[""])
	fmt.Printf("Incomplete decodes: %d\n", stats.incomplete)
	fmt.Printf("With remarks: %d\n", stats.withRemarks)

	sc := make([]stationCount, 0, len(stats.stationCounts))
	for s, c := range stats.stationCounts {
		sc = append(sc, stationCount{s, c})
	}
	sort.Slice(sc, func(i, j int) bool {
		if sc[i].count != sc[j].count {
			return sc[i].count > sc[j].count
		}
		return sc[i].station < sc[j].station
	})
	fmt.Printf("Stations (%d): ", len(sc))
	for _, s := range sc {
		fmt.Printf("%s=%d ", s.station, s.count)
	}
	fmt.Println()

	for i := range reports {
		if reports[i].DecodeCompleted {
			continue
		}
		r := &reports[i]
		fmt.Printf("\nIncomplete %s %s: unparsed=%v\n", r.Station, r.ObservedAt.Format(time.RFC3339), r.UnparsedGroups)
	}
}
