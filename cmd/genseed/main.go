// Command genseed fetches a date range of DJIA opening values through the
// real upstream client and writes them as a seed file for the server's cache,
// optionally alongside a JSON fixture for test suites.
//
// Usage:
//
//	go run ./cmd/genseed \
//	  -from 2024-01-01 -to 2024-03-31 \
//	  -out data/openings.txt \
//	  -fixture-out data/openings_fixture.json
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/oliver/ghfeed/internal/adapter/djia"
	"github.com/oliver/ghfeed/internal/domain"
	"github.com/oliver/ghfeed/internal/observability"
)

type fixtureEntry struct {
	Date    string  `json:"date"`
	Opening string  `json:"opening"`
	Value   float64 `json:"value"`
}

func main() {
	if err := run(); err != nil {
		log.Fatal(err)
	}
}

func run() error {
	_ = godotenv.Load()

	baseURL := flag.String("base-url", "http://geo.crox.net/djia", "upstream DJIA base URL")
	fromStr := flag.String("from", "", "first date to fetch (YYYY-MM-DD)")
	toStr := flag.String("to", "", "last date to fetch (YYYY-MM-DD)")
	out := flag.String("out", "", "output path for the seed file")
	fixtureOut := flag.String("fixture-out", "", "optional output path for a JSON fixture")
	timeout := flag.Duration("timeout", 5*time.Second, "per-request timeout")
	flag.Parse()

	if *fromStr == "" || *toStr == "" || *out == "" {
		flag.Usage()
		return fmt.Errorf("missing required flags: -from, -to, -out")
	}

	from, err := time.ParseInLocation("2006-01-02", *fromStr, time.UTC)
	if err != nil {
		return fmt.Errorf("bad -from date: %w", err)
	}
	to, err := time.ParseInLocation("2006-01-02", *toStr, time.UTC)
	if err != nil {
		return fmt.Errorf("bad -to date: %w", err)
	}
	if to.Before(from) {
		return fmt.Errorf("-to is before -from")
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := djia.NewClient(*baseURL, *timeout, observability.NewMetricsForTesting(), logger)

	var fixtures []fixtureEntry
	var lines []byte
	fetched, skipped := 0, 0

	ctx := context.Background()
	for d := from; !d.After(to); d = d.AddDate(0, 0, 1) {
		opening, err := client.Opening(ctx, d)
		if err != nil {
			// Weekends and holidays have no opening; skip and move on.
			if errors.Is(err, domain.ErrDataUnavailable) {
				skipped++
				continue
			}
			return fmt.Errorf("fetching %s: %w", domain.ISODate(d), err)
		}

		lines = append(lines, fmt.Sprintf("%s %s\n", domain.ISODate(d), opening.Raw)...)
		fixtures = append(fixtures, fixtureEntry{
			Date:    domain.ISODate(d),
			Opening: opening.Raw,
			Value:   opening.Value,
		})
		fetched++
	}

	if err := os.WriteFile(*out, lines, 0o644); err != nil {
		return fmt.Errorf("writing seed file: %w", err)
	}
	log.Printf("%s: %d openings written, %d dates skipped", *out, fetched, skipped)

	if *fixtureOut != "" {
		data, err := json.MarshalIndent(fixtures, "", "  ")
		if err != nil {
			return fmt.Errorf("marshaling fixture: %w", err)
		}
		if err := os.WriteFile(*fixtureOut, append(data, '\n'), 0o644); err != nil {
			return fmt.Errorf("writing fixture: %w", err)
		}
		log.Printf("%s: fixture written", *fixtureOut)
	}

	return nil
}
