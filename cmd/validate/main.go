// Command validate performs integrity checks on a DJIA seed file: line
// format, date ordering, duplicate detection, and value plausibility. With
// -check-upstream it also cross-checks a sample of entries against the live
// DJIA source.
//
// Usage:
//
//	go run ./cmd/validate -seed data/openings.txt
//	go run ./cmd/validate -seed data/openings.txt -check-upstream -sample 5
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oliver/ghfeed/internal/adapter/djia"
	"github.com/oliver/ghfeed/internal/domain"
	"github.com/oliver/ghfeed/internal/observability"
)

// phase tracks pass/fail for a validation phase.
type phase struct {
	name   string
	errors []string
}

func (p *phase) errorf(format string, args ...any) {
	p.errors = append(p.errors, fmt.Sprintf(format, args...))
}

func (p *phase) passed() bool { return len(p.errors) == 0 }

// seedEntry is one parsed line of the seed file.
type seedEntry struct {
	lineNum int
	date    time.Time
	raw     string
	value   float64
}

func main() {
	seedPath := flag.String("seed", "", "path to the seed file to validate")
	checkUpstream := flag.Bool("check-upstream", false, "cross-check a sample of entries against the live DJIA source")
	baseURL := flag.String("base-url", "http://geo.crox.net/djia", "upstream DJIA base URL")
	sample := flag.Int("sample", 3, "number of entries to cross-check upstream")
	timeout := flag.Duration("timeout", 5*time.Second, "per-request timeout for upstream checks")
	flag.Parse()

	if *seedPath == "" {
		flag.Usage()
		os.Exit(1)
	}

	if code := run(*seedPath, *checkUpstream, *baseURL, *sample, *timeout); code != 0 {
		os.Exit(code)
	}
}

func run(seedPath string, checkUpstream bool, baseURL string, sample int, timeout time.Duration) int {
	fmt.Println("=== Seed File Validation ===")
	fmt.Println()

	entries, parsePhase := loadSeed(seedPath)

	phases := []*phase{
		parsePhase,
		validateOrdering(entries),
		validateValues(entries),
	}
	if checkUpstream {
		phases = append(phases, validateUpstream(entries, baseURL, sample, timeout))
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
	fmt.Printf("Entries: %d\n", len(entries))

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

// ── Phase 1: Line Format ──
// Parses every line and reports the malformed ones.

func loadSeed(path string) ([]seedEntry, *phase) {
	p := &phase{name: "Phase 1: Line Format"}

	f, err := os.Open(path)
	if err != nil {
		p.errorf("open: %v", err)
		return nil, p
	}
	defer f.Close()

	var entries []seedEntry
	scanner := bufio.NewScanner(f)
	lineNum := 0
	for scanner.Scan() {
		lineNum++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		fields := strings.Fields(line)
		if len(fields) != 2 {
			p.errorf("line %d: expected \"DATE VALUE\", got %d fields", lineNum, len(fields))
			continue
		}

		date, err := time.ParseInLocation("2006-01-02", fields[0], time.UTC)
		if err != nil {
			p.errorf("line %d: bad date %q", lineNum, fields[0])
			continue
		}
		value, err := strconv.ParseFloat(fields[1], 64)
		if err != nil {
			p.errorf("line %d: bad value %q", lineNum, fields[1])
			continue
		}

		entries = append(entries, seedEntry{lineNum: lineNum, date: date, raw: fields[1], value: value})
	}
	if err := scanner.Err(); err != nil {
		p.errorf("read: %v", err)
	}
	if len(entries) == 0 && p.passed() {
		p.errorf("seed file has no entries")
	}
	return entries, p
}

// ── Phase 2: Date Ordering ──
// Entries must be chronologically ascending with no duplicate dates.

func validateOrdering(entries []seedEntry) *phase {
	p := &phase{name: "Phase 2: Date Ordering"}

	seen := map[string]int{}
	for i, e := range entries {
		key := domain.ISODate(e.date)
		if prev, ok := seen[key]; ok {
			p.errorf("line %d: duplicate date %s (first on line %d)", e.lineNum, key, prev)
		}
		seen[key] = e.lineNum

		if i > 0 && !entries[i-1].date.Before(e.date) {
			p.errorf("line %d: date %s is not after %s on line %d",
				e.lineNum, key, domain.ISODate(entries[i-1].date), entries[i-1].lineNum)
		}
	}
	return p
}

// ── Phase 3: Value Plausibility ──
// Openings must be finite, positive, and survive a parse round-trip so the
// stored string is usable as digest input.

func validateValues(entries []seedEntry) *phase {
	p := &phase{name: "Phase 3: Value Plausibility"}

	for _, e := range entries {
		if math.IsNaN(e.value) || math.IsInf(e.value, 0) {
			p.errorf("line %d: value %q is not finite", e.lineNum, e.raw)
			continue
		}
		if e.value <= 0 {
			p.errorf("line %d: value %g is not positive", e.lineNum, e.value)
		}
		if reparsed, err := strconv.ParseFloat(strings.TrimSpace(e.raw), 64); err != nil || reparsed != e.value {
			p.errorf("line %d: value %q does not round-trip", e.lineNum, e.raw)
		}
	}
	return p
}

// ── Phase 4: Upstream Cross-Check ──
// Fetches a sample of dates from the live source and compares the raw strings.

func validateUpstream(entries []seedEntry, baseURL string, sample int, timeout time.Duration) *phase {
	p := &phase{name: "Phase 4: Upstream Cross-Check"}

	if len(entries) == 0 {
		p.errorf("no entries to cross-check")
		return p
	}
	if sample > len(entries) {
		sample = len(entries)
	}

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	client := djia.NewClient(baseURL, timeout, observability.NewMetricsForTesting(), logger)
	ctx := context.Background()

	// Spread the sample across the file rather than checking a contiguous run.
	step := len(entries) / sample
	if step == 0 {
		step = 1
	}
	for i := 0; i < sample; i++ {
		e := entries[i*step]
		opening, err := client.Opening(ctx, e.date)
		if err != nil {
			p.errorf("%s: upstream fetch failed: %v", domain.ISODate(e.date), err)
			continue
		}
		if opening.Raw != e.raw {
			p.errorf("%s: seed has %q, upstream has %q", domain.ISODate(e.date), e.raw, opening.Raw)
		}
	}
	return p
}
