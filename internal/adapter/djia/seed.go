package djia

import (
	"bufio"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/oliver/ghfeed/internal/domain"
)

// LoadSeed preloads the success table from a flat two-column file: one
// "YYYY-MM-DD <opening>" pair per line, whitespace separated. Blank lines and
// #-comments are ignored. Returns the number of entries loaded.
func (c *CachedSource) LoadSeed(path string) (int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("open seed file: %w", err)
	}
	defer f.Close()

	loaded := 0
	lineNo := 0
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		lineNo++
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		date, opening, err := parseSeedLine(line)
		if err != nil {
			return loaded, fmt.Errorf("seed line %d: %w", lineNo, err)
		}

		c.mu.Lock()
		c.entries[domain.ISODate(date)] = entry{opening: opening}
		c.mu.Unlock()
		loaded++
	}
	if err := scanner.Err(); err != nil {
		return loaded, fmt.Errorf("read seed file: %w", err)
	}

	if loaded > 0 {
		c.served.Store(true)
	}
	return loaded, nil
}

func parseSeedLine(line string) (time.Time, domain.Opening, error) {
	fields := strings.Fields(line)
	if len(fields) != 2 {
		return time.Time{}, domain.Opening{}, fmt.Errorf("want %q, got %q", "date opening", line)
	}

	date, err := time.ParseInLocation("2006-01-02", fields[0], time.UTC)
	if err != nil {
		return time.Time{}, domain.Opening{}, fmt.Errorf("bad date %q: %w", fields[0], err)
	}

	value, err := strconv.ParseFloat(fields[1], 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return time.Time{}, domain.Opening{}, fmt.Errorf("bad opening value %q", fields[1])
	}

	return date, domain.Opening{Value: value, Raw: fields[1]}, nil
}
