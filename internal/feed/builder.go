// Package feed assembles daily geohash results into feed entries and renders
// them as Atom documents.
package feed

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/oliver/ghfeed/internal/domain"
)

const (
	// windowBefore is how many days before the caller's local date the feed
	// window starts; windowDays is its total length.
	windowBefore = 7
	windowDays   = 11
)

// Entry is one day's geohash rendered for a feed.
type Entry struct {
	ID      string
	Title   string
	Summary string
	Link    string
	Date    time.Time
	Updated time.Time
	Point   domain.Coordinate
}

// Builder assembles feed entries for a coordinate and date window.
type Builder struct {
	search  *domain.NearestSearch
	siteURL string
	clock   clockwork.Clock
	logger  *slog.Logger
}

// NewBuilder creates a Builder. siteURL is the public base for entry IDs and
// must end with a slash.
func NewBuilder(search *domain.NearestSearch, siteURL string, clock clockwork.Clock, logger *slog.Logger) *Builder {
	return &Builder{
		search:  search,
		siteURL: siteURL,
		clock:   clock,
		logger:  logger,
	}
}

// Build computes feed entries for target. With an explicit date it produces
// at most one entry, and zero when that date's data is unavailable. With a
// nil date it covers an 11-day window starting 7 days before the caller's
// longitude-local date. Dates without data are omitted, never failing the
// whole feed. The returned timestamp is the feed-level updated time: the
// latest included entry's, or the earliest requested date's when no entries
// could be produced.
func (b *Builder) Build(ctx context.Context, target domain.Coordinate, date *time.Time) ([]Entry, time.Time, error) {
	if err := target.Validate(); err != nil {
		return nil, time.Time{}, err
	}

	dates := b.window(target.Lon, date)
	entries := make([]Entry, 0, len(dates))

	for _, d := range dates {
		point, _, err := b.search.Nearest(ctx, target, d)
		if err != nil {
			if errors.Is(err, domain.ErrDataUnavailable) {
				b.logger.Warn("date omitted from feed, no data", "date", domain.ISODate(d))
				continue
			}
			return nil, time.Time{}, err
		}
		entries = append(entries, b.entry(target, point, d))
	}

	latest := updatedAt(dates[0])
	for _, e := range entries {
		if e.Updated.After(latest) {
			latest = e.Updated
		}
	}

	return entries, latest, nil
}

// window returns the dates to compute, in ascending order. A single explicit
// date yields a one-element window. Otherwise the caller's local date is
// derived from the longitude (lon/360 of a day offset from UTC) and the fixed
// window enumerated around it.
func (b *Builder) window(lon float64, date *time.Time) []time.Time {
	if date != nil {
		return []time.Time{midnight(date.UTC())}
	}

	offset := time.Duration(lon / 360 * 24 * float64(time.Hour))
	local := b.clock.Now().UTC().Add(offset)

	start := midnight(local).AddDate(0, 0, -windowBefore)
	dates := make([]time.Time, windowDays)
	for i := range dates {
		dates[i] = start.AddDate(0, 0, i)
	}
	return dates
}

func (b *Builder) entry(target, point domain.Coordinate, date time.Time) Entry {
	latCell := int(target.Lat)
	lonCell := int(target.Lon)
	iso := domain.ISODate(date)

	return Entry{
		ID:      fmt.Sprintf("%satom/%d,%d/%s", b.siteURL, latCell, lonCell, iso),
		Title:   fmt.Sprintf("Geohash for %d, %d on %s", latCell, lonCell, iso),
		Summary: fmt.Sprintf("%v,%v", point.Lat, point.Lon),
		Link:    fmt.Sprintf("https://maps.google.com/maps?q=%v,%v&z=14", point.Lat, point.Lon),
		Date:    date,
		Updated: updatedAt(date),
		Point:   point,
	}
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// updatedAt stamps a date at 14:30 UTC, after all publication times worldwide.
func updatedAt(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 14, 30, 0, 0, time.UTC)
}
