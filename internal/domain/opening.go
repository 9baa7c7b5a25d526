package domain

import (
	"context"
	"time"
)

// isoDate is the calendar date layout used throughout the service.
const isoDate = "2006-01-02"

// ISODate formats t's calendar date as YYYY-MM-DD.
func ISODate(t time.Time) string {
	return t.Format(isoDate)
}

// Opening is one day's published DJIA opening value. Raw preserves the exact
// upstream string: the hash digest is computed over the published text, and
// re-formatting a parsed float would corrupt digests for values with trailing
// zeros ("12345.70" is not "12345.7").
type Opening struct {
	Value float64
	Raw   string
}

// OpeningSource supplies the opening value for a calendar date.
type OpeningSource interface {
	Opening(ctx context.Context, date time.Time) (Opening, error)
}

// exchangeTZ is the NYSE timezone. Publication instants must be computed
// against the real timezone database, not a fixed UTC offset, because the
// 09:40 wall-clock time crosses daylight saving transitions.
var exchangeTZ = mustLoadLocation("America/New_York")

func mustLoadLocation(name string) *time.Location {
	loc, err := time.LoadLocation(name)
	if err != nil {
		panic("load timezone " + name + ": " + err.Error())
	}
	return loc
}

// PublicationInstant returns the UTC instant at which the opening value for
// date is expected to be published: 09:40 local exchange time.
func PublicationInstant(date time.Time) time.Time {
	y, m, d := date.Date()
	return time.Date(y, m, d, 9, 40, 0, 0, exchangeTZ).UTC()
}
