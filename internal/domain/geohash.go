package domain

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"time"
)

// thirtyWestEffective is the date the 30W rule took effect.
var thirtyWestEffective = time.Date(2008, time.May, 27, 0, 0, 0, 0, time.UTC)

// OpeningDate returns the date whose opening value feeds the hash for a
// graticule: cells east of 30°W use the previous day's value from 2008-05-27
// onward, cells at or west of 30°W always use the same day's.
func OpeningDate(lonBase int, date time.Time) time.Time {
	if float64(lonBase) > -30.0 && !date.Before(thirtyWestEffective) {
		return date.AddDate(0, 0, -1)
	}
	return date
}

// Generator derives daily geohash points from opening values.
type Generator struct {
	source OpeningSource
}

// NewGenerator creates a Generator backed by the given opening-value source.
func NewGenerator(source OpeningSource) *Generator {
	return &Generator{source: source}
}

// Generate computes the geohash point for the graticule (latBase, lonBase) on
// date. Failures from the opening-value source propagate unchanged.
func (g *Generator) Generate(ctx context.Context, latBase, lonBase int, date time.Time) (Coordinate, error) {
	opening, err := g.source.Opening(ctx, OpeningDate(lonBase, date))
	if err != nil {
		return Coordinate{}, err
	}

	sum := md5.Sum([]byte(ISODate(date) + "-" + opening.Raw))
	latFrac, lonFrac := foldFractions(hex.EncodeToString(sum[:]))

	return Coordinate{
		Lat: combine(latBase, latFrac),
		Lon: combine(lonBase, lonFrac),
	}, nil
}

// foldFractions folds a 32-digit lowercase hex digest into two values in
// [0,1): the first 16 digits for latitude, the last 16 for longitude. Digits
// are consumed in reverse so the leading digit of each half dominates the
// final magnitude.
func foldFractions(digest string) (latFrac, lonFrac float64) {
	for i := 1; i <= 16; i++ {
		latFrac = (latFrac + hexDigit(digest[16-i])) / 16
		lonFrac = (lonFrac + hexDigit(digest[32-i])) / 16
	}
	return latFrac, lonFrac
}

func hexDigit(b byte) float64 {
	if b >= 'a' {
		return float64(b - 'a' + 10)
	}
	return float64(b - '0')
}

// combine attaches the fractional offset to the integer base, moving away
// from zero so the point never crosses the graticule boundary.
func combine(base int, frac float64) float64 {
	if base >= 0 {
		return float64(base) + frac
	}
	return float64(base) - frac
}
