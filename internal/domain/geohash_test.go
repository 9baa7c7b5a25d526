package domain

import (
	"context"
	"crypto/md5"
	"encoding/hex"
	"strconv"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- stub opening source ---

// stubSource serves openings from a fixed date-keyed map and counts lookups.
type stubSource struct {
	openings map[string]Opening
	err      error
	calls    int
}

func (s *stubSource) Opening(_ context.Context, date time.Time) (Opening, error) {
	s.calls++
	if s.err != nil {
		return Opening{}, s.err
	}
	o, ok := s.openings[ISODate(date)]
	if !ok {
		return Opening{}, ErrDataUnavailable
	}
	return o, nil
}

func openingOf(raw string) Opening {
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		panic(err)
	}
	return Opening{Value: v, Raw: raw}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// --- Generate ---

func TestGenerate_GoldenWestOf30W(t *testing.T) {
	src := &stubSource{openings: map[string]Opening{
		"2024-01-10": openingOf("12345.67"),
	}}
	gen := NewGenerator(src)

	point, err := gen.Generate(context.Background(), 37, -122, day(2024, time.January, 10))
	require.NoError(t, err)

	// Pinned regression value: MD5("2024-01-10-12345.67") = 605a7906f339aea5cd8c107860eb629c.
	assert.InDelta(t, 37.37638050479584, point.Lat, 1e-12)
	assert.InDelta(t, -122.8029184621709, point.Lon, 1e-12)
	assert.Equal(t, 1, src.calls, "one opening lookup per generation")
}

func TestGenerate_CanonicalXKCDExample(t *testing.T) {
	// The worked example from the original comic: 2005-05-26, DJIA opening
	// 10458.68, graticule (37, -122).
	src := &stubSource{openings: map[string]Opening{
		"2005-05-26": openingOf("10458.68"),
	}}
	gen := NewGenerator(src)

	point, err := gen.Generate(context.Background(), 37, -122, day(2005, time.May, 26))
	require.NoError(t, err)

	assert.InDelta(t, 37.857713267707005, point.Lat, 1e-12)
	assert.InDelta(t, -122.54454306955928, point.Lon, 1e-12)
}

func TestGenerate_Deterministic(t *testing.T) {
	src := &stubSource{openings: map[string]Opening{
		"2024-01-10": openingOf("12345.67"),
	}}
	gen := NewGenerator(src)

	p1, err := gen.Generate(context.Background(), 37, -122, day(2024, time.January, 10))
	require.NoError(t, err)
	p2, err := gen.Generate(context.Background(), 37, -122, day(2024, time.January, 10))
	require.NoError(t, err)

	assert.Equal(t, p1, p2)
}

func TestGenerate_EastOf30WUsesPreviousDayOpening(t *testing.T) {
	// Only the previous day's opening exists; an east-of-30W cell must
	// resolve it while hashing with the requested date.
	src := &stubSource{openings: map[string]Opening{
		"2024-01-09": openingOf("12345.67"),
	}}
	gen := NewGenerator(src)

	point, err := gen.Generate(context.Background(), 48, 2, day(2024, time.January, 10))
	require.NoError(t, err)

	// Same digest as the golden fixture ("2024-01-10-12345.67"), applied to (48, 2).
	assert.InDelta(t, 48.37638050479584, point.Lat, 1e-12)
	assert.InDelta(t, 2.8029184621708914, point.Lon, 1e-12)
}

func TestGenerate_NegativeBaseMovesAwayFromZero(t *testing.T) {
	src := &stubSource{openings: map[string]Opening{
		"2024-01-10": openingOf("12345.67"),
	}}
	gen := NewGenerator(src)

	point, err := gen.Generate(context.Background(), -38, -123, day(2024, time.January, 10))
	require.NoError(t, err)

	assert.Less(t, point.Lat, -38.0)
	assert.Greater(t, point.Lat, -39.0)
	assert.Less(t, point.Lon, -123.0)
	assert.Greater(t, point.Lon, -124.0)
}

func TestGenerate_PropagatesUnavailable(t *testing.T) {
	src := &stubSource{err: ErrDataUnavailable}
	gen := NewGenerator(src)

	_, err := gen.Generate(context.Background(), 37, -122, day(2024, time.January, 10))
	assert.ErrorIs(t, err, ErrDataUnavailable)
}

// --- OpeningDate / 30W rule ---

func TestOpeningDate(t *testing.T) {
	effective := day(2008, time.May, 27)

	tests := []struct {
		name    string
		lonBase int
		date    time.Time
		want    time.Time
	}{
		{"east of 30W after effective date", 2, effective, day(2008, time.May, 26)},
		{"east of 30W well after effective date", 120, day(2024, time.January, 10), day(2024, time.January, 9)},
		{"just east of 30W", -29, day(2024, time.January, 10), day(2024, time.January, 9)},
		{"at 30W uses same day", -30, day(2024, time.January, 10), day(2024, time.January, 10)},
		{"west of 30W uses same day", -122, day(2024, time.January, 10), day(2024, time.January, 10)},
		{"east of 30W before effective date", 2, day(2008, time.May, 26), day(2008, time.May, 26)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, OpeningDate(tt.lonBase, tt.date))
		})
	}
}

// --- digest folding ---

func TestFoldFractions_AlwaysInUnitInterval(t *testing.T) {
	for i := 0; i < 200; i++ {
		sum := md5.Sum([]byte(strconv.Itoa(i)))
		digest := hex.EncodeToString(sum[:])

		latFrac, lonFrac := foldFractions(digest)

		assert.GreaterOrEqual(t, latFrac, 0.0, "digest %s", digest)
		assert.Less(t, latFrac, 1.0, "digest %s", digest)
		assert.GreaterOrEqual(t, lonFrac, 0.0, "digest %s", digest)
		assert.Less(t, lonFrac, 1.0, "digest %s", digest)
	}
}

func TestFoldFractions_ReverseOrderDigitDominance(t *testing.T) {
	// The first hex digit of each half is processed last, so it alone
	// determines the leading 1/16th of the result.
	latFrac, lonFrac := foldFractions("f000000000000000" + "0000000000000000")
	assert.InDelta(t, 15.0/16.0, latFrac, 1e-15)
	assert.Zero(t, lonFrac)
}
