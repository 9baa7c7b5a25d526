package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestPublicationInstant(t *testing.T) {
	// 09:40 America/New_York is 14:40 UTC under standard time and 13:40 UTC
	// under daylight saving. The 2024 transitions fall on March 10 and
	// November 3.
	tests := []struct {
		name string
		date time.Time
		want time.Time
	}{
		{"midwinter EST", day(2024, time.January, 15), time.Date(2024, time.January, 15, 14, 40, 0, 0, time.UTC)},
		{"midsummer EDT", day(2024, time.July, 15), time.Date(2024, time.July, 15, 13, 40, 0, 0, time.UTC)},
		{"before spring transition", day(2024, time.March, 8), time.Date(2024, time.March, 8, 14, 40, 0, 0, time.UTC)},
		{"after spring transition", day(2024, time.March, 11), time.Date(2024, time.March, 11, 13, 40, 0, 0, time.UTC)},
		{"before fall transition", day(2024, time.November, 1), time.Date(2024, time.November, 1, 13, 40, 0, 0, time.UTC)},
		{"after fall transition", day(2024, time.November, 4), time.Date(2024, time.November, 4, 14, 40, 0, 0, time.UTC)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, PublicationInstant(tt.date))
		})
	}
}

func TestISODate(t *testing.T) {
	assert.Equal(t, "2024-01-05", ISODate(day(2024, time.January, 5)))
	assert.Equal(t, "2024-11-30", ISODate(time.Date(2024, time.November, 30, 23, 59, 0, 0, time.UTC)))
}
