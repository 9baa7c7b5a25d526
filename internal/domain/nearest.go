package domain

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"time"
)

// NearestSearch finds the closest geohash point to a target coordinate by
// evaluating the 3×3 neighborhood of integer-degree cells around it.
type NearestSearch struct {
	gen    *Generator
	logger *slog.Logger
}

// NewNearestSearch creates a NearestSearch over the given generator.
func NewNearestSearch(gen *Generator, logger *slog.Logger) *NearestSearch {
	return &NearestSearch{gen: gen, logger: logger}
}

// Nearest returns the minimum-distance geohash point for date among the nine
// cells around target, and its distance in kilometres. Cells whose opening
// value is unavailable are skipped; the search fails with ErrDataUnavailable
// only when every cell does. Any other generation error aborts immediately.
func (s *NearestSearch) Nearest(ctx context.Context, target Coordinate, date time.Time) (Coordinate, float64, error) {
	if err := target.Validate(); err != nil {
		return Coordinate{}, 0, err
	}

	latBase := int(target.Lat)
	lonBase := int(target.Lon)

	var best Coordinate
	bestKm := math.MaxFloat64
	found := false

	for dLat := -1; dLat <= 1; dLat++ {
		for dLon := -1; dLon <= 1; dLon++ {
			point, err := s.gen.Generate(ctx, latBase+dLat, lonBase+dLon, date)
			if err != nil {
				if errors.Is(err, ErrDataUnavailable) {
					s.logger.Warn("graticule skipped, opening unavailable",
						"lat_base", latBase+dLat,
						"lon_base", lonBase+dLon,
						"date", ISODate(date),
					)
					continue
				}
				return Coordinate{}, 0, err
			}

			if km := SphericalDistance(target, point); km < bestKm {
				best = point
				bestKm = km
				found = true
			}
		}
	}

	if !found {
		return Coordinate{}, 0, fmt.Errorf("no reachable graticule on %s: %w", ISODate(date), ErrDataUnavailable)
	}
	return best, bestKm, nil
}
