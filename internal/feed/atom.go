package feed

import (
	"fmt"
	"time"

	"github.com/gorilla/feeds"

	"github.com/oliver/ghfeed/internal/domain"
)

// RenderAtom renders entries as an Atom document for the target's graticule.
// An empty entry list still renders a valid, entry-less feed.
func RenderAtom(target domain.Coordinate, entries []Entry, updated time.Time, siteURL string) (string, error) {
	latCell := int(target.Lat)
	lonCell := int(target.Lon)

	f := &feeds.Feed{
		Id:      fmt.Sprintf("%satom/%d,%d", siteURL, latCell, lonCell),
		Title:   fmt.Sprintf("Geohash for %d, %d", latCell, lonCell),
		Link:    &feeds.Link{Href: siteURL},
		Updated: updated,
	}

	for _, e := range entries {
		f.Items = append(f.Items, &feeds.Item{
			Id:          e.ID,
			Title:       e.Title,
			Link:        &feeds.Link{Href: e.Link},
			Description: e.Summary,
			Updated:     e.Updated,
		})
	}

	return f.ToAtom()
}
