// Package domain implements the xkcd geohashing algorithm
// (https://xkcd.com/426/) and the date conventions around it.
//
// # Algorithm
//
// For a graticule (one integer-degree latitude/longitude cell) and a calendar
// date, the daily point is derived from the MD5 digest of the string
//
//	"<date>-<opening>"
//
// where <date> is the requested date in ISO 8601 form and <opening> is the
// Dow Jones Industrial Average opening value for the applicable date, exactly
// as published. The first 16 hex digits of the digest fold into a latitude
// fraction, the last 16 into a longitude fraction, both in [0,1). Digits are
// consumed in reverse order, so the leading digit of each half dominates the
// magnitude. The fraction is added to non-negative graticule bases and
// subtracted from negative ones, keeping the point inside the cell.
//
// # 30W Time Zone Rule
//
// From 2008-05-27 onward, graticules east of 30°W use the previous calendar
// day's opening value, because their local date rolls over before the NYSE
// publishes. Graticules at or west of 30°W always use the same day's value.
// See http://wiki.xkcd.com/geohashing/30W_Time_Zone_Rule.
//
// # Publication time
//
// The opening value for a trading day is expected at 09:40 local exchange
// time (America/New_York). The UTC instant therefore shifts across daylight
// saving transitions and must be computed per date; see [PublicationInstant].
package domain
