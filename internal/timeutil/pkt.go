// Package timeutil converts between UTC storage time and the PKT
// (Pakistan Standard Time, UTC+5) business calendar. Order timestamps are
// stored in UTC; the daily closing selects "today's" orders by the PKT day.
package timeutil

import "time"

// PKT has no daylight saving, a fixed zone avoids tzdata dependence.
var PKT = time.FixedZone("PKT", 5*60*60)

// DayBoundsUTC returns the UTC instants that bound the PKT calendar day
// containing t: [start, end) where end is the start of the next PKT day.
func DayBoundsUTC(t time.Time) (time.Time, time.Time) {
	local := t.In(PKT)
	start := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, PKT)
	return start.UTC(), start.AddDate(0, 0, 1).UTC()
}

// TodayBoundsUTC returns the UTC bounds of the current PKT day.
func TodayBoundsUTC() (time.Time, time.Time) {
	return DayBoundsUTC(time.Now())
}

// DateStr formats t as its PKT calendar date, YYYY-MM-DD.
func DateStr(t time.Time) string {
	return t.In(PKT).Format("2006-01-02")
}

// TodayDateStr returns today's PKT date, YYYY-MM-DD.
func TodayDateStr() string {
	return DateStr(time.Now())
}

// ClosingDate converts t's PKT calendar date to the canonical closing key:
// that date at UTC midnight. Using UTC midnight keeps the unique index on
// daily_closings.date comparable across drivers.
func ClosingDate(t time.Time) time.Time {
	local := t.In(PKT)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, time.UTC)
}
