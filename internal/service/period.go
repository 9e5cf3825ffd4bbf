package service

import "time"

// weekBounds returns the half-open [monday, nextMonday) interval of the
// ISO week containing t, in UTC.  ISO weeks start on Monday, so a
// booking late on Sunday and one early the following Monday land in
// different buckets.
func weekBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	// time.Weekday numbers Sunday as 0; shift so Monday is 0.
	offset := (int(t.Weekday()) + 6) % 7
	monday := time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -offset)
	return monday, monday.AddDate(0, 0, 7)
}

// monthBounds returns the half-open [first, firstOfNext) interval of
// the calendar month containing t, in UTC.
func monthBounds(t time.Time) (time.Time, time.Time) {
	t = t.UTC()
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC)
	return first, first.AddDate(0, 1, 0)
}
