package service

import (
	"testing"
	"time"
)

func TestWeekBoundsStartsOnMonday(t *testing.T) {
	// Wednesday 2026-03-11.
	wed := time.Date(2026, time.March, 11, 15, 30, 0, 0, time.UTC)
	from, to := weekBounds(wed)

	wantFrom := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC)
	wantTo := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	if !from.Equal(wantFrom) || !to.Equal(wantTo) {
		t.Fatalf("weekBounds = [%v, %v), want [%v, %v)", from, to, wantFrom, wantTo)
	}
}

func TestWeekBoundsSundayBelongsToPrecedingWeek(t *testing.T) {
	// Sunday 2026-03-15 late evening is still in the week of Monday the 9th.
	sun := time.Date(2026, time.March, 15, 23, 59, 0, 0, time.UTC)
	from, _ := weekBounds(sun)
	if want := time.Date(2026, time.March, 9, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Fatalf("week of Sunday starts %v, want %v", from, want)
	}

	// The following Monday opens a new bucket.
	mon := time.Date(2026, time.March, 16, 0, 0, 0, 0, time.UTC)
	from2, _ := weekBounds(mon)
	if from2.Equal(from) {
		t.Fatal("Sunday and the following Monday must land in different weeks")
	}
}

func TestWeekBoundsAcrossYearBoundary(t *testing.T) {
	// Thursday 2026-01-01 belongs to the week of Monday 2025-12-29.
	newYear := time.Date(2026, time.January, 1, 10, 0, 0, 0, time.UTC)
	from, to := weekBounds(newYear)
	if want := time.Date(2025, time.December, 29, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Fatalf("week start = %v, want %v", from, want)
	}
	if want := time.Date(2026, time.January, 5, 0, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Fatalf("week end = %v, want %v", to, want)
	}
}

func TestMonthBounds(t *testing.T) {
	mid := time.Date(2026, time.February, 14, 9, 0, 0, 0, time.UTC)
	from, to := monthBounds(mid)
	if want := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC); !from.Equal(want) {
		t.Fatalf("month start = %v, want %v", from, want)
	}
	// 2026 is not a leap year.
	if want := time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Fatalf("month end = %v, want %v", to, want)
	}
}

func TestMonthBoundsDecemberRollsIntoNextYear(t *testing.T) {
	dec := time.Date(2026, time.December, 31, 23, 0, 0, 0, time.UTC)
	_, to := monthBounds(dec)
	if want := time.Date(2027, time.January, 1, 0, 0, 0, 0, time.UTC); !to.Equal(want) {
		t.Fatalf("month end = %v, want %v", to, want)
	}
}
