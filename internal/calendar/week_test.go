package calendar

import (
	"testing"
	"time"
)

func TestProject(t *testing.T) {
	// Wednesday, June 12, 2024
	ref := time.Date(2024, 6, 12, 15, 30, 0, 0, time.UTC)

	w := Project(ref, 0)

	wantMonday := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if !w.Monday().Equal(wantMonday) {
		t.Errorf("got monday %v, want %v", w.Monday(), wantMonday)
	}
	for i, d := range w {
		if d.Weekday != i+1 {
			t.Errorf("day %d: got weekday %d, want %d", i, d.Weekday, i+1)
		}
		want := wantMonday.AddDate(0, 0, i)
		if !d.Date.Equal(want) {
			t.Errorf("day %d: got %v, want %v", i, d.Date, want)
		}
	}
	if w[6].Name() != "Sunday" || w[0].ShortName() != "Mon" {
		t.Errorf("unexpected names %q %q", w[6].Name(), w[0].ShortName())
	}
}

func TestProject_SundayReference(t *testing.T) {
	sunday := time.Date(2024, 6, 16, 23, 0, 0, 0, time.UTC)
	w := Project(sunday, 0)

	want := time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)
	if !w.Monday().Equal(want) {
		t.Errorf("got monday %v, want %v", w.Monday(), want)
	}
}

func TestProject_Deterministic(t *testing.T) {
	ref := time.Date(2024, 6, 12, 8, 0, 0, 0, time.UTC)

	a := Project(ref, 0)
	b := Project(ref, 0)
	if a != b {
		t.Errorf("projection not deterministic: %v vs %v", a, b)
	}

	next := Project(ref, 1)
	if !next[0].Date.Equal(a[0].Date.AddDate(0, 0, 7)) {
		t.Errorf("offset 1 starts %v, want %v", next[0].Date, a[0].Date.AddDate(0, 0, 7))
	}

	prev := Project(ref, -2)
	if !prev[0].Date.Equal(a[0].Date.AddDate(0, 0, -14)) {
		t.Errorf("offset -2 starts %v, want %v", prev[0].Date, a[0].Date.AddDate(0, 0, -14))
	}
}

func TestWeek_BoundsAndContains(t *testing.T) {
	w := Project(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), 0)
	start, end := w.Bounds()

	if !start.Equal(time.Date(2024, 6, 10, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got start %v", start)
	}
	if !end.Equal(time.Date(2024, 6, 17, 0, 0, 0, 0, time.UTC)) {
		t.Errorf("got end %v", end)
	}

	tests := []struct {
		name string
		t    time.Time
		want bool
	}{
		{"monday midnight", start, true},
		{"sunday night", time.Date(2024, 6, 16, 23, 0, 0, 0, time.UTC), true},
		{"next monday", end, false},
		{"previous sunday", time.Date(2024, 6, 9, 23, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := w.Contains(tt.t); got != tt.want {
				t.Errorf("Contains(%v) = %v, want %v", tt.t, got, tt.want)
			}
		})
	}
}

func TestWeek_DayByDate(t *testing.T) {
	w := Project(time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC), 0)

	d, ok := w.DayByDate(time.Date(2024, 6, 14, 17, 0, 0, 0, time.UTC))
	if !ok {
		t.Fatal("expected friday to be found")
	}
	if d.Weekday != 5 || d.Index() != 4 {
		t.Errorf("got weekday %d index %d", d.Weekday, d.Index())
	}

	if _, ok := w.DayByDate(time.Date(2024, 6, 20, 0, 0, 0, 0, time.UTC)); ok {
		t.Error("date outside week should not be found")
	}
}

func TestOffsetOf(t *testing.T) {
	ref := time.Date(2024, 6, 12, 0, 0, 0, 0, time.UTC)
	if got := OffsetOf(ref, time.Date(2024, 6, 24, 0, 0, 0, 0, time.UTC)); got != 2 {
		t.Errorf("got %d, want 2", got)
	}
}

func TestWeekdayName(t *testing.T) {
	if WeekdayName(-1) != "" || WeekdayName(7) != "" {
		t.Error("out of range should return empty string")
	}
	if WeekdayShortName(2) != "Wed" {
		t.Errorf("got %q, want Wed", WeekdayShortName(2))
	}
}
