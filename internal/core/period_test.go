package core

import "testing"

func TestNextPeriod(t *testing.T) {
	cases := []struct {
		month, year         int
		wantMonth, wantYear int
	}{
		{1, 2026, 2, 2026},
		{11, 2026, 12, 2026},
		{12, 2026, 1, 2027},
	}
	for _, tc := range cases {
		m, y := NextPeriod(tc.month, tc.year)
		if m != tc.wantMonth || y != tc.wantYear {
			t.Fatalf("%d/%d expected %d/%d, got %d/%d", tc.month, tc.year, tc.wantMonth, tc.wantYear, m, y)
		}
	}
}

func TestMonthBounds(t *testing.T) {
	start, end := MonthBounds(12, 2026)
	if start.String() != "2026-12-01" || end.String() != "2027-01-01" {
		t.Fatalf("unexpected bounds %s .. %s", start, end)
	}
}

func TestMonthsBetween(t *testing.T) {
	cases := []struct {
		a, b Date
		want int
	}{
		{NewDate(2026, 1, 15), NewDate(2026, 7, 15), 6},
		{NewDate(2026, 1, 15), NewDate(2026, 7, 14), 5}, // not a full sixth month
		{NewDate(2026, 1, 15), NewDate(2026, 1, 20), 0},
		{NewDate(2026, 7, 15), NewDate(2026, 1, 15), -6},
		{NewDate(2026, 11, 1), NewDate(2027, 2, 1), 3}, // across year end
	}
	for _, tc := range cases {
		if got := MonthsBetween(tc.a, tc.b); got != tc.want {
			t.Fatalf("%s..%s expected %d, got %d", tc.a, tc.b, tc.want, got)
		}
	}
}

func TestDaysBetween(t *testing.T) {
	if got := DaysBetween(NewDate(2026, 8, 1), NewDate(2026, 8, 11)); got != 10 {
		t.Fatalf("expected 10, got %d", got)
	}
	if got := DaysBetween(NewDate(2026, 8, 11), NewDate(2026, 8, 1)); got != -10 {
		t.Fatalf("expected -10, got %d", got)
	}
}
