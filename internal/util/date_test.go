package util

import (
	"testing"
	"time"
)

func TestNormalizeDateLayouts(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
	}{
		{name: "br slash", input: "25/03/2024", want: "2024-03-25"},
		{name: "br slash short", input: "5/3/2024", want: "2024-03-05"},
		{name: "br dash", input: "25-03-2024", want: "2024-03-25"},
		{name: "br dot", input: "25.03.2024", want: "2024-03-25"},
		{name: "br two digit year", input: "25/03/24", want: "2024-03-25"},
		{name: "iso", input: "2024-03-25", want: "2024-03-25"},
		{name: "iso slash", input: "2024/03/25", want: "2024-03-25"},
		{name: "us fallback", input: "03/25/2024", want: "2024-03-25"},
		{name: "padded", input: " 25/03/2024 ", want: "2024-03-25"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := NormalizeDate(tc.input); got != tc.want {
				t.Fatalf("got %s want %s", got, tc.want)
			}
		})
	}
}

func TestNormalizeDateDayFirstWins(t *testing.T) {
	// Ambiguous between locales; day-first is tried first.
	if got := NormalizeDate("03/04/2024"); got != "2024-04-03" {
		t.Fatalf("got %s want 2024-04-03", got)
	}
}

func TestNormalizeDateExcelSerial(t *testing.T) {
	if got := NormalizeDate(45292); got != "2024-01-01" {
		t.Fatalf("serial 45292: got %s want 2024-01-01", got)
	}
	if got := NormalizeDate(float64(45292)); got != "2024-01-01" {
		t.Fatalf("serial 45292.0: got %s want 2024-01-01", got)
	}
	if got := NormalizeDate(2); got != "1900-01-01" {
		t.Fatalf("serial 2: got %s want 1900-01-01", got)
	}
}

func TestNormalizeDateTimeValue(t *testing.T) {
	d := time.Date(2023, 7, 14, 10, 30, 0, 0, time.UTC)
	if got := NormalizeDate(d); got != "2023-07-14" {
		t.Fatalf("got %s", got)
	}
}

func TestNormalizeDateNeverFails(t *testing.T) {
	today := time.Now().Format("2006-01-02")
	for _, input := range []any{nil, "", "   ", "not a date", "99/99/9999", "////", float64(99999999), struct{}{}} {
		if got := NormalizeDate(input); got != today {
			t.Fatalf("input %v: got %s want today (%s)", input, got, today)
		}
	}
}

func TestNormalizeDateRoundTrip(t *testing.T) {
	d := time.Date(2022, 11, 9, 0, 0, 0, 0, time.UTC)
	layouts := []string{"02/01/2006", "02-01-2006", "02.01.2006", "2006-01-02", "2006/01/02"}
	for _, layout := range layouts {
		if got := NormalizeDate(d.Format(layout)); got != "2022-11-09" {
			t.Fatalf("layout %s: got %s", layout, got)
		}
	}
}
