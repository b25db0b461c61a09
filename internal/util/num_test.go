package util

import "testing"

func TestParseIntOr(t *testing.T) {
	cases := []struct {
		name     string
		input    any
		fallback int
		want     int
	}{
		{name: "plain", input: "3", fallback: 1, want: 3},
		{name: "float string", input: "2.0", fallback: 1, want: 2},
		{name: "float value", input: 4.0, fallback: 1, want: 4},
		{name: "int value", input: 7, fallback: 1, want: 7},
		{name: "garbage", input: "muitos", fallback: 1, want: 1},
		{name: "empty", input: "", fallback: 1, want: 1},
		{name: "nil", input: nil, fallback: 1, want: 1},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			if got := ParseIntOr(tc.input, tc.fallback); got != tc.want {
				t.Fatalf("got %d want %d", got, tc.want)
			}
		})
	}
}

func TestParseFloatPtr(t *testing.T) {
	cases := []struct {
		name  string
		input any
		want  float64
		none  bool
	}{
		{name: "br decimal", input: "12,50", want: 12.5},
		{name: "br grouped", input: "1.234,56", want: 1234.56},
		{name: "us grouped", input: "1,234.56", want: 1234.56},
		{name: "currency prefix", input: "R$ 99,90", want: 99.9},
		{name: "plain", input: "10", want: 10},
		{name: "float value", input: 2.5, want: 2.5},
		{name: "garbage", input: "caro", none: true},
		{name: "empty", input: "", none: true},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := ParseFloatPtr(tc.input)
			if tc.none {
				if got != nil {
					t.Fatalf("got %v want nil", *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Fatalf("got %v want %v", got, tc.want)
			}
		})
	}
}
