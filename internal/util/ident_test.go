package util

import (
	"strings"
	"testing"
)

func TestCleanPhone(t *testing.T) {
	cases := []struct {
		name  string
		input string
		want  string
		wantNil bool
	}{
		{name: "formatted br mobile", input: "(11) 98765-4321", want: "11987654321"},
		{name: "with country code", input: "+55 11 4002-8922", want: "551140028922"},
		{name: "already clean", input: "1140028922", want: "1140028922"},
		{name: "empty", input: "", wantNil: true},
		{name: "whitespace", input: "   ", wantNil: true},
		{name: "no digits", input: "abc", wantNil: true},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CleanPhone(tc.input)
			if tc.wantNil {
				if got != nil {
					t.Fatalf("got %q want nil", *got)
				}
				return
			}
			if got == nil || *got != tc.want {
				t.Fatalf("got %v want %s", got, tc.want)
			}
		})
	}
}

func TestCleanPhoneIdempotent(t *testing.T) {
	for _, input := range []string{"(11) 98765-4321", "tel: 4002-8922 ramal 12", "55"} {
		once := CleanPhone(input)
		if once == nil {
			t.Fatalf("unexpected nil for %q", input)
		}
		twice := CleanPhone(*once)
		if twice == nil || *twice != *once {
			t.Fatalf("not idempotent for %q: %v vs %v", input, once, twice)
		}
	}
}

func TestIsUUID(t *testing.T) {
	valid := []string{
		"6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"6BA7B810-9DAD-11D1-80B4-00C04FD430C8",
	}
	for _, v := range valid {
		if !IsUUID(v) {
			t.Fatalf("expected valid: %s", v)
		}
	}

	invalid := []string{
		"",
		"not-a-uuid",
		"6ba7b8109dad11d180b400c04fd430c8",
		"{6ba7b810-9dad-11d1-80b4-00c04fd430c8}",
		"urn:uuid:6ba7b810-9dad-11d1-80b4-00c04fd430c8",
		"6ba7b810-9dad-11d1-80b4-00c04fd430c",
		"gba7b810-9dad-11d1-80b4-00c04fd430c8",
	}
	for _, v := range invalid {
		if IsUUID(v) {
			t.Fatalf("expected invalid: %s", v)
		}
	}
}

func TestNewUniqueNumber(t *testing.T) {
	a := NewUniqueNumber("col")
	b := NewUniqueNumber("col")
	if a == b {
		t.Fatalf("consecutive numbers must differ: %s", a)
	}
	if !strings.HasPrefix(a, "COL-") {
		t.Fatalf("missing prefix: %s", a)
	}
	if a != strings.ToUpper(a) {
		t.Fatalf("not upper-cased: %s", a)
	}
	parts := strings.Split(a, "-")
	if len(parts) != 3 || len(parts[2]) != 5 {
		t.Fatalf("unexpected shape: %s", a)
	}
}
