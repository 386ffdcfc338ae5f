package fpe

import (
	"reflect"
	"testing"
)

func TestAlphabetForRadix(t *testing.T) {
	for _, radix := range []int{2, 10, 16, 36, 62, 85, 94} {
		a, err := AlphabetForRadix(radix)
		if err != nil {
			t.Fatalf("AlphabetForRadix(%d): %v", radix, err)
		}
		if a.Radix() != radix {
			t.Errorf("radix %d: alphabet size %d", radix, a.Radix())
		}
	}

	if _, err := AlphabetForRadix(7); err == nil {
		t.Error("want error for unsupported radix")
	}
}

func TestAlphabetEncodeDecode(t *testing.T) {
	a, err := AlphabetForRadix(16)
	if err != nil {
		t.Fatalf("AlphabetForRadix: %v", err)
	}

	ds, err := a.Encode("0af9")
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if !reflect.DeepEqual(ds, []uint16{0, 10, 15, 9}) {
		t.Fatalf("Encode = %v", ds)
	}

	s, err := a.Decode(ds)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if s != "0af9" {
		t.Fatalf("Decode = %q", s)
	}

	if _, err := a.Encode("0g"); err == nil {
		t.Error("want error for out-of-alphabet character")
	}
	if _, err := a.Decode([]uint16{16}); err == nil {
		t.Error("want error for out-of-range digit")
	}
}

func TestNewAlphabetValidation(t *testing.T) {
	if _, err := NewAlphabet("a"); err == nil {
		t.Error("want error for single-character alphabet")
	}
	if _, err := NewAlphabet("abca"); err == nil {
		t.Error("want error for duplicate character")
	}
}

func TestCleanupDirtyupRoundTrip(t *testing.T) {
	a, err := AlphabetForRadix(10)
	if err != nil {
		t.Fatalf("AlphabetForRadix: %v", err)
	}

	cases := []string{
		"4123-5678-9123-4567",
		"(555) 867-5309",
		"no digits at all",
		"12",
		"",
		"---",
		"héllo 42 wörld",
	}

	for _, in := range cases {
		clean, mask := CleanupValue(in, a)
		for _, r := range clean {
			if !a.Contains(r) {
				t.Errorf("%q: clean part contains dirty rune %q", in, r)
			}
		}
		if got := DirtyupValue(clean, mask); got != in {
			t.Errorf("round trip %q -> %q", in, got)
		}
	}
}

func TestCleanupValueMaskPositions(t *testing.T) {
	a, err := AlphabetForRadix(10)
	if err != nil {
		t.Fatalf("AlphabetForRadix: %v", err)
	}

	clean, mask := CleanupValue("12-34", a)
	if clean != "1234" {
		t.Fatalf("clean = %q", clean)
	}
	if len(mask) != 1 || mask[0].Pos != 2 || mask[0].Char != '-' {
		t.Fatalf("mask = %+v", mask)
	}
}
