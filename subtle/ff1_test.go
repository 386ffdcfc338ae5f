package subtle

import (
	"errors"
	"math/big"
	"reflect"
	"testing"

	refff1 "github.com/capitalone/fpe/ff1"
)

const base36 = "0123456789abcdefghijklmnopqrstuvwxyz"

func digitsOf(t *testing.T, s string, radix int) []uint16 {
	t.Helper()
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		d := -1
		for i, c := range base36 {
			if c == r {
				d = i
				break
			}
		}
		if d < 0 || d >= radix {
			t.Fatalf("character %q not valid in radix %d", r, radix)
		}
		out = append(out, uint16(d))
	}
	return out
}

func stringOf(ds []uint16) string {
	out := make([]byte, len(ds))
	for i, d := range ds {
		out[i] = base36[d]
	}
	return string(out)
}

// Sample vectors from NIST SP 800-38G Appendix A (FF1 examples).
func TestCipherNISTVectors(t *testing.T) {
	cases := []struct {
		name  string
		key   string
		tweak string
		radix int
		pt    string
		ct    string
	}{
		{
			name:  "aes128/no-tweak",
			key:   "2b7e151628aed2a6abf7158809cf4f3c",
			radix: 10,
			pt:    "0123456789",
			ct:    "2433477484",
		},
		{
			name:  "aes128/tweak",
			key:   "2b7e151628aed2a6abf7158809cf4f3c",
			tweak: "39383736353433323130",
			radix: 10,
			pt:    "0123456789",
			ct:    "6124200773",
		},
		{
			name:  "aes128/radix36",
			key:   "2b7e151628aed2a6abf7158809cf4f3c",
			tweak: "3737373770717171737373",
			radix: 36,
			pt:    "0123456789abcdefghi",
			ct:    "a9tv40mll9kdu509eum",
		},
		{
			name:  "aes256/no-tweak",
			key:   "2b7e151628aed2a6abf7158809cf4f3cef4359d8d580aa4f7f036d6f04fc6a94",
			radix: 10,
			pt:    "0123456789",
			ct:    "6657667009",
		},
	}

	for _, tc := range cases {
		for _, mode := range []Mode{ModeCBC, ModeCBCFast} {
			t.Run(tc.name, func(t *testing.T) {
				c, err := NewCipher(mustHex(t, tc.key), tc.radix, mode)
				if err != nil {
					t.Fatalf("NewCipher: %v", err)
				}

				var tweak []byte
				if tc.tweak != "" {
					tweak = mustHex(t, tc.tweak)
				}

				ct, err := c.Encrypt(digitsOf(t, tc.pt, tc.radix), tweak)
				if err != nil {
					t.Fatalf("Encrypt: %v", err)
				}
				if got := stringOf(ct); got != tc.ct {
					t.Fatalf("Encrypt(%s) = %s, want %s", tc.pt, got, tc.ct)
				}

				pt, err := c.Decrypt(ct, tweak)
				if err != nil {
					t.Fatalf("Decrypt: %v", err)
				}
				if got := stringOf(pt); got != tc.pt {
					t.Fatalf("Decrypt round trip = %s, want %s", got, tc.pt)
				}
			})
		}
	}
}

// Cross-check against an independent FF1 implementation over a spread of
// radixes and lengths.
func TestCipherCrossImplementation(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3cef4359d8d580aa4f")
	tweak := []byte("batch-7")

	cases := []struct {
		radix int
		pt    string
	}{
		{10, "4123567891234567"},
		{10, "00010203"},
		{16, "deadbeef42"},
		{36, "transformworkload77"},
		{2, "10110100111000101101"},
	}

	for _, tc := range cases {
		c, err := NewCipher(key, tc.radix, ModeCBC)
		if err != nil {
			t.Fatalf("NewCipher: %v", err)
		}
		ref, err := refff1.NewCipher(tc.radix, len(tweak), key, tweak)
		if err != nil {
			t.Fatalf("reference NewCipher: %v", err)
		}

		got, err := c.Encrypt(digitsOf(t, tc.pt, tc.radix), tweak)
		if err != nil {
			t.Fatalf("Encrypt: %v", err)
		}
		want, err := ref.Encrypt(tc.pt)
		if err != nil {
			t.Fatalf("reference Encrypt: %v", err)
		}
		if stringOf(got) != want {
			t.Errorf("radix %d %q: got %s, reference %s", tc.radix, tc.pt, stringOf(got), want)
		}
	}
}

func TestCipherRoundTripAllRadixes(t *testing.T) {
	key := mustHex(t, "2b7e151628aed2a6abf7158809cf4f3c")

	for _, radix := range []int{2, 10, 16, 36, 62, 85, 94} {
		c, err := NewCipher(key, radix, ModeCBCFast)
		if err != nil {
			t.Fatalf("radix %d: NewCipher: %v", radix, err)
		}

		for _, n := range []int{2, 7, 19, 40} {
			pt := make([]uint16, n)
			for i := range pt {
				pt[i] = uint16((i*13 + n) % radix)
			}

			ct, err := c.Encrypt(pt, []byte{0x01, 0x02})
			if err != nil {
				t.Fatalf("radix %d len %d: Encrypt: %v", radix, n, err)
			}
			if len(ct) != n {
				t.Fatalf("radix %d len %d: ciphertext length %d", radix, n, len(ct))
			}

			back, err := c.Decrypt(ct, []byte{0x01, 0x02})
			if err != nil {
				t.Fatalf("radix %d len %d: Decrypt: %v", radix, n, err)
			}
			if !reflect.DeepEqual(back, pt) {
				t.Fatalf("radix %d len %d: round trip %v != %v", radix, n, back, pt)
			}
		}
	}
}

func TestCipherFormatErrors(t *testing.T) {
	c, err := NewCipher(make([]byte, 16), 10, ModeCBC)
	if err != nil {
		t.Fatalf("NewCipher: %v", err)
	}

	var fe *FormatError

	if _, err := c.Encrypt([]uint16{5}, nil); !errors.As(err, &fe) {
		t.Errorf("single digit: got %v, want FormatError", err)
	}
	if _, err := c.Encrypt([]uint16{3, 10}, nil); !errors.As(err, &fe) {
		t.Errorf("digit out of radix: got %v, want FormatError", err)
	}

	if _, err := NewCipher(make([]byte, 16), 1, ModeCBC); err == nil {
		t.Error("radix 1: want construction error")
	}
	if _, err := NewCipher(make([]byte, 20), 10, ModeCBC); err == nil {
		t.Error("20-byte key: want construction error")
	}
}

func TestNumeralConversions(t *testing.T) {
	ds := []uint16{0, 7, 3, 9}
	val := num(ds, 10)
	if val.Cmp(big.NewInt(739)) != 0 {
		t.Fatalf("num = %v, want 739", val)
	}
	if back := str(val, 10, 4); !reflect.DeepEqual(back, ds) {
		t.Fatalf("str = %v, want %v", back, ds)
	}

	raw := numBytes([]uint16{1, 0}, 2, 4)
	if !reflect.DeepEqual(raw, []byte{0, 0, 0, 2}) {
		t.Fatalf("numBytes = %v", raw)
	}
}
