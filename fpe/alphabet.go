// Package fpe adapts native field values (strings, integers, IEEE-754
// floats) to and from the numeral-string domain the subtle.Cipher operates
// on, and bundles the result into a high-level value cipher.
package fpe

import (
	"fmt"
)

const (
	digits    = "0123456789"
	lowercase = "abcdefghijklmnopqrstuvwxyz"
	uppercase = "ABCDEFGHIJKLMNOPQRSTUVWXYZ"
)

// Predefined alphabets for the supported radixes. Radix 85 is the RFC 1924
// character set; radix 94 is the printable ASCII range in code-point order.
var radixAlphabets = map[int]string{
	2:  "01",
	10: digits,
	16: digits + "abcdef",
	36: digits + lowercase,
	62: digits + lowercase + uppercase,
	85: digits + uppercase + lowercase + "!#$%&()*+-;<=>?@^_`{|}~",
	94: "!\"#$%&'()*+,-./" + digits + ":;<=>?@" + uppercase + "[\\]^_`" + lowercase + "{|}~",
}

// Alphabet maps characters to digits in [0, radix) and back. Alphabets are
// read-only after construction.
type Alphabet struct {
	chars []rune
	index map[rune]uint16
}

// NewAlphabet builds a custom alphabet from an ordered set of distinct
// characters. The radix is the character count.
func NewAlphabet(chars string) (*Alphabet, error) {
	runes := []rune(chars)
	if len(runes) < 2 {
		return nil, fmt.Errorf("alphabet must contain at least 2 characters, got %d", len(runes))
	}

	index := make(map[rune]uint16, len(runes))
	for i, r := range runes {
		if _, dup := index[r]; dup {
			return nil, fmt.Errorf("alphabet contains duplicate character %q", r)
		}
		index[r] = uint16(i)
	}
	return &Alphabet{chars: runes, index: index}, nil
}

// AlphabetForRadix returns the predefined alphabet for one of the supported
// radixes (2, 10, 16, 36, 62, 85, 94).
func AlphabetForRadix(radix int) (*Alphabet, error) {
	chars, ok := radixAlphabets[radix]
	if !ok {
		return nil, fmt.Errorf("no predefined alphabet for radix %d (supported: 2, 10, 16, 36, 62, 85, 94)", radix)
	}
	return NewAlphabet(chars)
}

// Radix returns the alphabet size.
func (a *Alphabet) Radix() int { return len(a.chars) }

// Contains reports whether r is part of the alphabet.
func (a *Alphabet) Contains(r rune) bool {
	_, ok := a.index[r]
	return ok
}

// Encode maps a clean string (every character in the alphabet) to digits.
func (a *Alphabet) Encode(s string) ([]uint16, error) {
	out := make([]uint16, 0, len(s))
	for _, r := range s {
		d, ok := a.index[r]
		if !ok {
			return nil, fmt.Errorf("character %q is not in the alphabet", r)
		}
		out = append(out, d)
	}
	return out, nil
}

// Decode maps digits back to their characters.
func (a *Alphabet) Decode(ds []uint16) (string, error) {
	out := make([]rune, len(ds))
	for i, d := range ds {
		if int(d) >= len(a.chars) {
			return "", fmt.Errorf("digit %d is out of range for radix %d", d, len(a.chars))
		}
		out[i] = a.chars[d]
	}
	return string(out), nil
}
