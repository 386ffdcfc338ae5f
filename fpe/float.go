package fpe

import (
	"math"

	"github.com/vdparikh/transform/subtle"
)

const (
	mantissaBits = 52

	// Offsets past this leave fewer than two mantissa bits to encrypt;
	// such values pass through unmodified rather than erroring.
	maxMantissaOffset = 50
)

// mantissaOffset computes how many leading mantissa bits to preserve so that
// roughly `precision` decimal digits of the value survive encryption.
func mantissaOffset(v float64, precision int) int {
	offset := int(math.Floor(math.Log2(math.Abs(v)))) +
		int(math.Ceil(float64(precision)*math.Log2(10)))
	if offset < 0 {
		offset = 0
	}
	return offset
}

// cryptFloat encrypts or decrypts the mantissa suffix of an IEEE-754 double.
// The sign, exponent and the first `offset` mantissa bits are untouched, so
// the offset is recomputable from the output and the operation is exactly
// invertible. Zero, NaN, infinities and offsets past maxMantissaOffset pass
// through unchanged.
func cryptFloat(c *subtle.Cipher, v float64, precision int, encrypt bool) (float64, error) {
	if v == 0 || math.IsNaN(v) || math.IsInf(v, 0) {
		return v, nil
	}

	offset := mantissaOffset(v, precision)
	if offset > maxMantissaOffset {
		return v, nil
	}

	bits := math.Float64bits(v)
	suffixLen := mantissaBits - offset
	suffixMask := uint64(1)<<suffixLen - 1
	suffix := bits & suffixMask

	// The suffix as a base-2 numeral string, most significant bit first.
	ds := make([]uint16, suffixLen)
	for i := 0; i < suffixLen; i++ {
		ds[i] = uint16((suffix >> (suffixLen - 1 - i)) & 1)
	}

	var err error
	if encrypt {
		ds, err = c.Encrypt(ds, nil)
	} else {
		ds, err = c.Decrypt(ds, nil)
	}
	if err != nil {
		return 0, err
	}

	var newSuffix uint64
	for _, d := range ds {
		newSuffix = newSuffix<<1 | uint64(d)
	}

	return math.Float64frombits(bits&^suffixMask | newSuffix), nil
}
