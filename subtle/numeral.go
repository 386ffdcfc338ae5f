package subtle

import (
	"math/big"
)

// num interprets a digit slice as a base-radix number, most significant digit
// first. This is NUM_radix(X) from the NIST spec.
func num(digits []uint16, radix int) *big.Int {
	result := new(big.Int)
	br := big.NewInt(int64(radix))
	d := new(big.Int)

	for _, digit := range digits {
		result.Mul(result, br)
		result.Add(result, d.SetInt64(int64(digit)))
	}
	return result
}

// str converts a number to its base-radix digit representation of exactly
// the given length, zero-padded on the left. This is STR_m^radix(x).
func str(val *big.Int, radix int, length int) []uint16 {
	result := make([]uint16, length)
	br := big.NewInt(int64(radix))
	rem := new(big.Int)
	tmp := new(big.Int).Set(val)

	for i := length - 1; i >= 0; i-- {
		tmp.DivMod(tmp, br, rem)
		result[i] = uint16(rem.Int64())
	}
	return result
}

// numBytes returns the big-endian byte representation of NUM_radix(digits)
// left-padded to exactly width bytes. Assumes the value fits.
func numBytes(digits []uint16, radix int, width int) []byte {
	raw := num(digits, radix).Bytes()
	out := make([]byte, width)
	copy(out[width-len(raw):], raw)
	return out
}
