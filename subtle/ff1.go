package subtle

import (
	"encoding/binary"
	"fmt"
	"math"
	"math/big"
)

const (
	numRounds = 10

	// NIST SP 800-38G recommends radix^minLen >= 1,000,000. The value
	// codec deliberately does not enforce that: integers shorter than two
	// digits are passed through at a higher layer, and the float mantissa
	// path encrypts suffixes as short as two bits.
	minLen = 2
	maxLen = math.MaxUint32
)

// FormatError reports an input that FF1 cannot operate on: a numeral string
// whose length is out of bounds or whose digits are outside the radix.
type FormatError struct {
	msg string
}

func (e *FormatError) Error() string { return e.msg }

func formatErrorf(format string, args ...any) *FormatError {
	return &FormatError{msg: fmt.Sprintf(format, args...)}
}

// Cipher is an instance of FF1 format-preserving encryption for a particular
// key and radix. The tweak is supplied per call. A Cipher is read-only after
// construction and safe for concurrent use.
type Cipher struct {
	prf   *PRF
	radix int
}

// NewCipher initializes an FF1 cipher over numeral strings in the given
// radix. The key must be 16, 24, or 32 bytes.
func NewCipher(key []byte, radix int, mode Mode) (*Cipher, error) {
	if radix < 2 || radix > 1<<16 {
		return nil, fmt.Errorf("radix must be between 2 and 65536, got %d", radix)
	}

	prf, err := NewPRF(key, mode)
	if err != nil {
		return nil, err
	}

	return &Cipher{prf: prf, radix: radix}, nil
}

// Radix returns the numeral base this cipher operates in.
func (f *Cipher) Radix() int { return f.radix }

// Encrypt maps a numeral string (digits in [0, radix), most significant
// first) to a ciphertext numeral string of the same length. Deterministic
// for a fixed key and tweak; inverted exactly by Decrypt.
func (f *Cipher) Encrypt(x []uint16, tweak []byte) ([]uint16, error) {
	return f.crypt(x, tweak, true)
}

// Decrypt is the inverse of Encrypt for the same key and tweak.
func (f *Cipher) Decrypt(x []uint16, tweak []byte) ([]uint16, error) {
	return f.crypt(x, tweak, false)
}

func (f *Cipher) crypt(x []uint16, tweak []byte, encrypt bool) ([]uint16, error) {
	n := len(x)
	if n < minLen || uint64(n) > maxLen {
		return nil, formatErrorf("message length %d is not within min %d and max %d bounds", n, minLen, int64(maxLen))
	}
	for i, digit := range x {
		if int(digit) >= f.radix {
			return nil, formatErrorf("digit %d at position %d is not within radix %d", digit, i, f.radix)
		}
	}

	radix := f.radix
	t := len(tweak)

	// Split point per the NIST spec; v >= u, so the right half bounds the
	// byte width b of every half fed to the round function.
	u := n / 2
	v := n - u

	A := append([]uint16(nil), x[:u]...)
	B := append([]uint16(nil), x[u:]...)

	b := int(math.Ceil(math.Ceil(float64(v)*math.Log2(float64(radix))) / 8))
	d := 4*((b+3)/4) + 4

	numPad := (-t - b - 1) % 16
	if numPad < 0 {
		numPad += 16
	}

	// PQ is P || Q encrypted in place by the PRF each round; only the round
	// marker and the trailing b bytes of Q change between rounds.
	const lenP = 16
	lenQ := t + numPad + 1 + b
	PQ := make([]byte, lenP+lenQ)

	PQ[0] = 0x01
	PQ[1] = 0x02
	PQ[2] = 0x01
	PQ[3] = byte(radix >> 16)
	binary.BigEndian.PutUint16(PQ[4:6], uint16(radix))
	PQ[6] = numRounds
	PQ[7] = byte(u) // mod 256 via overflow
	binary.BigEndian.PutUint32(PQ[8:12], uint32(n))
	binary.BigEndian.PutUint32(PQ[12:lenP], uint32(t))
	copy(PQ[lenP:lenP+t], tweak)

	maxJ := (d + 15) / 16

	var (
		y, c, mod big.Int
		br        = big.NewInt(int64(radix))
		bm        big.Int
		temp      = make([]byte, 16)
	)

	for r := 0; r < numRounds; r++ {
		i := r
		if !encrypt {
			i = numRounds - 1 - r
		}

		// The half folded into Q is B when encrypting and A when
		// decrypting; its length never exceeds v, so it fits in b bytes.
		folded := B
		if !encrypt {
			folded = A
		}

		PQ[lenP+t+numPad] = byte(i)
		copy(PQ[lenP+lenQ-b:], numBytes(folded, radix, b))

		R, err := f.prf.Sum(PQ)
		if err != nil {
			return nil, err
		}

		// Extend R to at least d bytes: S = R || CIPH(R xor [j]) ...
		Y := R
		for j := 1; j < maxJ; j++ {
			for k := 0; k < 8; k++ {
				temp[k] = R[k]
			}
			binary.BigEndian.PutUint64(temp[8:], uint64(j))
			for k := 8; k < 16; k++ {
				temp[k] ^= R[k]
			}
			block := make([]byte, 16)
			f.prf.Block(block, temp)
			Y = append(Y, block...)
		}

		var m int
		if i%2 == 0 {
			m = u
		} else {
			m = v
		}

		y.SetBytes(Y[:d])
		mod.Exp(br, bm.SetInt64(int64(m)), nil)

		if encrypt {
			c.Add(num(A, radix), &y)
		} else {
			c.Sub(num(B, radix), &y)
		}
		c.Mod(&c, &mod)

		C := str(&c, radix, m)

		if encrypt {
			A, B = B, C
		} else {
			B, A = A, C
		}
	}

	out := make([]uint16, 0, n)
	out = append(out, A...)
	out = append(out, B...)
	return out, nil
}
