package fpe

import (
	"encoding/hex"
	"fmt"
	"math/big"
	"strconv"
	"strings"

	"github.com/vdparikh/transform/subtle"
)

// FPE is a format-preserving value cipher: it encrypts strings in a working
// alphabet (out-of-alphabet characters preserved in place), integers as
// decimal digit strings with the sign preserved, and floats through the
// mantissa-suffix transform. All three paths share one AES key.
//
// An FPE is read-only after construction and safe for concurrent use. Same
// key, same input, same output: every operation is deterministic and the
// Decrypt* methods are exact inverses.
type FPE struct {
	alphabet  *Alphabet
	strCipher *subtle.Cipher
	intCipher *subtle.Cipher
	binCipher *subtle.Cipher
	precision int
}

// DefaultFloatPrecision is the decimal precision preserved by the float
// transform when none is configured.
const DefaultFloatPrecision = 6

type settings struct {
	precision int
	mode      subtle.Mode
	alphabet  *Alphabet
}

// Option configures optional FPE behavior.
type Option func(*settings)

// WithFloatPrecision sets how many decimal digits of a float's magnitude
// survive encryption.
func WithFloatPrecision(p int) Option {
	return func(s *settings) { s.precision = p }
}

// WithMode selects the AES-CBC-MAC strategy (portable or batched fast path).
func WithMode(m subtle.Mode) Option {
	return func(s *settings) { s.mode = m }
}

// WithAlphabet substitutes a custom alphabet for the predefined radix table.
// The alphabet's size must equal the configured radix.
func WithAlphabet(a *Alphabet) Option {
	return func(s *settings) { s.alphabet = a }
}

// New builds an FPE from a hex-encoded AES key (32, 48 or 64 hex characters)
// and a radix with a predefined alphabet.
func New(secretHex string, radix int, opts ...Option) (*FPE, error) {
	key, err := hex.DecodeString(strings.TrimSpace(secretHex))
	if err != nil {
		return nil, fmt.Errorf("secret is not valid hex: %w", err)
	}
	return NewWithKey(key, radix, opts...)
}

// NewWithKey builds an FPE from raw AES key bytes (16, 24 or 32 bytes).
func NewWithKey(key []byte, radix int, opts ...Option) (*FPE, error) {
	cfg := settings{precision: DefaultFloatPrecision, mode: subtle.ModeCBC}
	for _, opt := range opts {
		opt(&cfg)
	}

	alphabet := cfg.alphabet
	if alphabet == nil {
		var err error
		alphabet, err = AlphabetForRadix(radix)
		if err != nil {
			return nil, err
		}
	}
	if alphabet.Radix() != radix {
		return nil, fmt.Errorf("alphabet size %d does not match radix %d", alphabet.Radix(), radix)
	}

	strCipher, err := subtle.NewCipher(key, radix, cfg.mode)
	if err != nil {
		return nil, err
	}
	intCipher, err := subtle.NewCipher(key, 10, cfg.mode)
	if err != nil {
		return nil, err
	}
	binCipher, err := subtle.NewCipher(key, 2, cfg.mode)
	if err != nil {
		return nil, err
	}

	return &FPE{
		alphabet:  alphabet,
		strCipher: strCipher,
		intCipher: intCipher,
		binCipher: binCipher,
		precision: cfg.precision,
	}, nil
}

// Radix returns the configured string radix.
func (f *FPE) Radix() int { return f.alphabet.Radix() }

// EncryptString encrypts the alphabet characters of s in place; characters
// outside the alphabet keep their positions verbatim. A clean length below
// the FF1 minimum is a *subtle.FormatError.
func (f *FPE) EncryptString(s string) (string, error) {
	return f.cryptString(s, true)
}

// DecryptString is the inverse of EncryptString.
func (f *FPE) DecryptString(s string) (string, error) {
	return f.cryptString(s, false)
}

func (f *FPE) cryptString(s string, encrypt bool) (string, error) {
	clean, mask := CleanupValue(s, f.alphabet)

	ds, err := f.alphabet.Encode(clean)
	if err != nil {
		return "", err
	}

	if encrypt {
		ds, err = f.strCipher.Encrypt(ds, nil)
	} else {
		ds, err = f.strCipher.Decrypt(ds, nil)
	}
	if err != nil {
		return "", err
	}

	out, err := f.alphabet.Decode(ds)
	if err != nil {
		return "", err
	}
	return DirtyupValue(out, mask), nil
}

// EncryptIntString encrypts a base-10 integer literal, preserving an
// optional leading sign. Values shorter than two digits are returned
// unchanged: FF1 has a minimum length, and skipping tiny integers is the
// documented policy rather than an error. Literals with a leading zero are
// rejected; they do not survive integer conversion, so they belong to the
// string path.
func (f *FPE) EncryptIntString(s string) (string, error) {
	return f.cryptIntString(s, true)
}

// DecryptIntString is the inverse of EncryptIntString.
func (f *FPE) DecryptIntString(s string) (string, error) {
	return f.cryptIntString(s, false)
}

func (f *FPE) cryptIntString(s string, encrypt bool) (string, error) {
	sign := ""
	body := s
	if strings.HasPrefix(body, "-") || strings.HasPrefix(body, "+") {
		sign, body = body[:1], body[1:]
	}

	if len(body) < 2 {
		return s, nil
	}

	ds := make([]uint16, len(body))
	for i := 0; i < len(body); i++ {
		if body[i] < '0' || body[i] > '9' {
			return "", fmt.Errorf("%q is not an integer literal", s)
		}
		ds[i] = uint16(body[i] - '0')
	}
	if ds[0] == 0 {
		// A leading zero cannot survive the numeric round trip, so such
		// inputs are outside the integer domain.
		return "", fmt.Errorf("%q has a leading zero; encrypt it as a string instead", s)
	}

	// Cycle-walk to keep the ciphertext inside the no-leading-zero domain:
	// a leading zero would be dropped by the integer conversion and break
	// the decrypt round trip. FF1 is a permutation, so walking terminates
	// and decryption walks the same cycle backwards.
	crypt := f.intCipher.Encrypt
	if !encrypt {
		crypt = f.intCipher.Decrypt
	}
	var err error
	for {
		ds, err = crypt(ds, nil)
		if err != nil {
			return "", err
		}
		if ds[0] != 0 {
			break
		}
	}

	out := make([]byte, len(ds))
	for i, d := range ds {
		out[i] = byte('0' + d)
	}
	return sign + string(out), nil
}

// EncryptInt64 encrypts an integer value. The ciphertext of a 19-digit
// value can exceed the int64 range; that case reports an error, and callers
// needing full width should use EncryptIntString.
func (f *FPE) EncryptInt64(v int64) (int64, error) {
	s, err := f.EncryptIntString(strconv.FormatInt(v, 10))
	if err != nil {
		return 0, err
	}
	out, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("ciphertext %s does not fit in int64", s)
	}
	return out, nil
}

// DecryptInt64 is the inverse of EncryptInt64.
func (f *FPE) DecryptInt64(v int64) (int64, error) {
	s, err := f.DecryptIntString(strconv.FormatInt(v, 10))
	if err != nil {
		return 0, err
	}
	out, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("plaintext %s does not fit in int64", s)
	}
	return out, nil
}

// EncryptBigInt encrypts an arbitrary-precision integer. The sign stays out
// of the numeral string, as with EncryptIntString.
func (f *FPE) EncryptBigInt(v *big.Int) (*big.Int, error) {
	return f.cryptBigInt(v, true)
}

// DecryptBigInt is the inverse of EncryptBigInt.
func (f *FPE) DecryptBigInt(v *big.Int) (*big.Int, error) {
	return f.cryptBigInt(v, false)
}

func (f *FPE) cryptBigInt(v *big.Int, encrypt bool) (*big.Int, error) {
	if v == nil {
		return nil, fmt.Errorf("nil big.Int")
	}
	s, err := f.cryptIntString(v.Text(10), encrypt)
	if err != nil {
		return nil, err
	}
	out, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, fmt.Errorf("internal error: %q is not an integer", s)
	}
	return out, nil
}

// EncryptDigits encrypts a raw base-10 digit slice with an empty tweak. Used
// by derived-value schemes (date shifting) that need the numeral directly.
func (f *FPE) EncryptDigits(ds []uint16) ([]uint16, error) {
	return f.intCipher.Encrypt(ds, nil)
}

// DecryptDigits is the inverse of EncryptDigits.
func (f *FPE) DecryptDigits(ds []uint16) ([]uint16, error) {
	return f.intCipher.Decrypt(ds, nil)
}

// EncryptFloat64 encrypts the low mantissa bits of v, preserving its sign,
// exponent and roughly the configured number of decimal digits. Values whose
// preserved prefix would exceed the mantissa pass through unchanged.
func (f *FPE) EncryptFloat64(v float64) (float64, error) {
	return cryptFloat(f.binCipher, v, f.precision, true)
}

// DecryptFloat64 is the inverse of EncryptFloat64.
func (f *FPE) DecryptFloat64(v float64) (float64, error) {
	return cryptFloat(f.binCipher, v, f.precision, false)
}

// EncryptValue dispatches on the dynamic type of a record value.
func (f *FPE) EncryptValue(v any) (any, error) {
	return f.cryptValue(v, true)
}

// DecryptValue is the inverse of EncryptValue.
func (f *FPE) DecryptValue(v any) (any, error) {
	return f.cryptValue(v, false)
}

func (f *FPE) cryptValue(v any, encrypt bool) (any, error) {
	crypt := func(s string) (string, error) {
		if encrypt {
			return f.EncryptString(s)
		}
		return f.DecryptString(s)
	}
	cryptInt := func(s string) (string, error) {
		if encrypt {
			return f.EncryptIntString(s)
		}
		return f.DecryptIntString(s)
	}

	switch val := v.(type) {
	case string:
		return crypt(val)
	case int, int32, int64:
		var n int64
		switch i := val.(type) {
		case int:
			n = int64(i)
		case int32:
			n = int64(i)
		case int64:
			n = i
		}
		s, err := cryptInt(strconv.FormatInt(n, 10))
		if err != nil {
			return nil, err
		}
		if out, err := strconv.ParseInt(s, 10, 64); err == nil {
			return out, nil
		}
		// 19-digit ciphertexts can overflow int64; keep the digits.
		return s, nil
	case float64:
		return cryptFloat(f.binCipher, val, f.precision, encrypt)
	case float32:
		return cryptFloat(f.binCipher, float64(val), f.precision, encrypt)
	default:
		return nil, fmt.Errorf("unsupported value type %T", v)
	}
}
