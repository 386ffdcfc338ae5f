// Package subtle provides the low-level cryptographic primitives for the
// transform engine: an AES CBC-MAC pseudorandom function and the NIST
// SP 800-38G FF1 format-preserving cipher built on top of it.
//
// This package works with raw keys and digit slices. It should not be used
// directly by most users; the fpe and transform packages provide the
// high-level APIs.
package subtle

import (
	"crypto/aes"
	"crypto/cipher"
	"fmt"
)

// Mode selects the internal AES-CBC-MAC strategy. Both strategies produce
// bit-identical output for the same key and input; ModeCBCFast batches the
// chaining through crypto/cipher's CBC encryptor, which benefits from
// hardware AES where available.
type Mode int

const (
	// ModeCBC chains one block at a time through the raw AES block cipher.
	ModeCBC Mode = iota
	// ModeCBCFast runs a whole-input CBC pass and keeps the last block.
	ModeCBCFast
)

// ParseMode maps the wire-level mode names ("CBC", "CBC_FAST") to a Mode.
func ParseMode(s string) (Mode, error) {
	switch s {
	case "", "CBC":
		return ModeCBC, nil
	case "CBC_FAST":
		return ModeCBCFast, nil
	}
	return ModeCBC, fmt.Errorf("unknown AES mode %q", s)
}

// For all CBC-MAC calls the IV is always zero.
var ivZero = make([]byte, aes.BlockSize)

// cbcMode exposes the SetIV method crypto/aes CBC encryptors have but the
// cipher.BlockMode interface does not.
type cbcMode interface {
	cipher.BlockMode
	SetIV([]byte)
}

// PRF computes the block-cipher PRF FF1 requires: AES-CBC-MAC with a zero
// IV, returning the final 16-byte block. A PRF is read-only after
// construction and safe for concurrent use.
type PRF struct {
	block cipher.Block
	mode  Mode
}

// NewPRF returns a PRF keyed with an AES-128, AES-192 or AES-256 key.
func NewPRF(key []byte, mode Mode) (*PRF, error) {
	switch len(key) {
	case 16, 24, 32:
	default:
		return nil, fmt.Errorf("key length must be 128, 192, or 256 bits, got %d bits", len(key)*8)
	}

	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, fmt.Errorf("failed to create AES block: %w", err)
	}

	return &PRF{block: block, mode: mode}, nil
}

// Sum computes the CBC-MAC of input, whose length must be a multiple of the
// AES block size. The returned slice is freshly allocated.
func (p *PRF) Sum(input []byte) ([]byte, error) {
	if len(input) == 0 || len(input)%aes.BlockSize != 0 {
		return nil, fmt.Errorf("PRF input length %d is not a positive multiple of %d", len(input), aes.BlockSize)
	}

	mac := make([]byte, aes.BlockSize)

	if p.mode == ModeCBCFast {
		buf := make([]byte, len(input))
		enc := cipher.NewCBCEncrypter(p.block, ivZero).(cbcMode)
		enc.CryptBlocks(buf, input)
		copy(mac, buf[len(buf)-aes.BlockSize:])
		return mac, nil
	}

	for i := 0; i < len(input); i += aes.BlockSize {
		for j := 0; j < aes.BlockSize; j++ {
			mac[j] ^= input[i+j]
		}
		p.block.Encrypt(mac, mac)
	}
	return mac, nil
}

// Block encrypts a single 16-byte block in place of ECB mode, used by FF1 to
// extend the PRF output when more than one block of S is needed.
func (p *PRF) Block(dst, src []byte) {
	p.block.Encrypt(dst, src)
}
