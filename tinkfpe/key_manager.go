// Package tinkfpe sources FPE key material for the transform engine from
// Tink keysets. Tink has no native format-preserving primitive, so this
// package registers a KeyManager under a dedicated type URL and exposes
// helpers for turning keyset handles (including raw HSM imports) into
// fpe.FPE value ciphers.
package tinkfpe

import (
	"crypto/rand"
	"encoding/binary"
	"fmt"

	"github.com/google/tink/go/core/registry"
	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"
	"github.com/google/tink/go/proto/tink_go_proto"
	"google.golang.org/protobuf/proto"

	"github.com/vdparikh/transform/fpe"
)

const (
	// FPEKeyTypeURL is the type URL for FF1 transform keys in Tink's registry.
	FPEKeyTypeURL = "type.googleapis.com/google.crypto.tink.TransformFf1Key"

	// symmetric is tink_go_proto.KeyData_SYMMETRIC.
	symmetric = 2
)

// KeyManager implements registry.KeyManager for transform FPE keys, so
// keysets holding them can be generated and rotated through Tink.
type KeyManager struct {
	typeURL string
}

// NewKeyManager creates the FPE key manager.
func NewKeyManager() *KeyManager {
	return &KeyManager{typeURL: FPEKeyTypeURL}
}

// Primitive builds a value cipher from serialized key material. The key
// bytes are used directly as the AES key; the cipher defaults to radix 10.
// Use FPEFromHandle for full control over radix and precision.
func (km *KeyManager) Primitive(serializedKey []byte) (interface{}, error) {
	if err := validateKeySize(len(serializedKey)); err != nil {
		return nil, err
	}
	return fpe.NewWithKey(serializedKey, 10)
}

// DoesSupport returns true if this KeyManager supports the given type URL.
func (km *KeyManager) DoesSupport(typeURL string) bool {
	return typeURL == km.typeURL
}

// TypeURL returns the type URL of the keys managed by this KeyManager.
func (km *KeyManager) TypeURL() string {
	return km.typeURL
}

// NewKey is not supported; key generation goes through NewKeyData.
func (km *KeyManager) NewKey(serializedKeyTemplate []byte) (proto.Message, error) {
	return nil, fmt.Errorf("NewKey is not supported, use NewKeyData")
}

// NewKeyData generates fresh random key material according to the template.
// The template value carries the key size as a single byte.
func (km *KeyManager) NewKeyData(serializedKeyTemplate []byte) (*tink_go_proto.KeyData, error) {
	keySize := 32
	if len(serializedKeyTemplate) > 0 {
		keySize = int(serializedKeyTemplate[0])
	}
	if err := validateKeySize(keySize); err != nil {
		return nil, err
	}

	key := make([]byte, keySize)
	if _, err := rand.Read(key); err != nil {
		return nil, fmt.Errorf("failed to generate random key: %w", err)
	}

	return &tink_go_proto.KeyData{
		TypeUrl:         km.typeURL,
		Value:           key,
		KeyMaterialType: symmetric,
	}, nil
}

var _ registry.KeyManager = (*KeyManager)(nil)

func validateKeySize(n int) error {
	if n != 16 && n != 24 && n != 32 {
		return fmt.Errorf("invalid key size: %d bytes (must be 16, 24, or 32)", n)
	}
	return nil
}

// KeyTemplate creates a key template for transform FPE keys, defaulting to
// AES-256 key material.
func KeyTemplate() *tink_go_proto.KeyTemplate {
	return KeyTemplateAES256()
}

// KeyTemplateAES128 creates a template generating 16-byte keys.
func KeyTemplateAES128() *tink_go_proto.KeyTemplate {
	return keyTemplate(16)
}

// KeyTemplateAES192 creates a template generating 24-byte keys.
func KeyTemplateAES192() *tink_go_proto.KeyTemplate {
	return keyTemplate(24)
}

// KeyTemplateAES256 creates a template generating 32-byte keys.
func KeyTemplateAES256() *tink_go_proto.KeyTemplate {
	return keyTemplate(32)
}

func keyTemplate(size byte) *tink_go_proto.KeyTemplate {
	return &tink_go_proto.KeyTemplate{
		TypeUrl:          FPEKeyTypeURL,
		Value:            []byte{size},
		OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
	}
}

// NewKeysetHandleFromKey wraps a raw AES key (for example one exported from
// an HSM) in a cleartext keyset handle so it can flow through the same code
// paths as Tink-generated keys.
//
// The resulting keyset is unencrypted; in production, encrypt it with
// keyset.Write and an AEAD before persisting.
func NewKeysetHandleFromKey(key []byte) (*keyset.Handle, error) {
	if err := validateKeySize(len(key)); err != nil {
		return nil, err
	}

	keyIDBytes := make([]byte, 4)
	if _, err := rand.Read(keyIDBytes); err != nil {
		return nil, fmt.Errorf("failed to generate key ID: %w", err)
	}
	keyID := binary.BigEndian.Uint32(keyIDBytes)

	ks := &tink_go_proto.Keyset{
		PrimaryKeyId: keyID,
		Key: []*tink_go_proto.Keyset_Key{{
			KeyData: &tink_go_proto.KeyData{
				TypeUrl:         FPEKeyTypeURL,
				Value:           key,
				KeyMaterialType: symmetric,
			},
			KeyId:            keyID,
			Status:           tink_go_proto.KeyStatusType_ENABLED,
			OutputPrefixType: tink_go_proto.OutputPrefixType_RAW,
		}},
	}

	buf := &keyset.MemReaderWriter{Keyset: ks}
	return insecurecleartextkeyset.Read(buf)
}
