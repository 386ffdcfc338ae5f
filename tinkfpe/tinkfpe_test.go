package tinkfpe

import (
	"encoding/hex"
	"testing"

	"github.com/google/tink/go/keyset"

	"github.com/vdparikh/transform/fpe"
)

func TestKeysetHandleRoundTrip(t *testing.T) {
	key, err := hex.DecodeString("2B7E151628AED2A6ABF7158809CF4F3CEF4359D8D580AA4F7F036D6F04FC6A94")
	if err != nil {
		t.Fatalf("decoding key: %v", err)
	}

	handle, err := NewKeysetHandleFromKey(key)
	if err != nil {
		t.Fatalf("NewKeysetHandleFromKey: %v", err)
	}

	fromHandle, err := FPEFromHandle(handle, 10)
	if err != nil {
		t.Fatalf("FPEFromHandle: %v", err)
	}
	direct, err := fpe.NewWithKey(key, 10)
	if err != nil {
		t.Fatalf("NewWithKey: %v", err)
	}

	// Both ciphers hold the same key material, so ciphertexts must agree.
	a, err := fromHandle.EncryptString("4123567891234567")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	b, err := direct.EncryptString("4123567891234567")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	if a != b {
		t.Fatalf("handle cipher %q != direct cipher %q", a, b)
	}

	pt, err := fromHandle.DecryptString(a)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if pt != "4123567891234567" {
		t.Fatalf("round trip = %q", pt)
	}
}

func TestGeneratedKeysets(t *testing.T) {
	if err := Register(); err != nil {
		t.Fatalf("Register: %v", err)
	}

	handle, err := keyset.NewHandle(KeyTemplate())
	if err != nil {
		t.Fatalf("keyset.NewHandle: %v", err)
	}

	f, err := FPEFromHandle(handle, 10)
	if err != nil {
		t.Fatalf("FPEFromHandle: %v", err)
	}

	ct, err := f.EncryptString("0123456789")
	if err != nil {
		t.Fatalf("EncryptString: %v", err)
	}
	pt, err := f.DecryptString(ct)
	if err != nil {
		t.Fatalf("DecryptString: %v", err)
	}
	if pt != "0123456789" {
		t.Fatalf("round trip = %q", pt)
	}
}

func TestInvalidKeyMaterial(t *testing.T) {
	if _, err := NewKeysetHandleFromKey(make([]byte, 20)); err == nil {
		t.Error("want error for 20-byte key")
	}
	if _, err := FPEFromHandle(nil, 10); err == nil {
		t.Error("want error for nil handle")
	}
}
