package tinkfpe

import (
	"fmt"

	"github.com/google/tink/go/insecurecleartextkeyset"
	"github.com/google/tink/go/keyset"

	"github.com/vdparikh/transform/fpe"
)

// FPEFromHandle builds a value cipher from the primary key of a Tink keyset
// handle. The handle must hold transform FPE keys (see KeyTemplate and
// NewKeysetHandleFromKey); encrypted keysets resolved through a KMS are not
// supported here.
func FPEFromHandle(handle *keyset.Handle, radix int, opts ...fpe.Option) (*fpe.FPE, error) {
	key, err := primaryKeyMaterial(handle)
	if err != nil {
		return nil, err
	}
	return fpe.NewWithKey(key, radix, opts...)
}

// primaryKeyMaterial extracts the raw key bytes of the handle's primary key.
func primaryKeyMaterial(handle *keyset.Handle) ([]byte, error) {
	if handle == nil {
		return nil, fmt.Errorf("keyset handle cannot be nil")
	}

	ks := insecurecleartextkeyset.KeysetMaterial(handle)
	if ks == nil {
		return nil, fmt.Errorf("keyset handle holds no cleartext material")
	}

	for _, k := range ks.Key {
		if k.KeyId != ks.PrimaryKeyId {
			continue
		}
		data := k.KeyData
		if data == nil {
			break
		}
		if data.TypeUrl != FPEKeyTypeURL {
			return nil, fmt.Errorf("primary key has type %q, want %q", data.TypeUrl, FPEKeyTypeURL)
		}
		if data.GetKeyMaterialType() != symmetric {
			return nil, fmt.Errorf("primary key material is not symmetric")
		}
		return data.Value, nil
	}
	return nil, fmt.Errorf("primary key %d not found in keyset", ks.PrimaryKeyId)
}

// Register adds the FPE KeyManager to Tink's registry so keyset.NewHandle
// can generate transform keys from the templates in this package. Safe to
// call more than once; duplicate registration of the same manager type
// reports an error from Tink which callers may ignore at startup.
func Register() error {
	return registerKeyManager()
}
