package tinkfpe

import (
	"sync"

	"github.com/google/tink/go/core/registry"
)

var registerOnce sync.Once

// registerKeyManager registers the KeyManager exactly once per process.
// Tink's registry rejects re-registration of a type URL, so the sync.Once
// keeps repeated Register calls idempotent.
func registerKeyManager() error {
	var err error
	registerOnce.Do(func() {
		if _, getErr := registry.GetKeyManager(FPEKeyTypeURL); getErr == nil {
			return
		}
		err = registry.RegisterKeyManager(NewKeyManager())
	})
	return err
}
