package transform

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// SecureHashConfig configures one-way hashing of field values.
type SecureHashConfig struct {
	Secret string   `json:"secret" yaml:"secret" mapstructure:"secret"`
	Labels []string `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// SecureHash replaces a value with HMAC-SHA256(secret, value) as a hex
// digest. One-way: not Restorable.
type SecureHash struct {
	labeled
	secret []byte
}

// NewSecureHash builds the transformer; the secret must be non-empty.
func NewSecureHash(cfg SecureHashConfig) (*SecureHash, error) {
	if cfg.Secret == "" {
		return nil, fmt.Errorf("hash transformer: secret must not be empty")
	}
	return &SecureHash{labeled: labeled{labels: cfg.Labels}, secret: []byte(cfg.Secret)}, nil
}

// Kind implements Transformer.
func (t *SecureHash) Kind() Kind { return KindSecureHash }

func (t *SecureHash) digest(value string) string {
	mac := hmac.New(sha256.New, t.secret)
	mac.Write([]byte(value))
	return hex.EncodeToString(mac.Sum(nil))
}

// TransformField hashes the whole value.
func (t *SecureHash) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	return t.digest(valueString(value)), true, nil
}

// TransformEntity hashes one labeled span, keeping the label.
func (t *SecureHash) TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	return &l, t.digest(value), true, nil
}

var (
	_ FieldTransformer  = (*SecureHash)(nil)
	_ EntityTransformer = (*SecureHash)(nil)
)
