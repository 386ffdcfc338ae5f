package transform

import (
	"crypto/sha256"
	"encoding/binary"
	"fmt"
	"io"

	"github.com/brianvoe/gofakeit/v7"
	"golang.org/x/crypto/hkdf"
)

// FakeConstantConfig configures deterministic fake-value generation. Seed
// diversifies outputs across pipelines; the same (seed, value) pair always
// yields the same fake. Labels selects entity types and must name supported
// generators.
type FakeConstantConfig struct {
	Seed   int64    `json:"seed" yaml:"seed" mapstructure:"seed"`
	Labels []string `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// fakeGenerators maps an entity label to its generator. A label outside this
// table is a configuration error.
var fakeGenerators = map[string]func(*gofakeit.Faker) string{
	"person_name":        func(f *gofakeit.Faker) string { return f.Name() },
	"first_name":         func(f *gofakeit.Faker) string { return f.FirstName() },
	"last_name":          func(f *gofakeit.Faker) string { return f.LastName() },
	"email_address":      func(f *gofakeit.Faker) string { return f.Email() },
	"ip_address":         func(f *gofakeit.Faker) string { return f.IPv4Address() },
	"phone_number":       func(f *gofakeit.Faker) string { return f.Phone() },
	"credit_card_number": func(f *gofakeit.Faker) string { return f.CreditCardNumber(nil) },
	"url":                func(f *gofakeit.Faker) string { return f.URL() },
	"domain_name":        func(f *gofakeit.Faker) string { return f.DomainName() },
	"city":               func(f *gofakeit.Faker) string { return f.City() },
	"us_state":           func(f *gofakeit.Faker) string { return f.State() },
	"street_address":     func(f *gofakeit.Faker) string { return f.Street() },
	"company_name":       func(f *gofakeit.Faker) string { return f.Company() },
	"user_name":          func(f *gofakeit.Faker) string { return f.Username() },
	"us_social_security_number": func(f *gofakeit.Faker) string {
		return f.SSN()
	},
}

// FakeConstant replaces a value with realistic fake data of the same entity
// type. Generation is keyed by (seed, original value), so repeated inputs map
// to the same fake within and across records. One-way: not Restorable.
type FakeConstant struct {
	labeled
	seed int64
}

// NewFakeConstant validates that every configured label has a generator.
func NewFakeConstant(cfg FakeConstantConfig) (*FakeConstant, error) {
	if len(cfg.Labels) == 0 {
		return nil, fmt.Errorf("fake transformer: at least one entity label is required")
	}
	for _, label := range cfg.Labels {
		if _, ok := fakeGenerators[label]; !ok {
			return nil, fmt.Errorf("fake transformer: unsupported entity label %q", label)
		}
	}
	return &FakeConstant{labeled: labeled{labels: cfg.Labels}, seed: cfg.Seed}, nil
}

// Kind implements Transformer.
func (t *FakeConstant) Kind() Kind { return KindFakeConstant }

// fakerFor derives a per-value faker. HKDF stretches (seed, value) into the
// PRNG seed so that distinct inputs land in independent output streams.
func (t *FakeConstant) fakerFor(value string) (*gofakeit.Faker, error) {
	var secret [8]byte
	binary.BigEndian.PutUint64(secret[:], uint64(t.seed))
	kdf := hkdf.New(sha256.New, secret[:], nil, []byte(value))
	var buf [8]byte
	if _, err := io.ReadFull(kdf, buf[:]); err != nil {
		return nil, fmt.Errorf("fake transformer: seed derivation: %w", err)
	}
	return gofakeit.New(binary.BigEndian.Uint64(buf[:])), nil
}

func (t *FakeConstant) fake(label, value string) (string, bool, error) {
	gen, ok := fakeGenerators[label]
	if !ok {
		return value, false, nil
	}
	faker, err := t.fakerFor(value)
	if err != nil {
		return "", false, err
	}
	return gen(faker), true, nil
}

// TransformField fakes the whole value. The generator is chosen from the
// field's NER metadata when present, falling back to the first configured
// label; a value with no resolvable entity type passes through unchanged.
func (t *FakeConstant) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	label := t.labels[0]
	if ctx.Meta != nil && len(ctx.Meta.NER.Labels) > 0 {
		if _, ok := fakeGenerators[ctx.Meta.NER.Labels[0].Label]; ok {
			label = ctx.Meta.NER.Labels[0].Label
		}
	}
	out, ok, err := t.fake(label, valueString(value))
	if err != nil {
		return nil, false, err
	}
	if !ok {
		return value, true, nil
	}
	return out, true, nil
}

// TransformEntity fakes one labeled span, keeping the label. A span whose
// label has no generator passes through unchanged.
func (t *FakeConstant) TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	out, ok, err := t.fake(l.Label, value)
	if err != nil {
		return nil, "", false, err
	}
	if !ok {
		return &l, value, true, nil
	}
	return &l, out, true, nil
}

var (
	_ FieldTransformer  = (*FakeConstant)(nil)
	_ EntityTransformer = (*FakeConstant)(nil)
)
