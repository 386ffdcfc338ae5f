package transform

import (
	"fmt"
	"reflect"

	"github.com/mitchellh/mapstructure"
)

// New builds a transformer from its catalog discriminant and a generic
// config mapping, the shape produced by decoding JSON or YAML. Unknown kinds
// and malformed configs fail here, before any record is processed.
func New(kind Kind, config map[string]any) (Transformer, error) {
	switch kind {
	case KindSecureFpe:
		var cfg SecureFpeConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewSecureFpe(cfg)
	case KindSecureHash:
		var cfg SecureHashConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewSecureHash(cfg)
	case KindBucket:
		var cfg BucketConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewBucket(cfg)
	case KindRedactWithChar:
		var cfg RedactWithCharConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewRedactWithChar(cfg)
	case KindRedactWithLabel:
		var cfg RedactWithLabelConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewRedactWithLabel(cfg)
	case KindRedactWithString:
		var cfg RedactWithStringConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewRedactWithString(cfg)
	case KindFakeConstant:
		var cfg FakeConstantConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewFakeConstant(cfg)
	case KindDateShift:
		var cfg DateShiftConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewDateShift(cfg)
	case KindCombine:
		var cfg CombineConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewCombine(cfg)
	case KindConditional:
		return newConditionalFromMap(config)
	case KindDrop:
		var cfg DropConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewDrop(cfg)
	case KindFormat:
		var cfg FormatConfig
		if err := decodeConfig(config, &cfg); err != nil {
			return nil, fmt.Errorf("%s config: %w", kind, err)
		}
		return NewFormat(cfg)
	}
	return nil, fmt.Errorf("unknown transformer kind %q", kind)
}

// newConditionalFromMap handles the one nested config shape: the true/false
// branches are themselves transformer configs with a "type" discriminant.
func newConditionalFromMap(config map[string]any) (Transformer, error) {
	var cfg ConditionalConfig
	if err := decodeConfig(config, &cfg); err != nil {
		return nil, fmt.Errorf("conditional config: %w", err)
	}

	var err error
	if cfg.TrueXform, err = branchFromMap(config, "true_xform"); err != nil {
		return nil, err
	}
	if cfg.FalseXform, err = branchFromMap(config, "false_xform"); err != nil {
		return nil, err
	}
	return NewConditional(cfg)
}

func branchFromMap(config map[string]any, key string) (Transformer, error) {
	raw, ok := config[key]
	if !ok || raw == nil {
		return nil, nil
	}
	branch, ok := raw.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("conditional %s: want a transformer config mapping, got %T", key, raw)
	}
	kind, ok := branch["type"].(string)
	if !ok {
		return nil, fmt.Errorf("conditional %s: missing transformer type", key)
	}
	x, err := New(Kind(kind), branch)
	if err != nil {
		return nil, fmt.Errorf("conditional %s: %w", key, err)
	}
	return x, nil
}

// decodeConfig maps a generic config mapping onto a typed config struct.
// String and string-list values decode into FieldRef fields directly, so
// configs can say `tweak: user_id` instead of spelling out the struct.
func decodeConfig(config map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:     out,
		DecodeHook: fieldRefHook,
	})
	if err != nil {
		return err
	}
	return dec.Decode(config)
}

var fieldRefType = reflect.TypeOf(FieldRef{})

func fieldRefHook(from, to reflect.Type, data any) (any, error) {
	if to != fieldRefType {
		return data, nil
	}
	switch v := data.(type) {
	case string:
		return FieldRef{Fields: []string{v}}, nil
	case []string:
		return FieldRef{Fields: v}, nil
	case []any:
		fields := make([]string, 0, len(v))
		for _, item := range v {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("field reference entries must be strings, got %T", item)
			}
			fields = append(fields, s)
		}
		return FieldRef{Fields: fields}, nil
	}
	return data, nil
}
