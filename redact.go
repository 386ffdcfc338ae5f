package transform

import (
	"fmt"
	"strings"
	"unicode"
)

// redactedPrefix marks labels whose spans were redacted.
const redactedPrefix = "REDACTED_"

// RedactWithCharConfig configures character masking. Char defaults to "X".
type RedactWithCharConfig struct {
	Char   string   `json:"char" yaml:"char" mapstructure:"char"`
	Labels []string `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// RedactWithChar replaces every alphanumeric character with a constant
// character, preserving punctuation, spaces and overall length.
type RedactWithChar struct {
	labeled
	char rune
}

// NewRedactWithChar builds the transformer.
func NewRedactWithChar(cfg RedactWithCharConfig) (*RedactWithChar, error) {
	char := 'X'
	if cfg.Char != "" {
		runes := []rune(cfg.Char)
		if len(runes) != 1 {
			return nil, fmt.Errorf("redact_with_char: char must be a single character, got %q", cfg.Char)
		}
		char = runes[0]
	}
	return &RedactWithChar{labeled: labeled{labels: cfg.Labels}, char: char}, nil
}

// Kind implements Transformer.
func (t *RedactWithChar) Kind() Kind { return KindRedactWithChar }

func (t *RedactWithChar) mask(s string) string {
	out := []rune(s)
	for i, r := range out {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			out[i] = t.char
		}
	}
	return string(out)
}

// TransformField masks the whole value.
func (t *RedactWithChar) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	return t.mask(valueString(value)), true, nil
}

// TransformEntity masks the span and renames its label with the REDACTED_
// prefix.
func (t *RedactWithChar) TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	l.Label = redactedPrefix + l.Label
	return &l, t.mask(value), true, nil
}

// RedactWithLabelConfig configures label-name redaction.
type RedactWithLabelConfig struct {
	Labels []string `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// RedactWithLabel replaces a value with the uppercased name of its entity
// label. Field mode requires NER metadata on the field; without it there is
// nothing to name and the field is dropped.
type RedactWithLabel struct {
	labeled
}

// NewRedactWithLabel builds the transformer.
func NewRedactWithLabel(cfg RedactWithLabelConfig) (*RedactWithLabel, error) {
	return &RedactWithLabel{labeled: labeled{labels: cfg.Labels}}, nil
}

// Kind implements Transformer.
func (t *RedactWithLabel) Kind() Kind { return KindRedactWithLabel }

// TransformField emits the uppercased label name of the field's first NER
// label, or drops the field when no metadata is present.
func (t *RedactWithLabel) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	if ctx.Meta == nil || len(ctx.Meta.NER.Labels) == 0 {
		return nil, false, nil
	}
	return strings.ToUpper(ctx.Meta.NER.Labels[0].Label), true, nil
}

// TransformEntity replaces the span with the uppercased label name and
// discards the span's metadata.
func (t *RedactWithLabel) TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	return nil, strings.ToUpper(l.Label), true, nil
}

// RedactWithStringConfig configures literal replacement.
type RedactWithStringConfig struct {
	String string   `json:"string" yaml:"string" mapstructure:"string"`
	Labels []string `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// RedactWithString replaces a value (or span) with a fixed literal.
type RedactWithString struct {
	labeled
	literal string
}

// NewRedactWithString builds the transformer.
func NewRedactWithString(cfg RedactWithStringConfig) (*RedactWithString, error) {
	if cfg.String == "" {
		return nil, fmt.Errorf("redact_with_string: replacement string must not be empty")
	}
	return &RedactWithString{labeled: labeled{labels: cfg.Labels}, literal: cfg.String}, nil
}

// Kind implements Transformer.
func (t *RedactWithString) Kind() Kind { return KindRedactWithString }

// TransformField replaces the whole value with the literal.
func (t *RedactWithString) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	return t.literal, true, nil
}

// TransformEntity replaces the span with the literal and renames its label
// with the REDACTED_ prefix.
func (t *RedactWithString) TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	l.Label = redactedPrefix + l.Label
	return &l, t.literal, true, nil
}

var (
	_ FieldTransformer  = (*RedactWithChar)(nil)
	_ EntityTransformer = (*RedactWithChar)(nil)
	_ FieldTransformer  = (*RedactWithLabel)(nil)
	_ EntityTransformer = (*RedactWithLabel)(nil)
	_ FieldTransformer  = (*RedactWithString)(nil)
	_ EntityTransformer = (*RedactWithString)(nil)
)
