package transform

import (
	"fmt"
	"regexp"
)

// FormatConfig configures regex substitution on raw values.
type FormatConfig struct {
	Pattern     string `json:"pattern" yaml:"pattern" mapstructure:"pattern"`
	Replacement string `json:"replacement" yaml:"replacement" mapstructure:"replacement"`
}

// Format rewrites a value by replacing every regex match with a fixed
// replacement. Value-only: it is not label-aware and never runs in entity
// mode.
type Format struct {
	labeled
	pattern     *regexp.Regexp
	replacement string
}

// NewFormat compiles the pattern.
func NewFormat(cfg FormatConfig) (*Format, error) {
	if cfg.Pattern == "" {
		return nil, fmt.Errorf("format: pattern must not be empty")
	}
	re, err := regexp.Compile(cfg.Pattern)
	if err != nil {
		return nil, fmt.Errorf("format: compiling pattern: %w", err)
	}
	return &Format{pattern: re, replacement: cfg.Replacement}, nil
}

// Kind implements Transformer.
func (t *Format) Kind() Kind { return KindFormat }

// TransformField substitutes on the string form of the value.
func (t *Format) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	return t.pattern.ReplaceAllString(valueString(value), t.replacement), true, nil
}

var _ FieldTransformer = (*Format)(nil)
