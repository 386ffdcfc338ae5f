package transform

import (
	"fmt"
	"strings"
)

// CombineConfig configures field concatenation. Refs names the other fields
// whose values are appended to this one, joined by Separator.
type CombineConfig struct {
	Refs      *FieldRef `json:"refs" yaml:"refs" mapstructure:"refs"`
	Separator string    `json:"separator" yaml:"separator" mapstructure:"separator"`
}

// Combine concatenates a field's value with the resolved values of one or
// more referenced fields. Field mode only, one-way.
type Combine struct {
	labeled
	refs *FieldRef
	sep  string
}

// NewCombine builds the transformer; at least one reference is required.
func NewCombine(cfg CombineConfig) (*Combine, error) {
	if cfg.Refs == nil || len(cfg.Refs.Fields) == 0 {
		return nil, fmt.Errorf("combine: at least one field reference is required")
	}
	return &Combine{refs: cfg.Refs, sep: cfg.Separator}, nil
}

// Kind implements Transformer.
func (t *Combine) Kind() Kind { return KindCombine }

// TransformField joins the field's own value with each referenced value in
// declaration order.
func (t *Combine) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	resolved, err := t.refs.Resolve(ctx.Record)
	if err != nil {
		return nil, false, fmt.Errorf("combine: %w", err)
	}
	parts := make([]string, 0, len(resolved)+1)
	parts = append(parts, valueString(value))
	for _, v := range resolved {
		parts = append(parts, valueString(v))
	}
	return strings.Join(parts, t.sep), true, nil
}

var _ FieldTransformer = (*Combine)(nil)
