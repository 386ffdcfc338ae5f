package transform

import (
	"fmt"
	"regexp"
)

// ConditionalConfig configures branch dispatch. Ref resolves the value the
// regex is evaluated against; TrueXform runs on a match, FalseXform
// otherwise. A nil branch passes the value through unchanged.
type ConditionalConfig struct {
	Ref        *FieldRef   `json:"ref" yaml:"ref" mapstructure:"ref"`
	Regex      string      `json:"regex" yaml:"regex" mapstructure:"regex"`
	TrueXform  Transformer `json:"-" yaml:"-" mapstructure:"-"`
	FalseXform Transformer `json:"-" yaml:"-" mapstructure:"-"`
	Labels     []string    `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// Conditional dispatches to one of two child transformers based on a regex
// match against another field's value. Restore is delegated: a Restorable
// branch restores, any other branch runs its forward transform again (the
// redact-on-restore pattern).
type Conditional struct {
	labeled
	ref        *FieldRef
	regex      *regexp.Regexp
	trueXform  Transformer
	falseXform Transformer
}

// NewConditional compiles the regex and validates the reference.
func NewConditional(cfg ConditionalConfig) (*Conditional, error) {
	if cfg.Ref == nil || len(cfg.Ref.Fields) == 0 {
		return nil, fmt.Errorf("conditional: a field reference is required")
	}
	re, err := regexp.Compile(cfg.Regex)
	if err != nil {
		return nil, fmt.Errorf("conditional: compiling regex: %w", err)
	}
	return &Conditional{
		labeled:    labeled{labels: cfg.Labels},
		ref:        cfg.Ref,
		regex:      re,
		trueXform:  cfg.TrueXform,
		falseXform: cfg.FalseXform,
	}, nil
}

// Kind implements Transformer.
func (t *Conditional) Kind() Kind { return KindConditional }

// branch picks the child for this record. An unresolvable reference selects
// the false branch rather than failing the record.
func (t *Conditional) branch(ctx *FieldContext) Transformer {
	val, err := t.ref.ResolveOne(ctx.Record)
	if err == nil && t.regex.MatchString(valueString(val)) {
		return t.trueXform
	}
	return t.falseXform
}

// TransformField dispatches the whole value to the selected branch.
func (t *Conditional) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	child := t.branch(ctx)
	if child == nil {
		return value, true, nil
	}
	ft, ok := child.(FieldTransformer)
	if !ok {
		return nil, false, fmt.Errorf("conditional: %s branch cannot transform fields", child.Kind())
	}
	return ft.TransformField(ctx, value)
}

// RestoreField restores through a Restorable branch and re-applies any other
// branch forward.
func (t *Conditional) RestoreField(ctx *FieldContext, value any) (any, bool, error) {
	child := t.branch(ctx)
	if child == nil {
		return value, true, nil
	}
	if r, ok := child.(Restorable); ok {
		return r.RestoreField(ctx, value)
	}
	ft, ok := child.(FieldTransformer)
	if !ok {
		return nil, false, fmt.Errorf("conditional: %s branch cannot transform fields", child.Kind())
	}
	return ft.TransformField(ctx, value)
}

// TransformEntity dispatches one labeled span to the selected branch.
func (t *Conditional) TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	child := t.branch(ctx)
	if child == nil {
		return &l, value, true, nil
	}
	et, ok := child.(EntityTransformer)
	if !ok {
		return nil, "", false, fmt.Errorf("conditional: %s branch cannot transform entities", child.Kind())
	}
	return et.TransformEntity(ctx, l, value)
}

// RestoreEntity mirrors RestoreField for labeled spans.
func (t *Conditional) RestoreEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	child := t.branch(ctx)
	if child == nil {
		return &l, value, true, nil
	}
	if r, ok := child.(Restorable); ok {
		return r.RestoreEntity(ctx, l, value)
	}
	et, ok := child.(EntityTransformer)
	if !ok {
		return nil, "", false, fmt.Errorf("conditional: %s branch cannot transform entities", child.Kind())
	}
	return et.TransformEntity(ctx, l, value)
}

var (
	_ FieldTransformer  = (*Conditional)(nil)
	_ EntityTransformer = (*Conditional)(nil)
	_ Restorable        = (*Conditional)(nil)
)
