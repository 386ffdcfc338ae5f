package transform

// Drop unconditionally removes a field (or labeled span) from the output.
type Drop struct {
	labeled
}

// DropConfig configures field dropping. Labels limits the drop to spans of
// the named entity types; empty drops the whole field.
type DropConfig struct {
	Labels []string `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// NewDrop builds the transformer.
func NewDrop(cfg DropConfig) (*Drop, error) {
	return &Drop{labeled: labeled{labels: cfg.Labels}}, nil
}

// Kind implements Transformer.
func (t *Drop) Kind() Kind { return KindDrop }

// TransformField always signals drop.
func (t *Drop) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	return nil, false, nil
}

// TransformEntity always signals drop.
func (t *Drop) TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	return nil, "", false, nil
}

var (
	_ FieldTransformer  = (*Drop)(nil)
	_ EntityTransformer = (*Drop)(nil)
)
