package transform

// Kind identifies a transformer in the catalog. It is the discriminant used
// by the config factory.
type Kind string

const (
	KindSecureFpe        Kind = "fpe"
	KindSecureHash       Kind = "hash"
	KindBucket           Kind = "bucket"
	KindRedactWithChar   Kind = "redact_with_char"
	KindRedactWithLabel  Kind = "redact_with_label"
	KindRedactWithString Kind = "redact_with_string"
	KindFakeConstant     Kind = "fake_constant"
	KindDateShift        Kind = "date_shift"
	KindCombine          Kind = "combine"
	KindConditional      Kind = "conditional"
	KindDrop             Kind = "drop"
	KindFormat           Kind = "format"
)

// Transformer is the polymorphic unit of work bound into a DataPath chain.
// Concrete kinds additionally implement FieldTransformer, EntityTransformer
// and/or Restorable. Transformers are immutable value objects: they hold
// configuration only, never per-record state, and are safe to share across
// records and goroutines.
type Transformer interface {
	// Kind reports the catalog discriminant.
	Kind() Kind

	// EntityLabels lists the entity types this transformer applies to.
	// Empty means the transformer runs in field mode only.
	EntityLabels() []string
}

// RecordView resolves field references during a pipeline pass. Lookups
// prefer the already-transformed output record and fall back to the
// original input, so later data paths see the outputs of earlier ones.
type RecordView struct {
	out Record
	in  Record
}

// Lookup returns the current value of a field by name.
func (v RecordView) Lookup(name string) (any, bool) {
	if val, ok := v.out[name]; ok {
		return val, true
	}
	val, ok := v.in[name]
	return val, ok
}

// FieldContext carries the per-invocation surroundings of a field
// transformation: the field's name, its entity metadata (nil when absent)
// and a view of the record for FieldRef resolution.
type FieldContext struct {
	Field  string
	Meta   *FieldMeta
	Record RecordView
}

// FieldTransformer transforms a whole field value. Returning ok=false
// signals "drop": the field is omitted from the output record and the rest
// of its chain does not run.
type FieldTransformer interface {
	Transformer
	TransformField(ctx *FieldContext, value any) (any, bool, error)
}

// EntityTransformer transforms one labeled span inside a field's string
// value. It returns the (possibly renamed) label for the span, or nil when
// the span's metadata should be discarded, along with the replacement text.
// Returning ok=false drops the field entirely.
type EntityTransformer interface {
	Transformer
	TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error)
}

// Restorable is the symmetric-inverse capability. Encryption transformers
// implement it; one-way transformers (hashing, redaction, bucketing) do
// not, and reaching one in restore position is a pipeline misconfiguration.
type Restorable interface {
	Transformer
	RestoreField(ctx *FieldContext, value any) (any, bool, error)
	RestoreEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error)
}
