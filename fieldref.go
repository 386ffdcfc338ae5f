package transform

import (
	"fmt"
)

// FieldRef is a deferred reference to the value of one or more other fields
// in the same record, resolved at transform time against a RecordView.
// Resolution is a pure lookup: already-transformed output first, original
// input as fallback.
type FieldRef struct {
	Fields []string `json:"fields" yaml:"fields" mapstructure:"fields"`
}

// NewFieldRef references a single field.
func NewFieldRef(field string) *FieldRef {
	return &FieldRef{Fields: []string{field}}
}

// NewFieldRefs references several fields in order.
func NewFieldRefs(fields ...string) *FieldRef {
	return &FieldRef{Fields: fields}
}

// Resolve returns the referenced values in declaration order. A reference
// to a field that exists in neither the output nor the input record is an
// error.
func (r *FieldRef) Resolve(view RecordView) ([]any, error) {
	if r == nil || len(r.Fields) == 0 {
		return nil, fmt.Errorf("field reference is empty")
	}

	out := make([]any, 0, len(r.Fields))
	for _, name := range r.Fields {
		val, ok := view.Lookup(name)
		if !ok {
			return nil, fmt.Errorf("referenced field %q not present in record", name)
		}
		out = append(out, val)
	}
	return out, nil
}

// ResolveOne is Resolve for single-field references.
func (r *FieldRef) ResolveOne(view RecordView) (any, error) {
	vals, err := r.Resolve(view)
	if err != nil {
		return nil, err
	}
	return vals[0], nil
}
