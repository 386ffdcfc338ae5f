package transform

import (
	"fmt"
	"strconv"
)

// BucketConfig configures range bucketing. Buckets holds the ordered
// boundary values (numbers or strings); Labels names the len(Buckets)-1
// ranges between consecutive boundaries; values below the first or at or
// above the last boundary map to the outlier labels. EntityLabels selects
// entity types for entity mode (the Labels name is taken by the bucket
// names).
type BucketConfig struct {
	Buckets           []any    `json:"buckets" yaml:"buckets" mapstructure:"buckets"`
	Labels            []any    `json:"labels" yaml:"labels" mapstructure:"labels"`
	LowerOutlierLabel any      `json:"lower_outlier_label" yaml:"lower_outlier_label" mapstructure:"lower_outlier_label"`
	UpperOutlierLabel any      `json:"upper_outlier_label" yaml:"upper_outlier_label" mapstructure:"upper_outlier_label"`
	EntityLabels      []string `json:"entity_labels" yaml:"entity_labels" mapstructure:"entity_labels"`
}

// BucketRange expands a (min, max, step) tuple into boundary values,
// inclusive of max.
func BucketRange(min, max, step float64) []any {
	var out []any
	for b := min; b <= max; b += step {
		out = append(out, b)
	}
	return out
}

// Bucket maps a value into one of N contiguous ranges and emits the range's
// label. One-way: not Restorable.
type Bucket struct {
	labeled
	buckets []any
	names   []any
	lower   any
	upper   any
}

// NewBucket validates boundary/label consistency up front: the label count
// must be exactly one less than the boundary count.
func NewBucket(cfg BucketConfig) (*Bucket, error) {
	b := &Bucket{
		labeled: labeled{labels: cfg.EntityLabels},
		buckets: cfg.Buckets,
		names:   cfg.Labels,
		lower:   cfg.LowerOutlierLabel,
		upper:   cfg.UpperOutlierLabel,
	}
	if len(b.buckets) < 2 {
		return nil, fmt.Errorf("bucket transformer: need at least 2 boundaries, got %d", len(b.buckets))
	}
	if len(b.names) != len(b.buckets)-1 {
		return nil, fmt.Errorf("bucket transformer: %d labels for %d buckets, want %d",
			len(b.names), len(b.buckets), len(b.buckets)-1)
	}
	return b, nil
}

// Kind implements Transformer.
func (t *Bucket) Kind() Kind { return KindBucket }

// classify returns the bucket label for a value, or ok=false when the value
// is not comparable against the configured boundaries (the caller passes
// the original value through unchanged in that case).
func (t *Bucket) classify(value any) (any, bool) {
	cmp, ok := comparator(value, t.buckets[0])
	if !ok {
		return nil, false
	}

	if c, ok := cmp(value, t.buckets[0]); !ok {
		return nil, false
	} else if c < 0 {
		return t.lower, true
	}
	if c, ok := cmp(value, t.buckets[len(t.buckets)-1]); !ok {
		return nil, false
	} else if c >= 0 {
		return t.upper, true
	}

	for i := 1; i < len(t.buckets); i++ {
		c, ok := cmp(value, t.buckets[i])
		if !ok {
			return nil, false
		}
		if c < 0 {
			return t.names[i-1], true
		}
	}
	return t.upper, true
}

// TransformField replaces the value with its bucket label; a value the
// boundaries cannot classify passes through unchanged by design.
func (t *Bucket) TransformField(ctx *FieldContext, value any) (any, bool, error) {
	label, ok := t.classify(value)
	if !ok {
		return value, true, nil
	}
	return label, true, nil
}

// TransformEntity replaces the labeled span with its bucket label.
func (t *Bucket) TransformEntity(ctx *FieldContext, l Label, value string) (*Label, string, bool, error) {
	label, ok := t.classify(any(value))
	if !ok {
		return &l, value, true, nil
	}
	return &l, valueString(label), true, nil
}

var (
	_ FieldTransformer  = (*Bucket)(nil)
	_ EntityTransformer = (*Bucket)(nil)
)

// comparator picks a comparison for a value/boundary pair: numeric when
// both sides are numbers (or numeric strings), lexicographic when both are
// strings.
func comparator(value, boundary any) (func(a, b any) (int, bool), bool) {
	if _, ok := asNumber(boundary); ok {
		return compareNumeric, true
	}
	if _, ok := boundary.(string); ok {
		if _, ok := value.(string); ok {
			return compareString, true
		}
	}
	return nil, false
}

func compareNumeric(a, b any) (int, bool) {
	x, ok := asNumber(a)
	if !ok {
		return 0, false
	}
	y, ok := asNumber(b)
	if !ok {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

func compareString(a, b any) (int, bool) {
	x, ok := a.(string)
	if !ok {
		return 0, false
	}
	y, ok := b.(string)
	if !ok {
		return 0, false
	}
	switch {
	case x < y:
		return -1, true
	case x > y:
		return 1, true
	}
	return 0, true
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(n, 64)
		return f, err == nil
	}
	return 0, false
}
