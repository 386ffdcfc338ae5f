// Package transform implements a configurable multi-stage record
// transformation pipeline with field- and entity-level addressing and exact
// forward/restore symmetry. Records are plain field-to-value mappings,
// optionally wrapped in a metadata envelope carrying NER labels; data paths
// route fields through ordered transformer chains built from a fixed
// catalog (format-preserving encryption, hashing, bucketing, redaction,
// fake data, date shifting, and friends).
package transform

import (
	"errors"
	"fmt"
	"sort"
)

// Record is a mapping from field name to value. Values are strings,
// integers or floats; the pipeline reassembles output records with fields
// sorted by name so results are deterministic.
type Record = map[string]any

// ErrNoData reports a payload with no extractable data fields.
var ErrNoData = errors.New("record does not seem to contain data")

// Label describes a substring span within a field's string value tagged
// with a semantic entity type by an upstream NER process. Start and End are
// code-point indices, not byte offsets. Labels on one field do not overlap.
type Label struct {
	Start  int     `json:"start" yaml:"start" mapstructure:"start"`
	End    int     `json:"end" yaml:"end" mapstructure:"end"`
	Label  string  `json:"label" yaml:"label" mapstructure:"label"`
	Score  float64 `json:"score" yaml:"score" mapstructure:"score"`
	Source string  `json:"source,omitempty" yaml:"source,omitempty" mapstructure:"source"`
	Text   string  `json:"text,omitempty" yaml:"text,omitempty" mapstructure:"text"`
}

// NER is the entity block of a field's metadata.
type NER struct {
	Labels []Label `json:"labels" yaml:"labels" mapstructure:"labels"`
}

// FieldMeta is the per-field metadata attached through the record envelope.
type FieldMeta struct {
	NER NER `json:"ner" yaml:"ner" mapstructure:"ner"`
}

// envelope is the parsed shape of an incoming payload: either a bare record
// or a wrapped one. Envelope detection depends solely on the presence of
// metadata.gretel_id.
type envelope struct {
	data     Record
	meta     map[string]*FieldMeta
	gretelID string
	wrapped  bool
	dataKey  string
}

const (
	recordKey   = "record"
	dataKey     = "data"
	metadataKey = "metadata"
	gretelIDKey = "gretel_id"
)

// parseEnvelope detects the wire shape of a payload and extracts the record
// mapping, per-field metadata and gretel_id.
func parseEnvelope(payload Record) (*envelope, error) {
	if payload == nil {
		return nil, ErrNoData
	}

	meta, hasID := payload[metadataKey].(map[string]any)
	var gretelID string
	if hasID {
		gretelID, hasID = meta[gretelIDKey].(string)
	}

	if !hasID {
		if len(payload) == 0 {
			return nil, ErrNoData
		}
		return &envelope{data: payload}, nil
	}

	env := &envelope{gretelID: gretelID, wrapped: true}
	for _, key := range []string{recordKey, dataKey} {
		if data, ok := payload[key].(Record); ok {
			env.data = data
			env.dataKey = key
			break
		}
	}
	if len(env.data) == 0 {
		return nil, ErrNoData
	}

	env.meta = parseFieldMeta(meta)
	return env, nil
}

// parseFieldMeta pulls {field: {ner: {labels: [...]}}} out of a generic
// metadata mapping. Tolerates both decoded-JSON shapes and typed values.
func parseFieldMeta(meta map[string]any) map[string]*FieldMeta {
	fields, ok := meta["fields"].(map[string]any)
	if !ok || len(fields) == 0 {
		return nil
	}

	out := make(map[string]*FieldMeta, len(fields))
	for name, raw := range fields {
		switch fm := raw.(type) {
		case *FieldMeta:
			out[name] = fm
		case FieldMeta:
			cp := fm
			out[name] = &cp
		case map[string]any:
			if parsed := parseNER(fm); parsed != nil {
				out[name] = parsed
			}
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func parseNER(m map[string]any) *FieldMeta {
	ner, ok := m["ner"].(map[string]any)
	if !ok {
		return nil
	}
	rawLabels, ok := ner["labels"].([]any)
	if !ok {
		return nil
	}

	fm := &FieldMeta{}
	for _, raw := range rawLabels {
		switch l := raw.(type) {
		case Label:
			fm.NER.Labels = append(fm.NER.Labels, l)
		case map[string]any:
			fm.NER.Labels = append(fm.NER.Labels, Label{
				Start:  asInt(l["start"]),
				End:    asInt(l["end"]),
				Label:  asString(l["label"]),
				Score:  asFloat(l["score"]),
				Source: asString(l["source"]),
				Text:   asString(l["text"]),
			})
		}
	}
	return fm
}

// assemble wraps a transformed record back into the shape its input had,
// with metadata filtered down to the surviving field names.
func (e *envelope) assemble(data Record, meta map[string]*FieldMeta) Record {
	if !e.wrapped {
		return data
	}

	fields := make(map[string]any)
	for name, fm := range meta {
		if _, ok := data[name]; !ok || fm == nil || len(fm.NER.Labels) == 0 {
			continue
		}
		fields[name] = map[string]any{
			"ner": map[string]any{"labels": labelMaps(fm.NER.Labels)},
		}
	}

	md := map[string]any{gretelIDKey: e.gretelID, "fields": fields}
	key := e.dataKey
	if key == "" {
		key = recordKey
	}
	return Record{key: data, metadataKey: md}
}

func labelMaps(labels []Label) []any {
	out := make([]any, len(labels))
	for i, l := range labels {
		out[i] = map[string]any{
			"start":  l.Start,
			"end":    l.End,
			"label":  l.Label,
			"score":  l.Score,
			"source": l.Source,
			"text":   l.Text,
		}
	}
	return out
}

// sortedFieldNames returns the record's field names in ascending order.
func sortedFieldNames(rec Record) []string {
	names := make([]string, 0, len(rec))
	for name := range rec {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func asInt(v any) int {
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case float64:
		return int(n)
	}
	return 0
}

func asFloat(v any) float64 {
	switch n := v.(type) {
	case float64:
		return n
	case int:
		return float64(n)
	case int64:
		return float64(n)
	}
	return 0
}

func asString(v any) string {
	s, _ := v.(string)
	return s
}

// valueString renders any record value as a string for transformers that
// operate on text.
func valueString(v any) string {
	switch s := v.(type) {
	case string:
		return s
	case nil:
		return ""
	default:
		return fmt.Sprintf("%v", v)
	}
}
