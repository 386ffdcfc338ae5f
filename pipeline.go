package transform

import (
	"fmt"
	"io"

	"github.com/sirupsen/logrus"
)

// Pipeline routes record fields through ordered data paths. Paths claim
// fields first-match-wins in declaration order; a field no path claims is
// omitted from the output (append Passthrough() to keep the remainder).
// Pipelines are immutable after construction and safe for concurrent use.
type Pipeline struct {
	paths []*DataPath
	log   logrus.FieldLogger
}

// NewPipeline builds a pipeline over the given paths, in order.
func NewPipeline(paths ...*DataPath) (*Pipeline, error) {
	if len(paths) == 0 {
		return nil, fmt.Errorf("pipeline needs at least one data path")
	}
	for i, dp := range paths {
		if dp == nil {
			return nil, fmt.Errorf("pipeline data path %d is nil", i)
		}
	}
	return &Pipeline{paths: paths, log: discardLogger()}, nil
}

// WithLogger returns a copy of the pipeline using the given logger. Field
// names and transformer kinds are logged; field values and secrets never
// are.
func (p *Pipeline) WithLogger(log logrus.FieldLogger) *Pipeline {
	cp := *p
	cp.log = log
	return &cp
}

func discardLogger() logrus.FieldLogger {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return l
}

// claim finds the first path matching an input field name.
func (p *Pipeline) claim(field string) *DataPath {
	for _, dp := range p.paths {
		if dp.Matches(field) {
			return dp
		}
	}
	return nil
}

// restoreClaim finds the path that produced an output field name. Exact
// matches on a configured rename win across all paths before any glob
// re-matching, so a rename target cannot be shadowed by an earlier path
// whose pattern happens to match it.
func (p *Pipeline) restoreClaim(field string) *DataPath {
	for _, dp := range p.paths {
		if dp.output == field {
			return dp
		}
	}
	for _, dp := range p.paths {
		if dp.output == "" && dp.Matches(field) {
			return dp
		}
	}
	return nil
}

// TransformRecord applies the pipeline forward. The payload may be a bare
// record or a metadata envelope; the output mirrors the input's shape, with
// fields sorted by name and metadata filtered to surviving fields.
func (p *Pipeline) TransformRecord(payload Record) (Record, error) {
	return p.run(payload, false)
}

// RestoreRecord inverts a forward pass: every claimed field runs its chain
// in reverse with the restore direction of each transformer. A chain
// containing a non-restorable transformer is a configuration error surfaced
// here. Field renames are not undone; restored fields keep the names the
// forward pass gave them.
func (p *Pipeline) RestoreRecord(payload Record) (Record, error) {
	return p.run(payload, true)
}

// run groups the record's fields by owning path, then processes the paths
// in declaration order (fields sorted within each path). A field reference
// in a later path therefore resolves against the already-transformed output
// of every earlier path, falling back to the raw input value otherwise.
// Output field order is a property of assembly, not of processing order.
func (p *Pipeline) run(payload Record, restore bool) (Record, error) {
	env, err := parseEnvelope(payload)
	if err != nil {
		return nil, err
	}

	names := sortedFieldNames(env.data)
	owners := make(map[string]*DataPath, len(names))
	for _, name := range names {
		dp := p.claim(name)
		if restore {
			dp = p.restoreClaim(name)
		}
		if dp == nil {
			p.log.WithField("field", name).Debug("no data path claims field, omitting")
			continue
		}
		owners[name] = dp
	}

	outData := Record{}
	outMeta := make(map[string]*FieldMeta)
	view := RecordView{out: outData, in: env.data}

	for _, dp := range p.paths {
		for _, name := range names {
			if owners[name] != dp {
				continue
			}

			value, meta, keep, err := p.runChain(dp, view, name, env.data[name], env.meta[name], restore)
			if err != nil {
				return nil, err
			}
			if !keep {
				p.log.WithField("field", name).Debug("field dropped by chain")
				continue
			}

			outName := name
			if !restore {
				outName = dp.outputName(name)
			}
			outData[outName] = value
			if meta != nil {
				outMeta[outName] = meta
			}
		}
	}

	return env.assemble(outData, outMeta), nil
}

// runChain pushes one field through a path's transformers. Forward runs the
// chain in declaration order; restore runs it reversed. A transformer with
// declared entity labels runs once per NER label when the field carries
// metadata, otherwise it runs on the whole value.
func (p *Pipeline) runChain(dp *DataPath, view RecordView, field string, value any, meta *FieldMeta, restore bool) (any, *FieldMeta, bool, error) {
	order := dp.xforms
	if restore {
		order = make([]Transformer, len(dp.xforms))
		for i, x := range dp.xforms {
			order[len(order)-1-i] = x
		}
	}

	for _, x := range order {
		ctx := &FieldContext{Field: field, Meta: meta, Record: view}

		if meta != nil && len(meta.NER.Labels) > 0 && len(x.EntityLabels()) > 0 {
			newValue, newMeta, keep, err := p.runEntityPass(x, ctx, value, meta, restore)
			if err != nil || !keep {
				return nil, nil, false, err
			}
			value, meta = newValue, newMeta
			continue
		}

		newValue, keep, err := p.runFieldPass(x, ctx, value, restore)
		if err != nil || !keep {
			return nil, nil, false, err
		}
		value = newValue
	}
	return value, meta, true, nil
}

func (p *Pipeline) runFieldPass(x Transformer, ctx *FieldContext, value any, restore bool) (any, bool, error) {
	if restore {
		r, ok := x.(Restorable)
		if !ok {
			return nil, false, fmt.Errorf("field %s: transformer %s is not restorable", ctx.Field, x.Kind())
		}
		return r.RestoreField(ctx, value)
	}

	ft, ok := x.(FieldTransformer)
	if !ok {
		return nil, false, fmt.Errorf("field %s: transformer %s cannot transform whole fields", ctx.Field, x.Kind())
	}
	return ft.TransformField(ctx, value)
}

// runEntityPass applies one transformer to each matching labeled span,
// splicing replacements into the value and rebasing every label's offsets as
// span lengths change. Offsets are code-point indices, the unit the upstream
// tagger emits, so the value is spliced as runes rather than bytes. Spans
// the transformer does not apply to are carried over untouched (modulo
// rebasing).
func (p *Pipeline) runEntityPass(x Transformer, ctx *FieldContext, value any, meta *FieldMeta, restore bool) (any, *FieldMeta, bool, error) {
	text := []rune(valueString(value))
	var outLabels []Label
	delta := 0

	for _, l := range meta.NER.Labels {
		start, end := l.Start+delta, l.End+delta
		if start < 0 || end > len(text) || start > end {
			return nil, nil, false, fmt.Errorf("field %s: label %s span [%d,%d) out of bounds", ctx.Field, l.Label, l.Start, l.End)
		}

		rebased := l
		rebased.Start, rebased.End = start, end

		if !labelApplies(x.EntityLabels(), l.Label) {
			outLabels = append(outLabels, rebased)
			continue
		}

		span := string(text[start:end])
		newLabel, newText, keep, err := p.entityStep(x, ctx, rebased, span, restore)
		if err != nil {
			return nil, nil, false, err
		}
		if !keep {
			return nil, nil, false, nil
		}

		newRunes := []rune(newText)
		spliced := make([]rune, 0, len(text)+len(newRunes)-(end-start))
		spliced = append(spliced, text[:start]...)
		spliced = append(spliced, newRunes...)
		spliced = append(spliced, text[end:]...)
		text = spliced
		delta += len(newRunes) - (end - start)

		if newLabel != nil {
			kept := *newLabel
			kept.Start = start
			kept.End = start + len(newRunes)
			kept.Text = newText
			outLabels = append(outLabels, kept)
		}
	}

	if len(outLabels) == 0 {
		return string(text), nil, true, nil
	}
	return string(text), &FieldMeta{NER: NER{Labels: outLabels}}, true, nil
}

func (p *Pipeline) entityStep(x Transformer, ctx *FieldContext, l Label, span string, restore bool) (*Label, string, bool, error) {
	if restore {
		r, ok := x.(Restorable)
		if !ok {
			return nil, "", false, fmt.Errorf("field %s: transformer %s is not restorable", ctx.Field, x.Kind())
		}
		return r.RestoreEntity(ctx, l, span)
	}

	et, ok := x.(EntityTransformer)
	if !ok {
		return nil, "", false, fmt.Errorf("field %s: transformer %s cannot transform entities", ctx.Field, x.Kind())
	}
	return et.TransformEntity(ctx, l, span)
}

func labelApplies(want []string, label string) bool {
	for _, w := range want {
		if w == label {
			return true
		}
	}
	return false
}
