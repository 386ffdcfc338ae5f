package transform

import (
	"fmt"

	"github.com/gobwas/glob"
)

// DataPath binds a glob-style field-name matcher to an ordered transformer
// chain and an optional output rename. Paths are immutable once built and
// shared across records.
type DataPath struct {
	pattern string
	matcher glob.Glob
	xforms  []Transformer
	output  string
}

// NewDataPath compiles a data path. The input pattern is a shell-style glob
// (`*`, `?`) over field names; xforms may contain nested groups (see Chain)
// and is flattened in order; output, when non-empty, renames the field in
// the output record.
func NewDataPath(input string, xforms []Transformer, output string) (*DataPath, error) {
	if input == "" {
		return nil, fmt.Errorf("data path needs an input field pattern")
	}

	matcher, err := glob.Compile(input)
	if err != nil {
		return nil, fmt.Errorf("invalid field pattern %q: %w", input, err)
	}

	flat, err := flatten(xforms)
	if err != nil {
		return nil, err
	}

	return &DataPath{
		pattern: input,
		matcher: matcher,
		xforms:  flat,
		output:  output,
	}, nil
}

// Passthrough builds the common trailing catch-all path: it claims every
// remaining field and copies it to the output untransformed.
func Passthrough() *DataPath {
	dp, _ := NewDataPath("*", nil, "")
	return dp
}

// Pattern returns the input field matcher this path was built from.
func (d *DataPath) Pattern() string { return d.pattern }

// Output returns the configured rename, or "" when fields keep their names.
func (d *DataPath) Output() string { return d.output }

// Matches reports whether the path claims the given field name.
func (d *DataPath) Matches(field string) bool {
	return d.matcher.Match(field)
}

// outputName maps an input field name to its name in the output record.
func (d *DataPath) outputName(field string) string {
	if d.output != "" {
		return d.output
	}
	return field
}

// Chain groups transformers so callers can nest lists when building path
// configurations; NewDataPath flattens groups in order.
func Chain(xforms ...Transformer) Transformer {
	return chainGroup(xforms)
}

type chainGroup []Transformer

func (chainGroup) Kind() Kind             { return "chain" }
func (chainGroup) EntityLabels() []string { return nil }

func flatten(xforms []Transformer) ([]Transformer, error) {
	var flat []Transformer
	for _, x := range xforms {
		switch g := x.(type) {
		case nil:
			return nil, fmt.Errorf("data path contains a nil transformer")
		case chainGroup:
			nested, err := flatten(g)
			if err != nil {
				return nil, err
			}
			flat = append(flat, nested...)
		default:
			flat = append(flat, x)
		}
	}
	return flat, nil
}
