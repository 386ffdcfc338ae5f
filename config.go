package transform

import (
	"fmt"
	"io"

	"gopkg.in/yaml.v3"
)

// PipelineConfig is the declarative form of a pipeline, typically loaded
// from YAML.
type PipelineConfig struct {
	DataPaths []DataPathConfig `json:"data_paths" yaml:"data_paths" mapstructure:"data_paths"`
}

// DataPathConfig declares one data path: a field glob, an ordered transform
// list, and an optional output rename. Each transform mapping carries a
// "type" discriminant naming the catalog kind; the remaining keys are that
// kind's config.
type DataPathConfig struct {
	Input      string           `json:"input" yaml:"input" mapstructure:"input"`
	Output     string           `json:"output" yaml:"output" mapstructure:"output"`
	Transforms []map[string]any `json:"transforms" yaml:"transforms" mapstructure:"transforms"`
}

// LoadPipeline reads a YAML pipeline declaration and builds the pipeline.
func LoadPipeline(r io.Reader) (*Pipeline, error) {
	var cfg PipelineConfig
	if err := yaml.NewDecoder(r).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("decoding pipeline config: %w", err)
	}
	return BuildPipeline(cfg)
}

// BuildPipeline constructs a pipeline from its declarative form. All
// configuration errors surface here, before any record is processed.
func BuildPipeline(cfg PipelineConfig) (*Pipeline, error) {
	if len(cfg.DataPaths) == 0 {
		return nil, fmt.Errorf("pipeline config declares no data paths")
	}

	paths := make([]*DataPath, 0, len(cfg.DataPaths))
	for i, dpc := range cfg.DataPaths {
		xforms := make([]Transformer, 0, len(dpc.Transforms))
		for j, tc := range dpc.Transforms {
			kind, ok := tc["type"].(string)
			if !ok {
				return nil, fmt.Errorf("data path %d transform %d: missing transformer type", i, j)
			}
			x, err := New(Kind(kind), tc)
			if err != nil {
				return nil, fmt.Errorf("data path %d transform %d: %w", i, j, err)
			}
			xforms = append(xforms, x)
		}

		dp, err := NewDataPath(dpc.Input, xforms, dpc.Output)
		if err != nil {
			return nil, fmt.Errorf("data path %d: %w", i, err)
		}
		paths = append(paths, dp)
	}

	return NewPipeline(paths...)
}
