package config

import "github.com/gridiron-data/gridiron/internal/query"

// Options converts the engine section into the query engine's option set.
func (e EngineConfig) Options() query.Options {
	return query.Options{
		MaxDepth:            e.MaxDepth,
		MaxFields:           e.MaxFields,
		MaxLimit:            e.MaxLimit,
		DefaultLimit:        e.DefaultLimit,
		ComplexityThreshold: e.ComplexityThreshold,
		DepthWeightBase:     e.DepthWeightBase,
		CardinalityWeight:   e.CardinalityWeight,
		DeniedFields:        e.DeniedFields,
	}
}
