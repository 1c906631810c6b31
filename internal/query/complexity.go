package query

import (
	"math"

	"github.com/gridiron-data/gridiron/internal/schema"
)

// Scorer computes a static cost estimate for a structurally valid request.
// Each node in the expansion tree contributes
//
//	fieldsAtNode * depthWeightBase^depth * cardinalityWeight(relationship)
//
// where the cardinality weight is 1 for the root and for to-one expansions.
// The estimate is over the request shape only; nothing is executed.
type Scorer struct {
	depthWeightBase   float64
	cardinalityWeight float64
	threshold         float64
}

// NewScorer creates a scorer from the engine options.
func NewScorer(opts Options) *Scorer {
	return &Scorer{
		depthWeightBase:   opts.DepthWeightBase,
		cardinalityWeight: opts.CardinalityWeight,
		threshold:         opts.ComplexityThreshold,
	}
}

// Threshold returns the configured rejection threshold.
func (s *Scorer) Threshold() float64 {
	return s.threshold
}

// Score computes the complexity of a request that has already passed schema
// validation. Unresolvable relationships contribute nothing; the validator has
// rejected them before scoring runs.
func (s *Scorer) Score(registry *schema.Registry, req *Request) float64 {
	return s.scoreNode(registry, req.Entity, req.Fields, req.Expand, 0, 1)
}

// Check scores the request and returns a rejection when the threshold is
// exceeded, along with the computed score either way.
func (s *Scorer) Check(registry *schema.Registry, req *Request) (float64, *Rejection) {
	score := s.Score(registry, req)
	if score > s.threshold {
		return score, complexityExceeded(score, s.threshold)
	}
	return score, nil
}

func (s *Scorer) scoreNode(registry *schema.Registry, entity string, fields []string,
	expand map[string]*Expansion, depth int, cardWeight float64) float64 {

	score := float64(uniqueCount(fields)) * math.Pow(s.depthWeightBase, float64(depth)) * cardWeight

	for _, name := range sortedExpandNames(expand) {
		child := expand[name]
		if child == nil {
			continue
		}
		rel, exists := registry.LookupRelationship(entity, name)
		if !exists {
			continue
		}
		weight := 1.0
		if rel.Cardinality == schema.CardinalityMany {
			weight = s.cardinalityWeight
		}
		score += s.scoreNode(registry, rel.Target, child.Fields, child.Expand, depth+1, weight)
	}

	return score
}

func uniqueCount(fields []string) int {
	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		seen[field] = struct{}{}
	}
	return len(seen)
}
