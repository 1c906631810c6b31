package query

import (
	"github.com/google/uuid"

	"github.com/gridiron-data/gridiron/internal/schema"
)

// Builder validates requests and assembles plans. Construction is
// all-or-nothing: a request that violates any rule yields a *Rejection and no
// plan, never a partial one. A Builder is immutable and safe for concurrent
// use by any number of callers.
type Builder struct {
	registry *schema.Registry
	opts     Options
	scorer   *Scorer
}

// NewBuilder creates a builder over the given registry with the given bounds.
func NewBuilder(registry *schema.Registry, opts Options) *Builder {
	return &Builder{
		registry: registry,
		opts:     opts,
		scorer:   NewScorer(opts),
	}
}

// Registry returns the registry the builder validates against.
func (b *Builder) Registry() *schema.Registry {
	return b.registry
}

// Build validates the request and, on success, returns the normalized plan.
// Failures short-circuit in order: entity resolution, field/path/type
// validation with depth and field-budget checks, complexity scoring, then the
// limit policy. On failure the returned error is always a *Rejection.
func (b *Builder) Build(req *Request) (*Plan, error) {
	entity, exists := b.registry.LookupEntity(req.Entity)
	if !exists {
		return nil, entityNotFound(req.Entity)
	}

	if rej := newValidator(b.registry, b.opts).validate(entity, req); rej != nil {
		return nil, rej
	}

	score, rej := b.scorer.Check(b.registry, req)
	if rej != nil {
		return nil, rej
	}

	// A limit above the ceiling is rejected, not clamped: silent truncation
	// would let callers believe they received a complete result set.
	limit := req.Limit
	switch {
	case limit > b.opts.MaxLimit:
		return nil, limitExceeded(b.opts.MaxLimit, limit)
	case limit <= 0:
		limit = b.opts.DefaultLimit
	}

	plan := &Plan{
		ID:         uuid.NewString(),
		Entity:     entity.Name,
		QueryField: entity.QueryField,
		Fields:     dedupeFields(req.Fields),
		Filters:    b.planFilters(entity, req.Filters),
		OrderBy:    req.OrderBy,
		Limit:      limit,
		Expand:     b.planExpand(entity, req.Expand),
		Complexity: score,
	}
	return plan, nil
}

func (b *Builder) planFilters(entity *schema.EntitySchema, filters []Filter) []PlanFilter {
	if len(filters) == 0 {
		return nil
	}
	planned := make([]PlanFilter, 0, len(filters))
	for _, filter := range filters {
		planned = append(planned, PlanFilter{
			Field: filter.Field,
			Op:    filter.Op,
			Value: filter.Value,
			Type:  entity.Fields[filter.Field],
		})
	}
	return planned
}

func (b *Builder) planExpand(entity *schema.EntitySchema, expand map[string]*Expansion) map[string]*PlanNode {
	if len(expand) == 0 {
		return nil
	}
	nodes := make(map[string]*PlanNode, len(expand))
	for name, child := range expand {
		if child == nil {
			// Validation rejects nil entries; never dereference one here.
			continue
		}
		rel := entity.Relationships[name]
		target, _ := b.registry.LookupEntity(rel.Target)
		nodes[name] = &PlanNode{
			Relationship: name,
			Entity:       target.Name,
			Cardinality:  rel.Cardinality.String(),
			Fields:       dedupeFields(child.Fields),
			Filters:      b.planFilters(target, child.Filters),
			OrderBy:      child.OrderBy,
			Limit:        child.Limit,
			Expand:       b.planExpand(target, child.Expand),
		}
	}
	return nodes
}

// dedupeFields collapses duplicates preserving first-occurrence order.
func dedupeFields(fields []string) []string {
	seen := make(map[string]struct{}, len(fields))
	deduped := make([]string, 0, len(fields))
	for _, field := range fields {
		if _, dup := seen[field]; dup {
			continue
		}
		seen[field] = struct{}{}
		deduped = append(deduped, field)
	}
	return deduped
}
