package query

// Options holds the engine's safety bounds and scoring constants. All values
// are read at construction; the Builder never mutates them.
type Options struct {
	// MaxDepth is the deepest permitted expansion level; the root entity is
	// depth 0 and each expand level adds 1.
	MaxDepth int
	// MaxFields caps the total number of fields requested across all depths.
	MaxFields int
	// MaxLimit is the ceiling for the result limit. Requests above it are
	// rejected, never clamped.
	MaxLimit int
	// DefaultLimit is stamped on plans whose request carried no limit.
	DefaultLimit int
	// ComplexityThreshold rejects shapes whose computed score exceeds it.
	ComplexityThreshold float64
	// DepthWeightBase is the base of the scorer's geometric depth penalty.
	DepthWeightBase float64
	// CardinalityWeight multiplies the score contribution of nodes reached
	// through a to-many relationship.
	CardinalityWeight float64
	// DeniedFields lists field names never exposed to callers.
	DeniedFields []string
}

// DefaultOptions returns the default engine bounds.
func DefaultOptions() Options {
	return Options{
		MaxDepth:            4,
		MaxFields:           50,
		MaxLimit:            1000,
		DefaultLimit:        100,
		ComplexityThreshold: 500,
		DepthWeightBase:     2,
		CardinalityWeight:   5,
		DeniedFields:        []string{"sourceId", "ingestedAt"},
	}
}
