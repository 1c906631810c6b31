package query

import (
	"encoding/json"
	"errors"
	"fmt"
)

// RejectionKind identifies the validation rule a request violated.
type RejectionKind int

const (
	KindEntityNotFound RejectionKind = iota
	KindUnknownField
	KindUnknownRelationship
	KindFieldDenied
	KindTypeMismatch
	KindInvalidOperator
	KindDepthExceeded
	KindFieldBudgetExceeded
	KindComplexityExceeded
	KindLimitExceeded
	KindEmptySelection
)

// String returns the wire name of the rejection kind.
func (k RejectionKind) String() string {
	switch k {
	case KindEntityNotFound:
		return "entity_not_found"
	case KindUnknownField:
		return "unknown_field"
	case KindUnknownRelationship:
		return "unknown_relationship"
	case KindFieldDenied:
		return "field_denied"
	case KindTypeMismatch:
		return "type_mismatch"
	case KindInvalidOperator:
		return "invalid_operator"
	case KindDepthExceeded:
		return "depth_exceeded"
	case KindFieldBudgetExceeded:
		return "field_budget_exceeded"
	case KindComplexityExceeded:
		return "complexity_exceeded"
	case KindLimitExceeded:
		return "limit_exceeded"
	case KindEmptySelection:
		return "empty_selection"
	default:
		return "unknown"
	}
}

// MarshalJSON serializes the kind as its wire name.
func (k RejectionKind) MarshalJSON() ([]byte, error) {
	return json.Marshal(k.String())
}

// Rejection is a structured validation failure. Kind is machine-checkable;
// Path names the offending request element in dotted form (empty for the
// root); Hint tells the caller how to fix the request. Max/Actual carry the
// configured threshold and the computed value for bound violations, and
// Expected/Got carry type names for mismatches.
type Rejection struct {
	Kind     RejectionKind `json:"kind"`
	Path     string        `json:"path,omitempty"`
	Expected string        `json:"expected,omitempty"`
	Got      string        `json:"got,omitempty"`
	Max      float64       `json:"max,omitempty"`
	Actual   float64       `json:"actual,omitempty"`
	Hint     string        `json:"hint,omitempty"`
}

// Error implements the error interface.
func (r *Rejection) Error() string {
	msg := fmt.Sprintf("query rejected: %s", r.Kind)
	if r.Path != "" {
		msg = fmt.Sprintf("%s at %s", msg, r.Path)
	}
	switch {
	case r.Expected != "":
		msg = fmt.Sprintf("%s (expected %s, got %s)", msg, r.Expected, r.Got)
	case r.Max != 0 || r.Actual != 0:
		msg = fmt.Sprintf("%s (max %g, got %g)", msg, r.Max, r.Actual)
	}
	return msg
}

// AsRejection extracts a Rejection from an error chain.
func AsRejection(err error) (*Rejection, bool) {
	var rejection *Rejection
	if errors.As(err, &rejection) {
		return rejection, true
	}
	return nil, false
}

func entityNotFound(entity string) *Rejection {
	return &Rejection{
		Kind: KindEntityNotFound,
		Path: entity,
		Hint: fmt.Sprintf("entity %q is not in the schema; use schema search to list valid entities", entity),
	}
}

func unknownField(path, entity, field string) *Rejection {
	return &Rejection{
		Kind: KindUnknownField,
		Path: joinPath(path, field),
		Hint: fmt.Sprintf("entity %s has no field %q; describe the entity to list its fields", entity, field),
	}
}

func unknownRelationship(path, entity, name string) *Rejection {
	return &Rejection{
		Kind: KindUnknownRelationship,
		Path: joinPath(path, name),
		Hint: fmt.Sprintf("entity %s has no relationship %q; describe the entity to list its relationships", entity, name),
	}
}

func fieldDenied(path, field string) *Rejection {
	return &Rejection{
		Kind: KindFieldDenied,
		Path: joinPath(path, field),
		Hint: fmt.Sprintf("field %q is not exposed to callers", field),
	}
}

func typeMismatch(path, field, expected, got string) *Rejection {
	return &Rejection{
		Kind:     KindTypeMismatch,
		Path:     joinPath(path, field),
		Expected: expected,
		Got:      got,
		Hint:     fmt.Sprintf("filter value for %q must be a %s", field, expected),
	}
}

func invalidOperator(path, field string, op Operator, fieldType string) *Rejection {
	return &Rejection{
		Kind: KindInvalidOperator,
		Path: joinPath(path, field),
		Got:  op.String(),
		Hint: fmt.Sprintf("operator %q cannot be applied to %s field %q", op, fieldType, field),
	}
}

func depthExceeded(path string, max, requested int) *Rejection {
	return &Rejection{
		Kind:   KindDepthExceeded,
		Path:   path,
		Max:    float64(max),
		Actual: float64(requested),
		Hint:   fmt.Sprintf("expansion depth is limited to %d; drop the expansion at %s", max, path),
	}
}

func fieldBudgetExceeded(path string, max, attempted int) *Rejection {
	return &Rejection{
		Kind:   KindFieldBudgetExceeded,
		Path:   path,
		Max:    float64(max),
		Actual: float64(attempted),
		Hint:   fmt.Sprintf("at most %d fields may be requested across all expansions; trim the selection at %s", max, path),
	}
}

func complexityExceeded(score, threshold float64) *Rejection {
	return &Rejection{
		Kind:   KindComplexityExceeded,
		Max:    threshold,
		Actual: score,
		Hint:   "the combination of fields, depth, and to-many expansions is too expensive; request fewer fields or shallower expansions",
	}
}

func emptySelection(path string) *Rejection {
	hint := "the request selects no fields; request at least one field or expansion"
	if path != "" {
		hint = fmt.Sprintf("the expansion at %s selects no fields; request at least one field or expansion, or drop it", path)
	}
	return &Rejection{
		Kind: KindEmptySelection,
		Path: path,
		Hint: hint,
	}
}

func limitExceeded(max, requested int) *Rejection {
	return &Rejection{
		Kind:   KindLimitExceeded,
		Max:    float64(max),
		Actual: float64(requested),
		Hint:   fmt.Sprintf("limit may not exceed %d; lower the limit and paginate instead", max),
	}
}

func joinPath(path, segment string) string {
	if path == "" {
		return segment
	}
	return path + "." + segment
}
