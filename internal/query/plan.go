package query

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"

	"github.com/gridiron-data/gridiron/internal/schema"
)

// PlanFilter is a validated filter clause with its field's resolved type.
type PlanFilter struct {
	Field string           `json:"field"`
	Op    Operator         `json:"op"`
	Value interface{}      `json:"value"`
	Type  schema.FieldType `json:"-"`
}

// PlanNode is one validated expansion in a plan: the relationship it was
// requested through, the resolved target entity, and its own selection.
type PlanNode struct {
	Relationship string               `json:"relationship"`
	Entity       string               `json:"entity"`
	Cardinality  string               `json:"cardinality"`
	Fields       []string             `json:"fields"`
	Filters      []PlanFilter         `json:"filters,omitempty"`
	OrderBy      *Order               `json:"orderBy,omitempty"`
	Limit        int                  `json:"limit,omitempty"`
	Expand       map[string]*PlanNode `json:"expand,omitempty"`
}

// Plan is the validated, normalized mirror of a request. It is produced only
// on successful validation; every field and relationship it names is
// guaranteed to resolve in the registry at validation time.
type Plan struct {
	ID         string               `json:"id"`
	Entity     string               `json:"entity"`
	QueryField string               `json:"queryField"`
	Fields     []string             `json:"fields"`
	Filters    []PlanFilter         `json:"filters,omitempty"`
	OrderBy    *Order               `json:"orderBy,omitempty"`
	Limit      int                  `json:"limit"`
	Expand     map[string]*PlanNode `json:"expand,omitempty"`
	Complexity float64              `json:"complexity"`
}

// Fingerprint returns a stable hash of the plan's shape and bound values,
// excluding the per-call plan ID. Two plans built from equivalent requests
// share a fingerprint, which is what the result cache keys on.
func (p *Plan) Fingerprint() string {
	shadow := *p
	shadow.ID = ""
	raw, err := json.Marshal(&shadow)
	if err != nil {
		// Plans hold only JSON-representable values; a marshal failure means
		// a non-serializable filter value slipped through validation.
		return "unfingerprintable"
	}
	sum := sha256.Sum256(raw)
	return hex.EncodeToString(sum[:])
}
