// Package query implements the hierarchical query construction and validation
// engine: schema-checked requests in, normalized plans and serialized GraphQL
// documents out. Everything here is a pure function of (request, registry) and
// safe for concurrent use.
package query

import (
	"encoding/json"
	"fmt"
)

// Operator represents a filter comparison operator.
type Operator int

const (
	OpEqual Operator = iota
	OpNotEqual
	OpGreaterThan
	OpLessThan
	OpIn
	OpContains
)

// String returns the wire name of the operator.
func (o Operator) String() string {
	switch o {
	case OpEqual:
		return "eq"
	case OpNotEqual:
		return "neq"
	case OpGreaterThan:
		return "gt"
	case OpLessThan:
		return "lt"
	case OpIn:
		return "in"
	case OpContains:
		return "contains"
	default:
		return "unknown"
	}
}

// ParseOperator converts a wire name to an Operator.
func ParseOperator(s string) (Operator, error) {
	switch s {
	case "eq":
		return OpEqual, nil
	case "neq":
		return OpNotEqual, nil
	case "gt":
		return OpGreaterThan, nil
	case "lt":
		return OpLessThan, nil
	case "in":
		return OpIn, nil
	case "contains":
		return OpContains, nil
	default:
		return 0, fmt.Errorf("unknown operator: %s", s)
	}
}

// MarshalJSON serializes the operator as its wire name.
func (o Operator) MarshalJSON() ([]byte, error) {
	return json.Marshal(o.String())
}

// UnmarshalJSON parses the operator from its wire name.
func (o *Operator) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	op, err := ParseOperator(s)
	if err != nil {
		return err
	}
	*o = op
	return nil
}

// Direction represents an ordering direction.
type Direction int

const (
	Ascending Direction = iota
	Descending
)

// String returns the wire name of the direction.
func (d Direction) String() string {
	if d == Descending {
		return "desc"
	}
	return "asc"
}

// MarshalJSON serializes the direction as its wire name.
func (d Direction) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

// UnmarshalJSON parses the direction from its wire name.
func (d *Direction) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	switch s {
	case "asc":
		*d = Ascending
	case "desc":
		*d = Descending
	default:
		return fmt.Errorf("unknown direction: %s", s)
	}
	return nil
}

// Filter represents a single filter predicate on a field.
type Filter struct {
	Field string      `json:"field"`
	Op    Operator    `json:"op"`
	Value interface{} `json:"value"`
}

// Order represents an ordering directive.
type Order struct {
	Field     string    `json:"field"`
	Direction Direction `json:"direction"`
}

// Expansion describes the nested selection requested through a relationship.
// It is shaped like a Request minus the entity name, which is implied by the
// relationship's target.
type Expansion struct {
	Fields  []string              `json:"fields"`
	Filters []Filter              `json:"filters,omitempty"`
	Expand  map[string]*Expansion `json:"expand,omitempty"`
	OrderBy *Order                `json:"orderBy,omitempty"`
	Limit   int                   `json:"limit,omitempty"`
}

// Request is the caller's query specification, one per call. The transport
// layer is responsible for normalizing loosely typed caller input into this
// strict shape before handing it to the Builder.
type Request struct {
	Entity  string                `json:"entity"`
	Fields  []string              `json:"fields"`
	Filters []Filter              `json:"filters,omitempty"`
	Expand  map[string]*Expansion `json:"expand,omitempty"`
	OrderBy *Order                `json:"orderBy,omitempty"`
	Limit   int                   `json:"limit,omitempty"`
}
