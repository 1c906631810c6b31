// Package schema provides the static entity/field/relationship registry that
// backs query validation. The registry is built once at startup and never
// mutated afterwards, so all lookups are safe for unsynchronized concurrent use.
package schema

import "fmt"

// FieldType represents the scalar type of an entity field.
type FieldType int

const (
	TypeInt FieldType = iota
	TypeFloat
	TypeString
	TypeBool
	TypeDatetime
)

// String returns the string representation of the field type.
func (t FieldType) String() string {
	switch t {
	case TypeInt:
		return "int"
	case TypeFloat:
		return "float"
	case TypeString:
		return "string"
	case TypeBool:
		return "bool"
	case TypeDatetime:
		return "datetime"
	default:
		return "unknown"
	}
}

// ParseFieldType converts a string to a FieldType.
func ParseFieldType(s string) (FieldType, error) {
	switch s {
	case "int":
		return TypeInt, nil
	case "float":
		return TypeFloat, nil
	case "string":
		return TypeString, nil
	case "bool":
		return TypeBool, nil
	case "datetime":
		return TypeDatetime, nil
	default:
		return 0, fmt.Errorf("unknown field type: %s", s)
	}
}

// Cardinality represents the cardinality of a relationship.
type Cardinality int

const (
	CardinalityOne Cardinality = iota
	CardinalityMany
)

// String returns the string representation of the cardinality.
func (c Cardinality) String() string {
	switch c {
	case CardinalityOne:
		return "one"
	case CardinalityMany:
		return "many"
	default:
		return "unknown"
	}
}

// ParseCardinality converts a string to a Cardinality.
func ParseCardinality(s string) (Cardinality, error) {
	switch s {
	case "one":
		return CardinalityOne, nil
	case "many":
		return CardinalityMany, nil
	default:
		return 0, fmt.Errorf("unknown cardinality: %s", s)
	}
}

// Relationship represents a named link from a source entity to a target entity.
// Entities reference each other by name, not by embedded schema pointers, so
// cyclic graphs (Team -> Game -> Team) are representable without ownership cycles.
type Relationship struct {
	Source      string
	Name        string
	Target      string
	Cardinality Cardinality
}

// EntitySchema describes a single entity: its scalar fields and its
// relationships to other entities.
type EntitySchema struct {
	Name          string
	Description   string
	QueryField    string // root selection field in the upstream GraphQL schema
	Fields        map[string]FieldType
	Relationships map[string]*Relationship
}

// HasField returns true if the entity has a field with the given name.
func (e *EntitySchema) HasField(name string) bool {
	_, exists := e.Fields[name]
	return exists
}

// HasRelationship returns true if the entity has a relationship with the given name.
func (e *EntitySchema) HasRelationship(name string) bool {
	_, exists := e.Relationships[name]
	return exists
}
