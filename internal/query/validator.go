package query

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/gridiron-data/gridiron/internal/schema"
)

// validator recursively checks a request tree against the registry. A single
// instance serves one Build call; the running field counter is what enforces
// the global field budget.
type validator struct {
	registry   *schema.Registry
	maxDepth   int
	maxFields  int
	maxLimit   int
	denied     map[string]struct{}
	fieldCount int
}

func newValidator(registry *schema.Registry, opts Options) *validator {
	denied := make(map[string]struct{}, len(opts.DeniedFields))
	for _, field := range opts.DeniedFields {
		denied[field] = struct{}{}
	}
	return &validator{
		registry:  registry,
		maxDepth:  opts.MaxDepth,
		maxFields: opts.MaxFields,
		maxLimit:  opts.MaxLimit,
		denied:    denied,
	}
}

// validate walks the full request tree rooted at entity. The root is depth 0.
// The root limit is passed as 0: nested limits are properties of the tree and
// are checked during the walk, while the root limit is a policy Build applies
// after scoring.
func (v *validator) validate(entity *schema.EntitySchema, req *Request) *Rejection {
	return v.validateNode(entity, req.Fields, req.Filters, req.Expand, req.OrderBy, 0, "", 0)
}

func (v *validator) validateNode(entity *schema.EntitySchema, fields []string, filters []Filter,
	expand map[string]*Expansion, orderBy *Order, limit int, path string, depth int) *Rejection {

	// A node that names no fields and expands nothing would render as an
	// empty selection set, which no GraphQL server accepts.
	if len(fields) == 0 && len(expand) == 0 {
		return emptySelection(path)
	}

	seen := make(map[string]struct{}, len(fields))
	for _, field := range fields {
		if _, exists := entity.Fields[field]; !exists {
			return unknownField(path, entity.Name, field)
		}
		if _, deny := v.denied[field]; deny {
			return fieldDenied(path, field)
		}
		if _, dup := seen[field]; dup {
			continue // duplicates collapse during normalization and cost nothing
		}
		seen[field] = struct{}{}
		v.fieldCount++
		if v.fieldCount > v.maxFields {
			return fieldBudgetExceeded(joinPath(path, field), v.maxFields, v.fieldCount)
		}
	}

	for _, filter := range filters {
		if rej := v.validateFilter(entity, filter, path); rej != nil {
			return rej
		}
	}

	if orderBy != nil {
		if _, exists := entity.Fields[orderBy.Field]; !exists {
			return unknownField(path, entity.Name, orderBy.Field)
		}
		if _, deny := v.denied[orderBy.Field]; deny {
			return fieldDenied(path, orderBy.Field)
		}
	}

	if limit > v.maxLimit {
		return limitExceeded(v.maxLimit, limit)
	}

	// Sorted iteration keeps the first reported failure stable across calls.
	for _, name := range sortedExpandNames(expand) {
		rel, exists := entity.Relationships[name]
		if !exists {
			return unknownRelationship(path, entity.Name, name)
		}

		childPath := joinPath(path, name)
		childDepth := depth + 1
		if childDepth > v.maxDepth {
			return depthExceeded(childPath, v.maxDepth, childDepth)
		}

		target, exists := v.registry.LookupEntity(rel.Target)
		if !exists {
			// Registry construction guarantees targets resolve; treat a miss
			// as an unknown relationship rather than panicking.
			return unknownRelationship(path, entity.Name, name)
		}

		child := expand[name]
		if child == nil {
			// JSON null decodes to a nil entry; treat it as an empty selection.
			child = &Expansion{}
		}
		if rej := v.validateNode(target, child.Fields, child.Filters, child.Expand,
			child.OrderBy, child.Limit, childPath, childDepth); rej != nil {
			return rej
		}
	}

	return nil
}

func (v *validator) validateFilter(entity *schema.EntitySchema, filter Filter, path string) *Rejection {
	fieldType, exists := entity.Fields[filter.Field]
	if !exists {
		return unknownField(path, entity.Name, filter.Field)
	}
	if _, deny := v.denied[filter.Field]; deny {
		return fieldDenied(path, filter.Field)
	}

	switch filter.Op {
	case OpContains:
		if fieldType != schema.TypeString {
			return invalidOperator(path, filter.Field, filter.Op, fieldType.String())
		}
	case OpGreaterThan, OpLessThan:
		if fieldType == schema.TypeBool {
			return invalidOperator(path, filter.Field, filter.Op, fieldType.String())
		}
	case OpIn:
		values, ok := filter.Value.([]interface{})
		if !ok {
			return typeMismatch(path, filter.Field, fmt.Sprintf("list of %s", fieldType), valueTypeName(filter.Value))
		}
		for _, value := range values {
			if !valueCompatible(fieldType, value) {
				return typeMismatch(path, filter.Field, fieldType.String(), valueTypeName(value))
			}
		}
		return nil
	}

	if !valueCompatible(fieldType, filter.Value) {
		return typeMismatch(path, filter.Field, fieldType.String(), valueTypeName(filter.Value))
	}
	return nil
}

// valueCompatible reports whether a literal filter value is acceptable for the
// declared field type. JSON transports decode every number as float64, so
// integral float64 values are accepted for int fields.
func valueCompatible(fieldType schema.FieldType, value interface{}) bool {
	switch fieldType {
	case schema.TypeInt:
		switch v := value.(type) {
		case int, int32, int64:
			return true
		case float64:
			return v == math.Trunc(v)
		}
		return false
	case schema.TypeFloat:
		switch value.(type) {
		case float32, float64, int, int32, int64:
			return true
		}
		return false
	case schema.TypeString:
		_, ok := value.(string)
		return ok
	case schema.TypeBool:
		_, ok := value.(bool)
		return ok
	case schema.TypeDatetime:
		switch v := value.(type) {
		case time.Time:
			return true
		case string:
			_, err := time.Parse(time.RFC3339, v)
			return err == nil
		}
		return false
	default:
		return false
	}
}

func valueTypeName(value interface{}) string {
	switch value.(type) {
	case nil:
		return "null"
	case bool:
		return "bool"
	case string:
		return "string"
	case int, int32, int64:
		return "int"
	case float32, float64:
		return "float"
	case []interface{}:
		return "list"
	case time.Time:
		return "datetime"
	default:
		return fmt.Sprintf("%T", value)
	}
}

func sortedExpandNames(expand map[string]*Expansion) []string {
	if len(expand) == 0 {
		return nil
	}
	names := make([]string, 0, len(expand))
	for name := range expand {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
