package query

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gridiron-data/gridiron/internal/schema"
)

// Document is a serialized plan: a GraphQL query in the upstream dialect plus
// the bound variable values. Filter values are always passed as variables,
// never interpolated into the query text.
type Document struct {
	OperationName string                 `json:"operationName"`
	Query         string                 `json:"query"`
	Variables     map[string]interface{} `json:"variables"`
}

// Render serializes a plan into a GraphQL document. Output is deterministic:
// fields keep plan order and expansions are emitted in sorted relationship
// order, so equivalent plans always produce identical documents.
func Render(plan *Plan) *Document {
	r := &renderer{variables: make(map[string]interface{})}

	var body strings.Builder
	r.renderSelection(&body, plan.QueryField, plan.Fields, plan.Filters,
		plan.OrderBy, plan.Limit, plan.Expand, "  ")

	operation := "Get" + plan.Entity
	header := "query " + operation
	if len(r.varDefs) > 0 {
		header += "(" + strings.Join(r.varDefs, ", ") + ")"
	}

	return &Document{
		OperationName: operation,
		Query:         header + " {\n" + body.String() + "}\n",
		Variables:     r.variables,
	}
}

type renderer struct {
	varDefs   []string
	variables map[string]interface{}
	counter   int
}

func (r *renderer) renderSelection(sb *strings.Builder, fieldName string, fields []string,
	filters []PlanFilter, orderBy *Order, limit int, expand map[string]*PlanNode, indent string) {

	where := r.whereExpr(filters)
	order := orderExpr(orderBy)

	switch {
	case where == "" && order == "" && limit <= 0:
		fmt.Fprintf(sb, "%s%s {\n", indent, fieldName)
	case where == "" && order == "":
		fmt.Fprintf(sb, "%s%s(limit: %d) {\n", indent, fieldName, limit)
	default:
		fmt.Fprintf(sb, "%s%s(\n", indent, fieldName)
		if where != "" {
			fmt.Fprintf(sb, "%s  where: %s\n", indent, where)
		}
		if order != "" {
			fmt.Fprintf(sb, "%s  orderBy: %s\n", indent, order)
		}
		if limit > 0 {
			fmt.Fprintf(sb, "%s  limit: %d\n", indent, limit)
		}
		fmt.Fprintf(sb, "%s) {\n", indent)
	}

	for _, field := range fields {
		fmt.Fprintf(sb, "%s  %s\n", indent, field)
	}

	for _, name := range sortedNodeNames(expand) {
		node := expand[name]
		r.renderSelection(sb, name, node.Fields, node.Filters, node.OrderBy,
			node.Limit, node.Expand, indent+"  ")
	}

	fmt.Fprintf(sb, "%s}\n", indent)
}

// whereExpr renders the boolean expression for a filter list. A single clause
// is emitted bare; multiple clauses are combined under _and.
func (r *renderer) whereExpr(filters []PlanFilter) string {
	if len(filters) == 0 {
		return ""
	}
	clauses := make([]string, 0, len(filters))
	for _, filter := range filters {
		clauses = append(clauses, fmt.Sprintf("{ %s: { %s: %s } }",
			filter.Field, gqlOperator(filter.Op), r.bind(filter)))
	}
	if len(clauses) == 1 {
		return clauses[0]
	}
	return "{ _and: [" + strings.Join(clauses, ", ") + "] }"
}

// bind allocates a variable for a filter value and returns its reference.
func (r *renderer) bind(filter PlanFilter) string {
	r.counter++
	name := fmt.Sprintf("v%d", r.counter)
	r.varDefs = append(r.varDefs, fmt.Sprintf("$%s: %s", name, gqlType(filter)))

	value := filter.Value
	if filter.Op == OpContains {
		if s, ok := value.(string); ok {
			value = wrapPattern(s)
		}
	}
	r.variables[name] = value
	return "$" + name
}

func orderExpr(orderBy *Order) string {
	if orderBy == nil {
		return ""
	}
	return fmt.Sprintf("{ %s: %s }", orderBy.Field, strings.ToUpper(orderBy.Direction.String()))
}

func gqlOperator(op Operator) string {
	switch op {
	case OpEqual:
		return "_eq"
	case OpNotEqual:
		return "_neq"
	case OpGreaterThan:
		return "_gt"
	case OpLessThan:
		return "_lt"
	case OpIn:
		return "_in"
	case OpContains:
		return "_ilike"
	default:
		return "_eq"
	}
}

// gqlType maps a filter to the upstream variable type declaration.
func gqlType(filter PlanFilter) string {
	base := gqlScalar(filter.Type)
	if filter.Op == OpIn {
		return "[" + base + "!]!"
	}
	return base + "!"
}

func gqlScalar(fieldType schema.FieldType) string {
	switch fieldType {
	case schema.TypeInt:
		return "Int"
	case schema.TypeFloat:
		return "float8"
	case schema.TypeString:
		return "String"
	case schema.TypeBool:
		return "Boolean"
	case schema.TypeDatetime:
		return "timestamptz"
	default:
		return "String"
	}
}

// wrapPattern adds wildcards for partial matching unless already present.
func wrapPattern(term string) string {
	if !strings.HasPrefix(term, "%") {
		term = "%" + term
	}
	if !strings.HasSuffix(term, "%") {
		term = term + "%"
	}
	return term
}

func sortedNodeNames(expand map[string]*PlanNode) []string {
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
