package domain

import (
	"fmt"
	"strings"
)

// Operator is a comparison used in a query filter.
type Operator string

const (
	OpEQ Operator = "="
	OpLT Operator = "<"
	OpLE Operator = "<="
	OpGT Operator = ">"
	OpGE Operator = ">="
	OpIN Operator = "IN"
)

// IsInequality reports whether op is a range comparison.
func (op Operator) IsInequality() bool {
	switch op {
	case OpLT, OpLE, OpGT, OpGE:
		return true
	}
	return false
}

// Session fields that may be filtered or ordered on.
const (
	FieldName        = "name"
	FieldStartDate   = "startDate"
	FieldDuration    = "duration"
	FieldStartTime   = "startTime"
	FieldSessionType = "sessionType"
)

// Conference fields that may be filtered or ordered on.
const (
	FieldCity           = "city"
	FieldTopics         = "topics"
	FieldMonth          = "month"
	FieldMaxAttendees   = "maxAttendees"
	FieldSeatsAvailable = "seatsAvailable"
)

// QueryFilter is a single predicate. Values holds one value for comparisons
// and the candidate set for OpIN.
type QueryFilter struct {
	Field    string   `json:"field"`
	Operator Operator `json:"operator"`
	Values   []any    `json:"values"`
}

// Filter returns a single-valued filter.
func Filter(field string, op Operator, value any) QueryFilter {
	return QueryFilter{Field: field, Operator: op, Values: []any{value}}
}

// In returns a membership filter over values.
func In(field string, values ...any) QueryFilter {
	return QueryFilter{Field: field, Operator: OpIN, Values: values}
}

// Order sorts results by Field.
type Order struct {
	Field      string
	Descending bool
}

// Query describes an entity query in the shape the store supports: an
// optional ancestor, equality and IN filters, and inequality filters that
// must all target the same field.
type Query struct {
	Ancestor *Key
	Filters  []QueryFilter
	Order    *Order
}

// InequalityField returns the field constrained by inequality filters, or ""
// when there is none.
func (q Query) InequalityField() string {
	for _, f := range q.Filters {
		if f.Operator.IsInequality() {
			return f.Field
		}
	}
	return ""
}

// Validate enforces the store's composite query restrictions: at most one
// field may carry inequality filters, and when one does, any sort order must
// start with that field.
func (q Query) Validate() error {
	ineq := ""
	for _, f := range q.Filters {
		switch {
		case f.Operator == OpEQ:
			if len(f.Values) != 1 {
				return fmt.Errorf("%w: equality filter on %s needs exactly one value", ErrInvalidInput, f.Field)
			}
		case f.Operator == OpIN:
			if len(f.Values) == 0 {
				return fmt.Errorf("%w: IN filter on %s needs at least one value", ErrInvalidInput, f.Field)
			}
		case f.Operator.IsInequality():
			if len(f.Values) != 1 {
				return fmt.Errorf("%w: inequality filter on %s needs exactly one value", ErrInvalidInput, f.Field)
			}
			if ineq != "" && ineq != f.Field {
				return fmt.Errorf("%w: inequality filters on both %s and %s", ErrInvalidInput, ineq, f.Field)
			}
			ineq = f.Field
		default:
			return fmt.Errorf("%w: unsupported operator %q", ErrInvalidInput, f.Operator)
		}
	}
	if ineq != "" && q.Order != nil && q.Order.Field != ineq {
		return fmt.Errorf("%w: first sort field must be the inequality field %s", ErrInvalidInput, ineq)
	}
	return nil
}

func (q Query) String() string {
	var parts []string
	if q.Ancestor != nil {
		parts = append(parts, "ancestor="+q.Ancestor.String())
	}
	for _, f := range q.Filters {
		parts = append(parts, fmt.Sprintf("%s %s %v", f.Field, f.Operator, f.Values))
	}
	if q.Order != nil {
		dir := "asc"
		if q.Order.Descending {
			dir = "desc"
		}
		parts = append(parts, "order="+q.Order.Field+" "+dir)
	}
	return strings.Join(parts, ", ")
}

// SessionQuery is a Query over sessions.
type SessionQuery struct{ Query }

// ConferenceQuery is a Query over conferences.
type ConferenceQuery struct{ Query }

var operatorNames = map[string]Operator{
	"EQ":   OpEQ,
	"LT":   OpLT,
	"GT":   OpGT,
	"LTEQ": OpLE,
	"GTEQ": OpGE,
	"IN":   OpIN,
}

// ParseOperator accepts both the symbolic form ("<=") and the named form
// ("LTEQ") of an operator.
func ParseOperator(s string) (Operator, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if op, ok := operatorNames[s]; ok {
		return op, nil
	}
	switch op := Operator(s); op {
	case OpEQ, OpLT, OpLE, OpGT, OpGE:
		return op, nil
	}
	return "", fmt.Errorf("%w: unsupported operator %q", ErrInvalidInput, s)
}
