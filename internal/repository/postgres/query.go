package postgres

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"conferencecentral/internal/domain"

	"github.com/lib/pq"
)

// column maps a query field onto a table column. Array columns match when
// any element equals the filter value.
type column struct {
	name  string
	array bool
}

var sessionFields = map[string]column{
	domain.FieldName:        {name: "name"},
	domain.FieldStartDate:   {name: "start_date"},
	domain.FieldDuration:    {name: "duration"},
	domain.FieldStartTime:   {name: "start_time"},
	domain.FieldSessionType: {name: "session_type"},
}

var conferenceFields = map[string]column{
	domain.FieldName:           {name: "name"},
	domain.FieldCity:           {name: "city"},
	domain.FieldTopics:         {name: "topics", array: true},
	domain.FieldMonth:          {name: "month"},
	domain.FieldMaxAttendees:   {name: "max_attendees"},
	domain.FieldSeatsAvailable: {name: "seats_available"},
}

// whereBuilder accumulates SQL predicates and their positional arguments.
type whereBuilder struct {
	preds []string
	args  []any
}

func (w *whereBuilder) arg(v any) string {
	w.args = append(w.args, v)
	return "$" + strconv.Itoa(len(w.args))
}

func (w *whereBuilder) add(pred string) { w.preds = append(w.preds, pred) }

func (w *whereBuilder) clause() string {
	if len(w.preds) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(w.preds, " AND ")
}

// buildQuery validates q and renders its filters and order against cols.
func buildQuery(q domain.Query, cols map[string]column, w *whereBuilder) (string, error) {
	if err := q.Validate(); err != nil {
		return "", err
	}
	for _, f := range q.Filters {
		col, ok := cols[f.Field]
		if !ok {
			return "", fmt.Errorf("%w: unknown field %q", domain.ErrInvalidInput, f.Field)
		}
		switch {
		case f.Operator == domain.OpIN:
			arr, err := arrayArg(f.Values)
			if err != nil {
				return "", err
			}
			if col.array {
				w.add(col.name + " && " + w.arg(arr))
			} else {
				w.add(col.name + " = ANY(" + w.arg(arr) + ")")
			}
		case col.array && f.Operator == domain.OpEQ:
			w.add(w.arg(scalarArg(f.Values[0])) + " = ANY(" + col.name + ")")
		case col.array:
			return "", fmt.Errorf("%w: inequality on array field %q", domain.ErrInvalidInput, f.Field)
		default:
			w.add(col.name + " " + string(f.Operator) + " " + w.arg(scalarArg(f.Values[0])))
		}
	}
	clause := w.clause()
	if q.Order != nil {
		col, ok := cols[q.Order.Field]
		if !ok || col.array {
			return "", fmt.Errorf("%w: cannot order by %q", domain.ErrInvalidInput, q.Order.Field)
		}
		dir := "ASC"
		if q.Order.Descending {
			dir = "DESC"
		}
		clause += " ORDER BY " + col.name + " " + dir
	}
	return clause, nil
}

func scalarArg(v any) any {
	switch t := v.(type) {
	case domain.SessionType:
		return string(t)
	case int:
		return int64(t)
	case time.Time:
		return t
	}
	return v
}

// arrayArg converts IN values into a typed Postgres array.
func arrayArg(values []any) (any, error) {
	switch values[0].(type) {
	case string, domain.SessionType:
		out := make(pq.StringArray, 0, len(values))
		for _, v := range values {
			switch s := v.(type) {
			case string:
				out = append(out, s)
			case domain.SessionType:
				out = append(out, string(s))
			default:
				return nil, fmt.Errorf("%w: mixed IN value types", domain.ErrInvalidInput)
			}
		}
		return out, nil
	case int, int64, float64:
		out := make(pq.Int64Array, 0, len(values))
		for _, v := range values {
			switch n := v.(type) {
			case int:
				out = append(out, int64(n))
			case int64:
				out = append(out, n)
			case float64:
				out = append(out, int64(n))
			default:
				return nil, fmt.Errorf("%w: mixed IN value types", domain.ErrInvalidInput)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: unsupported IN value type %T", domain.ErrInvalidInput, values[0])
}
