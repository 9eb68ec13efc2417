package planner

import (
	"strings"

	"github.com/dmlkit/dmlkit/dmlkit/criteria"
	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
)

// Predicate is a compiled boolean expression over field comparisons,
// ready to be attached to a statement's WHERE clause. Its bound
// arguments live in the builder the compilation ran with.
type Predicate struct {
	SQL string
}

// atomic renders one triplet into a single comparison. The field is
// resolved through the registry collaborator before any SQL is built.
func (c *compiler) atomic(t criteria.Triplet) (Predicate, error) {
	if err := t.Validate(); err != nil {
		return Predicate{}, err
	}
	handle, ok := c.resolver.ResolveField(t.Field)
	if !ok {
		return Predicate{}, dmlerrors.UnknownField(t.Field)
	}
	col := handle.Qualified()

	switch t.Op {
	case criteria.OpEq:
		return Predicate{SQL: col + " = " + c.builder.Arg(t.Value.ScalarValue())}, nil
	case criteria.OpNe:
		return Predicate{SQL: col + " <> " + c.builder.Arg(t.Value.ScalarValue())}, nil
	case criteria.OpGt:
		return Predicate{SQL: col + " > " + c.builder.Arg(t.Value.ScalarValue())}, nil
	case criteria.OpGte:
		return Predicate{SQL: col + " >= " + c.builder.Arg(t.Value.ScalarValue())}, nil
	case criteria.OpLt:
		return Predicate{SQL: col + " < " + c.builder.Arg(t.Value.ScalarValue())}, nil
	case criteria.OpLte:
		return Predicate{SQL: col + " <= " + c.builder.Arg(t.Value.ScalarValue())}, nil

	case criteria.OpBetween:
		lo, hi := t.Value.PairValues()
		return Predicate{SQL: col + " BETWEEN " + c.builder.Arg(lo) + " AND " + c.builder.Arg(hi)}, nil

	case criteria.OpIn:
		return c.membership(col, t.Value.Items(), false), nil
	case criteria.OpNotIn:
		return c.membership(col, t.Value.Items(), true), nil

	case criteria.OpILike:
		needle, _ := t.Value.ScalarValue().(string)
		return Predicate{SQL: c.dialect.Contains(c.builder, col, needle)}, nil
	case criteria.OpNotLike:
		// Logical negation of the ilike predicate, never a backend
		// "not contains" primitive.
		needle, _ := t.Value.ScalarValue().(string)
		return negate(Predicate{SQL: c.dialect.Contains(c.builder, col, needle)}), nil

	case criteria.OpRegex:
		pattern, _ := t.Value.ScalarValue().(string)
		return Predicate{SQL: c.dialect.Regexp(c.builder, col, pattern, false)}, nil
	case criteria.OpIRegex:
		pattern, _ := t.Value.ScalarValue().(string)
		return Predicate{SQL: c.dialect.Regexp(c.builder, col, pattern, true)}, nil

	default:
		return Predicate{}, dmlerrors.UnsupportedOperator(string(t.Op))
	}
}

// membership renders IN / NOT IN. An empty collection can never match,
// so it collapses to a constant truth value instead of invalid SQL.
func (c *compiler) membership(col string, items []any, exclude bool) Predicate {
	if len(items) == 0 {
		if exclude {
			return Predicate{SQL: "1=1"}
		}
		return Predicate{SQL: "1=0"}
	}
	phs := make([]string, len(items))
	for i, item := range items {
		phs[i] = c.builder.Arg(item)
	}
	op := " IN ("
	if exclude {
		op = " NOT IN ("
	}
	return Predicate{SQL: col + op + strings.Join(phs, ", ") + ")"}
}

// compose joins two predicates under a logic marker. It cannot fail on
// well-typed inputs.
func compose(m criteria.Marker, left, right Predicate) Predicate {
	op := " AND "
	if m == criteria.MarkerOr {
		op = " OR "
	}
	return Predicate{SQL: "(" + left.SQL + op + right.SQL + ")"}
}

// negate wraps a predicate in a logical NOT
func negate(p Predicate) Predicate {
	return Predicate{SQL: "NOT (" + p.SQL + ")"}
}
