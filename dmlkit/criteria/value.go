package criteria

import (
	"fmt"
	"reflect"

	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
)

// ValueKind tags the shape of a comparison value
type ValueKind int

const (
	KindScalar ValueKind = iota
	KindPair
	KindCollection
)

func (k ValueKind) String() string {
	switch k {
	case KindScalar:
		return "scalar"
	case KindPair:
		return "pair"
	case KindCollection:
		return "collection"
	default:
		return "?"
	}
}

// Value is the tagged comparison value carried by a triplet. The shape is
// fixed at construction so shape mismatches are caught at the boundary
// instead of deep inside predicate rendering.
type Value struct {
	kind   ValueKind
	scalar any
	pair   [2]any
	items  []any
}

// Scalar wraps a single comparison value
func Scalar(v any) Value {
	return Value{kind: KindScalar, scalar: v}
}

// Pair wraps an inclusive [lo, hi] range bound
func Pair(lo, hi any) Value {
	return Value{kind: KindPair, pair: [2]any{lo, hi}}
}

// Collection wraps a membership set
func Collection(items ...any) Value {
	return Value{kind: KindCollection, items: items}
}

// Kind returns the value's shape tag
func (v Value) Kind() ValueKind { return v.kind }

// ScalarValue returns the wrapped scalar; only meaningful for KindScalar
func (v Value) ScalarValue() any { return v.scalar }

// PairValues returns the [lo, hi] bounds; only meaningful for KindPair
func (v Value) PairValues() (any, any) { return v.pair[0], v.pair[1] }

// Items returns the membership set; only meaningful for KindCollection
func (v Value) Items() []any { return v.items }

// checkShape validates a value against the shape its operator requires
func checkShape(field string, op Operator, v Value) error {
	want := op.Shape()
	got := v.kind
	switch want {
	case ShapeScalar:
		if got != KindScalar {
			return dmlerrors.ValueShapeMismatch(field,
				fmt.Sprintf("operator %q requires a scalar value, got %s", op, got))
		}
		if op.WantsString() {
			if _, ok := v.scalar.(string); !ok {
				return dmlerrors.ValueShapeMismatch(field,
					fmt.Sprintf("operator %q requires a string value, got %T", op, v.scalar))
			}
		}
	case ShapePair:
		if got != KindPair {
			return dmlerrors.ValueShapeMismatch(field,
				fmt.Sprintf("operator %q requires a [low, high] pair, got %s", op, got))
		}
	case ShapeCollection:
		if got != KindCollection {
			return dmlerrors.ValueShapeMismatch(field,
				fmt.Sprintf("operator %q requires a collection, got %s", op, got))
		}
	}
	return nil
}

// wrapValue converts a raw Go value into the shape the operator expects.
// Slices become collections, or the range pair when the operator is the
// between operator and the slice has exactly two elements. Everything
// else is a scalar. Values already wrapped pass through unchanged.
func wrapValue(op Operator, v any) Value {
	if wrapped, ok := v.(Value); ok {
		return wrapped
	}

	rv := reflect.ValueOf(v)
	if v != nil && (rv.Kind() == reflect.Slice || rv.Kind() == reflect.Array) {
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		if op == OpBetween && len(items) == 2 {
			return Pair(items[0], items[1])
		}
		return Collection(items...)
	}
	return Scalar(v)
}
