package criteria

import (
	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
)

// Operator is a closed enumeration of the comparison operators a triplet
// may carry. Anything outside this set is rejected during compilation.
type Operator string

const (
	OpEq      Operator = "="
	OpNe      Operator = "!="
	OpGt      Operator = ">"
	OpGte     Operator = ">="
	OpLt      Operator = "<"
	OpLte     Operator = "<="
	OpBetween Operator = "><"
	OpIn      Operator = "in"
	OpNotIn   Operator = "not in"
	OpILike   Operator = "ilike"
	OpNotLike Operator = "not ilike"
	OpRegex   Operator = "~"
	OpIRegex  Operator = "~*"
)

// Shape is the value shape an operator accepts
type Shape int

const (
	ShapeScalar Shape = iota
	ShapePair
	ShapeCollection
)

func (s Shape) String() string {
	switch s {
	case ShapeScalar:
		return "scalar"
	case ShapePair:
		return "pair"
	case ShapeCollection:
		return "collection"
	default:
		return "?"
	}
}

// Valid reports whether op is in the closed operator set
func (op Operator) Valid() bool {
	switch op {
	case OpEq, OpNe, OpGt, OpGte, OpLt, OpLte,
		OpBetween, OpIn, OpNotIn, OpILike, OpNotLike, OpRegex, OpIRegex:
		return true
	default:
		return false
	}
}

// Shape returns the value shape the operator requires. Calling Shape on
// an operator outside the closed set returns ShapeScalar; Valid gates
// that path before shape checks run.
func (op Operator) Shape() Shape {
	switch op {
	case OpBetween:
		return ShapePair
	case OpIn, OpNotIn:
		return ShapeCollection
	default:
		return ShapeScalar
	}
}

// WantsString reports whether the operator only accepts string scalars
// (substring containment and regular-expression matches)
func (op Operator) WantsString() bool {
	switch op {
	case OpILike, OpNotLike, OpRegex, OpIRegex:
		return true
	default:
		return false
	}
}

// ParseOperator maps an operator literal to its enumeration value
func ParseOperator(s string) (Operator, error) {
	op := Operator(s)
	if !op.Valid() {
		return "", dmlerrors.UnsupportedOperator(s)
	}
	return op, nil
}
