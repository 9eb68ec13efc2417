// Package criteria defines the prefix-notation search criteria structure
// accepted by dmlkit. A criteria structure is an ordered sequence of terms
// where each term is either a comparison triplet or a logic marker, with
// every marker preceding its two operand spans.
package criteria

import (
	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
)

// Term is one element of a criteria structure
type Term interface {
	isTerm()
}

// Marker is a positional logic operator joining the two operand spans
// that follow it
type Marker string

const (
	MarkerAnd Marker = "&"
	MarkerOr  Marker = "|"
)

func (Marker) isTerm() {}

// Valid reports whether the marker is one of the two known markers
func (m Marker) Valid() bool {
	return m == MarkerAnd || m == MarkerOr
}

// Triplet is one atomic field/operator/value comparison
type Triplet struct {
	Field string
	Op    Operator
	Value Value
}

func (Triplet) isTerm() {}

// NewTriplet builds a triplet, validating the value shape against the
// operator's requirement
func NewTriplet(field string, op Operator, v Value) (Triplet, error) {
	if !op.Valid() {
		return Triplet{}, dmlerrors.UnsupportedOperator(string(op))
	}
	if err := checkShape(field, op, v); err != nil {
		return Triplet{}, err
	}
	return Triplet{Field: field, Op: op, Value: v}, nil
}

// Validate re-checks the triplet's operator and value shape. Compilation
// calls this so loosely constructed triplets are still caught.
func (t Triplet) Validate() error {
	if !t.Op.Valid() {
		return dmlerrors.UnsupportedOperator(string(t.Op))
	}
	return checkShape(t.Field, t.Op, t.Value)
}

// T is the loose constructor used when building structures by hand. The
// Go value is wrapped into the shape the operator requires: slices become
// collections (a 2-element slice becomes a pair for the between operator),
// anything else is a scalar. Shape errors surface at compile time as
// ValueShapeMismatch.
func T(field string, op Operator, v any) Triplet {
	return Triplet{Field: field, Op: op, Value: wrapValue(op, v)}
}

// Structure is an ordered criteria sequence in prefix notation. An empty
// structure means "no filter" and must be special-cased by callers before
// compilation.
type Structure []Term

// Empty reports whether the structure has no terms
func (s Structure) Empty() bool {
	return len(s) == 0
}

// And splices two structures under a leading AND marker. If either side
// is empty the other is returned unchanged.
func And(a, b Structure) Structure {
	return splice(MarkerAnd, a, b)
}

// Or splices two structures under a leading OR marker. If either side
// is empty the other is returned unchanged.
func Or(a, b Structure) Structure {
	return splice(MarkerOr, a, b)
}

func splice(m Marker, a, b Structure) Structure {
	if len(a) == 0 {
		return b
	}
	if len(b) == 0 {
		return a
	}
	out := make(Structure, 0, 1+len(a)+len(b))
	out = append(out, m)
	out = append(out, a...)
	out = append(out, b...)
	return out
}
