// Package planner compiles a criteria structure into a single composed
// SQL predicate. The compiler is pure and stateless across calls: every
// compilation gets its own builder and walks the structure recursively
// over index spans, so sub-calls reason about exactly the terms they
// consume.
package planner

import (
	"github.com/dmlkit/dmlkit/dmlkit/criteria"
	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
	"github.com/dmlkit/dmlkit/dmlkit/storage"
)

// MaxDepth bounds criteria nesting so a hostile structure fails with
// MalformedCriteria instead of overflowing the call stack.
const MaxDepth = 200

type compiler struct {
	resolver storage.FieldResolver
	dialect  storage.Dialect
	builder  storage.Builder
	depth    int
}

// Compile reduces a non-empty criteria structure to one composed
// predicate. Callers mean "no filter" by an empty structure and must
// special-case it before calling; compiling an empty structure is
// MalformedCriteria.
func Compile(resolver storage.FieldResolver, dialect storage.Dialect, builder storage.Builder, cs criteria.Structure) (Predicate, error) {
	if cs.Empty() {
		return Predicate{}, dmlerrors.MalformedCriteria("empty criteria cannot be compiled")
	}
	c := &compiler{resolver: resolver, dialect: dialect, builder: builder}
	return c.compileSpan(cs, 0, len(cs))
}

// compileSpan reduces the terms in cs[start:end] to one predicate.
//
// The grammar is positional prefix notation: a single triplet stands
// alone; otherwise the first term must be a marker whose two operand
// spans follow it. The first marker always owns the composition; markers
// inside an operand span are resolved by the recursive call for that
// span, never here. Every recursive call covers a strictly shorter span,
// so recursion depth is bounded by the number of markers.
func (c *compiler) compileSpan(cs criteria.Structure, start, end int) (Predicate, error) {
	c.depth++
	defer func() { c.depth-- }()
	if c.depth > MaxDepth {
		return Predicate{}, dmlerrors.MalformedCriteria("criteria nesting exceeds maximum depth")
	}

	n := end - start
	if n <= 0 {
		return Predicate{}, dmlerrors.MalformedCriteria("logic marker is missing its operands")
	}

	if n == 1 {
		t, ok := cs[start].(criteria.Triplet)
		if !ok {
			return Predicate{}, dmlerrors.MalformedCriteria("a lone logic marker is not a criteria")
		}
		return c.atomic(t)
	}

	marker, ok := cs[start].(criteria.Marker)
	if !ok {
		return Predicate{}, dmlerrors.MalformedCriteria("multiple terms must be joined by a leading logic marker")
	}
	if !marker.Valid() {
		return Predicate{}, dmlerrors.MalformedCriteria("unknown logic marker " + string(marker))
	}
	if n == 2 {
		return Predicate{}, dmlerrors.MalformedCriteria("logic marker has only one operand")
	}

	second, secondIsTriplet := cs[start+1].(criteria.Triplet)
	_, thirdIsTriplet := cs[start+2].(criteria.Triplet)

	switch {
	case secondIsTriplet && thirdIsTriplet:
		// Marker directly followed by two triplets is a self-contained
		// ternary unit; anything after it in this span was never
		// consumable and is rejected rather than silently dropped.
		if n != 3 {
			return Predicate{}, dmlerrors.MalformedCriteria("criteria has unconsumed trailing terms")
		}
		left, err := c.atomic(second)
		if err != nil {
			return Predicate{}, err
		}
		right, err := c.atomic(cs[start+2].(criteria.Triplet))
		if err != nil {
			return Predicate{}, err
		}
		return compose(marker, left, right), nil

	case secondIsTriplet:
		// Left operand is the immediate triplet, right operand is the
		// nested sub-structure spanning the rest of this span.
		left, err := c.atomic(second)
		if err != nil {
			return Predicate{}, err
		}
		right, err := c.compileSpan(cs, start+2, end)
		if err != nil {
			return Predicate{}, err
		}
		return compose(marker, left, right), nil

	default:
		// Left operand is the nested sub-structure up to the final
		// term, right operand is the final term itself.
		last, ok := cs[end-1].(criteria.Triplet)
		if !ok {
			return Predicate{}, dmlerrors.MalformedCriteria("criteria must end with a triplet operand")
		}
		left, err := c.compileSpan(cs, start+1, end-1)
		if err != nil {
			return Predicate{}, err
		}
		right, err := c.atomic(last)
		if err != nil {
			return Predicate{}, err
		}
		return compose(marker, left, right), nil
	}
}
