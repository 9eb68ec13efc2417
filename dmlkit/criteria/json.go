package criteria

import (
	"encoding/json"
	"fmt"

	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
)

// ParseJSON decodes the JSON wire form of a criteria structure: an array
// whose elements are marker strings ("&", "|") or three-element
// [field, operator, value] arrays. Collection values are JSON arrays;
// the between operator takes a two-element [low, high] array.
//
//	["&", ["amount", ">", 500], ["name", "ilike", "as"]]
func ParseJSON(data []byte) (Structure, error) {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, dmlerrors.Wrap(dmlerrors.ErrMalformedCriteria, "criteria is not a JSON array", err)
	}

	out := make(Structure, 0, len(raw))
	for i, elem := range raw {
		term, err := parseTerm(elem)
		if err != nil {
			return nil, dmlerrors.Wrap(dmlerrors.ErrMalformedCriteria,
				fmt.Sprintf("criteria element %d", i), err)
		}
		out = append(out, term)
	}
	return out, nil
}

func parseTerm(data json.RawMessage) (Term, error) {
	// Marker terms are bare strings
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		m := Marker(s)
		if !m.Valid() {
			return nil, fmt.Errorf("unknown logic marker %q", s)
		}
		return m, nil
	}

	var parts []json.RawMessage
	if err := json.Unmarshal(data, &parts); err != nil {
		return nil, fmt.Errorf("term must be a marker string or a triplet array")
	}
	if len(parts) != 3 {
		return nil, fmt.Errorf("triplet must have exactly 3 elements, got %d", len(parts))
	}

	var field string
	if err := json.Unmarshal(parts[0], &field); err != nil {
		return nil, fmt.Errorf("triplet field must be a string")
	}
	var opStr string
	if err := json.Unmarshal(parts[1], &opStr); err != nil {
		return nil, fmt.Errorf("triplet operator must be a string")
	}
	op, err := ParseOperator(opStr)
	if err != nil {
		return nil, err
	}

	var value any
	if err := json.Unmarshal(parts[2], &value); err != nil {
		return nil, fmt.Errorf("triplet value: %w", err)
	}
	return NewTriplet(field, op, wrapValue(op, value))
}

// MarshalJSON renders the structure back into its wire form
func (s Structure) MarshalJSON() ([]byte, error) {
	out := make([]any, 0, len(s))
	for _, term := range s {
		switch t := term.(type) {
		case Marker:
			out = append(out, string(t))
		case Triplet:
			out = append(out, []any{t.Field, string(t.Op), valueJSON(t.Value)})
		default:
			return nil, fmt.Errorf("unknown term type %T", term)
		}
	}
	return json.Marshal(out)
}

func valueJSON(v Value) any {
	switch v.kind {
	case KindPair:
		return []any{v.pair[0], v.pair[1]}
	case KindCollection:
		return v.items
	default:
		return v.scalar
	}
}
