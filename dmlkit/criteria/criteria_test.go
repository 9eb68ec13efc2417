package criteria

import (
	"encoding/json"
	"testing"

	dmlerrors "github.com/dmlkit/dmlkit/dmlkit/errors"
)

func TestOperatorValid(t *testing.T) {
	valid := []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpBetween, OpIn, OpNotIn, OpILike, OpNotLike, OpRegex, OpIRegex}
	for _, op := range valid {
		if !op.Valid() {
			t.Errorf("operator %q should be valid", op)
		}
	}
	for _, s := range []string{"==", "like", "NOT IN", "<>", "", "between"} {
		if Operator(s).Valid() {
			t.Errorf("operator %q should not be valid", s)
		}
	}
}

func TestOperatorShape(t *testing.T) {
	if got := OpBetween.Shape(); got != ShapePair {
		t.Errorf("between shape = %v, want pair", got)
	}
	if got := OpIn.Shape(); got != ShapeCollection {
		t.Errorf("in shape = %v, want collection", got)
	}
	if got := OpNotIn.Shape(); got != ShapeCollection {
		t.Errorf("not in shape = %v, want collection", got)
	}
	for _, op := range []Operator{OpEq, OpNe, OpGt, OpGte, OpLt, OpLte, OpILike, OpNotLike, OpRegex, OpIRegex} {
		if got := op.Shape(); got != ShapeScalar {
			t.Errorf("%q shape = %v, want scalar", op, got)
		}
	}
}

func TestParseOperator(t *testing.T) {
	op, err := ParseOperator("not ilike")
	if err != nil {
		t.Fatalf("ParseOperator: %v", err)
	}
	if op != OpNotLike {
		t.Errorf("got %q, want %q", op, OpNotLike)
	}

	_, err = ParseOperator("like")
	if !dmlerrors.IsKind(err, dmlerrors.ErrUnsupportedOperator) {
		t.Errorf("expected unsupported_operator, got %v", err)
	}
}

func TestNewTripletShapeChecks(t *testing.T) {
	cases := []struct {
		name string
		op   Operator
		v    Value
		ok   bool
	}{
		{"eq scalar", OpEq, Scalar(5), true},
		{"eq collection", OpEq, Collection(1, 2), false},
		{"between pair", OpBetween, Pair(1, 10), true},
		{"between scalar", OpBetween, Scalar(1), false},
		{"in collection", OpIn, Collection(1, 2, 3), true},
		{"in scalar", OpIn, Scalar(1), false},
		{"not in pair", OpNotIn, Pair(1, 2), false},
		{"ilike string", OpILike, Scalar("as"), true},
		{"ilike number", OpILike, Scalar(5), false},
		{"regex string", OpRegex, Scalar("^a"), true},
		{"iregex number", OpIRegex, Scalar(1.5), false},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := NewTriplet("f", tc.op, tc.v)
			if tc.ok && err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			if !tc.ok {
				if !dmlerrors.IsKind(err, dmlerrors.ErrValueShapeMismatch) {
					t.Fatalf("expected value_shape_mismatch, got %v", err)
				}
			}
		})
	}
}

func TestNewTripletUnknownOperator(t *testing.T) {
	_, err := NewTriplet("f", "like", Scalar("x"))
	if !dmlerrors.IsKind(err, dmlerrors.ErrUnsupportedOperator) {
		t.Errorf("expected unsupported_operator, got %v", err)
	}
}

func TestLooseConstructorWrapping(t *testing.T) {
	tr := T("amount", OpIn, []int{1, 2, 3})
	if tr.Value.Kind() != KindCollection {
		t.Fatalf("slice should wrap to collection, got %v", tr.Value.Kind())
	}
	if len(tr.Value.Items()) != 3 {
		t.Errorf("collection has %d items, want 3", len(tr.Value.Items()))
	}

	tr = T("amount", OpBetween, []int{1, 10})
	if tr.Value.Kind() != KindPair {
		t.Fatalf("2-element slice under between should wrap to pair, got %v", tr.Value.Kind())
	}
	lo, hi := tr.Value.PairValues()
	if lo != 1 || hi != 10 {
		t.Errorf("pair = (%v, %v), want (1, 10)", lo, hi)
	}

	tr = T("name", OpEq, "x")
	if tr.Value.Kind() != KindScalar {
		t.Fatalf("plain value should wrap to scalar, got %v", tr.Value.Kind())
	}

	// pre-wrapped values pass through
	tr = T("name", OpEq, Scalar("x"))
	if tr.Value.ScalarValue() != "x" {
		t.Errorf("pre-wrapped scalar lost its value: %v", tr.Value.ScalarValue())
	}
}

func TestAndOrSplice(t *testing.T) {
	a := Structure{T("a", OpEq, 1)}
	b := Structure{T("b", OpEq, 2)}

	joined := And(a, b)
	if len(joined) != 3 {
		t.Fatalf("And length = %d, want 3", len(joined))
	}
	if m, ok := joined[0].(Marker); !ok || m != MarkerAnd {
		t.Errorf("And should lead with the & marker, got %v", joined[0])
	}

	joined = Or(a, b)
	if m, ok := joined[0].(Marker); !ok || m != MarkerOr {
		t.Errorf("Or should lead with the | marker, got %v", joined[0])
	}

	if got := And(a, nil); len(got) != 1 {
		t.Errorf("And with empty right should return left unchanged, got %v", got)
	}
	if got := Or(nil, b); len(got) != 1 {
		t.Errorf("Or with empty left should return right unchanged, got %v", got)
	}
	if got := And(nil, nil); !got.Empty() {
		t.Errorf("And of two empties should be empty, got %v", got)
	}
}

func TestParseJSON(t *testing.T) {
	raw := `["&", ["amount", ">", 500], ["name", "ilike", "as"]]`
	cs, err := ParseJSON([]byte(raw))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	if len(cs) != 3 {
		t.Fatalf("structure length = %d, want 3", len(cs))
	}
	if m, ok := cs[0].(Marker); !ok || m != MarkerAnd {
		t.Errorf("first term should be the & marker, got %v", cs[0])
	}
	tr, ok := cs[1].(Triplet)
	if !ok {
		t.Fatalf("second term should be a triplet, got %T", cs[1])
	}
	if tr.Field != "amount" || tr.Op != OpGt {
		t.Errorf("triplet = %+v", tr)
	}
}

func TestParseJSONShapes(t *testing.T) {
	cs, err := ParseJSON([]byte(`[["id", "in", [1, 2, 3]]]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	tr := cs[0].(Triplet)
	if tr.Value.Kind() != KindCollection {
		t.Errorf("in value should be a collection, got %v", tr.Value.Kind())
	}

	cs, err = ParseJSON([]byte(`[["amount", "><", [10, 20]]]`))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	tr = cs[0].(Triplet)
	if tr.Value.Kind() != KindPair {
		t.Errorf("between value should be a pair, got %v", tr.Value.Kind())
	}
}

func TestParseJSONErrors(t *testing.T) {
	bad := []string{
		`{"not": "an array"}`,
		`["?", ["a", "=", 1], ["b", "=", 2]]`,
		`[["a", "="]]`,
		`[["a", "like", "x"]]`,
		`[[1, "=", 2]]`,
	}
	for _, raw := range bad {
		if _, err := ParseJSON([]byte(raw)); err == nil {
			t.Errorf("ParseJSON(%s) should fail", raw)
		}
	}
}

func TestMarshalJSONRoundTrip(t *testing.T) {
	raw := `["&",["amount","><",[10,20]],["tag","in",["a","b"]]]`
	cs, err := ParseJSON([]byte(raw))
	if err != nil {
		t.Fatalf("ParseJSON: %v", err)
	}
	out, err := json.Marshal(cs)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	back, err := ParseJSON(out)
	if err != nil {
		t.Fatalf("re-parse: %v", err)
	}
	if len(back) != len(cs) {
		t.Errorf("round trip changed length: %d vs %d", len(back), len(cs))
	}
}
