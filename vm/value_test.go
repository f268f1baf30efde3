package vm

import (
	"math"
	"testing"
)

// ---------------------------------------------------------------------------
// Float tests
// ---------------------------------------------------------------------------

func TestFloatRoundTrip(t *testing.T) {
	tests := []float64{
		0.0,
		-0.0,
		1.0,
		-1.0,
		3.14159265358979,
		math.MaxFloat64,
		math.SmallestNonzeroFloat64,
		-math.MaxFloat64,
		math.Inf(1),
		math.Inf(-1),
	}

	for _, f := range tests {
		v := FromFloat64(f)
		if !v.IsFloat() {
			t.Errorf("FromFloat64(%v).IsFloat() = false, want true", f)
			continue
		}
		if got := v.Float64(); got != f {
			t.Errorf("FromFloat64(%v).Float64() = %v, want %v", f, got, f)
		}
	}
}

func TestFloatNaN(t *testing.T) {
	v := FromFloat64(math.NaN())
	if !v.IsFloat() {
		t.Error("NaN should be treated as float")
	}
	if !math.IsNaN(v.Float64()) {
		t.Error("NaN roundtrip failed")
	}
}

// ---------------------------------------------------------------------------
// SmallInt tests
// ---------------------------------------------------------------------------

func TestSmallIntRoundTrip(t *testing.T) {
	tests := []int64{0, 1, -1, 42, -42, MaxSmallInt, MinSmallInt}

	for _, n := range tests {
		v := FromSmallInt(n)
		if !v.IsSmallInt() {
			t.Errorf("FromSmallInt(%d).IsSmallInt() = false", n)
			continue
		}
		if v.IsFloat() || v.IsObject() || v.IsSymbol() {
			t.Errorf("FromSmallInt(%d) has the wrong kind", n)
		}
		if got := v.SmallInt(); got != n {
			t.Errorf("FromSmallInt(%d).SmallInt() = %d", n, got)
		}
	}
}

func TestSmallIntOutOfRange(t *testing.T) {
	for _, n := range []int64{MaxSmallInt + 1, MinSmallInt - 1, math.MaxInt64} {
		if _, ok := TryFromSmallInt(n); ok {
			t.Errorf("TryFromSmallInt(%d) should fail", n)
		}
	}

	defer func() {
		if recover() == nil {
			t.Error("FromSmallInt out of range should panic")
		}
	}()
	FromSmallInt(MaxSmallInt + 1)
}

// ---------------------------------------------------------------------------
// Special values
// ---------------------------------------------------------------------------

func TestSpecialValues(t *testing.T) {
	if !Nil.IsNil() || !Nil.IsSpecial() || Nil.IsTruthy() {
		t.Error("Nil is misclassified")
	}
	if !True.IsBool() || !True.Bool() || !True.IsTruthy() {
		t.Error("True is misclassified")
	}
	if !False.IsBool() || False.Bool() || False.IsTruthy() {
		t.Error("False is misclassified")
	}
	if FromBool(true) != True || FromBool(false) != False {
		t.Error("FromBool mismatch")
	}
	if !FromSmallInt(0).IsTruthy() {
		t.Error("0 should be truthy")
	}
}

func TestSymbolValue(t *testing.T) {
	v := FromSymbolID(17)
	if !v.IsSymbol() {
		t.Fatal("IsSymbol should be true")
	}
	if v.SymbolID() != 17 {
		t.Errorf("SymbolID() = %d, want 17", v.SymbolID())
	}
}

func TestValueString(t *testing.T) {
	vm := NewVM()
	point := vm.NewClass("Point", "x", "y")
	obj, err := vm.Instantiate(point)
	if err != nil {
		t.Fatal(err)
	}

	tests := []struct {
		v    Value
		want string
	}{
		{Nil, "nil"},
		{True, "true"},
		{False, "false"},
		{FromSmallInt(-3), "-3"},
		{FromFloat64(2.5), "2.5"},
		{FromSymbolID(4), "#sym4"},
		{obj, "a Point"},
	}
	for _, tt := range tests {
		if got := tt.v.String(); got != tt.want {
			t.Errorf("String() = %q, want %q", got, tt.want)
		}
	}
}
