package valyxoscript

import (
	"math"
	"strings"
	"testing"
)

// --- helpers ---------------------------------------------------------------

// evalText parses and evaluates a standalone expression against a fresh
// environment (Core constants visible), converting internal faults into
// the fault payload for inspection.
func evalText(text string, env *Env) (v Value, fault *scriptFault, err error) {
	node, err := ParseExpr(text, 1)
	if err != nil {
		return Value{}, nil, err
	}
	defer func() {
		if p := recover(); p != nil {
			f, ok := p.(scriptFault)
			if !ok {
				panic(p)
			}
			fault = &f
		}
	}()
	v = evalExpr(node, env)
	return v, nil, nil
}

func freshEnv() *Env {
	g := NewEnv(newCoreEnv())
	g.SealParentWrites()
	return g
}

func mustEval(t *testing.T, text string) Value {
	t.Helper()
	v, fault, err := evalText(text, freshEnv())
	if err != nil {
		t.Fatalf("parse error for %q: %v", text, err)
	}
	if fault != nil {
		t.Fatalf("eval fault for %q: %s", text, fault.msg)
	}
	return v
}

func evalFault(t *testing.T, text string) *scriptFault {
	t.Helper()
	_, fault, err := evalText(text, freshEnv())
	if err != nil {
		t.Fatalf("parse error for %q: %v", text, err)
	}
	if fault == nil {
		t.Fatalf("want eval fault for %q, got none", text)
	}
	return fault
}

func wantInt(t *testing.T, v Value, n int64) {
	t.Helper()
	if v.Tag != VTInt || v.Data.(int64) != n {
		t.Fatalf("want int %d, got %v (tag %d)", n, v, v.Tag)
	}
}

func wantNum(t *testing.T, v Value, f float64) {
	t.Helper()
	if v.Tag != VTNum {
		t.Fatalf("want num %g, got %v (tag %d)", f, v, v.Tag)
	}
	if got := v.Data.(float64); got != f {
		t.Fatalf("want num %g, got %g", f, got)
	}
}

func wantBoolVal(t *testing.T, v Value, b bool) {
	t.Helper()
	if v.Tag != VTBool || v.Data.(bool) != b {
		t.Fatalf("want bool %v, got %v", b, v)
	}
}

func wantStrVal(t *testing.T, v Value, s string) {
	t.Helper()
	if v.Tag != VTStr || v.Data.(string) != s {
		t.Fatalf("want str %q, got %v", s, v)
	}
}

// --- arithmetic ------------------------------------------------------------

func Test_Eval_integer_arithmetic_stays_int(t *testing.T) {
	wantInt(t, mustEval(t, "2 + 3"), 5)
	wantInt(t, mustEval(t, "2 - 5"), -3)
	wantInt(t, mustEval(t, "6 * 7"), 42)
}

func Test_Eval_mixed_arithmetic_promotes(t *testing.T) {
	wantNum(t, mustEval(t, "2 + 0.5"), 2.5)
	wantNum(t, mustEval(t, "1.5 * 2"), 3.0)
}

func Test_Eval_true_division_always_float(t *testing.T) {
	wantNum(t, mustEval(t, "6 / 3"), 2.0)
	wantNum(t, mustEval(t, "7 / 2"), 3.5)
}

func Test_Eval_integer_division_truncates_toward_zero(t *testing.T) {
	wantInt(t, mustEval(t, "7 // 2"), 3)
	wantInt(t, mustEval(t, "-7 // 2"), -3)
	wantInt(t, mustEval(t, "7 // -2"), -3)
	wantNum(t, mustEval(t, "7.0 // 2"), 3.0)
	wantNum(t, mustEval(t, "-7.5 // 2"), -3.0)
}

func Test_Eval_modulo_follows_divisor_sign(t *testing.T) {
	wantInt(t, mustEval(t, "7 % 3"), 1)
	wantInt(t, mustEval(t, "-7 % 3"), 2)
	wantInt(t, mustEval(t, "7 % -3"), -2)
	wantInt(t, mustEval(t, "-7 % -3"), -1)
	wantNum(t, mustEval(t, "-7.5 % 3"), 1.5)
}

func Test_Eval_power_int_base_nonneg_exp_stays_int(t *testing.T) {
	wantInt(t, mustEval(t, "2 ** 10"), 1024)
	wantInt(t, mustEval(t, "5 ** 0"), 1)
	wantInt(t, mustEval(t, "(-2) ** 3"), -8)
}

func Test_Eval_power_negative_exponent_is_float(t *testing.T) {
	wantNum(t, mustEval(t, "2 ** -1"), 0.5)
}

func Test_Eval_power_overflow_promotes_to_float(t *testing.T) {
	v := mustEval(t, "2 ** 100")
	if v.Tag != VTNum {
		t.Fatalf("want float on overflow, got %v", v)
	}
	if v.Data.(float64) != math.Pow(2, 100) {
		t.Fatalf("want 2^100, got %g", v.Data.(float64))
	}
}

func Test_Eval_power_right_associative(t *testing.T) {
	// 2 ** 3 ** 2 == 2 ** 9
	wantInt(t, mustEval(t, "2 ** 3 ** 2"), 512)
}

func Test_Eval_unary_minus(t *testing.T) {
	wantInt(t, mustEval(t, "-5"), -5)
	wantNum(t, mustEval(t, "-2.5"), -2.5)
	wantInt(t, mustEval(t, "--5"), 5)
	// Unary minus binds tighter than **.
	wantInt(t, mustEval(t, "-2 ** 2"), 4)
}

func Test_Eval_precedence(t *testing.T) {
	wantInt(t, mustEval(t, "2 + 3 * 4"), 14)
	wantInt(t, mustEval(t, "(2 + 3) * 4"), 20)
	wantInt(t, mustEval(t, "10 - 2 - 3"), 5)
	wantBoolVal(t, mustEval(t, "1 + 1 == 2 and 2 * 2 == 4"), true)
}

// --- strings and lists -----------------------------------------------------

func Test_Eval_string_concat(t *testing.T) {
	wantStrVal(t, mustEval(t, `"foo" + "bar"`), "foobar")
}

func Test_Eval_string_plus_number_is_type_error(t *testing.T) {
	f := evalFault(t, `"n = " + 1`)
	if f.kind != ErrType {
		t.Fatalf("want type error, got %v: %s", f.kind, f.msg)
	}
}

func Test_Eval_list_concat(t *testing.T) {
	v := mustEval(t, "[1, 2] + [3]")
	want := List([]Value{Int(1), Int(2), Int(3)})
	if !deepEqual(v, want) {
		t.Fatalf("want %v, got %v", want, v)
	}
}

func Test_Eval_list_plus_scalar_is_type_error(t *testing.T) {
	f := evalFault(t, "[1] + 2")
	if f.kind != ErrType {
		t.Fatalf("want type error, got %v", f.kind)
	}
}

// --- comparisons -----------------------------------------------------------

func Test_Eval_numeric_comparison_mixes_int_float(t *testing.T) {
	wantBoolVal(t, mustEval(t, "1 < 1.5"), true)
	wantBoolVal(t, mustEval(t, "2.0 <= 2"), true)
	wantBoolVal(t, mustEval(t, "3 > 4"), false)
	wantBoolVal(t, mustEval(t, "1 == 1.0"), true)
	wantBoolVal(t, mustEval(t, "1 != 1.0"), false)
}

func Test_Eval_string_comparison_lexicographic(t *testing.T) {
	wantBoolVal(t, mustEval(t, `"abc" < "abd"`), true)
	wantBoolVal(t, mustEval(t, `"a" >= "a"`), true)
}

func Test_Eval_cross_kind_ordering_is_type_error(t *testing.T) {
	f := evalFault(t, `1 < "2"`)
	if f.kind != ErrType {
		t.Fatalf("want type error, got %v", f.kind)
	}
}

func Test_Eval_cross_kind_equality_is_false(t *testing.T) {
	wantBoolVal(t, mustEval(t, `1 == "1"`), false)
	wantBoolVal(t, mustEval(t, `None == 0`), false)
	wantBoolVal(t, mustEval(t, "[1] == [1]"), true)
}

// --- logic and truthiness --------------------------------------------------

func Test_Eval_and_or_return_deciding_operand(t *testing.T) {
	wantInt(t, mustEval(t, "0 or 5"), 5)
	wantInt(t, mustEval(t, "3 or 5"), 3)
	wantInt(t, mustEval(t, "0 and 5"), 0)
	wantInt(t, mustEval(t, "3 and 5"), 5)
	wantStrVal(t, mustEval(t, `"" or "fallback"`), "fallback")
}

func Test_Eval_short_circuit_skips_rhs(t *testing.T) {
	// The right side would divide by zero; short-circuit must skip it.
	wantInt(t, mustEval(t, "0 and 1 / 0"), 0)
	wantInt(t, mustEval(t, "1 or 1 / 0"), 1)
}

func Test_Eval_not(t *testing.T) {
	wantBoolVal(t, mustEval(t, "not 0"), true)
	wantBoolVal(t, mustEval(t, "not 3"), false)
	wantBoolVal(t, mustEval(t, `not ""`), true)
	wantBoolVal(t, mustEval(t, "not []"), true)
	wantBoolVal(t, mustEval(t, "not None"), true)
	// `not` binds looser than comparison: not (1 == 2).
	wantBoolVal(t, mustEval(t, "not 1 == 2"), true)
}

func Test_Eval_truthiness_table(t *testing.T) {
	falsy := []Value{Int(0), Num(0), Str(""), List(nil), Dict(map[string]Value{}), Bool(false), None}
	for _, v := range falsy {
		if v.Truthy() {
			t.Fatalf("%v should be falsy", v)
		}
	}
	truthy := []Value{Int(-1), Num(0.1), Str("0"), List([]Value{None}), Bool(true)}
	for _, v := range truthy {
		if !v.Truthy() {
			t.Fatalf("%v should be truthy", v)
		}
	}
}

// --- constants and variables -----------------------------------------------

func Test_Eval_builtin_constants(t *testing.T) {
	wantNum(t, mustEval(t, "PI"), math.Pi)
	wantNum(t, mustEval(t, "E"), math.E)
	wantBoolVal(t, mustEval(t, "TRUE"), true)
	wantBoolVal(t, mustEval(t, "FALSE"), false)
	if mustEval(t, "NULL").Tag != VTNone {
		t.Fatal("NULL should be None")
	}
	if !math.IsInf(mustEval(t, "INFINITY").Data.(float64), 1) {
		t.Fatal("INFINITY should be +Inf")
	}
	if !math.IsNaN(mustEval(t, "NAN").Data.(float64)) {
		t.Fatal("NAN should be NaN")
	}
}

func Test_Eval_undefined_variable_fault(t *testing.T) {
	f := evalFault(t, "nosuch")
	if f.kind != ErrUndefinedVariable {
		t.Fatalf("want undefined variable, got %v", f.kind)
	}
	if !strings.Contains(f.msg, "nosuch") {
		t.Fatalf("message should name the variable, got %q", f.msg)
	}
}

func Test_Eval_variable_lookup_walks_scopes(t *testing.T) {
	env := freshEnv()
	env.Define("x", Int(7))
	inner := NewEnv(env)
	node, err := ParseExpr("x + 1", 1)
	if err != nil {
		t.Fatal(err)
	}
	wantInt(t, evalExpr(node, inner), 8)
}

// --- division faults -------------------------------------------------------

func Test_Eval_division_by_zero_faults(t *testing.T) {
	for _, src := range []string{"1 / 0", "1 // 0", "1 % 0", "1 / 0.0", "1.0 // 0.0", "2.5 % 0.0"} {
		f := evalFault(t, src)
		if f.kind != ErrDivisionByZero {
			t.Fatalf("%q: want division by zero, got %v", src, f.kind)
		}
	}
}

func Test_Eval_unary_minus_on_string_faults(t *testing.T) {
	f := evalFault(t, `-"x"`)
	if f.kind != ErrType {
		t.Fatalf("want type error, got %v", f.kind)
	}
}

// --- int power helper ------------------------------------------------------

func Test_Eval_intPow_edges(t *testing.T) {
	if n, ok := intPow(10, 18); !ok || n != 1_000_000_000_000_000_000 {
		t.Fatalf("10^18: got %d, %v", n, ok)
	}
	if _, ok := intPow(10, 19); ok {
		t.Fatal("10^19 should overflow")
	}
	if n, ok := intPow(0, 0); !ok || n != 1 {
		t.Fatalf("0^0: got %d, %v", n, ok)
	}
	if n, ok := intPow(-3, 3); !ok || n != -27 {
		t.Fatalf("(-3)^3: got %d, %v", n, ok)
	}
}

func Test_Eval_mulNoOverflow_min_int(t *testing.T) {
	if _, ok := mulNoOverflow(math.MinInt64, -1); ok {
		t.Fatal("MinInt64 * -1 must report overflow")
	}
	if c, ok := mulNoOverflow(math.MinInt64, 1); !ok || c != math.MinInt64 {
		t.Fatal("MinInt64 * 1 is fine")
	}
}
