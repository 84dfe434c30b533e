// eval.go: the safe expression evaluator.
//
// A closed tree walker over the S-expression grammar produced by parser.go.
// Because the parser can only construct whitelisted node shapes, this file
// is the complete and only set of behaviors an expression can have: no host
// function calls, no reflection, no evaluating strings as code. Growing the
// language means adding a case here, never opening a back door.
//
// Failures are raised with failKind/failSuggest (errors.go) and recovered
// at the runtime entry points where the current line is attached.
//
// Semantics locked in here:
//   - `/` always yields a float; `//` truncates toward zero; `%` takes the
//     sign of the divisor; `**` on int with non-negative int exponent stays
//     int (promoting to float on overflow).
//   - `+` concatenates string+string and list+list; mixing kinds is a type
//     error, there is no implicit stringification.
//   - `and`/`or` short-circuit and yield the deciding operand.
package valyxoscript

import (
	"math"
)

// evalExpr evaluates an expression node against the given environment.
func evalExpr(n S, env *Env) Value {
	switch n[0].(string) {
	case "int":
		return Int(n[1].(int64))
	case "num":
		return Num(n[1].(float64))
	case "str":
		return Str(n[1].(string))
	case "bool":
		return Bool(n[1].(bool))
	case "none":
		return None
	case "id":
		name := n[1].(string)
		v, ok := env.Get(name)
		if !ok {
			hint := suggestName(name, env.Names())
			if hint == "" {
				hint = "did you mean to set '" + name + "' first? Use: set " + name + " = value"
			}
			failSuggest(ErrUndefinedVariable, hint, "unknown variable: '%s'", name)
		}
		return v
	case "list":
		xs := make([]Value, 0, len(n)-1)
		for _, el := range n[1:] {
			xs = append(xs, evalExpr(el.(S), env))
		}
		return List(xs)
	case "unop":
		return evalUnop(n[1].(string), n[2].(S), env)
	case "binop":
		return evalBinop(n[1].(string), n[2].(S), n[3].(S), env)
	default:
		// Unreachable: the parser constructs only the tags above.
		failKind(ErrSyntax, "malformed expression node: %v", n[0])
		return Value{}
	}
}

func evalUnop(op string, rhs S, env *Env) Value {
	switch op {
	case "-":
		v := evalExpr(rhs, env)
		switch v.Tag {
		case VTInt:
			return Int(-v.Data.(int64))
		case VTNum:
			return Num(-v.Data.(float64))
		}
		failKind(ErrType, "bad operand type for unary -: %s", v.KindName())
	case "not":
		return Bool(!evalExpr(rhs, env).Truthy())
	}
	failKind(ErrSyntax, "unknown unary operator: %s", op)
	return Value{}
}

func evalBinop(op string, lhs, rhs S, env *Env) Value {
	// Short-circuit logic first; the right side must not be evaluated
	// when the left side decides.
	switch op {
	case "and":
		l := evalExpr(lhs, env)
		if !l.Truthy() {
			return l
		}
		return evalExpr(rhs, env)
	case "or":
		l := evalExpr(lhs, env)
		if l.Truthy() {
			return l
		}
		return evalExpr(rhs, env)
	}

	l := evalExpr(lhs, env)
	r := evalExpr(rhs, env)

	switch op {
	case "==":
		return Bool(deepEqual(l, r))
	case "!=":
		return Bool(!deepEqual(l, r))
	case "<", "<=", ">", ">=":
		return compareValues(op, l, r)
	case "+":
		return addValues(l, r)
	case "-", "*":
		return arithValues(op, l, r)
	case "/":
		return divideValues(l, r)
	case "//":
		return intDivideValues(l, r)
	case "%":
		return moduloValues(l, r)
	case "**":
		return powerValues(l, r)
	}
	failKind(ErrSyntax, "unknown operator: %s", op)
	return Value{}
}

func compareValues(op string, l, r Value) Value {
	if isNumber(l) && isNumber(r) {
		a, b := toFloat(l), toFloat(r)
		switch op {
		case "<":
			return Bool(a < b)
		case "<=":
			return Bool(a <= b)
		case ">":
			return Bool(a > b)
		default:
			return Bool(a >= b)
		}
	}
	if l.Tag == VTStr && r.Tag == VTStr {
		a, b := l.Data.(string), r.Data.(string)
		switch op {
		case "<":
			return Bool(a < b)
		case "<=":
			return Bool(a <= b)
		case ">":
			return Bool(a > b)
		default:
			return Bool(a >= b)
		}
	}
	failKind(ErrType, "cannot compare %s and %s with %s", l.KindName(), r.KindName(), op)
	return Value{}
}

func addValues(l, r Value) Value {
	switch {
	case l.Tag == VTInt && r.Tag == VTInt:
		return Int(l.Data.(int64) + r.Data.(int64))
	case isNumber(l) && isNumber(r):
		return Num(toFloat(l) + toFloat(r))
	case l.Tag == VTStr && r.Tag == VTStr:
		return Str(l.Data.(string) + r.Data.(string))
	case l.Tag == VTList && r.Tag == VTList:
		xs, ys := l.Data.([]Value), r.Data.([]Value)
		out := make([]Value, 0, len(xs)+len(ys))
		out = append(out, xs...)
		out = append(out, ys...)
		return List(out)
	}
	failKind(ErrType, "unsupported operand types for +: %s and %s", l.KindName(), r.KindName())
	return Value{}
}

func arithValues(op string, l, r Value) Value {
	if l.Tag == VTInt && r.Tag == VTInt {
		a, b := l.Data.(int64), r.Data.(int64)
		if op == "-" {
			return Int(a - b)
		}
		return Int(a * b)
	}
	if isNumber(l) && isNumber(r) {
		a, b := toFloat(l), toFloat(r)
		if op == "-" {
			return Num(a - b)
		}
		return Num(a * b)
	}
	failKind(ErrType, "unsupported operand types for %s: %s and %s", op, l.KindName(), r.KindName())
	return Value{}
}

func divideValues(l, r Value) Value {
	if !isNumber(l) || !isNumber(r) {
		failKind(ErrType, "unsupported operand types for /: %s and %s", l.KindName(), r.KindName())
	}
	b := toFloat(r)
	if b == 0 {
		failSuggest(ErrDivisionByZero, "check your division operation", "division by zero")
	}
	return Num(toFloat(l) / b)
}

func intDivideValues(l, r Value) Value {
	if !isNumber(l) || !isNumber(r) {
		failKind(ErrType, "unsupported operand types for //: %s and %s", l.KindName(), r.KindName())
	}
	if l.Tag == VTInt && r.Tag == VTInt {
		b := r.Data.(int64)
		if b == 0 {
			failSuggest(ErrDivisionByZero, "check your division operation", "integer division by zero")
		}
		// Go's integer division already truncates toward zero.
		return Int(l.Data.(int64) / b)
	}
	b := toFloat(r)
	if b == 0 {
		failSuggest(ErrDivisionByZero, "check your division operation", "integer division by zero")
	}
	return Num(math.Trunc(toFloat(l) / b))
}

func moduloValues(l, r Value) Value {
	if !isNumber(l) || !isNumber(r) {
		failKind(ErrType, "unsupported operand types for %%: %s and %s", l.KindName(), r.KindName())
	}
	if l.Tag == VTInt && r.Tag == VTInt {
		b := r.Data.(int64)
		if b == 0 {
			failSuggest(ErrDivisionByZero, "check your modulo operation", "modulo by zero")
		}
		m := l.Data.(int64) % b
		// The result follows the sign of the divisor.
		if m != 0 && (m < 0) != (b < 0) {
			m += b
		}
		return Int(m)
	}
	b := toFloat(r)
	if b == 0 {
		failSuggest(ErrDivisionByZero, "check your modulo operation", "modulo by zero")
	}
	m := math.Mod(toFloat(l), b)
	if m != 0 && (m < 0) != (b < 0) {
		m += b
	}
	return Num(m)
}

func powerValues(l, r Value) Value {
	if !isNumber(l) || !isNumber(r) {
		failKind(ErrType, "unsupported operand types for **: %s and %s", l.KindName(), r.KindName())
	}
	if l.Tag == VTInt && r.Tag == VTInt && r.Data.(int64) >= 0 {
		if n, ok := intPow(l.Data.(int64), r.Data.(int64)); ok {
			return Int(n)
		}
		// Overflow promotes to float rather than wrapping.
	}
	return Num(math.Pow(toFloat(l), toFloat(r)))
}

// intPow computes base**exp by squaring, reporting ok=false on overflow.
func intPow(base, exp int64) (int64, bool) {
	result := int64(1)
	for exp > 0 {
		if exp&1 == 1 {
			if r, ok := mulNoOverflow(result, base); ok {
				result = r
			} else {
				return 0, false
			}
		}
		exp >>= 1
		if exp == 0 {
			break
		}
		if b, ok := mulNoOverflow(base, base); ok {
			base = b
		} else {
			return 0, false
		}
	}
	return result, true
}

func mulNoOverflow(a, b int64) (int64, bool) {
	if a == 0 || b == 0 {
		return 0, true
	}
	if (a == math.MinInt64 && b == -1) || (b == math.MinInt64 && a == -1) {
		return 0, false
	}
	c := a * b
	if c/b != a {
		return 0, false
	}
	return c, true
}
