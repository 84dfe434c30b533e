// value.go: the ValyxoScript runtime value model.
//
// Every value a script can produce is a tagged union: the Tag field says
// which Go type lives in Data. Operator implementations switch exhaustively
// on tags, so every type-compatibility decision is an explicit case rather
// than an implicit coercion. Values are immutable once produced; `set`
// rebinds a name, it never mutates a shared value (list concatenation
// allocates a fresh list).
package valyxoscript

import (
	"strconv"
)

// ValueTag enumerates the runtime kinds a Value may hold.
// The tag determines which Go type Value.Data carries.
type ValueTag int

const (
	VTNone ValueTag = iota // None (no payload)
	VTBool                 // bool
	VTInt                  // int64
	VTNum                  // float64
	VTStr                  // string
	VTList                 // []Value
	VTDict                 // map[string]Value
)

// Value is the universal runtime carrier.
//
// Invariants:
//   - When Tag==VTNone, Data is nil.
//   - When Tag==VTList, Data is []Value (never mutated in place).
//   - When Tag==VTDict, Data is map[string]Value (never mutated in place).
type Value struct {
	Tag  ValueTag
	Data interface{}
}

// None is the singleton None value.
var None = Value{Tag: VTNone}

// Primitive constructors.
func Bool(b bool) Value             { return Value{Tag: VTBool, Data: b} }
func Int(n int64) Value             { return Value{Tag: VTInt, Data: n} }
func Num(f float64) Value           { return Value{Tag: VTNum, Data: f} }
func Str(s string) Value            { return Value{Tag: VTStr, Data: s} }
func List(xs []Value) Value         { return Value{Tag: VTList, Data: xs} }
func Dict(m map[string]Value) Value { return Value{Tag: VTDict, Data: m} }

// String renders a debug representation. Display formatting for `print`
// lives in printer.go; this is for logs and test failure messages.
func (v Value) String() string {
	switch v.Tag {
	case VTNone:
		return "None"
	case VTBool:
		if v.Data.(bool) {
			return "True"
		}
		return "False"
	case VTInt:
		return strconv.FormatInt(v.Data.(int64), 10)
	case VTNum:
		return strconv.FormatFloat(v.Data.(float64), 'g', -1, 64)
	case VTStr:
		return strconv.Quote(v.Data.(string))
	case VTList:
		return "<list len=" + strconv.Itoa(len(v.Data.([]Value))) + ">"
	case VTDict:
		return "<dict len=" + strconv.Itoa(len(v.Data.(map[string]Value))) + ">"
	default:
		return "<unknown>"
	}
}

// KindName names the value kind for user-facing type errors.
func (v Value) KindName() string {
	switch v.Tag {
	case VTNone:
		return "None"
	case VTBool:
		return "boolean"
	case VTInt:
		return "integer"
	case VTNum:
		return "float"
	case VTStr:
		return "string"
	case VTList:
		return "list"
	case VTDict:
		return "dict"
	default:
		return "unknown"
	}
}

// Truthy maps a Value to a boolean for if/while conditions.
// False: 0, 0.0, "", empty list, empty dict, False, None. Everything else
// is true.
func (v Value) Truthy() bool {
	switch v.Tag {
	case VTNone:
		return false
	case VTBool:
		return v.Data.(bool)
	case VTInt:
		return v.Data.(int64) != 0
	case VTNum:
		return v.Data.(float64) != 0
	case VTStr:
		return v.Data.(string) != ""
	case VTList:
		return len(v.Data.([]Value)) > 0
	case VTDict:
		return len(v.Data.(map[string]Value)) > 0
	default:
		return true
	}
}

// isNumber reports whether v is an integer or a float.
func isNumber(v Value) bool { return v.Tag == VTInt || v.Tag == VTNum }

// toFloat widens a numeric value to float64. Callers must check isNumber.
func toFloat(v Value) float64 {
	if v.Tag == VTInt {
		return float64(v.Data.(int64))
	}
	return v.Data.(float64)
}

// deepEqual compares two values structurally. Mixed int/float compare
// numerically (1 == 1.0); all other cross-kind comparisons are unequal.
func deepEqual(a, b Value) bool {
	if isNumber(a) && isNumber(b) {
		if a.Tag == VTInt && b.Tag == VTInt {
			return a.Data.(int64) == b.Data.(int64)
		}
		return toFloat(a) == toFloat(b)
	}
	if a.Tag != b.Tag {
		return false
	}
	switch a.Tag {
	case VTNone:
		return true
	case VTBool:
		return a.Data.(bool) == b.Data.(bool)
	case VTStr:
		return a.Data.(string) == b.Data.(string)
	case VTList:
		xs, ys := a.Data.([]Value), b.Data.([]Value)
		if len(xs) != len(ys) {
			return false
		}
		for i := range xs {
			if !deepEqual(xs[i], ys[i]) {
				return false
			}
		}
		return true
	case VTDict:
		xm, ym := a.Data.(map[string]Value), b.Data.(map[string]Value)
		if len(xm) != len(ym) {
			return false
		}
		for k, xv := range xm {
			yv, ok := ym[k]
			if !ok || !deepEqual(xv, yv) {
				return false
			}
		}
		return true
	default:
		return false
	}
}
