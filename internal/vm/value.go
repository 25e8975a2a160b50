// Package vm implements the stepwise interpreter: runtime values and
// objects, logical threads multiplexed by a cooperative pool, exceptions,
// breakpoints, stepping and the blocking-call bridge.
package vm

import (
	"math"
	"strconv"
	"strings"
)

// ValueKind identifies the runtime representation of a Value.
type ValueKind uint8

const (
	// VKNull is the zero Value: null reference or an unset slot.
	VKNull ValueKind = iota
	VKInt
	VKDouble
	VKBool
	VKChar
	VKString
	VKObject
	VKArray
)

func (k ValueKind) String() string {
	switch k {
	case VKNull:
		return "null"
	case VKInt:
		return "int"
	case VKDouble:
		return "double"
	case VKBool:
		return "boolean"
	case VKChar:
		return "char"
	case VKString:
		return "String"
	case VKObject:
		return "object"
	case VKArray:
		return "array"
	default:
		return "?"
	}
}

// Value is a tagged runtime value. Ints, chars and booleans live in N,
// doubles in F, strings in S, objects and arrays in Ref.
type Value struct {
	Kind ValueKind
	N    int64
	F    float64
	S    string
	Ref  any
}

func Null() Value            { return Value{} }
func Int(n int32) Value      { return Value{Kind: VKInt, N: int64(n)} }
func Double(f float64) Value { return Value{Kind: VKDouble, F: f} }
func Char(c uint16) Value    { return Value{Kind: VKChar, N: int64(c)} }
func Str(s string) Value     { return Value{Kind: VKString, S: s} }
func Obj(o *Object) Value    { return Value{Kind: VKObject, Ref: o} }
func Arr(a *Array) Value     { return Value{Kind: VKArray, Ref: a} }

func Bool(b bool) Value {
	if b {
		return Value{Kind: VKBool, N: 1}
	}
	return Value{Kind: VKBool}
}

func (v Value) IsNull() bool { return v.Kind == VKNull }

// AsInt returns the value as a 32-bit int; chars and booleans are widened.
func (v Value) AsInt() int32 {
	if v.Kind == VKDouble {
		return doubleToInt(v.F)
	}
	return int32(v.N) // #nosec G115 -- N всегда в диапазоне int32
}

// AsDouble returns the numeric value as float64.
func (v Value) AsDouble() float64 {
	if v.Kind == VKDouble {
		return v.F
	}
	return float64(v.N)
}

func (v Value) AsBool() bool { return v.N != 0 }

// Object returns the referenced object, nil for anything else.
func (v Value) Object() *Object {
	o, _ := v.Ref.(*Object)
	return o
}

// Array returns the referenced array, nil for anything else.
func (v Value) Array() *Array {
	a, _ := v.Ref.(*Array)
	return a
}

// doubleToInt narrows like a Java (int) cast: NaN is 0, out-of-range
// values saturate.
func doubleToInt(f float64) int32 {
	switch {
	case math.IsNaN(f):
		return 0
	case f >= math.MaxInt32:
		return math.MaxInt32
	case f <= math.MinInt32:
		return math.MinInt32
	}
	return int32(f)
}

// FormatDouble renders a double the way string concatenation shows it.
func FormatDouble(f float64) string {
	switch {
	case math.IsNaN(f):
		return "NaN"
	case math.IsInf(f, 1):
		return "Infinity"
	case math.IsInf(f, -1):
		return "-Infinity"
	case f == math.Trunc(f) && math.Abs(f) < 1e7:
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	a := math.Abs(f)
	if a >= 1e-3 && a < 1e7 {
		return strconv.FormatFloat(f, 'f', -1, 64)
	}
	s := strconv.FormatFloat(f, 'E', -1, 64)
	// 1E+10 -> 1.0E10, 1E-04 -> 1.0E-4
	mant, exp, _ := strings.Cut(s, "E")
	if !strings.Contains(mant, ".") {
		mant += ".0"
	}
	e, _ := strconv.Atoi(exp)
	return mant + "E" + strconv.Itoa(e)
}

// Primitive formats primitives, strings and null; ok is false for objects
// and arrays, whose text depends on toString().
func (v Value) Primitive() (string, bool) {
	switch v.Kind {
	case VKNull:
		return "null", true
	case VKInt:
		return strconv.FormatInt(v.N, 10), true
	case VKDouble:
		return FormatDouble(v.F), true
	case VKBool:
		if v.N != 0 {
			return "true", true
		}
		return "false", true
	case VKChar:
		return string(rune(v.N)), true
	case VKString:
		return v.S, true
	}
	return "", false
}

// Same implements == on references: identity for objects and arrays,
// value equality for strings and boxed primitives.
func Same(a, b Value) bool {
	if a.Kind != b.Kind {
		if isNumeric(a.Kind) && isNumeric(b.Kind) {
			return a.AsDouble() == b.AsDouble()
		}
		return false
	}
	switch a.Kind {
	case VKNull:
		return true
	case VKObject, VKArray:
		return a.Ref == b.Ref
	case VKString:
		return a.S == b.S
	case VKDouble:
		return a.F == b.F
	}
	return a.N == b.N
}

func isNumeric(k ValueKind) bool { return k == VKInt || k == VKDouble || k == VKChar }
