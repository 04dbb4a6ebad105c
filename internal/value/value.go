// Package value implements the tagged value model fxlang programs operate
// on (§4.1): booleans, 32-bit integers, reduced fractions, strings, lists,
// insertion-ordered objects, Undefined, and typed battle handles.
package value

import (
	"fmt"
	"math"
)

// Kind tags a Value's dynamic type.
type Kind int

const (
	KindUndefined Kind = iota
	KindBool
	KindInt
	KindFraction
	KindString
	KindList
	KindObject
	KindHandle
)

func (k Kind) String() string {
	switch k {
	case KindUndefined:
		return "undefined"
	case KindBool:
		return "bool"
	case KindInt:
		return "int"
	case KindFraction:
		return "fraction"
	case KindString:
		return "string"
	case KindList:
		return "list"
	case KindObject:
		return "object"
	case KindHandle:
		return "handle"
	default:
		return "unknown"
	}
}

// HandleKind distinguishes the battle-domain handle types a Value may carry,
// per §3.1's EffectHandle variants plus the other typed handles §4.1 lists.
type HandleKind int

const (
	HandleMon HandleKind = iota
	HandleSide
	HandlePlayer
	HandleField
	HandleEffect
	HandleActiveMove
	HandleStatTable
	HandleBoostTable
	HandleMoveSlot
)

// Handle is an opaque, typed reference into battle-owned state. The engine
// (package battle) defines the concrete arena index types; fxlang only ever
// moves Handle values around without interpreting them, except to pass them
// back into battle-side builtin functions.
type Handle struct {
	Kind HandleKind
	// Ref is the opaque payload — battle.MonHandle, battle.EffectHandle,
	// etc. Stored as `any` so this package has no dependency on battle.
	Ref any
}

// Object is an insertion-ordered string-keyed map, used for effect-state and
// for the fxlang `new_object` builtin.
type Object struct {
	keys   []string
	values map[string]Value
}

// NewObject returns an empty insertion-ordered object.
func NewObject() *Object {
	return &Object{values: make(map[string]Value)}
}

func (o *Object) Get(key string) (Value, bool) {
	v, ok := o.values[key]
	return v, ok
}

func (o *Object) Set(key string, v Value) {
	if _, exists := o.values[key]; !exists {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
}

func (o *Object) Delete(key string) {
	if _, exists := o.values[key]; !exists {
		return
	}
	delete(o.values, key)
	for i, k := range o.keys {
		if k == key {
			o.keys = append(o.keys[:i], o.keys[i+1:]...)
			break
		}
	}
}

// Keys returns the object's keys in insertion order.
func (o *Object) Keys() []string {
	out := make([]string, len(o.keys))
	copy(out, o.keys)
	return out
}

func (o *Object) Len() int { return len(o.keys) }

// Clone performs a shallow copy (values are not deep-cloned; lists/objects
// nested inside retain reference semantics, matching fxlang's object
// mutation-by-reference model).
func (o *Object) Clone() *Object {
	n := NewObject()
	for _, k := range o.keys {
		n.Set(k, o.values[k])
	}
	return n
}

// Value is the tagged sum type every fxlang expression evaluates to.
type Value struct {
	kind   Kind
	b      bool
	i      int32
	frac   Fraction
	s      string
	list   []Value
	obj    *Object
	handle Handle
}

var Undefined = Value{kind: KindUndefined}

func Bool(b bool) Value   { return Value{kind: KindBool, b: b} }
func Int(i int32) Value   { return Value{kind: KindInt, i: i} }
func Str(s string) Value  { return Value{kind: KindString, s: s} }
func List(vs []Value) Value { return Value{kind: KindList, list: vs} }
func Obj(o *Object) Value { return Value{kind: KindObject, obj: o} }
func FromFraction(f Fraction) Value {
	if f.IsWhole() && f.Num >= math.MinInt32 && f.Num <= math.MaxInt32 {
		return Int(int32(f.Num))
	}
	return Value{kind: KindFraction, frac: f}
}
func FromHandle(h Handle) Value { return Value{kind: KindHandle, handle: h} }

func (v Value) Kind() Kind { return v.kind }
func (v Value) IsUndefined() bool { return v.kind == KindUndefined }

func (v Value) Bool() bool { return v.b }
func (v Value) Int() int32 { return v.i }
func (v Value) Str() string { return v.s }
func (v Value) List() []Value { return v.list }
func (v Value) Object() *Object { return v.obj }
func (v Value) Handle() Handle { return v.handle }

// AsFraction promotes any numeric Value to a Fraction; non-numeric kinds
// return the zero fraction and false.
func (v Value) AsFraction() (Fraction, bool) {
	switch v.kind {
	case KindInt:
		return IntFraction(int64(v.i)), true
	case KindFraction:
		return v.frac, true
	default:
		return Fraction{}, false
	}
}

func (v Value) IsNumeric() bool {
	return v.kind == KindInt || v.kind == KindFraction
}

// Truthy implements §4.1's truthiness coercion for `!x` and conditionals:
// false, 0, empty list, empty string, Undefined are false-truthy; all else
// is true-truthy.
func (v Value) Truthy() bool {
	switch v.kind {
	case KindUndefined:
		return false
	case KindBool:
		return v.b
	case KindInt:
		return v.i != 0
	case KindFraction:
		return v.frac.Num != 0
	case KindString:
		return v.s != ""
	case KindList:
		return len(v.list) != 0
	case KindObject:
		return true
	case KindHandle:
		return true
	default:
		return false
	}
}

// Equal implements fxlang's `==`. Numeric kinds compare as exact rationals
// regardless of int-vs-fraction representation; other kinds require an
// exact kind match.
func (v Value) Equal(o Value) bool {
	if v.IsNumeric() && o.IsNumeric() {
		vf, _ := v.AsFraction()
		of, _ := o.AsFraction()
		return vf.Compare(of) == 0
	}
	if v.kind != o.kind {
		return false
	}
	switch v.kind {
	case KindUndefined:
		return true
	case KindBool:
		return v.b == o.b
	case KindString:
		return v.s == o.s
	case KindList:
		if len(v.list) != len(o.list) {
			return false
		}
		for i := range v.list {
			if !v.list[i].Equal(o.list[i]) {
				return false
			}
		}
		return true
	case KindHandle:
		return v.handle.Kind == o.handle.Kind && fmt.Sprint(v.handle.Ref) == fmt.Sprint(o.handle.Ref)
	case KindObject:
		return v.obj == o.obj
	default:
		return false
	}
}

// String renders a Value the way fxlang's `str`/logging builtins do.
func (v Value) String() string {
	switch v.kind {
	case KindUndefined:
		return ""
	case KindBool:
		if v.b {
			return "true"
		}
		return "false"
	case KindInt:
		return fmt.Sprintf("%d", v.i)
	case KindFraction:
		return v.frac.String()
	case KindString:
		return v.s
	case KindList:
		out := "["
		for i, e := range v.list {
			if i > 0 {
				out += ", "
			}
			out += e.String()
		}
		return out + "]"
	case KindObject:
		return "[object]"
	case KindHandle:
		return fmt.Sprintf("[handle %v]", v.handle.Ref)
	default:
		return "?"
	}
}
