package fxlang

import (
	"fmt"

	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// BaseFunctions returns the calculation/utility and random builtins that
// need nothing beyond a Host's PRNG (§4.3's "Random" and
// "Calculation/utility" categories). Everything introspection-, mutation-,
// logging-, and event-re-entry-flavored is battle-domain and registered by
// package battle on top of this table.
func BaseFunctions() FunctionTable {
	return FunctionTable{
		"random":            fnRandom,
		"chance":            fnChance,
		"max":               fnMax,
		"min":               fnMin,
		"floor":             fnFloor,
		"append":            fnAppend,
		"remove":            fnRemove,
		"new_object":        fnNewObject,
		"object_keys":       fnObjectKeys,
		"object_increment":  fnObjectIncrement,
		"sample":            fnSample,
		"plural":            fnPlural,
	}
}

func fnRandom(_ *Evaluator, host Host, args []value.Value, _ []string) (value.Value, error) {
	switch len(args) {
	case 0:
		return value.Int(int32(host.PRNG().Range(0, 2))), nil
	case 1:
		n := args[0].Int()
		return value.Int(host.PRNG().Range(0, n)), nil
	case 2:
		lo, hi := args[0].Int(), args[1].Int()
		return value.Int(host.PRNG().Range(lo, hi)), nil
	default:
		return value.Undefined, fmt.Errorf("fxlang: random takes 0-2 arguments, got %d", len(args))
	}
}

func fnChance(_ *Evaluator, host Host, args []value.Value, _ []string) (value.Value, error) {
	var num, den int32
	switch len(args) {
	case 1:
		f, ok := args[0].AsFraction()
		if !ok {
			return value.Undefined, fmt.Errorf("fxlang: chance requires a numeric argument")
		}
		num, den = int32(f.Num), int32(f.Den)
	case 2:
		num, den = args[0].Int(), args[1].Int()
	default:
		return value.Undefined, fmt.Errorf("fxlang: chance takes 1 or 2 arguments, got %d", len(args))
	}
	if den <= 0 {
		return value.Undefined, fmt.Errorf("fxlang: chance denominator must be positive")
	}
	return value.Bool(host.PRNG().Range(0, den) < num), nil
}

func fnMax(_ *Evaluator, _ Host, args []value.Value, _ []string) (value.Value, error) {
	return foldNumeric(args, func(a, b value.Fraction) bool { return a.Compare(b) >= 0 })
}

func fnMin(_ *Evaluator, _ Host, args []value.Value, _ []string) (value.Value, error) {
	return foldNumeric(args, func(a, b value.Fraction) bool { return a.Compare(b) <= 0 })
}

func foldNumeric(args []value.Value, keep func(a, b value.Fraction) bool) (value.Value, error) {
	if len(args) == 0 {
		return value.Undefined, fmt.Errorf("fxlang: expected at least one numeric argument")
	}
	best := args[0]
	bestFrac, ok := best.AsFraction()
	if !ok {
		return value.Undefined, fmt.Errorf("fxlang: non-numeric argument")
	}
	for _, a := range args[1:] {
		f, ok := a.AsFraction()
		if !ok {
			return value.Undefined, fmt.Errorf("fxlang: non-numeric argument")
		}
		if keep(f, bestFrac) {
			best, bestFrac = a, f
		}
	}
	return best, nil
}

func fnFloor(_ *Evaluator, _ Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) != 1 {
		return value.Undefined, fmt.Errorf("fxlang: floor takes exactly one argument")
	}
	f, ok := args[0].AsFraction()
	if !ok {
		return value.Undefined, fmt.Errorf("fxlang: floor requires a numeric argument")
	}
	return value.Int(int32(f.Floor())), nil
}

func fnAppend(_ *Evaluator, _ Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) != 2 || args[0].Kind() != value.KindList {
		return value.Undefined, fmt.Errorf("fxlang: append requires (list, value)")
	}
	out := append(append([]value.Value(nil), args[0].List()...), args[1])
	return value.List(out), nil
}

func fnRemove(_ *Evaluator, _ Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) != 2 || args[0].Kind() != value.KindList {
		return value.Undefined, fmt.Errorf("fxlang: remove requires (list, value)")
	}
	src := args[0].List()
	out := make([]value.Value, 0, len(src))
	removed := false
	for _, v := range src {
		if !removed && v.Equal(args[1]) {
			removed = true
			continue
		}
		out = append(out, v)
	}
	return value.List(out), nil
}

func fnNewObject(_ *Evaluator, _ Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) != 0 {
		return value.Undefined, fmt.Errorf("fxlang: new_object takes no arguments")
	}
	return value.Obj(value.NewObject()), nil
}

func fnObjectKeys(_ *Evaluator, _ Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) != 1 || args[0].Kind() != value.KindObject {
		return value.Undefined, fmt.Errorf("fxlang: object_keys requires an object")
	}
	keys := args[0].Object().Keys()
	out := make([]value.Value, len(keys))
	for i, k := range keys {
		out[i] = value.Str(k)
	}
	return value.List(out), nil
}

func fnObjectIncrement(_ *Evaluator, _ Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 || args[0].Kind() != value.KindObject || args[1].Kind() != value.KindString {
		return value.Undefined, fmt.Errorf("fxlang: object_increment requires (object, key, [amount])")
	}
	amount := value.IntFraction(1)
	if len(args) >= 3 {
		f, ok := args[2].AsFraction()
		if !ok {
			return value.Undefined, fmt.Errorf("fxlang: object_increment amount must be numeric")
		}
		amount = f
	}
	obj := args[0].Object()
	key := args[1].Str()
	cur := value.IntFraction(0)
	if existing, ok := obj.Get(key); ok {
		if f, ok := existing.AsFraction(); ok {
			cur = f
		}
	}
	next := value.FromFraction(cur.Add(amount))
	obj.Set(key, next)
	return next, nil
}

func fnSample(_ *Evaluator, host Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) != 1 || args[0].Kind() != value.KindList {
		return value.Undefined, fmt.Errorf("fxlang: sample requires a list")
	}
	list := args[0].List()
	if len(list) == 0 {
		return value.Undefined, nil
	}
	idx := host.PRNG().Range(0, int32(len(list)))
	return list[idx], nil
}

func fnPlural(_ *Evaluator, _ Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("fxlang: plural requires (n, singular, [plural])")
	}
	n, ok := args[0].AsFraction()
	if !ok {
		return value.Undefined, fmt.Errorf("fxlang: plural's first argument must be numeric")
	}
	if n.Compare(value.IntFraction(1)) == 0 {
		return value.Str(args[1].Str()), nil
	}
	if len(args) >= 3 {
		return value.Str(args[2].Str()), nil
	}
	return value.Str(args[1].Str() + "s"), nil
}
