// Package fxlang implements the small interpreted effect-callback language
// described in §4.2-§4.3: a recursive-descent parser producing a cached AST
// per effect, and a tree-walking evaluator executed against a Host that
// proxies safe access to battle state (the Context/borrow proxy of §4.4
// lives in package battle and implements Host).
package fxlang

import (
	"fmt"
	"math"
	"strings"

	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// Host is the capability surface the evaluator needs from whatever owns the
// battle-domain handles flowing through a program: member access on
// Mon/Side/Field/etc. handles. Everything else (variables, lists, objects)
// is handled inside the evaluator itself, per §4.3's single merged scope.
type Host interface {
	GetMember(h value.Handle, name string) (value.Value, error)
	SetMember(h value.Handle, name string, v value.Value) error
	// PRNG returns the single seeded random source every randomness
	// consumer must route through (§4.1, §6.4).
	PRNG() value.PRNG
}

// Func is a registered builtin. Builtins receive the running Evaluator (so
// they can re-enter it, e.g. for run_event), the Host, the already-evaluated
// positional arguments, and the raw flag identifiers named alongside them
// (§4.3's flag-rewrite arguments).
type Func func(ev *Evaluator, host Host, args []value.Value, flags []string) (value.Value, error)

// FunctionTable is the registry of builtins visible to a running program.
type FunctionTable map[string]Func

type ctrlKind int

const (
	ctrlNone ctrlKind = iota
	ctrlReturn
	ctrlContinue
)

const maxCallDepth = 200

// Evaluator executes a parsed Program body against a Host. Variables share a
// single flat scope across the whole program (§4.3): assignment anywhere
// defines a name visible everywhere after that point, including inside
// nested if/foreach blocks.
type Evaluator struct {
	vars  map[string]value.Value
	funcs FunctionTable
	host  Host
	depth int
}

// NewEvaluator constructs an evaluator for one callback invocation. Seed
// vars with the event's input tuple (e.g. $damage, $move, $user, $target
// for ModifyDamage, per §4.6 step 4) before calling Run.
func NewEvaluator(host Host, funcs FunctionTable, seed map[string]value.Value) *Evaluator {
	ev := &Evaluator{
		vars:  make(map[string]value.Value, len(seed)+4),
		funcs: funcs,
		host:  host,
	}
	for k, v := range seed {
		ev.vars[k] = v
	}
	return ev
}

// Var reads a variable for inspection after Run returns (builtins and the
// kernel sometimes want $effect_state or similar post-hoc).
func (ev *Evaluator) Var(name string) value.Value {
	return ev.vars[name]
}

func (ev *Evaluator) SetVar(name string, v value.Value) {
	ev.vars[name] = v
}

// Run executes a program body to completion. A `return EXPR` terminates
// execution and yields EXPR's value; falling off the end (or a bare
// `return`) yields Undefined, both treated as pass-through by the event
// kernel (§4.3, §4.9).
func (ev *Evaluator) Run(body []Stmt) (value.Value, error) {
	kind, v, err := ev.execBody(body)
	if err != nil {
		return value.Undefined, err
	}
	if kind == ctrlReturn {
		return v, nil
	}
	return value.Undefined, nil
}

func (ev *Evaluator) execBody(stmts []Stmt) (ctrlKind, value.Value, error) {
	for _, s := range stmts {
		kind, v, err := ev.execStmt(s)
		if err != nil {
			return ctrlNone, value.Undefined, err
		}
		if kind != ctrlNone {
			return kind, v, nil
		}
	}
	return ctrlNone, value.Undefined, nil
}

func (ev *Evaluator) execStmt(s Stmt) (ctrlKind, value.Value, error) {
	switch st := s.(type) {
	case AssignStmt:
		v, err := ev.eval(st.Value)
		if err != nil {
			return ctrlNone, value.Undefined, err
		}
		if err := ev.assign(st.Target, v); err != nil {
			return ctrlNone, value.Undefined, err
		}
		return ctrlNone, value.Undefined, nil

	case ExprStmt:
		_, err := ev.eval(st.Expr)
		return ctrlNone, value.Undefined, err

	case *IfStmt:
		cond, err := ev.eval(st.Cond)
		if err != nil {
			return ctrlNone, value.Undefined, err
		}
		if cond.Truthy() {
			return ev.execBody(st.Then)
		}
		for _, clause := range st.ElseIfs {
			if clause.Cond == nil {
				return ev.execBody(clause.Body)
			}
			cv, err := ev.eval(clause.Cond)
			if err != nil {
				return ctrlNone, value.Undefined, err
			}
			if cv.Truthy() {
				return ev.execBody(clause.Body)
			}
		}
		return ctrlNone, value.Undefined, nil

	case ForeachStmt:
		listVal, err := ev.eval(st.List)
		if err != nil {
			return ctrlNone, value.Undefined, err
		}
		if listVal.Kind() != value.KindList {
			return ctrlNone, value.Undefined, fmt.Errorf("fxlang: foreach requires a list, got %s", listVal.Kind())
		}
		snapshot := append([]value.Value(nil), listVal.List()...)
		for _, item := range snapshot {
			ev.vars[st.Var] = item
			kind, v, err := ev.execBody(st.Body)
			if err != nil {
				return ctrlNone, value.Undefined, err
			}
			if kind == ctrlContinue {
				continue
			}
			if kind == ctrlReturn {
				return ctrlReturn, v, nil
			}
		}
		return ctrlNone, value.Undefined, nil

	case ReturnStmt:
		if st.Value == nil {
			return ctrlReturn, value.Undefined, nil
		}
		v, err := ev.eval(st.Value)
		if err != nil {
			return ctrlNone, value.Undefined, err
		}
		return ctrlReturn, v, nil

	case ContinueStmt:
		return ctrlContinue, value.Undefined, nil

	default:
		return ctrlNone, value.Undefined, fmt.Errorf("fxlang: unhandled statement %T", s)
	}
}

func (ev *Evaluator) assign(target Expr, v value.Value) error {
	switch t := target.(type) {
	case VarExpr:
		ev.vars[t.Name] = v
		return nil
	case MemberExpr:
		base, err := ev.eval(t.Base)
		if err != nil {
			return err
		}
		if base.IsUndefined() {
			return fmt.Errorf("fxlang: cannot write member %q of undefined", t.Name)
		}
		switch base.Kind() {
		case value.KindObject:
			base.Object().Set(t.Name, v)
			return nil
		case value.KindHandle:
			if ev.host == nil {
				return fmt.Errorf("fxlang: no host bound for member write %q", t.Name)
			}
			return ev.host.SetMember(base.Handle(), t.Name, v)
		default:
			return fmt.Errorf("fxlang: cannot write member %q of %s", t.Name, base.Kind())
		}
	case IndexExpr:
		base, err := ev.eval(t.Base)
		if err != nil {
			return err
		}
		idx, err := ev.eval(t.Index)
		if err != nil {
			return err
		}
		switch base.Kind() {
		case value.KindList:
			list := base.List()
			i := int(idx.Int())
			if i < 0 || i >= len(list) {
				return fmt.Errorf("fxlang: list index %d out of range", i)
			}
			list[i] = v
			return nil
		case value.KindObject:
			base.Object().Set(idx.String(), v)
			return nil
		default:
			return fmt.Errorf("fxlang: cannot index-assign into %s", base.Kind())
		}
	default:
		return fmt.Errorf("fxlang: invalid assignment target %T", target)
	}
}

func (ev *Evaluator) eval(e Expr) (value.Value, error) {
	switch n := e.(type) {
	case LiteralExpr:
		switch {
		case n.IsUndefined:
			return value.Undefined, nil
		case n.Bool != nil:
			return value.Bool(*n.Bool), nil
		case n.IsNumber:
			return value.FromFraction(value.NewFraction(n.NumValue, n.DenValue)), nil
		case n.Str != nil:
			return value.Str(*n.Str), nil
		}
		return value.Undefined, nil

	case VarExpr:
		return ev.vars[n.Name], nil

	case MemberExpr:
		base, err := ev.eval(n.Base)
		if err != nil {
			return value.Undefined, err
		}
		if base.IsUndefined() {
			return value.Undefined, nil
		}
		switch base.Kind() {
		case value.KindObject:
			v, ok := base.Object().Get(n.Name)
			if !ok {
				return value.Undefined, nil
			}
			return v, nil
		case value.KindHandle:
			if ev.host == nil {
				return value.Undefined, nil
			}
			return ev.host.GetMember(base.Handle(), n.Name)
		default:
			return value.Undefined, nil
		}

	case IndexExpr:
		base, err := ev.eval(n.Base)
		if err != nil {
			return value.Undefined, err
		}
		idx, err := ev.eval(n.Index)
		if err != nil {
			return value.Undefined, err
		}
		switch base.Kind() {
		case value.KindList:
			list := base.List()
			i := int(idx.Int())
			if i < 0 || i >= len(list) {
				return value.Undefined, nil
			}
			return list[i], nil
		case value.KindObject:
			v, ok := base.Object().Get(idx.String())
			if !ok {
				return value.Undefined, nil
			}
			return v, nil
		default:
			return value.Undefined, nil
		}

	case UnaryExpr:
		inner, err := ev.eval(n.Expr)
		if err != nil {
			return value.Undefined, err
		}
		switch n.Op {
		case "!":
			return value.Bool(!inner.Truthy()), nil
		case "-":
			f, ok := inner.AsFraction()
			if !ok {
				return value.Undefined, fmt.Errorf("fxlang: unary - on non-numeric %s", inner.Kind())
			}
			return value.FromFraction(value.NewFraction(-f.Num, f.Den)), nil
		case "+":
			if !inner.IsNumeric() {
				return value.Undefined, fmt.Errorf("fxlang: unary + on non-numeric %s", inner.Kind())
			}
			return inner, nil
		}
		return value.Undefined, fmt.Errorf("fxlang: unknown unary operator %q", n.Op)

	case BinaryExpr:
		return ev.evalBinary(n)

	case ListExpr:
		vals := make([]value.Value, len(n.Elems))
		for i, el := range n.Elems {
			v, err := ev.eval(el)
			if err != nil {
				return value.Undefined, err
			}
			vals[i] = v
		}
		return value.List(vals), nil

	case CallExpr:
		return ev.evalCall(n)

	case StrTemplateExpr:
		args := make([]string, len(n.Args))
		for i, a := range n.Args {
			v, err := ev.eval(a)
			if err != nil {
				return value.Undefined, err
			}
			args[i] = v.String()
		}
		return value.Str(renderTemplate(n.Template, args)), nil

	default:
		return value.Undefined, fmt.Errorf("fxlang: unhandled expression %T", e)
	}
}

func renderTemplate(template string, args []string) string {
	var sb strings.Builder
	ai := 0
	for i := 0; i < len(template); i++ {
		if template[i] == '%' && i+1 < len(template) && template[i+1] == 's' {
			if ai < len(args) {
				sb.WriteString(args[ai])
				ai++
			}
			i++
			continue
		}
		sb.WriteByte(template[i])
	}
	return sb.String()
}

func (ev *Evaluator) evalBinary(n BinaryExpr) (value.Value, error) {
	switch n.Op {
	case "or":
		left, err := ev.eval(n.Left)
		if err != nil {
			return value.Undefined, err
		}
		if left.Truthy() {
			return value.Bool(true), nil
		}
		right, err := ev.eval(n.Right)
		if err != nil {
			return value.Undefined, err
		}
		return value.Bool(right.Truthy()), nil

	case "and":
		left, err := ev.eval(n.Left)
		if err != nil {
			return value.Undefined, err
		}
		if !left.Truthy() {
			return value.Bool(false), nil
		}
		right, err := ev.eval(n.Right)
		if err != nil {
			return value.Undefined, err
		}
		return value.Bool(right.Truthy()), nil
	}

	left, err := ev.eval(n.Left)
	if err != nil {
		return value.Undefined, err
	}
	right, err := ev.eval(n.Right)
	if err != nil {
		return value.Undefined, err
	}

	switch n.Op {
	case "==":
		return value.Bool(left.Equal(right)), nil
	case "!=":
		return value.Bool(!left.Equal(right)), nil
	case "<", "<=", ">", ">=":
		lf, lok := left.AsFraction()
		rf, rok := right.AsFraction()
		if !lok || !rok {
			return value.Undefined, fmt.Errorf("fxlang: relational operator %q on non-numeric operands", n.Op)
		}
		cmp := lf.Compare(rf)
		switch n.Op {
		case "<":
			return value.Bool(cmp < 0), nil
		case "<=":
			return value.Bool(cmp <= 0), nil
		case ">":
			return value.Bool(cmp > 0), nil
		default:
			return value.Bool(cmp >= 0), nil
		}
	case "has":
		if left.Kind() != value.KindList {
			return value.Undefined, fmt.Errorf("fxlang: `has` requires a list on the left")
		}
		for _, el := range left.List() {
			if el.Equal(right) {
				return value.Bool(true), nil
			}
		}
		return value.Bool(false), nil
	case "hasany":
		if left.Kind() != value.KindList || right.Kind() != value.KindList {
			return value.Undefined, fmt.Errorf("fxlang: `hasany` requires two lists")
		}
		for _, a := range left.List() {
			for _, b := range right.List() {
				if a.Equal(b) {
					return value.Bool(true), nil
				}
			}
		}
		return value.Bool(false), nil
	case "+", "-", "*", "/", "%":
		return evalArith(n.Op, left, right)
	case "^":
		return evalPow(left, right)
	}
	return value.Undefined, fmt.Errorf("fxlang: unknown binary operator %q", n.Op)
}

func evalArith(op string, l, r value.Value) (value.Value, error) {
	if op == "+" && l.Kind() == value.KindString && r.Kind() == value.KindString {
		return value.Str(l.Str() + r.Str()), nil
	}
	if op == "+" && l.Kind() == value.KindList && r.Kind() == value.KindList {
		out := append(append([]value.Value(nil), l.List()...), r.List()...)
		return value.List(out), nil
	}

	lf, lok := l.AsFraction()
	rf, rok := r.AsFraction()
	if !lok || !rok {
		return value.Undefined, fmt.Errorf("fxlang: arithmetic %q on non-numeric operands (%s, %s)", op, l.Kind(), r.Kind())
	}
	bothInt := l.Kind() == value.KindInt && r.Kind() == value.KindInt

	switch op {
	case "%":
		if !bothInt {
			return value.Undefined, fmt.Errorf("fxlang: modulo requires integer operands")
		}
		if r.Int() == 0 {
			return value.Undefined, fmt.Errorf("fxlang: modulo by zero")
		}
		return value.Int(l.Int() % r.Int()), nil
	case "/":
		if rf.Num == 0 {
			return value.Undefined, fmt.Errorf("fxlang: division by zero")
		}
		return value.FromFraction(lf.Div(rf)), nil
	}

	var res value.Fraction
	switch op {
	case "+":
		res = lf.Add(rf)
	case "-":
		res = lf.Sub(rf)
	case "*":
		res = lf.Mul(rf)
	}
	if bothInt {
		if res.Num < math.MinInt32 || res.Num > math.MaxInt32 {
			return value.Undefined, fmt.Errorf("fxlang: integer overflow")
		}
		return value.Int(int32(res.Num)), nil
	}
	return value.FromFraction(res), nil
}

func evalPow(l, r value.Value) (value.Value, error) {
	lf, lok := l.AsFraction()
	rf, rok := r.AsFraction()
	if !lok || !rok || !rf.IsWhole() || rf.Num < 0 {
		return value.Undefined, fmt.Errorf("fxlang: `^` requires a numeric base and a non-negative integer exponent")
	}
	result := value.IntFraction(1)
	for i := int64(0); i < rf.Num; i++ {
		result = result.Mul(lf)
	}
	if l.Kind() == value.KindInt && (result.Num < math.MinInt32 || result.Num > math.MaxInt32) {
		return value.Undefined, fmt.Errorf("fxlang: integer overflow")
	}
	return value.FromFraction(result), nil
}

func (ev *Evaluator) evalCall(n CallExpr) (value.Value, error) {
	fn, ok := ev.funcs[n.Name]
	if !ok {
		return value.Undefined, fmt.Errorf("fxlang: unknown function %q", n.Name)
	}
	args := make([]value.Value, len(n.Args))
	for i, a := range n.Args {
		v, err := ev.eval(a)
		if err != nil {
			return value.Undefined, err
		}
		args[i] = v
	}
	ev.depth++
	defer func() { ev.depth-- }()
	if ev.depth > maxCallDepth {
		return value.Undefined, fmt.Errorf("fxlang: call depth exceeded %d (re-entrant effect loop?)", maxCallDepth)
	}
	return fn(ev, ev.host, args, n.Flags)
}
