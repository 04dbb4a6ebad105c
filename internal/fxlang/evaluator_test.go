package fxlang

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// fakeHost is a minimal Host backed by a single in-memory object, enough to
// exercise member access/assignment without pulling in package battle.
type fakeHost struct {
	fields map[string]value.Value
	prng   *fixedPRNG
}

func newFakeHost() *fakeHost {
	return &fakeHost{fields: map[string]value.Value{}, prng: &fixedPRNG{}}
}

func (h *fakeHost) GetMember(_ value.Handle, name string) (value.Value, error) {
	if v, ok := h.fields[name]; ok {
		return v, nil
	}
	return value.Undefined, nil
}

func (h *fakeHost) SetMember(_ value.Handle, name string, v value.Value) error {
	h.fields[name] = v
	return nil
}

func (h *fakeHost) PRNG() value.PRNG { return h.prng }

// fixedPRNG always returns lo, making chance()/random() deterministic in tests.
type fixedPRNG struct{}

func (p *fixedPRNG) UniformU32() uint32         { return 0 }
func (p *fixedPRNG) Range(lo, hi int32) int32 { return lo }

func runProgram(t *testing.T, program string, seed map[string]value.Value) (value.Value, *Evaluator) {
	t.Helper()
	stmts, err := ParseProgram([]any{program})
	require.NoError(t, err)
	host := newFakeHost()
	ev := NewEvaluator(host, BaseFunctions(), seed)
	v, err := ev.Run(stmts)
	require.NoError(t, err)
	return v, ev
}

func TestEvaluatorArithmeticKeepsIntForAddSubMul(t *testing.T) {
	v, _ := runProgram(t, "return 2 + 3 * 2", nil)
	assert.Equal(t, value.KindInt, v.Kind())
	assert.Equal(t, int32(8), v.Int())
}

func TestEvaluatorDivisionAlwaysYieldsFraction(t *testing.T) {
	v, _ := runProgram(t, "return 7 / 2", nil)
	assert.Equal(t, value.KindFraction, v.Kind())
	f, ok := v.AsFraction()
	require.True(t, ok)
	assert.Equal(t, int64(3), f.Floor())
}

func TestEvaluatorFloorForcesIntFromFraction(t *testing.T) {
	v, _ := runProgram(t, "return floor(7 / 2)", nil)
	assert.Equal(t, value.KindInt, v.Kind())
	assert.Equal(t, int32(3), v.Int())
}

func TestEvaluatorIfElseBranching(t *testing.T) {
	body := []any{
		"if $hp > 0:",
		[]any{"return \"alive\""},
		"else:",
		[]any{"return \"fainted\""},
	}
	stmts, err := ParseProgram(body)
	require.NoError(t, err)

	host := newFakeHost()
	ev := NewEvaluator(host, BaseFunctions(), map[string]value.Value{"hp": value.Int(0)})
	v, err := ev.Run(stmts)
	require.NoError(t, err)
	assert.Equal(t, "fainted", v.Str())
}

func TestEvaluatorForeachAccumulates(t *testing.T) {
	body := []any{
		"$total = 0",
		"foreach $n in [1, 2, 3]:",
		[]any{
			"$total = $total + $n",
		},
		"return $total",
	}
	stmts, err := ParseProgram(body)
	require.NoError(t, err)
	host := newFakeHost()
	ev := NewEvaluator(host, BaseFunctions(), nil)
	result, err := ev.Run(stmts)
	require.NoError(t, err)
	assert.Equal(t, int32(6), result.Int())
}

func TestEvaluatorAssignmentPersistsAcrossScope(t *testing.T) {
	body := []any{
		"if true:",
		[]any{
			"$flag = 1",
		},
		"return $flag",
	}
	stmts, err := ParseProgram(body)
	require.NoError(t, err)
	host := newFakeHost()
	ev := NewEvaluator(host, BaseFunctions(), nil)
	v, err := ev.Run(stmts)
	require.NoError(t, err)
	assert.Equal(t, int32(1), v.Int())
}

func TestEvaluatorCallsRegisteredFunction(t *testing.T) {
	called := false
	funcs := BaseFunctions()
	funcs["mark"] = func(_ *Evaluator, _ Host, _ []value.Value, _ []string) (value.Value, error) {
		called = true
		return value.Bool(true), nil
	}
	stmts, err := ParseProgram([]any{"mark:"})
	require.NoError(t, err)
	host := newFakeHost()
	ev := NewEvaluator(host, funcs, nil)
	_, err = ev.Run(stmts)
	require.NoError(t, err)
	assert.True(t, called)
}

func TestEvaluatorUnknownFunctionErrors(t *testing.T) {
	stmts, err := ParseProgram([]any{"does_not_exist: 1"})
	require.NoError(t, err)
	host := newFakeHost()
	ev := NewEvaluator(host, BaseFunctions(), nil)
	_, err = ev.Run(stmts)
	assert.Error(t, err)
}

func TestEvaluatorMemberAccessViaHost(t *testing.T) {
	host := newFakeHost()
	host.fields["name"] = value.Str("Pikachu")
	monHandle := value.FromHandle(value.Handle{Kind: value.HandleMon, Ref: 0})
	ev := NewEvaluator(host, BaseFunctions(), map[string]value.Value{"mon": monHandle})
	stmts, err := ParseProgram([]any{"return $mon.name"})
	require.NoError(t, err)
	v, err := ev.Run(stmts)
	require.NoError(t, err)
	assert.Equal(t, "Pikachu", v.Str())
}

func TestEvaluatorMaxCallDepthIs200(t *testing.T) {
	// maxCallDepth bounds nested calls within a single Evaluator. Each
	// battle RunEvent builds a fresh Evaluator, so re-entry through
	// run_event starts a new count and is not limited by it; this test
	// only pins the constant.
	assert.Equal(t, 200, maxCallDepth)
	assert.NotEmpty(t, fmt.Sprintf("%d", maxCallDepth))
}
