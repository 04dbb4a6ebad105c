package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jackson-nestelroad/battler-go/internal/value"
)

func containsLine(lines []string, exact string) bool {
	for _, l := range lines {
		if l == exact {
			return true
		}
	}
	return false
}

func TestRunEventModifierChainsRelayThroughEveryCandidate(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{}
	b, h1, _ := newTestBattle(t, store, prng, "tackle")
	b.Mon(h1).Ability = "double-damage"
	b.Mon(h1).Item = "plus-ten-damage"

	result, err := b.RunEvent("ModifyDamage", map[string]value.Value{"damage": value.Int(20)}, "damage")
	require.NoError(t, err)

	n, ok := result.AsFraction()
	require.True(t, ok)
	assert.Equal(t, int64(50), n.Floor()) // (20 * 2) + 10, ability (order 0) before item (order 1)
}

func TestRunEventPredicateShortCircuitsOnFirstVeto(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{}
	b, h1, _ := newTestBattle(t, store, prng, "tackle")
	b.Mon(h1).Ability = "veto-try-hit"
	b.Mon(h1).Item = "never-runs"

	before := b.Log().Len()
	result, err := b.RunEvent("TryHit", map[string]value.Value{}, "")
	require.NoError(t, err)

	assert.False(t, result.Truthy())
	lines := b.Log().Since(before)
	assert.True(t, containsLine(lines, "veto-ran"))
	assert.False(t, containsLine(lines, "should-not-run"))
}

func TestRunEventSingleRunsOnlyHighestPriorityCandidate(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{}
	b, h1, _ := newTestBattle(t, store, prng, "tackle")
	b.Mon(h1).Ability = "high-priority-invuln"
	b.Mon(h1).Item = "low-priority-invuln"

	before := b.Log().Len()
	result, err := b.RunEvent("Invulnerability", map[string]value.Value{}, "")
	require.NoError(t, err)

	assert.False(t, result.Truthy()) // the ability's (priority 5) return, not the item's
	lines := b.Log().Since(before)
	assert.True(t, containsLine(lines, "ability-ran"))
	assert.False(t, containsLine(lines, "item-ran"))
}

func TestRunEventBroadcastRunsEveryCandidateAndDiscardsResult(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{}
	b, h1, _ := newTestBattle(t, store, prng, "tackle")

	_, err := b.AddCondition(OwnerMon, h1, invalidHandle, 0, "broadcast-a", ConditionEffect("broadcast-a"), h1)
	require.NoError(t, err)
	_, err = b.AddCondition(OwnerMon, h1, invalidHandle, 0, "broadcast-b", ConditionEffect("broadcast-b"), h1)
	require.NoError(t, err)

	before := b.Log().Len()
	result, err := b.RunEvent("SwitchIn", map[string]value.Value{"target": handleValue(value.HandleMon, h1)}, "")
	require.NoError(t, err)

	assert.True(t, result.IsUndefined())
	lines := b.Log().Since(before)
	assert.True(t, containsLine(lines, "broadcast-a-ran"))
	assert.True(t, containsLine(lines, "broadcast-b-ran"))
}

func TestRunEventWithNoCandidatesReturnsSeedRelayUnchanged(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{}
	b, _, _ := newTestBattle(t, store, prng, "tackle")

	result, err := b.RunEvent("ModifyDamage", map[string]value.Value{"damage": value.Int(42)}, "damage")
	require.NoError(t, err)
	assert.Equal(t, int32(42), result.Int())
}
