package battle

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAddConditionRunsStartAndSetsStaticDuration(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{}
	b, h1, _ := newTestBattle(t, store, prng, "tackle")

	inst, err := b.AddCondition(OwnerMon, h1, invalidHandle, 0, "embargo", ConditionEffect("embargo"), h1)
	require.NoError(t, err)

	assert.Equal(t, 5, inst.Duration)
	assert.True(t, b.Mon(h1).ItemSuppressed)
}

func TestResidualDecrementsDurationAndRemovesAtZero(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{}
	b, h1, _ := newTestBattle(t, store, prng, "tackle")

	_, err := b.AddCondition(OwnerMon, h1, invalidHandle, 0, "embargo", ConditionEffect("embargo"), h1)
	require.NoError(t, err)

	for i := 0; i < 4; i++ {
		require.NoError(t, b.Residual())
		assert.True(t, b.Mon(h1).ItemSuppressed, "still embargoed after tick %d", i+1)
		assert.Contains(t, b.Mon(h1).Volatiles, "embargo")
	}

	require.NoError(t, b.Residual())
	assert.False(t, b.Mon(h1).ItemSuppressed, "embargo should have ended on its fifth tick")
	assert.NotContains(t, b.Mon(h1).Volatiles, "embargo")
}

func TestToxicResidualDamageEscalatesByStage(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{}
	b, h1, _ := newTestBattle(t, store, prng, "tackle")
	b.Mon(h1).Status = Status("tox")

	_, err := b.AddCondition(OwnerMon, h1, invalidHandle, 0, "tox", ConditionEffect("tox"), h1)
	require.NoError(t, err)

	hp := b.Mon(h1).MaxHP
	require.NoError(t, b.Residual())
	assert.Equal(t, hp-hp/16, b.Mon(h1).HP) // stage 1: 1/16

	hpAfterFirst := b.Mon(h1).HP
	require.NoError(t, b.Residual())
	assert.Equal(t, hpAfterFirst-2*hp/16, b.Mon(h1).HP) // stage 2: 2/16
}

func TestSleepDurationCallbackOverridesStatic(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{responses: []int32{2}} // random(1, 4) -> 2
	b, h1, _ := newTestBattle(t, store, prng, "tackle")

	inst, err := b.AddCondition(OwnerMon, h1, invalidHandle, 0, "slp", ConditionEffect("slp"), h1)
	require.NoError(t, err)

	assert.Equal(t, 2, inst.Duration)
}

func TestEmptyResidualGivesSleepADurationTickWithNoPerTurnEffect(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{responses: []int32{1}} // random(1, 4) -> 1 turn of sleep
	b, h1, _ := newTestBattle(t, store, prng, "tackle")

	_, err := b.AddCondition(OwnerMon, h1, invalidHandle, 0, "slp", ConditionEffect("slp"), h1)
	require.NoError(t, err)

	hpBefore := b.Mon(h1).HP
	require.NoError(t, b.Residual())

	assert.Equal(t, hpBefore, b.Mon(h1).HP) // no damage: the empty Residual program is a pure duration hook
	assert.NotContains(t, b.Mon(h1).Volatiles, "slp")
}

func TestRemoveConditionRunsEndCallback(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{}
	b, h1, _ := newTestBattle(t, store, prng, "tackle")

	_, err := b.AddCondition(OwnerMon, h1, invalidHandle, 0, "embargo", ConditionEffect("embargo"), h1)
	require.NoError(t, err)
	require.True(t, b.Mon(h1).ItemSuppressed)

	b.RemoveCondition(OwnerMon, h1, invalidHandle, 0, "embargo")

	assert.False(t, b.Mon(h1).ItemSuppressed)
	assert.NotContains(t, b.Mon(h1).Volatiles, "embargo")
}
