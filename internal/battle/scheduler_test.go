package battle

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// countLines reports how many of lines start with prefix+"|".
func countLines(lines []string, prefix string) int {
	n := 0
	for _, l := range lines {
		if strings.HasPrefix(l, prefix+"|") {
			n++
		}
	}
	return n
}

func TestStepTackleDealsDamage(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{responses: []int32{1, 8}} // crit roll, random factor
	b, h1, h2 := newTestBattle(t, store, prng, "tackle")

	lines, err := b.Step(map[MonHandle]Choice{
		h1: {Kind: ChoiceMove, Mon: h1, MoveSlot: 0, Target: invalidHandle},
	})
	require.NoError(t, err)

	assert.Equal(t, 143, b.Mon(h2).HP)
	assert.Equal(t, 1, countLines(lines, "damage"))
	assert.Equal(t, 0, countLines(lines, "crit"))
}

func TestStepDoubleSlapMultihitAccumulatesDamage(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{responses: []int32{
		10, // accuracy roll, < 85, hits
		0,  // multihit roll, lands in the 2-hit bucket
		1, 8, // hit 1: crit roll, random factor
		1, 8, // hit 2: crit roll, random factor
	}}
	b, h1, h2 := newTestBattle(t, store, prng, "double-slap")

	lines, err := b.Step(map[MonHandle]Choice{
		h1: {Kind: ChoiceMove, Mon: h1, MoveSlot: 0, Target: invalidHandle},
	})
	require.NoError(t, err)

	assert.Equal(t, 146, b.Mon(h2).HP) // 160 - 2*7
	assert.Equal(t, 2, countLines(lines, "damage"))
}

func TestStepBraveBirdAppliesRecoil(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{responses: []int32{1, 8}} // crit roll, random factor
	b, h1, h2 := newTestBattle(t, store, prng, "brave-bird")

	lines, err := b.Step(map[MonHandle]Choice{
		h1: {Kind: ChoiceMove, Mon: h1, MoveSlot: 0, Target: invalidHandle},
	})
	require.NoError(t, err)

	assert.Equal(t, 110, b.Mon(h2).HP) // 160 - 50
	assert.Equal(t, 144, b.Mon(h1).HP) // 160 - 16 recoil
	assert.Equal(t, 1, countLines(lines, "recoil"))
}

func TestStepBraveBirdRecoilCanFaintUser(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{responses: []int32{1, 8}}
	b, h1, h2 := newTestBattle(t, store, prng, "brave-bird")
	b.Mon(h1).HP = 10 // recoil (16) exceeds remaining HP

	_, err := b.Step(map[MonHandle]Choice{
		h1: {Kind: ChoiceMove, Mon: h1, MoveSlot: 0, Target: invalidHandle},
	})
	require.NoError(t, err)

	assert.Equal(t, 110, b.Mon(h2).HP)
	assert.Equal(t, 0, b.Mon(h1).HP)
	assert.True(t, b.Mon(h1).Fainted)
}

func TestStepGigaDrainHealsUser(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{responses: []int32{1, 8}} // crit roll, random factor
	b, h1, h2 := newTestBattle(t, store, prng, "giga-drain")
	b.Mon(h1).HP = 100 // simulate prior damage so the heal is visible

	lines, err := b.Step(map[MonHandle]Choice{
		h1: {Kind: ChoiceMove, Mon: h1, MoveSlot: 0, Target: invalidHandle},
	})
	require.NoError(t, err)

	assert.Equal(t, 95, b.Mon(h2).HP) // 160 - 65 (supereffective vs water)
	assert.Equal(t, 132, b.Mon(h1).HP) // 100 + 32 drain
	assert.Equal(t, 1, countLines(lines, "drain"))
}

func TestStepEmberSecondaryEffectBurnsOnRoll(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{responses: []int32{
		1, 8, // crit roll, random factor
		5, // secondary effect roll, < chance_num of 10, so it lands
	}}
	b, h1, h2 := newTestBattle(t, store, prng, "ember")

	_, err := b.Step(map[MonHandle]Choice{
		h1: {Kind: ChoiceMove, Mon: h1, MoveSlot: 0, Target: invalidHandle},
	})
	require.NoError(t, err)

	assert.Equal(t, 137, b.Mon(h2).HP) // 160 - 13 from the hit, - 10 from this same turn's burn residual tick
	assert.Equal(t, Status("brn"), b.Mon(h2).Status)
}

func TestStepEmberSecondaryEffectMissesOnRoll(t *testing.T) {
	store := newTestStore(t)
	prng := &scriptedPRNG{responses: []int32{
		1, 8, // crit roll, random factor
		50, // secondary effect roll, >= chance_num of 10, so it misses
	}}
	b, h1, h2 := newTestBattle(t, store, prng, "ember")

	_, err := b.Step(map[MonHandle]Choice{
		h1: {Kind: ChoiceMove, Mon: h1, MoveSlot: 0, Target: invalidHandle},
	})
	require.NoError(t, err)

	assert.Equal(t, 147, b.Mon(h2).HP)
	assert.Equal(t, StatusNone, b.Mon(h2).Status)
}
