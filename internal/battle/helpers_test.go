package battle

import (
	"testing"

	"go.uber.org/zap/zaptest"

	"github.com/jackson-nestelroad/battler-go/internal/data"
	"github.com/jackson-nestelroad/battler-go/internal/schema"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// scriptedPRNG replays a fixed sequence of Range responses, falling back to
// always returning lo once exhausted — deterministic enough to pin exact
// damage/accuracy/crit outcomes in a test without depending on any
// particular math/rand algorithm.
type scriptedPRNG struct {
	responses []int32
	calls     int
}

func (p *scriptedPRNG) UniformU32() uint32 { return 0 }

func (p *scriptedPRNG) Range(lo, hi int32) int32 {
	if hi <= lo {
		return lo
	}
	if p.calls < len(p.responses) {
		v := p.responses[p.calls]
		p.calls++
		if v < lo {
			return lo
		}
		if v >= hi {
			return hi - 1
		}
		return v
	}
	p.calls++
	return lo
}

var _ value.PRNG = (*scriptedPRNG)(nil)

// newTestStore returns a data.Store populated directly from the testdata
// fixture tree shared with the rest of the module (../../testdata relative
// to this package), so battle-package tests exercise real fxlang programs
// instead of synthetic stand-ins.
func newTestStore(t *testing.T) *data.Store {
	t.Helper()
	store, err := data.NewLoader("../../testdata").Load(t.Context())
	if err != nil {
		t.Fatalf("loading testdata: %v", err)
	}
	return store
}

func testMon(store *data.Store, speciesID, moveID string, maxHP int) *Mon {
	species, ok := store.Species(speciesID)
	if !ok {
		species = &schema.SpeciesData{ID: speciesID, Name: speciesID, Types: []string{"normal"}}
	}
	move, _ := store.Move(moveID)
	maxPP := 35
	if move != nil {
		maxPP = move.PP
	}
	stats := schema.StatTable{HP: maxHP, Atk: 70, Def: 70, SpA: 70, SpD: 70, Spe: 70}
	return &Mon{
		Species:   species,
		Name:      species.Name,
		Level:     50,
		Types:     species.Types,
		BaseStats: stats,
		Stats:     stats,
		HP:        maxHP,
		MaxHP:     maxHP,
		Moves:     []MoveSlot{{ID: moveID, PP: maxPP, MaxPP: maxPP}},
	}
}

// newTestBattle builds a two-player singles battle with one mon per side,
// each initially knowing moveID, backed by store and driven by prng.
func newTestBattle(t *testing.T, store *data.Store, prng value.PRNG, moveID string) (b *Battle, h1, h2 MonHandle) {
	t.Helper()
	var err error
	b, err = NewBattle(Config{
		Data:   store,
		PRNG:   prng,
		Logger: zaptest.NewLogger(t),
		Sides:  2,
		Slots:  1,
	})
	if err != nil {
		t.Fatalf("NewBattle: %v", err)
	}
	p1 := b.AddPlayer("P1", 0)
	p2 := b.AddPlayer("P2", 1)

	mon1 := testMon(store, "charmander", moveID, 160)
	mon2 := testMon(store, "squirtle", moveID, 160)

	h1 = b.AddMon(p1, mon1)
	h2 = b.AddMon(p2, mon2)
	b.PlaceActive(h1, 0, 0)
	b.PlaceActive(h2, 1, 0)
	return b, h1, h2
}
