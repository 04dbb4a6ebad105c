package main

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/jackson-nestelroad/battler-go/internal/battle"
	"github.com/jackson-nestelroad/battler-go/internal/data"
	"github.com/jackson-nestelroad/battler-go/internal/schema"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// runScriptedDemo wires up a minimal two-mon singles battle from whatever
// testdata the Store was loaded with and plays up to 20 turns of a fixed,
// simple move script, stopping early once either mon faints — enough to
// exercise the whole Step pipeline
// end to end without a human driving it.
func runScriptedDemo(store *data.Store, prng value.PRNG, logger *zap.Logger) (*battle.Battle, error) {
	format := &schema.FormatData{ID: "demo", Clauses: nil}
	b, err := battle.NewBattle(battle.Config{
		Data:   store,
		PRNG:   prng,
		Logger: logger,
		Format: battle.NewFormat(format),
		Sides:  2,
		Slots:  1,
	})
	if err != nil {
		return nil, err
	}

	p1 := b.AddPlayer("Red", 0)
	p2 := b.AddPlayer("Blue", 1)

	mon1 := mustMon(store, "charmander", "tackle")
	mon2 := mustMon(store, "squirtle", "tackle")

	if err := b.Format().ValidateTeam([]*battle.Mon{mon1}); err != nil {
		return nil, err
	}
	if err := b.Format().ValidateTeam([]*battle.Mon{mon2}); err != nil {
		return nil, err
	}

	h1 := b.AddMon(p1, mon1)
	h2 := b.AddMon(p2, mon2)
	b.PlaceActive(h1, 0, 0)
	b.PlaceActive(h2, 1, 0)

	for turn := 0; turn < 20; turn++ {
		m1, m2 := b.Mon(h1), b.Mon(h2)
		if m1.Fainted || m2.Fainted {
			break
		}
		choices := map[battle.MonHandle]battle.Choice{
			h1: {Kind: battle.ChoiceMove, Mon: h1, MoveSlot: 0, Target: h2},
			h2: {Kind: battle.ChoiceMove, Mon: h2, MoveSlot: 0, Target: h1},
		}
		if _, err := b.Step(choices); err != nil {
			return b, fmt.Errorf("turn %d: %w", turn, err)
		}
	}
	return b, nil
}

func mustMon(store *data.Store, speciesID, moveID string) *battle.Mon {
	species, ok := store.Species(speciesID)
	if !ok {
		species = &schema.SpeciesData{ID: speciesID, Name: speciesID, Types: []string{"normal"}, BaseStats: schema.StatTable{HP: 100, Atk: 70, Def: 70, SpA: 70, SpD: 70, Spe: 70}}
	}
	move, ok := store.Move(moveID)
	maxPP := 35
	if ok {
		maxPP = move.PP
	}
	stats := species.BaseStats
	return &battle.Mon{
		Species:   species,
		Name:      species.Name,
		Level:     50,
		Types:     species.Types,
		BaseStats: stats,
		Stats:     stats,
		HP:        stats.HP,
		MaxHP:     stats.HP,
		Moves:     []battle.MoveSlot{{ID: moveID, PP: maxPP, MaxPP: maxPP}},
	}
}
