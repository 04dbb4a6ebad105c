// Package data implements the engine's external-data collaborator (§6.2):
// loading move/ability/item/species/condition/clause/format JSON, resolving
// `delegates` callback inheritance, and parsing+caching each effect's
// fxlang callback programs.
package data

import (
	"fmt"

	"github.com/jackson-nestelroad/battler-go/internal/fxlang"
	"github.com/jackson-nestelroad/battler-go/internal/schema"
)

// defaultCacheSize bounds the fxlang AST cache (§3.3). Sized generously
// above any realistic single-format roster so a full battle never evicts a
// callback table it will need again this battle.
const defaultCacheSize = 4096

// Store is the in-memory data collaborator a Battle is constructed with. It
// satisfies battle.DataSource.
type Store struct {
	Moves      map[string]*schema.MoveData
	Abilities  map[string]*schema.AbilityData
	Items      map[string]*schema.ItemData
	SpeciesMap map[string]*schema.SpeciesData
	Conditions map[string]*schema.ConditionData
	Clauses    map[string]*schema.ClauseData
	Formats    map[string]*schema.FormatData

	cache *fxlang.Cache
}

// NewStore constructs an empty store; use Loader to populate one from disk,
// or populate the maps directly for tests.
func NewStore() *Store {
	return &Store{
		Moves:      make(map[string]*schema.MoveData),
		Abilities:  make(map[string]*schema.AbilityData),
		Items:      make(map[string]*schema.ItemData),
		SpeciesMap: make(map[string]*schema.SpeciesData),
		Conditions: make(map[string]*schema.ConditionData),
		Clauses:    make(map[string]*schema.ClauseData),
		Formats:    make(map[string]*schema.FormatData),
		cache:      fxlang.NewCache(defaultCacheSize),
	}
}

func (s *Store) Move(id string) (*schema.MoveData, bool)         { v, ok := s.Moves[id]; return v, ok }
func (s *Store) Ability(id string) (*schema.AbilityData, bool)   { v, ok := s.Abilities[id]; return v, ok }
func (s *Store) Item(id string) (*schema.ItemData, bool)         { v, ok := s.Items[id]; return v, ok }
func (s *Store) Species(id string) (*schema.SpeciesData, bool) { v, ok := s.SpeciesMap[id]; return v, ok }
func (s *Store) Condition(id string) (*schema.ConditionData, bool) {
	v, ok := s.Conditions[id]
	return v, ok
}
func (s *Store) Clause(id string) (*schema.ClauseData, bool) { v, ok := s.Clauses[id]; return v, ok }
func (s *Store) Format(id string) (*schema.FormatData, bool) { v, ok := s.Formats[id]; return v, ok }

// ParsedCallbacks returns the parsed, cached callback table for one
// effect's raw callbacks map, keyed by a (kind, id) pair so a move and a
// condition that happen to share an ID never collide in the cache (§3.3,
// §4.2).
func (s *Store) ParsedCallbacks(kind, id string, raw schema.Callbacks) (fxlang.CallbackTable, error) {
	key := kind + ":" + id
	if table, ok := s.cache.Get(key); ok {
		return table, nil
	}
	table := make(fxlang.CallbackTable, len(raw))
	for event, spec := range raw {
		body, err := fxlang.ParseProgram(spec.Program)
		if err != nil {
			return nil, fmt.Errorf("data: parsing %s callback for %s: %w", event, key, err)
		}
		table[event] = &fxlang.Program{
			Order:    spec.Order,
			Priority: spec.Priority,
			SubOrder: spec.SubOrder,
			Body:     body,
		}
	}
	s.cache.Put(key, table)
	return table, nil
}
