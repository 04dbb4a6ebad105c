package battle

import (
	"github.com/jackson-nestelroad/battler-go/internal/fxlang"
	"github.com/jackson-nestelroad/battler-go/internal/schema"
)

// DataSource is everything the battle package needs from the external data
// collaborator (§6.2). internal/data.Store implements this; battle itself
// never imports internal/data, breaking what would otherwise be a cycle
// (data depends on schema+fxlang, battle depends on schema+fxlang, and only
// cmd/battlesim needs to see both at once).
type DataSource interface {
	Move(id string) (*schema.MoveData, bool)
	Ability(id string) (*schema.AbilityData, bool)
	Item(id string) (*schema.ItemData, bool)
	Species(id string) (*schema.SpeciesData, bool)
	Condition(id string) (*schema.ConditionData, bool)
	Clause(id string) (*schema.ClauseData, bool)
	Format(id string) (*schema.FormatData, bool)

	// ParsedCallbacks parses (or returns the cached parse of) one effect
	// template's raw callbacks map into an executable fxlang program table
	// (§3.3). kind disambiguates IDs that collide across effect types.
	ParsedCallbacks(kind, id string, raw schema.Callbacks) (fxlang.CallbackTable, error)
}
