package battle

import "github.com/jackson-nestelroad/battler-go/internal/schema"

// MoveSlot is one entry of a Mon's moveset: the move ID plus remaining/max
// PP and a Disabled flag a condition can set (Disable, Torment, Taunt are
// all expressed through this one flag plus a reason string for logging).
type MoveSlot struct {
	ID       string
	PP       int
	MaxPP    int
	Disabled bool
	DisabledReason string
}

// Status is a Mon's major status condition: none, or one of
// brn/par/psn/tox/slp/frz (§3.1). Stored as a condition ID so the registry
// can attach arbitrary StatusData alongside it (sleep turn counters, toxic
// counters) the same way any other condition instance works.
type Status string

const StatusNone Status = ""

// Mon is one Pokemon on a team (§3.1). It never moves between arenas for
// its whole life: handles into the Mon slice are stable for the battle.
type Mon struct {
	Handle MonHandle
	Owner  PlayerHandle

	Species *schema.SpeciesData
	Name    string
	Level   int
	Gender  string
	Nature  string
	Shiny   bool

	IVs StatTable
	EVs StatTable

	Moves []MoveSlot

	BaseStats schema.StatTable
	Stats     schema.StatTable
	Boosts    schema.BoostTable
	Types     []string

	Ability           string
	AbilitySuppressed bool
	Item              string
	ItemSuppressed    bool
	ItemKnockedOff    bool

	HP    int
	MaxHP int

	Status     Status
	StatusData ConditionInstanceHandle

	// TeamPosition is the fixed index in the owner's original team order,
	// used for Illusion-style identity checks and team-preview ordering.
	TeamPosition int
	// ActiveSlot is this Mon's current position on the field, or
	// invalidHandle (-1) while benched. Side/slot together give the
	// fxlang-facing "position" used by spread-move targeting (§9).
	ActiveSlot int
	Side       SideHandle

	Volatiles map[string]ConditionInstanceHandle

	Fainted            bool
	SwitchedInThisTurn bool
	MovedThisTurn      bool
	LastMoveUsed       string
	LastTargetSlot     int

	// Transformed/Illusion forme override; empty means Species.ID.
	Forme string
}

// StatTable mirrors schema.StatTable; kept as a distinct alias so IV/EV
// tables read naturally at call sites without importing schema twice.
type StatTable = schema.StatTable

// Active reports whether the Mon currently occupies a field slot.
func (m *Mon) Active() bool { return m.ActiveSlot != invalidHandle }

// Volatile returns the instance handle for a volatile by condition ID, and
// whether the Mon currently carries it.
func (m *Mon) Volatile(id string) (ConditionInstanceHandle, bool) {
	h, ok := m.Volatiles[id]
	return h, ok
}

// EffectiveAbility returns the Mon's ability ID, or "" if it is currently
// suppressed (Gastro Acid, Neutralizing Gas, etc.).
func (m *Mon) EffectiveAbility() string {
	if m.AbilitySuppressed {
		return ""
	}
	return m.Ability
}

// EffectiveItem returns the Mon's held item ID, or "" if it has none,
// it was knocked off/consumed, or it is currently suppressed (Embargo).
func (m *Mon) EffectiveItem() string {
	if m.ItemSuppressed || m.ItemKnockedOff || m.Item == "" {
		return ""
	}
	return m.Item
}

// HasAbility reports whether the Mon's currently-active ability is id.
func (m *Mon) HasAbility(id string) bool {
	return m.EffectiveAbility() == id
}

// HasType reports whether t is among the Mon's current types.
func (m *Mon) HasType(t string) bool {
	for _, got := range m.Types {
		if got == t {
			return true
		}
	}
	return false
}
