package battle

import (
	"github.com/jackson-nestelroad/battler-go/internal/schema"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// ActiveMove is a live move execution (§3.1, §3.3): created when a move
// begins resolving, carrying the move's data plus every in-flight override
// (BasePower/Category/Type changes from abilities, Crit, per-hit damage
// bookkeeping), and destroyed — its arena slot recycled — once the move
// finishes, per the arena/handle design of §9.
type ActiveMove struct {
	Handle ActiveMoveHandle
	ID     string
	Data   *schema.MoveData

	User    MonHandle
	Targets []MonHandle

	BasePower int
	Category  string
	Type      string
	Accuracy  int
	Priority  int
	CritRatio int
	Crit      bool

	HitCount    int
	TotalDamage map[MonHandle]int

	// EffectState is this move instance's private scratch object, visible
	// to its own callbacks across the whole execution as $effect_state
	// (§4.4).
	EffectState *value.Object

	// infiltrates/ignoresAbility and similar one-off flags a callback can
	// set mid-execution (Infiltrator, Mold Breaker) live here rather than
	// in Data, since Data is shared template state.
	Infiltrates    bool
	IgnoresAbility bool

	// SwitchStrike is true when this move is activating out of turn order
	// via BeforeSwitchOut against a mon that is in the middle of switching
	// out (§4.7 step 4, e.g. Pursuit), letting its own ModifyBasePower
	// callback condition the doubled-power rule on this specific activation
	// rather than every normal use of the move.
	SwitchStrike bool
}

// newActiveMove seeds a fresh instance from a move template, ready for
// insertion into the Battle's ActiveMove arena.
func newActiveMove(id string, data *schema.MoveData, user MonHandle, targets []MonHandle) *ActiveMove {
	return &ActiveMove{
		ID:          id,
		Data:        data,
		User:        user,
		Targets:     append([]MonHandle(nil), targets...),
		BasePower:   data.BasePower,
		Category:    data.Category,
		Type:        data.Type,
		Accuracy:    data.Accuracy,
		Priority:    data.Priority,
		CritRatio:   data.CritRatio,
		TotalDamage: make(map[MonHandle]int),
		EffectState: value.NewObject(),
	}
}

// HasFlag reports whether the move's data carries the named flag
// (contact, sound, protect-bypassing, etc., §3.1).
func (am *ActiveMove) HasFlag(flag string) bool {
	if am.Data == nil || am.Data.Flags == nil {
		return false
	}
	return am.Data.Flags[flag]
}
