package battle

import (
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/jackson-nestelroad/battler-go/internal/fxlang"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// Battle is the engine's root object: the whole of a single battle's state
// plus the collaborators it was constructed with (§6.1). Step checks
// corrupted first and returns ErrCorrupted once a state invariant
// violation has poisoned the battle (§7); the other exported methods do
// not check it.
type Battle struct {
	id      string
	field   *Field
	mons    []*Mon
	players []*Player

	conditionInstances *arena[*ConditionInstance]
	activeMoves        *arena[*ActiveMove]

	data      DataSource
	prng      value.PRNG
	functions fxlang.FunctionTable
	logger    *zap.Logger
	log       *Log

	format *Format

	corrupted error
	outcome *Outcome
}

// Outcome records how the battle concluded by a path other than every mon
// on a side fainting — an escape or a forfeit (§4.7 step 4, §6.1's
// `escape`/`forfeit` choices) — which Requests() has no other way to
// surface to the external driver.
type Outcome struct {
	Kind   string // "escape" or "forfeit"
	Player PlayerHandle
}

// Outcome returns how the battle ended outside the normal last-mon-standing
// path, or nil if it hasn't (yet).
func (b *Battle) Outcome() *Outcome { return b.outcome }

// Config bundles the construction-time parameters a Battle needs beyond
// the team data itself (§6.1's new_battle).
type Config struct {
	Data    DataSource
	PRNG    value.PRNG
	Logger  *zap.Logger
	Format  *Format
	Sides   int // 2 for a standard battle
	Slots   int // 1 singles, 2 doubles
}

// NewBattle constructs an empty battle shell: field, arenas, and the merged
// builtin function table (fxlang's domain-agnostic base plus battle's own
// introspection/mutation/logging builtins, §4.3). Mons and players are
// added afterward via AddPlayer/AddMon before the battle is started.
func NewBattle(cfg Config) (*Battle, error) {
	if cfg.Data == nil {
		return nil, fmt.Errorf("battle: NewBattle requires a DataSource")
	}
	if cfg.PRNG == nil {
		return nil, fmt.Errorf("battle: NewBattle requires a PRNG")
	}
	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	sides := cfg.Sides
	if sides == 0 {
		sides = 2
	}
	slots := cfg.Slots
	if slots == 0 {
		slots = 1
	}

	b := &Battle{
		id:                 uuid.NewString(),
		field:              newField(sides, slots),
		conditionInstances: newArena[*ConditionInstance](),
		activeMoves:        newArena[*ActiveMove](),
		data:               cfg.Data,
		prng:               cfg.PRNG,
		logger:             logger,
		log:                newLog(),
		format:             cfg.Format,
	}
	b.functions = mergeFunctions(fxlang.BaseFunctions(), b.domainFunctions())
	b.logger.Info("battle created", zap.String("battle_id", b.id), zap.Int("sides", sides), zap.Int("slots", slots))

	if b.format != nil {
		for _, clauseID := range b.format.Clauses {
			if _, ok := cfg.Data.Clause(clauseID); ok {
				if _, err := b.AddCondition(OwnerField, invalidHandle, invalidHandle, 0, clauseID, ClauseEffect(clauseID), invalidHandle); err != nil {
					b.logger.Warn("failed to attach format clause", zap.String("clause", clauseID), zap.Error(err))
				}
			}
		}
	}

	return b, nil
}

func mergeFunctions(tables ...fxlang.FunctionTable) fxlang.FunctionTable {
	out := make(fxlang.FunctionTable)
	for _, t := range tables {
		for k, v := range t {
			out[k] = v
		}
	}
	return out
}

// Corrupted reports whether a prior state invariant violation has poisoned
// this battle (§7).
func (b *Battle) Corrupted() error { return b.corrupted }

// poison marks the battle corrupted and logs the violating error; every
// exported method must check Corrupted() before doing any further work.
func (b *Battle) poison(err error) error {
	b.corrupted = err
	b.logger.Error("battle state invariant violated; battle corrupted", zap.Error(err))
	return err
}

func (b *Battle) logProgramError(effectID, event string, err error) {
	wrapped := ProgramError(effectID, event, err)
	b.logger.Warn("fxlang program error", zap.String("effect", effectID), zap.String("event", event), zap.Error(wrapped))
}

// Mon returns the Mon for handle h. Panics if h is out of range, which
// should never happen for a handle the engine itself produced; callers
// crossing the choice/request boundary must validate handles first
// (§7: a ChoiceError, not a panic, is the right response to untrusted
// input).
func (b *Battle) Mon(h MonHandle) *Mon { return b.mons[h] }

func (b *Battle) Field() *Field { return b.field }

func (b *Battle) Format() *Format { return b.format }

// ID returns the battle's unique identifier, generated once at construction
// time for correlating its log lines across a spectator feed or store.
func (b *Battle) ID() string { return b.id }

// AddPlayer registers a new player occupying the given side, returning its
// handle.
func (b *Battle) AddPlayer(name string, side SideHandle) PlayerHandle {
	h := PlayerHandle(len(b.players))
	b.players = append(b.players, &Player{Handle: h, Name: name, Side: side, Bag: make(map[string]int)})
	return h
}

// AddMon appends a new Mon to a player's team roster (benched; not yet
// placed in an active slot). Returns its stable handle.
func (b *Battle) AddMon(owner PlayerHandle, mon *Mon) MonHandle {
	h := MonHandle(len(b.mons))
	mon.Handle = h
	mon.Owner = owner
	mon.ActiveSlot = invalidHandle
	if mon.Volatiles == nil {
		mon.Volatiles = make(map[string]ConditionInstanceHandle)
	}
	b.mons = append(b.mons, mon)
	b.players[owner].Team = append(b.players[owner].Team, h)
	return h
}

// PlaceActive puts a benched mon directly into a field slot, for initial
// team-preview lead selection before the first turn (as opposed to
// executeSwitch, which additionally runs the SwitchOut/SwitchIn broadcasts
// a mid-battle switch requires).
func (b *Battle) PlaceActive(mh MonHandle, side SideHandle, slot int) {
	m := b.mons[mh]
	m.Side = side
	m.ActiveSlot = slot
	b.field.Sides[side].Active[slot] = mh
}
