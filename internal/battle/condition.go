package battle

import (
	"github.com/jackson-nestelroad/battler-go/internal/fxlang"
	"github.com/jackson-nestelroad/battler-go/internal/schema"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// OwnerKind tags what a ConditionInstance is attached to (§3.1's statuses,
// volatiles, side conditions, slot conditions, weather, terrain,
// pseudo-weather are all one underlying shape, differing only in owner).
type OwnerKind int

const (
	OwnerMon OwnerKind = iota
	OwnerSide
	OwnerSlot
	OwnerField
)

// ConditionInstance is one attached condition: a template reference plus
// per-attachment mutable state (duration, effect-local scratch object,
// source bookkeeping for interactions like Leech Seed's pair-link or
// Disable's move-slot link), per §4.5.
type ConditionInstance struct {
	Handle ConditionInstanceHandle
	ID     string
	Data   *schema.ConditionData
	Table  fxlang.CallbackTable

	Owner      OwnerKind
	OwnerMon   MonHandle
	OwnerSide  SideHandle
	OwnerSlot  int

	Duration int // remaining turns; -1 means indefinite until explicitly removed

	// Source identifies the effect (usually a move or ability) that
	// caused this condition to be attached, for interactions that key off
	// "the move that caused this" (Rapid Spin clearing, Baton Pass carry).
	Source    EffectHandle
	SourceMon MonHandle

	EffectState *value.Object

	// linked holds instances attached via the "link" flag on add_volatile
	// (the only builtin that reads that flag), in attachment order. Ending this
	// instance ends each of these in turn (§4.5 Linking), e.g. an
	// "Immobilizing Move" volatile ending both Fly and the Immobilized
	// volatile it attached alongside it.
	linked []ConditionInstanceHandle
}

func newConditionInstance(id string, data *schema.ConditionData, table fxlang.CallbackTable) *ConditionInstance {
	duration := -1
	if data.Duration != nil {
		duration = *data.Duration
	}
	return &ConditionInstance{
		ID:          id,
		Data:        data,
		Table:       table,
		Duration:    duration,
		EffectState: value.NewObject(),
	}
}

// conditionMapFor returns the map a condition of the given owner kind is
// tracked in, plus the owner's composite key, so add/remove share one path
// regardless of attachment target.
func (b *Battle) conditionMapFor(owner OwnerKind, mon MonHandle, side SideHandle, slot int) map[string]ConditionInstanceHandle {
	switch owner {
	case OwnerMon:
		m := b.mons[mon]
		if m.Volatiles == nil {
			m.Volatiles = make(map[string]ConditionInstanceHandle)
		}
		return m.Volatiles
	case OwnerSide:
		return b.field.Sides[side].Conditions
	case OwnerSlot:
		return b.field.Sides[side].SlotConditions[slot]
	default:
		return b.field.Conditions
	}
}

// AddCondition attaches condition id to the given owner (§4.5's add_status/
// add_volatile/add_side_condition/add_slot_condition/add_pseudo_weather,
// unified into one entry point since they differ only in owner kind).
// If the condition is already attached, its Restart callback runs instead
// of re-running Start, matching the "restart on duplicate application"
// rule most conditions need (Leech Seed, Substitute-blocked statuses are
// guarded by the caller via TrySetStatus before ever reaching here).
//
// linkTo, when given a non-nil instance, records the new instance's handle
// on linkTo[0]'s linked list (§4.5 Linking, the "link" flag on
// add_volatile), so that ending linkTo[0] later cascades into ending this
// one too. Only the first element is ever consulted; it is variadic so
// existing call sites that don't link anything stay unchanged.
func (b *Battle) AddCondition(owner OwnerKind, mon MonHandle, side SideHandle, slot int, id string, source EffectHandle, sourceMon MonHandle, linkTo ...*ConditionInstance) (*ConditionInstance, error) {
	data, ok := b.data.Condition(id)
	if !ok {
		return nil, DataError(id, errUnknownCondition)
	}
	table, err := b.data.ParsedCallbacks("condition", id, data.Callbacks)
	if err != nil {
		return nil, DataError(id, err)
	}

	m := b.conditionMapFor(owner, mon, side, slot)
	if existingHandle, exists := m[id]; exists {
		inst, _ := b.conditionInstances.Get(int(existingHandle))
		b.runLifecycle(inst, "Restart", owner, mon, side, slot)
		return inst, nil
	}

	inst := newConditionInstance(id, data, table)
	inst.Source = source
	inst.SourceMon = sourceMon
	inst.Owner = owner
	inst.OwnerMon = mon
	inst.OwnerSide = side
	inst.OwnerSlot = slot
	idx := b.conditionInstances.Insert(inst)
	inst.Handle = ConditionInstanceHandle(idx)
	m[id] = inst.Handle

	if len(linkTo) > 0 && linkTo[0] != nil {
		linkTo[0].linked = append(linkTo[0].linked, inst.Handle)
	}

	b.runDurationOverride(inst, owner, mon, side, slot)
	b.runLifecycle(inst, "Start", owner, mon, side, slot)
	return inst, nil
}

// RemoveCondition detaches condition id from the given owner, running its
// End hook, then cascading into every instance linked to it (§4.5 Linking):
// each linked instance is removed in turn, in the order it was attached,
// which recursively cascades further if any of those have links of their
// own. A condition with no linked instances behaves exactly as before.
func (b *Battle) RemoveCondition(owner OwnerKind, mon MonHandle, side SideHandle, slot int, id string) {
	m := b.conditionMapFor(owner, mon, side, slot)
	h, ok := m[id]
	if !ok {
		return
	}
	inst, ok := b.conditionInstances.Get(int(h))
	if ok {
		b.runLifecycle(inst, "End", owner, mon, side, slot)
	}
	delete(m, id)
	b.conditionInstances.Remove(int(h))

	if !ok {
		return
	}
	linked := inst.linked
	inst.linked = nil
	for _, lh := range linked {
		child, ok := b.conditionInstances.Get(int(lh))
		if !ok {
			continue
		}
		b.RemoveCondition(child.Owner, child.OwnerMon, child.OwnerSide, child.OwnerSlot, child.ID)
	}
}

// Residual runs every attached condition's Residual hook once, in the
// kernel's standard order/priority/speed sort (§4.5, §4.10's end-of-turn
// tick), decrementing Duration afterward and removing any condition whose
// duration has just reached zero.
func (b *Battle) Residual() error {
	type tick struct {
		inst                     *ConditionInstance
		owner                    OwnerKind
		mon                      MonHandle
		side                     SideHandle
		slot                     int
		order, priority, subOrd  int
		speed                    int32
	}
	var ticks []tick

	collect := func(owner OwnerKind, mon MonHandle, side SideHandle, slot int, m map[string]ConditionInstanceHandle, speed int32) {
		for _, h := range m {
			inst, ok := b.conditionInstances.Get(int(h))
			if !ok {
				continue
			}
			prog, ok := inst.Table["Residual"]
			if !ok {
				continue
			}
			ticks = append(ticks, tick{inst, owner, mon, side, slot, prog.Order, prog.Priority, prog.SubOrder, speed})
		}
	}

	collect(OwnerField, invalidHandle, invalidHandle, 0, b.field.Conditions, 0)
	for si, side := range b.field.Sides {
		collect(OwnerSide, invalidHandle, SideHandle(si), 0, side.Conditions, 0)
		for slot, conds := range side.SlotConditions {
			collect(OwnerSlot, invalidHandle, SideHandle(si), slot, conds, 0)
		}
	}
	for _, m := range b.mons {
		if m.Fainted {
			continue
		}
		collect(OwnerMon, m.Handle, m.Side, 0, m.Volatiles, int32(m.Stats.Spe))
	}

	sortCandidates(len(ticks), func(i, j int) bool {
		return lessCandidate(ticks[i].order, ticks[i].priority, ticks[i].subOrd, ticks[i].speed,
			ticks[j].order, ticks[j].priority, ticks[j].subOrd, ticks[j].speed, b.prng)
	}, func(i, j int) { ticks[i], ticks[j] = ticks[j], ticks[i] })

	for _, t := range ticks {
		if t.mon != invalidHandle {
			if m := b.mons[t.mon]; m.Fainted {
				continue
			}
		}
		b.runLifecycle(t.inst, "Residual", t.owner, t.mon, t.side, t.slot)
		if t.inst.Duration > 0 {
			t.inst.Duration--
			if t.inst.Duration == 0 {
				b.RemoveCondition(t.owner, t.mon, t.side, t.slot, t.inst.ID)
			}
		}
	}
	return nil
}

// runDurationOverride invokes a freshly attached condition's Duration hook,
// if it has one, to override the static duration from its data template
// (§4.10: "a Duration callback, when present, overrides the static value").
func (b *Battle) runDurationOverride(inst *ConditionInstance, owner OwnerKind, mon MonHandle, side SideHandle, slot int) {
	prog, ok := inst.Table["Duration"]
	if !ok {
		return
	}
	ctx := b.newConditionContext(inst, owner, mon, side, slot)
	ev := fxlang.NewEvaluator(ctx, b.functions, map[string]value.Value{
		"effect_state":  value.Obj(inst.EffectState),
		"effect_holder": ctx.holder,
	})
	result, err := ev.Run(prog.Body)
	if err != nil {
		b.logProgramError(inst.ID, "Duration", err)
		return
	}
	if n, ok := result.AsFraction(); ok {
		inst.Duration = int(n.Floor())
	}
}

// runLifecycle invokes one named lifecycle hook (Start/Restart/Residual/End)
// on a single condition instance, tolerating its absence.
func (b *Battle) runLifecycle(inst *ConditionInstance, event string, owner OwnerKind, mon MonHandle, side SideHandle, slot int) {
	prog, ok := inst.Table[event]
	if !ok {
		return
	}
	ctx := b.newConditionContext(inst, owner, mon, side, slot)
	ev := fxlang.NewEvaluator(ctx, b.functions, map[string]value.Value{
		"effect_state":  value.Obj(inst.EffectState),
		"effect_holder": ctx.holder,
	})
	if _, err := ev.Run(prog.Body); err != nil {
		b.logProgramError(inst.ID, event, err)
	}
}
