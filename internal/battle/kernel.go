package battle

import (
	"github.com/jackson-nestelroad/battler-go/internal/fxlang"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// candidate is one effect's contribution to a single event dispatch: the
// identity of the effect holder (for seeding $effect_holder and for
// GetMember/SetMember routing), the parsed callback itself, and the sort
// key fields §4.6 step 3 defines ordering by.
type candidate struct {
	Effect   EffectHandle
	Holder   value.Value
	Program  *fxlang.Program
	Order    int
	Priority int
	SubOrder int
	Speed    int32
	// Instance is non-nil when this candidate is a condition (status,
	// volatile, side/slot condition, or field weather/terrain/pseudo-weather),
	// letting its callback's add_volatile/etc. calls link new instances to it.
	Instance *ConditionInstance
}

// dispatchCmp orders two candidates per §4.6 step 3: order ascending,
// priority descending, sub_order ascending, speed descending. Returns 0 when
// every field ties, signaling the caller to break the tie with the PRNG.
func dispatchCmp(a, b candidate) int {
	if a.Order != b.Order {
		return a.Order - b.Order
	}
	if a.Priority != b.Priority {
		return b.Priority - a.Priority
	}
	if a.SubOrder != b.SubOrder {
		return a.SubOrder - b.SubOrder
	}
	if a.Speed != b.Speed {
		return int(b.Speed - a.Speed)
	}
	return 0
}

// dispatchSort is an insertion sort that resolves ties no deterministic
// field can break by consulting the battle's PRNG, giving §4.6's
// "PRNG tiebreak" a concrete, deterministic-given-seed meaning: a coin flip
// per adjacent comparison rather than an unstable full shuffle.
func dispatchSort(cands []candidate, prng value.PRNG) {
	for i := 1; i < len(cands); i++ {
		j := i
		for j > 0 {
			c := dispatchCmp(cands[j-1], cands[j])
			if c < 0 {
				break
			}
			if c == 0 && prng.Range(0, 2) == 0 {
				break
			}
			cands[j-1], cands[j] = cands[j], cands[j-1]
			j--
		}
	}
}

// lessCandidate and sortCandidates give non-event callers (Residual's
// end-of-turn tick) the same ordering primitive without building a
// candidate slice of their own.
func lessCandidate(orderA, priorityA, subA int, speedA int32, orderB, priorityB, subB int, speedB int32, prng value.PRNG) bool {
	c := dispatchCmp(
		candidate{Order: orderA, Priority: priorityA, SubOrder: subA, Speed: speedA},
		candidate{Order: orderB, Priority: priorityB, SubOrder: subB, Speed: speedB},
	)
	if c != 0 {
		return c < 0
	}
	return prng.Range(0, 2) == 1
}

func sortCandidates(n int, less func(i, j int) bool, swap func(i, j int)) {
	for i := 1; i < n; i++ {
		for j := i; j > 0 && less(j, j-1); j-- {
			swap(j-1, j)
		}
	}
}

// collectCandidates gathers every currently-attached effect that defines a
// callback for event, across the field, both sides, every active mon's
// ability/item/status/volatiles, and any in-flight active moves (§4.6 step
// 1-2). Fainted mons and empty field slots contribute nothing.
func (b *Battle) collectCandidates(event string) []candidate {
	var out []candidate

	add := func(effect EffectHandle, holder value.Value, table fxlang.CallbackTable, speed int32, inst *ConditionInstance) {
		prog, ok := table[event]
		if !ok {
			return
		}
		out = append(out, candidate{Effect: effect, Holder: holder, Program: prog, Order: prog.Order, Priority: prog.Priority, SubOrder: prog.SubOrder, Speed: speed, Instance: inst})
	}

	for id, h := range b.field.Conditions {
		inst, ok := b.conditionInstances.Get(int(h))
		if !ok {
			continue
		}
		add(ConditionEffect(id), handleValue(value.HandleField, 0), inst.Table, 0, inst)
	}

	for si, side := range b.field.Sides {
		for id, h := range side.Conditions {
			inst, ok := b.conditionInstances.Get(int(h))
			if !ok {
				continue
			}
			add(ConditionEffect(id), handleValue(value.HandleSide, SideHandle(si)), inst.Table, 0, inst)
		}
	}

	for _, m := range b.mons {
		if m.Fainted {
			continue
		}
		monHandleVal := handleValue(value.HandleMon, m.Handle)
		speed := int32(m.Stats.Spe)

		if ab := m.EffectiveAbility(); ab != "" {
			if data, ok := b.data.Ability(ab); ok {
				if table, err := b.data.ParsedCallbacks("ability", ab, data.Callbacks); err == nil {
					add(AbilityEffect(ab), monHandleVal, table, speed, nil)
				}
			}
		}
		if it := m.EffectiveItem(); it != "" {
			if data, ok := b.data.Item(it); ok {
				if table, err := b.data.ParsedCallbacks("item", it, data.Callbacks); err == nil {
					add(ItemEffect(it), monHandleVal, table, speed, nil)
				}
			}
		}
		if m.Status != StatusNone {
			if data, ok := b.data.Condition(string(m.Status)); ok {
				if table, err := b.data.ParsedCallbacks("condition", string(m.Status), data.Callbacks); err == nil {
					var inst *ConditionInstance
					if h, ok := m.Volatiles[string(m.Status)]; ok {
						inst, _ = b.conditionInstances.Get(int(h))
					}
					add(ConditionEffect(string(m.Status)), monHandleVal, table, speed, inst)
				}
			}
		}
		for id, h := range m.Volatiles {
			inst, ok := b.conditionInstances.Get(int(h))
			if !ok {
				continue
			}
			add(ConditionEffect(id), monHandleVal, inst.Table, speed, inst)
		}
	}

	b.activeMoves.Each(func(idx int, am *ActiveMove) {
		data, ok := b.data.Move(am.ID)
		if !ok {
			return
		}
		table, err := b.data.ParsedCallbacks("move", am.ID, data.Callbacks)
		if err != nil {
			return
		}
		add(ActiveMoveEffect(am.ID, ActiveMoveHandle(idx)), handleValue(value.HandleActiveMove, ActiveMoveHandle(idx)), table, 0, nil)
	})

	return out
}

// RunEvent dispatches event across every currently-attached effect,
// combining results per its class (§4.6 step 4-5): Modifier chains the
// relay value through each candidate, Predicate stops at the first falsy
// or undefined result, State returns the first defined result and
// Broadcast aborts on the first explicit falsy result (both otherwise run
// every candidate), and Single runs only the highest-priority candidate.
//
// seed supplies the event's input tuple (e.g. $damage, $move, $user,
// $target for ModifyDamage); relayKey names which seed entry (if any) is
// the value threaded through a Modifier chain.
func (b *Battle) RunEvent(event string, seed map[string]value.Value, relayKey string) (value.Value, error) {
	cands := b.collectCandidates(event)
	if len(cands) == 0 {
		if relayKey != "" {
			return seed[relayKey], nil
		}
		return value.Undefined, nil
	}
	dispatchSort(cands, b.prng)

	class := classOf(event)
	if class == ClassSingle {
		cands = cands[:1]
	}

	relay := value.Undefined
	if relayKey != "" {
		relay = seed[relayKey]
	}

	for _, c := range cands {
		vars := make(map[string]value.Value, len(seed)+2)
		for k, v := range seed {
			vars[k] = v
		}
		vars["effect_holder"] = c.Holder
		if relayKey != "" {
			vars[relayKey] = relay
		}

		ctx := b.newEventContext(c.Effect, c.Holder, c.Instance)
		ev := fxlang.NewEvaluator(ctx, b.functions, vars)
		result, err := ev.Run(c.Program.Body)
		if err != nil {
			b.logProgramError(c.Effect.ID, event, err)
			continue
		}

		switch class {
		case ClassModifier:
			if !result.IsUndefined() {
				relay = result
			}
		case ClassPredicate:
			if result.IsUndefined() || !result.Truthy() {
				return result, nil
			}
		case ClassSingle:
			return result, nil
		case ClassState:
			// First callback with an opinion wins; the rest never run.
			if !result.IsUndefined() {
				return result, nil
			}
		case ClassBroadcast:
			// An explicit falsy return aborts the remaining candidates
			// (e.g. a Damage listener vetoing further broadcasts after a
			// substitute absorbs the hit); Undefined just means "no
			// opinion" and dispatch continues.
			if !result.IsUndefined() && !result.Truthy() {
				return result, nil
			}
		}
	}

	if relayKey != "" {
		return relay, nil
	}
	return value.Undefined, nil
}
