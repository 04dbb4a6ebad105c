package battle

import (
	"sort"
	"strconv"

	"github.com/jackson-nestelroad/battler-go/internal/fxlang"
	"github.com/jackson-nestelroad/battler-go/internal/schema"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// action is one resolved, speed-ordered unit of work for a turn: a switch
// or a move use (§4.7). Switches always resolve before moves; priority and
// speed only order actions within the same kind.
type action struct {
	choice   Choice
	priority int
	speed    int32
}

// Step resolves one full turn given every active mon's submitted choice,
// per §6.1: build the action queue, execute each action in order, run the
// end-of-turn residual tick, and return the newly appended protocol log
// lines. Once the battle is corrupted, Step always fails with
// ErrCorrupted and touches no further state (§7).
func (b *Battle) Step(choices map[MonHandle]Choice) ([]string, error) {
	if b.corrupted != nil {
		return nil, ErrCorrupted
	}
	start := b.log.Len()

	for _, c := range choices {
		if err := b.ValidateChoice(c); err != nil {
			return nil, err
		}
	}

	var switches, preMoves, moves []action
	for _, c := range choices {
		m := b.mons[c.Mon]
		switch c.Kind {
		case ChoiceSwitch:
			switches = append(switches, action{choice: c, speed: int32(m.Stats.Spe)})
		case ChoiceItem, ChoiceEscape, ChoiceForfeit:
			// Item uses, escape, and forfeit all resolve in the same
			// before-moves class as switches (§4.7 step 3), ordered among
			// themselves by speed like any other pre-move action.
			preMoves = append(preMoves, action{choice: c, speed: int32(effectiveSpeed(m))})
		case ChoiceMove:
			data, ok := b.data.Move(m.Moves[c.MoveSlot].ID)
			priority := 0
			if ok {
				priority = data.Priority
			}
			moves = append(moves, action{choice: c, priority: priority, speed: int32(effectiveSpeed(m))})
		}
	}

	sortActions(switches, b.prng)
	sortActions(preMoves, b.prng)
	sortActions(moves, b.prng)

	for _, a := range switches {
		if err := b.executeSwitch(a.choice, &moves); err != nil {
			return nil, b.poison(StateInvariantError(err.Error()))
		}
	}
	for _, a := range preMoves {
		m := b.mons[a.choice.Mon]
		if m.Fainted {
			continue
		}
		var err error
		switch a.choice.Kind {
		case ChoiceItem:
			err = b.executeItem(a.choice)
		case ChoiceEscape:
			err = b.executeEscape(a.choice)
		case ChoiceForfeit:
			err = b.executeForfeit(a.choice)
		}
		if err != nil {
			return nil, b.poison(StateInvariantError(err.Error()))
		}
	}
	for _, a := range moves {
		m := b.mons[a.choice.Mon]
		if m.Fainted {
			continue
		}
		if err := b.executeMove(a.choice); err != nil {
			return nil, b.poison(StateInvariantError(err.Error()))
		}
	}

	if err := b.Residual(); err != nil {
		return nil, b.poison(StateInvariantError(err.Error()))
	}
	b.field.Turn++

	return b.log.Since(start), nil
}

// effectiveSpeed applies paralysis' classic halving on top of the mon's
// boosted speed stat (§4.8's speed-order seed scenario).
func effectiveSpeed(m *Mon) int {
	spe := effectiveStat(m.Stats.Spe, m.Boosts.Spe)
	if m.Status == "par" {
		spe /= 2
	}
	return spe
}

// sortActions orders a slice of actions by priority descending then speed
// descending, with the kernel's same PRNG-coin-flip tiebreak (§4.6, §4.7).
func sortActions(actions []action, prng value.PRNG) {
	sort.SliceStable(actions, func(i, j int) bool {
		if actions[i].priority != actions[j].priority {
			return actions[i].priority > actions[j].priority
		}
		return actions[i].speed > actions[j].speed
	})
	// Resolve exact ties (same priority and speed) with a coin flip per
	// adjacent pair, same mechanism as dispatchSort.
	for i := 1; i < len(actions); i++ {
		if actions[i].priority == actions[i-1].priority && actions[i].speed == actions[i-1].speed {
			if prng.Range(0, 2) == 1 {
				actions[i], actions[i-1] = actions[i-1], actions[i]
			}
		}
	}
}

// executeBeforeSwitchOut looks for a still-queued move on the side opposite
// out that defines a BeforeSwitchOut callback (e.g. Pursuit) and, if found,
// activates it immediately against out — before it leaves the field —
// instead of waiting for its normal turn-order slot (§4.7 step 4, §8's
// "Pursuit on switch" seed scenario). The triggering action is removed from
// moves so it doesn't also fire later this turn.
func (b *Battle) executeBeforeSwitchOut(out *Mon, moves *[]action) error {
	idx := -1
	for i, a := range *moves {
		if a.choice.Kind != ChoiceMove {
			continue
		}
		attacker := b.mons[a.choice.Mon]
		if attacker.Fainted || attacker.Side == out.Side {
			continue
		}
		data, ok := b.data.Move(attacker.Moves[a.choice.MoveSlot].ID)
		if !ok {
			continue
		}
		if _, ok := data.Callbacks["BeforeSwitchOut"]; !ok {
			continue
		}
		idx = i
		break
	}
	if idx == -1 {
		return nil
	}

	triggered := (*moves)[idx]
	*moves = append((*moves)[:idx], (*moves)[idx+1:]...)

	attacker := b.mons[triggered.choice.Mon]
	slot := &attacker.Moves[triggered.choice.MoveSlot]
	data, ok := b.data.Move(slot.ID)
	if !ok {
		return nil
	}

	am := newActiveMove(slot.ID, data, triggered.choice.Mon, []MonHandle{out.Handle})
	am.SwitchStrike = true
	idxArena := b.activeMoves.Insert(am)
	am.Handle = ActiveMoveHandle(idxArena)
	defer b.activeMoves.Remove(idxArena)

	if slot.PP > 0 {
		slot.PP--
	}
	attacker.LastMoveUsed = slot.ID
	attacker.MovedThisTurn = true
	b.log.Append("move", attacker.Name, slot.ID)

	userVal := handleValue(value.HandleMon, triggered.choice.Mon)
	outVal := handleValue(value.HandleMon, out.Handle)
	moveVal := handleValue(value.HandleActiveMove, am.Handle)

	_, err := b.RunEvent("BeforeSwitchOut", map[string]value.Value{"user": userVal, "target": outVal, "move": moveVal}, "")
	return err
}

func (b *Battle) executeSwitch(c Choice, moves *[]action) error {
	out := b.mons[c.Mon]
	in := b.mons[c.SwitchTo]

	if err := b.executeBeforeSwitchOut(out, moves); err != nil {
		return err
	}
	if out.Fainted {
		return nil
	}

	slot := out.ActiveSlot
	side := out.Side

	if _, err := b.RunEvent("SwitchOut", map[string]value.Value{"target": handleValue(value.HandleMon, out.Handle)}, ""); err != nil {
		return err
	}

	out.Volatiles = make(map[string]ConditionInstanceHandle)
	out.ActiveSlot = invalidHandle
	out.SwitchedInThisTurn = false

	in.ActiveSlot = slot
	in.Side = side
	in.SwitchedInThisTurn = true
	b.field.Sides[side].Active[slot] = in.Handle

	b.log.Append("switch", in.Name)
	_, err := b.RunEvent("SwitchIn", map[string]value.Value{"target": handleValue(value.HandleMon, in.Handle)}, "")
	return err
}

// executeItem consumes one use of a bag item (§4.7 step 3, §6.1's `item`
// choice): decrements the player's count, raises the broadcast UseItem
// event so other standing effects can react, then dispatches the item's
// own UseItem callback directly (a bag item has no standing attachment for
// collectCandidates to pick up, unlike a held item's EffectiveItem
// candidate).
func (b *Battle) executeItem(c Choice) error {
	m := b.mons[c.Mon]
	p := b.players[m.Owner]
	data, ok := b.data.Item(c.Item)
	if !ok {
		return DataError(c.Item, errUnknownCondition)
	}

	p.Bag[c.Item]--
	if p.Bag[c.Item] <= 0 {
		delete(p.Bag, c.Item)
	}

	target := c.ItemTarget
	if target == invalidHandle {
		target = c.Mon
	}
	targetVal := handleValue(value.HandleMon, target)
	userVal := handleValue(value.HandleMon, c.Mon)

	b.log.Append("item", m.Name, c.Item)

	if _, err := b.RunEvent("UseItem", map[string]value.Value{"user": userVal, "target": targetVal}, ""); err != nil {
		return err
	}
	return b.runItemUse(c.Item, data, userVal, targetVal)
}

// runItemUse invokes a bag item's own UseItem callback, the same direct
// single-candidate dispatch runLifecycle uses for a condition's lifecycle
// hooks, since a consumed bag item is never attached anywhere for
// collectCandidates to find on its own.
func (b *Battle) runItemUse(id string, data *schema.ItemData, user, target value.Value) error {
	table, err := b.data.ParsedCallbacks("item", id, data.Callbacks)
	if err != nil {
		return DataError(id, err)
	}
	prog, ok := table["UseItem"]
	if !ok {
		return nil
	}
	ctx := b.newEventContext(ItemEffect(id), target, nil)
	ev := fxlang.NewEvaluator(ctx, b.functions, map[string]value.Value{
		"user":   user,
		"target": target,
	})
	if _, err := ev.Run(prog.Body); err != nil {
		b.logProgramError(id, "UseItem", err)
	}
	return nil
}

// executeEscape attempts to flee the battle (§4.7 step 4, §6.1's `escape`
// choice). Escape is a predicate event: an ability or condition can veto it
// outright by returning false (e.g. Shadow Tag's "can't escape" rule).
// Absent a veto, success is rolled with the mainline games' speed-ratio
// formula against the first living foe.
func (b *Battle) executeEscape(c Choice) error {
	m := b.mons[c.Mon]
	userVal := handleValue(value.HandleMon, c.Mon)

	result, err := b.RunEvent("Escape", map[string]value.Value{"user": userVal}, "")
	if err != nil {
		return err
	}
	if !result.IsUndefined() && !result.Truthy() {
		b.log.Append("escape-failed", m.Name)
		return nil
	}

	foeSide := b.field.OtherSide(m.Side)
	var foe *Mon
	for _, mh := range b.field.Sides[foeSide].ActiveMons() {
		if !b.mons[mh].Fainted {
			foe = b.mons[mh]
			break
		}
	}
	if foe == nil {
		b.outcome = &Outcome{Kind: "escape", Player: m.Owner}
		b.log.Append("escape", m.Name)
		return nil
	}

	userSpeed := effectiveSpeed(m)
	foeSpeed := effectiveSpeed(foe)
	if foeSpeed < 1 {
		foeSpeed = 1
	}
	chance := int32(userSpeed*32/foeSpeed + 30)
	if chance > 255 {
		chance = 255
	}
	if b.prng.Range(0, 256) < chance {
		b.outcome = &Outcome{Kind: "escape", Player: m.Owner}
		b.log.Append("escape", m.Name)
		return nil
	}
	b.log.Append("escape-failed", m.Name)
	return nil
}

// executeForfeit immediately concedes the battle for the choosing player
// (§4.7 step 4, §6.1's `forfeit` choice): every mon on their team faints,
// which naturally drives the normal win condition, and the outcome is
// additionally recorded so a forfeit is distinguishable from attrition.
func (b *Battle) executeForfeit(c Choice) error {
	m := b.mons[c.Mon]
	p := b.players[m.Owner]

	if _, err := b.RunEvent("Forfeit", map[string]value.Value{"user": handleValue(value.HandleMon, c.Mon)}, ""); err != nil {
		return err
	}

	b.outcome = &Outcome{Kind: "forfeit", Player: m.Owner}
	b.log.Append("forfeit", p.Name)

	for _, mh := range p.Team {
		if err := b.faintMon(mh); err != nil {
			return err
		}
	}
	return nil
}

func (b *Battle) executeMove(c Choice) error {
	m := b.mons[c.Mon]
	slot := &m.Moves[c.MoveSlot]
	data, ok := b.data.Move(slot.ID)
	if !ok {
		return DataError(slot.ID, errUnknownCondition)
	}

	targets := b.resolveTargets(c, data)
	am := newActiveMove(slot.ID, data, c.Mon, targets)
	idx := b.activeMoves.Insert(am)
	am.Handle = ActiveMoveHandle(idx)
	defer b.activeMoves.Remove(idx)

	m.LastMoveUsed = slot.ID
	m.MovedThisTurn = true

	userVal := handleValue(value.HandleMon, c.Mon)
	moveVal := handleValue(value.HandleActiveMove, am.Handle)
	result, err := b.RunEvent("BeforeMove", map[string]value.Value{"user": userVal, "move": moveVal}, "")
	if err != nil {
		return err
	}
	if !result.IsUndefined() && !result.Truthy() {
		b.log.Append("move-failed", m.Name, slot.ID)
		return nil
	}

	if slot.PP > 0 {
		slot.PP--
	}
	b.log.Append("move", m.Name, slot.ID)

	for _, t := range targets {
		if b.mons[t].Fainted {
			continue
		}
		hit, err := b.CheckAccuracy(am, c.Mon, t)
		if err != nil {
			return err
		}
		if !hit {
			b.log.Append("miss", m.Name, b.mons[t].Name)
			continue
		}

		hitCount := 1
		if data.Multihit != nil {
			hitCount = b.rollMultihit(data.Multihit)
		}

		totalDamage := 0
		for hit := 0; hit < hitCount; hit++ {
			if b.mons[t].Fainted {
				break
			}
			damage, crit, err := b.ComputeDamage(am, c.Mon, t)
			if err != nil {
				return err
			}
			if damage > 0 {
				if _, err := b.fnDamage(nil, nil, []value.Value{handleValue(value.HandleMon, t), value.Int(int32(damage))}, nil); err != nil {
					return err
				}
				totalDamage += damage
				am.HitCount++
				if crit {
					b.log.Append("crit", b.mons[t].Name)
				}
				b.log.Append("damage", b.mons[t].Name, strconv.Itoa(damage))
			}
		}
		am.TotalDamage[t] = totalDamage

		if totalDamage > 0 {
			if err := b.applyRecoilAndDrain(data, c.Mon, totalDamage); err != nil {
				return err
			}
		}

		if _, err := b.RunEvent("Hit", map[string]value.Value{
			"user": userVal, "target": handleValue(value.HandleMon, t), "move": moveVal,
		}, ""); err != nil {
			return err
		}

		if totalDamage > 0 && !b.mons[t].Fainted {
			if err := b.applySecondaryEffects(data, c.Mon, t); err != nil {
				return err
			}
		}
	}

	_, err = b.RunEvent("AfterMove", map[string]value.Value{"user": userVal, "move": moveVal}, "")
	return err
}

// rollMultihit picks a hit count for a multihit move. The classic 2-5 range
// uses the mainline games' weighted roll out of 8 (2 or 3 hits at 3/8 each,
// 4 or 5 hits at 1/8 each); any other [min,max] declared in data rolls
// uniformly.
func (b *Battle) rollMultihit(m *schema.Multihit) int {
	if m.Min == 2 && m.Max == 5 {
		switch roll := b.prng.Range(0, 8); {
		case roll < 3:
			return 2
		case roll < 6:
			return 3
		case roll < 7:
			return 4
		default:
			return 5
		}
	}
	if m.Max <= m.Min {
		return m.Min
	}
	return m.Min + int(b.prng.Range(0, int32(m.Max-m.Min+1)))
}

// applyRecoilAndDrain resolves a move's flat recoil-to-user and
// drain-to-user percentages off the damage just dealt to one target
// (§6.2's recoil_percent/drain_percent). Recoil can faint the user, matching
// the mainline games' Double-Edge/Head Smash behavior.
func (b *Battle) applyRecoilAndDrain(data *schema.MoveData, user MonHandle, damageDealt int) error {
	if data.RecoilPercent.Num > 0 && data.RecoilPercent.Den > 0 {
		recoil := damageDealt * data.RecoilPercent.Num / data.RecoilPercent.Den
		if recoil < 1 {
			recoil = 1
		}
		if _, err := b.fnDamage(nil, nil, []value.Value{handleValue(value.HandleMon, user), value.Int(int32(recoil))}, nil); err != nil {
			return err
		}
		b.log.Append("recoil", b.mons[user].Name, strconv.Itoa(recoil))
	}
	if data.DrainPercent.Num > 0 && data.DrainPercent.Den > 0 && !b.mons[user].Fainted {
		drain := damageDealt * data.DrainPercent.Num / data.DrainPercent.Den
		if drain < 1 {
			drain = 1
		}
		if _, err := b.fnHeal(nil, nil, []value.Value{handleValue(value.HandleMon, user), value.Int(int32(drain))}, nil); err != nil {
			return err
		}
		b.log.Append("drain", b.mons[user].Name, strconv.Itoa(drain))
	}
	return nil
}

// applySecondaryEffects rolls each of a move's chance-based secondary
// effects against the PRNG and applies any that land (§6.2's
// secondary_effects: status, a volatile, or a stat boost, on the target or
// the user per its Self flag).
func (b *Battle) applySecondaryEffects(data *schema.MoveData, user, target MonHandle) error {
	for _, sec := range data.SecondaryEffects {
		if sec.ChanceDen <= 0 || b.prng.Range(0, int32(sec.ChanceDen)) >= int32(sec.ChanceNum) {
			continue
		}
		mh := target
		if sec.Self {
			mh = user
		}
		if b.mons[mh].Fainted {
			continue
		}
		if sec.Status != "" {
			if _, err := b.trySetStatus(mh, sec.Status); err != nil {
				return err
			}
		}
		if sec.VolatileID != "" {
			if _, err := b.AddCondition(OwnerMon, mh, invalidHandle, 0, sec.VolatileID, ConditionEffect(sec.VolatileID), user); err != nil {
				return err
			}
		}
		if sec.Boosts != nil {
			for _, stat := range []string{"atk", "def", "spa", "spd", "spe", "accuracy", "evasion"} {
				if delta := sec.Boosts.Get(stat); delta != 0 {
					if _, err := b.applyBoost(mh, stat, delta); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

// resolveTargets expands a choice's declared Target into the concrete set
// of mons the move will hit, per §9's doubles targeting rules: "self"
// hits the user, spread targets ("all-adjacent-foes"/"all-foes") hit every
// living foe, and anything else is a single target — the player's choice
// if it's still legal, falling back to the first living foe otherwise
// (the foe it was aimed at may have fainted or switched out earlier this
// turn).
func (b *Battle) resolveTargets(c Choice, data *schema.MoveData) []MonHandle {
	user := b.mons[c.Mon]
	foeSide := b.field.OtherSide(user.Side)

	switch data.Target {
	case "self":
		return []MonHandle{c.Mon}
	case "all-adjacent-foes", "all-foes":
		var out []MonHandle
		for _, mh := range b.field.Sides[foeSide].ActiveMons() {
			if !b.mons[mh].Fainted {
				out = append(out, mh)
			}
		}
		return out
	default:
		if c.Target != invalidHandle && !b.mons[c.Target].Fainted && b.mons[c.Target].Active() {
			return []MonHandle{c.Target}
		}
		for _, mh := range b.field.Sides[foeSide].ActiveMons() {
			if !b.mons[mh].Fainted {
				return []MonHandle{mh}
			}
		}
		return nil
	}
}
