package battle

import (
	"fmt"

	"github.com/jackson-nestelroad/battler-go/internal/schema"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// effectContext is the single fxlang.Host implementation for the engine
// (§4.4's EffectContext/ApplyingEffectContext family collapses to one type
// here: which capabilities are legal is enforced by what GetMember/SetMember
// choose to support for each handle kind, not by a hierarchy of context
// types). It is constructed fresh for each dispatch and never outlives the
// callback it was built for, so it never needs its own lifetime management
// beyond the *Battle it borrows from.
type effectContext struct {
	battle *Battle
	effect EffectHandle
	holder value.Value

	// selfInstance is the ConditionInstance whose own callback is currently
	// running, when the candidate being dispatched is condition-backed
	// (status, volatile, side/slot condition, weather/terrain/pseudo-weather).
	// It is nil for ability/item/active-move candidates. Builtins that need
	// to link a newly created instance to the one driving the callback
	// (add_volatile's "link" flag, §4.5 Linking) read this field.
	selfInstance *ConditionInstance
}

func (b *Battle) newEventContext(effect EffectHandle, holder value.Value, inst *ConditionInstance) *effectContext {
	return &effectContext{battle: b, effect: effect, holder: holder, selfInstance: inst}
}

func (b *Battle) newConditionContext(inst *ConditionInstance, owner OwnerKind, mon MonHandle, side SideHandle, slot int) *effectContext {
	var holder value.Value
	switch owner {
	case OwnerMon:
		holder = handleValue(value.HandleMon, mon)
	case OwnerSide:
		holder = handleValue(value.HandleSide, side)
	case OwnerSlot:
		holder = handleValue(value.HandleSide, side)
	default:
		holder = handleValue(value.HandleField, 0)
	}
	return &effectContext{battle: b, effect: ConditionEffect(inst.ID), holder: holder, selfInstance: inst}
}

func (c *effectContext) PRNG() value.PRNG { return c.battle.prng }

func (c *effectContext) GetMember(h value.Handle, name string) (value.Value, error) {
	switch h.Kind {
	case value.HandleMon:
		return c.getMonMember(h.Ref.(MonHandle), name)
	case value.HandleSide:
		return c.getSideMember(h.Ref.(SideHandle), name)
	case value.HandleField:
		return c.getFieldMember(name)
	case value.HandleActiveMove:
		return c.getActiveMoveMember(h.Ref.(ActiveMoveHandle), name)
	case value.HandleStatTable:
		st := h.Ref.(StatTable)
		return value.Int(int32(st.Get(name))), nil
	case value.HandleBoostTable:
		bt := h.Ref.(*schema.BoostTable)
		return value.Int(int32(bt.Get(name))), nil
	case value.HandleEffect:
		eff := h.Ref.(EffectHandle)
		switch name {
		case "id":
			return value.Str(eff.ID), nil
		case "kind":
			return value.Str(eff.Kind.String()), nil
		}
		return value.Undefined, nil
	default:
		return value.Undefined, fmt.Errorf("battle: no member %q on handle kind %d", name, h.Kind)
	}
}

func (c *effectContext) SetMember(h value.Handle, name string, v value.Value) error {
	switch h.Kind {
	case value.HandleMon:
		return c.setMonMember(h.Ref.(MonHandle), name, v)
	case value.HandleBoostTable:
		bt := h.Ref.(*schema.BoostTable)
		bt.Set(name, int(v.Int()))
		return nil
	default:
		return fmt.Errorf("battle: member %q is not writable on handle kind %d", name, h.Kind)
	}
}

func (c *effectContext) getMonMember(mh MonHandle, name string) (value.Value, error) {
	m := c.battle.mons[mh]
	switch name {
	case "hp":
		return value.Int(int32(m.HP)), nil
	case "max_hp":
		return value.Int(int32(m.MaxHP)), nil
	case "status":
		return value.Str(string(m.Status)), nil
	case "ability":
		return value.Str(m.EffectiveAbility()), nil
	case "item":
		return value.Str(m.EffectiveItem()), nil
	case "fainted":
		return value.Bool(m.Fainted), nil
	case "level":
		return value.Int(int32(m.Level)), nil
	case "name":
		return value.Str(m.Name), nil
	case "types":
		out := make([]value.Value, len(m.Types))
		for i, t := range m.Types {
			out[i] = value.Str(t)
		}
		return value.List(out), nil
	case "stats":
		return handleValue(value.HandleStatTable, m.Stats), nil
	case "boosts":
		return handleValue(value.HandleBoostTable, &m.Boosts), nil
	case "active":
		return value.Bool(m.Active()), nil
	case "side":
		return handleValue(value.HandleSide, m.Side), nil
	case "last_move_used":
		return value.Str(m.LastMoveUsed), nil
	case "switched_in_this_turn":
		return value.Bool(m.SwitchedInThisTurn), nil
	case "moved_this_turn":
		return value.Bool(m.MovedThisTurn), nil
	default:
		return value.Undefined, nil
	}
}

func (c *effectContext) setMonMember(mh MonHandle, name string, v value.Value) error {
	m := c.battle.mons[mh]
	switch name {
	case "hp":
		m.HP = int(v.Int())
		if m.HP < 0 {
			m.HP = 0
		}
		if m.HP > m.MaxHP {
			m.HP = m.MaxHP
		}
		return nil
	case "ability":
		m.Ability = v.Str()
		return nil
	case "item":
		m.Item = v.Str()
		return nil
	case "ability_suppressed":
		m.AbilitySuppressed = v.Truthy()
		return nil
	case "item_suppressed":
		m.ItemSuppressed = v.Truthy()
		return nil
	default:
		return fmt.Errorf("battle: mon member %q is not writable", name)
	}
}

func (c *effectContext) getSideMember(sh SideHandle, name string) (value.Value, error) {
	side := c.battle.field.Sides[sh]
	switch name {
	case "active":
		out := make([]value.Value, 0, len(side.Active))
		for _, mh := range side.Active {
			if mh != invalidHandle {
				out = append(out, handleValue(value.HandleMon, mh))
			}
		}
		return value.List(out), nil
	case "foe":
		return handleValue(value.HandleSide, c.battle.field.OtherSide(sh)), nil
	default:
		return value.Undefined, nil
	}
}

func (c *effectContext) getFieldMember(name string) (value.Value, error) {
	f := c.battle.field
	switch name {
	case "weather":
		return value.Str(f.Weather), nil
	case "terrain":
		return value.Str(f.Terrain), nil
	case "turn":
		return value.Int(int32(f.Turn)), nil
	case "sides":
		out := make([]value.Value, len(f.Sides))
		for i := range f.Sides {
			out[i] = handleValue(value.HandleSide, SideHandle(i))
		}
		return value.List(out), nil
	default:
		return value.Undefined, nil
	}
}

func (c *effectContext) getActiveMoveMember(h ActiveMoveHandle, name string) (value.Value, error) {
	am, ok := c.battle.activeMoves.Get(int(h))
	if !ok {
		return value.Undefined, nil
	}
	switch name {
	case "base_power":
		return value.Int(int32(am.BasePower)), nil
	case "category":
		return value.Str(am.Category), nil
	case "type":
		return value.Str(am.Type), nil
	case "accuracy":
		return value.Int(int32(am.Accuracy)), nil
	case "priority":
		return value.Int(int32(am.Priority)), nil
	case "crit":
		return value.Bool(am.Crit), nil
	case "user":
		return handleValue(value.HandleMon, am.User), nil
	case "hit_count":
		return value.Int(int32(am.HitCount)), nil
	case "switch_strike":
		return value.Bool(am.SwitchStrike), nil
	default:
		return value.Undefined, nil
	}
}
