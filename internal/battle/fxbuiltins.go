package battle

import (
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/jackson-nestelroad/battler-go/internal/fxlang"
	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// domainFunctions returns the battle-specific builtins merged alongside
// fxlang.BaseFunctions() (§4.3's introspection/mutation/logging/event
// re-entry categories): everything a callback uses to actually change
// battle state, as opposed to pure calculation.
func (b *Battle) domainFunctions() fxlang.FunctionTable {
	return fxlang.FunctionTable{
		"log":                   b.fnLog,
		"damage":                b.fnDamage,
		"heal":                  b.fnHeal,
		"boost":                 b.fnBoost,
		"set_status":            b.fnSetStatus,
		"cure_status":           b.fnCureStatus,
		"add_volatile":          b.fnAddVolatile,
		"remove_volatile":       b.fnRemoveVolatile,
		"has_volatile":          b.fnHasVolatile,
		"add_side_condition":    b.fnAddSideCondition,
		"remove_side_condition": b.fnRemoveSideCondition,
		"has_side_condition":    b.fnHasSideCondition,
		"set_weather":           b.fnSetWeather,
		"clear_weather":         b.fnClearWeather,
		"run_event":             b.fnRunEvent,
		"faint":                 b.fnFaint,
		"strike":                b.fnStrike,
	}
}

func monFromValue(v value.Value) (MonHandle, bool) {
	if v.Kind() != value.KindHandle || v.Handle().Kind != value.HandleMon {
		return 0, false
	}
	return v.Handle().Ref.(MonHandle), true
}

func sideFromValue(v value.Value) (SideHandle, bool) {
	if v.Kind() != value.KindHandle || v.Handle().Kind != value.HandleSide {
		return 0, false
	}
	return v.Handle().Ref.(SideHandle), true
}

func activeMoveFromValue(v value.Value) (ActiveMoveHandle, bool) {
	if v.Kind() != value.KindHandle || v.Handle().Kind != value.HandleActiveMove {
		return 0, false
	}
	return v.Handle().Ref.(ActiveMoveHandle), true
}

func (b *Battle) fnLog(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	parts := make([]string, len(args))
	for i, a := range args {
		parts[i] = a.String()
	}
	b.log.Append(parts...)
	return value.Undefined, nil
}

// fnDamage applies flat damage to a mon, per §4.9's "Damage" broadcast
// event firing after the HP change lands, never before.
func (b *Battle) fnDamage(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("battle: damage requires (mon, amount)")
	}
	mh, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: damage's first argument must be a mon handle")
	}
	amount := int(args[1].Int())
	m := b.mons[mh]
	dealt := amount
	if dealt > m.HP {
		dealt = m.HP
	}
	m.HP -= dealt
	if m.HP <= 0 {
		m.HP = 0
	}
	if _, err := b.RunEvent("Damage", map[string]value.Value{"target": args[0], "amount": value.Int(int32(dealt))}, ""); err != nil {
		return value.Undefined, err
	}
	if m.HP == 0 && !m.Fainted {
		return value.Undefined, b.faintMon(mh)
	}
	return value.Int(int32(dealt)), nil
}

func (b *Battle) fnHeal(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("battle: heal requires (mon, amount)")
	}
	mh, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: heal's first argument must be a mon handle")
	}
	m := b.mons[mh]
	if m.Fainted {
		return value.Int(0), nil
	}
	amount := int(args[1].Int())
	healed := amount
	if m.HP+healed > m.MaxHP {
		healed = m.MaxHP - m.HP
	}
	m.HP += healed
	if _, err := b.RunEvent("Heal", map[string]value.Value{"target": args[0], "amount": value.Int(int32(healed))}, ""); err != nil {
		return value.Undefined, err
	}
	return value.Int(int32(healed)), nil
}

func (b *Battle) fnBoost(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 3 {
		return value.Undefined, fmt.Errorf("battle: boost requires (mon, stat, stages)")
	}
	mh, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: boost's first argument must be a mon handle")
	}
	applied, err := b.applyBoost(mh, args[1].Str(), int(args[2].Int()))
	if err != nil {
		return value.Undefined, err
	}
	return value.Int(int32(applied)), nil
}

// applyBoost is fnBoost's logic as a plain Go call, shared with a move's
// declarative secondary-effect boosts (§6.2's secondary_effects.boosts),
// which have no Evaluator/Host of their own to route through.
func (b *Battle) applyBoost(mh MonHandle, stat string, delta int) (int, error) {
	m := b.mons[mh]
	cur := m.Boosts.Get(stat)
	next := cur + delta
	if next > 6 {
		next = 6
	}
	if next < -6 {
		next = -6
	}
	applied := next - cur
	m.Boosts.Set(stat, next)
	targetVal := handleValue(value.HandleMon, mh)
	if _, err := b.RunEvent("Boost", map[string]value.Value{"target": targetVal, "stat": value.Str(stat), "amount": value.Int(int32(applied))}, ""); err != nil {
		return applied, err
	}
	return applied, nil
}

func (b *Battle) fnSetStatus(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("battle: set_status requires (mon, status_id)")
	}
	mh, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: set_status's first argument must be a mon handle")
	}
	return b.trySetStatus(mh, args[1].Str())
}

// trySetStatus applies a major status to mh, running the TrySetStatus veto
// chain first and AfterSetStatus after, per §4.5's status-application flow
// (fxlang's set_status builtin and a move's declarative secondary effects
// both funnel through here so the veto/announce chain only lives once).
func (b *Battle) trySetStatus(mh MonHandle, statusID string) (value.Value, error) {
	m := b.mons[mh]
	if m.Status != StatusNone {
		return value.Bool(false), nil
	}
	targetVal := handleValue(value.HandleMon, mh)
	result, err := b.RunEvent("TrySetStatus", map[string]value.Value{"target": targetVal, "status": value.Str(statusID)}, "")
	if err != nil {
		return value.Undefined, err
	}
	// Undefined means no callback had an opinion; anything else falsy is a
	// deliberate veto (e.g. an existing status, a type immunity).
	if !result.IsUndefined() && !result.Truthy() {
		return value.Bool(false), nil
	}
	inst, err := b.AddCondition(OwnerMon, mh, invalidHandle, 0, statusID, ConditionEffect(statusID), mh)
	if err != nil {
		return value.Undefined, err
	}
	m.Status = Status(statusID)
	m.StatusData = inst.Handle
	if _, err := b.RunEvent("AfterSetStatus", map[string]value.Value{"target": targetVal, "status": value.Str(statusID)}, ""); err != nil {
		return value.Undefined, err
	}
	return value.Bool(true), nil
}

func (b *Battle) fnCureStatus(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 1 {
		return value.Undefined, fmt.Errorf("battle: cure_status requires (mon)")
	}
	mh, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: cure_status's first argument must be a mon handle")
	}
	m := b.mons[mh]
	if m.Status == StatusNone {
		return value.Bool(false), nil
	}
	id := string(m.Status)
	b.RemoveCondition(OwnerMon, mh, invalidHandle, 0, id)
	m.Status = StatusNone
	m.StatusData = invalidHandle
	return value.Bool(true), nil
}

// fnAddVolatile attaches a volatile to a mon. With the "link" flag, the new
// instance is linked to whichever condition's own callback is currently
// running (§4.5 Linking), so ending that condition later cascades into
// ending this one too (e.g. Gravity ending Fly along with the Immobilized
// volatile it attached).
func (b *Battle) fnAddVolatile(_ *fxlang.Evaluator, host fxlang.Host, args []value.Value, flags []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("battle: add_volatile requires (mon, condition_id)")
	}
	mh, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: add_volatile's first argument must be a mon handle")
	}
	id := args[1].Str()

	var linkTo *ConditionInstance
	for _, f := range flags {
		if f == "link" {
			if ctx, ok := host.(*effectContext); ok {
				linkTo = ctx.selfInstance
			}
		}
	}

	if _, err := b.AddCondition(OwnerMon, mh, invalidHandle, 0, id, ConditionEffect(id), mh, linkTo); err != nil {
		return value.Undefined, err
	}
	return value.Bool(true), nil
}

func (b *Battle) fnRemoveVolatile(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("battle: remove_volatile requires (mon, condition_id)")
	}
	mh, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: remove_volatile's first argument must be a mon handle")
	}
	b.RemoveCondition(OwnerMon, mh, invalidHandle, 0, args[1].Str())
	return value.Undefined, nil
}

func (b *Battle) fnHasVolatile(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("battle: has_volatile requires (mon, condition_id)")
	}
	mh, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: has_volatile's first argument must be a mon handle")
	}
	_, has := b.mons[mh].Volatile(args[1].Str())
	return value.Bool(has), nil
}

func (b *Battle) fnAddSideCondition(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("battle: add_side_condition requires (side, condition_id)")
	}
	sh, ok := sideFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: add_side_condition's first argument must be a side handle")
	}
	id := args[1].Str()
	if _, err := b.AddCondition(OwnerSide, invalidHandle, sh, 0, id, ConditionEffect(id), invalidHandle); err != nil {
		return value.Undefined, err
	}
	return value.Bool(true), nil
}

func (b *Battle) fnRemoveSideCondition(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("battle: remove_side_condition requires (side, condition_id)")
	}
	sh, ok := sideFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: remove_side_condition's first argument must be a side handle")
	}
	b.RemoveCondition(OwnerSide, invalidHandle, sh, 0, args[1].Str())
	return value.Undefined, nil
}

func (b *Battle) fnHasSideCondition(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 2 {
		return value.Undefined, fmt.Errorf("battle: has_side_condition requires (side, condition_id)")
	}
	sh, ok := sideFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: has_side_condition's first argument must be a side handle")
	}
	return value.Bool(b.field.Sides[sh].HasCondition(args[1].Str())), nil
}

func (b *Battle) fnSetWeather(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 1 {
		return value.Undefined, fmt.Errorf("battle: set_weather requires (weather_id)")
	}
	id := args[0].Str()
	if b.field.Weather == id {
		return value.Bool(false), nil
	}
	if b.field.Weather != "" {
		b.RemoveCondition(OwnerField, invalidHandle, invalidHandle, 0, b.field.Weather)
	}
	inst, err := b.AddCondition(OwnerField, invalidHandle, invalidHandle, 0, id, ConditionEffect(id), invalidHandle)
	if err != nil {
		return value.Undefined, err
	}
	b.field.Weather = id
	b.field.WeatherData = inst.Handle
	return value.Bool(true), nil
}

func (b *Battle) fnClearWeather(_ *fxlang.Evaluator, _ fxlang.Host, _ []value.Value, _ []string) (value.Value, error) {
	if b.field.Weather == "" {
		return value.Bool(false), nil
	}
	b.RemoveCondition(OwnerField, invalidHandle, invalidHandle, 0, b.field.Weather)
	b.field.Weather = ""
	b.field.WeatherData = invalidHandle
	return value.Bool(true), nil
}

// fnRunEvent lets a program re-enter the kernel for a sub-event (§4.3's
// event re-entry category), e.g. a move's Hit callback running a further
// "Hit" broadcast for secondary triggers.
func (b *Battle) fnRunEvent(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, flags []string) (value.Value, error) {
	if len(args) < 1 {
		return value.Undefined, fmt.Errorf("battle: run_event requires (event_name, ...)")
	}
	event := args[0].Str()
	seed := make(map[string]value.Value)
	names := []string{"a", "b", "c", "d"}
	for i, a := range args[1:] {
		if i < len(names) {
			seed[names[i]] = a
		}
	}
	relayKey := ""
	for _, f := range flags {
		if f == "relay_a" {
			relayKey = "a"
		}
	}
	return b.RunEvent(event, seed, relayKey)
}

// fnStrike runs one hit of a move directly against a target outside the
// normal per-target move loop: accuracy check, the full ComputeDamage
// pipeline, HP application, and the Hit broadcast — the same sequence
// executeMove runs per target, exposed to a callback for moves that
// activate out of turn order (§4.7 step 4's BeforeSwitchOut, e.g. Pursuit
// striking a switching foe before it leaves the field).
func (b *Battle) fnStrike(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 3 {
		return value.Undefined, fmt.Errorf("battle: strike requires (user, target, move)")
	}
	user, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: strike's first argument must be a mon handle")
	}
	target, ok := monFromValue(args[1])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: strike's second argument must be a mon handle")
	}
	amh, ok := activeMoveFromValue(args[2])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: strike's third argument must be an active-move handle")
	}
	am, ok := b.activeMoves.Get(int(amh))
	if !ok {
		return value.Undefined, fmt.Errorf("battle: strike's move handle is stale")
	}

	um, tm := b.mons[user], b.mons[target]

	hit, err := b.CheckAccuracy(am, user, target)
	if err != nil {
		return value.Undefined, err
	}
	if !hit {
		b.log.Append("miss", um.Name, tm.Name)
		return value.Bool(false), nil
	}

	damage, crit, err := b.ComputeDamage(am, user, target)
	if err != nil {
		return value.Undefined, err
	}
	if damage <= 0 {
		return value.Bool(false), nil
	}
	if _, err := b.fnDamage(nil, nil, []value.Value{args[1], value.Int(int32(damage))}, nil); err != nil {
		return value.Undefined, err
	}
	am.TotalDamage[target] = damage
	if crit {
		b.log.Append("crit", tm.Name)
	}
	b.log.Append("damage", tm.Name, strconv.Itoa(damage))

	if _, err := b.RunEvent("Hit", map[string]value.Value{"user": args[0], "target": args[1], "move": args[2]}, ""); err != nil {
		return value.Undefined, err
	}
	return value.Bool(true), nil
}

func (b *Battle) fnFaint(_ *fxlang.Evaluator, _ fxlang.Host, args []value.Value, _ []string) (value.Value, error) {
	if len(args) < 1 {
		return value.Undefined, fmt.Errorf("battle: faint requires (mon)")
	}
	mh, ok := monFromValue(args[0])
	if !ok {
		return value.Undefined, fmt.Errorf("battle: faint's first argument must be a mon handle")
	}
	return value.Undefined, b.faintMon(mh)
}

// faintMon marks a mon fainted, clears its field slot, and broadcasts
// Faint (§4.9's faint-is-a-broadcast-not-a-predicate rule: nothing can
// veto a faint once HP has reached zero).
func (b *Battle) faintMon(mh MonHandle) error {
	m := b.mons[mh]
	if m.Fainted {
		return nil
	}
	m.Fainted = true
	if m.Active() {
		b.field.Sides[m.Side].Active[m.ActiveSlot] = invalidHandle
		m.ActiveSlot = invalidHandle
	}
	b.log.Append("faint", m.Name)
	b.logger.Info("mon fainted", zap.String("mon", m.Name))
	_, err := b.RunEvent("Faint", map[string]value.Value{"target": handleValue(value.HandleMon, mh)}, "")
	return err
}
