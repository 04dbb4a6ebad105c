package battle

// EventClass controls how the kernel combines multiple callbacks' results
// for one event (§4.6).
type EventClass int

const (
	// ClassModifier chains: each callback receives the previous callback's
	// result as its own $relay_var input and may further adjust it. The
	// final relay value is the event's result.
	ClassModifier EventClass = iota
	// ClassPredicate short-circuits: the first callback to return a falsy
	// (including explicit false) or Undefined-on-failure value stops
	// dispatch immediately and that result is the event's result.
	ClassPredicate
	// ClassState runs candidates until the first one returns a defined
	// (non-Undefined) value, which becomes the event's result immediately;
	// an all-Undefined run falls through having run every candidate.
	ClassState
	// ClassBroadcast runs every candidate for its side effects, but an
	// explicit falsy (non-Undefined, not truthy) result aborts the
	// remaining candidates early; Undefined never aborts, since broadcast
	// events exist to announce a fact (SwitchIn, Faint) and most listeners
	// have no opinion on whether the others should still run.
	ClassBroadcast
	// ClassSingle dispatches only the single highest-priority candidate
	// and returns its result, without relaying or running the rest.
	ClassSingle
)

// eventClasses maps each named event to its dispatch class (§4.6). Events
// not listed default to ClassBroadcast, the safest no-op-on-absence class.
var eventClasses = map[string]EventClass{
	"ModifyDamage":    ClassModifier,
	"ModifyCritRatio": ClassModifier,
	"ModifyAccuracy":  ClassModifier,
	"ModifyBasePower": ClassModifier,
	"ModifyPriority":  ClassModifier,
	"ModifyBoost":     ClassModifier,
	"ModifySpe":       ClassModifier,
	"ModifyAtk":       ClassModifier,
	"ModifyDef":       ClassModifier,
	"ModifySpA":       ClassModifier,
	"ModifySpD":       ClassModifier,
	"ModifyWeight":    ClassModifier,
	"Accuracy":        ClassModifier,

	"TryHit":         ClassPredicate,
	"TryMove":        ClassPredicate,
	"TryBoost":       ClassPredicate,
	"TryHeal":        ClassPredicate,
	"TrySetStatus":   ClassPredicate,
	"TryAddVolatile": ClassPredicate,
	"TrySwitchOut":   ClassPredicate,
	"BeforeMove":     ClassPredicate,
	"ChargeMove":     ClassPredicate,
	"Escape":         ClassPredicate,

	"Invulnerability": ClassSingle,
	"RedirectTarget":  ClassSingle,
	"FoeTrapMon":      ClassSingle,
	"Immunity":        ClassSingle,

	"Residual":  ClassState,
	"Weather":   ClassState,
	"FieldEnd":  ClassState,

	"SwitchIn":        ClassBroadcast,
	"SwitchOut":       ClassBroadcast,
	"BeforeSwitchOut": ClassBroadcast,
	"AfterMove":       ClassBroadcast,
	"Hit":             ClassBroadcast,
	"FieldStart":      ClassBroadcast,
	"Faint":           ClassBroadcast,
	"Damage":          ClassBroadcast,
	"Heal":            ClassBroadcast,
	"Boost":           ClassBroadcast,
	"AfterSetStatus":  ClassBroadcast,
	"Update":          ClassBroadcast,
	"UseItem":         ClassBroadcast,
	"Forfeit":         ClassBroadcast,
}

// classOf returns the dispatch class for a named event.
func classOf(event string) EventClass {
	if c, ok := eventClasses[event]; ok {
		return c
	}
	return ClassBroadcast
}
