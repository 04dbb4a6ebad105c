package battle

// Side is one half of the field: one or more Players sharing side
// conditions (Reflect, Spikes, Tailwind) and slots (§3.1).
type Side struct {
	Handle  SideHandle
	Players []PlayerHandle
	// Active holds one MonHandle per field slot on this side (singles: 1,
	// doubles: 2), invalidHandle for an empty slot.
	Active []MonHandle

	Conditions map[string]ConditionInstanceHandle

	// SlotConditions indexes additional per-slot state (Wish, Future
	// Sight landing) by slot index; not every side condition needs one.
	SlotConditions []map[string]ConditionInstanceHandle
}

func newSide(handle SideHandle, slots int) *Side {
	active := make([]MonHandle, slots)
	slotConds := make([]map[string]ConditionInstanceHandle, slots)
	for i := range active {
		active[i] = invalidHandle
		slotConds[i] = make(map[string]ConditionInstanceHandle)
	}
	return &Side{
		Handle:         handle,
		Active:         active,
		Conditions:     make(map[string]ConditionInstanceHandle),
		SlotConditions: slotConds,
	}
}

// HasCondition reports whether this side currently carries condition id.
func (s *Side) HasCondition(id string) bool {
	_, ok := s.Conditions[id]
	return ok
}

// ActiveMonAt returns the Mon handle in slot i, or invalidHandle if empty
// or out of range.
func (s *Side) ActiveMonAt(i int) MonHandle {
	if i < 0 || i >= len(s.Active) {
		return invalidHandle
	}
	return s.Active[i]
}

// ActiveMons returns every non-empty active slot on this side.
func (s *Side) ActiveMons() []MonHandle {
	out := make([]MonHandle, 0, len(s.Active))
	for _, h := range s.Active {
		if h != invalidHandle {
			out = append(out, h)
		}
	}
	return out
}

// Opposes reports whether other is the opposing side of s on a two-sided
// field (the only topology §3.1/§9 define).
func (s *Side) Opposes(other SideHandle) bool {
	return other != s.Handle
}
