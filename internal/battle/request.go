package battle

// Request describes what the engine is waiting on from one player before
// the battle can proceed (§6.1): the specific active mons that need a
// decision this turn, and for each, its legal move slots and whether it
// can switch out.
type Request struct {
	Player PlayerHandle
	// ForSlots lists the player's active, non-fainted Mons awaiting a
	// decision, in team order.
	ForSlots []MonRequest
}

// MonRequest is the decision context for one of a player's active mons.
type MonRequest struct {
	Mon          MonHandle
	ForceSwitch  bool
	LegalMoves   []int // indices into Mon.Moves that are not disabled/out of PP
	CanSwitch    bool
	MustSwitch   bool // true only on a ForceSwitch request (the mon fainted)
}

// Requests builds the decision request for every player with at least one
// active, non-fainted mon (§6.1). A mon that faints leaves its slot
// (faintMon clears its ActiveSlot), so fainted mons are skipped here:
// Requests produces no ForceSwitch entries, and a player whose active mons
// have all fainted gets no request.
func (b *Battle) Requests() []Request {
	var out []Request
	for _, p := range b.players {
		var slots []MonRequest
		for _, mh := range p.Team {
			m := b.mons[mh]
			if !m.Active() {
				continue
			}
			if m.Fainted {
				slots = append(slots, MonRequest{Mon: mh, ForceSwitch: true, MustSwitch: true, CanSwitch: b.hasBenchedAlive(p)})
				continue
			}
			slots = append(slots, MonRequest{
				Mon:        mh,
				LegalMoves: b.legalMoveSlots(m),
				CanSwitch:  b.hasBenchedAlive(p),
			})
		}
		if len(slots) > 0 {
			out = append(out, Request{Player: p.Handle, ForSlots: slots})
		}
	}
	return out
}

func (b *Battle) legalMoveSlots(m *Mon) []int {
	var out []int
	for i, slot := range m.Moves {
		if !slot.Disabled && slot.PP > 0 {
			out = append(out, i)
		}
	}
	return out
}

func (b *Battle) hasBenchedAlive(p *Player) bool {
	for _, mh := range p.Team {
		m := b.mons[mh]
		if !m.Active() && !m.Fainted {
			return true
		}
	}
	return false
}
