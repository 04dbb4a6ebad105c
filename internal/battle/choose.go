package battle

import (
	"fmt"
	"strconv"
	"strings"
)

// Choose parses a semicolon-joined choice string (§6.1) into one Choice per
// one of player's active mons, in active-slot order, and validates each
// against current battle state before returning them. It performs no
// mutation itself — the caller merges the maps from every player's Choose
// call into the map Step expects, same as any other choice the engine
// accepts.
func (b *Battle) Choose(player PlayerHandle, choiceString string) (map[MonHandle]Choice, error) {
	if int(player) < 0 || int(player) >= len(b.players) {
		return nil, ChoiceError("unknown player")
	}
	p := b.players[player]

	var actives []MonHandle
	for _, slot := range b.field.Sides[p.Side].Active {
		if slot == invalidHandle {
			continue
		}
		if b.mons[slot].Owner != player {
			continue
		}
		actives = append(actives, slot)
	}

	parts := strings.Split(choiceString, ";")
	if len(parts) != len(actives) {
		return nil, ChoiceError(fmt.Sprintf("expected %d action(s), got %d", len(actives), len(parts)))
	}

	out := make(map[MonHandle]Choice, len(actives))
	for i, raw := range parts {
		mh := actives[i]
		c, err := b.parseChoiceAction(mh, strings.TrimSpace(raw))
		if err != nil {
			return nil, err
		}
		if err := b.ValidateChoice(c); err != nil {
			return nil, err
		}
		out[mh] = c
	}
	return out, nil
}

// parseChoiceAction parses one semicolon-delimited field of a choose string
// for a single active mon (§6.1's move/switch/item/escape/forfeit grammar).
func (b *Battle) parseChoiceAction(mh MonHandle, raw string) (Choice, error) {
	fields := splitChoiceFields(raw)
	if len(fields) == 0 {
		return Choice{}, ChoiceError("empty choice")
	}

	verb := strings.ToLower(fields[0])
	args := fields[1:]

	switch verb {
	case "pass":
		return Choice{Kind: ChoicePass, Mon: mh}, nil

	case "move":
		if len(args) < 1 {
			return Choice{}, ChoiceError("move requires a slot index")
		}
		idx, err := strconv.Atoi(args[0])
		if err != nil {
			return Choice{}, ChoiceError("invalid move index: " + args[0])
		}
		c := Choice{Kind: ChoiceMove, Mon: mh, MoveSlot: idx - 1, Target: invalidHandle}
		if len(args) >= 2 && args[1] != "" {
			target, err := b.resolveChoiceTarget(mh, args[1])
			if err != nil {
				return Choice{}, err
			}
			c.Target = target
		}
		if len(args) >= 3 {
			c.Extra = args[2]
		}
		return c, nil

	case "switch":
		if len(args) < 1 {
			return Choice{}, ChoiceError("switch requires a team position")
		}
		pos, err := strconv.Atoi(args[0])
		if err != nil {
			return Choice{}, ChoiceError("invalid team position: " + args[0])
		}
		owner := b.mons[mh].Owner
		team := b.players[owner].Team
		if pos < 1 || pos > len(team) {
			return Choice{}, ChoiceError("team position out of range")
		}
		return Choice{Kind: ChoiceSwitch, Mon: mh, SwitchTo: team[pos-1]}, nil

	case "item":
		if len(args) < 1 {
			return Choice{}, ChoiceError("item requires an item id")
		}
		c := Choice{Kind: ChoiceItem, Mon: mh, Item: args[0], ItemTarget: invalidHandle}
		if len(args) >= 2 && args[1] != "" {
			target, err := b.resolveChoiceTarget(mh, args[1])
			if err != nil {
				return Choice{}, err
			}
			c.ItemTarget = target
		}
		if len(args) >= 3 {
			c.Extra = args[2]
		}
		return c, nil

	case "escape":
		return Choice{Kind: ChoiceEscape, Mon: mh}, nil

	case "forfeit":
		return Choice{Kind: ChoiceForfeit, Mon: mh}, nil

	default:
		return Choice{}, ChoiceError("unknown action: " + verb)
	}
}

// splitChoiceFields splits one action's "verb arg, arg, arg" text into its
// whitespace-delimited verb/first-argument and any further comma-delimited
// arguments, e.g. "move 2, 1, mega" -> ["move", "2", "1", "mega"].
func splitChoiceFields(raw string) []string {
	commaParts := strings.Split(raw, ",")
	if len(commaParts) == 0 {
		return nil
	}
	head := strings.Fields(commaParts[0])
	out := append([]string{}, head...)
	for _, p := range commaParts[1:] {
		out = append(out, strings.TrimSpace(p))
	}
	return out
}

// resolveChoiceTarget decodes a choose string's signed target encoding
// (§6.1): positive = side_position+1 for foes numbered right-to-left;
// negative = -(side_position+1) for allies numbered left-to-right.
func (b *Battle) resolveChoiceTarget(mh MonHandle, raw string) (MonHandle, error) {
	n, err := strconv.Atoi(raw)
	if err != nil {
		return invalidHandle, ChoiceError("invalid target: " + raw)
	}
	if n == 0 {
		return invalidHandle, ChoiceError("target cannot be 0")
	}

	m := b.mons[mh]
	if n > 0 {
		side := b.field.Sides[b.field.OtherSide(m.Side)]
		sidePos := n - 1
		idx := len(side.Active) - 1 - sidePos
		if idx < 0 || idx >= len(side.Active) {
			return invalidHandle, ChoiceError("target out of range")
		}
		if side.Active[idx] == invalidHandle {
			return invalidHandle, ChoiceError("no target in that slot")
		}
		return side.Active[idx], nil
	}

	side := b.field.Sides[m.Side]
	sidePos := -n - 1
	if sidePos < 0 || sidePos >= len(side.Active) {
		return invalidHandle, ChoiceError("target out of range")
	}
	if side.Active[sidePos] == invalidHandle {
		return invalidHandle, ChoiceError("no target in that slot")
	}
	return side.Active[sidePos], nil
}
