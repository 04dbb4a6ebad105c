package battle

import (
	"fmt"

	"github.com/jackson-nestelroad/battler-go/internal/schema"
)

// Format is the resolved rule bundle a Battle is constructed with: which
// clauses are active (enforced as ordinary field conditions, so a clause
// is just data like any other effect) plus the handful of structural rules
// that have to be checked before a battle even starts, which a callback
// can't reach (team size, format-level species/item bans).
type Format struct {
	ID          string
	Clauses     []string
	MaxTeamSize int
	MaxLevel    int
}

// NewFormat resolves a schema.FormatData into a Format, reading
// well-known option keys out of its free-form Options map and falling
// back to the series' conventional defaults when absent.
func NewFormat(data *schema.FormatData) *Format {
	f := &Format{ID: data.ID, Clauses: data.Clauses, MaxTeamSize: 6, MaxLevel: 100}
	if v, ok := data.Options["max_team_size"]; ok {
		if n, ok := v.(float64); ok {
			f.MaxTeamSize = int(n)
		}
	}
	if v, ok := data.Options["max_level"]; ok {
		if n, ok := v.(float64); ok {
			f.MaxLevel = int(n)
		}
	}
	return f
}

// ValidateTeam checks the structural rules a callback has no opportunity
// to enforce: team size and per-mon level cap (§6.1's pre-battle
// validation, supplementing the clause conditions that run during play).
func (f *Format) ValidateTeam(team []*Mon) error {
	if f == nil {
		return nil
	}
	if len(team) == 0 {
		return ChoiceError("team must have at least one Pokemon")
	}
	if len(team) > f.MaxTeamSize {
		return ChoiceError(fmt.Sprintf("team of %d exceeds the format's max team size of %d", len(team), f.MaxTeamSize))
	}
	for _, m := range team {
		if m.Level > f.MaxLevel {
			return ChoiceError(fmt.Sprintf("%s is level %d, exceeding the format's max level of %d", m.Name, m.Level, f.MaxLevel))
		}
	}
	return nil
}
