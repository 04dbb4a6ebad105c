package battle

import "github.com/jackson-nestelroad/battler-go/internal/value"

// Field is the shared battlefield state: weather, terrain, pseudo-weather,
// and the two Sides (§3.1). Exactly one Field exists per Battle.
type Field struct {
	Sides []*Side

	Weather     string
	WeatherData ConditionInstanceHandle

	Terrain     string
	TerrainData ConditionInstanceHandle

	// Conditions holds pseudo-weather (Trick Room, Gravity, Magic Room):
	// field-scoped effects that are neither weather nor terrain.
	Conditions map[string]ConditionInstanceHandle

	Turn int
}

func newField(sides int, slots int) *Field {
	f := &Field{
		Sides:      make([]*Side, sides),
		Conditions: make(map[string]ConditionInstanceHandle),
	}
	for i := range f.Sides {
		f.Sides[i] = newSide(SideHandle(i), slots)
	}
	return f
}

// HasWeather reports whether the named weather is currently active
// (empty WeatherData is valid for weather with no attached instance data).
func (f *Field) HasWeather(id string) bool { return f.Weather == id }

// HasTerrain reports whether the named terrain is currently active.
func (f *Field) HasTerrain(id string) bool { return f.Terrain == id }

// HasPseudoWeather reports whether condition id is active on the field.
func (f *Field) HasPseudoWeather(id string) bool {
	_, ok := f.Conditions[id]
	return ok
}

// OtherSide returns the handle of the side opposing s on a two-sided field.
func (f *Field) OtherSide(s SideHandle) SideHandle {
	for i := range f.Sides {
		if SideHandle(i) != s {
			return SideHandle(i)
		}
	}
	return s
}

// handleValue wraps ref as an fxlang Handle value tagged kind, for building
// the seed tuples handed to the evaluator at dispatch (§4.6 step 4).
func handleValue(kind value.HandleKind, ref any) value.Value {
	return value.FromHandle(value.Handle{Kind: kind, Ref: ref})
}
