package battle

import (
	"math"

	"github.com/jackson-nestelroad/battler-go/internal/value"
)

// boostMultiplier implements the standard stage-to-multiplier table for
// Atk/Def/SpA/SpD/Spe (accuracy/evasion use a different table, see
// accuracy.go): positive stages multiply by (2+n)/2, negative by 2/(2-n).
func boostMultiplier(stage int) (num, den int) {
	if stage >= 0 {
		return 2 + stage, 2
	}
	return 2, 2 - stage
}

// effectiveStat applies a boost stage to a base stat value, per §4.8.
func effectiveStat(base int, stage int) int {
	num, den := boostMultiplier(stage)
	return base * num / den
}

// ComputeDamage runs the full damage pipeline for one hit of am against
// target, per §4.8: base power/crit-ratio modifier chains, the standard
// formula, STAB, type effectiveness, crit, burn halving, and the random
// factor, then a final ModifyDamage chain on the result. Returns the
// final HP loss (at least 1 for any non-zero, non-immune hit) and whether
// the hit landed a critical.
func (b *Battle) ComputeDamage(am *ActiveMove, user, target MonHandle) (int, bool, error) {
	if am.Category == "status" || am.BasePower == 0 {
		return 0, false, nil
	}

	userVal := handleValue(value.HandleMon, user)
	targetVal := handleValue(value.HandleMon, target)
	moveVal := handleValue(value.HandleActiveMove, am.Handle)
	um, tm := b.mons[user], b.mons[target]

	bpResult, err := b.RunEvent("ModifyBasePower", map[string]value.Value{
		"base_power": value.Int(int32(am.BasePower)), "user": userVal, "target": targetVal, "move": moveVal,
	}, "base_power")
	if err != nil {
		return 0, false, err
	}
	basePower := am.BasePower
	if n, ok := bpResult.AsFraction(); ok {
		basePower = int(n.Floor())
	}
	if basePower <= 0 {
		return 0, false, nil
	}

	eff := typeEffectiveness(am.Type, tm.Types)
	if eff == 0 {
		return 0, false, nil
	}

	critRatio := am.CritRatio
	critResult, err := b.RunEvent("ModifyCritRatio", map[string]value.Value{
		"ratio": value.Int(int32(critRatio)), "user": userVal, "target": targetVal, "move": moveVal,
	}, "ratio")
	if err != nil {
		return 0, false, err
	}
	if n, ok := critResult.AsFraction(); ok {
		critRatio = int(n.Floor())
	}
	crit := b.prng.Range(0, critChanceDenominator(critRatio)) == 0

	var atk, def int
	if am.Category == "physical" {
		atk = effectiveStat(um.Stats.Atk, ignoreUnfavorable(um.Boosts.Atk, crit))
		def = effectiveStat(tm.Stats.Def, ignoreFavorable(tm.Boosts.Def, crit))
	} else {
		atk = effectiveStat(um.Stats.SpA, ignoreUnfavorable(um.Boosts.SpA, crit))
		def = effectiveStat(tm.Stats.SpD, ignoreFavorable(tm.Boosts.SpD, crit))
	}
	if def <= 0 {
		def = 1
	}

	base := (((2*um.Level/5 + 2) * basePower * atk / def) / 50) + 2

	damage := float64(base)
	if um.HasType(am.Type) {
		damage *= 1.5 // STAB
	}
	damage *= eff
	if crit {
		damage *= 1.5
	}
	if am.Category == "physical" && um.Status == "brn" && !um.HasAbility("guts") {
		damage *= 0.5
	}

	randFactor := float64(85+b.prng.Range(0, 16)) / 100.0
	damage *= randFactor

	final := int(math.Floor(damage))
	if final < 1 {
		final = 1
	}

	result, err := b.RunEvent("ModifyDamage", map[string]value.Value{
		"damage": value.Int(int32(final)), "user": userVal, "target": targetVal, "move": moveVal,
	}, "damage")
	if err != nil {
		return 0, false, err
	}
	if n, ok := result.AsFraction(); ok {
		final = int(n.Floor())
		if final < 1 {
			final = 1
		}
	}

	return final, crit, nil
}

// ignoreUnfavorable zeroes out a negative attacker stage on a crit.
func ignoreUnfavorable(stage int, crit bool) int {
	if crit && stage < 0 {
		return 0
	}
	return stage
}

// ignoreFavorable zeroes out a positive defender stage on a crit.
func ignoreFavorable(stage int, crit bool) int {
	if crit && stage > 0 {
		return 0
	}
	return stage
}

// critChanceDenominator maps a crit ratio stage to the classic
// 1/24, 1/8, 1/2, always-crit progression (gen 6+).
func critChanceDenominator(ratio int) int32 {
	switch {
	case ratio <= 0:
		return 24
	case ratio == 1:
		return 8
	case ratio == 2:
		return 2
	default:
		return 1
	}
}

