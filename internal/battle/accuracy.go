package battle

import "github.com/jackson-nestelroad/battler-go/internal/value"

// accuracyBoostMultiplier is the accuracy/evasion stage table, distinct
// from the Atk/Def table: positive stages multiply by (3+n)/3 (§4.8).
func accuracyBoostMultiplier(stage int) (num, den int) {
	if stage >= 0 {
		return 3 + stage, 3
	}
	return 3, 3 - stage
}

// CheckAccuracy resolves whether am hits target, per §4.8: a move with
// Accuracy 0 always hits (bypasses the roll entirely) unless an
// Invulnerability hook vetoes it first. Otherwise the accuracy stat,
// accuracy/evasion stage multipliers, and an Accuracy modifier chain
// combine into a percentage checked against the PRNG.
func (b *Battle) CheckAccuracy(am *ActiveMove, user, target MonHandle) (bool, error) {
	userVal := handleValue(value.HandleMon, user)
	targetVal := handleValue(value.HandleMon, target)

	if inv, err := b.RunEvent("Invulnerability", map[string]value.Value{"user": userVal, "target": targetVal}, ""); err != nil {
		return false, err
	} else if !inv.IsUndefined() && !inv.Truthy() {
		return false, nil
	}

	if am.Accuracy <= 0 {
		return true, nil
	}

	um, tm := b.mons[user], b.mons[target]
	accStage := ignoreUnfavorable(um.Boosts.Accuracy, false)
	evaStage := ignoreFavorable(tm.Boosts.Evasion, false)
	accNum, accDen := accuracyBoostMultiplier(accStage)
	evaNum, evaDen := accuracyBoostMultiplier(evaStage)

	chance := float64(am.Accuracy) * float64(accNum) / float64(accDen) * float64(evaDen) / float64(evaNum)

	result, err := b.RunEvent("Accuracy", map[string]value.Value{
		"accuracy": value.Int(int32(chance)), "user": userVal, "target": targetVal,
	}, "accuracy")
	if err != nil {
		return false, err
	}
	if n, ok := result.AsFraction(); ok {
		chance = float64(int(n.Floor()))
	}

	if chance >= 100 {
		return true, nil
	}
	if chance <= 0 {
		return false, nil
	}
	return b.prng.Range(0, 100) < int32(chance), nil
}
