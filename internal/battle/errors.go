package battle

import (
	"errors"
	"fmt"
)

// The four error kinds of §7, modeled as distinguishable, wrappable errors
// so a caller can classify a failure with errors.Is/errors.As without
// string-matching messages.

// ErrData marks malformed data, an unknown effect ID, or a parse failure
// inside fxlang encountered at load time or first use. Fatal to starting
// or continuing the battle.
var ErrData = errors.New("battle: data error")

// ErrProgram marks a runtime failure inside an fxlang callback. §7: logged
// as a warning, the callback's result is treated as Undefined, and the
// battle continues.
var ErrProgram = errors.New("battle: program error")

// ErrChoice marks an illegal action submitted against the current request.
// Rejected with no state mutation.
var ErrChoice = errors.New("battle: choice error")

// ErrStateInvariant marks an internal bug — a violated invariant that
// should be unreachable. In release builds this poisons the battle.
var ErrStateInvariant = errors.New("battle: state invariant violation")

// ErrCorrupted is returned by Battle.Step once the battle has been
// poisoned by a state invariant violation (§7, SPEC_FULL.md); the other
// Battle methods do not check for poisoning.
var ErrCorrupted = errors.New("battle: battle corrupted, no further calls accepted")

// errUnknownCondition marks a reference to a condition ID the data source
// has no template for.
var errUnknownCondition = errors.New("unknown condition")

// DataError wraps an error as a data-class failure with a locating effect ID.
func DataError(effectID string, err error) error {
	return fmt.Errorf("%w: effect %q: %v", ErrData, effectID, err)
}

// ProgramError wraps an error as a program-class failure with the
// effect/event that raised it, for structured logging at the call site.
func ProgramError(effectID, event string, err error) error {
	return fmt.Errorf("%w: effect %q event %q: %v", ErrProgram, effectID, event, err)
}

// ChoiceError wraps a rejection reason; §8 property 2 requires that every
// rejected action carry a nonempty reason, which this guarantees by
// construction (fmt.Errorf always yields a non-empty message).
func ChoiceError(reason string) error {
	return fmt.Errorf("%w: %s", ErrChoice, reason)
}

// StateInvariantError wraps an internal-bug detection site.
func StateInvariantError(msg string) error {
	return fmt.Errorf("%w: %s", ErrStateInvariant, msg)
}
