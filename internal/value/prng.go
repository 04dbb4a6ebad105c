package value

// PRNG is the deterministic random source contract every randomness
// consumer in the engine routes through (§4.1, §6.4). Implementations must
// be deterministic given a seed so that §8 property 1 (determinism) holds:
// two PRNGs constructed from the same seed and driven by the same call
// sequence must produce the same outputs.
type PRNG interface {
	// UniformU32 returns the next raw 32-bit draw.
	UniformU32() uint32
	// Range returns a value in [lo, hi).
	Range(lo, hi int32) int32
}
