// Package entropy provides the deterministic random stream every stochastic
// decision in the engine routes through. The cursor lives in the settlement
// record, so replaying the same ticks and choices from the same seed
// reproduces identical outcomes bit for bit. Nothing here touches the system
// clock or OS entropy.
package entropy

import "hash/fnv"

// SeedFromString hashes an arbitrary seed string to the fixed-width cursor
// start value. A zero hash is nudged so the stream never degenerates.
func SeedFromString(seed string) uint64 {
	h := fnv.New64a()
	h.Write([]byte(seed))
	v := h.Sum64()
	if v == 0 {
		v = 0x9e3779b97f4a7c15
	}
	return v
}

// Stream draws values from a cursor owned by the caller. Every draw advances
// the cursor exactly once.
type Stream struct {
	cursor *uint64
}

// Bind attaches a stream to a cursor stored elsewhere (the settlement record).
func Bind(cursor *uint64) Stream {
	return Stream{cursor: cursor}
}

// next is the splitmix64 step: a full-period walk over uint64 with strong
// output mixing, cheap enough to run inline in the tick path.
func (s Stream) next() uint64 {
	*s.cursor += 0x9e3779b97f4a7c15
	z := *s.cursor
	z = (z ^ (z >> 30)) * 0xbf58476d1ce4e5b9
	z = (z ^ (z >> 27)) * 0x94d049bb133111eb
	return z ^ (z >> 31)
}

// Draw returns a float64 uniform in [0, 1) using the top 53 bits.
func (s Stream) Draw() float64 {
	return float64(s.next()>>11) / float64(1<<53)
}

// DrawInt returns an integer uniform in [min, max]. Callers must pass
// min <= max; this is a caller contract, not a runtime check.
func (s Stream) DrawInt(min, max int) int {
	return min + int(s.Draw()*float64(max-min+1))
}
