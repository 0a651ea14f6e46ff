package simulation

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
)

// MaxSeed is the largest seed NewSeed draws. Seeds up to 2^53-1 are exact
// as JSON numbers, so a browser can echo a reported seed back unchanged.
const MaxSeed = 1<<53 - 1

// NewSeed returns a high-entropy seed for runs that were not given one.
// Zero is never returned, so callers can keep using 0 as "unset".
func NewSeed() (uint64, error) {
	var b [8]byte
	for {
		if _, err := crand.Read(b[:]); err != nil {
			return 0, fmt.Errorf("read random seed: %w", err)
		}
		if seed := binary.LittleEndian.Uint64(b[:]) & MaxSeed; seed != 0 {
			return seed, nil
		}
	}
}
