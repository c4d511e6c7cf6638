package sweep

import (
	crand "crypto/rand"
	"encoding/binary"
	"fmt"
	"math/rand"

	"github.com/leafsim/leafsim/sim"
)

// Seed generation methods.
const (
	// SeedSequence derives seed i from an independent stream per index, so
	// growing the seed count never changes earlier seeds.
	SeedSequence = "seedsequence"
	// SeedRNG draws all seeds from a single stream seeded with the master seed.
	SeedRNG = "rng"
	// SeedURandom reads seeds from the OS entropy source (not reproducible).
	SeedURandom = "urandom"
)

var validSeedMethods = map[string]bool{SeedSequence: true, SeedRNG: true, SeedURandom: true}

// GenerateSeeds returns count 32-bit run seeds derived from master.
func GenerateSeeds(count int, method string, master int64) ([]int64, error) {
	if !validSeedMethods[method] {
		return nil, fmt.Errorf("unknown seed method %q; valid: seedsequence, rng, urandom", method)
	}
	if count <= 0 {
		return []int64{}, nil
	}

	seeds := make([]int64, count)
	switch method {
	case SeedSequence:
		prng := sim.NewPartitionedRNG(sim.NewSimulationKey(master))
		for i := range seeds {
			seeds[i] = int64(prng.ForSubsystem(sim.SubsystemSeed(i)).Uint32())
		}
	case SeedRNG:
		rng := rand.New(rand.NewSource(master))
		for i := range seeds {
			seeds[i] = int64(rng.Uint32())
		}
	case SeedURandom:
		var buf [4]byte
		for i := range seeds {
			if _, err := crand.Read(buf[:]); err != nil {
				return nil, fmt.Errorf("reading OS entropy: %w", err)
			}
			seeds[i] = int64(binary.LittleEndian.Uint32(buf[:]))
		}
	}
	return seeds, nil
}
