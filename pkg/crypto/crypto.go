package crypto

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/binary"
	"errors"
	"math/big"
)

// SeedLength is the number of random bytes drawn for every winner
// selection. 32 bytes keeps far more entropy than any realistic ticket
// count needs.
const SeedLength = 32

// SeedSource supplies seeds for winner selection. Production code must use
// NewSeedSource; tests may inject a FixedSeedSource.
type SeedSource interface {
	NextSeed() ([]byte, error)
}

type cryptoSeedSource struct{}

// NewSeedSource returns a SeedSource backed by crypto/rand.
func NewSeedSource() SeedSource {
	return cryptoSeedSource{}
}

func (cryptoSeedSource) NextSeed() ([]byte, error) {
	b := make([]byte, SeedLength)
	if _, err := rand.Read(b); err != nil {
		return nil, err
	}

	return b, nil
}

// FixedSeedSource replays a fixed sequence of seeds. Only for tests.
type FixedSeedSource struct {
	Seeds [][]byte
	next  int
}

func (s *FixedSeedSource) NextSeed() ([]byte, error) {
	if s.next >= len(s.Seeds) {
		return nil, errors.New("fixed seed source exhausted")
	}

	seed := s.Seeds[s.next]
	s.next++
	return seed, nil
}

// WinnerIndex deterministically maps (seed, n) to an index in [0, n). The
// mapping is unbiased for a uniformly random seed: it consumes the seed as
// 64-bit words and rejects any word that falls into the partial bucket at
// the top of the uint64 range, so a plain modulo never favors low indexes.
// When the seed runs out of words it is extended by hashing the seed with a
// counter, which keeps the result a pure function of the input seed.
func WinnerIndex(seed []byte, n int) (int, error) {
	if n <= 0 {
		return 0, errors.New("winner selection requires at least one ticket")
	}

	if len(seed)*8 < 128 {
		return 0, errors.New("seed must carry at least 128 bits")
	}

	if n == 1 {
		return 0, nil
	}

	un := uint64(n)
	// Largest multiple of n that fits in a uint64. Words at or above it
	// would bias the modulo and are rejected.
	limit := (^uint64(0)/un)*un - 1

	words := seed
	counter := uint64(0)
	for {
		for len(words) >= 8 {
			v := binary.BigEndian.Uint64(words[:8])
			words = words[8:]
			if v <= limit {
				return int(v % un), nil
			}
		}

		// Extremely unlikely with a 256-bit seed, but the function must
		// terminate with an answer for every seed.
		h := sha256.New()
		h.Write(seed)
		var c [8]byte
		binary.BigEndian.PutUint64(c[:], counter)
		h.Write(c[:])
		words = h.Sum(nil)
		counter++
	}
}

// RandIntn returns a uniform random value in [0, n). It panics if got a
// non-positive parameter.
func RandIntn(n int) int {
	r, err := rand.Int(rand.Reader, big.NewInt(int64(n)))
	if err != nil {
		panic(err)
	}

	return int(r.Int64())
}

func SHA256(b []byte) string {
	hashed := sha256.Sum256(b)
	return base64.StdEncoding.EncodeToString(hashed[:])
}
