package genetic

import (
	"fmt"
	"math/rand"

	"pfcrack/internal/playfair"
)

// InitializeRandom builds popSize independent uniform permutations of the
// reduced alphabet.
func InitializeRandom(popSize int, opts playfair.Options, rng *rand.Rand) ([]string, error) {
	if popSize < 0 {
		return nil, fmt.Errorf("%w: population size must be >= 0: %d", ErrInvalidParams, popSize)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidParams)
	}
	alphabet := opts.Alphabet()
	population := make([]string, 0, popSize)
	for i := 0; i < popSize; i++ {
		population = append(population, randomKey(alphabet, rng))
	}
	return population, nil
}

// InitializeSeeded builds popSize keys that all start with the sanitized,
// deduplicated letters of seed; the remaining alphabet suffix is shuffled
// independently per individual.
func InitializeSeeded(popSize int, seed string, opts playfair.Options, rng *rand.Rand) ([]string, error) {
	if popSize < 0 {
		return nil, fmt.Errorf("%w: population size must be >= 0: %d", ErrInvalidParams, popSize)
	}
	if rng == nil {
		return nil, fmt.Errorf("%w: random source is required", ErrInvalidParams)
	}
	population := make([]string, 0, popSize)
	for i := 0; i < popSize; i++ {
		population = append(population, seedKey(seed, opts, rng))
	}
	return population, nil
}

func randomKey(alphabet string, rng *rand.Rand) string {
	key := []byte(alphabet)
	rng.Shuffle(len(key), func(i, j int) {
		key[i], key[j] = key[j], key[i]
	})
	return string(key)
}

func seedKey(seed string, opts playfair.Options, rng *rand.Rand) string {
	sanitized := playfair.NewFromKeyword("", opts).Sanitize([]byte(seed))

	var used [26]bool
	key := make([]byte, 0, 25)
	for _, b := range sanitized {
		if used[b-'A'] {
			continue
		}
		used[b-'A'] = true
		key = append(key, b)
	}
	prefix := len(key)
	for _, b := range []byte(opts.Alphabet()) {
		if used[b-'A'] {
			continue
		}
		used[b-'A'] = true
		key = append(key, b)
	}

	suffix := key[prefix:]
	rng.Shuffle(len(suffix), func(i, j int) {
		suffix[i], suffix[j] = suffix[j], suffix[i]
	})
	return string(key)
}

// validKey reports whether key is 25 distinct uppercase letters. The
// letter set itself is fixed by the initial population; every operator
// only rearranges it.
func validKey(key string) bool {
	if len(key) != 25 {
		return false
	}
	var used [26]bool
	for i := 0; i < len(key); i++ {
		b := key[i]
		if b < 'A' || b > 'Z' || used[b-'A'] {
			return false
		}
		used[b-'A'] = true
	}
	return true
}
