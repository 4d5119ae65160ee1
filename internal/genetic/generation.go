package genetic

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"pfcrack/internal/playfair"
)

// Scored pairs one population member with its fitness score.
type Scored struct {
	Key   string
	Score int64
}

// NextGeneration runs one full generation step and returns the next
// population together with the scores of the incoming population.
//
// The step order is: score, snapshot the KeepBest elites, cull the
// KillWorst members, select two parents fitness-proportionally, rebuild
// the population as [parent1, parent2], grow it with NumChildren crossover
// children and NewRandom fresh keys, mutate every non-elite member, and
// finally reinsert the untouched elites.
func NextGeneration(ctx context.Context, population []string, scorer Scorer, cipher []byte, params Params, opts playfair.Options, rng *rand.Rand, workers int) ([]string, []int64, error) {
	if err := params.Validate(); err != nil {
		return nil, nil, err
	}
	if rng == nil {
		return nil, nil, fmt.Errorf("%w: random source is required", ErrInvalidParams)
	}
	if params.KeepBest > len(population) {
		return nil, nil, fmt.Errorf("%w: keep best %d exceeds population size %d", ErrInvalidParams, params.KeepBest, len(population))
	}
	if params.KillWorst > len(population) {
		return nil, nil, fmt.Errorf("%w: kill worst %d exceeds population size %d", ErrInvalidParams, params.KillWorst, len(population))
	}
	if len(population)-params.KillWorst < 2 {
		return nil, nil, fmt.Errorf("%w: population size must be >= 2 at selection, got %d", ErrInvalidParams, len(population)-params.KillWorst)
	}

	scores, err := ScorePopulation(ctx, population, scorer, cipher, opts, workers)
	if err != nil {
		return nil, nil, err
	}

	elites := eliteSnapshot(population, scores, params.KeepBest)

	survivors, survivorScores := cullWorst(population, scores, params.KillWorst)

	p1, p2, err := SelectParents(survivorScores, rng)
	if err != nil {
		return nil, nil, err
	}

	next := make([]string, 0, 2+params.NumChildren+params.NewRandom+params.KeepBest)
	next = append(next, survivors[p1], survivors[p2])

	for i := 0; i < params.NumChildren; i++ {
		child, err := Crossover(survivors[p1], survivors[p2], rng)
		if err != nil {
			return nil, nil, err
		}
		next = append(next, child)
	}

	alphabet := opts.Alphabet()
	for i := 0; i < params.NewRandom; i++ {
		next = append(next, randomKey(alphabet, rng))
	}

	for i := range next {
		mutated, err := mutateKey(next[i], params, rng)
		if err != nil {
			return nil, nil, err
		}
		next[i] = mutated
	}

	next = append(next, elites...)
	return next, scores, nil
}

func mutateKey(key string, params Params, rng *rand.Rand) (string, error) {
	switch params.MutationType {
	case Swap:
		return SwapMutation(key, rng)
	case Inversion:
		return InversionMutation(key, params.MutationRate, rng)
	default:
		return "", fmt.Errorf("%w: unknown mutation type: %d", ErrInvalidParams, int(params.MutationType))
	}
}

// eliteSnapshot copies the keepBest highest-scoring members, breaking
// score ties by first-seen index.
func eliteSnapshot(population []string, scores []int64, keepBest int) []string {
	if keepBest <= 0 {
		return nil
	}
	order := make([]int, len(population))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(i, j int) bool {
		return scores[order[i]] > scores[order[j]]
	})
	elites := make([]string, 0, keepBest)
	for _, idx := range order[:keepBest] {
		elites = append(elites, population[idx])
	}
	return elites
}

// cullWorst removes the killWorst lowest-scoring members, one at a time,
// taking the first index on ties.
func cullWorst(population []string, scores []int64, killWorst int) ([]string, []int64) {
	survivors := append([]string(nil), population...)
	survivorScores := append([]int64(nil), scores...)
	for n := 0; n < killWorst; n++ {
		worst := 0
		for i, s := range survivorScores {
			if s < survivorScores[worst] {
				worst = i
			}
		}
		survivors = append(survivors[:worst], survivors[worst+1:]...)
		survivorScores = append(survivorScores[:worst], survivorScores[worst+1:]...)
	}
	return survivors, survivorScores
}

// BestMember returns the highest-scoring member; the first index wins
// ties.
func BestMember(population []string, scores []int64) (string, int64, error) {
	if len(population) == 0 || len(population) != len(scores) {
		return "", 0, fmt.Errorf("%w: population and scores must be non-empty and equal length", ErrInvalidParams)
	}
	best := 0
	for i, s := range scores {
		if s > scores[best] {
			best = i
		}
	}
	return population[best], scores[best], nil
}
