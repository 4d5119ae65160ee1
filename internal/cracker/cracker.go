package cracker

import (
	"context"
	"fmt"
	"math/rand"
	"sort"

	"pfcrack/internal/genetic"
	"pfcrack/internal/model"
	"pfcrack/internal/playfair"
)

// Config drives one crack run.
type Config struct {
	// Cipher is the raw ciphertext; it is sanitized before use.
	Cipher []byte
	// Scorer rates decrypted candidates against the reference language.
	Scorer genetic.Scorer
	// Params are the per-generation genetic parameters.
	Params genetic.Params
	// KeyOptions configures the reduced alphabet and padding letters.
	KeyOptions playfair.Options
	// PopulationSize is the initial population size.
	PopulationSize int
	// Generations caps the number of generation steps.
	Generations int
	// ScoreGoal stops the run early once the best score reaches it
	// (0 disables).
	ScoreGoal int64
	// SeedKeyword, when set, seeds every initial key with its letters.
	SeedKeyword string
	// Seed initializes the run's single random source.
	Seed int64
	// Workers is the fitness evaluation fan-out.
	Workers int
}

// RunResult reports the best member found and the per-generation history.
type RunResult struct {
	BestKey          string
	BestScore        int64
	Plaintext        []byte
	BestByGeneration []int64
	Diagnostics      []model.GenerationDiagnostics
	FinalPopulation  []genetic.Scored
	Generations      int
}

// Cracker iterates generations of the genetic key search until a stop
// condition is met. It owns the run's random source; the genetic operators
// borrow it by pointer and never copy it.
type Cracker struct {
	cfg    Config
	cipher []byte
	rng    *rand.Rand
}

func New(cfg Config) (*Cracker, error) {
	if cfg.Scorer == nil {
		return nil, fmt.Errorf("%w: scorer is required", genetic.ErrInvalidParams)
	}
	if err := cfg.Params.Validate(); err != nil {
		return nil, err
	}
	if cfg.PopulationSize < 2 {
		return nil, fmt.Errorf("%w: population size must be >= 2: %d", genetic.ErrInvalidParams, cfg.PopulationSize)
	}
	if cfg.Params.KeepBest > cfg.PopulationSize {
		return nil, fmt.Errorf("%w: keep best %d exceeds population size %d", genetic.ErrInvalidParams, cfg.Params.KeepBest, cfg.PopulationSize)
	}
	if cfg.PopulationSize-cfg.Params.KillWorst < 2 {
		return nil, fmt.Errorf("%w: kill worst %d leaves fewer than 2 members", genetic.ErrInvalidParams, cfg.Params.KillWorst)
	}
	if cfg.Generations <= 0 {
		return nil, fmt.Errorf("%w: generations must be > 0: %d", genetic.ErrInvalidParams, cfg.Generations)
	}
	if cfg.Workers <= 0 {
		cfg.Workers = 1
	}

	sanitizer := playfair.NewFromKeyword("", cfg.KeyOptions)
	cipher := sanitizer.Sanitize(cfg.Cipher)
	if len(cipher) < cfg.Scorer.N() {
		return nil, fmt.Errorf("%w: ciphertext has %d usable letters, need at least %d", genetic.ErrInvalidParams, len(cipher), cfg.Scorer.N())
	}

	return &Cracker{
		cfg:    cfg,
		cipher: cipher,
		rng:    rand.New(rand.NewSource(cfg.Seed)),
	}, nil
}

// Run iterates generations until the generation cap, the score goal, or
// context cancellation. Cancellation is honored at generation boundaries.
func (c *Cracker) Run(ctx context.Context) (RunResult, error) {
	var population []string
	var err error
	if c.cfg.SeedKeyword != "" {
		population, err = genetic.InitializeSeeded(c.cfg.PopulationSize, c.cfg.SeedKeyword, c.cfg.KeyOptions, c.rng)
	} else {
		population, err = genetic.InitializeRandom(c.cfg.PopulationSize, c.cfg.KeyOptions, c.rng)
	}
	if err != nil {
		return RunResult{}, err
	}

	result := RunResult{
		BestByGeneration: make([]int64, 0, c.cfg.Generations),
		Diagnostics:      make([]model.GenerationDiagnostics, 0, c.cfg.Generations),
		BestScore:        -1,
	}

	for gen := 0; gen < c.cfg.Generations; gen++ {
		if err := ctx.Err(); err != nil {
			return RunResult{}, err
		}

		next, scores, err := genetic.NextGeneration(ctx, population, c.cfg.Scorer, c.cipher, c.cfg.Params, c.cfg.KeyOptions, c.rng, c.cfg.Workers)
		if err != nil {
			return RunResult{}, err
		}

		bestKey, bestScore, err := genetic.BestMember(population, scores)
		if err != nil {
			return RunResult{}, err
		}
		result.BestByGeneration = append(result.BestByGeneration, bestScore)
		result.Diagnostics = append(result.Diagnostics, summarizeGeneration(population, scores, gen+1, bestKey, bestScore))
		result.Generations = gen + 1
		if bestScore > result.BestScore {
			result.BestKey = bestKey
			result.BestScore = bestScore
		}

		if c.cfg.ScoreGoal > 0 && result.BestScore >= c.cfg.ScoreGoal {
			population = next
			break
		}
		population = next
	}

	// The loop scores populations on entry, so the final population has
	// not been rated yet.
	finalScores, err := genetic.ScorePopulation(ctx, population, c.cfg.Scorer, c.cipher, c.cfg.KeyOptions, c.cfg.Workers)
	if err != nil {
		return RunResult{}, err
	}
	bestKey, bestScore, err := genetic.BestMember(population, finalScores)
	if err != nil {
		return RunResult{}, err
	}
	if bestScore > result.BestScore {
		result.BestKey = bestKey
		result.BestScore = bestScore
	}
	result.FinalPopulation = rankPopulation(population, finalScores)

	key, err := playfair.NewFromSquare(result.BestKey, c.cfg.KeyOptions)
	if err != nil {
		return RunResult{}, err
	}
	result.Plaintext, err = key.Decrypt(c.cipher)
	if err != nil {
		return RunResult{}, err
	}
	return result, nil
}

func summarizeGeneration(population []string, scores []int64, generation int, bestKey string, bestScore int64) model.GenerationDiagnostics {
	total := 0.0
	minScore := scores[0]
	distinct := make(map[string]struct{}, len(population))
	for i, s := range scores {
		total += float64(s)
		if s < minScore {
			minScore = s
		}
		distinct[population[i]] = struct{}{}
	}
	return model.GenerationDiagnostics{
		Generation: generation,
		BestScore:  bestScore,
		MeanScore:  total / float64(len(scores)),
		MinScore:   minScore,
		BestKey:    bestKey,
		Distinct:   len(distinct),
	}
}

func rankPopulation(population []string, scores []int64) []genetic.Scored {
	ranked := make([]genetic.Scored, len(population))
	for i := range population {
		ranked[i] = genetic.Scored{Key: population[i], Score: scores[i]}
	}
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Score > ranked[j].Score
	})
	return ranked
}
