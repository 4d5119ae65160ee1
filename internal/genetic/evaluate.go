package genetic

import (
	"context"
	"fmt"
	"sync"

	"pfcrack/internal/ngram"
	"pfcrack/internal/playfair"
)

// Scorer rates one candidate letter distribution; higher is better.
type Scorer interface {
	N() int
	Score(candidate *ngram.Collector) (int64, error)
}

// ScorePopulation decrypts the ciphertext with every key and scores the
// resulting plaintext distributions. Evaluation fans out over a worker
// pool; each score is a pure function of (key, cipher, scorer), and the
// results are merged in population order so runs stay reproducible.
func ScorePopulation(ctx context.Context, population []string, scorer Scorer, cipher []byte, opts playfair.Options, workers int) ([]int64, error) {
	if scorer == nil {
		return nil, fmt.Errorf("%w: scorer is required", ErrInvalidParams)
	}
	if workers <= 0 {
		workers = 1
	}
	if workers > len(population) {
		workers = len(population)
	}

	type job struct {
		idx int
		key string
	}
	type result struct {
		idx   int
		score int64
		err   error
	}

	jobs := make(chan job)
	results := make(chan result, len(population))

	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			collector, err := ngram.New(scorer.N())
			if err != nil {
				for j := range jobs {
					results <- result{idx: j.idx, err: err}
				}
				return
			}
			for j := range jobs {
				if err := ctx.Err(); err != nil {
					results <- result{idx: j.idx, err: err}
					continue
				}
				score, err := scoreKey(j.key, scorer, cipher, opts, collector)
				results <- result{idx: j.idx, score: score, err: err}
			}
		}()
	}

	for i := range population {
		jobs <- job{idx: i, key: population[i]}
	}
	close(jobs)

	wg.Wait()
	close(results)

	scores := make([]int64, len(population))
	for res := range results {
		if res.err != nil {
			return nil, res.err
		}
		scores[res.idx] = res.score
	}
	return scores, nil
}

// scoreKey decrypts cipher with key and scores the plaintext n-gram
// distribution. The collector is reset between members; it never carries
// counts across evaluations.
func scoreKey(key string, scorer Scorer, cipher []byte, opts playfair.Options, collector *ngram.Collector) (int64, error) {
	pk, err := playfair.NewFromSquare(key, opts)
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidKey, err)
	}
	plain, err := pk.Decrypt(cipher)
	if err != nil {
		return 0, err
	}
	collector.Reset()
	collector.CollectBytes(plain)
	return scorer.Score(collector)
}
