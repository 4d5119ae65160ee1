package fitness

import (
	"errors"
	"math"

	"pfcrack/internal/ngram"
)

var (
	ErrEmptyDistribution = errors.New("fitness requires a non-empty distribution")
	ErrLengthMismatch    = errors.New("candidate and reference n-gram widths differ")
)

// English scores candidate letter distributions against a reference
// language distribution. The reference is read-only after construction and
// safe to share across goroutines.
type English struct {
	ref *ngram.Collector
}

func NewEnglish(ref *ngram.Collector) (*English, error) {
	if ref == nil || ref.Total() == 0 {
		return nil, ErrEmptyDistribution
	}
	return &English{ref: ref}, nil
}

func (f *English) N() int {
	return f.ref.N()
}

// Score measures how close candidate is to the reference: the inverse of
// the summed squared frequency differences, floored to an integer, so a
// higher score means a closer match.
//
// The sum conceptually ranges over every string of uppercase letters of
// width n; since a gram absent from both distributions contributes zero,
// only the union of the two key sets is visited.
func (f *English) Score(candidate *ngram.Collector) (int64, error) {
	if candidate == nil || candidate.Total() == 0 {
		return 0, ErrEmptyDistribution
	}
	if candidate.N() != f.ref.N() {
		return 0, ErrLengthMismatch
	}

	raw := 0.0
	f.ref.Each(func(gram string, _ uint64) {
		diff := f.ref.Freq(gram) - candidate.Freq(gram)
		raw += diff * diff
	})
	candidate.Each(func(gram string, _ uint64) {
		if f.ref.Count(gram) > 0 {
			// Already visited in the reference pass.
			return
		}
		diff := candidate.Freq(gram)
		raw += diff * diff
	})

	if raw == 0 {
		return math.MaxInt64, nil
	}
	return int64(math.Floor(1 / raw)), nil
}
