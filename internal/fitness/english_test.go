package fitness

import (
	"errors"
	"math"
	"math/rand"
	"testing"

	"pfcrack/internal/ngram"
)

const sampleText = "It was a bright cold day in April and the clocks were striking " +
	"thirteen Winston Smith his chin nuzzled into his breast in an effort to " +
	"escape the vile wind slipped quickly through the glass doors though not " +
	"quickly enough to prevent a swirl of gritty dust from entering along with him"

func collect(t *testing.T, n int, text string) *ngram.Collector {
	t.Helper()
	c, err := ngram.New(n)
	if err != nil {
		t.Fatalf("new collector: %v", err)
	}
	c.CollectBytes([]byte(text))
	return c
}

func TestScoreIdenticalDistributionIsMaximal(t *testing.T) {
	ref := collect(t, 2, sampleText)
	scorer, err := NewEnglish(ref)
	if err != nil {
		t.Fatalf("new english: %v", err)
	}

	candidate := collect(t, 2, sampleText)
	score, err := scorer.Score(candidate)
	if err != nil {
		t.Fatalf("score: %v", err)
	}
	if score != math.MaxInt64 {
		t.Fatalf("identical distributions should score maximal, got %d", score)
	}
}

func TestScorePrefersReferenceOverShuffled(t *testing.T) {
	ref := collect(t, 2, sampleText)
	scorer, err := NewEnglish(ref)
	if err != nil {
		t.Fatalf("new english: %v", err)
	}

	letters := make([]byte, 0, len(sampleText))
	for _, b := range []byte(sampleText) {
		if b >= 'a' && b <= 'z' || b >= 'A' && b <= 'Z' {
			letters = append(letters, b)
		}
	}
	rng := rand.New(rand.NewSource(3))
	rng.Shuffle(len(letters), func(i, j int) {
		letters[i], letters[j] = letters[j], letters[i]
	})
	shuffled := collect(t, 2, string(letters))

	natural, err := scorer.Score(collect(t, 2, sampleText))
	if err != nil {
		t.Fatalf("score natural: %v", err)
	}
	scrambled, err := scorer.Score(shuffled)
	if err != nil {
		t.Fatalf("score shuffled: %v", err)
	}
	if natural <= scrambled {
		t.Fatalf("natural text must outscore shuffled letters: %d <= %d", natural, scrambled)
	}
}

func TestScoreMatchesFullEnumeration(t *testing.T) {
	ref := collect(t, 2, "the theme of these tests")
	candidate := collect(t, 2, "another short sample here")

	scorer, err := NewEnglish(ref)
	if err != nil {
		t.Fatalf("new english: %v", err)
	}
	score, err := scorer.Score(candidate)
	if err != nil {
		t.Fatalf("score: %v", err)
	}

	// Walk every bigram of the full 26-letter alphabet; grams absent from
	// both distributions contribute nothing.
	raw := 0.0
	for a := byte('A'); a <= 'Z'; a++ {
		for b := byte('A'); b <= 'Z'; b++ {
			gram := string([]byte{a, b})
			diff := ref.Freq(gram) - candidate.Freq(gram)
			raw += diff * diff
		}
	}
	want := int64(math.Floor(1 / raw))
	// Summation order differs between the two formulations; allow the
	// floor to land one off.
	if score < want-1 || score > want+1 {
		t.Fatalf("union iteration disagrees with enumeration: got %d want %d", score, want)
	}
}

func TestScoreErrors(t *testing.T) {
	ref := collect(t, 2, sampleText)
	scorer, err := NewEnglish(ref)
	if err != nil {
		t.Fatalf("new english: %v", err)
	}

	empty, _ := ngram.New(2)
	if _, err := scorer.Score(empty); !errors.Is(err, ErrEmptyDistribution) {
		t.Fatalf("expected ErrEmptyDistribution, got %v", err)
	}

	trigram := collect(t, 3, sampleText)
	if _, err := scorer.Score(trigram); !errors.Is(err, ErrLengthMismatch) {
		t.Fatalf("expected ErrLengthMismatch, got %v", err)
	}

	emptyRef, _ := ngram.New(2)
	if _, err := NewEnglish(emptyRef); !errors.Is(err, ErrEmptyDistribution) {
		t.Fatalf("expected ErrEmptyDistribution for empty reference, got %v", err)
	}
	if _, err := NewEnglish(nil); !errors.Is(err, ErrEmptyDistribution) {
		t.Fatalf("expected ErrEmptyDistribution for nil reference, got %v", err)
	}
}
