package genetic

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidKey signals an operator that produced a non-permutation.
	// Search state is corrupt at that point; callers must abort the run.
	ErrInvalidKey = errors.New("operator produced an invalid key")

	ErrInvalidParams = errors.New("invalid generation parameters")
)

// MutationType selects the per-generation mutation operator.
type MutationType int

const (
	// Swap exchanges two distinct positions of every non-elite key.
	Swap MutationType = iota
	// Inversion reverses a random slice of a key with the configured
	// per-individual probability.
	Inversion
)

func (t MutationType) String() string {
	switch t {
	case Swap:
		return "swap"
	case Inversion:
		return "inversion"
	default:
		return fmt.Sprintf("mutation_type(%d)", int(t))
	}
}

func ParseMutationType(name string) (MutationType, error) {
	switch name {
	case "swap":
		return Swap, nil
	case "inversion":
		return Inversion, nil
	default:
		return 0, fmt.Errorf("%w: unknown mutation type: %q", ErrInvalidParams, name)
	}
}

// Params configures one generation step.
type Params struct {
	// NumChildren is the number of crossover children produced from the
	// two selected parents.
	NumChildren int
	// NewRandom is the number of fresh random keys injected.
	NewRandom int
	// MutationRate is the per-individual probability used by the
	// inversion mutation. Must be in [0, 1].
	MutationRate float64
	// MutationType selects swap or inversion mutation.
	MutationType MutationType
	// KillWorst is the number of lowest-scoring members culled before
	// parent selection.
	KillWorst int
	// KeepBest is the number of top members carried unchanged into the
	// next generation.
	KeepBest int
}

func (p Params) Validate() error {
	if p.NumChildren < 0 {
		return fmt.Errorf("%w: num children must be >= 0: %d", ErrInvalidParams, p.NumChildren)
	}
	if p.NewRandom < 0 {
		return fmt.Errorf("%w: new random must be >= 0: %d", ErrInvalidParams, p.NewRandom)
	}
	if p.MutationRate < 0 || p.MutationRate > 1 {
		return fmt.Errorf("%w: mutation rate must be in [0, 1]: %g", ErrInvalidParams, p.MutationRate)
	}
	if p.MutationType != Swap && p.MutationType != Inversion {
		return fmt.Errorf("%w: unknown mutation type: %d", ErrInvalidParams, int(p.MutationType))
	}
	if p.KillWorst < 0 {
		return fmt.Errorf("%w: kill worst must be >= 0: %d", ErrInvalidParams, p.KillWorst)
	}
	if p.KeepBest < 0 {
		return fmt.Errorf("%w: keep best must be >= 0: %d", ErrInvalidParams, p.KeepBest)
	}
	return nil
}
