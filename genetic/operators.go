package genetic

import (
	"math/rand/v2"
	"slices"
)

// TournamentSelector samples small groups and selects the best from each group
type TournamentSelector[S Solution, F Numeric] struct {
	// TournamentSize is the number of candidates competing in each tournament
	TournamentSize int
}

func (ts *TournamentSelector[S, F]) Select(pool *Pool[S, F], size int, rng *rand.Rand) []Candidate[S, F] {
	poolSize := len(pool.Members)
	if poolSize == 0 || size <= 0 {
		return nil
	}

	tournSize := min(ts.TournamentSize, poolSize)
	if tournSize < 1 {
		tournSize = min(2, poolSize)
	}

	selected := make([]Candidate[S, F], 0, size)
	for len(selected) < size {
		winner := pool.Members[rng.IntN(poolSize)]
		for i := 1; i < tournSize; i++ {
			if c := pool.Members[rng.IntN(poolSize)]; c.Score > winner.Score {
				winner = c
			}
		}
		selected = append(selected, winner)
	}
	return selected
}

// UniformCombiner performs uniform crossover between two parents
// Each gene independently comes from either parent
type UniformCombiner[S ~[]T, T any, F Numeric] struct {
	// MixProbability is the chance of taking a gene from the first parent
	MixProbability float64
}

func (uc *UniformCombiner[S, T, F]) Combine(parents []Candidate[S, F], rng *rand.Rand) []S {
	switch len(parents) {
	case 0:
		return nil
	case 1:
		return []S{slices.Clone(parents[0].Data)}
	}

	p1, p2 := parents[0].Data, parents[1].Data
	length := min(len(p1), len(p2))
	o1 := make(S, length)
	o2 := make(S, length)

	for i := 0; i < length; i++ {
		if rng.Float64() < uc.MixProbability {
			o1[i], o2[i] = p1[i], p2[i]
		} else {
			o1[i], o2[i] = p2[i], p1[i]
		}
	}
	return []S{o1, o2}
}

// ParameterBounds defines min/max for a single gene
type ParameterBounds struct {
	Min, Max float64
}

// Clamp limits v to the bounds
func (b ParameterBounds) Clamp(v float64) float64 {
	return max(b.Min, min(b.Max, v))
}

// BoundedPerturbator applies gaussian noise scaled to each gene's range, then clamps
type BoundedPerturbator struct {
	Bounds []ParameterBounds
	// StandardDeviation is relative to the gene's range
	StandardDeviation float64
}

func (bp *BoundedPerturbator) Perturb(solution *[]float64, rate float64, rng *rand.Rand) {
	if solution == nil {
		return
	}
	for i := range *solution {
		if i >= len(bp.Bounds) {
			break
		}
		if rng.Float64() >= rate {
			continue
		}
		b := bp.Bounds[i]
		(*solution)[i] = b.Clamp((*solution)[i] + rng.NormFloat64()*bp.StandardDeviation*(b.Max-b.Min))
	}
}

// Clamp enforces bounds without mutation of the input
func (bp *BoundedPerturbator) Clamp(solution []float64) []float64 {
	result := make([]float64, len(solution))
	for i, v := range solution {
		if i < len(bp.Bounds) {
			v = bp.Bounds[i].Clamp(v)
		}
		result[i] = v
	}
	return result
}

// UniformInitializer draws each gene uniformly within its bounds
func UniformInitializer(bounds []ParameterBounds) InitializerFunc[[]float64] {
	return func(rng *rand.Rand) []float64 {
		s := make([]float64, len(bounds))
		for i, b := range bounds {
			s[i] = b.Min + rng.Float64()*(b.Max-b.Min)
		}
		return s
	}
}
