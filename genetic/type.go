package genetic

import (
	"math/rand/v2"
)

// Solution represents any type that can be used as a solution encoding
type Solution any

// Numeric constrains types to numeric values for fitness scores
type Numeric interface {
	~int | ~int8 | ~int16 | ~int32 | ~int64 |
		~uint | ~uint8 | ~uint16 | ~uint32 | ~uint64 |
		~float32 | ~float64
}

// Candidate represents a potential solution with its evaluated quality score
// S is the solution type, F is the fitness score type (higher = better)
type Candidate[S Solution, F Numeric] struct {
	Data  S
	Score F
}

// Pool is the working set of candidates of one generation, best first
type Pool[S Solution, F Numeric] struct {
	Members    []Candidate[S, F]
	Generation int
	Stats      PoolStats[F]
}

// PoolStats contains statistical information about a candidate pool
type PoolStats[F Numeric] struct {
	Generation   int `json:"generation"`
	BestScore    F   `json:"best_score"`
	WorstScore   F   `json:"worst_score"`
	AverageScore F   `json:"average_score"`
}

// EvaluatorFunc calculates the quality score for a solution
// Called concurrently; must not share mutable state between calls
type EvaluatorFunc[S Solution, F Numeric] func(solution S) F

// InitializerFunc creates an initial solution candidate
type InitializerFunc[S Solution] func(rng *rand.Rand) S

// TerminationFunc determines if the algorithm should stop before iteration
type TerminationFunc[S Solution, F Numeric] func(pool *Pool[S, F], iteration int) bool

// Selector chooses candidates from the pool for reproduction
type Selector[S Solution, F Numeric] interface {
	Select(pool *Pool[S, F], size int, rng *rand.Rand) []Candidate[S, F]
}

// Combiner creates offspring encodings from parent solutions
type Combiner[S Solution, F Numeric] interface {
	Combine(parents []Candidate[S, F], rng *rand.Rand) []S
}

// Perturbator modifies a solution in-place; rate is the per-gene probability (0-1)
type Perturbator[S Solution] interface {
	Perturb(solution *S, rate float64, rng *rand.Rand)
}
