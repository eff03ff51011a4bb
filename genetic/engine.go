package genetic

import (
	"cmp"
	"context"
	"errors"
	"math/rand/v2"
	"slices"
	"sync"

	"github.com/lixenwraith/fusion-sim/parameter"
)

// ErrEmptyPool is returned when no candidate has been evaluated yet
var ErrEmptyPool = errors.New("genetic: no candidates available")

// Engine coordinates the operators and manages the evolution process
// Random draws happen on the calling goroutine only, so a fixed seed with a
// deterministic evaluator reproduces the same run regardless of parallelism
type Engine[S Solution, F Numeric] struct {
	evaluator   EvaluatorFunc[S, F]
	initializer InitializerFunc[S]
	selector    Selector[S, F]
	combiner    Combiner[S, F]
	perturbator Perturbator[S]
	terminator  TerminationFunc[S, F]

	config EngineConfig

	rng         *rand.Rand
	currentPool *Pool[S, F]
	history     []PoolStats[F]
}

// EngineConfig holds configuration parameters for the algorithm
type EngineConfig struct {
	// PoolSize is the number of candidates maintained in each generation
	PoolSize int
	// EliteCount is the number of best solutions preserved unchanged
	EliteCount int
	// PerturbationRate is the per-gene mutation probability (0-1)
	PerturbationRate float64
	// MaxIterations is the number of generations evolved after the initial pool
	MaxIterations int
	// Parallelism bounds concurrent evaluations
	Parallelism int
	// Seed for random number generation (0 for random seed)
	Seed uint64
}

// DefaultConfig returns a reasonable default configuration
func DefaultConfig() EngineConfig {
	return EngineConfig{
		PoolSize:         parameter.GAPoolSize,
		EliteCount:       parameter.GAEliteCount,
		PerturbationRate: parameter.GAPerturbationRate,
		MaxIterations:    parameter.GAMaxIterations,
		Parallelism:      parameter.GAParallelism,
	}
}

// NewEngine creates a genetic algorithm engine with the specified operators
func NewEngine[S Solution, F Numeric](
	evaluator EvaluatorFunc[S, F],
	initializer InitializerFunc[S],
	selector Selector[S, F],
	combiner Combiner[S, F],
	perturbator Perturbator[S],
	config EngineConfig,
) *Engine[S, F] {
	def := DefaultConfig()
	if config.PoolSize < 2 {
		config.PoolSize = def.PoolSize
	}
	config.EliteCount = max(0, min(config.EliteCount, config.PoolSize-1))
	if config.Parallelism < 1 {
		config.Parallelism = 1
	}

	var rng *rand.Rand
	if config.Seed == 0 {
		rng = rand.New(rand.NewPCG(rand.Uint64(), rand.Uint64()))
	} else {
		rng = rand.New(rand.NewPCG(config.Seed, config.Seed))
	}

	return &Engine[S, F]{
		evaluator:   evaluator,
		initializer: initializer,
		selector:    selector,
		combiner:    combiner,
		perturbator: perturbator,
		config:      config,
		rng:         rng,
		history:     make([]PoolStats[F], 0, config.MaxIterations+1),
	}
}

// SetTerminator sets a custom termination condition
func (e *Engine[S, F]) SetTerminator(terminator TerminationFunc[S, F]) {
	e.terminator = terminator
}

// Run evolves until MaxIterations, the terminator fires or ctx is cancelled
// On cancellation the last complete pool is returned with the context error
func (e *Engine[S, F]) Run(ctx context.Context) (*Pool[S, F], error) {
	solutions := make([]S, e.config.PoolSize)
	for i := range solutions {
		solutions[i] = e.initializer(e.rng)
	}
	e.currentPool = e.newPool(solutions, 0)
	e.history = append(e.history, e.currentPool.Stats)

	for iteration := 0; iteration < e.config.MaxIterations; iteration++ {
		if err := ctx.Err(); err != nil {
			return e.currentPool, err
		}
		if e.terminator != nil && e.terminator(e.currentPool, iteration) {
			break
		}

		e.currentPool = e.evolveGeneration()
		e.history = append(e.history, e.currentPool.Stats)
	}
	return e.currentPool, nil
}

// evolveGeneration keeps the elite and fills the rest with perturbed offspring
func (e *Engine[S, F]) evolveGeneration() *Pool[S, F] {
	elite := e.currentPool.Members[:e.config.EliteCount]

	offspring := make([]S, 0, e.config.PoolSize-len(elite))
	for len(offspring) < cap(offspring) {
		parents := e.selector.Select(e.currentPool, 2, e.rng)
		for _, child := range e.combiner.Combine(parents, e.rng) {
			if e.perturbator != nil {
				e.perturbator.Perturb(&child, e.config.PerturbationRate, e.rng)
			}
			offspring = append(offspring, child)
			if len(offspring) == cap(offspring) {
				break
			}
		}
	}

	next := e.newPool(offspring, e.currentPool.Generation+1)
	next.Members = append(next.Members, elite...)
	e.rank(next)
	return next
}

// newPool evaluates solutions concurrently and ranks the result
func (e *Engine[S, F]) newPool(solutions []S, generation int) *Pool[S, F] {
	members := make([]Candidate[S, F], len(solutions))
	sem := make(chan struct{}, e.config.Parallelism)
	var wg sync.WaitGroup

	for i, s := range solutions {
		wg.Add(1)
		sem <- struct{}{}
		go func() {
			defer wg.Done()
			defer func() { <-sem }()
			members[i] = Candidate[S, F]{Data: s, Score: e.evaluator(s)}
		}()
	}
	wg.Wait()

	pool := &Pool[S, F]{Members: members, Generation: generation}
	e.rank(pool)
	return pool
}

// rank sorts members best first and refreshes the statistics
func (e *Engine[S, F]) rank(pool *Pool[S, F]) {
	slices.SortStableFunc(pool.Members, func(a, b Candidate[S, F]) int {
		return cmp.Compare(b.Score, a.Score)
	})
	pool.Stats = calculateStats(pool.Members, pool.Generation)
}

func calculateStats[S Solution, F Numeric](candidates []Candidate[S, F], generation int) PoolStats[F] {
	if len(candidates) == 0 {
		return PoolStats[F]{Generation: generation}
	}

	stats := PoolStats[F]{
		Generation: generation,
		BestScore:  candidates[0].Score,
		WorstScore: candidates[0].Score,
	}
	total := F(0)
	for _, c := range candidates {
		stats.BestScore = max(stats.BestScore, c.Score)
		stats.WorstScore = min(stats.WorstScore, c.Score)
		total += c.Score
	}
	stats.AverageScore = total / F(len(candidates))
	return stats
}

// History returns per-generation statistics, initial pool first
func (e *Engine[S, F]) History() []PoolStats[F] {
	return e.history
}

// Best returns the best candidate found so far
func (e *Engine[S, F]) Best() (Candidate[S, F], error) {
	if e.currentPool == nil || len(e.currentPool.Members) == 0 {
		return Candidate[S, F]{}, ErrEmptyPool
	}
	return e.currentPool.Members[0], nil
}
