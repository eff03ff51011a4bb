package parameter

// Genetic Algorithm - Engine Configuration
const (
	// GAPoolSize is the number of candidates in each population
	GAPoolSize = 16

	// GAEliteCount is preserved best performers per generation
	GAEliteCount = 2

	// GAPerturbationRate is per-gene probability of mutation (0.0-1.0)
	GAPerturbationRate = 0.3

	// GAMaxIterations is the default number of generations
	GAMaxIterations = 8

	// GAParallelism for batch evaluation
	GAParallelism = 4

	// GATournamentSize for selection pressure
	GATournamentSize = 3

	// GACrossoverMixProbability for uniform crossover
	GACrossoverMixProbability = 0.5

	// GAPerturbationStdDev is the mutation spread relative to a gene's range
	GAPerturbationStdDev = 0.1
)

// Settings tuning
const (
	// TuneEpisodeTicks is the length of one evaluation episode
	TuneEpisodeTicks = 600

	// TuneEpisodesPerCandidate averages fitness over this many seeds
	TuneEpisodesPerCandidate = 2
)
