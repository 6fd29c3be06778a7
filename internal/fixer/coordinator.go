package fixer

import (
	"context"

	"github.com/tsuzulint/tsuzulint-go/internal/hashing"
)

// DefaultMaxIterations bounds how many lint-fix-relint rounds Coordinator
// runs before giving up on reaching a fixed point.
const DefaultMaxIterations = 3

// Status is why Converge stopped iterating.
type Status string

const (
	// StatusConverged means an iteration produced no further fixes.
	StatusConverged Status = "converged"
	// StatusMaxIterationsReached means MaxIterations elapsed without
	// reaching a fixed point or a cycle.
	StatusMaxIterationsReached Status = "max_iterations_reached"
	// StatusCycleDetected means a previously seen content hash recurred:
	// fixes are flapping between two or more states.
	StatusCycleDetected Status = "cycle_detected"
)

// ConvergeResult is the outcome of running fixes to a fixed point.
type ConvergeResult struct {
	FinalContent string
	Iterations   int
	FixesApplied int
	Status       Status

	// CycleLength is the number of iterations between a content hash's
	// first appearance and its recurrence. Only set when Status is
	// StatusCycleDetected.
	CycleLength int
}

// Coordinator drives ApplyFixes to a fixed point: after each pass it
// re-lints the fixed content and applies any new fixes that pass uncovers,
// stopping when an iteration produces no change, the content hash repeats
// (a fix cycle), or MaxIterations is reached.
type Coordinator struct {
	MaxIterations int
}

// NewCoordinator returns a Coordinator with DefaultMaxIterations.
func NewCoordinator() *Coordinator {
	return &Coordinator{MaxIterations: DefaultMaxIterations}
}

// Converge repeatedly lints and fixes content until no further fixes
// apply, a previously seen content hash recurs, or MaxIterations is hit.
// lintAndFix is called with the content as it stands at the start of each
// iteration and returns the Result of linting and fixing that content.
func (c *Coordinator) Converge(
	ctx context.Context,
	path string,
	content string,
	lintAndFix func(ctx context.Context, path, content string) (Result, error),
) (ConvergeResult, error) {
	max := c.MaxIterations
	if max <= 0 {
		max = DefaultMaxIterations
	}

	seenAt := map[string]int{hashing.String(content): 0}
	current := content
	totalFixes := 0

	for i := 0; i < max; i++ {
		result, err := lintAndFix(ctx, path, current)
		if err != nil {
			return ConvergeResult{}, err
		}
		if !result.Modified {
			return ConvergeResult{FinalContent: current, Iterations: i, FixesApplied: totalFixes, Status: StatusConverged}, nil
		}

		totalFixes += result.FixesApplied
		nextHash := hashing.String(result.FixedContent)
		round := i + 1
		if firstSeen, ok := seenAt[nextHash]; ok {
			// A cycle: the same content reappeared, so further iteration
			// would just repeat it. Stop at the content we already have.
			return ConvergeResult{
				FinalContent: current,
				Iterations:   round,
				FixesApplied: totalFixes,
				Status:       StatusCycleDetected,
				CycleLength:  round - firstSeen,
			}, nil
		}
		seenAt[nextHash] = round
		current = result.FixedContent
	}

	return ConvergeResult{FinalContent: current, Iterations: max, FixesApplied: totalFixes, Status: StatusMaxIterationsReached}, nil
}
