package pathing

import (
	"errors"
	"slices"
)

var (
	ErrUnreachable = errors.New("goal is unreachable from start")
)

// Graph is anything AStar can search.
type Graph interface {
	Neighbors(l Location) []Location
	Cost(from, to Location) float64
}

// Heuristic estimates the remaining cost from a cell to the goal.
type Heuristic func(from, to Location) float64

// Result contains the outcome of a search.
// CameFrom and CostSoFar are owned by this result; the engine never reuses them.
type Result struct {
	Path      []Location            // Start to goal inclusive, nil when not found
	Cost      float64               // Total cost of Path
	Found     bool                  // Whether the goal was reached
	Expanded  int                   // Number of frontier pops that were expanded
	CameFrom  map[Location]Location // Predecessor of every reached cell; start maps to itself
	CostSoFar map[Location]float64  // Best known cost from start of every reached cell
}

// Options defines parameters for the search.
type Options struct {
	Heuristic Heuristic
}

// Option is a function that modifies Options.
type Option func(*Options)

// WithHeuristic replaces the Manhattan heuristic. The replacement must not
// overestimate the remaining cost or paths may not be optimal.
func WithHeuristic(h Heuristic) Option {
	return func(o *Options) { o.Heuristic = h }
}

// AStar runs best-first searches over a Graph. It keeps no state between
// searches, so one value can serve any number of sequential or concurrent calls.
type AStar struct {
	heuristic Heuristic
}

// NewAStar creates an engine using the Manhattan heuristic unless overridden.
func NewAStar(options ...Option) *AStar {
	opts := Options{Heuristic: Manhattan}
	for _, option := range options {
		option(&opts)
	}
	if opts.Heuristic == nil {
		opts.Heuristic = Manhattan
	}
	return &AStar{heuristic: opts.Heuristic}
}

// FindPath returns the least-cost path from start to goal, both inclusive.
// It returns ErrUnreachable when no path exists.
//
// Only cells entered from a neighbor are checked for walls, so a start cell
// that is itself a wall still begins the returned path. Callers that need
// every path cell to be open must check the start first.
func (a *AStar) FindPath(g Graph, start, goal Location) ([]Location, error) {
	result := a.Search(g, start, goal)
	if !result.Found {
		return nil, ErrUnreachable
	}
	return result.Path, nil
}

// Search runs A* from start to goal and returns the full search state.
func (a *AStar) Search(g Graph, start, goal Location) *Result {
	heuristic := a.heuristic
	if heuristic == nil {
		heuristic = Manhattan
	}

	cameFrom := map[Location]Location{start: start}
	costSoFar := map[Location]float64{start: 0}

	var frontier PriorityQueue
	frontier.Put(start, 0)

	expanded := 0
	for !frontier.Empty() {
		current := frontier.Get()
		if current == goal {
			break
		}
		expanded++

		for _, next := range g.Neighbors(current) {
			newCost := costSoFar[current] + g.Cost(current, next)
			if known, ok := costSoFar[next]; !ok || newCost < known {
				costSoFar[next] = newCost
				frontier.Put(next, newCost+heuristic(next, goal))
				cameFrom[next] = current
			}
		}
	}

	result := &Result{
		Expanded:  expanded,
		CameFrom:  cameFrom,
		CostSoFar: costSoFar,
	}

	path, ok := reconstructPath(cameFrom, start, goal)
	if !ok {
		return result
	}
	result.Path = path
	result.Cost = costSoFar[goal]
	result.Found = true
	return result
}

// reconstructPath walks cameFrom back from goal to start and reverses the walk.
// It reports false when goal was never reached.
func reconstructPath(cameFrom map[Location]Location, start, goal Location) ([]Location, bool) {
	if _, reached := cameFrom[goal]; !reached {
		return nil, false
	}

	path := []Location{goal}
	for current := goal; current != start; {
		previous, ok := cameFrom[current]
		if !ok || previous == current {
			return nil, false
		}
		path = append(path, previous)
		current = previous
	}

	slices.Reverse(path)
	return path, true
}

// PathCost sums the cost of entering each cell of path after the first.
func PathCost(g Graph, path []Location) float64 {
	total := 0.0
	for i := 1; i < len(path); i++ {
		total += g.Cost(path[i-1], path[i])
	}
	return total
}
