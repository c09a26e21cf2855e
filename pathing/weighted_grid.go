package pathing

const (
	defaultCost = 1.0
	forestCost  = 5.0
)

// WeightedGrid is a Grid whose forest cells cost more to enter.
// A cell that is both a wall and a forest is never entered.
type WeightedGrid struct {
	*Grid
	forests map[Location]struct{}
}

// NewWeightedGrid creates an empty weighted grid of the given dimensions.
func NewWeightedGrid(width, height int) (*WeightedGrid, error) {
	grid, err := NewGrid(width, height)
	if err != nil {
		return nil, err
	}

	return &WeightedGrid{
		Grid:    grid,
		forests: make(map[Location]struct{}),
	}, nil
}

// Cost returns the cost of stepping into to. The from cell does not affect it.
func (w *WeightedGrid) Cost(from, to Location) float64 {
	if _, forest := w.forests[to]; forest {
		return forestCost
	}
	return defaultCost
}

// SetForest marks l as difficult terrain.
func (w *WeightedGrid) SetForest(l Location) {
	w.forests[l] = struct{}{}
}

// AddForest marks every cell of the inclusive rectangle [x1,x2]x[y1,y2] as forest.
func (w *WeightedGrid) AddForest(x1, y1, x2, y2 int) {
	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			w.forests[Location{X: x, Y: y}] = struct{}{}
		}
	}
}

// RemoveForest clears the forest at l, if any.
func (w *WeightedGrid) RemoveForest(l Location) {
	delete(w.forests, l)
}

// IsForest reports whether l is difficult terrain.
func (w *WeightedGrid) IsForest(l Location) bool {
	_, forest := w.forests[l]
	return forest
}

// Forests returns every forest cell sorted by Location.Less.
func (w *WeightedGrid) Forests() []Location {
	return sortedKeys(w.forests)
}

// ClearForests removes every forest.
func (w *WeightedGrid) ClearForests() {
	clear(w.forests)
}

// Clone returns a deep copy that shares no state with w.
func (w *WeightedGrid) Clone() *WeightedGrid {
	forests := make(map[Location]struct{}, len(w.forests))
	for l := range w.forests {
		forests[l] = struct{}{}
	}
	return &WeightedGrid{Grid: w.Grid.clone(), forests: forests}
}
