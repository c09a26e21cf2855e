package pathing

import (
	"fmt"
	"math"
)

// Location identifies a single grid cell by its coordinates.
type Location struct {
	X int `json:"x" bson:"x"` // Column of the cell
	Y int `json:"y" bson:"y"` // Row of the cell
}

// Less orders locations lexicographically on (X, Y).
func (l Location) Less(other Location) bool {
	if l.X != other.X {
		return l.X < other.X
	}
	return l.Y < other.Y
}

// String renders the location as (x,y).
func (l Location) String() string {
	return fmt.Sprintf("(%d,%d)", l.X, l.Y)
}

// Adjacent reports whether other differs from l by one unit on exactly one axis.
func (l Location) Adjacent(other Location) bool {
	dx := math.Abs(float64(l.X - other.X))
	dy := math.Abs(float64(l.Y - other.Y))
	return dx+dy == 1
}

// Manhattan is the heuristic used by AStar.
func Manhattan(a, b Location) float64 {
	return math.Abs(float64(a.X-b.X)) + math.Abs(float64(a.Y-b.Y))
}
