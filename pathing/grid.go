/*
Package pathing provides weighted grids and an A* search over them.

A Grid is a bounded lattice of cells with a set of walls. A WeightedGrid adds
difficult terrain ("forests") that costs more to enter. AStar finds a least-cost
path between two cells of anything implementing Graph.

Utility functions build sample layouts, generate mazes and render grids as text.
*/
package pathing

import (
	"errors"
	"slices"
)

var (
	// directions holds the east, north, west and south unit offsets, in that order.
	directions = [4]Location{{X: 1, Y: 0}, {X: 0, Y: -1}, {X: -1, Y: 0}, {X: 0, Y: 1}}

	ErrInvalidDimensions = errors.New("grid dimensions must be positive")
)

// Grid represents a rectangular lattice with impassable cells.
type Grid struct {
	width  int                   // Number of columns
	height int                   // Number of rows
	walls  map[Location]struct{} // Cells that cannot be entered
}

// NewGrid creates an empty grid of the given dimensions.
func NewGrid(width, height int) (*Grid, error) {
	if width <= 0 || height <= 0 {
		return nil, ErrInvalidDimensions
	}

	return &Grid{
		width:  width,
		height: height,
		walls:  make(map[Location]struct{}),
	}, nil
}

// Width returns the number of columns.
func (g *Grid) Width() int {
	return g.width
}

// Height returns the number of rows.
func (g *Grid) Height() int {
	return g.height
}

// InBounds reports whether l lies inside the grid.
func (g *Grid) InBounds(l Location) bool {
	return 0 <= l.X && l.X < g.width && 0 <= l.Y && l.Y < g.height
}

// Passable reports whether l is not a wall. Bounds are not checked.
func (g *Grid) Passable(l Location) bool {
	_, wall := g.walls[l]
	return !wall
}

// Neighbors returns the in-bound, passable cells adjacent to l.
// The list is reversed for cells whose coordinate sum is even, which makes
// equal-cost paths alternate direction instead of hugging one axis.
func (g *Grid) Neighbors(l Location) []Location {
	result := make([]Location, 0, len(directions))
	for _, dir := range directions {
		next := Location{X: l.X + dir.X, Y: l.Y + dir.Y}
		if g.InBounds(next) && g.Passable(next) {
			result = append(result, next)
		}
	}

	if (l.X+l.Y)%2 == 0 {
		slices.Reverse(result)
	}
	return result
}

// AddWall walls off every cell of the inclusive rectangle [x1,x2]x[y1,y2].
// Cells outside the grid are stored too; they are never visited.
func (g *Grid) AddWall(x1, y1, x2, y2 int) {
	for x := x1; x <= x2; x++ {
		for y := y1; y <= y2; y++ {
			g.walls[Location{X: x, Y: y}] = struct{}{}
		}
	}
}

// SetWall marks a single cell as a wall.
func (g *Grid) SetWall(l Location) {
	g.walls[l] = struct{}{}
}

// RemoveWall clears the wall at l, if any.
func (g *Grid) RemoveWall(l Location) {
	delete(g.walls, l)
}

// IsWall reports whether l is a wall.
func (g *Grid) IsWall(l Location) bool {
	return !g.Passable(l)
}

// WallCount returns the number of walled cells.
func (g *Grid) WallCount() int {
	return len(g.walls)
}

// Walls returns every wall sorted by Location.Less.
func (g *Grid) Walls() []Location {
	return sortedKeys(g.walls)
}

// ClearWalls removes every wall.
func (g *Grid) ClearWalls() {
	clear(g.walls)
}

func (g *Grid) clone() *Grid {
	walls := make(map[Location]struct{}, len(g.walls))
	for l := range g.walls {
		walls[l] = struct{}{}
	}
	return &Grid{width: g.width, height: g.height, walls: walls}
}

func sortedKeys(set map[Location]struct{}) []Location {
	keys := make([]Location, 0, len(set))
	for l := range set {
		keys = append(keys, l)
	}
	slices.SortFunc(keys, compareLocations)
	return keys
}

func compareLocations(a, b Location) int {
	switch {
	case a.Less(b):
		return -1
	case b.Less(a):
		return 1
	default:
		return 0
	}
}
