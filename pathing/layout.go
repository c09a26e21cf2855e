package pathing

import (
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"strings"
)

const (
	wallGlyph   = '#'
	forestGlyph = '~'
	openGlyph   = '.'
	pathGlyph   = '@'
	originGlyph = '*'

	maxMazeDimension = 64
)

var (
	ErrInvalidLayout = errors.New("invalid grid layout")
)

// Diagram4 returns the 10x10 sample grid with a wall block in the lower left
// and a band of forest through the middle.
func Diagram4() *WeightedGrid {
	grid, _ := NewWeightedGrid(10, 10)
	grid.AddWall(1, 7, 3, 8)
	for _, l := range []Location{
		{3, 4}, {3, 5}, {4, 1}, {4, 2},
		{4, 3}, {4, 4}, {4, 5}, {4, 6},
		{4, 7}, {4, 8}, {5, 1}, {5, 2},
		{5, 3}, {5, 4}, {5, 5}, {5, 6},
		{5, 7}, {5, 8}, {6, 2}, {6, 3},
		{6, 4}, {6, 5}, {6, 6}, {6, 7},
		{7, 3}, {7, 4}, {7, 5},
	} {
		grid.SetForest(l)
	}
	return grid
}

// ParseLayout builds a weighted grid from rows of '#' (wall), '~' (forest)
// and '.' (open) characters. Every row must have the same length.
func ParseLayout(text string) (*WeightedGrid, error) {
	var rows []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimRight(line, "\r \t")
		if line == "" {
			continue
		}
		rows = append(rows, line)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no rows", ErrInvalidLayout)
	}

	width := len(rows[0])
	grid, err := NewWeightedGrid(width, len(rows))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidLayout, err)
	}

	for y, row := range rows {
		if len(row) != width {
			return nil, fmt.Errorf("%w: row %d has %d cells, want %d", ErrInvalidLayout, y, len(row), width)
		}
		for x, glyph := range []byte(row) {
			switch glyph {
			case wallGlyph:
				grid.SetWall(Location{X: x, Y: y})
			case forestGlyph:
				grid.SetForest(Location{X: x, Y: y})
			case openGlyph:
			default:
				return nil, fmt.Errorf("%w: unexpected %q at %v", ErrInvalidLayout, glyph, Location{X: x, Y: y})
			}
		}
	}
	return grid, nil
}

// RenderOptions selects what Render overlays on the grid.
type RenderOptions struct {
	FieldWidth int                   // Characters per cell, at least 1
	Path       []Location            // Drawn as '@'
	CameFrom   map[Location]Location // Drawn as arrows towards the predecessor
	Distances  map[Location]float64  // Drawn as numbers
}

// Render draws the grid as text, one row per line. Walls take precedence over
// predecessor arrows, arrows over distances, distances over the path, and the
// path over forests.
func Render(g *WeightedGrid, opts RenderOptions) string {
	width := max(opts.FieldWidth, 1)
	onPath := make(map[Location]struct{}, len(opts.Path))
	for _, l := range opts.Path {
		onPath[l] = struct{}{}
	}

	var output strings.Builder
	for y := 0; y < g.Height(); y++ {
		for x := 0; x < g.Width(); x++ {
			l := Location{X: x, Y: y}
			if g.IsWall(l) {
				output.WriteString(strings.Repeat(string(wallGlyph), width))
				continue
			}

			cell := string(openGlyph)
			if next, ok := opts.CameFrom[l]; ok {
				cell = arrow(l, next)
			} else if d, ok := opts.Distances[l]; ok {
				cell = strconv.FormatFloat(d, 'f', -1, 64)
			} else if _, ok := onPath[l]; ok {
				cell = string(pathGlyph)
			} else if g.IsForest(l) {
				cell = string(forestGlyph)
			}
			output.WriteString(cell)
			if pad := width - len(cell); pad > 0 {
				output.WriteString(strings.Repeat(" ", pad))
			}
		}
		output.WriteByte('\n')
	}
	return output.String()
}

func arrow(from, to Location) string {
	switch {
	case to.X == from.X+1:
		return ">"
	case to.X == from.X-1:
		return "<"
	case to.Y == from.Y+1:
		return "v"
	case to.Y == from.Y-1:
		return "^"
	default:
		return string(originGlyph)
	}
}

// GenerateMaze carves a perfect maze of width x height rooms with Wilson's
// algorithm. Rooms sit at odd coordinates of a (2*width+1) x (2*height+1)
// grid; everything else starts as wall and passages are opened between rooms.
// The same rng seed always yields the same maze.
func GenerateMaze(width, height int, rng *rand.Rand) (*WeightedGrid, error) {
	if min(width, height) <= 0 || max(width, height) > maxMazeDimension {
		return nil, fmt.Errorf("%w: maze rooms must be within 1..%d", ErrInvalidDimensions, maxMazeDimension)
	}

	grid, err := NewWeightedGrid(2*width+1, 2*height+1)
	if err != nil {
		return nil, err
	}
	grid.AddWall(0, 0, grid.Width()-1, grid.Height()-1)

	room := func(r Location) Location { return Location{X: 2*r.X + 1, Y: 2*r.Y + 1} }
	inRooms := func(r Location) bool { return 0 <= r.X && r.X < width && 0 <= r.Y && r.Y < height }

	order := make([]Location, 0, width*height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			order = append(order, Location{X: x, Y: y})
		}
	}
	rng.Shuffle(len(order), func(i, j int) { order[i], order[j] = order[j], order[i] })

	visited := map[Location]struct{}{order[0]: {}}
	grid.RemoveWall(room(order[0]))

	for _, start := range order[1:] {
		if _, done := visited[start]; done {
			continue
		}

		// Random walk until a visited room is hit; the last exit taken from each
		// room erases any loops.
		exits := make(map[Location]Location)
		for cell := start; ; {
			var options []Location
			for _, dir := range directions {
				if next := (Location{X: cell.X + dir.X, Y: cell.Y + dir.Y}); inRooms(next) {
					options = append(options, next)
				}
			}
			next := options[rng.Intn(len(options))]
			exits[cell] = next
			if _, done := visited[next]; done {
				break
			}
			cell = next
		}

		for cell := start; ; {
			next := exits[cell]
			visited[cell] = struct{}{}
			grid.RemoveWall(room(cell))
			grid.RemoveWall(Location{X: cell.X + next.X + 1, Y: cell.Y + next.Y + 1})
			if _, done := visited[next]; done {
				break
			}
			cell = next
		}
	}
	return grid, nil
}
