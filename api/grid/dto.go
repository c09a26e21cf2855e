package grid

import "github.com/beka-birhanu/vinom-pathfinder/pathing"

// MazeRequest asks for a generated maze of Width x Height rooms.
type MazeRequest struct {
	Width  int   `json:"width" binding:"required,min=1"`
	Height int   `json:"height" binding:"required,min=1"`
	Seed   int64 `json:"seed"`
}

// CreateRequest creates a grid. Exactly one of the three shapes is used:
// a text layout, a maze, or plain dimensions (falling back to the defaults).
type CreateRequest struct {
	Width  int          `json:"width"`
	Height int          `json:"height"`
	Layout string       `json:"layout"`
	Maze   *MazeRequest `json:"maze"`
}

// CellRequest addresses a single cell.
type CellRequest struct {
	X *int `json:"x" binding:"required"`
	Y *int `json:"y" binding:"required"`
}

func (r CellRequest) location() pathing.Location {
	return pathing.Location{X: *r.X, Y: *r.Y}
}

// RectRequest addresses the inclusive rectangle between From and To.
type RectRequest struct {
	From pathing.Location `json:"from"`
	To   pathing.Location `json:"to"`
}

// PathRequest asks for a path from Start to Goal.
type PathRequest struct {
	Start pathing.Location `json:"start"`
	Goal  pathing.Location `json:"goal"`
}
