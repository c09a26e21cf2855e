package i

import (
	"context"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/pathing"
	"github.com/google/uuid"
)

// GridService manages weighted grids and answers path queries over them.
type GridService interface {
	Create(createdBy string, width, height int) (*domain.Layout, error)
	CreateFromText(createdBy, text string) (*domain.Layout, error)
	CreateMaze(createdBy string, width, height int, seed int64) (*domain.Layout, error)
	Get(id uuid.UUID) (*domain.Layout, error)

	// Edits and Delete are allowed only for the user who created the grid.
	Delete(id uuid.UUID, actor string) error
	SetWall(id uuid.UUID, actor string, l pathing.Location) (*domain.Layout, error)
	RemoveWall(id uuid.UUID, actor string, l pathing.Location) (*domain.Layout, error)
	AddWallRect(id uuid.UUID, actor string, from, to pathing.Location) (*domain.Layout, error)
	SetForest(id uuid.UUID, actor string, l pathing.Location) (*domain.Layout, error)
	RemoveForest(id uuid.UUID, actor string, l pathing.Location) (*domain.Layout, error)
	Clear(id uuid.UUID, actor string) (*domain.Layout, error)

	FindPath(ctx context.Context, id uuid.UUID, start, goal pathing.Location) (domain.PathResult, error)
	Render(id uuid.UUID, start, goal *pathing.Location, overlay domain.Overlay) (string, error)
}
