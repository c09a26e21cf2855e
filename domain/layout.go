// Package domain holds the records shared between the service, its storage and its API.
package domain

import (
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/pathing"
	"github.com/google/uuid"
)

// Layout is the persisted form of a weighted grid.
type Layout struct {
	ID        uuid.UUID          `bson:"_id" json:"id"`
	Width     int                `bson:"width" json:"width"`
	Height    int                `bson:"height" json:"height"`
	Walls     []pathing.Location `bson:"walls" json:"walls"`
	Forests   []pathing.Location `bson:"forests" json:"forests"`
	Revision  int64              `bson:"revision" json:"revision"` // Bumped on every edit
	CreatedBy string             `bson:"createdBy" json:"created_by"`
	UpdatedAt time.Time          `bson:"updatedAt" json:"updated_at"`
}

// NewLayout snapshots g into a Layout.
func NewLayout(id uuid.UUID, revision int64, createdBy string, g *pathing.WeightedGrid) *Layout {
	return &Layout{
		ID:        id,
		Width:     g.Width(),
		Height:    g.Height(),
		Walls:     g.Walls(),
		Forests:   g.Forests(),
		Revision:  revision,
		CreatedBy: createdBy,
		UpdatedAt: time.Now().UTC(),
	}
}

// Grid rebuilds the weighted grid described by the layout.
func (l *Layout) Grid() (*pathing.WeightedGrid, error) {
	g, err := pathing.NewWeightedGrid(l.Width, l.Height)
	if err != nil {
		return nil, err
	}
	for _, w := range l.Walls {
		g.SetWall(w)
	}
	for _, f := range l.Forests {
		g.SetForest(f)
	}
	return g, nil
}

// PathResult is the outcome of a path query.
type PathResult struct {
	Found    bool               `json:"found"`
	Path     []pathing.Location `json:"path"`
	Cost     float64            `json:"cost"`
	Expanded int                `json:"expanded"`
	Revision int64              `json:"revision"` // Grid revision the path was computed on
}

// Overlay selects how a search is drawn over a rendered grid.
type Overlay string

const (
	OverlayPath      Overlay = "path"      // '@' on every path cell
	OverlayCameFrom  Overlay = "came_from" // Arrows towards each reached cell's predecessor
	OverlayDistances Overlay = "distances" // Cost from start of each reached cell
)
