package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"strconv"
	"sync"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/pathing"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/google/uuid"
)

const (
	maxGridDimension = 512

	pathCacheKeyFmt = "%s:grid_%s:rev_%d:from_%d_%d:to_%d_%d"
	defaultPrefix   = "pathfinder"
)

var (
	ErrGridNotFound     = errors.New("grid not found")
	ErrOutOfBounds      = errors.New("cell is outside the grid")
	ErrGridTooLarge     = errors.New("grid is too large")
	ErrNotOwner         = errors.New("grid belongs to another user")
	ErrStartIsWall      = errors.New("start cell is a wall")
	ErrInvalidOverlay   = errors.New("invalid render overlay")
	ErrMissingLogger    = errors.New("logger is required")
	ErrMissingPersister = errors.New("layout repository is required")
)

// gridSession is one grid held in memory. Edits take the write lock; searches
// copy the grid under the read lock and run on the copy. A deleted session is
// never saved again, even by an edit that looked it up before the delete.
type gridSession struct {
	grid      *pathing.WeightedGrid
	revision  int64
	createdBy string
	deleted   bool
	sync.RWMutex
}

// GridService keeps grids in memory, persists every change and answers path queries.
type GridService struct {
	sessions  map[uuid.UUID]*gridSession
	repo      i.LayoutRepo
	cache     i.PathCache
	engine    *pathing.AStar
	logger    i.Logger
	keyPrefix string
	sync.RWMutex
}

// Config holds the dependencies of a GridService. Cache is optional.
type Config struct {
	Repo      i.LayoutRepo
	Cache     i.PathCache
	Engine    *pathing.AStar
	Logger    i.Logger
	KeyPrefix string
}

// NewGridService creates a GridService from its dependencies.
func NewGridService(c *Config) (*GridService, error) {
	if c.Logger == nil {
		return nil, ErrMissingLogger
	}
	if c.Repo == nil {
		return nil, ErrMissingPersister
	}

	engine := c.Engine
	if engine == nil {
		engine = pathing.NewAStar()
	}
	prefix := c.KeyPrefix
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &GridService{
		sessions:  make(map[uuid.UUID]*gridSession),
		repo:      c.Repo,
		cache:     c.Cache,
		engine:    engine,
		logger:    c.Logger,
		keyPrefix: prefix,
	}, nil
}

// Create makes an empty grid of the given dimensions.
func (s *GridService) Create(createdBy string, width, height int) (*domain.Layout, error) {
	if max(width, height) > maxGridDimension {
		return nil, ErrGridTooLarge
	}
	grid, err := pathing.NewWeightedGrid(width, height)
	if err != nil {
		return nil, err
	}
	return s.register(createdBy, grid)
}

// CreateFromText makes a grid from the '#', '~', '.' text layout.
func (s *GridService) CreateFromText(createdBy, text string) (*domain.Layout, error) {
	grid, err := pathing.ParseLayout(text)
	if err != nil {
		return nil, err
	}
	if max(grid.Width(), grid.Height()) > maxGridDimension {
		return nil, ErrGridTooLarge
	}
	return s.register(createdBy, grid)
}

// CreateMaze makes a grid holding a generated maze of width x height rooms.
func (s *GridService) CreateMaze(createdBy string, width, height int, seed int64) (*domain.Layout, error) {
	grid, err := pathing.GenerateMaze(width, height, rand.New(rand.NewSource(seed)))
	if err != nil {
		return nil, err
	}
	return s.register(createdBy, grid)
}

func (s *GridService) register(createdBy string, grid *pathing.WeightedGrid) (*domain.Layout, error) {
	session := &gridSession{grid: grid, createdBy: createdBy}

	s.Lock()
	id := uuid.New()
	for {
		if _, ok := s.sessions[id]; !ok {
			break
		}
		id = uuid.New()
	}
	s.sessions[id] = session
	s.Unlock()

	layout := domain.NewLayout(id, session.revision, createdBy, grid)
	if err := s.repo.Save(layout); err != nil {
		s.Lock()
		delete(s.sessions, id)
		s.Unlock()
		s.logger.Error(fmt.Sprintf("saving new grid %s: %s", id, err))
		return nil, err
	}

	s.logger.Info(fmt.Sprintf("created %dx%d grid %s", grid.Width(), grid.Height(), id))
	return layout, nil
}

// session returns the in-memory grid, loading it from the repository when needed.
func (s *GridService) session(id uuid.UUID) (*gridSession, error) {
	s.RLock()
	session, ok := s.sessions[id]
	s.RUnlock()
	if ok {
		return session, nil
	}

	layout, err := s.repo.ByID(id)
	if err != nil {
		if errors.Is(err, i.ErrLayoutNotFound) {
			return nil, ErrGridNotFound
		}
		return nil, err
	}
	grid, err := layout.Grid()
	if err != nil {
		return nil, fmt.Errorf("loading grid %s: %w", id, err)
	}

	s.Lock()
	defer s.Unlock()
	if existing, ok := s.sessions[id]; ok {
		return existing, nil
	}
	session = &gridSession{grid: grid, revision: layout.Revision, createdBy: layout.CreatedBy}
	s.sessions[id] = session
	s.logger.Info(fmt.Sprintf("loaded grid %s at revision %d", id, layout.Revision))
	return session, nil
}

// Get returns a snapshot of the grid.
func (s *GridService) Get(id uuid.UUID) (*domain.Layout, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}

	session.RLock()
	defer session.RUnlock()
	if session.deleted {
		return nil, ErrGridNotFound
	}
	return domain.NewLayout(id, session.revision, session.createdBy, session.grid), nil
}

// Delete removes the grid from the repository and forgets it. Only the user
// who created the grid may delete it.
func (s *GridService) Delete(id uuid.UUID, actor string) error {
	session, err := s.session(id)
	if err != nil {
		return err
	}

	session.Lock()
	defer session.Unlock()
	if session.deleted {
		return ErrGridNotFound
	}
	if session.createdBy != actor {
		return ErrNotOwner
	}

	if err := s.repo.Delete(id); err != nil {
		s.logger.Error(fmt.Sprintf("deleting grid %s: %s", id, err))
		return err
	}
	session.deleted = true

	s.Lock()
	delete(s.sessions, id)
	s.Unlock()

	s.logger.Info(fmt.Sprintf("deleted grid %s", id))
	return nil
}

// edit looks the grid up and applies fn to it on behalf of actor.
func (s *GridService) edit(id uuid.UUID, actor, kind string, fn func(*pathing.WeightedGrid) error) (*domain.Layout, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, err
	}
	return s.apply(id, session, actor, kind, fn)
}

// apply runs fn on a copy of the session's grid under the write lock. The copy
// and the bumped revision replace the session state only once they are stored,
// so a failed edit leaves nothing behind.
func (s *GridService) apply(id uuid.UUID, session *gridSession, actor, kind string, fn func(*pathing.WeightedGrid) error) (*domain.Layout, error) {
	session.Lock()
	defer session.Unlock()
	if session.deleted {
		return nil, ErrGridNotFound
	}
	if session.createdBy != actor {
		return nil, ErrNotOwner
	}

	grid := session.grid.Clone()
	if err := fn(grid); err != nil {
		return nil, err
	}

	layout := domain.NewLayout(id, session.revision+1, session.createdBy, grid)
	if err := s.repo.Save(layout); err != nil {
		s.logger.Error(fmt.Sprintf("saving grid %s after %s: %s", id, kind, err))
		return nil, err
	}

	session.grid = grid
	session.revision = layout.Revision
	gridEdits.WithLabelValues(kind).Inc()
	return layout, nil
}

func inBounds(g *pathing.WeightedGrid, l pathing.Location) error {
	if !g.InBounds(l) {
		return fmt.Errorf("%w: %v", ErrOutOfBounds, l)
	}
	return nil
}

// SetWall walls off a single cell.
func (s *GridService) SetWall(id uuid.UUID, actor string, l pathing.Location) (*domain.Layout, error) {
	return s.edit(id, actor, "set_wall", func(g *pathing.WeightedGrid) error {
		if err := inBounds(g, l); err != nil {
			return err
		}
		g.SetWall(l)
		return nil
	})
}

// RemoveWall opens a single cell.
func (s *GridService) RemoveWall(id uuid.UUID, actor string, l pathing.Location) (*domain.Layout, error) {
	return s.edit(id, actor, "remove_wall", func(g *pathing.WeightedGrid) error {
		if err := inBounds(g, l); err != nil {
			return err
		}
		g.RemoveWall(l)
		return nil
	})
}

// AddWallRect walls off the inclusive rectangle spanned by from and to, clipped to the grid.
func (s *GridService) AddWallRect(id uuid.UUID, actor string, from, to pathing.Location) (*domain.Layout, error) {
	return s.edit(id, actor, "add_wall_rect", func(g *pathing.WeightedGrid) error {
		x1, x2 := max(min(from.X, to.X), 0), min(max(from.X, to.X), g.Width()-1)
		y1, y2 := max(min(from.Y, to.Y), 0), min(max(from.Y, to.Y), g.Height()-1)
		if x1 > x2 || y1 > y2 {
			return fmt.Errorf("%w: rectangle %v-%v", ErrOutOfBounds, from, to)
		}
		g.AddWall(x1, y1, x2, y2)
		return nil
	})
}

// SetForest marks a single cell as difficult terrain.
func (s *GridService) SetForest(id uuid.UUID, actor string, l pathing.Location) (*domain.Layout, error) {
	return s.edit(id, actor, "set_forest", func(g *pathing.WeightedGrid) error {
		if err := inBounds(g, l); err != nil {
			return err
		}
		g.SetForest(l)
		return nil
	})
}

// RemoveForest clears difficult terrain from a single cell.
func (s *GridService) RemoveForest(id uuid.UUID, actor string, l pathing.Location) (*domain.Layout, error) {
	return s.edit(id, actor, "remove_forest", func(g *pathing.WeightedGrid) error {
		if err := inBounds(g, l); err != nil {
			return err
		}
		g.RemoveForest(l)
		return nil
	})
}

// Clear removes every wall and forest.
func (s *GridService) Clear(id uuid.UUID, actor string) (*domain.Layout, error) {
	return s.edit(id, actor, "clear", func(g *pathing.WeightedGrid) error {
		g.ClearWalls()
		g.ClearForests()
		return nil
	})
}

// snapshot copies the grid and its revision under the read lock.
func (s *GridService) snapshot(id uuid.UUID) (*pathing.WeightedGrid, int64, error) {
	session, err := s.session(id)
	if err != nil {
		return nil, 0, err
	}

	session.RLock()
	defer session.RUnlock()
	if session.deleted {
		return nil, 0, ErrGridNotFound
	}
	return session.grid.Clone(), session.revision, nil
}

// FindPath searches the grid for a least-cost path. An unreachable goal is
// not an error; it yields a result with Found false. A walled start is
// rejected with ErrStartIsWall.
func (s *GridService) FindPath(ctx context.Context, id uuid.UUID, start, goal pathing.Location) (domain.PathResult, error) {
	grid, revision, err := s.snapshot(id)
	if err != nil {
		return domain.PathResult{}, err
	}
	if grid.IsWall(start) {
		return domain.PathResult{}, fmt.Errorf("%w: %v", ErrStartIsWall, start)
	}

	fill := func() (domain.PathResult, error) {
		return pathResult(s.search(grid, start, goal), revision), nil
	}
	if s.cache == nil {
		return fill()
	}

	result, hit, err := s.cache.GetOrFill(ctx, s.cacheKey(id, revision, start, goal), fill)
	switch {
	case errors.Is(err, i.ErrPathNotStored):
		pathCacheTotal.WithLabelValues("store_error").Inc()
		s.logger.Warning(fmt.Sprintf("path for grid %s not cached: %s", id, err))
		return result, nil
	case err != nil:
		pathCacheTotal.WithLabelValues("error").Inc()
		s.logger.Warning(fmt.Sprintf("path cache unavailable for grid %s: %s", id, err))
		return fill()
	case hit:
		pathCacheTotal.WithLabelValues("hit").Inc()
	default:
		pathCacheTotal.WithLabelValues("miss").Inc()
	}
	return result, nil
}

// search runs the engine and records the search metrics.
func (s *GridService) search(grid *pathing.WeightedGrid, start, goal pathing.Location) *pathing.Result {
	began := time.Now()
	result := s.engine.Search(grid, start, goal)
	searchDuration.Observe(time.Since(began).Seconds())
	searchExpanded.Observe(float64(result.Expanded))

	if result.Found {
		searchTotal.WithLabelValues("found").Inc()
	} else {
		searchTotal.WithLabelValues("unreachable").Inc()
	}
	return result
}

func pathResult(result *pathing.Result, revision int64) domain.PathResult {
	return domain.PathResult{
		Found:    result.Found,
		Path:     result.Path,
		Cost:     result.Cost,
		Expanded: result.Expanded,
		Revision: revision,
	}
}

func (s *GridService) cacheKey(id uuid.UUID, revision int64, start, goal pathing.Location) string {
	return fmt.Sprintf(pathCacheKeyFmt, s.keyPrefix, id, revision, start.X, start.Y, goal.X, goal.Y)
}

// Render draws the grid as text. When start and goal are both given, the
// search between them is drawn with the chosen overlay: the path, the
// predecessor arrows, or the cost from start of every reached cell.
func (s *GridService) Render(id uuid.UUID, start, goal *pathing.Location, overlay domain.Overlay) (string, error) {
	switch overlay {
	case "", domain.OverlayPath, domain.OverlayCameFrom, domain.OverlayDistances:
	default:
		return "", fmt.Errorf("%w: %q", ErrInvalidOverlay, overlay)
	}
	if overlay != "" && (start == nil || goal == nil) {
		return "", fmt.Errorf("%w: %q needs a start and a goal", ErrInvalidOverlay, overlay)
	}

	grid, _, err := s.snapshot(id)
	if err != nil {
		return "", err
	}
	if start == nil || goal == nil {
		return pathing.Render(grid, pathing.RenderOptions{}), nil
	}
	if grid.IsWall(*start) {
		return "", fmt.Errorf("%w: %v", ErrStartIsWall, *start)
	}

	result := s.search(grid, *start, *goal)
	opts := pathing.RenderOptions{}
	switch overlay {
	case domain.OverlayCameFrom:
		opts.CameFrom = result.CameFrom
	case domain.OverlayDistances:
		opts.Distances = result.CostSoFar
		opts.FieldWidth = distanceFieldWidth(result.CostSoFar)
	default:
		opts.Path = result.Path
	}
	return pathing.Render(grid, opts), nil
}

// distanceFieldWidth fits the widest distance plus one space of separation.
func distanceFieldWidth(distances map[pathing.Location]float64) int {
	width := 1
	for _, d := range distances {
		width = max(width, len(strconv.FormatFloat(d, 'f', -1, 64)))
	}
	return width + 1
}
