// Package grid exposes grid editing and path queries over HTTP.
package grid

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/beka-birhanu/vinom-pathfinder/api/identity"
	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/pathing"
	"github.com/beka-birhanu/vinom-pathfinder/service"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

var errMissingGridService = errors.New("grid service is required")

// Controller handles HTTP requests on grids.
type Controller struct {
	gridService   i.GridService
	defaultWidth  int
	defaultHeight int
}

// Config holds the dependencies of a Controller.
type Config struct {
	GridService   i.GridService
	DefaultWidth  int // Used when a create request gives no dimensions
	DefaultHeight int
}

// NewController creates a new grid Controller.
func NewController(c Config) (*Controller, error) {
	if c.GridService == nil {
		return nil, errMissingGridService
	}
	return &Controller{
		gridService:   c.GridService,
		defaultWidth:  c.DefaultWidth,
		defaultHeight: c.DefaultHeight,
	}, nil
}

// RegisterPublic registers read-only routes.
func (c *Controller) RegisterPublic(route *gin.RouterGroup) {
	grids := route.Group("/grids")
	{
		grids.GET("/:ID", c.get)
		grids.GET("/:ID/render", c.render)
		grids.POST("/:ID/path", c.findPath)
	}
}

// RegisterProtected registers routes that change grids.
func (c *Controller) RegisterProtected(route *gin.RouterGroup) {
	grids := route.Group("/grids")
	{
		grids.POST("", c.create)
		grids.DELETE("/:ID", c.delete)
		grids.POST("/:ID/clear", c.clear)
		grids.PUT("/:ID/walls", c.cellEdit(c.gridService.SetWall))
		grids.DELETE("/:ID/walls", c.cellEdit(c.gridService.RemoveWall))
		grids.POST("/:ID/walls/rect", c.wallRect)
		grids.PUT("/:ID/forests", c.cellEdit(c.gridService.SetForest))
		grids.DELETE("/:ID/forests", c.cellEdit(c.gridService.RemoveForest))
	}
}

func (c *Controller) create(ctx *gin.Context) {
	var request CreateRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	createdBy := identity.Username(ctx)
	var (
		layout *domain.Layout
		err    error
	)
	switch {
	case request.Layout != "":
		layout, err = c.gridService.CreateFromText(createdBy, request.Layout)
	case request.Maze != nil:
		layout, err = c.gridService.CreateMaze(createdBy, request.Maze.Width, request.Maze.Height, request.Maze.Seed)
	default:
		width, height := request.Width, request.Height
		if width == 0 && height == 0 {
			width, height = c.defaultWidth, c.defaultHeight
		}
		layout, err = c.gridService.Create(createdBy, width, height)
	}
	if err != nil {
		abortWithError(ctx, err)
		return
	}

	ctx.JSON(http.StatusCreated, layout)
}

func (c *Controller) get(ctx *gin.Context) {
	id, ok := gridID(ctx)
	if !ok {
		return
	}

	layout, err := c.gridService.Get(id)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, layout)
}

func (c *Controller) delete(ctx *gin.Context) {
	id, ok := gridID(ctx)
	if !ok {
		return
	}

	if err := c.gridService.Delete(id, identity.Username(ctx)); err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.Status(http.StatusNoContent)
}

// cellEdit wraps a single-cell service edit into a handler acting for the
// authenticated user.
func (c *Controller) cellEdit(edit func(uuid.UUID, string, pathing.Location) (*domain.Layout, error)) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		id, ok := gridID(ctx)
		if !ok {
			return
		}

		var request CellRequest
		if err := ctx.ShouldBindJSON(&request); err != nil {
			ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}

		layout, err := edit(id, identity.Username(ctx), request.location())
		if err != nil {
			abortWithError(ctx, err)
			return
		}
		ctx.JSON(http.StatusOK, layout)
	}
}

func (c *Controller) clear(ctx *gin.Context) {
	id, ok := gridID(ctx)
	if !ok {
		return
	}

	layout, err := c.gridService.Clear(id, identity.Username(ctx))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, layout)
}

func (c *Controller) wallRect(ctx *gin.Context) {
	id, ok := gridID(ctx)
	if !ok {
		return
	}

	var request RectRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	layout, err := c.gridService.AddWallRect(id, identity.Username(ctx), request.From, request.To)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, layout)
}

func (c *Controller) findPath(ctx *gin.Context) {
	id, ok := gridID(ctx)
	if !ok {
		return
	}

	var request PathRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := c.gridService.FindPath(ctx.Request.Context(), id, request.Start, request.Goal)
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.JSON(http.StatusOK, result)
}

// render answers with the text drawing of a grid. With sx, sy, gx and gy
// query parameters the search between them is drawn too, as the path or as
// the overlay named by the overlay parameter (came_from, distances).
func (c *Controller) render(ctx *gin.Context) {
	id, ok := gridID(ctx)
	if !ok {
		return
	}

	var start, goal *pathing.Location
	if _, ok := ctx.GetQuery("sx"); ok {
		coords := make([]int, 4)
		for n, key := range []string{"sx", "sy", "gx", "gy"} {
			v, err := strconv.Atoi(ctx.Query(key))
			if err != nil {
				ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid " + key})
				return
			}
			coords[n] = v
		}
		start = &pathing.Location{X: coords[0], Y: coords[1]}
		goal = &pathing.Location{X: coords[2], Y: coords[3]}
	}

	text, err := c.gridService.Render(id, start, goal, domain.Overlay(ctx.Query("overlay")))
	if err != nil {
		abortWithError(ctx, err)
		return
	}
	ctx.String(http.StatusOK, text)
}

func gridID(ctx *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(ctx.Param("ID"))
	if err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": "invalid grid id"})
		return uuid.Nil, false
	}
	return id, true
}

func abortWithError(ctx *gin.Context, err error) {
	switch {
	case errors.Is(err, service.ErrGridNotFound):
		ctx.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrNotOwner):
		ctx.JSON(http.StatusForbidden, gin.H{"error": err.Error()})
	case errors.Is(err, service.ErrOutOfBounds),
		errors.Is(err, service.ErrStartIsWall),
		errors.Is(err, service.ErrInvalidOverlay),
		errors.Is(err, service.ErrGridTooLarge),
		errors.Is(err, pathing.ErrInvalidDimensions),
		errors.Is(err, pathing.ErrInvalidLayout):
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
	default:
		ctx.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}
