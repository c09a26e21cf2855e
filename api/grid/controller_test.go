package grid

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/beka-birhanu/vinom-pathfinder/api"
	apii "github.com/beka-birhanu/vinom-pathfinder/api/i"
	"github.com/beka-birhanu/vinom-pathfinder/api/identity"
	"github.com/beka-birhanu/vinom-pathfinder/domain"
	"github.com/beka-birhanu/vinom-pathfinder/infrastruture/token"
	"github.com/beka-birhanu/vinom-pathfinder/logger"
	"github.com/beka-birhanu/vinom-pathfinder/pathing"
	"github.com/beka-birhanu/vinom-pathfinder/service"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type memoryLayoutRepo struct {
	layouts map[uuid.UUID]domain.Layout
	sync.Mutex
}

func (r *memoryLayoutRepo) Save(layout *domain.Layout) error {
	r.Lock()
	defer r.Unlock()
	r.layouts[layout.ID] = *layout
	return nil
}

func (r *memoryLayoutRepo) ByID(id uuid.UUID) (*domain.Layout, error) {
	r.Lock()
	defer r.Unlock()
	layout, ok := r.layouts[id]
	if !ok {
		return nil, i.ErrLayoutNotFound
	}
	return &layout, nil
}

func (r *memoryLayoutRepo) Delete(id uuid.UUID) error {
	r.Lock()
	defer r.Unlock()
	delete(r.layouts, id)
	return nil
}

type fixture struct {
	handler    http.Handler
	token      string // alice
	otherToken string // bob
}

func newFixture(t *testing.T) *fixture {
	t.Helper()

	gridService, err := service.NewGridService(&service.Config{
		Repo:   &memoryLayoutRepo{layouts: make(map[uuid.UUID]domain.Layout)},
		Logger: logger.Discard(),
	})
	require.NoError(t, err)

	controller, err := NewController(Config{GridService: gridService, DefaultWidth: 6, DefaultHeight: 4})
	require.NoError(t, err)

	tokenizer := token.NewJwtService("test-secret", "pathfinder")
	tok, err := tokenizer.Generate(map[string]interface{}{"username": "alice"}, time.Hour)
	require.NoError(t, err)
	other, err := tokenizer.Generate(map[string]interface{}{"username": "bob"}, time.Hour)
	require.NoError(t, err)

	router := api.NewRouter(api.Config{
		BaseURL:                 "/api",
		Mode:                    gin.TestMode,
		Controllers:             []apii.Controller{controller},
		AuthorizationMiddleware: identity.Authorize(tokenizer),
	})
	return &fixture{handler: router.Handler(), token: tok, otherToken: other}
}

func (f *fixture) do(t *testing.T, method, path string, body interface{}, auth bool) *httptest.ResponseRecorder {
	t.Helper()
	tok := ""
	if auth {
		tok = f.token
	}
	return f.doAs(t, method, path, body, tok)
}

func (f *fixture) doAs(t *testing.T, method, path string, body interface{}, tok string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if tok != "" {
		req.Header.Set("Authorization", "Bearer "+tok)
	}
	rec := httptest.NewRecorder()
	f.handler.ServeHTTP(rec, req)
	return rec
}

func (f *fixture) createGrid(t *testing.T, body interface{}) domain.Layout {
	t.Helper()

	rec := f.do(t, http.MethodPost, "/api/v1/grids", body, true)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	var layout domain.Layout
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &layout))
	return layout
}

func TestController(t *testing.T) {
	t.Run("create requires a token", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/api/v1/grids", CreateRequest{Width: 3, Height: 3}, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("create with dimensions", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Width: 3, Height: 2})
		assert.Equal(t, 3, layout.Width)
		assert.Equal(t, 2, layout.Height)
		assert.Equal(t, "alice", layout.CreatedBy)
	})

	t.Run("create falls back to default dimensions", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{})
		assert.Equal(t, 6, layout.Width)
		assert.Equal(t, 4, layout.Height)
	})

	t.Run("create from text layout", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Layout: "..#\n~..\n"})
		assert.Equal(t, 3, layout.Width)
		assert.Len(t, layout.Walls, 1)
		assert.Len(t, layout.Forests, 1)
	})

	t.Run("create maze", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Maze: &MazeRequest{Width: 3, Height: 2, Seed: 7}})
		assert.Equal(t, 7, layout.Width)
		assert.Equal(t, 5, layout.Height)
	})

	t.Run("create rejects bad input", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodPost, "/api/v1/grids", CreateRequest{Width: -1, Height: 3}, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(t, http.MethodPost, "/api/v1/grids", CreateRequest{Layout: "..\n.x\n"}, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("get", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Width: 3, Height: 3})

		rec := f.do(t, http.MethodGet, "/api/v1/grids/"+layout.ID.String(), nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.Layout
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, layout.ID, got.ID)

		rec = f.do(t, http.MethodGet, "/api/v1/grids/"+uuid.New().String(), nil, false)
		assert.Equal(t, http.StatusNotFound, rec.Code)

		rec = f.do(t, http.MethodGet, "/api/v1/grids/not-a-uuid", nil, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wall and forest edits", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Width: 4, Height: 4})
		base := "/api/v1/grids/" + layout.ID.String()

		rec := f.do(t, http.MethodPut, base+"/walls", map[string]int{"x": 1, "y": 1}, true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		rec = f.do(t, http.MethodPut, base+"/forests", map[string]int{"x": 2, "y": 2}, true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

		var got domain.Layout
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got.Walls, 1)
		assert.Len(t, got.Forests, 1)
		assert.Equal(t, int64(2), got.Revision)

		rec = f.do(t, http.MethodDelete, base+"/walls", map[string]int{"x": 1, "y": 1}, true)
		require.Equal(t, http.StatusOK, rec.Code)
		rec = f.do(t, http.MethodDelete, base+"/forests", map[string]int{"x": 2, "y": 2}, true)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Empty(t, got.Walls)
		assert.Empty(t, got.Forests)
	})

	t.Run("cell edit validation", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Width: 4, Height: 4})
		base := "/api/v1/grids/" + layout.ID.String()

		rec := f.do(t, http.MethodPut, base+"/walls", map[string]int{"x": 9, "y": 0}, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(t, http.MethodPut, base+"/walls", map[string]int{"x": 1}, true)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(t, http.MethodPut, base+"/walls", map[string]int{"x": 1, "y": 1}, false)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("only the creator may change a grid", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Width: 4, Height: 4})
		base := "/api/v1/grids/" + layout.ID.String()

		rec := f.doAs(t, http.MethodPut, base+"/walls", map[string]int{"x": 1, "y": 1}, f.otherToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = f.doAs(t, http.MethodPost, base+"/clear", nil, f.otherToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)
		rec = f.doAs(t, http.MethodDelete, base, nil, f.otherToken)
		assert.Equal(t, http.StatusForbidden, rec.Code)

		rec = f.do(t, http.MethodGet, base, nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		var got domain.Layout
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Zero(t, got.Revision)
		assert.Empty(t, got.Walls)
	})

	t.Run("wall rectangle and clear", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Width: 4, Height: 4})
		base := "/api/v1/grids/" + layout.ID.String()

		rec := f.do(t, http.MethodPost, base+"/walls/rect", RectRequest{From: loc(1, 0), To: loc(1, 2)}, true)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var got domain.Layout
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Len(t, got.Walls, 3)

		rec = f.do(t, http.MethodPost, base+"/clear", nil, true)
		require.Equal(t, http.StatusOK, rec.Code)
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Empty(t, got.Walls)
	})

	t.Run("find path", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Layout: ".#.\n.#.\n...\n"})
		base := "/api/v1/grids/" + layout.ID.String()

		rec := f.do(t, http.MethodPost, base+"/path", PathRequest{Start: loc(0, 0), Goal: loc(2, 0)}, false)
		require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
		var result domain.PathResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.True(t, result.Found)
		assert.Equal(t, 6.0, result.Cost)
		assert.Len(t, result.Path, 7)
	})

	t.Run("find path from a wall", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Layout: "#..\n"})

		rec := f.do(t, http.MethodPost, "/api/v1/grids/"+layout.ID.String()+"/path", PathRequest{Start: loc(0, 0), Goal: loc(2, 0)}, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("find path to enclosed goal", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Layout: "..#.\n..#.\n"})

		rec := f.do(t, http.MethodPost, "/api/v1/grids/"+layout.ID.String()+"/path", PathRequest{Start: loc(0, 0), Goal: loc(3, 0)}, false)
		require.Equal(t, http.StatusOK, rec.Code)
		var result domain.PathResult
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &result))
		assert.False(t, result.Found)
		assert.Empty(t, result.Path)
	})

	t.Run("render", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Layout: "...\n.#~\n...\n"})
		base := "/api/v1/grids/" + layout.ID.String()

		rec := f.do(t, http.MethodGet, base+"/render", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "#")
		assert.Contains(t, rec.Body.String(), "~")
		assert.NotContains(t, rec.Body.String(), "@")

		rec = f.do(t, http.MethodGet, base+"/render?sx=0&sy=0&gx=2&gy=2", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.Contains(t, rec.Body.String(), "@")

		rec = f.do(t, http.MethodGet, base+"/render?sx=0&sy=0&gx=2&gy=2&overlay=came_from", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "*<"), rec.Body.String())

		rec = f.do(t, http.MethodGet, base+"/render?sx=0&sy=0&gx=2&gy=2&overlay=distances", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.HasPrefix(rec.Body.String(), "0 1 2 "), rec.Body.String())

		rec = f.do(t, http.MethodGet, base+"/render?sx=0&sy=zero&gx=2&gy=2", nil, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(t, http.MethodGet, base+"/render?sx=0&sy=0&gx=2&gy=2&overlay=heatmap", nil, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)

		rec = f.do(t, http.MethodGet, base+"/render?overlay=distances", nil, false)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("delete", func(t *testing.T) {
		f := newFixture(t)
		layout := f.createGrid(t, CreateRequest{Width: 2, Height: 2})
		path := "/api/v1/grids/" + layout.ID.String()

		rec := f.do(t, http.MethodDelete, path, nil, true)
		assert.Equal(t, http.StatusNoContent, rec.Code)

		rec = f.do(t, http.MethodGet, path, nil, false)
		assert.Equal(t, http.StatusNotFound, rec.Code)
	})

	t.Run("metrics endpoint", func(t *testing.T) {
		f := newFixture(t)
		rec := f.do(t, http.MethodGet, "/metrics", nil, false)
		require.Equal(t, http.StatusOK, rec.Code)
		assert.True(t, strings.Contains(rec.Body.String(), "go_goroutines"))
	})
}

func TestNewController(t *testing.T) {
	_, err := NewController(Config{})
	assert.ErrorIs(t, err, errMissingGridService)
}

func loc(x, y int) pathing.Location { return pathing.Location{X: x, Y: y} }
