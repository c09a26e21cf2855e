package identity

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	identitypkg "github.com/beka-birhanu/vinom-pathfinder/identity"
	"github.com/beka-birhanu/vinom-pathfinder/infrastruture/token"
	"github.com/beka-birhanu/vinom-pathfinder/service"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubAuthenticator struct {
	registered map[string]string
}

func (a *stubAuthenticator) Register(username, password string) error {
	if _, ok := a.registered[username]; ok {
		return i.ErrUsernameTaken
	}
	if password == "weak" {
		return identitypkg.ErrWeakPassword
	}
	if username == "broken" {
		return errors.New("store unavailable")
	}
	a.registered[username] = password
	return nil
}

func (a *stubAuthenticator) SignIn(username, password string) (*identitypkg.User, string, error) {
	if a.registered[username] != password {
		return nil, "", service.ErrInvalidCredentials
	}
	return &identitypkg.User{ID: uuid.New(), Username: username}, "token-" + username, nil
}

func newEngine(a *stubAuthenticator) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	NewIdentityServer(a).RegisterPublic(engine.Group("/v1"))
	return engine
}

func post(t *testing.T, h http.Handler, path string, body interface{}) *httptest.ResponseRecorder {
	t.Helper()
	data, err := json.Marshal(body)
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(data))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestIdentityServer(t *testing.T) {
	t.Run("register then login", func(t *testing.T) {
		engine := newEngine(&stubAuthenticator{registered: map[string]string{}})

		rec := post(t, engine, "/v1/auth/register", AuthRequest{Username: "alice", Password: "secret"})
		require.Equal(t, http.StatusCreated, rec.Code)

		rec = post(t, engine, "/v1/auth/login", AuthRequest{Username: "alice", Password: "secret"})
		require.Equal(t, http.StatusOK, rec.Code)
		var response AuthResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &response))
		assert.Equal(t, "alice", response.Username)
		assert.Equal(t, "token-alice", response.Token)
	})

	t.Run("duplicate registration", func(t *testing.T) {
		engine := newEngine(&stubAuthenticator{registered: map[string]string{"alice": "x"}})
		rec := post(t, engine, "/v1/auth/register", AuthRequest{Username: "alice", Password: "secret"})
		assert.Equal(t, http.StatusConflict, rec.Code)
	})

	t.Run("weak password", func(t *testing.T) {
		engine := newEngine(&stubAuthenticator{registered: map[string]string{}})
		rec := post(t, engine, "/v1/auth/register", AuthRequest{Username: "alice", Password: "weak"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("repository failure", func(t *testing.T) {
		engine := newEngine(&stubAuthenticator{registered: map[string]string{}})
		rec := post(t, engine, "/v1/auth/register", AuthRequest{Username: "broken", Password: "secret"})
		assert.Equal(t, http.StatusInternalServerError, rec.Code)
	})

	t.Run("missing fields", func(t *testing.T) {
		engine := newEngine(&stubAuthenticator{registered: map[string]string{}})
		rec := post(t, engine, "/v1/auth/login", map[string]string{"username": "alice"})
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("wrong password", func(t *testing.T) {
		engine := newEngine(&stubAuthenticator{registered: map[string]string{"alice": "secret"}})
		rec := post(t, engine, "/v1/auth/login", AuthRequest{Username: "alice", Password: "nope"})
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestAuthorize(t *testing.T) {
	tokenizer := token.NewJwtService("test-secret", "pathfinder")
	valid, err := tokenizer.Generate(map[string]interface{}{"username": "alice"}, time.Hour)
	require.NoError(t, err)
	anonymous, err := tokenizer.Generate(map[string]interface{}{"userID": uuid.NewString()}, time.Hour)
	require.NoError(t, err)

	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.GET("/me", Authorize(tokenizer), func(c *gin.Context) {
		claims := c.MustGet(ContextUserClaims).(map[string]interface{})
		assert.Equal(t, "alice", claims["username"])
		c.String(http.StatusOK, Username(c))
	})

	cases := []struct {
		name   string
		header string
		code   int
	}{
		{"valid bearer token", "Bearer " + valid, http.StatusOK},
		{"lowercase scheme", "bearer " + valid, http.StatusOK},
		{"missing header", "", http.StatusUnauthorized},
		{"wrong scheme", "Basic " + valid, http.StatusUnauthorized},
		{"garbage token", "Bearer abc.def.ghi", http.StatusUnauthorized},
		{"empty token", "Bearer ", http.StatusUnauthorized},
		{"token without a username", "Bearer " + anonymous, http.StatusUnauthorized},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tc.header != "" {
				req.Header.Set("Authorization", tc.header)
			}
			rec := httptest.NewRecorder()
			engine.ServeHTTP(rec, req)
			assert.Equal(t, tc.code, rec.Code)
			if tc.code == http.StatusOK {
				assert.Equal(t, "alice", rec.Body.String())
			}
		})
	}
}
