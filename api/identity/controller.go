// Package identity exposes registration and login, and the middleware guarding protected routes.
package identity

import (
	"errors"
	"net/http"

	identitypkg "github.com/beka-birhanu/vinom-pathfinder/identity"
	"github.com/beka-birhanu/vinom-pathfinder/service"
	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/gin-gonic/gin"
)

// IdentityServer handles HTTP requests related to authentication.
type IdentityServer struct {
	authService i.Authenticator
}

// NewIdentityServer creates a new IdentityServer.
func NewIdentityServer(a i.Authenticator) *IdentityServer {
	return &IdentityServer{authService: a}
}

// RegisterPublic registers the register and login routes.
func (c *IdentityServer) RegisterPublic(route *gin.RouterGroup) {
	auth := route.Group("/auth")
	{
		auth.POST("/register", c.registerUser)
		auth.POST("/login", c.login)
	}
}

// RegisterProtected registers nothing; every identity route is public.
func (c *IdentityServer) RegisterProtected(*gin.RouterGroup) {}

func (c *IdentityServer) registerUser(ctx *gin.Context) {
	request, ok := bindAuthRequest(ctx)
	if !ok {
		return
	}

	if err := c.authService.Register(request.Username, request.Password); err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusCreated, gin.H{"username": request.Username})
}

func (c *IdentityServer) login(ctx *gin.Context) {
	request, ok := bindAuthRequest(ctx)
	if !ok {
		return
	}

	user, token, err := c.authService.SignIn(request.Username, request.Password)
	if err != nil {
		ctx.JSON(statusFor(err), gin.H{"error": err.Error()})
		return
	}
	ctx.JSON(http.StatusOK, &AuthResponse{
		ID:       user.ID.String(),
		Username: user.Username,
		Token:    token,
	})
}

func bindAuthRequest(ctx *gin.Context) (AuthRequest, bool) {
	var request AuthRequest
	if err := ctx.ShouldBindJSON(&request); err != nil {
		ctx.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return request, false
	}
	return request, true
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, service.ErrInvalidCredentials):
		return http.StatusUnauthorized
	case errors.Is(err, i.ErrUsernameTaken):
		return http.StatusConflict
	case errors.Is(err, identitypkg.ErrUsernameTooShort),
		errors.Is(err, identitypkg.ErrUsernameTooLong),
		errors.Is(err, identitypkg.ErrInvalidUsername),
		errors.Is(err, identitypkg.ErrWeakPassword):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}
