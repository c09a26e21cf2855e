package identity

import (
	"net/http"
	"strings"

	"github.com/beka-birhanu/vinom-pathfinder/service/i"
	"github.com/gin-gonic/gin"
)

const (
	// ContextUserClaims is the key used to store user claims in the Gin context.
	ContextUserClaims = "userClaims"
	// ContextUsername is the key holding the authenticated username.
	ContextUsername = "username"

	bearerScheme = "bearer"
)

// Authorize rejects requests without a valid bearer token naming a user. The
// token claims are stored under ContextUserClaims and the username under
// ContextUsername.
func Authorize(ts i.Tokenizer) gin.HandlerFunc {
	return func(c *gin.Context) {
		token, ok := bearerToken(c.GetHeader("Authorization"))
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing bearer token"})
			return
		}

		claims, err := ts.Decode(token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token"})
			return
		}
		name, _ := claims["username"].(string)
		if name == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token names no user"})
			return
		}

		c.Set(ContextUserClaims, claims)
		c.Set(ContextUsername, name)
		c.Next()
	}
}

// Username returns the user set by Authorize, or "" on public routes.
func Username(c *gin.Context) string {
	return c.GetString(ContextUsername)
}

// bearerToken extracts the token from an "Authorization: Bearer <token>" header.
func bearerToken(header string) (string, bool) {
	scheme, token, found := strings.Cut(header, " ")
	if !found || !strings.EqualFold(scheme, bearerScheme) || token == "" {
		return "", false
	}
	return token, true
}
