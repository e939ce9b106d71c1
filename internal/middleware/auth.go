package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/doctors-portal/internal/services"
	"github.com/harentsoaR/doctors-portal/internal/utils"
)

const (
	EmailKey    = "decodedEmail"
	IdentityKey = "identity"
)

// AuthMiddleware requires a valid bearer token. A missing header is 401; a
// malformed, expired or otherwise invalid token is 403.
func AuthMiddleware(tokens *utils.TokenManager) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized access"})
			return
		}

		tokenString, ok := strings.CutPrefix(authHeader, "Bearer ")
		if !ok || tokenString == "" {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "invalid token format"})
			return
		}
		claims, err := tokens.ValidateJWT(tokenString)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "forbidden access"})
			return
		}

		c.Set(EmailKey, claims.Email)
		c.Next()
	}
}

// Require looks up the caller's role and runs the authorization policy for
// the given resource kind and action. It must follow AuthMiddleware.
func Require(users *services.UserService, kind services.ResourceKind, action services.Action) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := c.GetString(EmailKey)
		if email == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "unauthorized access"})
			return
		}

		identity, err := users.Identity(c.Request.Context(), email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		if err := services.Authorize(identity, services.Resource{Kind: kind}, action); err != nil {
			status := http.StatusInternalServerError
			if errors.Is(err, services.ErrForbidden) {
				status = http.StatusForbidden
			}
			c.AbortWithStatusJSON(status, gin.H{"error": err.Error()})
			return
		}

		c.Set(IdentityKey, identity)
		c.Next()
	}
}

// CurrentIdentity returns the identity stored by Require, falling back to the
// token email with no role.
func CurrentIdentity(c *gin.Context) services.Identity {
	if v, ok := c.Get(IdentityKey); ok {
		if identity, ok := v.(services.Identity); ok {
			return identity
		}
	}
	return services.Identity{Email: c.GetString(EmailKey)}
}
