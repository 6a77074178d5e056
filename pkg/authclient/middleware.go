package authclient

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
)

// ContextIdentityKey is where GinMiddleware attaches the resolved identity.
const ContextIdentityKey = "authIdentity"

// GinMiddleware adapts a Verifier for the sibling services' routers. A
// rejection from the auth service is proxied to the caller verbatim, status
// and body both.
func GinMiddleware(verifier Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "token not provided"})
			return
		}

		identity, err := verifier.Verify(c.Request.Context(), authHeader)
		if err != nil {
			var statusErr *StatusError
			if errors.As(err, &statusErr) {
				c.Data(statusErr.StatusCode, "application/json", statusErr.Body)
				c.Abort()
				return
			}
			c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"error": "failed to validate token"})
			return
		}

		c.Set(ContextIdentityKey, identity)
		c.Next()
	}
}

// RequireRole gates a route to the listed roles after GinMiddleware ran.
func RequireRole(roles ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity := IdentityFrom(c)
		if identity == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "authentication required"})
			return
		}
		for _, role := range roles {
			if strings.EqualFold(identity.Role, role) {
				c.Next()
				return
			}
		}
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "access denied"})
	}
}

// IdentityFrom returns the identity attached by GinMiddleware, or nil.
func IdentityFrom(c *gin.Context) *Identity {
	val, exists := c.Get(ContextIdentityKey)
	if !exists {
		return nil
	}
	identity, ok := val.(*Identity)
	if !ok {
		return nil
	}
	return identity
}
