package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"storefront/api/internal/config"
	"storefront/api/internal/models"
	"storefront/api/internal/security"
)

// CurrentUserKey is where Auth stores the authenticated user in the
// request context.
const CurrentUserKey = "current_user"

// UserFinder resolves the account behind a token's email claim.
type UserFinder interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
}

// Auth verifies the bearer access token and loads the account it names.
// Every failure mode reads the same to the client; the distinction only
// shows up in the logs.
func Auth(cfg *config.AppConfig, users UserFinder) gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" || !strings.HasPrefix(authHeader, "Bearer ") {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Permission not granted"})
			return
		}

		tokenStr := strings.TrimPrefix(authHeader, "Bearer ")

		claims, err := security.ParseToken(tokenStr, cfg.Security.JWTAccessSecret)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Permission not granted"})
			return
		}

		user, err := users.FindByEmail(c.Request.Context(), claims.Email)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Permission not granted"})
			return
		}

		c.Set(CurrentUserKey, user)

		c.Next()
	}
}

// CurrentUser returns the user placed in the context by Auth.
func CurrentUser(c *gin.Context) (models.User, bool) {
	v, ok := c.Get(CurrentUserKey)
	if !ok {
		return models.User{}, false
	}
	user, ok := v.(models.User)
	return user, ok
}
