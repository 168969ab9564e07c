package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"storefront/api/internal/middleware"
	"storefront/api/internal/models"
	"storefront/api/internal/payment"
)

// fail maps unexpected errors to a generic body so store and provider
// internals never leak to the client.
func (h HandlerSet) fail(c *gin.Context, err error) {
	if errors.Is(err, payment.ErrUpstream) {
		h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("payment provider failure")
		c.JSON(http.StatusBadGateway, gin.H{"message": "Payment provider unavailable"})
		return
	}

	h.log.Error().Err(err).Str("path", c.Request.URL.Path).Msg("request failed")
	c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error"})
}

// requester returns the authenticated user placed in the context by the
// auth middleware. The routes using it are all behind that middleware, so a
// miss means a wiring bug, answered like any other denied request.
func (h HandlerSet) requester(c *gin.Context) (models.User, bool) {
	user, ok := middleware.CurrentUser(c)
	if !ok {
		c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"message": "Permission not granted"})
	}
	return user, ok
}

func pathID(c *gin.Context, name string) (int64, bool) {
	id, err := strconv.ParseInt(c.Param(name), 10, 64)
	if err != nil || id <= 0 {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Invalid id"})
		return 0, false
	}
	return id, true
}

func permissionDenied(c *gin.Context) {
	c.JSON(http.StatusUnauthorized, gin.H{"message": "Permission not granted"})
}
