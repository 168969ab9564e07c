package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/api/internal/permissions"
	"storefront/api/internal/repository"
)

func (h HandlerSet) ListUsers(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionReadAll, permissions.ResourceUser, permissions.Context{
		RequesterEmail: requester.Email,
	})
	if !d.Granted {
		permissionDenied(c)
		return
	}

	users, err := h.users.List(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	views := make([]permissions.UserView, 0, len(users))
	for _, user := range users {
		views = append(views, permissions.ViewUser(user))
	}

	c.JSON(http.StatusOK, views)
}

func (h HandlerSet) GetUser(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	owner, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User does not exist"})
			return
		}
		h.fail(c, err)
		return
	}

	view, granted := h.perms.ReadUser(requester, owner)
	if !granted {
		permissionDenied(c)
		return
	}

	c.JSON(http.StatusOK, view)
}

func (h HandlerSet) DeleteUser(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	owner, err := h.users.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User does not exist"})
			return
		}
		h.fail(c, err)
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionDelete, permissions.ResourceUser, permissions.Context{
		RequesterEmail: requester.Email,
		OwnerEmail:     owner.Email,
	})
	if !d.Granted {
		permissionDenied(c)
		return
	}

	if err := h.users.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User does not exist"})
			return
		}
		h.fail(c, err)
		return
	}

	c.Status(http.StatusNoContent)
}
