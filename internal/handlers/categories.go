package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/api/internal/models"
	"storefront/api/internal/permissions"
	"storefront/api/internal/repository"
)

const categoriesCacheKey = "catalog:categories"

func (h HandlerSet) ListCategories(c *gin.Context) {
	ctx := c.Request.Context()

	if data, err := h.catalog.Get(ctx, categoriesCacheKey); err == nil {
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	categories, err := h.categories.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := toCategoryResponses(categories)
	if data, err := json.Marshal(resp); err == nil {
		if err := h.catalog.Set(ctx, categoriesCacheKey, data); err != nil {
			h.log.Warn().Err(err).Msg("category cache write failed")
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) ListCategoryProducts(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	products, err := h.categories.ListProducts(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponses(products))
}

type categoryRequest struct {
	Title string `json:"title" binding:"required"`
}

func (h HandlerSet) CreateCategory(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionCreate, permissions.ResourceCategory, permissions.Context{
		RequesterEmail: requester.Email,
	})
	if !d.Granted {
		permissionDenied(c)
		return
	}

	var req categoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	category, err := h.categories.Create(c.Request.Context(), models.Category{Title: req.Title})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.invalidateCatalog(c)
	c.JSON(http.StatusCreated, categoryResponse{ID: category.ID, Title: category.Title})
}

func (h HandlerSet) DeleteCategory(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionDelete, permissions.ResourceCategory, permissions.Context{
		RequesterEmail: requester.Email,
	})
	if !d.Granted {
		permissionDenied(c)
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
			return
		}
		h.fail(c, err)
		return
	}

	h.invalidateCatalog(c)
	c.Status(http.StatusNoContent)
}

func (h HandlerSet) AddCategoryProduct(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionUpdate, permissions.ResourceCategory, permissions.Context{
		RequesterEmail: requester.Email,
	})
	if !d.Granted {
		permissionDenied(c)
		return
	}

	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	item, err := h.categories.AddProduct(c.Request.Context(), categoryID, productID)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrCategoryNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
		case errors.Is(err, repository.ErrProductNotFound):
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
		default:
			h.fail(c, err)
		}
		return
	}

	h.invalidateCatalog(c)
	c.JSON(http.StatusCreated, categoryItemResponse{
		ID:         item.ID,
		CategoryID: item.CategoryID,
		ProductID:  item.ProductID,
	})
}

func (h HandlerSet) RemoveCategoryProduct(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionUpdate, permissions.ResourceCategory, permissions.Context{
		RequesterEmail: requester.Email,
	})
	if !d.Granted {
		permissionDenied(c)
		return
	}

	categoryID, ok := pathID(c, "id")
	if !ok {
		return
	}
	productID, ok := pathID(c, "productId")
	if !ok {
		return
	}

	if err := h.categories.RemoveProduct(c.Request.Context(), categoryID, productID); err != nil {
		if errors.Is(err, repository.ErrCategoryNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Category not found"})
			return
		}
		h.fail(c, err)
		return
	}

	h.invalidateCatalog(c)
	c.Status(http.StatusNoContent)
}
