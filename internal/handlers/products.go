package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"path"

	"github.com/gin-gonic/gin"

	"storefront/api/internal/ids"
	"storefront/api/internal/models"
	"storefront/api/internal/permissions"
	"storefront/api/internal/repository"
)

const productsCacheKey = "catalog:products"

func (h HandlerSet) ListProducts(c *gin.Context) {
	ctx := c.Request.Context()

	if data, err := h.catalog.Get(ctx, productsCacheKey); err == nil {
		c.Data(http.StatusOK, "application/json", data)
		return
	}

	products, err := h.products.List(ctx)
	if err != nil {
		h.fail(c, err)
		return
	}

	resp := toProductResponses(products)
	if data, err := json.Marshal(resp); err == nil {
		if err := h.catalog.Set(ctx, productsCacheKey, data); err != nil {
			h.log.Warn().Err(err).Msg("product cache write failed")
		}
	}

	c.JSON(http.StatusOK, resp)
}

func (h HandlerSet) GetProduct(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	product, err := h.products.GetByID(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		h.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, toProductResponse(product))
}

type productRequest struct {
	Title       string  `json:"title" binding:"required"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price" binding:"required,gt=0"`
}

func (h HandlerSet) CreateProduct(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionCreate, permissions.ResourceProduct, permissions.Context{
		RequesterEmail: requester.Email,
	})
	if !d.Granted {
		permissionDenied(c)
		return
	}

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	product, err := h.products.Create(c.Request.Context(), models.Product{
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	})
	if err != nil {
		h.fail(c, err)
		return
	}

	h.invalidateCatalog(c)
	c.JSON(http.StatusCreated, toProductResponse(product))
}

func (h HandlerSet) UpdateProduct(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionUpdate, permissions.ResourceProduct, permissions.Context{
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

	var req productRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	product := models.Product{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Image:       req.Image,
		Price:       req.Price,
	}
	if err := h.products.Update(c.Request.Context(), product); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		h.fail(c, err)
		return
	}

	h.invalidateCatalog(c)
	c.JSON(http.StatusOK, toProductResponse(product))
}

func (h HandlerSet) DeleteProduct(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionDelete, permissions.ResourceProduct, permissions.Context{
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

	if err := h.products.Delete(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		h.fail(c, err)
		return
	}

	h.invalidateCatalog(c)
	c.Status(http.StatusNoContent)
}

// maxImageSize bounds product image uploads.
const maxImageSize = 10 << 20

func (h HandlerSet) UploadProductImage(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	d := h.perms.Can(requester.Role, permissions.ActionUpdate, permissions.ResourceProduct, permissions.Context{
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

	if _, err := h.products.GetByID(c.Request.Context(), id); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		h.fail(c, err)
		return
	}

	file, header, err := c.Request.FormFile("image")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image file required"})
		return
	}
	defer file.Close()

	if header.Size > maxImageSize {
		c.JSON(http.StatusBadRequest, gin.H{"message": "Image too large"})
		return
	}

	data, err := io.ReadAll(io.LimitReader(file, maxImageSize))
	if err != nil {
		h.fail(c, err)
		return
	}

	contentType := header.Header.Get("Content-Type")
	if contentType == "" {
		contentType = http.DetectContentType(data)
	}

	objectKey := fmt.Sprintf("products/%d/%s%s", id, ids.New(), path.Ext(header.Filename))
	url, err := h.images.PutProductImage(c.Request.Context(), objectKey, data, contentType)
	if err != nil {
		h.fail(c, err)
		return
	}

	if err := h.products.UpdateImage(c.Request.Context(), id, url); err != nil {
		if errors.Is(err, repository.ErrProductNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "Product not found"})
			return
		}
		h.fail(c, err)
		return
	}

	h.invalidateCatalog(c)
	c.JSON(http.StatusOK, gin.H{"image": url})
}

func (h HandlerSet) invalidateCatalog(c *gin.Context) {
	if err := h.catalog.Invalidate(c.Request.Context(), productsCacheKey, categoriesCacheKey); err != nil {
		h.log.Warn().Err(err).Msg("catalog cache invalidation failed")
	}
}
