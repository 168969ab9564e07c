package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront/api/internal/repository"
	"storefront/api/internal/service"
)

type createOrderRequest struct {
	UserID   int64              `json:"userId" binding:"required"`
	Address  string             `json:"address" binding:"required"`
	Products []orderItemRequest `json:"products" binding:"required,min=1,dive"`
}

type orderItemRequest struct {
	ProductID int64 `json:"productId" binding:"required"`
	Quantity  int   `json:"quantity" binding:"required,gt=0"`
}

func (h HandlerSet) CreateOrder(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"message": err.Error()})
		return
	}

	input := service.CreateOrderInput{
		UserID:  req.UserID,
		Address: req.Address,
	}
	for _, item := range req.Products {
		input.Items = append(input.Items, service.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		})
	}

	order, err := h.orderService.CreateOrder(c.Request.Context(), requester, input)
	if err != nil {
		h.orderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, toOrderResponse(order))
}

func (h HandlerSet) ListOrders(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrders(c.Request.Context(), requester)
	if err != nil {
		h.orderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h HandlerSet) GetOrder(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	order, err := h.orderService.GetOrder(c.Request.Context(), requester, id)
	if err != nil {
		h.orderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponse(order))
}

func (h HandlerSet) ListOrdersByUser(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	orders, err := h.orderService.ListOrdersByUser(c.Request.Context(), requester, id)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"message": "User not found"})
			return
		}
		h.orderError(c, err)
		return
	}

	c.JSON(http.StatusOK, toOrderResponses(orders))
}

func (h HandlerSet) CreatePayment(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	url, err := h.orderService.CreatePaymentSession(c.Request.Context(), requester, id)
	if err != nil {
		h.orderError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"payment": url})
}

func (h HandlerSet) CompletePayment(c *gin.Context) {
	requester, ok := h.requester(c)
	if !ok {
		return
	}

	id, ok := pathID(c, "id")
	if !ok {
		return
	}

	if err := h.orderService.CompletePayment(c.Request.Context(), requester, id); err != nil {
		h.orderError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "Payment completed"})
}

func (h HandlerSet) PaymentSuccess(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Payment successful, you may close this page"})
}

func (h HandlerSet) PaymentCancel(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"message": "Payment cancelled"})
}

// orderError maps order state machine failures onto the HTTP boundary. The
// guard chain already decided which error wins for ambiguous inputs.
func (h HandlerSet) orderError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, repository.ErrOrderNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Order not found"})
	case errors.Is(err, service.ErrPermissionDenied):
		permissionDenied(c)
	case errors.Is(err, repository.ErrAlreadyPaid):
		c.JSON(http.StatusBadRequest, gin.H{"message": "Order is already paid for"})
	case errors.Is(err, repository.ErrUserNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "User does not exist"})
	default:
		h.fail(c, err)
	}
}
