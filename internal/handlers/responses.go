package handlers

import (
	"time"

	"storefront/api/internal/models"
)

type productResponse struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Image       string  `json:"image"`
	Price       float64 `json:"price"`
}

func toProductResponse(p models.Product) productResponse {
	return productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Image:       p.Image,
		Price:       p.Price,
	}
}

func toProductResponses(products []models.Product) []productResponse {
	resp := make([]productResponse, 0, len(products))
	for _, p := range products {
		resp = append(resp, toProductResponse(p))
	}
	return resp
}

type categoryResponse struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
}

func toCategoryResponses(categories []models.Category) []categoryResponse {
	resp := make([]categoryResponse, 0, len(categories))
	for _, cat := range categories {
		resp = append(resp, categoryResponse{ID: cat.ID, Title: cat.Title})
	}
	return resp
}

type categoryItemResponse struct {
	ID         int64 `json:"id"`
	CategoryID int64 `json:"categoryId"`
	ProductID  int64 `json:"productId"`
}

type orderItemResponse struct {
	ID        int64 `json:"id"`
	ProductID int64 `json:"productId"`
	Quantity  int   `json:"quantity"`
	OrderID   int64 `json:"orderId"`
}

type orderResponse struct {
	ID        int64               `json:"id"`
	UserID    int64               `json:"userId"`
	Address   string              `json:"address"`
	Paid      bool                `json:"paid"`
	CreatedAt time.Time           `json:"createdAt"`
	UpdatedAt time.Time           `json:"updatedAt"`
	Items     []orderItemResponse `json:"items"`
}

func toOrderResponse(o models.Order) orderResponse {
	items := make([]orderItemResponse, 0, len(o.Items))
	for _, item := range o.Items {
		items = append(items, orderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
			OrderID:   item.OrderID,
		})
	}
	return orderResponse{
		ID:        o.ID,
		UserID:    o.UserID,
		Address:   o.Address,
		Paid:      o.Paid,
		CreatedAt: o.CreatedAt,
		UpdatedAt: o.UpdatedAt,
		Items:     items,
	}
}

func toOrderResponses(orders []models.Order) []orderResponse {
	resp := make([]orderResponse, 0, len(orders))
	for _, o := range orders {
		resp = append(resp, toOrderResponse(o))
	}
	return resp
}
