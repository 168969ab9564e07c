package models

import "time"

type Order struct {
	ID        int64
	UserID    int64
	Address   string
	Paid      bool
	CreatedAt time.Time
	UpdatedAt time.Time
	Items     []OrderItem
}

type OrderItem struct {
	ID        int64
	ProductID int64
	Quantity  int
	OrderID   int64
}

// OrderLine joins an order item with its product, as needed when
// building checkout line items.
type OrderLine struct {
	Product  Product
	Quantity int
}
