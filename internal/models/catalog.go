package models

type Product struct {
	ID          int64
	Title       string
	Description string
	Image       string
	Price       float64
}

type Category struct {
	ID    int64
	Title string
}

type CategoryItem struct {
	ID         int64
	ProductID  int64
	CategoryID int64
}
