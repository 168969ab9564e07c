package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/api/internal/models"
)

var ErrCategoryNotFound = errors.New("category not found")

type CategoryRepository struct {
	pool *pgxpool.Pool
}

func NewCategoryRepository(pool *pgxpool.Pool) *CategoryRepository {
	return &CategoryRepository{pool: pool}
}

func (r *CategoryRepository) Create(ctx context.Context, category models.Category) (models.Category, error) {
	const query = `
		INSERT INTO categories (title)
		VALUES ($1)
		RETURNING id
	`

	row := r.pool.QueryRow(ctx, query, category.Title)
	if err := row.Scan(&category.ID); err != nil {
		return models.Category{}, err
	}
	return category, nil
}

func (r *CategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	const query = `SELECT id, title FROM categories ORDER BY id`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var category models.Category
		if err := rows.Scan(&category.ID, &category.Title); err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	return categories, rows.Err()
}

// ListProducts returns the products linked to a category through
// category_items. A category with no products yields an empty slice;
// a missing category yields ErrCategoryNotFound.
func (r *CategoryRepository) ListProducts(ctx context.Context, categoryID int64) ([]models.Product, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, `SELECT EXISTS (SELECT 1 FROM categories WHERE id = $1)`, categoryID).Scan(&exists)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, ErrCategoryNotFound
	}

	const query = `
		SELECT p.id, p.title, p.description, p.image, p.price
		FROM products p
		JOIN category_items ci ON ci.product_id = p.id
		WHERE ci.category_id = $1
		ORDER BY p.id
	`

	rows, err := r.pool.Query(ctx, query, categoryID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *CategoryRepository) AddProduct(ctx context.Context, categoryID, productID int64) (models.CategoryItem, error) {
	const query = `
		INSERT INTO category_items (product_id, category_id)
		VALUES ($1, $2)
		RETURNING id
	`

	item := models.CategoryItem{ProductID: productID, CategoryID: categoryID}
	if err := r.pool.QueryRow(ctx, query, productID, categoryID).Scan(&item.ID); err != nil {
		return models.CategoryItem{}, err
	}
	return item, nil
}

func (r *CategoryRepository) RemoveProduct(ctx context.Context, categoryID, productID int64) error {
	const query = `DELETE FROM category_items WHERE category_id = $1 AND product_id = $2`
	_, err := r.pool.Exec(ctx, query, categoryID, productID)
	return err
}

func (r *CategoryRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM categories WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrCategoryNotFound
	}
	return nil
}
