package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/api/internal/models"
)

var ErrProductNotFound = errors.New("product not found")

type ProductRepository struct {
	pool *pgxpool.Pool
}

func NewProductRepository(pool *pgxpool.Pool) *ProductRepository {
	return &ProductRepository{pool: pool}
}

func (r *ProductRepository) Create(ctx context.Context, product models.Product) (models.Product, error) {
	const query = `
		INSERT INTO products (title, description, image, price)
		VALUES ($1, $2, $3, $4)
		RETURNING id
	`

	row := r.pool.QueryRow(ctx, query, product.Title, product.Description, product.Image, product.Price)
	if err := row.Scan(&product.ID); err != nil {
		return models.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) GetByID(ctx context.Context, id int64) (models.Product, error) {
	const query = `
		SELECT id, title, description, image, price
		FROM products WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	var product models.Product
	if err := row.Scan(&product.ID, &product.Title, &product.Description, &product.Image, &product.Price); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Product{}, ErrProductNotFound
		}
		return models.Product{}, err
	}
	return product, nil
}

func (r *ProductRepository) List(ctx context.Context) ([]models.Product, error) {
	const query = `
		SELECT id, title, description, image, price
		FROM products ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanProducts(rows)
}

func (r *ProductRepository) Update(ctx context.Context, product models.Product) error {
	const query = `
		UPDATE products
		SET title = $2, description = $3, image = $4, price = $5
		WHERE id = $1
	`
	cmd, err := r.pool.Exec(ctx, query,
		product.ID, product.Title, product.Description, product.Image, product.Price)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) UpdateImage(ctx context.Context, id int64, imageURL string) error {
	const query = `UPDATE products SET image = $2 WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id, imageURL)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func (r *ProductRepository) Delete(ctx context.Context, id int64) error {
	const query = `DELETE FROM products WHERE id = $1`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrProductNotFound
	}
	return nil
}

func scanProducts(rows pgx.Rows) ([]models.Product, error) {
	var products []models.Product
	for rows.Next() {
		var product models.Product
		if err := rows.Scan(&product.ID, &product.Title, &product.Description, &product.Image, &product.Price); err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}
