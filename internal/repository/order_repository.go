package repository

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront/api/internal/models"
)

var (
	ErrOrderNotFound = errors.New("order not found")
	ErrAlreadyPaid   = errors.New("order already paid")
)

type OrderRepository struct {
	pool *pgxpool.Pool
}

func NewOrderRepository(pool *pgxpool.Pool) *OrderRepository {
	return &OrderRepository{pool: pool}
}

// Create inserts the order row and its items in one transaction so a
// half-written order is never visible.
func (r *OrderRepository) Create(ctx context.Context, order models.Order) (models.Order, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return models.Order{}, err
	}
	defer tx.Rollback(ctx)

	const insertOrder = `
		INSERT INTO orders (user_id, address, paid, created_at, updated_at)
		VALUES ($1, $2, FALSE, NOW(), NOW())
		RETURNING id, paid, created_at, updated_at
	`
	row := tx.QueryRow(ctx, insertOrder, order.UserID, order.Address)
	if err := row.Scan(&order.ID, &order.Paid, &order.CreatedAt, &order.UpdatedAt); err != nil {
		return models.Order{}, err
	}

	const insertItem = `
		INSERT INTO order_items (product_id, quantity, order_id)
		VALUES ($1, $2, $3)
		RETURNING id
	`
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		row := tx.QueryRow(ctx, insertItem, order.Items[i].ProductID, order.Items[i].Quantity, order.ID)
		if err := row.Scan(&order.Items[i].ID); err != nil {
			return models.Order{}, err
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return models.Order{}, err
	}
	return order, nil
}

func (r *OrderRepository) GetByID(ctx context.Context, id int64) (models.Order, error) {
	const query = `
		SELECT id, user_id, address, paid, created_at, updated_at
		FROM orders WHERE id = $1
	`

	row := r.pool.QueryRow(ctx, query, id)
	order, err := scanOrder(row)
	if err != nil {
		return models.Order{}, err
	}

	items, err := r.listItems(ctx, order.ID)
	if err != nil {
		return models.Order{}, err
	}
	order.Items = items
	return order, nil
}

func (r *OrderRepository) List(ctx context.Context) ([]models.Order, error) {
	const query = `
		SELECT id, user_id, address, paid, created_at, updated_at
		FROM orders ORDER BY id
	`
	return r.listOrders(ctx, query)
}

func (r *OrderRepository) ListByUser(ctx context.Context, userID int64) ([]models.Order, error) {
	const query = `
		SELECT id, user_id, address, paid, created_at, updated_at
		FROM orders WHERE user_id = $1 ORDER BY id
	`
	return r.listOrders(ctx, query, userID)
}

// Lines joins order items with product rows, in the shape checkout line
// items are built from.
func (r *OrderRepository) Lines(ctx context.Context, orderID int64) ([]models.OrderLine, error) {
	const query = `
		SELECT p.id, p.title, p.description, p.image, p.price, oi.quantity
		FROM order_items oi
		JOIN products p ON p.id = oi.product_id
		WHERE oi.order_id = $1
		ORDER BY oi.id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var lines []models.OrderLine
	for rows.Next() {
		var line models.OrderLine
		if err := rows.Scan(
			&line.Product.ID,
			&line.Product.Title,
			&line.Product.Description,
			&line.Product.Image,
			&line.Product.Price,
			&line.Quantity,
		); err != nil {
			return nil, err
		}
		lines = append(lines, line)
	}
	return lines, rows.Err()
}

// MarkPaid flips the paid flag with a compare-and-set: the WHERE clause only
// matches while the order is unpaid, so of any number of concurrent
// completions exactly one reports success and the rest ErrAlreadyPaid. The
// flag never goes back to false.
func (r *OrderRepository) MarkPaid(ctx context.Context, id int64) error {
	const query = `
		UPDATE orders SET paid = TRUE, updated_at = NOW()
		WHERE id = $1 AND NOT paid
	`
	cmd, err := r.pool.Exec(ctx, query, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return ErrAlreadyPaid
	}
	return nil
}

func (r *OrderRepository) listOrders(ctx context.Context, query string, args ...any) ([]models.Order, error) {
	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var orders []models.Order
	for rows.Next() {
		order, err := scanOrder(rows)
		if err != nil {
			return nil, err
		}
		orders = append(orders, order)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	for i := range orders {
		items, err := r.listItems(ctx, orders[i].ID)
		if err != nil {
			return nil, err
		}
		orders[i].Items = items
	}
	return orders, nil
}

func (r *OrderRepository) listItems(ctx context.Context, orderID int64) ([]models.OrderItem, error) {
	const query = `
		SELECT id, product_id, quantity, order_id
		FROM order_items WHERE order_id = $1 ORDER BY id
	`

	rows, err := r.pool.Query(ctx, query, orderID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.OrderItem
	for rows.Next() {
		var item models.OrderItem
		if err := rows.Scan(&item.ID, &item.ProductID, &item.Quantity, &item.OrderID); err != nil {
			return nil, err
		}
		items = append(items, item)
	}
	return items, rows.Err()
}

func scanOrder(row pgx.Row) (models.Order, error) {
	var order models.Order
	if err := row.Scan(
		&order.ID,
		&order.UserID,
		&order.Address,
		&order.Paid,
		&order.CreatedAt,
		&order.UpdatedAt,
	); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return models.Order{}, ErrOrderNotFound
		}
		return models.Order{}, err
	}
	return order, nil
}
