package postgres

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/shopspring/decimal"

	"lapakku/backend/internal/domain"
	"lapakku/backend/internal/store"
)

// Store implements store.Repository over PostgreSQL. The schema (products,
// customers, orders, order_items) is owned by the external migration
// tooling; this layer only reads and writes it.
type Store struct {
	db *sql.DB
}

func New(ctx context.Context, databaseURL string) (*Store, error) {
	db, err := sql.Open("pgx", databaseURL)
	if err != nil {
		return nil, err
	}

	db.SetMaxIdleConns(8)
	db.SetMaxOpenConns(30)
	db.SetConnMaxLifetime(30 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 6*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, err
	}

	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) ListProducts(ctx context.Context) ([]domain.Product, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, sku, name, category, price, cost_price, stock, min_stock_level, reorder_level, active, created_at, updated_at
		FROM products
		ORDER BY category, name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	products := make([]domain.Product, 0, 128)
	for rows.Next() {
		product, err := scanProduct(rows)
		if err != nil {
			return nil, err
		}
		products = append(products, product)
	}
	return products, rows.Err()
}

func (s *Store) CreateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.SKU == "" || product.Name == "" {
		return nil, store.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO products (id, sku, name, category, price, cost_price, stock, min_stock_level, reorder_level, active, created_at, updated_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11,$12)
	`, product.ID, product.SKU, product.Name, product.Category, product.Price,
		nullDecimal(product.CostPrice), product.Stock, product.MinStockLevel,
		product.ReorderLevel, product.Active, product.CreatedAt, product.UpdatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := product
	return &created, nil
}

func (s *Store) GetProduct(ctx context.Context, id string) (*domain.Product, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT id, sku, name, category, price, cost_price, stock, min_stock_level, reorder_level, active, created_at, updated_at
		FROM products
		WHERE id = $1
	`, id)

	product, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (s *Store) UpdateProduct(ctx context.Context, product domain.Product) (*domain.Product, error) {
	result, err := s.db.ExecContext(ctx, `
		UPDATE products
		SET name = $2, category = $3, price = $4, cost_price = $5, stock = $6,
		    min_stock_level = $7, reorder_level = $8, active = $9, updated_at = $10
		WHERE id = $1
	`, product.ID, product.Name, product.Category, product.Price,
		nullDecimal(product.CostPrice), product.Stock, product.MinStockLevel,
		product.ReorderLevel, product.Active, product.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return nil, store.ErrNotFound
	}

	updated := product
	return &updated, nil
}

func (s *Store) CreateCustomer(ctx context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" || customer.Name == "" {
		return nil, store.ErrInvalidInput
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO customers (id, name, email, phone, tags, created_at)
		VALUES ($1,$2,$3,$4, string_to_array($5, ','), $6)
	`, customer.ID, customer.Name, customer.Email, customer.Phone, strings.Join(customer.Tags, ","), customer.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	created := customer
	return &created, nil
}

func (s *Store) GetCustomer(ctx context.Context, id string) (*domain.Customer, error) {
	var customer domain.Customer
	var tags string
	err := s.db.QueryRowContext(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(array_to_string(tags, ','), ''), created_at
		FROM customers
		WHERE id = $1
	`, id).Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &tags, &customer.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, store.ErrNotFound
		}
		return nil, err
	}
	customer.Tags = splitTags(tags)
	return &customer, nil
}

func (s *Store) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, COALESCE(email, ''), COALESCE(phone, ''), COALESCE(array_to_string(tags, ','), ''), created_at
		FROM customers
		ORDER BY name
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	customers := make([]domain.Customer, 0, 128)
	for rows.Next() {
		var customer domain.Customer
		var tags string
		if err := rows.Scan(&customer.ID, &customer.Name, &customer.Email, &customer.Phone, &tags, &customer.CreatedAt); err != nil {
			return nil, err
		}
		customer.Tags = splitTags(tags)
		customers = append(customers, customer)
	}
	return customers, rows.Err()
}

func (s *Store) CreateOrder(ctx context.Context, order domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		return nil, store.ErrInvalidInput
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO orders (id, customer_id, total, status, payment_method, payment_ref, cashier_id, created_at)
		VALUES ($1,$2,$3,$4,$5,$6,$7,$8)
	`, order.ID, order.CustomerID, order.Total, order.Status, order.PaymentMethod,
		order.PaymentRef, order.CashierID, order.CreatedAt)
	if err != nil {
		if isUniqueViolation(err) {
			return nil, store.ErrInvalidInput
		}
		return nil, err
	}

	for _, item := range order.Items {
		_, err := tx.ExecContext(ctx, `
			INSERT INTO order_items (order_id, product_id, product_name, unit_price, quantity)
			VALUES ($1,$2,$3,$4,$5)
		`, order.ID, item.ProductID, item.ProductName, item.UnitPrice, item.Quantity)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}

	created := order
	return &created, nil
}

func (s *Store) GetOrder(ctx context.Context, id string) (*domain.Order, error) {
	orders, err := s.queryOrders(ctx, `WHERE o.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return nil, store.ErrNotFound
	}
	return &orders[0], nil
}

func (s *Store) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit < 1 {
		limit = 100
	}
	return s.queryOrders(ctx, `ORDER BY o.created_at DESC LIMIT $1`, limit)
}

func (s *Store) OrdersBetween(ctx context.Context, from time.Time, to time.Time) ([]domain.Order, error) {
	return s.queryOrders(ctx, `WHERE o.created_at >= $1 AND o.created_at <= $2 ORDER BY o.created_at`, from, to)
}

func (s *Store) AllOrders(ctx context.Context) ([]domain.Order, error) {
	return s.queryOrders(ctx, `ORDER BY o.created_at`)
}

// queryOrders fetches orders matching the clause and attaches their items
// in one follow-up query to avoid per-order round trips.
func (s *Store) queryOrders(ctx context.Context, clause string, args ...any) ([]domain.Order, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT o.id, o.customer_id, o.total, o.status,
		       COALESCE(o.payment_method, 'cash'), COALESCE(o.payment_ref, ''),
		       COALESCE(o.cashier_id, ''), o.created_at
		FROM orders o
		`+clause, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := make([]domain.Order, 0, 256)
	index := map[string]int{}
	ids := make([]string, 0, 256)
	for rows.Next() {
		var o domain.Order
		var customerID sql.NullString
		if err := rows.Scan(&o.ID, &customerID, &o.Total, &o.Status, &o.PaymentMethod, &o.PaymentRef, &o.CashierID, &o.CreatedAt); err != nil {
			return nil, err
		}
		if customerID.Valid && customerID.String != "" {
			o.CustomerID = &customerID.String
		}
		o.Items = []domain.OrderItem{}
		index[o.ID] = len(orders)
		ids = append(ids, o.ID)
		orders = append(orders, o)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	if len(orders) == 0 {
		return orders, nil
	}

	itemRows, err := s.db.QueryContext(ctx, `
		SELECT order_id, product_id, COALESCE(product_name, ''), unit_price, quantity
		FROM order_items
		WHERE order_id = ANY($1)
	`, ids)
	if err != nil {
		return nil, err
	}
	defer itemRows.Close()

	for itemRows.Next() {
		var item domain.OrderItem
		var productID sql.NullString
		if err := itemRows.Scan(&item.OrderID, &productID, &item.ProductName, &item.UnitPrice, &item.Quantity); err != nil {
			return nil, err
		}
		if productID.Valid && productID.String != "" {
			item.ProductID = &productID.String
		}
		if i, ok := index[item.OrderID]; ok {
			orders[i].Items = append(orders[i].Items, item)
		}
	}
	return orders, itemRows.Err()
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanProduct(row rowScanner) (domain.Product, error) {
	var product domain.Product
	var costPrice decimal.NullDecimal
	err := row.Scan(&product.ID, &product.SKU, &product.Name, &product.Category,
		&product.Price, &costPrice, &product.Stock, &product.MinStockLevel,
		&product.ReorderLevel, &product.Active, &product.CreatedAt, &product.UpdatedAt)
	if err != nil {
		return domain.Product{}, err
	}
	if costPrice.Valid {
		product.CostPrice = &costPrice.Decimal
	}
	return product, nil
}

func splitTags(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}

func nullDecimal(d *decimal.Decimal) decimal.NullDecimal {
	if d == nil {
		return decimal.NullDecimal{}
	}
	return decimal.NullDecimal{Decimal: *d, Valid: true}
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
