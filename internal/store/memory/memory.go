package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"lapakku/backend/internal/domain"
	"lapakku/backend/internal/store"
)

// Store is the in-memory Repository used in dev mode and tests. All
// methods copy on the way in and out so callers can treat results as
// immutable snapshots.
type Store struct {
	mu        sync.RWMutex
	products  map[string]domain.Product
	customers map[string]domain.Customer
	orders    map[string]domain.Order
}

func New() *Store {
	return &Store{
		products:  map[string]domain.Product{},
		customers: map[string]domain.Customer{},
		orders:    map[string]domain.Order{},
	}
}

// NewSeeded returns a store pre-populated with a small demo catalog,
// a few customers and two weeks of order history.
func NewSeeded() *Store {
	s := New()
	s.seed()
	return s
}

func (s *Store) ListProducts(_ context.Context) ([]domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]domain.Product, 0, len(s.products))
	for _, p := range s.products {
		products = append(products, p)
	}
	sort.Slice(products, func(i, j int) bool {
		if products[i].Category != products[j].Category {
			return products[i].Category < products[j].Category
		}
		return products[i].Name < products[j].Name
	})
	return products, nil
}

func (s *Store) CreateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	if product.ID == "" || product.SKU == "" || product.Name == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.products {
		if strings.EqualFold(existing.SKU, product.SKU) {
			return nil, store.ErrInvalidInput
		}
	}
	s.products[product.ID] = product
	created := product
	return &created, nil
}

func (s *Store) GetProduct(_ context.Context, id string) (*domain.Product, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &product, nil
}

func (s *Store) UpdateProduct(_ context.Context, product domain.Product) (*domain.Product, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.products[product.ID]; !ok {
		return nil, store.ErrNotFound
	}
	s.products[product.ID] = product
	updated := product
	return &updated, nil
}

func (s *Store) CreateCustomer(_ context.Context, customer domain.Customer) (*domain.Customer, error) {
	if customer.ID == "" || customer.Name == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	s.customers[customer.ID] = customer
	created := customer
	return &created, nil
}

func (s *Store) GetCustomer(_ context.Context, id string) (*domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customer, ok := s.customers[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &customer, nil
}

func (s *Store) ListCustomers(_ context.Context) ([]domain.Customer, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	customers := make([]domain.Customer, 0, len(s.customers))
	for _, c := range s.customers {
		customers = append(customers, c)
	}
	sort.Slice(customers, func(i, j int) bool { return customers[i].Name < customers[j].Name })
	return customers, nil
}

func (s *Store) CreateOrder(_ context.Context, order domain.Order) (*domain.Order, error) {
	if order.ID == "" {
		return nil, store.ErrInvalidInput
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, exists := s.orders[order.ID]; exists {
		return nil, store.ErrInvalidInput
	}
	s.orders[order.ID] = copyOrder(order)
	created := copyOrder(order)
	return &created, nil
}

func (s *Store) GetOrder(_ context.Context, id string) (*domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	found := copyOrder(order)
	return &found, nil
}

func (s *Store) ListOrders(_ context.Context, limit int) ([]domain.Order, error) {
	if limit < 1 {
		limit = 100
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, copyOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.After(orders[j].CreatedAt) })
	if len(orders) > limit {
		orders = orders[:limit]
	}
	return orders, nil
}

func (s *Store) OrdersBetween(_ context.Context, from time.Time, to time.Time) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		if o.CreatedAt.Before(from) || o.CreatedAt.After(to) {
			continue
		}
		orders = append(orders, copyOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func (s *Store) AllOrders(_ context.Context) ([]domain.Order, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	orders := make([]domain.Order, 0, len(s.orders))
	for _, o := range s.orders {
		orders = append(orders, copyOrder(o))
	}
	sort.Slice(orders, func(i, j int) bool { return orders[i].CreatedAt.Before(orders[j].CreatedAt) })
	return orders, nil
}

func copyOrder(order domain.Order) domain.Order {
	copied := order
	copied.Items = make([]domain.OrderItem, len(order.Items))
	copy(copied.Items, order.Items)
	if order.CustomerID != nil {
		id := *order.CustomerID
		copied.CustomerID = &id
	}
	return copied
}

func (s *Store) seed() {
	now := time.Now().UTC()
	cost := func(v string) *decimal.Decimal {
		d := decimal.RequireFromString(v)
		return &d
	}

	products := []domain.Product{
		{ID: uuid.NewString(), SKU: "TEA-100", Name: "Assam Tea 250g", Category: "beverage", Price: decimal.NewFromInt(180), CostPrice: cost("110"), Stock: 120, MinStockLevel: 20, ReorderLevel: 40, Active: true},
		{ID: uuid.NewString(), SKU: "RICE-5K", Name: "Basmati Rice 5kg", Category: "grocery", Price: decimal.NewFromInt(560), CostPrice: cost("430"), Stock: 45, MinStockLevel: 10, ReorderLevel: 25, Active: true},
		{ID: uuid.NewString(), SKU: "OIL-1L", Name: "Sunflower Oil 1L", Category: "grocery", Price: decimal.NewFromInt(145), Stock: 8, MinStockLevel: 15, ReorderLevel: 30, Active: true},
		{ID: uuid.NewString(), SKU: "SOAP-4P", Name: "Bath Soap 4-pack", Category: "personal care", Price: decimal.NewFromInt(99), CostPrice: cost("62"), Stock: 0, MinStockLevel: 12, ReorderLevel: 24, Active: true},
		{ID: uuid.NewString(), SKU: "BISC-20", Name: "Butter Biscuits", Category: "snack", Price: decimal.NewFromInt(35), CostPrice: cost("21"), Stock: 300, MinStockLevel: 50, ReorderLevel: 100, Active: true},
	}
	for i := range products {
		products[i].CreatedAt = now.AddDate(0, -2, 0)
		products[i].UpdatedAt = products[i].CreatedAt
		s.products[products[i].ID] = products[i]
	}

	customers := []domain.Customer{
		{ID: uuid.NewString(), Name: "Asha Patel", Email: "asha@example.com", Tags: []string{"regular"}},
		{ID: uuid.NewString(), Name: "Ravi Kumar", Phone: "+91-98000-11223"},
		{ID: uuid.NewString(), Name: "Meera Iyer", Email: "meera@example.com", Tags: []string{"wholesale"}},
	}
	for i := range customers {
		customers[i].CreatedAt = now.AddDate(0, -1, -i)
		s.customers[customers[i].ID] = customers[i]
	}

	methods := []string{domain.PaymentCash, domain.PaymentUPI, domain.PaymentCard}
	statuses := []string{
		domain.OrderStatusCompleted, domain.OrderStatusCompleted, domain.OrderStatusCompleted,
		domain.OrderStatusConfirmed, domain.OrderStatusRefunded, domain.OrderStatusCancelled,
	}
	for day := 0; day < 14; day++ {
		for n := 0; n < 3; n++ {
			product := products[(day+n)%len(products)]
			qty := 1 + (day+n)%4
			total := product.Price.Mul(decimal.NewFromInt(int64(qty)))

			day0 := now.AddDate(0, 0, -day)
			placedAt := time.Date(day0.Year(), day0.Month(), day0.Day(), 9+3*n, 15, 0, 0, time.UTC)

			order := domain.Order{
				ID:            uuid.NewString(),
				Total:         total,
				Status:        statuses[(day*3+n)%len(statuses)],
				PaymentMethod: methods[(day+n)%len(methods)],
				CreatedAt:     placedAt,
			}
			if n%2 == 0 {
				customerID := customers[(day+n)%len(customers)].ID
				order.CustomerID = &customerID
			}
			order.Items = []domain.OrderItem{{
				OrderID:     order.ID,
				ProductID:   &product.ID,
				ProductName: product.Name,
				UnitPrice:   product.Price,
				Quantity:    qty,
			}}
			s.orders[order.ID] = order
		}
	}
}
