package service

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"lapakku/backend/internal/domain"
	"lapakku/backend/internal/store"
)

// Service carries the catalog and order bookkeeping around the repository.
// Stock movement and payment capture happen in the external write path;
// this layer only validates, normalizes, and records.
type Service struct {
	repo store.Repository
	now  func() time.Time
}

func New(repo store.Repository) *Service {
	return &Service{
		repo: repo,
		now:  func() time.Time { return time.Now().UTC() },
	}
}

func (s *Service) ListProducts(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListProducts(ctx)
}

func (s *Service) GetProduct(ctx context.Context, id string) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	product, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}
	return *product, nil
}

func (s *Service) CreateProduct(ctx context.Context, req domain.ProductCreateRequest) (domain.Product, error) {
	req.SKU = strings.ToUpper(strings.TrimSpace(req.SKU))
	req.Name = strings.TrimSpace(req.Name)
	req.Category = strings.TrimSpace(req.Category)

	if req.SKU == "" || req.Name == "" {
		return domain.Product{}, store.ErrInvalidInput
	}
	if !req.Price.IsPositive() || req.Stock < 0 || req.MinStockLevel < 0 || req.ReorderLevel < 0 {
		return domain.Product{}, store.ErrInvalidInput
	}
	if req.CostPrice != nil && req.CostPrice.IsNegative() {
		return domain.Product{}, store.ErrInvalidInput
	}

	now := s.now()
	product := domain.Product{
		ID:            uuid.NewString(),
		SKU:           req.SKU,
		Name:          req.Name,
		Category:      req.Category,
		Price:         req.Price,
		CostPrice:     req.CostPrice,
		Stock:         req.Stock,
		MinStockLevel: req.MinStockLevel,
		ReorderLevel:  req.ReorderLevel,
		Active:        true,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	created, err := s.repo.CreateProduct(ctx, product)
	if err != nil {
		return domain.Product{}, err
	}
	return *created, nil
}

func (s *Service) UpdateProduct(ctx context.Context, id string, req domain.ProductUpdateRequest) (domain.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Product{}, store.ErrInvalidInput
	}

	existing, err := s.repo.GetProduct(ctx, id)
	if err != nil {
		return domain.Product{}, err
	}

	updated := *existing
	if req.Name != nil {
		name := strings.TrimSpace(*req.Name)
		if name == "" {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Name = name
	}
	if req.Category != nil {
		updated.Category = strings.TrimSpace(*req.Category)
	}
	if req.Price != nil {
		if !req.Price.IsPositive() {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Price = *req.Price
	}
	if req.CostPrice != nil {
		if req.CostPrice.IsNegative() {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.CostPrice = req.CostPrice
	}
	if req.Stock != nil {
		if *req.Stock < 0 {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.Stock = *req.Stock
	}
	if req.MinStockLevel != nil {
		if *req.MinStockLevel < 0 {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.MinStockLevel = *req.MinStockLevel
	}
	if req.ReorderLevel != nil {
		if *req.ReorderLevel < 0 {
			return domain.Product{}, store.ErrInvalidInput
		}
		updated.ReorderLevel = *req.ReorderLevel
	}
	if req.Active != nil {
		updated.Active = *req.Active
	}
	updated.UpdatedAt = s.now()

	saved, err := s.repo.UpdateProduct(ctx, updated)
	if err != nil {
		return domain.Product{}, err
	}
	return *saved, nil
}

func (s *Service) ListCustomers(ctx context.Context) ([]domain.Customer, error) {
	return s.repo.ListCustomers(ctx)
}

func (s *Service) GetCustomer(ctx context.Context, id string) (domain.Customer, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Customer{}, store.ErrInvalidInput
	}
	customer, err := s.repo.GetCustomer(ctx, id)
	if err != nil {
		return domain.Customer{}, err
	}
	return *customer, nil
}

func (s *Service) CreateCustomer(ctx context.Context, req domain.CustomerCreateRequest) (domain.Customer, error) {
	req.Name = strings.TrimSpace(req.Name)
	req.Email = strings.ToLower(strings.TrimSpace(req.Email))
	req.Phone = strings.TrimSpace(req.Phone)
	if req.Name == "" {
		return domain.Customer{}, store.ErrInvalidInput
	}

	tags := make([]string, 0, len(req.Tags))
	for _, tag := range req.Tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag != "" {
			tags = append(tags, tag)
		}
	}

	customer := domain.Customer{
		ID:        uuid.NewString(),
		Name:      req.Name,
		Email:     req.Email,
		Phone:     req.Phone,
		Tags:      tags,
		CreatedAt: s.now(),
	}

	created, err := s.repo.CreateCustomer(ctx, customer)
	if err != nil {
		return domain.Customer{}, err
	}
	return *created, nil
}

func (s *Service) ListOrders(ctx context.Context, limit int) ([]domain.Order, error) {
	if limit < 1 {
		limit = 100
	}
	return s.repo.ListOrders(ctx, limit)
}

func (s *Service) GetOrder(ctx context.Context, id string) (domain.Order, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Order{}, store.ErrInvalidInput
	}
	order, err := s.repo.GetOrder(ctx, id)
	if err != nil {
		return domain.Order{}, err
	}
	return *order, nil
}

// RecordOrder accepts an already-placed order into the transactional log.
// Customer references are verified so channel attribution stays honest;
// item snapshots are taken as given.
func (s *Service) RecordOrder(ctx context.Context, req domain.OrderRecordRequest) (domain.Order, error) {
	req.Status = strings.ToLower(strings.TrimSpace(req.Status))
	if req.Status == "" {
		req.Status = domain.OrderStatusCompleted
	}
	if !domain.IsOrderStatus(req.Status) {
		return domain.Order{}, store.ErrInvalidInput
	}

	req.PaymentMethod = strings.ToLower(strings.TrimSpace(req.PaymentMethod))
	if req.PaymentMethod == "" {
		req.PaymentMethod = domain.PaymentCash
	}
	if !domain.IsPaymentMethod(req.PaymentMethod) {
		return domain.Order{}, store.ErrInvalidInput
	}

	if !req.Total.IsPositive() {
		return domain.Order{}, store.ErrInvalidInput
	}

	items := normalizeItems(req.Items)
	if len(items) == 0 {
		return domain.Order{}, store.ErrInvalidInput
	}

	var customerID *string
	if req.CustomerID != nil {
		id := strings.TrimSpace(*req.CustomerID)
		if id != "" {
			if _, err := s.repo.GetCustomer(ctx, id); err != nil {
				return domain.Order{}, err
			}
			customerID = &id
		}
	}

	placedAt := s.now()
	if req.CreatedAt != nil && !req.CreatedAt.IsZero() {
		placedAt = req.CreatedAt.UTC()
	}

	order := domain.Order{
		ID:            uuid.NewString(),
		CustomerID:    customerID,
		Total:         req.Total,
		Status:        req.Status,
		PaymentMethod: req.PaymentMethod,
		PaymentRef:    strings.TrimSpace(req.PaymentRef),
		CashierID:     strings.TrimSpace(req.CashierID),
		CreatedAt:     placedAt,
		Items:         make([]domain.OrderItem, 0, len(items)),
	}
	for _, item := range items {
		order.Items = append(order.Items, domain.OrderItem{
			OrderID:     order.ID,
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			UnitPrice:   item.UnitPrice,
			Quantity:    item.Quantity,
		})
	}

	created, err := s.repo.CreateOrder(ctx, order)
	if err != nil {
		return domain.Order{}, err
	}
	return *created, nil
}

// normalizeItems drops empty lines and rejects lines that carry neither a
// product reference nor a complete name+price+quantity triple.
func normalizeItems(items []domain.OrderItemRequest) []domain.OrderItemRequest {
	normalized := make([]domain.OrderItemRequest, 0, len(items))
	for _, item := range items {
		item.ProductName = strings.TrimSpace(item.ProductName)
		if item.ProductID != nil {
			id := strings.TrimSpace(*item.ProductID)
			if id == "" {
				item.ProductID = nil
			} else {
				item.ProductID = &id
			}
		}
		if item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return nil
		}
		if item.ProductID == nil && item.ProductName == "" {
			return nil
		}
		normalized = append(normalized, item)
	}
	return normalized
}
