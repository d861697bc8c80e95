package service

import (
	"context"
	"errors"
	"testing"

	"github.com/shopspring/decimal"

	"lapakku/backend/internal/domain"
	"lapakku/backend/internal/store"
	"lapakku/backend/internal/store/memory"
)

func newTestService() *Service {
	return New(memory.NewSeeded())
}

func TestCreateProductNormalizesSKU(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateProduct(context.Background(), domain.ProductCreateRequest{
		SKU:      "  tea-250g ",
		Name:     " Green Tea 250g ",
		Category: "beverages",
		Price:    decimal.NewFromInt(180),
		Stock:    40,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}
	if created.SKU != "TEA-250G" {
		t.Fatalf("expected uppercased SKU, got %q", created.SKU)
	}
	if created.Name != "Green Tea 250g" {
		t.Fatalf("expected trimmed name, got %q", created.Name)
	}
	if !created.Active {
		t.Fatalf("expected new product to be active")
	}
	if created.ID == "" {
		t.Fatalf("expected generated product ID")
	}
}

func TestCreateProductRejectsNonPositivePrice(t *testing.T) {
	svc := newTestService()

	_, err := svc.CreateProduct(context.Background(), domain.ProductCreateRequest{
		SKU:   "FREE-1",
		Name:  "Freebie",
		Price: decimal.Zero,
	})
	if !errors.Is(err, store.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestUpdateProductPartialFields(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.CreateProduct(ctx, domain.ProductCreateRequest{
		SKU:      "RICE-5KG",
		Name:     "Rice 5kg",
		Category: "staples",
		Price:    decimal.NewFromInt(450),
		Stock:    20,
	})
	if err != nil {
		t.Fatalf("create product failed: %v", err)
	}

	newPrice := decimal.NewFromInt(475)
	inactive := false
	updated, err := svc.UpdateProduct(ctx, created.ID, domain.ProductUpdateRequest{
		Price:  &newPrice,
		Active: &inactive,
	})
	if err != nil {
		t.Fatalf("update product failed: %v", err)
	}
	if !updated.Price.Equal(newPrice) {
		t.Fatalf("expected price %s, got %s", newPrice, updated.Price)
	}
	if updated.Active {
		t.Fatalf("expected product to be deactivated")
	}
	if updated.Name != "Rice 5kg" {
		t.Fatalf("expected untouched fields to survive, got name %q", updated.Name)
	}
}

func TestUpdateProductUnknownID(t *testing.T) {
	svc := newTestService()

	name := "Renamed"
	_, err := svc.UpdateProduct(context.Background(), "missing-id", domain.ProductUpdateRequest{Name: &name})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCreateCustomerNormalizesTags(t *testing.T) {
	svc := newTestService()

	created, err := svc.CreateCustomer(context.Background(), domain.CustomerCreateRequest{
		Name:  "  Nisha Rao ",
		Email: "Nisha@Example.COM",
		Tags:  []string{" VIP ", "", "wholesale"},
	})
	if err != nil {
		t.Fatalf("create customer failed: %v", err)
	}
	if created.Email != "nisha@example.com" {
		t.Fatalf("expected lowercased email, got %q", created.Email)
	}
	if len(created.Tags) != 2 || created.Tags[0] != "vip" || created.Tags[1] != "wholesale" {
		t.Fatalf("unexpected tags %v", created.Tags)
	}
}

func TestRecordOrderDefaultsAndSnapshot(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	created, err := svc.RecordOrder(ctx, domain.OrderRecordRequest{
		Total: decimal.NewFromInt(250),
		Items: []domain.OrderItemRequest{
			{ProductName: "Loose Jaggery", UnitPrice: decimal.NewFromInt(125), Quantity: 2},
		},
	})
	if err != nil {
		t.Fatalf("record order failed: %v", err)
	}
	if created.Status != domain.OrderStatusCompleted {
		t.Fatalf("expected default status completed, got %q", created.Status)
	}
	if created.PaymentMethod != domain.PaymentCash {
		t.Fatalf("expected default payment cash, got %q", created.PaymentMethod)
	}
	if created.Channel() != domain.ChannelOffline {
		t.Fatalf("expected offline channel without customer, got %q", created.Channel())
	}
	if len(created.Items) != 1 || created.Items[0].OrderID != created.ID {
		t.Fatalf("expected item linked to order, got %+v", created.Items)
	}

	fetched, err := svc.GetOrder(ctx, created.ID)
	if err != nil {
		t.Fatalf("get order failed: %v", err)
	}
	if !fetched.Total.Equal(created.Total) {
		t.Fatalf("expected persisted total %s, got %s", created.Total, fetched.Total)
	}
}

func TestRecordOrderRejectsUnknownCustomer(t *testing.T) {
	svc := newTestService()

	ghost := "no-such-customer"
	_, err := svc.RecordOrder(context.Background(), domain.OrderRecordRequest{
		CustomerID: &ghost,
		Total:      decimal.NewFromInt(100),
		Items: []domain.OrderItemRequest{
			{ProductName: "Sugar 1kg", UnitPrice: decimal.NewFromInt(100), Quantity: 1},
		},
	})
	if !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown customer, got %v", err)
	}
}

func TestRecordOrderRejectsBadItems(t *testing.T) {
	svc := newTestService()
	ctx := context.Background()

	cases := []domain.OrderRecordRequest{
		{Total: decimal.NewFromInt(100)},
		{Total: decimal.NewFromInt(100), Items: []domain.OrderItemRequest{
			{ProductName: "Anon", UnitPrice: decimal.NewFromInt(10), Quantity: 0},
		}},
		{Total: decimal.NewFromInt(100), Items: []domain.OrderItemRequest{
			{UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		}},
		{Total: decimal.NewFromInt(100), Status: "shipped", Items: []domain.OrderItemRequest{
			{ProductName: "Anon", UnitPrice: decimal.NewFromInt(10), Quantity: 1},
		}},
	}
	for i, req := range cases {
		if _, err := svc.RecordOrder(ctx, req); !errors.Is(err, store.ErrInvalidInput) {
			t.Fatalf("case %d: expected ErrInvalidInput, got %v", i, err)
		}
	}
}
