package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/schollz/progressbar/v3"
	"github.com/shopspring/decimal"

	"lapakku/backend/internal/config"
	"lapakku/backend/internal/domain"
	pgstore "lapakku/backend/internal/store/postgres"
)

// seed fills a Postgres instance with demo catalog, customers and order
// history so the report endpoints have something to chew on. Run it once
// against an empty database:
//
//	DATABASE_URL=postgres://... go run ./cmd/seed -orders 2000 -days 120
func main() {
	products := flag.Int("products", 60, "number of demo products")
	customers := flag.Int("customers", 40, "number of demo customers")
	orders := flag.Int("orders", 1500, "number of demo orders")
	days := flag.Int("days", 90, "spread orders across this many trailing days")
	seed := flag.Int64("seed", 42, "random seed")
	flag.Parse()

	cfg := config.Load()
	if cfg.DatabaseURL == "" {
		log.Fatal("DATABASE_URL must be set for seeding")
	}

	ctx := context.Background()
	repo, err := pgstore.New(ctx, cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("postgres: %v", err)
	}
	defer repo.Close()

	rng := rand.New(rand.NewSource(*seed))
	now := time.Now().UTC()

	catalog := make([]domain.Product, 0, *products)
	bar := progressbar.Default(int64(*products), "products")
	for i := 0; i < *products; i++ {
		price := decimal.NewFromInt(int64(20 + rng.Intn(980)))
		cost := price.Mul(decimal.NewFromFloat(0.5 + rng.Float64()*0.3)).Round(2)
		product := domain.Product{
			ID:            uuid.NewString(),
			SKU:           fmt.Sprintf("DEMO-%04d", i+1),
			Name:          fmt.Sprintf("Demo Product %d", i+1),
			Category:      categories[rng.Intn(len(categories))],
			Price:         price,
			CostPrice:     &cost,
			Stock:         rng.Intn(200),
			MinStockLevel: 10,
			ReorderLevel:  25,
			Active:        true,
			CreatedAt:     now,
			UpdatedAt:     now,
		}
		if _, err := repo.CreateProduct(ctx, product); err != nil {
			log.Fatalf("create product %s: %v", product.SKU, err)
		}
		catalog = append(catalog, product)
		_ = bar.Add(1)
	}

	buyers := make([]domain.Customer, 0, *customers)
	bar = progressbar.Default(int64(*customers), "customers")
	for i := 0; i < *customers; i++ {
		customer := domain.Customer{
			ID:        uuid.NewString(),
			Name:      fmt.Sprintf("Demo Customer %d", i+1),
			Email:     fmt.Sprintf("customer%d@example.com", i+1),
			CreatedAt: now.AddDate(0, 0, -*days),
		}
		if _, err := repo.CreateCustomer(ctx, customer); err != nil {
			log.Fatalf("create customer %s: %v", customer.ID, err)
		}
		buyers = append(buyers, customer)
		_ = bar.Add(1)
	}

	bar = progressbar.Default(int64(*orders), "orders")
	for i := 0; i < *orders; i++ {
		if _, err := repo.CreateOrder(ctx, randomOrder(rng, catalog, buyers, now, *days)); err != nil {
			log.Fatalf("create order: %v", err)
		}
		_ = bar.Add(1)
	}

	log.Printf("seeded %d products, %d customers, %d orders", *products, *customers, *orders)
}

var categories = []string{"grocery", "beverage", "snack", "personal care", "household"}

var statuses = []string{
	domain.OrderStatusCompleted,
	domain.OrderStatusCompleted,
	domain.OrderStatusCompleted,
	domain.OrderStatusCompleted,
	domain.OrderStatusPending,
	domain.OrderStatusProcessing,
	domain.OrderStatusCancelled,
	domain.OrderStatusRefunded,
}

var payments = []string{
	domain.PaymentCash,
	domain.PaymentCash,
	domain.PaymentCard,
	domain.PaymentUPI,
	domain.PaymentWallet,
	domain.PaymentNetbanking,
}

func randomOrder(rng *rand.Rand, catalog []domain.Product, buyers []domain.Customer, now time.Time, days int) domain.Order {
	placedAt := now.AddDate(0, 0, -rng.Intn(days)).
		Add(-time.Duration(rng.Intn(12)) * time.Hour)

	order := domain.Order{
		ID:            uuid.NewString(),
		Status:        statuses[rng.Intn(len(statuses))],
		PaymentMethod: payments[rng.Intn(len(payments))],
		CashierID:     fmt.Sprintf("cashier-%d", 1+rng.Intn(4)),
		CreatedAt:     placedAt,
	}

	// Roughly 60% of demo orders are online and carry a customer.
	if rng.Intn(10) < 6 {
		id := buyers[rng.Intn(len(buyers))].ID
		order.CustomerID = &id
	}

	total := decimal.Zero
	lineCount := 1 + rng.Intn(4)
	for j := 0; j < lineCount; j++ {
		product := catalog[rng.Intn(len(catalog))]
		qty := 1 + rng.Intn(5)
		order.Items = append(order.Items, domain.OrderItem{
			OrderID:     order.ID,
			ProductID:   &product.ID,
			ProductName: product.Name,
			UnitPrice:   product.Price,
			Quantity:    qty,
		})
		total = total.Add(product.Price.Mul(decimal.NewFromInt(int64(qty))))
	}
	order.Total = total
	return order
}
