package report

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"lapakku/backend/internal/domain"
)

func stockedProduct(id string, price int64, stock int) domain.Product {
	return domain.Product{
		ID:            id,
		Name:          "Product " + id,
		SKU:           "SKU-" + id,
		Category:      "grocery",
		Price:         decimal.NewFromInt(price),
		Stock:         stock,
		MinStockLevel: 5,
		Active:        true,
	}
}

func soldItems(productID string, daysAgo int, qty int) domain.Order {
	o := testOrder(100, domain.OrderStatusCompleted)
	o.CreatedAt = rfmNow.AddDate(0, 0, -daysAgo)
	o.Items = []domain.OrderItem{
		{ProductID: &productID, ProductName: "Product " + productID, UnitPrice: decimal.NewFromInt(10), Quantity: qty},
	}
	return o
}

func TestAvgMonthlySalesTrailingWindow(t *testing.T) {
	orders := []domain.Order{
		soldItems("prod-a", 10, 9),
		soldItems("prod-a", 30, 6),
		soldItems("prod-a", 120, 50), // outside the 90-day window
		soldItems("prod-b", 5, 3),
	}
	stale := soldItems("prod-b", 2, 8)
	stale.Status = domain.OrderStatusRefunded
	orders = append(orders, stale)

	monthly := avgMonthlySales(orders, rfmNow)

	require.Len(t, monthly, 2)
	assert.Equal(t, 5.0, monthly["prod-a"], "15 units over 3 months")
	assert.Equal(t, 1.0, monthly["prod-b"], "refunded sales do not count")
}

func TestValueProductsZeroStockSentinel(t *testing.T) {
	out := stockedProduct("prod-out", 100, 0)

	valuations := valueProducts([]domain.Product{out}, nil)

	require.Len(t, valuations, 1)
	v := valuations[0]
	assert.Equal(t, domain.StockStatusOut, v.Status)
	assert.Equal(t, monthsOfStockSentinel, v.MonthsOfStock, "no sales means the sentinel, not a division")
	assert.True(t, v.CostValue.IsZero())
	assert.True(t, v.RetailValue.IsZero())
	assert.Equal(t, 0.0, v.StockTurnover)
}

func TestValueProductsCostFallback(t *testing.T) {
	recorded := decimal.NewFromInt(70)
	withCost := stockedProduct("prod-a", 100, 10)
	withCost.CostPrice = &recorded
	without := stockedProduct("prod-b", 100, 10)

	valuations := valueProducts([]domain.Product{withCost, without}, nil)

	require.Len(t, valuations, 2)
	assert.True(t, valuations[0].CostValue.Equal(decimal.NewFromInt(700)))
	assert.True(t, valuations[1].CostValue.Equal(decimal.NewFromInt(600)), "60% of price when no cost is recorded")
}

func TestStockStatusPriorityOrder(t *testing.T) {
	// Zero stock wins over everything, even an overstocked months figure.
	zero := stockedProduct("p", 100, 0)
	assert.Equal(t, domain.StockStatusOut, stockStatus(zero, monthsOfStockSentinel))

	// Overstocked beats below-minimum.
	slow := stockedProduct("p", 100, 3) // below MinStockLevel 5
	assert.Equal(t, domain.StockStatusOverstocked, stockStatus(slow, 12.0))

	// Low months-of-stock beats below-minimum.
	fast := stockedProduct("p", 100, 3)
	assert.Equal(t, domain.StockStatusLow, stockStatus(fast, 0.2))

	belowMin := stockedProduct("p", 100, 3)
	assert.Equal(t, domain.StockStatusBelowMinimum, stockStatus(belowMin, 2.0))

	healthy := stockedProduct("p", 100, 20)
	assert.Equal(t, domain.StockStatusHealthy, stockStatus(healthy, 2.0))
}

func TestClassifyABCPartition(t *testing.T) {
	// Retail values 800/100/60/40 of a 1000 grand total: cumulative 80, 90,
	// 96, 100 percent.
	valuations := valueProducts([]domain.Product{
		stockedProduct("prod-a", 80, 10),
		stockedProduct("prod-b", 10, 10),
		stockedProduct("prod-c", 6, 10),
		stockedProduct("prod-d", 4, 10),
	}, nil)

	classifyABC(valuations)

	tiers := map[string]string{}
	for _, v := range valuations {
		tiers[v.ProductID] = v.Tier
	}
	assert.Equal(t, "A", tiers["prod-a"], "running 80% stays inside the A cut")
	assert.Equal(t, "B", tiers["prod-b"])
	assert.Equal(t, "C", tiers["prod-c"], "96% crosses the B cut")
	assert.Equal(t, "C", tiers["prod-d"])

	assert.Equal(t, "prod-a", valuations[0].ProductID, "sorted by retail value descending")
}

func TestClassifyABCAssignsEveryProduct(t *testing.T) {
	valuations := valueProducts([]domain.Product{
		stockedProduct("prod-a", 500, 2),
		stockedProduct("prod-b", 90, 1),
		stockedProduct("prod-c", 10, 1),
	}, nil)

	classifyABC(valuations)

	for _, v := range valuations {
		assert.Contains(t, []string{"A", "B", "C"}, v.Tier)
	}
}

func TestTierSummariesPercentagesClose(t *testing.T) {
	valuations := valueProducts([]domain.Product{
		stockedProduct("prod-a", 80, 10),
		stockedProduct("prod-b", 10, 10),
		stockedProduct("prod-c", 10, 10),
	}, nil)
	classifyABC(valuations)

	grandTotal := decimal.Zero
	for _, v := range valuations {
		grandTotal = grandTotal.Add(v.RetailValue)
	}
	summaries := tierSummaries(valuations, grandTotal)

	require.Len(t, summaries, 3)
	assert.Equal(t, "A", summaries[0].Tier)
	total := 0
	pct := 0.0
	for _, s := range summaries {
		total += s.Products
		pct += s.Percentage
	}
	assert.Equal(t, len(valuations), total)
	assert.InDelta(t, 100.0, pct, 0.01)
}

func TestStatusCountsListsAllStatuses(t *testing.T) {
	products := []domain.Product{
		stockedProduct("prod-a", 100, 0),
		stockedProduct("prod-b", 100, 20),
	}
	valuations := valueProducts(products, map[string]float64{"prod-b": 10})

	counts := statusCounts(valuations)

	require.Len(t, counts, 5, "every status appears even at zero")
	byStatus := map[string]int{}
	for _, c := range counts {
		byStatus[c.Status] = c.Products
	}
	assert.Equal(t, 1, byStatus[domain.StockStatusOut])
	assert.Equal(t, 1, byStatus[domain.StockStatusHealthy], "2 months of stock")
	assert.Equal(t, 0, byStatus[domain.StockStatusOverstocked])
}

func TestRound2(t *testing.T) {
	assert.Equal(t, 1.67, round2(5.0/3.0))
	assert.Equal(t, 0.0, round2(0))
	assert.Equal(t, 2.5, round2(2.499999999999999))
}
