package report

import (
	"math"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"lapakku/backend/internal/domain"
)

// Valuation constants: trailing sales window, the months-of-stock sentinel
// for products with zero sales, and the ABC cumulative-contribution cuts.
const (
	salesWindowDays       = 90
	monthsOfStockSentinel = 999.0
	abcTierACut           = 80.0
	abcTierBCut           = 95.0
	overstockedMonths     = 6.0
	lowStockMonths        = 0.5
)

// avgMonthlySales computes per-product average monthly unit sales from the
// trailing 90-day completed-family window, keyed by product ID.
func avgMonthlySales(orders []domain.Order, now time.Time) map[string]float64 {
	cutoff := now.AddDate(0, 0, -salesWindowDays)
	sold := map[string]int{}
	for _, o := range orders {
		if !domain.IsRevenueStatus(o.Status) || o.CreatedAt.Before(cutoff) {
			continue
		}
		for _, item := range o.Items {
			if item.ProductID == nil || *item.ProductID == "" {
				continue
			}
			sold[*item.ProductID] += item.Quantity
		}
	}

	monthly := make(map[string]float64, len(sold))
	for id, qty := range sold {
		monthly[id] = float64(qty) / 3.0
	}
	return monthly
}

// valueProducts computes per-product cost/retail value, turnover and stock
// status over the full product universe.
func valueProducts(products []domain.Product, monthlySales map[string]float64) []domain.ProductValuation {
	valuations := make([]domain.ProductValuation, 0, len(products))
	for _, p := range products {
		cost := p.Price.Mul(DefaultCostRate)
		if p.CostPrice != nil {
			cost = *p.CostPrice
		}
		stock := decimal.NewFromInt(int64(p.Stock))
		monthly := monthlySales[p.ID]

		months := monthsOfStockSentinel
		if monthly > 0 {
			months = round2(float64(p.Stock) / monthly)
		}
		turnover := 0.0
		if p.Stock > 0 {
			turnover = round2(monthly / float64(p.Stock))
		}

		valuations = append(valuations, domain.ProductValuation{
			ProductID:       p.ID,
			Name:            p.Name,
			SKU:             p.SKU,
			Category:        p.Category,
			Stock:           p.Stock,
			Price:           p.Price,
			CostPrice:       cost,
			CostValue:       cost.Mul(stock),
			RetailValue:     p.Price.Mul(stock),
			AvgMonthlySales: round2(monthly),
			MonthsOfStock:   months,
			StockTurnover:   turnover,
			Status:          stockStatus(p, months),
		})
	}
	return valuations
}

// stockStatus classifies in strict priority order; the first matching rule
// wins.
func stockStatus(p domain.Product, monthsOfStock float64) string {
	switch {
	case p.Stock == 0:
		return domain.StockStatusOut
	case monthsOfStock > overstockedMonths:
		return domain.StockStatusOverstocked
	case monthsOfStock < lowStockMonths:
		return domain.StockStatusLow
	case p.Stock < p.MinStockLevel:
		return domain.StockStatusBelowMinimum
	default:
		return domain.StockStatusHealthy
	}
}

// classifyABC assigns A/B/C tiers by cumulative retail-value contribution
// over the same product universe used for the summary totals: sorted by
// retail value descending, a product is tier A while the running total
// stays within 80% of the grand total, tier B within 95%, C beyond.
func classifyABC(valuations []domain.ProductValuation) {
	sort.Slice(valuations, func(i, j int) bool {
		if !valuations[i].RetailValue.Equal(valuations[j].RetailValue) {
			return valuations[i].RetailValue.GreaterThan(valuations[j].RetailValue)
		}
		return valuations[i].Name < valuations[j].Name
	})

	grandTotal := decimal.Zero
	for _, v := range valuations {
		grandTotal = grandTotal.Add(v.RetailValue)
	}

	running := decimal.Zero
	for i := range valuations {
		running = running.Add(valuations[i].RetailValue)
		switch pct := percentOf(running, grandTotal); {
		case pct <= abcTierACut:
			valuations[i].Tier = "A"
		case pct <= abcTierBCut:
			valuations[i].Tier = "B"
		default:
			valuations[i].Tier = "C"
		}
	}
}

func tierSummaries(valuations []domain.ProductValuation, grandTotal decimal.Decimal) []domain.TierSummary {
	summaries := []domain.TierSummary{
		{Tier: "A", RetailValue: decimal.Zero},
		{Tier: "B", RetailValue: decimal.Zero},
		{Tier: "C", RetailValue: decimal.Zero},
	}
	index := map[string]int{"A": 0, "B": 1, "C": 2}
	for _, v := range valuations {
		i, ok := index[v.Tier]
		if !ok {
			continue
		}
		summaries[i].Products++
		summaries[i].RetailValue = summaries[i].RetailValue.Add(v.RetailValue)
	}
	for i := range summaries {
		summaries[i].Percentage = percentOf(summaries[i].RetailValue, grandTotal)
	}
	return summaries
}

func statusCounts(valuations []domain.ProductValuation) []domain.StatusCount {
	order := []string{
		domain.StockStatusOut,
		domain.StockStatusOverstocked,
		domain.StockStatusLow,
		domain.StockStatusBelowMinimum,
		domain.StockStatusHealthy,
	}
	counts := map[string]int{}
	for _, v := range valuations {
		counts[v.Status]++
	}
	result := make([]domain.StatusCount, 0, len(order))
	for _, status := range order {
		result = append(result, domain.StatusCount{Status: status, Products: counts[status]})
	}
	return result
}

func round2(val float64) float64 {
	return math.Round(val*100) / 100
}
