package report

import (
	"context"
	"log"
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"lapakku/backend/internal/domain"
	"lapakku/backend/internal/store"
)

const dailyTopProducts = 5

// Engine is the report facade. It computes every report synchronously over
// a read-only snapshot fetched from the injected provider, holds no state
// across invocations, and never fails to the caller: a snapshot fetch
// error degrades the report into its empty-but-well-typed shape with the
// Error field populated.
type Engine struct {
	snapshots store.SnapshotProvider
	now       func() time.Time
}

func NewEngine(snapshots store.SnapshotProvider) *Engine {
	return &Engine{snapshots: snapshots, now: time.Now}
}

// DailySales reports one calendar day: totals, 24 zero-filled hour
// buckets, payment and channel mix, and the day's top products.
func (e *Engine) DailySales(ctx context.Context, date time.Time) domain.DailySalesReport {
	window := DayRange(date)
	report := emptyDailySales(DayKey(window.From))

	orders, err := e.snapshots.OrdersBetween(ctx, window.From, window.To)
	if err != nil {
		return degraded(report, "daily sales", err, func(r *domain.DailySalesReport, msg string) { r.Error = msg })
	}
	products, err := e.snapshots.ListProducts(ctx)
	if err != nil {
		return degraded(report, "daily sales", err, func(r *domain.DailySalesReport, msg string) { r.Error = msg })
	}

	valid, invalid := splitValid(orders)
	totals := sumOrders(valid)

	report.OrderCount = totals.orders
	report.CompletedOrders = totals.completed
	report.RefundedOrders = totals.refunded
	report.CancelledOrders = totals.cancelled
	report.GrossRevenue = totals.gross
	report.TotalRefunds = totals.refunds
	report.NetRevenue = totals.net()
	if totals.completed > 0 {
		report.AvgOrderValue = totals.gross.Div(decimal.NewFromInt(int64(totals.completed))).Round(2)
	}
	report.Hourly = hourlyBuckets(valid)
	report.Payments = paymentMix(valid)
	report.Channels = channelMix(valid)
	report.TopProducts = topN(productSales(valid, productMap(products)), dailyTopProducts)
	report.Warnings = dataQualityWarnings(len(valid), invalid)
	return report
}

// SalesRange reports an inclusive date range bucketed at daily, weekly or
// monthly granularity with every bucket present, zero-filled absent data.
func (e *Engine) SalesRange(ctx context.Context, start time.Time, end time.Time, period string) domain.SalesRangeReport {
	if !IsPeriod(period) {
		period = PeriodDaily
	}
	window := NormalizeRange(start, end)
	report := emptySalesRange(window, period)

	orders, err := e.snapshots.OrdersBetween(ctx, window.From, window.To)
	if err != nil {
		return degraded(report, "sales range", err, func(r *domain.SalesRangeReport, msg string) { r.Error = msg })
	}

	valid, invalid := splitValid(orders)
	totals := sumOrders(valid)

	report.OrderCount = totals.orders
	report.GrossRevenue = totals.gross
	report.TotalRefunds = totals.refunds
	report.NetRevenue = totals.net()
	report.Buckets = salesBuckets(valid, window, period)
	report.Warnings = dataQualityWarnings(len(valid), invalid)
	return report
}

// PaymentMix reports the payment-method and channel partitions over an
// inclusive date range, with two-decimal percentages closing to ~100.
func (e *Engine) PaymentMix(ctx context.Context, start time.Time, end time.Time) domain.PaymentMixReport {
	window := NormalizeRange(start, end)
	report := emptyPaymentMix(window)

	orders, err := e.snapshots.OrdersBetween(ctx, window.From, window.To)
	if err != nil {
		return degraded(report, "payment mix", err, func(r *domain.PaymentMixReport, msg string) { r.Error = msg })
	}

	valid, invalid := splitValid(orders)
	totals := sumOrders(valid)

	report.OrderCount = totals.orders
	report.TotalAmount = totals.net()
	report.Methods = paymentMix(valid)
	report.Channels = channelMix(valid)
	if len(report.Methods) > 0 {
		report.DominantMethod = report.Methods[0].Method
	}
	report.Warnings = dataQualityWarnings(len(valid), invalid)
	return report
}

// CustomerSegmentation scores every customer (or just customerID when
// given) over their full validated completed-family history.
func (e *Engine) CustomerSegmentation(ctx context.Context, customerID string) domain.SegmentationReport {
	report := emptySegmentation()

	customers, err := e.snapshots.ListCustomers(ctx)
	if err != nil {
		return degraded(report, "segmentation", err, func(r *domain.SegmentationReport, msg string) { r.Error = msg })
	}
	orders, err := e.snapshots.AllOrders(ctx)
	if err != nil {
		return degraded(report, "segmentation", err, func(r *domain.SegmentationReport, msg string) { r.Error = msg })
	}

	valid, invalid := splitValid(orders)
	history := customerOrders(valid)
	now := e.now().UTC()

	for _, customer := range customers {
		if customerID != "" && customer.ID != customerID {
			continue
		}
		report.Customers = append(report.Customers, scoreCustomer(customer, history[customer.ID], now))
	}
	sort.Slice(report.Customers, func(i, j int) bool {
		if !report.Customers[i].TotalSpend.Equal(report.Customers[j].TotalSpend) {
			return report.Customers[i].TotalSpend.GreaterThan(report.Customers[j].TotalSpend)
		}
		return report.Customers[i].Name < report.Customers[j].Name
	})

	report.CustomerCount = len(report.Customers)
	report.Distribution = segmentDistribution(report.Customers)
	report.Warnings = dataQualityWarnings(len(valid), invalid)
	return report
}

// InventoryValuation reports cost/retail valuation, stock status and ABC
// tiers over the full product universe. The low-stock cutoff is inclusive:
// stock <= threshold.
func (e *Engine) InventoryValuation(ctx context.Context, threshold int) domain.InventoryReport {
	report := emptyInventory()

	products, err := e.snapshots.ListProducts(ctx)
	if err != nil {
		return degraded(report, "inventory valuation", err, func(r *domain.InventoryReport, msg string) { r.Error = msg })
	}
	now := e.now().UTC()
	window := NormalizeRange(now.AddDate(0, 0, -salesWindowDays), now)
	orders, err := e.snapshots.OrdersBetween(ctx, window.From, window.To)
	if err != nil {
		return degraded(report, "inventory valuation", err, func(r *domain.InventoryReport, msg string) { r.Error = msg })
	}

	valid, invalid := splitValid(orders)
	valuations := valueProducts(products, avgMonthlySales(valid, now))
	classifyABC(valuations)

	for _, v := range valuations {
		report.TotalCostValue = report.TotalCostValue.Add(v.CostValue)
		report.TotalRetailValue = report.TotalRetailValue.Add(v.RetailValue)
		if v.Stock <= threshold {
			report.LowStock = append(report.LowStock, v)
		}
	}
	sort.Slice(report.LowStock, func(i, j int) bool {
		if report.LowStock[i].Stock != report.LowStock[j].Stock {
			return report.LowStock[i].Stock < report.LowStock[j].Stock
		}
		return report.LowStock[i].Name < report.LowStock[j].Name
	})

	report.ProductCount = len(valuations)
	report.Products = valuations
	report.StatusCounts = statusCounts(valuations)
	report.Tiers = tierSummaries(valuations, report.TotalRetailValue)
	report.Warnings = dataQualityWarnings(len(valid), invalid)
	return report
}

// Trends reports the last N weeks bucketed at the requested granularity,
// with net revenue, average order value and bucket-over-bucket growth.
func (e *Engine) Trends(ctx context.Context, weeks int, period string) domain.TrendReport {
	if weeks < 1 {
		weeks = 1
	}
	if !IsPeriod(period) {
		period = PeriodWeekly
	}
	window := LastNWeeks(weeks, e.now())
	report := emptyTrend(window, weeks, period)

	orders, err := e.snapshots.OrdersBetween(ctx, window.From, window.To)
	if err != nil {
		return degraded(report, "trends", err, func(r *domain.TrendReport, msg string) { r.Error = msg })
	}

	valid, invalid := splitValid(orders)
	prev := decimal.Zero
	for i, bucket := range salesBuckets(valid, window, period) {
		trend := domain.TrendBucket{
			Period:        bucket.Period,
			Orders:        bucket.Orders,
			NetRevenue:    bucket.Net,
			AvgOrderValue: decimal.Zero,
		}
		if bucket.Orders > 0 {
			trend.AvgOrderValue = bucket.Net.Div(decimal.NewFromInt(int64(bucket.Orders))).Round(2)
		}
		if i > 0 && prev.IsPositive() {
			growth, _ := bucket.Net.Sub(prev).Div(prev).Mul(decimal.NewFromInt(10000)).Round(0).Float64()
			trend.GrowthPct = growth / 100
		}
		prev = bucket.Net
		report.Buckets = append(report.Buckets, trend)
	}
	report.Warnings = dataQualityWarnings(len(valid), invalid)
	return report
}

// TopProducts ranks products by revenue over an inclusive date range,
// using each item's price snapshot.
func (e *Engine) TopProducts(ctx context.Context, start time.Time, end time.Time, limit int) domain.TopProductsReport {
	if limit < 1 {
		limit = 10
	}
	window := NormalizeRange(start, end)
	report := emptyTopProducts(window, limit)

	orders, err := e.snapshots.OrdersBetween(ctx, window.From, window.To)
	if err != nil {
		return degraded(report, "top products", err, func(r *domain.TopProductsReport, msg string) { r.Error = msg })
	}
	products, err := e.snapshots.ListProducts(ctx)
	if err != nil {
		return degraded(report, "top products", err, func(r *domain.TopProductsReport, msg string) { r.Error = msg })
	}

	valid, invalid := splitValid(orders)
	byID := productMap(products)
	report.Products = topN(productSales(valid, byID), limit)
	report.Categories = categorySales(valid, byID)
	report.Warnings = dataQualityWarnings(len(valid), invalid)
	return report
}

// degraded logs the fetch failure and stamps the report's Error field,
// leaving the empty shape intact.
func degraded[R any](report R, name string, err error, setError func(*R, string)) R {
	log.Printf("[report] WARN: %s snapshot fetch failed: %v", name, err)
	setError(&report, err.Error())
	return report
}

func topN(sales []domain.ProductSales, n int) []domain.ProductSales {
	if len(sales) > n {
		return sales[:n]
	}
	return sales
}

func segmentDistribution(customers []domain.CustomerRFM) []domain.SegmentCount {
	order := []string{
		domain.SegmentChampion,
		domain.SegmentLoyal,
		domain.SegmentPotential,
		domain.SegmentNew,
		domain.SegmentAtRisk,
		domain.SegmentLost,
	}
	counts := map[string]int{}
	for _, c := range customers {
		counts[c.Segment]++
	}
	distribution := make([]domain.SegmentCount, 0, len(order))
	for _, segment := range order {
		distribution = append(distribution, domain.SegmentCount{Segment: segment, Customers: counts[segment]})
	}
	return distribution
}

// Empty-shape constructors. Every collection is non-nil so degraded
// reports keep the documented structure.

func emptyDailySales(date string) domain.DailySalesReport {
	return domain.DailySalesReport{
		Date:          date,
		GrossRevenue:  decimal.Zero,
		TotalRefunds:  decimal.Zero,
		NetRevenue:    decimal.Zero,
		AvgOrderValue: decimal.Zero,
		Hourly:        []domain.HourBucket{},
		Payments:      []domain.PaymentBreakdown{},
		Channels:      []domain.ChannelBreakdown{},
		TopProducts:   []domain.ProductSales{},
		Warnings:      []domain.ReportWarning{},
	}
}

func emptySalesRange(window Range, period string) domain.SalesRangeReport {
	return domain.SalesRangeReport{
		StartDate:    DayKey(window.From),
		EndDate:      DayKey(window.To),
		Period:       period,
		GrossRevenue: decimal.Zero,
		TotalRefunds: decimal.Zero,
		NetRevenue:   decimal.Zero,
		Buckets:      []domain.SalesBucket{},
		Warnings:     []domain.ReportWarning{},
	}
}

func emptyPaymentMix(window Range) domain.PaymentMixReport {
	return domain.PaymentMixReport{
		StartDate:   DayKey(window.From),
		EndDate:     DayKey(window.To),
		TotalAmount: decimal.Zero,
		Methods:     []domain.PaymentBreakdown{},
		Channels:    []domain.ChannelBreakdown{},
		Warnings:    []domain.ReportWarning{},
	}
}

func emptySegmentation() domain.SegmentationReport {
	return domain.SegmentationReport{
		Customers:    []domain.CustomerRFM{},
		Distribution: []domain.SegmentCount{},
		Warnings:     []domain.ReportWarning{},
	}
}

func emptyInventory() domain.InventoryReport {
	return domain.InventoryReport{
		TotalCostValue:   decimal.Zero,
		TotalRetailValue: decimal.Zero,
		Products:         []domain.ProductValuation{},
		LowStock:         []domain.ProductValuation{},
		StatusCounts:     []domain.StatusCount{},
		Tiers:            []domain.TierSummary{},
		Warnings:         []domain.ReportWarning{},
	}
}

func emptyTrend(window Range, weeks int, period string) domain.TrendReport {
	return domain.TrendReport{
		Period:    period,
		Weeks:     weeks,
		StartDate: DayKey(window.From),
		EndDate:   DayKey(window.To),
		Buckets:   []domain.TrendBucket{},
		Warnings:  []domain.ReportWarning{},
	}
}

func emptyTopProducts(window Range, limit int) domain.TopProductsReport {
	return domain.TopProductsReport{
		StartDate:  DayKey(window.From),
		EndDate:    DayKey(window.To),
		Limit:      limit,
		Products:   []domain.ProductSales{},
		Categories: []domain.ProductSales{},
		Warnings:   []domain.ReportWarning{},
	}
}
