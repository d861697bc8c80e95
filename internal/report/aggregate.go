package report

import (
	"sort"

	"github.com/shopspring/decimal"

	"lapakku/backend/internal/domain"
)

// DefaultCostRate is the cost fallback applied when a product carries no
// cost price: 60% of the sell price.
var DefaultCostRate = decimal.NewFromFloat(0.60)

// percentOf computes a two-decimal percentage as round(value/total*10000)/100.
// A zero denominator yields 0, never NaN or Inf.
func percentOf(value decimal.Decimal, total decimal.Decimal) float64 {
	if total.IsZero() {
		return 0
	}
	pct, _ := value.Div(total).Mul(decimal.NewFromInt(10000)).Round(0).Float64()
	return pct / 100
}

// orderTotals folds a validated order set into the base revenue counters.
type orderTotals struct {
	orders    int
	completed int
	refunded  int
	cancelled int
	gross     decimal.Decimal
	refunds   decimal.Decimal
}

func (t orderTotals) net() decimal.Decimal {
	net := t.gross.Sub(t.refunds)
	if net.IsNegative() {
		return decimal.Zero
	}
	return net
}

func sumOrders(orders []domain.Order) orderTotals {
	totals := orderTotals{gross: decimal.Zero, refunds: decimal.Zero}
	for _, o := range orders {
		totals.orders++
		switch {
		case domain.IsRevenueStatus(o.Status):
			totals.completed++
			totals.gross = totals.gross.Add(o.Total)
		case o.Status == domain.OrderStatusRefunded:
			totals.refunded++
			totals.refunds = totals.refunds.Add(o.Total.Abs())
		case o.Status == domain.OrderStatusCancelled:
			totals.cancelled++
		}
	}
	return totals
}

// paymentMix groups validated orders by payment method. Per group the
// amount is the net (completed-family gross minus refunds, floored at 0);
// percentages close to ~100 across the partition.
func paymentMix(orders []domain.Order) []domain.PaymentBreakdown {
	type grp struct {
		orders  int
		gross   decimal.Decimal
		refunds decimal.Decimal
	}
	groups := map[string]*grp{}
	for _, o := range orders {
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		method := o.PaymentMethod
		if method == "" {
			method = domain.PaymentCash
		}
		g := groups[method]
		if g == nil {
			g = &grp{gross: decimal.Zero, refunds: decimal.Zero}
			groups[method] = g
		}
		g.orders++
		if domain.IsRevenueStatus(o.Status) {
			g.gross = g.gross.Add(o.Total)
		} else if o.Status == domain.OrderStatusRefunded {
			g.refunds = g.refunds.Add(o.Total.Abs())
		}
	}

	total := decimal.Zero
	nets := map[string]decimal.Decimal{}
	for method, g := range groups {
		net := g.gross.Sub(g.refunds)
		if net.IsNegative() {
			net = decimal.Zero
		}
		nets[method] = net
		total = total.Add(net)
	}

	mix := make([]domain.PaymentBreakdown, 0, len(groups))
	for method, g := range groups {
		mix = append(mix, domain.PaymentBreakdown{
			Method:     method,
			Orders:     g.orders,
			Amount:     nets[method],
			Percentage: percentOf(nets[method], total),
		})
	}
	sort.Slice(mix, func(i, j int) bool {
		if !mix[i].Amount.Equal(mix[j].Amount) {
			return mix[i].Amount.GreaterThan(mix[j].Amount)
		}
		if mix[i].Orders != mix[j].Orders {
			return mix[i].Orders > mix[j].Orders
		}
		return mix[i].Method < mix[j].Method
	})
	return mix
}

// channelMix groups validated orders by channel. Channel is structural:
// online iff the order carries a customer reference.
func channelMix(orders []domain.Order) []domain.ChannelBreakdown {
	type grp struct {
		orders  int
		gross   decimal.Decimal
		refunds decimal.Decimal
	}
	groups := map[string]*grp{}
	for _, o := range orders {
		if o.Status == domain.OrderStatusCancelled {
			continue
		}
		g := groups[o.Channel()]
		if g == nil {
			g = &grp{gross: decimal.Zero, refunds: decimal.Zero}
			groups[o.Channel()] = g
		}
		g.orders++
		if domain.IsRevenueStatus(o.Status) {
			g.gross = g.gross.Add(o.Total)
		} else if o.Status == domain.OrderStatusRefunded {
			g.refunds = g.refunds.Add(o.Total.Abs())
		}
	}

	total := decimal.Zero
	nets := map[string]decimal.Decimal{}
	for channel, g := range groups {
		net := g.gross.Sub(g.refunds)
		if net.IsNegative() {
			net = decimal.Zero
		}
		nets[channel] = net
		total = total.Add(net)
	}

	mix := make([]domain.ChannelBreakdown, 0, len(groups))
	for channel, g := range groups {
		mix = append(mix, domain.ChannelBreakdown{
			Channel:    channel,
			Orders:     g.orders,
			Amount:     nets[channel],
			Percentage: percentOf(nets[channel], total),
		})
	}
	sort.Slice(mix, func(i, j int) bool {
		if !mix[i].Amount.Equal(mix[j].Amount) {
			return mix[i].Amount.GreaterThan(mix[j].Amount)
		}
		if mix[i].Orders != mix[j].Orders {
			return mix[i].Orders > mix[j].Orders
		}
		return mix[i].Channel < mix[j].Channel
	})
	return mix
}

// hourlyBuckets folds a day's validated orders into 24 zero-filled hour
// buckets. Only completed-family orders contribute to the amounts, so the
// hourly amounts sum to the day's gross revenue.
func hourlyBuckets(orders []domain.Order) []domain.HourBucket {
	byHour := map[string]*domain.HourBucket{}
	buckets := make([]domain.HourBucket, 0, 24)
	for _, key := range HourKeys() {
		buckets = append(buckets, domain.HourBucket{Hour: key, Amount: decimal.Zero})
	}
	for i := range buckets {
		byHour[buckets[i].Hour] = &buckets[i]
	}

	for _, o := range orders {
		if !domain.IsRevenueStatus(o.Status) {
			continue
		}
		bucket := byHour[HourKey(o.CreatedAt)]
		if bucket == nil {
			continue
		}
		bucket.Orders++
		bucket.Amount = bucket.Amount.Add(o.Total)
	}
	return buckets
}

// salesBuckets folds validated orders into zero-filled period buckets over
// the requested range.
func salesBuckets(orders []domain.Order, r Range, period string) []domain.SalesBucket {
	keys := PeriodKeys(r, period)
	buckets := make([]domain.SalesBucket, 0, len(keys))
	byKey := map[string]*domain.SalesBucket{}
	for _, key := range keys {
		buckets = append(buckets, domain.SalesBucket{
			Period:  key,
			Gross:   decimal.Zero,
			Refunds: decimal.Zero,
			Net:     decimal.Zero,
		})
	}
	for i := range buckets {
		byKey[buckets[i].Period] = &buckets[i]
	}

	for _, o := range orders {
		bucket := byKey[PeriodKey(o.CreatedAt, period)]
		if bucket == nil {
			continue
		}
		switch {
		case domain.IsRevenueStatus(o.Status):
			bucket.Orders++
			bucket.Gross = bucket.Gross.Add(o.Total)
		case o.Status == domain.OrderStatusRefunded:
			bucket.Orders++
			bucket.Refunds = bucket.Refunds.Add(o.Total.Abs())
		}
	}

	for i := range buckets {
		net := buckets[i].Gross.Sub(buckets[i].Refunds)
		if net.IsNegative() {
			net = decimal.Zero
		}
		buckets[i].Net = net
	}
	return buckets
}

// productSales rolls completed-family orders up per product using each
// item's price snapshot for revenue and the product's cost price (or the
// 60%-of-price default) for cost. Items whose product no longer exists are
// grouped by their synthesized name.
func productSales(orders []domain.Order, products map[string]domain.Product) []domain.ProductSales {
	rollup := map[string]*domain.ProductSales{}
	for _, o := range orders {
		if !domain.IsRevenueStatus(o.Status) {
			continue
		}
		for _, item := range o.Items {
			key := "name:" + item.ProductName
			if item.ProductID != nil && *item.ProductID != "" {
				key = *item.ProductID
			}

			entry := rollup[key]
			if entry == nil {
				entry = &domain.ProductSales{
					Name:    item.ProductName,
					Revenue: decimal.Zero,
					Cost:    decimal.Zero,
					Margin:  decimal.Zero,
				}
				if item.ProductID != nil && *item.ProductID != "" {
					entry.ProductID = *item.ProductID
					if product, ok := products[*item.ProductID]; ok {
						entry.Name = product.Name
						entry.SKU = product.SKU
						entry.Category = product.Category
					}
				}
				rollup[key] = entry
			}

			qty := decimal.NewFromInt(int64(item.Quantity))
			entry.Quantity += item.Quantity
			entry.Revenue = entry.Revenue.Add(item.UnitPrice.Mul(qty))
			entry.Cost = entry.Cost.Add(unitCost(item, products).Mul(qty))
		}
	}

	sales := make([]domain.ProductSales, 0, len(rollup))
	for _, entry := range rollup {
		entry.Margin = entry.Revenue.Sub(entry.Cost)
		sales = append(sales, *entry)
	}
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].Revenue.Equal(sales[j].Revenue) {
			return sales[i].Revenue.GreaterThan(sales[j].Revenue)
		}
		if sales[i].Quantity != sales[j].Quantity {
			return sales[i].Quantity > sales[j].Quantity
		}
		return sales[i].Name < sales[j].Name
	})
	return sales
}

// categorySales rolls product sales up one level into categories. Items
// without a resolvable product land in "uncategorized".
func categorySales(orders []domain.Order, products map[string]domain.Product) []domain.ProductSales {
	rollup := map[string]*domain.ProductSales{}
	for _, entry := range productSales(orders, products) {
		category := entry.Category
		if category == "" {
			category = "uncategorized"
		}
		group := rollup[category]
		if group == nil {
			group = &domain.ProductSales{
				Name:     category,
				Category: category,
				Revenue:  decimal.Zero,
				Cost:     decimal.Zero,
				Margin:   decimal.Zero,
			}
			rollup[category] = group
		}
		group.Quantity += entry.Quantity
		group.Revenue = group.Revenue.Add(entry.Revenue)
		group.Cost = group.Cost.Add(entry.Cost)
		group.Margin = group.Margin.Add(entry.Margin)
	}

	sales := make([]domain.ProductSales, 0, len(rollup))
	for _, group := range rollup {
		sales = append(sales, *group)
	}
	sort.Slice(sales, func(i, j int) bool {
		if !sales[i].Revenue.Equal(sales[j].Revenue) {
			return sales[i].Revenue.GreaterThan(sales[j].Revenue)
		}
		return sales[i].Name < sales[j].Name
	})
	return sales
}

// unitCost resolves an item's unit cost: the product's cost price when
// recorded, otherwise DefaultCostRate of the product price, otherwise
// DefaultCostRate of the price snapshot for soft-deleted products.
func unitCost(item domain.OrderItem, products map[string]domain.Product) decimal.Decimal {
	if item.ProductID != nil && *item.ProductID != "" {
		if product, ok := products[*item.ProductID]; ok {
			if product.CostPrice != nil {
				return *product.CostPrice
			}
			return product.Price.Mul(DefaultCostRate)
		}
	}
	return item.UnitPrice.Mul(DefaultCostRate)
}

func productMap(products []domain.Product) map[string]domain.Product {
	byID := make(map[string]domain.Product, len(products))
	for _, p := range products {
		byID[p.ID] = p
	}
	return byID
}
