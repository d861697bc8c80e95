package report

import (
	"sort"
	"time"

	"github.com/shopspring/decimal"

	"lapakku/backend/internal/domain"
)

// RFM scoring thresholds. Monetary is on net lifetime spend, frequency on
// orders per 30 days, recency on days since the last order.
var monetaryThresholds = []struct {
	min   decimal.Decimal
	score int
}{
	{decimal.NewFromInt(10000), 5},
	{decimal.NewFromInt(5000), 4},
	{decimal.NewFromInt(2000), 3},
	{decimal.NewFromInt(500), 2},
}

const minOrdersForPrediction = 3

// scoreCustomer computes the full RFM profile for one customer over their
// validated completed-family orders, sorted oldest first. It is a pure
// function of a single customer's history and safe to run concurrently.
func scoreCustomer(customer domain.Customer, orders []domain.Order, now time.Time) domain.CustomerRFM {
	row := domain.CustomerRFM{
		CustomerID: customer.ID,
		Name:       customer.Name,
		OrderCount: len(orders),
		TotalSpend: decimal.Zero,
	}

	for _, o := range orders {
		row.TotalSpend = row.TotalSpend.Add(o.Total)
	}

	if len(orders) > 0 {
		first := orders[0].CreatedAt
		last := orders[len(orders)-1].CreatedAt
		row.FirstOrderAt = &first
		row.LastOrderAt = &last
	}

	row.MonetaryScore = monetaryScore(row.TotalSpend)
	row.FrequencyScore = frequencyScore(len(orders), row.FirstOrderAt, now)
	row.RecencyScore = recencyScore(row.LastOrderAt, now)
	row.Segment = segmentOf(row.RecencyScore + row.FrequencyScore + row.MonetaryScore)
	row.ChurnRisk = churnRisk(row.RecencyScore, row.FrequencyScore, row.Segment)
	row.NextPurchaseAt = predictNextPurchase(orders)
	return row
}

func monetaryScore(spend decimal.Decimal) int {
	for _, threshold := range monetaryThresholds {
		if spend.GreaterThan(threshold.min) {
			return threshold.score
		}
	}
	return 1
}

func frequencyScore(orderCount int, firstOrderAt *time.Time, now time.Time) int {
	if orderCount == 0 || firstOrderAt == nil {
		return 1
	}
	months := now.Sub(*firstOrderAt).Hours() / 24 / 30
	if months < 1 {
		months = 1
	}
	perMonth := float64(orderCount) / months
	switch {
	case perMonth > 4:
		return 5
	case perMonth > 2:
		return 4
	case perMonth > 1:
		return 3
	case perMonth > 0.5:
		return 2
	default:
		return 1
	}
}

func recencyScore(lastOrderAt *time.Time, now time.Time) int {
	if lastOrderAt == nil {
		return 1
	}
	days := now.Sub(*lastOrderAt).Hours() / 24
	switch {
	case days <= 7:
		return 5
	case days <= 30:
		return 4
	case days <= 90:
		return 3
	case days <= 180:
		return 2
	default:
		return 1
	}
}

// segmentOf maps the summed R+F+M score (3..15) by inclusive lower bounds.
func segmentOf(total int) string {
	switch {
	case total >= 14:
		return domain.SegmentChampion
	case total >= 11:
		return domain.SegmentLoyal
	case total >= 8:
		return domain.SegmentPotential
	case total >= 5:
		return domain.SegmentNew
	case total >= 3:
		return domain.SegmentAtRisk
	default:
		return domain.SegmentLost
	}
}

// churnRisk is an additive 0-100 penalty on weak recency and frequency,
// with extra weight on the at_risk and lost segments.
func churnRisk(recency int, frequency int, segment string) int {
	risk := 0
	switch recency {
	case 1:
		risk += 40
	case 2:
		risk += 20
	case 3:
		risk += 10
	}
	switch frequency {
	case 1:
		risk += 30
	case 2:
		risk += 15
	}
	switch segment {
	case domain.SegmentAtRisk:
		risk += 20
	case domain.SegmentLost:
		risk += 30
	}
	if risk > 100 {
		risk = 100
	}
	return risk
}

// predictNextPurchase averages the gaps between consecutive orders and
// projects that average past the last order. Needs at least three orders
// to say anything.
func predictNextPurchase(orders []domain.Order) *time.Time {
	if len(orders) < minOrdersForPrediction {
		return nil
	}
	var totalGap time.Duration
	for i := 1; i < len(orders); i++ {
		totalGap += orders[i].CreatedAt.Sub(orders[i-1].CreatedAt)
	}
	avgGap := totalGap / time.Duration(len(orders)-1)
	next := orders[len(orders)-1].CreatedAt.Add(avgGap)
	return &next
}

// customerOrders indexes validated completed-family orders per customer,
// sorted oldest first.
func customerOrders(orders []domain.Order) map[string][]domain.Order {
	byCustomer := map[string][]domain.Order{}
	for _, o := range orders {
		if o.CustomerID == nil || *o.CustomerID == "" {
			continue
		}
		if !domain.IsRevenueStatus(o.Status) {
			continue
		}
		byCustomer[*o.CustomerID] = append(byCustomer[*o.CustomerID], o)
	}
	for id := range byCustomer {
		history := byCustomer[id]
		sort.Slice(history, func(i, j int) bool {
			return history[i].CreatedAt.Before(history[j].CreatedAt)
		})
		byCustomer[id] = history
	}
	return byCustomer
}
