package report

import (
	"fmt"

	"lapakku/backend/internal/domain"
)

// Invalid-record share above which the data-quality warning escalates.
const (
	invalidShareMedium = 0.05
	invalidShareHigh   = 0.20
)

// validOrder decides whether a raw order record is eligible for any
// aggregate: at least one item, a strictly positive total, a legal status,
// and every item either referencing a product or carrying the synthesized
// name+price+quantity triple kept for soft-deleted products.
func validOrder(o domain.Order) bool {
	if len(o.Items) == 0 {
		return false
	}
	if !o.Total.IsPositive() {
		return false
	}
	if !domain.IsOrderStatus(o.Status) {
		return false
	}
	for _, item := range o.Items {
		if item.ProductID != nil && *item.ProductID != "" {
			continue
		}
		if item.ProductName == "" || item.Quantity < 1 || item.UnitPrice.IsNegative() {
			return false
		}
	}
	return true
}

// splitValid partitions raw orders into the aggregate-eligible subset and
// a count of rejected records. Rejected records never fail a report; they
// surface as a warning so operators can spot systemic data problems.
func splitValid(orders []domain.Order) ([]domain.Order, int) {
	valid := make([]domain.Order, 0, len(orders))
	invalid := 0
	for _, o := range orders {
		if validOrder(o) {
			valid = append(valid, o)
		} else {
			invalid++
		}
	}
	return valid, invalid
}

func dataQualityWarnings(validCount int, invalidCount int) []domain.ReportWarning {
	warnings := make([]domain.ReportWarning, 0, 1)
	if invalidCount == 0 {
		return warnings
	}

	share := float64(invalidCount) / float64(validCount+invalidCount)
	severity := domain.WarnSeverityLow
	switch {
	case share >= invalidShareHigh:
		severity = domain.WarnSeverityHigh
	case share >= invalidShareMedium:
		severity = domain.WarnSeverityMedium
	}

	warnings = append(warnings, domain.ReportWarning{
		Code:     "invalid_orders",
		Message:  fmt.Sprintf("%d order(s) excluded from aggregates by record validation", invalidCount),
		Severity: severity,
		Count:    invalidCount,
	})
	return warnings
}
