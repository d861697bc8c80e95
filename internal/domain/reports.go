package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Report DTOs. Every report keeps one fixed shape regardless of whether
// computation succeeded: on a snapshot fetch failure the engine returns
// the same structure with zeroed counters, empty (non-nil) collections
// and Error populated. Callers never see a transport-level failure.

const (
	WarnSeverityLow    = "low"
	WarnSeverityMedium = "medium"
	WarnSeverityHigh   = "high"
)

type ReportWarning struct {
	Code     string `json:"code"`
	Message  string `json:"message"`
	Severity string `json:"severity"`
	Count    int    `json:"count"`
}

type HourBucket struct {
	Hour   string          `json:"hour"`
	Orders int             `json:"orders"`
	Amount decimal.Decimal `json:"amount"`
}

type PaymentBreakdown struct {
	Method     string          `json:"method"`
	Orders     int             `json:"orders"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

type ChannelBreakdown struct {
	Channel    string          `json:"channel"`
	Orders     int             `json:"orders"`
	Amount     decimal.Decimal `json:"amount"`
	Percentage float64         `json:"percentage"`
}

type ProductSales struct {
	ProductID string          `json:"product_id,omitempty"`
	Name      string          `json:"name"`
	SKU       string          `json:"sku,omitempty"`
	Category  string          `json:"category,omitempty"`
	Quantity  int             `json:"quantity"`
	Revenue   decimal.Decimal `json:"revenue"`
	Cost      decimal.Decimal `json:"cost"`
	Margin    decimal.Decimal `json:"margin"`
}

type DailySalesReport struct {
	Date            string             `json:"date"`
	OrderCount      int                `json:"order_count"`
	CompletedOrders int                `json:"completed_orders"`
	RefundedOrders  int                `json:"refunded_orders"`
	CancelledOrders int                `json:"cancelled_orders"`
	GrossRevenue    decimal.Decimal    `json:"gross_revenue"`
	TotalRefunds    decimal.Decimal    `json:"total_refunds"`
	NetRevenue      decimal.Decimal    `json:"net_revenue"`
	AvgOrderValue   decimal.Decimal    `json:"avg_order_value"`
	Hourly          []HourBucket       `json:"hourly"`
	Payments        []PaymentBreakdown `json:"payments"`
	Channels        []ChannelBreakdown `json:"channels"`
	TopProducts     []ProductSales     `json:"top_products"`
	Warnings        []ReportWarning    `json:"warnings"`
	Error           string             `json:"error,omitempty"`
}

type SalesBucket struct {
	Period  string          `json:"period"`
	Orders  int             `json:"orders"`
	Gross   decimal.Decimal `json:"gross"`
	Refunds decimal.Decimal `json:"refunds"`
	Net     decimal.Decimal `json:"net"`
}

type SalesRangeReport struct {
	StartDate    string          `json:"start_date"`
	EndDate      string          `json:"end_date"`
	Period       string          `json:"period"`
	OrderCount   int             `json:"order_count"`
	GrossRevenue decimal.Decimal `json:"gross_revenue"`
	TotalRefunds decimal.Decimal `json:"total_refunds"`
	NetRevenue   decimal.Decimal `json:"net_revenue"`
	Buckets      []SalesBucket   `json:"buckets"`
	Warnings     []ReportWarning `json:"warnings"`
	Error        string          `json:"error,omitempty"`
}

type PaymentMixReport struct {
	StartDate      string             `json:"start_date"`
	EndDate        string             `json:"end_date"`
	OrderCount     int                `json:"order_count"`
	TotalAmount    decimal.Decimal    `json:"total_amount"`
	Methods        []PaymentBreakdown `json:"methods"`
	Channels       []ChannelBreakdown `json:"channels"`
	DominantMethod string             `json:"dominant_method,omitempty"`
	Warnings       []ReportWarning    `json:"warnings"`
	Error          string             `json:"error,omitempty"`
}

const (
	SegmentChampion  = "champion"
	SegmentLoyal     = "loyal"
	SegmentPotential = "potential"
	SegmentNew       = "new"
	SegmentAtRisk    = "at_risk"
	SegmentLost      = "lost"
)

type CustomerRFM struct {
	CustomerID     string          `json:"customer_id"`
	Name           string          `json:"name"`
	OrderCount     int             `json:"order_count"`
	TotalSpend     decimal.Decimal `json:"total_spend"`
	FirstOrderAt   *time.Time      `json:"first_order_at,omitempty"`
	LastOrderAt    *time.Time      `json:"last_order_at,omitempty"`
	RecencyScore   int             `json:"recency_score"`
	FrequencyScore int             `json:"frequency_score"`
	MonetaryScore  int             `json:"monetary_score"`
	Segment        string          `json:"segment"`
	ChurnRisk      int             `json:"churn_risk"`
	NextPurchaseAt *time.Time      `json:"next_purchase_at,omitempty"`
}

type SegmentCount struct {
	Segment   string `json:"segment"`
	Customers int    `json:"customers"`
}

type SegmentationReport struct {
	CustomerCount int             `json:"customer_count"`
	Customers     []CustomerRFM   `json:"customers"`
	Distribution  []SegmentCount  `json:"distribution"`
	Warnings      []ReportWarning `json:"warnings"`
	Error         string          `json:"error,omitempty"`
}

// Stock status labels, in classification priority order.
const (
	StockStatusOut          = "Out of Stock"
	StockStatusOverstocked  = "Overstocked"
	StockStatusLow          = "Low Stock"
	StockStatusBelowMinimum = "Below Minimum"
	StockStatusHealthy      = "Healthy"
)

type ProductValuation struct {
	ProductID       string          `json:"product_id"`
	Name            string          `json:"name"`
	SKU             string          `json:"sku"`
	Category        string          `json:"category"`
	Stock           int             `json:"stock"`
	Price           decimal.Decimal `json:"price"`
	CostPrice       decimal.Decimal `json:"cost_price"`
	CostValue       decimal.Decimal `json:"cost_value"`
	RetailValue     decimal.Decimal `json:"retail_value"`
	AvgMonthlySales float64         `json:"avg_monthly_sales"`
	MonthsOfStock   float64         `json:"months_of_stock"`
	StockTurnover   float64         `json:"stock_turnover"`
	Status          string          `json:"status"`
	Tier            string          `json:"tier"`
}

type StatusCount struct {
	Status   string `json:"status"`
	Products int    `json:"products"`
}

type TierSummary struct {
	Tier        string          `json:"tier"`
	Products    int             `json:"products"`
	RetailValue decimal.Decimal `json:"retail_value"`
	Percentage  float64         `json:"percentage"`
}

type InventoryReport struct {
	ProductCount     int                `json:"product_count"`
	TotalCostValue   decimal.Decimal    `json:"total_cost_value"`
	TotalRetailValue decimal.Decimal    `json:"total_retail_value"`
	Products         []ProductValuation `json:"products"`
	LowStock         []ProductValuation `json:"low_stock"`
	StatusCounts     []StatusCount      `json:"status_counts"`
	Tiers            []TierSummary      `json:"tiers"`
	Warnings         []ReportWarning    `json:"warnings"`
	Error            string             `json:"error,omitempty"`
}

type TrendBucket struct {
	Period        string          `json:"period"`
	Orders        int             `json:"orders"`
	NetRevenue    decimal.Decimal `json:"net_revenue"`
	AvgOrderValue decimal.Decimal `json:"avg_order_value"`
	GrowthPct     float64         `json:"growth_pct"`
}

type TrendReport struct {
	Period    string          `json:"period"`
	Weeks     int             `json:"weeks"`
	StartDate string          `json:"start_date"`
	EndDate   string          `json:"end_date"`
	Buckets   []TrendBucket   `json:"buckets"`
	Warnings  []ReportWarning `json:"warnings"`
	Error     string          `json:"error,omitempty"`
}

type TopProductsReport struct {
	StartDate  string          `json:"start_date"`
	EndDate    string          `json:"end_date"`
	Limit      int             `json:"limit"`
	Products   []ProductSales  `json:"products"`
	Categories []ProductSales  `json:"categories"`
	Warnings   []ReportWarning `json:"warnings"`
	Error      string          `json:"error,omitempty"`
}
