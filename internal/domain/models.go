package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// Order status taxonomy. Legal transitions (enforced by the external
// write path, consumed here as-is):
//
//	pending    -> confirmed | cancelled
//	confirmed  -> processing | cancelled
//	processing -> completed | cancelled
//	completed  -> refunded
//	cancelled, refunded are terminal.
const (
	OrderStatusPending    = "pending"
	OrderStatusConfirmed  = "confirmed"
	OrderStatusProcessing = "processing"
	OrderStatusCompleted  = "completed"
	OrderStatusCancelled  = "cancelled"
	OrderStatusRefunded   = "refunded"
)

const (
	PaymentCash       = "cash"
	PaymentCard       = "card"
	PaymentUPI        = "upi"
	PaymentWallet     = "wallet"
	PaymentNetbanking = "netbanking"
)

const (
	ChannelOnline  = "online"
	ChannelOffline = "offline"
)

// IsOrderStatus reports whether status is one of the six legal values.
func IsOrderStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing,
		OrderStatusCompleted, OrderStatusCancelled, OrderStatusRefunded:
		return true
	default:
		return false
	}
}

// IsRevenueStatus reports whether status belongs to the completed family,
// the subset counted as revenue-bearing.
func IsRevenueStatus(status string) bool {
	switch status {
	case OrderStatusPending, OrderStatusConfirmed, OrderStatusProcessing, OrderStatusCompleted:
		return true
	default:
		return false
	}
}

func IsPaymentMethod(method string) bool {
	switch method {
	case PaymentCash, PaymentCard, PaymentUPI, PaymentWallet, PaymentNetbanking:
		return true
	default:
		return false
	}
}

type Product struct {
	ID            string           `json:"id"`
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	Stock         int              `json:"stock"`
	MinStockLevel int              `json:"min_stock_level"`
	ReorderLevel  int              `json:"reorder_level"`
	Active        bool             `json:"active"`
	CreatedAt     time.Time        `json:"created_at"`
	UpdatedAt     time.Time        `json:"updated_at"`
}

type ProductCreateRequest struct {
	SKU           string           `json:"sku"`
	Name          string           `json:"name"`
	Category      string           `json:"category"`
	Price         decimal.Decimal  `json:"price"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	Stock         int              `json:"stock"`
	MinStockLevel int              `json:"min_stock_level"`
	ReorderLevel  int              `json:"reorder_level"`
}

type ProductUpdateRequest struct {
	Name          *string          `json:"name,omitempty"`
	Category      *string          `json:"category,omitempty"`
	Price         *decimal.Decimal `json:"price,omitempty"`
	CostPrice     *decimal.Decimal `json:"cost_price,omitempty"`
	Stock         *int             `json:"stock,omitempty"`
	MinStockLevel *int             `json:"min_stock_level,omitempty"`
	ReorderLevel  *int             `json:"reorder_level,omitempty"`
	Active        *bool            `json:"active,omitempty"`
}

type Customer struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Email     string    `json:"email,omitempty"`
	Phone     string    `json:"phone,omitempty"`
	Tags      []string  `json:"tags,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type CustomerCreateRequest struct {
	Name  string   `json:"name"`
	Email string   `json:"email,omitempty"`
	Phone string   `json:"phone,omitempty"`
	Tags  []string `json:"tags,omitempty"`
}

// OrderItem captures the unit price at order time. The snapshot is
// load-bearing: historical reports reflect the price paid, not the
// product's current catalog price. ProductID may be nil for items whose
// product was later deleted; such items carry the synthesized
// name+price+quantity triple instead.
type OrderItem struct {
	OrderID     string          `json:"order_id"`
	ProductID   *string         `json:"product_id,omitempty"`
	ProductName string          `json:"product_name"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// Order is the raw transactional record the report engine consumes.
// CustomerID presence is the sole channel signal: set means online,
// absent means offline (walk-in).
type Order struct {
	ID            string          `json:"id"`
	CustomerID    *string         `json:"customer_id,omitempty"`
	Total         decimal.Decimal `json:"total"`
	Status        string          `json:"status"`
	PaymentMethod string          `json:"payment_method"`
	PaymentRef    string          `json:"payment_ref,omitempty"`
	CashierID     string          `json:"cashier_id,omitempty"`
	CreatedAt     time.Time       `json:"created_at"`
	Items         []OrderItem     `json:"items"`
}

func (o Order) Channel() string {
	if o.CustomerID != nil && *o.CustomerID != "" {
		return ChannelOnline
	}
	return ChannelOffline
}

type OrderItemRequest struct {
	ProductID   *string         `json:"product_id,omitempty"`
	ProductName string          `json:"product_name,omitempty"`
	UnitPrice   decimal.Decimal `json:"unit_price"`
	Quantity    int             `json:"quantity"`
}

// OrderRecordRequest records an already-placed order. This is bookkeeping
// only: stock movement and payment capture happen in the external write
// path.
type OrderRecordRequest struct {
	CustomerID    *string            `json:"customer_id,omitempty"`
	Total         decimal.Decimal    `json:"total"`
	Status        string             `json:"status"`
	PaymentMethod string             `json:"payment_method,omitempty"`
	PaymentRef    string             `json:"payment_ref,omitempty"`
	CashierID     string             `json:"cashier_id,omitempty"`
	CreatedAt     *time.Time         `json:"created_at,omitempty"`
	Items         []OrderItemRequest `json:"items"`
}
