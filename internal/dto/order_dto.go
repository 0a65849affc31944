package dto

import (
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/calendar"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/membership"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/pricing"

	"github.com/shopspring/decimal"
)

// ─── Filter / List ──────────────────────────────────────────────────────────

// OrderFilter is bound from the query string of GET /v1/orders.
type OrderFilter struct {
	BranchID     string   `form:"branch_id"`
	CustomerID   string   `form:"customer_id"   validate:"omitempty,max=64"`
	AggregatorID string   `form:"aggregator_id" validate:"omitempty,max=64"`
	SalesType    []string `form:"sales_type"    validate:"omitempty,dive,oneof=restaurant online membership"`
	OrderType    []string `form:"order_type"    validate:"omitempty,dive,oneof=DineIn TakeAway Delivery"`
	Status       string   `form:"status"        validate:"omitempty,oneof=paid unpaid"`
	Canceled     *bool    `form:"canceled"`
	From         string   `form:"from"` // YYYY-MM-DD, inclusive
	To           string   `form:"to"`   // YYYY-MM-DD, inclusive
	Search       string   `form:"search"`
	Page         int      `form:"page,default=1"   validate:"min=1"`
	Limit        int      `form:"limit,default=50" validate:"min=1,max=100"`
}

type OrderSummary struct {
	Count       int64           `json:"count"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

type OrderListResponse struct {
	Data    []OrderResponse `json:"data"`
	Total   int64           `json:"total"`
	Page    int             `json:"page"`
	Limit   int             `json:"limit"`
	Summary OrderSummary    `json:"summary"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CartLineRequest struct {
	ProductID string          `json:"product_id" validate:"required"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"      validate:"min=0"`
	Qty       int             `json:"qty"        validate:"required,min=1"`
}

type DiscountRequest struct {
	Type   string          `json:"type"   validate:"required,oneof=flat percent"`
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

type PaymentSplitRequest struct {
	Method string          `json:"method" validate:"required,oneof=Cash Card Gateway"`
	Amount decimal.Decimal `json:"amount" validate:"min=0"`
}

// CreateOrderRequest is the cart submission. Which optional fields apply
// depends on SalesType: OrderType for restaurant, AggregatorID for online,
// StartDate/EndDate for membership. Payments and ReceiveAmount are exclusive.
type CreateOrderRequest struct {
	BranchID      string  `json:"branch_id"      validate:"required,max=64"`
	CustomerID    *string `json:"customer_id"    validate:"omitempty,max=64"`
	CustomerName  string  `json:"customer_name"  validate:"max=120"`
	CustomerPhone string  `json:"customer_phone" validate:"max=32"`
	SalesType     string  `json:"sales_type"     validate:"required,oneof=restaurant online membership"`
	OrderType     string  `json:"order_type"     validate:"omitempty,oneof=DineIn TakeAway Delivery"`
	AggregatorID  *string `json:"aggregator_id"  validate:"omitempty,max=64"`

	StartDate calendar.Day `json:"start_date"`
	EndDate   calendar.Day `json:"end_date"`

	Items      []CartLineRequest `json:"items"       validate:"required,min=1,dive"`
	ExtraItems []CartLineRequest `json:"extra_items" validate:"omitempty,dive"`

	// VATPercent falls back to the configured default when absent.
	VATPercent     *decimal.Decimal      `json:"vat_percent"`
	Discount       *DiscountRequest      `json:"discount"       validate:"omitempty"`
	ShippingCharge decimal.Decimal       `json:"shipping_charge" validate:"min=0"`
	Rounding       decimal.Decimal       `json:"rounding"`
	Payments       []PaymentSplitRequest `json:"payments"       validate:"omitempty,dive"`
	ReceiveAmount  *decimal.Decimal      `json:"receive_amount"`
	PaymentMode    string                `json:"payment_mode"   validate:"omitempty,oneof=Cash Card Gateway"`
	Note           string                `json:"note"`
}

type CancelOrderRequest struct {
	Reason string `json:"reason" validate:"required,min=3,max=500"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type OrderLineResponse struct {
	ProductID string          `json:"product_id"`
	Title     string          `json:"title"`
	Price     decimal.Decimal `json:"price"`
	Qty       int             `json:"qty"`
	Total     decimal.Decimal `json:"total"`
}

type PaymentSplitResponse struct {
	Method string          `json:"method"`
	Amount decimal.Decimal `json:"amount"`
}

type OrderResponse struct {
	ID            string  `json:"id"`
	BranchID      string  `json:"branch_id"`
	InvoiceNo     string  `json:"invoice_no"`
	OrderNo       string  `json:"order_no"`
	OrderDate     string  `json:"order_date"`
	CustomerID    *string `json:"customer_id,omitempty"`
	CustomerName  string  `json:"customer_name,omitempty"`
	CustomerPhone string  `json:"customer_phone,omitempty"`
	SalesType     string  `json:"sales_type"`
	OrderType     string  `json:"order_type,omitempty"`
	AggregatorID  *string `json:"aggregator_id,omitempty"`
	PaymentMode   string  `json:"payment_mode,omitempty"`

	Items      []OrderLineResponse    `json:"items"`
	ExtraItems []OrderLineResponse    `json:"extra_items"`
	Payments   []PaymentSplitResponse `json:"payments"`

	pricing.Settlement
	Status string `json:"status"`

	StartDate       *calendar.Day          `json:"start_date,omitempty"`
	EndDate         *calendar.Day          `json:"end_date,omitempty"`
	OnHold          bool                   `json:"on_hold"`
	HoldRanges      []membership.HoldRange `json:"hold_ranges,omitempty"`
	MembershipStats *membership.Stats      `json:"membership_stats,omitempty"`

	Canceled         bool       `json:"canceled"`
	CancelReason     *string    `json:"cancel_reason,omitempty"`
	CanceledAt       *time.Time `json:"canceled_at,omitempty"`
	DayClosePeriodID *string    `json:"day_close_period_id,omitempty"`
	Note             string     `json:"note,omitempty"`
	CreatedAt        time.Time  `json:"created_at"`
}
