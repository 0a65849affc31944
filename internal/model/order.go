package model

import (
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/calendar"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Order is a settled sale. Monetary columns are the Settlement computed at
// creation time and are never recomputed.
// SalesType: "restaurant" | "online" | "membership"
// OrderType: "DineIn" | "TakeAway" | "Delivery" (restaurant orders only)
// Status:    "paid" | "unpaid"
type Order struct {
	ID        uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	BranchID  string       `gorm:"type:varchar(64);not null;index"`
	InvoiceNo string       `gorm:"type:varchar(32);not null;uniqueIndex"`
	OrderNo   string       `gorm:"type:varchar(32);not null;uniqueIndex"`
	OrderDate calendar.Day `gorm:"type:date;not null"`

	CustomerID    *string `gorm:"type:varchar(64);index"`
	CustomerName  string  `gorm:"type:varchar(120)"`
	CustomerPhone string  `gorm:"type:varchar(32)"`
	SalesType     string  `gorm:"type:varchar(20);not null;index"`
	OrderType     string  `gorm:"type:varchar(20)"`
	AggregatorID  *string `gorm:"type:varchar(64);index"`
	PaymentMode   string  `gorm:"type:varchar(20)"`

	SubTotal       decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ExtrasTotal    decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	VATPercent     decimal.Decimal `gorm:"column:vat_percent;type:decimal(5,2);not null"`
	VATAmount      decimal.Decimal `gorm:"column:vat_amount;type:decimal(12,2);not null"`
	DiscountType   *string         `gorm:"type:varchar(10)"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ShippingCharge decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Rounding       decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Total          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	ReceiveAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	PayableAmount  decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	ChangeAmount   decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	DueAmount      decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	Status         string          `gorm:"type:varchar(10);not null"`

	// Membership plan, inclusive calendar days. Zero for other sales types.
	StartDate calendar.Day `gorm:"type:date"`
	EndDate   calendar.Day `gorm:"type:date"`
	OnHold    bool         `gorm:"not null;default:false"`

	Canceled     bool `gorm:"not null;default:false"`
	CancelReason *string
	CanceledAt   *time.Time

	// Set when the order's trading period is closed.
	DayClosePeriodID *uuid.UUID `gorm:"type:uuid;index"`

	Note      string
	CreatedAt time.Time `gorm:"index"`
	UpdatedAt time.Time
	DeletedAt gorm.DeletedAt `gorm:"index"`

	Items    []OrderItem      `gorm:"foreignKey:OrderID"`
	Extras   []OrderExtraItem `gorm:"foreignKey:OrderID"`
	Payments []OrderPayment   `gorm:"foreignKey:OrderID"`
	Holds    []OrderHoldRange `gorm:"foreignKey:OrderID"`
}

func (o *Order) IsMembership() bool { return o.SalesType == "membership" }

type OrderItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID string          `gorm:"type:varchar(64);not null"`
	Title     string          `gorm:"type:varchar(200)"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Qty       int             `gorm:"not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

type OrderExtraItem struct {
	ID        uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID   uuid.UUID       `gorm:"type:uuid;not null;index"`
	ProductID string          `gorm:"type:varchar(64);not null"`
	Title     string          `gorm:"type:varchar(200)"`
	Price     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Qty       int             `gorm:"not null"`
	Total     decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// OrderPayment is one tender of a split payment.
// Method: "Cash" | "Card" | "Gateway"
type OrderPayment struct {
	ID      uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID uuid.UUID       `gorm:"type:uuid;not null;index"`
	Method  string          `gorm:"type:varchar(20);not null"`
	Amount  decimal.Decimal `gorm:"type:decimal(12,2);not null"`
}

// OrderHoldRange is one pause of a membership plan. Position keeps the
// ranges in the order they were opened.
type OrderHoldRange struct {
	ID       uuid.UUID    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	OrderID  uuid.UUID    `gorm:"type:uuid;not null;index"`
	Position int          `gorm:"not null"`
	FromDate calendar.Day `gorm:"type:date;not null"`
	ToDate   calendar.Day `gorm:"type:date"`
}

// SequenceCounter backs the Postgres sequence store.
type SequenceCounter struct {
	Key       string `gorm:"primaryKey;type:text"`
	Value     int64  `gorm:"not null"`
	UpdatedAt time.Time
}
