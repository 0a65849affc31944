package pricing

import (
	"fmt"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/calendar"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"

	"github.com/shopspring/decimal"
)

// SalesType is the price list an order was rung up on.
type SalesType string

const (
	SalesRestaurant SalesType = "restaurant"
	SalesOnline     SalesType = "online"
	SalesMembership SalesType = "membership"
)

// ServiceType is how a restaurant order leaves the counter.
type ServiceType string

const (
	DineIn   ServiceType = "DineIn"
	TakeAway ServiceType = "TakeAway"
	Delivery ServiceType = "Delivery"
)

// Method is a payment split tender.
type Method string

const (
	Cash    Method = "Cash"
	Card    Method = "Card"
	Gateway Method = "Gateway"
)

func (m Method) Valid() bool {
	switch m {
	case Cash, Card, Gateway:
		return true
	}
	return false
}

// DiscountKind selects between a flat amount and a percentage.
type DiscountKind string

const (
	DiscountFlat    DiscountKind = "flat"
	DiscountPercent DiscountKind = "percent"
)

// Line is a priced cart entry; extras use the same shape.
type Line struct {
	Price decimal.Decimal
	Qty   int
}

type Discount struct {
	Kind   DiscountKind
	Amount decimal.Decimal
}

type Payment struct {
	Method Method
	Amount decimal.Decimal
}

// Kind is the order-type variant an Input is priced as. Each variant carries
// only the fields that make sense for it; the set is closed.
type Kind interface {
	SalesType() SalesType
	check(in *Input) error
}

// Restaurant is a counter order served in, taken away or delivered.
type Restaurant struct {
	Service ServiceType
}

func (Restaurant) SalesType() SalesType { return SalesRestaurant }

func (k Restaurant) check(in *Input) error {
	switch k.Service {
	case DineIn, TakeAway:
		if in.Delivery.IsPositive() {
			return fmt.Errorf("%w: delivery charge is only allowed on %s orders", model.ErrValidation, Delivery)
		}
		return nil
	case Delivery:
		return nil
	default:
		return fmt.Errorf("%w: unknown service type %q", model.ErrValidation, k.Service)
	}
}

// Online is an order that arrived through an aggregator or the web shop.
type Online struct {
	AggregatorID string
}

func (Online) SalesType() SalesType { return SalesOnline }

func (Online) check(*Input) error { return nil }

// Membership is a meal-plan sale covering [Start, End].
type Membership struct {
	Start calendar.Day
	End   calendar.Day
}

func (Membership) SalesType() SalesType { return SalesMembership }

func (k Membership) check(*Input) error {
	if k.Start.IsZero() || k.End.IsZero() {
		return fmt.Errorf("%w: membership start and end dates are required", model.ErrValidation)
	}
	if k.End.Before(k.Start) {
		return fmt.Errorf("%w: membership end %s is before start %s", model.ErrValidation, k.End, k.Start)
	}
	return nil
}

// Input is everything the engine needs to settle one order.
// Payments and Received are mutually exclusive.
type Input struct {
	Kind       Kind
	Lines      []Line
	Extras     []Line
	VATPercent decimal.Decimal
	Discount   *Discount
	Delivery   decimal.Decimal
	Rounding   decimal.Decimal
	Payments   []Payment
	Received   *decimal.Decimal
}

// Settlement is the computed monetary breakdown of one order.
type Settlement struct {
	Subtotal       decimal.Decimal `json:"sub_total"`
	ExtrasTotal    decimal.Decimal `json:"extras_total"`
	VATPercent     decimal.Decimal `json:"vat_percent"`
	VATAmount      decimal.Decimal `json:"vat_amount"`
	DiscountKind   DiscountKind    `json:"discount_type,omitempty"`
	DiscountAmount decimal.Decimal `json:"discount_amount"`
	Delivery       decimal.Decimal `json:"shipping_charge"`
	Rounding       decimal.Decimal `json:"rounding"`
	Total          decimal.Decimal `json:"total"`
	Received       decimal.Decimal `json:"receive_amount"`
	Payable        decimal.Decimal `json:"payable_amount"`
	Change         decimal.Decimal `json:"change_amount"`
	Due            decimal.Decimal `json:"due_amount"`
}

// Status is "paid" once the received amount covers the total.
func (s Settlement) Status() string {
	if s.Received.GreaterThanOrEqual(s.Total) {
		return "paid"
	}
	return "unpaid"
}
