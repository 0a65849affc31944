// Package pricing turns a cart plus adjustments into a Settlement.
//
// The engine is a pure function of its Input and Policy: it performs no I/O
// and keeps no state, so it is safe to share between goroutines.
//
// Order of operations:
//  1. subtotal = Σ line.price × qty, extras = Σ extra.price × qty
//  2. vat      = round2((subtotal + extras) × vat% / 100)
//  3. discount = percent of the discount base, or a flat amount
//  4. total    = subtotal + extras + vat + delivery − discount + rounding
//  5. received = Σ payment splits, or the scalar amount
//  6. payable  = max(0, total − received), change = max(0, received − total)
//
// Money inputs and percentages carry at most 2 decimal places, so every sum
// is exact; only VAT and percent discounts are rounded (half-up, 2 dp).
package pricing

import (
	"fmt"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"

	"github.com/shopspring/decimal"
)

// DiscountBase selects what a percent discount is taken from.
type DiscountBase string

const (
	// BaseNet is subtotal + extras, before VAT.
	BaseNet DiscountBase = "net"
	// BaseGross is subtotal + extras + VAT.
	BaseGross DiscountBase = "gross"
)

// FlatDiscountPolicy decides what happens when a flat discount exceeds the base.
type FlatDiscountPolicy string

const (
	FlatClamp  FlatDiscountPolicy = "clamp"
	FlatReject FlatDiscountPolicy = "reject"
)

type Policy struct {
	DiscountBase  DiscountBase
	FlatDiscount  FlatDiscountPolicy
	RoundingLimit decimal.Decimal // max |rounding| accepted
}

func DefaultPolicy() Policy {
	return Policy{
		DiscountBase:  BaseNet,
		FlatDiscount:  FlatClamp,
		RoundingLimit: decimal.NewFromInt(5),
	}
}

// Engine prices orders under a fixed Policy.
type Engine struct {
	policy Policy
}

func New(p Policy) *Engine {
	def := DefaultPolicy()
	if p.DiscountBase == "" {
		p.DiscountBase = def.DiscountBase
	}
	if p.FlatDiscount == "" {
		p.FlatDiscount = def.FlatDiscount
	}
	if !p.RoundingLimit.IsPositive() {
		p.RoundingLimit = def.RoundingLimit
	}
	return &Engine{policy: p}
}

// Price prices in with the default policy.
func Price(in Input) (Settlement, error) {
	return New(DefaultPolicy()).Price(in)
}

var hundred = decimal.NewFromInt(100)

func round2(d decimal.Decimal) decimal.Decimal { return d.Round(2) }

func (e *Engine) Price(in Input) (Settlement, error) {
	if err := e.validate(&in); err != nil {
		return Settlement{}, err
	}

	subtotal := sumLines(in.Lines)
	extras := sumLines(in.Extras)
	base := subtotal.Add(extras)

	vat := round2(base.Mul(in.VATPercent).Div(hundred))

	discountBase := base
	if e.policy.DiscountBase == BaseGross {
		discountBase = base.Add(vat)
	}

	discount := decimal.Zero
	var kind DiscountKind
	if in.Discount != nil {
		kind = in.Discount.Kind
		switch in.Discount.Kind {
		case DiscountPercent:
			discount = round2(discountBase.Mul(in.Discount.Amount).Div(hundred))
		case DiscountFlat:
			discount = round2(in.Discount.Amount)
			if discount.GreaterThan(discountBase) {
				if e.policy.FlatDiscount == FlatReject {
					return Settlement{}, fmt.Errorf("%w: flat discount %s exceeds base %s",
						model.ErrInvalidPricing, discount.StringFixed(2), discountBase.StringFixed(2))
				}
				discount = round2(discountBase)
			}
		}
	}

	total := base.Add(vat).Add(in.Delivery).Sub(discount).Add(in.Rounding)
	if total.IsNegative() {
		return Settlement{}, fmt.Errorf("%w: total %s is negative", model.ErrInvalidPricing, total.StringFixed(2))
	}
	total = round2(total)

	received := decimal.Zero
	if len(in.Payments) > 0 {
		for _, p := range in.Payments {
			received = received.Add(p.Amount)
		}
	} else if in.Received != nil {
		received = *in.Received
	}
	received = round2(received)

	payable := decimal.Max(decimal.Zero, total.Sub(received))
	change := decimal.Max(decimal.Zero, received.Sub(total))

	return Settlement{
		Subtotal:       subtotal,
		ExtrasTotal:    extras,
		VATPercent:     in.VATPercent,
		VATAmount:      vat,
		DiscountKind:   kind,
		DiscountAmount: discount,
		Delivery:       in.Delivery,
		Rounding:       in.Rounding,
		Total:          total,
		Received:       received,
		Payable:        payable,
		Change:         change,
		Due:            payable,
	}, nil
}

func sumLines(lines []Line) decimal.Decimal {
	sum := decimal.Zero
	for _, l := range lines {
		sum = sum.Add(l.Price.Mul(decimal.NewFromInt(int64(l.Qty))))
	}
	return sum
}

func (e *Engine) validate(in *Input) error {
	if in.Kind == nil {
		return fmt.Errorf("%w: order kind is required", model.ErrValidation)
	}
	if len(in.Lines) == 0 {
		return fmt.Errorf("%w: at least one item is required", model.ErrValidation)
	}
	for i, l := range in.Lines {
		if err := checkLine("item", i, l); err != nil {
			return err
		}
	}
	for i, l := range in.Extras {
		if err := checkLine("extra item", i, l); err != nil {
			return err
		}
	}
	if in.VATPercent.IsNegative() || in.VATPercent.GreaterThan(hundred) {
		return fmt.Errorf("%w: vat percent must be between 0 and 100", model.ErrValidation)
	}
	if !cents(in.VATPercent) {
		return fmt.Errorf("%w: vat percent has more than 2 decimal places", model.ErrValidation)
	}
	if d := in.Discount; d != nil {
		if d.Amount.IsNegative() {
			return fmt.Errorf("%w: discount amount must not be negative", model.ErrValidation)
		}
		if !cents(d.Amount) {
			return fmt.Errorf("%w: discount amount has more than 2 decimal places", model.ErrValidation)
		}
		switch d.Kind {
		case DiscountPercent:
			if d.Amount.GreaterThan(hundred) {
				return fmt.Errorf("%w: percent discount must be between 0 and 100", model.ErrValidation)
			}
		case DiscountFlat:
		default:
			return fmt.Errorf("%w: unknown discount type %q", model.ErrValidation, d.Kind)
		}
	}
	if in.Delivery.IsNegative() {
		return fmt.Errorf("%w: delivery charge must not be negative", model.ErrValidation)
	}
	if !cents(in.Delivery) {
		return fmt.Errorf("%w: delivery charge has more than 2 decimal places", model.ErrValidation)
	}
	if in.Rounding.Abs().GreaterThan(e.policy.RoundingLimit) {
		return fmt.Errorf("%w: rounding must be within ±%s", model.ErrValidation, e.policy.RoundingLimit.StringFixed(2))
	}
	if !cents(in.Rounding) {
		return fmt.Errorf("%w: rounding has more than 2 decimal places", model.ErrValidation)
	}
	if len(in.Payments) > 0 && in.Received != nil {
		return fmt.Errorf("%w: payment splits and a received amount are mutually exclusive", model.ErrValidation)
	}
	for i, p := range in.Payments {
		if !p.Method.Valid() {
			return fmt.Errorf("%w: payment %d has unknown method %q", model.ErrValidation, i, p.Method)
		}
		if p.Amount.IsNegative() {
			return fmt.Errorf("%w: payment %d amount must not be negative", model.ErrValidation, i)
		}
		if !cents(p.Amount) {
			return fmt.Errorf("%w: payment %d amount has more than 2 decimal places", model.ErrValidation, i)
		}
	}
	if r := in.Received; r != nil {
		if r.IsNegative() {
			return fmt.Errorf("%w: received amount must not be negative", model.ErrValidation)
		}
		if !cents(*r) {
			return fmt.Errorf("%w: received amount has more than 2 decimal places", model.ErrValidation)
		}
	}
	return in.Kind.check(in)
}

func checkLine(what string, i int, l Line) error {
	if l.Price.IsNegative() {
		return fmt.Errorf("%w: %s %d price must not be negative", model.ErrValidation, what, i)
	}
	if !cents(l.Price) {
		return fmt.Errorf("%w: %s %d price has more than 2 decimal places", model.ErrValidation, what, i)
	}
	if l.Qty < 1 {
		return fmt.Errorf("%w: %s %d quantity must be at least 1", model.ErrValidation, what, i)
	}
	return nil
}

// cents reports whether d fits the 2-decimal money columns. Trailing zeros
// such as "1.500" are fine.
func cents(d decimal.Decimal) bool { return d.Equal(d.Round(2)) }
