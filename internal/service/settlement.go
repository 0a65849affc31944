package service

import (
	"context"
	"fmt"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/calendar"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/clock"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/dto"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/pricing"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/sequence"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Sequencer mints the next value of each counter key in one all-or-nothing
// step, joining tx when the store can. *sequence.Generator satisfies it.
type Sequencer interface {
	Next(ctx context.Context, tx *gorm.DB, keys ...string) ([]int64, error)
}

// Settlement turns a cart submission into a finalized, numbered order.
// Pricing runs first; identifiers are only minted once pricing succeeded.
type Settlement struct {
	engine     *pricing.Engine
	seq        Sequencer
	clk        clock.Clock
	loc        *time.Location
	defaultVAT decimal.Decimal
}

func NewSettlement(engine *pricing.Engine, seq Sequencer, clk clock.Clock, loc *time.Location, defaultVAT decimal.Decimal) *Settlement {
	if loc == nil {
		loc = time.UTC
	}
	return &Settlement{engine: engine, seq: seq, clk: clk, loc: loc, defaultVAT: defaultVAT}
}

// ── Settle ────────────────────────────────────────────────────────────────────
//   1. build the tagged pricing input for the sales type
//   2. price (pure, may fail without side effects)
//   3. mint INV-<day> and ORD-<day> together, inside tx
//   4. assemble the order for persistence in the same tx

func (s *Settlement) Settle(ctx context.Context, tx *gorm.DB, req dto.CreateOrderRequest) (*model.Order, error) {
	in, err := s.buildInput(req)
	if err != nil {
		return nil, err
	}
	st, err := s.engine.Price(in)
	if err != nil {
		return nil, err
	}

	now := s.clk.Now()
	day := calendar.In(now, s.loc)

	nums, err := s.seq.Next(ctx, tx,
		sequence.Key(sequence.InvoicePrefix, day),
		sequence.Key(sequence.OrderPrefix, day))
	if err != nil {
		return nil, err
	}
	invN, ordN := nums[0], nums[1]

	order := &model.Order{
		BranchID:       req.BranchID,
		InvoiceNo:      sequence.Format(sequence.InvoicePrefix, day, invN),
		OrderNo:        sequence.Format(sequence.OrderPrefix, day, ordN),
		OrderDate:      day,
		CustomerID:     req.CustomerID,
		CustomerName:   req.CustomerName,
		CustomerPhone:  req.CustomerPhone,
		SalesType:      string(in.Kind.SalesType()),
		OrderType:      req.OrderType,
		AggregatorID:   req.AggregatorID,
		PaymentMode:    paymentMode(req),
		SubTotal:       st.Subtotal,
		ExtrasTotal:    st.ExtrasTotal,
		VATPercent:     st.VATPercent,
		VATAmount:      st.VATAmount,
		DiscountAmount: st.DiscountAmount,
		ShippingCharge: st.Delivery,
		Rounding:       st.Rounding,
		Total:          st.Total,
		ReceiveAmount:  st.Received,
		PayableAmount:  st.Payable,
		ChangeAmount:   st.Change,
		DueAmount:      st.Due,
		Status:         st.Status(),
		Note:           req.Note,
		CreatedAt:      now,
	}
	if st.DiscountKind != "" {
		k := string(st.DiscountKind)
		order.DiscountType = &k
	}
	if m, ok := in.Kind.(pricing.Membership); ok {
		order.StartDate = m.Start
		order.EndDate = m.End
	}
	for _, it := range req.Items {
		order.Items = append(order.Items, model.OrderItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Qty:       it.Qty,
			Total:     it.Price.Mul(decimal.NewFromInt(int64(it.Qty))),
		})
	}
	for _, it := range req.ExtraItems {
		order.Extras = append(order.Extras, model.OrderExtraItem{
			ProductID: it.ProductID,
			Title:     it.Title,
			Price:     it.Price,
			Qty:       it.Qty,
			Total:     it.Price.Mul(decimal.NewFromInt(int64(it.Qty))),
		})
	}
	for _, p := range req.Payments {
		order.Payments = append(order.Payments, model.OrderPayment{Method: p.Method, Amount: p.Amount})
	}
	return order, nil
}

// buildInput maps the request onto exactly one order-kind variant and rejects
// fields that do not belong to it.
func (s *Settlement) buildInput(req dto.CreateOrderRequest) (pricing.Input, error) {
	in := pricing.Input{
		VATPercent: s.defaultVAT,
		Delivery:   req.ShippingCharge,
		Rounding:   req.Rounding,
		Received:   req.ReceiveAmount,
	}
	if req.VATPercent != nil {
		in.VATPercent = *req.VATPercent
	}

	hasDates := !req.StartDate.IsZero() || !req.EndDate.IsZero()
	switch pricing.SalesType(req.SalesType) {
	case pricing.SalesRestaurant:
		if req.OrderType == "" {
			return in, fmt.Errorf("%w: order_type is required for restaurant orders", model.ErrValidation)
		}
		if req.AggregatorID != nil || hasDates {
			return in, fmt.Errorf("%w: aggregator and membership dates do not apply to restaurant orders", model.ErrValidation)
		}
		in.Kind = pricing.Restaurant{Service: pricing.ServiceType(req.OrderType)}
	case pricing.SalesOnline:
		if req.OrderType != "" || hasDates {
			return in, fmt.Errorf("%w: order_type and membership dates do not apply to online orders", model.ErrValidation)
		}
		k := pricing.Online{}
		if req.AggregatorID != nil {
			k.AggregatorID = *req.AggregatorID
		}
		in.Kind = k
	case pricing.SalesMembership:
		if req.OrderType != "" || req.AggregatorID != nil {
			return in, fmt.Errorf("%w: order_type and aggregator do not apply to membership orders", model.ErrValidation)
		}
		in.Kind = pricing.Membership{Start: req.StartDate, End: req.EndDate}
	default:
		return in, fmt.Errorf("%w: unknown sales type %q", model.ErrValidation, req.SalesType)
	}

	for _, it := range req.Items {
		in.Lines = append(in.Lines, pricing.Line{Price: it.Price, Qty: it.Qty})
	}
	for _, it := range req.ExtraItems {
		in.Extras = append(in.Extras, pricing.Line{Price: it.Price, Qty: it.Qty})
	}
	if req.Discount != nil {
		in.Discount = &pricing.Discount{Kind: pricing.DiscountKind(req.Discount.Type), Amount: req.Discount.Amount}
	}
	for _, p := range req.Payments {
		in.Payments = append(in.Payments, pricing.Payment{Method: pricing.Method(p.Method), Amount: p.Amount})
	}
	return in, nil
}

// paymentMode is the single tender of the order, "Split" for mixed splits,
// Cash when nothing says otherwise.
func paymentMode(req dto.CreateOrderRequest) string {
	if len(req.Payments) == 0 {
		if req.PaymentMode != "" {
			return req.PaymentMode
		}
		return string(pricing.Cash)
	}
	mode := req.Payments[0].Method
	for _, p := range req.Payments[1:] {
		if p.Method != mode {
			return "Split"
		}
	}
	return mode
}
