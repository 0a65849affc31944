package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/calendar"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/clock"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/dto"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/membership"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/pricing"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

type OrderService interface {
	Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error)
	Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	List(ctx context.Context, filter dto.OrderFilter) (*dto.OrderListResponse, error)
	Cancel(ctx context.Context, id uuid.UUID, req dto.CancelOrderRequest) (*dto.OrderResponse, error)
	Delete(ctx context.Context, id uuid.UUID) error
	Hold(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
	Unhold(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error)
}

type orderService struct {
	repo       repository.OrderRepository
	settlement *Settlement
	clk        clock.Clock
	loc        *time.Location
}

func NewOrderService(repo repository.OrderRepository, settlement *Settlement, clk clock.Clock, loc *time.Location) OrderService {
	if loc == nil {
		loc = time.UTC
	}
	return &orderService{repo: repo, settlement: settlement, clk: clk, loc: loc}
}

// runTx executes fn inside a GORM transaction when db is available,
// or calls fn(nil) directly when db is nil (unit test mode).
func runTx(ctx context.Context, db *gorm.DB, fn func(tx *gorm.DB) error) error {
	if db == nil {
		return fn(nil)
	}
	return db.WithContext(ctx).Transaction(fn)
}

func (s *orderService) today() calendar.Day { return calendar.In(s.clk.Now(), s.loc) }

// ── Create ────────────────────────────────────────────────────────────────────

func (s *orderService) Create(ctx context.Context, req dto.CreateOrderRequest) (*dto.OrderResponse, error) {
	// Numbers and the order row commit together, so a failed insert
	// gives its numbers back.
	var order *model.Order
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		o, err := s.settlement.Settle(ctx, tx, req)
		if err != nil {
			return err
		}
		if err := s.repo.Create(ctx, tx, o); err != nil {
			log.Error().Err(err).Str("invoice_no", o.InvoiceNo).Msg("order: persist failed")
			return err
		}
		order = o
		return nil
	})
	if err != nil {
		return nil, err
	}
	log.Info().
		Str("invoice_no", order.InvoiceNo).
		Str("order_no", order.OrderNo).
		Str("branch_id", order.BranchID).
		Str("total", order.Total.StringFixed(2)).
		Msg("order settled")
	return s.toResponse(order), nil
}

// ── Get / List ────────────────────────────────────────────────────────────────

func (s *orderService) Get(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	return s.toResponse(order), nil
}

func (s *orderService) List(ctx context.Context, f dto.OrderFilter) (*dto.OrderListResponse, error) {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 50
	}
	q := repository.OrderQuery{
		BranchID:     f.BranchID,
		CustomerID:   f.CustomerID,
		AggregatorID: f.AggregatorID,
		SalesTypes:   f.SalesType,
		OrderTypes:   f.OrderType,
		Status:       f.Status,
		Canceled:     f.Canceled,
		Search:       strings.TrimSpace(f.Search),
		Offset:       (f.Page - 1) * f.Limit,
		Limit:        f.Limit,
	}
	if f.From != "" {
		d, err := calendar.Parse(f.From)
		if err != nil {
			return nil, fmt.Errorf("%w: from: %v", model.ErrValidation, err)
		}
		q.CreatedFrom = d.Time(s.loc)
	}
	if f.To != "" {
		d, err := calendar.Parse(f.To)
		if err != nil {
			return nil, fmt.Errorf("%w: to: %v", model.ErrValidation, err)
		}
		q.CreatedTo = d.AddDays(1).Time(s.loc)
	}
	if !q.CreatedFrom.IsZero() && !q.CreatedTo.IsZero() && !q.CreatedTo.After(q.CreatedFrom) {
		return nil, fmt.Errorf("%w: to is before from", model.ErrValidation)
	}

	orders, total, err := s.repo.List(ctx, q)
	if err != nil {
		return nil, err
	}

	// Canceled orders only count toward the summary when asked for explicitly.
	sumQ := q
	if sumQ.Canceled == nil {
		notCanceled := false
		sumQ.Canceled = &notCanceled
	}
	count, amount, err := s.repo.SumTotals(ctx, nil, sumQ)
	if err != nil {
		return nil, err
	}

	data := make([]dto.OrderResponse, 0, len(orders))
	for i := range orders {
		data = append(data, *s.toResponse(&orders[i]))
	}
	return &dto.OrderListResponse{
		Data:    data,
		Total:   total,
		Page:    f.Page,
		Limit:   f.Limit,
		Summary: dto.OrderSummary{Count: count, TotalAmount: amount},
	}, nil
}

// ── Cancel / Delete ───────────────────────────────────────────────────────────

func (s *orderService) Cancel(ctx context.Context, id uuid.UUID, req dto.CancelOrderRequest) (*dto.OrderResponse, error) {
	reason := strings.TrimSpace(req.Reason)
	if reason == "" {
		return nil, fmt.Errorf("%w: cancel reason is required", model.ErrValidation)
	}
	order, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if order.Canceled {
		return nil, model.ErrOrderCanceled
	}
	now := s.clk.Now()
	ok, err := s.repo.MarkCanceled(ctx, id, reason, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, model.ErrOrderCanceled
	}
	log.Info().Str("invoice_no", order.InvoiceNo).Str("reason", reason).Msg("order canceled")
	return s.Get(ctx, id)
}

func (s *orderService) Delete(ctx context.Context, id uuid.UUID) error {
	if err := s.repo.SoftDelete(ctx, id); err != nil {
		return err
	}
	log.Info().Str("order_id", id.String()).Msg("order deleted")
	return nil
}

// ── Membership hold / unhold ──────────────────────────────────────────────────

func (s *orderService) Hold(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	return s.changeHold(ctx, id, membership.Hold)
}

func (s *orderService) Unhold(ctx context.Context, id uuid.UUID) (*dto.OrderResponse, error) {
	return s.changeHold(ctx, id, membership.Unhold)
}

type holdOp func(holds []membership.HoldRange, today calendar.Day) ([]membership.HoldRange, bool)

func (s *orderService) changeHold(ctx context.Context, id uuid.UUID, op holdOp) (*dto.OrderResponse, error) {
	today := s.today()
	err := runTx(ctx, s.repo.DB(), func(tx *gorm.DB) error {
		order, err := s.repo.LockByID(ctx, tx, id)
		if err != nil {
			return err
		}
		if !order.IsMembership() {
			return fmt.Errorf("%w: order %s is %s", model.ErrNotAMembershipOrder, order.InvoiceNo, order.SalesType)
		}
		if order.Canceled {
			return model.ErrOrderCanceled
		}
		holds, changed := op(holdRanges(order.Holds), today)
		if !changed {
			return nil
		}
		if err := membership.Validate(holds); err != nil {
			return err
		}
		rows := make([]model.OrderHoldRange, len(holds))
		for i, h := range holds {
			rows[i] = model.OrderHoldRange{OrderID: id, Position: i, FromDate: h.From, ToDate: h.To}
		}
		onHold := membership.OnHold(holds)
		if err := s.repo.SaveHolds(ctx, tx, id, rows, onHold); err != nil {
			return err
		}
		log.Info().Str("invoice_no", order.InvoiceNo).Bool("on_hold", onHold).Msg("membership hold changed")
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// ── Mapping ───────────────────────────────────────────────────────────────────

func holdRanges(rows []model.OrderHoldRange) []membership.HoldRange {
	out := make([]membership.HoldRange, len(rows))
	for i, r := range rows {
		out[i] = membership.HoldRange{From: r.FromDate, To: r.ToDate}
	}
	return out
}

func (s *orderService) toResponse(o *model.Order) *dto.OrderResponse {
	resp := &dto.OrderResponse{
		ID:            o.ID.String(),
		BranchID:      o.BranchID,
		InvoiceNo:     o.InvoiceNo,
		OrderNo:       o.OrderNo,
		OrderDate:     o.OrderDate.String(),
		CustomerID:    o.CustomerID,
		CustomerName:  o.CustomerName,
		CustomerPhone: o.CustomerPhone,
		SalesType:     o.SalesType,
		OrderType:     o.OrderType,
		AggregatorID:  o.AggregatorID,
		PaymentMode:   o.PaymentMode,
		Items:         make([]dto.OrderLineResponse, 0, len(o.Items)),
		ExtraItems:    make([]dto.OrderLineResponse, 0, len(o.Extras)),
		Payments:      make([]dto.PaymentSplitResponse, 0, len(o.Payments)),
		Settlement: pricing.Settlement{
			Subtotal:       o.SubTotal,
			ExtrasTotal:    o.ExtrasTotal,
			VATPercent:     o.VATPercent,
			VATAmount:      o.VATAmount,
			DiscountAmount: o.DiscountAmount,
			Delivery:       o.ShippingCharge,
			Rounding:       o.Rounding,
			Total:          o.Total,
			Received:       o.ReceiveAmount,
			Payable:        o.PayableAmount,
			Change:         o.ChangeAmount,
			Due:            o.DueAmount,
		},
		Status:       o.Status,
		OnHold:       o.OnHold,
		Canceled:     o.Canceled,
		CancelReason: o.CancelReason,
		CanceledAt:   o.CanceledAt,
		Note:         o.Note,
		CreatedAt:    o.CreatedAt,
	}
	if o.DiscountType != nil {
		resp.DiscountKind = pricing.DiscountKind(*o.DiscountType)
	}
	for _, it := range o.Items {
		resp.Items = append(resp.Items, dto.OrderLineResponse{
			ProductID: it.ProductID, Title: it.Title, Price: it.Price, Qty: it.Qty, Total: it.Total,
		})
	}
	for _, it := range o.Extras {
		resp.ExtraItems = append(resp.ExtraItems, dto.OrderLineResponse{
			ProductID: it.ProductID, Title: it.Title, Price: it.Price, Qty: it.Qty, Total: it.Total,
		})
	}
	for _, p := range o.Payments {
		resp.Payments = append(resp.Payments, dto.PaymentSplitResponse{Method: p.Method, Amount: p.Amount})
	}
	if o.DayClosePeriodID != nil {
		id := o.DayClosePeriodID.String()
		resp.DayClosePeriodID = &id
	}
	if o.IsMembership() {
		start, end := o.StartDate, o.EndDate
		resp.StartDate, resp.EndDate = &start, &end
		holds := holdRanges(o.Holds)
		resp.HoldRanges = holds
		stats := membership.Compute(membership.Plan{Start: start, End: end, Holds: holds}, s.today())
		resp.MembershipStats = &stats
		resp.OnHold = stats.IsOnHold
	}
	return resp
}
