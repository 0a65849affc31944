package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/calendar"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/clock"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/dto"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/pricing"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// Denominations are the face values accepted in a cash count, largest first.
var Denominations = []int{1000, 500, 200, 100, 50, 20, 10, 5, 2, 1}

const (
	ScopeDay   = "day"
	ScopeShift = "shift"
)

// PeriodOrders is the read side of the order store the aggregator needs,
// plus stamping orders with the period that closed them.
type PeriodOrders interface {
	ListInPeriod(ctx context.Context, tx *gorm.DB, branchID string, start, end time.Time) ([]model.Order, error)
	AssignPeriod(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID, periodID uuid.UUID) (int64, error)
}

type DayCloseService interface {
	StartPeriod(ctx context.Context, req dto.StartPeriodRequest) (*dto.PeriodResponse, error)
	CurrentOpenPeriod(ctx context.Context, branchID string) (*dto.PeriodResponse, error)
	ClosePeriod(ctx context.Context, req dto.ClosePeriodRequest) (*dto.ClosePeriodResponse, error)
}

type dayCloseService struct {
	periods repository.DayCloseRepository
	orders  PeriodOrders
	clk     clock.Clock
	loc     *time.Location
}

func NewDayCloseService(periods repository.DayCloseRepository, orders PeriodOrders, clk clock.Clock, loc *time.Location) DayCloseService {
	if loc == nil {
		loc = time.UTC
	}
	return &dayCloseService{periods: periods, orders: orders, clk: clk, loc: loc}
}

// ── StartPeriod ───────────────────────────────────────────────────────────────

func (s *dayCloseService) StartPeriod(ctx context.Context, req dto.StartPeriodRequest) (*dto.PeriodResponse, error) {
	if req.BranchID == "" {
		return nil, fmt.Errorf("%w: branch_id is required", model.ErrValidation)
	}
	if _, err := s.periods.FindOpen(ctx, req.BranchID); err == nil {
		return nil, model.ErrPeriodAlreadyOpen
	} else if !errors.Is(err, model.ErrNoOpenPeriod) {
		return nil, err
	}

	p := &model.DayClosePeriod{
		BranchID:  req.BranchID,
		StartedAt: s.clk.Now().Truncate(time.Microsecond),
	}
	if err := s.periods.CreatePeriod(ctx, p); err != nil {
		return nil, err
	}
	log.Info().Str("branch_id", p.BranchID).Str("period_id", p.ID.String()).Msg("day-close: period opened")
	return toPeriodResponse(p), nil
}

// ── CurrentOpenPeriod ─────────────────────────────────────────────────────────

func (s *dayCloseService) CurrentOpenPeriod(ctx context.Context, branchID string) (*dto.PeriodResponse, error) {
	p, err := s.periods.FindOpen(ctx, branchID)
	if err != nil {
		return nil, err
	}
	return toPeriodResponse(p), nil
}

// ── ClosePeriod ───────────────────────────────────────────────────────────────
// One transaction: lock the open row, read its orders, reconcile the count,
// stamp the orders and close the row with its summary snapshot. The row lock
// plus the closed_at IS NULL guard let exactly one concurrent close win.

func (s *dayCloseService) ClosePeriod(ctx context.Context, req dto.ClosePeriodRequest) (*dto.ClosePeriodResponse, error) {
	if req.BranchID == "" {
		return nil, fmt.Errorf("%w: branch_id is required", model.ErrValidation)
	}
	if err := validateDenominations(req.Denominations); err != nil {
		return nil, err
	}
	scope := req.Scope
	if scope == "" {
		scope = ScopeDay
	}
	if scope != ScopeDay && scope != ScopeShift {
		return nil, fmt.Errorf("%w: unknown scope %q", model.ErrValidation, scope)
	}
	end := s.clk.Now()
	if req.End != nil {
		end = *req.End
	}
	end = end.UTC().Truncate(time.Microsecond)

	var resp *dto.ClosePeriodResponse
	err := runTx(ctx, s.periods.DB(), func(tx *gorm.DB) error {
		p, err := s.periods.LockOpen(ctx, tx, req.BranchID)
		if errors.Is(err, model.ErrNoOpenPeriod) {
			resp, err = s.alreadyClosed(ctx, tx, req)
			return err
		}
		if err != nil {
			return err
		}
		if req.PeriodID != nil && *req.PeriodID != p.ID.String() {
			return fmt.Errorf("%w: period %s is not the open period of branch %s", model.ErrValidation, *req.PeriodID, req.BranchID)
		}
		if !end.After(p.StartedAt) {
			return fmt.Errorf("%w: end %s must be after period start %s", model.ErrValidation,
				end.Format(time.RFC3339), p.StartedAt.UTC().Format(time.RFC3339))
		}

		// The summary and the stamp both work off this one read, so an order
		// committed meanwhile is neither counted nor stamped.
		orders, err := s.orders.ListInPeriod(ctx, tx, p.BranchID, p.StartedAt, end)
		if err != nil {
			return err
		}

		summary := s.buildSummary(p, end, scope, orders, req.Denominations)
		summary.Note = req.Note

		ids := make([]uuid.UUID, len(orders))
		for i := range orders {
			ids[i] = orders[i].ID
		}
		if _, err := s.orders.AssignPeriod(ctx, tx, ids, p.ID); err != nil {
			return err
		}
		blob, err := json.Marshal(summary)
		if err != nil {
			return err
		}
		won, err := s.periods.MarkClosed(ctx, tx, p.ID, end, blob, req.Note)
		if err != nil {
			return err
		}
		if !won {
			return model.ErrNoOpenPeriod
		}

		log.Info().
			Str("branch_id", p.BranchID).
			Str("period_id", p.ID.String()).
			Int64("orders", summary.OrderCount).
			Str("computed_total", summary.ComputedTotal.StringFixed(2)).
			Str("variance", summary.Variance.StringFixed(2)).
			Str("classification", summary.Classification).
			Msg("day-close: period closed")

		resp = &dto.ClosePeriodResponse{Message: "Day closed successfully", Summary: summary}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return resp, nil
}

// alreadyClosed resolves a close request that found no open period. It is a
// retry of the branch's latest close when the request names that period, asks
// for the same end, or names neither. Anything else is ErrNoOpenPeriod.
func (s *dayCloseService) alreadyClosed(ctx context.Context, tx *gorm.DB, req dto.ClosePeriodRequest) (*dto.ClosePeriodResponse, error) {
	last, err := s.periods.FindLatestClosed(ctx, tx, req.BranchID)
	if errors.Is(err, model.ErrPeriodNotFound) {
		return nil, model.ErrNoOpenPeriod
	}
	if err != nil {
		return nil, err
	}

	switch {
	case req.PeriodID != nil:
		if *req.PeriodID != last.ID.String() {
			return nil, model.ErrNoOpenPeriod
		}
	case req.End != nil:
		if last.IsOpen() || !last.ClosedAt.Equal(req.End.UTC().Truncate(time.Microsecond)) {
			return nil, model.ErrNoOpenPeriod
		}
	}

	var summary dto.DayCloseSummary
	if err := json.Unmarshal(last.Summary, &summary); err != nil {
		return nil, fmt.Errorf("decode summary of period %s: %w", last.ID, err)
	}
	log.Info().Str("branch_id", req.BranchID).Str("period_id", last.ID.String()).Msg("day-close: already closed")
	return &dto.ClosePeriodResponse{AlreadyClosed: true, Message: "Day is already closed", Summary: summary}, nil
}

// ── Summary ───────────────────────────────────────────────────────────────────

func validateDenominations(counts map[int]int) error {
	for face, n := range counts {
		if !isDenomination(face) {
			return fmt.Errorf("%w: unknown denomination %d", model.ErrValidation, face)
		}
		if n < 0 {
			return fmt.Errorf("%w: denomination %d has negative count", model.ErrValidation, face)
		}
	}
	return nil
}

func isDenomination(face int) bool {
	for _, d := range Denominations {
		if d == face {
			return true
		}
	}
	return false
}

// CountCash sums face × count over the standard denominations. A nil map
// counts as zero.
func CountCash(counts map[int]int) (decimal.Decimal, []dto.DenominationLine) {
	total := decimal.Zero
	lines := make([]dto.DenominationLine, 0, len(Denominations))
	for _, face := range Denominations {
		n := counts[face]
		amount := decimal.NewFromInt(int64(face) * int64(n))
		total = total.Add(amount)
		lines = append(lines, dto.DenominationLine{Face: face, Count: n, Amount: amount})
	}
	return total, lines
}

// classifyVariance returns "balanced" | "minor" | "critical".
// balanced: |variance| <= 1%, minor: <= 5%, critical: > 5%
func classifyVariance(variance, pct, computed decimal.Decimal) string {
	if computed.IsZero() {
		if variance.IsZero() {
			return "balanced"
		}
		return "critical"
	}
	abs := pct.Abs()
	switch {
	case abs.LessThanOrEqual(decimal.NewFromInt(1)):
		return "balanced"
	case abs.LessThanOrEqual(decimal.NewFromInt(5)):
		return "minor"
	default:
		return "critical"
	}
}

type tally struct {
	keys  []string
	count map[string]int64
	total map[string]decimal.Decimal
}

func newTally() *tally {
	return &tally{count: map[string]int64{}, total: map[string]decimal.Decimal{}}
}

func (t *tally) add(key string, n int64, amount decimal.Decimal) {
	if _, seen := t.total[key]; !seen {
		t.keys = append(t.keys, key)
		t.total[key] = decimal.Zero
	}
	t.count[key] += n
	t.total[key] = t.total[key].Add(amount)
}

func (t *tally) lines() []dto.BreakdownLine {
	sort.Strings(t.keys)
	out := make([]dto.BreakdownLine, 0, len(t.keys))
	for _, k := range t.keys {
		out = append(out, dto.BreakdownLine{Key: k, Count: t.count[k], Total: t.total[k]})
	}
	return out
}

func (s *dayCloseService) buildSummary(p *model.DayClosePeriod, end time.Time, scope string, orders []model.Order,
	counts map[int]int) dto.DayCloseSummary {

	bySales, byType, byMethod := newTally(), newTally(), newTally()
	var count, canceled int64
	computed := decimal.Zero
	for _, o := range orders {
		if o.Canceled {
			canceled++
			continue
		}
		count++
		computed = computed.Add(o.Total)
		bySales.add(o.SalesType, 1, o.Total)
		if o.OrderType != "" {
			byType.add(o.OrderType, 1, o.Total)
		}
		if len(o.Payments) > 0 {
			for _, pm := range o.Payments {
				byMethod.add(pm.Method, 1, pm.Amount)
			}
		} else if o.ReceiveAmount.IsPositive() {
			mode := o.PaymentMode
			if mode == "" || mode == "Split" {
				mode = string(pricing.Cash)
			}
			byMethod.add(mode, 1, o.ReceiveAmount)
		}
		// change is handed back in cash
		if o.ChangeAmount.IsPositive() {
			byMethod.add(string(pricing.Cash), 0, o.ChangeAmount.Neg())
		}
	}

	counted, denomLines := CountCash(counts)
	variance := counted.Sub(computed)
	var pct decimal.Decimal
	if !computed.IsZero() {
		pct = variance.Div(computed).Mul(decimal.NewFromInt(100)).Round(2)
	}

	return dto.DayCloseSummary{
		PeriodID:        p.ID.String(),
		BranchID:        p.BranchID,
		Start:           p.StartedAt.UTC(),
		End:             end,
		Scope:           scope,
		OrderCount:      count,
		CanceledCount:   canceled,
		ComputedTotal:   computed,
		CountedCash:     counted,
		Variance:        variance,
		VariancePct:     pct,
		Classification:  classifyVariance(variance, pct, computed),
		Denominations:   denomLines,
		BySalesType:     bySales.lines(),
		ByOrderType:     byType.lines(),
		ByPaymentMethod: byMethod.lines(),
		Buckets:         s.buckets(p.StartedAt, end, scope, orders),
	}
}

// buckets splits [start, end) into one row per calendar day in the service
// location, or a single row for a shift.
func (s *dayCloseService) buckets(start, end time.Time, scope string, orders []model.Order) []dto.ScopeBucket {
	var out []dto.ScopeBucket
	if scope == ScopeShift {
		out = []dto.ScopeBucket{{Label: ScopeShift, From: start.UTC(), To: end, Total: decimal.Zero}}
	} else {
		first := calendar.In(start, s.loc)
		last := calendar.In(end.Add(-time.Nanosecond), s.loc)
		for d := first; !d.After(last); d = d.AddDays(1) {
			from := d.Time(s.loc)
			if from.Before(start) {
				from = start
			}
			to := d.AddDays(1).Time(s.loc)
			if to.After(end) {
				to = end
			}
			out = append(out, dto.ScopeBucket{Label: d.String(), From: from.UTC(), To: to.UTC(), Total: decimal.Zero})
		}
	}

	for _, o := range orders {
		if o.Canceled {
			continue
		}
		for i := range out {
			b := &out[i]
			if !o.CreatedAt.Before(b.From) && o.CreatedAt.Before(b.To) {
				b.Count++
				b.Total = b.Total.Add(o.Total)
				break
			}
		}
	}
	return out
}

func toPeriodResponse(p *model.DayClosePeriod) *dto.PeriodResponse {
	return &dto.PeriodResponse{
		ID:        p.ID.String(),
		BranchID:  p.BranchID,
		StartedAt: p.StartedAt,
		ClosedAt:  p.ClosedAt,
		Note:      p.Note,
	}
}
