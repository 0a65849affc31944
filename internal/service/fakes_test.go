package service_test

import (
	"context"
	"errors"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"
	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── In-memory OrderRepository ────────────────────────────────────────────────

type fakeOrderRepo struct {
	mu        sync.Mutex
	orders    map[uuid.UUID]*model.Order
	createErr error
	// afterList runs once ListInPeriod has read, standing in for a
	// concurrent commit.
	afterList func()
}

var _ repository.OrderRepository = (*fakeOrderRepo)(nil)

func newFakeOrderRepo() *fakeOrderRepo {
	return &fakeOrderRepo{orders: make(map[uuid.UUID]*model.Order)}
}

func (r *fakeOrderRepo) DB() *gorm.DB { return nil }

func (r *fakeOrderRepo) Create(_ context.Context, _ *gorm.DB, o *model.Order) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	cp := *o
	r.orders[o.ID] = &cp
	return nil
}

// add stores o as-is, for seeding period fixtures.
func (r *fakeOrderRepo) add(o model.Order) *model.Order {
	if o.ID == uuid.Nil {
		o.ID = uuid.New()
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.orders[o.ID] = &o
	return &o
}

func (r *fakeOrderRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Order, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok {
		return nil, model.ErrOrderNotFound
	}
	cp := *o
	cp.Holds = append([]model.OrderHoldRange(nil), o.Holds...)
	return &cp, nil
}

func (r *fakeOrderRepo) LockByID(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Order, error) {
	return r.FindByID(ctx, id)
}

func matches(o *model.Order, q repository.OrderQuery) bool {
	if q.BranchID != "" && o.BranchID != q.BranchID {
		return false
	}
	if q.CustomerID != "" && (o.CustomerID == nil || *o.CustomerID != q.CustomerID) {
		return false
	}
	if q.AggregatorID != "" && (o.AggregatorID == nil || *o.AggregatorID != q.AggregatorID) {
		return false
	}
	if len(q.SalesTypes) > 0 && !contains(q.SalesTypes, o.SalesType) {
		return false
	}
	if len(q.OrderTypes) > 0 && !contains(q.OrderTypes, o.OrderType) {
		return false
	}
	if q.Status != "" && o.Status != q.Status {
		return false
	}
	if q.Canceled != nil && o.Canceled != *q.Canceled {
		return false
	}
	if !q.CreatedFrom.IsZero() && o.CreatedAt.Before(q.CreatedFrom) {
		return false
	}
	if !q.CreatedTo.IsZero() && !o.CreatedAt.Before(q.CreatedTo) {
		return false
	}
	if q.Search != "" {
		s := strings.ToLower(q.Search)
		hay := strings.ToLower(o.InvoiceNo + " " + o.OrderNo + " " + o.CustomerName + " " + o.CustomerPhone)
		if !strings.Contains(hay, s) {
			return false
		}
	}
	return true
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

func (r *fakeOrderRepo) filter(q repository.OrderQuery) []model.Order {
	var out []model.Order
	for _, o := range r.orders {
		if matches(o, q) {
			out = append(out, *o)
		}
	}
	return out
}

func (r *fakeOrderRepo) List(_ context.Context, q repository.OrderQuery) ([]model.Order, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	all := r.filter(q)
	sort.Slice(all, func(i, j int) bool { return all[i].CreatedAt.After(all[j].CreatedAt) })
	total := int64(len(all))
	if q.Offset >= len(all) {
		return nil, total, nil
	}
	end := len(all)
	if q.Limit > 0 && q.Offset+q.Limit < end {
		end = q.Offset + q.Limit
	}
	return all[q.Offset:end], total, nil
}

func (r *fakeOrderRepo) SumTotals(_ context.Context, _ *gorm.DB, q repository.OrderQuery) (int64, decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	all := r.filter(q)
	for _, o := range all {
		sum = sum.Add(o.Total)
	}
	return int64(len(all)), sum, nil
}

func (r *fakeOrderRepo) ListInPeriod(_ context.Context, _ *gorm.DB, branchID string, start, end time.Time) ([]model.Order, error) {
	r.mu.Lock()
	out := r.filter(repository.OrderQuery{BranchID: branchID, CreatedFrom: start, CreatedTo: end})
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	if r.afterList != nil {
		r.afterList()
	}
	return out, nil
}

func (r *fakeOrderRepo) AssignPeriod(_ context.Context, _ *gorm.DB, orderIDs []uuid.UUID, periodID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, id := range orderIDs {
		if o, ok := r.orders[id]; ok && o.DayClosePeriodID == nil {
			pid := periodID
			o.DayClosePeriodID = &pid
			n++
		}
	}
	return n, nil
}

func (r *fakeOrderRepo) MarkCanceled(_ context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[id]
	if !ok || o.Canceled {
		return false, nil
	}
	o.Canceled = true
	o.CancelReason = &reason
	o.CanceledAt = &at
	return true, nil
}

func (r *fakeOrderRepo) SaveHolds(_ context.Context, _ *gorm.DB, orderID uuid.UUID, holds []model.OrderHoldRange, onHold bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.orders[orderID]
	if !ok {
		return model.ErrOrderNotFound
	}
	o.Holds = append([]model.OrderHoldRange(nil), holds...)
	o.OnHold = onHold
	return nil
}

func (r *fakeOrderRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.orders[id]; !ok {
		return model.ErrOrderNotFound
	}
	delete(r.orders, id)
	return nil
}

// ── In-memory DayCloseRepository ─────────────────────────────────────────────

type fakeDayCloseRepo struct {
	mu      sync.Mutex
	periods []*model.DayClosePeriod
}

var _ repository.DayCloseRepository = (*fakeDayCloseRepo)(nil)

func (r *fakeDayCloseRepo) DB() *gorm.DB { return nil }

func (r *fakeDayCloseRepo) CreatePeriod(_ context.Context, p *model.DayClosePeriod) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.periods {
		if existing.BranchID == p.BranchID && existing.IsOpen() {
			return model.ErrPeriodAlreadyOpen
		}
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	cp := *p
	r.periods = append(r.periods, &cp)
	return nil
}

func (r *fakeDayCloseRepo) FindOpen(_ context.Context, branchID string) (*model.DayClosePeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.BranchID == branchID && p.IsOpen() {
			cp := *p
			return &cp, nil
		}
	}
	return nil, model.ErrNoOpenPeriod
}

func (r *fakeDayCloseRepo) LockOpen(ctx context.Context, _ *gorm.DB, branchID string) (*model.DayClosePeriod, error) {
	return r.FindOpen(ctx, branchID)
}

func (r *fakeDayCloseRepo) FindLatestClosed(_ context.Context, _ *gorm.DB, branchID string) (*model.DayClosePeriod, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var latest *model.DayClosePeriod
	for _, p := range r.periods {
		if p.BranchID != branchID || p.IsOpen() {
			continue
		}
		if latest == nil || p.ClosedAt.After(*latest.ClosedAt) {
			latest = p
		}
	}
	if latest == nil {
		return nil, model.ErrPeriodNotFound
	}
	cp := *latest
	return &cp, nil
}

func (r *fakeDayCloseRepo) MarkClosed(_ context.Context, _ *gorm.DB, id uuid.UUID, closedAt time.Time, summary []byte, note *string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, p := range r.periods {
		if p.ID == id && p.IsOpen() {
			at := closedAt
			p.ClosedAt = &at
			p.Summary = summary
			p.Note = note
			return true, nil
		}
	}
	return false, nil
}

// ── Sequence store ───────────────────────────────────────────────────────────

// fakeCounters is an all-or-nothing sequence.Store. failOn makes every call
// that touches a key with that prefix fail before any key advances.
type fakeCounters struct {
	mu     sync.Mutex
	values map[string]int64
	err    error
	failOn string
	calls  []string
}

func newFakeCounters() *fakeCounters {
	return &fakeCounters{values: make(map[string]int64)}
}

func (s *fakeCounters) Increment(_ context.Context, _ *gorm.DB, keys ...string) ([]int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls = append(s.calls, keys...)
	if s.err != nil {
		return nil, s.err
	}
	for _, k := range keys {
		if s.failOn != "" && strings.HasPrefix(k, s.failOn) {
			return nil, errStoreDown
		}
	}
	out := make([]int64, len(keys))
	for i, k := range keys {
		s.values[k]++
		out[i] = s.values[k]
	}
	return out, nil
}

var errStoreDown = errors.New("store down")
