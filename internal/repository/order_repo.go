package repository

import (
	"context"
	"errors"
	"time"

	"github.com/shivig4545-12/Shivangi-Gupta-POS-Project/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// OrderQuery filters orders. Zero values mean "no constraint";
// CreatedFrom/CreatedTo bound created_at as [from, to).
type OrderQuery struct {
	BranchID     string
	CustomerID   string
	AggregatorID string
	SalesTypes   []string
	OrderTypes   []string
	Status       string
	Canceled     *bool
	CreatedFrom  time.Time
	CreatedTo    time.Time
	Search       string
	Offset       int
	Limit        int
}

type OrderRepository interface {
	Create(ctx context.Context, tx *gorm.DB, o *model.Order) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error)
	// LockByID reads the order with SELECT ... FOR UPDATE inside tx.
	LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error)
	List(ctx context.Context, q OrderQuery) ([]model.Order, int64, error)
	SumTotals(ctx context.Context, tx *gorm.DB, q OrderQuery) (int64, decimal.Decimal, error)
	ListInPeriod(ctx context.Context, tx *gorm.DB, branchID string, start, end time.Time) ([]model.Order, error)
	// AssignPeriod stamps exactly orderIDs, skipping any already stamped.
	AssignPeriod(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID, periodID uuid.UUID) (int64, error)
	MarkCanceled(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error)
	SaveHolds(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, holds []model.OrderHoldRange, onHold bool) error
	SoftDelete(ctx context.Context, id uuid.UUID) error
	DB() *gorm.DB // exposes the DB for transaction creation in service layer
}

type orderRepo struct{ db *gorm.DB }

func NewOrderRepository(db *gorm.DB) OrderRepository { return &orderRepo{db: db} }

func (r *orderRepo) DB() *gorm.DB { return r.db }

// conn prefers the caller's transaction.
func (r *orderRepo) conn(ctx context.Context, tx *gorm.DB) *gorm.DB {
	if tx != nil {
		return tx.WithContext(ctx)
	}
	return r.db.WithContext(ctx)
}

func (r *orderRepo) Create(ctx context.Context, tx *gorm.DB, o *model.Order) error {
	return r.conn(ctx, tx).Create(o).Error
}

func preloadAll(db *gorm.DB) *gorm.DB {
	return db.Preload("Items").Preload("Extras").Preload("Payments").
		Preload("Holds", func(db *gorm.DB) *gorm.DB { return db.Order("position ASC") })
}

func (r *orderRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := preloadAll(r.db.WithContext(ctx)).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	return &o, nil
}

func (r *orderRepo) LockByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Order, error) {
	var o model.Order
	err := r.conn(ctx, tx).Clauses(clause.Locking{Strength: "UPDATE"}).First(&o, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, model.ErrOrderNotFound
	}
	if err != nil {
		return nil, err
	}
	err = r.conn(ctx, tx).Where("order_id = ?", id).Order("position ASC").Find(&o.Holds).Error
	return &o, err
}

func applyQuery(db *gorm.DB, q OrderQuery) *gorm.DB {
	if q.BranchID != "" {
		db = db.Where("branch_id = ?", q.BranchID)
	}
	if q.CustomerID != "" {
		db = db.Where("customer_id = ?", q.CustomerID)
	}
	if q.AggregatorID != "" {
		db = db.Where("aggregator_id = ?", q.AggregatorID)
	}
	if len(q.SalesTypes) > 0 {
		db = db.Where("sales_type IN ?", q.SalesTypes)
	}
	if len(q.OrderTypes) > 0 {
		db = db.Where("order_type IN ?", q.OrderTypes)
	}
	if q.Status != "" {
		db = db.Where("status = ?", q.Status)
	}
	if q.Canceled != nil {
		db = db.Where("canceled = ?", *q.Canceled)
	}
	if !q.CreatedFrom.IsZero() {
		db = db.Where("created_at >= ?", q.CreatedFrom)
	}
	if !q.CreatedTo.IsZero() {
		db = db.Where("created_at < ?", q.CreatedTo)
	}
	if q.Search != "" {
		like := "%" + q.Search + "%"
		db = db.Where("invoice_no ILIKE ? OR order_no ILIKE ? OR customer_name ILIKE ? OR customer_phone ILIKE ?",
			like, like, like, like)
	}
	return db
}

func (r *orderRepo) List(ctx context.Context, q OrderQuery) ([]model.Order, int64, error) {
	var orders []model.Order
	var total int64

	db := applyQuery(r.db.WithContext(ctx).Model(&model.Order{}), q)
	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	err := preloadAll(db).
		Order("created_at DESC").
		Offset(q.Offset).Limit(q.Limit).
		Find(&orders).Error
	return orders, total, err
}

func (r *orderRepo) SumTotals(ctx context.Context, tx *gorm.DB, q OrderQuery) (int64, decimal.Decimal, error) {
	var row struct {
		Count int64
		Total decimal.Decimal
	}
	err := applyQuery(r.conn(ctx, tx).Model(&model.Order{}), q).
		Select("COUNT(*) AS count, COALESCE(SUM(total), 0) AS total").
		Scan(&row).Error
	return row.Count, row.Total, err
}

func (r *orderRepo) ListInPeriod(ctx context.Context, tx *gorm.DB, branchID string, start, end time.Time) ([]model.Order, error) {
	var orders []model.Order
	err := r.conn(ctx, tx).Preload("Payments").
		Where("branch_id = ? AND created_at >= ? AND created_at < ?", branchID, start, end).
		Order("created_at ASC").
		Find(&orders).Error
	return orders, err
}

func (r *orderRepo) AssignPeriod(ctx context.Context, tx *gorm.DB, orderIDs []uuid.UUID, periodID uuid.UUID) (int64, error) {
	if len(orderIDs) == 0 {
		return 0, nil
	}
	res := r.conn(ctx, tx).Model(&model.Order{}).
		Where("id IN ? AND day_close_period_id IS NULL", orderIDs).
		Update("day_close_period_id", periodID)
	return res.RowsAffected, res.Error
}

func (r *orderRepo) MarkCanceled(ctx context.Context, id uuid.UUID, reason string, at time.Time) (bool, error) {
	res := r.db.WithContext(ctx).Model(&model.Order{}).
		Where("id = ? AND canceled = false", id).
		Updates(map[string]any{"canceled": true, "cancel_reason": reason, "canceled_at": at})
	return res.RowsAffected == 1, res.Error
}

func (r *orderRepo) SaveHolds(ctx context.Context, tx *gorm.DB, orderID uuid.UUID, holds []model.OrderHoldRange, onHold bool) error {
	db := r.conn(ctx, tx)
	if err := db.Where("order_id = ?", orderID).Delete(&model.OrderHoldRange{}).Error; err != nil {
		return err
	}
	if len(holds) > 0 {
		if err := db.Create(&holds).Error; err != nil {
			return err
		}
	}
	return db.Model(&model.Order{}).Where("id = ?", orderID).Update("on_hold", onHold).Error
}

func (r *orderRepo) SoftDelete(ctx context.Context, id uuid.UUID) error {
	res := r.db.WithContext(ctx).Delete(&model.Order{}, "id = ?", id)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return model.ErrOrderNotFound
	}
	return nil
}
